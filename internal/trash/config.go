package trash

import (
	"github.com/recyc-cli/recyc/internal/config"
)

// Config holds the unified configuration for trash management. It is
// shared by every storage backend the manager drives.
type Config struct {
	// Verbose makes mutating operations report what they did on stdout
	Verbose bool

	// History contains listing filter configuration
	History config.History

	// RunID identifies one invocation across log lines
	RunID string
}

// NewDefaultConfig creates a new Config with default values
func NewDefaultConfig() *Config {
	return &Config{}
}
