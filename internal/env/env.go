package env

import (
	"os"
	"path/filepath"
)

const (
	defaultXDGConfigDirname = ".config"
	defaultXDGDataDirname   = ".local/share"
)

var (
	RECYC_CONFIG_PATH string

	RECYC_LOG_PATH string
)

func init() {
	// https://github.com/charmbracelet/log/issues/35
	os.Setenv("CLICOLOR_FORCE", "1")

	// Follow https://specifications.freedesktop.org/basedir-spec/latest/
	if RECYC_CONFIG_PATH = os.Getenv("RECYC_CONFIG_PATH"); RECYC_CONFIG_PATH == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				panic(err)
			}
			configDir = filepath.Join(homeDir, defaultXDGConfigDirname)
		}
		RECYC_CONFIG_PATH = filepath.Join(configDir, "recyc", "config.yaml")
	}

	if RECYC_LOG_PATH = os.Getenv("RECYC_LOG_PATH"); RECYC_LOG_PATH == "" {
		dataDir := os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				panic(err)
			}
			dataDir = filepath.Join(homeDir, defaultXDGDataDirname)
		}
		RECYC_LOG_PATH = filepath.Join(dataDir, "recyc", "debug.log")
	}
}
