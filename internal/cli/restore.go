package cli

import (
	"errors"
	"log/slog"

	"github.com/recyc-cli/recyc/internal/trash"
)

// Restore puts a trashed file back where it came from. The target is
// selected by its original base name or its identifier inside the bin.
func (c *CLI) Restore(args []string) error {
	slog.Debug("cli.restore started")
	defer slog.Debug("cli.restore finished")

	if len(args) == 0 {
		return errors.New("too few arguments")
	}

	files, err := c.manager.List()
	if err != nil {
		return err
	}

	for _, file := range files {
		if file.Name == args[0] || file.ID == args[0] {
			return c.manager.Restore(file, "")
		}
	}
	return trash.ErrNotFound
}
