package cli

import (
	"fmt"
	"log/slog"

	"github.com/recyc-cli/recyc/internal/trash"
)

// Prune permanently removes files from the recycle bin. The argument is
// either "all" or the name of a single trashed file.
func (c *CLI) Prune(target string) error {
	slog.Debug("cli.prune started", "target", target)
	defer slog.Debug("cli.prune finished")

	files, err := c.manager.List()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("the recycle bin is empty")
		return nil
	}

	targets := files
	if target != "all" {
		targets = nil
		for _, file := range files {
			if file.Name == target || file.ID == target {
				targets = append(targets, file)
			}
		}
		if len(targets) == 0 {
			return trash.ErrNotFound
		}
	}

	for _, file := range targets {
		if err := c.manager.Remove(file); err != nil {
			return fmt.Errorf("remove %s: %w", file.Name, err)
		}
	}
	return nil
}
