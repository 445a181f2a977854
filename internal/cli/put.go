package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Put moves the given files to the recycle bin
func (c *CLI) Put(args []string) error {
	slog.Debug("cli.put started")
	defer slog.Debug("cli.put finished")

	if len(args) == 0 {
		return errors.New("too few arguments")
	}

	// Resolve and stat everything up front. The backend stages the whole
	// batch before executing, but a nonexistent path would only fail there
	// after valid siblings were already staged; catching it here keeps the
	// batch untouched.
	paths := make([]string, len(args))
	var eg errgroup.Group
	for i, arg := range args {
		i, arg := i, arg
		eg.Go(func() error {
			path, err := filepath.Abs(arg)
			if err != nil {
				return err
			}
			if _, err := os.Lstat(path); err != nil {
				if os.IsNotExist(err) {
					if c.option.Rm.Force {
						return nil // skipped below
					}
					return fmt.Errorf("%s: no such file or directory", arg)
				}
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	paths = slices.DeleteFunc(paths, func(p string) bool { return p == "" })
	if len(paths) == 0 {
		return nil
	}

	return c.manager.Put(paths...)
}
