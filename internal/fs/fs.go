// Package fs provides small filesystem helpers shared across the app.
package fs

import (
	"os"
	"path/filepath"
)

// DirSize returns the total size in bytes of the file or directory at path.
// For directories the sizes of all regular files underneath are summed.
func DirSize(path string) (int64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var size int64
	err = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
