package recycle

import (
	"log/slog"
	"time"

	"github.com/recyc-cli/recyc/internal/trash"
)

// Storage implements trash.Storage on the platform recycle bin
type Storage struct {
	shell  Shell
	config *trash.Config
}

// NewStorage creates a recycle bin storage backed by the platform shell.
// It matches the trash.StorageConstructor signature.
func NewStorage(cfg *trash.Config) (trash.Storage, error) {
	shell, err := newPlatformShell()
	if err != nil {
		return nil, err
	}
	return &Storage{shell: shell, config: cfg}, nil
}

// newStorageWithShell exists for tests that swap in an instrumented shell
func newStorageWithShell(shell Shell, cfg *trash.Config) *Storage {
	return &Storage{shell: shell, config: cfg}
}

// Info returns information about this storage
func (s *Storage) Info() *trash.StorageInfo {
	return &trash.StorageInfo{
		Location:  trash.LocationSystem,
		Root:      "shell:RecycleBinFolder",
		Available: true,
		Type:      trash.StorageTypeRecycleBin,
	}
}

// List enumerates the recycle bin and assembles one trash.File per item.
// One undecodable or unreadable item aborts the whole listing; there is
// no partial-result mode.
func (s *Storage) List() ([]*trash.File, error) {
	if err := s.shell.EnsureInitialized(); err != nil {
		return nil, trash.NewStorageError("list", "", err)
	}

	folder, err := s.shell.BindToTrash()
	if err != nil {
		return nil, trash.NewStorageError("list", "", err)
	}
	defer folder.Release()

	enum, status, err := folder.EnumObjects()
	if enum != nil {
		defer enum.Release()
	}
	if err != nil {
		return nil, trash.NewStorageError("list", "", err)
	}
	// WARNING: the enumeration call may return a secondary success status
	// without populating the iterator. Only the primary success status is
	// accepted here, strictly; all other codes, succeeding or not, abort.
	if status != StatusOK {
		return nil, trash.NewStorageError("list", "", &trash.PlatformError{Op: "EnumObjects", Status: uint32(status)})
	}
	if enum == nil {
		return nil, trash.NewStorageError("list", "", &trash.PlatformError{Op: "EnumObjects"})
	}

	var files []*trash.File
	for {
		item, ok, err := enum.Next()
		if err != nil {
			return nil, trash.NewStorageError("list", "", err)
		}
		if !ok {
			break
		}

		file, err := s.readItem(folder, item)
		item.Release()
		if err != nil {
			return nil, trash.NewStorageError("list", "", err)
		}
		file.SetStorage(s)
		files = append(files, file)
	}

	slog.Debug("listed recycle bin", "items", len(files))
	return files, nil
}

// readItem extracts one item's metadata while its identifier is live
func (s *Storage) readItem(folder Folder, item ItemID) (*trash.File, error) {
	id, err := getDisplayName(folder, item, NameForParsing)
	if err != nil {
		return nil, err
	}
	name, err := getDisplayName(folder, item, NameInFolder)
	if err != nil {
		return nil, err
	}
	origin, err := getDetail(folder, item, KeyOriginalLocation)
	if err != nil {
		return nil, err
	}
	deleted, err := getDateDetail(folder, item, KeyDateDeleted)
	if err != nil {
		return nil, err
	}

	return &trash.File{
		ID:           id,
		Name:         name,
		OriginalPath: origin,
		DeletedAt:    time.Unix(deleted, 0).UTC(),
	}, nil
}

// Put sends the given absolute paths to the recycle bin as one batched,
// undo-capable, UI-free operation. All paths are resolved and staged
// before anything executes, so a path that fails to resolve aborts the
// batch without deleting anything. Once execution starts the batch is
// not atomic: the platform may have processed a prefix when it reports
// a failure.
func (s *Storage) Put(paths ...string) error {
	if err := s.shell.EnsureInitialized(); err != nil {
		return trash.NewStorageError("put", "", err)
	}

	op, err := s.shell.NewFileOperation()
	if err != nil {
		return trash.NewStorageError("put", "", err)
	}
	defer op.Release()

	if err := op.SetFlags(deleteFlags); err != nil {
		return trash.NewStorageError("put", "", err)
	}

	for _, path := range paths {
		item, err := s.shell.CreateItemFromPath(stripExtendedPrefix(path))
		if err != nil {
			return trash.NewStorageError("put", path, err)
		}
		err = op.Delete(item)
		item.Release()
		if err != nil {
			return trash.NewStorageError("put", path, err)
		}
	}

	if err := op.Perform(); err != nil {
		return trash.NewStorageError("put", "", err)
	}

	slog.Debug("batched delete performed", "items", len(paths))
	return nil
}

// Restore is not supported on the recycle bin backend yet. Restoring
// requires re-resolving the item inside the bin and issuing a shell move
// back to its origin, which this backend does not implement.
func (s *Storage) Restore(file *trash.File, dst string) error {
	return trash.NewStorageError("restore", file.Name, trash.ErrNotImplemented)
}

// Remove is not supported on the recycle bin backend yet
func (s *Storage) Remove(file *trash.File) error {
	return trash.NewStorageError("remove", file.Name, trash.ErrNotImplemented)
}
