package trash

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

// Manager handles one or more trash storage implementations
type Manager struct {
	storages []Storage
	config   *Config
}

// ManagerOption configures a Manager
type ManagerOption func(*managerOptions)

type managerOptions struct {
	constructors []StorageConstructor
}

// WithStorage registers a storage backend constructor with the manager
func WithStorage(ctor StorageConstructor) ManagerOption {
	return func(o *managerOptions) {
		o.constructors = append(o.constructors, ctor)
	}
}

// NewManager creates a new trash manager with the given configuration
func NewManager(cfg *Config, opts ...ManagerOption) (*Manager, error) {
	var mo managerOptions
	for _, opt := range opts {
		opt(&mo)
	}

	var storages []Storage
	for _, ctor := range mo.constructors {
		storage, err := ctor(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		storages = append(storages, storage)
	}

	if len(storages) == 0 {
		return nil, errors.New("no storage backend configured")
	}

	types := lo.Map(storages, func(s Storage, _ int) string {
		return s.Info().Type.String()
	})
	slog.Info("trash manager initialized", "storages", types)

	return &Manager{
		storages: storages,
		config:   cfg,
	}, nil
}

// Put moves the given files to trash as one batched operation.
// Storages are tried in registration order until one accepts the batch.
func (m *Manager) Put(paths ...string) error {
	if len(paths) == 0 {
		return errors.New("too few arguments")
	}

	var lastErr error
	for _, storage := range m.storages {
		err := storage.Put(paths...)
		if err == nil {
			if m.config.Verbose {
				for _, path := range paths {
					fmt.Printf("moved %s to trash\n", path)
				}
			}
			return nil
		}
		lastErr = err
		slog.Debug("storage failed to put files", "storage", storage.Info().Type, "error", err)
	}

	return fmt.Errorf("all storage backends failed to put files: %w", lastErr)
}

// List returns all files from all storages, filtered by the history
// configuration. Listing is all-or-nothing per storage: one bad item
// aborts that storage's listing rather than returning a truncated list.
func (m *Manager) List() ([]*File, error) {
	var allFiles []*File
	var errs []error

	for _, storage := range m.storages {
		files, err := storage.List()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to list files from %s: %w", storage.Info().Type, err))
			continue
		}
		allFiles = append(allFiles, files...)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return Filter(allFiles, FilterOptions{
		Include: m.config.History.Include,
		Exclude: m.config.History.Exclude,
	}), nil
}

// Restore restores the given file via the storage that produced it
func (m *Manager) Restore(file *File, dst string) error {
	storage := file.GetStorage()
	if storage == nil {
		return ErrInvalidStorage
	}
	return storage.Restore(file, dst)
}

// Remove permanently removes the file from trash
func (m *Manager) Remove(file *File) error {
	storage := file.GetStorage()
	if storage == nil {
		return ErrInvalidStorage
	}
	return storage.Remove(file)
}

// ListStorages returns information about all available storage backends
func (m *Manager) ListStorages() []*StorageInfo {
	var infos []*StorageInfo
	for _, storage := range m.storages {
		infos = append(infos, storage.Info())
	}
	return infos
}
