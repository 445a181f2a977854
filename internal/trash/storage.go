// Package trash provides the core functionality for trash management
package trash

import (
	"time"
)

// StorageType represents the type of trash storage
type StorageType int

const (
	// StorageTypeRecycleBin represents the Windows recycle bin, accessed
	// through the shell namespace.
	StorageTypeRecycleBin StorageType = iota
)

func (t StorageType) String() string {
	switch t {
	case StorageTypeRecycleBin:
		return "recycle-bin"
	default:
		return "unknown"
	}
}

// StorageLocation represents where the trash storage is located
type StorageLocation int

const (
	// LocationSystem indicates an OS-managed trash facility
	LocationSystem StorageLocation = iota

	// LocationExternal indicates external device storage
	LocationExternal
)

// StorageInfo provides information about a trash storage
type StorageInfo struct {
	// Location indicates whether this is a system or external storage
	Location StorageLocation

	// Root is the root of this storage as the platform names it
	Root string

	// Available indicates whether this storage is currently usable
	Available bool

	// Type indicates the storage implementation type
	Type StorageType
}

// File represents a file in trash
type File struct {
	// ID is the stable, parse-friendly identifier assigned by the storage.
	// For the recycle bin this is the parsing-form display name, which can
	// be handed back to the shell to re-resolve the item.
	ID string

	// Name is the original base name of the file
	Name string

	// OriginalPath is the location the file was deleted from
	OriginalPath string

	// DeletedAt is when the file was moved to trash.
	// The platform reports this with second granularity.
	DeletedAt time.Time

	// storage is a reference to the Storage implementation that manages this file
	storage Storage
}

// SetStorage sets the storage reference for this file.
// This is used internally by Storage implementations.
func (f *File) SetStorage(s Storage) {
	f.storage = s
}

// GetStorage returns the storage reference for this file
func (f *File) GetStorage() Storage {
	return f.storage
}

// GetName implements Filterable
func (f *File) GetName() string { return f.Name }

// GetPath implements Filterable. The parse-form identifier doubles as the
// item's path inside the trash where the platform exposes one.
func (f *File) GetPath() string { return f.ID }

// GetDeletedAt implements Filterable
func (f *File) GetDeletedAt() time.Time { return f.DeletedAt }

// Storage defines the interface for different trash implementations
type Storage interface {
	// Put moves the given files to trash as one batched operation.
	// The batch is not atomic: a failure may leave a prefix of the paths
	// already trashed.
	Put(paths ...string) error

	// Restore restores the given file from trash to its original location.
	// If dst is specified, the file will be restored to that location instead.
	Restore(file *File, dst string) error

	// Remove permanently removes the file from trash
	Remove(file *File) error

	// List returns a list of all files in trash
	List() ([]*File, error)

	// Info returns detailed information about the storage
	Info() *StorageInfo
}

// StorageConstructor is a function type for creating new Storage instances
type StorageConstructor func(*Config) (Storage, error)
