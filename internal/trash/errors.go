package trash

import (
	"errors"
	"fmt"
	"unicode/utf16"
)

// Common errors that can be returned by Storage implementations
var (
	// ErrNotFound is returned when a file cannot be found in trash
	ErrNotFound = errors.New("file not found in trash")

	// ErrInvalidStorage is returned when a storage operation is attempted with an invalid storage
	ErrInvalidStorage = errors.New("invalid storage")

	// ErrNotImplemented is returned by operations a storage backend declares
	// but does not support yet (e.g. restore/purge on the recycle bin).
	// Callers handle it as a normal error case, not a panic.
	ErrNotImplemented = errors.New("not implemented")
)

// StorageError wraps an error with additional context about the storage operation
type StorageError struct {
	Op   string // Operation that failed (e.g., "put", "list")
	Path string // Path of the file that caused the error
	Err  error  // The underlying error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError
func NewStorageError(op, path string, err error) error {
	return &StorageError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// PlatformError reports a platform shell call that returned a failure
// status. It carries the name of the failing call and the native status
// code verbatim so that failures stay diagnosable across the syscall
// boundary. Platform errors are never retried here; the shell subsystem
// does not distinguish transient from permanent failures.
type PlatformError struct {
	Op     string // name of the native call that failed
	Status uint32 // native status code (HRESULT), zero if none was reported
}

func (e *PlatformError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return fmt.Sprintf("%s failed with status 0x%08X", e.Op, e.Status)
}

// InvalidNameError is returned when a display name retrieved from the
// platform cannot be represented as a well-formed string (for example a
// lone UTF-16 surrogate). The original code units are kept so callers can
// inspect what the platform actually reported.
type InvalidNameError struct {
	Raw []uint16 // the undecodable UTF-16 code units
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("display name is not valid unicode: %q", string(utf16.Decode(e.Raw)))
}
