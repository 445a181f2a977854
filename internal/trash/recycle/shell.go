// Package recycle implements trash.Storage on top of the platform shell
// namespace: the recycle bin is one virtual folder of that namespace, and
// all access goes through folder binding, item enumeration and the item
// property facility.
//
// Everything obtained from the shell is an opaque, platform-allocated
// resource that must be released exactly once, on every exit path. The
// Shell interface below is the narrow seam between the portable listing
// and deletion logic and the native implementation.
package recycle

// HResult mirrors the platform's 32-bit status code. The high bit set
// means failure; several distinct codes count as success.
type HResult uint32

const (
	// StatusOK is the primary success status (S_OK)
	StatusOK HResult = 0x00000000

	// StatusFalse is a secondary success status (S_FALSE)
	StatusFalse HResult = 0x00000001
)

// Succeeded reports whether the status is any success code, not just StatusOK
func (hr HResult) Succeeded() bool { return hr&0x80000000 == 0 }

// NameForm selects which rendering of an item's display name to request
type NameForm uint32

const (
	// NameForParsing is the stable, parse-friendly form the shell can
	// resolve back to the item (SHGDN_FORPARSING)
	NameForParsing NameForm = 0x8000

	// NameInFolder is the folder-relative, human-readable form (SHGDN_INFOLDER)
	NameInFolder NameForm = 0x0001
)

// displacedGUID is the property schema for items displaced into the
// recycle bin (PSGUID_DISPLACED). It has no binding in the usual headers'
// property lists, so the key constants live here.
const displacedGUID = "{9B174B33-40FF-11D2-A27E-00C04FC30871}"

// PropertyKey identifies one column of shell item metadata: a schema GUID
// plus a property index. These pairs are fixed by the platform's metadata
// schema, not user-configurable.
type PropertyKey struct {
	FmtID string
	PID   uint32
}

var (
	// KeyOriginalLocation is the folder the item was deleted from
	KeyOriginalLocation = PropertyKey{FmtID: displacedGUID, PID: 2}

	// KeyDateDeleted is the automation date the item was deleted at
	KeyDateDeleted = PropertyKey{FmtID: displacedGUID, PID: 3}
)

// File operation flags, see shellapi.h
const (
	fofSilent          = 0x0004
	fofNoConfirmation  = 0x0010
	fofAllowUndo       = 0x0040
	fofNoConfirmMkdir  = 0x0200
	fofNoErrorUI       = 0x0400
	fofWantNukeWarning = 0x4000

	// fofNoUI disables every interactive surface of an operation
	fofNoUI = fofSilent | fofNoConfirmation | fofNoErrorUI | fofNoConfirmMkdir

	// deleteFlags keeps the OS undo/recycle semantics while suppressing
	// all UI; the nuke warning only fires if a delete would bypass the
	// recycle bin entirely. Collision policy, recursion and security
	// attributes are left at the operation's defaults.
	deleteFlags = fofNoUI | fofAllowUndo | fofWantNukeWarning
)

// Shell is the view of the platform shell subsystem the storage needs.
// A Shell and everything obtained through it belong to the goroutine
// that first used it; handles must not cross goroutines.
type Shell interface {
	// EnsureInitialized lazily initializes the shell subsystem for the
	// calling thread. Calling it again is a no-op.
	EnsureInitialized() error

	// BindToTrash resolves the trash folder identifier and binds it into
	// a folder usable for enumeration and property queries. The caller
	// owns the returned folder.
	BindToTrash() (Folder, error)

	// CreateItemFromPath resolves an absolute filesystem path to a shell
	// item handle. The caller owns the returned item.
	CreateItemFromPath(path string) (Item, error)

	// NewFileOperation creates an empty batched file operation
	NewFileOperation() (FileOperation, error)

	// Release tears the subsystem down, best effort. Teardown ordering
	// relative to other thread-scoped state is unspecified; nothing may
	// rely on it for correctness.
	Release()
}

// Folder is a bound shell namespace folder
type Folder interface {
	// EnumObjects requests an iteration handle covering the folder's
	// sub-folders and non-folder items. The raw native status is returned
	// alongside so callers can be stricter than "any success code".
	EnumObjects() (Enum, HResult, error)

	// DisplayNameOf renders the item's display name in the given form as
	// a NUL-terminated UTF-16 buffer
	DisplayNameOf(item ItemID, form NameForm) ([]uint16, error)

	// DetailsOf retrieves the typed property value identified by key for
	// the item. The caller must Clear the returned value exactly once.
	DetailsOf(item ItemID, key PropertyKey) (Variant, error)

	// Release frees the folder handle
	Release()
}

// Enum is a forward-only, finite iterator of opaque item identifiers.
// Restarting requires re-enumeration.
type Enum interface {
	// Next yields the next item identifier, or ok=false at the end of
	// the sequence. Each yielded identifier must be released by the
	// caller once its metadata has been extracted.
	Next() (item ItemID, ok bool, err error)

	// Release frees the iteration handle
	Release()
}

// ItemID is an opaque, platform-allocated identifier of one namespace item
type ItemID interface {
	Release()
}

// Item is a resolved shell item usable as a file operation target
type Item interface {
	Release()
}

// Variant is a typed property value held by the platform. Coercions are
// fallible; Clear must run on every exit path, coercion failures included.
type Variant interface {
	// CoerceString converts the value to its string representation,
	// returned as NUL-terminated UTF-16 code units
	CoerceString() ([]uint16, error)

	// CoerceDate converts the value to the automation date representation
	CoerceDate() (float64, error)

	// Clear releases any platform resources held by the value
	Clear()
}

// FileOperation accumulates delete targets and executes them as one batch
type FileOperation interface {
	SetFlags(flags uint32) error
	Delete(item Item) error
	Perform() error
	Release()
}
