//go:build windows

package recycle

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"github.com/recyc-cli/recyc/internal/trash"
	"golang.org/x/sys/windows"
)

// csidlBitBucket identifies the virtual recycle bin folder
const csidlBitBucket = 0x000A

// Enumeration scope: both sub-folders and plain items
const (
	shcontfFolders    = 0x20
	shcontfNonFolders = 0x40
)

// clsctxAll lets the object be served in-process or out-of-process,
// whichever the registration prefers
const clsctxAll = 0x17

var (
	modShell32  = windows.NewLazySystemDLL("shell32.dll")
	modShlwapi  = windows.NewLazySystemDLL("shlwapi.dll")
	modOle32    = windows.NewLazySystemDLL("ole32.dll")
	modOleaut32 = windows.NewLazySystemDLL("oleaut32.dll")

	procSHGetSpecialFolderLocation  = modShell32.NewProc("SHGetSpecialFolderLocation")
	procSHGetDesktopFolder          = modShell32.NewProc("SHGetDesktopFolder")
	procSHCreateItemFromParsingName = modShell32.NewProc("SHCreateItemFromParsingName")
	procStrRetToStrW                = modShlwapi.NewProc("StrRetToStrW")
	procCoCreateInstance            = modOle32.NewProc("CoCreateInstance")
	procVariantChangeType           = modOleaut32.NewProc("VariantChangeType")
)

var (
	clsidFileOperation = ole.NewGUID("{3AD05575-8857-4850-9277-11B85BDB8E09}")
	iidIFileOperation  = ole.NewGUID("{947AAB5F-0A5C-4C13-B4D6-4BF7836FC9F8}")
	iidIShellItem      = ole.NewGUID("{43826D1E-E718-42EE-BC55-A1E261C37BFE}")
	iidIShellFolder2   = ole.NewGUID("{93F2F68C-1D1B-11D3-A30E-00C04F79ABD1}")
)

func failed(hr uintptr) bool { return !HResult(uint32(hr)).Succeeded() }

func platformErr(op string, hr uintptr) error {
	return &trash.PlatformError{Op: op, Status: uint32(hr)}
}

// winShell talks to the real shell subsystem. It owns one single-threaded
// apartment on the OS thread it is first used from.
type winShell struct {
	initialized bool
}

func newPlatformShell() (Shell, error) {
	return &winShell{}, nil
}

// EnsureInitialized pins the goroutine to its OS thread and initializes
// an apartment there. The pin is never undone: apartment teardown is tied
// to the thread, and unlocking would let other goroutines migrate onto it
// while shell handles are still live.
func (s *winShell) EnsureInitialized() error {
	if s.initialized {
		return nil
	}
	runtime.LockOSThread()
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED|ole.COINIT_DISABLE_OLE1DDE); err != nil {
		// a secondary success status means the apartment already existed
		// on this thread, which is fine
		var oleErr *ole.OleError
		if !(errors.As(err, &oleErr) && HResult(uint32(oleErr.Code())) == StatusFalse) {
			return &trash.PlatformError{Op: "CoInitializeEx", Status: hresultOf(err)}
		}
	}
	s.initialized = true
	return nil
}

func (s *winShell) Release() {
	if s.initialized {
		ole.CoUninitialize()
		s.initialized = false
	}
}

func hresultOf(err error) uint32 {
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) {
		return uint32(oleErr.Code())
	}
	return 0
}

// vtblIUnknown is the universal prefix of every interface vtable
type vtblIUnknown struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
}

func queryInterface(unk *ole.IUnknown, iid *ole.GUID) (*ole.IUnknown, uintptr) {
	var out *ole.IUnknown
	hr, _, _ := syscall.SyscallN(
		(*vtblIUnknown)(unsafe.Pointer(unk.RawVTable)).QueryInterface,
		uintptr(unsafe.Pointer(unk)),
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&out)),
	)
	return out, hr
}

// BindToTrash resolves the recycle bin's item identifier and binds it into
// an IShellFolder2. An empty identifier payload denotes the namespace root
// itself, in which case the desktop folder is used directly.
func (s *winShell) BindToTrash() (Folder, error) {
	var pidl uintptr
	hr, _, _ := procSHGetSpecialFolderLocation.Call(0, csidlBitBucket, uintptr(unsafe.Pointer(&pidl)))
	if failed(hr) {
		return nil, platformErr("SHGetSpecialFolderLocation", hr)
	}
	defer windows.CoTaskMemFree(unsafe.Pointer(pidl))

	var desktop *ole.IUnknown
	hr, _, _ = procSHGetDesktopFolder.Call(uintptr(unsafe.Pointer(&desktop)))
	if failed(hr) {
		return nil, platformErr("SHGetDesktopFolder", hr)
	}
	if desktop == nil {
		return nil, &trash.PlatformError{Op: "SHGetDesktopFolder"}
	}
	defer desktop.Release()

	var bound *ole.IUnknown
	if *(*uint16)(unsafe.Pointer(pidl)) == 0 {
		bound, hr = queryInterface(desktop, iidIShellFolder2)
		if failed(hr) {
			return nil, platformErr("QueryInterface(IShellFolder2)", hr)
		}
	} else {
		vtbl := (*shellFolder2Vtbl)(unsafe.Pointer(desktop.RawVTable))
		hr, _, _ = syscall.SyscallN(vtbl.BindToObject,
			uintptr(unsafe.Pointer(desktop)),
			pidl,
			0, // no bind context
			uintptr(unsafe.Pointer(iidIShellFolder2)),
			uintptr(unsafe.Pointer(&bound)),
		)
		if failed(hr) {
			return nil, platformErr("BindToObject", hr)
		}
	}
	if bound == nil {
		return nil, &trash.PlatformError{Op: "BindToObject"}
	}
	return &winFolder{unk: bound}, nil
}

// shellFolder2Vtbl lays out IShellFolder2. The first thirteen slots are
// the IShellFolder prefix, so the same layout serves plain folder calls.
type shellFolder2Vtbl struct {
	vtblIUnknown
	ParseDisplayName      uintptr
	EnumObjects           uintptr
	BindToObject          uintptr
	BindToStorage         uintptr
	CompareIDs            uintptr
	CreateViewObject      uintptr
	GetAttributesOf       uintptr
	GetUIObjectOf         uintptr
	GetDisplayNameOf      uintptr
	SetNameOf             uintptr
	GetDefaultSearchGUID  uintptr
	EnumSearches          uintptr
	GetDefaultColumn      uintptr
	GetDefaultColumnState uintptr
	GetDetailsEx          uintptr
	GetDetailsOf          uintptr
	MapColumnToSCID       uintptr
}

type winFolder struct {
	unk *ole.IUnknown
}

func (f *winFolder) vtbl() *shellFolder2Vtbl {
	return (*shellFolder2Vtbl)(unsafe.Pointer(f.unk.RawVTable))
}

func (f *winFolder) Release() {
	f.unk.Release()
}

func (f *winFolder) EnumObjects() (Enum, HResult, error) {
	var enum *ole.IUnknown
	hr, _, _ := syscall.SyscallN(f.vtbl().EnumObjects,
		uintptr(unsafe.Pointer(f.unk)),
		0, // no owner window
		shcontfFolders|shcontfNonFolders,
		uintptr(unsafe.Pointer(&enum)),
	)
	if failed(hr) {
		return nil, HResult(uint32(hr)), platformErr("EnumObjects", hr)
	}
	if enum == nil {
		return nil, HResult(uint32(hr)), nil
	}
	return &winEnum{unk: enum}, HResult(uint32(hr)), nil
}

// strret receives a display name in one of three storage forms. Only the
// heap-string form is read here, via StrRetToStrW, which normalizes the
// other two.
type strret struct {
	uType uint32
	_     [4]byte // union alignment
	data  [260]byte
}

func (f *winFolder) DisplayNameOf(item ItemID, form NameForm) ([]uint16, error) {
	pidl := item.(*winItemID).pidl
	var sr strret
	hr, _, _ := syscall.SyscallN(f.vtbl().GetDisplayNameOf,
		uintptr(unsafe.Pointer(f.unk)),
		pidl,
		uintptr(form),
		uintptr(unsafe.Pointer(&sr)),
	)
	if failed(hr) {
		return nil, platformErr("GetDisplayNameOf", hr)
	}

	var pstr *uint16
	hr, _, _ = procStrRetToStrW.Call(
		uintptr(unsafe.Pointer(&sr)),
		pidl,
		uintptr(unsafe.Pointer(&pstr)),
	)
	if failed(hr) {
		return nil, platformErr("StrRetToStrW", hr)
	}
	buf := copyWide(pstr)
	windows.CoTaskMemFree(unsafe.Pointer(pstr))
	return buf, nil
}

// propertyKey matches the native SHCOLUMNID/PROPERTYKEY layout
type propertyKey struct {
	fmtid ole.GUID
	pid   uint32
}

func (f *winFolder) DetailsOf(item ItemID, key PropertyKey) (Variant, error) {
	pidl := item.(*winItemID).pidl
	scid := propertyKey{fmtid: *ole.NewGUID(key.FmtID), pid: key.PID}

	var v ole.VARIANT
	if err := ole.VariantInit(&v); err != nil {
		return nil, fmt.Errorf("variant init: %w", err)
	}
	hr, _, _ := syscall.SyscallN(f.vtbl().GetDetailsEx,
		uintptr(unsafe.Pointer(f.unk)),
		pidl,
		uintptr(unsafe.Pointer(&scid)),
		uintptr(unsafe.Pointer(&v)),
	)
	if failed(hr) {
		return nil, platformErr("GetDetailsEx", hr)
	}
	return &winVariant{v: v}, nil
}

type enumIDListVtbl struct {
	vtblIUnknown
	Next  uintptr
	Skip  uintptr
	Reset uintptr
	Clone uintptr
}

type winEnum struct {
	unk *ole.IUnknown
}

func (e *winEnum) vtbl() *enumIDListVtbl {
	return (*enumIDListVtbl)(unsafe.Pointer(e.unk.RawVTable))
}

func (e *winEnum) Next() (ItemID, bool, error) {
	var pidl uintptr
	hr, _, _ := syscall.SyscallN(e.vtbl().Next,
		uintptr(unsafe.Pointer(e.unk)),
		1,
		uintptr(unsafe.Pointer(&pidl)),
		0, // fetched count not needed for celt==1
	)
	if HResult(uint32(hr)) != StatusOK {
		if failed(hr) {
			return nil, false, platformErr("IEnumIDList.Next", hr)
		}
		// a secondary success status ends the sequence
		return nil, false, nil
	}
	return &winItemID{pidl: pidl}, true, nil
}

func (e *winEnum) Release() {
	e.unk.Release()
}

// winItemID owns one task-allocated item identifier
type winItemID struct {
	pidl uintptr
}

func (i *winItemID) Release() {
	windows.CoTaskMemFree(unsafe.Pointer(i.pidl))
}

type winVariant struct {
	v ole.VARIANT
}

func (w *winVariant) CoerceString() ([]uint16, error) {
	if err := w.changeType(ole.VT_BSTR); err != nil {
		return nil, err
	}
	return copyWide((*uint16)(unsafe.Pointer(uintptr(w.v.Val)))), nil
}

func (w *winVariant) CoerceDate() (float64, error) {
	if err := w.changeType(ole.VT_DATE); err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(w.v.Val)), nil
}

// changeType coerces the value in place; the original is freed by the
// platform on success
func (w *winVariant) changeType(vt ole.VT) error {
	hr, _, _ := procVariantChangeType.Call(
		uintptr(unsafe.Pointer(&w.v)),
		uintptr(unsafe.Pointer(&w.v)),
		0,
		uintptr(vt),
	)
	if failed(hr) {
		return platformErr("VariantChangeType", hr)
	}
	return nil
}

func (w *winVariant) Clear() {
	_ = w.v.Clear()
}

// winItem owns one resolved shell item
type winItem struct {
	unk *ole.IUnknown
}

func (i *winItem) Release() {
	i.unk.Release()
}

func (s *winShell) CreateItemFromPath(path string) (Item, error) {
	wide, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	var item *ole.IUnknown
	hr, _, _ := procSHCreateItemFromParsingName.Call(
		uintptr(unsafe.Pointer(wide)),
		0, // no bind context
		uintptr(unsafe.Pointer(iidIShellItem)),
		uintptr(unsafe.Pointer(&item)),
	)
	if failed(hr) {
		return nil, platformErr("SHCreateItemFromParsingName", hr)
	}
	if item == nil {
		return nil, &trash.PlatformError{Op: "SHCreateItemFromParsingName"}
	}
	return &winItem{unk: item}, nil
}

type fileOperationVtbl struct {
	vtblIUnknown
	Advise                  uintptr
	Unadvise                uintptr
	SetOperationFlags       uintptr
	SetProgressMessage      uintptr
	SetProgressDialog       uintptr
	SetProperties           uintptr
	SetOwnerWindow          uintptr
	ApplyPropertiesToItem   uintptr
	ApplyPropertiesToItems  uintptr
	RenameItem              uintptr
	RenameItems             uintptr
	MoveItem                uintptr
	MoveItems               uintptr
	CopyItem                uintptr
	CopyItems               uintptr
	DeleteItem              uintptr
	DeleteItems             uintptr
	NewItem                 uintptr
	PerformOperations       uintptr
	GetAnyOperationsAborted uintptr
}

type winFileOperation struct {
	unk *ole.IUnknown
}

func (s *winShell) NewFileOperation() (FileOperation, error) {
	var unk *ole.IUnknown
	hr, _, _ := procCoCreateInstance.Call(
		uintptr(unsafe.Pointer(clsidFileOperation)),
		0, // not aggregated
		clsctxAll,
		uintptr(unsafe.Pointer(iidIFileOperation)),
		uintptr(unsafe.Pointer(&unk)),
	)
	if failed(hr) {
		return nil, platformErr("CoCreateInstance(FileOperation)", hr)
	}
	if unk == nil {
		return nil, &trash.PlatformError{Op: "CoCreateInstance(FileOperation)"}
	}
	return &winFileOperation{unk: unk}, nil
}

func (o *winFileOperation) vtbl() *fileOperationVtbl {
	return (*fileOperationVtbl)(unsafe.Pointer(o.unk.RawVTable))
}

func (o *winFileOperation) SetFlags(flags uint32) error {
	hr, _, _ := syscall.SyscallN(o.vtbl().SetOperationFlags,
		uintptr(unsafe.Pointer(o.unk)),
		uintptr(flags),
	)
	if failed(hr) {
		return platformErr("SetOperationFlags", hr)
	}
	return nil
}

func (o *winFileOperation) Delete(item Item) error {
	hr, _, _ := syscall.SyscallN(o.vtbl().DeleteItem,
		uintptr(unsafe.Pointer(o.unk)),
		uintptr(unsafe.Pointer(item.(*winItem).unk)),
		0, // no progress sink
	)
	if failed(hr) {
		return platformErr("DeleteItem", hr)
	}
	return nil
}

func (o *winFileOperation) Perform() error {
	hr, _, _ := syscall.SyscallN(o.vtbl().PerformOperations,
		uintptr(unsafe.Pointer(o.unk)),
	)
	if failed(hr) {
		return platformErr("PerformOperations", hr)
	}
	return nil
}

func (o *winFileOperation) Release() {
	o.unk.Release()
}

// copyWide copies a NUL-terminated wide string into Go memory, terminator
// included, so the platform buffer can be freed immediately
func copyWide(p *uint16) []uint16 {
	if p == nil {
		return []uint16{0}
	}
	n := 0
	for *(*uint16)(unsafe.Add(unsafe.Pointer(p), n*2)) != 0 {
		n++
	}
	buf := make([]uint16, n+1)
	copy(buf, unsafe.Slice(p, n+1))
	return buf
}
