package recycle

import (
	"unicode/utf16"
)

// resourceLedger counts scoped shell resources so tests can assert that
// everything acquired was released exactly once, error paths included.
type resourceLedger struct {
	acquired int
	released int
}

func (l *resourceLedger) acquire() { l.acquired++ }
func (l *resourceLedger) release() { l.released++ }

func (l *resourceLedger) outstanding() int { return l.acquired - l.released }

// fakeEntry describes one recycled item the fake folder exposes
type fakeEntry struct {
	parseName    string
	inFolderName string
	originalPath string
	dateDeleted  float64 // automation date

	// rawInFolderName, when set, is returned verbatim for the in-folder
	// name instead of encoding inFolderName
	rawInFolderName []uint16

	nameErr   error            // fails every display-name request
	detailErr map[uint32]error // property retrieval failure, by property index
	coerceErr map[uint32]error // property coercion failure, by property index
}

type fakeShell struct {
	ledger resourceLedger

	initialized bool
	initErr     error

	folder  *fakeFolder
	bindErr error

	opErr      error
	performErr error // injected into every created operation
	ops        []*fakeOperation

	resolveErrs map[string]error
	resolved    []string // paths seen by CreateItemFromPath, in order
}

func (s *fakeShell) EnsureInitialized() error {
	if s.initErr != nil {
		return s.initErr
	}
	s.initialized = true
	return nil
}

func (s *fakeShell) BindToTrash() (Folder, error) {
	if s.bindErr != nil {
		return nil, s.bindErr
	}
	s.ledger.acquire()
	s.folder.shell = s
	return s.folder, nil
}

func (s *fakeShell) CreateItemFromPath(path string) (Item, error) {
	s.resolved = append(s.resolved, path)
	if err := s.resolveErrs[path]; err != nil {
		return nil, err
	}
	s.ledger.acquire()
	return &fakeItem{ledger: &s.ledger, path: path}, nil
}

func (s *fakeShell) NewFileOperation() (FileOperation, error) {
	if s.opErr != nil {
		return nil, s.opErr
	}
	s.ledger.acquire()
	op := &fakeOperation{ledger: &s.ledger, performErr: s.performErr}
	s.ops = append(s.ops, op)
	return op, nil
}

func (s *fakeShell) Release() {
	s.initialized = false
}

type fakeFolder struct {
	shell   *fakeShell
	entries []fakeEntry

	// enumStatus is returned from EnumObjects; the zero value is StatusOK.
	// The iterator is handed out for any success status, so tests can
	// prove the caller rejects secondary success codes on its own.
	enumStatus HResult
	enumErr    error
}

func (f *fakeFolder) EnumObjects() (Enum, HResult, error) {
	if f.enumErr != nil {
		return nil, f.enumStatus, f.enumErr
	}
	f.shell.ledger.acquire()
	return &fakeEnum{folder: f}, f.enumStatus, nil
}

func (f *fakeFolder) DisplayNameOf(item ItemID, form NameForm) ([]uint16, error) {
	entry := f.entries[item.(*fakeItemID).index]
	if entry.nameErr != nil {
		return nil, entry.nameErr
	}
	if form == NameInFolder && entry.rawInFolderName != nil {
		return entry.rawInFolderName, nil
	}
	name := entry.parseName
	if form == NameInFolder {
		name = entry.inFolderName
	}
	return encodeWide(name), nil
}

func (f *fakeFolder) DetailsOf(item ItemID, key PropertyKey) (Variant, error) {
	entry := f.entries[item.(*fakeItemID).index]
	if err := entry.detailErr[key.PID]; err != nil {
		return nil, err
	}
	f.shell.ledger.acquire()
	return &fakeVariant{ledger: &f.shell.ledger, entry: entry, pid: key.PID}, nil
}

func (f *fakeFolder) Release() {
	f.shell.ledger.release()
}

type fakeEnum struct {
	folder *fakeFolder
	idx    int
}

func (e *fakeEnum) Next() (ItemID, bool, error) {
	if e.idx >= len(e.folder.entries) {
		return nil, false, nil
	}
	i := e.idx
	e.idx++
	e.folder.shell.ledger.acquire()
	return &fakeItemID{ledger: &e.folder.shell.ledger, index: i}, true, nil
}

func (e *fakeEnum) Release() {
	e.folder.shell.ledger.release()
}

type fakeItemID struct {
	ledger *resourceLedger
	index  int
}

func (i *fakeItemID) Release() { i.ledger.release() }

type fakeVariant struct {
	ledger *resourceLedger
	entry  fakeEntry
	pid    uint32
}

func (v *fakeVariant) CoerceString() ([]uint16, error) {
	if err := v.entry.coerceErr[v.pid]; err != nil {
		return nil, err
	}
	return encodeWide(v.entry.originalPath), nil
}

func (v *fakeVariant) CoerceDate() (float64, error) {
	if err := v.entry.coerceErr[v.pid]; err != nil {
		return 0, err
	}
	return v.entry.dateDeleted, nil
}

func (v *fakeVariant) Clear() { v.ledger.release() }

type fakeItem struct {
	ledger *resourceLedger
	path   string
}

func (i *fakeItem) Release() { i.ledger.release() }

type fakeOperation struct {
	ledger *resourceLedger

	flags      uint32
	flagsSet   int
	targets    []string // staged delete targets, in order
	performed  int
	performErr error
}

func (o *fakeOperation) SetFlags(flags uint32) error {
	o.flags = flags
	o.flagsSet++
	return nil
}

func (o *fakeOperation) Delete(item Item) error {
	o.targets = append(o.targets, item.(*fakeItem).path)
	return nil
}

func (o *fakeOperation) Perform() error {
	o.performed++
	return o.performErr
}

func (o *fakeOperation) Release() { o.ledger.release() }

// encodeWide converts a string to NUL-terminated UTF-16 code units
func encodeWide(s string) []uint16 {
	return append(utf16.Encode([]rune(s)), 0)
}

// unixToVariantTime is the inverse of the production conversion, used to
// stage fixture dates. 25569 is the automation-date value of the Unix epoch.
func unixToVariantTime(unix int64) float64 {
	return float64(unix)/86400 + 25569
}
