package recycle

import (
	"errors"
	"testing"
	"time"

	"github.com/recyc-cli/recyc/internal/trash"
)

func newTestStorage(t *testing.T, folder *fakeFolder) (*Storage, *fakeShell) {
	t.Helper()
	shell := &fakeShell{folder: folder}
	return newStorageWithShell(shell, trash.NewDefaultConfig()), shell
}

func assertBalanced(t *testing.T, shell *fakeShell) {
	t.Helper()
	if n := shell.ledger.outstanding(); n != 0 {
		t.Errorf("resource ledger not balanced: %d acquired, %d released",
			shell.ledger.acquired, shell.ledger.released)
	}
}

func TestList(t *testing.T) {
	docDeleted := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	imgDeleted := time.Date(2021, time.June, 15, 12, 0, 0, 0, time.UTC)

	folder := &fakeFolder{
		entries: []fakeEntry{
			{
				parseName:    `C:\$Recycle.Bin\S-1-5-21-1000\$R1A2B3C.txt`,
				inFolderName: "doc.txt",
				originalPath: `C:\Users\me\Documents`,
				dateDeleted:  unixToVariantTime(docDeleted.Unix()),
			},
			{
				parseName:    `C:\$Recycle.Bin\S-1-5-21-1000\$RX9Y8Z7.png`,
				inFolderName: "img.png",
				originalPath: `D:\photos`,
				dateDeleted:  unixToVariantTime(imgDeleted.Unix()),
			},
		},
	}
	storage, shell := newTestStorage(t, folder)

	files, err := storage.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}

	doc := files[0]
	if doc.ID != `C:\$Recycle.Bin\S-1-5-21-1000\$R1A2B3C.txt` {
		t.Errorf("unexpected ID: %s", doc.ID)
	}
	if doc.Name != "doc.txt" {
		t.Errorf("unexpected Name: %s", doc.Name)
	}
	if doc.OriginalPath != `C:\Users\me\Documents` {
		t.Errorf("unexpected OriginalPath: %s", doc.OriginalPath)
	}
	if !doc.DeletedAt.Equal(docDeleted) {
		t.Errorf("expected DeletedAt %v, got %v", docDeleted, doc.DeletedAt)
	}
	if doc.GetStorage() != storage {
		t.Error("file not bound to its storage")
	}

	img := files[1]
	if img.Name != "img.png" {
		t.Errorf("unexpected Name: %s", img.Name)
	}
	if !img.DeletedAt.Equal(imgDeleted) {
		t.Errorf("expected DeletedAt %v, got %v", imgDeleted, img.DeletedAt)
	}

	assertBalanced(t, shell)
}

func TestListEmpty(t *testing.T) {
	storage, shell := newTestStorage(t, &fakeFolder{})

	files, err := storage.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %d", len(files))
	}
	assertBalanced(t, shell)
}

func TestListRejectsSecondarySuccess(t *testing.T) {
	// The iterator is handed out and usable, but the status is not the
	// primary success code. Listing must fail anyway.
	folder := &fakeFolder{
		entries:    []fakeEntry{{parseName: `C:\x`, inFolderName: "x"}},
		enumStatus: StatusFalse,
	}
	storage, shell := newTestStorage(t, folder)

	_, err := storage.List()
	if err == nil {
		t.Fatal("expected an error for a secondary success status")
	}
	var perr *trash.PlatformError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PlatformError, got %T: %v", err, err)
	}
	if perr.Op != "EnumObjects" {
		t.Errorf("unexpected op: %s", perr.Op)
	}
	if perr.Status != uint32(StatusFalse) {
		t.Errorf("expected status 0x%08X, got 0x%08X", uint32(StatusFalse), perr.Status)
	}
	assertBalanced(t, shell)
}

func TestListReleasesResourcesOnItemErrors(t *testing.T) {
	boom := &trash.PlatformError{Op: "GetDetailsEx", Status: 0x80004005}

	tests := []struct {
		name  string
		entry fakeEntry
	}{
		{
			name:  "display name fails",
			entry: fakeEntry{nameErr: boom},
		},
		{
			name: "origin retrieval fails",
			entry: fakeEntry{
				parseName: `C:\a`, inFolderName: "a",
				detailErr: map[uint32]error{KeyOriginalLocation.PID: boom},
			},
		},
		{
			name: "origin coercion fails",
			entry: fakeEntry{
				parseName: `C:\a`, inFolderName: "a",
				coerceErr: map[uint32]error{KeyOriginalLocation.PID: boom},
			},
		},
		{
			name: "date retrieval fails",
			entry: fakeEntry{
				parseName: `C:\a`, inFolderName: "a", originalPath: `C:\`,
				detailErr: map[uint32]error{KeyDateDeleted.PID: boom},
			},
		},
		{
			name: "date coercion fails",
			entry: fakeEntry{
				parseName: `C:\a`, inFolderName: "a", originalPath: `C:\`,
				coerceErr: map[uint32]error{KeyDateDeleted.PID: boom},
			},
		},
		{
			name: "date out of range",
			entry: fakeEntry{
				parseName: `C:\a`, inFolderName: "a", originalPath: `C:\`,
				dateDeleted: 4e6, // far beyond year 9999
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A healthy first entry proves the failure happens mid-listing,
			// after some resources were already acquired and released.
			folder := &fakeFolder{
				entries: []fakeEntry{
					{
						parseName:    `C:\ok`,
						inFolderName: "ok",
						originalPath: `C:\Users`,
						dateDeleted:  unixToVariantTime(1600000000),
					},
					tt.entry,
				},
			}
			storage, shell := newTestStorage(t, folder)

			if _, err := storage.List(); err == nil {
				t.Fatal("expected an error")
			}
			assertBalanced(t, shell)
		})
	}
}

func TestListInvalidName(t *testing.T) {
	folder := &fakeFolder{
		entries: []fakeEntry{{
			parseName:       `C:\$Recycle.Bin\$Rbroken`,
			rawInFolderName: []uint16{0xD800, 0}, // lone high surrogate
			originalPath:    `C:\Users`,
			dateDeleted:     unixToVariantTime(1600000000),
		}},
	}
	storage, shell := newTestStorage(t, folder)

	_, err := storage.List()
	if err == nil {
		t.Fatal("expected an error")
	}
	var nerr *trash.InvalidNameError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected InvalidNameError, got %T: %v", err, err)
	}
	if len(nerr.Raw) != 1 || nerr.Raw[0] != 0xD800 {
		t.Errorf("unexpected raw units: %v", nerr.Raw)
	}
	assertBalanced(t, shell)
}

func TestPut(t *testing.T) {
	storage, shell := newTestStorage(t, &fakeFolder{})

	paths := []string{`C:\a.txt`, `C:\dir\b.txt`, `D:\c.log`}
	if err := storage.Put(paths...); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(shell.ops) != 1 {
		t.Fatalf("expected exactly one batched operation, got %d", len(shell.ops))
	}
	op := shell.ops[0]
	if op.flagsSet != 1 || op.flags != deleteFlags {
		t.Errorf("expected flags 0x%04X set once, got 0x%04X set %d times",
			deleteFlags, op.flags, op.flagsSet)
	}
	if len(op.targets) != len(paths) {
		t.Fatalf("expected %d staged targets, got %d", len(paths), len(op.targets))
	}
	for i, want := range paths {
		if op.targets[i] != want {
			t.Errorf("target %d: expected %s, got %s", i, want, op.targets[i])
		}
	}
	if op.performed != 1 {
		t.Errorf("expected exactly one perform, got %d", op.performed)
	}
	assertBalanced(t, shell)
}

func TestPutStripsExtendedPrefix(t *testing.T) {
	storage, shell := newTestStorage(t, &fakeFolder{})

	err := storage.Put(`\\?\C:\temp\a.txt`, `C:\temp\b.txt`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{`C:\temp\a.txt`, `C:\temp\b.txt`}
	for i, w := range want {
		if shell.resolved[i] != w {
			t.Errorf("resolved path %d: expected %s, got %s", i, w, shell.resolved[i])
		}
	}
	assertBalanced(t, shell)
}

func TestPutAbortsBeforePerformOnResolutionFailure(t *testing.T) {
	storage, shell := newTestStorage(t, &fakeFolder{})
	shell.resolveErrs = map[string]error{
		`C:\b.txt`: &trash.PlatformError{Op: "SHCreateItemFromParsingName", Status: 0x80070002},
	}

	err := storage.Put(`C:\a.txt`, `C:\b.txt`, `C:\c.txt`)
	if err == nil {
		t.Fatal("expected an error")
	}

	var serr *trash.StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StorageError, got %T: %v", err, err)
	}
	if serr.Path != `C:\b.txt` {
		t.Errorf("expected failing path in error, got %q", serr.Path)
	}
	var perr *trash.PlatformError
	if !errors.As(err, &perr) {
		t.Fatalf("expected wrapped PlatformError, got %v", err)
	}

	// staging stops at the failing path and nothing executes
	if len(shell.resolved) != 2 {
		t.Errorf("expected resolution to stop after the failure, saw %v", shell.resolved)
	}
	if op := shell.ops[0]; op.performed != 0 {
		t.Errorf("expected no perform after a staging failure, got %d", op.performed)
	}
	assertBalanced(t, shell)
}

func TestPutPerformFailure(t *testing.T) {
	storage, shell := newTestStorage(t, &fakeFolder{})
	shell.performErr = &trash.PlatformError{Op: "PerformOperations", Status: 0x80270021}

	err := storage.Put(`C:\a.txt`)
	if err == nil {
		t.Fatal("expected an error")
	}
	var perr *trash.PlatformError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PlatformError, got %T: %v", err, err)
	}
	if op := shell.ops[0]; op.performed != 1 {
		t.Errorf("expected exactly one perform attempt, got %d", op.performed)
	}
	assertBalanced(t, shell)
}

func TestRestoreNotImplemented(t *testing.T) {
	storage, _ := newTestStorage(t, &fakeFolder{})
	file := &trash.File{Name: "doc.txt"}

	if err := storage.Restore(file, ""); !errors.Is(err, trash.ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
	if err := storage.Remove(file); !errors.Is(err, trash.ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
}

func TestInfo(t *testing.T) {
	storage, _ := newTestStorage(t, &fakeFolder{})

	info := storage.Info()
	if info.Type != trash.StorageTypeRecycleBin {
		t.Errorf("unexpected type: %v", info.Type)
	}
	if info.Location != trash.LocationSystem {
		t.Errorf("unexpected location: %v", info.Location)
	}
	if !info.Available {
		t.Error("expected storage to be available")
	}
}
