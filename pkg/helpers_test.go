package fdb

import (
	"io/fs"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

// newTree creates an in-memory filesystem holding files (path -> content)
func newTree(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	for path, content := range files {
		require.NoError(t, util.WriteFile(fsys, path, []byte(content), 0644))
	}
	return fsys
}

// mustIgnore parses an ignore list or fails the test
func mustIgnore(t *testing.T, list string) IgnoreSet {
	t.Helper()
	set, err := ParseIgnoreList(list)
	require.NoError(t, err)
	return set
}

// faultFS injects errors for chosen paths on top of another filesystem
type faultFS struct {
	billy.Filesystem

	mu      sync.Mutex
	denied  map[string]bool // Open fails with a permission error
	vanish  map[string]bool // Stat fails as if the file was removed
	opened  int
	maxOpen int
	open    int
}

func newFaultFS(base billy.Filesystem) *faultFS {
	return &faultFS{
		Filesystem: base,
		denied:     make(map[string]bool),
		vanish:     make(map[string]bool),
	}
}

func (f *faultFS) Open(filename string) (billy.File, error) {
	if f.denied[filename] {
		return nil, &os.PathError{Op: "open", Path: filename, Err: fs.ErrPermission}
	}
	file, err := f.Filesystem.Open(filename)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.opened++
	f.open++
	if f.open > f.maxOpen {
		f.maxOpen = f.open
	}
	f.mu.Unlock()
	return &trackedFile{File: file, fs: f}, nil
}

func (f *faultFS) Stat(filename string) (os.FileInfo, error) {
	if f.vanish[filename] {
		return nil, &os.PathError{Op: "stat", Path: filename, Err: fs.ErrNotExist}
	}
	return f.Filesystem.Stat(filename)
}

// openFiles returns the number of files not yet closed
func (f *faultFS) openFiles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// trackedFile counts closes for its faultFS
type trackedFile struct {
	billy.File
	fs   *faultFS
	once sync.Once
}

func (t *trackedFile) Close() error {
	t.once.Do(func() {
		t.fs.mu.Lock()
		t.fs.open--
		t.fs.mu.Unlock()
	})
	return t.File.Close()
}

// sampleInventory builds records with the given path -> hex hash pairs, in order
func sampleInventory(pairs ...string) Inventory {
	ts := time.Date(2024, 5, 17, 10, 30, 0, 123456789, time.UTC)
	inv := make(Inventory, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		inv = append(inv, Record{
			Path:      pairs[i],
			Extension: SplitExt(pairs[i]),
			Created:   ts,
			Modified:  ts,
			Size:      int64(len(pairs[i])),
			Hash:      pairs[i+1],
		})
	}
	return inv
}
