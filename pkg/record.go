package fdb

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Record is one inventory row describing a single file
type Record struct {
	Path      string
	Extension string
	Created   time.Time
	Modified  time.Time
	Size      int64
	Hash      string // lowercase hex
	Degraded  bool   // file existed but could not be read; only Path is meaningful
}

// Inventory is an ordered sequence of records in traversal order
type Inventory []Record

// NewRecord builds a fully populated record for path
func NewRecord(path string, created, modified time.Time, size int64, digest []byte) Record {
	return Record{
		Path:      path,
		Extension: SplitExt(path),
		Created:   created,
		Modified:  modified,
		Size:      size,
		Hash:      hex.EncodeToString(digest),
	}
}

// DegradedRecord builds the placeholder record for an unreadable file
func DegradedRecord(path string) Record {
	return Record{Path: path, Degraded: true}
}

// HashKey is the bucket key of the record; degraded records share NotAvailable
func (r Record) HashKey() string {
	if r.Degraded {
		return NotAvailable
	}
	return r.Hash
}

// Digest decodes the stored hex hash back into raw bytes
func (r Record) Digest() ([]byte, error) {
	if r.Degraded {
		return nil, fmt.Errorf("record %s has no hash (unreadable file)", r.Path)
	}
	digest, err := hex.DecodeString(r.Hash)
	if err != nil {
		return nil, fmt.Errorf("record %s has malformed hash %q: %w", r.Path, r.Hash, err)
	}
	return digest, nil
}

// Name returns the basename of the record's path
func (r Record) Name() string {
	return filepath.Base(r.Path)
}

// Paths returns the paths of every record, in order
func (inv Inventory) Paths() []string {
	paths := make([]string, len(inv))
	for i, r := range inv {
		paths[i] = r.Path
	}
	return paths
}

// Complete counts records that are not degraded
func (inv Inventory) Complete() int {
	n := 0
	for _, r := range inv {
		if !r.Degraded {
			n++
		}
	}
	return n
}

// SplitExt returns the extension of the last path element, dot included.
// Leading dots of the basename do not start an extension, so ".bashrc" has none.
func SplitExt(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	stripped := strings.TrimLeft(base, ".")
	idx := strings.LastIndexByte(stripped, '.')
	if idx < 0 {
		return ""
	}
	return stripped[idx:]
}
