package fdb

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SearchOptions filters records of an inventory; empty fields match everything
type SearchOptions struct {
	Pattern      string // basename glob
	PathPrefix   string // path prefix filter
	HashPrefix   string // hash prefix filter, case-insensitive
	ExactSize    *int64 // exact file size filter
	DegradedOnly bool   // show only unreadable entries
}

// Validate checks the glob pattern before any record is visited
func (opts SearchOptions) Validate() error {
	if opts.Pattern == "" {
		return nil
	}
	if _, err := filepath.Match(opts.Pattern, ""); err != nil {
		return usageError("search", "", "invalid pattern %s: %v", opts.Pattern, err)
	}
	return nil
}

// Matches reports whether rec passes every filter in opts
func (opts SearchOptions) Matches(rec Record) (bool, error) {
	if rec.Degraded != opts.DegradedOnly {
		return false, nil
	}

	if opts.Pattern != "" {
		matched, err := filepath.Match(opts.Pattern, rec.Name())
		if err != nil {
			return false, fmt.Errorf("invalid pattern %s: %w", opts.Pattern, err)
		}
		if !matched {
			return false, nil
		}
	}

	if opts.PathPrefix != "" && !strings.HasPrefix(rec.Path, opts.PathPrefix) {
		return false, nil
	}

	// degraded records carry no hash or size to compare
	if rec.Degraded {
		return opts.HashPrefix == "" && opts.ExactSize == nil, nil
	}

	if opts.HashPrefix != "" && !strings.HasPrefix(rec.Hash, strings.ToLower(opts.HashPrefix)) {
		return false, nil
	}

	if opts.ExactSize != nil && rec.Size != *opts.ExactSize {
		return false, nil
	}

	return true, nil
}

// Search returns the records of inv matching opts, in inventory order
func Search(inv Inventory, opts SearchOptions) (Inventory, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	result := make(Inventory, 0)
	for _, rec := range inv {
		ok, err := opts.Matches(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, rec)
		}
	}
	return result, nil
}
