package fdb

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// DuplicateGroup represents a group of files with the same hash
type DuplicateGroup struct {
	Hash  string   `json:"hash"`
	Files []string `json:"files"`
	Count int      `json:"count"`
}

// FindDuplicates returns every record whose hash occurs at least twice,
// bucket by bucket in index order
func FindDuplicates(inv Inventory, logger *log.Logger) Inventory {
	logger = orDiscard(logger)

	idx := NewHashIndex(inv, DatabaseContext)
	dupes := make(Inventory, 0)
	idx.ForEach(func(_ string, records []Record) bool {
		if len(records) > 1 {
			dupes = append(dupes, records...)
		}
		return true
	})

	if len(inv) == 0 {
		logger.Info("Number of duplicates: 0")
	} else {
		logger.Infof("Number of duplicates: %d (%s)", len(dupes), percent(len(dupes), len(inv)))
	}
	return dupes
}

// DuplicateGroups returns the buckets of inv with two or more members
func DuplicateGroups(inv Inventory) []DuplicateGroup {
	var result []DuplicateGroup
	NewHashIndex(inv, DatabaseContext).ForEach(func(hash string, records []Record) bool {
		if len(records) > 1 {
			files := make([]string, len(records))
			for i, rec := range records {
				files[i] = rec.Path
			}
			result = append(result, DuplicateGroup{
				Hash:  hash,
				Files: files,
				Count: len(files),
			})
		}
		return true
	})
	return result
}

// WriteDuplicateGroups prints groups in one of the output formats
// accepted by ValidateOutputFormat
func WriteDuplicateGroups(w io.Writer, groups []DuplicateGroup, format string) error {
	switch format {
	case "", "human":
		if len(groups) == 0 {
			_, err := fmt.Fprintln(w, "No duplicate files found.")
			return err
		}
		files := 0
		for _, group := range groups {
			files += group.Count
		}
		if _, err := fmt.Fprintf(w, "Found %d groups of duplicate files (%d files):\n\n", len(groups), files); err != nil {
			return err
		}
		for i, group := range groups {
			if _, err := fmt.Fprintf(w, "Group %d (hash: %s, %d files):\n", i+1, group.Hash, group.Count); err != nil {
				return err
			}
			for _, file := range group.Files {
				if _, err := fmt.Fprintf(w, "  %s\n", file); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		return nil

	case "json":
		if groups == nil {
			groups = []DuplicateGroup{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(groups)

	case "fdupes":
		// one path per line, groups separated by a blank line
		for i, group := range groups {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			for _, file := range group.Files {
				if _, err := fmt.Fprintln(w, file); err != nil {
					return err
				}
			}
		}
		return nil

	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json, fdupes)", format)
	}
}
