package fdb

import (
	"github.com/charmbracelet/log"
)

// Diff returns the records of src whose hash does not occur in dst. Every
// record of an absent bucket is kept, duplicates included; those buckets log
// an integrity warning.
func Diff(src, dst Inventory, logger *log.Logger) Inventory {
	logger = orDiscard(logger)

	srcIdx := NewHashIndex(src, SourceContext)
	dstIdx := NewHashIndex(dst, DestinationContext)

	result := make(Inventory, 0)
	srcIdx.ForEach(func(hash string, records []Record) bool {
		if dstIdx.Has(hash) {
			return true
		}
		if len(records) > 1 {
			logger.Warn("Duplicates were found in source database", "hash", hash, "count", len(records))
		}
		result = append(result, records...)
		return true
	})

	logger.Infof("Number of differences: %d", len(result))
	return result
}
