package fdb

import (
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// hashBucket holds every record sharing one hash key, in insertion order
type hashBucket struct {
	hash    string
	records []Record
}

// bucketRef is the skiplist item; buckets are mutated through the pointer
// while the inventory is being grouped
type bucketRef struct {
	bucket *hashBucket
}

// HashIndex groups inventory records by hash key. Buckets iterate in
// ascending key order; records keep insertion order within a bucket.
type HashIndex struct {
	skiplist *zcsl.ZeroCopySkiplist[bucketRef, string, string]
	context  string
	records  int
}

// newBucketSkiplist creates an empty skiplist keyed by hash string
func newBucketSkiplist(maxLevels int) *zcsl.ZeroCopySkiplist[bucketRef, string, string] {
	if maxLevels < 8 {
		maxLevels = 16
	}

	getKeyFromItem := func(ref *bucketRef) string {
		if ref.bucket == nil {
			return ""
		}
		return ref.bucket.hash
	}

	getItemSize := func(ref *bucketRef) int {
		if ref.bucket == nil {
			return 0
		}
		return len(ref.bucket.records)
	}

	return zcsl.MakeZeroCopySkiplist[bucketRef, string, string](
		maxLevels,
		getKeyFromItem,
		getItemSize,
		strings.Compare,
	)
}

// NewHashIndex groups inv in a single pass. context labels the buckets with
// the inventory they came from (ScanContext, SourceContext...).
func NewHashIndex(inv Inventory, context string) *HashIndex {
	idx := &HashIndex{
		skiplist: newBucketSkiplist(16),
		context:  context,
	}
	for _, rec := range inv {
		idx.add(rec)
	}
	return idx
}

// add appends rec to the bucket of its hash key, creating the bucket on first use
func (idx *HashIndex) add(rec Record) {
	key := rec.HashKey()
	if itemPtr, _ := idx.skiplist.Find(key); itemPtr != nil {
		ref := itemPtr.Item()
		ref.bucket.records = append(ref.bucket.records, rec)
	} else {
		idx.skiplist.Insert(&bucketRef{bucket: &hashBucket{hash: key, records: []Record{rec}}}, idx.context)
	}
	idx.records++
}

// Len returns the number of distinct hash keys
func (idx *HashIndex) Len() int {
	return idx.skiplist.Length()
}

// RecordCount returns the number of records across all buckets
func (idx *HashIndex) RecordCount() int {
	return idx.records
}

// Context returns the label given at construction
func (idx *HashIndex) Context() string {
	return idx.context
}

// Lookup returns the records sharing hash, or nil
func (idx *HashIndex) Lookup(hash string) []Record {
	itemPtr, _ := idx.skiplist.Find(hash)
	if itemPtr == nil {
		return nil
	}
	return itemPtr.Item().bucket.records
}

// Has reports whether any record carries hash
func (idx *HashIndex) Has(hash string) bool {
	itemPtr, _ := idx.skiplist.Find(hash)
	return itemPtr != nil
}

// ForEach iterates buckets in key order until callback returns false.
// The slice passed to callback must not be modified.
func (idx *HashIndex) ForEach(callback func(hash string, records []Record) bool) {
	for current := idx.skiplist.First(); current != nil; current = current.Next() {
		ref := current.Item()
		if ref == nil || ref.bucket == nil {
			continue
		}
		if !callback(ref.bucket.hash, ref.bucket.records) {
			break
		}
	}
}

// Records flattens the index back into an inventory, bucket by bucket
func (idx *HashIndex) Records() Inventory {
	out := make(Inventory, 0, idx.records)
	idx.ForEach(func(_ string, records []Record) bool {
		out = append(out, records...)
		return true
	})
	return out
}
