package fdb

import (
	"context"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
)

// AggregateResult is an order-independent fingerprint of a tree or inventory
type AggregateResult struct {
	Digest  []byte
	Subject string // directory or database path the digest describes
	Count   int    // number of digests folded in
}

// Hex returns the lowercase hex form of the digest
func (r AggregateResult) Hex() string {
	return hex.EncodeToString(r.Digest)
}

// String formats the result as "<hex> *<subject> (<count>)"
func (r AggregateResult) String() string {
	return fmt.Sprintf("%s *%s (%d)", r.Hex(), r.Subject, r.Count)
}

// AggregateDigest pools the raw bytes of every digest, sorts them as
// individual bytes and hashes the result. Digest boundaries are not kept,
// so any permutation of digests yields the same output.
func AggregateDigest(digests [][]byte, algorithm *HashAlgorithm) []byte {
	total := 0
	for _, d := range digests {
		total += len(d)
	}
	pooled := make([]byte, 0, total)
	for _, d := range digests {
		pooled = append(pooled, d...)
	}
	slices.Sort(pooled)
	return HashBytes(pooled, algorithm)
}

// AggregateDirectory scans root and folds the digest of every file into one
// fingerprint. Unlike Builder.Build any unreadable file is fatal here.
func AggregateDirectory(ctx context.Context, fsys billy.Filesystem, root string, ignore IgnoreSet, algorithm *HashAlgorithm, logger *log.Logger) (AggregateResult, error) {
	logger = orDiscard(logger)
	logger.Info("Hashing directory", "path", root)

	scanned, err := NewScanner(fsys, root, logger).Scan(ctx, ignore)
	if err != nil {
		return AggregateResult{}, err
	}

	digests := make([][]byte, 0, len(scanned))
	for i, sp := range scanned {
		logger.With("path", sp.Path).Infof("Processing (%d/%d, %s)", i+1, len(scanned), percent(i+1, len(scanned)))
		digest, err := HashFile(ctx, fsys, sp.Path, algorithm)
		if err != nil {
			return AggregateResult{}, classifyFileError("hash", sp.Path, err)
		}
		digests = append(digests, digest)
	}

	return AggregateResult{
		Digest:  AggregateDigest(digests, algorithm),
		Subject: root,
		Count:   len(digests),
	}, nil
}

// AggregateInventory folds the persisted hashes of inv into one fingerprint.
// Degraded or malformed hashes, or hashes made by another algorithm, are an error.
func AggregateInventory(inv Inventory, subject string, algorithm *HashAlgorithm) (AggregateResult, error) {
	algorithm = defaultAlgorithm(algorithm)
	digests := make([][]byte, 0, len(inv))
	for _, rec := range inv {
		digest, err := rec.Digest()
		if err != nil {
			return AggregateResult{}, &Error{Kind: KindFatalIO, Op: "aggregate", Path: subject, Err: err}
		}
		if len(digest) != algorithm.Size {
			err := fmt.Errorf("record %s has a %d-byte hash, %s digests are %d bytes", rec.Path, len(digest), algorithm.Name, algorithm.Size)
			return AggregateResult{}, &Error{Kind: KindFatalIO, Op: "aggregate", Path: subject, Err: err}
		}
		digests = append(digests, digest)
	}

	return AggregateResult{
		Digest:  AggregateDigest(digests, algorithm),
		Subject: subject,
		Count:   len(digests),
	}, nil
}
