package fdb

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
)

// Builder creates an inventory for a directory tree
type Builder struct {
	FS        billy.Filesystem
	Root      string
	Algorithm *HashAlgorithm // MD5 when nil
	Workers   int            // hashing pool size; 0 or 1 hashes sequentially
	Logger    *log.Logger
}

// fileResult is the outcome of processing one scanned path. Kind is zero on
// success, KindPermission for a degraded record, KindFatalIO otherwise.
type fileResult struct {
	Record Record
	Kind   ErrorKind
	Err    error
}

// hashJob is one scanned path queued for the hashing pool
type hashJob struct {
	Index int
	Path  ScannedPath
}

// Build scans the tree and hashes every candidate file. Permission errors
// produce degraded records; any other error aborts the build.
func (b *Builder) Build(ctx context.Context, ignore IgnoreSet) (Inventory, error) {
	logger := orDiscard(b.Logger)
	logger.Info("Creating database for directory", "path", b.Root)

	scanned, err := NewScanner(b.FS, b.Root, logger).Scan(ctx, ignore)
	if err != nil {
		return nil, err
	}
	total := len(scanned)
	logger.Info("Number of files in directory", "count", total)

	var results []fileResult
	if b.Workers > 1 && total > 1 {
		results = b.processParallel(ctx, scanned)
	} else {
		results, err = b.processSequential(ctx, scanned)
		if err != nil {
			return nil, err
		}
	}

	inv := make(Inventory, 0, total)
	processed := 0
	for i, res := range results {
		switch res.Kind {
		case 0:
			inv = append(inv, res.Record)
			processed++
		case KindPermission:
			logger.Warn("File permission error", "path", scanned[i].Path)
			inv = append(inv, DegradedRecord(scanned[i].Path))
		default:
			if errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
				// cancelled by the pool after a fatal error further on
				continue
			}
			return nil, res.Err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if processed != total {
		logger.Warnf("Not all files were processed (%d/%d)!", processed, total)
	}
	return inv, nil
}

// processSequential handles each path in turn and stops at the first fatal error
func (b *Builder) processSequential(ctx context.Context, scanned []ScannedPath) ([]fileResult, error) {
	results := make([]fileResult, len(scanned))
	for i, sp := range scanned {
		b.logProgress(i, len(scanned), sp.Path)
		results[i] = b.processFile(ctx, sp)
		if results[i].Kind == KindFatalIO {
			return nil, results[i].Err
		}
	}
	return results, nil
}

// processParallel fans paths out to a bounded pool. Each result lands in the
// slot of its traversal index so completion order never leaks into the output.
func (b *Builder) processParallel(parent context.Context, scanned []ScannedPath) []fileResult {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	results := make([]fileResult, len(scanned))
	jobs := make(chan hashJob, b.Workers*2)

	var wg sync.WaitGroup
	for w := 0; w < b.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				b.logProgress(job.Index, len(scanned), job.Path.Path)
				res := b.processFile(ctx, job.Path)
				results[job.Index] = res
				if res.Kind == KindFatalIO {
					cancel()
				}
			}
		}()
	}

	submitted := 0
submit:
	for i, sp := range scanned {
		select {
		case jobs <- hashJob{Index: i, Path: sp}:
			submitted++
		case <-ctx.Done():
			break submit
		}
	}
	close(jobs)
	wg.Wait()

	// paths never submitted carry the cancellation
	for i := submitted; i < len(scanned); i++ {
		results[i] = fileResult{Kind: KindFatalIO, Err: ctx.Err()}
	}
	return results
}

// processFile stats and hashes one path
func (b *Builder) processFile(ctx context.Context, sp ScannedPath) fileResult {
	info, err := b.FS.Stat(sp.Path)
	if err != nil {
		e := classifyFileError("stat", sp.Path, err)
		return fileResult{Kind: e.Kind, Err: e}
	}

	digest, err := HashFile(ctx, b.FS, sp.Path, b.Algorithm)
	if err != nil {
		e := classifyFileError("hash", sp.Path, err)
		return fileResult{Kind: e.Kind, Err: e}
	}

	created, modified := fileTimes(info)
	return fileResult{Record: NewRecord(sp.Path, created, modified, info.Size(), digest)}
}

func (b *Builder) logProgress(i, total int, path string) {
	orDiscard(b.Logger).With("path", path).Infof("Processing (%d/%d, %s)", i+1, total, percent(i+1, total))
}
