package fdb

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// FileDB runs the database operations against one filesystem with one
// set of traversal and hashing settings
type FileDB struct {
	fs        billy.Filesystem
	ignore    IgnoreSet
	algorithm *HashAlgorithm
	workers   int
	logger    *log.Logger
	osRooted  bool // fs is the host filesystem rooted at /
}

// Options configures a FileDB; zero values pick the defaults
type Options struct {
	FS        billy.Filesystem // directory trees are read through FS; the OS rooted at / when nil
	Ignore    IgnoreSet
	Algorithm *HashAlgorithm
	Workers   int
	Logger    *log.Logger
}

// NewFileDB validates opts and returns a ready FileDB
func NewFileDB(opts Options) (*FileDB, error) {
	if opts.Ignore.Len() == 0 {
		return nil, ErrEmptyIgnoreSet
	}
	fsys, osRooted := opts.FS, false
	if fsys == nil {
		fsys, osRooted = osfs.New(string(filepath.Separator)), true
	}
	workers := opts.Workers
	if workers == 0 {
		workers = DefaultHashWorkers
	}
	if err := ValidateHashWorkers(workers); err != nil {
		return nil, err
	}
	return &FileDB{
		fs:        fsys,
		ignore:    opts.Ignore,
		algorithm: defaultAlgorithm(opts.Algorithm),
		workers:   workers,
		logger:    orDiscard(opts.Logger),
		osRooted:  osRooted,
	}, nil
}

// treePath resolves dir against the working directory when trees are read
// from the host filesystem
func (db *FileDB) treePath(dir string) (string, error) {
	if !db.osRooted || filepath.IsAbs(dir) {
		return dir, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", usageError("resolve directory", dir, "%v", err)
	}
	return abs, nil
}

// checkDirectory fails with a usage error unless dir is an existing directory
func (db *FileDB) checkDirectory(dir string) error {
	info, err := db.fs.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return usageError("check directory", dir, "path does not exist")
		}
		return &Error{Kind: KindFatalIO, Op: "check directory", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return usageError("check directory", dir, "not a directory")
	}
	return nil
}

// checkInput fails with a usage error unless the database file exists
func checkInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return usageError("check input", path, "path does not exist")
		}
		return &Error{Kind: KindFatalIO, Op: "check input", Path: path, Err: err}
	}
	return nil
}

// checkOutput fails with a usage error when the output file already exists
func checkOutput(path string) error {
	if _, err := os.Lstat(path); err == nil {
		return usageError("check output", path, "file already exists")
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &Error{Kind: KindFatalIO, Op: "check output", Path: path, Err: err}
	}
	return nil
}

// MakeDatabase builds the inventory of dir and writes it to out
func (db *FileDB) MakeDatabase(ctx context.Context, dir, out string) (Inventory, error) {
	dir, err := db.treePath(dir)
	if err != nil {
		return nil, err
	}
	if err := db.checkDirectory(dir); err != nil {
		return nil, err
	}
	if err := checkOutput(out); err != nil {
		return nil, err
	}

	builder := &Builder{
		FS:        db.fs,
		Root:      dir,
		Algorithm: db.algorithm,
		Workers:   db.workers,
		Logger:    db.logger,
	}
	inv, err := builder.Build(ctx, db.ignore)
	if err != nil {
		return nil, err
	}

	db.logger.Info("Writing database", "path", out, "records", len(inv))
	if err := WriteInventory(out, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// FindDuplicatesDatabase writes the records of in whose hash occurs twice or more to out
func (db *FileDB) FindDuplicatesDatabase(ctx context.Context, in, out string) (Inventory, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if err := checkOutput(out); err != nil {
		return nil, err
	}

	db.logger.Info("Finding duplicates in database", "path", in)
	inv, err := ReadInventory(in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dupes := FindDuplicates(inv, db.logger)
	if err := WriteInventory(out, dupes); err != nil {
		return nil, err
	}
	return dupes, nil
}

// DuplicateReport returns the duplicate groups of the database in
func (db *FileDB) DuplicateReport(ctx context.Context, in string) ([]DuplicateGroup, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	inv, err := ReadInventory(in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DuplicateGroups(inv), nil
}

// DiffDatabases writes the records of src whose hash is absent from dst to out
func (db *FileDB) DiffDatabases(ctx context.Context, src, dst, out string) (Inventory, error) {
	for _, in := range []string{src, dst} {
		if err := checkInput(in); err != nil {
			return nil, err
		}
	}
	if err := checkOutput(out); err != nil {
		return nil, err
	}

	db.logger.Info("Comparing databases", "source", src, "destination", dst)
	srcInv, err := ReadInventory(src)
	if err != nil {
		return nil, err
	}
	dstInv, err := ReadInventory(dst)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	diff := Diff(srcInv, dstInv, db.logger.With("source", src))
	if err := WriteInventory(out, diff); err != nil {
		return nil, err
	}
	return diff, nil
}

// HashDirectory computes the aggregate digest of a live directory tree
func (db *FileDB) HashDirectory(ctx context.Context, dir string) (AggregateResult, error) {
	dir, err := db.treePath(dir)
	if err != nil {
		return AggregateResult{}, err
	}
	if err := db.checkDirectory(dir); err != nil {
		return AggregateResult{}, err
	}
	return AggregateDirectory(ctx, db.fs, dir, db.ignore, db.algorithm, db.logger)
}

// HashDatabase computes the aggregate digest of a persisted inventory
func (db *FileDB) HashDatabase(ctx context.Context, in string) (AggregateResult, error) {
	if err := checkInput(in); err != nil {
		return AggregateResult{}, err
	}

	db.logger.Info("Hashing database", "path", in)
	inv, err := ReadInventory(in)
	if err != nil {
		return AggregateResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return AggregateResult{}, err
	}
	return AggregateInventory(inv, in, db.algorithm)
}

// SearchDatabase returns the records of in matching opts
func (db *FileDB) SearchDatabase(ctx context.Context, in string, opts SearchOptions) (Inventory, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}

	inv, err := ReadInventory(in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Search(inv, opts)
}
