package fdb

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
)

// ScannedPath is a candidate file found during traversal
type ScannedPath struct {
	Path string      // path within the scanned filesystem, prefixed by the scan root
	Info os.FileInfo // lstat-style info from the directory listing
}

// Scanner walks a directory tree and lists candidate files
type Scanner struct {
	fs     billy.Filesystem
	root   string
	logger *log.Logger
}

// NewScanner creates a scanner rooted at root inside fsys
func NewScanner(fsys billy.Filesystem, root string, logger *log.Logger) *Scanner {
	return &Scanner{
		fs:     fsys,
		root:   root,
		logger: orDiscard(logger),
	}
}

// Scan walks the tree top-down. Files of a directory are listed before its
// subdirectories are visited; files whose basename is in ignore are skipped.
// Directories are always descended regardless of ignore membership.
func (s *Scanner) Scan(ctx context.Context, ignore IgnoreSet) ([]ScannedPath, error) {
	if ignore.Len() == 0 {
		return nil, ErrEmptyIgnoreSet
	}

	s.logger.Info("Scanning directory", "path", s.root)
	var found []ScannedPath
	if err := s.scanDir(ctx, s.root, ignore, &found); err != nil {
		return nil, err
	}
	return found, nil
}

// scanDir appends the files of dir to found and recurses into its subdirectories
func (s *Scanner) scanDir(ctx context.Context, dir string, ignore IgnoreSet, found *[]ScannedPath) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("scan interrupted: %w", ctx.Err())
	default:
	}

	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		// unreadable directories are skipped, like a top-down walk without an error handler
		s.logger.Warn("Cannot read directory", "path", dir, "err", err)
		return nil
	}

	var subdirs []string
	files := 0
	for _, entry := range entries {
		path := s.fs.Join(dir, entry.Name())

		switch {
		case entry.IsDir():
			subdirs = append(subdirs, path)
			continue
		case entry.Mode()&os.ModeSymlink != 0:
			// directory symlinks are neither followed nor listed
			if target, err := s.fs.Stat(path); err == nil && target.IsDir() {
				s.logger.Debug("Skipping directory symlink", "path", path)
				continue
			}
		case !entry.Mode().IsRegular():
			s.logger.Debug("Skipping special file", "path", path, "mode", entry.Mode().String())
			continue
		}

		files++
		if ignore.Contains(entry.Name()) {
			continue
		}
		*found = append(*found, ScannedPath{Path: path, Info: entry})
	}
	s.logger.Info("Scanning contents", "path", dir, "files", files)

	for _, subdir := range subdirs {
		if err := s.scanDir(ctx, subdir, ignore, found); err != nil {
			return err
		}
	}
	return nil
}

// ScanPaths is a convenience wrapper returning only the paths
func (s *Scanner) ScanPaths(ctx context.Context, ignore IgnoreSet) ([]string, error) {
	scanned, err := s.Scan(ctx, ignore)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(scanned))
	for i, sp := range scanned {
		paths[i] = sp.Path
	}
	return paths, nil
}
