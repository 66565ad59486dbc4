package fdb

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorKind classifies failures by how the caller is expected to react
type ErrorKind int

const (
	// KindUsage is a bad invocation caught before heavy work starts
	KindUsage ErrorKind = iota + 1
	// KindPermission is a per-file permission failure; the file gets a degraded record
	KindPermission
	// KindFatalIO is any other I/O failure; it aborts the run
	KindFatalIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindPermission:
		return "permission"
	case KindFatalIO:
		return "fatal"
	default:
		return "unknown"
	}
}

// ErrUsage matches every usage error via errors.Is
var ErrUsage = errors.New("usage error")

// ErrEmptyIgnoreSet is returned when an ignore set has no entries
var ErrEmptyIgnoreSet = fmt.Errorf("%w: ignore list is empty", ErrUsage)

// Error carries an ErrorKind alongside the failing operation and path
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUsage) match usage errors built without wrapping ErrUsage
func (e *Error) Is(target error) bool {
	return target == ErrUsage && e.Kind == KindUsage
}

// usageError builds a KindUsage error
func usageError(op, path, format string, args ...interface{}) *Error {
	return &Error{Kind: KindUsage, Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}

// classifyFileError tags a per-file I/O error as recoverable or fatal
func classifyFileError(op, path string, err error) *Error {
	kind := KindFatalIO
	if errors.Is(err, fs.ErrPermission) {
		kind = KindPermission
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the ErrorKind of err, or 0 when err carries none
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrUsage) {
		return KindUsage
	}
	return 0
}

// IsUsageError reports whether err is a usage error
func IsUsageError(err error) bool {
	return errors.Is(err, ErrUsage)
}
