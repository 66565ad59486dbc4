package fdb

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// IgnoreSet holds exact, case-sensitive file basenames excluded from a scan
type IgnoreSet struct {
	names map[string]struct{}
}

// NewIgnoreSet builds an IgnoreSet from basenames. An empty list is a usage error.
func NewIgnoreSet(names []string) (IgnoreSet, error) {
	if len(names) == 0 {
		return IgnoreSet{}, ErrEmptyIgnoreSet
	}
	set := IgnoreSet{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		set.names[name] = struct{}{}
	}
	return set, nil
}

// ParseIgnoreList splits a comma-delimited list and unescapes each element,
// so "Icon\r" names a file ending in a carriage return
func ParseIgnoreList(list string) (IgnoreSet, error) {
	parts := strings.Split(list, IgnoreSep)
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		names = append(names, UnescapeName(part))
	}
	return NewIgnoreSet(names)
}

// Contains reports whether basename is ignored
func (s IgnoreSet) Contains(basename string) bool {
	_, ok := s.names[basename]
	return ok
}

// Len returns the number of ignored names
func (s IgnoreSet) Len() int {
	return len(s.names)
}

// Names returns the ignored names sorted
func (s IgnoreSet) Names() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns the set re-escaped and comma joined
func (s IgnoreSet) String() string {
	names := s.Names()
	for i, name := range names {
		quoted := strconv.Quote(name)
		names[i] = quoted[1 : len(quoted)-1]
	}
	return strings.Join(names, IgnoreSep)
}

// UnescapeName resolves backslash escape sequences in s. Unknown escapes
// are kept literally, backslash included.
func UnescapeName(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		if s[0] != '\\' {
			_, size := utf8.DecodeRuneInString(s)
			b.WriteString(s[:size])
			s = s[size:]
			continue
		}
		if len(s) > 1 && (s[1] == '\'' || s[1] == '"') {
			b.WriteByte(s[1])
			s = s[2:]
			continue
		}
		value, _, tail, err := strconv.UnquoteChar(s, 0)
		if err != nil {
			b.WriteByte('\\')
			s = s[1:]
			continue
		}
		// \xHH and octal escapes name code points, not raw bytes
		b.WriteRune(value)
		s = tail
	}
	return b.String()
}
