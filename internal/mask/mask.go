// Package mask implements file name masks used by editor and filer hooks.
//
// A mask is a list of glob patterns separated by commas or semicolons,
// optionally followed by "|" and a list of exclusion patterns:
//
//	*.txt,*.log|*.bak
//
// Matching is case-insensitive and applies to the base name of the file.
// An empty mask matches every name.
package mask

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrBadMask is returned when a mask contains a malformed pattern.
var ErrBadMask = errors.New("malformed mask")

// Mask is a parsed file name mask.
type Mask struct {
	source  string
	include []string
	exclude []string
}

// Parse parses a mask string.
func Parse(s string) (*Mask, error) {
	m := &Mask{source: s}

	inc, exc, hasExclude := strings.Cut(s, "|")
	var err error
	if m.include, err = splitPatterns(inc); err != nil {
		return nil, err
	}
	if hasExclude {
		if m.exclude, err = splitPatterns(exc); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Mask {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Validate reports whether s is a well-formed mask.
func Validate(s string) error {
	_, err := Parse(s)
	return err
}

// Match tests a file name against the mask.
func Match(s, name string) bool {
	m, err := Parse(s)
	if err != nil {
		return false
	}
	return m.Match(name)
}

// String returns the source text of the mask.
func (m *Mask) String() string {
	return m.source
}

// Match reports whether the base name of name matches the mask.
func (m *Mask) Match(name string) bool {
	base := strings.ToLower(filepath.Base(name))

	if len(m.include) > 0 && !anyMatch(m.include, base) {
		return false
	}
	return !anyMatch(m.exclude, base)
}

func anyMatch(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

func splitPatterns(s string) ([]string, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})

	patterns := make([]string, 0, len(fields))
	for _, f := range fields {
		p := strings.ToLower(strings.Trim(strings.TrimSpace(f), `"`))
		if p == "" {
			continue
		}
		if err := checkPattern(p); err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func checkPattern(p string) error {
	if _, err := path.Match(p, ""); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrBadMask, p, err)
	}
	return nil
}
