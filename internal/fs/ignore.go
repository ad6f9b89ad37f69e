package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-directory file listing extra ignore patterns.
const IgnoreFileName = ".logtidyignore"

// defaultIgnorePatterns are always applied regardless of config or ignore file.
var defaultIgnorePatterns = []string{IgnoreFileName}

// ignorePattern is a parsed ignore pattern.
type ignorePattern struct {
	glob   string
	negate bool // "!pattern" re-includes names matched by earlier patterns
}

// IgnoreMatcher checks file base names against an ordered set of glob
// patterns. The last pattern that matches decides, so a later "!name"
// overrides an earlier "*.ext".
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		p := ignorePattern{glob: raw}
		if strings.HasPrefix(raw, "!") {
			p.negate = true
			p.glob = strings.TrimPrefix(raw, "!")
		}
		patterns = append(patterns, p)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether a file with the given name should be left alone.
// Only the base name is considered.
func (m *IgnoreMatcher) Match(name string) bool {
	if name == "" {
		return false
	}
	base := filepath.Base(name)

	ignored := false
	for _, p := range m.patterns {
		matched, err := filepath.Match(p.glob, base)
		if err != nil {
			// Malformed pattern: skip it.
			continue
		}
		if matched {
			ignored = !p.negate
		}
	}
	return ignored
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
