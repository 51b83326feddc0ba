package merkle

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-repository ignore file read by LoadIgnore.
const IgnoreFileName = ".keepignore"

// Ignore is a set of name substrings excluded from snapshot walks. An entry
// is skipped when any pattern is a substring of its name; patterns never
// match across directory separators because they are tested per name.
type Ignore []string

// DefaultIgnore returns the patterns every walk excludes regardless of any
// ignore file.
func DefaultIgnore() Ignore {
	return Ignore{".git", ".metadata", ".DS_Store"}
}

// Match reports whether name is excluded.
func (ig Ignore) Match(name string) bool {
	for _, pat := range ig {
		if pat == "" {
			continue
		}
		if strings.Contains(name, pat) {
			return true
		}
	}
	return false
}

// LoadIgnore returns the default patterns plus any read from the ignore
// file in repoRoot. Blank lines and lines starting with '#' are skipped; a
// missing or unreadable file contributes nothing.
func LoadIgnore(repoRoot string) Ignore {
	ig := DefaultIgnore()

	f, err := os.Open(filepath.Join(repoRoot, IgnoreFileName))
	if err != nil {
		return ig
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ig = append(ig, line)
	}
	return ig
}
