package scanner

import (
	"bufio"
	"os"
	"path"
	"strings"
)

// IgnorePattern is one line of a gitignore-style ignore file.
type IgnorePattern struct {
	raw      string
	negate   bool     // leading "!"
	dirOnly  bool     // trailing "/"
	anchored bool     // contains a "/" before the end: relative to base
	base     string   // slash path of the directory holding the ignore file, "" for the root
	segments []string // pattern split on "/"
}

// ParseIgnorePattern parses a pattern found in the ignore file of the
// directory base (a slash-separated path relative to the scan root).
func ParseIgnorePattern(line, base string) IgnorePattern {
	p := IgnorePattern{raw: line, base: strings.Trim(base, "/")}
	pattern := line

	if strings.HasPrefix(pattern, "!") {
		p.negate = true
		pattern = pattern[1:]
	} else if strings.HasPrefix(pattern, `\!`) || strings.HasPrefix(pattern, `\#`) {
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		p.dirOnly = true
		pattern = strings.TrimRight(pattern, "/")
	}
	if strings.Contains(pattern, "/") {
		p.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	}
	p.segments = strings.Split(pattern, "/")
	return p
}

// String returns the pattern as written.
func (p IgnorePattern) String() string { return p.raw }

// IsNegation reports whether the pattern re-includes what it matches.
func (p IgnorePattern) IsNegation() bool { return p.negate }

// Match reports whether the slash path rel (relative to the scan root)
// matches the pattern.
func (p IgnorePattern) Match(rel string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	if p.base != "" {
		if !strings.HasPrefix(rel, p.base+"/") {
			return false
		}
		rel = strings.TrimPrefix(rel, p.base+"/")
	}

	parts := strings.Split(rel, "/")
	if !p.anchored {
		return len(p.segments) == 1 && matchSegment(p.segments[0], parts[len(parts)-1])
	}
	return matchSegments(p.segments, parts)
}

func matchSegments(pattern, parts []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(parts); i++ {
				if matchSegments(rest, parts[i:]) {
					return true
				}
			}
			return false
		}
		if len(parts) == 0 || !matchSegment(pattern[0], parts[0]) {
			return false
		}
		pattern, parts = pattern[1:], parts[1:]
	}
	return len(parts) == 0
}

func matchSegment(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

// IgnoreList evaluates patterns in order; the last matching pattern wins.
type IgnoreList []IgnorePattern

// Ignored reports whether rel is excluded.
func (l IgnoreList) Ignored(rel string, isDir bool) bool {
	ignored := false
	for _, p := range l {
		if p.Match(rel, isDir) {
			ignored = !p.negate
		}
	}
	return ignored
}

// LoadIgnoreFile reads the patterns of file. base is the directory holding
// it, relative to the scan root. A missing file yields no patterns.
func LoadIgnoreFile(file, base string) (IgnoreList, error) {
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns IgnoreList
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, ParseIgnorePattern(line, base))
	}
	return patterns, sc.Err()
}
