// Package scanner walks a source tree and lists the JavaScript and
// TypeScript files to analyze. It honors .gcpathignore files with
// gitignore-style patterns.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/l3aro/go-codepath/pkg/parser"
)

// File is a discovered source file.
type File struct {
	Path     string          // relative slash path from the root
	FullPath string          // absolute path
	Language parser.Language // grammar picked from the extension
	Size     int64           // file size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // skip dot files and directories
	DefaultExcludes []string // directory names never entered
	IgnoreFileName  string   // per-directory ignore file, default .gcpathignore
	MaxFileSize     int64    // larger files are skipped; 0 disables the limit

	// Accept filters files by language. Nil accepts every supported file.
	Accept func(lang parser.Language) bool
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".gcpathignore",
		MaxFileSize:    2 << 20,
		DefaultExcludes: []string{
			"node_modules",
			"bower_components",
			"jspm_packages",
			".git",
			"dist",
			"build",
			"out",
			"coverage",
			".next",
			".nuxt",
			".cache",
			"vendor",
		},
	}
}

// Scanner provides file tree scanning capabilities.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	if opts.IgnoreFileName == "" {
		opts.IgnoreFileName = ".gcpathignore"
	}
	return &Scanner{opts: opts}
}

// Scan lists the analyzable files under root, sorted by path. root may also
// name a single file, which is returned if its language is accepted.
func (s *Scanner) Scan(ctx context.Context, root string) ([]File, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	if !info.IsDir() {
		if f, ok := s.file(absRoot, filepath.Base(absRoot), info.Size()); ok {
			return []File{f}, nil
		}
		return nil, nil
	}

	ignores, err := LoadIgnoreFile(filepath.Join(absRoot, s.opts.IgnoreFileName), "")
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}

	var files []File
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if s.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.isDefaultExcluded(d.Name()) || ignores.Ignored(rel, true) {
				return filepath.SkipDir
			}
			nested, err := LoadIgnoreFile(filepath.Join(path, s.opts.IgnoreFileName), rel)
			if err == nil {
				ignores = append(ignores, nested...)
			}
			return nil
		}

		if !d.Type().IsRegular() || ignores.Ignored(rel, false) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if f, ok := s.file(path, rel, info.Size()); ok {
			files = append(files, f)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *Scanner) file(path, rel string, size int64) (File, bool) {
	lang, err := parser.LanguageForPath(path)
	if err != nil {
		return File{}, false
	}
	if s.opts.Accept != nil && !s.opts.Accept(lang) {
		return File{}, false
	}
	if s.opts.MaxFileSize > 0 && size > s.opts.MaxFileSize {
		return File{}, false
	}
	return File{Path: rel, FullPath: path, Language: lang, Size: size}, true
}

// isDefaultExcluded checks if the name matches default exclusion patterns.
func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// Scan is a convenience function that scans a directory with default options.
func Scan(ctx context.Context, root string) ([]File, error) {
	return New(DefaultOptions()).Scan(ctx, root)
}
