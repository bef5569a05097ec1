package report

import (
	"context"
	"fmt"

	"github.com/l3aro/go-codepath/pkg/ast"
	"github.com/l3aro/go-codepath/pkg/codepath"
	"github.com/l3aro/go-codepath/pkg/parser"
)

// FileReport is the outcome of analyzing one source file.
type FileReport struct {
	Path        string               `json:"path" msgpack:"path"`
	Language    parser.Language      `json:"language" msgpack:"language"`
	Unreachable []Range              `json:"unreachable,omitempty" msgpack:"unreachable,omitempty"`
	Stats       codepath.Stats       `json:"stats" msgpack:"stats"`
	Paths       codepath.PathSummary `json:"paths" msgpack:"paths"`
}

// Options configures AnalyzeFile.
type Options struct {
	// IsAbrupt is passed through to the analyzer.
	IsAbrupt func(stmt *ast.Node) bool
	Logger   codepath.Logger
	// Verify runs codepath.Verify over the result and fails on violations.
	Verify bool
}

// AnalyzeFile parses src, builds its code paths and collects the
// unreachable statements.
func AnalyzeFile(ctx context.Context, path string, src []byte, opts Options) (*FileReport, error) {
	lang, err := parser.LanguageForPath(path)
	if err != nil {
		return nil, err
	}

	root, err := parser.Parse(ctx, src, lang)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	unreachable := NewUnreachable()
	analyzer := codepath.New(codepath.Options{
		Listener: unreachable,
		Logger:   opts.Logger,
		IsAbrupt: opts.IsAbrupt,
	})
	res, err := analyzer.Analyze(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if opts.Verify {
		if err := codepath.Verify(res.Program); err != nil {
			return nil, fmt.Errorf("verifying %s: %w", path, err)
		}
	}

	summary := codepath.Summarize(res.Program)
	return &FileReport{
		Path:        path,
		Language:    lang,
		Unreachable: unreachable.Ranges(),
		Stats:       summary.Stats(),
		Paths:       summary,
	}, nil
}
