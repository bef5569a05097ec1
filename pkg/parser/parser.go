// Package parser turns JavaScript and TypeScript source into the ESTree
// shaped trees of package ast, using tree-sitter grammars.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/l3aro/go-codepath/pkg/ast"
)

// Language names a supported source grammar.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
)

// ErrUnsupportedLanguage is returned for languages and file extensions no
// grammar is registered for.
var ErrUnsupportedLanguage = errors.New("unsupported language")

var extensions = map[string]Language{
	".js":  JavaScript,
	".jsx": JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".ts":  TypeScript,
	".mts": TypeScript,
	".cts": TypeScript,
	".tsx": TSX,
}

// LanguageForPath picks a language from the file extension of path.
func LanguageForPath(path string) (Language, error) {
	lang, ok := extensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, path)
	}
	return lang, nil
}

// Supported reports whether path has an extension LanguageForPath accepts.
func Supported(path string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Family reports the language family, "javascript" or "typescript".
func (l Language) Family() string {
	if l == TSX {
		return string(TypeScript)
	}
	return string(l)
}

func grammar(lang Language) (*sitter.Language, error) {
	switch lang {
	case JavaScript:
		return javascript.GetLanguage(), nil
	case TypeScript:
		return typescript.GetLanguage(), nil
	case TSX:
		return tsx.GetLanguage(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
}

// Parse parses src and returns its Program node. Syntax errors do not fail
// the parse: tree-sitter recovers, and the erroneous regions come back as
// ast.Other nodes.
func Parse(ctx context.Context, src []byte, lang Language) (*ast.Node, error) {
	g, err := grammar(lang)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s source: %w", lang, err)
	}
	defer tree.Close()

	c := &converter{src: src}
	return c.program(tree.RootNode()), nil
}
