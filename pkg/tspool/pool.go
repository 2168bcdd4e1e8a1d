// Package tspool provides a pooled tree-sitter parser for concurrent
// parsing of Python source.
//
// This package centralizes parser pooling logic to:
//   - Enable reuse across different discovery components
//   - Reduce parser allocation overhead via sync.Pool
//   - Ensure thread-safe parser sharing
//
// Thread-safety: Parsers returned by Get are NOT safe for concurrent use.
// Each goroutine must Get its own parser or use the Parse helper.
package tspool

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/specvital/rtest-go/pkg/domain"
)

var (
	pyLang   *sitter.Language
	langOnce sync.Once
)

func initLanguages() {
	langOnce.Do(func() {
		pyLang = python.GetLanguage()
	})
}

// GetLanguage returns the tree-sitter language for the given domain language.
// This module discovers Python sources exclusively; any other language
// is a caller error rather than a silent fallback.
func GetLanguage(lang domain.Language) *sitter.Language {
	initLanguages()
	if lang != domain.LanguagePython {
		panic(fmt.Sprintf("tspool: unsupported language %q", lang))
	}
	return pyLang
}

var pyParserPool sync.Pool

func getParserPool(lang domain.Language) *sync.Pool {
	if lang != domain.LanguagePython {
		panic(fmt.Sprintf("tspool: unsupported language %q", lang))
	}
	return &pyParserPool
}

// Get returns a pooled parser for the given language.
// The returned parser is NOT safe for concurrent use.
// Use Put to return the parser after use.
func Get(lang domain.Language) *sitter.Parser {
	pool := getParserPool(lang)

	if p := pool.Get(); p != nil {
		if parser, ok := p.(*sitter.Parser); ok {
			return parser
		}
	}

	initLanguages()
	parser := sitter.NewParser()
	parser.SetLanguage(GetLanguage(lang))
	return parser
}

// Put returns a parser to the pool.
func Put(lang domain.Language, parser *sitter.Parser) {
	if parser == nil {
		return
	}
	pool := getParserPool(lang)
	pool.Put(parser)
}

// Parse parses source using a pooled parser.
// Caller MUST call tree.Close() to free resources.
// The parser is automatically returned to the pool after parsing.
func Parse(ctx context.Context, lang domain.Language, source []byte) (*sitter.Tree, error) {
	parser := Get(lang)
	defer Put(lang, parser)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s failed: %w", lang, err)
	}

	return tree, nil
}
