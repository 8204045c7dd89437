package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Dialect selects the grammar a Parser uses.
type Dialect string

const (
	DialectCPP Dialect = "cpp"
	DialectC   Dialect = "c"
)

// extToDialect maps file extensions to dialects. Headers default to C++,
// which parses a superset of what C headers contain.
var extToDialect = map[string]Dialect{
	".c":   DialectC,
	".h":   DialectCPP,
	".cpp": DialectCPP,
	".cc":  DialectCPP,
	".cxx": DialectCPP,
	".c++": DialectCPP,
	".hpp": DialectCPP,
	".hh":  DialectCPP,
	".hxx": DialectCPP,
	".inl": DialectCPP,
}

// Lazily initialized on first call via sync.Once.
var (
	grammars     map[Dialect]*sitter.Language
	grammarsOnce sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		grammars = map[Dialect]*sitter.Language{
			DialectCPP: cpp.GetLanguage(),
			DialectC:   c.GetLanguage(),
		}
	})
}

// ParseDialect validates a dialect name. The empty string means C++.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case "", "c++", "cxx":
		return DialectCPP, nil
	case DialectCPP, DialectC:
		return d, nil
	}
	return "", fmt.Errorf("parser: unknown dialect %q", s)
}

// DialectForFile returns the dialect for a path based on its extension.
// Returns ("", false) if the extension is not a C or C++ source.
func DialectForFile(path string) (Dialect, bool) {
	d, ok := extToDialect[strings.ToLower(filepath.Ext(path))]
	return d, ok
}

// Grammar returns the tree-sitter language for d.
func Grammar(d Dialect) (*sitter.Language, bool) {
	initGrammars()
	l, ok := grammars[d]
	return l, ok
}
