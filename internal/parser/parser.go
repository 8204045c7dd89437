// Package parser is the tree-sitter backed parsing collaborator. It lowers
// the concrete syntax tree of one C or C++ source text into internal/ast
// nodes, along with the preprocessor statements, macro expansion sites and
// comment ownership labels the serializer consumes.
package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cppdriver/internal/ast"
)

// Parser turns source text into an ast.Result. A Parser is safe for
// concurrent use; each Parse call builds its own tree-sitter parser.
type Parser struct {
	dialect Dialect
	log     *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for lowering diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

// New returns a Parser for d.
func New(d Dialect, opts ...Option) (*Parser, error) {
	if _, ok := Grammar(d); !ok {
		return nil, fmt.Errorf("parser: unsupported dialect %q", d)
	}
	p := &Parser{
		dialect: d,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Dialect reports the grammar p parses with.
func (p *Parser) Dialect() Dialect { return p.dialect }

// Parse lowers src. Syntax errors do not fail the call; the affected regions
// become problem nodes. An error is returned only when the tree cannot be
// modelled at all.
func (p *Parser) Parse(ctx context.Context, src []byte) (*ast.Result, error) {
	lang, _ := Grammar(p.dialect)

	tsParser := sitter.NewParser()
	defer tsParser.Close()
	tsParser.SetLanguage(lang)

	tree, err := tsParser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parser: parse: %w", err)
	}
	defer tree.Close()

	l := newLowerer(src, p.dialect, p.log)
	root := tree.RootNode()

	all, err := l.collectComments(root, lang)
	if err != nil {
		return nil, err
	}

	tu, err := l.translationUnit(root)
	if err != nil {
		return nil, fmt.Errorf("parser: lower: %w", err)
	}
	if err := ast.Link(tu); err != nil {
		return nil, fmt.Errorf("parser: link: %w", err)
	}

	sort.SliceStable(l.directives, func(i, j int) bool {
		return l.directives[i].Range().Offset < l.directives[j].Range().Offset
	})

	macros := make([]ast.MacroSites, 0, len(l.defined))
	for _, def := range l.defined {
		macros = append(macros, ast.MacroSites{Definition: def, Sites: l.sites[def]})
	}

	return &ast.Result{
		Root:        tu,
		Macros:      macros,
		Comments:    l.labels,
		Directives:  l.directives,
		AllComments: all,
	}, nil
}

// lowerer holds the state of one Parse call.
type lowerer struct {
	src        []byte
	lineStarts []int
	dialect    Dialect
	log        *slog.Logger

	labels     *ast.CommentMap
	byOffset   map[int]*ast.Comment
	directives []ast.Preprocessor

	// active is the macro table at the current point of the walk.
	active  map[string]*ast.MacroDefinition
	defined []*ast.MacroDefinition
	sites   map[*ast.MacroDefinition][]ast.Range
}

func newLowerer(src []byte, d Dialect, log *slog.Logger) *lowerer {
	return &lowerer{
		src:      src,
		dialect:  d,
		log:      log,
		labels:   ast.NewCommentMap(),
		byOffset: make(map[int]*ast.Comment),
		active:   make(map[string]*ast.MacroDefinition),
		sites:    make(map[*ast.MacroDefinition][]ast.Range),
	}
}

const commentQuery = `(comment) @comment`

// collectComments returns every comment in the tree in source order,
// including those inside inactive preprocessor branches.
func (l *lowerer) collectComments(root *sitter.Node, lang *sitter.Language) ([]*ast.Comment, error) {
	q, err := sitter.NewQuery([]byte(commentQuery), lang)
	if err != nil {
		return nil, fmt.Errorf("parser: comment query: %w", err)
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, root)

	var out []*ast.Comment
	seen := make(map[int]bool)
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			c := l.comment(capture.Node)
			if seen[c.Loc.Offset] {
				continue
			}
			seen[c.Loc.Offset] = true
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Loc.Offset < out[j].Loc.Offset })
	return out, nil
}

// comment returns the shared *ast.Comment for a tree-sitter comment node.
// Comments are keyed by offset so the query and the sibling walk agree on
// identity.
func (l *lowerer) comment(n *sitter.Node) *ast.Comment {
	off := int(n.StartByte())
	if c, ok := l.byOffset[off]; ok {
		return c
	}
	text := l.text(n)
	c := &ast.Comment{
		Text:    strings.TrimRight(text, "\r\n"),
		IsBlock: strings.HasPrefix(text, "/*"),
		Loc:     l.rng(n),
	}
	c.Loc.Length = len(c.Text)
	l.byOffset[off] = c
	return c
}

func (l *lowerer) translationUnit(n *sitter.Node) (*ast.TranslationUnit, error) {
	tu := &ast.TranslationUnit{Base: ast.Base{Loc: ast.Range{Offset: 0, Length: len(l.src)}}}
	decls, err := l.sequence(tu, children(n), l.topLevel)
	if err != nil {
		return nil, err
	}
	tu.Declarations = decls
	return tu, nil
}

// ---------------------------------------------------------------------------
// tree-sitter helpers
// ---------------------------------------------------------------------------

func (l *lowerer) rng(n *sitter.Node) ast.Range {
	return ast.Range{Offset: int(n.StartByte()), Length: int(n.EndByte() - n.StartByte())}
}

func (l *lowerer) base(n *sitter.Node) ast.Base {
	return ast.Base{Loc: l.rng(n)}
}

func (l *lowerer) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(l.src)
}

// span covers the nodes from first to last inclusive.
func (l *lowerer) span(first, last *sitter.Node) ast.Base {
	return ast.Base{Loc: ast.Span(l.rng(first), l.rng(last))}
}

// children returns every child of n, named or not.
func children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		out = append(out, n.Child(i))
	}
	return out
}

// named returns the named children of n, skipping comments.
func named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// fieldAll returns every child of n tagged with field name, in order.
func fieldAll(n *sitter.Node, name string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == name {
			out = append(out, n.Child(i))
		}
	}
	return out
}

// field is ChildByFieldName.
func field(n *sitter.Node, name string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(name)
}

// hasToken reports whether n has a direct anonymous child spelled tok.
func hasToken(n *sitter.Node, tok string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() && c.Type() == tok {
			return true
		}
	}
	return false
}

// firstNamed returns n's first named non-comment child.
func firstNamed(n *sitter.Node) *sitter.Node {
	if cs := named(n); len(cs) > 0 {
		return cs[0]
	}
	return nil
}
