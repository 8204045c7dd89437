// Package serializer turns a syntax tree into the ordered JSON document the
// downstream normalizer consumes.
package serializer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jward/cppdriver/internal/ast"
	"github.com/jward/cppdriver/internal/comments"
	"github.com/jward/cppdriver/internal/macros"
)

// DefaultMaxDepth bounds recursion on pathological trees.
const DefaultMaxDepth = 4096

// ErrTooDeep is returned when a tree nests deeper than the configured limit.
var ErrTooDeep = errors.New("serializer: tree too deep")

// NodeError reports a failure reaching a child of a node. It wraps the
// original cause once; failures deeper in the tree are not rewrapped.
type NodeError struct {
	Kind  ast.Kind
	Field string
	Err   error
}

func (e *NodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("serializer: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("serializer: %s.%s: %v", e.Kind, e.Field, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// Request is the per-request side data the serializer consults.
type Request struct {
	Macros     *macros.Index
	Comments   *comments.Table
	Directives []ast.Preprocessor
}

// Serializer transcodes one request's tree. Build a new one per request;
// the Cache may be shared.
type Serializer struct {
	cache    *Cache
	req      Request
	log      *slog.Logger
	maxDepth int
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithLogger sets the logger used for dropped-attribute diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Serializer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(d int) Option {
	return func(s *Serializer) {
		if d > 0 {
			s.maxDepth = d
		}
	}
}

// New returns a Serializer for one request.
func New(cache *Cache, req Request, opts ...Option) *Serializer {
	if cache == nil {
		cache = NewCache()
	}
	if req.Macros == nil {
		req.Macros = macros.Build(nil)
	}
	s := &Serializer{
		cache:    cache,
		req:      req,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serialize transcodes root and everything below it.
func (s *Serializer) Serialize(root ast.Node) (*Object, error) {
	if root == nil {
		return nil, errors.New("serializer: nil root")
	}
	return s.node(root, 0, nil)
}

func (s *Serializer) node(n ast.Node, depth int, slot *typeSlot) (*Object, error) {
	if depth > s.maxDepth {
		return nil, &NodeError{Kind: n.Kind(), Err: ErrTooDeep}
	}

	obj := NewObject()
	s.common(obj, n)

	for _, a := range attributesOf(n) {
		s.setAttr(obj, n, a)
	}

	if _, ok := n.(*ast.TranslationUnit); ok {
		if stmts := s.directives(); len(stmts) > 0 {
			obj.Set(fieldPrefix+"PreprocStatements", stmts)
		}
	}

	if cs := s.req.Comments.For(n); len(cs) > 0 {
		obj.Set("Comments", commentObjects(cs))
	}

	var reparented bool
	if p, ok := n.(*ast.ParameterDeclaration); ok {
		slot, reparented = openParameter(p)
	}
	if _, ok := n.(ast.Declarator); ok && slot != nil {
		if spec := slot.take(); spec != nil {
			child, err := s.node(spec, depth+1, nil)
			if err != nil {
				return nil, wrap(n, typeNodeField, err)
			}
			obj.Set(typeNodeField, child)
		} else {
			obj.Set(typeNodeField, nil)
		}
	}

	for _, f := range s.cache.FieldsFor(n.Kind()) {
		if reparented && f.Accessor == "DeclSpecifier" {
			continue
		}
		children, err := f.Children(n)
		if err != nil {
			return nil, wrap(n, f.Name, err)
		}
		if len(children) == 0 {
			continue
		}
		if !f.Multi {
			child, err := s.node(children[0], depth+1, slotFor(n, children[0], slot))
			if err != nil {
				return nil, wrap(n, f.Name, err)
			}
			obj.Set(f.Name, child)
			continue
		}
		list := make([]*Object, 0, len(children))
		for _, c := range children {
			child, err := s.node(c, depth+1, slotFor(n, c, slot))
			if err != nil {
				return nil, wrap(n, f.Name, err)
			}
			list = append(list, child)
		}
		obj.Set(f.Name, list)
	}

	// The declarator never consumed the specifier; emit it where it was.
	if reparented && slot.pending() {
		child, err := s.node(slot.take(), depth+1, nil)
		if err != nil {
			return nil, wrap(n, fieldPrefix+"DeclSpecifier", err)
		}
		obj.Set(fieldPrefix+"DeclSpecifier", child)
	}
	return obj, nil
}

// common writes the fields every object carries.
func (s *Serializer) common(obj *Object, n ast.Node) {
	obj.Set("IASTClass", string(n.Kind()))
	if role := n.Role(); role != "" {
		obj.Set("Role", role)
	}
	if _, pre := n.(ast.Preprocessor); !pre {
		if name, ok := s.req.Macros.ContainingCodename(n.Range()); ok {
			obj.Set("ExpandedFromMacro", name)
		}
	}
	setLocation(obj, n.Range())
}

func setLocation(obj *Object, r ast.Range) {
	obj.Set("LocOffsetStart", r.Offset)
	obj.Set("LocOffsetEnd", r.End())
}

func (s *Serializer) setAttr(obj *Object, n ast.Node, a attr) {
	v, err := guarded(a)
	if err != nil {
		s.log.Debug("attribute dropped", "kind", n.Kind(), "attr", a.name, "err", err)
		return
	}
	obj.Set(a.name, v)
}

func guarded(a attr) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return a.get()
}

func commentObjects(cs []*ast.Comment) []*Object {
	out := make([]*Object, 0, len(cs))
	for _, c := range cs {
		o := NewObject()
		o.Set("IASTClass", "Comment")
		o.Set("Comment", c.Text)
		o.Set("IsBlockComment", c.IsBlock)
		setLocation(o, c.Loc)
		out = append(out, o)
	}
	return out
}

// wrap attaches n and field to err unless a deeper node already did.
func wrap(n ast.Node, field string, err error) error {
	var ne *NodeError
	if errors.As(err, &ne) {
		return err
	}
	return &NodeError{Kind: n.Kind(), Field: field, Err: err}
}
