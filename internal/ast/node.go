// Package ast defines the C/C++ syntax tree handed from the parsing
// collaborator to the serializer.
//
// Every node kind is a concrete struct tagged by a Kind. Structural children
// are reachable only through the authored accessor table in children.go, so
// traversal order is a function of the kind alone.
package ast

import (
	"fmt"
	"strings"
)

// Kind is a node's concrete type discriminator. Values follow the CDT
// class-name vocabulary consumed by the downstream normalizer.
type Kind string

// Range is a half-open byte range [Offset, Offset+Length) in the source.
type Range struct {
	Offset int
	Length int
}

// End returns the exclusive end offset.
func (r Range) End() int { return r.Offset + r.Length }

// Contains reports whether o lies fully inside r. Touching bounds count as
// inside.
func (r Range) Contains(o Range) bool {
	return o.Offset >= r.Offset && o.End() <= r.End()
}

// Span returns the smallest range covering a and b.
func Span(a, b Range) Range {
	start := min(a.Offset, b.Offset)
	end := max(a.End(), b.End())
	return Range{Offset: start, Length: end - start}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Offset, r.End())
}

// Node is one element of the syntax tree.
type Node interface {
	Kind() Kind
	Range() Range
	// Role names the node's relationship to its parent. Empty for the root
	// and for unlinked nodes.
	Role() string
	Parent() Node

	base() *Base
}

// Base carries the data shared by every node kind. Embed it by value.
type Base struct {
	Loc Range

	role   string
	parent Node
}

func (b *Base) Range() Range { return b.Loc }
func (b *Base) Role() string { return b.role }
func (b *Base) Parent() Node { return b.parent }
func (b *Base) base() *Base { return b }

// Preprocessor is implemented by directive nodes. They never receive a
// macro annotation.
type Preprocessor interface {
	Node
	preprocessor()
}

// Comment is a source comment as recorded by the collaborator.
type Comment struct {
	Text    string
	IsBlock bool
	Loc     Range
}

// CommentMap holds the collaborator's ownership labels: node to the ordered
// comments attached to it in each role.
type CommentMap struct {
	Leading      map[Node][]*Comment
	Trailing     map[Node][]*Comment
	Freestanding map[Node][]*Comment
}

// NewCommentMap returns an empty CommentMap.
func NewCommentMap() *CommentMap {
	return &CommentMap{
		Leading:      make(map[Node][]*Comment),
		Trailing:     make(map[Node][]*Comment),
		Freestanding: make(map[Node][]*Comment),
	}
}

// MacroSites pairs a macro definition with the ranges of its expansions in
// source order.
type MacroSites struct {
	Definition *MacroDefinition
	Sites      []Range
}

// Result is everything the collaborator produces for one source text.
type Result struct {
	Root       *TranslationUnit
	Macros     []MacroSites
	Comments   *CommentMap
	Directives []Preprocessor
	// AllComments lists every comment in source order, owned or not.
	AllComments []*Comment
}

// MismatchError reports a node whose concrete shape does not match the
// position it was found in. It marks the class of unsupported-model edge
// cases inside the collaborator.
type MismatchError struct {
	Want string
	Got  Kind
	// Source is the collaborator-side construct that produced the node, when
	// known.
	Source string
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ast: type mismatch: want %s, got %s", e.Want, e.Got)
	if e.Source != "" {
		fmt.Fprintf(&b, " (from %s)", e.Source)
	}
	return b.String()
}

// Cast asserts n to T, returning a *MismatchError when it is not one.
func Cast[T Node](n Node, want string) (T, error) {
	t, ok := n.(T)
	if !ok {
		var got Kind
		if n != nil {
			got = n.Kind()
		}
		return t, &MismatchError{Want: want, Got: got}
	}
	return t, nil
}
