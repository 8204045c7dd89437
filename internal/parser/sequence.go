package parser

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cppdriver/internal/ast"
)

// itemFunc lowers one child of a container. It may yield several nodes (a
// case label and the statements under it) or none (a stray token).
type itemFunc func(n *sitter.Node) ([]ast.Node, error)

// entry is one lowered node or one comment of a container, in source order.
type entry struct {
	node    ast.Node
	comment *ast.Comment
}

// sequence lowers the children of a container, splicing in the taken
// branches of preprocessor conditionals and labelling the comments found
// between siblings. It returns the lowered nodes.
func (l *lowerer) sequence(owner ast.Node, kids []*sitter.Node, each itemFunc) ([]ast.Node, error) {
	entries, err := l.entries(kids, each)
	if err != nil {
		return nil, err
	}
	return l.label(owner, entries), nil
}

func (l *lowerer) entries(kids []*sitter.Node, each itemFunc) ([]entry, error) {
	var out []entry
	for _, k := range kids {
		if !k.IsNamed() {
			continue
		}
		switch directiveType(k.Type()) {
		case "comment":
			out = append(out, entry{comment: l.comment(k)})
		case "preproc_if", "preproc_ifdef":
			branch, err := l.conditional(k, each)
			if err != nil {
				return nil, err
			}
			out = append(out, branch...)
		case "preproc_include", "preproc_def", "preproc_function_def", "preproc_call":
			l.directive(k, true)
		default:
			nodes, err := each(k)
			if err != nil {
				return nil, err
			}
			for _, n := range nodes {
				if n != nil {
					out = append(out, entry{node: n})
				}
			}
		}
	}
	return out, nil
}

// label assigns each comment to a sibling: trailing of the node it shares a
// line with, else leading of the next node, else freestanding of owner.
func (l *lowerer) label(owner ast.Node, entries []entry) []ast.Node {
	var (
		nodes   []ast.Node
		prev    ast.Node
		prevEnd = -1
		pending []*ast.Comment
	)
	for _, e := range entries {
		if e.comment == nil {
			if len(pending) > 0 {
				l.labels.Leading[e.node] = append(l.labels.Leading[e.node], pending...)
				pending = nil
			}
			nodes = append(nodes, e.node)
			prev = e.node
			prevEnd = l.line(lastByte(e.node.Range()))
			continue
		}
		if prev != nil && len(pending) == 0 && l.line(e.comment.Loc.Offset) == prevEnd {
			l.labels.Trailing[prev] = append(l.labels.Trailing[prev], e.comment)
			continue
		}
		pending = append(pending, e.comment)
	}
	if len(pending) > 0 {
		l.labels.Freestanding[owner] = append(l.labels.Freestanding[owner], pending...)
	}
	return nodes
}

func lastByte(r ast.Range) int {
	if r.Length == 0 {
		return r.Offset
	}
	return r.End() - 1
}

// line returns the zero-based line holding byte offset off.
func (l *lowerer) line(off int) int {
	if l.lineStarts == nil {
		l.lineStarts = []int{0}
		for i, b := range l.src {
			if b == '\n' {
				l.lineStarts = append(l.lineStarts, i+1)
			}
		}
	}
	return sort.SearchInts(l.lineStarts, off+1) - 1
}
