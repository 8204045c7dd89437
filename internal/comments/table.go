// Package comments decides, once per request, which node each comment is
// emitted under.
package comments

import (
	"fmt"
	"sort"

	"github.com/jward/cppdriver/internal/ast"
)

// Table maps nodes to their final, ordered comment lists. It is immutable
// once built.
type Table struct {
	owned map[ast.Node][]*ast.Comment
	count int
}

// Build assigns every comment of maps to exactly one node reachable from
// root. A node's list holds its leading, freestanding and trailing comments
// sorted by offset. Comments keyed to unreachable nodes, and any comment in
// extra that no map mentions, go to root.
func Build(root ast.Node, maps *ast.CommentMap, extra []*ast.Comment) (*Table, error) {
	t := &Table{owned: make(map[ast.Node][]*ast.Comment)}
	if maps == nil {
		maps = ast.NewCommentMap()
	}

	seen := make(map[*ast.Comment]bool)
	reachable := make(map[ast.Node]bool)
	var order []ast.Node
	err := ast.Walk(root, func(n ast.Node) bool {
		reachable[n] = true
		order = append(order, n)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("comments: %w", err)
	}

	for _, n := range order {
		var list []*ast.Comment
		for _, group := range [][]*ast.Comment{maps.Leading[n], maps.Freestanding[n], maps.Trailing[n]} {
			for _, c := range group {
				if c == nil || seen[c] {
					continue
				}
				seen[c] = true
				list = append(list, c)
			}
		}
		if len(list) > 0 {
			t.owned[n] = list
		}
	}

	var orphans []*ast.Comment
	adopt := func(c *ast.Comment) {
		if c != nil && !seen[c] {
			seen[c] = true
			orphans = append(orphans, c)
		}
	}
	for _, m := range []map[ast.Node][]*ast.Comment{maps.Leading, maps.Freestanding, maps.Trailing} {
		for n, group := range m {
			if reachable[n] {
				continue
			}
			for _, c := range group {
				adopt(c)
			}
		}
	}
	for _, c := range extra {
		adopt(c)
	}
	if len(orphans) > 0 && root != nil {
		t.owned[root] = append(t.owned[root], orphans...)
	}

	for n, list := range t.owned {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Loc.Offset < list[j].Loc.Offset
		})
		t.owned[n] = list
		t.count += len(list)
	}
	return t, nil
}

// For returns n's comments in source order. The slice must not be modified.
func (t *Table) For(n ast.Node) []*ast.Comment {
	if t == nil {
		return nil
	}
	return t.owned[n]
}

// Len reports how many comments the table owns.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.count
}
