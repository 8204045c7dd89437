package ast

import "fmt"

// Walk visits n and its descendants in pre-order, following the structural
// accessors of each kind in authored order. Returning false from fn skips
// the node's children.
func Walk(n Node, fn func(Node) bool) error {
	if n == nil || !fn(n) {
		return nil
	}
	for _, acc := range ChildrenOf(n.Kind()) {
		if acc.LinkBack {
			continue
		}
		children, err := acc.Get(n)
		if err != nil {
			return fmt.Errorf("walk %s.%s: %w", n.Kind(), acc.Name, err)
		}
		for _, c := range children {
			if err := Walk(c, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Link sets the parent and role of every node below root. The collaborator
// calls it once the tree is complete.
func Link(root Node) error {
	return link(root, nil, "")
}

func link(n, parent Node, role string) error {
	b := n.base()
	b.parent = parent
	b.role = role
	for _, acc := range ChildrenOf(n.Kind()) {
		if acc.LinkBack {
			continue
		}
		children, err := acc.Get(n)
		if err != nil {
			return fmt.Errorf("link %s.%s: %w", n.Kind(), acc.Name, err)
		}
		for _, c := range children {
			if err := link(c, n, RoleName(n.Kind(), acc.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}
