package serializer

import "github.com/jward/cppdriver/internal/ast"

const typeNodeField = fieldPrefix + "TypeNode"

// typeSlot carries a parameter's type specifier down to the first declarator
// beneath it. A nil *typeSlot means no parameter context; an empty slot
// means a parameter context whose specifier was already placed or never
// qualified.
type typeSlot struct {
	spec ast.Node
}

// openParameter starts a fresh slot for p and reports whether p's specifier
// moves under its declarator instead of being emitted in place.
func openParameter(p *ast.ParameterDeclaration) (*typeSlot, bool) {
	slot := &typeSlot{}
	if p.Declarator == nil {
		return slot, false
	}
	switch p.DeclSpecifier.(type) {
	case *ast.SimpleDeclSpecifier, *ast.NamedTypeSpecifier:
		slot.spec = p.DeclSpecifier
		return slot, true
	}
	return slot, false
}

// take empties the slot and returns what it held.
func (s *typeSlot) take() ast.Node {
	if s == nil {
		return nil
	}
	spec := s.spec
	s.spec = nil
	return spec
}

// pending reports whether the slot still holds a specifier.
func (s *typeSlot) pending() bool {
	return s != nil && s.spec != nil
}

// slotFor picks the slot a child of parent receives. Only declarators stay
// in a parameter context; every other child starts outside one.
func slotFor(parent, child ast.Node, slot *typeSlot) *typeSlot {
	if _, ok := child.(ast.Declarator); !ok {
		return nil
	}
	switch parent.(type) {
	case *ast.ParameterDeclaration, ast.Declarator:
		return slot
	}
	return nil
}
