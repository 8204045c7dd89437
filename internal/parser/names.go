package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cppdriver/internal/ast"
)

// ident wraps n's text in a plain name without looking at its structure.
func (l *lowerer) ident(n *sitter.Node) *ast.Name {
	return &ast.Name{Base: l.base(n), Identifier: strings.TrimSpace(l.text(n))}
}

// name lowers any name-like node. Plain identifiers that name an active
// object-style macro are recorded as expansion sites.
func (l *lowerer) name(n *sitter.Node) (ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Type() {
	case "identifier", "field_identifier", "type_identifier", "namespace_identifier",
		"statement_identifier", "primitive_type":
		id := l.ident(n)
		l.expand(id.Identifier, false, id.Loc)
		return id, nil
	case "destructor_name", "ERROR":
		return l.ident(n), nil
	case "operator_name", "operator_cast":
		return &ast.OperatorName{Base: l.base(n), Identifier: l.text(n)}, nil
	case "qualified_identifier", "nested_namespace_specifier":
		return l.qualified(n)
	case "template_type", "template_function", "template_method":
		return l.templateId(n)
	}
	return nil, mismatch("name", n)
}

// qualified flattens the grammar's right-nested scope chain into one
// segment list.
func (l *lowerer) qualified(n *sitter.Node) (ast.Node, error) {
	q := &ast.QualifiedName{Base: l.base(n)}
	if n.Type() == "nested_namespace_specifier" {
		for _, c := range named(n) {
			seg, err := l.name(c)
			if err != nil {
				return nil, err
			}
			q.Segments = append(q.Segments, seg)
		}
		return q, nil
	}

	cur := n
	for cur != nil && cur.Type() == "qualified_identifier" {
		scope := field(cur, "scope")
		switch {
		case scope != nil:
			seg, err := l.name(scope)
			if err != nil {
				return nil, err
			}
			q.Segments = append(q.Segments, seg)
		case len(q.Segments) == 0 && hasToken(cur, "::"):
			q.FullyQualified = true
		}
		cur = field(cur, "name")
	}
	if cur != nil {
		last, err := l.name(cur)
		if err != nil {
			return nil, err
		}
		_, q.ConversionOrOperator = last.(*ast.OperatorName)
		q.Segments = append(q.Segments, last)
	}
	return q, nil
}

func (l *lowerer) templateId(n *sitter.Node) (ast.Node, error) {
	tmpl, err := l.name(field(n, "name"))
	if err != nil {
		return nil, err
	}
	t := &ast.TemplateId{Base: l.base(n), TemplateName: tmpl}
	for _, arg := range named(field(n, "arguments")) {
		var a ast.Node
		if arg.Type() == "type_descriptor" {
			a, err = l.typeId(arg)
		} else {
			a, err = l.expr(arg)
		}
		if err != nil {
			return nil, err
		}
		t.Arguments = append(t.Arguments, a)
	}
	return t, nil
}
