package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cppdriver/internal/ast"
)

func isName(t string) bool {
	switch t {
	case "identifier", "field_identifier", "type_identifier", "namespace_identifier",
		"statement_identifier", "qualified_identifier", "operator_name", "operator_cast",
		"destructor_name", "template_function", "template_method":
		return true
	}
	return false
}

// declarator lowers a (possibly abstract) declarator. Pointer and reference
// operators the grammar nests outside the direct declarator become the
// declarator's pointer operators, as CDT models them.
func (l *lowerer) declarator(n *sitter.Node) (ast.Declarator, error) {
	return l.declaratorAt(n, l.rng(n))
}

// declaratorAt is declarator with an explicit range for the result, used
// when an init_declarator's range should cover the initializer too.
func (l *lowerer) declaratorAt(n *sitter.Node, loc ast.Range) (ast.Declarator, error) {
	var ops []ast.Node
	for n != nil {
		switch n.Type() {
		case "pointer_declarator", "abstract_pointer_declarator", "pointer_field_declarator", "pointer_type_declarator":
			ops = append(ops, l.pointer(n))
			n = field(n, "declarator")
			continue
		case "reference_declarator", "abstract_reference_declarator", "reference_field_declarator":
			op := &ast.ReferenceOperator{Base: l.base(n), RValue: hasToken(n, "&&")}
			if tok := token(n, "&&"); tok != nil {
				op.Loc = l.rng(tok)
			} else if tok := token(n, "&"); tok != nil {
				op.Loc = l.rng(tok)
			}
			ops = append(ops, op)
			n = firstNamed(n)
			continue
		case "attributed_declarator", "attributed_field_declarator", "attributed_type_declarator":
			n = firstNamed(n)
			continue
		}
		break
	}
	if n == nil {
		return &ast.PlainDeclarator{
			Base:           ast.Base{Loc: loc},
			DeclaratorCore: ast.DeclaratorCore{PointerOperators: ops},
		}, nil
	}
	return l.direct(n, loc, ops)
}

// pointer covers the '*' and the qualifiers that follow it.
func (l *lowerer) pointer(n *sitter.Node) *ast.Pointer {
	p := &ast.Pointer{}
	var loc ast.Range
	seen := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == "declarator" {
			break
		}
		c := n.Child(i)
		switch c.Type() {
		case "*":
			loc, seen = l.rng(c), true
		case "type_qualifier":
			applyPointerQualifier(p, l.text(c))
			if seen {
				loc = ast.Span(loc, l.rng(c))
			}
		}
	}
	if !seen {
		loc = ast.Range{Offset: int(n.StartByte()), Length: 1}
	}
	p.Loc = loc
	return p
}

func applyPointerQualifier(p *ast.Pointer, kw string) {
	switch kw {
	case "const":
		p.Const = true
	case "volatile":
		p.Volatile = true
	case "restrict", "__restrict", "__restrict__":
		p.Restrict = true
	}
}

func (l *lowerer) direct(n *sitter.Node, loc ast.Range, ops []ast.Node) (ast.Declarator, error) {
	core := ast.DeclaratorCore{PointerOperators: ops}
	switch n.Type() {
	case "function_declarator", "abstract_function_declarator", "function_field_declarator", "function_type_declarator":
		fd := &ast.FunctionDeclarator{Base: ast.Base{Loc: loc}, DeclaratorCore: core}
		if err := l.inner(field(n, "declarator"), &fd.DeclaratorCore); err != nil {
			return nil, err
		}
		if err := l.functionTail(n, fd); err != nil {
			return nil, err
		}
		return fd, nil

	case "array_declarator", "abstract_array_declarator", "array_field_declarator", "array_type_declarator":
		ad := &ast.ArrayDeclarator{Base: ast.Base{Loc: loc}, DeclaratorCore: core}
		cur := n
		var mods []ast.Node
		for cur != nil && (cur.Type() == n.Type()) {
			mod := &ast.ArrayModifier{Base: l.base(cur)}
			if open := token(cur, "["); open != nil {
				mod.Loc = ast.Range{Offset: int(open.StartByte()), Length: int(cur.EndByte() - open.StartByte())}
			}
			size, err := l.optExpr(field(cur, "size"))
			if err != nil {
				return nil, err
			}
			mod.ConstantExpression = size
			mods = append([]ast.Node{mod}, mods...)
			cur = field(cur, "declarator")
		}
		ad.Modifiers = mods
		if err := l.inner(cur, &ad.DeclaratorCore); err != nil {
			return nil, err
		}
		return ad, nil

	case "parenthesized_declarator", "abstract_parenthesized_declarator", "parenthesized_field_declarator", "parenthesized_type_declarator":
		inner := firstNamed(n)
		d := &ast.PlainDeclarator{Base: ast.Base{Loc: loc}, DeclaratorCore: core}
		if inner != nil {
			nested, err := l.declarator(inner)
			if err != nil {
				return nil, err
			}
			d.Nested = nested
		}
		return d, nil

	case "variadic_declarator":
		core.ParameterPack = true
		if id := firstNamed(n); id != nil {
			name, err := l.name(id)
			if err != nil {
				return nil, err
			}
			core.Name = name
		}
		return &ast.PlainDeclarator{Base: ast.Base{Loc: loc}, DeclaratorCore: core}, nil

	case "structured_binding_declarator", "ERROR":
		core.Name = l.ident(n)
		return &ast.PlainDeclarator{Base: ast.Base{Loc: loc}, DeclaratorCore: core}, nil
	}

	if isName(n.Type()) {
		name, err := l.name(n)
		if err != nil {
			return nil, err
		}
		core.Name = name
		return &ast.PlainDeclarator{Base: ast.Base{Loc: loc}, DeclaratorCore: core}, nil
	}
	return nil, mismatch("declarator", n)
}

// inner fills the name or nested declarator of a function or array
// declarator from its declarator field.
func (l *lowerer) inner(n *sitter.Node, core *ast.DeclaratorCore) error {
	switch {
	case n == nil:
		return nil
	case isName(n.Type()):
		name, err := l.name(n)
		if err != nil {
			return err
		}
		core.Name = name
		return nil
	case n.Type() == "parenthesized_declarator" || n.Type() == "abstract_parenthesized_declarator":
		if n = firstNamed(n); n == nil {
			return nil
		}
	}
	nested, err := l.declarator(n)
	if err != nil {
		return err
	}
	core.Nested = nested
	return nil
}

// functionTail reads the parameter list and the qualifiers after it.
func (l *lowerer) functionTail(n *sitter.Node, fd *ast.FunctionDeclarator) error {
	params := field(n, "parameters")
	if params != nil {
		list, varargs, err := l.parameterList(params)
		if err != nil {
			return err
		}
		fd.Parameters, fd.VarArgs = list, varargs
	}
	for _, c := range children(n) {
		if params != nil && c.EndByte() <= params.EndByte() {
			continue
		}
		switch c.Type() {
		case "type_qualifier":
			switch l.text(c) {
			case "const":
				fd.Const = true
			case "volatile":
				fd.Volatile = true
			}
		case "virtual_specifier":
			switch l.text(c) {
			case "final":
				fd.Final = true
			case "override":
				fd.Override = true
			}
		case "mutable":
			fd.Mutable = true
		case "noexcept":
			if e := firstNamed(c); e != nil {
				expr, err := l.expr(e)
				if err != nil {
					return err
				}
				fd.NoexceptExpression = expr
			}
		case "trailing_return_type":
			tid, err := l.typeId(firstNamed(c))
			if err != nil {
				return err
			}
			fd.TrailingReturnType = tid
		}
	}
	return nil
}

func (l *lowerer) parameterList(n *sitter.Node) ([]ast.Node, bool, error) {
	var (
		out     []ast.Node
		varargs = hasToken(n, "...")
	)
	for _, c := range named(n) {
		switch c.Type() {
		case "variadic_parameter":
			varargs = true
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			p, err := l.parameterDeclaration(c)
			if err != nil {
				return nil, false, err
			}
			out = append(out, p)
		default:
			out = append(out, &ast.ProblemDeclaration{Base: l.base(c), Problem: l.problemText(c)})
		}
	}
	return out, varargs, nil
}

// parameterDeclaration always yields a declarator, empty for an unnamed
// parameter.
func (l *lowerer) parameterDeclaration(n *sitter.Node) (*ast.ParameterDeclaration, error) {
	spec, err := l.declSpecifier(n)
	if err != nil {
		return nil, err
	}
	p := &ast.ParameterDeclaration{Base: l.base(n), DeclSpecifier: spec}

	var d ast.Declarator
	if dn := field(n, "declarator"); dn != nil {
		if d, err = l.declarator(dn); err != nil {
			return nil, err
		}
	} else {
		d = &ast.PlainDeclarator{Base: ast.Base{Loc: ast.Range{Offset: spec.Range().End()}}}
	}
	if value := field(n, "default_value"); value != nil {
		init, err := l.initializer(n, value)
		if err != nil {
			return nil, err
		}
		d.Core().Initializer = init
	}
	p.Declarator = d
	return p, nil
}
