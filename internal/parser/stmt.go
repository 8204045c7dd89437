package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cppdriver/internal/ast"
)

func (l *lowerer) compound(n *sitter.Node) (*ast.CompoundStatement, error) {
	cs := &ast.CompoundStatement{Base: l.base(n)}
	stmts, err := l.sequence(cs, children(n), l.blockItem)
	if err != nil {
		return nil, err
	}
	cs.Statements = stmts
	return cs, nil
}

// blockItem lowers one item of a compound statement. A case label yields
// itself followed by the statements the grammar nests under it, which CDT
// keeps as siblings.
func (l *lowerer) blockItem(n *sitter.Node) ([]ast.Node, error) {
	if n.Type() == "case_statement" {
		return l.caseStatement(n)
	}
	s, err := l.statement(n)
	if err != nil || s == nil {
		return nil, err
	}
	return []ast.Node{s}, nil
}

func (l *lowerer) caseStatement(n *sitter.Node) ([]ast.Node, error) {
	value := field(n, "value")
	label := n
	end := int(n.EndByte())
	if colon := token(n, ":"); colon != nil {
		end = int(colon.EndByte())
	}
	loc := ast.Base{Loc: ast.Range{Offset: int(label.StartByte()), Length: end - int(label.StartByte())}}

	var head ast.Node
	if value == nil {
		head = &ast.DefaultStatement{Base: loc}
	} else {
		e, err := l.expr(value)
		if err != nil {
			return nil, err
		}
		head = &ast.CaseStatement{Base: loc, Expression: e}
	}

	var body []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == "value" {
			continue
		}
		body = append(body, n.Child(i))
	}
	entries, err := l.entries(body, l.blockItem)
	if err != nil {
		return nil, err
	}
	// Comments under the label become orphans; only statements are kept.
	out := []ast.Node{head}
	for _, e := range entries {
		if e.node != nil {
			out = append(out, e.node)
		}
	}
	return out, nil
}

func (l *lowerer) statement(n *sitter.Node) (ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Type() {
	case "compound_statement":
		return l.compound(n)
	case "expression_statement":
		e := firstNamed(n)
		if e == nil {
			return &ast.NullStatement{Base: l.base(n)}, nil
		}
		expr, err := l.expr(e)
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Base: l.base(n), Expression: expr}, nil
	case "return_statement":
		value, err := l.optInit(firstNamed(n))
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStatement{Base: l.base(n), ReturnValue: value}, nil
	case "if_statement":
		return l.ifStatement(n)
	case "while_statement":
		ws := &ast.WhileStatement{Base: l.base(n)}
		var err error
		if ws.Condition, ws.ConditionDeclaration, err = l.condition(field(n, "condition")); err != nil {
			return nil, err
		}
		if ws.Body, err = l.statement(field(n, "body")); err != nil {
			return nil, err
		}
		return ws, nil
	case "do_statement":
		ds := &ast.DoStatement{Base: l.base(n)}
		var err error
		if ds.Body, err = l.statement(field(n, "body")); err != nil {
			return nil, err
		}
		if ds.Condition, _, err = l.condition(field(n, "condition")); err != nil {
			return nil, err
		}
		return ds, nil
	case "for_statement":
		return l.forStatement(n)
	case "for_range_loop":
		return l.rangeFor(n)
	case "switch_statement":
		ss := &ast.SwitchStatement{Base: l.base(n)}
		var err error
		if ss.Controller, _, err = l.condition(field(n, "condition")); err != nil {
			return nil, err
		}
		if ss.Body, err = l.statement(field(n, "body")); err != nil {
			return nil, err
		}
		return ss, nil
	case "break_statement":
		return &ast.BreakStatement{Base: l.base(n)}, nil
	case "continue_statement":
		return &ast.ContinueStatement{Base: l.base(n)}, nil
	case "goto_statement":
		label, err := l.name(field(n, "label"))
		if err != nil {
			return nil, err
		}
		return &ast.GotoStatement{Base: l.base(n), Label: label}, nil
	case "labeled_statement":
		ls := &ast.LabelStatement{Base: l.base(n)}
		var err error
		if ls.Label, err = l.name(field(n, "label")); err != nil {
			return nil, err
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if n.FieldNameForChild(i) == "label" || !c.IsNamed() || c.Type() == "comment" {
				continue
			}
			if ls.Nested, err = l.statement(c); err != nil {
				return nil, err
			}
			break
		}
		return ls, nil
	case "try_statement":
		return l.tryStatement(n)
	case "throw_statement":
		op := &ast.UnaryExpression{Base: l.base(n), Operator: ast.OpThrow}
		if semi := token(n, ";"); semi != nil {
			op.Loc.Length = int(semi.StartByte() - n.StartByte())
		}
		if arg := firstNamed(n); arg != nil {
			e, err := l.expr(arg)
			if err != nil {
				return nil, err
			}
			op.Operand = e
		}
		return &ast.ExpressionStatement{Base: l.base(n), Expression: op}, nil
	case "attributed_statement":
		kids := named(n)
		if len(kids) == 0 {
			return nil, nil
		}
		return l.statement(kids[len(kids)-1])
	case "declaration", "type_definition", "alias_declaration", "using_declaration",
		"static_assert_declaration", "struct_specifier", "union_specifier", "class_specifier",
		"enum_specifier", "function_definition", "template_declaration", "namespace_alias_definition":
		d, err := l.declaration(n)
		if err != nil {
			return nil, err
		}
		return &ast.DeclarationStatement{Base: ast.Base{Loc: d.Range()}, Declaration: d}, nil
	}
	l.log.Debug("problem statement", "type", n.Type(), "offset", n.StartByte())
	return &ast.ProblemStatement{Base: l.base(n), Problem: l.problemText(n)}, nil
}

func (l *lowerer) ifStatement(n *sitter.Node) (ast.Node, error) {
	is := &ast.IfStatement{Base: l.base(n), Constexpr: hasToken(n, "constexpr")}
	var err error
	if is.Condition, is.ConditionDeclaration, err = l.condition(field(n, "condition")); err != nil {
		return nil, err
	}
	if is.Then, err = l.statement(field(n, "consequence")); err != nil {
		return nil, err
	}
	alt := field(n, "alternative")
	if alt != nil && alt.Type() == "else_clause" {
		alt = firstNamed(alt)
	}
	if is.Else, err = l.statement(alt); err != nil {
		return nil, err
	}
	return is, nil
}

// condition unwraps a condition_clause or parenthesized condition into
// either an expression or a declaration.
func (l *lowerer) condition(n *sitter.Node) (expr, decl ast.Node, err error) {
	if n == nil {
		return nil, nil, nil
	}
	var value *sitter.Node
	switch n.Type() {
	case "condition_clause":
		value = field(n, "value")
		if value == nil {
			value = lastNamed(n)
		}
	case "parenthesized_expression":
		value = firstNamed(n)
	default:
		value = n
	}
	if value == nil {
		return nil, nil, nil
	}
	if value.Type() == "declaration" || value.Type() == "init_declarator" {
		d, err := l.conditionDeclaration(value)
		return nil, d, err
	}
	e, err := l.expr(value)
	return e, nil, err
}

func (l *lowerer) conditionDeclaration(n *sitter.Node) (ast.Node, error) {
	if n.Type() == "declaration" {
		decl, err := l.simpleDeclaration(n)
		if err != nil {
			return nil, err
		}
		value := field(n, "value")
		if value != nil && len(decl.Declarators) == 1 {
			init, err := l.initializer(n, value)
			if err != nil {
				return nil, err
			}
			d := decl.Declarators[0].(ast.Declarator)
			d.Core().Initializer = init
		}
		return decl, nil
	}
	return &ast.ProblemDeclaration{Base: l.base(n), Problem: l.problemText(n)}, nil
}

func lastNamed(n *sitter.Node) *sitter.Node {
	kids := named(n)
	if len(kids) == 0 {
		return nil
	}
	return kids[len(kids)-1]
}

func (l *lowerer) forStatement(n *sitter.Node) (ast.Node, error) {
	fs := &ast.ForStatement{Base: l.base(n)}
	var err error

	switch init := field(n, "initializer"); {
	case init == nil:
		fs.Init = &ast.NullStatement{Base: ast.Base{Loc: ast.Range{Offset: l.forInitOffset(n)}}}
	case init.Type() == "declaration":
		d, err := l.simpleDeclaration(init)
		if err != nil {
			return nil, err
		}
		fs.Init = &ast.DeclarationStatement{Base: l.base(init), Declaration: d}
	default:
		e, err := l.expr(init)
		if err != nil {
			return nil, err
		}
		fs.Init = &ast.ExpressionStatement{Base: l.base(init), Expression: e}
	}

	if fs.Condition, _, err = l.condition(field(n, "condition")); err != nil {
		return nil, err
	}
	if fs.Iteration, err = l.optExpr(field(n, "update")); err != nil {
		return nil, err
	}
	if fs.Body, err = l.statement(field(n, "body")); err != nil {
		return nil, err
	}
	return fs, nil
}

// forInitOffset locates the empty init statement just inside the '('.
func (l *lowerer) forInitOffset(n *sitter.Node) int {
	if open := token(n, "("); open != nil {
		return int(open.EndByte())
	}
	return int(n.StartByte())
}

func (l *lowerer) rangeFor(n *sitter.Node) (ast.Node, error) {
	spec, err := l.declSpecifier(n)
	if err != nil {
		return nil, err
	}
	decl := &ast.SimpleDeclaration{DeclSpecifier: spec}
	dn := field(n, "declarator")
	loc := spec.Range()
	if dn != nil {
		d, err := l.declarator(dn)
		if err != nil {
			return nil, err
		}
		decl.Declarators = []ast.Node{d}
		loc = ast.Span(loc, d.Range())
	}
	decl.Loc = loc

	rf := &ast.RangeBasedForStatement{Base: l.base(n), Declaration: decl}
	if rf.Initializer, err = l.optInit(field(n, "right")); err != nil {
		return nil, err
	}
	if rf.Body, err = l.statement(field(n, "body")); err != nil {
		return nil, err
	}
	return rf, nil
}

func (l *lowerer) tryStatement(n *sitter.Node) (ast.Node, error) {
	ts := &ast.TryBlockStatement{Base: l.base(n)}
	var err error
	if body := field(n, "body"); body != nil {
		if ts.TryBody, err = l.compound(body); err != nil {
			return nil, err
		}
	}
	for _, c := range named(n) {
		if c.Type() != "catch_clause" {
			continue
		}
		h := &ast.CatchHandler{Base: l.base(c)}
		params := field(c, "parameters")
		if params != nil {
			h.CatchAll = hasToken(params, "...")
			for _, p := range named(params) {
				if p.Type() != "parameter_declaration" {
					continue
				}
				pd, err := l.parameterDeclaration(p)
				if err != nil {
					return nil, err
				}
				h.Declaration = &ast.SimpleDeclaration{
					Base:          pd.Base,
					DeclSpecifier: pd.DeclSpecifier,
					Declarators:   []ast.Node{pd.Declarator},
				}
				break
			}
		}
		if body := field(c, "body"); body != nil {
			if h.Body, err = l.compound(body); err != nil {
				return nil, err
			}
		}
		ts.Handlers = append(ts.Handlers, h)
	}
	return ts, nil
}
