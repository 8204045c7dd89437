package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cppdriver/internal/ast"
)

var castOps = map[string]ast.CastOp{
	"dynamic_cast":     ast.CastDynamic,
	"static_cast":      ast.CastStatic,
	"reinterpret_cast": ast.CastReinterpret,
	"const_cast":       ast.CastConst,
}

var unaryOps = map[string]ast.UnaryOp{
	"!":     ast.OpNot,
	"not":   ast.OpNot,
	"~":     ast.OpTilde,
	"compl": ast.OpTilde,
	"-":     ast.OpUnaryMinus,
	"+":     ast.OpUnaryPlus,
	"*":     ast.OpStar,
	"&":     ast.OpAmper,
}

func (l *lowerer) optExpr(n *sitter.Node) (ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	return l.expr(n)
}

// optInit is optExpr that also accepts a braced list.
func (l *lowerer) optInit(n *sitter.Node) (ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	return l.initClause(n)
}

func (l *lowerer) arguments(n *sitter.Node) ([]ast.Node, error) {
	var out []ast.Node
	for _, c := range named(n) {
		arg, err := l.initClause(c)
		if err != nil {
			return nil, err
		}
		out = append(out, arg)
	}
	return out, nil
}

// expr lowers an expression. A missing operand lowers to nil.
func (l *lowerer) expr(n *sitter.Node) (ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Type() {
	case "identifier", "qualified_identifier", "template_function", "destructor_name",
		"operator_name", "field_identifier":
		name, err := l.name(n)
		if err != nil {
			return nil, err
		}
		return &ast.IdExpression{Base: l.base(n), Name: name}, nil

	case "number_literal":
		return l.literal(n, numberKind(l.text(n))), nil
	case "char_literal":
		return l.literal(n, ast.LitChar), nil
	case "string_literal", "raw_string_literal", "concatenated_string":
		return l.literal(n, ast.LitString), nil
	case "user_defined_literal":
		kind := ast.LitString
		if inner := firstNamed(n); inner != nil {
			switch inner.Type() {
			case "number_literal":
				kind = numberKind(l.text(inner))
			case "char_literal":
				kind = ast.LitChar
			}
		}
		return l.literal(n, kind), nil
	case "true":
		return l.literal(n, ast.LitTrue), nil
	case "false":
		return l.literal(n, ast.LitFalse), nil
	case "this":
		return l.literal(n, ast.LitThis), nil
	case "nullptr", "null":
		if l.text(n) == "nullptr" {
			return l.literal(n, ast.LitNullptr), nil
		}
		// NULL is a macro, not a keyword.
		id := l.ident(n)
		l.expand(id.Identifier, false, id.Loc)
		return &ast.IdExpression{Base: l.base(n), Name: id}, nil

	case "parenthesized_expression":
		inner := firstNamed(n)
		if inner == nil {
			return &ast.ProblemExpression{Base: l.base(n), Problem: l.problemText(n)}, nil
		}
		operand, err := l.expr(inner)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Base: l.base(n), Operator: ast.OpBracketedPrimary, Operand: operand}, nil

	case "binary_expression", "assignment_expression":
		return l.binary(n)

	case "comma_expression":
		list := &ast.ExpressionList{Base: l.base(n)}
		if err := l.flattenComma(n, list); err != nil {
			return nil, err
		}
		return list, nil

	case "unary_expression", "pointer_expression":
		operand, err := l.expr(field(n, "argument"))
		if err != nil {
			return nil, err
		}
		op := unaryOps[strings.TrimSpace(l.text(field(n, "operator")))]
		return &ast.UnaryExpression{Base: l.base(n), Operator: op, Operand: operand}, nil

	case "update_expression":
		arg := field(n, "argument")
		operand, err := l.expr(arg)
		if err != nil {
			return nil, err
		}
		opNode := field(n, "operator")
		prefix := opNode != nil && arg != nil && opNode.StartByte() < arg.StartByte()
		incr := opNode != nil && l.text(opNode) == "++"
		var op ast.UnaryOp
		switch {
		case prefix && incr:
			op = ast.OpPrefixIncr
		case prefix:
			op = ast.OpPrefixDecr
		case incr:
			op = ast.OpPostfixIncr
		default:
			op = ast.OpPostfixDecr
		}
		return &ast.UnaryExpression{Base: l.base(n), Operator: op, Operand: operand}, nil

	case "sizeof_expression":
		pack := hasToken(n, "...")
		if t := field(n, "type"); t != nil {
			tid, err := l.typeId(t)
			if err != nil {
				return nil, err
			}
			op := ast.TypeIdSizeof
			if pack {
				op = ast.TypeIdSizeofParameterPack
			}
			return &ast.TypeIdExpression{Base: l.base(n), Operator: op, TypeId: tid}, nil
		}
		value := field(n, "value")
		if value == nil {
			value = firstNamed(n)
		}
		if value == nil {
			return &ast.ProblemExpression{Base: l.base(n), Problem: l.problemText(n)}, nil
		}
		operand, err := l.expr(value)
		if err != nil {
			return nil, err
		}
		op := ast.OpSizeof
		if pack {
			op = ast.OpSizeofParameterPack
		}
		return &ast.UnaryExpression{Base: l.base(n), Operator: op, Operand: operand}, nil

	case "alignof_expression":
		t := field(n, "type")
		if t == nil {
			return &ast.ProblemExpression{Base: l.base(n), Problem: l.problemText(n)}, nil
		}
		tid, err := l.typeId(t)
		if err != nil {
			return nil, err
		}
		return &ast.TypeIdExpression{Base: l.base(n), Operator: ast.TypeIdAlignof, TypeId: tid}, nil

	case "cast_expression":
		tid, err := l.typeId(field(n, "type"))
		if err != nil {
			return nil, err
		}
		operand, err := l.expr(field(n, "value"))
		if err != nil {
			return nil, err
		}
		return &ast.CastExpression{Base: l.base(n), Operator: ast.CastNormal, TypeId: tid, Operand: operand}, nil

	case "compound_literal_expression":
		return l.compoundLiteral(n)

	case "call_expression":
		return l.call(n)

	case "field_expression":
		owner, err := l.expr(field(n, "argument"))
		if err != nil {
			return nil, err
		}
		fieldName, err := l.name(field(n, "field"))
		if err != nil {
			return nil, err
		}
		return &ast.FieldReference{
			Base:               l.base(n),
			Owner:              owner,
			Field:              fieldName,
			PointerDereference: l.text(field(n, "operator")) == "->",
			Template:           hasToken(n, "template"),
		}, nil

	case "subscript_expression":
		return l.subscript(n)

	case "conditional_expression":
		ce := &ast.ConditionalExpression{Base: l.base(n)}
		var err error
		if ce.Condition, err = l.expr(field(n, "condition")); err != nil {
			return nil, err
		}
		if ce.Positive, err = l.optExpr(field(n, "consequence")); err != nil {
			return nil, err
		}
		if ce.Negative, err = l.optExpr(field(n, "alternative")); err != nil {
			return nil, err
		}
		return ce, nil

	case "new_expression":
		return l.newExpression(n)

	case "delete_expression":
		de := &ast.DeleteExpression{
			Base:     l.base(n),
			Global:   hasToken(n, "::"),
			Vectored: hasToken(n, "["),
		}
		if arg := lastNamed(n); arg != nil {
			operand, err := l.expr(arg)
			if err != nil {
				return nil, err
			}
			de.Operand = operand
		}
		return de, nil

	case "lambda_expression":
		return l.lambda(n)

	case "initializer_list":
		return l.initializerList(n)

	case "extension_expression":
		if inner := firstNamed(n); inner != nil {
			return l.expr(inner)
		}
	}
	l.log.Debug("problem expression", "type", n.Type(), "offset", n.StartByte())
	return &ast.ProblemExpression{Base: l.base(n), Problem: l.problemText(n)}, nil
}

func (l *lowerer) literal(n *sitter.Node, kind ast.LiteralKind) *ast.LiteralExpression {
	return &ast.LiteralExpression{Base: l.base(n), LitKind: kind, Value: l.text(n)}
}

// numberKind tells integer from floating literals by their spelling.
func numberKind(s string) ast.LiteralKind {
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") {
		if strings.ContainsAny(lower, ".p") {
			return ast.LitFloat
		}
		return ast.LitInteger
	}
	if strings.ContainsAny(lower, ".e") {
		return ast.LitFloat
	}
	return ast.LitInteger
}

func (l *lowerer) binary(n *sitter.Node) (ast.Node, error) {
	left, err := l.expr(field(n, "left"))
	if err != nil {
		return nil, err
	}
	right, err := l.initClause(field(n, "right"))
	if err != nil {
		return nil, err
	}
	op := ast.BinaryOpFromSymbol(strings.TrimSpace(l.text(field(n, "operator"))))
	return &ast.BinaryExpression{Base: l.base(n), Operator: op, Operand1: left, Operand2: right}, nil
}

// flattenComma appends the operands of a right-nested comma chain in source
// order.
func (l *lowerer) flattenComma(n *sitter.Node, list *ast.ExpressionList) error {
	for _, side := range []*sitter.Node{field(n, "left"), field(n, "right")} {
		if side == nil {
			continue
		}
		if side.Type() == "comma_expression" {
			if err := l.flattenComma(side, list); err != nil {
				return err
			}
			continue
		}
		e, err := l.expr(side)
		if err != nil {
			return err
		}
		list.Expressions = append(list.Expressions, e)
	}
	return nil
}

func (l *lowerer) call(n *sitter.Node) (ast.Node, error) {
	fn := field(n, "function")
	argList := field(n, "arguments")

	if fn != nil && fn.Type() == "template_function" {
		if op, ok := castOps[l.text(field(fn, "name"))]; ok {
			return l.namedCast(n, fn, argList, op)
		}
	}
	if fn != nil && fn.Type() == "primitive_type" {
		if _, ok := simpleTypes[l.text(fn)]; ok {
			spec, err := l.typeSpecifier(fn)
			if err != nil {
				return nil, err
			}
			args, err := l.arguments(argList)
			if err != nil {
				return nil, err
			}
			return &ast.SimpleTypeConstructorExpression{
				Base:          l.base(n),
				DeclSpecifier: spec,
				Initializer:   &ast.ConstructorInitializer{Base: l.base(argList), Arguments: args},
			}, nil
		}
	}

	fc := &ast.FunctionCallExpression{Base: l.base(n)}
	if fn != nil {
		if fn.Type() == "identifier" {
			l.expand(l.text(fn), true, l.rng(n))
		}
		callee, err := l.expr(fn)
		if err != nil {
			return nil, err
		}
		fc.Function = callee
	}
	args, err := l.arguments(argList)
	if err != nil {
		return nil, err
	}
	fc.Arguments = args
	return fc, nil
}

func (l *lowerer) namedCast(n, fn, argList *sitter.Node, op ast.CastOp) (ast.Node, error) {
	ce := &ast.CastExpression{Base: l.base(n), Operator: op}
	if targs := named(field(fn, "arguments")); len(targs) > 0 {
		tid, err := l.typeId(targs[0])
		if err != nil {
			return nil, err
		}
		ce.TypeId = tid
	}
	if args := named(argList); len(args) > 0 {
		operand, err := l.expr(args[0])
		if err != nil {
			return nil, err
		}
		ce.Operand = operand
	}
	return ce, nil
}

// compoundLiteral lowers `T{...}` as a type construction and C's
// `(T){...}` as a cast of the braced list.
func (l *lowerer) compoundLiteral(n *sitter.Node) (ast.Node, error) {
	t := field(n, "type")
	value := field(n, "value")
	if t == nil || value == nil {
		return &ast.ProblemExpression{Base: l.base(n), Problem: l.problemText(n)}, nil
	}
	list, err := l.initClause(value)
	if err != nil {
		return nil, err
	}
	if t.Type() == "type_descriptor" {
		tid, err := l.typeId(t)
		if err != nil {
			return nil, err
		}
		return &ast.CastExpression{Base: l.base(n), Operator: ast.CastNormal, TypeId: tid, Operand: list}, nil
	}
	spec, err := l.typeSpecifier(t)
	if err != nil {
		return nil, err
	}
	return &ast.SimpleTypeConstructorExpression{Base: l.base(n), DeclSpecifier: spec, Initializer: list}, nil
}

func (l *lowerer) subscript(n *sitter.Node) (ast.Node, error) {
	array, err := l.expr(field(n, "argument"))
	if err != nil {
		return nil, err
	}
	se := &ast.ArraySubscriptExpression{Base: l.base(n), Array: array}
	index := field(n, "index")
	if index == nil {
		// Newer grammars wrap the index in a subscript_argument_list.
		if indices := field(n, "indices"); indices != nil {
			index = firstNamed(indices)
		}
	}
	if index != nil {
		if se.Argument, err = l.initClause(index); err != nil {
			return nil, err
		}
	}
	return se, nil
}

func (l *lowerer) newExpression(n *sitter.Node) (ast.Node, error) {
	ne := &ast.NewExpression{Base: l.base(n), Global: hasToken(n, "::")}
	if placement := field(n, "placement"); placement != nil {
		args, err := l.arguments(placement)
		if err != nil {
			return nil, err
		}
		ne.Placement = args
	}

	t := field(n, "type")
	if t == nil {
		return &ast.ProblemExpression{Base: l.base(n), Problem: l.problemText(n)}, nil
	}
	spec, err := l.typeSpecifier(t)
	if err != nil {
		return nil, err
	}
	tid := &ast.TypeId{Base: l.base(t), DeclSpecifier: spec}
	if dn := field(n, "declarator"); dn != nil {
		ad := &ast.ArrayDeclarator{Base: l.base(dn)}
		for cur := dn; cur != nil; cur = childOfType(cur, "new_declarator") {
			mod := &ast.ArrayModifier{Base: l.base(cur)}
			if size := field(cur, "length"); size != nil {
				if mod.ConstantExpression, err = l.expr(size); err != nil {
					return nil, err
				}
			}
			if rb := token(cur, "]"); rb != nil {
				mod.Loc = ast.Range{Offset: int(cur.StartByte()), Length: int(rb.EndByte() - cur.StartByte())}
			}
			ad.Modifiers = append(ad.Modifiers, mod)
		}
		tid.AbstractDeclarator = ad
		tid.Loc = ast.Span(tid.Loc, ad.Loc)
		ne.ArrayAllocation = true
	} else {
		tid.AbstractDeclarator = &ast.PlainDeclarator{Base: ast.Base{Loc: ast.Range{Offset: int(t.EndByte())}}}
	}
	ne.TypeId = tid
	ne.NewTypeId = true

	if args := field(n, "arguments"); args != nil {
		if args.Type() == "argument_list" {
			list, err := l.arguments(args)
			if err != nil {
				return nil, err
			}
			ne.Initializer = &ast.ConstructorInitializer{Base: l.base(args), Arguments: list}
		} else {
			if ne.Initializer, err = l.initClause(args); err != nil {
				return nil, err
			}
		}
	}
	return ne, nil
}

func childOfType(n *sitter.Node, t string) *sitter.Node {
	for _, c := range named(n) {
		if c.Type() == t {
			return c
		}
	}
	return nil
}

func (l *lowerer) lambda(n *sitter.Node) (ast.Node, error) {
	le := &ast.LambdaExpression{Base: l.base(n)}
	for _, c := range named(field(n, "captures")) {
		switch c.Type() {
		case "lambda_default_capture":
			if strings.TrimSpace(l.text(c)) == "&" {
				le.CaptureDefault = ast.CaptureByReference
			} else {
				le.CaptureDefault = ast.CaptureByCopy
			}
		case "this":
			le.Captures = append(le.Captures, &ast.Capture{Base: l.base(c), CapturesThis: true})
		case "pointer_expression":
			arg := field(c, "argument")
			if arg != nil && arg.Type() == "this" {
				le.Captures = append(le.Captures, &ast.Capture{Base: l.base(c), CapturesThis: true})
				continue
			}
			capture := &ast.Capture{Base: l.base(c), ByReference: l.text(field(c, "operator")) == "&"}
			if arg != nil {
				id, err := l.name(arg)
				if err != nil {
					return nil, err
				}
				capture.Identifier = id
			}
			le.Captures = append(le.Captures, capture)
		case "identifier":
			id, err := l.name(c)
			if err != nil {
				return nil, err
			}
			le.Captures = append(le.Captures, &ast.Capture{Base: l.base(c), Identifier: id})
		default:
			le.Captures = append(le.Captures, &ast.Capture{Base: l.base(c), Identifier: l.ident(c)})
		}
	}
	if dn := field(n, "declarator"); dn != nil {
		d, err := l.declarator(dn)
		if err != nil {
			return nil, err
		}
		le.Declarator = d
	}
	if body := field(n, "body"); body != nil {
		cs, err := l.compound(body)
		if err != nil {
			return nil, err
		}
		le.Body = cs
	}
	return le, nil
}
