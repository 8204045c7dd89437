package parser

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cppdriver/internal/ast"
)

// mismatch reports a tree-sitter node in a position the model cannot hold.
func mismatch(want string, n *sitter.Node) error {
	return &ast.MismatchError{
		Want:   want,
		Got:    ast.Kind(n.Type()),
		Source: fmt.Sprintf("tree-sitter %s at offset %d", n.Type(), n.StartByte()),
	}
}

func (l *lowerer) problemText(n *sitter.Node) string {
	const limit = 120
	text := strings.TrimSpace(l.text(n))
	if len(text) > limit {
		text = text[:limit] + "..."
	}
	return "syntax error: " + text
}

// topLevel lowers one item of a translation unit, namespace, linkage block
// or class body.
func (l *lowerer) topLevel(n *sitter.Node) ([]ast.Node, error) {
	d, err := l.declaration(n)
	if err != nil || d == nil {
		return nil, err
	}
	return []ast.Node{d}, nil
}

func (l *lowerer) declaration(n *sitter.Node) (ast.Node, error) {
	switch n.Type() {
	case "declaration", "field_declaration", "type_definition":
		return l.simpleDeclaration(n)
	case "function_definition":
		return l.functionDefinition(n)
	case "friend_declaration":
		return l.friend(n)
	case "access_specifier":
		return &ast.VisibilityLabel{Base: l.base(n), Visibility: visibility(l.text(n))}, nil
	case "namespace_definition":
		return l.namespace(n)
	case "using_declaration":
		return l.using(n)
	case "alias_declaration":
		alias, err := l.name(field(n, "name"))
		if err != nil {
			return nil, err
		}
		tid, err := l.typeId(field(n, "type"))
		if err != nil {
			return nil, err
		}
		return &ast.AliasDeclaration{Base: l.base(n), Alias: alias, MappingTypeId: tid}, nil
	case "template_declaration":
		return l.template(n)
	case "template_instantiation":
		return l.instantiation(n)
	case "linkage_specification":
		return l.linkage(n)
	case "static_assert_declaration":
		cond, err := l.expr(field(n, "condition"))
		if err != nil {
			return nil, err
		}
		msg, err := l.optExpr(field(n, "message"))
		if err != nil {
			return nil, err
		}
		return &ast.StaticAssertionDeclaration{Base: l.base(n), Condition: cond, Message: msg}, nil
	case "struct_specifier", "union_specifier", "class_specifier", "enum_specifier":
		return l.bareSpecifier(n)
	}
	if strings.HasSuffix(n.Type(), "asm_expression") || n.Type() == "asm_declaration" {
		return &ast.ASMDeclaration{Base: l.base(n), Assembly: l.text(n)}, nil
	}
	l.log.Debug("problem declaration", "type", n.Type(), "offset", n.StartByte())
	return &ast.ProblemDeclaration{Base: l.base(n), Problem: l.problemText(n)}, nil
}

// bareSpecifier lowers `struct S { ... };`, which the grammar leaves without
// a declaration wrapper.
func (l *lowerer) bareSpecifier(n *sitter.Node) (ast.Node, error) {
	spec, err := l.typeSpecifier(n)
	if err != nil {
		return nil, err
	}
	loc := l.rng(n)
	if next := n.NextSibling(); next != nil && next.Type() == ";" {
		loc = ast.Span(loc, l.rng(next))
	}
	return &ast.SimpleDeclaration{Base: ast.Base{Loc: loc}, DeclSpecifier: spec}, nil
}

func (l *lowerer) simpleDeclaration(n *sitter.Node) (*ast.SimpleDeclaration, error) {
	spec, err := l.declSpecifier(n)
	if err != nil {
		return nil, err
	}
	decl := &ast.SimpleDeclaration{Base: l.base(n), DeclSpecifier: spec}
	for _, dn := range fieldAll(n, "declarator") {
		d, err := l.initDeclarator(dn)
		if err != nil {
			return nil, err
		}
		decl.Declarators = append(decl.Declarators, d)
	}
	if n.Type() == "field_declaration" && len(decl.Declarators) > 0 {
		last := len(decl.Declarators) - 1
		d, err := l.memberTail(n, decl.Declarators[last].(ast.Declarator))
		if err != nil {
			return nil, err
		}
		decl.Declarators[last] = d
	}
	return decl, nil
}

// memberTail applies a member's bit-field width, default member initializer
// or pure-virtual marker to its last declarator.
func (l *lowerer) memberTail(n *sitter.Node, d ast.Declarator) (ast.Declarator, error) {
	for _, c := range children(n) {
		switch c.Type() {
		case "bitfield_clause":
			size, err := l.expr(firstNamed(c))
			if err != nil {
				return nil, err
			}
			fd := &ast.FieldDeclarator{
				Base:           ast.Base{Loc: ast.Span(d.Range(), l.rng(c))},
				DeclaratorCore: *d.Core(),
				BitFieldSize:   size,
			}
			return fd, nil
		case "pure_virtual_clause":
			if fn, ok := d.(*ast.FunctionDeclarator); ok {
				fn.PureVirtual = true
			}
		}
	}
	value := field(n, "default_value")
	if value == nil {
		return d, nil
	}
	if fn, ok := d.(*ast.FunctionDeclarator); ok && strings.TrimSpace(l.text(value)) == "0" {
		fn.PureVirtual = true
		return d, nil
	}
	init, err := l.initializer(n, value)
	if err != nil {
		return nil, err
	}
	d.Core().Initializer = init
	return d, nil
}

func (l *lowerer) initDeclarator(n *sitter.Node) (ast.Declarator, error) {
	if n.Type() != "init_declarator" {
		return l.declarator(n)
	}
	d, err := l.declaratorAt(field(n, "declarator"), l.rng(n))
	if err != nil {
		return nil, err
	}
	if value := field(n, "value"); value != nil {
		init, err := l.initializer(n, value)
		if err != nil {
			return nil, err
		}
		d.Core().Initializer = init
	}
	return d, nil
}

// initializer lowers the value of owner: `= clause`, `(args)` or `{list}`.
func (l *lowerer) initializer(owner, value *sitter.Node) (ast.Node, error) {
	if eq := token(owner, "="); eq != nil {
		clause, err := l.initClause(value)
		if err != nil {
			return nil, err
		}
		return &ast.EqualsInitializer{Base: l.span(eq, value), Clause: clause}, nil
	}
	if value.Type() == "argument_list" {
		args, err := l.arguments(value)
		if err != nil {
			return nil, err
		}
		return &ast.ConstructorInitializer{Base: l.base(value), Arguments: args}, nil
	}
	return l.initClause(value)
}

func (l *lowerer) initClause(n *sitter.Node) (ast.Node, error) {
	if n != nil && n.Type() == "initializer_list" {
		return l.initializerList(n)
	}
	return l.expr(n)
}

func (l *lowerer) initializerList(n *sitter.Node) (*ast.InitializerList, error) {
	list := &ast.InitializerList{Base: l.base(n)}
	for _, c := range named(n) {
		if c.Type() == "initializer_pair" {
			c = field(c, "value")
			if c == nil {
				continue
			}
		}
		clause, err := l.initClause(c)
		if err != nil {
			return nil, err
		}
		list.Clauses = append(list.Clauses, clause)
	}
	return list, nil
}

// token returns n's first direct anonymous child spelled tok.
func token(n *sitter.Node, tok string) *sitter.Node {
	for _, c := range children(n) {
		if !c.IsNamed() && c.Type() == tok {
			return c
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Function definitions and friends
// ---------------------------------------------------------------------------

func (l *lowerer) functionDefinition(n *sitter.Node) (*ast.FunctionDefinition, error) {
	spec, err := l.declSpecifier(n)
	if err != nil {
		return nil, err
	}
	fd := &ast.FunctionDefinition{Base: l.base(n), DeclSpecifier: spec}
	if dn := field(n, "declarator"); dn != nil {
		if fd.Declarator, err = l.declarator(dn); err != nil {
			return nil, err
		}
	}
	for _, c := range children(n) {
		switch c.Type() {
		case "field_initializer_list":
			for _, fi := range named(c) {
				chain, err := l.memberInitializer(fi)
				if err != nil {
					return nil, err
				}
				fd.MemberInitializers = append(fd.MemberInitializers, chain)
			}
		case "default_method_clause":
			fd.Defaulted = true
		case "delete_method_clause":
			fd.Deleted = true
		}
	}
	if body := field(n, "body"); body != nil {
		if fd.Body, err = l.compound(body); err != nil {
			return nil, err
		}
	}
	return fd, nil
}

func (l *lowerer) memberInitializer(n *sitter.Node) (ast.Node, error) {
	kids := named(n)
	if len(kids) == 0 {
		return &ast.ProblemDeclaration{Base: l.base(n), Problem: l.problemText(n)}, nil
	}
	id, err := l.name(kids[0])
	if err != nil {
		return nil, err
	}
	chain := &ast.ConstructorChainInitializer{Base: l.base(n), MemberId: id}
	if len(kids) > 1 {
		if chain.Initializer, err = l.initializer(n, kids[len(kids)-1]); err != nil {
			return nil, err
		}
	}
	return chain, nil
}

func (l *lowerer) friend(n *sitter.Node) (ast.Node, error) {
	inner := firstNamed(n)
	if inner == nil {
		return &ast.ProblemDeclaration{Base: l.base(n), Problem: l.problemText(n)}, nil
	}
	var (
		d   ast.Node
		err error
	)
	switch inner.Type() {
	case "declaration", "function_definition":
		d, err = l.declaration(inner)
	default:
		var spec ast.DeclSpecifier
		spec, err = l.typeSpecifier(inner)
		if err == nil {
			d = &ast.SimpleDeclaration{Base: l.base(n), DeclSpecifier: spec}
		}
	}
	if err != nil {
		return nil, err
	}
	switch d := d.(type) {
	case *ast.SimpleDeclaration:
		qualify(d.DeclSpecifier, func(q *ast.DeclSpec) { q.Friend = true })
		d.Loc = l.rng(n)
	case *ast.FunctionDefinition:
		qualify(d.DeclSpecifier, func(q *ast.DeclSpec) { q.Friend = true })
		d.Loc = l.rng(n)
	}
	return d, nil
}

func qualify(spec ast.Node, fn func(*ast.DeclSpec)) {
	if s, ok := spec.(ast.DeclSpecifier); ok {
		fn(s.Qualifiers())
	}
}

// ---------------------------------------------------------------------------
// Namespaces, using, templates, linkage
// ---------------------------------------------------------------------------

func (l *lowerer) namespace(n *sitter.Node) (ast.Node, error) {
	ns := &ast.NamespaceDefinition{Base: l.base(n), Inline: hasToken(n, "inline")}
	if nm := field(n, "name"); nm != nil {
		name, err := l.name(nm)
		if err != nil {
			return nil, err
		}
		ns.Name = name
	}
	decls, err := l.sequence(ns, children(field(n, "body")), l.topLevel)
	if err != nil {
		return nil, err
	}
	ns.Declarations = decls
	return ns, nil
}

func (l *lowerer) using(n *sitter.Node) (ast.Node, error) {
	target := firstNamed(n)
	if target == nil {
		return &ast.ProblemDeclaration{Base: l.base(n), Problem: l.problemText(n)}, nil
	}
	name, err := l.name(target)
	if err != nil {
		return nil, err
	}
	if hasToken(n, "namespace") {
		return &ast.UsingDirective{Base: l.base(n), QualifiedName: name}, nil
	}
	return &ast.UsingDeclaration{Base: l.base(n), Name: name, TypeName: hasToken(n, "typename")}, nil
}

func (l *lowerer) template(n *sitter.Node) (ast.Node, error) {
	td := &ast.TemplateDeclaration{Base: l.base(n), Exported: hasToken(n, "export")}
	params := field(n, "parameters")
	for _, p := range named(params) {
		tp, err := l.templateParameter(p)
		if err != nil {
			return nil, err
		}
		td.Parameters = append(td.Parameters, tp)
	}
	for _, c := range named(n) {
		if params != nil && c.StartByte() == params.StartByte() && c.Type() == params.Type() {
			continue
		}
		d, err := l.declaration(c)
		if err != nil {
			return nil, err
		}
		td.Declaration = d
		break
	}
	return td, nil
}

func (l *lowerer) templateParameter(n *sitter.Node) (ast.Node, error) {
	switch n.Type() {
	case "type_parameter_declaration", "optional_type_parameter_declaration", "variadic_type_parameter_declaration":
		tp := &ast.SimpleTypeTemplateParameter{
			Base:          l.base(n),
			ParameterPack: n.Type() == "variadic_type_parameter_declaration",
		}
		if hasToken(n, "typename") {
			tp.ParamKind = ast.ParamTypename
		}
		nm := field(n, "name")
		if nm == nil {
			for _, c := range named(n) {
				if c.Type() == "type_identifier" {
					nm = c
					break
				}
			}
		}
		if nm != nil {
			name, err := l.name(nm)
			if err != nil {
				return nil, err
			}
			tp.Name = name
		}
		if def := field(n, "default_type"); def != nil {
			tid, err := l.typeId(def)
			if err != nil {
				return nil, err
			}
			tp.DefaultType = tid
		}
		return tp, nil
	case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
		return l.parameterDeclaration(n)
	}
	return &ast.ProblemDeclaration{Base: l.base(n), Problem: l.problemText(n)}, nil
}

func (l *lowerer) instantiation(n *sitter.Node) (ast.Node, error) {
	inst := &ast.ExplicitTemplateInstantiation{Base: l.base(n)}
	for _, c := range children(n) {
		if c.Type() == "storage_class_specifier" {
			switch l.text(c) {
			case "extern":
				inst.Modifier = ast.InstantiationExtern
			case "static":
				inst.Modifier = ast.InstantiationStatic
			case "inline":
				inst.Modifier = ast.InstantiationInline
			}
		}
	}
	spec, err := l.declSpecifier(n)
	if err != nil {
		return nil, err
	}
	decl := &ast.SimpleDeclaration{Base: l.base(n), DeclSpecifier: spec}
	for _, dn := range fieldAll(n, "declarator") {
		d, err := l.declarator(dn)
		if err != nil {
			return nil, err
		}
		decl.Declarators = append(decl.Declarators, d)
	}
	inst.Declaration = decl
	return inst, nil
}

func (l *lowerer) linkage(n *sitter.Node) (ast.Node, error) {
	ls := &ast.LinkageSpecification{
		Base:    l.base(n),
		Literal: strings.Trim(l.text(field(n, "value")), `"`),
	}
	body := field(n, "body")
	if body == nil {
		return ls, nil
	}
	if body.Type() == "declaration_list" {
		decls, err := l.sequence(ls, children(body), l.topLevel)
		if err != nil {
			return nil, err
		}
		ls.Declarations = decls
		return ls, nil
	}
	d, err := l.declaration(body)
	if err != nil {
		return nil, err
	}
	ls.Declarations = []ast.Node{d}
	return ls, nil
}

func visibility(s string) ast.Visibility {
	switch strings.TrimSpace(s) {
	case "public":
		return ast.VisibilityPublic
	case "protected":
		return ast.VisibilityProtected
	case "private":
		return ast.VisibilityPrivate
	}
	return ast.VisibilityUnspecified
}
