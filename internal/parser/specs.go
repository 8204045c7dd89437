package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cppdriver/internal/ast"
)

var simpleTypes = map[string]ast.SimpleType{
	"void":        ast.TypeVoid,
	"char":        ast.TypeChar,
	"int":         ast.TypeInt,
	"float":       ast.TypeFloat,
	"double":      ast.TypeDouble,
	"bool":        ast.TypeBool,
	"_Bool":       ast.TypeBool,
	"wchar_t":     ast.TypeWchar,
	"char16_t":    ast.TypeChar16,
	"char32_t":    ast.TypeChar32,
	"auto":        ast.TypeAuto,
	"__int128":    ast.TypeInt128,
	"__float128":  ast.TypeFloat128,
	"_Decimal32":  ast.TypeDecimal32,
	"_Decimal64":  ast.TypeDecimal64,
	"_Decimal128": ast.TypeDecimal128,
}

// declSpecifier builds the specifier of a declaration-like node n from its
// type child and the modifiers around it. A node without a type (a
// constructor) gets an unspecified simple specifier.
func (l *lowerer) declSpecifier(n *sitter.Node) (ast.Node, error) {
	var (
		q    ast.DeclSpec
		loc  ast.Range
		seen bool
	)
	cover := func(c *sitter.Node) {
		if !seen {
			loc, seen = l.rng(c), true
			return
		}
		loc = ast.Span(loc, l.rng(c))
	}

	for _, c := range children(n) {
		switch c.Type() {
		case "storage_class_specifier", "type_qualifier":
			applyModifier(&q, l.text(c))
			cover(c)
		case "virtual", "virtual_function_specifier":
			q.Virtual = true
			cover(c)
		case "explicit_function_specifier":
			q.Explicit = true
			cover(c)
		case "typedef":
			q.Storage = ast.StorageTypedef
			cover(c)
		}
	}

	var spec ast.DeclSpecifier
	if typ := field(n, "type"); typ != nil {
		var err error
		if spec, err = l.typeSpecifier(typ); err != nil {
			return nil, err
		}
		cover(typ)
	} else {
		if !seen {
			loc = ast.Range{Offset: int(n.StartByte())}
		}
		spec = &ast.SimpleDeclSpecifier{}
	}

	merge(spec.Qualifiers(), q)
	setLoc(spec, loc)
	return spec, nil
}

func applyModifier(q *ast.DeclSpec, kw string) {
	switch strings.TrimSpace(kw) {
	case "extern":
		q.Storage = ast.StorageExtern
	case "static":
		q.Storage = ast.StorageStatic
	case "register":
		q.Storage = ast.StorageRegister
	case "auto":
		q.Storage = ast.StorageAuto
	case "mutable":
		q.Storage = ast.StorageMutable
	case "inline", "__inline", "__inline__", "__forceinline":
		q.Inline = true
	case "thread_local", "_Thread_local", "__thread":
		q.ThreadLocal = true
	case "const":
		q.Const = true
	case "volatile":
		q.Volatile = true
	case "restrict", "__restrict", "__restrict__":
		q.Restrict = true
	case "constexpr", "consteval", "constinit":
		q.ConstExpr = true
	}
}

func merge(dst *ast.DeclSpec, src ast.DeclSpec) {
	if src.Storage != ast.StorageUnspecified {
		dst.Storage = src.Storage
	}
	dst.Const = dst.Const || src.Const
	dst.Volatile = dst.Volatile || src.Volatile
	dst.Restrict = dst.Restrict || src.Restrict
	dst.Inline = dst.Inline || src.Inline
	dst.ConstExpr = dst.ConstExpr || src.ConstExpr
	dst.Explicit = dst.Explicit || src.Explicit
	dst.Friend = dst.Friend || src.Friend
	dst.ThreadLocal = dst.ThreadLocal || src.ThreadLocal
	dst.Virtual = dst.Virtual || src.Virtual
}

func setLoc(spec ast.DeclSpecifier, loc ast.Range) {
	switch s := spec.(type) {
	case *ast.SimpleDeclSpecifier:
		s.Loc = loc
	case *ast.NamedTypeSpecifier:
		s.Loc = loc
	case *ast.CompositeTypeSpecifier:
		s.Loc = loc
	case *ast.ElaboratedTypeSpecifier:
		s.Loc = loc
	case *ast.EnumerationSpecifier:
		s.Loc = loc
	}
}

// typeSpecifier lowers the type child of a declaration.
func (l *lowerer) typeSpecifier(t *sitter.Node) (ast.DeclSpecifier, error) {
	switch t.Type() {
	case "primitive_type":
		if st, ok := simpleTypes[l.text(t)]; ok {
			return &ast.SimpleDeclSpecifier{Base: l.base(t), Type: st}, nil
		}
		// size_t, int32_t and friends
		return &ast.NamedTypeSpecifier{Base: l.base(t), Name: l.ident(t)}, nil
	case "sized_type_specifier":
		s := &ast.SimpleDeclSpecifier{Base: l.base(t)}
		for _, c := range children(t) {
			switch l.text(c) {
			case "signed":
				s.Signed = true
			case "unsigned":
				s.Unsigned = true
			case "short":
				s.Short = true
			case "long":
				if s.Long {
					s.Long, s.LongLong = false, true
				} else {
					s.Long = true
				}
			}
		}
		if inner := field(t, "type"); inner != nil {
			s.Type = simpleTypes[l.text(inner)]
		}
		return s, nil
	case "type_identifier", "qualified_identifier", "template_type", "scoped_type_identifier":
		name, err := l.name(t)
		if err != nil {
			return nil, err
		}
		return &ast.NamedTypeSpecifier{Base: l.base(t), Name: name}, nil
	case "dependent_type":
		inner := firstNamed(t)
		if inner == nil {
			return nil, mismatch("dependent type name", t)
		}
		name, err := l.name(inner)
		if err != nil {
			return nil, err
		}
		return &ast.NamedTypeSpecifier{Base: l.base(t), Name: name, TypeName: true}, nil
	case "macro_type_specifier":
		name, err := l.name(field(t, "name"))
		if err != nil {
			return nil, err
		}
		return &ast.NamedTypeSpecifier{Base: l.base(t), Name: name}, nil
	case "struct_specifier", "union_specifier", "class_specifier":
		return l.composite(t)
	case "enum_specifier":
		return l.enumeration(t)
	case "auto", "placeholder_type_specifier":
		if strings.Contains(l.text(t), "decltype") {
			return &ast.SimpleDeclSpecifier{Base: l.base(t), Type: ast.TypeDecltypeAuto}, nil
		}
		return &ast.SimpleDeclSpecifier{Base: l.base(t), Type: ast.TypeAuto}, nil
	case "decltype":
		s := &ast.SimpleDeclSpecifier{Base: l.base(t), Type: ast.TypeDecltype}
		inner := firstNamed(t)
		if inner == nil || inner.Type() == "auto" {
			s.Type = ast.TypeDecltypeAuto
			return s, nil
		}
		e, err := l.expr(inner)
		if err != nil {
			return nil, err
		}
		s.DeclTypeExpression = e
		return s, nil
	case "ERROR":
		return &ast.NamedTypeSpecifier{Base: l.base(t), Name: l.ident(t)}, nil
	}
	return nil, mismatch("type specifier", t)
}

func (l *lowerer) composite(t *sitter.Node) (ast.DeclSpecifier, error) {
	var name ast.Node
	if nm := field(t, "name"); nm != nil {
		var err error
		if name, err = l.name(nm); err != nil {
			return nil, err
		}
	}

	body := field(t, "body")
	if body == nil {
		e := &ast.ElaboratedTypeSpecifier{Base: l.base(t), Name: name, ElabKind: ast.ElabStruct}
		switch t.Type() {
		case "union_specifier":
			e.ElabKind = ast.ElabUnion
		case "class_specifier":
			e.ElabKind = ast.ElabClass
		}
		return e, nil
	}

	c := &ast.CompositeTypeSpecifier{Base: l.base(t), Name: name, Key: ast.KeyStruct}
	switch t.Type() {
	case "union_specifier":
		c.Key = ast.KeyUnion
	case "class_specifier":
		c.Key = ast.KeyClass
	}
	for _, k := range children(t) {
		switch k.Type() {
		case "virtual_specifier":
			c.Final = c.Final || l.text(k) == "final"
		case "base_class_clause":
			bases, err := l.bases(k)
			if err != nil {
				return nil, err
			}
			c.BaseSpecifiers = bases
		}
	}
	members, err := l.sequence(c, children(body), l.topLevel)
	if err != nil {
		return nil, err
	}
	c.Members = members
	return c, nil
}

// bases splits `: public A, virtual B` into one specifier per class name.
func (l *lowerer) bases(clause *sitter.Node) ([]ast.Node, error) {
	var (
		out   []ast.Node
		vis   ast.Visibility
		virt  bool
		start = -1
	)
	for _, k := range children(clause) {
		switch k.Type() {
		case ":", ",", "comment":
			continue
		case "access_specifier":
			vis = visibility(l.text(k))
		case "virtual":
			virt = true
		case "type_identifier", "qualified_identifier", "template_type":
			name, err := l.name(k)
			if err != nil {
				return nil, err
			}
			if start < 0 {
				start = int(k.StartByte())
			}
			out = append(out, &ast.BaseSpecifier{
				Base:       ast.Base{Loc: ast.Range{Offset: start, Length: int(k.EndByte()) - start}},
				Name:       name,
				Visibility: vis,
				Virtual:    virt,
			})
			vis, virt, start = ast.VisibilityUnspecified, false, -1
			continue
		}
		if start < 0 {
			start = int(k.StartByte())
		}
	}
	return out, nil
}

func (l *lowerer) enumeration(t *sitter.Node) (ast.DeclSpecifier, error) {
	var name ast.Node
	if nm := field(t, "name"); nm != nil {
		var err error
		if name, err = l.name(nm); err != nil {
			return nil, err
		}
	}
	scoped := hasToken(t, "class") || hasToken(t, "struct")
	base := field(t, "base")
	body := field(t, "body")
	if body == nil && base == nil && !scoped {
		return &ast.ElaboratedTypeSpecifier{Base: l.base(t), Name: name, ElabKind: ast.ElabEnum}, nil
	}

	e := &ast.EnumerationSpecifier{Base: l.base(t), Name: name, Scoped: scoped, Opaque: body == nil}
	if base != nil {
		bt, err := l.typeSpecifier(base)
		if err != nil {
			return nil, err
		}
		e.BaseType = bt
	}
	if body != nil {
		enumerators, err := l.sequence(e, children(body), l.enumerator)
		if err != nil {
			return nil, err
		}
		e.Enumerators = enumerators
	}
	return e, nil
}

func (l *lowerer) enumerator(n *sitter.Node) ([]ast.Node, error) {
	if n.Type() != "enumerator" {
		return nil, nil
	}
	name, err := l.name(field(n, "name"))
	if err != nil {
		return nil, err
	}
	value, err := l.optExpr(field(n, "value"))
	if err != nil {
		return nil, err
	}
	return []ast.Node{&ast.Enumerator{Base: l.base(n), Name: name, Value: value}}, nil
}

// typeId lowers a type_descriptor: specifier plus optional abstract
// declarator. The declarator is always present, empty when the source has
// none.
func (l *lowerer) typeId(n *sitter.Node) (ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	tid := &ast.TypeId{Base: l.base(n)}
	if n.Type() != "type_descriptor" {
		spec, err := l.typeSpecifier(n)
		if err != nil {
			return nil, err
		}
		tid.DeclSpecifier = spec
		tid.AbstractDeclarator = &ast.PlainDeclarator{Base: ast.Base{Loc: ast.Range{Offset: int(n.EndByte())}}}
		return tid, nil
	}
	spec, err := l.declSpecifier(n)
	if err != nil {
		return nil, err
	}
	tid.DeclSpecifier = spec
	if dn := field(n, "declarator"); dn != nil {
		d, err := l.declarator(dn)
		if err != nil {
			return nil, err
		}
		tid.AbstractDeclarator = d
	} else {
		tid.AbstractDeclarator = &ast.PlainDeclarator{Base: ast.Base{Loc: ast.Range{Offset: spec.Range().End()}}}
	}
	return tid, nil
}
