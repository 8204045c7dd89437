package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cppdriver/internal/ast"
)

func parse(t *testing.T, d Dialect, src string) *ast.Result {
	t.Helper()
	p, err := New(d)
	require.NoError(t, err)
	res, err := p.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	require.NotNil(t, res.Root)
	return res
}

func decls(t *testing.T, res *ast.Result) []ast.Node {
	t.Helper()
	return res.Root.Declarations
}

func simpleDecl(t *testing.T, n ast.Node) *ast.SimpleDeclaration {
	t.Helper()
	sd, ok := n.(*ast.SimpleDeclaration)
	require.True(t, ok, "got %T", n)
	return sd
}

func declaredName(t *testing.T, n ast.Node) string {
	t.Helper()
	sd := simpleDecl(t, n)
	require.Len(t, sd.Declarators, 1)
	d, ok := sd.Declarators[0].(ast.Declarator)
	require.True(t, ok)
	name, ok := d.Core().Name.(*ast.Name)
	require.True(t, ok, "got %T", d.Core().Name)
	return name.Identifier
}

func functionBody(t *testing.T, res *ast.Result) []ast.Node {
	t.Helper()
	require.NotEmpty(t, res.Root.Declarations)
	fd, ok := res.Root.Declarations[0].(*ast.FunctionDefinition)
	require.True(t, ok, "got %T", res.Root.Declarations[0])
	body, ok := fd.Body.(*ast.CompoundStatement)
	require.True(t, ok)
	return body.Statements
}

func directivesOf[T ast.Preprocessor](res *ast.Result) []T {
	var out []T
	for _, d := range res.Directives {
		if t, ok := d.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// =============================================================================
// Dialects
// =============================================================================

func TestParseDialect(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Dialect{
		"":    DialectCPP,
		"cpp": DialectCPP,
		"c++": DialectCPP,
		"C":   DialectC,
	} {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDialect("java")
	assert.Error(t, err)
}

func TestDialectForFile(t *testing.T) {
	t.Parallel()

	d, ok := DialectForFile("src/main.c")
	require.True(t, ok)
	assert.Equal(t, DialectC, d)

	d, ok = DialectForFile("include/widget.hpp")
	require.True(t, ok)
	assert.Equal(t, DialectCPP, d)

	_, ok = DialectForFile("setup.py")
	assert.False(t, ok)
}

// =============================================================================
// Declarations
// =============================================================================

func TestIntX(t *testing.T) {
	t.Parallel()

	res := parse(t, DialectCPP, "int x = 1;")
	assert.Equal(t, ast.Range{Offset: 0, Length: 10}, res.Root.Range())
	require.Len(t, decls(t, res), 1)

	sd := simpleDecl(t, decls(t, res)[0])
	assert.Equal(t, ast.Range{Offset: 0, Length: 10}, sd.Range())

	spec, ok := sd.DeclSpecifier.(*ast.SimpleDeclSpecifier)
	require.True(t, ok)
	assert.Equal(t, ast.TypeInt, spec.Type)

	require.Len(t, sd.Declarators, 1)
	d := sd.Declarators[0].(ast.Declarator)
	assert.Equal(t, ast.Range{Offset: 4, Length: 5}, d.Range())
	assert.Equal(t, "x", d.Core().Name.(*ast.Name).Identifier)

	eq, ok := d.Core().Initializer.(*ast.EqualsInitializer)
	require.True(t, ok)
	assert.Equal(t, ast.Range{Offset: 6, Length: 3}, eq.Range())

	lit, ok := eq.Clause.(*ast.LiteralExpression)
	require.True(t, ok)
	assert.Equal(t, ast.LitInteger, lit.LitKind)
	assert.Equal(t, "1", lit.Value)

	// Link sets parents and roles.
	assert.Same(t, res.Root, sd.Parent())
	assert.Equal(t, sd, d.Parent())
}

func TestParameters(t *testing.T) {
	t.Parallel()

	res := parse(t, DialectCPP, "void f(int a, Foo b);\nvoid g(int);\n")
	require.Len(t, decls(t, res), 2)

	fn := simpleDecl(t, decls(t, res)[0]).Declarators[0].(*ast.FunctionDeclarator)
	assert.Equal(t, "f", fn.Name.(*ast.Name).Identifier)
	require.Len(t, fn.Parameters, 2)

	a := fn.Parameters[0].(*ast.ParameterDeclaration)
	assert.IsType(t, &ast.SimpleDeclSpecifier{}, a.DeclSpecifier)
	assert.Equal(t, "a", a.Declarator.(ast.Declarator).Core().Name.(*ast.Name).Identifier)

	b := fn.Parameters[1].(*ast.ParameterDeclaration)
	named, ok := b.DeclSpecifier.(*ast.NamedTypeSpecifier)
	require.True(t, ok)
	assert.Equal(t, "Foo", named.Name.(*ast.Name).Identifier)

	g := simpleDecl(t, decls(t, res)[1]).Declarators[0].(*ast.FunctionDeclarator)
	require.Len(t, g.Parameters, 1)
	unnamed := g.Parameters[0].(*ast.ParameterDeclaration)
	d, ok := unnamed.Declarator.(*ast.PlainDeclarator)
	require.True(t, ok, "an unnamed parameter still gets a declarator")
	assert.Nil(t, d.Name)
	assert.Zero(t, d.Range().Length)
}

func TestPointerDeclarator(t *testing.T) {
	t.Parallel()

	res := parse(t, DialectC, "const char *p;")
	sd := simpleDecl(t, decls(t, res)[0])
	d := sd.Declarators[0].(ast.Declarator)
	require.Len(t, d.Core().PointerOperators, 1)
	assert.IsType(t, &ast.Pointer{}, d.Core().PointerOperators[0])
	assert.Equal(t, "p", d.Core().Name.(*ast.Name).Identifier)
	assert.True(t, sd.DeclSpecifier.(ast.DeclSpecifier).Qualifiers().Const)
}

// =============================================================================
// Statements
// =============================================================================

func TestCFunctionBody(t *testing.T) {
	t.Parallel()

	res := parse(t, DialectC, "int main(void) { return 0; }\n")
	stmts := functionBody(t, res)
	require.Len(t, stmts, 1)
	ret, ok := stmts[0].(*ast.ReturnStatement)
	require.True(t, ok)
	assert.IsType(t, &ast.LiteralExpression{}, ret.ReturnValue)
}

func TestForLoop(t *testing.T) {
	t.Parallel()

	res := parse(t, DialectCPP, "void f() { for (int i = 0; i < 3; i++) { if (i) break; } }")
	stmts := functionBody(t, res)
	require.Len(t, stmts, 1)

	fs, ok := stmts[0].(*ast.ForStatement)
	require.True(t, ok)
	assert.IsType(t, &ast.DeclarationStatement{}, fs.Init)

	cond, ok := fs.Condition.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, ast.OpLessThan, cond.Operator)

	iter, ok := fs.Iteration.(*ast.UnaryExpression)
	require.True(t, ok)
	assert.Equal(t, ast.OpPostfixIncr, iter.Operator)
}

func TestSwitchFlattensCases(t *testing.T) {
	t.Parallel()

	src := "void f(int x) { switch (x) { case 1: x++; break; default: break; } }"
	res := parse(t, DialectCPP, src)
	stmts := functionBody(t, res)
	require.Len(t, stmts, 1)

	sw, ok := stmts[0].(*ast.SwitchStatement)
	require.True(t, ok)
	body := sw.Body.(*ast.CompoundStatement)

	var kinds []ast.Kind
	for _, s := range body.Statements {
		kinds = append(kinds, s.Kind())
	}
	assert.Equal(t, []ast.Kind{
		ast.KindCaseStatement,
		ast.KindExpressionStatement,
		ast.KindBreakStatement,
		ast.KindDefaultStatement,
		ast.KindBreakStatement,
	}, kinds)
}

func TestCalls(t *testing.T) {
	t.Parallel()

	res := parse(t, DialectCPP, "void f() { g(1, 2); int n = static_cast<int>(2.5); }")
	stmts := functionBody(t, res)
	require.Len(t, stmts, 2)

	call, ok := stmts[0].(*ast.ExpressionStatement).Expression.(*ast.FunctionCallExpression)
	require.True(t, ok)
	assert.Len(t, call.Arguments, 2)

	ds := stmts[1].(*ast.DeclarationStatement)
	d := ds.Declaration.(*ast.SimpleDeclaration).Declarators[0].(ast.Declarator)
	cast, ok := d.Core().Initializer.(*ast.EqualsInitializer).Clause.(*ast.CastExpression)
	require.True(t, ok)
	assert.Equal(t, ast.CastStatic, cast.Operator)
	lit := cast.Operand.(*ast.LiteralExpression)
	assert.Equal(t, ast.LitFloat, lit.LitKind)
}

// =============================================================================
// Preprocessor
// =============================================================================

func TestObjectMacroSites(t *testing.T) {
	t.Parallel()

	src := "#define ONE 1\nint x = ONE;\nint y = ONE;\n"
	res := parse(t, DialectCPP, src)

	require.Len(t, res.Macros, 1)
	def := res.Macros[0].Definition
	assert.Equal(t, "ONE", def.Name)
	assert.Equal(t, "1", def.Body)
	assert.Nil(t, def.Params)

	first := strings.Index(src, "ONE;")
	second := strings.LastIndex(src, "ONE;")
	assert.Equal(t, []ast.Range{{Offset: first, Length: 3}, {Offset: second, Length: 3}}, res.Macros[0].Sites)

	defs := directivesOf[*ast.MacroDefinition](res)
	require.Len(t, defs, 1)
	assert.Same(t, def, defs[0])
}

func TestFunctionMacroSites(t *testing.T) {
	t.Parallel()

	src := "#define SQ(x) ((x)*(x))\nint y = SQ(2);\n"
	res := parse(t, DialectCPP, src)

	require.Len(t, res.Macros, 1)
	def := res.Macros[0].Definition
	assert.Equal(t, []string{"x"}, def.Params)
	assert.Equal(t, ast.KindFunctionStyleMacro, def.Kind())
	assert.Equal(t, []ast.Range{{Offset: strings.Index(src, "SQ(2)"), Length: 5}}, res.Macros[0].Sites)
}

func TestIfdefSelectsBranch(t *testing.T) {
	t.Parallel()

	src := "#define A\n#ifdef A\nint a;\n#else\nint b;\n#endif\n"
	res := parse(t, DialectCPP, src)

	require.Len(t, decls(t, res), 1)
	assert.Equal(t, "a", declaredName(t, decls(t, res)[0]))

	conds := directivesOf[*ast.Conditional](res)
	require.Len(t, conds, 3)
	assert.Equal(t, ast.KindIfdef, conds[0].Kind())
	assert.True(t, conds[0].Taken)
	assert.Equal(t, "A", conds[0].MacroReference)
	assert.Equal(t, ast.KindElse, conds[1].Kind())
	assert.False(t, conds[1].Taken)
	assert.Equal(t, ast.KindEndif, conds[2].Kind())
}

func TestIfndefAndIfZero(t *testing.T) {
	t.Parallel()

	res := parse(t, DialectC, "#ifndef B\nint b;\n#endif\n#if 0\nint dead;\n#endif\nint c;\n")
	require.Len(t, decls(t, res), 2)
	assert.Equal(t, "b", declaredName(t, decls(t, res)[0]))
	assert.Equal(t, "c", declaredName(t, decls(t, res)[1]))
}

func TestInactiveDefineIsNotExpanded(t *testing.T) {
	t.Parallel()

	res := parse(t, DialectCPP, "#if 0\n#define N 3\n#endif\nint x = N;\n")
	assert.Empty(t, res.Macros)

	defs := directivesOf[*ast.MacroDefinition](res)
	require.Len(t, defs, 1)
	assert.False(t, defs[0].Active)
}

func TestInclusion(t *testing.T) {
	t.Parallel()

	res := parse(t, DialectCPP, "#include <vector>\n#include \"local.h\"\n")
	incs := directivesOf[*ast.Inclusion](res)
	require.Len(t, incs, 2)
	assert.Equal(t, "vector", incs[0].Name)
	assert.True(t, incs[0].System)
	assert.Equal(t, "local.h", incs[1].Name)
	assert.False(t, incs[1].System)
}

// =============================================================================
// Comments
// =============================================================================

func TestCommentLabels(t *testing.T) {
	t.Parallel()

	src := "int a; // trailing\n// leading\nint b;\n// end\n"
	res := parse(t, DialectCPP, src)
	require.Len(t, decls(t, res), 2)
	a, b := decls(t, res)[0], decls(t, res)[1]

	require.Len(t, res.Comments.Trailing[a], 1)
	assert.Equal(t, "// trailing", res.Comments.Trailing[a][0].Text)

	require.Len(t, res.Comments.Leading[b], 1)
	assert.Equal(t, "// leading", res.Comments.Leading[b][0].Text)

	require.Len(t, res.Comments.Freestanding[res.Root], 1)
	assert.Equal(t, "// end", res.Comments.Freestanding[res.Root][0].Text)

	require.Len(t, res.AllComments, 3)
	assert.Same(t, res.Comments.Trailing[a][0], res.AllComments[0])
}

func TestBlockComment(t *testing.T) {
	t.Parallel()

	res := parse(t, DialectC, "/* header */\nint a;\n")
	require.Len(t, res.AllComments, 1)
	c := res.AllComments[0]
	assert.True(t, c.IsBlock)
	assert.Equal(t, ast.Range{Offset: 0, Length: 12}, c.Loc)
}

// =============================================================================
// Errors
// =============================================================================

func TestSyntaxErrorDoesNotFail(t *testing.T) {
	t.Parallel()

	res := parse(t, DialectCPP, "int x = ;\n")
	assert.NotNil(t, res.Root)
}
