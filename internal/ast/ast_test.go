package ast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// intX builds the tree for "int x = 1;".
func intX() *TranslationUnit {
	lit := &LiteralExpression{Base: Base{Loc: Range{8, 1}}, LitKind: LitInteger, Value: "1"}
	decl := &PlainDeclarator{Base: Base{Loc: Range{4, 5}}}
	decl.Name = &Name{Base: Base{Loc: Range{4, 1}}, Identifier: "x"}
	decl.Initializer = &EqualsInitializer{Base: Base{Loc: Range{6, 3}}, Clause: lit}
	sd := &SimpleDeclaration{
		Base:          Base{Loc: Range{0, 10}},
		DeclSpecifier: &SimpleDeclSpecifier{Base: Base{Loc: Range{0, 3}}, Type: TypeInt},
		Declarators:   []Node{decl},
	}
	return &TranslationUnit{Base: Base{Loc: Range{0, 10}}, Declarations: []Node{sd}}
}

func TestRangeContains(t *testing.T) {
	t.Parallel()

	outer := Range{Offset: 10, Length: 10}
	assert.True(t, outer.Contains(Range{10, 10}))
	assert.True(t, outer.Contains(Range{12, 3}))
	assert.False(t, outer.Contains(Range{9, 3}))
	assert.False(t, outer.Contains(Range{18, 3}))
	assert.Equal(t, Range{Offset: 5, Length: 15}, Span(Range{5, 2}, outer))
}

func TestCastMismatch(t *testing.T) {
	t.Parallel()

	var n Node = &Name{Identifier: "x"}
	_, err := Cast[*IdExpression](n, "expression")
	require.Error(t, err)

	var mm *MismatchError
	require.True(t, errors.As(err, &mm))
	assert.Equal(t, KindName, mm.Got)
	assert.Equal(t, "expression", mm.Want)

	name, err := Cast[*Name](n, "name")
	require.NoError(t, err)
	assert.Equal(t, "x", name.Identifier)
}

func TestAccessorRejectsWrongKind(t *testing.T) {
	t.Parallel()

	accs := ChildrenOf(KindSimpleDeclaration)
	require.NotEmpty(t, accs)
	_, err := accs[0].Get(&Name{})
	var mm *MismatchError
	assert.True(t, errors.As(err, &mm))
}

func TestChildrenOfUnknownKind(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ChildrenOf("CPPASTNoSuchThing"))
	assert.False(t, Known("CPPASTNoSuchThing"))
	assert.True(t, Known(KindTranslationUnit))
}

func TestChildrenOfIncludesLinkBacks(t *testing.T) {
	t.Parallel()

	var names []string
	for _, a := range ChildrenOf(KindName) {
		assert.True(t, a.LinkBack)
		names = append(names, a.Name)
	}
	assert.ElementsMatch(t, []string{"Parent", "TranslationUnit"}, names)
}

func TestLinkSetsParentsAndRoles(t *testing.T) {
	t.Parallel()

	tu := intX()
	require.NoError(t, Link(tu))

	sd := tu.Declarations[0].(*SimpleDeclaration)
	decl := sd.Declarators[0].(*PlainDeclarator)
	lit := decl.Initializer.(*EqualsInitializer).Clause

	assert.Nil(t, tu.Parent())
	assert.Empty(t, tu.Role())
	assert.Same(t, tu, sd.Parent())
	assert.Equal(t, "IASTSimpleDeclaration.DECLARATORS", decl.Role())
	assert.Equal(t, "IASTEqualsInitializer.INITIALIZER_CLAUSE", lit.Role())

	back := ChildrenOf(KindLiteralExpression)
	for _, a := range back {
		if a.Name == "TranslationUnit" {
			got, err := a.Get(lit)
			require.NoError(t, err)
			assert.Same(t, tu, got[0])
		}
	}
}

func TestWalkPreOrder(t *testing.T) {
	t.Parallel()

	var kinds []Kind
	require.NoError(t, Walk(intX(), func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	}))
	assert.Equal(t, []Kind{
		KindTranslationUnit,
		KindSimpleDeclaration,
		KindSimpleDeclSpecifier,
		KindDeclarator,
		KindName,
		KindEqualsInitializer,
		KindLiteralExpression,
	}, kinds)
}

func TestEnumSentinels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unknown_operator", BinaryOp(999).String())
	assert.Equal(t, "op_unknown", UnaryOp(999).String())
	assert.Equal(t, "unknown_literal_value", LiteralKind(999).String())
	assert.Equal(t, "unspecified", StorageClass(999).String())
	assert.Equal(t, "unespecified", SimpleType(999).String())
	assert.Equal(t, "normal_cast", CastOp(999).String())

	assert.Equal(t, "->", OpPmArrow.String())
	assert.Equal(t, OpShiftLeftAssign, BinaryOpFromSymbol("<<="))
	assert.Equal(t, OpLogicalAnd, BinaryOpFromSymbol("and"))
	assert.Equal(t, OpUnknownBinary, BinaryOpFromSymbol("<=>"))
}

func TestMacroDefinitionKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindMacroDefinition, (&MacroDefinition{Name: "A"}).Kind())
	assert.Equal(t, KindFunctionStyleMacro, (&MacroDefinition{Name: "F", Params: []string{}}).Kind())
}
