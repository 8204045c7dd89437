package comments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cppdriver/internal/ast"
)

func comment(text string, off int) *ast.Comment {
	return &ast.Comment{Text: text, Loc: ast.Range{Offset: off, Length: len(text)}}
}

func twoDecls() (*ast.TranslationUnit, *ast.SimpleDeclaration, *ast.SimpleDeclaration) {
	a := &ast.SimpleDeclaration{Base: ast.Base{Loc: ast.Range{Offset: 10, Length: 6}}}
	b := &ast.SimpleDeclaration{Base: ast.Base{Loc: ast.Range{Offset: 30, Length: 6}}}
	tu := &ast.TranslationUnit{Base: ast.Base{Loc: ast.Range{Offset: 0, Length: 60}}, Declarations: []ast.Node{a, b}}
	return tu, a, b
}

func TestBuildOrdersByOffset(t *testing.T) {
	t.Parallel()

	tu, a, _ := twoDecls()
	lead := comment("// lead", 0)
	trail := comment("// trail", 17)
	free := comment("/* free */", 8)

	maps := ast.NewCommentMap()
	maps.Trailing[a] = []*ast.Comment{trail}
	maps.Leading[a] = []*ast.Comment{lead}
	maps.Freestanding[a] = []*ast.Comment{free}

	table, err := Build(tu, maps, nil)
	require.NoError(t, err)

	assert.Equal(t, []*ast.Comment{lead, free, trail}, table.For(a))
	assert.Empty(t, table.For(tu))
	assert.Equal(t, 3, table.Len())
}

func TestBuildEmitsEachCommentOnce(t *testing.T) {
	t.Parallel()

	tu, a, b := twoDecls()
	shared := comment("// between", 20)

	maps := ast.NewCommentMap()
	maps.Trailing[a] = []*ast.Comment{shared}
	maps.Leading[b] = []*ast.Comment{shared}

	table, err := Build(tu, maps, []*ast.Comment{shared})
	require.NoError(t, err)

	total := 0
	for _, n := range []ast.Node{tu, a, b} {
		for _, c := range table.For(n) {
			if c == shared {
				total++
			}
		}
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, []*ast.Comment{shared}, table.For(a))
}

func TestBuildReassignsOrphans(t *testing.T) {
	t.Parallel()

	tu, a, _ := twoDecls()
	detached := &ast.SimpleDeclaration{}
	lost := comment("// lost", 50)
	unlabelled := comment("// nobody", 2)
	kept := comment("// kept", 0)

	maps := ast.NewCommentMap()
	maps.Leading[detached] = []*ast.Comment{lost}
	maps.Leading[a] = []*ast.Comment{kept}

	table, err := Build(tu, maps, []*ast.Comment{kept, unlabelled, lost})
	require.NoError(t, err)

	assert.Equal(t, []*ast.Comment{unlabelled, lost}, table.For(tu))
	assert.Equal(t, []*ast.Comment{kept}, table.For(a))
	assert.Equal(t, 3, table.Len())
}

func TestBuildNilMaps(t *testing.T) {
	t.Parallel()

	tu, _, _ := twoDecls()
	table, err := Build(tu, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, table.Len())

	var nilTable *Table
	assert.Nil(t, nilTable.For(tu))
}
