package annotate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cppdriver/internal/comments"
	"github.com/jward/cppdriver/internal/macros"
	"github.com/jward/cppdriver/internal/parser"
	"github.com/jward/cppdriver/internal/runtime"
	"github.com/jward/cppdriver/internal/serializer"
	"github.com/jward/cppdriver/scripts"
)

// findModuleRoot walks up from the working directory to the go.mod.
func findModuleRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find module root")
		}
		dir = parent
	}
}

// annotate parses src as C++, serializes it and applies rules.
func annotate(t *testing.T, rules *runtime.Rules, src string) *serializer.Object {
	t.Helper()
	p, err := parser.New(parser.DialectCPP)
	require.NoError(t, err)
	res, err := p.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	table, err := comments.Build(res.Root, res.Comments, res.AllComments)
	require.NoError(t, err)
	s := serializer.New(serializer.NewCache(), serializer.Request{
		Macros:     macros.Build(res.Macros),
		Comments:   table,
		Directives: res.Directives,
	})
	doc, err := s.Serialize(res.Root)
	require.NoError(t, err)

	rules.Annotate(doc)
	return doc
}

// rolesOf collects the Roles of every object of kind.
func rolesOf(doc *serializer.Object, kind string) [][]string {
	var out [][]string
	doc.Each(func(o *serializer.Object) {
		if o.String("IASTClass") != kind {
			return
		}
		v, _ := o.Get(runtime.RolesField)
		rs, _ := v.([]string)
		out = append(out, rs)
	})
	return out
}

func TestCppRules_FromDisk(t *testing.T) {
	rt := runtime.NewRuntime(filepath.Join(findModuleRoot(t), "scripts"))
	rules, err := rt.LoadRules(context.Background(), "cpp")
	require.NoError(t, err)
	require.Positive(t, rules.Len())

	doc := annotate(t, rules, "int add(int a) { return a + 1; }")

	assert.Equal(t, [][]string{{"File", "Module"}}, rolesOf(doc, "CPPASTTranslationUnit"))
	assert.Equal(t, [][]string{{"Function", "Declaration"}}, rolesOf(doc, "CPPASTFunctionDefinition"))
	assert.Equal(t, [][]string{{"Binary", "Expression", "Arithmetic", "Add"}}, rolesOf(doc, "CPPASTBinaryExpression"))
	assert.Equal(t, [][]string{{"Literal", "Expression", "Number"}}, rolesOf(doc, "CPPASTLiteralExpression"))
	assert.Equal(t, [][]string{{"Return", "Statement"}}, rolesOf(doc, "CPPASTReturnStatement"))
}

func TestCppRules_EmbeddedMatchesDisk(t *testing.T) {
	ctx := context.Background()

	disk, err := runtime.NewRuntime(filepath.Join(findModuleRoot(t), "scripts")).LoadRules(ctx, "cpp")
	require.NoError(t, err)
	embedded, err := runtime.NewRuntime("", runtime.WithRuntimeFS(scripts.FS)).LoadRules(ctx, "cpp")
	require.NoError(t, err)

	assert.Equal(t, disk.Hash, embedded.Hash)
	assert.Equal(t, disk.Len(), embedded.Len())
}

func TestCppRules_ConstSpecifier(t *testing.T) {
	rt := runtime.NewRuntime("", runtime.WithRuntimeFS(scripts.FS))
	rules, err := rt.LoadRules(context.Background(), "cpp")
	require.NoError(t, err)

	doc := annotate(t, rules, "const int x = 1;")
	assert.Equal(t, [][]string{{"Const"}}, rolesOf(doc, "CPPASTSimpleDeclSpecifier"))
}
