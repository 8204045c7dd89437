package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cppdriver/internal/serializer"
)

func doc() *serializer.Object {
	lit := serializer.NewObject()
	lit.Set("IASTClass", "CPPASTLiteralExpression")
	lit.Set("kind", "integer_constant")

	bin := serializer.NewObject()
	bin.Set("IASTClass", "CPPASTBinaryExpression")
	bin.Set("Operator", "+")
	bin.Set("Prop_Operand1", lit)

	spec := serializer.NewObject()
	spec.Set("IASTClass", "CPPASTSimpleDeclSpecifier")
	spec.Set("IsConst", true)

	root := serializer.NewObject()
	root.Set("IASTClass", "CPPASTTranslationUnit")
	root.Set("Prop_Declarations", []*serializer.Object{spec, bin})
	return root
}

func roles(t *testing.T, o *serializer.Object) []string {
	t.Helper()
	v, ok := o.Get(RolesField)
	if !ok {
		return nil
	}
	rs, ok := v.([]string)
	require.True(t, ok, "Roles should be a string list, got %T", v)
	return rs
}

// =============================================================================
// Script loading
// =============================================================================

func TestReadScript_FromDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "annotate"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "annotate", "cpp.risor"), []byte(`z := 7`), 0o644))

	rt := NewRuntime(dir)
	got, err := rt.ReadScript(AnnotationScriptPath("cpp"))
	require.NoError(t, err)
	assert.Equal(t, `z := 7`, got)
}

func TestReadScript_FromFS(t *testing.T) {
	t.Parallel()

	content := `x := 42`
	mapFS := fstest.MapFS{
		"annotate/cpp.risor": &fstest.MapFile{Data: []byte(content)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	got, err := rt.ReadScript("/annotate/cpp.risor")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = rt.ReadScript("annotate/c.risor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedded scripts")
}

func TestReadScript_FSOverridesDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.risor"), []byte(`disk := 1`), 0o644))
	mapFS := fstest.MapFS{
		"a.risor": &fstest.MapFile{Data: []byte(`embedded := 1`)},
	}

	rt := NewRuntime(dir, WithRuntimeFS(mapFS))
	got, err := rt.ReadScript("a.risor")
	require.NoError(t, err)
	assert.Equal(t, `embedded := 1`, got)
}

func TestReadScript_NoSource(t *testing.T) {
	t.Parallel()
	_, err := NewRuntime("").ReadScript("annotate/cpp.risor")
	assert.ErrorContains(t, err, "no annotation script source")
}

func TestExec_ScriptError(t *testing.T) {
	t.Parallel()
	err := NewRuntime("").Exec(context.Background(), `undefined_fn()`, "broken.risor", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.risor")
}

func TestAnnotationScriptPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "annotate/cpp.risor", AnnotationScriptPath("cpp"))
	assert.Equal(t, "annotate/c.risor", AnnotationScriptPath("c"))
}

func TestImport_FSImporter(t *testing.T) {
	mapFS := fstest.MapFS{
		"lib_roles.risor": &fstest.MapFile{Data: []byte(`
func literal_roles() {
	return ["Literal"]
}
`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	rules, err := rt.LoadRulesSource(context.Background(), `
import lib_roles
kind_roles("CPPASTLiteralExpression", lib_roles.literal_roles())
`, "<inline>")
	require.NoError(t, err)
	assert.Equal(t, 1, rules.Len())
}

func TestImport_GlobalsAvailableInImportedModules(t *testing.T) {
	mapFS := fstest.MapFS{
		"helper.risor": &fstest.MapFile{Data: []byte(`
func do_log(msg) {
	log.Info(msg)
}
`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	err := rt.Exec(context.Background(), `
import helper
helper.do_log("test message")
`, "<inline>", nil)
	require.NoError(t, err)
}

// =============================================================================
// Rules
// =============================================================================

func TestLoadRulesSource_KindAndValueRoles(t *testing.T) {
	rt := NewRuntime("")

	rules, err := rt.LoadRulesSource(context.Background(), `
kind_roles("CPPASTBinaryExpression", ["Binary", "Expression"])
kind_roles("CPPASTLiteralExpression", ["Literal"])
value_roles("CPPASTBinaryExpression", "Operator", "+", ["Add", "Binary"])
value_roles("CPPASTBinaryExpression", "Operator", "-", ["Substract"])
value_roles("*", "IsConst", true, ["Const"])
`, "<inline>")
	require.NoError(t, err)
	assert.Equal(t, 5, rules.Len())
	assert.Len(t, rules.Hash, 64)

	d := doc()
	rules.Annotate(d)

	decls, _ := d.Get("Prop_Declarations")
	list := decls.([]*serializer.Object)
	spec, bin := list[0], list[1]
	lit, _ := bin.Get("Prop_Operand1")

	assert.Nil(t, roles(t, d), "no rule for the translation unit")
	assert.Equal(t, []string{"Const"}, roles(t, spec))
	assert.Equal(t, []string{"Binary", "Expression", "Add"}, roles(t, bin))
	assert.Equal(t, []string{"Literal"}, roles(t, lit.(*serializer.Object)))
}

func TestLoadRulesSource_BadArguments(t *testing.T) {
	rt := NewRuntime("")

	_, err := rt.LoadRulesSource(context.Background(), `kind_roles("CPPASTName", "Identifier")`, "<inline>")
	require.Error(t, err)

	_, err = rt.LoadRulesSource(context.Background(), `value_roles("CPPASTName", "Name")`, "<inline>")
	require.Error(t, err)
}

func TestLoadRulesSource_HashFollowsSource(t *testing.T) {
	rt := NewRuntime("")
	ctx := context.Background()

	a, err := rt.LoadRulesSource(ctx, `kind_roles("CPPASTName", ["Identifier"])`, "a")
	require.NoError(t, err)
	b, err := rt.LoadRulesSource(ctx, `kind_roles("CPPASTName", ["Identifier", "Qualified"])`, "b")
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash, b.Hash)
}

func TestLoadRules_FromFS(t *testing.T) {
	mapFS := fstest.MapFS{
		"annotate/cpp.risor": &fstest.MapFile{Data: []byte(`kind_roles("CPPASTTranslationUnit", ["File"])`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	rules, err := rt.LoadRules(context.Background(), "cpp")
	require.NoError(t, err)

	d := doc()
	rules.Annotate(d)
	assert.Equal(t, []string{"File"}, roles(t, d))
}

func TestEmptyRulesLeaveDocumentUntouched(t *testing.T) {
	t.Parallel()

	d := doc()
	before, err := d.MarshalJSON()
	require.NoError(t, err)

	NewRules().Annotate(d)
	after, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}
