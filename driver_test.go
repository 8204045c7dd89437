package cppdriver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/cppdriver/internal/protocol"
	"github.com/jward/cppdriver/internal/store"
)

func newTestDriver(t *testing.T, opts ...Option) *Driver {
	t.Helper()
	d, err := New(opts...)
	require.NoError(t, err)
	return d
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func request(content string) string {
	b, _ := json.Marshal(map[string]string{
		"action":   "ParseAST",
		"language": "C++",
		"content":  content,
		"encoding": "utf8",
	})
	return string(b)
}

// run feeds input to Run and decodes every output line.
func run(t *testing.T, d *Driver, input string) ([]map[string]any, error) {
	t.Helper()
	var out bytes.Buffer
	err := d.Run(context.Background(), strings.NewReader(input), &out)

	var resps []map[string]any
	for _, line := range strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), "line %q", line)
		resps = append(resps, m)
	}
	return resps, err
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("pipe closed") }

// =============================================================================
// Request/response loop
// =============================================================================

func TestRun_SimpleDeclaration(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)

	resps, err := run(t, d, request("int x = 1;")+"\n")
	require.NoError(t, err)
	require.Len(t, resps, 1)

	r := resps[0]
	assert.Equal(t, "ok", r["status"])
	assert.Equal(t, []any{}, r["errors"])
	assert.Equal(t, "1.0.0", r["driver"])
	assert.Equal(t, "C++", r["language"])
	assert.Equal(t, "14", r["languageVersion"])

	ast, ok := r["ast"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "CPPASTTranslationUnit", ast["IASTClass"])
	assert.EqualValues(t, 0, ast["LocOffsetStart"])
	assert.EqualValues(t, 10, ast["LocOffsetEnd"])
	decls, ok := ast["Prop_Declarations"].([]any)
	require.True(t, ok)
	require.Len(t, decls, 1)
	assert.Equal(t, "CPPASTSimpleDeclaration", decls[0].(map[string]any)["IASTClass"])
}

func TestRun_ErrorRecoveredInputStillOK(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)

	resps, err := run(t, d, request("int x = ;\nint y = 2;")+"\n")
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "ok", resps[0]["status"])
	assert.NotNil(t, resps[0]["ast"])
}

func TestRun_MalformedLineContinues(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)

	resps, err := run(t, d, "this is not json\n"+request("int x;")+"\n")
	require.NoError(t, err)
	require.Len(t, resps, 2)

	bad := resps[0]
	assert.Equal(t, "error", bad["status"])
	errs, ok := bad["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 3)
	assert.Equal(t, "RequestMalformed", errs[0])
	assert.True(t, strings.HasPrefix(errs[1].(string), "Error reading the petition: "))
	_, hasAST := bad["ast"]
	assert.False(t, hasAST)

	assert.Equal(t, "ok", resps[1]["status"])
}

func TestRun_EmptyInput(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)

	var out bytes.Buffer
	require.NoError(t, d.Run(context.Background(), strings.NewReader(""), &out))
	assert.Zero(t, out.Len())
}

func TestRun_BlankLinesSkippedAndLastLineUnterminated(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)

	resps, err := run(t, d, "\n   \n"+request("int a;")+"\n\n"+request("int b;"))
	require.NoError(t, err)
	require.Len(t, resps, 2)
	assert.Equal(t, "ok", resps[0]["status"])
	assert.Equal(t, "ok", resps[1]["status"])
}

func TestRun_MacroStateDoesNotLeakBetweenRequests(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)

	input := request("#define FOO 1\nint x = FOO;") + "\n" + request("int y = 2;") + "\n"
	var out bytes.Buffer
	require.NoError(t, d.Run(context.Background(), strings.NewReader(input), &out))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"ExpandedFromMacro":"FOO_`)
	assert.NotContains(t, lines[1], "ExpandedFromMacro")
}

func TestRun_SinkFailureStops(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)

	input := request("int a;") + "\n" + request("int b;") + "\n"
	err := d.Run(context.Background(), strings.NewReader(input), failingWriter{})
	require.Error(t, err)

	var sink *protocol.SinkError
	assert.True(t, errors.As(err, &sink))
}

func TestRun_FatalFailureStopsAfterEnvelope(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t, WithMaxDepth(1))

	resps, err := run(t, d, request("int a;")+"\n"+request("int b;")+"\n")
	require.Error(t, err)
	require.Len(t, resps, 1, "the loop ends after the fatal envelope")
	assert.Equal(t, "fatal", resps[0]["status"])

	var se *protocol.SerializationError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, protocol.StatusFatal, protocol.Classify(err))
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := d.Run(ctx, strings.NewReader(request("int a;")+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}

func TestRun_CancelWhileWaitingForInput(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	t.Cleanup(func() {
		inW.Close()
		outR.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx, inR, outW) }()

	// One request is answered while the input stays open.
	go func() { _, _ = inW.Write([]byte(request("int a;") + "\n")) }()
	line, err := bufio.NewReader(outR).ReadBytes('\n')
	require.NoError(t, err)
	assert.Contains(t, string(line), `"status":"ok"`)

	// The loop is now blocked on the open input.
	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

// =============================================================================
// Process & Transcode
// =============================================================================

func TestProcess_Deterministic(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)

	line := []byte(request("// lead\nint f(int a, char *b) { return a; } // trail"))
	first, err := d.Process(context.Background(), line).Encode()
	require.NoError(t, err)
	second, err := d.Process(context.Background(), line).Encode()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestProcess_CDialect(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t, WithDialect("c"))

	resp := d.Process(context.Background(), []byte(request("int main(void) { return 0; }")))
	assert.Equal(t, protocol.StatusOK, resp.Status)
	assert.Contains(t, string(resp.AST), "CPPASTFunctionDefinition")
}

func TestProcess_CustomMetadata(t *testing.T) {
	t.Parallel()
	meta := protocol.Metadata{Driver: "2.0.0", Language: "C", LanguageVersion: "11"}
	d := newTestDriver(t, WithMetadata(meta))

	resp := d.Process(context.Background(), []byte(request("int x;")))
	assert.Equal(t, meta, resp.Metadata)
}

func TestNew_UnknownDialect(t *testing.T) {
	t.Parallel()
	_, err := New(WithDialect("fortran"))
	require.Error(t, err)
}

// =============================================================================
// Document cache
// =============================================================================

func TestTranscode_CachesDocuments(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	d := newTestDriver(t, WithStore(s))
	ctx := context.Background()

	first, err := d.Transcode(ctx, []byte("int x = 1;"))
	require.NoError(t, err)

	key := store.DocumentKey([]byte("int x = 1;"), "cpp", d.Fingerprint())
	doc, err := s.GetDocument(key)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.JSONEq(t, string(first), string(doc.Body))

	second, err := d.Transcode(ctx, []byte("int x = 1;"))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Documents)
	assert.Equal(t, d.Fingerprint(), st.Fingerprint)
}

func TestNew_FingerprintChangeInvalidatesCache(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	d1 := newTestDriver(t, WithStore(s))
	_, err := d1.Transcode(context.Background(), []byte("int x;"))
	require.NoError(t, err)

	// Same configuration keeps the cache.
	newTestDriver(t, WithStore(s))
	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Documents)

	d2 := newTestDriver(t, WithStore(s), WithMetadata(protocol.Metadata{Driver: "9.9.9", Language: "C++", LanguageVersion: "14"}))
	assert.NotEqual(t, d1.Fingerprint(), d2.Fingerprint())
	st, err = s.Stats()
	require.NoError(t, err)
	assert.Zero(t, st.Documents)
}

// =============================================================================
// Indexing
// =============================================================================

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIndexDirectory(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	d := newTestDriver(t, WithStore(s))
	ctx := context.Background()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "a.cpp"), "int a() { return 1; }")
	writeFile(t, filepath.Join(root, "src", "b.c"), "int b(void) { return 2; }")
	writeFile(t, filepath.Join(root, "README.txt"), "not code")
	writeFile(t, filepath.Join(root, "vendor", "v.cpp"), "int v;")
	writeFile(t, filepath.Join(root, ".hidden", "h.cpp"), "int h;")

	res, err := d.IndexDirectory(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Indexed)
	assert.Zero(t, res.Failed)

	files, err := s.Files()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(root, "src", "a.cpp"), files[0].Path)
	assert.Equal(t, "cpp", files[0].Dialect)
	assert.Equal(t, "c", files[1].Dialect)
	for _, f := range files {
		assert.Equal(t, "ok", f.Status)
		doc, err := s.GetDocument(f.DocumentKey)
		require.NoError(t, err)
		require.NotNil(t, doc, "document for %s", f.Path)
	}

	res, err = d.IndexDirectory(ctx, root)
	require.NoError(t, err)
	assert.Zero(t, res.Indexed)
	assert.Equal(t, 2, res.Unchanged)

	writeFile(t, filepath.Join(root, "src", "a.cpp"), "int a() { return 3; }")
	res, err = d.IndexDirectory(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Indexed)
	assert.Equal(t, 1, res.Unchanged)
}

func TestIndexFiles_NoStore(t *testing.T) {
	t.Parallel()
	d := newTestDriver(t)
	_, err := d.IndexFiles(context.Background(), []string{"a.cpp"})
	assert.ErrorIs(t, err, ErrNoStore)
	assert.ErrorIs(t, d.RemoveFile("a.cpp"), ErrNoStore)
}

func TestRemoveFile(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	d := newTestDriver(t, WithStore(s))

	path := filepath.Join(t.TempDir(), "x.cpp")
	writeFile(t, path, "int x;")
	_, err := d.IndexFiles(context.Background(), []string{path})
	require.NoError(t, err)

	require.NoError(t, d.RemoveFile(path))
	f, err := s.FileByPath(path)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestSkipDir(t *testing.T) {
	t.Parallel()
	for name, want := range map[string]bool{
		".git":    true,
		"vendor":  true,
		"build":   true,
		"src":     false,
		"include": false,
	} {
		assert.Equal(t, want, SkipDir(name), name)
	}
}
