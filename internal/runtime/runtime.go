// Package runtime embeds a Risor VM that evaluates role-annotation scripts.
// A script declares which semantic roles belong to which node kinds (and to
// which scalar values of a kind) through host functions; the resulting Rules
// decorate serialized documents.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
)

// scriptExt is the extension of annotation scripts and of the modules they
// import.
const scriptExt = ".risor"

// Runtime evaluates annotation scripts read from one script tree: the
// embedded tree or a directory on disk.
type Runtime struct {
	scripts fs.FS
	origin  string
	log     *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS reads annotation scripts, and the modules they import, from
// fsys. It takes precedence over the directory given to NewRuntime.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		if fsys != nil {
			r.scripts = fsys
			r.origin = "embedded scripts"
		}
	}
}

// WithRuntimeLogger sets the logger behind the scripts' log global.
func WithRuntimeLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRuntime creates a Runtime reading annotation scripts below scriptsDir.
// An empty scriptsDir leaves only inline sources unless WithRuntimeFS is
// given.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if scriptsDir != "" {
		r.scripts = os.DirFS(scriptsDir)
		r.origin = scriptsDir
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AnnotationScriptPath returns the slash-separated path of a dialect's
// annotation script within the script tree.
func AnnotationScriptPath(dialect string) string {
	return path.Join("annotate", dialect+scriptExt)
}

// ReadScript returns the source of the script at name in the script tree.
// A leading slash is ignored.
func (r *Runtime) ReadScript(name string) (string, error) {
	if r.scripts == nil {
		return "", errors.New("runtime: no annotation script source configured")
	}
	name = path.Clean(strings.TrimPrefix(name, "/"))
	data, err := fs.ReadFile(r.scripts, name)
	if err != nil {
		return "", fmt.Errorf("runtime: read %s from %s: %w", name, r.origin, err)
	}
	return string(data), nil
}

// Exec evaluates source with the log global and the given host functions.
// Imports resolve against the script tree. label names the source in
// errors.
func (r *Runtime) Exec(ctx context.Context, source, label string, hostFuncs map[string]any) error {
	globals := map[string]any{
		"log": mustProxy(&logObject{log: r.log}),
	}
	for name, fn := range hostFuncs {
		globals[name] = fn
	}

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make([]risor.Option, 0, len(names)+1)
	for _, name := range names {
		opts = append(opts, risor.WithGlobal(name, globals[name]))
	}
	if r.scripts != nil {
		// Imported modules see the same globals as the script itself.
		opts = append(opts, risor.WithImporter(importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: names,
			SourceFS:    r.scripts,
			Extensions:  []string{scriptExt},
		})))
	}

	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return fmt.Errorf("runtime: annotation script %s: %w", label, err)
	}
	return nil
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
