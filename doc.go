// Package cppdriver transcodes C and C++ source into the language-agnostic
// JSON document a UAST normalizer consumes. It parses with tree-sitter,
// models the preprocessor lightly, and serializes the resulting tree with
// macro-expansion and comment annotations.
//
// # Pipeline
//
// Each request goes through the same stages:
//
//  1. Decode: one newline-delimited JSON request object is read and its
//     content extracted.
//
//  2. Parse: the content is lowered into internal/ast nodes, together with
//     the preprocessor statements, the macro expansion sites and the comment
//     ownership labels.
//
//  3. Serialize: the tree is walked depth first into an ordered document.
//     Nodes fully inside a macro expansion carry ExpandedFromMacro, every
//     comment is emitted on exactly one owner, and declarators inside
//     parameter declarations carry Prop_TypeNode.
//
//  4. Respond: the document is wrapped in an envelope with the driver
//     metadata and a status, and written as one line.
//
// # Usage
//
// Serve the stdin/stdout protocol:
//
//	d, err := cppdriver.New(cppdriver.WithLogger(log))
//	if err != nil { ... }
//	err = d.Run(ctx, os.Stdin, os.Stdout)
//
// Or answer a single request:
//
//	resp := d.Process(ctx, []byte(`{"content":"int x = 1;"}`))
//
// # Failures
//
// A malformed request and a tree shape the serializer cannot model are
// recoverable: the envelope carries status "error" and three diagnostic
// strings, and the loop continues. Any other serialization failure is fatal:
// its envelope carries status "fatal" and Run returns the error. A response
// that cannot be written always ends the loop.
//
// # Caching and roles
//
// [WithStore] answers repeated content from a SQLite document cache. The
// cache is keyed by content, dialect and a fingerprint of the driver
// metadata and annotation rules, so changing either invalidates it.
// [WithRules] attaches semantic role lists from a Risor script; see the
// internal/runtime package and scripts/annotate.
package cppdriver
