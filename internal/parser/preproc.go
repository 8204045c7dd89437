package parser

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/cppdriver/internal/ast"
)

// directiveType folds the grammar's context-specific directive node types
// (preproc_if_in_field_declaration_list and friends) onto the plain ones.
func directiveType(t string) string {
	if i := strings.Index(t, "_in_"); i > 0 && strings.HasPrefix(t, "preproc_") {
		return t[:i]
	}
	return t
}

// trimmed returns n's range without trailing whitespace, which the grammar
// folds into directive nodes.
func (l *lowerer) trimmed(n *sitter.Node) ast.Range {
	r := l.rng(n)
	text := strings.TrimRight(l.text(n), " \t\r\n")
	r.Length = len(text)
	return r
}

// directive records a non-conditional directive. Inactive directives are
// recorded but never change the macro table.
func (l *lowerer) directive(n *sitter.Node, active bool) {
	loc := ast.Base{Loc: l.trimmed(n)}
	switch directiveType(n.Type()) {
	case "preproc_include":
		path := field(n, "path")
		inc := &ast.Inclusion{Base: loc}
		switch {
		case path == nil:
		case path.Type() == "system_lib_string":
			inc.Name = strings.Trim(l.text(path), "<>")
			inc.System = true
		default:
			inc.Name = strings.Trim(l.text(path), `"`)
		}
		l.directives = append(l.directives, inc)

	case "preproc_def", "preproc_function_def":
		def := &ast.MacroDefinition{
			Base:   loc,
			Name:   l.text(field(n, "name")),
			Active: active,
		}
		if params := field(n, "parameters"); params != nil {
			def.Params = []string{}
			for _, p := range children(params) {
				switch {
				case p.Type() == "identifier":
					def.Params = append(def.Params, l.text(p))
				case p.Type() == "...":
					def.Params = append(def.Params, "...")
				}
			}
		}
		l.macroBody(def, n)
		l.directives = append(l.directives, def)
		if active && def.Name != "" {
			l.active[def.Name] = def
			l.defined = append(l.defined, def)
		}

	case "preproc_call":
		name := strings.TrimSpace(l.text(field(n, "directive")))
		arg := strings.TrimSpace(l.text(field(n, "argument")))
		switch name {
		case "#undef":
			l.directives = append(l.directives, &ast.Undef{Base: loc, Name: arg, Active: active})
			if active {
				delete(l.active, arg)
			}
		case "#pragma":
			l.directives = append(l.directives, &ast.Pragma{Base: loc, Message: arg})
		case "#error":
			l.directives = append(l.directives, &ast.ErrorDirective{Base: loc, Message: arg})
		default:
			l.log.Debug("directive skipped", "directive", name, "offset", n.StartByte())
		}
	}
}

// macroBody fills the replacement text and its range. A macro without a body
// gets an empty range just past its name or parameter list.
func (l *lowerer) macroBody(def *ast.MacroDefinition, n *sitter.Node) {
	value := field(n, "value")
	if value == nil {
		anchor := field(n, "parameters")
		if anchor == nil {
			anchor = field(n, "name")
		}
		if anchor != nil {
			def.BodyLoc = ast.Range{Offset: int(anchor.EndByte())}
		}
		return
	}
	raw := l.text(value)
	lead := len(raw) - len(strings.TrimLeft(raw, " \t"))
	def.Body = strings.TrimSpace(raw)
	def.BodyLoc = ast.Range{Offset: int(value.StartByte()) + lead, Length: len(def.Body)}
}

// conditional handles one #if/#ifdef/#ifndef group. Every branch is recorded
// as a directive; only the first taken branch is lowered.
func (l *lowerer) conditional(n *sitter.Node, each itemFunc) ([]entry, error) {
	var out []entry
	done := false
	for br := n; br != nil; br = field(br, "alternative") {
		cond := l.branch(br, !done)
		l.directives = append(l.directives, cond)
		body := branchBody(br)
		if cond.Taken {
			done = true
			entries, err := l.entries(body, each)
			if err != nil {
				return nil, err
			}
			out = append(out, entries...)
			continue
		}
		l.inactive(body)
	}
	l.endif(n)
	return out, nil
}

// branch evaluates one branch header. A branch can only be taken when no
// earlier branch of its group was.
func (l *lowerer) branch(br *sitter.Node, open bool) *ast.Conditional {
	c := &ast.Conditional{}
	head := children(br)
	switch directiveType(br.Type()) {
	case "preproc_if", "preproc_elif":
		c.CondKind = ast.KindIf
		if directiveType(br.Type()) == "preproc_elif" {
			c.CondKind = ast.KindElif
		}
		cond := field(br, "condition")
		c.Condition = strings.TrimSpace(l.text(cond))
		c.Taken = open && l.eval(cond)
		c.Base = l.headerSpan(br, cond)
	case "preproc_ifdef", "preproc_elifdef":
		name := field(br, "name")
		negate := len(head) > 0 && strings.HasSuffix(head[0].Type(), "ndef")
		c.CondKind = ast.KindIfdef
		switch {
		case directiveType(br.Type()) == "preproc_elifdef":
			c.CondKind = ast.KindElif
		case negate:
			c.CondKind = ast.KindIfndef
		}
		c.Condition = l.text(name)
		c.MacroReference = c.Condition
		_, defined := l.active[c.Condition]
		c.Taken = open && defined != negate
		c.Base = l.headerSpan(br, name)
	default:
		c.CondKind = ast.KindElse
		c.Taken = open
		if len(head) > 0 {
			c.Base = l.base(head[0])
		} else {
			c.Base = l.base(br)
		}
	}
	return c
}

func (l *lowerer) headerSpan(br, last *sitter.Node) ast.Base {
	if last == nil {
		return ast.Base{Loc: ast.Range{Offset: int(br.StartByte())}}
	}
	return ast.Base{Loc: ast.Range{
		Offset: int(br.StartByte()),
		Length: int(last.EndByte() - br.StartByte()),
	}}
}

func (l *lowerer) endif(n *sitter.Node) {
	for _, c := range children(n) {
		if c.Type() == "#endif" {
			l.directives = append(l.directives, &ast.Conditional{
				Base:     l.base(c),
				CondKind: ast.KindEndif,
				Taken:    true,
			})
			return
		}
	}
}

// branchBody returns the content of a branch: its named children minus the
// header fields and the alternative.
func branchBody(br *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(br.ChildCount()); i++ {
		switch br.FieldNameForChild(i) {
		case "condition", "name", "alternative":
			continue
		}
		if c := br.Child(i); c.IsNamed() {
			out = append(out, c)
		}
	}
	return out
}

// inactive records the directives of a skipped branch without lowering any
// code or touching the macro table.
func (l *lowerer) inactive(kids []*sitter.Node) {
	for _, k := range kids {
		switch directiveType(k.Type()) {
		case "preproc_include", "preproc_def", "preproc_function_def", "preproc_call":
			l.directive(k, false)
		case "preproc_if", "preproc_ifdef":
			for br := k; br != nil; br = field(br, "alternative") {
				l.directives = append(l.directives, l.branch(br, false))
				l.inactive(branchBody(br))
			}
			l.endif(k)
		default:
			l.inactive(named(k))
		}
	}
}

// expand records n as an expansion site of the active macro it names.
// functionStyle selects which definitions qualify: an invocation only
// expands a function-style macro and a bare identifier only an object-style
// one.
func (l *lowerer) expand(name string, functionStyle bool, site ast.Range) {
	def, ok := l.active[name]
	if !ok || (def.Params != nil) != functionStyle {
		return
	}
	l.sites[def] = append(l.sites[def], site)
}

// eval decides a #if condition. Anything it cannot decide counts as true.
func (l *lowerer) eval(n *sitter.Node) bool {
	if n == nil {
		return true
	}
	switch n.Type() {
	case "preproc_defined":
		name := firstNamed(n)
		if name == nil {
			return true
		}
		_, ok := l.active[l.text(name)]
		return ok
	case "parenthesized_expression":
		return l.eval(firstNamed(n))
	case "unary_expression":
		if l.text(field(n, "operator")) == "!" {
			return !l.eval(field(n, "argument"))
		}
	case "binary_expression":
		left, right := field(n, "left"), field(n, "right")
		switch l.text(field(n, "operator")) {
		case "&&":
			return l.eval(left) && l.eval(right)
		case "||":
			return l.eval(left) || l.eval(right)
		}
		a, okA := l.value(left)
		b, okB := l.value(right)
		if !okA || !okB {
			return true
		}
		switch l.text(field(n, "operator")) {
		case "==":
			return a == b
		case "!=":
			return a != b
		case "<":
			return a < b
		case "<=":
			return a <= b
		case ">":
			return a > b
		case ">=":
			return a >= b
		}
	}
	if v, ok := l.value(n); ok {
		return v != 0
	}
	return true
}

// value evaluates a numeric #if operand. An identifier that names no macro
// is zero, as the preprocessor defines it.
func (l *lowerer) value(n *sitter.Node) (int64, bool) {
	if n == nil {
		return 0, false
	}
	switch n.Type() {
	case "number_literal":
		return parseInt(l.text(n))
	case "true":
		return 1, true
	case "false":
		return 0, true
	case "identifier":
		def, ok := l.active[l.text(n)]
		if !ok {
			return 0, true
		}
		if v, ok := parseInt(def.Body); ok {
			return v, true
		}
		return 1, true
	case "parenthesized_expression":
		return l.value(firstNamed(n))
	}
	return 0, false
}

func parseInt(s string) (int64, bool) {
	s = strings.TrimRight(strings.TrimSpace(s), "uUlL")
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
