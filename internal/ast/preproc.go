package ast

// Directive kinds carry the scanner class names, not CPPAST ones, since
// directives live outside the syntax tree.
const (
	KindInclusion          Kind = "ASTInclusionStatement"
	KindMacroDefinition    Kind = "ASTMacroDefinition"
	KindFunctionStyleMacro Kind = "ASTFunctionStyleMacroDefinition"
	KindUndef              Kind = "ASTUndef"
	KindIf                 Kind = "ASTIf"
	KindIfdef              Kind = "ASTIfdef"
	KindIfndef             Kind = "ASTIfndef"
	KindElif               Kind = "ASTElif"
	KindElse               Kind = "ASTElse"
	KindEndif              Kind = "ASTEndif"
	KindPragma             Kind = "ASTPragma"
	KindError              Kind = "ASTError"
)

type Inclusion struct {
	Base
	Name     string
	Path     string
	Resolved bool
	System   bool
}

func (*Inclusion) Kind() Kind { return KindInclusion }
func (*Inclusion) preprocessor() {}

// MacroDefinition is a #define. Params is nil for object-style macros and
// non-nil (possibly empty) for function-style ones.
type MacroDefinition struct {
	Base
	Name    string
	Params  []string
	Body    string
	BodyLoc Range
	Active  bool
}

func (m *MacroDefinition) Kind() Kind {
	if m.Params != nil {
		return KindFunctionStyleMacro
	}
	return KindMacroDefinition
}
func (*MacroDefinition) preprocessor() {}

type Undef struct {
	Base
	Name   string
	Active bool
}

func (*Undef) Kind() Kind { return KindUndef }
func (*Undef) preprocessor() {}

// Conditional is any of #if, #ifdef, #ifndef, #elif, #else and #endif.
type Conditional struct {
	Base
	CondKind  Kind
	Condition string
	Taken     bool
	// MacroReference names the macro tested by #ifdef/#ifndef.
	MacroReference string
}

func (c *Conditional) Kind() Kind { return c.CondKind }
func (*Conditional) preprocessor() {}

type Pragma struct {
	Base
	Message  string
	Operator bool
}

func (*Pragma) Kind() Kind { return KindPragma }
func (*Pragma) preprocessor() {}

type ErrorDirective struct {
	Base
	Message string
}

func (*ErrorDirective) Kind() Kind { return KindError }
func (*ErrorDirective) preprocessor() {}
