package ast

const (
	KindIdExpression                    Kind = "CPPASTIdExpression"
	KindLiteralExpression               Kind = "CPPASTLiteralExpression"
	KindBinaryExpression                Kind = "CPPASTBinaryExpression"
	KindUnaryExpression                 Kind = "CPPASTUnaryExpression"
	KindFunctionCallExpression          Kind = "CPPASTFunctionCallExpression"
	KindFieldReference                  Kind = "CPPASTFieldReference"
	KindArraySubscriptExpression        Kind = "CPPASTArraySubscriptExpression"
	KindCastExpression                  Kind = "CPPASTCastExpression"
	KindConditionalExpression           Kind = "CPPASTConditionalExpression"
	KindTypeIdExpression                Kind = "CPPASTTypeIdExpression"
	KindNewExpression                   Kind = "CPPASTNewExpression"
	KindDeleteExpression                Kind = "CPPASTDeleteExpression"
	KindLambdaExpression                Kind = "CPPASTLambdaExpression"
	KindCapture                         Kind = "CPPASTCapture"
	KindExpressionList                  Kind = "CPPASTExpressionList"
	KindSimpleTypeConstructorExpression Kind = "CPPASTSimpleTypeConstructorExpression"
	KindProblemExpression               Kind = "CPPASTProblemExpression"
)

type IdExpression struct {
	Base
	Name Node
}

func (*IdExpression) Kind() Kind { return KindIdExpression }

type LiteralExpression struct {
	Base
	LitKind LiteralKind
	Value   string
}

func (*LiteralExpression) Kind() Kind { return KindLiteralExpression }

type BinaryExpression struct {
	Base
	Operator BinaryOp
	Operand1 Node
	Operand2 Node
}

func (*BinaryExpression) Kind() Kind { return KindBinaryExpression }

type UnaryExpression struct {
	Base
	Operator UnaryOp
	Operand  Node
}

func (*UnaryExpression) Kind() Kind { return KindUnaryExpression }

type FunctionCallExpression struct {
	Base
	Function  Node
	Arguments []Node
}

func (*FunctionCallExpression) Kind() Kind { return KindFunctionCallExpression }

type FieldReference struct {
	Base
	Owner              Node
	Field              Node
	PointerDereference bool
	Template           bool
}

func (*FieldReference) Kind() Kind { return KindFieldReference }

type ArraySubscriptExpression struct {
	Base
	Array    Node
	Argument Node
}

func (*ArraySubscriptExpression) Kind() Kind { return KindArraySubscriptExpression }

type CastExpression struct {
	Base
	Operator CastOp
	TypeId   Node
	Operand  Node
}

func (*CastExpression) Kind() Kind { return KindCastExpression }

type ConditionalExpression struct {
	Base
	Condition Node
	Positive  Node
	Negative  Node
}

func (*ConditionalExpression) Kind() Kind { return KindConditionalExpression }

type TypeIdExpression struct {
	Base
	Operator TypeIdOp
	TypeId   Node
}

func (*TypeIdExpression) Kind() Kind { return KindTypeIdExpression }

type NewExpression struct {
	Base
	Placement       []Node
	TypeId          Node
	Initializer     Node
	ArrayAllocation bool
	Global          bool
	NewTypeId       bool
}

func (*NewExpression) Kind() Kind { return KindNewExpression }

type DeleteExpression struct {
	Base
	Operand  Node
	Global   bool
	Vectored bool
}

func (*DeleteExpression) Kind() Kind { return KindDeleteExpression }

type LambdaExpression struct {
	Base
	CaptureDefault CaptureDefault
	Captures       []Node
	Declarator     Node
	Body           Node
}

func (*LambdaExpression) Kind() Kind { return KindLambdaExpression }

type Capture struct {
	Base
	Identifier   Node
	ByReference  bool
	CapturesThis bool
}

func (*Capture) Kind() Kind { return KindCapture }

type ExpressionList struct {
	Base
	Expressions []Node
}

func (*ExpressionList) Kind() Kind { return KindExpressionList }

// SimpleTypeConstructorExpression is `T(args)` or `T{args}` for a builtin or
// named type T.
type SimpleTypeConstructorExpression struct {
	Base
	DeclSpecifier Node
	Initializer   Node
}

func (*SimpleTypeConstructorExpression) Kind() Kind { return KindSimpleTypeConstructorExpression }

type ProblemExpression struct {
	Base
	Problem string
}

func (*ProblemExpression) Kind() Kind { return KindProblemExpression }
