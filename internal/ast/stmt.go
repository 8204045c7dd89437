package ast

const (
	KindCompoundStatement      Kind = "CPPASTCompoundStatement"
	KindDeclarationStatement   Kind = "CPPASTDeclarationStatement"
	KindExpressionStatement    Kind = "CPPASTExpressionStatement"
	KindReturnStatement        Kind = "CPPASTReturnStatement"
	KindIfStatement            Kind = "CPPASTIfStatement"
	KindWhileStatement         Kind = "CPPASTWhileStatement"
	KindDoStatement            Kind = "CPPASTDoStatement"
	KindForStatement           Kind = "CPPASTForStatement"
	KindRangeBasedForStatement Kind = "CPPASTRangeBasedForStatement"
	KindSwitchStatement        Kind = "CPPASTSwitchStatement"
	KindCaseStatement          Kind = "CPPASTCaseStatement"
	KindDefaultStatement       Kind = "CPPASTDefaultStatement"
	KindBreakStatement         Kind = "CPPASTBreakStatement"
	KindContinueStatement      Kind = "CPPASTContinueStatement"
	KindGotoStatement          Kind = "CPPASTGotoStatement"
	KindLabelStatement         Kind = "CPPASTLabelStatement"
	KindNullStatement          Kind = "CPPASTNullStatement"
	KindTryBlockStatement      Kind = "CPPASTTryBlockStatement"
	KindCatchHandler           Kind = "CPPASTCatchHandler"
	KindProblemStatement       Kind = "CPPASTProblemStatement"
)

type CompoundStatement struct {
	Base
	Statements []Node
}

func (*CompoundStatement) Kind() Kind { return KindCompoundStatement }

type DeclarationStatement struct {
	Base
	Declaration Node
}

func (*DeclarationStatement) Kind() Kind { return KindDeclarationStatement }

type ExpressionStatement struct {
	Base
	Expression Node
}

func (*ExpressionStatement) Kind() Kind { return KindExpressionStatement }

type ReturnStatement struct {
	Base
	ReturnValue Node
}

func (*ReturnStatement) Kind() Kind { return KindReturnStatement }

type IfStatement struct {
	Base
	Condition            Node
	ConditionDeclaration Node
	Then                 Node
	Else                 Node
	Constexpr            bool
}

func (*IfStatement) Kind() Kind { return KindIfStatement }

type WhileStatement struct {
	Base
	Condition            Node
	ConditionDeclaration Node
	Body                 Node
}

func (*WhileStatement) Kind() Kind { return KindWhileStatement }

type DoStatement struct {
	Base
	Body      Node
	Condition Node
}

func (*DoStatement) Kind() Kind { return KindDoStatement }

type ForStatement struct {
	Base
	Init      Node
	Condition Node
	Iteration Node
	Body      Node
}

func (*ForStatement) Kind() Kind { return KindForStatement }

type RangeBasedForStatement struct {
	Base
	Declaration Node
	Initializer Node
	Body        Node
}

func (*RangeBasedForStatement) Kind() Kind { return KindRangeBasedForStatement }

type SwitchStatement struct {
	Base
	Controller Node
	Body       Node
}

func (*SwitchStatement) Kind() Kind { return KindSwitchStatement }

type CaseStatement struct {
	Base
	Expression Node
}

func (*CaseStatement) Kind() Kind { return KindCaseStatement }

type DefaultStatement struct{ Base }

func (*DefaultStatement) Kind() Kind { return KindDefaultStatement }

type BreakStatement struct{ Base }

func (*BreakStatement) Kind() Kind { return KindBreakStatement }

type ContinueStatement struct{ Base }

func (*ContinueStatement) Kind() Kind { return KindContinueStatement }

type GotoStatement struct {
	Base
	Label Node
}

func (*GotoStatement) Kind() Kind { return KindGotoStatement }

type LabelStatement struct {
	Base
	Label  Node
	Nested Node
}

func (*LabelStatement) Kind() Kind { return KindLabelStatement }

type NullStatement struct{ Base }

func (*NullStatement) Kind() Kind { return KindNullStatement }

type TryBlockStatement struct {
	Base
	TryBody  Node
	Handlers []Node
}

func (*TryBlockStatement) Kind() Kind { return KindTryBlockStatement }

type CatchHandler struct {
	Base
	Declaration Node
	Body        Node
	CatchAll    bool
}

func (*CatchHandler) Kind() Kind { return KindCatchHandler }

type ProblemStatement struct {
	Base
	Problem string
}

func (*ProblemStatement) Kind() Kind { return KindProblemStatement }
