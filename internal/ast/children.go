package ast

import (
	"fmt"
	"strings"
	"unicode"
)

// Accessor is one child-producing operation of a node kind. Get always
// returns the children in source order; a single-valued accessor returns at
// most one node.
type Accessor struct {
	Name  string
	Multi bool
	// LinkBack marks operations that lead back up the tree instead of down.
	LinkBack bool
	Get      func(Node) ([]Node, error)
}

func one[T Node](name string, get func(T) Node) Accessor {
	return Accessor{
		Name: name,
		Get: func(n Node) ([]Node, error) {
			t, err := Cast[T](n, fmt.Sprintf("%T", *new(T)))
			if err != nil {
				return nil, err
			}
			if c := get(t); c != nil {
				return []Node{c}, nil
			}
			return nil, nil
		},
	}
}

func many[T Node](name string, get func(T) []Node) Accessor {
	return Accessor{
		Name:  name,
		Multi: true,
		Get: func(n Node) ([]Node, error) {
			t, err := Cast[T](n, fmt.Sprintf("%T", *new(T)))
			if err != nil {
				return nil, err
			}
			return get(t), nil
		},
	}
}

// declaratorCore lists the accessors every declarator kind shares.
func declaratorCore[T Declarator]() []Accessor {
	return []Accessor{
		many("PointerOperators", func(d T) []Node { return d.Core().PointerOperators }),
		one("Name", func(d T) Node { return d.Core().Name }),
		one("NestedDeclarator", func(d T) Node { return d.Core().Nested }),
		one("Initializer", func(d T) Node { return d.Core().Initializer }),
	}
}

var linkBacks = []Accessor{
	{Name: "Parent", LinkBack: true, Get: func(n Node) ([]Node, error) {
		if p := n.Parent(); p != nil {
			return []Node{p}, nil
		}
		return nil, nil
	}},
	{Name: "TranslationUnit", LinkBack: true, Get: func(n Node) ([]Node, error) {
		for n.Parent() != nil {
			n = n.Parent()
		}
		return []Node{n}, nil
	}},
}

var registry = map[Kind][]Accessor{
	KindTranslationUnit: {
		many("Declarations", func(n *TranslationUnit) []Node { return n.Declarations }),
	},
	KindName:         {},
	KindOperatorName: {},
	KindQualifiedName: {
		many("AllSegments", func(n *QualifiedName) []Node { return n.Segments }),
	},
	KindTemplateId: {
		one("TemplateName", func(n *TemplateId) Node { return n.TemplateName }),
		many("TemplateArguments", func(n *TemplateId) []Node { return n.Arguments }),
	},
	KindSimpleDeclSpecifier: {
		one("DeclTypeExpression", func(n *SimpleDeclSpecifier) Node { return n.DeclTypeExpression }),
	},
	KindNamedTypeSpecifier: {
		one("Name", func(n *NamedTypeSpecifier) Node { return n.Name }),
	},
	KindCompositeTypeSpecifier: {
		one("Name", func(n *CompositeTypeSpecifier) Node { return n.Name }),
		many("BaseSpecifiers", func(n *CompositeTypeSpecifier) []Node { return n.BaseSpecifiers }),
		many("Members", func(n *CompositeTypeSpecifier) []Node { return n.Members }),
	},
	KindElaboratedTypeSpecifier: {
		one("Name", func(n *ElaboratedTypeSpecifier) Node { return n.Name }),
	},
	KindEnumerationSpecifier: {
		one("Name", func(n *EnumerationSpecifier) Node { return n.Name }),
		one("BaseType", func(n *EnumerationSpecifier) Node { return n.BaseType }),
		many("Enumerators", func(n *EnumerationSpecifier) []Node { return n.Enumerators }),
	},
	KindEnumerator: {
		one("Name", func(n *Enumerator) Node { return n.Name }),
		one("Value", func(n *Enumerator) Node { return n.Value }),
	},
	KindBaseSpecifier: {
		one("Name", func(n *BaseSpecifier) Node { return n.Name }),
	},
	KindDeclarator: declaratorCore[*PlainDeclarator](),
	KindFunctionDeclarator: append(declaratorCore[*FunctionDeclarator](),
		many("Parameters", func(n *FunctionDeclarator) []Node { return n.Parameters }),
		one("NoexceptExpression", func(n *FunctionDeclarator) Node { return n.NoexceptExpression }),
		one("TrailingReturnType", func(n *FunctionDeclarator) Node { return n.TrailingReturnType }),
	),
	KindArrayDeclarator: append(declaratorCore[*ArrayDeclarator](),
		many("ArrayModifiers", func(n *ArrayDeclarator) []Node { return n.Modifiers }),
	),
	KindFieldDeclarator: append(declaratorCore[*FieldDeclarator](),
		one("BitFieldSize", func(n *FieldDeclarator) Node { return n.BitFieldSize }),
	),
	KindPointer:           {},
	KindReferenceOperator: {},
	KindArrayModifier: {
		one("ConstantExpression", func(n *ArrayModifier) Node { return n.ConstantExpression }),
	},
	KindSimpleDeclaration: {
		one("DeclSpecifier", func(n *SimpleDeclaration) Node { return n.DeclSpecifier }),
		many("Declarators", func(n *SimpleDeclaration) []Node { return n.Declarators }),
	},
	KindFunctionDefinition: {
		one("DeclSpecifier", func(n *FunctionDefinition) Node { return n.DeclSpecifier }),
		one("Declarator", func(n *FunctionDefinition) Node { return n.Declarator }),
		many("MemberInitializers", func(n *FunctionDefinition) []Node { return n.MemberInitializers }),
		one("Body", func(n *FunctionDefinition) Node { return n.Body }),
	},
	KindParameterDeclaration: {
		one("DeclSpecifier", func(n *ParameterDeclaration) Node { return n.DeclSpecifier }),
		one("Declarator", func(n *ParameterDeclaration) Node { return n.Declarator }),
	},
	KindNamespaceDefinition: {
		one("Name", func(n *NamespaceDefinition) Node { return n.Name }),
		many("Declarations", func(n *NamespaceDefinition) []Node { return n.Declarations }),
	},
	KindUsingDirective: {
		one("QualifiedName", func(n *UsingDirective) Node { return n.QualifiedName }),
	},
	KindUsingDeclaration: {
		one("Name", func(n *UsingDeclaration) Node { return n.Name }),
	},
	KindVisibilityLabel: {},
	KindTemplateDeclaration: {
		many("TemplateParameters", func(n *TemplateDeclaration) []Node { return n.Parameters }),
		one("Declaration", func(n *TemplateDeclaration) Node { return n.Declaration }),
	},
	KindSimpleTypeTemplateParameter: {
		one("Name", func(n *SimpleTypeTemplateParameter) Node { return n.Name }),
		one("DefaultType", func(n *SimpleTypeTemplateParameter) Node { return n.DefaultType }),
	},
	KindLinkageSpecification: {
		many("Declarations", func(n *LinkageSpecification) []Node { return n.Declarations }),
	},
	KindASMDeclaration: {},
	KindAliasDeclaration: {
		one("Alias", func(n *AliasDeclaration) Node { return n.Alias }),
		one("MappingTypeId", func(n *AliasDeclaration) Node { return n.MappingTypeId }),
	},
	KindStaticAssertionDeclaration: {
		one("Condition", func(n *StaticAssertionDeclaration) Node { return n.Condition }),
		one("Message", func(n *StaticAssertionDeclaration) Node { return n.Message }),
	},
	KindExplicitTemplateInstantiation: {
		one("Declaration", func(n *ExplicitTemplateInstantiation) Node { return n.Declaration }),
	},
	KindProblemDeclaration: {},
	KindTypeId: {
		one("DeclSpecifier", func(n *TypeId) Node { return n.DeclSpecifier }),
		one("AbstractDeclarator", func(n *TypeId) Node { return n.AbstractDeclarator }),
	},
	KindEqualsInitializer: {
		one("InitializerClause", func(n *EqualsInitializer) Node { return n.Clause }),
	},
	KindInitializerList: {
		many("Clauses", func(n *InitializerList) []Node { return n.Clauses }),
	},
	KindConstructorInitializer: {
		many("Arguments", func(n *ConstructorInitializer) []Node { return n.Arguments }),
	},
	KindConstructorChainInitializer: {
		one("MemberInitializerId", func(n *ConstructorChainInitializer) Node { return n.MemberId }),
		one("Initializer", func(n *ConstructorChainInitializer) Node { return n.Initializer }),
	},

	// Statements

	KindCompoundStatement: {
		many("Statements", func(n *CompoundStatement) []Node { return n.Statements }),
	},
	KindDeclarationStatement: {
		one("Declaration", func(n *DeclarationStatement) Node { return n.Declaration }),
	},
	KindExpressionStatement: {
		one("Expression", func(n *ExpressionStatement) Node { return n.Expression }),
	},
	KindReturnStatement: {
		one("ReturnArgument", func(n *ReturnStatement) Node { return n.ReturnValue }),
	},
	KindIfStatement: {
		one("ConditionExpression", func(n *IfStatement) Node { return n.Condition }),
		one("ConditionDeclaration", func(n *IfStatement) Node { return n.ConditionDeclaration }),
		one("ThenClause", func(n *IfStatement) Node { return n.Then }),
		one("ElseClause", func(n *IfStatement) Node { return n.Else }),
	},
	KindWhileStatement: {
		one("Condition", func(n *WhileStatement) Node { return n.Condition }),
		one("ConditionDeclaration", func(n *WhileStatement) Node { return n.ConditionDeclaration }),
		one("Body", func(n *WhileStatement) Node { return n.Body }),
	},
	KindDoStatement: {
		one("Body", func(n *DoStatement) Node { return n.Body }),
		one("Condition", func(n *DoStatement) Node { return n.Condition }),
	},
	KindForStatement: {
		one("InitializerStatement", func(n *ForStatement) Node { return n.Init }),
		one("ConditionExpression", func(n *ForStatement) Node { return n.Condition }),
		one("IterationExpression", func(n *ForStatement) Node { return n.Iteration }),
		one("Body", func(n *ForStatement) Node { return n.Body }),
	},
	KindRangeBasedForStatement: {
		one("Declaration", func(n *RangeBasedForStatement) Node { return n.Declaration }),
		one("InitializerClause", func(n *RangeBasedForStatement) Node { return n.Initializer }),
		one("Body", func(n *RangeBasedForStatement) Node { return n.Body }),
	},
	KindSwitchStatement: {
		one("ControllerExpression", func(n *SwitchStatement) Node { return n.Controller }),
		one("Body", func(n *SwitchStatement) Node { return n.Body }),
	},
	KindCaseStatement: {
		one("Expression", func(n *CaseStatement) Node { return n.Expression }),
	},
	KindDefaultStatement:  {},
	KindBreakStatement:    {},
	KindContinueStatement: {},
	KindGotoStatement: {
		one("Name", func(n *GotoStatement) Node { return n.Label }),
	},
	KindLabelStatement: {
		one("Name", func(n *LabelStatement) Node { return n.Label }),
		one("NestedStatement", func(n *LabelStatement) Node { return n.Nested }),
	},
	KindNullStatement: {},
	KindTryBlockStatement: {
		one("TryBody", func(n *TryBlockStatement) Node { return n.TryBody }),
		many("CatchHandlers", func(n *TryBlockStatement) []Node { return n.Handlers }),
	},
	KindCatchHandler: {
		one("Declaration", func(n *CatchHandler) Node { return n.Declaration }),
		one("CatchBody", func(n *CatchHandler) Node { return n.Body }),
	},
	KindProblemStatement: {},

	// Expressions

	KindIdExpression: {
		one("Name", func(n *IdExpression) Node { return n.Name }),
	},
	KindLiteralExpression: {},
	KindBinaryExpression: {
		one("Operand1", func(n *BinaryExpression) Node { return n.Operand1 }),
		one("Operand2", func(n *BinaryExpression) Node { return n.Operand2 }),
	},
	KindUnaryExpression: {
		one("Operand", func(n *UnaryExpression) Node { return n.Operand }),
	},
	KindFunctionCallExpression: {
		one("FunctionNameExpression", func(n *FunctionCallExpression) Node { return n.Function }),
		many("Arguments", func(n *FunctionCallExpression) []Node { return n.Arguments }),
	},
	KindFieldReference: {
		one("FieldOwner", func(n *FieldReference) Node { return n.Owner }),
		one("FieldName", func(n *FieldReference) Node { return n.Field }),
	},
	KindArraySubscriptExpression: {
		one("ArrayExpression", func(n *ArraySubscriptExpression) Node { return n.Array }),
		one("Argument", func(n *ArraySubscriptExpression) Node { return n.Argument }),
	},
	KindCastExpression: {
		one("TypeId", func(n *CastExpression) Node { return n.TypeId }),
		one("Operand", func(n *CastExpression) Node { return n.Operand }),
	},
	KindConditionalExpression: {
		one("LogicalConditionExpression", func(n *ConditionalExpression) Node { return n.Condition }),
		one("PositiveResultExpression", func(n *ConditionalExpression) Node { return n.Positive }),
		one("NegativeResultExpression", func(n *ConditionalExpression) Node { return n.Negative }),
	},
	KindTypeIdExpression: {
		one("TypeId", func(n *TypeIdExpression) Node { return n.TypeId }),
	},
	KindNewExpression: {
		many("PlacementArguments", func(n *NewExpression) []Node { return n.Placement }),
		one("TypeId", func(n *NewExpression) Node { return n.TypeId }),
		one("Initializer", func(n *NewExpression) Node { return n.Initializer }),
	},
	KindDeleteExpression: {
		one("Operand", func(n *DeleteExpression) Node { return n.Operand }),
	},
	KindLambdaExpression: {
		many("Captures", func(n *LambdaExpression) []Node { return n.Captures }),
		one("Declarator", func(n *LambdaExpression) Node { return n.Declarator }),
		one("Body", func(n *LambdaExpression) Node { return n.Body }),
	},
	KindCapture: {
		one("Identifier", func(n *Capture) Node { return n.Identifier }),
	},
	KindExpressionList: {
		many("Expressions", func(n *ExpressionList) []Node { return n.Expressions }),
	},
	KindSimpleTypeConstructorExpression: {
		one("DeclSpecifier", func(n *SimpleTypeConstructorExpression) Node { return n.DeclSpecifier }),
		one("Initializer", func(n *SimpleTypeConstructorExpression) Node { return n.Initializer }),
	},
	KindProblemExpression: {},
}

// ChildrenOf returns every operation of kind that yields nodes, including
// the link-back operations every kind has. The order is the authored order
// and carries no meaning. Unknown kinds return nil.
func ChildrenOf(kind Kind) []Accessor {
	own, ok := registry[kind]
	if !ok {
		return nil
	}
	out := make([]Accessor, 0, len(own)+len(linkBacks))
	out = append(out, own...)
	return append(out, linkBacks...)
}

// Known reports whether kind has an accessor table.
func Known(kind Kind) bool {
	_, ok := registry[kind]
	return ok
}

// RoleName derives the role a child reached through accessor on a parent of
// kind carries, e.g. "IASTSimpleDeclaration.DECLARATORS".
func RoleName(kind Kind, accessor string) string {
	owner := "I" + strings.TrimPrefix(string(kind), "CPP")
	var b strings.Builder
	for i, r := range accessor {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return owner + "." + b.String()
}
