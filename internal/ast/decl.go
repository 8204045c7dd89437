package ast

const (
	KindTranslationUnit               Kind = "CPPASTTranslationUnit"
	KindName                          Kind = "CPPASTName"
	KindOperatorName                  Kind = "CPPASTOperatorName"
	KindQualifiedName                 Kind = "CPPASTQualifiedName"
	KindTemplateId                    Kind = "CPPASTTemplateId"
	KindSimpleDeclSpecifier           Kind = "CPPASTSimpleDeclSpecifier"
	KindNamedTypeSpecifier            Kind = "CPPASTNamedTypeSpecifier"
	KindCompositeTypeSpecifier        Kind = "CPPASTCompositeTypeSpecifier"
	KindElaboratedTypeSpecifier       Kind = "CPPASTElaboratedTypeSpecifier"
	KindEnumerationSpecifier          Kind = "CPPASTEnumerationSpecifier"
	KindEnumerator                    Kind = "CPPASTEnumerator"
	KindBaseSpecifier                 Kind = "CPPASTBaseSpecifier"
	KindDeclarator                    Kind = "CPPASTDeclarator"
	KindFunctionDeclarator            Kind = "CPPASTFunctionDeclarator"
	KindArrayDeclarator               Kind = "CPPASTArrayDeclarator"
	KindFieldDeclarator               Kind = "CPPASTFieldDeclarator"
	KindPointer                       Kind = "CPPASTPointer"
	KindReferenceOperator             Kind = "CPPASTReferenceOperator"
	KindArrayModifier                 Kind = "CPPASTArrayModifier"
	KindSimpleDeclaration             Kind = "CPPASTSimpleDeclaration"
	KindFunctionDefinition            Kind = "CPPASTFunctionDefinition"
	KindParameterDeclaration          Kind = "CPPASTParameterDeclaration"
	KindNamespaceDefinition           Kind = "CPPASTNamespaceDefinition"
	KindUsingDirective                Kind = "CPPASTUsingDirective"
	KindUsingDeclaration              Kind = "CPPASTUsingDeclaration"
	KindVisibilityLabel               Kind = "CPPASTVisibilityLabel"
	KindTemplateDeclaration           Kind = "CPPASTTemplateDeclaration"
	KindSimpleTypeTemplateParameter   Kind = "CPPASTSimpleTypeTemplateParameter"
	KindLinkageSpecification          Kind = "CPPASTLinkageSpecification"
	KindASMDeclaration                Kind = "CPPASTASMDeclaration"
	KindAliasDeclaration              Kind = "CPPASTAliasDeclaration"
	KindStaticAssertionDeclaration    Kind = "CPPASTStaticAssertionDeclaration"
	KindExplicitTemplateInstantiation Kind = "CPPASTExplicitTemplateInstantiation"
	KindProblemDeclaration            Kind = "CPPASTProblemDeclaration"
	KindTypeId                        Kind = "CPPASTTypeId"
	KindEqualsInitializer             Kind = "CPPASTEqualsInitializer"
	KindInitializerList               Kind = "CPPASTInitializerList"
	KindConstructorInitializer        Kind = "CPPASTConstructorInitializer"
	KindConstructorChainInitializer   Kind = "CPPASTConstructorChainInitializer"
)

// TranslationUnit is the root of every tree.
type TranslationUnit struct {
	Base
	Declarations []Node
}

func (*TranslationUnit) Kind() Kind { return KindTranslationUnit }

// Name is a plain identifier, including destructor names such as "~Foo".
type Name struct {
	Base
	Identifier string
}

func (*Name) Kind() Kind { return KindName }

// OperatorName is an `operator+`-style function name.
type OperatorName struct {
	Base
	Identifier string
}

func (*OperatorName) Kind() Kind { return KindOperatorName }

// QualifiedName is `a::b::c`. Segments holds every segment in order.
type QualifiedName struct {
	Base
	Segments             []Node
	FullyQualified       bool
	ConversionOrOperator bool
}

func (*QualifiedName) Kind() Kind { return KindQualifiedName }

// TemplateId is `name<args...>`.
type TemplateId struct {
	Base
	TemplateName Node
	Arguments    []Node
}

func (*TemplateId) Kind() Kind { return KindTemplateId }

// DeclSpec holds the qualifiers shared by every declaration specifier kind.
type DeclSpec struct {
	Storage     StorageClass
	Const       bool
	Volatile    bool
	Restrict    bool
	Inline      bool
	ConstExpr   bool
	Explicit    bool
	Friend      bool
	ThreadLocal bool
	Virtual     bool
}

// DeclSpecifier is implemented by every declaration specifier kind.
type DeclSpecifier interface {
	Node
	Qualifiers() *DeclSpec
}

type SimpleDeclSpecifier struct {
	Base
	DeclSpec
	Type      SimpleType
	Long      bool
	LongLong  bool
	Short     bool
	Signed    bool
	Unsigned  bool
	Complex   bool
	Imaginary bool
	// DeclTypeExpression is the operand of decltype/typeof, if any.
	DeclTypeExpression Node
}

func (*SimpleDeclSpecifier) Kind() Kind { return KindSimpleDeclSpecifier }
func (s *SimpleDeclSpecifier) Qualifiers() *DeclSpec { return &s.DeclSpec }

type NamedTypeSpecifier struct {
	Base
	DeclSpec
	Name     Node
	TypeName bool
}

func (*NamedTypeSpecifier) Kind() Kind { return KindNamedTypeSpecifier }
func (s *NamedTypeSpecifier) Qualifiers() *DeclSpec { return &s.DeclSpec }

type CompositeTypeSpecifier struct {
	Base
	DeclSpec
	Key            CompositeKey
	Name           Node
	BaseSpecifiers []Node
	Members        []Node
	Final          bool
}

func (*CompositeTypeSpecifier) Kind() Kind { return KindCompositeTypeSpecifier }
func (s *CompositeTypeSpecifier) Qualifiers() *DeclSpec { return &s.DeclSpec }

type ElaboratedTypeSpecifier struct {
	Base
	DeclSpec
	ElabKind ElaboratedKind
	Name     Node
}

func (*ElaboratedTypeSpecifier) Kind() Kind { return KindElaboratedTypeSpecifier }
func (s *ElaboratedTypeSpecifier) Qualifiers() *DeclSpec { return &s.DeclSpec }

type EnumerationSpecifier struct {
	Base
	DeclSpec
	Name        Node
	BaseType    Node
	Enumerators []Node
	Scoped      bool
	Opaque      bool
}

func (*EnumerationSpecifier) Kind() Kind { return KindEnumerationSpecifier }
func (s *EnumerationSpecifier) Qualifiers() *DeclSpec { return &s.DeclSpec }

type Enumerator struct {
	Base
	Name  Node
	Value Node
}

func (*Enumerator) Kind() Kind { return KindEnumerator }

type BaseSpecifier struct {
	Base
	Name       Node
	Visibility Visibility
	Virtual    bool
}

func (*BaseSpecifier) Kind() Kind { return KindBaseSpecifier }

// DeclaratorCore holds what every declarator kind has.
type DeclaratorCore struct {
	PointerOperators []Node
	Name             Node
	Nested           Node
	Initializer      Node
	ParameterPack    bool
}

// Declarator is implemented by every declarator kind.
type Declarator interface {
	Node
	Core() *DeclaratorCore
}

// PlainDeclarator is the CPPASTDeclarator kind.
type PlainDeclarator struct {
	Base
	DeclaratorCore
}

func (*PlainDeclarator) Kind() Kind { return KindDeclarator }
func (d *PlainDeclarator) Core() *DeclaratorCore { return &d.DeclaratorCore }

type FunctionDeclarator struct {
	Base
	DeclaratorCore
	Parameters         []Node
	VarArgs            bool
	Const              bool
	Volatile           bool
	Mutable            bool
	PureVirtual        bool
	Override           bool
	Final              bool
	NoexceptExpression Node
	TrailingReturnType Node
}

func (*FunctionDeclarator) Kind() Kind { return KindFunctionDeclarator }
func (d *FunctionDeclarator) Core() *DeclaratorCore { return &d.DeclaratorCore }

type ArrayDeclarator struct {
	Base
	DeclaratorCore
	Modifiers []Node
}

func (*ArrayDeclarator) Kind() Kind { return KindArrayDeclarator }
func (d *ArrayDeclarator) Core() *DeclaratorCore { return &d.DeclaratorCore }

type FieldDeclarator struct {
	Base
	DeclaratorCore
	BitFieldSize Node
}

func (*FieldDeclarator) Kind() Kind { return KindFieldDeclarator }
func (d *FieldDeclarator) Core() *DeclaratorCore { return &d.DeclaratorCore }

type Pointer struct {
	Base
	Const    bool
	Volatile bool
	Restrict bool
}

func (*Pointer) Kind() Kind { return KindPointer }

type ReferenceOperator struct {
	Base
	RValue bool
}

func (*ReferenceOperator) Kind() Kind { return KindReferenceOperator }

type ArrayModifier struct {
	Base
	ConstantExpression Node
}

func (*ArrayModifier) Kind() Kind { return KindArrayModifier }

type SimpleDeclaration struct {
	Base
	DeclSpecifier Node
	Declarators   []Node
}

func (*SimpleDeclaration) Kind() Kind { return KindSimpleDeclaration }

type FunctionDefinition struct {
	Base
	DeclSpecifier      Node
	Declarator         Node
	MemberInitializers []Node
	Body               Node
	Defaulted          bool
	Deleted            bool
}

func (*FunctionDefinition) Kind() Kind { return KindFunctionDefinition }

type ParameterDeclaration struct {
	Base
	DeclSpecifier Node
	Declarator    Node
}

func (*ParameterDeclaration) Kind() Kind { return KindParameterDeclaration }

type NamespaceDefinition struct {
	Base
	Name         Node
	Declarations []Node
	Inline       bool
}

func (*NamespaceDefinition) Kind() Kind { return KindNamespaceDefinition }

type UsingDirective struct {
	Base
	QualifiedName Node
}

func (*UsingDirective) Kind() Kind { return KindUsingDirective }

type UsingDeclaration struct {
	Base
	Name     Node
	TypeName bool
}

func (*UsingDeclaration) Kind() Kind { return KindUsingDeclaration }

type VisibilityLabel struct {
	Base
	Visibility Visibility
}

func (*VisibilityLabel) Kind() Kind { return KindVisibilityLabel }

type TemplateDeclaration struct {
	Base
	Parameters  []Node
	Declaration Node
	Exported    bool
}

func (*TemplateDeclaration) Kind() Kind { return KindTemplateDeclaration }

type SimpleTypeTemplateParameter struct {
	Base
	ParamKind     TemplateParamKind
	Name          Node
	DefaultType   Node
	ParameterPack bool
}

func (*SimpleTypeTemplateParameter) Kind() Kind { return KindSimpleTypeTemplateParameter }

type LinkageSpecification struct {
	Base
	Literal      string
	Declarations []Node
}

func (*LinkageSpecification) Kind() Kind { return KindLinkageSpecification }

type ASMDeclaration struct {
	Base
	Assembly string
}

func (*ASMDeclaration) Kind() Kind { return KindASMDeclaration }

type AliasDeclaration struct {
	Base
	Alias         Node
	MappingTypeId Node
}

func (*AliasDeclaration) Kind() Kind { return KindAliasDeclaration }

type StaticAssertionDeclaration struct {
	Base
	Condition Node
	Message   Node
}

func (*StaticAssertionDeclaration) Kind() Kind { return KindStaticAssertionDeclaration }

type ExplicitTemplateInstantiation struct {
	Base
	Declaration Node
	Modifier    InstantiationModifier
}

func (*ExplicitTemplateInstantiation) Kind() Kind { return KindExplicitTemplateInstantiation }

// ProblemDeclaration stands in for source the collaborator could not model.
type ProblemDeclaration struct {
	Base
	Problem string
}

func (*ProblemDeclaration) Kind() Kind { return KindProblemDeclaration }

type TypeId struct {
	Base
	DeclSpecifier      Node
	AbstractDeclarator Node
}

func (*TypeId) Kind() Kind { return KindTypeId }

type EqualsInitializer struct {
	Base
	Clause Node
}

func (*EqualsInitializer) Kind() Kind { return KindEqualsInitializer }

type InitializerList struct {
	Base
	Clauses []Node
}

func (*InitializerList) Kind() Kind { return KindInitializerList }

type ConstructorInitializer struct {
	Base
	Arguments []Node
}

func (*ConstructorInitializer) Kind() Kind { return KindConstructorInitializer }

type ConstructorChainInitializer struct {
	Base
	MemberId    Node
	Initializer Node
}

func (*ConstructorChainInitializer) Kind() Kind { return KindConstructorChainInitializer }
