package serializer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jward/cppdriver/internal/ast"
)

// attr is one kind-specific scalar. get may fail; the caller drops the
// attribute when it does.
type attr struct {
	name string
	get  func() (any, error)
}

func fixed(name string, v any) attr {
	return attr{name: name, get: func() (any, error) { return v, nil }}
}

func computed(name string, fn func() (any, error)) attr {
	return attr{name: name, get: fn}
}

var errNoCategory = errors.New("no value category")

// attributesOf lists the scalars n contributes, in emission order.
func attributesOf(n ast.Node) []attr {
	switch n := n.(type) {
	case *ast.Name:
		return []attr{fixed("Name", n.Identifier), fixed("IsQualified", false)}
	case *ast.OperatorName:
		return []attr{fixed("Name", n.Identifier), fixed("IsQualified", false)}
	case *ast.QualifiedName:
		return []attr{
			computed("Name", func() (any, error) { return qualifiedText(n) }),
			fixed("IsQualified", true),
			fixed("IsConversionOperator", n.ConversionOrOperator),
			fixed("IsFullyQualified", n.FullyQualified),
		}
	case *ast.TemplateId:
		return []attr{
			computed("Name", func() (any, error) { return nameText(n) }),
			fixed("IsQualified", false),
		}

	case ast.DeclSpecifier:
		return declSpecAttrs(n)
	case ast.Declarator:
		return declaratorAttrs(n)

	case *ast.Pointer:
		return []attr{
			fixed("IsConst", n.Const),
			fixed("IsRestrict", n.Restrict),
			fixed("IsVolatile", n.Volatile),
		}
	case *ast.ReferenceOperator:
		return []attr{fixed("IsRValueReference", n.RValue)}
	case *ast.InitializerList:
		return []attr{fixed("Size", len(n.Clauses))}
	case *ast.BaseSpecifier:
		return []attr{fixed("IsVirtual", n.Virtual), fixed("Visibility", n.Visibility.String())}
	case *ast.SimpleTypeTemplateParameter:
		return []attr{fixed("IsParameterPack", n.ParameterPack), fixed("ParameterType", n.ParamKind.String())}

	case *ast.ASMDeclaration:
		return []attr{fixed("Assembly", n.Assembly)}
	case *ast.ExplicitTemplateInstantiation:
		return []attr{fixed("Modifier", n.Modifier.String())}
	case *ast.VisibilityLabel:
		return []attr{fixed("Visibility", n.Visibility.String())}
	case *ast.UsingDeclaration:
		return []attr{fixed("IsTypeName", n.TypeName)}
	case *ast.TemplateDeclaration:
		return []attr{fixed("IsExported", n.Exported)}
	case *ast.NamespaceDefinition:
		return []attr{fixed("IsInline", n.Inline)}
	case *ast.LinkageSpecification:
		return []attr{fixed("Literal", n.Literal)}
	case *ast.FunctionDefinition:
		return []attr{fixed("IsDefaulted", n.Defaulted), fixed("IsDeleted", n.Deleted)}
	case *ast.ProblemDeclaration:
		return []attr{fixed("Problem", n.Problem)}

	case *ast.CatchHandler:
		return []attr{fixed("IsCatchAll", n.CatchAll)}
	case *ast.IfStatement:
		return []attr{fixed("IsConstexpr", n.Constexpr)}
	case *ast.ProblemStatement:
		return []attr{fixed("Problem", n.Problem)}

	case *ast.Capture:
		return []attr{
			fixed("CapturesThisPointer", n.CapturesThis),
			fixed("IsByReference", n.ByReference),
		}
	case *ast.LambdaExpression:
		return append(expressionAttrs(n), fixed("CaptureDefault", n.CaptureDefault.String()))
	case *ast.BinaryExpression:
		return append(expressionAttrs(n), fixed("Operator", n.Operator.String()))
	case *ast.UnaryExpression:
		return append(expressionAttrs(n), fixed("operator", n.Operator.String()))
	case *ast.LiteralExpression:
		return append(expressionAttrs(n),
			fixed("LiteralValue", n.Value),
			fixed("kind", n.LitKind.String()),
		)
	case *ast.TypeIdExpression:
		return append(expressionAttrs(n), fixed("operator", n.Operator.String()))
	case *ast.FieldReference:
		return append(expressionAttrs(n),
			fixed("IsPointerDereference", n.PointerDereference),
			fixed("IsTemplate", n.Template),
		)
	case *ast.DeleteExpression:
		return append(expressionAttrs(n), fixed("IsGlobal", n.Global), fixed("IsVectored", n.Vectored))
	case *ast.NewExpression:
		return append(expressionAttrs(n),
			fixed("IsArrayAllocation", n.ArrayAllocation),
			fixed("IsGlobal", n.Global),
			fixed("IsNewTypeId", n.NewTypeId),
		)
	case *ast.CastExpression:
		return append(expressionAttrs(n), fixed("CastOperator", n.Operator.String()))
	case *ast.ProblemExpression:
		return []attr{fixed("Problem", n.Problem)}
	case *ast.IdExpression, *ast.FunctionCallExpression, *ast.ArraySubscriptExpression,
		*ast.ConditionalExpression, *ast.ExpressionList, *ast.SimpleTypeConstructorExpression:
		return expressionAttrs(n)
	}
	return nil
}

func declSpecAttrs(n ast.DeclSpecifier) []attr {
	q := n.Qualifiers()
	out := []attr{
		fixed("IsConst", q.Const),
		fixed("IsInline", q.Inline),
		fixed("IsRestrict", q.Restrict),
		fixed("IsVolatile", q.Volatile),
		fixed("StorageClass", q.Storage.String()),
		fixed("IsConstExpr", q.ConstExpr),
		fixed("IsExplicit", q.Explicit),
		fixed("IsFriend", q.Friend),
		fixed("IsThreadLocal", q.ThreadLocal),
		fixed("IsVirtual", q.Virtual),
	}
	switch s := n.(type) {
	case *ast.CompositeTypeSpecifier:
		out = append(out, fixed("IsFinal", s.Final), fixed("Key", s.Key.String()))
	case *ast.ElaboratedTypeSpecifier:
		out = append(out, fixed("Kind", s.ElabKind.String()))
	case *ast.SimpleDeclSpecifier:
		out = append(out,
			fixed("IsComplex", s.Complex),
			fixed("IsImaginary", s.Imaginary),
			fixed("IsLong", s.Long),
			fixed("IsLongLong", s.LongLong),
			fixed("IsShort", s.Short),
			fixed("IsSigned", s.Signed),
			fixed("IsUnsigned", s.Unsigned),
			fixed("Type", s.Type.String()),
		)
	case *ast.EnumerationSpecifier:
		out = append(out, fixed("IsOpaque", s.Opaque), fixed("IsScoped", s.Scoped))
	case *ast.NamedTypeSpecifier:
		out = append(out, fixed("IsTypeName", s.TypeName))
	}
	return out
}

func declaratorAttrs(n ast.Declarator) []attr {
	if f, ok := n.(*ast.FunctionDeclarator); ok {
		return []attr{
			fixed("TakesVarArgs", f.VarArgs),
			fixed("IsConst", f.Const),
			fixed("IsFinal", f.Final),
			fixed("IsMutable", f.Mutable),
			fixed("IsOverride", f.Override),
			fixed("IsPureVirtual", f.PureVirtual),
			fixed("IsVolatile", f.Volatile),
		}
	}
	return []attr{fixed("DeclaresParameterPack", n.Core().ParameterPack)}
}

func expressionAttrs(n ast.Node) []attr {
	return []attr{
		computed("ExpressionValueCategory", func() (any, error) { return valueCategory(n) }),
		computed("IsLValue", func() (any, error) {
			c, err := valueCategory(n)
			return c == "LVALUE", err
		}),
	}
}

// valueCategory approximates the C++ value category from the expression's
// shape alone.
func valueCategory(n ast.Node) (string, error) {
	switch e := n.(type) {
	case *ast.IdExpression, *ast.ArraySubscriptExpression, *ast.FieldReference:
		return "LVALUE", nil
	case *ast.LiteralExpression:
		if e.LitKind == ast.LitString {
			return "LVALUE", nil
		}
		return "PRVALUE", nil
	case *ast.UnaryExpression:
		switch e.Operator {
		case ast.OpStar, ast.OpPrefixIncr, ast.OpPrefixDecr:
			return "LVALUE", nil
		case ast.OpBracketedPrimary:
			if e.Operand == nil {
				return "", errNoCategory
			}
			return valueCategory(e.Operand)
		}
		return "PRVALUE", nil
	case *ast.BinaryExpression:
		switch e.Operator {
		case ast.OpAssign, ast.OpMultiplyAssign, ast.OpDivideAssign, ast.OpModuloAssign,
			ast.OpPlusAssign, ast.OpMinusAssign, ast.OpShiftLeftAssign, ast.OpShiftRightAssign,
			ast.OpBinaryAndAssign, ast.OpBinaryXorAssign, ast.OpBinaryOrAssign,
			ast.OpPmDot, ast.OpPmArrow:
			return "LVALUE", nil
		}
		return "PRVALUE", nil
	case *ast.ConditionalExpression:
		if e.Positive == nil || e.Negative == nil {
			return "PRVALUE", nil
		}
		p, err := valueCategory(e.Positive)
		if err != nil {
			return "", err
		}
		q, err := valueCategory(e.Negative)
		if err != nil {
			return "", err
		}
		if p == q {
			return p, nil
		}
		return "PRVALUE", nil
	case *ast.ExpressionList:
		if len(e.Expressions) == 0 {
			return "", errNoCategory
		}
		return valueCategory(e.Expressions[len(e.Expressions)-1])
	case *ast.FunctionCallExpression, *ast.CastExpression, *ast.TypeIdExpression,
		*ast.NewExpression, *ast.DeleteExpression, *ast.LambdaExpression,
		*ast.SimpleTypeConstructorExpression:
		return "PRVALUE", nil
	}
	return "", fmt.Errorf("%w for %s", errNoCategory, n.Kind())
}

// nameText renders a name node as source-like text.
func nameText(n ast.Node) (string, error) {
	switch n := n.(type) {
	case *ast.Name:
		return n.Identifier, nil
	case *ast.OperatorName:
		return n.Identifier, nil
	case *ast.QualifiedName:
		return qualifiedText(n)
	case *ast.TemplateId:
		if n.TemplateName == nil {
			return "", &ast.MismatchError{Want: "template name", Got: ""}
		}
		return nameText(n.TemplateName)
	case nil:
		return "", nil
	}
	return "", &ast.MismatchError{Want: "name", Got: n.Kind()}
}

func qualifiedText(q *ast.QualifiedName) (string, error) {
	parts := make([]string, 0, len(q.Segments))
	for _, s := range q.Segments {
		t, err := nameText(s)
		if err != nil {
			return "", err
		}
		parts = append(parts, t)
	}
	text := strings.Join(parts, "::")
	if q.FullyQualified {
		text = "::" + text
	}
	return text, nil
}
