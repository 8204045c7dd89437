package ast

// BinaryOp is the operator of a BinaryExpression.
type BinaryOp int

const (
	OpUnknownBinary BinaryOp = iota
	OpMultiply
	OpDivide
	OpModulo
	OpPlus
	OpMinus
	OpShiftLeft
	OpShiftRight
	OpLessThan
	OpGreaterThan
	OpLessEqual
	OpGreaterEqual
	OpBinaryAnd
	OpBinaryXor
	OpBinaryOr
	OpLogicalAnd
	OpLogicalOr
	OpAssign
	OpMultiplyAssign
	OpDivideAssign
	OpModuloAssign
	OpPlusAssign
	OpMinusAssign
	OpShiftLeftAssign
	OpShiftRightAssign
	OpBinaryAndAssign
	OpBinaryXorAssign
	OpBinaryOrAssign
	OpEquals
	OpNotEquals
	OpPmDot
	OpPmArrow
	OpMax
	OpMin
	OpEllipses
)

var binaryOpSymbols = map[BinaryOp]string{
	OpMultiply:         "*",
	OpDivide:           "/",
	OpModulo:           "%",
	OpPlus:             "+",
	OpMinus:            "-",
	OpShiftLeft:        "<<",
	OpShiftRight:       ">>",
	OpLessThan:         "<",
	OpGreaterThan:      ">",
	OpLessEqual:        "<=",
	OpGreaterEqual:     ">=",
	OpBinaryAnd:        "&",
	OpBinaryXor:        "^",
	OpBinaryOr:         "|",
	OpLogicalAnd:       "&&",
	OpLogicalOr:        "||",
	OpAssign:           "=",
	OpMultiplyAssign:   "*=",
	OpDivideAssign:     "/=",
	OpModuloAssign:     "%=",
	OpPlusAssign:       "+=",
	OpMinusAssign:      "-=",
	OpShiftLeftAssign:  "<<=",
	OpShiftRightAssign: ">>=",
	OpBinaryAndAssign:  "&=",
	OpBinaryXorAssign:  "^=",
	OpBinaryOrAssign:   "|=",
	OpEquals:           "==",
	OpNotEquals:        "!=",
	OpPmDot:            ".",
	OpPmArrow:          "->",
	OpMax:              "max",
	OpMin:              "min",
	OpEllipses:         "...",
}

// String returns the operator symbol, or "unknown_operator".
func (op BinaryOp) String() string {
	if s, ok := binaryOpSymbols[op]; ok {
		return s
	}
	return "unknown_operator"
}

// BinaryOpFromSymbol maps a source token to its operator.
func BinaryOpFromSymbol(sym string) BinaryOp {
	for op, s := range binaryOpSymbols {
		if s == sym {
			return op
		}
	}
	switch sym {
	case ".*":
		return OpPmDot
	case "->*":
		return OpPmArrow
	case "and":
		return OpLogicalAnd
	case "or":
		return OpLogicalOr
	case "bitand":
		return OpBinaryAnd
	case "bitor":
		return OpBinaryOr
	case "xor":
		return OpBinaryXor
	case "not_eq":
		return OpNotEquals
	}
	return OpUnknownBinary
}

// UnaryOp is the operator of a UnaryExpression.
type UnaryOp int

const (
	OpUnknownUnary UnaryOp = iota
	OpPrefixIncr
	OpPrefixDecr
	OpUnaryPlus
	OpUnaryMinus
	OpStar
	OpAmper
	OpTilde
	OpNot
	OpSizeof
	OpPostfixIncr
	OpPostfixDecr
	OpBracketedPrimary
	OpThrow
	OpTypeid
	OpAlignOf
	OpSizeofParameterPack
	OpNoexcept
	OpLabelReference
)

var unaryOpNames = map[UnaryOp]string{
	OpPrefixIncr:          "op_prefixIncr",
	OpPrefixDecr:          "op_prefixDecr",
	OpUnaryPlus:           "op_plus",
	OpUnaryMinus:          "op_minus",
	OpStar:                "op_star",
	OpAmper:               "op_amper",
	OpTilde:               "op_tilde",
	OpNot:                 "op_not",
	OpSizeof:              "op_sizeof",
	OpPostfixIncr:         "op_postFixIncr",
	OpPostfixDecr:         "op_postFixDecr",
	OpBracketedPrimary:    "op_bracketedPrimary",
	OpThrow:               "op_throw",
	OpTypeid:              "op_typeid",
	OpAlignOf:             "op_alignOf",
	OpSizeofParameterPack: "op_sizeofParameterPack",
	OpNoexcept:            "op_noexcept",
	OpLabelReference:      "op_labelReference",
}

func (op UnaryOp) String() string {
	if s, ok := unaryOpNames[op]; ok {
		return s
	}
	return "op_unknown"
}

// TypeIdOp is the operator of a TypeIdExpression.
type TypeIdOp int

const (
	TypeIdUnknown TypeIdOp = iota
	TypeIdSizeof
	TypeIdTypeid
	TypeIdAlignof
	TypeIdTypeof
	TypeIdSizeofParameterPack
)

func (op TypeIdOp) String() string {
	switch op {
	case TypeIdSizeof:
		return "op_sizeof"
	case TypeIdTypeid:
		return "typeid"
	case TypeIdAlignof:
		return "op_alignof"
	case TypeIdTypeof:
		return "op_typeof"
	case TypeIdSizeofParameterPack:
		return "op_sizeofParameterPack"
	}
	return "op_unknown"
}

// LiteralKind classifies a LiteralExpression.
type LiteralKind int

const (
	LitUnknown LiteralKind = iota
	LitInteger
	LitFloat
	LitChar
	LitString
	LitTrue
	LitFalse
	LitThis
	LitNullptr
)

func (k LiteralKind) String() string {
	switch k {
	case LitInteger:
		return "integer_constant"
	case LitFloat:
		return "float_constant"
	case LitChar:
		return "char_constant"
	case LitString:
		return "string_literal"
	case LitTrue:
		return "true"
	case LitFalse:
		return "false"
	case LitThis:
		return "this"
	case LitNullptr:
		return "nullptr"
	}
	return "unknown_literal_value"
}

// StorageClass of a declaration specifier.
type StorageClass int

const (
	StorageUnspecified StorageClass = iota
	StorageTypedef
	StorageExtern
	StorageStatic
	StorageAuto
	StorageRegister
	StorageMutable
)

func (s StorageClass) String() string {
	switch s {
	case StorageTypedef:
		return "typedef"
	case StorageExtern:
		return "extern"
	case StorageStatic:
		return "static"
	case StorageAuto:
		return "auto"
	case StorageRegister:
		return "register"
	case StorageMutable:
		return "mutable"
	}
	return "unspecified"
}

// SimpleType is the builtin type keyword of a SimpleDeclSpecifier.
type SimpleType int

const (
	TypeUnspecified SimpleType = iota
	TypeVoid
	TypeChar
	TypeInt
	TypeFloat
	TypeDouble
	TypeBool
	TypeWchar
	TypeChar16
	TypeChar32
	TypeAuto
	TypeDecltype
	TypeDecltypeAuto
	TypeTypeof
	TypeInt128
	TypeFloat128
	TypeDecimal32
	TypeDecimal64
	TypeDecimal128
)

var simpleTypeNames = map[SimpleType]string{
	TypeVoid:         "void",
	TypeChar:         "char",
	TypeInt:          "int",
	TypeFloat:        "float",
	TypeDouble:       "double",
	TypeBool:         "bool",
	TypeWchar:        "wchar_t",
	TypeChar16:       "char16",
	TypeChar32:       "char32",
	TypeAuto:         "auto",
	TypeDecltype:     "decltype",
	TypeDecltypeAuto: "decltype_auto",
	TypeTypeof:       "typeof",
	TypeInt128:       "int128",
	TypeFloat128:     "float128",
	TypeDecimal32:    "decimal32",
	TypeDecimal64:    "decimal64",
	TypeDecimal128:   "decimal128",
}

// String returns the type keyword. The unspecified spelling matches what the
// downstream normalizer's type table expects.
func (t SimpleType) String() string {
	if s, ok := simpleTypeNames[t]; ok {
		return s
	}
	return "unespecified"
}

// CastOp is the spelling of a CastExpression.
type CastOp int

const (
	CastNormal CastOp = iota
	CastDynamic
	CastStatic
	CastReinterpret
	CastConst
)

func (c CastOp) String() string {
	switch c {
	case CastDynamic:
		return "dynamic_cast"
	case CastStatic:
		return "static_cast"
	case CastReinterpret:
		return "reinterpret_cast"
	case CastConst:
		return "const_cast"
	}
	return "normal_cast"
}

// CompositeKey is the keyword of a CompositeTypeSpecifier.
type CompositeKey int

const (
	KeyStruct CompositeKey = iota
	KeyUnion
	KeyClass
)

func (k CompositeKey) String() string {
	switch k {
	case KeyUnion:
		return "union"
	case KeyClass:
		return "class"
	}
	return "struct"
}

// ElaboratedKind is the keyword of an ElaboratedTypeSpecifier.
type ElaboratedKind int

const (
	ElabEnum ElaboratedKind = iota
	ElabStruct
	ElabUnion
	ElabClass
)

func (k ElaboratedKind) String() string {
	switch k {
	case ElabStruct:
		return "struct"
	case ElabUnion:
		return "union"
	case ElabClass:
		return "class"
	}
	return "enum"
}

// Visibility of a member or base class.
type Visibility int

const (
	VisibilityUnspecified Visibility = iota
	VisibilityPublic
	VisibilityProtected
	VisibilityPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityProtected:
		return "protected"
	case VisibilityPrivate:
		return "private"
	}
	return "unspecified"
}

// InstantiationModifier of an explicit template instantiation.
type InstantiationModifier int

const (
	InstantiationNone InstantiationModifier = iota
	InstantiationExtern
	InstantiationInline
	InstantiationStatic
)

func (m InstantiationModifier) String() string {
	switch m {
	case InstantiationExtern:
		return "extern"
	case InstantiationInline:
		return "inline"
	case InstantiationStatic:
		return "static"
	}
	return ""
}

// TemplateParamKind distinguishes `class T` from `typename T`.
type TemplateParamKind int

const (
	ParamClass TemplateParamKind = iota
	ParamTypename
)

func (k TemplateParamKind) String() string {
	if k == ParamTypename {
		return "typename"
	}
	return "class"
}

// CaptureDefault of a lambda introducer.
type CaptureDefault int

const (
	CaptureUnspecified CaptureDefault = iota
	CaptureByCopy
	CaptureByReference
)

func (c CaptureDefault) String() string {
	switch c {
	case CaptureByCopy:
		return "by_copy"
	case CaptureByReference:
		return "by_reference"
	}
	return "unspecified"
}
