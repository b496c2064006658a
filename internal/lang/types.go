package lang

import "strings"

// Kind discriminates the variants of Type.
type Kind uint8

// Type kinds; their display names double as the language syntax for them.
const (
	KindNull Kind = iota
	KindType
	KindString
	KindBoolean
	KindCharacter
	KindInteger
	KindProcedure
	KindReference
)

var kindNames = [...]string{
	KindNull:      "null_type",
	KindType:      "type",
	KindString:    "string",
	KindBoolean:   "bool",
	KindCharacter: "char",
	KindInteger:   "int",
	KindProcedure: "proc_type",
	KindReference: "ref",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid_kind"
}

// Type is a closed tagged union describing values. Types compare
// structurally; use Equal rather than ==, since procedure and reference types
// carry nested types.
type Type struct {
	Kind Kind

	// Args and Returns are only used by KindProcedure.
	Args    []Type
	Returns []Type

	// Elem is only used by KindReference.
	Elem *Type
}

// Scalar types.
var (
	NullType      = Type{Kind: KindNull}
	TypeType      = Type{Kind: KindType}
	StringType    = Type{Kind: KindString}
	BooleanType   = Type{Kind: KindBoolean}
	CharacterType = Type{Kind: KindCharacter}
	IntegerType   = Type{Kind: KindInteger}
)

// ProcType returns a procedure type; the given slices are retained.
func ProcType(args, returns []Type) Type {
	return Type{Kind: KindProcedure, Args: args, Returns: returns}
}

// RefType returns the type of a reference to an elem value.
func RefType(elem Type) Type {
	return Type{Kind: KindReference, Elem: &elem}
}

// Equal returns true if t and other are structurally identical.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindProcedure:
		return TypesEqual(t.Args, other.Args) && TypesEqual(t.Returns, other.Returns)
	case KindReference:
		return t.Elem.Equal(*other.Elem)
	}
	return true
}

// TypesEqual returns true if both type sequences are pairwise Equal.
func TypesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	var sb strings.Builder
	t.format(&sb)
	return sb.String()
}

func (t Type) format(sb *strings.Builder) {
	switch t.Kind {
	case KindProcedure:
		sb.WriteString("proc_type(")
		formatTypes(sb, t.Args)
		sb.WriteString(") -> (")
		formatTypes(sb, t.Returns)
		sb.WriteString(")")
	case KindReference:
		t.Elem.format(sb)
		sb.WriteString(" ref")
	default:
		sb.WriteString(t.Kind.String())
	}
}

func formatTypes(sb *strings.Builder, types []Type) {
	for i, typ := range types {
		if i > 0 {
			sb.WriteByte(' ')
		}
		typ.format(sb)
	}
}

// FormatTypes renders a type sequence bottom to top, space separated, like
// "[int string]".
func FormatTypes(types []Type) string {
	var sb strings.Builder
	sb.WriteByte('[')
	formatTypes(&sb, types)
	sb.WriteByte(']')
	return sb.String()
}

// CloneTypes returns an independent copy of a type stack.
func CloneTypes(types []Type) []Type {
	if types == nil {
		return nil
	}
	return append(make([]Type, 0, len(types)), types...)
}
