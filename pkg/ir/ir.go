// Package ir describes the primitive scalar types of the target virtual machine
package ir

type Type int

const (
	TypeNone Type = iota
	TypeW         // word (32-bit integer)
	TypeL         // long (64-bit integer)
	TypeS         // single float (32-bit)
	TypeD         // double float (64-bit)
)

// Names of the primitive types as they appear in the syntax tree
const (
	I32 = "i32"
	I64 = "i64"
	F32 = "f32"
	F64 = "f64"
)

var typeNames = map[Type]string{
	TypeW: I32,
	TypeL: I64,
	TypeS: F32,
	TypeD: F64,
}

// Primitives lists the primitive types from narrowest to widest
var Primitives = []Type{TypeW, TypeL, TypeS, TypeD}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "none"
}

// GetType maps a type name onto a primitive type, TypeNone if it is not one
func GetType(name string) Type {
	switch name {
	case I32:
		return TypeW
	case I64:
		return TypeL
	case F32:
		return TypeS
	case F64:
		return TypeD
	}
	return TypeNone
}

func IsPrimitive(name string) bool { return GetType(name) != TypeNone }

func IsFloat(t Type) bool { return t == TypeS || t == TypeD }

func IsInteger(t Type) bool { return t == TypeW || t == TypeL }

func SizeOfType(t Type) int64 {
	switch t {
	case TypeW, TypeS:
		return 4
	case TypeL, TypeD:
		return 8
	default:
		return 0
	}
}

// Weight orders the primitive types for implicit widening: i32 < i64 < f32 < f64.
// Names that are not primitive types weigh -1 and never win a comparison.
func Weight(name string) int {
	switch GetType(name) {
	case TypeW:
		return 0
	case TypeL:
		return 1
	case TypeS:
		return 2
	case TypeD:
		return 3
	}
	return -1
}

// IsNarrowing reports whether converting from one type to another can lose range or precision
func IsNarrowing(from, to string) bool {
	if !IsPrimitive(from) || !IsPrimitive(to) {
		return false
	}
	return Weight(to) < Weight(from)
}
