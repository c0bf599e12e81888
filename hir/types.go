// Package hir defines the high-level intermediate representation (§2
// C1/C2/C3): the type system, the value and instruction model, basic
// blocks, functions, and the module registry that owns them. It is
// the typed, SSA-friendly target that package gen lowers an ast.Node
// tree into.
//
// The split across files mirrors the teacher's own ssa package:
// types.go is the type system, value.go/instr.go the value and
// instruction model, block.go/function.go the CFG container types,
// module.go the top-level registry, and builder.go the instruction
// constructors (§4.1).
package hir

import "fmt"

// PrimKind enumerates the primitive type kinds of §3.1.
type PrimKind int

const (
	I8 PrimKind = iota
	I32
	I64
	F64
	Bool
	Void
	String
	Any
	Unknown
	Never
)

func (k PrimKind) String() string {
	switch k {
	case I8:
		return "i8"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F64:
		return "f64"
	case Bool:
		return "bool"
	case Void:
		return "void"
	case String:
		return "string"
	case Any:
		return "any"
	case Unknown:
		return "unknown"
	case Never:
		return "never"
	default:
		return "?"
	}
}

// Type is the tagged variant of §3.1. Equality is structural for
// Primitive, Pointer, Array and Function; Struct equality is by
// identity (two distinct *Struct with the same name are distinct
// types), matching the "by name" rule in §3.1.
type Type interface {
	String() string
	isType()
}

// Primitive is one of the fixed primitive kinds.
type Primitive struct{ Kind PrimKind }

func (t *Primitive) String() string { return t.Kind.String() }
func (*Primitive) isType()          {}

// Shared primitive instances; types are compared by value for
// Primitive so these are conveniences, not a uniqueness guarantee.
var (
	TyI8      = &Primitive{I8}
	TyI32     = &Primitive{I32}
	TyI64     = &Primitive{I64}
	TyF64     = &Primitive{F64}
	TyBool    = &Primitive{Bool}
	TyVoid    = &Primitive{Void}
	TyString  = &Primitive{String}
	TyAny     = &Primitive{Any}
	TyUnknown = &Primitive{Unknown}
	TyNever   = &Primitive{Never}
)

// Pointer is a typed pointer; a value of struct type and a value of
// pointer-to-struct type are distinguishable (§3.1 invariant) because
// they are represented by distinct *Pointer/*Struct Type values.
type Pointer struct {
	Pointee Type
	Mutable bool
}

func (t *Pointer) String() string {
	m := ""
	if !t.Mutable {
		m = "const "
	}
	return fmt.Sprintf("*%s%s", m, t.Pointee)
}
func (*Pointer) isType() {}

// NewPointer returns a mutable pointer-to-pointee type.
func NewPointer(pointee Type) *Pointer { return &Pointer{Pointee: pointee, Mutable: true} }

// Array is a fixed- or dynamic-length array; Length == 0 means
// dynamic (§3.1).
type Array struct {
	Elem   Type
	Length int
}

func (t *Array) String() string {
	if t.Length == 0 {
		return fmt.Sprintf("[]%s", t.Elem)
	}
	return fmt.Sprintf("[%d]%s", t.Length, t.Elem)
}
func (*Array) isType() {}

// Field is one ordered, named entry of a Struct. Index is implied by
// position in Struct.Fields and is the struct's stable ABI field
// index (§3.1 invariant).
type Field struct {
	Name     string
	Type     Type
	IsPublic bool
}

// Struct is a named, ordered aggregate type. Equality is by identity:
// two *Struct values are the same type iff they are the same pointer.
type Struct struct {
	Name   string
	Fields []Field
}

func (t *Struct) String() string { return "struct " + t.Name }
func (*Struct) isType()          {}

// FieldIndex returns the index of the named field, and false if no
// such field exists.
func (t *Struct) FieldIndex(name string) (int, bool) {
	for i, f := range t.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

// AddField appends a new field and returns its index. It is a no-op
// (returning the existing index) if the field already exists, so
// class struct-synthesis (§4.7 step 3) can call it unconditionally.
func (t *Struct) AddField(name string, typ Type, public bool) int {
	if i, ok := t.FieldIndex(name); ok {
		return i
	}
	t.Fields = append(t.Fields, Field{Name: name, Type: typ, IsPublic: public})
	return len(t.Fields) - 1
}

// FuncType is a function type (signature): §3.1's "Function" type
// variant. Named FuncType, not Function, to avoid colliding with
// hir.Function, the function *definition* (§3.5).
type FuncType struct {
	Params []Type
	Return Type
}

func (t *FuncType) String() string {
	s := "func("
	for i, p := range t.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + ") " + t.Return.String()
}
func (*FuncType) isType() {}

// TypesEqual reports whether a and b describe the same type. Structs
// compare by identity; every other variant compares structurally.
func TypesEqual(a, b Type) bool {
	if a == b {
		return true
	}
	switch at := a.(type) {
	case *Primitive:
		bt, ok := b.(*Primitive)
		return ok && at.Kind == bt.Kind
	case *Pointer:
		bt, ok := b.(*Pointer)
		return ok && at.Mutable == bt.Mutable && TypesEqual(at.Pointee, bt.Pointee)
	case *Array:
		bt, ok := b.(*Array)
		return ok && at.Length == bt.Length && TypesEqual(at.Elem, bt.Elem)
	case *FuncType:
		bt, ok := b.(*FuncType)
		if !ok || len(at.Params) != len(bt.Params) || !TypesEqual(at.Return, bt.Return) {
			return false
		}
		for i := range at.Params {
			if !TypesEqual(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return true
	case *Struct:
		return false // struct identity only; a==b already checked
	default:
		return false
	}
}

// IsStringType reports whether t is (or underlies to) the string
// primitive; used by §4.3's `+` string-concatenation special case.
func IsStringType(t Type) bool {
	p, ok := t.(*Primitive)
	return ok && p.Kind == String
}

// IsBoolType reports whether t is the bool primitive.
func IsBoolType(t Type) bool {
	p, ok := t.(*Primitive)
	return ok && p.Kind == Bool
}
