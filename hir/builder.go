package hir

// This file implements the IR builder (§4.1 C2): the insert-point
// protocol and one constructor per opcode family, grounded on the
// teacher's ssa/emit.go helpers (emitArith, emitCompare, emitConv,
// emitLoad, emitJump, emitIf, ...), generalized from Go's type system
// to this language's primitive/pointer/array/struct/function types.

// Builder holds the single current insertion block (§4.1). Every
// instruction-constructing method appends to it and, for terminators,
// clears it — the caller must call SetInsertPoint before emitting
// further instructions in the function.
type Builder struct {
	Fn    *Function
	block *BasicBlock
}

// NewBuilder returns a builder over fn with no insertion point set.
func NewBuilder(fn *Function) *Builder { return &Builder{Fn: fn} }

// SetInsertPoint makes b the builder's current block.
func (bld *Builder) SetInsertPoint(b *BasicBlock) { bld.block = b }

// InsertBlock returns the builder's current block (nil after a
// terminator, until the caller sets a new one).
func (bld *Builder) InsertBlock() *BasicBlock { return bld.block }

func (bld *Builder) emit(i Instruction) Value { return bld.block.emit(i) }

// --- arithmetic / bitwise / comparison ---

// arithResultType computes the numeric result type of an eager binary
// op (§4.1(b)): f64 if either operand is f64, otherwise i64. Add
// applies the string exception on top of it (§4.3's `+` rule: a
// string operand makes the result a string); every other arithmetic
// opcode uses this numeric type as is.
func arithResultType(x, y Value) Type {
	if xp, ok := x.Type().(*Primitive); ok && xp.Kind == F64 {
		return TyF64
	}
	if yp, ok := y.Type().(*Primitive); ok && yp.Kind == F64 {
		return TyF64
	}
	return TyI64
}

func (bld *Builder) binOp(op Op, x, y Value, t Type) Value {
	v := &BinOp{Op: op, X: x, Y: y}
	v.typ = t
	return bld.emit(v)
}

func (bld *Builder) Add(x, y Value) Value {
	if IsStringType(x.Type()) || IsStringType(y.Type()) {
		return bld.binOp(OpIAdd, x, y, TyString)
	}
	return bld.binOp(OpIAdd, x, y, arithResultType(x, y))
}
func (bld *Builder) Sub(x, y Value) Value { return bld.binOp(OpISub, x, y, arithResultType(x, y)) }
func (bld *Builder) Mul(x, y Value) Value { return bld.binOp(OpIMul, x, y, arithResultType(x, y)) }
func (bld *Builder) Div(x, y Value) Value { return bld.binOp(OpIDiv, x, y, arithResultType(x, y)) }
func (bld *Builder) Rem(x, y Value) Value { return bld.binOp(OpIRem, x, y, arithResultType(x, y)) }
func (bld *Builder) Pow(x, y Value) Value { return bld.binOp(OpIPow, x, y, arithResultType(x, y)) }
func (bld *Builder) And(x, y Value) Value { return bld.binOp(OpIAnd, x, y, TyI64) }
func (bld *Builder) Or(x, y Value) Value  { return bld.binOp(OpIOr, x, y, TyI64) }
func (bld *Builder) Xor(x, y Value) Value { return bld.binOp(OpIXor, x, y, TyI64) }
func (bld *Builder) Shl(x, y Value) Value { return bld.binOp(OpIShl, x, y, TyI64) }
func (bld *Builder) Shr(x, y Value) Value { return bld.binOp(OpIShr, x, y, TyI64) }
func (bld *Builder) UShr(x, y Value) Value { return bld.binOp(OpIUShr, x, y, TyI64) }

func (bld *Builder) cmp(op Op, x, y Value) Value { return bld.binOp(op, x, y, TyBool) }

func (bld *Builder) Eq(x, y Value) Value { return bld.cmp(OpIEq, x, y) }
func (bld *Builder) Ne(x, y Value) Value { return bld.cmp(OpINe, x, y) }
func (bld *Builder) Lt(x, y Value) Value { return bld.cmp(OpILt, x, y) }
func (bld *Builder) Le(x, y Value) Value { return bld.cmp(OpILe, x, y) }
func (bld *Builder) Gt(x, y Value) Value { return bld.cmp(OpIGt, x, y) }
func (bld *Builder) Ge(x, y Value) Value { return bld.cmp(OpIGe, x, y) }

// Not computes the logical negation of x (bool).
func (bld *Builder) Not(x Value) Value {
	v := &UnOp{Op: OpNot, X: x}
	v.typ = TyBool
	return bld.emit(v)
}

// Neg computes the arithmetic negation of x.
func (bld *Builder) Neg(x Value) Value {
	v := &UnOp{Op: OpNeg, X: x}
	v.typ = x.Type()
	return bld.emit(v)
}

// --- memory ---

// Alloca reserves a stack slot of type elem, returning a pointer to
// it (used for locals, and for the short-circuit/compound-assign
// result slots of §4.3/§4.4).
func (bld *Builder) Alloca(elem Type, name string) Value {
	v := &Alloca{Elem: elem}
	v.typ = NewPointer(elem)
	v.name = name
	return bld.emit(v)
}

// Load reads the value stored at addr.
func (bld *Builder) Load(addr Value) Value {
	v := &Load{Addr: addr}
	if p, ok := addr.Type().(*Pointer); ok {
		v.typ = p.Pointee
	} else {
		v.typ = TyAny
	}
	return bld.emit(v)
}

// Store writes val to addr.
func (bld *Builder) Store(addr, val Value) {
	bld.emit(&Store{Addr: addr, Val: val})
}

// --- aggregate ---

// GetField reads field index/name of x.
func (bld *Builder) GetField(x Value, index int, field string, resultType Type) Value {
	v := &GetField{X: x, Index: index, Field: field}
	v.typ = resultType
	return bld.emit(v)
}

// SetField writes val to field index/name of x.
func (bld *Builder) SetField(x Value, index int, field string, val Value) {
	bld.emit(&SetField{X: x, Index: index, Field: field, Val: val})
}

// GetElement reads element index of array/pointer x.
func (bld *Builder) GetElement(x, index Value, resultType Type) Value {
	v := &GetElement{X: x, Index: index}
	v.typ = resultType
	return bld.emit(v)
}

// SetElement writes val to element index of array/pointer x.
func (bld *Builder) SetElement(x, index, val Value) {
	bld.emit(&SetElement{X: x, Index: index, Val: val})
}

// StructConstruct builds a new value of struct type st from fields,
// in field-index order.
func (bld *Builder) StructConstruct(st *Struct, fields []Value) Value {
	v := &StructConstruct{Fields: fields}
	v.typ = st
	return bld.emit(v)
}

// ArrayConstruct builds a new array value of type at from elems.
func (bld *Builder) ArrayConstruct(at *Array, elems []Value) Value {
	v := &ArrayConstruct{Elems: elems}
	v.typ = at
	return bld.emit(v)
}

// --- control flow ---

// Jump emits an unconditional branch to target and clears the
// insertion point (§4.1 postcondition).
func (bld *Builder) Jump(target *BasicBlock) {
	b := bld.block
	b.emit(&Br{Target: target})
	addEdge(b, target)
	bld.block = nil
}

// If emits a conditional branch to then/els and clears the insertion
// point (§4.1 postcondition).
func (bld *Builder) If(cond Value, then, els *BasicBlock) {
	b := bld.block
	b.emit(&CondBr{Cond: cond, Then: then, Else: els})
	addEdge(b, then)
	addEdge(b, els)
	bld.block = nil
}

// Ret emits a return (val may be nil for `return void`) and clears
// the insertion point.
func (bld *Builder) Ret(val Value) {
	bld.block.emit(&Return{Val: val})
	bld.block = nil
}

// Unreachable marks the current block as unreachable and clears the
// insertion point.
func (bld *Builder) Unreachable() {
	bld.block.emit(&Unreachable{})
	bld.block = nil
}

// --- function call / cast ---

// Call invokes callee with args, yielding its return value.
func (bld *Builder) Call(callee Value, args []Value, resultType Type) Value {
	v := &Call{Callee: callee, Args: args}
	v.typ = resultType
	return bld.emit(v)
}

// Cast converts x to typ (e.g. bool->i64 zero-extension, §4.3).
func (bld *Builder) Cast(x Value, typ Type) Value {
	if TypesEqual(x.Type(), typ) {
		return x
	}
	v := &Cast{X: x}
	v.typ = typ
	return bld.emit(v)
}

// ZExtBool promotes a bool value to i64 (0/1), the conversion §4.3
// requires before most arithmetic/bitwise/comparison opcodes consume
// a boolean operand.
func (bld *Builder) ZExtBool(x Value) Value {
	if IsBoolType(x.Type()) {
		return bld.Cast(x, TyI64)
	}
	return x
}
