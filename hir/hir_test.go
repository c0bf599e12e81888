package hir

import "testing"

func TestTypesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same primitive", TyI64, TyI64, true},
		{"different primitive", TyI64, TyF64, false},
		{"equal pointers", NewPointer(TyI64), NewPointer(TyI64), true},
		{"pointer vs pointee", NewPointer(TyI64), TyI64, false},
		{"equal arrays", &Array{Elem: TyI64, Length: 3}, &Array{Elem: TyI64, Length: 3}, true},
		{"different length", &Array{Elem: TyI64, Length: 3}, &Array{Elem: TyI64, Length: 4}, false},
		{"distinct structs", &Struct{Name: "A"}, &Struct{Name: "A"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypesEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("TypesEqual(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestStructFieldIndexIsStable(t *testing.T) {
	st := &Struct{Name: "Point"}
	x := st.AddField("x", TyI64, true)
	y := st.AddField("y", TyI64, true)
	if x != 0 || y != 1 {
		t.Fatalf("got indices %d,%d, want 0,1", x, y)
	}
	// Re-adding an existing field is a no-op returning the same index.
	if got := st.AddField("x", TyI64, true); got != 0 {
		t.Fatalf("AddField on existing field = %d, want 0", got)
	}
	if len(st.Fields) != 2 {
		t.Fatalf("field count = %d, want 2", len(st.Fields))
	}
}

// buildEmptyFunc constructs a function whose sole block ends in a
// plain `return void`, exercising the builder's insert-point protocol
// (§4.1) and the §8 boundary case "empty function body -> one entry
// block ending in return void".
func buildEmptyFunc(name string) *Function {
	fn := &Function{Name_: name, ReturnType: TyVoid}
	entry := fn.newBasicBlock("entry")
	b := NewBuilder(fn)
	b.SetInsertPoint(entry)
	b.Ret(nil)
	return fn
}

func TestEmptyFunctionHasSingleTerminatedBlock(t *testing.T) {
	fn := buildEmptyFunc("empty")
	if len(fn.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(fn.Blocks))
	}
	if errs := CheckFunction(fn); len(errs) != 0 {
		t.Fatalf("unexpected sanity errors: %v", errs)
	}
	ret, ok := fn.Blocks[0].Instrs[0].(*Return)
	if !ok || ret.Val != nil {
		t.Fatalf("expected `return void`, got %#v", fn.Blocks[0].Instrs[0])
	}
}

func TestSanityCatchesMissingTerminator(t *testing.T) {
	fn := &Function{Name_: "broken", ReturnType: TyVoid}
	entry := fn.newBasicBlock("entry")
	b := NewBuilder(fn)
	b.SetInsertPoint(entry)
	b.Alloca(TyI64, "x")
	// No terminator emitted: exercises the invariant-1 check directly.
	errs := CheckFunction(fn)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
}

func TestArithResultTypeStringException(t *testing.T) {
	fn := &Function{Name_: "f", ReturnType: TyVoid}
	entry := fn.newBasicBlock("entry")
	b := NewBuilder(fn)
	b.SetInsertPoint(entry)
	sum := b.Add(StringConst("a"), IntConst(1))
	if !IsStringType(sum.Type()) {
		t.Fatalf("Add(string, int) type = %s, want string (§4.3 `+` exception)", sum.Type())
	}
}

func TestCastIsNoopWhenTypesAlreadyEqual(t *testing.T) {
	fn := &Function{Name_: "f", ReturnType: TyVoid}
	entry := fn.newBasicBlock("entry")
	b := NewBuilder(fn)
	b.SetInsertPoint(entry)
	x := IntConst(1)
	if got := b.Cast(x, TyI64); got != Value(x) {
		t.Fatalf("Cast to identical type should return the same value, got %#v", got)
	}
}
