package hir

// This file implements human-readable disassembly, grounded on
// ssa.Function.DumpTo (ssa/func.go), used by internal/dump to render
// a compiled Module for -dump output.

import (
	"fmt"
	"io"
)

// DumpTo writes a disassembly of fn's basic blocks to w.
func (f *Function) DumpTo(w io.Writer) {
	fmt.Fprintf(w, "func %s(", f.Name_)
	for i, p := range f.Params {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%s %s", p.Name(), p.Type())
	}
	fmt.Fprintf(w, ") %s:\n", f.ReturnType)
	if f.Blocks == nil {
		fmt.Fprintln(w, "\t(external)")
		return
	}
	for _, b := range f.Blocks {
		fmt.Fprintf(w, ".%d.%s:\n", b.Index, b.Comment)
		for _, instr := range b.Instrs {
			fmt.Fprint(w, "\t")
			if v, ok := instr.(Value); ok && v.Name() != "" {
				fmt.Fprintf(w, "%s = ", v.Name())
			}
			fmt.Fprintln(w, instrString(instr))
		}
	}
}

func instrString(instr Instruction) string {
	switch v := instr.(type) {
	case *BinOp:
		return fmt.Sprintf("%s %s, %s", v.Op, v.X.Name(), v.Y.Name())
	case *UnOp:
		return fmt.Sprintf("%s %s", v.Op, v.X.Name())
	case *Alloca:
		return fmt.Sprintf("alloca %s", v.Elem)
	case *Load:
		return fmt.Sprintf("load %s", v.Addr.Name())
	case *Store:
		return fmt.Sprintf("store %s, %s", v.Val.Name(), v.Addr.Name())
	case *GetField:
		return fmt.Sprintf("get-field %s[%d:%s]", v.X.Name(), v.Index, v.Field)
	case *SetField:
		return fmt.Sprintf("set-field %s[%d:%s] = %s", v.X.Name(), v.Index, v.Field, v.Val.Name())
	case *GetElement:
		return fmt.Sprintf("get-element %s[%s]", v.X.Name(), v.Index.Name())
	case *SetElement:
		return fmt.Sprintf("set-element %s[%s] = %s", v.X.Name(), v.Index.Name(), v.Val.Name())
	case *StructConstruct:
		return fmt.Sprintf("struct-construct %s", v.typ)
	case *ArrayConstruct:
		return fmt.Sprintf("array-construct %s", v.typ)
	case *Call:
		return fmt.Sprintf("call %s(...)", v.Callee.Name())
	case *Cast:
		return fmt.Sprintf("cast %s to %s", v.X.Name(), v.typ)
	case *Br:
		return fmt.Sprintf("br .%d", v.Target.Index)
	case *CondBr:
		return fmt.Sprintf("cond-br %s, .%d, .%d", v.Cond.Name(), v.Then.Index, v.Else.Index)
	case *Return:
		if v.Val == nil {
			return "return"
		}
		return fmt.Sprintf("return %s", v.Val.Name())
	case *Unreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("%T", instr)
	}
}
