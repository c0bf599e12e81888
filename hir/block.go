package hir

// This file defines BasicBlock (§3.3/§3.5), grounded on
// ssa.BasicBlock (ssa/func.go).

// BasicBlock is a straight-line sequence of instructions ending in at
// most one terminator (§3.3 invariant). Blocks without a terminator
// receive an implicit return during function finalization (§3.3,
// §4.6).
type BasicBlock struct {
	Index   int
	Comment string
	Instrs  []Instruction
	Preds   []*BasicBlock
	Succs   []*BasicBlock
	parent  *Function
}

// Parent returns the function that owns b.
func (b *BasicBlock) Parent() *Function { return b.parent }

// HasTerminator reports whether b already ends in a terminator
// instruction.
func (b *BasicBlock) HasTerminator() bool {
	if len(b.Instrs) == 0 {
		return false
	}
	return b.Instrs[len(b.Instrs)-1].IsTerminator()
}

// emit appends instr to b, setting its owning block. If instr also
// defines a Value, that Value is returned so callers can chain it
// into further instructions (§4.1(c)/(d)).
func (b *BasicBlock) emit(instr Instruction) Value {
	instr.setBlock(b)
	b.Instrs = append(b.Instrs, instr)
	v, _ := instr.(Value)
	return v
}

func addEdge(from, to *BasicBlock) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
}
