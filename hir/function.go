package hir

// This file defines Function (§3.5), grounded on ssa.Function
// (ssa/func.go), generalized for this language's closures (§4.6),
// generators (§4.8), and methods (§4.7).

// Linkage distinguishes functions with a body from external
// declarations referenced only by name (§3.4/§6).
type Linkage int

const (
	LinkageLocal Linkage = iota
	LinkageExternal
)

// Function owns its parameters and basic blocks (§3.5).
type Function struct {
	Name_       string
	Params      []*Parameter
	ReturnType  Type
	Blocks      []*BasicBlock
	IsAsync     bool
	IsGenerator bool
	Linkage     Linkage

	// currentBlock is not set by anything in this package; the insert
	// point during generation is held by Builder (§4.1).
	currentBlock *BasicBlock
}

func (f *Function) Name() string { return f.Name_ }

// Type returns f's signature as a *FuncType (param types + return
// type).
func (f *Function) Type() *FuncType {
	params := make([]Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type()
	}
	return &FuncType{Params: params, Return: f.ReturnType}
}

// newBasicBlock adds a new block to f and returns it; it does not
// become the current insertion block (callers use Builder.SetInsertPoint).
func (f *Function) newBasicBlock(comment string) *BasicBlock {
	b := &BasicBlock{Index: len(f.Blocks), Comment: comment, parent: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewBlock is the exported form of newBasicBlock, used by package gen
// (a separate package from hir, unlike the teacher's single-package
// ssa+builder split) to open new blocks while lowering control flow.
func (f *Function) NewBlock(comment string) *BasicBlock { return f.newBasicBlock(comment) }

// addParam appends a parameter and returns it.
func (f *Function) addParam(name string, typ Type) *Parameter {
	p := &Parameter{Nm: name, Typ: typ, Parent: f, Index: len(f.Params)}
	f.Params = append(f.Params, p)
	return p
}

// AddParam is the exported form of addParam, used by package gen when
// lowering a function's declared parameters and the speculative
// closure/generator leading parameters of §4.6/§4.8.
func (f *Function) AddParam(name string, typ Type) *Parameter { return f.addParam(name, typ) }

// RemoveLastParam is the exported form of removeLastParam.
func (f *Function) RemoveLastParam() { f.removeLastParam() }

// removeLastParam drops the trailing parameter (used to remove a
// speculative, ultimately-unused `__env` parameter, §4.6).
func (f *Function) removeLastParam() {
	f.Params = f.Params[:len(f.Params)-1]
}
