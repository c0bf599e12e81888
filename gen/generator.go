package gen

// This file implements C9, the generator-as-state-machine lowering of
// §4.8: a dispatch prologue that resumes at the right point for each
// call, yield points that spill live locals to runtime-owned slots
// and return control to the caller, and completion via a runtime call
// when the body falls off the end. Grounded on the original Nova
// compiler's yieldStateCounter_/yieldResumeBlocks_ fields and its
// nova_generator_get_state/set_state/store_local/load_local/complete
// runtime entry points (original_source/HIRGen_Functions.cpp).

import (
	"github.com/nova-lang/novac/ast"
	"github.com/nova-lang/novac/hir"
)

// generatorState tracks the per-function bookkeeping needed to lower
// a generator body into a resumable state machine.
type generatorState struct {
	genParam *hir.Parameter // leading "__gen" handle, opaque to this compiler

	dispatch *hir.BasicBlock // the function's entry block, reserved for the dispatch chain

	resumes []*hir.BasicBlock // resumes[0] is the fresh-start/body block; resumes[i] (i>=1) is the block for state i

	// lastCheck is the most recently emitted dispatch comparison; its
	// Else arm is rewritten in place each time a new resume state is
	// added, turning the dispatch block into a growing if/else-if
	// chain without having to re-emit earlier arms (§4.8). Nil until
	// the first yield is seen — a generator with no yields never gets
	// a dispatch chain at all (§8 boundary case).
	lastCheck *hir.CondBr

	slotNames []string
	slotTypes []hir.Type
}

func (gs *generatorState) addSlot(name string, typ hir.Type) int {
	gs.slotNames = append(gs.slotNames, name)
	gs.slotTypes = append(gs.slotTypes, typ)
	return len(gs.slotNames) - 1
}

// runtime externs used by generator lowering (§6): declared on demand
// against the module, named after the original compiler's own helper
// names so a downstream MIR/codegen stage can recognize them.
func (g *HIRGen) externGetState(gen hir.Value) hir.Value {
	fn := g.Module.Extern("generator_get_state", []hir.Type{hir.NewPointer(hir.TyAny)}, hir.TyI64)
	return g.b().Call(fn, []hir.Value{gen}, hir.TyI64)
}

func (g *HIRGen) externSetState(gen hir.Value, state int64) {
	fn := g.Module.Extern("generator_set_state", []hir.Type{hir.NewPointer(hir.TyAny), hir.TyI64}, hir.TyVoid)
	g.b().Call(fn, []hir.Value{gen, hir.IntConst(state)}, hir.TyVoid)
}

func (g *HIRGen) externStoreLocal(gen hir.Value, slot int, val hir.Value) {
	fn := g.Module.Extern("generator_store_local", []hir.Type{hir.NewPointer(hir.TyAny), hir.TyI64, hir.TyAny}, hir.TyVoid)
	g.b().Call(fn, []hir.Value{gen, hir.IntConst(int64(slot)), g.b().Cast(val, hir.TyAny)}, hir.TyVoid)
}

func (g *HIRGen) externLoadLocal(gen hir.Value, slot int, typ hir.Type) hir.Value {
	fn := g.Module.Extern("generator_load_local", []hir.Type{hir.NewPointer(hir.TyAny), hir.TyI64}, hir.TyAny)
	boxed := g.b().Call(fn, []hir.Value{gen, hir.IntConst(int64(slot))}, hir.TyAny)
	return g.b().Cast(boxed, typ)
}

func (g *HIRGen) externYield(gen, val hir.Value) {
	fn := g.Module.Extern("generator_yield", []hir.Type{hir.NewPointer(hir.TyAny), hir.TyAny}, hir.TyVoid)
	g.b().Call(fn, []hir.Value{gen, g.b().Cast(val, hir.TyAny)}, hir.TyVoid)
}

func (g *HIRGen) externComplete(gen, val hir.Value) {
	fn := g.Module.Extern("generator_complete", []hir.Type{hir.NewPointer(hir.TyAny), hir.TyAny}, hir.TyVoid)
	g.b().Call(fn, []hir.Value{gen, g.b().Cast(val, hir.TyAny)}, hir.TyVoid)
}

func (g *HIRGen) storeGenSlot(slot int, typ hir.Type, val hir.Value) {
	g.externStoreLocal(g.top().gen.genParam, slot, val)
}

func (g *HIRGen) loadGenSlot(slot int, typ hir.Type) hir.Value {
	return g.externLoadLocal(g.top().gen.genParam, slot, typ)
}

// genGeneratorPrologue installs the leading __gen parameter and
// reserves the function's entry block for the dispatch chain, left
// empty until the first yield is discovered during body generation
// (§8 boundary case: a generator with no yields gets no dispatch
// checks at all). Returns the block the caller should continue body
// generation in; finalizeGeneratorDispatch must be called once the
// body is fully generated to close out the entry block.
func (g *HIRGen) genGeneratorPrologue(fn *hir.Function) (*generatorState, *hir.BasicBlock) {
	genParam := fn.AddParam("__gen", hir.NewPointer(hir.TyAny))
	fr := g.top()
	gs := &generatorState{genParam: genParam}
	fr.gen = gs

	dispatch := fn.NewBlock("dispatch")
	resume0 := fn.NewBlock("resume.0")
	gs.dispatch = dispatch
	gs.resumes = append(gs.resumes, resume0)

	fr.builder.SetInsertPoint(resume0)
	return gs, resume0
}

// finalizeGeneratorDispatch closes out gs's reserved entry block once
// the whole body has been generated and every yield point is known.
// A generator with no yields gets a direct, unconditional branch into
// the body (§8: "dispatch has no equality checks, direct branch to
// body"); one with k>=1 yields already has its if/else-if chain built
// incrementally by extendDispatch, whose final check's Else arm was
// left pointing at resume0 (fresh start) from the start, so there is
// nothing left to rewrite.
func (g *HIRGen) finalizeGeneratorDispatch(gs *generatorState) {
	if gs.lastCheck != nil {
		return
	}
	tmp := hir.NewBuilder(g.top().fn)
	tmp.SetInsertPoint(gs.dispatch)
	tmp.Jump(gs.resumes[0])
}

// lastCondBr returns the CondBr terminating b (extendDispatch calls
// it right after emitting one there).
func lastCondBr(b *hir.BasicBlock) *hir.CondBr {
	return b.Instrs[len(b.Instrs)-1].(*hir.CondBr)
}

// genYield lowers `yield Arg` / `yield* Arg` (§4.8): hand the value to
// the runtime, record the next resume state, suspend by returning,
// and resume reading back the value passed into the next `.next()`
// call.
func (g *HIRGen) genYield(y *ast.YieldExpr) hir.Value {
	fr := g.top()
	gs := fr.gen
	b := fr.builder

	var val hir.Value = hir.NullConst(hir.TyAny)
	if y.Arg != nil {
		val = g.genExpr(y.Arg)
	}
	// yield* delegates to an inner iterable; modeled as a single yield
	// of the whole iterable value. Unrolling the delegate's own
	// iteration protocol is left to a later pipeline stage.
	g.externYield(gs.genParam, val)

	state := int64(len(gs.resumes))
	resume := fr.fn.NewBlock("resume")
	gs.resumes = append(gs.resumes, resume)
	g.extendDispatch(gs, state, resume)

	g.externSetState(gs.genParam, state)
	b.Ret(nil) // suspend: control returns to the caller until the next call
	b.SetInsertPoint(resume)

	fn := g.Module.Extern("generator_resume_value", []hir.Type{hir.NewPointer(hir.TyAny)}, hir.TyAny)
	return b.Call(fn, []hir.Value{gs.genParam}, hir.TyAny)
}

// extendDispatch appends one more `state == n -> resume` arm to gs's
// dispatch chain (§8 invariant 3: exactly k checks against 1…k for a
// k-yield generator). The first check lands directly in the reserved
// entry/dispatch block; every later one gets its own block, chained
// off the previous check's else arm. Each check's else arm
// provisionally targets resume0 (fresh start) and is rewritten to the
// next check's block if another yield follows — so the chain is
// always correct even if this turns out to be the last yield.
// Note: rewriting gs.lastCheck.Else in place keeps the instruction
// stream correct but leaves the old target's Preds/Succs convenience
// index stale (it still lists the placeholder edge); control transfer
// is authoritative from Instrs, so this does not affect lowering
// correctness, only the CFG index a debug dump might show.
func (g *HIRGen) extendDispatch(gs *generatorState, state int64, resume *hir.BasicBlock) {
	fr := g.top()
	tmp := hir.NewBuilder(fr.fn)

	var check *hir.BasicBlock
	if gs.lastCheck == nil {
		check = gs.dispatch
	} else {
		check = fr.fn.NewBlock("dispatch.chain")
		gs.lastCheck.Else = check
	}

	tmp.SetInsertPoint(check)
	cond := tmp.Eq(g.externGetState(gs.genParam), hir.IntConst(state))
	tmp.If(cond, resume, gs.resumes[0])
	gs.lastCheck = lastCondBr(check)
}

// genCompletionReturn lowers a generator's implicit or explicit
// fall-off-the-end return (§4.8): tell the runtime the generator is
// done, carrying the final return value.
func (g *HIRGen) genCompletionReturn(val hir.Value) {
	gs := g.top().gen
	if val == nil {
		val = hir.NullConst(hir.TyAny)
	}
	g.externComplete(gs.genParam, val)
	g.top().builder.Ret(nil)
}
