package gen

import (
	"github.com/nova-lang/novac/hir"
	"github.com/nova-lang/novac/internal/diag"
)

// This file implements C4 (symbol resolution) and the free-variable
// half of C7's closure-capture algorithm (§3.6, §4.6): a stack of
// function frames, each holding its own nested block scopes, grounded
// on ssa/func.go's Function.objects map and its recursive lookup()
// that threads a capture through every enclosing function between the
// definition site and the reference.

// bindKind distinguishes how a name's storage is represented.
type bindKind int

const (
	bindAlloca  bindKind = iota // address-of-local; read via Load, write via Store
	bindCapture                 // by-value snapshot read from this frame's __env (§3.6)
	bindGenSlot                 // a generator-spilled local (§4.8): no native address survives a resume
)

type varBinding struct {
	kind bindKind
	typ  hir.Type

	addr  hir.Value // bindAlloca
	value hir.Value // bindCapture
	slot  int        // bindGenSlot
}

// frame is the per-function generation state (§3.6): its own Builder
// (so an enclosing frame's insertion point can be resumed to emit a
// capturing GetField, §4.6), its nested block scopes, and (for
// closures) the growing captured-variable set that becomes the
// function's __env parameter once the body is finished.
type frame struct {
	fn      *hir.Function
	builder *hir.Builder
	scopes  []map[string]*varBinding

	isGenerator bool
	gen         *generatorState // nil for non-generator frames

	// envParam is the speculative trailing parameter added before body
	// generation (§4.6); nil for the outermost frame (module-level
	// functions capture nothing, since there is no enclosing function).
	envParam *hir.Parameter

	captured    []string
	capturedSet map[string]bool
	snapshot    []hir.Value

	// thisVal/thisClassName back `this` resolution inside methods
	// (§4.7); thisVal is nil outside a class method (an arrow or plain
	// function forwards the lexically enclosing frame's thisVal, per
	// resolveThis's upward walk).
	thisVal       hir.Value
	thisClassName string
}

func newFrame(fn *hir.Function, isGenerator bool) *frame {
	return &frame{
		fn:          fn,
		builder:     hir.NewBuilder(fn),
		scopes:      []map[string]*varBinding{make(map[string]*varBinding)},
		isGenerator: isGenerator,
		capturedSet: make(map[string]bool),
	}
}

func (f *frame) pushScope() { f.scopes = append(f.scopes, make(map[string]*varBinding)) }
func (f *frame) popScope()  { f.scopes = f.scopes[:len(f.scopes)-1] }

func (f *frame) find(name string) (*varBinding, bool) {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if b, ok := f.scopes[i][name]; ok {
			return b, true
		}
	}
	return nil, false
}

func (f *frame) bind(name string, b *varBinding) {
	f.scopes[len(f.scopes)-1][name] = b
}

// pushFrame enters a new function/closure/method body (§4.6). The
// caller is responsible for adding parameters to fn after the push
// and, for a nested function, the speculative trailing __env
// parameter (setting the frame's envParam).
func (g *HIRGen) pushFrame(fn *hir.Function, isGenerator bool) *frame {
	fr := newFrame(fn, isGenerator)
	g.frames = append(g.frames, fr)
	return fr
}

func (g *HIRGen) popFrame() *frame {
	fr := g.top()
	g.frames = g.frames[:len(g.frames)-1]
	return fr
}

// declare introduces name in the current (innermost) scope of the
// current frame, initializing it to init (NullConst(typ) if nil).
// Generator frames spill to runtime slots instead of a native Alloca
// (§4.8: a generator body returns between resumes, so no native stack
// slot survives across a yield).
func (g *HIRGen) declare(name string, typ hir.Type, init hir.Value) *varBinding {
	fr := g.top()
	if fr.isGenerator {
		slot := fr.gen.addSlot(name, typ)
		if init == nil {
			init = hir.NullConst(typ)
		}
		g.storeGenSlot(slot, typ, init)
		b := &varBinding{kind: bindGenSlot, typ: typ, slot: slot}
		fr.bind(name, b)
		return b
	}
	addr := fr.builder.Alloca(typ, name)
	if init == nil {
		init = hir.NullConst(typ)
	}
	fr.builder.Store(addr, init)
	b := &varBinding{kind: bindAlloca, typ: typ, addr: addr}
	fr.bind(name, b)
	return b
}

// bindParamAlloca binds parameter p as an addressable local: it
// allocates a stack slot named name, stores p into it, and records
// the slot as the binding — used for simple identifier and rest
// parameters without a default (§4.7).
func (g *HIRGen) bindParamAlloca(name string, p *hir.Parameter) *varBinding {
	fr := g.top()
	addr := fr.builder.Alloca(p.Type(), name)
	fr.builder.Store(addr, p)
	b := &varBinding{kind: bindAlloca, typ: p.Type(), addr: addr}
	fr.bind(name, b)
	return b
}

// loadBinding reads the current value of binding b in frame fr.
func (g *HIRGen) loadBinding(fr *frame, b *varBinding) hir.Value {
	switch b.kind {
	case bindAlloca:
		return fr.builder.Load(b.addr)
	case bindCapture:
		return b.value
	case bindGenSlot:
		return g.loadGenSlot(b.slot, b.typ)
	default:
		diag.Internalf("unknown binding kind %d", b.kind)
		return nil
	}
}

// storeBinding writes val through binding b in frame fr. Captured bindings
// are value snapshots (§3.6) and cannot be written back to their
// defining scope; writing one is a semantic error; generator slots
// and plain locals are both addressable/spillable storage.
func (g *HIRGen) storeBinding(fr *frame, b *varBinding, val hir.Value) {
	switch b.kind {
	case bindAlloca:
		fr.builder.Store(b.addr, val)
	case bindGenSlot:
		g.storeGenSlot(b.slot, b.typ, val)
	case bindCapture:
		g.Diags.Semanticf(0, "cannot assign to %q: captured by value from an enclosing function", "<captured>")
	}
}

// lookup resolves name against the current frame's scopes, then (on
// miss) walks enclosing frames, threading a by-value capture through
// every frame strictly between the definition site and the reference
// (§3.6, §4.6). Undefined identifiers are reported as a diagnostic and
// resolve to the zero sentinel (§4.10, §9).
func (g *HIRGen) lookup(name string) hir.Value {
	top := len(g.frames) - 1
	if b, ok := g.frames[top].find(name); ok {
		return g.loadBinding(g.frames[top], b)
	}
	val, typ, ok := g.captureFrom(top - 1, name)
	if !ok {
		g.Diags.Semanticf(0, "undefined identifier %q", name)
		return hir.NullConst(hir.TyAny)
	}
	return g.thread(top-1, top, name, val, typ)
}

// captureFrom searches frames[idx] downward to frame 0 for name,
// returning the value as seen at its point of definition.
func (g *HIRGen) captureFrom(idx int, name string) (hir.Value, hir.Type, bool) {
	if idx < 0 {
		return nil, nil, false
	}
	fr := g.frames[idx]
	if b, ok := fr.find(name); ok {
		return g.loadBinding(fr, b), b.typ, true
	}
	return g.captureFrom(idx-1, name)
}

// thread installs (or reuses) a capture of name, with definition-site
// value val/typ, in every frame from defIdx+1 through useIdx
// inclusive, returning the value as seen in frame useIdx.
func (g *HIRGen) thread(defIdx, useIdx int, name string, val hir.Value, typ hir.Type) hir.Value {
	cur := val
	for i := defIdx + 1; i <= useIdx; i++ {
		fr := g.frames[i]
		if b, ok := fr.find(name); ok {
			cur = g.loadBinding(fr, b)
			continue
		}
		idx := len(fr.captured)
		fr.capturedSet[name] = true
		fr.captured = append(fr.captured, name)
		fr.snapshot = append(fr.snapshot, cur)
		// Emit the capturing read in fr's own insertion point (§4.6):
		// GetField(envParam, idx) against the not-yet-finalized env
		// struct; finalizeClosure installs the real field types once
		// the capture set is complete, so the index assigned here
		// (order of first reference) remains valid.
		got := fr.builder.GetField(fr.envParam, idx, name, typ)
		fr.bind(name, &varBinding{kind: bindCapture, typ: typ, value: got})
		cur = got
	}
	return cur
}

// loopCtx backs break/continue targeting (§4.4): the blocks to jump
// to for an unlabeled break/continue, and (for switch) whether
// continue is meaningless there.
type loopCtx struct {
	label        string
	breakBlock   *hir.BasicBlock
	continueBlock *hir.BasicBlock // nil inside a switch (no continue target)
}

func (g *HIRGen) pushLoop(label string, brk, cont *hir.BasicBlock) *loopCtx {
	lc := &loopCtx{label: label, breakBlock: brk, continueBlock: cont}
	g.loops = append(g.loops, lc)
	if label != "" {
		g.labels[label] = lc
	}
	return lc
}

func (g *HIRGen) popLoop() {
	lc := g.loops[len(g.loops)-1]
	g.loops = g.loops[:len(g.loops)-1]
	if lc.label != "" {
		delete(g.labels, lc.label)
	}
}
