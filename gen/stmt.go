package gen

// This file implements C6 (§4.4): statement and structured-control-flow
// lowering — blocks, declarations, if/switch, the loop family, labeled
// break/continue, return/throw, and try/catch/finally — grounded on the
// teacher's ssa/builder.go block-linking helpers generalized from Go's
// statement set to this language's (JS-shaped) one.

import (
	"github.com/nova-lang/novac/ast"
	"github.com/nova-lang/novac/hir"
	"github.com/nova-lang/novac/internal/diag"
)

// genBlock lowers a brace-delimited statement list in its own scope.
// It stops emitting once the current block has been terminated (by an
// explicit return/throw/break/continue), since anything textually
// after that point is unreachable and a BasicBlock accepts exactly one
// terminator (hir.CheckFunction).
func (g *HIRGen) genBlock(b *ast.BlockStmt) {
	g.top().pushScope()
	defer g.top().popScope()
	// Hoist generator-function names so a for-of loop can recognize a
	// call to one as a generator source even when it textually
	// precedes the declaration (mirrors function-declaration hoisting).
	for _, s := range b.Stmts {
		if fd, ok := s.(*ast.FunctionDecl); ok && fd.Fn.IsGenerator {
			g.generatorFuncs[fd.Fn.Name] = true
		}
	}
	for _, s := range b.Stmts {
		g.genStmt(s)
		if g.b().InsertBlock() == nil {
			return
		}
	}
}

func (g *HIRGen) genStmt(n ast.Node) {
	switch s := n.(type) {
	case *ast.BlockStmt:
		g.genBlock(s)
	case *ast.ExprStmt:
		g.genExpr(s.X)
	case *ast.VarDeclStmt:
		g.genVarDecl(s)
	case *ast.IfStmt:
		g.genIf(s)
	case *ast.SwitchStmt:
		g.genSwitch(s)
	case *ast.WhileStmt:
		g.genWhile(s)
	case *ast.DoWhileStmt:
		g.genDoWhile(s)
	case *ast.ForStmt:
		g.genFor(s)
	case *ast.ForInStmt:
		g.genForIn(s)
	case *ast.ForOfStmt:
		if s.Await {
			// `for await...of` over a source this pass cannot prove is an
			// async generator degrades to plain synchronous iteration
			// (§9 Open Question 4) rather than rejecting the program or
			// synthesizing a Promise-awaiting loop neither of which this
			// pipeline's scope supports; flagged so the gap is visible
			// per compilation instead of silent.
			g.Diags.Semanticf(0, "`for await...of` over a non-async-generator source degrades to synchronous iteration")
		}
		g.genForOf(s)
	case *ast.BreakStmt:
		g.genBreak(s)
	case *ast.ContinueStmt:
		g.genContinue(s)
	case *ast.ReturnStmt:
		g.genReturn(s)
	case *ast.ThrowStmt:
		g.genThrow(s)
	case *ast.TryStmt:
		g.genTry(s)
	case *ast.LabeledStmt:
		g.genLabeled(s)
	case *ast.FunctionDecl:
		if s.Fn.IsGenerator {
			g.generatorFuncs[s.Fn.Name] = true
		}
		fn := g.genFunctionDecl(s)
		g.declare(s.Fn.Name, hir.TyAny, g.closureValue(fn))
	case *ast.ClassDecl:
		g.genClassDecl(s)
		g.declare(s.Class.Name, hir.TyAny, g.closureValue(g.classes[s.Class.Name].ctor))
	case *ast.WithStmt:
		// `with` degrades to its body (ast/stmt.go): it carries no
		// scoping semantics this pipeline models.
		g.genStmt(s.Body)
	case *ast.EmptyStmt, *ast.DebuggerStmt:
		// no-op
	case *ast.UsingStmt:
		g.genDeclarator(s.Decl)
	default:
		diag.Abortf("unsupported statement %T", n)
	}
}

func (g *HIRGen) genVarDecl(vd *ast.VarDeclStmt) {
	for _, d := range vd.Decls {
		g.genDeclarator(d)
	}
}

func (g *HIRGen) genDeclarator(d ast.Declarator) {
	var init hir.Value
	if d.Init != nil {
		init = g.genExpr(d.Init)
	}
	switch pat := d.Pattern.(type) {
	case *ast.Ident:
		g.declare(pat.Name, hir.TyAny, init)
	case *ast.IdentPattern:
		g.declare(pat.Name, hir.TyAny, init)
	default:
		if init == nil {
			diag.Abortf("destructuring declaration requires an initializer")
			return
		}
		g.destructure(d.Pattern, init)
	}
}

func (g *HIRGen) genIf(s *ast.IfStmt) {
	fn := g.top().fn
	cond := g.truthy(g.genExpr(s.Cond))

	thenB := fn.NewBlock("if.then")
	mergeB := fn.NewBlock("if.merge")
	var elseB *hir.BasicBlock
	if s.Else != nil {
		elseB = fn.NewBlock("if.else")
		g.b().If(cond, thenB, elseB)
	} else {
		g.b().If(cond, thenB, mergeB)
	}

	g.b().SetInsertPoint(thenB)
	g.genStmt(s.Then)
	if g.b().InsertBlock() != nil {
		g.b().Jump(mergeB)
	}

	if s.Else != nil {
		g.b().SetInsertPoint(elseB)
		g.genStmt(s.Else)
		if g.b().InsertBlock() != nil {
			g.b().Jump(mergeB)
		}
	}

	g.b().SetInsertPoint(mergeB)
}

// genSwitch lowers `switch` as a chain of strict-equality comparisons
// against Tag followed by fallthrough-by-default case bodies (real JS
// switch semantics: control falls from one case body into the next
// unless a break/return/throw intervenes), with `default` reached only
// when no case test matched.
func (g *HIRGen) genSwitch(s *ast.SwitchStmt) {
	fn := g.top().fn
	b := g.b()
	tagVal := g.genExpr(s.Tag)
	endB := fn.NewBlock("switch.end")

	caseBlocks := make([]*hir.BasicBlock, len(s.Cases))
	for i := range s.Cases {
		caseBlocks[i] = fn.NewBlock("switch.case")
	}

	eqFn := g.Module.Extern("strict_equals", []hir.Type{hir.TyAny, hir.TyAny}, hir.TyBool)
	defaultIdx := -1
	cur := b.InsertBlock()
	for i, c := range s.Cases {
		if c.Test == nil {
			defaultIdx = i
			continue
		}
		b.SetInsertPoint(cur)
		cv := g.genExpr(c.Test)
		eq := b.Call(eqFn, []hir.Value{b.Cast(tagVal, hir.TyAny), b.Cast(cv, hir.TyAny)}, hir.TyBool)
		next := fn.NewBlock("switch.check")
		b.If(eq, caseBlocks[i], next)
		cur = next
	}
	b.SetInsertPoint(cur)
	if defaultIdx >= 0 {
		b.Jump(caseBlocks[defaultIdx])
	} else {
		b.Jump(endB)
	}

	g.pushLoop(s.Label, endB, nil) // a switch is a break target; continue passes through to an enclosing loop
	for i, c := range s.Cases {
		b.SetInsertPoint(caseBlocks[i])
		g.top().pushScope()
		for _, st := range c.Body {
			g.genStmt(st)
			if b.InsertBlock() == nil {
				break
			}
		}
		g.top().popScope()
		if b.InsertBlock() != nil {
			if i+1 < len(s.Cases) {
				b.Jump(caseBlocks[i+1])
			} else {
				b.Jump(endB)
			}
		}
	}
	g.popLoop()

	b.SetInsertPoint(endB)
}

func (g *HIRGen) genWhile(s *ast.WhileStmt) {
	fn := g.top().fn
	b := g.b()
	condB := fn.NewBlock("while.cond")
	bodyB := fn.NewBlock("while.body")
	endB := fn.NewBlock("while.end")

	b.Jump(condB)
	b.SetInsertPoint(condB)
	cond := g.truthy(g.genExpr(s.Cond))
	b.If(cond, bodyB, endB)

	b.SetInsertPoint(bodyB)
	g.pushLoop(s.Label, endB, condB)
	g.genStmt(s.Body)
	g.popLoop()
	if b.InsertBlock() != nil {
		b.Jump(condB)
	}

	b.SetInsertPoint(endB)
}

func (g *HIRGen) genDoWhile(s *ast.DoWhileStmt) {
	fn := g.top().fn
	b := g.b()
	bodyB := fn.NewBlock("dowhile.body")
	condB := fn.NewBlock("dowhile.cond")
	endB := fn.NewBlock("dowhile.end")

	b.Jump(bodyB)
	b.SetInsertPoint(bodyB)
	g.pushLoop(s.Label, endB, condB)
	g.genStmt(s.Body)
	g.popLoop()
	if b.InsertBlock() != nil {
		b.Jump(condB)
	}

	b.SetInsertPoint(condB)
	cond := g.truthy(g.genExpr(s.Cond))
	b.If(cond, bodyB, endB)

	b.SetInsertPoint(endB)
}

func (g *HIRGen) genFor(s *ast.ForStmt) {
	g.top().pushScope()
	defer g.top().popScope()

	if s.Init != nil {
		g.genStmt(s.Init)
	}

	fn := g.top().fn
	b := g.b()
	condB := fn.NewBlock("for.cond")
	bodyB := fn.NewBlock("for.body")
	updateB := fn.NewBlock("for.update")
	endB := fn.NewBlock("for.end")

	b.Jump(condB)
	b.SetInsertPoint(condB)
	if s.Cond != nil {
		cond := g.truthy(g.genExpr(s.Cond))
		b.If(cond, bodyB, endB)
	} else {
		b.Jump(bodyB)
	}

	b.SetInsertPoint(bodyB)
	g.pushLoop(s.Label, endB, updateB)
	g.genStmt(s.Body)
	g.popLoop()
	if b.InsertBlock() != nil {
		b.Jump(updateB)
	}

	b.SetInsertPoint(updateB)
	if s.Update != nil {
		g.genExpr(s.Update)
	}
	b.Jump(condB)

	b.SetInsertPoint(endB)
}

// genForIn lowers `for (decl in X)` (§4.5, §6): X's own keys are
// fetched once via `object_keys`, then walked with a plain
// index-driven loop over the returned string-key array.
func (g *HIRGen) genForIn(s *ast.ForInStmt) {
	src := g.genExpr(s.X)
	keysFn := g.Module.Extern("object_keys", []hir.Type{hir.TyAny}, hir.TyAny)
	keys := g.b().Call(keysFn, []hir.Value{g.b().Cast(src, hir.TyAny)}, hir.TyAny)
	g.genIndexedLoop(s.Label, keys, s.Decl, s.Body)
}

// genForOf lowers `for (decl of X)` (§4.5, §6, §8 scenario 5): a
// source that is a direct call to a known generator function drives
// the loop through `generator_next`/`iterator_result_done/value`;
// every other source is treated as a regular array and walked with a
// plain index-driven loop over its length, so the §8 boundary case
// (an empty array literal producing a statically-false `0 < 0`
// condition) is reachable again.
func (g *HIRGen) genForOf(s *ast.ForOfStmt) {
	if call, ok := s.X.(*ast.CallExpr); ok {
		if id, ok := call.Callee.(*ast.Ident); ok && g.generatorFuncs[id.Name] {
			gen := g.genExpr(call)
			g.genGeneratorForOf(s.Label, gen, s.Decl, s.Body)
			return
		}
	}
	arr := g.genExpr(s.X)
	g.genIndexedLoop(s.Label, arr, s.Decl, s.Body)
}

// genIndexedLoop walks a value_array-shaped collection (an array
// literal's value, or an `object_keys` result, which is itself a
// string-key array) from index 0 to its `value_array_length`,
// binding decl to `value_array_get(coll, i)` each iteration (§6).
func (g *HIRGen) genIndexedLoop(label string, coll hir.Value, decl, body ast.Node) {
	fn := g.top().fn
	b := g.b()

	lenFn := g.Module.Extern("value_array_length", []hir.Type{hir.TyAny}, hir.TyI64)
	length := b.Call(lenFn, []hir.Value{coll}, hir.TyI64)

	idx := b.Alloca(hir.TyI64, "i")
	b.Store(idx, hir.IntConst(0))

	condB := fn.NewBlock("iter.cond")
	bodyB := fn.NewBlock("iter.body")
	stepB := fn.NewBlock("iter.step")
	endB := fn.NewBlock("iter.end")

	b.Jump(condB)
	b.SetInsertPoint(condB)
	cond := b.Lt(b.Load(idx), length)
	b.If(cond, bodyB, endB)

	b.SetInsertPoint(bodyB)
	g.top().pushScope()
	getFn := g.Module.Extern("value_array_get", []hir.Type{hir.TyAny, hir.TyI64}, hir.TyAny)
	item := b.Call(getFn, []hir.Value{coll, b.Load(idx)}, hir.TyAny)
	g.bindLoopTarget(decl, item)
	g.pushLoop(label, endB, stepB)
	g.genStmt(body)
	g.popLoop()
	g.top().popScope()
	if b.InsertBlock() != nil {
		b.Jump(stepB)
	}

	b.SetInsertPoint(stepB)
	b.Store(idx, b.Add(b.Load(idx), hir.IntConst(1)))
	b.Jump(condB)

	b.SetInsertPoint(endB)
}

// genGeneratorForOf lowers `for (decl of g())` where g is a known
// generator function (§8 scenario 5): every iteration calls
// `generator_next(gen, 0)` and gates on `iterator_result_done`,
// binding decl from `iterator_result_value` — never array indexing.
func (g *HIRGen) genGeneratorForOf(label string, gen hir.Value, decl, body ast.Node) {
	fn := g.top().fn
	b := g.b()

	condB := fn.NewBlock("iter.cond")
	bodyB := fn.NewBlock("iter.body")
	stepB := fn.NewBlock("iter.step")
	endB := fn.NewBlock("iter.end")

	nextFn := g.Module.Extern("generator_next", []hir.Type{hir.NewPointer(hir.TyAny), hir.TyAny}, hir.TyAny)
	doneFn := g.Module.Extern("iterator_result_done", []hir.Type{hir.TyAny}, hir.TyBool)
	valueFn := g.Module.Extern("iterator_result_value", []hir.Type{hir.TyAny}, hir.TyAny)

	b.Jump(condB)
	b.SetInsertPoint(condB)
	result := b.Call(nextFn, []hir.Value{b.Cast(gen, hir.NewPointer(hir.TyAny)), b.Cast(hir.IntConst(0), hir.TyAny)}, hir.TyAny)
	done := b.Call(doneFn, []hir.Value{result}, hir.TyBool)
	b.If(done, endB, bodyB)

	b.SetInsertPoint(bodyB)
	g.top().pushScope()
	item := b.Call(valueFn, []hir.Value{result}, hir.TyAny)
	g.bindLoopTarget(decl, item)
	g.pushLoop(label, endB, stepB)
	g.genStmt(body)
	g.popLoop()
	g.top().popScope()
	if b.InsertBlock() != nil {
		b.Jump(stepB)
	}

	b.SetInsertPoint(stepB)
	b.Jump(condB)

	b.SetInsertPoint(endB)
}

// bindLoopTarget binds one for-in/for-of iteration value to its loop
// head: a fresh `let`-style declarator introduces a new binding each
// iteration, while a bare identifier reassigns an existing one.
func (g *HIRGen) bindLoopTarget(decl ast.Node, val hir.Value) {
	switch d := decl.(type) {
	case *ast.VarDeclStmt:
		pat := d.Decls[0].Pattern
		g.destructurePattern(pat, val, func(name string, v hir.Value) {
			g.declare(name, hir.TyAny, v)
		})
	case *ast.Ident:
		g.assignIdent(d.Name, val)
	default:
		diag.Abortf("unsupported for-in/for-of binding target %T", decl)
	}
}

func (g *HIRGen) genBreak(s *ast.BreakStmt) {
	var lc *loopCtx
	if s.Label != "" {
		lc = g.labels[s.Label]
	} else if len(g.loops) > 0 {
		lc = g.loops[len(g.loops)-1]
	}
	if lc == nil {
		diag.Abortf("break outside a loop or switch")
		return
	}
	g.b().Jump(lc.breakBlock)
}

func (g *HIRGen) genContinue(s *ast.ContinueStmt) {
	if s.Label != "" {
		lc, ok := g.labels[s.Label]
		if !ok || lc.continueBlock == nil {
			diag.Abortf("continue does not target an enclosing loop")
			return
		}
		g.b().Jump(lc.continueBlock)
		return
	}
	for i := len(g.loops) - 1; i >= 0; i-- {
		if g.loops[i].continueBlock != nil {
			g.b().Jump(g.loops[i].continueBlock)
			return
		}
	}
	diag.Abortf("continue outside a loop")
}

// genReturn applies the bool->i64 widening rule uniformly at the
// return boundary (§4.3) and, inside a generator, routes through the
// completion call instead of a plain Ret (§4.8).
func (g *HIRGen) genReturn(s *ast.ReturnStmt) {
	var val hir.Value
	if s.X != nil {
		val = g.genExpr(s.X)
	}
	if g.top().isGenerator {
		g.genCompletionReturn(val)
		return
	}
	if val != nil {
		val = g.b().ZExtBool(val)
		val = g.b().Cast(val, g.top().fn.ReturnType)
	}
	g.b().Ret(val)
}

// genThrow lowers `throw X`. Without a full stack-unwinding model,
// this pipeline resolves a throw structurally: it jumps directly to
// the nearest lexically enclosing catch block known at generation
// time (catchStack), or, with no such block in the current function,
// hands off to a runtime unwinder that searches the caller chain.
func (g *HIRGen) genThrow(s *ast.ThrowStmt) {
	val := g.genExpr(s.X)
	setExc := g.Module.Extern("set_exception", []hir.Type{hir.TyAny}, hir.TyVoid)
	g.b().Call(setExc, []hir.Value{g.b().Cast(val, hir.TyAny)}, hir.TyVoid)
	if len(g.catchStack) > 0 {
		g.b().Jump(g.catchStack[len(g.catchStack)-1])
		return
	}
	unwind := g.Module.Extern("throw_unwind", nil, hir.TyVoid)
	g.b().Call(unwind, nil, hir.TyVoid)
	g.b().Unreachable()
}

// genTry lowers try/catch/finally. The catch block is generated as a
// genuine reachable block of the function (so its own control flow,
// including a nested throw/return, lowers normally) entered either by
// a structural jump from a throw inside Block (catchStack) or, for a
// throw raised beneath a call within Block that this compiler can't
// see into, by the runtime unwinder outside this pipeline's model.
func (g *HIRGen) genTry(s *ast.TryStmt) {
	fn := g.top().fn
	b := g.b()
	afterB := fn.NewBlock("try.after")

	var catchB *hir.BasicBlock
	if s.Catch != nil {
		catchB = fn.NewBlock("catch")
		g.catchStack = append(g.catchStack, catchB)
	}

	g.genBlock(s.Block)

	if s.Catch != nil {
		g.catchStack = g.catchStack[:len(g.catchStack)-1]
	}
	if b.InsertBlock() != nil {
		b.Jump(afterB)
	}

	if s.Catch != nil {
		b.SetInsertPoint(catchB)
		g.top().pushScope()
		if s.Catch.Param != nil {
			getExc := g.Module.Extern("current_exception", nil, hir.TyAny)
			exc := b.Call(getExc, nil, hir.TyAny)
			g.declare(patternName(s.Catch.Param), hir.TyAny, exc)
		}
		g.genBlock(s.Catch.Body)
		g.top().popScope()
		if b.InsertBlock() != nil {
			b.Jump(afterB)
		}
	}

	b.SetInsertPoint(afterB)
	if s.Finally != nil {
		g.genBlock(s.Finally)
	}
}

// genLabeled handles `label: stmt`. A labeled loop/switch reads its
// own Label field directly (each genWhile/genFor/... call already
// registers it via pushLoop), so only a label wrapping some other
// statement needs a generic break-only target here.
func (g *HIRGen) genLabeled(s *ast.LabeledStmt) {
	switch s.Stmt.(type) {
	case *ast.WhileStmt, *ast.DoWhileStmt, *ast.ForStmt, *ast.ForInStmt, *ast.ForOfStmt, *ast.SwitchStmt:
		g.genStmt(s.Stmt)
		return
	}
	fn := g.top().fn
	endB := fn.NewBlock("label.end")
	g.pushLoop(s.Label, endB, nil)
	g.genStmt(s.Stmt)
	g.popLoop()
	if g.b().InsertBlock() != nil {
		g.b().Jump(endB)
	}
	g.b().SetInsertPoint(endB)
}
