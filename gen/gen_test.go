package gen

// End-to-end lowering tests built against internal/fixture, exercising
// the §8 scenarios this pipeline is meant to get right: closure
// capture, class inheritance, the generator state machine,
// short-circuit evaluation, and destructuring. No parser is in scope,
// so every test builds its AST input directly.

import (
	"testing"

	"github.com/nova-lang/novac/ast"
	"github.com/nova-lang/novac/hir"
	"github.com/nova-lang/novac/internal/fixture"
	"github.com/stretchr/testify/assert"
)

func findFunc(m *hir.Module, name string) *hir.Function {
	for _, fn := range m.Functions {
		if fn.Name() == name {
			return fn
		}
	}
	return nil
}

func countInstr[T hir.Instruction](fn *hir.Function) int {
	n := 0
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if _, ok := instr.(T); ok {
				n++
			}
		}
	}
	return n
}

// TestClosureCapturesOuterLocal lowers
//
//	function makeCounter() { let n = 0; return function() { n = n + 1; return n; }; }
//
// and checks the inner closure ends up with a trailing __env parameter
// capturing "n" (§4.6).
func TestClosureCapturesOuterLocal(t *testing.T) {
	inner := fixture.FuncExpr("", nil,
		fixture.Expr(fixture.Assign("=", fixture.Id("n"), fixture.Bin(ast.OpAdd, fixture.Id("n"), fixture.Num(1)))),
		fixture.Ret(fixture.Id("n")),
	)
	outer := fixture.Func("makeCounter", nil,
		fixture.Let("n", fixture.Num(0)),
		fixture.Ret(inner),
	)
	m, diags := Run("closures", fixture.Program(outer))
	assert.Empty(t, diags.Items())

	var innerFn *hir.Function
	for _, fn := range m.Functions {
		if fn.Name() != "makeCounter" {
			innerFn = fn
		}
	}
	if assert.NotNil(t, innerFn, "inner closure function not found") {
		captured := m.ClosureCapturedVars[innerFn.Name()]
		assert.Equal(t, []string{"n"}, captured)
		if assert.Len(t, innerFn.Params, 1, "inner closure should keep its speculative __env param") {
			assert.Equal(t, "__env", innerFn.Params[0].Name())
		}
	}
}

// TestClosureDropsUnusedEnv lowers a nested function that captures
// nothing and checks the speculative __env parameter was removed
// (§4.6's "or dropped" path).
func TestClosureDropsUnusedEnv(t *testing.T) {
	inner := fixture.FuncExpr("", nil, fixture.Ret(fixture.Num(1)))
	outer := fixture.Func("makeConst", nil, fixture.Ret(inner))
	m, diags := Run("noenv", fixture.Program(outer))
	assert.Empty(t, diags.Items())

	var innerFn *hir.Function
	for _, fn := range m.Functions {
		if fn.Name() != "makeConst" {
			innerFn = fn
		}
	}
	if assert.NotNil(t, innerFn) {
		assert.Empty(t, innerFn.Params, "unused __env should have been dropped")
		assert.Empty(t, m.ClosureCapturedVars[innerFn.Name()])
	}
}

// TestClassInheritanceBuildsFieldLayoutAndConstructorChain lowers
//
//	class Animal { constructor(name) { this.name = name; } }
//	class Dog extends Animal { constructor(name) { super(name); } speak() { return this.name; } }
//
// and checks Dog's struct carries Animal's field, the struct layout is
// padded to the fixed maximum field count, Animal's constructor mallocs
// and returns its own `this`, and Dog's constructor forwards to it via
// a direct call to Animal's $ctor rather than pre-allocating at the
// `new` call site (§4.7, comments c/d of the constructor-allocation
// review; Open Question 5).
func TestClassInheritanceBuildsFieldLayoutAndConstructorChain(t *testing.T) {
	animal := fixture.Class("Animal", "",
		fixture.Field("name"),
		fixture.Ctor([]string{"name"},
			fixture.Expr(fixture.Assign("=", fixture.Member(fixture.This(), "name"), fixture.Id("name"))),
		),
	)
	dog := fixture.Class("Dog", "Animal",
		fixture.Ctor([]string{"name"},
			fixture.Expr(fixture.Call(fixture.Super(), fixture.Id("name"))),
		),
		fixture.Method("speak", nil, fixture.Ret(fixture.Member(fixture.This(), "name"))),
	)
	m, diags := Run("classes", fixture.Program(animal, dog))
	assert.Empty(t, diags.Items())

	var dogStruct *hir.Struct
	for _, st := range m.Structs {
		if st.Name == "Dog" {
			dogStruct = st
		}
	}
	if assert.NotNil(t, dogStruct, "Dog struct not registered") {
		_, hasName := dogStruct.FieldIndex("name")
		assert.True(t, hasName, "Dog should inherit Animal's `name` field")
		assert.Equal(t, maxStructFieldCount, len(dogStruct.Fields), "struct layout should be padded to the fixed maximum")
	}

	animalCtor := findFunc(m, "Animal$ctor")
	dogCtor := findFunc(m, "Dog$ctor")
	if assert.NotNil(t, animalCtor, "expected a constructor function for Animal") &&
		assert.NotNil(t, dogCtor, "expected a constructor function for Dog") {
		_, isPtr := animalCtor.ReturnType.(*hir.Pointer)
		assert.True(t, isPtr, "constructor should return a pointer")
		assert.Equal(t, 1, countInstr[*hir.Call](animalCtor), "Animal's constructor should call malloc once")

		forwardsToParent := false
		for _, b := range dogCtor.Blocks {
			for _, instr := range b.Instrs {
				if c, ok := instr.(*hir.Call); ok && c.Callee.Name() == "Animal$ctor" {
					forwardsToParent = true
				}
			}
		}
		assert.True(t, forwardsToParent, "Dog's constructor should forward to Animal's via a direct call, not re-allocate")
	}
	assert.Contains(t, m.Externs, "malloc")
}

// TestGeneratorBuildsDispatchChain lowers
//
//	function* pair() { yield 1; yield 2; }
//
// and checks the generator gets a leading __gen parameter and a
// dispatch chain with exactly one check per yield (§4.8, §8 invariant
// 3) — no control flow other than the two yields, so every CondBr in
// the function belongs to the dispatch chain.
func TestGeneratorBuildsDispatchChain(t *testing.T) {
	body := fixture.Block(
		fixture.Expr(fixture.Yield(fixture.Num(1))),
		fixture.Expr(fixture.Yield(fixture.Num(2))),
	)
	decl := &ast.FunctionDecl{Fn: &ast.FunctionExpr{Name: "pair", Body: body, IsGenerator: true}}
	m, diags := Run("generators", fixture.Program(decl))
	assert.Empty(t, diags.Items())

	fn := findFunc(m, "pair")
	if assert.NotNil(t, fn) {
		assert.True(t, fn.IsGenerator)
		if assert.NotEmpty(t, fn.Params, "generator should have a leading __gen parameter") {
			assert.Equal(t, "__gen", fn.Params[0].Name())
		}
		assert.Equal(t, 2, countInstr[*hir.CondBr](fn), "expected exactly one dispatch check per yield")
	}
	assert.Contains(t, m.Externs, "generator_yield")
	assert.Contains(t, m.Externs, "generator_complete")
}

// TestZeroYieldGeneratorHasNoDispatchChecks lowers
//
//	function* empty() { return 1; }
//
// and checks it gets zero dispatch CondBrs — a direct branch to the
// body (§8 boundary case) rather than a check for a state that can
// never occur.
func TestZeroYieldGeneratorHasNoDispatchChecks(t *testing.T) {
	body := fixture.Block(fixture.Ret(fixture.Num(1)))
	decl := &ast.FunctionDecl{Fn: &ast.FunctionExpr{Name: "empty", Body: body, IsGenerator: true}}
	m, diags := Run("generators", fixture.Program(decl))
	assert.Empty(t, diags.Items())

	fn := findFunc(m, "empty")
	if assert.NotNil(t, fn) {
		assert.True(t, fn.IsGenerator)
		assert.Equal(t, 0, countInstr[*hir.CondBr](fn), "a generator with no yields should have no dispatch checks")
	}
}

// TestArrayDestructuringWithRestBindsLeaves lowers
//
//	let [a, b, ...rest] = src;
//
// and checks it lowers without diagnostics and reaches for the
// array-index/slice-from runtime helpers (§4.9).
func TestArrayDestructuringWithRestBindsLeaves(t *testing.T) {
	pattern := fixture.ArrayPattern(fixture.Id("a"), fixture.Id("b"), fixture.Rest("rest"))
	fn := fixture.Func("f", []string{"src"},
		fixture.LetPattern(pattern, fixture.Id("src")),
		fixture.Ret(fixture.Id("a")),
	)
	m, diags := Run("destructuring", fixture.Program(fn))
	assert.Empty(t, diags.Items())
	assert.Contains(t, m.Externs, "array_get")
	assert.Contains(t, m.Externs, "array_slice_from")
}

// TestObjectDestructuringWithDefaultAndRest lowers
//
//	let {x = 1, ...rest} = src;
//
// (§4.9's default-value clause plus object rest).
func TestObjectDestructuringWithDefaultAndRest(t *testing.T) {
	pattern := fixture.ObjectPattern("rest", fixture.PatternProp("x", fixture.Default(fixture.Id("x"), fixture.Num(1))))
	fn := fixture.Func("f", []string{"src"},
		fixture.LetPattern(pattern, fixture.Id("src")),
		fixture.Ret(fixture.Id("x")),
	)
	m, diags := Run("destructuring", fixture.Program(fn))
	assert.Empty(t, diags.Items())
	assert.Contains(t, m.Externs, "get_property")
	assert.Contains(t, m.Externs, "object_omit_keys")
}

// TestLogicalAndShortCircuitsViaBranchNotArithmetic lowers
//
//	a() && b()
//
// and checks the lowering uses a conditional branch (so b() is
// genuinely skipped when a() is falsy) rather than the arithmetic
// a*b/a+b-a*b identity, which would evaluate both sides
// unconditionally (documented divergence, DESIGN.md).
func TestLogicalAndShortCircuitsViaBranchNotArithmetic(t *testing.T) {
	fn := fixture.Func("f", []string{"a", "b"},
		fixture.Ret(fixture.Bin(ast.OpLAnd, fixture.Call(fixture.Id("a")), fixture.Call(fixture.Id("b")))),
	)
	m, diags := Run("logical", fixture.Program(fn))
	assert.Empty(t, diags.Items())
	target := findFunc(m, "f")
	if assert.NotNil(t, target) {
		assert.GreaterOrEqual(t, countInstr[*hir.CondBr](target), 1, "&& should branch, not multiply both operands unconditionally")
	}
}

// TestNullishAlwaysReturnsLeftOperand pins the conservative `??`
// resolution (Open Question 1, DESIGN.md): `a ?? b` lowers to exactly
// `a`, with no runtime nullish check consulted.
func TestNullishAlwaysReturnsLeftOperand(t *testing.T) {
	fn := fixture.Func("f", []string{"a", "b"},
		fixture.Ret(fixture.Bin(ast.OpNullish, fixture.Id("a"), fixture.Id("b"))),
	)
	m, diags := Run("nullish", fixture.Program(fn))
	assert.Empty(t, diags.Items())
	target := findFunc(m, "f")
	if assert.NotNil(t, target) {
		last := target.Blocks[len(target.Blocks)-1]
		ret, ok := last.Instrs[len(last.Instrs)-1].(*hir.Return)
		if assert.True(t, ok, "function should end in a return") {
			load, ok := ret.Val.(*hir.Load)
			if assert.True(t, ok, "`a` is read back from its local slot") {
				_ = load
			}
		}
	}
}

// TestForAwaitOfDegradesWithDiagnostic lowers
//
//	for await (const x of xs) { }
//
// and checks it still lowers (degrading to synchronous iteration)
// but records a diagnostic flagging the degrade (Open Question 4).
func TestForAwaitOfDegradesWithDiagnostic(t *testing.T) {
	forOf := &ast.ForOfStmt{
		Decl:  fixture.Let("x", nil).Decls[0].Pattern,
		X:     fixture.Id("xs"),
		Body:  fixture.Block(),
		Await: true,
	}
	fn := fixture.Func("f", []string{"xs"}, forOf)
	m, diags := Run("forawait", fixture.Program(fn))
	assert.NotEmpty(t, diags.Items(), "for-await-of should record the degrade diagnostic")
	assert.Contains(t, m.Externs, "value_array_length")
	assert.Contains(t, m.Externs, "value_array_get")
}

// TestSwitchFallsThroughToNextCase lowers a switch with two cases and
// no break between them and checks the first case body ends with a
// jump into the second case body (textual fallthrough, §4.4).
func TestSwitchFallsThroughToNextCase(t *testing.T) {
	sw := fixture.Switch(fixture.Id("x"),
		fixture.Case(fixture.Num(1), fixture.Expr(fixture.Call(fixture.Id("sideEffectA")))),
		fixture.Case(fixture.Num(2), fixture.Expr(fixture.Call(fixture.Id("sideEffectB"))), fixture.Break("")),
	)
	fn := fixture.Func("f", []string{"x", "sideEffectA", "sideEffectB"}, sw)
	m, diags := Run("switch", fixture.Program(fn))
	assert.Empty(t, diags.Items())
	assert.Contains(t, m.Externs, "strict_equals")

	target := findFunc(m, "f")
	if assert.NotNil(t, target) {
		var cases []*hir.BasicBlock
		for _, b := range target.Blocks {
			if b.Comment == "switch.case" {
				cases = append(cases, b)
			}
		}
		if assert.Len(t, cases, 2) {
			br, ok := cases[0].Instrs[len(cases[0].Instrs)-1].(*hir.Br)
			assert.True(t, ok && br.Target == cases[1], "the first case body should jump into the second")
		}
	}
}
