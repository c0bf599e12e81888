package gen

// This file implements C8 (§4.7): class lowering. Struct synthesis
// (parent-field copy-down, declared fields, and a scan of the
// constructor body for `this.x = ...` assignments the distilled
// source's class never declares a field for) is grounded on
// ssa/promote.go's anonymous-field-path machinery, generalized from Go
// struct embedding to single-parent class inheritance; ancestor
// walking for inherited methods mirrors the same file's
// candidate-method search, with a `building` flag guarding against an
// inheritance cycle (§8).

import (
	"github.com/nova-lang/novac/ast"
	"github.com/nova-lang/novac/hir"
	"github.com/nova-lang/novac/internal/diag"
)

// classInfo is the compiler's own bookkeeping for one class: its
// struct layout and the compiled functions backing its constructor,
// methods, and accessors.
type classInfo struct {
	name string
	node *ast.ClassExpr

	strct  *hir.Struct
	parent *classInfo

	ctor          *hir.Function
	ctorParams    []ast.Param // this class's own constructor's parameter list, so a subclass's default constructor can inherit it (§4.7 "Default constructor")
	methods       map[string]*hir.Function
	staticMethods map[string]*hir.Function
	getters       map[string]*hir.Function
	setters       map[string]*hir.Function
	staticFields  []string

	// ownFieldInits holds this class's own declared instance-field
	// literal initializers, in declaration order (§4.7 constructor
	// generation: "replay inherited field initializations... applying
	// stored literal defaults"). Non-literal initializers are left for
	// the user's own constructor body to assign, since replaying an
	// arbitrary expression here could observe `this` in a partially
	// constructed state.
	ownFieldInits []fieldInit

	building bool
	built    bool
}

type fieldInit struct {
	name string
	lit  *ast.Literal
}

func newClassInfo(name string, ce *ast.ClassExpr) *classInfo {
	return &classInfo{
		name:          name,
		node:          ce,
		strct:         &hir.Struct{Name: name},
		methods:       make(map[string]*hir.Function),
		staticMethods: make(map[string]*hir.Function),
		getters:       make(map[string]*hir.Function),
		setters:       make(map[string]*hir.Function),
	}
}

// predeclareClass registers a named class's skeleton so that forward
// references (a class used in `extends` or `new` before its textual
// declaration) resolve during the main generation pass (§4.7).
func (g *HIRGen) predeclareClass(ce *ast.ClassExpr) {
	if ce.Name == "" || g.classes[ce.Name] != nil {
		return
	}
	g.classes[ce.Name] = newClassInfo(ce.Name, ce)
}

// genClassDecl lowers a statement-position class declaration.
func (g *HIRGen) genClassDecl(d *ast.ClassDecl) {
	ci := g.classes[d.Class.Name]
	if ci == nil {
		ci = newClassInfo(d.Class.Name, d.Class)
		g.classes[d.Class.Name] = ci
	}
	g.buildClass(ci)
}

// genClass lowers a class *expression*, returning its constructor
// function as the value the expression produces (matching the source
// language's "a class expression evaluates to its constructor").
func (g *HIRGen) genClass(ce *ast.ClassExpr) *hir.Function {
	if ce.Name != "" {
		ci := g.classes[ce.Name]
		if ci == nil {
			ci = newClassInfo(ce.Name, ce)
			g.classes[ce.Name] = ci
		}
		g.buildClass(ci)
		return ci.ctor
	}
	ci := newClassInfo(g.freshName("class"), ce)
	g.buildClass(ci)
	return ci.ctor
}

// buildClass performs struct synthesis and compiles the constructor,
// methods, and accessors of ci exactly once, recursively building an
// unbuilt parent first (§4.7 step 1-2).
func (g *HIRGen) buildClass(ci *classInfo) {
	if ci.built {
		return
	}
	if ci.building {
		g.Diags.Semanticf(0, "circular inheritance involving class %q", ci.name)
		ci.name = ""
		ci.built = true
		return
	}
	ci.building = true
	ce := ci.node

	if ce.Parent != nil {
		if pid, ok := ce.Parent.(*ast.Ident); ok {
			if pci, ok := g.classes[pid.Name]; ok {
				g.buildClass(pci)
				ci.parent = pci
				for i, f := range pci.strct.Fields {
					if f.Name == reservedFieldName(i) {
						break // the parent's padding; this struct is padded on its own below
					}
					ci.strct.AddField(f.Name, f.Type, f.IsPublic)
				}
				for name, fn := range pci.methods {
					ci.methods[name] = fn
				}
				for name, fn := range pci.getters {
					ci.getters[name] = fn
				}
				for name, fn := range pci.setters {
					ci.setters[name] = fn
				}
			} else {
				g.Diags.Semanticf(0, "unknown parent class %q", pid.Name)
			}
		}
	}

	var ctorMember *ast.ClassMember
	for i := range ce.Members {
		m := &ce.Members[i]
		switch m.Kind {
		case ast.MemberField:
			ci.strct.AddField(m.Name, hir.TyAny, true)
			if lit, ok := m.Value.(*ast.Literal); ok {
				ci.ownFieldInits = append(ci.ownFieldInits, fieldInit{name: m.Name, lit: lit})
			}
		case ast.MemberStaticField:
			ci.staticFields = append(ci.staticFields, m.Name)
		case ast.MemberConstructor:
			ctorMember = m
		}
	}
	if ctorMember != nil {
		if fe, ok := ctorMember.Value.(*ast.FunctionExpr); ok && fe.Body != nil {
			scanThisAssignments(fe.Body, ci.strct)
		}
	}
	padStructLayout(ci.strct)
	g.Module.AddStruct(ci.strct)

	ci.ctor = g.buildConstructor(ci, ctorMember)

	for i := range ce.Members {
		m := &ce.Members[i]
		fe, _ := m.Value.(*ast.FunctionExpr)
		switch m.Kind {
		case ast.MemberMethod:
			ci.methods[m.Name] = g.buildMethod(ci, m.Name, fe)
		case ast.MemberStaticMethod:
			ci.staticMethods[m.Name] = g.buildMethod(ci, m.Name, fe)
		case ast.MemberGetter:
			ci.getters[m.Name] = g.buildMethod(ci, "get$"+m.Name, fe)
		case ast.MemberSetter:
			ci.setters[m.Name] = g.buildMethod(ci, "set$"+m.Name, fe)
		}
	}

	ci.building = false
	ci.built = true
}

// maxStructFieldCount is the fixed field-count ceiling every class
// struct's allocation is padded to (§4.7 constructor generation, §9
// Open Question 5): the downstream layout this pipeline feeds expects
// every instance to be sized uniformly rather than exactly to its own
// field count, so a field added to one class later doesn't reshuffle
// the allocator's size classes. Chosen generously for the sample
// class hierarchies this pipeline targets; a real deployment would
// take this from the downstream layout's own constant instead of
// duplicating it here.
const maxStructFieldCount = 32

// padStructLayout appends reserved trailing fields (named
// "$reserved<index>") to strct until it reaches maxStructFieldCount,
// so a downstream stage sizing `malloc` from the struct type gets the
// fixed padded size rather than the class's true field count. The
// padding fields are part of strct.Fields; their reserved names keep a
// FieldIndex lookup of a declared field from landing on one.
func padStructLayout(strct *hir.Struct) {
	for i := len(strct.Fields); i < maxStructFieldCount; i++ {
		strct.Fields = append(strct.Fields, hir.Field{Name: reservedFieldName(i), Type: hir.TyI64})
	}
}

func reservedFieldName(i int) string {
	return "$reserved" + itoaGen(int64(i))
}

// scanThisAssignments infers struct fields from `this.x = ...`
// assignments inside a constructor whose class body never declares
// `x` as a field (§4.7 step 3) — the distilled source language lets a
// constructor introduce instance fields this way, unlike Go structs.
func scanThisAssignments(body *ast.BlockStmt, strct *hir.Struct) {
	ast.Inspect(body, func(n ast.Node) {
		assign, ok := n.(*ast.AssignExpr)
		if !ok || assign.Op != "=" {
			return
		}
		m, ok := assign.Target.(*ast.MemberExpr)
		if !ok || m.Computed {
			return
		}
		if _, ok := m.X.(*ast.This); !ok {
			return
		}
		id, ok := m.Prop.(*ast.Ident)
		if !ok {
			return
		}
		strct.AddField(id.Name, hir.TyAny, true)
	})
}

// buildConstructor compiles ci's constructor (§4.7 "Constructor
// generation" / "Default constructor"): an explicit user body gets
// its own allocation-and-super-consuming path; a class that declares
// no constructor gets a separate default path that zero-initializes
// fields and never implicitly forwards to the parent constructor.
func (g *HIRGen) buildConstructor(ci *classInfo, member *ast.ClassMember) *hir.Function {
	var fe *ast.FunctionExpr
	if member != nil {
		fe, _ = member.Value.(*ast.FunctionExpr)
	}
	if fe != nil {
		return g.buildExplicitConstructor(ci, fe)
	}
	return g.buildDefaultConstructor(ci)
}

// buildExplicitConstructor lowers a user-written constructor body. It
// allocates the instance itself via malloc, unless the body's first
// statement is `super(...)` — in that case the parent constructor's
// own allocation is reused as `this` (§4.7 constructor generation: "If
// the first statement is super(...), do not allocate — use the
// pointer returned by the super constructor call as this"). Inherited
// field initializers are replayed before the rest of the body runs,
// and the function returns the resulting `this` pointer.
func (g *HIRGen) buildExplicitConstructor(ci *classInfo, fe *ast.FunctionExpr) *hir.Function {
	fn := &hir.Function{Name_: g.uniqueFnName(ci.name + "$ctor"), ReturnType: hir.NewPointer(ci.strct)}
	g.Module.AddFunction(fn)
	fr := g.pushFrame(fn, false)
	entry := fn.NewBlock("entry")
	fr.builder.SetInsertPoint(entry)

	g.bindParams(fn, fe.Params)
	ci.ctorParams = fe.Params
	fr.thisClassName = ci.name

	startsWithSuper := bodyStartsWithSuperCall(fe.Body)
	var thisPtr hir.Value
	var rest []ast.Node
	if startsWithSuper {
		es := fe.Body.Stmts[0].(*ast.ExprStmt)
		call := es.X.(*ast.CallExpr)
		hasSpread := false
		for _, sp := range call.Spread {
			if sp {
				hasSpread = true
			}
		}
		thisPtr = g.genSuperConstructorCall(call, hasSpread)
		rest = fe.Body.Stmts[1:]
	} else {
		thisPtr = g.mallocInstance(ci)
		if fe.Body != nil {
			rest = fe.Body.Stmts
		}
	}
	fr.thisVal = thisPtr

	g.replayFieldInits(ci, thisPtr)

	if fe.Body != nil {
		g.genBlock(&ast.BlockStmt{P: fe.Body.P, Stmts: rest})
	}
	if g.b().InsertBlock() != nil {
		g.b().Ret(thisPtr)
	}
	g.popFrame()
	return fn
}

// buildDefaultConstructor lowers the implicit constructor a class
// gets when it declares none of its own (§4.7 "Default constructor"):
// it takes on the parent's constructor parameter list (so a subclass
// that omits a constructor stays callable with the parent's
// arguments) when there is a parent, allocates via malloc, and
// zero-initializes every field — it never invokes the parent
// constructor, explicit or implicit; only a user-written super(...)
// call does that.
func (g *HIRGen) buildDefaultConstructor(ci *classInfo) *hir.Function {
	fn := &hir.Function{Name_: g.uniqueFnName(ci.name + "$ctor"), ReturnType: hir.NewPointer(ci.strct)}
	g.Module.AddFunction(fn)
	fr := g.pushFrame(fn, false)
	entry := fn.NewBlock("entry")
	fr.builder.SetInsertPoint(entry)

	var params []ast.Param
	if ci.parent != nil {
		params = ci.parent.ctorParams
	}
	g.bindParams(fn, params)
	ci.ctorParams = params
	fr.thisClassName = ci.name

	thisPtr := g.mallocInstance(ci)
	fr.thisVal = thisPtr

	g.zeroInitFields(ci.strct, thisPtr)

	g.b().Ret(thisPtr)
	g.popFrame()
	return fn
}

// mallocInstance allocates one instance of ci's struct via the §6
// `malloc` extern. Every class struct is padded to
// maxStructFieldCount fields (padStructLayout), each a fixed-width
// any-typed slot in this pipeline's object model, so every class
// instance allocates the same fixed size regardless of its own field
// count (§4.7: "padded to a fixed maximum field count to match the
// downstream's struct layout").
func (g *HIRGen) mallocInstance(ci *classInfo) hir.Value {
	fn := g.Module.Extern("malloc", []hir.Type{hir.TyI64}, hir.NewPointer(hir.TyAny))
	raw := g.b().Call(fn, []hir.Value{hir.IntConst(instanceByteSize)}, hir.NewPointer(hir.TyAny))
	return g.b().Cast(raw, hir.NewPointer(ci.strct))
}

// instanceByteSize is the malloc size shared by every class instance:
// maxStructFieldCount fields at 8 bytes (one any-typed slot) apiece.
const instanceByteSize = maxStructFieldCount * 8

// zeroInitFields writes each of strct's fields to its type's zero
// value on thisPtr (§4.7 "Default constructor": "zero-initializes
// every field").
func (g *HIRGen) zeroInitFields(strct *hir.Struct, thisPtr hir.Value) {
	b := g.b()
	for i, f := range strct.Fields {
		b.SetField(thisPtr, i, f.Name, hir.NullConst(f.Type))
	}
}

// replayFieldInits applies every ancestor's (newest-to-oldest) and
// then ci's own literal field-default initializers to thisPtr, before
// the constructor body runs (§4.7). Walking an explicit ancestor
// chain rather than relying on the copied-down struct layout keeps
// each initializer attributed to the class that actually declared it.
func (g *HIRGen) replayFieldInits(ci *classInfo, thisPtr hir.Value) {
	var chain []*classInfo
	for anc := ci.parent; anc != nil; anc = anc.parent {
		chain = append(chain, anc)
	}
	for _, anc := range chain {
		g.applyFieldInits(ci.strct, anc.ownFieldInits, thisPtr)
	}
	g.applyFieldInits(ci.strct, ci.ownFieldInits, thisPtr)
}

func (g *HIRGen) applyFieldInits(strct *hir.Struct, inits []fieldInit, thisPtr hir.Value) {
	for _, fi := range inits {
		idx, ok := strct.FieldIndex(fi.name)
		if !ok {
			continue
		}
		val := g.genLiteral(fi.lit)
		g.b().SetField(thisPtr, idx, fi.name, g.b().Cast(val, strct.Fields[idx].Type))
	}
}

func bodyStartsWithSuperCall(body *ast.BlockStmt) bool {
	if body == nil || len(body.Stmts) == 0 {
		return false
	}
	es, ok := body.Stmts[0].(*ast.ExprStmt)
	if !ok {
		return false
	}
	call, ok := es.X.(*ast.CallExpr)
	if !ok {
		return false
	}
	_, ok = call.Callee.(*ast.Super)
	return ok
}

// buildMethod compiles a method/getter/setter body with `this` bound
// as its leading parameter (second, after `__gen`, for a generator
// method). Like any nested function, a method
// defined inside another function's body may also close over that
// function's locals, so it gets the same speculative __env machinery
// as an ordinary closure (§4.6).
func (g *HIRGen) buildMethod(ci *classInfo, name string, fe *ast.FunctionExpr) *hir.Function {
	fn := &hir.Function{Name_: g.uniqueFnName(ci.name + "$" + name), ReturnType: hir.TyAny, IsGenerator: fe.IsGenerator, IsAsync: fe.IsAsync}
	g.Module.AddFunction(fn)
	fr := g.pushFrame(fn, fe.IsGenerator)

	var entry *hir.BasicBlock
	var gs *generatorState
	if fe.IsGenerator {
		gs, entry = g.genGeneratorPrologue(fn)
	} else {
		entry = fn.NewBlock("entry")
		fr.builder.SetInsertPoint(entry)
	}

	thisParam := fn.AddParam("this", hir.NewPointer(ci.strct))
	fr.thisVal = thisParam
	fr.thisClassName = ci.name

	g.bindParams(fn, fe.Params)

	nested := len(g.frames) > 1
	var envParam *hir.Parameter
	if nested {
		placeholder := &hir.Struct{Name: fn.Name() + "$Env"}
		envParam = fn.AddParam("__env", hir.NewPointer(placeholder))
		fr.envParam = envParam
	}

	if fe.Body != nil {
		g.genBlock(fe.Body)
	}
	g.finishFallthrough(fe.IsGenerator)
	if fe.IsGenerator {
		g.finalizeGeneratorDispatch(gs)
	}
	g.finalizeClosure(fr, envParam)
	g.popFrame()
	return fn
}

// construct invokes ci's constructor, which allocates the instance
// itself and returns the resulting `this` pointer (§4.7 constructor
// generation).
func (g *HIRGen) construct(ci *classInfo, argsAst []ast.Node) hir.Value {
	args := g.genArgs(argsAst)
	return g.b().Call(&funcRef{fn: ci.ctor}, args, hir.NewPointer(ci.strct))
}

// callParentCtor invokes pci's constructor (which allocates and
// returns its own `this`) and returns that pointer typed as a pointer
// to pci's struct; genSuperConstructorCall casts it to the calling
// class's struct, which is valid because the child struct's fields
// start with the parent's (§4.7 step 1: prefix-compatible layout).
func (g *HIRGen) callParentCtor(pci *classInfo, argsAst []ast.Node) hir.Value {
	args := g.genArgs(argsAst)
	return g.b().Call(&funcRef{fn: pci.ctor}, args, hir.NewPointer(pci.strct))
}

// genSuperConstructorCall lowers an explicit `super(...)` call
// appearing as a constructor body's own statement: the parent
// constructor's return value becomes this constructor's `this`
// pointer (§4.7: "use the pointer returned by the super constructor
// call as this").
func (g *HIRGen) genSuperConstructorCall(c *ast.CallExpr, hasSpread bool) hir.Value {
	if hasSpread {
		diag.Abortf("spread arguments in a super() call are not supported")
	}
	ci := g.classes[g.top().thisClassName]
	if ci == nil || ci.parent == nil {
		g.Diags.Semanticf(0, "super() used outside a subclass constructor")
		return hir.NullConst(hir.TyAny)
	}
	parentThis := g.callParentCtor(ci.parent, c.Args)
	return g.b().Cast(parentThis, hir.NewPointer(ci.strct))
}

// genSuperMethodCall lowers `super.method(...)`: resolved statically
// against the parent's method table, bypassing virtual dispatch
// (§4.7), since the whole point of `super` is to skip the override in
// the current class.
func (g *HIRGen) genSuperMethodCall(m *ast.MemberExpr, c *ast.CallExpr, hasSpread bool) hir.Value {
	if hasSpread {
		diag.Abortf("spread arguments in a super.method() call are not supported")
	}
	ci := g.classes[g.top().thisClassName]
	if ci == nil || ci.parent == nil {
		g.Diags.Semanticf(0, "super used outside a subclass method")
		return hir.NullConst(hir.TyAny)
	}
	id, ok := m.Prop.(*ast.Ident)
	if !ok {
		diag.Abortf("super member access must be a plain identifier")
	}
	fn, ok := ci.parent.methods[id.Name]
	if !ok {
		g.Diags.Semanticf(0, "class %q has no ancestor method %q", ci.name, id.Name)
		return hir.NullConst(hir.TyAny)
	}
	args := append([]hir.Value{g.top().thisVal}, g.genArgs(c.Args)...)
	return g.b().Call(&funcRef{fn: fn}, args, hir.TyAny)
}
