package gen

// This file rounds out C5: member access, calls (plain, method, and
// super), `new`, array/object literal construction, and spread
// expansion (§4.2, §4.5).

import (
	"github.com/nova-lang/novac/ast"
	"github.com/nova-lang/novac/hir"
	"github.com/nova-lang/novac/internal/diag"
)

// genMemberRead lowers `X.Prop` / `X[Prop]`. A statically known struct
// field (X is `this` inside a method or constructor and Prop is a
// field of that class, see staticField) resolves to a direct
// GetField; everything else falls back to a
// runtime property-lookup helper, since source values are otherwise
// untyped (§1 scope: no full static type-checker feeds this pass).
func (g *HIRGen) genMemberRead(m *ast.MemberExpr) hir.Value {
	if id, ok := m.Prop.(*ast.Ident); ok && !m.Computed {
		if ci, recv, ok := g.staticField(m.X, id.Name); ok {
			idx, _ := ci.strct.FieldIndex(id.Name)
			return g.b().GetField(recv, idx, id.Name, ci.strct.Fields[idx].Type)
		}
		fn := g.Module.Extern("get_property", []hir.Type{hir.TyAny, hir.TyString}, hir.TyAny)
		recv := g.genExpr(m.X)
		return g.b().Call(fn, []hir.Value{g.b().Cast(recv, hir.TyAny), g.str(id.Name)}, hir.TyAny)
	}
	recv := g.genExpr(m.X)
	prop := g.genExpr(m.Prop)
	fn := g.Module.Extern("get_property_dynamic", []hir.Type{hir.TyAny, hir.TyAny}, hir.TyAny)
	return g.b().Call(fn, []hir.Value{g.b().Cast(recv, hir.TyAny), g.b().Cast(prop, hir.TyAny)}, hir.TyAny)
}

func (g *HIRGen) genMemberWrite(m *ast.MemberExpr, val hir.Value) {
	if id, ok := m.Prop.(*ast.Ident); ok && !m.Computed {
		if ci, recv, ok := g.staticField(m.X, id.Name); ok {
			idx, _ := ci.strct.FieldIndex(id.Name)
			g.b().SetField(recv, idx, id.Name, g.b().Cast(val, ci.strct.Fields[idx].Type))
			return
		}
		fn := g.Module.Extern("set_property", []hir.Type{hir.TyAny, hir.TyString, hir.TyAny}, hir.TyVoid)
		recv := g.genExpr(m.X)
		g.b().Call(fn, []hir.Value{g.b().Cast(recv, hir.TyAny), g.str(id.Name), g.b().Cast(val, hir.TyAny)}, hir.TyVoid)
		return
	}
	recv := g.genExpr(m.X)
	prop := g.genExpr(m.Prop)
	fn := g.Module.Extern("set_property_dynamic", []hir.Type{hir.TyAny, hir.TyAny, hir.TyAny}, hir.TyVoid)
	g.b().Call(fn, []hir.Value{g.b().Cast(recv, hir.TyAny), g.b().Cast(prop, hir.TyAny), g.b().Cast(val, hir.TyAny)}, hir.TyVoid)
}

// staticField reports whether expr is known at generation time to be
// an instance of a class whose struct layout this compiler already
// built (currently: `this` inside a method), letting a direct
// GetField/SetField replace a runtime property lookup.
func (g *HIRGen) staticField(expr ast.Node, name string) (*classInfo, hir.Value, bool) {
	if _, ok := expr.(*ast.This); !ok {
		return nil, nil, false
	}
	fr := g.top()
	if fr.thisClassName == "" {
		return nil, nil, false
	}
	ci, ok := g.classes[fr.thisClassName]
	if !ok {
		return nil, nil, false
	}
	if _, ok := ci.strct.FieldIndex(name); !ok {
		return nil, nil, false
	}
	return ci, fr.thisVal, true
}

func (g *HIRGen) genArgs(args []ast.Node) []hir.Value {
	vals := make([]hir.Value, len(args))
	for i, a := range args {
		vals[i] = g.b().Cast(g.genExpr(a), hir.TyAny)
	}
	return vals
}

// genCall lowers a call expression, including method calls (where the
// receiver becomes a leading argument) and super calls.
func (g *HIRGen) genCall(c *ast.CallExpr) hir.Value {
	hasSpread := false
	for _, s := range c.Spread {
		if s {
			hasSpread = true
		}
	}

	if m, ok := c.Callee.(*ast.MemberExpr); ok {
		if _, ok := m.X.(*ast.Super); ok {
			return g.genSuperMethodCall(m, c, hasSpread)
		}
	}
	if _, ok := c.Callee.(*ast.Super); ok {
		return g.genSuperConstructorCall(c, hasSpread)
	}

	callee, leading := g.resolveCallee(c.Callee)
	if hasSpread {
		arr := g.genSpreadArgs(c.Args, c.Spread)
		fn := g.Module.Extern("call_apply", []hir.Type{hir.TyAny, hir.NewPointer(hir.TyAny)}, hir.TyAny)
		recv := hir.NullConst(hir.TyAny)
		if len(leading) == 1 {
			recv = leading[0]
		}
		return g.b().Call(fn, []hir.Value{g.b().Cast(callee, hir.TyAny), g.b().Cast(recv, hir.TyAny), arr}, hir.TyAny)
	}
	args := append(append([]hir.Value{}, leading...), g.genArgs(c.Args)...)
	return g.b().Call(callee, args, hir.TyAny)
}

// resolveCallee separates the callable value from an implicit leading
// `this` argument for method-style calls (`recv.method(...)`). When
// the receiver's class is known at generation time (§4.7 "Virtual
// method resolution"), the call binds directly to the resolved
// function; only a receiver whose class this compiler cannot prove
// falls back to the runtime `method_dispatch` lookup.
func (g *HIRGen) resolveCallee(callee ast.Node) (hir.Value, []hir.Value) {
	m, ok := callee.(*ast.MemberExpr)
	if !ok {
		return g.genExpr(callee), nil
	}
	if id, ok := m.Prop.(*ast.Ident); ok && !m.Computed {
		if ci, sok := g.staticClassOf(m.X); sok {
			if fn, mok := g.resolveMethodStatic(ci, id.Name); mok {
				recv := g.genExpr(m.X)
				return &funcRef{fn: fn}, []hir.Value{recv}
			}
		}
	}
	recv := g.genExpr(m.X)
	var name hir.Value
	if id, ok := m.Prop.(*ast.Ident); ok && !m.Computed {
		name = g.str(id.Name)
	} else {
		name = g.genExpr(m.Prop)
	}
	fn := g.Module.Extern("method_dispatch", []hir.Type{hir.TyAny, hir.TyAny}, hir.TyAny)
	method := g.b().Call(fn, []hir.Value{g.b().Cast(recv, hir.TyAny), g.b().Cast(name, hir.TyAny)}, hir.TyAny)
	return method, []hir.Value{recv}
}

// staticClassOf reports the statically known class of expr, when this
// compiler can determine it without running the program: `this`
// inside a method or constructor (mirrors staticField), or a `new
// ClassName(...)` expression, whose class is known by construction.
func (g *HIRGen) staticClassOf(expr ast.Node) (*classInfo, bool) {
	switch e := expr.(type) {
	case *ast.This:
		fr := g.top()
		if fr.thisClassName == "" {
			return nil, false
		}
		ci, ok := g.classes[fr.thisClassName]
		return ci, ok
	case *ast.NewExpr:
		id, ok := e.Callee.(*ast.Ident)
		if !ok {
			return nil, false
		}
		ci, ok := g.classes[id.Name]
		return ci, ok
	}
	return nil, false
}

// resolveMethodStatic implements §4.7's virtual method resolution for
// a receiver whose class is known at generation time: ci.methods is
// already the flattened own-or-inherited view buildClass produces (an
// ancestor's methods are copied down before the subclass's own
// overrides are registered), so a direct lookup returns the same
// "nearest ancestor defining M" answer the §8 invariant 5 algorithm
// would. A miss here is not necessarily an error — it falls back to
// runtime dispatch, since this untyped pipeline cannot rule out the
// method being attached dynamically.
func (g *HIRGen) resolveMethodStatic(ci *classInfo, name string) (*hir.Function, bool) {
	fn, ok := ci.methods[name]
	return fn, ok
}

// genNew lowers `new Callee(Args...)`: a call to the class's
// constructor, which allocates the instance itself and returns it
// (§4.7 step 4, see construct).
func (g *HIRGen) genNew(n *ast.NewExpr) hir.Value {
	id, ok := n.Callee.(*ast.Ident)
	if !ok {
		diag.Abortf("`new` target must be a class name")
		return nil
	}
	ci, ok := g.classes[id.Name]
	if !ok {
		g.Diags.Semanticf(0, "unknown class %q", id.Name)
		return hir.NullConst(hir.TyAny)
	}
	return g.construct(ci, n.Args)
}

func (g *HIRGen) genArrayLit(a *ast.ArrayLit) hir.Value {
	hasSpread := false
	for _, e := range a.Elems {
		if _, ok := e.(*ast.SpreadExpr); ok {
			hasSpread = true
		}
	}
	at := &hir.Array{Elem: hir.TyAny}
	if !hasSpread {
		vals := make([]hir.Value, len(a.Elems))
		for i, e := range a.Elems {
			vals[i] = g.b().Cast(g.genExpr(e), hir.TyAny)
		}
		return g.b().ArrayConstruct(at, vals)
	}
	// With a spread element present, build incrementally through a
	// runtime append helper rather than a single fixed-arity
	// ArrayConstruct, since the final length is not statically known.
	fn := g.Module.Extern("array_new", nil, hir.TyAny)
	arr := g.b().Call(fn, nil, hir.TyAny)
	appendOne := g.Module.Extern("array_push", []hir.Type{hir.TyAny, hir.TyAny}, hir.TyVoid)
	appendSpread := g.Module.Extern("array_push_spread", []hir.Type{hir.TyAny, hir.TyAny}, hir.TyVoid)
	for _, e := range a.Elems {
		if se, ok := e.(*ast.SpreadExpr); ok {
			v := g.genExpr(se.X)
			g.b().Call(appendSpread, []hir.Value{arr, g.b().Cast(v, hir.TyAny)}, hir.TyVoid)
			continue
		}
		v := g.genExpr(e)
		g.b().Call(appendOne, []hir.Value{arr, g.b().Cast(v, hir.TyAny)}, hir.TyVoid)
	}
	return arr
}

// genSpreadArgs builds the flattened argument array for a call with
// one or more `...expr` arguments.
func (g *HIRGen) genSpreadArgs(args []ast.Node, spread []bool) hir.Value {
	fn := g.Module.Extern("array_new", nil, hir.TyAny)
	arr := g.b().Call(fn, nil, hir.TyAny)
	appendOne := g.Module.Extern("array_push", []hir.Type{hir.TyAny, hir.TyAny}, hir.TyVoid)
	appendSpread := g.Module.Extern("array_push_spread", []hir.Type{hir.TyAny, hir.TyAny}, hir.TyVoid)
	for i, a := range args {
		v := g.genExpr(a)
		if i < len(spread) && spread[i] {
			g.b().Call(appendSpread, []hir.Value{arr, g.b().Cast(v, hir.TyAny)}, hir.TyVoid)
		} else {
			g.b().Call(appendOne, []hir.Value{arr, g.b().Cast(v, hir.TyAny)}, hir.TyVoid)
		}
	}
	return arr
}

func (g *HIRGen) genObjectLit(o *ast.ObjectLit) hir.Value {
	fn := g.Module.Extern("object_new", nil, hir.TyAny)
	obj := g.b().Call(fn, nil, hir.TyAny)
	setProp := g.Module.Extern("set_property", []hir.Type{hir.TyAny, hir.TyString, hir.TyAny}, hir.TyVoid)
	mergeSpread := g.Module.Extern("object_merge_spread", []hir.Type{hir.TyAny, hir.TyAny}, hir.TyVoid)
	for _, p := range o.Props {
		if p.Spread {
			v := g.genExpr(p.Value)
			g.b().Call(mergeSpread, []hir.Value{obj, g.b().Cast(v, hir.TyAny)}, hir.TyVoid)
			continue
		}
		var key hir.Value
		if p.Computed != nil {
			key = g.b().Cast(g.genExpr(p.Computed), hir.TyAny)
		} else {
			key = g.str(p.Key)
		}
		var val hir.Value
		if p.Method || p.Getter || p.Setter {
			fe, _ := p.Value.(*ast.FunctionExpr)
			val = g.closureValue(g.genFunctionExpr(fe))
		} else {
			val = g.genExpr(p.Value)
		}
		if p.Computed != nil {
			dyn := g.Module.Extern("set_property_dynamic", []hir.Type{hir.TyAny, hir.TyAny, hir.TyAny}, hir.TyVoid)
			g.b().Call(dyn, []hir.Value{obj, key, g.b().Cast(val, hir.TyAny)}, hir.TyVoid)
		} else {
			g.b().Call(setProp, []hir.Value{obj, key, g.b().Cast(val, hir.TyAny)}, hir.TyVoid)
		}
	}
	return obj
}
