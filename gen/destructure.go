package gen

// This file implements §4.9: array/object destructuring, both in
// declaration position (`let [a, {b}] = x`, via ast/pattern.go's
// *Pattern nodes) and in bare-assignment position (`[a, b] = x`, which
// reuses the ArrayLit/ObjectLit expression grammar for its target —
// the same reuse real JS grammars make, since an assignment target and
// an array/object literal are only disambiguated by position). Both
// walk down to the same runtime element/property-access externs; they
// differ only in how a leaf name's new value is installed (a fresh
// declare vs. an existing binding's assignIdent/genMemberWrite).

import (
	"github.com/nova-lang/novac/ast"
	"github.com/nova-lang/novac/hir"
	"github.com/nova-lang/novac/internal/diag"
)

// destructure lowers a declaration-position pattern, introducing a
// fresh binding for each leaf name (§4.9, used by VarDeclStmt and by
// bindParams for a destructured parameter).
func (g *HIRGen) destructure(pattern ast.Node, val hir.Value) {
	g.destructurePattern(pattern, val, func(name string, v hir.Value) {
		g.declare(name, hir.TyAny, v)
	})
}

// destructurePattern walks a binding-position pattern, calling bind
// once per leaf name with the value it should receive.
func (g *HIRGen) destructurePattern(pattern ast.Node, val hir.Value, bind func(string, hir.Value)) {
	switch p := pattern.(type) {
	case *ast.Ident:
		bind(p.Name, val)
	case *ast.IdentPattern:
		bind(p.Name, val)
	case *ast.RestPattern:
		bind(patternName(p.Name), val)
	case *ast.AssignPattern:
		v := g.withDefault(val, p.Default)
		g.destructurePattern(p.Target, v, bind)
	case *ast.ArrayPattern:
		for i, elem := range p.Elems {
			if elem == nil {
				continue // a hole (`[, b] = ...`) skips this position entirely
			}
			if rp, ok := elem.(*ast.RestPattern); ok {
				rest := g.arraySliceFrom(val, i)
				bind(patternName(rp.Name), rest)
				break
			}
			ev := g.arrayGetIndex(val, i)
			g.destructurePattern(elem, ev, bind)
		}
	case *ast.ObjectPattern:
		taken := make([]string, 0, len(p.Props))
		for _, pr := range p.Props {
			taken = append(taken, pr.Key)
			pv := g.objectGetProp(val, pr.Key)
			if pr.Default != nil {
				pv = g.withDefault(pv, pr.Default)
			}
			g.destructurePattern(pr.Value, pv, bind)
		}
		if p.Rest != "" {
			bind(p.Rest, g.objectOmitKeys(val, taken))
		}
	default:
		diag.Abortf("unsupported destructuring pattern %T", pattern)
	}
}

// destructureAssign lowers a bare-assignment-position destructuring
// target, writing through each leaf's existing storage (an identifier
// binding or a member expression) rather than declaring anything new.
func (g *HIRGen) destructureAssign(target ast.Node, val hir.Value) {
	switch t := target.(type) {
	case *ast.Ident:
		g.assignIdent(t.Name, val)
	case *ast.MemberExpr:
		g.genMemberWrite(t, val)
	case *ast.AssignExpr: // `x = default` as an element of an assignment-target pattern
		v := g.withDefault(val, t.Value)
		g.destructureAssign(t.Target, v)
	case *ast.ArrayLit:
		for i, elem := range t.Elems {
			if elem == nil {
				continue
			}
			if se, ok := elem.(*ast.SpreadExpr); ok {
				rest := g.arraySliceFrom(val, i)
				g.destructureAssign(se.X, rest)
				break
			}
			ev := g.arrayGetIndex(val, i)
			g.destructureAssign(elem, ev)
		}
	case *ast.ObjectLit:
		taken := make([]string, 0, len(t.Props))
		for _, pr := range t.Props {
			if pr.Spread {
				g.destructureAssign(pr.Value, g.objectOmitKeys(val, taken))
				continue
			}
			taken = append(taken, pr.Key)
			g.destructureAssign(pr.Value, g.objectGetProp(val, pr.Key))
		}
	default:
		diag.Abortf("unsupported destructuring-assignment target %T", target)
	}
}

// withDefault substitutes defaultExpr for val when val is nullish
// (§4.9's `= default` clause on an array/object pattern element),
// using the same explicit-slot technique as genLogical/genConditional
// rather than a phi.
func (g *HIRGen) withDefault(val hir.Value, defaultExpr ast.Node) hir.Value {
	b := g.b()
	fn := g.top().fn
	slot := b.Alloca(hir.TyAny, "destructure.default")
	b.Store(slot, b.Cast(val, hir.TyAny))

	cond := g.isNullish(val)
	useDefault := fn.NewBlock("destructure.default.use")
	merge := fn.NewBlock("destructure.default.merge")
	b.If(cond, useDefault, merge)

	b.SetInsertPoint(useDefault)
	dv := g.genExpr(defaultExpr)
	b.Store(slot, b.Cast(dv, hir.TyAny))
	b.Jump(merge)

	b.SetInsertPoint(merge)
	return b.Load(slot)
}

func (g *HIRGen) arrayGetIndex(val hir.Value, i int) hir.Value {
	fn := g.Module.Extern("array_get", []hir.Type{hir.TyAny, hir.TyI64}, hir.TyAny)
	return g.b().Call(fn, []hir.Value{g.b().Cast(val, hir.TyAny), hir.IntConst(int64(i))}, hir.TyAny)
}

func (g *HIRGen) arraySliceFrom(val hir.Value, i int) hir.Value {
	fn := g.Module.Extern("array_slice_from", []hir.Type{hir.TyAny, hir.TyI64}, hir.TyAny)
	return g.b().Call(fn, []hir.Value{g.b().Cast(val, hir.TyAny), hir.IntConst(int64(i))}, hir.TyAny)
}

func (g *HIRGen) objectGetProp(val hir.Value, name string) hir.Value {
	fn := g.Module.Extern("get_property", []hir.Type{hir.TyAny, hir.TyString}, hir.TyAny)
	return g.b().Call(fn, []hir.Value{g.b().Cast(val, hir.TyAny), g.str(name)}, hir.TyAny)
}

// objectOmitKeys backs an object pattern's `...rest` element: a new
// object holding every property of val except those already bound by
// an earlier entry in the same pattern.
func (g *HIRGen) objectOmitKeys(val hir.Value, keys []string) hir.Value {
	elems := make([]hir.Value, len(keys))
	for i, k := range keys {
		elems[i] = g.str(k)
	}
	arr := g.b().ArrayConstruct(&hir.Array{Elem: hir.TyString}, elems)
	fn := g.Module.Extern("object_omit_keys", []hir.Type{hir.TyAny, &hir.Array{Elem: hir.TyString}}, hir.TyAny)
	return g.b().Call(fn, []hir.Value{g.b().Cast(val, hir.TyAny), arr}, hir.TyAny)
}
