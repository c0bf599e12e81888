package main

// This file stands in for the lexer/parser that would normally turn
// source text into an ast.Program (§6 [EXPANDED]): a small registry of
// named sample programs, each built directly with internal/fixture,
// exercising one corner of the generator (closures, classes,
// generators, destructuring, control flow). `novac <names...>`
// compiles the named entries; with no names, it compiles all of them.

import (
	"sort"

	"github.com/nova-lang/novac/ast"
	"github.com/nova-lang/novac/internal/fixture"
)

var sampleModules = map[string]func() *ast.Program{
	"closures": func() *ast.Program {
		// function makeCounter() { let n = 0; return function() { n = n + 1; return n; }; }
		inner := fixture.FuncExpr("", nil,
			fixture.Expr(fixture.Assign("=", fixture.Id("n"), fixture.Bin(ast.OpAdd, fixture.Id("n"), fixture.Num(1)))),
			fixture.Ret(fixture.Id("n")),
		)
		outer := fixture.Func("makeCounter", nil,
			fixture.Let("n", fixture.Num(0)),
			fixture.Ret(inner),
		)
		return fixture.Program(outer)
	},
	"classes": func() *ast.Program {
		animal := fixture.Class("Animal", "",
			fixture.Field("name"),
			fixture.Ctor([]string{"name"},
				fixture.Expr(fixture.Assign("=", fixture.Member(fixture.This(), "name"), fixture.Id("name"))),
			),
			fixture.Method("speak", nil, fixture.Ret(fixture.Str("..."))),
		)
		dog := fixture.Class("Dog", "Animal",
			fixture.Method("speak", nil, fixture.Ret(fixture.Str("woof"))),
		)
		return fixture.Program(animal, dog)
	},
	"generators": func() *ast.Program {
		body := fixture.Block(
			fixture.Let("i", fixture.Num(0)),
			fixture.While("", fixture.Bin(ast.OpLt, fixture.Id("i"), fixture.Num(3)),
				fixture.Block(
					fixture.Expr(fixture.Yield(fixture.Id("i"))),
					fixture.Expr(fixture.Assign("=", fixture.Id("i"), fixture.Bin(ast.OpAdd, fixture.Id("i"), fixture.Num(1)))),
				),
			),
		)
		gen := &ast.FunctionDecl{Fn: &ast.FunctionExpr{Name: "counter", Body: body, IsGenerator: true}}
		return fixture.Program(gen)
	},
	"destructuring": func() *ast.Program {
		pat := fixture.ArrayPattern(fixture.Id("a"), fixture.Id("b"), fixture.Rest("rest"))
		fn := fixture.Func("spread", []string{"arr"},
			fixture.LetPattern(pat, fixture.Id("arr")),
			fixture.Ret(fixture.Id("a")),
		)
		return fixture.Program(fn)
	},
	"control": func() *ast.Program {
		fn := fixture.Func("classify", []string{"x"},
			fixture.Switch(fixture.Id("x"),
				fixture.Case(fixture.Num(0), fixture.Ret(fixture.Str("zero"))),
				fixture.Case(fixture.Num(1), fixture.Break("")),
				fixture.Case(nil, fixture.Ret(fixture.Str("many"))),
			),
			fixture.Ret(fixture.Str("one")),
		)
		return fixture.Program(fn)
	},
}

// sampleNames returns every registered sample name, sorted.
func sampleNames() []string {
	names := make([]string, 0, len(sampleModules))
	for name := range sampleModules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
