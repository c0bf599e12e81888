// Package gen lowers an ast.Node tree into hir (§4, C4-C9): the HIR
// generator itself. Its name and the split across files (scope.go for
// symbol resolution, expr.go/stmt.go for expression/statement
// lowering, function.go for closures, class.go for class lowering,
// generator.go for the generator state machine) mirror the original
// Nova compiler's HIRGen class, grounded throughout on the teacher's
// go/ssa builder (builder.go) and ssa/func.go's free-variable lookup.
//
// Unlike the teacher, which type-switches over go/ast via
// go/ast.Inspect-style helpers, gen dispatches with plain Go type
// switches over ast.Node — the idiom the teacher itself actually uses
// internally (ast.Node.Accept exists only to satisfy the external
// visitor contract package ast documents).
package gen

import (
	"github.com/nova-lang/novac/ast"
	"github.com/nova-lang/novac/hir"
	"github.com/nova-lang/novac/internal/diag"
	"github.com/nova-lang/novac/internal/intern"
)

// HIRGen holds the state threaded through one compilation unit's
// lowering: the module under construction, the stack of function
// frames (C4), the class registry (C8), and the diagnostic list (§7).
type HIRGen struct {
	Module *hir.Module
	Diags  *diag.List

	// Interner dedupes source string text (string literals, property
	// and field names) so two differently-composed Unicode spellings
	// of the same text intern to one constant (§4.2, §6 [EXPANDED]).
	Interner *intern.Table

	frames  []*frame
	classes map[string]*classInfo

	// generatorFuncs records which named function declarations are
	// generators, so a for-of loop whose source is a call to a
	// known-generator function can route through the generator_next
	// iteration protocol (§4.5, §6) instead of the array-indexed one,
	// even when the call textually precedes the declaration.
	generatorFuncs map[string]bool

	loops  []*loopCtx
	labels map[string]*loopCtx

	// catchStack holds the block to jump to for a `throw` lexically
	// inside the current function's nearest enclosing try (§4.4); a
	// throw with no entry here hands off to the runtime's cross-
	// function unwinder instead (genThrow, stmt.go).
	catchStack []*hir.BasicBlock
}

// str returns an interned string constant for source text s.
func (g *HIRGen) str(s string) hir.Value { return hir.StringConst(g.Interner.Intern(s)) }

// b returns the builder for the innermost active frame.
func (g *HIRGen) b() *hir.Builder { return g.top().builder }

func (g *HIRGen) top() *frame { return g.frames[len(g.frames)-1] }

// New returns a generator targeting a fresh module named name.
func New(name string) *HIRGen {
	return &HIRGen{
		Module:         hir.NewModule(name),
		Diags:          &diag.List{},
		Interner:       &intern.Table{},
		classes:        make(map[string]*classInfo),
		labels:         make(map[string]*loopCtx),
		generatorFuncs: make(map[string]bool),
	}
}

// Run lowers program's top-level statements/declarations into g's
// module, returning the module and any recoverable diagnostics. A
// Fatal (§7 unsupported/internal) is allowed to propagate as a panic;
// callers that want it converted to an error should recover with
// diag.Recover (the CLI driver does this at its top level).
func Run(name string, program *ast.Program) (*hir.Module, *diag.List) {
	g := New(name)
	g.genToplevel(program)
	return g.Module, g.Diags
}

// genToplevel lowers every top-level node of program. Function and
// class declarations become hir.Functions/hir.Structs; bare
// expression/variable statements at module scope are not meaningful
// for this pipeline's target (a single compiled module of
// function/class definitions) and are rejected as unsupported (§7),
// matching a real front end's module-scope restrictions.
func (g *HIRGen) genToplevel(program *ast.Program) {
	// First pass: register every class name so forward references
	// (a class used before its textual declaration) resolve (§4.7),
	// and every top-level generator function's name so a for-of loop
	// iterating a call to it (however it's textually ordered) can
	// recognize the generator iteration protocol applies.
	for _, n := range program.Stmts {
		g.predeclareTopDecl(n)
	}
	for _, n := range program.Stmts {
		g.genTopDecl(n)
	}
}

func (g *HIRGen) predeclareTopDecl(n ast.Node) {
	switch d := n.(type) {
	case *ast.ClassDecl:
		g.predeclareClass(d.Class)
	case *ast.FunctionDecl:
		if d.Fn.IsGenerator {
			g.generatorFuncs[d.Fn.Name] = true
		}
	case *ast.ExportDecl:
		g.predeclareTopDecl(d.Decl)
	}
}

func (g *HIRGen) genTopDecl(n ast.Node) {
	switch d := n.(type) {
	case *ast.FunctionDecl:
		g.genFunctionDecl(d)
	case *ast.ClassDecl:
		g.genClassDecl(d)
	case *ast.ExportDecl:
		g.genTopDecl(d.Decl)
	case *ast.ImportDecl, *ast.InterfaceDecl, *ast.TypeAliasDecl, *ast.EnumDecl:
		// Erased before/around HIR generation (§1 Non-goals).
	default:
		diag.Abortf("unsupported top-level node %T", n)
	}
}
