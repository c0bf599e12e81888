// Package fixture builds ast.Node trees directly, standing in for the
// lexer/parser front end that is out of scope for this repository (§6
// [EXPANDED]). It is used by cmd/novac (to load a compilation unit
// with no real parser available) and by gen's own tests, which would
// otherwise need a parser just to get an AST to lower.
package fixture

import "github.com/nova-lang/novac/ast"

func Program(stmts ...ast.Node) *ast.Program { return &ast.Program{Stmts: stmts} }

func Block(stmts ...ast.Node) *ast.BlockStmt { return &ast.BlockStmt{Stmts: stmts} }

func Id(name string) *ast.Ident { return &ast.Ident{Name: name} }

func Num(v float64) *ast.Literal { return &ast.Literal{Kind: ast.LitNumber, Num: v} }
func Str(v string) *ast.Literal  { return &ast.Literal{Kind: ast.LitString, Str: v} }
func Bool(v bool) *ast.Literal   { return &ast.Literal{Kind: ast.LitBool, Bool: v} }
func Null() *ast.Literal         { return &ast.Literal{Kind: ast.LitNull} }

func This() *ast.This   { return &ast.This{} }
func Super() *ast.Super { return &ast.Super{} }

func identParams(names []string) []ast.Param {
	ps := make([]ast.Param, len(names))
	for i, n := range names {
		ps[i] = ast.Param{Pattern: Id(n)}
	}
	return ps
}

// Func builds a statement-position named function declaration.
func Func(name string, params []string, body ...ast.Node) *ast.FunctionDecl {
	return &ast.FunctionDecl{Fn: &ast.FunctionExpr{Name: name, Params: identParams(params), Body: Block(body...)}}
}

// Gen builds a statement-position generator function declaration.
func Gen(name string, params []string, body ...ast.Node) *ast.FunctionDecl {
	return &ast.FunctionDecl{Fn: &ast.FunctionExpr{Name: name, Params: identParams(params), Body: Block(body...), IsGenerator: true}}
}

func FuncExpr(name string, params []string, body ...ast.Node) *ast.FunctionExpr {
	return &ast.FunctionExpr{Name: name, Params: identParams(params), Body: Block(body...)}
}

func Arrow(params []string, exprBody ast.Node) *ast.ArrowFunctionExpr {
	return &ast.ArrowFunctionExpr{Params: identParams(params), ExprBody: exprBody}
}

func ArrowBlock(params []string, body ...ast.Node) *ast.ArrowFunctionExpr {
	return &ast.ArrowFunctionExpr{Params: identParams(params), Body: Block(body...)}
}

func Yield(arg ast.Node) *ast.YieldExpr { return &ast.YieldExpr{Arg: arg} }

func YieldDelegate(arg ast.Node) *ast.YieldExpr { return &ast.YieldExpr{Arg: arg, Delegate: true} }

func Expr(x ast.Node) *ast.ExprStmt { return &ast.ExprStmt{X: x} }

// Let/Const build single-declarator variable statements.
func Let(name string, init ast.Node) *ast.VarDeclStmt {
	return &ast.VarDeclStmt{Kind: ast.VarLet, Decls: []ast.Declarator{{Pattern: Id(name), Init: init}}}
}

func Const(name string, init ast.Node) *ast.VarDeclStmt {
	return &ast.VarDeclStmt{Kind: ast.VarConst, Decls: []ast.Declarator{{Pattern: Id(name), Init: init}}}
}

// LetPattern builds a (possibly destructuring) single-declarator
// variable statement.
func LetPattern(pattern ast.Node, init ast.Node) *ast.VarDeclStmt {
	return &ast.VarDeclStmt{Kind: ast.VarLet, Decls: []ast.Declarator{{Pattern: pattern, Init: init}}}
}

func Ret(x ast.Node) *ast.ReturnStmt { return &ast.ReturnStmt{X: x} }

func Throw(x ast.Node) *ast.ThrowStmt { return &ast.ThrowStmt{X: x} }

func Call(callee ast.Node, args ...ast.Node) *ast.CallExpr {
	return &ast.CallExpr{Callee: callee, Args: args, Spread: make([]bool, len(args))}
}

func Bin(op ast.BinOp, x, y ast.Node) *ast.BinaryExpr { return &ast.BinaryExpr{Op: op, X: x, Y: y} }

func Un(op ast.UnaryOp, x ast.Node) *ast.UnaryExpr { return &ast.UnaryExpr{Op: op, X: x} }

func Assign(op string, target, value ast.Node) *ast.AssignExpr {
	return &ast.AssignExpr{Op: op, Target: target, Value: value}
}

func Member(x ast.Node, prop string) *ast.MemberExpr { return &ast.MemberExpr{X: x, Prop: Id(prop)} }

func Index(x, index ast.Node) *ast.MemberExpr {
	return &ast.MemberExpr{X: x, Prop: index, Computed: true}
}

func Cond(cond, then, els ast.Node) *ast.ConditionalExpr {
	return &ast.ConditionalExpr{Cond: cond, Then: then, Else: els}
}

func If(cond, then, els ast.Node) *ast.IfStmt { return &ast.IfStmt{Cond: cond, Then: then, Else: els} }

func While(label string, cond, body ast.Node) *ast.WhileStmt {
	return &ast.WhileStmt{Cond: cond, Body: body, Label: label}
}

func For(label string, init, cond, update, body ast.Node) *ast.ForStmt {
	return &ast.ForStmt{Init: init, Cond: cond, Update: update, Body: body, Label: label}
}

func ForOf(label string, decl, x, body ast.Node) *ast.ForOfStmt {
	return &ast.ForOfStmt{Decl: decl, X: x, Body: body, Label: label}
}

func ForIn(label string, decl, x, body ast.Node) *ast.ForInStmt {
	return &ast.ForInStmt{Decl: decl, X: x, Body: body, Label: label}
}

func Break(label string) *ast.BreakStmt       { return &ast.BreakStmt{Label: label} }
func Continue(label string) *ast.ContinueStmt { return &ast.ContinueStmt{Label: label} }

func Switch(tag ast.Node, cases ...ast.SwitchCase) *ast.SwitchStmt {
	return &ast.SwitchStmt{Tag: tag, Cases: cases}
}

func Case(test ast.Node, body ...ast.Node) ast.SwitchCase {
	return ast.SwitchCase{Test: test, Body: body}
}

func Try(block *ast.BlockStmt, catchParam string, catchBody, finally *ast.BlockStmt) *ast.TryStmt {
	t := &ast.TryStmt{Block: block, Finally: finally}
	if catchBody != nil {
		var param ast.Node
		if catchParam != "" {
			param = Id(catchParam)
		}
		t.Catch = &ast.CatchClause{Param: param, Body: catchBody}
	}
	return t
}

func New(callee ast.Node, args ...ast.Node) *ast.NewExpr { return &ast.NewExpr{Callee: callee, Args: args} }

func ArrayLit(elems ...ast.Node) *ast.ArrayLit { return &ast.ArrayLit{Elems: elems} }

func Spread(x ast.Node) *ast.SpreadExpr { return &ast.SpreadExpr{X: x} }

func Prop(key string, value ast.Node) ast.ObjectProp { return ast.ObjectProp{Key: key, Value: value} }

func ObjectLit(props ...ast.ObjectProp) *ast.ObjectLit { return &ast.ObjectLit{Props: props} }

// Class builds a statement-position class declaration. parent may be
// "" for a class with no `extends` clause.
func Class(name, parent string, members ...ast.ClassMember) *ast.ClassDecl {
	ce := &ast.ClassExpr{Name: name, Members: members}
	if parent != "" {
		ce.Parent = Id(parent)
	}
	return &ast.ClassDecl{Class: ce}
}

func Field(name string) ast.ClassMember {
	return ast.ClassMember{Kind: ast.MemberField, Name: name}
}

func Ctor(params []string, body ...ast.Node) ast.ClassMember {
	return ast.ClassMember{Kind: ast.MemberConstructor, Name: "constructor", Value: FuncExpr("constructor", params, body...)}
}

func Method(name string, params []string, body ...ast.Node) ast.ClassMember {
	return ast.ClassMember{Kind: ast.MemberMethod, Name: name, Value: FuncExpr(name, params, body...)}
}

func Getter(name string, body ...ast.Node) ast.ClassMember {
	return ast.ClassMember{Kind: ast.MemberGetter, Name: name, Value: FuncExpr(name, nil, body...)}
}

// ArrayPattern/ObjectPattern/Rest/Default build declaration-position
// destructuring patterns (§4.9).
func ArrayPattern(elems ...ast.Node) *ast.ArrayPattern { return &ast.ArrayPattern{Elems: elems} }

func ObjectPattern(rest string, props ...ast.ObjectPatternProp) *ast.ObjectPattern {
	return &ast.ObjectPattern{Props: props, Rest: rest}
}

func PatternProp(key string, value ast.Node) ast.ObjectPatternProp {
	return ast.ObjectPatternProp{Key: key, Value: value}
}

func Rest(name string) *ast.RestPattern { return &ast.RestPattern{Name: &ast.IdentPattern{Name: name}} }

func Default(target, def ast.Node) *ast.AssignPattern {
	return &ast.AssignPattern{Target: target, Default: def}
}
