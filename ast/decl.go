package ast

// This file defines declaration nodes (§6): function, class,
// interface, type-alias, enum, import, and export declarations.
// Interface/type-alias/enum/import/export carry no HIR (they are
// erased or handled upstream of the core, per §1 Non-goals), but are
// part of the node set a real parser emits, so gen's top-level
// dispatch type-switches against them exhaustively and ignores them
// explicitly rather than panicking on an unrecognized node.

// FunctionDecl is a named, statement-position function declaration.
type FunctionDecl struct {
	P    Pos
	Fn   *FunctionExpr
}

func (n *FunctionDecl) Pos() Pos        { return n.P }
func (n *FunctionDecl) Accept(v Visitor) { v.Visit(n); Walk(n.Fn, v) }

// ClassDecl is a named, statement-position class declaration.
type ClassDecl struct {
	P     Pos
	Class *ClassExpr
}

func (n *ClassDecl) Pos() Pos        { return n.P }
func (n *ClassDecl) Accept(v Visitor) { v.Visit(n); Walk(n.Class, v) }

// InterfaceDecl, TypeAliasDecl, EnumDecl, ImportDecl, ExportDecl are
// erased before/around HIR generation; gen visits and ignores them.
type InterfaceDecl struct {
	P    Pos
	Name string
}

func (n *InterfaceDecl) Pos() Pos        { return n.P }
func (n *InterfaceDecl) Accept(v Visitor) { v.Visit(n) }

type TypeAliasDecl struct {
	P    Pos
	Name string
}

func (n *TypeAliasDecl) Pos() Pos        { return n.P }
func (n *TypeAliasDecl) Accept(v Visitor) { v.Visit(n) }

type EnumMember struct {
	Name  string
	Value Node // optional explicit value
}

type EnumDecl struct {
	P       Pos
	Name    string
	Members []EnumMember
}

func (n *EnumDecl) Pos() Pos        { return n.P }
func (n *EnumDecl) Accept(v Visitor) { v.Visit(n) }

type ImportDecl struct {
	P    Pos
	Path string
}

func (n *ImportDecl) Pos() Pos        { return n.P }
func (n *ImportDecl) Accept(v Visitor) { v.Visit(n) }

type ExportDecl struct {
	P    Pos
	Decl Node
}

func (n *ExportDecl) Pos() Pos        { return n.P }
func (n *ExportDecl) Accept(v Visitor) { v.Visit(n); Walk(n.Decl, v) }
