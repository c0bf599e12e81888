// Package ast defines the syntax-tree node set that the HIR generator
// (package gen) consumes. The lexer and parser that produce these
// trees are external collaborators, out of scope for this repository;
// package internal/fixture builds ast.Node trees directly for tests
// and for the CLI driver, standing in for a real parser front end.
package ast

// Pos is a byte offset into the source text that produced a node.
// A zero Pos means "no position available" (synthetic node).
type Pos int

// Node is implemented by every syntax-tree node. Accept is the
// external dispatch entry point named in the interface contract;
// package gen also type-switches on concrete node types directly,
// which is the idiom used throughout this lowering pass.
type Node interface {
	Pos() Pos
	Accept(v Visitor)
}

// Visitor receives each node Walk visits. Implementations that only
// care about a handful of node kinds can type-switch inside Visit.
type Visitor interface {
	Visit(n Node)
}

// Walk visits n and, for container nodes, its children, calling
// v.Visit on each node encountered in left-to-right, depth-first
// order — the traversal order §5 requires instruction emission to
// follow.
func Walk(n Node, v Visitor) {
	if n == nil {
		return
	}
	n.Accept(v)
}

type inspector func(Node)

func (f inspector) Visit(n Node) { f(n) }

// Inspect calls f for n and each of its children in depth-first order.
func Inspect(n Node, f func(Node)) {
	Walk(n, inspector(f))
}

// Program is the root of a parsed compilation unit: a flat list of
// top-level statements and declarations, in source order.
type Program struct {
	P     Pos
	Stmts []Node
}

func (p *Program) Pos() Pos { return p.P }
func (p *Program) Accept(v Visitor) {
	v.Visit(p)
	for _, s := range p.Stmts {
		Walk(s, v)
	}
}
