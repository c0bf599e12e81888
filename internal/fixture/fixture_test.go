package fixture

import (
	"testing"

	"github.com/nova-lang/novac/ast"
)

func TestFuncBuildsAProgramLoweringCanWalk(t *testing.T) {
	fn := Func("add", []string{"a", "b"}, Ret(Bin(ast.OpAdd, Id("a"), Id("b"))))
	if fn.Fn.Name != "add" {
		t.Fatalf("Fn.Name = %q, want %q", fn.Fn.Name, "add")
	}
	if len(fn.Fn.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(fn.Fn.Params))
	}
	if len(fn.Fn.Body.Stmts) != 1 {
		t.Fatalf("got %d body statements, want 1", len(fn.Fn.Body.Stmts))
	}
}

func TestClassBuildsMembersInOrder(t *testing.T) {
	c := Class("Point", "", Field("x"), Field("y"), Ctor([]string{"x", "y"}))
	if c.Class.Name != "Point" {
		t.Fatalf("Class.Name = %q, want %q", c.Class.Name, "Point")
	}
	if c.Class.Parent != nil {
		t.Fatal("a class built with parent=\"\" should have no Parent node")
	}
	if len(c.Class.Members) != 3 {
		t.Fatalf("got %d members, want 3", len(c.Class.Members))
	}
}

func TestClassWithParentSetsParentIdent(t *testing.T) {
	c := Class("Dog", "Animal")
	if c.Class.Parent == nil {
		t.Fatal("expected a Parent node when parent is non-empty")
	}
}
