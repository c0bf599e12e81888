package intern

import "testing"

func TestInternDedupesIdenticalText(t *testing.T) {
	var tbl Table
	a := tbl.Intern("hello")
	b := tbl.Intern("hello")
	if a != b {
		t.Fatalf("Intern(%q) twice produced distinct strings", "hello")
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}
}

// TestInternNormalizesUnicodeComposition builds the same visible text
// two ways: "e" + U+0301 (combining acute accent) vs. the single
// precomposed code point U+00E9, and checks both intern to one
// canonical form (NFC normalization).
func TestInternNormalizesUnicodeComposition(t *testing.T) {
	var tbl Table
	precomposed := "caf" + string(rune(0x00E9))
	decomposed := "caf" + "e" + string(rune(0x0301))
	if precomposed == decomposed {
		t.Fatal("test fixture strings must differ at the byte level")
	}
	if tbl.Intern(precomposed) != tbl.Intern(decomposed) {
		t.Error("two Unicode compositions of the same text should intern to one constant")
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (composed/decomposed forms should collapse)", tbl.Len())
	}
}

func TestLenCountsDistinctText(t *testing.T) {
	var tbl Table
	tbl.Intern("a")
	tbl.Intern("b")
	tbl.Intern("a")
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
}
