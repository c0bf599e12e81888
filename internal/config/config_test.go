package config

import (
	"strings"
	"testing"
)

func TestLoadValidConfig(t *testing.T) {
	r := strings.NewReader(`{"target":"app","compilerVersion":"v0.1.0","dumpFormat":"markdown"}`)
	c, err := Load(r)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Target != "app" {
		t.Errorf("Target = %q, want %q", c.Target, "app")
	}
}

func TestLoadRejectsEmptyTarget(t *testing.T) {
	r := strings.NewReader(`{"compilerVersion":"v0.1.0"}`)
	if _, err := Load(r); err == nil {
		t.Fatal("expected an error for an empty target")
	}
}

func TestLoadRejectsBadDumpFormat(t *testing.T) {
	r := strings.NewReader(`{"target":"app","dumpFormat":"xml"}`)
	if _, err := Load(r); err == nil {
		t.Fatal("expected an error for an unsupported dumpFormat")
	}
}

func TestSatisfiesIsAMinimumVersionCheck(t *testing.T) {
	c := &Config{Target: "app", CompilerVersion: "v0.2.0"}
	if c.Satisfies("v0.1.0") {
		t.Error("v0.1.0 should not satisfy a v0.2.0 minimum")
	}
	if !c.Satisfies("v0.2.0") {
		t.Error("v0.2.0 should satisfy a v0.2.0 minimum")
	}
	if !c.Satisfies("v0.3.0") {
		t.Error("v0.3.0 should satisfy a v0.2.0 minimum")
	}
}

func TestSatisfiesWithNoConstraintAlwaysTrue(t *testing.T) {
	c := &Config{Target: "app"}
	if !c.Satisfies("v0.0.1") {
		t.Error("an empty CompilerVersion constraint should accept anything")
	}
}
