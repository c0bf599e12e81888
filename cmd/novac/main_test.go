package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nova-lang/novac/gen"
)

func TestCompileAllCompilesEverySampleConcurrently(t *testing.T) {
	results, err := compileAll(sampleNames())
	if err != nil {
		t.Fatalf("compileAll: %v", err)
	}
	assert.Len(t, results, len(sampleNames()))
	for _, r := range results {
		if assert.NotNil(t, r, "every submitted module should produce a result") {
			assert.NotNil(t, r.module, "module %q should have compiled", r.name)
		}
	}
}

func TestCheckModuleConcurrentlyPassesOnWellFormedModule(t *testing.T) {
	module, diags := gen.Run("closures", sampleModules["closures"]())
	assert.Empty(t, diags.Items())
	errs := checkModuleConcurrently(context.Background(), module)
	assert.Empty(t, errs)
}

func TestRunRejectsUnknownSampleName(t *testing.T) {
	err := run([]string{"not-a-real-sample"})
	if err == nil {
		t.Fatal("expected an error for an unregistered sample name")
	}
}
