// Package diag implements the error-handling design of §7: a
// recoverable diagnostic list for semantic errors (so generation can
// continue and report as many problems as possible in one run), plus
// a Fatal type for unsupported/internal errors that abort generation
// immediately.
//
// Wrapped errors use golang.org/x/xerrors, mirroring the teacher's own
// use of xerrors.Errorf across its caching and analysis layers for
// annotated, %w-chainable errors.
package diag

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Kind classifies a diagnostic per §7.
type Kind int

const (
	Semantic Kind = iota
	Unsupported
	Internal
)

func (k Kind) String() string {
	switch k {
	case Semantic:
		return "semantic"
	case Unsupported:
		return "unsupported"
	case Internal:
		return "internal"
	default:
		return "error"
	}
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Kind Kind
	Pos  int
	Msg  string
	Err  error // wrapped cause, if any
}

func (d *Diagnostic) Error() string {
	if d.Err != nil {
		return fmt.Sprintf("%s: %s: %v", d.Kind, d.Msg, d.Err)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Msg)
}

func (d *Diagnostic) Unwrap() error { return d.Err }

// List accumulates semantic diagnostics (§4.10, §7) without aborting
// generation, "maximizing reported errors per run".
type List struct {
	items []*Diagnostic
}

// Semanticf records a semantic-error diagnostic and returns it; the
// caller proceeds with a placeholder value per §4.10.
func (l *List) Semanticf(pos int, format string, args ...any) *Diagnostic {
	d := &Diagnostic{Kind: Semantic, Pos: pos, Msg: xerrors.Errorf(format, args...).Error()}
	l.items = append(l.items, d)
	return d
}

// Len reports how many diagnostics have been recorded.
func (l *List) Len() int { return len(l.items) }

// Items returns the recorded diagnostics in report order.
func (l *List) Items() []*Diagnostic { return l.items }

// HasErrors reports whether any diagnostic was recorded.
func (l *List) HasErrors() bool { return len(l.items) > 0 }

// Fatal is panicked for unsupported or internal errors (§7), which
// abort compilation rather than being merely recorded. The driver
// recovers it at the top level (cmd/novac).
type Fatal struct {
	Kind Kind
	Msg  string
	Err  error
}

func (f *Fatal) Error() string {
	if f.Err != nil {
		return xerrors.Errorf("%s: %s: %w", f.Kind, f.Msg, f.Err).Error()
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

func (f *Fatal) Unwrap() error { return f.Err }

// Abortf panics with an Unsupported Fatal, for AST constructs the core
// cannot lower (§7).
func Abortf(format string, args ...any) {
	panic(&Fatal{Kind: Unsupported, Msg: xerrors.Errorf(format, args...).Error()})
}

// Internalf panics with an Internal Fatal, for broken invariants
// (§7), e.g. a missing terminator where one was assumed to exist.
func Internalf(format string, args ...any) {
	panic(&Fatal{Kind: Internal, Msg: xerrors.Errorf(format, args...).Error()})
}

// Recover turns a recovered Fatal panic into an error; it re-panics
// anything else (a genuine bug, not a modeled failure mode).
func Recover(r any) error {
	if r == nil {
		return nil
	}
	if f, ok := r.(*Fatal); ok {
		return f
	}
	panic(r)
}
