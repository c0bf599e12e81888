// Package intern deduplicates identifier and string-literal text seen
// during HIR generation (§4.2, §6 [EXPANDED]). Source text is
// NFC-normalized before interning so two differently-composed Unicode
// spellings of the same text (e.g. an "é" written as one code point
// versus "e" + a combining acute accent) collapse to the same constant,
// matching how a real front end's identifier table has to behave for
// Unicode source.
package intern

import (
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Table is a concurrency-safe string interning table. The zero value
// is ready to use.
type Table struct {
	mu     sync.RWMutex
	byText map[string]string
}

// Intern returns the canonical, NFC-normalized copy of s, storing it
// on first occurrence.
func (t *Table) Intern(s string) string {
	key := norm.NFC.String(s)

	t.mu.RLock()
	if v, ok := t.byText[key]; ok {
		t.mu.RUnlock()
		return v
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.byText == nil {
		t.byText = make(map[string]string)
	}
	if v, ok := t.byText[key]; ok {
		return v
	}
	t.byText[key] = key
	return key
}

// Len reports how many distinct strings t currently holds.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byText)
}
