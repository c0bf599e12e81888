// Package dump renders a compiled hir.Module as a Markdown report (and,
// via goldmark, as an HTML fragment) for the `-dump` CLI flag (§6
// [EXPANDED] C13). It is a debugging aid only — no part of generation
// depends on it.
package dump

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/yuin/goldmark"

	"github.com/nova-lang/novac/hir"
)

// Markdown renders m's functions, structs, and closure-capture table as
// a Markdown document.
func Markdown(m *hir.Module) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# Module `%s`\n\n", m.Name)

	if len(m.Structs) > 0 {
		fmt.Fprintln(&b, "## Structs")
		for _, st := range m.Structs {
			fmt.Fprintf(&b, "\n### `%s`\n\n", st.Name)
			if len(st.Fields) == 0 {
				fmt.Fprintln(&b, "_(no fields)_")
				continue
			}
			fmt.Fprintln(&b, "| # | field | type |")
			fmt.Fprintln(&b, "|---|---|---|")
			for i, f := range st.Fields {
				fmt.Fprintf(&b, "| %d | %s | %s |\n", i, f.Name, f.Type)
			}
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, "## Functions")
	for _, fn := range m.Functions {
		fmt.Fprintf(&b, "\n### `%s`\n\n", fn.Name())
		fmt.Fprintln(&b, "```")
		fn.DumpTo(&b)
		fmt.Fprintln(&b, "```")
	}

	if len(m.Externs) > 0 {
		fmt.Fprintln(&b, "\n## Externs")
		names := make([]string, 0, len(m.Externs))
		for name := range m.Externs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fn := m.Externs[name]
			fmt.Fprintf(&b, "- `%s` %s\n", name, fn.Type())
		}
	}

	if len(m.ClosureCapturedVars) > 0 {
		fmt.Fprintln(&b, "\n## Closures")
		names := make([]string, 0, len(m.ClosureCapturedVars))
		for name := range m.ClosureCapturedVars {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- `%s` captures: %v\n", name, m.ClosureCapturedVars[name])
		}
	}

	return b.String()
}

// HTML renders m's Markdown report to an HTML fragment via goldmark,
// for `-dump=html`.
func HTML(m *hir.Module) (string, error) {
	var out bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(m)), &out); err != nil {
		return "", fmt.Errorf("dump: render HTML: %w", err)
	}
	return out.String(), nil
}
