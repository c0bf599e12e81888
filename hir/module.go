package hir

// This file defines Module (§3.4 C3): the registry of functions,
// struct definitions, closure metadata, and external-function
// declarations a compilation unit produces, grounded on
// ssa.Program/ssa.Package (ssa/ssa.go) collapsed into a single
// registry since this pipeline compiles one module at a time (§5).
type Module struct {
	Name string

	Functions []*Function
	Structs   []*Struct

	// ClosureEnvironments maps a nested function's name to the
	// environment struct type its trailing __env parameter expects
	// (§3.4, §4.6).
	ClosureEnvironments map[string]*Struct

	// ClosureCapturedVars maps a nested function's name to its
	// captured free-variable names, in the order they were first
	// referenced (§3.4, §4.6). This is preserved for the module's
	// lifetime; a downstream MIR stage reads it to populate each
	// closure's environment at allocation time.
	ClosureCapturedVars map[string][]string

	// ClosureCapturedVarValues holds, for the same key, the parent-
	// scope Value snapshot taken at the moment each variable was
	// captured (§3.6) — the value a downstream stage stores into the
	// environment struct at the call site that builds the closure.
	ClosureCapturedVarValues map[string][]Value

	// Externs holds external-function declarations created on demand
	// to name runtime helpers (§3.4, §6); no body, referenced by call
	// sites by name.
	Externs map[string]*Function
}

// NewModule returns an empty module named name.
func NewModule(name string) *Module {
	return &Module{
		Name:                     name,
		ClosureEnvironments:      make(map[string]*Struct),
		ClosureCapturedVars:      make(map[string][]string),
		ClosureCapturedVarValues: make(map[string][]Value),
		Externs:                  make(map[string]*Function),
	}
}

// AddFunction registers fn with the module.
func (m *Module) AddFunction(fn *Function) { m.Functions = append(m.Functions, fn) }

// AddStruct registers st with the module.
func (m *Module) AddStruct(st *Struct) { m.Structs = append(m.Structs, st) }

// Extern returns the external declaration named name, creating it
// (with the given signature) on first reference (§3.4, §6).
func (m *Module) Extern(name string, params []Type, ret Type) *Function {
	if fn, ok := m.Externs[name]; ok {
		return fn
	}
	fn := &Function{Name_: name, ReturnType: ret, Linkage: LinkageExternal}
	for i, p := range params {
		fn.addParam(paramName(i), p)
	}
	m.Externs[name] = fn
	return fn
}

func paramName(i int) string {
	return "arg" + itoa(int64(i))
}
