package vm

import "github.com/rill-lang/rill/internal/diagnostics"

// Environment is the three-namespace binding model of spec §3/§4.5:
// a global mutable map, an optional per-call local mutable map, and a
// stack of one-shot immutable scope frames.
type Environment struct {
	Globals    map[string]Value
	StructDefs map[string]*StructDef

	// Locals is nil outside a function call; inside a call it holds
	// that call's mutable local bindings.
	Locals map[string]Value

	// Immutable is searched innermost-frame-first on every read.
	Immutable []map[string]Value
}

// NewEnvironment builds the top-level environment with its single
// root immutable frame. Popping this frame is a fatal internal error
// (spec §4.5 "popping the root frame is a fatal internal error").
func NewEnvironment() *Environment {
	return &Environment{
		Globals:    make(map[string]Value),
		StructDefs: make(map[string]*StructDef),
		Immutable:  []map[string]Value{make(map[string]Value)},
	}
}

// InFunction reports whether this environment is the local frame of
// an active call (vs. the top-level / module environment).
func (e *Environment) InFunction() bool { return e.Locals != nil }

// Lookup implements the read precedence of spec §4.5: innermost-to-
// outermost immutable frame, then the local map (if any), then global.
func (e *Environment) Lookup(name string) (Value, bool) {
	for i := len(e.Immutable) - 1; i >= 0; i-- {
		if v, ok := e.Immutable[i][name]; ok {
			return v, true
		}
	}
	if e.Locals != nil {
		if v, ok := e.Locals[name]; ok {
			return v, true
		}
	}
	if v, ok := e.Globals[name]; ok {
		return v, true
	}
	return Value{}, false
}

// immutableHolds reports whether name is bound in any immutable frame.
func (e *Environment) immutableHolds(name string) bool {
	for _, frame := range e.Immutable {
		if _, ok := frame[name]; ok {
			return true
		}
	}
	return false
}

// StoreMutable implements spec §4.5's store-mutable write policy.
func (e *Environment) StoreMutable(name string, v Value) error {
	if e.InFunction() {
		e.Locals[name] = v
		return nil
	}
	if e.immutableHolds(name) {
		return diagnostics.New(diagnostics.KindImmutableReassign,
			"cannot assign to immutable binding %q", name)
	}
	e.Globals[name] = v
	return nil
}

// StoreReactive applies the same mutability check as StoreMutable but
// always writes into the mutable map appropriate to the current scope
// (spec §4.5).
func (e *Environment) StoreReactive(name string, v Value) error {
	return e.StoreMutable(name, v)
}

// StoreImmutable writes into the top immutable frame, rejecting a
// redefinition within that same frame (spec §4.5, §8 "For every
// binding x := e in scope, every subsequent x = ... fails" and the
// redefinition invariant of §3).
func (e *Environment) StoreImmutable(name string, v Value) error {
	top := e.Immutable[len(e.Immutable)-1]
	if _, ok := top[name]; ok {
		return diagnostics.New(diagnostics.KindRedefinition,
			"immutable binding %q already declared in this scope", name)
	}
	top[name] = v
	return nil
}

// PushScope opens a new innermost immutable frame.
func (e *Environment) PushScope() {
	e.Immutable = append(e.Immutable, make(map[string]Value))
}

// PopScope discards the innermost immutable frame. Popping the root
// frame is a fatal internal error.
func (e *Environment) PopScope() error {
	if len(e.Immutable) <= 1 {
		return diagnostics.New(diagnostics.KindInternal, "cannot pop the root immutable scope")
	}
	e.Immutable = e.Immutable[:len(e.Immutable)-1]
	return nil
}

// ClearScope empties the top frame in place without changing scope
// depth, used by loops to re-arm one-shot immutable bindings on each
// iteration (spec §4.2, §4.5, glossary "Clear-immutable-scope").
func (e *Environment) ClearScope() {
	top := len(e.Immutable) - 1
	e.Immutable[top] = make(map[string]Value)
}

// PushFrame pushes a new innermost frame pre-populated with values,
// used when binding call parameters (spec §4.6 "a new child frame
// binding the parameter names to the argument values").
func (e *Environment) PushFrame(values map[string]Value) {
	if values == nil {
		values = make(map[string]Value)
	}
	e.Immutable = append(e.Immutable, values)
}
