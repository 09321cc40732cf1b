package vm

import "github.com/rill-lang/rill/internal/diagnostics"

// installLazy implements spec §4.8's "Installation (freeze + capture)"
// step 2-3: walk the thunk's free-variable names and snapshot the ones
// that currently resolve in the immutable scope stack; names that
// resolve mutably (local or global) are left uncaptured so they are
// re-looked-up at force time.
func (vm *VM) installLazy(thunk *Thunk) *Lazy {
	captured := make(map[string]Value, len(thunk.FreeVars))
	for _, name := range thunk.FreeVars {
		for i := len(vm.Env.Immutable) - 1; i >= 0; i-- {
			if v, ok := vm.Env.Immutable[i][name]; ok {
				captured[name] = v
				break
			}
		}
	}
	return &Lazy{Thunk: thunk, Captured: captured}
}

// force implements spec §4.8's "Forcing (read time)" with no struct
// context: Lazy values run their thunk with only the captured frame
// installed, LValue values are read through one level and the result
// is forced again, everything else is returned unchanged.
func (vm *VM) force(v Value) (Value, error) {
	return vm.forceInStruct(v, -1)
}

// forceInStruct is force with an optional struct-field context: when
// structID is non-negative, a Lazy found at this call is given an
// additional innermost frame binding every field of that struct to
// LValue(StructField{...}) (spec §4.8 "Struct-field self-reference").
// This is how a reactive field body referring to a sibling by its bare
// name re-reads the sibling's current value on every force, and it
// always shadows a same-named outer capture because it is pushed as
// the innermost frame (resolved Open Question: "reactive struct fields
// always shadow").
func (vm *VM) forceInStruct(v Value, structID int) (Value, error) {
	switch v.Kind {
	case KindUninitialized:
		return Value{}, diagnostics.New(diagnostics.KindUninitializedField, "use of an uninitialized value")

	case KindLazy:
		lazy := v.AsLazy()
		saved := vm.Env.Immutable
		frames := make([]map[string]Value, len(saved), len(saved)+2)
		copy(frames, saved)
		frames = append(frames, copyValueMap(lazy.Captured))
		if structID >= 0 {
			inst := vm.Heap.Struct(structID)
			sibling := make(map[string]Value, len(inst.Fields))
			for name := range inst.Fields {
				sibling[name] = LValueVal(StructFieldPath(structID, name))
			}
			frames = append(frames, sibling)
		}
		vm.Env.Immutable = frames
		result, err := vm.execute(lazy.Thunk.Code)
		vm.Env.Immutable = saved
		if err != nil {
			return Value{}, err
		}
		return vm.force(result)

	case KindLValue:
		raw, ownerStructID, err := vm.readPath(v.AsPath())
		if err != nil {
			return Value{}, err
		}
		return vm.forceInStruct(raw, ownerStructID)

	default:
		return v, nil
	}
}

func copyValueMap(m map[string]Value) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
