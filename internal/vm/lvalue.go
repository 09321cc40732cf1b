package vm

import "github.com/rill-lang/rill/internal/diagnostics"

// resolveArrayBase reduces an array-lvalue base to a concrete array id
// (spec §4.7: the base may be an array ref, a nested ArrayElem path
// whose slot holds an array ref, or a StructField path whose current
// value is an array ref).
func (vm *VM) resolveArrayBase(base Value) (int, error) {
	switch base.Kind {
	case KindArrayRef:
		return base.AsArrayID(), nil
	case KindLValue:
		forced, err := vm.force(base)
		if err != nil {
			return 0, err
		}
		if forced.Kind != KindArrayRef {
			return 0, diagnostics.New(diagnostics.KindNotAnArray, "lvalue base is not an array")
		}
		return forced.AsArrayID(), nil
	default:
		return 0, diagnostics.New(diagnostics.KindNotAnArray, "lvalue base is not an array")
	}
}

// resolveStructBase reduces a field-lvalue base to a concrete struct id.
func (vm *VM) resolveStructBase(base Value) (int, error) {
	switch base.Kind {
	case KindStructRef:
		return base.AsStructID(), nil
	case KindLValue:
		forced, err := vm.force(base)
		if err != nil {
			return 0, err
		}
		if forced.Kind != KindStructRef {
			return 0, diagnostics.New(diagnostics.KindNotAStruct, "lvalue base is not a struct")
		}
		return forced.AsStructID(), nil
	default:
		return 0, diagnostics.New(diagnostics.KindNotAStruct, "lvalue base is not a struct")
	}
}

// execArrayLvalue implements OP_ARRAY_LVALUE: pop index then base,
// push the resulting ArrayElem path.
func (vm *VM) execArrayLvalue() error {
	idxVal, err := vm.pop()
	if err != nil {
		return err
	}
	base, err := vm.pop()
	if err != nil {
		return err
	}
	idx, err := vm.forceToNonNegInt(idxVal)
	if err != nil {
		return err
	}
	arrID, err := vm.resolveArrayBase(base)
	if err != nil {
		return err
	}
	vm.push(LValueVal(ArrayElemPath(arrID, idx)))
	return nil
}

// execFieldLvalue implements OP_FIELD_LVALUE(name): pop base, push the
// resulting StructField path.
func (vm *VM) execFieldLvalue(name string) error {
	base, err := vm.pop()
	if err != nil {
		return err
	}
	structID, err := vm.resolveStructBase(base)
	if err != nil {
		return err
	}
	vm.push(LValueVal(StructFieldPath(structID, name)))
	return nil
}

// forceToStorable implements spec §4.7's "value is forced-to-storable"
// rule, applied to every write regardless of which store-* instruction
// performs it (the executor-wide invariant from spec §9: "no storage
// slot may hold a path"). An incoming LValue is dereferenced one level
// (not fully forced, so a Lazy underneath survives); anything else,
// including a Lazy, is stored as-is.
func (vm *VM) forceToStorable(v Value) (Value, error) {
	if v.Kind != KindLValue {
		return v, nil
	}
	raw, _, err := vm.readPath(v.AsPath())
	if err != nil {
		return Value{}, err
	}
	return raw, nil
}

// readPath reads the raw (unforced) value currently stored at path,
// along with the struct id to use for struct-field-aware forcing if
// the caller goes on to force the result (spec §4.8 "a struct-field
// read re-enters struct-field forcing").
func (vm *VM) readPath(p Path) (Value, int, error) {
	switch p.Kind {
	case PathArrayElem:
		arr := vm.Heap.Array(p.ArrayID)
		if p.Index < 0 || p.Index >= len(arr.Slots) {
			return Value{}, -1, diagnostics.New(diagnostics.KindBounds, "array index %d out of bounds", p.Index)
		}
		return arr.Slots[p.Index], -1, nil
	case PathStructField:
		inst := vm.Heap.Struct(p.StructID)
		val, ok := inst.Fields[p.Field]
		if !ok {
			return Value{}, -1, diagnostics.New(diagnostics.KindUnknownField, "unknown field %q", p.Field)
		}
		return val, p.StructID, nil
	default:
		return Value{}, -1, diagnostics.New(diagnostics.KindInternal, "unknown path kind %v", p.Kind)
	}
}

// storeToPath writes v into the location named by p, enforcing the
// immutability permission checks of spec §4.7.
func (vm *VM) storeToPath(p Path, v Value) error {
	switch p.Kind {
	case PathArrayElem:
		arr := vm.Heap.Array(p.ArrayID)
		if p.Index < 0 || p.Index >= len(arr.Slots) {
			return diagnostics.New(diagnostics.KindBounds, "array index %d out of bounds", p.Index)
		}
		if arr.Immutable[p.Index] {
			return diagnostics.New(diagnostics.KindImmutableIndex, "array index %d is element-immutable", p.Index)
		}
		arr.Slots[p.Index] = v
		return nil
	case PathStructField:
		inst := vm.Heap.Struct(p.StructID)
		if _, ok := inst.Fields[p.Field]; !ok {
			return diagnostics.New(diagnostics.KindUnknownField, "unknown field %q", p.Field)
		}
		if inst.Immutable[p.Field] {
			return diagnostics.New(diagnostics.KindImmutableField, "field %q is immutable", p.Field)
		}
		inst.Fields[p.Field] = v
		return nil
	default:
		return diagnostics.New(diagnostics.KindInternal, "unknown path kind %v", p.Kind)
	}
}

// storeToPathOnce implements store-through-immutable: writes once,
// then marks the slot immutable; a second attempt fails (spec §4.7).
func (vm *VM) storeToPathOnce(p Path, v Value) error {
	switch p.Kind {
	case PathArrayElem:
		arr := vm.Heap.Array(p.ArrayID)
		if p.Index < 0 || p.Index >= len(arr.Slots) {
			return diagnostics.New(diagnostics.KindBounds, "array index %d out of bounds", p.Index)
		}
		if arr.Immutable[p.Index] {
			return diagnostics.New(diagnostics.KindImmutableIndex, "array index %d already initialized immutably", p.Index)
		}
		arr.Slots[p.Index] = v
		arr.Immutable[p.Index] = true
		return nil
	case PathStructField:
		inst := vm.Heap.Struct(p.StructID)
		if _, ok := inst.Fields[p.Field]; !ok {
			return diagnostics.New(diagnostics.KindUnknownField, "unknown field %q", p.Field)
		}
		if inst.Immutable[p.Field] {
			return diagnostics.New(diagnostics.KindImmutableField, "field %q already initialized immutably", p.Field)
		}
		inst.Fields[p.Field] = v
		inst.Immutable[p.Field] = true
		return nil
	default:
		return diagnostics.New(diagnostics.KindInternal, "unknown path kind %v", p.Kind)
	}
}

// execStoreThrough implements OP_STORE_THROUGH: pop value then
// target, force-to-storable the value, write it through the path.
func (vm *VM) execStoreThrough() error {
	val, err := vm.pop()
	if err != nil {
		return err
	}
	target, err := vm.pop()
	if err != nil {
		return err
	}
	if target.Kind != KindLValue {
		return diagnostics.New(diagnostics.KindInternal, "store-through target is not a path")
	}
	stored, err := vm.forceToStorable(val)
	if err != nil {
		return err
	}
	return vm.storeToPath(target.AsPath(), stored)
}

// execStoreThroughReactive implements OP_STORE_THROUGH_REACTIVE(thunk):
// pop target only, install a fresh Lazy built from the thunk.
func (vm *VM) execStoreThroughReactive(thunk *Thunk) error {
	target, err := vm.pop()
	if err != nil {
		return err
	}
	if target.Kind != KindLValue {
		return diagnostics.New(diagnostics.KindInternal, "store-through-reactive target is not a path")
	}
	lazy := vm.installLazy(thunk)
	return vm.storeToPath(target.AsPath(), LazyVal(lazy))
}

// execStoreThroughImmutable implements OP_STORE_THROUGH_IMMUTABLE: pop
// value then target, write-once-then-lock.
func (vm *VM) execStoreThroughImmutable() error {
	val, err := vm.pop()
	if err != nil {
		return err
	}
	target, err := vm.pop()
	if err != nil {
		return err
	}
	if target.Kind != KindLValue {
		return diagnostics.New(diagnostics.KindInternal, "store-through-immutable target is not a path")
	}
	stored, err := vm.forceToStorable(val)
	if err != nil {
		return err
	}
	return vm.storeToPathOnce(target.AsPath(), stored)
}
