package vm

import "github.com/rill-lang/rill/internal/diagnostics"

// The name-keyed store-index/field-set family from spec §4.1 is part
// of the "non-exhaustive but behaviorally complete" instruction set,
// but the compiler's assignment dispatch (spec §4.2) always lowers
// compound assignment through the general lvalue-path route instead
// (array-lvalue/field-lvalue + store-through*). These handlers keep
// the executor able to run the named shortcuts too. For store-index,
// `name` is the array variable, looked up in the environment, and the
// value and index are popped from the stack. For field-set, `name` is
// the field, and the value and then the struct base are popped.

func (vm *VM) execLegacyStoreIndex(name string) error {
	val, err := vm.pop()
	if err != nil {
		return err
	}
	idxVal, err := vm.pop()
	if err != nil {
		return err
	}
	base, ok := vm.Env.Lookup(name)
	if !ok {
		return diagnostics.New(diagnostics.KindUndefinedVariable, "undefined variable %q", name)
	}
	arrID, err := vm.resolveArrayBase(base)
	if err != nil {
		return err
	}
	idx, err := vm.forceToNonNegInt(idxVal)
	if err != nil {
		return err
	}
	stored, err := vm.forceToStorable(val)
	if err != nil {
		return err
	}
	return vm.storeToPath(ArrayElemPath(arrID, idx), stored)
}

func (vm *VM) execLegacyStoreIndexReactive(name string, thunk *Thunk) error {
	idxVal, err := vm.pop()
	if err != nil {
		return err
	}
	base, ok := vm.Env.Lookup(name)
	if !ok {
		return diagnostics.New(diagnostics.KindUndefinedVariable, "undefined variable %q", name)
	}
	arrID, err := vm.resolveArrayBase(base)
	if err != nil {
		return err
	}
	idx, err := vm.forceToNonNegInt(idxVal)
	if err != nil {
		return err
	}
	lazy := vm.installLazy(thunk)
	return vm.storeToPath(ArrayElemPath(arrID, idx), LazyVal(lazy))
}

func (vm *VM) execLegacyFieldSet(fieldName string) error {
	val, err := vm.pop()
	if err != nil {
		return err
	}
	base, err := vm.pop()
	if err != nil {
		return err
	}
	structID, err := vm.resolveStructBase(base)
	if err != nil {
		return err
	}
	stored, err := vm.forceToStorable(val)
	if err != nil {
		return err
	}
	return vm.storeToPath(StructFieldPath(structID, fieldName), stored)
}

func (vm *VM) execLegacyFieldSetReactive(fieldName string, thunk *Thunk) error {
	base, err := vm.pop()
	if err != nil {
		return err
	}
	structID, err := vm.resolveStructBase(base)
	if err != nil {
		return err
	}
	lazy := vm.installLazy(thunk)
	return vm.storeToPath(StructFieldPath(structID, fieldName), LazyVal(lazy))
}
