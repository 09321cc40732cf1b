package vm

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/diagnostics"
)

// call implements spec §4.6's "Call": pop argc values in reverse
// order, look up a Function in the global map, build a fresh call
// frame (new local map, a two-frame immutable stack: a copy of the
// program's base immutable frame plus a child frame of bound
// parameters), compile the body on demand, and execute it. A function
// argument is one of spec §4.8's rvalue-use contexts, so every
// argument is forced before it is bound to its parameter name.
func (vm *VM) call(name string, argc int) (Value, error) {
	args := make([]Value, argc)
	for i := argc - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	for i, v := range args {
		forced, err := vm.force(v)
		if err != nil {
			return Value{}, err
		}
		args[i] = forced
	}

	fnVal, ok := vm.Env.Globals[name]
	if !ok || fnVal.Kind != KindFunction {
		return Value{}, diagnostics.New(diagnostics.KindNotAFunction, "%q is not a function", name)
	}
	fn := fnVal.AsFunction()
	if len(fn.Params) != argc {
		return Value{}, diagnostics.New(diagnostics.KindInternal,
			"function %q expects %d argument(s), got %d", name, len(fn.Params), argc)
	}

	if fn.Code == nil {
		code, err := vm.compiler.compileFunctionBody(fn.Body, "")
		if err != nil {
			return Value{}, err
		}
		fn.Code = code
		fn.Body = nil
	}

	paramFrame := make(map[string]Value, len(fn.Params))
	for i, p := range fn.Params {
		paramFrame[p] = args[i]
	}
	baseFrame := copyValueMap(vm.Env.Immutable[0])

	savedLocals := vm.Env.Locals
	savedImmutable := vm.Env.Immutable
	vm.Env.Locals = make(map[string]Value)
	vm.Env.Immutable = []map[string]Value{baseFrame, paramFrame}

	result, err := vm.execute(fn.Code)
	if err == nil {
		// A call's result is itself an rvalue-use context (spec §4.8):
		// force it while the function's own frame is still active, so
		// a returned value can still resolve free names that only live
		// in that frame (an escaping reference to a dead local frame
		// correctly fails as undefined, matching force's own rule).
		result, err = vm.force(result)
	}

	vm.Env.Locals = savedLocals
	vm.Env.Immutable = savedImmutable

	if err != nil {
		return Value{}, err
	}
	return result, nil
}

// instantiateStruct implements struct instantiation: allocate the
// instance (every field starts Uninitialized), then run each field's
// initializer in declaration order. A mutable- or immutable-init field
// runs its initializer code immediately as ordinary bytecode; an
// immutable-init field is additionally locked right away, since its
// mode is "frozen at instantiation" (spec §3). A reactive-init field
// installs a Lazy without locking it — later plain assignment to it
// is legal, matching concrete scenario 4 (`r.a = 9` beside `b ::= a+1`).
func (vm *VM) instantiateStruct(def *StructDef) (int, error) {
	id := vm.Heap.NewStruct(def)
	inst := vm.Heap.Struct(id)

	for _, f := range def.Fields {
		if !f.HasInit {
			continue
		}
		switch f.Mode {
		case ast.OpReactive:
			lazy := vm.installLazy(f.InitThunk)
			inst.Fields[f.Name] = LazyVal(lazy)
		case ast.OpImmutable:
			val, err := vm.execute(f.InitCode)
			if err != nil {
				return 0, err
			}
			stored, err := vm.forceToStorable(val)
			if err != nil {
				return 0, err
			}
			inst.Fields[f.Name] = vm.cloneIfArena(stored)
			inst.Immutable[f.Name] = true
		default: // ast.OpMutable
			val, err := vm.execute(f.InitCode)
			if err != nil {
				return 0, err
			}
			stored, err := vm.forceToStorable(val)
			if err != nil {
				return 0, err
			}
			inst.Fields[f.Name] = vm.cloneIfArena(stored)
		}
	}
	return id, nil
}

// cloneIfArena implements spec §3's "no two values share an arena id
// except via deliberate clone" for a mutable- or immutable-init struct
// field: an initializer that evaluates to an existing array/struct
// reference (e.g. `struct S { a = arr }`) gets its own disjoint arena
// id here, rather than aliasing the source, matching the ground
// truth's clone_value call at the same instantiation site.
func (vm *VM) cloneIfArena(v Value) Value {
	switch v.Kind {
	case KindArrayRef:
		return ArrayRefVal(vm.Heap.CloneArray(v.AsArrayID()))
	case KindStructRef:
		return StructRefVal(vm.Heap.CloneStruct(v.AsStructID()))
	default:
		return v
	}
}

// execImport implements spec §4.6's "Modules": memoized by path, first
// encounter resolves and runs the module's top level in module mode.
func (vm *VM) execImport(path string) error {
	if vm.importedPaths[path] {
		return nil
	}
	if vm.loader == nil {
		return diagnostics.New(diagnostics.KindModuleError, "no module loader configured")
	}
	prog, err := vm.loader.Resolve(path)
	if err != nil {
		return diagnostics.New(diagnostics.KindModuleError, "cannot load module %q: %v", path, err)
	}
	vm.importedPaths[path] = true
	return vm.RunModule(prog)
}
