package vm

import (
	"fmt"
	"os"

	"github.com/rill-lang/rill/internal/diagnostics"
)

// execute runs chunk from offset zero until an OP_RETURN or the end of
// the code (a module chunk has no trailing OP_RETURN), using the
// shared operand stack (spec §5: nested invocations "run the executor
// on a swapped code/label context" — here realized as a Go-level
// recursive call so that calls, reactive forcing, and module import
// all funnel through this one fetch-decode-execute loop). The operand
// stack height at entry is this invocation's base height; on return,
// everything this invocation pushed above that height is discarded
// except a single produced value (spec §4.6).
func (vm *VM) execute(chunk *Chunk) (Value, error) {
	base := len(vm.stack)
	ip := 0

	finish := func() Value {
		var produced Value
		if len(vm.stack) > base {
			produced = vm.stack[len(vm.stack)-1]
		} else {
			produced = IntVal(0)
		}
		vm.stack = vm.stack[:base]
		return produced
	}

	for ip < len(chunk.Code) {
		op := Opcode(chunk.Code[ip])
		opIP := ip
		vm.lastChunk, vm.lastIP = chunk, opIP
		if vm.Debug {
			vm.traceStep(os.Stderr, chunk, opIP)
		}
		ip++

		switch op {
		case OP_CONST:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			vm.push(chunk.Constants[idx].(Value))

		case OP_PUSH_CHAR:
			r := uint32(chunk.Code[ip])<<24 | uint32(chunk.Code[ip+1])<<16 | uint32(chunk.Code[ip+2])<<8 | uint32(chunk.Code[ip+3])
			ip += 4
			vm.push(CharVal(rune(r)))

		case OP_LOAD:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			name := chunk.Constants[idx].(string)
			v, ok := vm.Env.Lookup(name)
			if !ok {
				return Value{}, vm.runtimeError(opIP, chunk, diagnostics.KindUndefinedVariable, "undefined variable %q", name)
			}
			vm.push(v)

		case OP_NEW_ARRAY:
			sizeVal, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			size, err := vm.forceToNonNegInt(sizeVal)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			id := vm.Heap.NewArray(size)
			vm.push(ArrayRefVal(id))

		case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD:
			right, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			left, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			result, err := vm.arith(arithSymbols[op], left, right)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			vm.push(result)

		case OP_EQ, OP_NEQ, OP_LT, OP_LE, OP_GT, OP_GE:
			right, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			left, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			result, err := vm.compare(compareSymbols[op], left, right)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			vm.push(result)

		case OP_AND, OP_OR:
			right, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			left, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			var result Value
			if op == OP_AND {
				result, err = vm.logical("and", left, right)
			} else {
				result, err = vm.logical("or", left, right)
			}
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			vm.push(result)

		case OP_NOT:
			v, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			result, err := vm.not(v)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			vm.push(result)

		case OP_STORE_MUTABLE:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			name := chunk.Constants[idx].(string)
			val, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			stored, err := vm.forceToStorable(val)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			if err := vm.Env.StoreMutable(name, stored); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_STORE_IMMUTABLE:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			name := chunk.Constants[idx].(string)
			val, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			stored, err := vm.forceToStorable(val)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			if err := vm.Env.StoreImmutable(name, stored); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_STORE_REACTIVE:
			nameIdx := chunk.ReadConstRef(ip)
			ip += 2
			thunkIdx := chunk.ReadConstRef(ip)
			ip += 2
			name := chunk.Constants[nameIdx].(string)
			thunk := chunk.Constants[thunkIdx].(*Thunk)
			lazy := vm.installLazy(thunk)
			if err := vm.Env.StoreReactive(name, LazyVal(lazy)); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_DEFINE_STRUCT:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			def := chunk.Constants[idx].(*StructDef)
			vm.Env.StructDefs[def.Name] = def

		case OP_NEW_STRUCT:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			name := chunk.Constants[idx].(string)
			def, ok := vm.Env.StructDefs[name]
			if !ok {
				return Value{}, vm.runtimeError(opIP, chunk, diagnostics.KindNotAStruct, "undefined struct %q", name)
			}
			id, err := vm.instantiateStruct(def)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			vm.push(StructRefVal(id))

		case OP_FIELD_GET:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			name := chunk.Constants[idx].(string)
			if err := vm.execFieldLvalue(name); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_FIELD_SET:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			name := chunk.Constants[idx].(string)
			if err := vm.execLegacyFieldSet(name); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_FIELD_SET_REACTIVE:
			nameIdx := chunk.ReadConstRef(ip)
			ip += 2
			thunkIdx := chunk.ReadConstRef(ip)
			ip += 2
			name := chunk.Constants[nameIdx].(string)
			thunk := chunk.Constants[thunkIdx].(*Thunk)
			if err := vm.execLegacyFieldSetReactive(name, thunk); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_ARRAY_GET:
			idxVal, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			baseVal, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			base, err := vm.force(baseVal)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			if base.Kind != KindArrayRef {
				return Value{}, vm.runtimeError(opIP, chunk, diagnostics.KindNotAnArray, "indexing a non-array value")
			}
			idx, err := vm.forceToNonNegInt(idxVal)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			arr := vm.Heap.Array(base.AsArrayID())
			if idx >= len(arr.Slots) {
				return Value{}, vm.runtimeError(opIP, chunk, diagnostics.KindBounds, "array index %d out of bounds", idx)
			}
			vm.push(arr.Slots[idx])

		case OP_STORE_INDEX:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			name := chunk.Constants[idx].(string)
			if err := vm.execLegacyStoreIndex(name); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_STORE_INDEX_REACTIVE:
			nameIdx := chunk.ReadConstRef(ip)
			ip += 2
			thunkIdx := chunk.ReadConstRef(ip)
			ip += 2
			name := chunk.Constants[nameIdx].(string)
			thunk := chunk.Constants[thunkIdx].(*Thunk)
			if err := vm.execLegacyStoreIndexReactive(name, thunk); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_ARRAY_LVALUE:
			if err := vm.execArrayLvalue(); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_FIELD_LVALUE:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			name := chunk.Constants[idx].(string)
			if err := vm.execFieldLvalue(name); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_STORE_THROUGH:
			if err := vm.execStoreThrough(); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_STORE_THROUGH_REACTIVE:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			thunk := chunk.Constants[idx].(*Thunk)
			if err := vm.execStoreThroughReactive(thunk); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_STORE_THROUGH_IMMUTABLE:
			if err := vm.execStoreThroughImmutable(); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_LABEL:
			ip += 2 // no-op at runtime; offsets already resolved

		case OP_JUMP:
			idx := chunk.ReadConstRef(ip)
			name := chunk.Constants[idx].(string)
			target, ok := chunk.Labels[name]
			if !ok {
				return Value{}, vm.runtimeError(opIP, chunk, diagnostics.KindInternal, "unresolved label %q", name)
			}
			ip = target

		case OP_JUMP_IF_ZERO:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			name := chunk.Constants[idx].(string)
			v, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			i, err := vm.forceToInt(v)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			if i == 0 {
				target, ok := chunk.Labels[name]
				if !ok {
					return Value{}, vm.runtimeError(opIP, chunk, diagnostics.KindInternal, "unresolved label %q", name)
				}
				ip = target
			}

		case OP_RETURN:
			return finish(), nil

		case OP_PUSH_IMMUTABLE_SCOPE:
			vm.Env.PushScope()

		case OP_POP_IMMUTABLE_SCOPE:
			if err := vm.Env.PopScope(); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_CLEAR_IMMUTABLE_SCOPE:
			vm.Env.ClearScope()

		case OP_PRINT, OP_PRINTLN:
			v, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			s, err := vm.printValue(v)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			if op == OP_PRINTLN {
				fmt.Fprintln(vm.Out, s)
			} else {
				fmt.Fprint(vm.Out, s)
			}

		case OP_STORE_FUNCTION:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			fn := chunk.Constants[idx].(*FunctionValue)
			vm.Env.Globals[fn.Name] = FunctionVal(fn)

		case OP_CALL:
			nameIdx := chunk.ReadConstRef(ip)
			ip += 2
			argc := int(chunk.Code[ip])
			ip++
			name := chunk.Constants[nameIdx].(string)
			result, err := vm.call(name, argc)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			vm.push(result)

		case OP_IMPORT:
			idx := chunk.ReadConstRef(ip)
			ip += 2
			path := chunk.Constants[idx].(string)
			if err := vm.execImport(path); err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}

		case OP_CAST_INT:
			v, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			result, err := vm.castInt(v)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			vm.push(result)

		case OP_CAST_CHAR:
			v, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			result, err := vm.castChar(v)
			if err != nil {
				return Value{}, vm.wrapf(opIP, chunk, err)
			}
			vm.push(result)

		case OP_POP:
			if _, err := vm.pop(); err != nil {
				return Value{}, err
			}

		case OP_DUP:
			v, err := vm.pop()
			if err != nil {
				return Value{}, err
			}
			vm.push(v)
			vm.push(v)

		default:
			return Value{}, vm.runtimeError(opIP, chunk, diagnostics.KindInternal, "unimplemented opcode %v", op)
		}
	}

	return finish(), nil
}

var arithSymbols = map[Opcode]string{
	OP_ADD: "+", OP_SUB: "-", OP_MUL: "*", OP_DIV: "/", OP_MOD: "%",
}

var compareSymbols = map[Opcode]string{
	OP_EQ: "==", OP_NEQ: "!=", OP_LT: "<", OP_LE: "<=", OP_GT: ">", OP_GE: ">=",
}

// wrapf anchors an error produced deeper in the call graph (which
// already carries its own Kind) to the position of the instruction
// that triggered it, unless it already has a position.
func (vm *VM) wrapf(ip int, chunk *Chunk, err error) error {
	if de, ok := err.(*diagnostics.Error); ok {
		if de.Line == 0 && ip >= 0 && ip < len(chunk.Lines) {
			de.Line, de.Column = chunk.Lines[ip], chunk.Columns[ip]
		}
		return de
	}
	return err
}
