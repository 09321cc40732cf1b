package vm

import (
	"fmt"

	"github.com/rill-lang/rill/internal/diagnostics"
)

// numeric is the result of coercing a forced value to its effective
// numeric form for arithmetic/comparison (spec §4.4 "Type tag
// mixing"). isChar records whether the *source* value was a Char, so
// callers can decide the result tag.
type numeric struct {
	value  int64
	isChar bool
}

// coerceNumeric forces v and reduces it to a numeric operand: Int and
// Char pass through as their value, an ArrayRef coerces to its length
// (spec §4.4 "Array ref coerces to int as its length"). Anything else
// is a type error.
func (vm *VM) coerceNumeric(v Value) (numeric, error) {
	forced, err := vm.force(v)
	if err != nil {
		return numeric{}, err
	}
	switch forced.Kind {
	case KindInt:
		return numeric{value: int64(forced.AsInt())}, nil
	case KindChar:
		return numeric{value: int64(forced.AsChar()), isChar: true}, nil
	case KindArrayRef:
		return numeric{value: int64(len(vm.Heap.Array(forced.AsArrayID()).Slots))}, nil
	default:
		return numeric{}, diagnostics.New(diagnostics.KindNotNumeric, "value of kind %v is not numeric", forced.Kind)
	}
}

func (vm *VM) forceToInt(v Value) (int32, error) {
	n, err := vm.coerceNumeric(v)
	if err != nil {
		return 0, err
	}
	return int32(n.value), nil
}

// forceToNonNegInt is used by the lvalue engine for sizes/indices,
// which must be forced to a non-negative integer (spec §4.7
// "array-lvalue pops an index forced to a non-negative integer").
func (vm *VM) forceToNonNegInt(v Value) (int, error) {
	i, err := vm.forceToInt(v)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, diagnostics.New(diagnostics.KindBounds, "negative size or index: %d", i)
	}
	return int(i), nil
}

// arith applies a binary arithmetic operator with the char/int tag
// mixing rule of spec §4.4: Char<op>Int, Int<op>Char, and Char<op>Char
// all produce Char (wrapping modulo 2**32) for +, -, %; anything else
// (including * and / on mixed or char operands) produces plain Int.
func (vm *VM) arith(op string, left, right Value) (Value, error) {
	l, err := vm.coerceNumeric(left)
	if err != nil {
		return Value{}, err
	}
	r, err := vm.coerceNumeric(right)
	if err != nil {
		return Value{}, err
	}

	var result int64
	switch op {
	case "+":
		result = l.value + r.value
	case "-":
		result = l.value - r.value
	case "*":
		result = l.value * r.value
	case "/":
		if r.value == 0 {
			return Value{}, diagnostics.New(diagnostics.KindArithmeticFault, "division by zero")
		}
		result = l.value / r.value
	case "%":
		if r.value == 0 {
			return Value{}, diagnostics.New(diagnostics.KindArithmeticFault, "modulo by zero")
		}
		result = l.value % r.value
	default:
		return Value{}, diagnostics.New(diagnostics.KindInternal, "unknown arithmetic operator %q", op)
	}

	mixed := (op == "+" || op == "-" || op == "%") && (l.isChar || r.isChar)
	charResult := (l.isChar && r.isChar) || mixed
	if charResult {
		return CharVal(rune(uint32(result))), nil
	}
	return IntVal(int32(result)), nil
}

func (vm *VM) compare(op string, left, right Value) (Value, error) {
	l, err := vm.coerceNumeric(left)
	if err != nil {
		return Value{}, err
	}
	r, err := vm.coerceNumeric(right)
	if err != nil {
		return Value{}, err
	}
	var b bool
	switch op {
	case "==":
		b = l.value == r.value
	case "!=":
		b = l.value != r.value
	case "<":
		b = l.value < r.value
	case "<=":
		b = l.value <= r.value
	case ">":
		b = l.value > r.value
	case ">=":
		b = l.value >= r.value
	}
	if b {
		return IntVal(1), nil
	}
	return IntVal(0), nil
}

func truthy(n numeric) bool { return n.value != 0 }

func (vm *VM) logical(op string, left, right Value) (Value, error) {
	l, err := vm.coerceNumeric(left)
	if err != nil {
		return Value{}, err
	}
	r, err := vm.coerceNumeric(right)
	if err != nil {
		return Value{}, err
	}
	var b bool
	if op == "and" {
		b = truthy(l) && truthy(r)
	} else {
		b = truthy(l) || truthy(r)
	}
	if b {
		return IntVal(1), nil
	}
	return IntVal(0), nil
}

func (vm *VM) not(v Value) (Value, error) {
	n, err := vm.coerceNumeric(v)
	if err != nil {
		return Value{}, err
	}
	if truthy(n) {
		return IntVal(0), nil
	}
	return IntVal(1), nil
}

func (vm *VM) castInt(v Value) (Value, error) {
	i, err := vm.forceToInt(v)
	if err != nil {
		return Value{}, err
	}
	return IntVal(i), nil
}

func (vm *VM) castChar(v Value) (Value, error) {
	n, err := vm.coerceNumeric(v)
	if err != nil {
		return Value{}, err
	}
	return CharVal(rune(uint32(n.value))), nil
}

// printValue implements spec §4.4's printing rule: ints print decimal,
// chars print their UTF-8 rendering, an array prints as a string iff
// every element forces to a char, otherwise as its length.
func (vm *VM) printValue(v Value) (string, error) {
	forced, err := vm.force(v)
	if err != nil {
		return "", err
	}
	switch forced.Kind {
	case KindInt:
		return fmt.Sprintf("%d", forced.AsInt()), nil
	case KindChar:
		return string(forced.AsChar()), nil
	case KindArrayRef:
		arr := vm.Heap.Array(forced.AsArrayID())
		runes := make([]rune, 0, len(arr.Slots))
		allChars := true
		for _, slot := range arr.Slots {
			elem, err := vm.force(slot)
			if err != nil {
				return "", err
			}
			if elem.Kind != KindChar {
				allChars = false
				break
			}
			runes = append(runes, elem.AsChar())
		}
		if allChars {
			return string(runes), nil
		}
		return fmt.Sprintf("%d", len(arr.Slots)), nil
	default:
		return "", diagnostics.New(diagnostics.KindUnprintable, "value of kind %v cannot be printed", forced.Kind)
	}
}
