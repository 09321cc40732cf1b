package vm

import (
	"math"
	"strings"
	"testing"
)

// TestArrayCloneIsDisjointFromSource exercises spec §3's "no two
// values share an arena id except via deliberate clone" directly
// against Heap.CloneArray/CloneStruct.
func TestArrayCloneIsDisjointFromSource(t *testing.T) {
	h := NewHeap()
	id := h.NewArray(2)
	h.Array(id).Slots[0] = IntVal(1)

	cloneID := h.CloneArray(id)
	if cloneID == id {
		t.Fatalf("clone id %d must differ from source id %d", cloneID, id)
	}

	h.Array(cloneID).Slots[0] = IntVal(99)
	if got := h.Array(id).Slots[0].AsInt(); got != 1 {
		t.Errorf("mutating the clone changed the source array: got %d, want 1", got)
	}
}

func TestStructCloneIsDisjointFromSource(t *testing.T) {
	h := NewHeap()
	def := &StructDef{Name: "S"}
	id := h.NewStruct(def)
	h.Struct(id).Fields["a"] = IntVal(1)
	h.Struct(id).Immutable["a"] = true

	cloneID := h.CloneStruct(id)
	if cloneID == id {
		t.Fatalf("clone id %d must differ from source id %d", cloneID, id)
	}

	h.Struct(cloneID).Fields["a"] = IntVal(99)
	if got := h.Struct(id).Fields["a"].AsInt(); got != 1 {
		t.Errorf("mutating the clone changed the source struct: got %d, want 1", got)
	}
	if !h.Struct(cloneID).Immutable["a"] {
		t.Error("clone should carry over the source's immutability set")
	}
}

// TestStructFieldInitClonesAliasedArray exercises the same invariant
// end to end: a struct field initialized from an existing array
// binding must not alias that array (spec §3, §8).
func TestStructFieldInitClonesAliasedArray(t *testing.T) {
	src := `
struct S {
	a = arr
}
func main() {
	arr := array(2)
	arr[0] = 1
	s := struct S
	s.a[0] = 99
	println arr[0]
}
`
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "1" {
		t.Errorf("got %q, want 1 (struct field init must clone, not alias, the source array)", out)
	}
}

// TestReactiveValuePassedAsFunctionArgumentIsForced exercises spec
// §4.8's "function argument" rvalue-use context: a reactive binding
// passed as an argument must be resolved at call time, not left to
// drift with later mutations to its (uncaptured, mutable) dependency.
func TestReactiveValuePassedAsFunctionArgumentIsForced(t *testing.T) {
	src := `
func id(v) {
	return v
}
func main() {
	x = 1
	y ::= x + 1
	z := id(y)
	x = 100
	println z
}
`
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Errorf("got %q, want 2 (argument forced at call time, unaffected by the later x=100)", out)
	}
}

// TestCharArithmeticWrapsModulo2To32 exercises spec §4.4's char
// arithmetic wraparound rule directly on arith, since no source-level
// expression can overflow an int32 literal to demonstrate it.
func TestCharArithmeticWrapsModulo2To32(t *testing.T) {
	vm := New()
	result, err := vm.arith("+", CharVal(math.MaxInt32), CharVal(1))
	if err != nil {
		t.Fatalf("arith: %v", err)
	}
	if result.Kind != KindChar {
		t.Fatalf("got kind %v, want KindChar", result.Kind)
	}
	if got := result.AsChar(); got != math.MinInt32 {
		t.Errorf("got %d, want %d (MaxInt32+1 wraps to MinInt32 modulo 2**32)", got, math.MinInt32)
	}
}

// TestArraySizeZeroBoundary covers spec §3/§8's array-size-0 edge:
// allocation succeeds, indexing it is always out of bounds, and
// printing it (vacuously all-char over zero elements) yields the
// empty string rather than "0".
func TestArraySizeZeroBoundary(t *testing.T) {
	out, err := runSource(t, "func main() {\n\ta := array(0)\n\tprintln a\n}\n")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "\n" {
		t.Errorf("got %q, want just a newline (empty array prints as the empty string)", out)
	}
}

func TestArraySizeZeroIndexIsOutOfBounds(t *testing.T) {
	_, err := runSource(t, "func main() {\n\ta := array(0)\n\ta[0] = 1\n}\n")
	if err == nil {
		t.Fatal("expected an out-of-bounds error indexing a size-0 array")
	}
}
