package vm

import "fmt"

// Kind identifies which of the runtime value variants a Value holds
// (spec §3 "Runtime value").
type Kind uint8

const (
	KindInt Kind = iota
	KindChar
	KindArrayRef
	KindStructRef
	KindFunction
	KindLazy
	KindLValue
	KindUninitialized
)

// Value is a small tagged union, mirroring the teacher's stack-
// allocated Value struct: immediates live in Data, everything that
// needs more than one machine word boxes into Obj.
type Value struct {
	Kind Kind
	Data int64 // Int, Char (as code point), ArrayRef/StructRef id
	Obj  interface{}
}

func IntVal(i int32) Value         { return Value{Kind: KindInt, Data: int64(i)} }
func CharVal(r rune) Value         { return Value{Kind: KindChar, Data: int64(uint32(r))} }
func ArrayRefVal(id int) Value     { return Value{Kind: KindArrayRef, Data: int64(id)} }
func StructRefVal(id int) Value    { return Value{Kind: KindStructRef, Data: int64(id)} }
func FunctionVal(f *FunctionValue) Value { return Value{Kind: KindFunction, Obj: f} }
func LazyVal(l *Lazy) Value        { return Value{Kind: KindLazy, Obj: l} }
func LValueVal(p Path) Value       { return Value{Kind: KindLValue, Obj: p} }

var Uninitialized = Value{Kind: KindUninitialized}

func (v Value) AsInt() int32      { return int32(v.Data) }
func (v Value) AsChar() rune      { return rune(uint32(v.Data)) }
func (v Value) AsArrayID() int    { return int(v.Data) }
func (v Value) AsStructID() int   { return int(v.Data) }
func (v Value) AsFunction() *FunctionValue { return v.Obj.(*FunctionValue) }
func (v Value) AsLazy() *Lazy     { return v.Obj.(*Lazy) }
func (v Value) AsPath() Path      { return v.Obj.(Path) }

func (v Value) IsInt() bool           { return v.Kind == KindInt }
func (v Value) IsChar() bool          { return v.Kind == KindChar }
func (v Value) IsArrayRef() bool      { return v.Kind == KindArrayRef }
func (v Value) IsStructRef() bool     { return v.Kind == KindStructRef }
func (v Value) IsFunction() bool      { return v.Kind == KindFunction }
func (v Value) IsLazy() bool          { return v.Kind == KindLazy }
func (v Value) IsLValue() bool        { return v.Kind == KindLValue }
func (v Value) IsUninitialized() bool { return v.Kind == KindUninitialized }

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.AsInt())
	case KindChar:
		return fmt.Sprintf("%q", v.AsChar())
	case KindArrayRef:
		return fmt.Sprintf("array#%d", v.AsArrayID())
	case KindStructRef:
		return fmt.Sprintf("struct#%d", v.AsStructID())
	case KindFunction:
		return fmt.Sprintf("<fn %s>", v.AsFunction().Name)
	case KindLazy:
		return "<lazy>"
	case KindLValue:
		return "<lvalue>"
	case KindUninitialized:
		return "<uninitialized>"
	default:
		return "<?>"
	}
}

// PathKind distinguishes the two lvalue shapes (spec §3 "Path").
type PathKind uint8

const (
	PathArrayElem PathKind = iota
	PathStructField
)

// Path is a reified, transient assignment target. Paths live only on
// the operand stack; no storage slot may hold one (spec §3 invariant).
type Path struct {
	Kind     PathKind
	ArrayID  int
	Index    int
	StructID int
	Field    string
}

func ArrayElemPath(arrayID, index int) Path {
	return Path{Kind: PathArrayElem, ArrayID: arrayID, Index: index}
}

func StructFieldPath(structID int, field string) Path {
	return Path{Kind: PathStructField, StructID: structID, Field: field}
}
