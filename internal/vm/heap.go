package vm

// ArrayInstance is one allocated array: a slot vector plus the set of
// indices that have been made element-immutable via a one-shot write
// through a path (spec §3 "Array arena").
type ArrayInstance struct {
	Slots     []Value
	Immutable map[int]bool
}

// StructInstance is one allocated record: a field map plus the set of
// field names marked immutable (spec §3 "Record arena").
type StructInstance struct {
	TypeName  string
	Fields    map[string]Value
	Immutable map[string]bool
}

// Heap owns the array and struct arenas. Arenas grow monotonically;
// nothing is ever reclaimed (spec §3 "Lifecycles").
type Heap struct {
	Arrays  []*ArrayInstance
	Structs []*StructInstance
}

func NewHeap() *Heap {
	return &Heap{}
}

// NewArray allocates an array of the given size, every slot starting
// Uninitialized, and returns its id.
func (h *Heap) NewArray(size int) int {
	slots := make([]Value, size)
	for i := range slots {
		slots[i] = Uninitialized
	}
	h.Arrays = append(h.Arrays, &ArrayInstance{Slots: slots, Immutable: map[int]bool{}})
	return len(h.Arrays) - 1
}

func (h *Heap) Array(id int) *ArrayInstance { return h.Arrays[id] }

// NewStruct allocates an instance of def with every field
// Uninitialized. It runs no initializers; the VM's instantiateStruct
// runs each field's precompiled initializer afterwards.
func (h *Heap) NewStruct(def *StructDef) int {
	inst := &StructInstance{
		TypeName:  def.Name,
		Fields:    make(map[string]Value, len(def.Fields)),
		Immutable: map[string]bool{},
	}
	for _, f := range def.Fields {
		inst.Fields[f.Name] = Uninitialized
	}
	h.Structs = append(h.Structs, inst)
	return len(h.Structs) - 1
}

func (h *Heap) Struct(id int) *StructInstance { return h.Structs[id] }

// CloneArray deep-copies array id into a fresh array with a new id.
// The clone shares no storage with the original (spec §3 invariant),
// including its element-immutability set, but leaves any Lazy
// values' captured maps as-is (spec §4.8 "shallow over the captured
// map").
func (h *Heap) CloneArray(id int) int {
	src := h.Arrays[id]
	slots := make([]Value, len(src.Slots))
	copy(slots, src.Slots)
	immutable := make(map[int]bool, len(src.Immutable))
	for k, v := range src.Immutable {
		immutable[k] = v
	}
	h.Arrays = append(h.Arrays, &ArrayInstance{Slots: slots, Immutable: immutable})
	return len(h.Arrays) - 1
}

// CloneStruct deep-copies struct id into a fresh instance with a new id.
func (h *Heap) CloneStruct(id int) int {
	src := h.Structs[id]
	fields := make(map[string]Value, len(src.Fields))
	for k, v := range src.Fields {
		fields[k] = v
	}
	immutable := make(map[string]bool, len(src.Immutable))
	for k, v := range src.Immutable {
		immutable[k] = v
	}
	h.Structs = append(h.Structs, &StructInstance{TypeName: src.TypeName, Fields: fields, Immutable: immutable})
	return len(h.Structs) - 1
}
