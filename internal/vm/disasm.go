package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of chunk, grounded on
// the teacher's internal/vm/disasm.go shape (one line per instruction,
// offset + line number + mnemonic + operands). Rill's operands are
// simpler than the teacher's — constant-pool refs are always 2 bytes
// and jumps target named labels rather than byte deltas — so the
// per-opcode formatting collapses to a handful of shapes instead of
// the teacher's one-case-per-opcode table.
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstruction(&sb, chunk, offset)
	}
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	fmt.Fprintf(sb, "%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(sb, "%4d ", chunk.Lines[offset])
	}

	op := Opcode(chunk.Code[offset])
	switch op {
	case OP_CONST, OP_LOAD, OP_STORE_MUTABLE, OP_STORE_IMMUTABLE,
		OP_DEFINE_STRUCT, OP_NEW_STRUCT, OP_FIELD_GET, OP_FIELD_SET,
		OP_STORE_INDEX, OP_FIELD_LVALUE, OP_STORE_FUNCTION, OP_IMPORT,
		OP_STORE_THROUGH_REACTIVE:
		return constantInstruction(sb, op.String(), chunk, offset)

	case OP_JUMP, OP_JUMP_IF_ZERO:
		return labelInstruction(sb, op.String(), chunk, offset)

	case OP_LABEL:
		return labelDefInstruction(sb, chunk, offset)

	case OP_STORE_REACTIVE, OP_FIELD_SET_REACTIVE, OP_STORE_INDEX_REACTIVE:
		return nameAndThunkInstruction(sb, op.String(), chunk, offset)

	case OP_CALL:
		return callInstruction(sb, chunk, offset)

	case OP_PUSH_CHAR:
		r := rune(uint32(chunk.Code[offset+1])<<24 | uint32(chunk.Code[offset+2])<<16 |
			uint32(chunk.Code[offset+3])<<8 | uint32(chunk.Code[offset+4]))
		fmt.Fprintf(sb, "%-24s %q\n", "PUSH_CHAR", r)
		return offset + 5

	default:
		fmt.Fprintf(sb, "%s\n", op.String())
		return offset + 1
	}
}

func constantInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	idx := chunk.ReadConstRef(offset + 1)
	fmt.Fprintf(sb, "%-24s %4d '%s'\n", name, idx, constantRepr(chunk, idx))
	return offset + 3
}

func labelInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	idx := chunk.ReadConstRef(offset + 1)
	fmt.Fprintf(sb, "%-24s -> %s\n", name, constantRepr(chunk, idx))
	return offset + 3
}

func labelDefInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	idx := chunk.ReadConstRef(offset + 1)
	fmt.Fprintf(sb, "%s:\n", constantRepr(chunk, idx))
	return offset + 3
}

func nameAndThunkInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	nameIdx := chunk.ReadConstRef(offset + 1)
	thunkIdx := chunk.ReadConstRef(offset + 3)
	fmt.Fprintf(sb, "%-24s %4d '%s' (thunk %d)\n", name, nameIdx, constantRepr(chunk, nameIdx), thunkIdx)
	return offset + 5
}

func callInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	nameIdx := chunk.ReadConstRef(offset + 1)
	argc := chunk.Code[offset+3]
	fmt.Fprintf(sb, "%-24s %4d '%s' (argc %d)\n", "CALL", nameIdx, constantRepr(chunk, nameIdx), argc)
	return offset + 4
}

func constantRepr(chunk *Chunk, idx int) string {
	if idx < 0 || idx >= len(chunk.Constants) {
		return "(invalid)"
	}
	switch c := chunk.Constants[idx].(type) {
	case string:
		return c
	case Value:
		return c.String()
	case *Thunk:
		return "<thunk>"
	case *StructDef:
		return "struct " + c.Name
	case *FunctionValue:
		return "fn " + c.Name
	default:
		return fmt.Sprintf("%v", c)
	}
}
