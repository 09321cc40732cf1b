package vm

import (
	"fmt"
	"io"
	"os"

	petermattisgoid "github.com/petermattis/goid"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/diagnostics"
)

// VM is Rill's single, non-reentrant bytecode interpreter (spec §5:
// "single-threaded and non-reentrant at the public API"). One VM owns
// one operand stack, one Environment, and one Heap for the lifetime of
// a run; nested invocations (calls, reactive forcing, module
// execution) recurse through execute rather than maintaining their
// own stack, sharing this VM's operand stack and arenas throughout.
type VM struct {
	stack []Value

	Env  *Environment
	Heap *Heap
	Out  io.Writer

	compiler      *Compiler
	loader        ModuleRunner
	importedPaths map[string]bool

	Debug bool

	// lastChunk/lastIP track the most recently fetched instruction so
	// Run can hand DumpState enough context when an error escapes
	// arbitrarily deep in the recursive execute() call graph.
	lastChunk *Chunk
	lastIP    int

	creatorGoroutine int64
}

// ModuleRunner lets vm_calls.go drive module import without vm
// importing internal/modules directly: the loader only resolves and
// parses a module, and the VM itself runs the parsed program.
type ModuleRunner interface {
	Resolve(path string) (*ast.Program, error)
}

func New() *VM {
	return &VM{
		Env:              NewEnvironment(),
		Heap:             NewHeap(),
		Out:              os.Stdout,
		compiler:         NewCompiler(),
		importedPaths:    make(map[string]bool),
		creatorGoroutine: petermattisgoid.Get(),
	}
}

// SetLoader installs the module resolver used by OP_IMPORT.
func (vm *VM) SetLoader(l ModuleRunner) { vm.loader = l }

// assertSingleGoroutine is a reentrancy guard checked on every Run,
// whether or not Debug is set: this VM is
// documented single-threaded (spec §5), and a second goroutine
// reaching into it is always a caller bug, not a legitimate race to
// recover from.
func (vm *VM) assertSingleGoroutine() {
	if g := petermattisgoid.Get(); g != vm.creatorGoroutine {
		panic(fmt.Sprintf("vm: accessed from goroutine %d, created on %d", g, vm.creatorGoroutine))
	}
}

// Run compiles and executes a full program (spec §4.2's program entry
// point: statements in source order plus an implicit call to main).
func (vm *VM) Run(prog *ast.Program) error {
	vm.assertSingleGoroutine()
	chunk, err := vm.compiler.CompileProgram(prog)
	if err != nil {
		return err
	}
	_, err = vm.execute(chunk)
	if err != nil && vm.Debug {
		vm.DumpState(os.Stderr, vm.lastChunk, vm.lastIP, err)
	}
	return err
}

// RunModule compiles and executes a program in module mode, leaving
// whatever globals/structs/functions it installs in vm.Env (spec §4.6
// "Modules").
func (vm *VM) RunModule(prog *ast.Program) error {
	chunk, err := vm.compiler.CompileModule(prog)
	if err != nil {
		return err
	}
	_, err = vm.execute(chunk)
	return err
}

func (vm *VM) push(v Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() (Value, error) {
	if len(vm.stack) == 0 {
		return Value{}, diagnostics.New(diagnostics.KindInternal, "operand stack underflow")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) peek() Value { return vm.stack[len(vm.stack)-1] }

func (vm *VM) runtimeError(ip int, chunk *Chunk, kind diagnostics.Kind, format string, args ...interface{}) error {
	line, col := 0, 0
	if ip >= 0 && ip < len(chunk.Lines) {
		line, col = chunk.Lines[ip], chunk.Columns[ip]
	}
	return diagnostics.At(kind, line, col, format, args...)
}
