// Package modules resolves Rill's dotted import paths to on-disk .rx
// files and parses each at most once per Loader, implementing the
// vm.ModuleRunner interface; running a parsed module, once per
// distinct path, is done by the VM's own import memo (spec.md §4.6
// "module import extends the global map exactly once per distinct
// module path"). The shape (a small Loader with a path-keyed cache) is
// grounded on the teacher's internal/modules/loader.go; the teacher's
// multi-file-package and virtual-standard-library machinery does not
// survive here, since Rill has no type system and no built-in library
// packages to resolve (see DESIGN.md for the justification).
package modules

import (
	"github.com/google/uuid"

	"github.com/rill-lang/rill/internal/ast"
)

// Module is one resolved .rx file: its parsed program plus a per-load
// session id, purely for debug tracing of which load populated a
// cache entry (not named by spec.md; see SPEC_FULL.md's domain-stack
// wiring for google/uuid).
type Module struct {
	Path      string
	File      string
	Program   *ast.Program
	SessionID uuid.UUID
}
