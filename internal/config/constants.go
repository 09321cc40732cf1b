// Package config holds package-level defaults that main and the module
// loader read at startup, overridable by environment variables the way
// the teacher's config package exposes them.
package config

import "os"

// Version is the current rillc version.
// Set at build time via -ldflags or by editing this file.
var Version = "0.1.0"

// SourceFileExt is the only recognized Rill source extension.
const SourceFileExt = ".rx"

// HasSourceExt returns true if path ends with the Rill source extension.
func HasSourceExt(path string) bool {
	return len(path) >= len(SourceFileExt) && path[len(path)-len(SourceFileExt):] == SourceFileExt
}

const defaultProjectDir = "project"

// ProjectDir returns the module resolution root: RILL_PROJECT_DIR if
// set, otherwise "project". A dotted import path "a.b.c" resolves to
// ProjectDir()/a/b/c.rx.
func ProjectDir() string {
	if v, ok := os.LookupEnv("RILL_PROJECT_DIR"); ok && v != "" {
		return v
	}
	return defaultProjectDir
}

// IsTestMode indicates the process is running under `go test`.
// Nothing in this module sets it, so it stays false unless a caller
// assigns it.
var IsTestMode = false
