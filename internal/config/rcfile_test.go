package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRCFileMissingIsNotAnError(t *testing.T) {
	rc, err := LoadRCFile(t.TempDir())
	if err != nil {
		t.Fatalf("LoadRCFile: %v", err)
	}
	if rc.Debug || rc.ProjectDir != "" {
		t.Errorf("got %+v, want zero value", rc)
	}
}

func TestLoadRCFileParsesYAML(t *testing.T) {
	dir := t.TempDir()
	content := "debug: true\nprojectDir: examples\n"
	if err := os.WriteFile(filepath.Join(dir, RCFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rc, err := LoadRCFile(dir)
	if err != nil {
		t.Fatalf("LoadRCFile: %v", err)
	}
	if !rc.Debug {
		t.Error("got Debug=false, want true")
	}
	if rc.ProjectDir != "examples" {
		t.Errorf("got ProjectDir=%q, want examples", rc.ProjectDir)
	}
}

func TestLoadRCFileRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, RCFileName), []byte("debug: [this is not a bool"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadRCFile(dir); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
