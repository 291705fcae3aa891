package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.ContextTypeBinding != want.ContextTypeBinding || cfg.Format != want.Format || len(cfg.ImportPaths) != 0 {
		t.Fatalf("got %+v want default %+v", cfg, want)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	contents := `
context_type_binding = "Agent"
import_paths = ["lib", "shared"]

[format]
width = 100
indent = 4
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ContextTypeBinding != "Agent" {
		t.Fatalf("unexpected context type binding: %q", cfg.ContextTypeBinding)
	}
	if len(cfg.ImportPaths) != 2 || cfg.ImportPaths[0] != "lib" || cfg.ImportPaths[1] != "shared" {
		t.Fatalf("unexpected import paths: %v", cfg.ImportPaths)
	}
	if cfg.Format.Width != 100 || cfg.Format.Indent != 4 {
		t.Fatalf("unexpected format config: %+v", cfg.Format)
	}
}

func TestLoadPartialFileKeepsRemainingDefaults(t *testing.T) {
	dir := t.TempDir()
	contents := `
[format]
width = 120
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format.Width != 120 {
		t.Fatalf("unexpected width: %d", cfg.Format.Width)
	}
	if cfg.Format.Indent != Default().Format.Indent {
		t.Fatalf("expected default indent to survive, got %d", cfg.Format.Indent)
	}
	if cfg.ContextTypeBinding != Default().ContextTypeBinding {
		t.Fatalf("expected default context type binding to survive, got %q", cfg.ContextTypeBinding)
	}
}
