package project

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"lowc/internal/codegen"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != "" || cfg.Codegen.Entry != "main" || cfg.Codegen.Start != "_start" || !cfg.Build.Cache {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Jobs() != runtime.GOMAXPROCS(0) {
		t.Fatalf("Jobs() = %d", cfg.Jobs())
	}
}

func TestLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `
[codegen]
entry = "begin"
while_condition = "stale"
target_triple = "x86_64-linux-gnu"

[build]
jobs = 3
cache = false
`)
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", nested)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != filepath.Join(root, ManifestName) {
		t.Fatalf("Path = %q", cfg.Path)
	}
	if cfg.Jobs() != 3 || cfg.Build.Cache {
		t.Fatalf("build = %+v", cfg.Build)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatal(err)
	}
	want := codegen.Options{Entry: "begin", Start: "_start", While: codegen.WhileStaleCondition, TargetTriple: "x86_64-linux-gnu"}
	if opts != want {
		t.Fatalf("Options() = %+v, want %+v", opts, want)
	}

	gotRoot, ok, err := FindProjectRoot(nested)
	if err != nil || !ok || gotRoot != root {
		t.Fatalf("FindProjectRoot = %q %v %v", gotRoot, ok, err)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name, content, want string
	}{
		{"while mode", "[codegen]\nwhile_condition = \"sometimes\"\n", "invalid while_condition"},
		{"unknown key", "[codegen]\nentrypoint = \"x\"\n", "unknown keys: codegen.entrypoint"},
		{"negative jobs", "[build]\njobs = -1\n", "[build].jobs"},
		{"same names", "[codegen]\nentry = \"go\"\nstart = \"go\"\n", "must differ"},
		{"syntax", "[codegen\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tt.content)
			_, err := Load(path, "")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}
