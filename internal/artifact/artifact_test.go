package artifact

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/vmihailenco/msgpack/v5"

	"lowc/internal/version"
)

func sampleModule() *ir.Module {
	m := ir.NewModule()
	m.TargetTriple = "x86_64-linux-gnu"
	m.NewGlobalDef("x", constant.NewInt(types.I64, 0))
	f := m.NewFunc("main", types.I64)
	f.NewBlock("entry").NewRet(constant.NewInt(types.I64, 0))
	return m
}

func TestFromModule(t *testing.T) {
	src := []byte("(program)")
	c := FromModule(sampleModule(), "a.sx", src, "0.1.0")
	if c.Schema != Schema || c.Triple != "x86_64-linux-gnu" {
		t.Fatalf("unexpected header: %+v", c)
	}
	if len(c.Functions) != 1 || c.Functions[0] != "main" {
		t.Fatalf("functions = %v", c.Functions)
	}
	if len(c.Globals) != 1 || c.Globals[0] != "x" {
		t.Fatalf("globals = %v", c.Globals)
	}
	if !bytes.Contains([]byte(c.IR), []byte("define i64 @main()")) {
		t.Fatalf("IR lacks main:\n%s", c.IR)
	}
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "a.mp")
	want := FromModule(sampleModule(), "a.sx", []byte("src"), "0.1.0")
	if err := Write(path, want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.SourceHash != want.SourceHash || got.IR != want.IR || got.Producer != "0.1.0" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestDecodeRejectsForeignSchema(t *testing.T) {
	raw, err := msgpack.Marshal(&Container{Schema: Schema + 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(bytes.NewReader(raw)); !errors.Is(err, ErrSchema) {
		t.Fatalf("err = %v, want ErrSchema", err)
	}
}

func TestCache(t *testing.T) {
	orig := version.Version
	version.Version = "0.4.2"
	t.Cleanup(func() { version.Version = orig })

	cache, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := KeyFor([]byte("src"), "entry=main")
	if key == KeyFor([]byte("src"), "entry=other") {
		t.Fatal("options do not affect the key")
	}

	if _, ok, err := cache.Get(key); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	ct := FromModule(sampleModule(), "a.sx", []byte("src"), "0.4.0")
	if err := cache.Put(key, ct); err != nil {
		t.Fatal(err)
	}
	got, ok, err := cache.Get(key)
	if err != nil || !ok || got.IR != ct.IR {
		t.Fatalf("hit: ok=%v err=%v", ok, err)
	}

	ct.Producer = "0.3.9"
	if err := cache.Put(key, ct); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := cache.Get(key); ok {
		t.Fatal("container from an older minor version was reused")
	}

	if err := cache.Drop(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := cache.Get(key); ok {
		t.Fatal("hit after Drop")
	}
}

func TestOpenUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	c, err := Open("lowc")
	if err != nil {
		t.Fatal(err)
	}
	if c.Dir() != filepath.Join(dir, "lowc") {
		t.Fatalf("Dir() = %q", c.Dir())
	}
}
