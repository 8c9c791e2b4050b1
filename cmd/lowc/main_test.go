package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

const counterProgram = `(program
  (globals (var int x))
  (funcs
    (func int main ()
      (var int i)
      (assign (ref x) 5)
      (for (ref i) 1 3 1
        (print i))
      (print x)
      (return 0))))
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	be.Err(t, os.MkdirAll(filepath.Dir(path), 0o755), nil)
	be.Err(t, os.WriteFile(path, []byte(body), 0o600), nil)
	return path
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "b/a.sx", counterProgram)
	b := writeFile(t, dir, "main.sx", counterProgram)
	writeFile(t, dir, "notes.txt", "skip")
	writeFile(t, dir, ".hidden/c.sx", counterProgram)

	files, err := collectInputs([]string{dir})
	be.Err(t, err, nil)
	be.Equal(t, files, []string{a, b})

	_, err = collectInputs([]string{filepath.Join(dir, "b", "missing")})
	be.Err(t, err)
}

func TestCollectInputsEmptyDir(t *testing.T) {
	_, err := collectInputs([]string{t.TempDir()})
	be.Err(t, err, "no .sx files")
}

func TestReadUIMode(t *testing.T) {
	mode, err := readUIMode(" ON ")
	be.Err(t, err, nil)
	be.Equal(t, mode, uiModeOn)
	mode, err = readUIMode("")
	be.Err(t, err, nil)
	be.Equal(t, mode, uiModeAuto)
	_, err = readUIMode("sometimes")
	be.Err(t, err, "invalid --ui value")
	be.True(t, !shouldUseTUI(uiModeOff))
	be.True(t, shouldUseTUI(uiModeOn))
}

func TestWatchDirs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.sx", counterProgram)
	b := writeFile(t, dir, "b.sx", counterProgram)
	c := writeFile(t, dir, "sub/c.sx", counterProgram)
	dirs := watchDirs([]string{a, b, c})
	be.Equal(t, len(dirs), 2)
	be.Equal(t, dirs[1], filepath.Join(dir, "sub"))
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "main.sx", counterProgram)
	cfg := writeFile(t, dir, "lowc.toml", "[build]\ncache = false\n")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"run", src, "--config", cfg, "--color", "off"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	runCleanups()
	be.Err(t, err, nil)
	be.Equal(t, stdout.String(), "1\n2\n3\n5\n")
}
