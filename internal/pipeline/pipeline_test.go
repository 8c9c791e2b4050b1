package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"lowc/internal/artifact"
	"lowc/internal/codegen"
	"lowc/internal/diag"
)

const okProgram = `(program
  (funcs
    (func int main ()
      (print 1)
      (return 0))))`

const badProgram = `(program
  (funcs
    (func int main ()
      (expr (call missing)))))`

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) statuses(file string, stage Stage) []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Status
	for _, e := range r.events {
		if e.File == file && e.Stage == stage {
			out = append(out, e.Status)
		}
	}
	return out
}

func writeInputs(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return dir, paths
}

func TestRunEmitsAndReportsFailures(t *testing.T) {
	dir, paths := writeInputs(t, map[string]string{"b.sx": badProgram, "a.sx": okProgram})
	out := filepath.Join(dir, "out")
	rec := &recorder{}

	results, err := Run(context.Background(), &Request{
		Files:    append(paths, paths[0]),
		Options:  codegen.DefaultOptions(),
		Jobs:     4,
		Emit:     true,
		OutDir:   out,
		Artifact: true,
		Progress: rec,
	})
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("err = %v, want ErrFailed", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	a, b := results[0], results[1]
	if filepath.Base(a.File) != "a.sx" || filepath.Base(b.File) != "b.sx" {
		t.Fatalf("results not sorted: %s, %s", a.File, b.File)
	}
	if a.Failed() || len(a.Outputs) != 2 {
		t.Fatalf("a: failed=%v outputs=%v", a.Failed(), a.Outputs)
	}
	ll, err := os.ReadFile(filepath.Join(out, "a.ll"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(ll), `source_filename = "a.sx"`) {
		t.Fatalf("unexpected IR:\n%s", ll)
	}
	ct, err := artifact.Read(filepath.Join(out, "a.mp"))
	if err != nil || ct.IR != string(ll) {
		t.Fatalf("container: %v", err)
	}

	if !b.Failed() {
		t.Fatal("b should fail")
	}
	d := b.Diagnostics.Items()[0]
	if d.Code != diag.CGUnknownFunction || d.Primary.Line != 4 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if _, err := os.Stat(filepath.Join(out, "b.ll")); !os.IsNotExist(err) {
		t.Fatalf("b.ll should not exist: %v", err)
	}

	got := rec.statuses(a.File, StageLower)
	if len(got) != 2 || got[0] != StatusWorking || got[1] != StatusDone {
		t.Fatalf("lower events for a = %v", got)
	}
	if got := rec.statuses(b.File, StageLower); got[len(got)-1] != StatusError {
		t.Fatalf("lower events for b = %v", got)
	}
}

func TestRunUsesCache(t *testing.T) {
	_, paths := writeInputs(t, map[string]string{"a.sx": okProgram})
	cache, err := artifact.OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	req := &Request{Files: paths, Options: codegen.DefaultOptions(), Jobs: 1, Cache: cache}

	first, err := Run(context.Background(), req)
	if err != nil || first[0].Cached || first[0].Module == nil {
		t.Fatalf("first run: err=%v cached=%v", err, first[0].Cached)
	}

	rec := &recorder{}
	req.Progress = rec
	second, err := Run(context.Background(), req)
	if err != nil || !second[0].Cached {
		t.Fatalf("second run: err=%v cached=%v", err, second[0].Cached)
	}
	if second[0].IR() != first[0].IR() {
		t.Fatal("cached IR differs")
	}
	if got := rec.statuses(paths[0], StageLower); len(got) != 1 || got[0] != StatusCached {
		t.Fatalf("lower events = %v", got)
	}

	req.Options.While = codegen.WhileStaleCondition
	third, err := Run(context.Background(), req)
	if err != nil || third[0].Cached {
		t.Fatalf("option change must miss the cache: err=%v cached=%v", err, third[0].Cached)
	}
}

func TestRunMissingFile(t *testing.T) {
	results, err := Run(context.Background(), &Request{Files: []string{filepath.Join(t.TempDir(), "nope.sx")}})
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("err = %v", err)
	}
	if results[0].Diagnostics.Items()[0].Code != diag.IOLoadFileError {
		t.Fatalf("diagnostic = %+v", results[0].Diagnostics.Items()[0])
	}
}

func TestRunCancelled(t *testing.T) {
	_, paths := writeInputs(t, map[string]string{"a.sx": okProgram})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, &Request{Files: paths}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestTimingsSum(t *testing.T) {
	var tm Timings
	tm.Set(StageRead, 2)
	tm.Set(StageLower, 3)
	if tm.Sum() != 5 || tm.Sum(StageLower) != 3 || !tm.Has(StageRead) || tm.Has(StageEmit) {
		t.Fatalf("unexpected timings: %+v", tm)
	}
}
