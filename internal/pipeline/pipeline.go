// Package pipeline drives files through read, lower, verify and emit. Files
// are independent and processed concurrently, each with its own generator.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/llir/llvm/ir"
	"golang.org/x/sync/errgroup"

	"lowc/internal/artifact"
	"lowc/internal/astio"
	"lowc/internal/codegen"
	"lowc/internal/diag"
	"lowc/internal/trace"
	"lowc/internal/verify"
	"lowc/internal/version"
)

const maxDiagnostics = 64

// ErrFailed is returned by Run when at least one file produced errors.
var ErrFailed = errors.New("pipeline: build failed")

// Request configures one pipeline run.
type Request struct {
	Files    []string
	Options  codegen.Options
	Jobs     int
	Emit     bool   // write <name>.ll
	OutDir   string // emit directory; empty means next to the input
	Artifact bool   // also write <name>.mp containers
	Cache    *artifact.Cache
	Progress ProgressSink
}

// Result is the outcome for one input file.
type Result struct {
	File        string
	Module      *ir.Module // nil when cached or failed
	Container   *artifact.Container
	Outputs     []string
	Cached      bool
	Diagnostics *diag.Bag
	Timings     Timings
}

func (r *Result) Failed() bool {
	return r.Diagnostics != nil && r.Diagnostics.HasErrors()
}

// IR returns the textual module.
func (r *Result) IR() string {
	switch {
	case r.Module != nil:
		return r.Module.String()
	case r.Container != nil:
		return r.Container.IR
	}
	return ""
}

// Run processes every file of req. Results are sorted by path. The returned
// error is ErrFailed when any file failed, or the context error on
// cancellation.
func Run(ctx context.Context, req *Request) ([]*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("missing pipeline request")
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "build")
	span.WithExtra("files", fmt.Sprint(len(req.Files)))

	files := dedupe(req.Files)
	for _, f := range files {
		emit(req.Progress, f, StageRead, StatusQueued, nil, 0)
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = 1
	}
	results := make([]*Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = processFile(gctx, req, path)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		for _, r := range results {
			if r.Failed() {
				err = ErrFailed
				break
			}
		}
	}
	span.End("", err)

	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, err
}

func dedupe(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		f = filepath.Clean(f)
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// stage runs fn as one traced, timed pipeline stage.
func stage(ctx context.Context, req *Request, res *Result, st Stage, fn func(context.Context) error) error {
	ctx, span := trace.Start(ctx, trace.ScopePass, string(st)+":"+filepath.Base(res.File))
	emit(req.Progress, res.File, st, StatusWorking, nil, 0)
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	span.End("", err)
	res.Timings.Set(st, elapsed)
	status := StatusDone
	if err != nil {
		status = StatusError
	}
	emit(req.Progress, res.File, st, status, err, elapsed)
	return err
}

func processFile(ctx context.Context, req *Request, path string) *Result {
	res := &Result{File: path, Diagnostics: diag.NewBag(maxDiagnostics)}
	opts := req.Options
	opts.SourceFilename = filepath.Base(path)

	var src []byte
	err := stage(ctx, req, res, StageRead, func(context.Context) error {
		var err error
		src, err = os.ReadFile(path) // #nosec G304 -- inputs are named by the user
		return err
	})
	if err != nil {
		res.Diagnostics.Add(diag.FromError(path, err, diag.IOLoadFileError))
		return res
	}

	key := artifact.KeyFor(src, optionsKey(opts))
	if ct, ok, cerr := req.Cache.Get(key); cerr == nil && ok {
		res.Container = ct
		res.Cached = true
		for _, st := range []Stage{StageLower, StageVerify} {
			emit(req.Progress, path, st, StatusCached, nil, 0)
		}
	} else {
		if cerr != nil {
			res.Diagnostics.Add(diag.New(diag.SevWarning, diag.IOCacheError, diag.Location{File: path}, cerr.Error()))
		}
		err = stage(ctx, req, res, StageLower, func(ctx context.Context) error {
			prog, err := astio.Decode(string(src))
			if err != nil {
				return err
			}
			res.Module, err = codegen.Assemble(ctx, prog, opts)
			return err
		})
		if err != nil {
			res.Diagnostics.Add(diag.FromError(path, err, diag.CGUnsupportedOperation))
			return res
		}
		err = stage(ctx, req, res, StageVerify, func(context.Context) error {
			return verify.Module(res.Module)
		})
		if err != nil {
			for _, e := range unjoin(err) {
				res.Diagnostics.Add(diag.FromError(path, e, diag.VfyMissingTerminator))
			}
			return res
		}
		res.Container = artifact.FromModule(res.Module, path, src, version.Version)
		if req.Cache != nil {
			if perr := req.Cache.Put(key, res.Container); perr != nil {
				res.Diagnostics.Add(diag.New(diag.SevWarning, diag.IOCacheError, diag.Location{File: path}, perr.Error()))
			}
		}
	}

	if !req.Emit && !req.Artifact {
		return res
	}
	err = stage(ctx, req, res, StageEmit, func(context.Context) error {
		base := outputBase(req.OutDir, path)
		if req.Emit {
			out := base + ".ll"
			if err := writeFile(out, []byte(res.IR())); err != nil {
				return err
			}
			res.Outputs = append(res.Outputs, out)
		}
		if req.Artifact {
			out := base + ".mp"
			if err := artifact.Write(out, res.Container); err != nil {
				return err
			}
			res.Outputs = append(res.Outputs, out)
		}
		return nil
	})
	if err != nil {
		res.Diagnostics.Add(diag.FromError(path, err, diag.IOWriteError))
	}
	return res
}

// optionsKey renders every option that changes the emitted module.
func optionsKey(o codegen.Options) string {
	return strings.Join([]string{o.Entry, o.Start, o.While.String(), o.TargetTriple, o.SourceFilename}, "\x00")
}

func outputBase(outDir, path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if outDir == "" {
		return filepath.Join(filepath.Dir(path), name)
	}
	return filepath.Join(outDir, name)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
