package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lowc/internal/artifact"
	"lowc/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path...]",
	Short: "Lower .sx files into LLVM IR",
	Long:  "Lower every .sx file (directories are searched recursively) into a verified .ll module.",
	RunE:  buildExecution,
}

func init() {
	addCodegenFlags(buildCmd)
	buildCmd.Flags().String("out-dir", "", "directory for emitted files (default: next to each input)")
	buildCmd.Flags().Int("jobs", 0, "files lowered in parallel (0 uses lowc.toml or the CPU count)")
	buildCmd.Flags().Bool("container", false, "also write a msgpack .mp container per module")
	buildCmd.Flags().Bool("no-cache", false, "bypass the artifact cache")
	buildCmd.Flags().Bool("watch", false, "rebuild when inputs change")
	buildCmd.Flags().Bool("timings", false, "print per-stage timings")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	req, mode, err := buildRequest(cmd, args)
	if err != nil {
		return err
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}
	if watch {
		return watchAndBuild(cmd, args, req)
	}
	return buildOnce(cmd, req, mode)
}

func buildRequest(cmd *cobra.Command, args []string) (*pipeline.Request, uiMode, error) {
	cfg, opts, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	files, err := collectInputs(args)
	if err != nil {
		return nil, "", err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return nil, "", err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return nil, "", err
	}
	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return nil, "", err
	}
	if outDir == "" {
		outDir = cfg.Build.OutDir
	}
	container, err := cmd.Flags().GetBool("container")
	if err != nil {
		return nil, "", err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return nil, "", err
	}

	req := &pipeline.Request{
		Files:    files,
		Options:  opts,
		Jobs:     cfg.Jobs(),
		Emit:     true,
		OutDir:   outDir,
		Artifact: container,
	}
	if cfg.Build.Cache && !noCache {
		cache, err := artifact.Open("lowc")
		if err != nil {
			return nil, "", fmt.Errorf("open cache: %w", err)
		}
		req.Cache = cache
	}
	return req, mode, nil
}

func buildOnce(cmd *cobra.Command, req *pipeline.Request, mode uiMode) error {
	start := time.Now()
	results, runErr := runPipeline(cmd.Context(), "lowc build", mode, req)
	if runErr != nil && !errors.Is(runErr, pipeline.ErrFailed) {
		return runErr
	}
	if err := report(cmd, results); err != nil {
		return err
	}
	if quiet(cmd) {
		return nil
	}
	timings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range results {
		for _, o := range r.Outputs {
			tag := color.GreenString("wrote")
			if r.Cached {
				tag = color.CyanString("cached")
			}
			fmt.Fprintf(out, "%s %s\n", tag, o)
		}
		if timings {
			printTimings(out, r)
		}
	}
	fmt.Fprintf(out, "built %d file(s) in %s\n", len(results), time.Since(start).Round(time.Millisecond))
	return nil
}

func printTimings(w io.Writer, r *pipeline.Result) {
	fmt.Fprintf(w, "  %s:", r.File)
	for _, st := range pipeline.Stages {
		if r.Timings.Has(st) {
			fmt.Fprintf(w, " %s=%s", st, r.Timings.Duration(st).Round(time.Microsecond))
		}
	}
	fmt.Fprintf(w, " total=%s\n", r.Timings.Sum(pipeline.Stages...).Round(time.Microsecond))
}
