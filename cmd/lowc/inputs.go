package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lowc/internal/codegen"
	"lowc/internal/diag"
	"lowc/internal/diagfmt"
	"lowc/internal/pipeline"
	"lowc/internal/project"
)

const sourceExt = ".sx"

// collectInputs expands directories into the .sx files below them.
func collectInputs(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && path != arg && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if !d.IsDir() && filepath.Ext(path) == sourceExt {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files in %s", sourceExt, strings.Join(args, ", "))
	}
	sort.Strings(files)
	return files, nil
}

// loadConfig reads lowc.toml (or --config) and applies the codegen flags
// registered by addCodegenFlags on top of it.
func loadConfig(cmd *cobra.Command) (project.Config, codegen.Options, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return project.Config{}, codegen.Options{}, err
	}
	cfg, err := project.Load(path, ".")
	if err != nil {
		return project.Config{}, codegen.Options{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("entry") {
		cfg.Codegen.Entry, _ = flags.GetString("entry")
	}
	if flags.Changed("start") {
		cfg.Codegen.Start, _ = flags.GetString("start")
	}
	if flags.Changed("while") {
		cfg.Codegen.WhileCondition, _ = flags.GetString("while")
	}
	if flags.Changed("target") {
		cfg.Codegen.TargetTriple, _ = flags.GetString("target")
	}
	if flags.Lookup("jobs") != nil && flags.Changed("jobs") {
		cfg.Build.Jobs, _ = flags.GetInt("jobs")
	}
	if err := cfg.Validate(); err != nil {
		return project.Config{}, codegen.Options{}, err
	}
	opts, err := cfg.Options()
	return cfg, opts, err
}

func addCodegenFlags(cmd *cobra.Command) {
	cmd.Flags().String("entry", "", "user entry function (default from lowc.toml or main)")
	cmd.Flags().String("start", "", "name of the synthesized start function")
	cmd.Flags().String("while", "", "while loop condition mode (reevaluate|stale)")
	cmd.Flags().String("target", "", "target triple recorded in the module")
	cmd.Flags().String("diagnostics", "pretty", "diagnostics format (pretty|json)")
}

// report prints the diagnostics of every result and returns errReported
// when any file failed.
func report(cmd *cobra.Command, results []*pipeline.Result) error {
	format, _ := cmd.Flags().GetString("diagnostics")
	bag := diag.NewBag(0)
	sources := make(map[string][]byte)
	failed := false
	for _, r := range results {
		if r.Diagnostics == nil || r.Diagnostics.Len() == 0 {
			continue
		}
		bag.Merge(r.Diagnostics)
		if r.Failed() {
			failed = true
			if src, err := os.ReadFile(r.File); err == nil { // #nosec G304 -- the file was just compiled
				sources[r.File] = src
			}
		}
	}
	bag.Sort()
	bag.Dedup()

	out := cmd.ErrOrStderr()
	switch format {
	case "json":
		if err := diagfmt.JSON(cmd.OutOrStdout(), bag, diagfmt.JSONOpts{BaseDir: "."}); err != nil {
			return err
		}
	case "pretty", "":
		diagfmt.Pretty(out, bag, diagfmt.PrettyOpts{Color: !color.NoColor, BaseDir: ".", Sources: sources})
	default:
		return fmt.Errorf("unsupported diagnostics format %q (must be pretty or json)", format)
	}
	if failed {
		return errReported
	}
	return nil
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}
