package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lowc/internal/pipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path...]",
	Short: "Lower and verify without writing output",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, opts, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		files, err := collectInputs(args)
		if err != nil {
			return err
		}
		results, runErr := pipeline.Run(cmd.Context(), &pipeline.Request{
			Files:   files,
			Options: opts,
			Jobs:    cfg.Jobs(),
		})
		if runErr != nil && !errors.Is(runErr, pipeline.ErrFailed) {
			return runErr
		}
		if err := report(cmd, results); err != nil {
			return err
		}
		if !quiet(cmd) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d file(s)\n", color.GreenString("ok"), len(results))
		}
		return nil
	},
}

func init() {
	addCodegenFlags(checkCmd)
	checkCmd.Flags().Int("jobs", 0, "files lowered in parallel")
}
