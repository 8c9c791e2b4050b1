package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lowc/internal/irexec"
	"lowc/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] file.sx",
	Short: "Lower a program and interpret the resulting IR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, opts, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		maxSteps, err := cmd.Flags().GetInt64("max-steps")
		if err != nil {
			return err
		}
		emitIR, err := cmd.Flags().GetBool("emit-ir")
		if err != nil {
			return err
		}

		results, runErr := pipeline.Run(cmd.Context(), &pipeline.Request{
			Files:   args,
			Options: opts,
			Jobs:    1,
		})
		if runErr != nil && !errors.Is(runErr, pipeline.ErrFailed) {
			return runErr
		}
		if err := report(cmd, results); err != nil {
			return err
		}
		if len(results) != 1 || results[0].Module == nil {
			return fmt.Errorf("%s: no module produced", args[0])
		}
		mod := results[0].Module
		if emitIR {
			fmt.Fprintln(cmd.ErrOrStderr(), mod.String())
		}

		start := opts.Start
		if start == "" {
			start = "_start"
		}
		code, err := irexec.Run(cmd.Context(), mod, start, irexec.Options{
			Stdout:   cmd.OutOrStdout(),
			MaxSteps: maxSteps,
		})
		if err != nil {
			var vmErr *irexec.VMError
			if errors.As(err, &vmErr) {
				for _, frame := range vmErr.Backtrace {
					fmt.Fprintf(cmd.ErrOrStderr(), "  at %s\n", frame)
				}
			}
			return err
		}
		if code != 0 {
			return exitCodeError(code)
		}
		return nil
	},
}

func init() {
	addCodegenFlags(runCmd)
	runCmd.Flags().Int64("max-steps", 0, "abort after this many executed instructions (0 uses the interpreter default)")
	runCmd.Flags().Bool("emit-ir", false, "print the lowered module to stderr before running")
}

// exitCodeError carries a non-zero program result out of the command.
type exitCodeError int64

func (e exitCodeError) Error() string { return fmt.Sprintf("program exited with code %d", int64(e)) }
