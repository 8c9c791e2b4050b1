package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"lowc/internal/pipeline"
)

const watchDebounce = 150 * time.Millisecond

// watchAndBuild builds once and then again after every burst of writes to
// the watched .sx files. It returns when the command context is cancelled.
func watchAndBuild(cmd *cobra.Command, args []string, req *pipeline.Request) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs := watchDirs(req.Files)
	for _, d := range dirs {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	rebuild := func() {
		files, err := collectInputs(args)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("error:"), err)
			return
		}
		req.Files = files
		if err := buildOnce(cmd, req, uiModeOff); err != nil && !errors.Is(err, errReported) {
			fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("error:"), err)
		}
	}
	rebuild()

	ctx := cmd.Context()
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != sourceExt || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("watch:"), err)
		case <-fire:
			fire = nil
			if !quiet(cmd) {
				fmt.Fprintln(cmd.OutOrStdout(), color.CyanString("change detected, rebuilding"))
			}
			rebuild()
		}
	}
}

// watchDirs returns the distinct parent directories of files.
func watchDirs(files []string) []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, f := range files {
		d := filepath.Dir(f)
		if abs, err := filepath.Abs(d); err == nil {
			d = abs
		}
		if _, ok := seen[d]; ok {
			continue
		}
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			continue
		}
		seen[d] = struct{}{}
		dirs = append(dirs, d)
	}
	return dirs
}
