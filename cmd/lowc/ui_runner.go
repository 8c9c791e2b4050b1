package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"lowc/internal/pipeline"
	"lowc/internal/ui"
)

// uiMode selects the progress display of build: auto follows stdout.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

func shouldUseTUI(mode uiMode) bool {
	if mode == uiModeAuto {
		return isTerminal(os.Stdout)
	}
	return mode == uiModeOn
}

type pipelineOutcome struct {
	results []*pipeline.Result
	err     error
}

func runPipelineWithUI(ctx context.Context, title string, req *pipeline.Request) ([]*pipeline.Result, error) {
	if req == nil {
		return nil, fmt.Errorf("missing pipeline request")
	}
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan pipelineOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Run(ctx, &reqCopy)
		outcomeCh <- pipelineOutcome{results: res, err: err}
		close(events)
	}()

	last := pipeline.StageVerify
	if req.Emit {
		last = pipeline.StageEmit
	}
	model := ui.NewProgressModel(title, req.Files, last, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// the UI may quit before the pipeline is done; keep the sink unblocked
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

// runPipeline runs req either behind the progress UI or plainly.
func runPipeline(ctx context.Context, title string, mode uiMode, req *pipeline.Request) ([]*pipeline.Result, error) {
	if shouldUseTUI(mode) && len(req.Files) > 0 {
		return runPipelineWithUI(ctx, title, req)
	}
	return pipeline.Run(ctx, req)
}
