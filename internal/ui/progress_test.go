package ui

import (
	"errors"
	"strings"
	"testing"

	"lowc/internal/pipeline"
)

func TestApplyEventTracksStages(t *testing.T) {
	m := NewProgressModel("build", []string{"a.sx", "b.sx"}, pipeline.StageVerify, nil).(*progressModel)

	m.applyEvent(pipeline.Event{File: "a.sx", Stage: pipeline.StageLower, Status: pipeline.StatusWorking})
	if m.items[0].status != "lowering" || m.items[0].finished {
		t.Fatalf("a = %+v", m.items[0])
	}
	m.applyEvent(pipeline.Event{File: "a.sx", Stage: pipeline.StageLower, Status: pipeline.StatusDone})
	if m.items[0].status != "lowering" {
		t.Fatalf("intermediate done changed label: %+v", m.items[0])
	}
	m.applyEvent(pipeline.Event{File: "a.sx", Stage: pipeline.StageVerify, Status: pipeline.StatusDone})
	if m.items[0].status != "done" || !m.items[0].finished {
		t.Fatalf("a = %+v", m.items[0])
	}

	m.applyEvent(pipeline.Event{File: "b.sx", Stage: pipeline.StageRead, Status: pipeline.StatusError, Err: errors.New("boom")})
	m.applyEvent(pipeline.Event{File: "b.sx", Stage: pipeline.StageLower, Status: pipeline.StatusWorking})
	if m.items[1].status != "error" {
		t.Fatalf("finished item was updated: %+v", m.items[1])
	}
	if got := m.fraction(); got != 1 {
		t.Fatalf("fraction = %v", got)
	}

	m.applyEvent(pipeline.Event{File: "unknown.sx", Stage: pipeline.StageRead, Status: pipeline.StatusWorking})
}

func TestViewListsFiles(t *testing.T) {
	m := NewProgressModel("build", []string{"dir/a.sx"}, pipeline.StageEmit, nil).(*progressModel)
	m.done = true
	view := m.View()
	if !strings.Contains(view, "done: build") || !strings.Contains(view, "dir/a.sx") {
		t.Fatalf("view:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 6); got != "abc..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 6); got != "abc" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("truncate = %q", got)
	}
}
