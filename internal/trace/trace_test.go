package trace

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestStartNestsUnderContextSpan(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)

	ctx, build := Start(ctx, ScopeDriver, "build")
	fctx, fn := Start(ctx, ScopeFunction, "func:main")
	if CurrentSpan(fctx) != fn.ID() {
		t.Fatalf("context should carry the function span")
	}
	fn.End("", nil)
	build.End("1 file", nil)

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[1].ParentID != build.ID() {
		t.Fatalf("function span parent = %d, want %d", events[1].ParentID, build.ID())
	}
	if events[3].Kind != KindSpanEnd || events[3].Detail != "1 file" {
		t.Fatalf("unexpected last event: %+v", events[3])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	ctx := WithTracer(context.Background(), tr)

	_, pass := Start(ctx, ScopePass, "lower")
	_, fn := Start(ctx, ScopeFunction, "func:main")
	Point(ctx, ScopePass, "note", "")
	fn.End("", nil)
	pass.End("", nil)

	out := buf.String()
	if !strings.Contains(out, "lower") {
		t.Fatalf("pass span missing: %q", out)
	}
	if strings.Contains(out, "func:main") || strings.Contains(out, "note") {
		t.Fatalf("phase level leaked detail events: %q", out)
	}
}

func TestErrorLevelKeepsFailures(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	ok := Begin(ring, ScopePass, "verify", 0)
	ok.End("", nil)
	bad := Begin(ring, ScopePass, "lower", 0)
	bad.End("", errors.New("undeclared variable"))

	events := ring.Snapshot()
	if len(events) != 1 || events[0].Err != "undeclared variable" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopePass, Name: name})
	}
	got := ring.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestNopSpanIsInert(t *testing.T) {
	ctx, s := Start(context.Background(), ScopeDriver, "build")
	if s.ID() != 0 || CurrentSpan(ctx) != 0 {
		t.Fatalf("nop span should have no id")
	}
	if d := s.WithExtra("k", "v").End("", nil); d != 0 {
		t.Fatalf("nop span should report zero duration")
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
