package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"trimscript/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestCheckLines(t *testing.T) {
	results := []preflight.Result{
		{Name: "FFmpeg", Passed: false, Detail: "not available"},
		{Name: "FFprobe", Passed: true, Detail: "Ready (command: ffprobe)"},
		{Name: "LLM", Optional: true, Detail: "API key missing"},
	}
	lines := checkLines(results, false)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "[ERROR]") || !strings.Contains(lines[0], "Summary") {
		t.Fatalf("expected summary line first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] not available") {
		t.Fatalf("expected error detail, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[OK] Ready") {
		t.Fatalf("expected ready detail, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "[WARN] API key missing") {
		t.Fatalf("expected warn detail, got %q", lines[3])
	}
	if !strings.Contains(lines[4], "Failed checks: FFmpeg") {
		t.Fatalf("expected failed checks summary, got %q", lines[4])
	}
}

func TestCheckLinesOptionalOnly(t *testing.T) {
	lines := checkLines([]preflight.Result{
		{Name: "FFmpeg", Passed: true},
		{Name: "uvx", Optional: true, Detail: "not found"},
	}, false)
	if !strings.Contains(lines[0], "[WARN]") {
		t.Fatalf("expected warn summary, got %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("expected no failed-checks line, got %q", lines)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
