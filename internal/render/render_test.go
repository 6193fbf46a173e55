package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"trimscript/internal/logging"
	"trimscript/internal/media/ffprobe"
	"trimscript/internal/render"
	"trimscript/internal/services"
	"trimscript/internal/testsupport"
	"trimscript/internal/transcript"
)

func videoProbe(duration string) render.Prober {
	return func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{
				{Index: 0, CodecType: "video", CodecName: "h264", Width: 1920, Height: 1080},
				{Index: 1, CodecType: "audio", CodecName: "aac", Channels: 2},
			},
			Format: ffprobe.Format{Duration: duration},
		}, nil
	}
}

func newRenderer(t *testing.T, probe render.Prober) (*render.Renderer, *testsupport.CommandRecorder) {
	t.Helper()
	r := render.New(render.Options{WorkDir: t.TempDir(), Concurrency: 2}, logging.NewNop())
	rec := &testsupport.CommandRecorder{}
	r.WithCommandRunner(rec.Run)
	r.WithProber(probe)
	return r, rec
}

func TestRenderCutsEachRangeAndConcatenates(t *testing.T) {
	dir := t.TempDir()
	source := testsupport.WriteMedia(t, dir, "talk.mp4", 1024)
	output := filepath.Join(dir, "out", "talk.trimmed.mp4")
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		t.Fatal(err)
	}
	r, rec := newRenderer(t, videoProbe("10.0"))

	ranges := transcript.Ranges{{Start: 0, End: 0.4}, {Start: 1.0, End: 1.5}, {Start: 3.0, End: 4.6}}
	result, err := r.Render(context.Background(), source, ranges, output)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.OutputPath != output {
		t.Fatalf("output = %q", result.OutputPath)
	}
	if got := result.Duration; got < 2.499 || got > 2.501 {
		t.Fatalf("duration = %v, want 2.5", got)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output missing: %v", err)
	}

	calls := rec.Calls()
	if len(calls) != 4 {
		t.Fatalf("expected 3 cuts and 1 concat, got %d calls", len(calls))
	}
	seen := map[string]bool{}
	for _, call := range calls[:3] {
		if !call.Has("-c:v", "libx264") || !call.Has("-map", "0:a:0") {
			t.Fatalf("unexpected cut args: %v", call.Args)
		}
		for i, a := range call.Args {
			if a == "-ss" {
				seen[call.Args[i+1]] = true
			}
		}
	}
	for _, start := range []string{"0.000", "1.000", "3.000"} {
		if !seen[start] {
			t.Fatalf("missing cut starting at %s", start)
		}
	}
	concat := calls[3]
	if !concat.Has("-f", "concat") || !concat.Has("-movflags", "+faststart") {
		t.Fatalf("unexpected concat args: %v", concat.Args)
	}
}

func TestRenderClampsToSourceDuration(t *testing.T) {
	dir := t.TempDir()
	source := testsupport.WriteMedia(t, dir, "talk.mp4", 16)
	r, rec := newRenderer(t, videoProbe("2.0"))

	ranges := transcript.Ranges{{Start: 0, End: 1}, {Start: 1.5, End: 3}, {Start: 4, End: 5}}
	result, err := r.Render(context.Background(), source, ranges, filepath.Join(dir, "out.mp4"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(result.Ranges) != 2 || result.Ranges[1].End != 2 {
		t.Fatalf("ranges = %+v", result.Ranges)
	}
	if len(rec.Calls()) != 3 {
		t.Fatalf("expected 2 cuts and 1 concat, got %d", len(rec.Calls()))
	}
}

func TestRenderAudioOnlySource(t *testing.T) {
	dir := t.TempDir()
	source := testsupport.WriteMedia(t, dir, "talk.m4a", 16)
	r, rec := newRenderer(t, func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "audio"}}}, nil
	})
	if _, err := r.Render(context.Background(), source, transcript.Ranges{{Start: 0, End: 1}}, filepath.Join(dir, "out.m4a")); err != nil {
		t.Fatalf("Render: %v", err)
	}
	cut := rec.Calls()[0]
	if !slices.Contains(cut.Args, "-vn") || slices.Contains(cut.Args, "-c:v") {
		t.Fatalf("audio-only cut should skip video: %v", cut.Args)
	}
}

func TestRenderRejectsEmptyPlan(t *testing.T) {
	dir := t.TempDir()
	source := testsupport.WriteMedia(t, dir, "talk.mp4", 16)
	r, rec := newRenderer(t, videoProbe("10"))

	_, err := r.Render(context.Background(), source, nil, filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(rec.Calls()) != 0 {
		t.Fatal("ffmpeg should not run for an empty plan")
	}
}

func TestRenderRequiresExtension(t *testing.T) {
	r, _ := newRenderer(t, videoProbe("10"))
	_, err := r.Render(context.Background(), "in.mp4", transcript.Ranges{{Start: 0, End: 1}}, filepath.Join(t.TempDir(), "out"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenderMissingSource(t *testing.T) {
	r, _ := newRenderer(t, videoProbe("10"))
	_, err := r.Render(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"), transcript.Ranges{{Start: 0, End: 1}}, "out.mp4")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRenderCutFailureIsExternalToolError(t *testing.T) {
	dir := t.TempDir()
	source := testsupport.WriteMedia(t, dir, "talk.mp4", 16)
	output := filepath.Join(dir, "out.mp4")
	r, rec := newRenderer(t, videoProbe("10"))
	rec.FailWhen = func(c testsupport.Call) bool { return c.Has("-ss", "1.000") }

	_, err := r.Render(context.Background(), source, transcript.Ranges{{Start: 0, End: 0.5}, {Start: 1, End: 2}}, output)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if services.Classify(err) != services.FailureCollaborator {
		t.Fatalf("classify = %v", services.Classify(err))
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatal("output should not exist after a failed render")
	}
}

func TestPreviewScalesDown(t *testing.T) {
	dir := t.TempDir()
	source := testsupport.WriteMedia(t, dir, "talk.mp4", 16)
	r, rec := newRenderer(t, videoProbe("10"))

	result, err := r.Preview(context.Background(), source, transcript.Ranges{{Start: 0, End: 1}}, filepath.Join(dir, "preview"))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.HasSuffix(result.OutputPath, "preview.mp4") {
		t.Fatalf("preview path = %q", result.OutputPath)
	}
	cut := rec.Calls()[0]
	if !cut.Has("-preset", "ultrafast") || !cut.Has("-vf", "scale=-2:360") {
		t.Fatalf("unexpected preview args: %v", cut.Args)
	}
}

func TestExtractFrame(t *testing.T) {
	dir := t.TempDir()
	source := testsupport.WriteMedia(t, dir, "talk.mp4", 16)
	r, rec := newRenderer(t, videoProbe("10"))
	dest := filepath.Join(dir, "frame.jpg")

	if err := r.ExtractFrame(context.Background(), source, 3.25, dest); err != nil {
		t.Fatalf("ExtractFrame: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("frame missing: %v", err)
	}
	if !rec.Calls()[0].Has("-ss", "3.250") {
		t.Fatalf("unexpected frame args: %v", rec.Calls()[0].Args)
	}

	if err := r.ExtractFrame(context.Background(), source, 11, dest); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error past the end, got %v", err)
	}
}
