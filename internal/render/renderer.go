package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"trimscript/internal/fileutil"
	"trimscript/internal/logging"
	"trimscript/internal/media/ffprobe"
	"trimscript/internal/services"
	"trimscript/internal/transcript"
)

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Prober inspects a media file.
type Prober func(ctx context.Context, binary, path string) (ffprobe.Result, error)

const (
	previewPreset = "ultrafast"
	previewCRF    = 28
)

// Options holds ffmpeg settings.
type Options struct {
	FFmpegBinary  string
	FFprobeBinary string
	VideoCodec    string
	AudioCodec    string
	CRF           int
	Preset        string
	Concurrency   int
	PreviewHeight int
	// WorkDir holds intermediate pieces. Empty uses the system temp dir.
	WorkDir string
}

// Result describes a finished render.
type Result struct {
	OutputPath string            `json:"output"`
	Ranges     transcript.Ranges `json:"ranges"`
	Duration   float64           `json:"duration"`
	Elapsed    time.Duration     `json:"elapsed_ns"`
}

// Renderer drives ffmpeg.
type Renderer struct {
	opts   Options
	run    CommandRunner
	probe  Prober
	logger *slog.Logger
}

// New constructs a Renderer with defaults for unset options.
func New(opts Options, logger *slog.Logger) *Renderer {
	if strings.TrimSpace(opts.FFmpegBinary) == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(opts.FFprobeBinary) == "" {
		opts.FFprobeBinary = "ffprobe"
	}
	if opts.VideoCodec == "" {
		opts.VideoCodec = "libx264"
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = "aac"
	}
	if opts.Preset == "" {
		opts.Preset = "medium"
	}
	if opts.CRF <= 0 {
		opts.CRF = 18
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.PreviewHeight <= 0 {
		opts.PreviewHeight = 360
	}
	return &Renderer{
		opts:   opts,
		run:    defaultCommandRunner,
		probe:  ffprobe.Inspect,
		logger: logging.NewComponentLogger(logger, "render"),
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (r *Renderer) WithCommandRunner(run CommandRunner) {
	if r != nil && run != nil {
		r.run = run
	}
}

// WithProber allows injecting a custom media prober for tests.
func (r *Renderer) WithProber(probe Prober) {
	if r != nil && probe != nil {
		r.probe = probe
	}
}

// Render cuts ranges out of source and writes the joined result to output.
// Ranges past the end of the source are clamped.
func (r *Renderer) Render(ctx context.Context, source string, ranges transcript.Ranges, output string) (Result, error) {
	output = strings.TrimSpace(output)
	if output == "" || extOf(output) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "render", "plan", "output path needs a file extension", nil)
	}
	layout := pieceSpec{preset: r.opts.Preset, crf: r.opts.CRF}
	return r.renderTo(ctx, source, ranges, output, layout)
}

// Preview renders a fast low-resolution cut into dir and returns its path.
func (r *Renderer) Preview(ctx context.Context, source string, ranges transcript.Ranges, dir string) (Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create preview directory: %w", err)
	}
	layout := pieceSpec{preset: previewPreset, crf: previewCRF, height: r.opts.PreviewHeight}
	return r.renderTo(ctx, source, ranges, filepath.Join(dir, "preview.mp4"), layout)
}

// ExtractFrame writes the full-resolution frame at the given source time.
func (r *Renderer) ExtractFrame(ctx context.Context, source string, at float64, dest string) error {
	if at < 0 {
		return services.Wrap(services.ErrValidation, "render", "frame", fmt.Sprintf("time %.3f is negative", at), nil)
	}
	probe, err := r.inspect(ctx, source)
	if err != nil {
		return err
	}
	if !probe.HasVideo() {
		return services.Wrap(services.ErrValidation, "render", "frame", "source has no video stream", nil)
	}
	if d := probe.DurationSeconds(); d > 0 && at > d {
		return services.Wrap(services.ErrValidation, "render", "frame", fmt.Sprintf("time %.3f is past the end (%.3f)", at, d), nil)
	}
	tmp := filepath.Join(filepath.Dir(dest), ".frame-"+filepath.Base(dest))
	if err := r.run(ctx, r.opts.FFmpegBinary, frameArgs(source, at, tmp)...); err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrExternalTool, "render", "frame", "ffmpeg failed", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("move frame into place: %w", err)
	}
	return nil
}

func (r *Renderer) renderTo(ctx context.Context, source string, ranges transcript.Ranges, output string, layout pieceSpec) (Result, error) {
	started := time.Now()
	probe, err := r.inspect(ctx, source)
	if err != nil {
		return Result{}, err
	}
	layout.hasVideo = probe.HasVideo()
	layout.hasAudio = probe.HasAudio()
	if !layout.hasVideo && !layout.hasAudio {
		return Result{}, services.Wrap(services.ErrValidation, "render", "probe", "source has no audio or video streams", nil)
	}
	if d := probe.DurationSeconds(); d > 0 {
		ranges = ranges.Clamp(d)
	}
	if len(ranges) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "render", "plan", "nothing left to render", nil)
	}

	workDir, err := r.makeWorkDir()
	if err != nil {
		return Result{}, err
	}
	defer os.RemoveAll(workDir)

	logger := logging.WithContext(ctx, r.logger)
	logger.Info("render started",
		logging.Int("ranges", len(ranges)),
		logging.Float64("kept_seconds", ranges.Total()),
		logging.String("source_path", source),
	)

	ext := extOf(output)
	pieces := make([]string, len(ranges))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, rng := range ranges {
		pieces[i] = filepath.Join(workDir, fmt.Sprintf("piece_%04d%s", i, ext))
		g.Go(func() error {
			if err := r.run(gctx, r.opts.FFmpegBinary, r.pieceArgs(source, rng, pieces[i], layout)...); err != nil {
				return services.Wrap(services.ErrExternalTool, "render", "cut",
					fmt.Sprintf("range %d [%s, %s]", i+1, formatSeconds(rng.Start), formatSeconds(rng.End)), err)
			}
			logger.Debug("range cut", logging.Int("range", i+1), logging.Float64("start", rng.Start), logging.Float64("end", rng.End))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	listPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(concatList(pieces)), 0o644); err != nil {
		return Result{}, fmt.Errorf("write concat list: %w", err)
	}
	joined := filepath.Join(workDir, "joined"+ext)
	if err := r.run(ctx, r.opts.FFmpegBinary, r.concatArgs(listPath, joined)...); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "render", "concat", "ffmpeg failed", err)
	}
	if _, err := os.Stat(joined); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "render", "concat", "ffmpeg did not produce output", err)
	}
	if err := fileutil.MoveFile(joined, output); err != nil {
		return Result{}, fmt.Errorf("move render into place: %w", err)
	}

	result := Result{
		OutputPath: output,
		Ranges:     ranges,
		Duration:   ranges.Total(),
		Elapsed:    time.Since(started),
	}
	logger.Info("render completed",
		logging.String("output", output),
		logging.Float64("kept_seconds", result.Duration),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (r *Renderer) inspect(ctx context.Context, source string) (ffprobe.Result, error) {
	if _, err := os.Stat(source); err != nil {
		return ffprobe.Result{}, services.Wrap(services.ErrNotFound, "render", "probe", "source media is missing", err)
	}
	probe, err := r.probe(ctx, r.opts.FFprobeBinary, source)
	if err != nil {
		return ffprobe.Result{}, services.Wrap(services.ErrExternalTool, "render", "probe", "ffprobe failed", err)
	}
	return probe, nil
}

func (r *Renderer) makeWorkDir() (string, error) {
	base := r.opts.WorkDir
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return "", fmt.Errorf("create work directory: %w", err)
		}
	}
	dir, err := os.MkdirTemp(base, "render-*")
	if err != nil {
		return "", fmt.Errorf("create render directory: %w", err)
	}
	return dir, nil
}

func extOf(path string) string {
	return filepath.Ext(path)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
