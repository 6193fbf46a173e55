package editor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"trimscript/internal/logging"
	"trimscript/internal/render"
	"trimscript/internal/services"
	"trimscript/internal/subtitles"
	"trimscript/internal/transcript"
)

// Ranges compiles the current kept tokens into play ranges.
func (e *Editor) Ranges() (transcript.Ranges, error) {
	loaded, err := e.requireOpen()
	if err != nil {
		return nil, err
	}
	return transcript.CompileRanges(loaded.Session.Kept()), nil
}

// Render cuts the kept ranges out of the source into output.
func (e *Editor) Render(ctx context.Context, output string) (render.Result, error) {
	return e.runRender(ctx, "render", func(ctx context.Context, source string, ranges transcript.Ranges, workDir string) (render.Result, error) {
		return e.renderer.Render(ctx, source, ranges, output)
	})
}

// Preview renders a fast low-resolution cut into the project work directory.
func (e *Editor) Preview(ctx context.Context) (render.Result, error) {
	return e.runRender(ctx, "preview", func(ctx context.Context, source string, ranges transcript.Ranges, workDir string) (render.Result, error) {
		return e.renderer.Preview(ctx, source, ranges, workDir)
	})
}

type renderFunc func(ctx context.Context, source string, ranges transcript.Ranges, workDir string) (render.Result, error)

func (e *Editor) runRender(ctx context.Context, op string, fn renderFunc) (render.Result, error) {
	loaded, err := e.requireOpen()
	if err != nil {
		return render.Result{}, err
	}
	if e.renderer == nil {
		return render.Result{}, services.Wrap(services.ErrConfiguration, "editor", op, "renderer unavailable", nil)
	}
	ctx = operationContext(ctx, loaded.Project.ID, op)
	ranges := transcript.CompileRanges(loaded.Session.Snapshot().Tokens)
	if len(ranges) == 0 {
		return render.Result{}, services.Wrap(services.ErrValidation, "editor", op, "nothing is kept", nil)
	}

	callCtx, gen := e.begin(ctx, KindRender)
	result, err := fn(callCtx, loaded.Project.SourcePath, ranges, e.projectWorkDir(loaded.Project.ID))
	if !e.end(KindRender, gen) {
		return render.Result{}, superseded(KindRender)
	}
	if err != nil {
		e.logFailure(ctx, op+" failed", op+"_failed", err, "no output written")
		return render.Result{}, err
	}
	return result, nil
}

// Frame writes the source frame at the given source time.
func (e *Editor) Frame(ctx context.Context, at float64, dest string) error {
	loaded, err := e.requireOpen()
	if err != nil {
		return err
	}
	if e.renderer == nil {
		return services.Wrap(services.ErrConfiguration, "editor", "frame", "renderer unavailable", nil)
	}
	ctx = operationContext(ctx, loaded.Project.ID, "frame")
	if err := e.renderer.ExtractFrame(ctx, loaded.Project.SourcePath, at, dest); err != nil {
		e.logFailure(ctx, "frame extraction failed", "frame_failed", err, "no output written")
		return err
	}
	return nil
}

// Subtitles writes SRT captions for the kept tokens, timed against the
// rendered output. It returns the number of cues written.
func (e *Editor) Subtitles(ctx context.Context, dest string, opts subtitles.Options) (int, error) {
	loaded, err := e.requireOpen()
	if err != nil {
		return 0, err
	}
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return 0, services.Wrap(services.ErrValidation, "editor", "subtitles", "output path required", nil)
	}
	if ext := strings.ToLower(filepath.Ext(dest)); ext != ".srt" {
		return 0, services.Wrap(services.ErrValidation, "editor", "subtitles", fmt.Sprintf("unsupported subtitle extension %q", ext), nil)
	}
	ctx = operationContext(ctx, loaded.Project.ID, "subtitles")
	kept := loaded.Session.Snapshot().Tokens
	cues := subtitles.BuildCues(kept, transcript.CompileRanges(kept), opts)
	if err := subtitles.WriteFile(dest, cues); err != nil {
		return 0, err
	}
	logging.WithContext(ctx, e.logger).Info("subtitles written",
		logging.String(logging.FieldEventType, "subtitles_complete"),
		logging.String("output", dest),
		logging.Int("cues", len(cues)),
	)
	return len(cues), nil
}
