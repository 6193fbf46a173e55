package editor

import (
	"context"
	"fmt"
	"time"

	"trimscript/internal/logging"
	"trimscript/internal/project"
	"trimscript/internal/services"
	"trimscript/internal/transcript"
)

// Delete removes original indices from the kept list and saves the result.
// It returns how many tokens were removed; zero leaves history untouched.
func (e *Editor) Delete(ctx context.Context, indices ...int) (int, error) {
	return e.edit(ctx, "delete", func(s *transcript.Session) int {
		return s.DeleteIndices(indices...)
	})
}

// DeletePositions is Delete addressed by position in the kept list.
func (e *Editor) DeletePositions(ctx context.Context, positions ...int) (int, error) {
	return e.edit(ctx, "delete", func(s *transcript.Session) int {
		return s.DeletePositions(positions...)
	})
}

// Undo restores up to steps snapshots and returns how many were restored.
// An empty history is not an error.
func (e *Editor) Undo(ctx context.Context, steps int) (int, error) {
	if steps <= 0 {
		steps = 1
	}
	return e.edit(ctx, "undo", func(s *transcript.Session) int {
		undone := 0
		for undone < steps && s.Undo() {
			undone++
		}
		return undone
	})
}

func (e *Editor) edit(ctx context.Context, op string, apply func(*transcript.Session) int) (int, error) {
	loaded, err := e.requireOpen()
	if err != nil {
		return 0, err
	}
	ctx = operationContext(ctx, loaded.Project.ID, op)
	changed := apply(loaded.Session)
	if changed == 0 {
		return 0, nil
	}
	if err := e.save(ctx, loaded); err != nil {
		return changed, err
	}
	logging.WithContext(ctx, e.logger).Debug("session edited",
		logging.String("op", op),
		logging.Int("changed", changed),
		logging.Int("kept", len(loaded.Session.KeptIndices())),
		logging.Int("history_depth", loaded.Session.HistoryDepth()),
	)
	return changed, nil
}

// ApplyCandidates reconciles a word list against the kept tokens and
// commits it. On failure the session is unchanged.
func (e *Editor) ApplyCandidates(ctx context.Context, words []string) (transcript.AlignResult, error) {
	return e.apply(ctx, "apply", func(s *transcript.Session) (transcript.AlignResult, error) {
		return s.Align(words, e.align)
	})
}

// ApplyText reconciles free-form text against the kept tokens by
// characters and commits it.
func (e *Editor) ApplyText(ctx context.Context, text string) (transcript.AlignResult, error) {
	return e.apply(ctx, "apply", func(s *transcript.Session) (transcript.AlignResult, error) {
		return s.AlignText(text)
	})
}

func (e *Editor) apply(ctx context.Context, op string, align func(*transcript.Session) (transcript.AlignResult, error)) (transcript.AlignResult, error) {
	loaded, err := e.requireOpen()
	if err != nil {
		return transcript.AlignResult{}, err
	}
	ctx = operationContext(ctx, loaded.Project.ID, op)
	result, err := align(loaded.Session)
	if err != nil {
		e.logFailure(ctx, "edit rejected", "align_failed", err, "session unchanged")
		return transcript.AlignResult{}, err
	}
	if err := e.save(ctx, loaded); err != nil {
		return result, err
	}
	e.logAligned(ctx, loaded, result)
	return result, nil
}

// Optimize asks the rewriter for a tightened word list and commits the
// alignment. The rewrite runs against a snapshot; if the session changed
// meanwhile the result is rejected with transcript.ErrStaleState.
func (e *Editor) Optimize(ctx context.Context) (transcript.AlignResult, error) {
	loaded, err := e.requireOpen()
	if err != nil {
		return transcript.AlignResult{}, err
	}
	if e.rewriter == nil {
		return transcript.AlignResult{}, services.Wrap(services.ErrConfiguration, "editor", "optimize", "rewriter unavailable", nil)
	}
	ctx = operationContext(ctx, loaded.Project.ID, "optimize")
	snap := loaded.Session.Snapshot()
	if len(transcript.SpeechTexts(snap.Tokens)) == 0 {
		return transcript.AlignResult{}, services.Wrap(services.ErrValidation, "editor", "optimize", "no kept words to optimize", nil)
	}

	callCtx, gen := e.begin(ctx, KindRewrite)
	started := time.Now()
	candidates, err := e.rewriter.Rewrite(callCtx, snap.Tokens)
	if !e.end(KindRewrite, gen) {
		return transcript.AlignResult{}, superseded(KindRewrite)
	}
	if err != nil {
		e.logFailure(ctx, "optimize failed", "rewrite_failed", err, "session unchanged")
		return transcript.AlignResult{}, err
	}

	result, err := transcript.Align(candidates, snap.Tokens, e.align)
	if err != nil {
		e.logFailure(ctx, "rewrite did not align", "align_failed", err, "session unchanged")
		return transcript.AlignResult{}, err
	}
	if !e.stillCurrent(loaded) {
		return transcript.AlignResult{}, fmt.Errorf("%w: project replaced during optimize", transcript.ErrStaleState)
	}
	if err := loaded.Session.Replace(snap.Version, result.Kept); err != nil {
		e.logFailure(ctx, "optimize result discarded", "rewrite_stale", err, "session unchanged")
		return transcript.AlignResult{}, err
	}
	if err := e.save(ctx, loaded); err != nil {
		return result, err
	}
	e.logAligned(ctx, loaded, result)
	logging.WithContext(ctx, e.logger).Info("optimize completed",
		logging.String(logging.FieldEventType, "optimize_complete"),
		logging.Int("candidates", len(candidates)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (e *Editor) logAligned(ctx context.Context, loaded *project.Loaded, result transcript.AlignResult) {
	logging.WithContext(ctx, e.logger).Info("edit applied",
		logging.String(logging.FieldEventType, "align_commit"),
		logging.Int("kept", len(result.Kept)),
		logging.Int("dropped", len(result.Dropped)),
		logging.Float64("duration_seconds", loaded.Session.Duration()),
	)
}
