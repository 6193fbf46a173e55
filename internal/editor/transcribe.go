package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trimscript/internal/logging"
	"trimscript/internal/project"
	"trimscript/internal/services"
	"trimscript/internal/services/whisperx"
	"trimscript/internal/transcript"
)

// TranscribeOptions tunes a transcription run.
type TranscribeOptions struct {
	// FromJSON loads an existing WhisperX JSON file instead of running the
	// recognizer.
	FromJSON string
	// Language overrides the detected language tag.
	Language string
	// NewProject forces a new project even when one is open.
	NewProject bool
}

// Transcribe recognizes media and seeds a brand-new session from it. When a
// project for the same source is open its transcript, kept list, and undo
// history are replaced together; otherwise a new project is created and
// opened.
func (e *Editor) Transcribe(ctx context.Context, media string, opts TranscribeOptions) (*project.Loaded, error) {
	if e.store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "editor", "transcribe", "project store unavailable", nil)
	}
	media = strings.TrimSpace(media)
	if media == "" {
		return nil, services.Wrap(services.ErrValidation, "editor", "transcribe", "media path required", nil)
	}
	abs, err := filepath.Abs(media)
	if err != nil {
		return nil, fmt.Errorf("resolve media path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, services.Wrap(services.ErrNotFound, "editor", "transcribe", "media file missing", err)
	}

	target := e.loaded()
	if target != nil && (opts.NewProject || target.Project.SourcePath != abs) {
		target = nil
	}
	projectID := ""
	if target != nil {
		projectID = target.Project.ID
	}
	ctx = operationContext(ctx, projectID, "transcribe")
	logger := logging.WithContext(ctx, e.logger)

	callCtx, gen := e.begin(ctx, KindTranscribe)
	started := time.Now()
	segments, language, err := e.recognize(callCtx, abs, opts)
	if !e.end(KindTranscribe, gen) {
		return nil, superseded(KindTranscribe)
	}
	if err != nil {
		e.logFailure(ctx, "transcription failed", "transcribe_failed", err, "session unchanged")
		return nil, err
	}

	t, err := transcript.FromSegments(segments)
	if err != nil {
		e.logFailure(ctx, "recognizer output rejected", "transcribe_invalid", err, "session unchanged")
		return nil, err
	}
	if t.Len() == 0 {
		return nil, services.Wrap(services.ErrValidation, "editor", "transcribe", "recognizer produced no words", nil)
	}
	if opts.Language != "" {
		language = whisperx.NormalizeLanguage(opts.Language)
	}

	var loaded *project.Loaded
	if target != nil {
		loaded, err = e.store.ReplaceTranscript(ctx, target.Project.ID, language, t)
		if err != nil {
			return nil, err
		}
		if !e.stillCurrent(target) {
			return nil, fmt.Errorf("%w: project closed during transcription", transcript.ErrStaleState)
		}
		e.mu.Lock()
		e.current = loaded
		e.mu.Unlock()
	} else {
		loaded, err = e.store.Create(ctx, abs, language, t)
		if err != nil {
			return nil, err
		}
		lock, err := e.store.Lock(loaded.Project.ID)
		if err != nil {
			if rmErr := e.store.Remove(context.WithoutCancel(ctx), loaded.Project.ID); rmErr != nil {
				logger.Warn("remove unopened project failed",
					logging.String(logging.FieldEventType, "project_cleanup_failed"),
					logging.Error(rmErr),
				)
			}
			return nil, err
		}
		e.install(loaded, lock)
	}

	logging.WithContext(services.WithProjectID(ctx, loaded.Project.ID), e.logger).Info("transcription completed",
		logging.String(logging.FieldEventType, "transcribe_complete"),
		logging.Int("tokens", t.Len()),
		logging.Float64("duration_seconds", t.Duration()),
		logging.String("language", language),
		logging.Duration("elapsed", time.Since(started)),
	)
	logger.Debug("session seeded", logging.Int("kept", len(t.InitialKept())))
	return loaded, nil
}

func (e *Editor) recognize(ctx context.Context, media string, opts TranscribeOptions) ([]transcript.Segment, string, error) {
	if path := strings.TrimSpace(opts.FromJSON); path != "" {
		payload, err := whisperx.LoadPayload(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, "", services.Wrap(services.ErrNotFound, "editor", "transcribe", "recognizer json missing", err)
			}
			return nil, "", err
		}
		return whisperx.ToTranscriptSegments(payload.Segments), whisperx.NormalizeLanguage(payload.Language), nil
	}
	if e.transcriber == nil {
		return nil, "", services.Wrap(services.ErrConfiguration, "editor", "transcribe", "recognizer unavailable", nil)
	}
	workDir, err := os.MkdirTemp(e.scratchRoot(), "transcribe-*")
	if err != nil {
		return nil, "", fmt.Errorf("create transcription directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	result, err := e.transcriber.Transcribe(ctx, media, workDir)
	if err != nil {
		return nil, "", err
	}
	return result.Segments, whisperx.NormalizeLanguage(result.Language), nil
}

func (e *Editor) scratchRoot() string {
	if e.workDir == "" {
		return ""
	}
	if err := os.MkdirAll(e.workDir, 0o755); err != nil {
		return ""
	}
	return e.workDir
}
