package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"trimscript/internal/logging"
	"trimscript/internal/project"
	"trimscript/internal/render"
	"trimscript/internal/services"
	"trimscript/internal/services/whisperx"
	"trimscript/internal/transcript"
)

// Transcriber turns media into recognizer segments.
type Transcriber interface {
	Transcribe(ctx context.Context, media, workDir string) (whisperx.TranscribeResult, error)
}

// Rewriter proposes a tightened word list for the kept tokens.
type Rewriter interface {
	Rewrite(ctx context.Context, tokens []transcript.Token) ([]string, error)
}

// Renderer cuts play ranges out of source media.
type Renderer interface {
	Render(ctx context.Context, source string, ranges transcript.Ranges, output string) (render.Result, error)
	Preview(ctx context.Context, source string, ranges transcript.Ranges, dir string) (render.Result, error)
	ExtractFrame(ctx context.Context, source string, at float64, dest string) error
}

// Options wires an Editor to its store and collaborators. Collaborators may
// be nil; operations that need a missing one fail with a configuration error.
type Options struct {
	Store       *project.Store
	Transcriber Transcriber
	Rewriter    Rewriter
	Renderer    Renderer
	// WorkDir is the root for per-project scratch files.
	WorkDir string
	Align   transcript.AlignOptions
	Logger  *slog.Logger
}

// Editor owns the open project. Methods are safe for concurrent use.
type Editor struct {
	store       *project.Store
	transcriber Transcriber
	rewriter    Rewriter
	renderer    Renderer
	workDir     string
	align       transcript.AlignOptions
	logger      *slog.Logger

	mu      sync.Mutex
	current *project.Loaded
	lock    *project.Lock

	callsMu sync.Mutex
	calls   [kindCount]inflight
	gens    [kindCount]uint64
}

// New constructs an Editor with no project open.
func New(opts Options) *Editor {
	return &Editor{
		store:       opts.Store,
		transcriber: opts.Transcriber,
		rewriter:    opts.Rewriter,
		renderer:    opts.Renderer,
		workDir:     opts.WorkDir,
		align:       opts.Align,
		logger:      logging.NewComponentLogger(opts.Logger, "editor"),
	}
}

// Open loads the project and takes its writer lock. id may be a unique
// prefix. Any previously open project is closed first.
func (e *Editor) Open(ctx context.Context, id string) (*project.Loaded, error) {
	if e.store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "editor", "open", "project store unavailable", nil)
	}
	summary, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lock, err := e.store.Lock(summary.ID)
	if err != nil {
		return nil, err
	}
	loaded, err := e.store.Load(ctx, summary.ID)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	e.install(loaded, lock)
	return loaded, nil
}

// OpenLatest opens the most recently updated project.
func (e *Editor) OpenLatest(ctx context.Context) (*project.Loaded, error) {
	if e.store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "editor", "open", "project store unavailable", nil)
	}
	latest, err := e.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return e.Open(ctx, latest.ID)
}

// Close cancels in-flight calls and releases the project lock.
func (e *Editor) Close() error {
	e.callsMu.Lock()
	for i, c := range e.calls {
		if c.cancel != nil {
			c.cancel()
		}
		e.calls[i] = inflight{}
		e.gens[i]++
	}
	e.callsMu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = nil
	lock := e.lock
	e.lock = nil
	return lock.Unlock()
}

// Project returns the open project summary with live kept counts.
func (e *Editor) Project() (project.Project, bool) {
	loaded := e.loaded()
	if loaded == nil {
		return project.Project{}, false
	}
	p := loaded.Project
	snap := loaded.Session.Snapshot()
	p.KeptCount = len(snap.Indices)
	p.Version = snap.Version
	return p, true
}

// Session returns the open session, or nil.
func (e *Editor) Session() *transcript.Session {
	if loaded := e.loaded(); loaded != nil {
		return loaded.Session
	}
	return nil
}

func (e *Editor) loaded() *project.Loaded {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Editor) install(loaded *project.Loaded, lock *project.Lock) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lock != nil && e.lock != lock {
		_ = e.lock.Unlock()
	}
	e.current = loaded
	e.lock = lock
}

func (e *Editor) requireOpen() (*project.Loaded, error) {
	loaded := e.loaded()
	if loaded == nil {
		return nil, services.Wrap(services.ErrValidation, "editor", "session", "no project open", nil)
	}
	return loaded, nil
}

// stillCurrent reports whether loaded is still the open project. A
// re-transcription installs a new session, so older snapshots are stale.
func (e *Editor) stillCurrent(loaded *project.Loaded) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current == loaded
}

func (e *Editor) save(ctx context.Context, loaded *project.Loaded) error {
	if err := e.store.SaveSession(ctx, loaded.Project.ID, loaded.Session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (e *Editor) projectWorkDir(id string) string {
	return filepath.Join(e.workDir, id)
}

// operationContext tags ctx with the project, operation, and a request ID
// for log correlation.
func operationContext(ctx context.Context, projectID, op string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if projectID != "" {
		ctx = services.WithProjectID(ctx, projectID)
	}
	ctx = services.WithStage(ctx, op)
	return services.WithRequestID(ctx, uuid.NewString())
}

// logFailure records a failed operation unless it was superseded or
// cancelled, which callers drop quietly.
func (e *Editor) logFailure(ctx context.Context, msg, event string, err error, impact string) {
	if errors.Is(err, ErrSuperseded) || errors.Is(err, context.Canceled) {
		logging.WithContext(ctx, e.logger).Debug(msg, logging.String(logging.FieldEventType, event), logging.Error(err))
		return
	}
	attrs := append(logging.ErrorAttrs(err), logging.String(logging.FieldImpact, strings.TrimSpace(impact)))
	logging.WarnWithContext(logging.WithContext(ctx, e.logger), msg, event, attrs...)
}
