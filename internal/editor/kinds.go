package editor

import (
	"context"
	"fmt"

	"trimscript/internal/services"
)

// ErrSuperseded marks a result dropped because a newer call of the same
// kind was started.
var ErrSuperseded = services.ErrSuperseded

// Kind identifies a collaborator call class.
type Kind int

const (
	KindTranscribe Kind = iota
	KindRewrite
	KindRender
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindTranscribe:
		return "transcribe"
	case KindRewrite:
		return "rewrite"
	case KindRender:
		return "render"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type inflight struct {
	gen    uint64
	cancel context.CancelFunc
}

// begin registers a new call of kind, cancelling any call already running.
func (e *Editor) begin(ctx context.Context, kind Kind) (context.Context, uint64) {
	e.callsMu.Lock()
	defer e.callsMu.Unlock()

	if prev := e.calls[kind]; prev.cancel != nil {
		prev.cancel()
	}
	e.gens[kind]++
	callCtx, cancel := context.WithCancel(ctx)
	e.calls[kind] = inflight{gen: e.gens[kind], cancel: cancel}
	return callCtx, e.gens[kind]
}

// end releases the call and reports whether it is still the newest of its kind.
func (e *Editor) end(kind Kind, gen uint64) bool {
	e.callsMu.Lock()
	defer e.callsMu.Unlock()

	if e.gens[kind] != gen {
		return false
	}
	if c := e.calls[kind]; c.cancel != nil {
		c.cancel()
	}
	e.calls[kind] = inflight{}
	return true
}

func superseded(kind Kind) error {
	return fmt.Errorf("%s: %w", kind, ErrSuperseded)
}
