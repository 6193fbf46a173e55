package testsupport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Call records one invocation seen by a CommandRecorder.
type Call struct {
	Name string
	Args []string
}

// Output returns the final argument, which ffmpeg treats as the destination.
func (c Call) Output() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[len(c.Args)-1]
}

// Has reports whether the flag appears immediately before value.
func (c Call) Has(flag, value string) bool {
	for i := 0; i+1 < len(c.Args); i++ {
		if c.Args[i] == flag && c.Args[i+1] == value {
			return true
		}
	}
	return false
}

// CommandRecorder stands in for external tools. Each call writes a small
// file at the last argument so callers that check for output succeed.
type CommandRecorder struct {
	mu    sync.Mutex
	calls []Call
	// FailWhen makes Run return an error for matching calls.
	FailWhen func(Call) bool
}

// Run satisfies the func(ctx, name, args...) error runner shape.
func (r *CommandRecorder) Run(ctx context.Context, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	call := Call{Name: name, Args: slices.Clone(args)}
	r.mu.Lock()
	r.calls = append(r.calls, call)
	fail := r.FailWhen
	r.mu.Unlock()
	if fail != nil && fail(call) {
		return errors.New("exit status 1: " + strings.Join(args, " "))
	}
	dest := call.Output()
	if dest == "" || strings.HasPrefix(dest, "-") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("fake "+name), 0o644)
}

// Calls returns a copy of every recorded invocation in order.
func (r *CommandRecorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}
