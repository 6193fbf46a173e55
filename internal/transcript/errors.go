package transcript

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput marks recognizer or candidate data that violates the
	// token contract. Nothing is repaired; the caller reports it.
	ErrMalformedInput = errors.New("malformed input")
	// ErrAlignment marks a rewrite that could not be reconciled with the
	// kept tokens. Use errors.As with *AlignmentError for the details.
	ErrAlignment = errors.New("alignment failed")
	// ErrStaleState reports a commit attempted against a session that has
	// changed since the caller took its snapshot.
	ErrStaleState = errors.New("session changed since snapshot")
)

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

// AlignmentError carries both sides of a failed reconciliation so the caller
// can show the user what did not line up.
type AlignmentError struct {
	Origin     []string
	Candidates []string
	// Unmatched holds candidate positions that found no kept token.
	Unmatched []int
	Reason    string
}

func (e *AlignmentError) Error() string {
	if e == nil {
		return ErrAlignment.Error()
	}
	parts := make([]string, 0, min(len(e.Unmatched), 5))
	for i, pos := range e.Unmatched {
		if i == 5 {
			parts = append(parts, "...")
			break
		}
		if pos >= 0 && pos < len(e.Candidates) {
			parts = append(parts, fmt.Sprintf("%d:%q", pos, e.Candidates[pos]))
		}
	}
	msg := fmt.Sprintf("%s: %d of %d candidate tokens unmatched against %d kept tokens",
		ErrAlignment.Error(), len(e.Unmatched), len(e.Candidates), len(e.Origin))
	if len(parts) > 0 {
		msg += " (" + strings.Join(parts, ", ") + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is lets errors.Is(err, ErrAlignment) match.
func (e *AlignmentError) Is(target error) bool {
	return target == ErrAlignment
}
