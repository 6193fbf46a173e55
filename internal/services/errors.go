package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trimscript/internal/transcript"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
	// ErrSuperseded marks a collaborator result that arrived after a newer
	// request of the same kind was started. Callers discard it silently.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Failure is the user-facing class of an error.
type Failure string

const (
	FailureNone          Failure = ""
	FailureInput         Failure = "malformed_input"
	FailureAlignment     Failure = "alignment"
	FailureCollaborator  Failure = "collaborator"
	FailureConfiguration Failure = "configuration"
	FailureStale         Failure = "stale"
	FailureCanceled      Failure = "canceled"
	FailureInternal      Failure = "internal"
)

// Classify maps an error onto the failure classes the CLI reports. Stale and
// superseded results share FailureStale; callers drop those quietly.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrSuperseded), errors.Is(err, transcript.ErrStaleState):
		return FailureStale
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.Is(err, transcript.ErrAlignment):
		return FailureAlignment
	case errors.Is(err, transcript.ErrMalformedInput), errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		return FailureInput
	case errors.Is(err, ErrConfiguration):
		return FailureConfiguration
	case errors.Is(err, ErrExternalTool), errors.Is(err, ErrTimeout), errors.Is(err, ErrTransient),
		errors.Is(err, context.DeadlineExceeded):
		return FailureCollaborator
	default:
		return FailureInternal
	}
}

// Hint returns a short remediation message for a failure class.
func (f Failure) Hint() string {
	switch f {
	case FailureInput:
		return "check the input file or recognizer output"
	case FailureAlignment:
		return "the rewrite added or reordered words; retry or edit manually"
	case FailureCollaborator:
		return "an external tool or API failed; run 'trimscript doctor'"
	case FailureConfiguration:
		return "run 'trimscript config validate'"
	case FailureStale:
		return "the session changed while the request ran; retry"
	default:
		return ""
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
