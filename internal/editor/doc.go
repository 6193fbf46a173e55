// Package editor coordinates one open project: its persisted edit session,
// the recognizer, the rewriter, and the renderer.
//
// Direct edits apply to the session immediately and are saved before the
// call returns. Collaborator calls run against a snapshot of the kept
// tokens. Each collaborator kind has at most one call in flight; starting
// another cancels the first, whose result is then discarded with
// ErrSuperseded. A rewrite that comes back after the session moved on is
// rejected with transcript.ErrStaleState rather than applied to the wrong
// state.
package editor
