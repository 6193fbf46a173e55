// Package transcript owns the timed token model behind an edit session.
//
// A recognizer run is flattened into an immutable Transcript of word and gap
// tokens. A Session tracks which of those tokens are still kept, with a value
// snapshot undo stack. Align reconciles a rewritten word list against the
// kept tokens and CompileRanges turns the result into play ranges for the
// renderer. Everything here is pure data manipulation; collaborators such as
// the recognizer, the rewriter, and ffmpeg live in other packages.
package transcript
