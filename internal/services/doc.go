// Package services holds the plumbing shared by the collaborator adapters
// (recognizer, LLM, ffmpeg) and the editor.
//
// Key responsibilities:
//   - Context helpers that stamp project IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper, and Classify, which maps
//     any failure onto the classes the CLI reports.
//
// Collaborator packages live underneath (llm, whisperx) and tag their
// failures with these markers.
package services
