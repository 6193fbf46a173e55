// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata
//
// Inspect runs ffprobe; Parse decodes captured output. Helper methods expose
// duration, frame rate, and video size for the renderer and the transcribe
// command.
package ffprobe
