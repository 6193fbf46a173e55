// Package whisperx is the speech recognizer adapter.
//
// It extracts a mono 16kHz audio track with ffmpeg, runs WhisperX through
// uvx to obtain word-level timestamps, and converts the JSON output into
// transcript segments. Words WhisperX could not align get their times from
// their neighbours so the segmenter always sees complete timing.
//
// Configuration options (model, CUDA, VAD method, language) are passed via
// Config.
package whisperx
