// Package subtitles turns the kept transcript into SubRip captions timed
// against the rendered output.
//
// Cut regions shift everything after them earlier, so cue times are
// remapped through the same play ranges the renderer uses. Cues are
// broken at kept pauses, sentence ends, and the configured length limits.
package subtitles
