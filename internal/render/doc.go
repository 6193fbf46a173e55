// Package render cuts the kept time ranges out of a source video with ffmpeg
// and joins them into one file.
//
// Each range is re-encoded on its own so cuts land on exact timestamps, the
// pieces run concurrently, and the concat demuxer stitches them together.
// Finished files are moved into place only after ffmpeg succeeds.
package render
