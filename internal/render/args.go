package render

import (
	"fmt"
	"strconv"
	"strings"

	"trimscript/internal/transcript"
)

type pieceSpec struct {
	hasVideo bool
	hasAudio bool
	height   int
	preset   string
	crf      int
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func (r *Renderer) pieceArgs(source string, rng transcript.Range, dest string, layout pieceSpec) []string {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(rng.Start),
		"-i", source,
		"-t", formatSeconds(rng.Duration()),
	}
	if layout.hasVideo {
		args = append(args, "-map", "0:v:0")
	}
	if layout.hasAudio {
		args = append(args, "-map", "0:a:0")
	}
	if layout.hasVideo {
		if layout.height > 0 {
			args = append(args, "-vf", fmt.Sprintf("scale=-2:%d", layout.height))
		}
		args = append(args,
			"-c:v", r.opts.VideoCodec,
			"-preset", layout.preset,
			"-crf", strconv.Itoa(layout.crf),
			"-pix_fmt", "yuv420p",
		)
	} else {
		args = append(args, "-vn")
	}
	if layout.hasAudio {
		args = append(args, "-c:a", r.opts.AudioCodec)
	}
	return append(args, dest)
}

func (r *Renderer) concatArgs(listPath, dest string) []string {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
	}
	if strings.EqualFold(extOf(dest), ".mp4") || strings.EqualFold(extOf(dest), ".mov") {
		args = append(args, "-movflags", "+faststart")
	}
	return append(args, dest)
}

func frameArgs(source string, at float64, dest string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(at),
		"-i", source,
		"-frames:v", "1",
		"-q:v", "2",
		dest,
	}
}

// concatList renders the concat demuxer input for the given piece paths.
func concatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}
