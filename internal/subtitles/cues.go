package subtitles

import (
	"strings"
	"unicode/utf8"

	"trimscript/internal/transcript"
)

const (
	DefaultMaxChars    = 84
	DefaultLineChars   = 42
	DefaultMaxDuration = 6.0
)

// Options bounds cue size.
type Options struct {
	MaxChars    int
	LineChars   int
	MaxDuration float64
}

func (o Options) withDefaults() Options {
	if o.MaxChars <= 0 {
		o.MaxChars = DefaultMaxChars
	}
	if o.LineChars <= 0 {
		o.LineChars = DefaultLineChars
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = DefaultMaxDuration
	}
	return o
}

// Cue is one caption on the output timeline.
type Cue struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type timedWord struct {
	text  string
	start float64
	end   float64
}

// BuildCues retimes the kept speech tokens onto the output timeline defined
// by ranges and groups them into cues. Tokens outside every range are
// dropped, which happens when ranges were clamped to the media length.
func BuildCues(kept []transcript.Token, ranges transcript.Ranges, opts Options) []Cue {
	opts = opts.withDefaults()
	words := retime(kept, ranges)

	var cues []Cue
	var current []timedWord
	flush := func() {
		if len(current) == 0 {
			return
		}
		text := joinWords(current)
		if text != "" {
			cues = append(cues, Cue{
				Index: len(cues) + 1,
				Start: current[0].start,
				End:   current[len(current)-1].end,
				Text:  wrapLines(text, opts.LineChars),
			})
		}
		current = nil
	}

	for _, w := range words {
		if w.text == "" {
			// pause marker
			flush()
			continue
		}
		if len(current) > 0 {
			chars := utf8.RuneCountInString(joinWords(append(current[:len(current):len(current)], w)))
			span := w.end - current[0].start
			if chars > opts.MaxChars || span > opts.MaxDuration {
				flush()
			}
		}
		current = append(current, w)
		if endsSentence(w.text) {
			flush()
		}
	}
	flush()
	return cues
}

// retime maps kept tokens to output time. Gap tokens come back as empty
// words so grouping can break on them.
func retime(kept []transcript.Token, ranges transcript.Ranges) []timedWord {
	out := make([]timedWord, 0, len(kept))
	offsets := make([]float64, len(ranges))
	var elapsed float64
	for i, r := range ranges {
		offsets[i] = elapsed
		elapsed += r.Duration()
	}

	ri := 0
	for _, tok := range kept {
		for ri < len(ranges) && pastRange(tok, ranges[ri]) {
			ri++
		}
		if ri >= len(ranges) {
			break
		}
		r := ranges[ri]
		if tok.End <= r.Start && tok.Start < r.Start {
			continue
		}
		start := offsets[ri] + max(tok.Start, r.Start) - r.Start
		end := offsets[ri] + min(tok.End, r.End) - r.Start
		if end < start {
			end = start
		}
		if tok.IsGap {
			out = append(out, timedWord{start: start, end: end})
			continue
		}
		out = append(out, timedWord{text: tok.Text, start: start, end: end})
	}
	return out
}

func pastRange(tok transcript.Token, r transcript.Range) bool {
	if tok.Start > r.End {
		return true
	}
	return tok.Start >= r.End && tok.End > tok.Start
}

func joinWords(words []timedWord) string {
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.text
	}
	return strings.Join(strings.Fields(transcript.JoinWords(texts)), " ")
}

func endsSentence(text string) bool {
	text = strings.TrimRight(strings.TrimSpace(text), `"')]»”’`)
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case '.', '?', '!':
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	return r == '…' || r == '。' || r == '？' || r == '！'
}

// wrapLines splits text over two lines at the space nearest the middle when
// it is longer than limit.
func wrapLines(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	mid := len(runes) / 2
	best := -1
	for i, r := range runes {
		if r != ' ' {
			continue
		}
		if best < 0 || abs(i-mid) < abs(best-mid) {
			best = i
		}
	}
	if best <= 0 {
		return text
	}
	return strings.TrimSpace(string(runes[:best])) + "\n" + strings.TrimSpace(string(runes[best+1:]))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
