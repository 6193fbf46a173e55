package transcript

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one timed unit of the transcript: a spoken word or a stretch of
// silence between recognizer segments.
type Token struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	IsGap bool    `json:"is_gap,omitempty"`
}

// Duration returns the token length in seconds.
func (t Token) Duration() float64 {
	return t.End - t.Start
}

// Word is a recognizer word with its own timing.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is one recognizer segment. Words may be empty when the recognizer
// could not produce word-level timing.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// GapLabel renders the display text for a silence of the given length.
func GapLabel(seconds float64) string {
	return fmt.Sprintf("[%.3f sec]", seconds)
}

// KeptText joins speech token texts in order with JoinWords. Gap tokens are
// skipped.
func KeptText(tokens []Token) string {
	return JoinWords(SpeechTexts(tokens))
}

// JoinWords concatenates recognizer words into readable text. Words that
// already carry whitespace at the boundary are joined as is, a single space
// is inserted otherwise, and scripts written without spaces (Han, kana) are
// concatenated directly. Surrounding whitespace is trimmed.
func JoinWords(words []string) string {
	var b strings.Builder
	prev := ""
	for _, w := range words {
		if w == "" {
			continue
		}
		if prev != "" && needsSpace(prev, w) {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		prev = w
	}
	return strings.TrimSpace(b.String())
}

func needsSpace(prev, next string) bool {
	last, _ := utf8.DecodeLastRuneInString(prev)
	first, _ := utf8.DecodeRuneInString(next)
	if unicode.IsSpace(last) || unicode.IsSpace(first) {
		return false
	}
	if unspaced(last) || unspaced(first) {
		return false
	}
	return !unicode.In(first, unicode.Pe, unicode.Pf) && !strings.ContainsRune(",.;:!?%", first)
}

func unspaced(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) ||
		strings.ContainsRune("。、，！？：；「」『』（）", r)
}

// SpeechTexts returns the text of each speech token in order.
func SpeechTexts(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.IsGap {
			continue
		}
		out = append(out, tok.Text)
	}
	return out
}

// MaxEnd returns the latest end time across tokens, or 0 when empty.
func MaxEnd(tokens []Token) float64 {
	var end float64
	for _, tok := range tokens {
		if tok.End > end {
			end = tok.End
		}
	}
	return end
}
