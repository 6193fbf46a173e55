package transcript

import (
	"math"
	"strings"
)

// BuildTokens flattens recognizer segments into one ordered token list.
//
// Any positive pause between the end of one segment and the start of the
// next becomes a gap token spanning that pause. No gap is emitted before the
// first segment. Segments without word timing collapse into a single token
// spanning the segment. Out-of-order or inverted timing is reported as
// ErrMalformedInput; nothing is repaired.
func BuildTokens(segments []Segment) ([]Token, error) {
	tokens := make([]Token, 0, len(segments)*8)
	prevEnd := math.NaN()
	lastTokenEnd := math.Inf(-1)

	for si, seg := range segments {
		if invalidTime(seg.Start) || invalidTime(seg.End) {
			return nil, malformed("segment %d has invalid timing", si)
		}
		if seg.Start > seg.End {
			return nil, malformed("segment %d starts at %.3f after its end %.3f", si, seg.Start, seg.End)
		}
		if !math.IsNaN(prevEnd) {
			if seg.Start < prevEnd-Epsilon {
				return nil, malformed("segment %d starts at %.3f before previous segment end %.3f", si, seg.Start, prevEnd)
			}
			if gap := seg.Start - prevEnd; gap > 0 {
				tokens = append(tokens, Token{
					Text:  GapLabel(gap),
					Start: prevEnd,
					End:   seg.Start,
					IsGap: true,
				})
				lastTokenEnd = seg.Start
			}
		}

		if len(seg.Words) == 0 {
			if text := strings.TrimSpace(seg.Text); text != "" {
				if seg.Start < lastTokenEnd-Epsilon {
					return nil, malformed("segment %d overlaps the previous token", si)
				}
				tokens = append(tokens, Token{Text: seg.Text, Start: seg.Start, End: seg.End})
				lastTokenEnd = seg.End
			}
			prevEnd = seg.End
			continue
		}

		for wi, w := range seg.Words {
			if invalidTime(w.Start) || invalidTime(w.End) {
				return nil, malformed("segment %d word %d has invalid timing", si, wi)
			}
			if w.Start > w.End {
				return nil, malformed("segment %d word %d starts at %.3f after its end %.3f", si, wi, w.Start, w.End)
			}
			if w.Start < lastTokenEnd-Epsilon {
				return nil, malformed("segment %d word %d starts at %.3f before previous token end %.3f", si, wi, w.Start, lastTokenEnd)
			}
			tokens = append(tokens, Token{Text: w.Word, Start: w.Start, End: w.End})
			lastTokenEnd = w.End
		}
		prevEnd = seg.End
	}

	for i := range tokens {
		tokens[i].Index = i
	}
	return tokens, nil
}

func invalidTime(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0) || v < 0
}
