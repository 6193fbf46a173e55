package transcript

import "math"

// Epsilon is the largest pause, in seconds, that still merges two adjacent
// kept tokens into one play range. It also absorbs recognizer timing jitter.
const Epsilon = 0.001

// Range is a half-open play interval of the source media, in seconds.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the range length in seconds.
func (r Range) Duration() float64 {
	return r.End - r.Start
}

// Ranges is an ordered, disjoint list of play ranges.
type Ranges []Range

// Total returns the summed duration of all ranges.
func (rs Ranges) Total() float64 {
	var total float64
	for _, r := range rs {
		total += r.Duration()
	}
	return total
}

// Clamp trims ranges to [0, limit] and drops those left empty. A
// non-positive limit returns the ranges unchanged.
func (rs Ranges) Clamp(limit float64) Ranges {
	if limit <= 0 {
		return rs
	}
	out := make(Ranges, 0, len(rs))
	for _, r := range rs {
		r.Start = math.Max(0, r.Start)
		r.End = math.Min(limit, r.End)
		if r.End-r.Start > 0 {
			out = append(out, r)
		}
	}
	return out
}

// CompileRanges merges the kept tokens into play ranges. A token starting
// more than Epsilon after the current range end opens a new range; anything
// closer extends it.
func CompileRanges(kept []Token) Ranges {
	out := make(Ranges, 0, len(kept)/4+1)
	for _, tok := range kept {
		if len(out) == 0 || tok.Start-out[len(out)-1].End > Epsilon {
			out = append(out, Range{Start: tok.Start, End: tok.End})
			continue
		}
		last := &out[len(out)-1]
		last.End = math.Max(last.End, tok.End)
	}
	return out
}
