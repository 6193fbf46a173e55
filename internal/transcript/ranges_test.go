package transcript_test

import (
	"math"
	"slices"
	"testing"

	"trimscript/internal/transcript"
)

func TestCompileRangesMergesWithinEpsilon(t *testing.T) {
	kept := []transcript.Token{
		{Text: "a", Start: 0, End: 1},
		{Text: "b", Start: 1.0005, End: 2},
		{Text: "c", Start: 2.5, End: 3},
		{Text: "d", Start: 3, End: 3.25},
	}
	got := transcript.CompileRanges(kept)
	want := transcript.Ranges{{Start: 0, End: 2}, {Start: 2.5, End: 3.25}}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if total := got.Total(); math.Abs(total-2.75) > 1e-9 {
		t.Fatalf("unexpected total %v", total)
	}
}

func TestCompileRangesEmpty(t *testing.T) {
	if got := transcript.CompileRanges(nil); len(got) != 0 {
		t.Fatalf("expected no ranges, got %v", got)
	}
}

func TestCompileRangesAreDisjointAndIncreasing(t *testing.T) {
	s := newHelloWorldSession(t)
	s.DeleteIndices(1, 3, 5)
	ranges := transcript.CompileRanges(s.Kept())
	for i := 1; i < len(ranges); i++ {
		if ranges[i].Start <= ranges[i-1].End {
			t.Fatalf("ranges overlap or touch: %v", ranges)
		}
	}
	for _, r := range ranges {
		if r.End < r.Start {
			t.Fatalf("inverted range %v", r)
		}
	}
	// 你 | ， | 世 | ！ -> 0-0.4, 0.8-1.2, 2.0-2.7, 3.2-3.5
	if len(ranges) != 4 {
		t.Fatalf("expected 4 ranges, got %v", ranges)
	}
}

func TestRangesClamp(t *testing.T) {
	rs := transcript.Ranges{{Start: 0, End: 1}, {Start: 2, End: 5}, {Start: 6, End: 7}}
	got := rs.Clamp(4)
	want := transcript.Ranges{{Start: 0, End: 1}, {Start: 2, End: 4}}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if unchanged := rs.Clamp(0); !slices.Equal(unchanged, rs) {
		t.Fatalf("expected non-positive limit to keep ranges, got %v", unchanged)
	}
}
