package testsupport

import (
	"testing"

	"trimscript/internal/transcript"
)

// SampleSegments returns two recognizer segments separated by a 1.5 second
// pause: "So um today" and "we ship it".
func SampleSegments() []transcript.Segment {
	return []transcript.Segment{
		{
			Start: 0.0, End: 1.5, Text: "So um today",
			Words: []transcript.Word{
				{Word: "So", Start: 0.0, End: 0.4},
				{Word: " um", Start: 0.5, End: 0.9},
				{Word: " today", Start: 1.0, End: 1.5},
			},
		},
		{
			Start: 3.0, End: 4.6, Text: " we ship it",
			Words: []transcript.Word{
				{Word: " we", Start: 3.0, End: 3.4},
				{Word: " ship", Start: 3.5, End: 4.0},
				{Word: " it", Start: 4.1, End: 4.6},
			},
		},
	}
}

// SampleTranscript builds a transcript from SampleSegments.
func SampleTranscript(t testing.TB) *transcript.Transcript {
	t.Helper()

	tr, err := transcript.FromSegments(SampleSegments())
	if err != nil {
		t.Fatalf("transcript.FromSegments: %v", err)
	}
	return tr
}
