package transcript_test

import (
	"testing"

	"trimscript/internal/transcript"
)

// helloWorldSegments is the two-segment Mandarin sample used across tests:
// 你好， (0-1.2) then 世界！ (2.0-3.5).
func helloWorldSegments() []transcript.Segment {
	return []transcript.Segment{
		{Start: 0, End: 1.2, Text: "你好，", Words: []transcript.Word{
			{Word: "你", Start: 0, End: 0.4},
			{Word: "好", Start: 0.4, End: 0.8},
			{Word: "，", Start: 0.8, End: 1.2},
		}},
		{Start: 2.0, End: 3.5, Text: "世界！", Words: []transcript.Word{
			{Word: "世", Start: 2.0, End: 2.7},
			{Word: "界", Start: 2.7, End: 3.2},
			{Word: "！", Start: 3.2, End: 3.5},
		}},
	}
}

func newHelloWorldSession(t *testing.T) *transcript.Session {
	t.Helper()
	tr, err := transcript.FromSegments(helloWorldSegments())
	if err != nil {
		t.Fatalf("FromSegments: %v", err)
	}
	return transcript.NewSession(tr)
}

func texts(tokens []transcript.Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
