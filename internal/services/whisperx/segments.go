package whisperx

import (
	"encoding/json"
	"fmt"
	"os"

	"trimscript/internal/transcript"
)

// Word represents a single word with timing from WhisperX output. WhisperX
// omits the times of words it could not align (numerals, symbols), so both
// are optional here.
type Word struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

// Payload is the JSON document WhisperX writes.
type Payload struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// LoadPayload reads a WhisperX JSON file.
func LoadPayload(jsonPath string) (Payload, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return Payload{}, err
	}
	return ParsePayload(data)
}

// ParsePayload decodes WhisperX JSON output.
func ParsePayload(data []byte) (Payload, error) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Payload{}, fmt.Errorf("%w: parse whisperx json: %v", transcript.ErrMalformedInput, err)
	}
	return payload, nil
}

// LoadSegments loads segments from a WhisperX JSON file and converts them
// to transcript segments.
func LoadSegments(jsonPath string) ([]transcript.Segment, error) {
	payload, err := LoadPayload(jsonPath)
	if err != nil {
		return nil, err
	}
	return ToTranscriptSegments(payload.Segments), nil
}

// ToTranscriptSegments converts WhisperX segments, filling missing word
// times from their neighbours. A word without a start begins where the
// previous word ended (or at the segment start); a word without an end
// finishes where the next timed word starts (or at the segment end).
func ToTranscriptSegments(segments []Segment) []transcript.Segment {
	out := make([]transcript.Segment, 0, len(segments))
	for _, seg := range segments {
		converted := transcript.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
		if len(seg.Words) > 0 {
			converted.Words = fillWordTimes(seg)
		}
		out = append(out, converted)
	}
	return out
}

func fillWordTimes(seg Segment) []transcript.Word {
	words := make([]transcript.Word, len(seg.Words))
	prevEnd := seg.Start
	for i, w := range seg.Words {
		start := prevEnd
		if w.Start != nil {
			start = *w.Start
		}
		var end float64
		switch {
		case w.End != nil:
			end = *w.End
		default:
			end = nextKnownStart(seg, i+1)
		}
		if end < start {
			end = start
		}
		words[i] = transcript.Word{Word: w.Word, Start: start, End: end}
		prevEnd = end
	}
	return words
}

func nextKnownStart(seg Segment, from int) float64 {
	for j := from; j < len(seg.Words); j++ {
		if seg.Words[j].Start != nil {
			return *seg.Words[j].Start
		}
	}
	return seg.End
}
