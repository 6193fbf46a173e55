package rewrite

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"trimscript/internal/services/llm"
	"trimscript/internal/transcript"
)

// ErrMalformedResponse marks a model reply that is not a word list.
var ErrMalformedResponse = fmt.Errorf("%w: malformed rewrite response", transcript.ErrMalformedInput)

// RequestWord is one item of the request and response arrays.
type RequestWord struct {
	Word string `json:"word"`
}

// BuildRequest encodes the speech tokens as the user message. Gap tokens are
// never sent; alignment carries them.
func BuildRequest(tokens []transcript.Token) (string, error) {
	words := make([]RequestWord, 0, len(tokens))
	for _, text := range transcript.SpeechTexts(tokens) {
		words = append(words, RequestWord{Word: text})
	}
	data, err := json.Marshal(words)
	if err != nil {
		return "", fmt.Errorf("encode rewrite request: %w", err)
	}
	return string(data), nil
}

// ParseResponse decodes a model reply into candidate word strings. It accepts
// a bare array, a fenced block, or an object with a "words" array.
func ParseResponse(content string) ([]string, error) {
	payload := llm.ExtractJSON(content)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	var raw []json.RawMessage
	switch payload[0] {
	case '[':
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return nil, fmt.Errorf("%w: %v (snippet: %s)", ErrMalformedResponse, err, llm.SummarizeSnippet(payload))
		}
	case '{':
		var wrapper struct {
			Words []json.RawMessage `json:"words"`
		}
		if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v (snippet: %s)", ErrMalformedResponse, err, llm.SummarizeSnippet(payload))
		}
		if wrapper.Words == nil {
			return nil, fmt.Errorf("%w: object has no words array", ErrMalformedResponse)
		}
		raw = wrapper.Words
	default:
		return nil, fmt.Errorf("%w: no JSON array (snippet: %s)", ErrMalformedResponse, llm.SummarizeSnippet(content))
	}

	out := make([]string, 0, len(raw))
	for i, item := range raw {
		word, err := decodeItem(item)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrMalformedResponse, i, err)
		}
		out = append(out, word)
	}
	return out, nil
}

func decodeItem(item json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(item))
	if trimmed == "" || trimmed[0] != '{' {
		return "", errors.New("expected an object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return "", err
	}
	value, ok := fields["word"]
	if !ok {
		return "", errors.New(`missing "word"`)
	}
	var word string
	if err := json.Unmarshal(value, &word); err != nil {
		return "", errors.New(`"word" is not a string`)
	}
	return word, nil
}
