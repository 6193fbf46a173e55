package transcript

// Transcript is the immutable Original Sequence produced by one recognizer
// run. Token indices are positions in this sequence and serve as identity for
// the lifetime of a session.
type Transcript struct {
	tokens []Token
}

// NewTranscript copies tokens, assigns their indices, and checks that timing
// is usable. Start times must not decrease across the sequence.
func NewTranscript(tokens []Token) (*Transcript, error) {
	copied := make([]Token, len(tokens))
	copy(copied, tokens)
	for i := range copied {
		tok := &copied[i]
		tok.Index = i
		if invalidTime(tok.Start) || invalidTime(tok.End) {
			return nil, malformed("token %d has invalid timing", i)
		}
		if tok.Start > tok.End {
			return nil, malformed("token %d starts at %.3f after its end %.3f", i, tok.Start, tok.End)
		}
		if i > 0 && tok.Start < copied[i-1].Start-Epsilon {
			return nil, malformed("token %d starts at %.3f before token %d at %.3f", i, tok.Start, i-1, copied[i-1].Start)
		}
	}
	return &Transcript{tokens: copied}, nil
}

// FromSegments runs the segmenter and wraps the result.
func FromSegments(segments []Segment) (*Transcript, error) {
	tokens, err := BuildTokens(segments)
	if err != nil {
		return nil, err
	}
	return NewTranscript(tokens)
}

// Len reports the number of tokens in the Original Sequence.
func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.tokens)
}

// Token returns the token at original index i.
func (t *Transcript) Token(i int) (Token, bool) {
	if t == nil || i < 0 || i >= len(t.tokens) {
		return Token{}, false
	}
	return t.tokens[i], true
}

// Tokens returns a copy of the Original Sequence.
func (t *Transcript) Tokens() []Token {
	if t == nil {
		return nil
	}
	out := make([]Token, len(t.tokens))
	copy(out, t.tokens)
	return out
}

// InitialKept returns the index list that keeps every token.
func (t *Transcript) InitialKept() []int {
	kept := make([]int, t.Len())
	for i := range kept {
		kept[i] = i
	}
	return kept
}

// Duration returns the end of the last token.
func (t *Transcript) Duration() float64 {
	if t == nil {
		return 0
	}
	return MaxEnd(t.tokens)
}

// resolve maps an index list onto tokens. Callers guarantee the list is valid.
func (t *Transcript) resolve(indices []int) []Token {
	out := make([]Token, len(indices))
	for i, idx := range indices {
		out[i] = t.tokens[idx]
	}
	return out
}

// validKept reports whether indices form a strictly increasing list of
// original indices.
func (t *Transcript) validKept(indices []int) bool {
	prev := -1
	for _, idx := range indices {
		if idx <= prev || idx >= t.Len() {
			return false
		}
		prev = idx
	}
	return true
}
