package transcript

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultLookahead bounds how many consecutive candidate tokens may go
// unmatched before Align stops walking.
const DefaultLookahead = 32

// AlignOptions tunes Align.
type AlignOptions struct {
	// Lookahead overrides DefaultLookahead when positive.
	Lookahead int
}

// AlignResult lists the outcome of a successful alignment as original
// indices, both in Original Sequence order.
type AlignResult struct {
	Kept    []int `json:"kept"`
	Dropped []int `json:"dropped"`
}

// Align maps a rewritten word list back onto origin, the current kept tokens.
//
// Candidates must be an order-preserving subset of the speech tokens of
// origin; anything else is reported as an *AlignmentError and nothing is
// returned. Gap tokens and blank tokens are never matched. They survive when
// every adjacent speech token survives.
func Align(candidates []string, origin []Token, opts AlignOptions) (AlignResult, error) {
	lookahead := opts.Lookahead
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}

	keys := make([]string, 0, len(candidates))
	positions := make([]int, 0, len(candidates))
	for pos, c := range candidates {
		if k := matchKey(c); k != "" {
			keys = append(keys, k)
			positions = append(positions, pos)
		}
	}

	originKeys := make([]string, len(origin))
	remaining := make(map[string]int, len(origin))
	for i, tok := range origin {
		if tok.IsGap {
			continue
		}
		originKeys[i] = matchKey(tok.Text)
		if originKeys[i] != "" {
			remaining[originKeys[i]]++
		}
	}

	keep := make([]bool, len(origin))
	var unmatched []int
	i, j, skipped := 0, 0, 0
	for i < len(origin) && j < len(keys) {
		key := originKeys[i]
		if key == "" {
			i++
			continue
		}
		if key == keys[j] {
			keep[i] = true
			remaining[key]--
			i++
			j++
			skipped = 0
			continue
		}
		if remaining[keys[j]] == 0 {
			// Nothing left in origin can ever match this candidate.
			unmatched = append(unmatched, positions[j])
			j++
			skipped++
			if skipped > lookahead {
				break
			}
			continue
		}
		remaining[key]--
		i++
	}
	for ; j < len(keys); j++ {
		unmatched = append(unmatched, positions[j])
	}

	if len(unmatched) > 0 {
		return AlignResult{}, &AlignmentError{
			Origin:     tokenTexts(origin),
			Candidates: append([]string(nil), candidates...),
			Unmatched:  unmatched,
		}
	}

	carryTransparent(origin, originKeys, keep)
	result := collect(origin, keep)

	var rebuilt strings.Builder
	for i, ok := range keep {
		if ok {
			rebuilt.WriteString(originKeys[i])
		}
	}
	if rebuilt.String() != strings.Join(keys, "") {
		return AlignResult{}, &AlignmentError{
			Origin:     tokenTexts(origin),
			Candidates: append([]string(nil), candidates...),
			Reason:     "reconstructed text differs from candidate text",
		}
	}
	return result, nil
}

// AlignText keeps the speech tokens of origin whose characters appear, in
// order, in text. Whitespace is ignored on both sides. Any character of text
// left unconsumed is reported as an *AlignmentError.
func AlignText(text string, origin []Token) (AlignResult, error) {
	target := []rune(compactKey(text))
	originKeys := make([]string, len(origin))
	keep := make([]bool, len(origin))

	p := 0
	for i, tok := range origin {
		if tok.IsGap {
			continue
		}
		key := compactKey(tok.Text)
		originKeys[i] = key
		if key == "" {
			continue
		}
		r := []rune(key)
		if p+len(r) <= len(target) && string(target[p:p+len(r)]) == key {
			keep[i] = true
			p += len(r)
		}
	}
	if p < len(target) {
		return AlignResult{}, &AlignmentError{
			Origin:     tokenTexts(origin),
			Candidates: []string{text},
			Unmatched:  []int{0},
			Reason:     "text from " + quoteSnippet(string(target[p:])) + " has no matching tokens",
		}
	}

	carryTransparent(origin, originKeys, keep)
	return collect(origin, keep), nil
}

// carryTransparent decides gap and blank tokens: each survives when the
// nearest speech token on both sides survived. A missing side counts as
// surviving.
func carryTransparent(origin []Token, keys []string, keep []bool) {
	leftOK := make([]bool, len(origin))
	ok := true
	for i := range origin {
		if keys[i] == "" {
			leftOK[i] = ok
			continue
		}
		ok = keep[i]
	}
	ok = true
	for i := len(origin) - 1; i >= 0; i-- {
		if keys[i] == "" {
			keep[i] = leftOK[i] && ok
			continue
		}
		ok = keep[i]
	}
}

func collect(origin []Token, keep []bool) AlignResult {
	result := AlignResult{Kept: []int{}, Dropped: []int{}}
	for i, tok := range origin {
		if keep[i] {
			result.Kept = append(result.Kept, tok.Index)
		} else {
			result.Dropped = append(result.Dropped, tok.Index)
		}
	}
	return result
}

// matchKey is the comparison form of a token: NFC normalized and trimmed.
func matchKey(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func compactKey(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), ""))
}

func tokenTexts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

func quoteSnippet(s string) string {
	r := []rune(s)
	if len(r) > 24 {
		return `"` + string(r[:24]) + `..."`
	}
	return `"` + s + `"`
}
