package rewrite

import "trimscript/internal/transcript"

// SplitChunks cuts tokens into runs of at most limit speech tokens. A cut
// lands after the last gap token inside the window when there is one, so
// sentences stay together. Gap tokens do not count toward the limit.
func SplitChunks(tokens []transcript.Token, limit int) [][]transcript.Token {
	if len(tokens) == 0 {
		return nil
	}
	if limit <= 0 {
		return [][]transcript.Token{tokens}
	}

	var chunks [][]transcript.Token
	start := 0
	for start < len(tokens) {
		speech := 0
		lastGap := -1
		end := start
		for end < len(tokens) {
			tok := tokens[end]
			if tok.IsGap {
				lastGap = end
				end++
				continue
			}
			if speech == limit {
				break
			}
			speech++
			end++
		}
		if end < len(tokens) && lastGap > start {
			end = lastGap + 1
		}
		chunks = append(chunks, tokens[start:end])
		start = end
	}
	return chunks
}
