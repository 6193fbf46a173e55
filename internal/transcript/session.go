package transcript

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// Session is the mutable edit state over one Transcript: the Kept Sequence,
// its duration, and the undo stack.
//
// Writers are serialised by an internal mutex. Readers load an immutable
// state value and never observe a half-applied edit.
type Session struct {
	transcript *Transcript

	mu      sync.Mutex
	history [][]int

	state atomic.Pointer[sessionState]
}

type sessionState struct {
	kept     []int
	duration float64
	version  uint64
	depth    int
}

// Snapshot is a consistent read of the session at one version.
type Snapshot struct {
	Indices  []int
	Tokens   []Token
	Duration float64
	Version  uint64
}

// NewSession starts an edit session that keeps every token.
func NewSession(t *Transcript) *Session {
	s := &Session{transcript: t}
	s.install(t.InitialKept(), 0)
	return s
}

// RestoreSession rebuilds a persisted session. Every list must be a strictly
// increasing list of original indices.
func RestoreSession(t *Transcript, kept []int, history [][]int, version uint64) (*Session, error) {
	if !t.validKept(kept) {
		return nil, malformed("kept sequence is not an ordered subsequence of the transcript")
	}
	restored := make([][]int, 0, len(history))
	for depth, snap := range history {
		if !t.validKept(snap) {
			return nil, malformed("undo snapshot %d is not an ordered subsequence of the transcript", depth)
		}
		restored = append(restored, slices.Clone(snap))
	}
	s := &Session{transcript: t, history: restored}
	s.install(slices.Clone(kept), version)
	return s, nil
}

// Transcript returns the Original Sequence the session edits.
func (s *Session) Transcript() *Transcript {
	return s.transcript
}

// Kept returns the current Kept Sequence tokens.
func (s *Session) Kept() []Token {
	st := s.state.Load()
	return s.transcript.resolve(st.kept)
}

// KeptIndices returns the original indices of the kept tokens.
func (s *Session) KeptIndices() []int {
	return slices.Clone(s.state.Load().kept)
}

// Duration returns the max end time over kept tokens, or 0 when empty.
func (s *Session) Duration() float64 {
	return s.state.Load().duration
}

// Version increases with every applied edit, undo included.
func (s *Session) Version() uint64 {
	return s.state.Load().version
}

// HistoryDepth reports how many undo snapshots are available.
func (s *Session) HistoryDepth() int {
	return s.state.Load().depth
}

// CanUndo reports whether Undo would restore anything.
func (s *Session) CanUndo() bool {
	return s.HistoryDepth() > 0
}

// Snapshot returns the kept tokens and version from a single state load.
func (s *Session) Snapshot() Snapshot {
	st := s.state.Load()
	return Snapshot{
		Indices:  slices.Clone(st.kept),
		Tokens:   s.transcript.resolve(st.kept),
		Duration: st.duration,
		Version:  st.version,
	}
}

// History returns a copy of the undo stack, oldest first.
func (s *Session) History() [][]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]int, len(s.history))
	for i, snap := range s.history {
		out[i] = slices.Clone(snap)
	}
	return out
}

// DeleteIndices removes the given original indices from the Kept Sequence.
// Indices that are out of range or already removed are ignored. A snapshot
// is pushed only when something is removed. It returns the number removed.
func (s *Session) DeleteIndices(indices ...int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state.Load()
	drop := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < s.transcript.Len() {
			drop[idx] = struct{}{}
		}
	}
	next := make([]int, 0, len(st.kept))
	for _, idx := range st.kept {
		if _, ok := drop[idx]; ok {
			continue
		}
		next = append(next, idx)
	}
	removed := len(st.kept) - len(next)
	if removed == 0 {
		return 0
	}
	s.commitLocked(st, next)
	return removed
}

// DeletePositions removes tokens addressed by their position in the current
// Kept Sequence, the way a list view refers to them.
func (s *Session) DeletePositions(positions ...int) int {
	s.mu.Lock()
	st := s.state.Load()
	indices := make([]int, 0, len(positions))
	for _, pos := range positions {
		if pos >= 0 && pos < len(st.kept) {
			indices = append(indices, st.kept[pos])
		}
	}
	s.mu.Unlock()
	if len(indices) == 0 {
		return 0
	}
	// Indices are identity, so a concurrent edit in between cannot remove
	// the wrong token.
	return s.DeleteIndices(indices...)
}

// Undo restores the most recent snapshot. It reports false when the stack
// is empty, which is not an error.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return false
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	st := s.state.Load()
	s.install(last, st.version+1)
	return true
}

// Replace installs a new Kept Sequence after pushing a snapshot. The list
// must be an ordered subsequence of the current Kept Sequence, and the
// session must still be at expectedVersion.
func (s *Session) Replace(expectedVersion uint64, kept []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(expectedVersion, kept)
}

func (s *Session) replaceLocked(expectedVersion uint64, kept []int) error {
	st := s.state.Load()
	if st.version != expectedVersion {
		return fmt.Errorf("%w: expected version %d, at %d", ErrStaleState, expectedVersion, st.version)
	}
	if !isSubsequence(kept, st.kept) {
		return malformed("replacement is not an ordered subsequence of the kept tokens")
	}
	s.commitLocked(st, slices.Clone(kept))
	return nil
}

// Align reconciles candidates against the current Kept Sequence and commits
// the result. On failure the session is unchanged.
func (s *Session) Align(candidates []string, opts AlignOptions) (AlignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state.Load()
	result, err := Align(candidates, s.transcript.resolve(st.kept), opts)
	if err != nil {
		return AlignResult{}, err
	}
	if err := s.replaceLocked(st.version, result.Kept); err != nil {
		return AlignResult{}, err
	}
	return result, nil
}

// AlignText is Align for free-form text matched character by character.
func (s *Session) AlignText(text string) (AlignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state.Load()
	result, err := AlignText(text, s.transcript.resolve(st.kept))
	if err != nil {
		return AlignResult{}, err
	}
	if err := s.replaceLocked(st.version, result.Kept); err != nil {
		return AlignResult{}, err
	}
	return result, nil
}

func (s *Session) commitLocked(prev *sessionState, next []int) {
	s.history = append(s.history, prev.kept)
	s.install(next, prev.version+1)
}

// install publishes a new state. kept must not be shared with callers.
func (s *Session) install(kept []int, version uint64) {
	if kept == nil {
		kept = []int{}
	}
	s.state.Store(&sessionState{
		kept:     kept,
		duration: MaxEnd(s.transcript.resolve(kept)),
		version:  version,
		depth:    len(s.history),
	})
}

func isSubsequence(sub, of []int) bool {
	j := 0
	prev := -1
	for _, idx := range sub {
		if idx <= prev {
			return false
		}
		for j < len(of) && of[j] != idx {
			j++
		}
		if j == len(of) {
			return false
		}
		prev = idx
		j++
	}
	return true
}
