package transcript_test

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"trimscript/internal/transcript"
)

func TestDeleteIndicesAndUndo(t *testing.T) {
	s := newHelloWorldSession(t)

	if removed := s.DeleteIndices(0); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	kept := s.Kept()
	if len(kept) != 6 || kept[0].Text != "好" {
		t.Fatalf("unexpected kept tokens %v", texts(kept))
	}
	if s.HistoryDepth() != 1 {
		t.Fatalf("expected one undo snapshot, got %d", s.HistoryDepth())
	}
	if !s.Undo() {
		t.Fatal("expected undo to restore a snapshot")
	}
	if got := len(s.Kept()); got != 7 {
		t.Fatalf("expected 7 tokens after undo, got %d", got)
	}
	if s.Undo() {
		t.Fatal("expected undo on empty stack to be a no-op")
	}
}

func TestDeleteIndicesIgnoresOutOfRangeAndRepeats(t *testing.T) {
	s := newHelloWorldSession(t)

	if removed := s.DeleteIndices(-1, 7, 99); removed != 0 {
		t.Fatalf("expected nothing removed, got %d", removed)
	}
	if s.HistoryDepth() != 0 {
		t.Fatal("no-op delete must not push a snapshot")
	}
	before := s.Version()
	if removed := s.DeleteIndices(5, 5, 1); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if s.Version() == before {
		t.Fatal("expected version to advance")
	}
	if removed := s.DeleteIndices(5); removed != 0 {
		t.Fatalf("deleting an already removed index should be ignored, removed %d", removed)
	}
	want := []string{"你", "，", "[0.800 sec]", "世", "！"}
	if got := texts(s.Kept()); !equalStrings(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestDeleteGapTokenIndependently(t *testing.T) {
	s := newHelloWorldSession(t)
	s.DeleteIndices(3)
	for _, tok := range s.Kept() {
		if tok.IsGap {
			t.Fatal("gap token should be deletable like any other token")
		}
	}
	if len(s.Kept()) != 6 {
		t.Fatalf("expected 6 kept tokens, got %d", len(s.Kept()))
	}
}

func TestDeletePositionsAddressesKeptSequence(t *testing.T) {
	s := newHelloWorldSession(t)
	s.DeleteIndices(0, 1)
	// Position 0 is now original index 2 ("，").
	if removed := s.DeletePositions(0, 40); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if got := s.KeptIndices(); !slices.Equal(got, []int{3, 4, 5, 6}) {
		t.Fatalf("unexpected kept indices %v", got)
	}
}

func TestDurationTracksKeptTokens(t *testing.T) {
	s := newHelloWorldSession(t)
	if s.Duration() != 3.5 {
		t.Fatalf("expected duration 3.5, got %v", s.Duration())
	}
	s.DeleteIndices(6)
	if s.Duration() != 3.2 {
		t.Fatalf("expected duration 3.2, got %v", s.Duration())
	}
	s.DeleteIndices(0, 1, 2, 3, 4, 5)
	if s.Duration() != 0 {
		t.Fatalf("expected zero duration when empty, got %v", s.Duration())
	}
	if len(s.Kept()) != 0 {
		t.Fatal("expected empty kept sequence")
	}
	s.Undo()
	if s.Duration() != 3.2 {
		t.Fatalf("expected duration restored to 3.2, got %v", s.Duration())
	}
}

func TestUndoReturnsToInitialAfterManyEdits(t *testing.T) {
	s := newHelloWorldSession(t)
	initial := s.KeptIndices()

	var snapshots [][]int
	for _, idx := range []int{6, 0, 3, 4} {
		snapshots = append(snapshots, s.KeptIndices())
		s.DeleteIndices(idx)
	}
	for i := len(snapshots) - 1; i >= 0; i-- {
		if !s.Undo() {
			t.Fatalf("undo %d failed", i)
		}
		if got := s.KeptIndices(); !slices.Equal(got, snapshots[i]) {
			t.Fatalf("undo %d restored %v want %v", i, got, snapshots[i])
		}
	}
	if got := s.KeptIndices(); !slices.Equal(got, initial) {
		t.Fatalf("expected initial kept %v, got %v", initial, got)
	}
}

func TestReplaceRejectsStaleAndNonSubsequence(t *testing.T) {
	s := newHelloWorldSession(t)
	version := s.Version()

	if err := s.Replace(version, []int{4, 1}); !errors.Is(err, transcript.ErrMalformedInput) {
		t.Fatalf("expected malformed error for out-of-order list, got %v", err)
	}
	s.DeleteIndices(1)
	if err := s.Replace(version, []int{0}); !errors.Is(err, transcript.ErrStaleState) {
		t.Fatalf("expected stale state error, got %v", err)
	}
	if err := s.Replace(s.Version(), []int{0, 1}); !errors.Is(err, transcript.ErrMalformedInput) {
		t.Fatalf("expected removed index to be rejected, got %v", err)
	}
	if err := s.Replace(s.Version(), []int{0, 6}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := s.KeptIndices(); !slices.Equal(got, []int{0, 6}) {
		t.Fatalf("unexpected kept %v", got)
	}
	if s.HistoryDepth() != 2 {
		t.Fatalf("expected 2 snapshots, got %d", s.HistoryDepth())
	}
}

func TestRestoreSessionValidates(t *testing.T) {
	tr, err := transcript.FromSegments(helloWorldSegments())
	if err != nil {
		t.Fatalf("FromSegments: %v", err)
	}
	if _, err := transcript.RestoreSession(tr, []int{2, 1}, nil, 0); !errors.Is(err, transcript.ErrMalformedInput) {
		t.Fatalf("expected malformed kept to be rejected, got %v", err)
	}
	if _, err := transcript.RestoreSession(tr, []int{1}, [][]int{{0, 9}}, 0); !errors.Is(err, transcript.ErrMalformedInput) {
		t.Fatalf("expected malformed history to be rejected, got %v", err)
	}
	s, err := transcript.RestoreSession(tr, []int{1, 2}, [][]int{{0, 1, 2, 3, 4, 5, 6}}, 4)
	if err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if s.Version() != 4 || s.HistoryDepth() != 1 {
		t.Fatalf("unexpected restored state version=%d depth=%d", s.Version(), s.HistoryDepth())
	}
	if !s.Undo() || len(s.Kept()) != 7 {
		t.Fatal("expected undo to restore the persisted snapshot")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a := newHelloWorldSession(t)
	b := newHelloWorldSession(t)
	a.DeleteIndices(0, 1, 2)
	if len(b.Kept()) != 7 || b.HistoryDepth() != 0 {
		t.Fatal("edits on one session leaked into another")
	}
}

func TestConcurrentReadersSeeWholeStates(t *testing.T) {
	s := newHelloWorldSession(t)
	valid := map[int]bool{7: true, 6: true}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan string, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap := s.Snapshot()
			if !valid[len(snap.Tokens)] || len(snap.Tokens) != len(snap.Indices) {
				select {
				case errs <- "observed partial state":
				default:
				}
				return
			}
		}
	}()
	for i := 0; i < 200; i++ {
		s.DeleteIndices(0)
		s.Undo()
	}
	close(stop)
	wg.Wait()
	select {
	case msg := <-errs:
		t.Fatal(msg)
	default:
	}
}
