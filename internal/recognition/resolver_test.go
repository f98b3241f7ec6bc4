package recognition

import (
	"context"
	"errors"
	"testing"

	"github.com/kozaktomas/facegroup/internal/domain"
)

type stubSearcher struct {
	matches []FaceMatch
	err     error
	calls   int
}

func (s *stubSearcher) SearchMatches(ctx context.Context, collectionID, faceID string, threshold float64, maxFaces int) ([]FaceMatch, error) {
	s.calls++
	return s.matches, s.err
}

func TestResolver_PrefersCallerSuppliedMatches(t *testing.T) {
	stub := &stubSearcher{matches: []FaceMatch{{FaceID: "z"}}}
	r := NewResolver(stub)

	got := r.Resolve(context.Background(), "user1", domain.FaceInput{FaceID: "a", MatchedFaceIDs: []string{"b", "c"}})

	if stub.calls != 0 {
		t.Errorf("expected engine not to be called, got %d calls", stub.calls)
	}
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("got %v, want [b c]", got)
	}
}

func TestResolver_CallsEngineWhenNoSuppliedMatches(t *testing.T) {
	stub := &stubSearcher{matches: []FaceMatch{{FaceID: "x"}, {FaceID: "y"}}}
	r := NewResolver(stub)

	got := r.Resolve(context.Background(), "user1", domain.FaceInput{FaceID: "a"})

	if stub.calls != 1 {
		t.Errorf("expected exactly one engine call, got %d", stub.calls)
	}
	if len(got) != 2 {
		t.Errorf("got %v, want [x y]", got)
	}
}

func TestResolver_EngineErrorDowngradesToEmptyMatches(t *testing.T) {
	stub := &stubSearcher{err: errors.New("boom")}
	r := NewResolver(stub)

	got := r.Resolve(context.Background(), "user1", domain.FaceInput{FaceID: "a"})

	if got != nil {
		t.Errorf("expected nil match set on engine error, got %v", got)
	}
}
