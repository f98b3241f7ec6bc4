package reconcile

import (
	"context"
	"testing"

	"github.com/kozaktomas/facegroup/internal/domain"
	"github.com/kozaktomas/facegroup/internal/store/mock"
)

func TestReconciler_DropsDriftedFace(t *testing.T) {
	s := mock.New()
	g := &domain.Group{GroupID: "g1", UserID: "u1"}
	g.AddFace("f1")
	g.AddFace("f2")
	if err := s.PutGroup(context.Background(), "u1", g); err != nil {
		t.Fatal(err)
	}
	// f1 points at a different group than its parent lists it under,
	// simulating a crash between the face-doc write and the group write.
	if err := s.PutFace(context.Background(), "u1", &domain.Face{FaceID: "f1", UserID: "u1", GroupID: "g-elsewhere"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutFace(context.Background(), "u1", &domain.Face{FaceID: "f2", UserID: "u1", GroupID: "g1"}); err != nil {
		t.Fatal(err)
	}

	r := New(s, NewQueue(nil))
	if err := r.repair(context.Background(), "u1", "g1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repaired, err := s.GetGroup(context.Background(), "u1", "g1")
	if err != nil {
		t.Fatal(err)
	}
	if repaired.HasFace("f1") {
		t.Error("expected drifted face f1 to be dropped")
	}
	if !repaired.HasFace("f2") {
		t.Error("expected f2 to remain")
	}
}

func TestReconciler_MergesOverlappingGroups(t *testing.T) {
	s := mock.New()
	g1 := &domain.Group{GroupID: "g1", UserID: "u1"}
	g1.AddFace("f1")
	g2 := &domain.Group{GroupID: "g2", UserID: "u1"}
	g2.AddFace("f1")
	g2.AddFace("f2")
	if err := s.PutGroup(context.Background(), "u1", g1); err != nil {
		t.Fatal(err)
	}
	if err := s.PutGroup(context.Background(), "u1", g2); err != nil {
		t.Fatal(err)
	}
	if err := s.PutFace(context.Background(), "u1", &domain.Face{FaceID: "f1", UserID: "u1", GroupID: "g1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutFace(context.Background(), "u1", &domain.Face{FaceID: "f2", UserID: "u1", GroupID: "g2"}); err != nil {
		t.Fatal(err)
	}

	r := New(s, NewQueue(nil))
	if err := r.repair(context.Background(), "u1", "g1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	merged, err := s.GetGroup(context.Background(), "u1", "g1")
	if err != nil {
		t.Fatal(err)
	}
	if !merged.HasFace("f1") || !merged.HasFace("f2") {
		t.Errorf("expected merged group to contain f1 and f2, got %v", merged.FaceIDs)
	}

	gone, err := s.GetGroup(context.Background(), "u1", "g2")
	if err != nil {
		t.Fatal(err)
	}
	if gone != nil {
		t.Error("expected g2 to be deleted after merge")
	}
}

func TestReconciler_DeletesStaleMergeLoserRepairedFirst(t *testing.T) {
	s := mock.New()
	// Simulate a crash partway through a merge: the winner (g1) already
	// absorbed g2's faces (both face docs point at g1 and g1.MergedFrom
	// names g2), but g2's own group doc was never deleted. If the dirty
	// queue (an unordered Redis Set) drains g2's entry before g1's, g2
	// must still be recognized as a stale loser and cleaned up.
	g1 := &domain.Group{GroupID: "g1", UserID: "u1", MergedFrom: []string{"g2"}}
	g1.AddFace("f1")
	g1.AddFace("f2")
	g2 := &domain.Group{GroupID: "g2", UserID: "u1"}
	g2.AddFace("f2")
	if err := s.PutGroup(context.Background(), "u1", g1); err != nil {
		t.Fatal(err)
	}
	if err := s.PutGroup(context.Background(), "u1", g2); err != nil {
		t.Fatal(err)
	}
	if err := s.PutFace(context.Background(), "u1", &domain.Face{FaceID: "f1", UserID: "u1", GroupID: "g1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutFace(context.Background(), "u1", &domain.Face{FaceID: "f2", UserID: "u1", GroupID: "g1"}); err != nil {
		t.Fatal(err)
	}

	r := New(s, NewQueue(nil))
	if err := r.repair(context.Background(), "u1", "g2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gone, err := s.GetGroup(context.Background(), "u1", "g2")
	if err != nil {
		t.Fatal(err)
	}
	if gone != nil {
		t.Error("expected stale merge loser g2 to be deleted")
	}

	survivor, err := s.GetGroup(context.Background(), "u1", "g1")
	if err != nil {
		t.Fatal(err)
	}
	if survivor == nil {
		t.Fatal("expected winner g1 to be untouched")
	}
	if !survivor.HasFace("f1") || !survivor.HasFace("f2") {
		t.Errorf("expected g1 to keep both faces, got %v", survivor.FaceIDs)
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(2, 0)
	if cb.IsOpen() {
		t.Fatal("expected breaker to start closed")
	}
	cb.RecordFailure()
	if cb.IsOpen() {
		t.Fatal("expected breaker to stay closed below threshold")
	}
	cb.RecordFailure()
	if !cb.IsOpen() {
		t.Fatal("expected breaker to open at threshold")
	}
	cb.RecordSuccess()
	if cb.IsOpen() {
		t.Fatal("expected RecordSuccess to reset the breaker")
	}
}
