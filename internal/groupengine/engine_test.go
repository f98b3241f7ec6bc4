package groupengine

import (
	"context"
	"testing"

	"github.com/kozaktomas/facegroup/internal/domain"
	"github.com/kozaktomas/facegroup/internal/store/mock"
)

type stubResolver struct {
	byFace map[string][]string
}

func (r *stubResolver) Resolve(ctx context.Context, userID string, face domain.FaceInput) []string {
	if len(face.MatchedFaceIDs) > 0 {
		return face.MatchedFaceIDs
	}
	return r.byFace[face.FaceID]
}

type stubProber struct {
	reachable bool
}

func (p *stubProber) Reachable(ctx context.Context, url string) bool {
	return p.reachable
}

func newTestEngine(s *mock.Store, resolver Resolver) *Engine {
	e := New(s, resolver, &stubProber{reachable: true})
	ids := []string{}
	next := 0
	e.NewID = func() string {
		next++
		id := ""
		if next <= len(ids) {
			id = ids[next-1]
		} else {
			id = "g" + string(rune('0'+next))
		}
		return id
	}
	return e
}

func TestProcessBatch_NoMatches_CreatesNewGroup(t *testing.T) {
	s := mock.New()
	s.SeedFile("u1", domain.File{FileID: "f1", URL: "http://example.com/f1.jpg"})
	e := newTestEngine(s, &stubResolver{})

	res, err := e.ProcessBatch(context.Background(), BatchInput{
		UserID: "u1",
		FileID: "f1",
		Faces: []domain.FaceInput{
			{FaceID: "face1", HasBBox: true, BBox: domain.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.2}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ProcessedCount != 1 {
		t.Fatalf("got ProcessedCount %d, want 1", res.ProcessedCount)
	}
	if len(res.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(res.Groups))
	}
	if res.Groups[0].LeaderFaceID != "face1" {
		t.Errorf("leader = %q, want face1", res.Groups[0].LeaderFaceID)
	}

	face, err := s.GetFace(context.Background(), "u1", "face1")
	if err != nil || face == nil {
		t.Fatalf("expected face to be persisted: %v", err)
	}
	if face.GroupID != res.Groups[0].GroupID {
		t.Errorf("face.GroupID = %q, want %q", face.GroupID, res.Groups[0].GroupID)
	}
}

func TestProcessBatch_OneMatch_AddsToExistingGroup(t *testing.T) {
	s := mock.New()
	s.SeedFile("u1", domain.File{FileID: "f1", URL: "http://example.com/f1.jpg"})

	existing := &domain.Group{GroupID: "g-existing", UserID: "u1", Status: domain.StatusUnreviewed}
	existing.AddFace("oldface")
	existing.LeaderFaceID = "oldface"
	if err := s.PutGroup(context.Background(), "u1", existing); err != nil {
		t.Fatal(err)
	}

	e := newTestEngine(s, &stubResolver{byFace: map[string][]string{"face2": {"oldface"}}})

	res, err := e.ProcessBatch(context.Background(), BatchInput{
		UserID: "u1",
		FileID: "f1",
		Faces: []domain.FaceInput{
			{FaceID: "face2", HasBBox: true, BBox: domain.BoundingBox{Left: 0.5, Top: 0.5, Width: 0.1, Height: 0.1}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Groups) != 1 || res.Groups[0].GroupID != "g-existing" {
		t.Fatalf("expected face2 added to g-existing, got %+v", res.Groups)
	}
	if !res.Groups[0].HasFace("face2") {
		t.Errorf("expected g-existing to contain face2")
	}
}

func TestProcessBatch_MultipleMatches_MergesGroups(t *testing.T) {
	s := mock.New()
	s.SeedFile("u1", domain.File{FileID: "f1", URL: "http://example.com/f1.jpg"})

	early := &domain.Group{GroupID: "g-a", UserID: "u1", Status: domain.StatusUnreviewed}
	early.AddFace("fx")
	early.LeaderFaceID = "fx"
	if err := s.PutGroup(context.Background(), "u1", early); err != nil {
		t.Fatal(err)
	}

	late := &domain.Group{GroupID: "g-b", UserID: "u1", Status: domain.StatusUnreviewed}
	late.AddFace("fy")
	late.LeaderFaceID = "fy"
	if err := s.PutGroup(context.Background(), "u1", late); err != nil {
		t.Fatal(err)
	}

	s.SeedFile("u1", domain.File{FileID: "f0", URL: "http://example.com/f0.jpg"})
	if err := s.PutFace(context.Background(), "u1", &domain.Face{FaceID: "fx", UserID: "u1", GroupID: "g-a", FileID: "f0"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutFace(context.Background(), "u1", &domain.Face{FaceID: "fy", UserID: "u1", GroupID: "g-b", FileID: "f0"}); err != nil {
		t.Fatal(err)
	}

	e := newTestEngine(s, &stubResolver{byFace: map[string][]string{"face3": {"fx", "fy"}}})

	res, err := e.ProcessBatch(context.Background(), BatchInput{
		UserID: "u1",
		FileID: "f1",
		Faces: []domain.FaceInput{
			{FaceID: "face3", HasBBox: true, BBox: domain.BoundingBox{Left: 0.3, Top: 0.3, Width: 0.1, Height: 0.1}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Groups) != 1 {
		t.Fatalf("expected a single surviving group, got %d", len(res.Groups))
	}
	survivor := res.Groups[0]
	if survivor.GroupID != "g-a" {
		t.Errorf("expected g-a (earliest CreatedAt) to survive, got %s", survivor.GroupID)
	}
	if !survivor.HasFace("fx") || !survivor.HasFace("fy") || !survivor.HasFace("face3") {
		t.Errorf("expected survivor to contain fx, fy, face3, got %v", survivor.FaceIDs)
	}

	deleted, err := s.GetGroup(context.Background(), "u1", "g-b")
	if err != nil {
		t.Fatal(err)
	}
	if deleted != nil {
		t.Errorf("expected g-b to be deleted after merge")
	}

	fy, err := s.GetFace(context.Background(), "u1", "fy")
	if err != nil || fy == nil {
		t.Fatalf("expected fy to still exist: %v", err)
	}
	if fy.GroupID != "g-a" {
		t.Errorf("fy.GroupID = %q, want g-a (repointed by merge)", fy.GroupID)
	}
}

func TestProcessBatch_UnreachableSource_ReturnsEmptyResult(t *testing.T) {
	s := mock.New()
	s.SeedFile("u1", domain.File{FileID: "f1", URL: "http://example.com/f1.jpg"})
	e := New(s, &stubResolver{}, &stubProber{reachable: false})

	res, err := e.ProcessBatch(context.Background(), BatchInput{
		UserID: "u1",
		FileID: "f1",
		Faces: []domain.FaceInput{
			{FaceID: "face1", HasBBox: true},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ProcessedCount != 0 || len(res.Groups) != 0 {
		t.Errorf("expected empty result for unreachable source, got %+v", res)
	}

	face, err := s.GetFace(context.Background(), "u1", "face1")
	if err != nil {
		t.Fatal(err)
	}
	if face != nil {
		t.Errorf("expected no face to be persisted for unreachable source")
	}
}

func TestProcessBatch_FaceWithoutBoundingBox_IsRejected(t *testing.T) {
	s := mock.New()
	s.SeedFile("u1", domain.File{FileID: "f1", URL: "http://example.com/f1.jpg"})
	e := newTestEngine(s, &stubResolver{})

	res, err := e.ProcessBatch(context.Background(), BatchInput{
		UserID: "u1",
		FileID: "f1",
		Faces: []domain.FaceInput{
			{FaceID: "nobbox", HasBBox: false},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ProcessedCount != 0 {
		t.Errorf("expected face without bounding box to be rejected, got ProcessedCount=%d", res.ProcessedCount)
	}
}

func TestProcessBatch_TombstonedFace_IsSkipped(t *testing.T) {
	s := mock.New()
	s.SeedFile("u1", domain.File{
		FileID: "f1",
		URL:    "http://example.com/f1.jpg",
		DeletedFaces: []domain.DeletedFace{
			{BoundingBox: domain.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.2}},
		},
	})
	e := newTestEngine(s, &stubResolver{})

	res, err := e.ProcessBatch(context.Background(), BatchInput{
		UserID: "u1",
		FileID: "f1",
		Faces: []domain.FaceInput{
			{FaceID: "ghost", HasBBox: true, BBox: domain.BoundingBox{Left: 0.11, Top: 0.1, Width: 0.21, Height: 0.2}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ProcessedCount != 0 {
		t.Errorf("expected tombstoned face to be skipped, got ProcessedCount=%d", res.ProcessedCount)
	}
}

func TestProcessBatch_FileNotFound(t *testing.T) {
	s := mock.New()
	e := newTestEngine(s, &stubResolver{})

	res, err := e.ProcessBatch(context.Background(), BatchInput{UserID: "u1", FileID: "missing"})
	if err != nil {
		t.Fatalf("expected missing file to be skipped without error, got %v", err)
	}
	if res.ProcessedCount != 0 || len(res.Groups) != 0 {
		t.Errorf("expected empty result for missing file, got %+v", res)
	}
}
