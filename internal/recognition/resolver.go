package recognition

import (
	"context"
	"log"

	"github.com/kozaktomas/facegroup/internal/domain"
)

// Searcher is the subset of Client the resolver depends on, so tests can
// substitute a stub instead of a real HTTP round trip.
type Searcher interface {
	SearchMatches(ctx context.Context, collectionID, faceID string, threshold float64, maxFaces int) ([]FaceMatch, error)
}

// Resolver implements the Match Resolver (C2): given a face, it returns
// the set of matching face IDs, preferring caller-supplied matches over a
// call to the recognition engine.
type Resolver struct {
	Searcher            Searcher
	CollectionPrefix    string
	SimilarityThreshold float64
	MaxMatches          int
}

// NewResolver creates a resolver with the spec's default thresholds
// (0.85 similarity, 20 max matches, "face_coll_" collection prefix).
func NewResolver(searcher Searcher) *Resolver {
	return &Resolver{
		Searcher:            searcher,
		CollectionPrefix:    "face_coll_",
		SimilarityThreshold: 0.85,
		MaxMatches:          20,
	}
}

// Resolve returns the match set for face. If face.MatchedFaceIDs is
// non-empty it is returned verbatim. Otherwise the recognition engine is
// queried; engine errors are downgraded to an empty match set rather than
// surfaced, since a face with no matches is correctly handled as a
// singleton group (spec.md §4.2).
func (r *Resolver) Resolve(ctx context.Context, userID string, face domain.FaceInput) []string {
	if len(face.MatchedFaceIDs) > 0 {
		return face.MatchedFaceIDs
	}

	collectionID := r.CollectionPrefix + userID
	matches, err := r.Searcher.SearchMatches(ctx, collectionID, face.FaceID, r.SimilarityThreshold, r.MaxMatches)
	if err != nil {
		log.Printf("recognition: search failed for face %s, treating as no matches: %v", face.FaceID, err)
		return nil
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.FaceID)
	}
	return ids
}
