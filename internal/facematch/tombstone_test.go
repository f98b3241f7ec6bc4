package facematch

import (
	"testing"

	"github.com/kozaktomas/facegroup/internal/domain"
)

func bbox(l, t, w, h float64) domain.BoundingBox {
	return domain.BoundingBox{Left: l, Top: t, Width: w, Height: h}
}

func TestFilterTombstoned(t *testing.T) {
	tombstones := []domain.DeletedFace{{BoundingBox: bbox(0.1, 0.1, 0.2, 0.2)}}

	tests := []struct {
		name       string
		candidates []domain.FaceInput
		want       []string
	}{
		{
			name: "exact match dropped",
			candidates: []domain.FaceInput{
				{FaceID: "a", HasBBox: true, BBox: bbox(0.1, 0.1, 0.2, 0.2)},
				{FaceID: "b", HasBBox: true, BBox: bbox(0.5, 0.5, 0.2, 0.2)},
			},
			want: []string{"b"},
		},
		{
			name: "within tolerance dropped",
			candidates: []domain.FaceInput{
				{FaceID: "a", HasBBox: true, BBox: bbox(0.12, 0.09, 0.21, 0.19)},
			},
			want: nil,
		},
		{
			name: "outside tolerance kept",
			candidates: []domain.FaceInput{
				{FaceID: "a", HasBBox: true, BBox: bbox(0.2, 0.2, 0.2, 0.2)},
			},
			want: []string{"a"},
		},
		{
			name: "no bbox always kept",
			candidates: []domain.FaceInput{
				{FaceID: "a", HasBBox: false},
			},
			want: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterTombstoned(tt.candidates, tombstones, DefaultBoundingBoxTolerance)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d candidates, want %d", len(got), len(tt.want))
			}
			for i, c := range got {
				if c.FaceID != tt.want[i] {
					t.Errorf("got[%d] = %s, want %s", i, c.FaceID, tt.want[i])
				}
			}
		})
	}
}

func TestFilterTombstoned_NoTombstones(t *testing.T) {
	candidates := []domain.FaceInput{{FaceID: "a", HasBBox: true, BBox: bbox(0.1, 0.1, 0.2, 0.2)}}
	got := FilterTombstoned(candidates, nil, DefaultBoundingBoxTolerance)
	if len(got) != 1 {
		t.Fatalf("expected candidates to pass through unfiltered, got %d", len(got))
	}
}
