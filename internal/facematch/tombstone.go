package facematch

import "github.com/kozaktomas/facegroup/internal/domain"

// DefaultBoundingBoxTolerance is the default per-axis tolerance used to
// recognize a tombstoned face across a re-index (spec.md §4.3).
const DefaultBoundingBoxTolerance = 0.05

// closeEnough reports whether two bounding boxes match within tolerance
// on every axis. The upstream engine re-indexes images between runs and
// issues fresh face IDs, but bounding boxes are stable, so this is the
// only reliable way to recognize "the same detected region" across runs.
func closeEnough(a, b domain.BoundingBox, tolerance float64) bool {
	return absDiff(a.Left, b.Left) < tolerance &&
		absDiff(a.Top, b.Top) < tolerance &&
		absDiff(a.Width, b.Width) < tolerance &&
		absDiff(a.Height, b.Height) < tolerance
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}

// FilterTombstoned drops any candidate whose bounding box matches a
// tombstone in deletedFaces within tolerance. A candidate without a
// bounding box is kept, since it cannot be compared (spec.md §4.3).
func FilterTombstoned(candidates []domain.FaceInput, deletedFaces []domain.DeletedFace, tolerance float64) []domain.FaceInput {
	if len(deletedFaces) == 0 {
		return candidates
	}

	out := make([]domain.FaceInput, 0, len(candidates))
	for _, c := range candidates {
		if !c.HasBBox {
			out = append(out, c)
			continue
		}
		tombstoned := false
		for _, d := range deletedFaces {
			if closeEnough(c.BBox, d.BoundingBox, tolerance) {
				tombstoned = true
				break
			}
		}
		if !tombstoned {
			out = append(out, c)
		}
	}
	return out
}
