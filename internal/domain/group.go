package domain

import "time"

// Status is the review state of a group. Transitions are monotonic:
// unreviewed -> reviewed -> named. Renaming a group implies "named".
type Status string

const (
	StatusUnreviewed Status = "unreviewed"
	StatusReviewed   Status = "reviewed"
	StatusNamed      Status = "named"
)

// LeaderFaceData is a cached snapshot of the leader face's source, so
// thumbnails can render without a separate face-doc lookup.
type LeaderFaceData struct {
	FileID      string
	BoundingBox BoundingBox
}

// Group is a persistent set of face IDs asserted to depict the same
// person. faceIds must never contain duplicates, and faceCount must
// always equal len(faceIds) after every write (invariant 2).
type Group struct {
	GroupID        string
	UserID         string
	InterviewID    string // empty means unscoped/global
	FaceIDs        []string
	FileIDs        []string
	FaceCount      int
	LeaderFaceID   string
	LeaderFaceData LeaderFaceData
	Status         Status
	GroupName      string
	PersonName     string
	MergedFrom     []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasFace reports whether faceID is a current member.
func (g *Group) HasFace(faceID string) bool {
	for _, id := range g.FaceIDs {
		if id == faceID {
			return true
		}
	}
	return false
}

// AddFace adds faceID if not already present, keeping faceCount in sync.
// Idempotent, per the add-face-to-group contract.
func (g *Group) AddFace(faceID string) {
	if g.HasFace(faceID) {
		return
	}
	g.FaceIDs = append(g.FaceIDs, faceID)
	g.FaceCount = len(g.FaceIDs)
}

// RemoveFace removes faceID if present, keeping faceCount in sync, and
// reassigns the leader if the removed face was the leader (invariant 3).
// The new leader is the first remaining member; LeaderFaceData is cleared
// only when the group became empty, and is otherwise left unchanged for
// the caller to refresh from the new leader's face doc.
func (g *Group) RemoveFace(faceID string) {
	out := g.FaceIDs[:0]
	for _, id := range g.FaceIDs {
		if id != faceID {
			out = append(out, id)
		}
	}
	g.FaceIDs = out
	g.FaceCount = len(g.FaceIDs)

	if g.LeaderFaceID == faceID {
		if len(g.FaceIDs) > 0 {
			g.LeaderFaceID = g.FaceIDs[0]
		} else {
			g.LeaderFaceID = ""
			g.LeaderFaceData = LeaderFaceData{}
		}
	}
}

// AddFile adds fileID to the provenance set if not already present.
func (g *Group) AddFile(fileID string) {
	for _, id := range g.FileIDs {
		if id == fileID {
			return
		}
	}
	g.FileIDs = append(g.FileIDs, fileID)
}

// CompatibleWithScope reports whether the group participates in the given
// interview scope. A group with no InterviewID is global and participates
// in every scope, including unscoped batches. A group with an InterviewID
// only participates in batches carrying that same ID.
func (g *Group) CompatibleWithScope(interviewID string) bool {
	if g.InterviewID == "" {
		return true
	}
	return g.InterviewID == interviewID
}
