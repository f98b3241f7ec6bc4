package domain

import "time"

// DeletedFace is a tombstone: the bounding box of a face the user removed,
// recorded so that a re-index of the same image (which issues fresh
// faceIds) does not resurrect it.
type DeletedFace struct {
	BoundingBox BoundingBox
}

// ExtractedFace is one face as reported by the upstream face-extraction
// engine. Read-only to the core; it is the raw candidate list before the
// deletion filter and reachability probe run.
type ExtractedFace struct {
	FaceID      string
	BoundingBox BoundingBox
	Confidence  float64
}

// File is a source image, owned by an external uploader. The core only
// reads URL/ExtractedFaces/DeletedFaces and writes FaceGroupMapping and
// FaceGroupsProcessedAt.
type File struct {
	FileID               string
	UserID               string
	URL                  string
	ExtractedFaces       []ExtractedFace
	DeletedFaces         []DeletedFace
	FaceGroupMapping     map[string]string // faceId -> groupId
	FaceGroupsProcessedAt time.Time
}
