package domain

import "time"

// BoundingBox is a face region within its source image, expressed as
// fractions of the image's width/height in [0,1].
type BoundingBox struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Face is one detected face region, belonging to exactly one group.
type Face struct {
	FaceID     string
	UserID     string
	GroupID    string
	FileID     string
	BBox       BoundingBox
	HasBBox    bool
	Confidence float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FaceInput is the caller-supplied face payload for processBatch and for
// manual operations. Unknown JSON fields are ignored by callers; this
// struct only carries the fields the core understands.
type FaceInput struct {
	FaceID         string
	BBox           BoundingBox
	HasBBox        bool
	Confidence     float64
	MatchedFaceIDs []string
	GroupID        string
}
