// Package store abstracts the document store behind the Group Manager:
// group docs, face docs, and file docs. It mirrors the teacher's reader/
// writer interface split (internal/database.FaceReader/FaceWriter) so that
// production code depends on narrow interfaces and tests substitute the
// in-memory implementation under store/mock.
package store

import (
	"context"
	"time"

	"github.com/kozaktomas/facegroup/internal/domain"
)

// GroupReader provides read-only access to groups.
type GroupReader interface {
	// GetGroup returns the group, or (nil, nil) if it does not exist.
	GetGroup(ctx context.Context, userID, groupID string) (*domain.Group, error)
	// ListGroups returns every group for userID, ordered by UpdatedAt desc.
	ListGroups(ctx context.Context, userID string) ([]domain.Group, error)
	// FindGroupsContainingAny returns every group whose FaceIDs intersects
	// faceIDs. When interviewID is non-empty, groups whose InterviewID is
	// set and differs are excluded. Input larger than the store's native
	// IN-clause limit is chunked transparently; results are deduplicated
	// by GroupID.
	FindGroupsContainingAny(ctx context.Context, userID string, faceIDs []string, interviewID string) ([]domain.Group, error)
}

// GroupWriter provides write access to groups.
type GroupWriter interface {
	GroupReader
	// PutGroup upserts group, setting UpdatedAt.
	PutGroup(ctx context.Context, userID string, group *domain.Group) error
	// DeleteGroup removes the group doc. It does not touch face docs;
	// callers that want cascading deletion do so explicitly.
	DeleteGroup(ctx context.Context, userID, groupID string) error
}

// FaceReader provides read-only access to faces.
type FaceReader interface {
	// GetFace returns the face, or (nil, nil) if it does not exist.
	GetFace(ctx context.Context, userID, faceID string) (*domain.Face, error)
}

// FaceWriter provides write access to faces.
type FaceWriter interface {
	FaceReader
	PutFace(ctx context.Context, userID string, face *domain.Face) error
	DeleteFace(ctx context.Context, userID, faceID string) error
}

// FileReader provides read-only access to the externally-owned file doc.
type FileReader interface {
	GetFile(ctx context.Context, userID, fileID string) (*domain.File, error)
}

// FileWriter provides write access to the subset of the file doc the core
// owns: the cached faceId->groupId mapping and its processed timestamp.
type FileWriter interface {
	FileReader
	UpdateFileMapping(ctx context.Context, userID, fileID string, mapping map[string]string, processedAt time.Time) error
}

// Store is the full Store Adapter contract (C1). Each method is
// individually atomic at the document level; the store provides no
// cross-document transactions, so the Group Engine compensates via the
// convergence rule (face doc wins) described in spec.md §4.5.
type Store interface {
	GroupWriter
	FaceWriter
	FileWriter
}
