// Package manualops implements the Manual Operations (C6): the
// user-driven corrections layered on top of the Group Engine's automatic
// grouping — create, add, remove, merge, rename, delete. Each operation
// is a thin, explicit mutation of the same group/face docs the engine
// writes, so the two layers never disagree about what a group doc means.
package manualops

import (
	"context"
	"fmt"
	"time"

	"github.com/kozaktomas/facegroup/internal/domain"
	"github.com/kozaktomas/facegroup/internal/facematch"
	"github.com/kozaktomas/facegroup/internal/store"
)

// Ops exposes the manual-operation surface the admin CLI (C9) and any
// future HTTP surface call into.
type Ops struct {
	Store      store.Store
	NewID      func() string
	Now        func() time.Time
	TestUserID string
}

// New creates an Ops backed by s, using uuid-style id generation and the
// wall clock; override NewID/Now in tests for determinism. testUserID is
// the only user ClearAllGroups will operate on.
func New(s store.Store, newID func() string, now func() time.Time, testUserID string) *Ops {
	return &Ops{Store: s, NewID: newID, Now: now, TestUserID: testUserID}
}

// CreateGroupWithFaces creates a new named group containing faceIDs. Any
// face already belonging to another group is moved: removed from its
// old group (which is left in place, even if emptied — spec.md §9 open
// question 1) and added to the new one.
func (o *Ops) CreateGroupWithFaces(ctx context.Context, userID, interviewID, groupName string, faceIDs []string) (*domain.Group, error) {
	if len(faceIDs) == 0 {
		return nil, fmt.Errorf("manualops: create group: %w", domain.ErrInvalidInput)
	}

	now := o.Now()
	group := &domain.Group{
		GroupID:     o.NewID(),
		UserID:      userID,
		InterviewID: interviewID,
		GroupName:   groupName,
		Status:      domain.StatusNamed,
		CreatedAt:   now,
	}

	for i, faceID := range faceIDs {
		face, err := o.moveFace(ctx, userID, faceID, group.GroupID, "")
		if err != nil {
			return nil, err
		}
		group.AddFace(faceID)
		group.AddFile(face.FileID)
		if i == 0 {
			group.LeaderFaceID = faceID
			group.LeaderFaceData = domain.LeaderFaceData{FileID: face.FileID, BoundingBox: face.BBox}
		}
	}

	if err := o.Store.PutGroup(ctx, userID, group); err != nil {
		return nil, fmt.Errorf("manualops: create group: %w", err)
	}
	return group, nil
}

// AddFaceToGroup moves faceID into groupID, leaving any prior group
// unchanged but emptied of this face. fileID is only used when faceID has
// no existing face doc: it identifies the source file a freshly detected,
// not-yet-grouped face belongs to. It is ignored when the face doc already
// exists. Idempotent: calling it again with the same groupID/faceID is a
// no-op beyond re-persisting the group.
func (o *Ops) AddFaceToGroup(ctx context.Context, userID, groupID, faceID, fileID string) (*domain.Group, error) {
	group, err := o.Store.GetGroup(ctx, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("manualops: add face: %w", err)
	}
	if group == nil {
		return nil, fmt.Errorf("manualops: add face: group %s: %w", groupID, domain.ErrNotFound)
	}

	face, err := o.moveFace(ctx, userID, faceID, groupID, fileID)
	if err != nil {
		return nil, err
	}

	group.AddFace(faceID)
	group.AddFile(face.FileID)
	if group.LeaderFaceID == "" {
		group.LeaderFaceID = faceID
		group.LeaderFaceData = domain.LeaderFaceData{FileID: face.FileID, BoundingBox: face.BBox}
	}
	if err := o.Store.PutGroup(ctx, userID, group); err != nil {
		return nil, fmt.Errorf("manualops: add face: %w", err)
	}
	return group, nil
}

// RemoveFaceFromGroup detaches faceID from groupID. The group is kept
// even if this empties it: groups are never implicitly deleted by
// membership changes (spec.md §9 open question 2 only covers explicit
// DeleteGroup).
func (o *Ops) RemoveFaceFromGroup(ctx context.Context, userID, groupID, faceID string) (*domain.Group, error) {
	group, err := o.Store.GetGroup(ctx, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("manualops: remove face: %w", err)
	}
	if group == nil {
		return nil, fmt.Errorf("manualops: remove face: group %s: %w", groupID, domain.ErrNotFound)
	}
	if !group.HasFace(faceID) {
		return nil, fmt.Errorf("manualops: remove face: face %s not in group %s: %w", faceID, groupID, domain.ErrInvalidInput)
	}

	group.RemoveFace(faceID)

	face, err := o.Store.GetFace(ctx, userID, faceID)
	if err != nil {
		return nil, fmt.Errorf("manualops: remove face: %w", err)
	}
	if face != nil {
		face.GroupID = ""
		if err := o.Store.PutFace(ctx, userID, face); err != nil {
			return nil, fmt.Errorf("manualops: remove face: %w", err)
		}
	}

	if group.LeaderFaceID != "" {
		if newLeader, err := o.Store.GetFace(ctx, userID, group.LeaderFaceID); err == nil && newLeader != nil {
			group.LeaderFaceData = domain.LeaderFaceData{FileID: newLeader.FileID, BoundingBox: newLeader.BBox}
		}
	}

	if err := o.Store.PutGroup(ctx, userID, group); err != nil {
		return nil, fmt.Errorf("manualops: remove face: %w", err)
	}
	return group, nil
}

// DeleteGroup removes groupID and, per spec.md §9 open question 2,
// cascades: every face doc that still points at groupID is deleted too,
// since an orphaned face doc with no group is unreachable from any
// listing operation.
func (o *Ops) DeleteGroup(ctx context.Context, userID, groupID string) error {
	group, err := o.Store.GetGroup(ctx, userID, groupID)
	if err != nil {
		return fmt.Errorf("manualops: delete group: %w", err)
	}
	if group == nil {
		return fmt.Errorf("manualops: delete group: %s: %w", groupID, domain.ErrNotFound)
	}

	for _, faceID := range group.FaceIDs {
		face, err := o.Store.GetFace(ctx, userID, faceID)
		if err != nil {
			return fmt.Errorf("manualops: delete group: get face %s: %w", faceID, err)
		}
		if face == nil || face.GroupID != groupID {
			continue
		}
		if err := o.Store.DeleteFace(ctx, userID, faceID); err != nil {
			return fmt.Errorf("manualops: delete group: delete face %s: %w", faceID, err)
		}
	}

	if err := o.Store.DeleteGroup(ctx, userID, groupID); err != nil {
		return fmt.Errorf("manualops: delete group: %w", err)
	}
	return nil
}

// MergeGroups folds sourceGroupID into targetGroupID using the same
// union semantics as the engine's automatic merge, then deletes the
// source. Unlike the engine's merge, direction is caller-chosen rather
// than determined by CreatedAt order, since a human operator usually
// knows which group should keep its name.
func (o *Ops) MergeGroups(ctx context.Context, userID, targetGroupID, sourceGroupID string) (*domain.Group, error) {
	target, err := o.Store.GetGroup(ctx, userID, targetGroupID)
	if err != nil {
		return nil, fmt.Errorf("manualops: merge groups: %w", err)
	}
	if target == nil {
		return nil, fmt.Errorf("manualops: merge groups: target %s: %w", targetGroupID, domain.ErrNotFound)
	}
	source, err := o.Store.GetGroup(ctx, userID, sourceGroupID)
	if err != nil {
		return nil, fmt.Errorf("manualops: merge groups: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("manualops: merge groups: source %s: %w", sourceGroupID, domain.ErrNotFound)
	}

	for _, faceID := range source.FaceIDs {
		target.AddFace(faceID)
		face, err := o.Store.GetFace(ctx, userID, faceID)
		if err != nil || face == nil {
			continue
		}
		face.GroupID = target.GroupID
		if err := o.Store.PutFace(ctx, userID, face); err != nil {
			return nil, fmt.Errorf("manualops: merge groups: repoint face %s: %w", faceID, err)
		}
	}
	for _, fileID := range source.FileIDs {
		target.AddFile(fileID)
	}
	target.MergedFrom = append(target.MergedFrom, source.GroupID)
	target.MergedFrom = append(target.MergedFrom, source.MergedFrom...)

	if err := o.Store.PutGroup(ctx, userID, target); err != nil {
		return nil, fmt.Errorf("manualops: merge groups: %w", err)
	}
	if err := o.Store.DeleteGroup(ctx, userID, sourceGroupID); err != nil {
		return nil, fmt.Errorf("manualops: merge groups: delete source: %w", err)
	}
	return target, nil
}

// RenameGroup assigns a person's display name to groupID: GroupName keeps
// the name as given, and PersonName stores it normalized by
// facematch.NormalizePersonName (so a later comparison by name matches
// regardless of diacritics, casing, or dashes). It also promotes the
// group's status to named.
func (o *Ops) RenameGroup(ctx context.Context, userID, groupID, personName string) (*domain.Group, error) {
	group, err := o.Store.GetGroup(ctx, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("manualops: rename group: %w", err)
	}
	if group == nil {
		return nil, fmt.Errorf("manualops: rename group: %s: %w", groupID, domain.ErrNotFound)
	}

	group.GroupName = personName
	group.PersonName = facematch.NormalizePersonName(personName)
	group.Status = domain.StatusNamed

	if err := o.Store.PutGroup(ctx, userID, group); err != nil {
		return nil, fmt.Errorf("manualops: rename group: %w", err)
	}
	return group, nil
}

// ClearAllGroups deletes every group (and, cascading, every member face
// doc) belonging to userID. It is a destructive test-only operation:
// callers other than the configured test user are rejected with
// ErrForbidden, per spec.md §6's operation table.
func (o *Ops) ClearAllGroups(ctx context.Context, userID string) (int, error) {
	if userID != o.TestUserID {
		return 0, fmt.Errorf("manualops: clear all groups: user %s: %w", userID, domain.ErrForbidden)
	}

	groups, err := o.Store.ListGroups(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("manualops: clear all groups: %w", err)
	}

	deleted := 0
	for _, group := range groups {
		for _, faceID := range group.FaceIDs {
			if err := o.Store.DeleteFace(ctx, userID, faceID); err != nil {
				return deleted, fmt.Errorf("manualops: clear all groups: delete face %s: %w", faceID, err)
			}
		}
		if err := o.Store.DeleteGroup(ctx, userID, group.GroupID); err != nil {
			return deleted, fmt.Errorf("manualops: clear all groups: delete group %s: %w", group.GroupID, err)
		}
		deleted++
	}
	return deleted, nil
}

// moveFace loads faceID, detaches it from any current group, sets its
// GroupID to newGroupID, persists the face doc, and returns it. The
// caller still persists the new group. If no face doc exists yet, one is
// created from fileID — the create-or-update contract addFaceToGroup
// documents for a newly detected, not-yet-grouped face.
func (o *Ops) moveFace(ctx context.Context, userID, faceID, newGroupID, fileID string) (*domain.Face, error) {
	face, err := o.Store.GetFace(ctx, userID, faceID)
	if err != nil {
		return nil, fmt.Errorf("manualops: get face %s: %w", faceID, err)
	}
	if face == nil {
		face = &domain.Face{
			FaceID:    faceID,
			UserID:    userID,
			FileID:    fileID,
			CreatedAt: o.Now(),
		}
	}

	if face.GroupID != "" && face.GroupID != newGroupID {
		oldGroup, err := o.Store.GetGroup(ctx, userID, face.GroupID)
		if err != nil {
			return nil, fmt.Errorf("manualops: get old group %s: %w", face.GroupID, err)
		}
		if oldGroup != nil {
			oldGroup.RemoveFace(faceID)
			if err := o.Store.PutGroup(ctx, userID, oldGroup); err != nil {
				return nil, fmt.Errorf("manualops: update old group %s: %w", oldGroup.GroupID, err)
			}
		}
	}

	face.GroupID = newGroupID
	if err := o.Store.PutFace(ctx, userID, face); err != nil {
		return nil, fmt.Errorf("manualops: put face %s: %w", faceID, err)
	}
	return face, nil
}
