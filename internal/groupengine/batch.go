package groupengine

import (
	"context"
	"fmt"
	"log"

	"github.com/kozaktomas/facegroup/internal/domain"
	"github.com/kozaktomas/facegroup/internal/facematch"
)

// BatchInput is one call to processBatch: the candidate faces extracted
// from a single file, as reported by the upstream face-extraction engine.
type BatchInput struct {
	UserID      string
	FileID      string
	InterviewID string
	Faces       []domain.FaceInput
}

// ProcessBatch runs the Group Engine's core algorithm (spec.md §4.5) over
// one file's candidate faces: verify the source is reachable (a missing
// file doc or an unreachable image yields an empty result and no error), drop
// tombstoned candidates, then find-or-create-or-merge a group for each
// remaining face, and persist the resulting faceId->groupId mapping on
// the file doc.
//
// A face without a bounding box is rejected outright: it cannot be
// tombstone-matched on a later re-index, so accepting it risks a
// duplicate group every run (spec.md §4.3).
func (e *Engine) ProcessBatch(ctx context.Context, in BatchInput) (Result, error) {
	file, err := e.Store.GetFile(ctx, in.UserID, in.FileID)
	if err != nil {
		return Result{}, fmt.Errorf("groupengine: load file %s: %w", in.FileID, err)
	}
	if file == nil {
		return Result{}, nil
	}

	if !e.Prober.Reachable(ctx, file.URL) {
		return Result{}, nil
	}

	candidates := make([]domain.FaceInput, 0, len(in.Faces))
	for _, f := range in.Faces {
		if f.HasBBox {
			candidates = append(candidates, f)
		}
	}
	candidates = facematch.FilterTombstoned(candidates, file.DeletedFaces, e.BoundingBoxTolerance)

	mapping := make(map[string]string, len(candidates))
	touched := make(map[string]domain.Group)

	for _, face := range candidates {
		matchIDs := e.Resolver.Resolve(ctx, in.UserID, face)

		groupID, group, err := e.resolveFace(ctx, in.UserID, in.InterviewID, in.FileID, face, matchIDs)
		if err != nil {
			log.Printf("groupengine: process face %s in file %s failed, continuing: %v", face.FaceID, in.FileID, err)
			continue
		}

		mapping[face.FaceID] = groupID
		if group != nil {
			touched[groupID] = *group
		}
	}

	if err := e.Store.UpdateFileMapping(ctx, in.UserID, in.FileID, mapping, processedAtNow()); err != nil {
		return Result{}, fmt.Errorf("groupengine: update file mapping for %s: %w", in.FileID, err)
	}

	out := Result{ProcessedCount: len(mapping)}
	for _, g := range touched {
		out.Groups = append(out.Groups, g)
	}
	return out, nil
}

// resolveFace is the per-face find/create/merge step. It returns the
// group the face ended up in.
func (e *Engine) resolveFace(ctx context.Context, userID, interviewID, fileID string, face domain.FaceInput, matchIDs []string) (string, *domain.Group, error) {
	candidateGroups, err := e.Store.FindGroupsContainingAny(ctx, userID, matchIDs, interviewID)
	if err != nil {
		return "", nil, fmt.Errorf("find groups for face %s: %w", face.FaceID, err)
	}

	var scoped []domain.Group
	for _, g := range candidateGroups {
		if g.CompatibleWithScope(interviewID) {
			scoped = append(scoped, g)
		}
	}
	scoped = orderForMerge(scoped)

	now := processedAtNow()
	faceDoc := &domain.Face{
		FaceID:     face.FaceID,
		UserID:     userID,
		FileID:     fileID,
		BBox:       face.BBox,
		HasBBox:    face.HasBBox,
		Confidence: face.Confidence,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	switch len(scoped) {
	case 0:
		group := &domain.Group{
			GroupID:     e.NewID(),
			UserID:      userID,
			InterviewID: interviewID,
			Status:      domain.StatusUnreviewed,
			CreatedAt:   now,
		}
		group.AddFace(face.FaceID)
		group.AddFile(fileID)
		group.LeaderFaceID = face.FaceID
		group.LeaderFaceData = domain.LeaderFaceData{FileID: fileID, BoundingBox: face.BBox}

		faceDoc.GroupID = group.GroupID
		if err := e.Store.PutFace(ctx, userID, faceDoc); err != nil {
			return "", nil, fmt.Errorf("put face %s: %w", face.FaceID, err)
		}
		if err := e.Store.PutGroup(ctx, userID, group); err != nil {
			return "", nil, fmt.Errorf("put group %s: %w", group.GroupID, err)
		}
		return group.GroupID, group, nil

	case 1:
		group := &scoped[0]
		group.AddFace(face.FaceID)
		group.AddFile(fileID)

		faceDoc.GroupID = group.GroupID
		if err := e.Store.PutFace(ctx, userID, faceDoc); err != nil {
			return "", nil, fmt.Errorf("put face %s: %w", face.FaceID, err)
		}
		if err := e.Store.PutGroup(ctx, userID, group); err != nil {
			return "", nil, fmt.Errorf("put group %s: %w", group.GroupID, err)
		}
		return group.GroupID, group, nil

	default:
		primary := &scoped[0]
		primary.AddFace(face.FaceID)
		primary.AddFile(fileID)

		faceDoc.GroupID = primary.GroupID
		if err := e.Store.PutFace(ctx, userID, faceDoc); err != nil {
			return "", nil, fmt.Errorf("put face %s: %w", face.FaceID, err)
		}

		for i := 1; i < len(scoped); i++ {
			secondary := scoped[i]
			if err := e.mergeInto(ctx, userID, primary, &secondary); err != nil {
				log.Printf("groupengine: merge group %s into %s failed, reconciler will repair: %v", secondary.GroupID, primary.GroupID, err)
				e.markDirty(ctx, userID, secondary.GroupID)
				continue
			}
		}

		if err := e.Store.PutGroup(ctx, userID, primary); err != nil {
			return "", nil, fmt.Errorf("put group %s: %w", primary.GroupID, err)
		}
		return primary.GroupID, primary, nil
	}
}
