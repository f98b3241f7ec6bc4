package groupengine

import (
	"context"
	"log"
	"sort"

	"github.com/kozaktomas/facegroup/internal/domain"
)

// orderForMerge picks the deterministic primary among candidate groups:
// earliest CreatedAt, ties broken by the lexicographically smallest
// GroupID (spec.md §4.5, open question 4 resolved in SPEC_FULL.md §9).
func orderForMerge(groups []domain.Group) []domain.Group {
	out := make([]domain.Group, len(groups))
	copy(out, groups)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].GroupID < out[j].GroupID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// mergeInto folds secondary into primary in place, following the merge
// primitive of spec.md §4.5: union the member sets, repoint every
// secondary face doc at the primary, update the primary, then delete the
// secondary. Face-doc update failures are logged and do not abort the
// merge (spec.md §4.6); the secondary is marked dirty either way so the
// reconciler can repair any partial failure.
func (e *Engine) mergeInto(ctx context.Context, userID string, primary *domain.Group, secondary *domain.Group) error {
	for _, faceID := range secondary.FaceIDs {
		primary.AddFace(faceID)
	}
	for _, fileID := range secondary.FileIDs {
		primary.AddFile(fileID)
	}

	for _, faceID := range secondary.FaceIDs {
		face, err := e.Store.GetFace(ctx, userID, faceID)
		if err != nil {
			log.Printf("groupengine: merge: get face %s failed, continuing: %v", faceID, err)
			continue
		}
		if face == nil {
			continue
		}
		face.GroupID = primary.GroupID
		if err := e.Store.PutFace(ctx, userID, face); err != nil {
			log.Printf("groupengine: merge: repoint face %s to group %s failed, continuing: %v", faceID, primary.GroupID, err)
		}
	}

	primary.MergedFrom = append(primary.MergedFrom, secondary.GroupID)
	if err := e.Store.PutGroup(ctx, userID, primary); err != nil {
		return err
	}

	if err := e.Store.DeleteGroup(ctx, userID, secondary.GroupID); err != nil {
		log.Printf("groupengine: merge: delete secondary group %s failed, reconciler will repair: %v", secondary.GroupID, err)
	}
	e.markDirty(ctx, userID, secondary.GroupID)
	e.markDirty(ctx, userID, primary.GroupID)

	return nil
}
