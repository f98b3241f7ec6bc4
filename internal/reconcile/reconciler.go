package reconcile

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/kozaktomas/facegroup/internal/domain"
	"github.com/kozaktomas/facegroup/internal/store"
)

// CircuitBreaker halts reconciliation after a run of consecutive repair
// failures, on the assumption that the store itself is unhealthy and
// hammering it will only make things worse. Grounded on the pack's
// worker circuit breaker; adapted to a simple consecutive-failure count
// since reconciliation runs are infrequent and not per-request.
type CircuitBreaker struct {
	failures     int32
	threshold    int32
	resetTimeout time.Duration
	lastFailure  time.Time
	mu           sync.RWMutex
}

// NewCircuitBreaker creates a breaker that opens after threshold
// consecutive failures and allows one attempt through again after
// resetTimeout has elapsed since the last failure.
func NewCircuitBreaker(threshold int32, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{threshold: threshold, resetTimeout: resetTimeout}
}

// IsOpen reports whether repairs should be skipped this cycle.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	if atomic.LoadInt32(&cb.failures) < cb.threshold {
		return false
	}
	return time.Since(cb.lastFailure) <= cb.resetTimeout
}

// RecordSuccess resets the failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	atomic.StoreInt32(&cb.failures, 0)
}

// RecordFailure increments the failure count and stamps the time.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	atomic.AddInt32(&cb.failures, 1)
	cb.lastFailure = time.Now()
}

// Reconciler drains the dirty-group queue on a schedule and repairs
// each group so that the transitive-closure invariant holds even after
// a crash mid-merge: every face doc's GroupID must point at a group
// that actually lists it, and no two groups may share a face (spec.md
// §4.6's convergence rule, "face doc wins").
type Reconciler struct {
	Store          store.Store
	Queue          *Queue
	CircuitBreaker *CircuitBreaker
	BatchSize      int64

	scheduler *gocron.Scheduler
}

// New creates a Reconciler with a 10-failure/60s circuit breaker and a
// 100-group batch size, matching the pack's FaceWorker defaults.
func New(s store.Store, q *Queue) *Reconciler {
	return &Reconciler{
		Store:          s,
		Queue:          q,
		CircuitBreaker: NewCircuitBreaker(10, 60*time.Second),
		BatchSize:      100,
		scheduler:      gocron.NewScheduler(time.UTC),
	}
}

// Start schedules RunOnce every interval using gocron and begins
// running it asynchronously. Call Stop to end the schedule.
func (r *Reconciler) Start(ctx context.Context, interval time.Duration) error {
	_, err := r.scheduler.Every(interval).Do(func() {
		if err := r.RunOnce(ctx); err != nil {
			log.Printf("reconcile: run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	r.scheduler.StartAsync()
	return nil
}

// Stop halts the schedule. Already-running repairs are not interrupted.
func (r *Reconciler) Stop() {
	r.scheduler.Stop()
}

// RunOnce drains up to BatchSize dirty groups and repairs each. It
// returns early without draining if the circuit breaker is open.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	if r.CircuitBreaker.IsOpen() {
		log.Println("reconcile: circuit open, skipping run")
		return nil
	}

	dirty, err := r.Queue.Drain(ctx, r.BatchSize)
	if err != nil {
		r.CircuitBreaker.RecordFailure()
		return err
	}

	for _, d := range dirty {
		if err := r.repair(ctx, d.UserID, d.GroupID); err != nil {
			log.Printf("reconcile: repair group %s failed, re-queueing: %v", d.GroupID, err)
			r.CircuitBreaker.RecordFailure()
			if markErr := r.Queue.MarkDirty(ctx, d.UserID, d.GroupID); markErr != nil {
				log.Printf("reconcile: re-queue group %s failed: %v", d.GroupID, markErr)
			}
			continue
		}
		r.CircuitBreaker.RecordSuccess()
	}
	return nil
}

// repair reasserts three invariants for one group: (1) every member face
// doc actually points back at this group, dropping any that have
// drifted (a crash between the face-doc write and the group-doc write
// leaves the face doc as the source of truth); (2) a group left with no
// members because all of them drifted away is deleted outright if it was
// the losing side of a merge — the dirty-group queue is an unordered Redis
// Set, so the loser's own dirty entry can be drained before the winner's,
// and nothing else would ever clean it up; (3) otherwise, no other group
// shares a member face with this one, merging any that do.
func (r *Reconciler) repair(ctx context.Context, userID, groupID string) error {
	group, err := r.Store.GetGroup(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		// Already deleted, e.g. as the losing side of a merge. Nothing to do.
		return nil
	}

	if err := r.dropDriftedFaces(ctx, userID, group); err != nil {
		return err
	}

	if len(group.FaceIDs) == 0 {
		stale, err := r.isStaleMergeLoser(ctx, userID, group.GroupID)
		if err != nil {
			return err
		}
		if stale {
			return r.Store.DeleteGroup(ctx, userID, group.GroupID)
		}
		return nil
	}

	return r.mergeOverlapping(ctx, userID, group)
}

// isStaleMergeLoser reports whether some other surviving group's
// MergedFrom names groupID — i.e. groupID already lost a merge and only
// survives because its own deletion never completed.
func (r *Reconciler) isStaleMergeLoser(ctx context.Context, userID, groupID string) (bool, error) {
	groups, err := r.Store.ListGroups(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, other := range groups {
		if other.GroupID == groupID {
			continue
		}
		for _, mergedID := range other.MergedFrom {
			if mergedID == groupID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *Reconciler) dropDriftedFaces(ctx context.Context, userID string, group *domain.Group) error {
	var drifted []string
	for _, faceID := range group.FaceIDs {
		face, err := r.Store.GetFace(ctx, userID, faceID)
		if err != nil {
			return err
		}
		if face == nil || face.GroupID != group.GroupID {
			drifted = append(drifted, faceID)
		}
	}
	if len(drifted) == 0 {
		return nil
	}

	for _, faceID := range drifted {
		group.RemoveFace(faceID)
	}
	return r.Store.PutGroup(ctx, userID, group)
}

func (r *Reconciler) mergeOverlapping(ctx context.Context, userID string, group *domain.Group) error {
	if len(group.FaceIDs) == 0 {
		return nil
	}

	others, err := r.Store.FindGroupsContainingAny(ctx, userID, group.FaceIDs, group.InterviewID)
	if err != nil {
		return err
	}

	for _, other := range others {
		if other.GroupID == group.GroupID {
			continue
		}
		otherCopy := other
		if err := r.mergeInto(ctx, userID, group, &otherCopy); err != nil {
			return err
		}
	}
	return r.Store.PutGroup(ctx, userID, group)
}

// mergeInto is the same union-then-repoint-then-delete primitive the
// engine uses, duplicated here rather than shared because the
// reconciler's failure handling (retry the whole group via the dirty
// queue) differs from the engine's (log and continue with the batch).
func (r *Reconciler) mergeInto(ctx context.Context, userID string, primary, secondary *domain.Group) error {
	for _, faceID := range secondary.FaceIDs {
		primary.AddFace(faceID)
	}
	for _, fileID := range secondary.FileIDs {
		primary.AddFile(fileID)
	}
	for _, faceID := range secondary.FaceIDs {
		face, err := r.Store.GetFace(ctx, userID, faceID)
		if err != nil {
			return err
		}
		if face == nil {
			continue
		}
		face.GroupID = primary.GroupID
		if err := r.Store.PutFace(ctx, userID, face); err != nil {
			return err
		}
	}
	primary.MergedFrom = append(primary.MergedFrom, secondary.GroupID)
	return r.Store.DeleteGroup(ctx, userID, secondary.GroupID)
}
