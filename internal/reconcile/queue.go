// Package reconcile implements the background Reconciler (C7): a
// durable queue of "dirty" groups nudged by the Group Engine whenever a
// merge might have left the transitive-closure invariant in a
// partially-applied state (Manual Ops do not mark groups dirty), plus a
// poll loop (grounded on the
// pack's FaceWorker/CircuitBreaker pattern) that drains the queue and
// repairs each group.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// dirtyKey is the Redis set holding pending (userID, groupID) pairs,
// keyed per deployment rather than per user so a single reconciler
// instance can drain every tenant's backlog.
const dirtyKey = "facegroup:dirty-groups"

// entry is the JSON payload stored per dirty-set member.
type entry struct {
	UserID  string `json:"userId"`
	GroupID string `json:"groupId"`
}

// Queue is a Redis-backed durable set of dirty groups. A set (not a
// list) gives free deduplication: re-marking an already-dirty group is
// a no-op, which matters because the engine marks dirty liberally: on
// every merge and on any merge failure.
type Queue struct {
	client *redis.Client
}

// NewQueue wraps an existing go-redis client.
func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// MarkDirty enqueues (userID, groupID) for repair. Implements
// groupengine.Dirtier.
func (q *Queue) MarkDirty(ctx context.Context, userID, groupID string) error {
	payload, err := json.Marshal(entry{UserID: userID, GroupID: groupID})
	if err != nil {
		return fmt.Errorf("reconcile: marshal dirty entry: %w", err)
	}
	if err := q.client.SAdd(ctx, dirtyKey, payload).Err(); err != nil {
		return fmt.Errorf("reconcile: mark dirty: %w", err)
	}
	return nil
}

// Drain pops up to max pending entries, removing them from the set.
// Entries are removed even if their repair later fails; a failed repair
// re-marks itself dirty via the Reconciler's own error handling.
func (q *Queue) Drain(ctx context.Context, max int64) ([]DirtyGroup, error) {
	members, err := q.client.SPopN(ctx, dirtyKey, max).Result()
	if err != nil {
		return nil, fmt.Errorf("reconcile: drain: %w", err)
	}

	out := make([]DirtyGroup, 0, len(members))
	for _, raw := range members {
		var e entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		out = append(out, DirtyGroup{UserID: e.UserID, GroupID: e.GroupID})
	}
	return out, nil
}

// Len reports the current backlog size, used for health/metrics.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.SCard(ctx, dirtyKey).Result()
	if err != nil {
		return 0, fmt.Errorf("reconcile: len: %w", err)
	}
	return n, nil
}

// DirtyGroup is one queue entry: a group whose closure invariant needs
// to be reverified.
type DirtyGroup struct {
	UserID  string
	GroupID string
}
