// Package groupengine implements the Group Engine (C5): the algorithm
// that consumes batches of (face, matches) and maintains the transitive
// closure invariant over persisted groups via find/merge, following the
// union-find-over-a-document-store design of spec.md §9.
package groupengine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/facegroup/internal/domain"
	"github.com/kozaktomas/facegroup/internal/facematch"
	"github.com/kozaktomas/facegroup/internal/store"
)

// Resolver is the subset of recognition.Resolver the engine depends on.
type Resolver interface {
	Resolve(ctx context.Context, userID string, face domain.FaceInput) []string
}

// Prober is the subset of reachability.Prober the engine depends on.
type Prober interface {
	Reachable(ctx context.Context, url string) bool
}

// Dirtier receives notifications about groups whose consistency may need
// the background reconciler's attention (C7). It is optional: a nil
// Dirtier simply means the engine does not nudge a reconciler.
type Dirtier interface {
	MarkDirty(ctx context.Context, userID, groupID string) error
}

// Engine wires the Store Adapter, Match Resolver, and Image Reachability
// Probe into the processBatch algorithm.
type Engine struct {
	Store                store.Store
	Resolver             Resolver
	Prober               Prober
	Dirtier              Dirtier
	BoundingBoxTolerance float64
	NewID                func() string
}

// New creates an Engine with the spec's default bounding-box tolerance
// (0.05) and a uuid.NewString-backed ID generator.
func New(s store.Store, resolver Resolver, prober Prober) *Engine {
	return &Engine{
		Store:                s,
		Resolver:             resolver,
		Prober:               prober,
		BoundingBoxTolerance: facematch.DefaultBoundingBoxTolerance,
		NewID:                uuid.NewString,
	}
}

// Result is the outcome of a processBatch call.
type Result struct {
	ProcessedCount int
	Groups         []domain.Group
}

func (e *Engine) markDirty(ctx context.Context, userID, groupID string) {
	if e.Dirtier == nil {
		return
	}
	_ = e.Dirtier.MarkDirty(ctx, userID, groupID)
}

// processedAtNow is overridable in tests for deterministic timestamps.
var processedAtNow = time.Now
