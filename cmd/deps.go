package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kozaktomas/facegroup/internal/config"
	"github.com/kozaktomas/facegroup/internal/groupengine"
	"github.com/kozaktomas/facegroup/internal/manualops"
	"github.com/kozaktomas/facegroup/internal/reachability"
	"github.com/kozaktomas/facegroup/internal/reconcile"
	"github.com/kozaktomas/facegroup/internal/recognition"
	"github.com/kozaktomas/facegroup/internal/store"
	"github.com/kozaktomas/facegroup/internal/store/postgres"
)

// deps bundles the components every subcommand wires together, so each
// command file only has to describe what it does with them.
type deps struct {
	cfg     *config.Config
	store   store.Store
	engine  *groupengine.Engine
	ops     *manualops.Ops
	queue   *reconcile.Queue
	closers []func()
}

func (d *deps) Close() {
	for _, c := range d.closers {
		c()
	}
}

// resolveUserID returns the --user flag value, falling back to the
// configured test user ID so the CLI is usable without flags in a
// single-tenant deployment.
func resolveUserID(cfg *config.Config) string {
	if userIDFlag != "" {
		return userIDFlag
	}
	return cfg.GroupEngine.TestUserID
}

// wireDeps connects to PostgreSQL and Redis and assembles the Group
// Engine, Manual Ops, and Reconciler queue, following the teacher's
// per-command connect-then-defer-close pattern (cmd/photo_faces.go).
func wireDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.LoadWithFile(configFileFlag)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	pool, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	pgStore := postgres.New(pool)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	queue := reconcile.NewQueue(redisClient)

	searcher := recognition.NewClient(cfg.Recognition.BaseURL, cfg.Recognition.RequestTimeout)
	resolver := &recognition.Resolver{
		Searcher:            searcher,
		CollectionPrefix:    cfg.Recognition.CollectionPrefix,
		SimilarityThreshold: cfg.Recognition.SimilarityThreshold,
		MaxMatches:          cfg.Recognition.MaxMatches,
	}
	prober := reachability.NewProber(cfg.Reachability.Timeout)

	engine := groupengine.New(pgStore, resolver, prober)
	engine.BoundingBoxTolerance = cfg.GroupEngine.BoundingBoxTolerance
	engine.Dirtier = queue

	ops := manualops.New(pgStore, engine.NewID, nowFunc, cfg.GroupEngine.TestUserID)

	return &deps{
		cfg:    cfg,
		store:  pgStore,
		engine: engine,
		ops:    ops,
		queue:  queue,
		closers: []func(){
			pool.Close,
			func() { _ = redisClient.Close() },
		},
	}, nil
}

var nowFunc = time.Now
