// Package config loads facegroup's settings from the environment,
// following the teacher's envGetter idiom: every field has a sane
// default and nothing is required to be present for Load to succeed.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database     DatabaseConfig
	Recognition  RecognitionConfig
	Reachability ReachabilityConfig
	GroupEngine  GroupEngineConfig
	Redis        RedisConfig
	Reconciler   ReconcilerConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// RecognitionConfig points at the external face-recognition engine used
// by the Match Resolver (C2) to find candidate matches for a face that
// did not arrive with matchedFaceIds already populated.
type RecognitionConfig struct {
	BaseURL             string
	RequestTimeout      time.Duration
	SimilarityThreshold float64
	MaxMatches          int
	CollectionPrefix    string
}

// ReachabilityConfig configures the Image Reachability Probe (C4).
type ReachabilityConfig struct {
	Timeout time.Duration
}

// GroupEngineConfig configures the Group Engine's (C5) tuning knobs.
type GroupEngineConfig struct {
	BoundingBoxTolerance float64
	TestUserID           string // fixed userId the admin CLI uses when none is supplied
}

// RedisConfig configures the dirty-group queue's backing store (C7).
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns the host:port pair go-redis expects.
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// ReconcilerConfig configures the background repair loop (C7).
type ReconcilerConfig struct {
	PollInterval     time.Duration
	BatchSize        int64
	FailureThreshold int32
	ResetTimeout     time.Duration
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Recognition: RecognitionConfig{
			BaseURL:             os.Getenv("RECOGNITION_BASE_URL"),
			RequestTimeout:      envDuration("RECOGNITION_TIMEOUT", 5*time.Second),
			SimilarityThreshold: envFloat("RECOGNITION_SIMILARITY_THRESHOLD", 0.85),
			MaxMatches:          envInt("RECOGNITION_MAX_MATCHES", 20),
			CollectionPrefix:    envString("RECOGNITION_COLLECTION_PREFIX", "face_coll_"),
		},
		Reachability: ReachabilityConfig{
			Timeout: envDuration("REACHABILITY_TIMEOUT", 5*time.Second),
		},
		GroupEngine: GroupEngineConfig{
			BoundingBoxTolerance: envFloat("GROUP_BBOX_TOLERANCE", 0.05),
			TestUserID:           envString("FACEGROUP_TEST_USER_ID", "default"),
		},
		Redis: RedisConfig{
			Host:     envString("REDIS_HOST", "localhost"),
			Port:     envString("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		Reconciler: ReconcilerConfig{
			PollInterval:     envDuration("RECONCILER_POLL_INTERVAL", 30*time.Second),
			BatchSize:        int64(envInt("RECONCILER_BATCH_SIZE", 100)),
			FailureThreshold: int32(envInt("RECONCILER_FAILURE_THRESHOLD", 10)),
			ResetTimeout:     envDuration("RECONCILER_RESET_TIMEOUT", 60*time.Second),
		},
	}
}
