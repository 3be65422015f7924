package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Station stores
const (
	StoreDynamo   = "dynamo"
	StorePostgres = "postgres"
)

// StoreConfig holds station catalogue and cache settings
type StoreConfig struct {
	Backend       string
	StationsTable string
	DatabaseURL   string

	// Candidate LRU settings
	CandidateLRUSize       int
	CandidateLRUTTLMinutes int
	EnableCandidateCache   bool

	// S3 catalogue snapshot
	SnapshotBucket   string
	SnapshotTTLHours int

	// Batch write settings
	BatchSize       int
	MaxBatchRetries int
}

const (
	defaultStationsTable          = "charging-stations"
	defaultCandidateLRUSize       = 2000
	defaultCandidateLRUTTLMinutes = 10
	defaultSnapshotTTLHours       = 48
	defaultBatchSize              = 25
	defaultMaxBatchRetries        = 3
)

// GetStoreConfig returns the store configuration from environment variables or defaults
func GetStoreConfig() *StoreConfig {
	backend := strings.ToLower(getEnvOrDefault("STATION_STORE", StoreDynamo))
	if backend != StorePostgres {
		backend = StoreDynamo
	}

	cfg := &StoreConfig{
		Backend:                backend,
		StationsTable:          getEnvOrDefault("STATIONS_TABLE", defaultStationsTable),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		CandidateLRUSize:       getEnvInt("STATION_LRU_SIZE", defaultCandidateLRUSize),
		CandidateLRUTTLMinutes: getEnvInt("STATION_LRU_TTL_MINUTES", defaultCandidateLRUTTLMinutes),
		EnableCandidateCache:   getEnvBool("STATION_LRU_ENABLE", true),
		SnapshotBucket:         os.Getenv("STATION_SNAPSHOT_BUCKET"),
		SnapshotTTLHours:       getEnvInt("STATION_SNAPSHOT_TTL_HOURS", defaultSnapshotTTLHours),
		BatchSize:              getEnvInt("BATCH_SIZE", defaultBatchSize),
		MaxBatchRetries:        getEnvInt("MAX_BATCH_RETRIES", defaultMaxBatchRetries),
	}

	// DynamoDB BatchWriteItem accepts at most 25 requests
	if cfg.BatchSize <= 0 || cfg.BatchSize > defaultBatchSize {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.MaxBatchRetries <= 0 {
		cfg.MaxBatchRetries = 1
	}

	log.Debug().
		Str("Backend", cfg.Backend).
		Str("StationsTable", cfg.StationsTable).
		Int("CandidateLRUSize", cfg.CandidateLRUSize).
		Int("CandidateLRUTTLMinutes", cfg.CandidateLRUTTLMinutes).
		Bool("EnableCandidateCache", cfg.EnableCandidateCache).
		Str("SnapshotBucket", cfg.SnapshotBucket).
		Int("BatchSize", cfg.BatchSize).
		Int("MaxBatchRetries", cfg.MaxBatchRetries).
		Msg("Store configuration loaded")

	return cfg
}

func (c *StoreConfig) GetCandidateTTL() time.Duration {
	return time.Duration(c.CandidateLRUTTLMinutes) * time.Minute
}

func (c *StoreConfig) GetSnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLHours) * time.Hour
}
