package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeroute/backend-go/internal/cache"
	"github.com/bbernstein/chargeroute/backend-go/internal/config"
	"github.com/bbernstein/chargeroute/backend-go/internal/models"
	"github.com/bbernstein/chargeroute/backend-go/internal/store"
)

type schemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found (using environment variables)")
	}

	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()
	storeCfg := config.GetStoreConfig()
	ctx := context.Background()

	repo, closeRepo, err := store.Open(ctx, storeCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open station store")
	}
	defer closeRepo()

	var snapshot cache.StationSnapshotProvider
	if storeCfg.SnapshotBucket != "" {
		s3Client, err := cache.NewS3Client(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 client")
		}
		snapshot = cache.NewS3StationSnapshot(s3Client, storeCfg.SnapshotBucket, storeCfg.GetSnapshotTTL())
	}

	count, err := seed(ctx, repo, snapshot, os.Getenv("SEED_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}
	log.Info().Int("count", count).Str("backend", storeCfg.Backend).Msg("Seeding complete")
}

// seed loads stations from path, or from the snapshot when path is empty,
// and writes them to repo. A file load also refreshes the snapshot.
func seed(ctx context.Context, repo models.StationRepository, snapshot cache.StationSnapshotProvider, path string) (int, error) {
	if s, ok := repo.(schemaEnsurer); ok {
		if err := s.EnsureSchema(ctx); err != nil {
			return 0, fmt.Errorf("ensuring schema: %w", err)
		}
	}

	var stations []models.Station
	var err error
	fromFile := path != ""

	switch {
	case fromFile:
		stations, err = loadStationsFile(path)
	case snapshot != nil:
		stations, err = snapshot.GetStations(ctx)
		if err == nil && stations == nil {
			err = errors.New("station snapshot is missing or expired")
		}
	default:
		err = errors.New("SEED_PATH or STATION_SNAPSHOT_BUCKET is required")
	}
	if err != nil {
		return 0, err
	}

	if err := repo.SaveStations(ctx, stations); err != nil {
		return 0, fmt.Errorf("saving stations: %w", err)
	}

	if fromFile && snapshot != nil {
		if err := snapshot.SaveStations(ctx, stations); err != nil {
			return 0, fmt.Errorf("refreshing snapshot: %w", err)
		}
	}

	return len(stations), nil
}

func loadStationsFile(path string) ([]models.Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var stations []models.Station
	if err := json.Unmarshal(data, &stations); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return stations, nil
}
