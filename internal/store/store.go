package store

import (
	"context"
	"fmt"

	"github.com/bbernstein/chargeroute/backend-go/internal/cache"
	"github.com/bbernstein/chargeroute/backend-go/internal/config"
	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

// Open builds the repository selected by cfg.Backend. The returned cleanup
// releases any pooled connections.
func Open(ctx context.Context, cfg *config.StoreConfig) (models.StationRepository, func(), error) {
	switch cfg.Backend {
	case config.StorePostgres:
		pool, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresStationRepository(pool), pool.Close, nil
	default:
		client, err := cache.NewDynamoClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("creating DynamoDB client: %w", err)
		}
		return NewDynamoStationRepository(client, cfg), func() {}, nil
	}
}
