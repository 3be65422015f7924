package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeroute/backend-go/internal/cache"
	"github.com/bbernstein/chargeroute/backend-go/internal/config"
	"github.com/bbernstein/chargeroute/backend-go/internal/distance"
	"github.com/bbernstein/chargeroute/backend-go/internal/handler"
	"github.com/bbernstein/chargeroute/backend-go/internal/station"
	"github.com/bbernstein/chargeroute/backend-go/internal/store"
)

var (
	lambdaStart     = lambda.Start // Allow mocking of lambda.Start in tests
	stationsHandler *handler.StationsHandler
	setupOnce       sync.Once
)

func init() {
	setupOnce.Do(func() {
		// .env is optional; deployed functions get their environment from Lambda
		_ = godotenv.Load()

		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()
		storeCfg := config.GetStoreConfig()

		repo, _, err := store.Open(context.Background(), storeCfg)
		if err != nil {
			log.Fatal().Err(err).Str("backend", storeCfg.Backend).Msg("Failed to open station store")
		}

		opts := []station.FinderOption{
			station.WithDistanceService(distance.ConfigureDefault(cfg), cfg.RouteConcurrency),
		}
		if storeCfg.EnableCandidateCache {
			candidates, err := cache.NewCandidateCache(storeCfg)
			if err != nil {
				log.Warn().Err(err).Msg("Candidate cache disabled")
			} else {
				opts = append(opts, station.WithCandidateCache(candidates))
			}
		}

		stationsHandler = handler.NewStationsHandler(station.NewFinder(repo, opts...))
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return stationsHandler.HandleRequest(ctx, request)
}

func main() {
	lambdaStart(handleRequest)
}
