package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"

	"github.com/bbernstein/chargeroute/backend-go/internal/config"
	"github.com/bbernstein/chargeroute/backend-go/internal/distance"
	"github.com/bbernstein/chargeroute/backend-go/internal/handler"
)

var (
	lambdaStart      = lambda.Start // Allow mocking of lambda.Start in tests
	distancesHandler *handler.DistancesHandler
	setupOnce        sync.Once
)

func init() {
	setupOnce.Do(func() {
		_ = godotenv.Load()

		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()

		distancesHandler = handler.NewDistancesHandler(distance.ConfigureDefault(cfg), cfg.RouteConcurrency)
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return distancesHandler.HandleRequest(ctx, request)
}

func main() {
	lambdaStart(handleRequest)
}
