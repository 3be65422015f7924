package handler

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeroute/backend-go/internal/api"
	"github.com/bbernstein/chargeroute/backend-go/internal/distance"
	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

// MaxDestinations caps a single distances request
const MaxDestinations = 100

// DistanceCalculator resolves a batch of destinations against one origin
type DistanceCalculator interface {
	Distances(ctx context.Context, origin models.Coordinate, destinations []distance.Destination,
		concurrency int, onProgress distance.ProgressFunc) models.DistanceResult
}

type DistancesRequest struct {
	Origin       *models.Coordinate     `json:"origin"`
	Destinations []distance.Destination `json:"destinations"`
	Concurrency  int                    `json:"concurrency"`
}

func (r DistancesRequest) Validate() error {
	if r.Origin == nil {
		return api.NewValidationError("origin is required")
	}
	if err := api.ValidateCoordinate(*r.Origin); err != nil {
		return err
	}
	if len(r.Destinations) > MaxDestinations {
		return api.NewValidationError(fmt.Sprintf("at most %d destinations are allowed", MaxDestinations))
	}
	for i, d := range r.Destinations {
		if err := api.ValidateCoordinate(d.Coordinate); err != nil {
			return api.NewValidationError(fmt.Sprintf("destination %d: %v", i, err))
		}
	}
	return nil
}

type DistancesHandler struct {
	calculator         DistanceCalculator
	defaultConcurrency int
}

func NewDistancesHandler(calculator DistanceCalculator, defaultConcurrency int) *DistancesHandler {
	return &DistancesHandler{
		calculator:         calculator,
		defaultConcurrency: defaultConcurrency,
	}
}

// HandleRequest resolves route distances for the posted destinations. The
// batch never fails; unresolved pairs carry great-circle distances.
func (h *DistancesHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := uuid.NewString()

	var req DistancesRequest
	if err := api.DecodeBody(request, &req); err != nil {
		return badRequest(err)
	}
	if err := req.Validate(); err != nil {
		return badRequest(err)
	}

	concurrency := req.Concurrency
	if concurrency < 1 {
		concurrency = h.defaultConcurrency
	}

	var progress models.BatchProgress
	result := h.calculator.Distances(ctx, *req.Origin, req.Destinations, concurrency, func(completed, total int) {
		progress = models.BatchProgress{Completed: completed, Total: total}
		log.Debug().
			Str("requestId", requestID).
			Int("completed", completed).
			Int("total", total).
			Msg("Distance batch progress")
	})

	log.Info().
		Str("requestId", requestID).
		Int("destinations", len(req.Destinations)).
		Int("concurrency", concurrency).
		Msg("Resolved distances")

	return api.Success(api.NewDistancesResponse(result, progress))
}
