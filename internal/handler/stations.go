package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeroute/backend-go/internal/api"
	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

type StationsHandler struct {
	recommender models.StationRecommender
}

func NewStationsHandler(recommender models.StationRecommender) *StationsHandler {
	return &StationsHandler{
		recommender: recommender,
	}
}

// HandleRequest serves station recommendations. POST requests carry a JSON
// body; GET requests use query parameters.
func (h *StationsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := uuid.NewString()

	req, err := parseRecommendationRequest(request)
	if err != nil {
		return badRequest(err)
	}

	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return api.Error(err.Error(), http.StatusBadRequest)
	}

	stations, err := h.recommender.Recommend(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("requestId", requestID).Msg("Error recommending stations")
		return api.Error("Error finding stations", http.StatusInternalServerError)
	}

	log.Info().
		Str("requestId", requestID).
		Str("priority", string(req.Priority)).
		Int("count", len(stations)).
		Msg("Recommended stations")

	return api.Success(api.NewStationsResponse(stations))
}

func parseRecommendationRequest(request events.APIGatewayProxyRequest) (models.RecommendationRequest, error) {
	var req models.RecommendationRequest
	if request.HTTPMethod == http.MethodPost || request.Body != "" {
		err := api.DecodeBody(request, &req)
		return req, err
	}

	params := request.QueryStringParameters
	lat, lng, ok, err := api.ParseCoordinates(params)
	if err != nil {
		return req, err
	}
	if ok {
		req.Lat, req.Lng = &lat, &lng
	}

	req.Priority = models.Priority(params["priority"])
	if v, ok := params["maxDistance"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.MaxDistance = f
		}
	}
	if v, ok := params["limit"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			req.Limit = n
		}
	}
	if v, ok := params["minPower"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.MinPower = &f
		}
	}
	if v, ok := params["minAvailable"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			req.MinAvailable = &n
		}
	}
	if v, ok := params["chargingType"]; ok && v != "" {
		req.ChargingType = &v
	}
	req.RouteDistances = params["routeDistances"] == "true"

	return req, nil
}

func badRequest(err error) (events.APIGatewayProxyResponse, error) {
	var invalidCoordErr api.InvalidCoordinatesError
	var validationErr *api.ValidationError
	switch {
	case errors.As(err, &invalidCoordErr), errors.As(err, &validationErr):
		return api.Error(err.Error(), http.StatusBadRequest)
	default:
		return api.Error("Invalid parameters", http.StatusBadRequest)
	}
}
