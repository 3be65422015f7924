package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"googlemaps.github.io/maps"

	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// GoogleRouter queries the Google Maps Directions API
type GoogleRouter struct {
	client directionsClient
}

func NewGoogleRouter(c directionsClient) *GoogleRouter {
	return &GoogleRouter{client: c}
}

func (r *GoogleRouter) Search(ctx context.Context, origin, destination models.Coordinate) (*SearchResult, error) {
	routes, _, err := r.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      formatLatLng(origin),
		Destination: formatLatLng(destination),
		Mode:        maps.TravelModeDriving,
	})
	if err != nil {
		log.Debug().Err(err).Msg("Google directions request failed")
		return &SearchResult{Status: StatusQueryFailed, Message: err.Error()}, nil
	}

	plans := make([]Plan, 0, len(routes))
	for _, route := range routes {
		var meters int
		var duration time.Duration
		for _, leg := range route.Legs {
			meters += leg.Distance.Meters
			duration += leg.Duration
		}
		plans = append(plans, Plan{
			DistanceMeters:  float64(meters),
			DurationSeconds: duration.Seconds(),
		})
	}

	if len(plans) == 0 {
		return &SearchResult{Status: StatusQueryFailed, Message: "no routes returned"}, nil
	}
	return &SearchResult{Status: StatusSuccess, Plans: plans}, nil
}

// GoogleLoader builds a GoogleRouter from an API key
type GoogleLoader struct {
	APIKey  string
	Timeout time.Duration
}

func (l *GoogleLoader) Load(context.Context) (Router, error) {
	if l.APIKey == "" {
		return nil, errors.New("google maps API key is not configured")
	}

	timeout := l.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	c, err := maps.NewClient(
		maps.WithAPIKey(l.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating google maps client: %w", err)
	}
	return NewGoogleRouter(c), nil
}
