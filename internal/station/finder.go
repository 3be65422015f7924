package station

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeroute/backend-go/internal/cache"
	"github.com/bbernstein/chargeroute/backend-go/internal/distance"
	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

// Approximate km per degree used to size the search box
const (
	kmPerDegreeLat = 111.0
	kmPerDegreeLng = 85.0
)

// DistanceService refines straight-line distances with route distances
type DistanceService interface {
	Distances(ctx context.Context, origin models.Coordinate, destinations []distance.Destination,
		concurrency int, onProgress distance.ProgressFunc) models.DistanceResult
}

// Finder recommends charging stations around a point
type Finder struct {
	repo             models.StationRepository
	candidates       *cache.CandidateCache
	distances        DistanceService
	routeConcurrency int
}

type FinderOption func(*Finder)

// WithCandidateCache keeps recent bounding-box lookups in memory
func WithCandidateCache(c *cache.CandidateCache) FinderOption {
	return func(f *Finder) {
		f.candidates = c
	}
}

// WithDistanceService enables route distances for requests that ask for them
func WithDistanceService(svc DistanceService, concurrency int) FinderOption {
	return func(f *Finder) {
		f.distances = svc
		f.routeConcurrency = concurrency
	}
}

func NewFinder(repo models.StationRepository, opts ...FinderOption) *Finder {
	f := &Finder{repo: repo}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Recommend returns the stations within req.MaxDistance that pass the
// request filters, ordered by req.Priority and truncated to req.Limit.
func (f *Finder) Recommend(ctx context.Context, req models.RecommendationRequest) ([]models.Station, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommendation request: %w", err)
	}

	origin := req.Origin()
	bounds := searchBounds(origin, req.MaxDistance)

	candidates, err := f.candidatesIn(ctx, bounds)
	if err != nil {
		return nil, fmt.Errorf("getting candidate stations: %w", err)
	}

	matches := make([]models.Station, 0, len(candidates))
	for _, s := range candidates {
		km := distance.Estimate(origin, s.Location())
		if km > req.MaxDistance || !matchesFilters(s, req) {
			continue
		}
		s.Distance = &km
		matches = append(matches, s)
	}

	sortByPriority(matches, req.Priority)
	if len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}

	if req.RouteDistances && f.distances != nil && len(matches) > 0 {
		f.applyRouteDistances(ctx, origin, matches)
		sortByPriority(matches, req.Priority)
	}

	log.Debug().
		Float64("lat", origin.Lat).
		Float64("lng", origin.Lng).
		Str("priority", string(req.Priority)).
		Int("candidates", len(candidates)).
		Int("results", len(matches)).
		Msg("Recommended stations")

	return matches, nil
}

func (f *Finder) candidatesIn(ctx context.Context, bounds models.Bounds) ([]models.Station, error) {
	if f.candidates != nil {
		if stations, ok := f.candidates.Get(bounds); ok {
			return stations, nil
		}
	}

	stations, err := f.repo.FindStationsInRange(ctx, bounds)
	if err != nil {
		return nil, err
	}

	if f.candidates != nil {
		f.candidates.Add(bounds, stations)
	}
	return stations, nil
}

func (f *Finder) applyRouteDistances(ctx context.Context, origin models.Coordinate, stations []models.Station) {
	destinations := make([]distance.Destination, len(stations))
	for i, s := range stations {
		destinations[i] = distance.Destination{ID: s.ID, Coordinate: s.Location()}
	}

	result := f.distances.Distances(ctx, origin, destinations, f.routeConcurrency, nil)
	for i := range stations {
		if km, ok := result.Value(stations[i].ID); ok {
			stations[i].Distance = &km
		}
	}
}

func searchBounds(origin models.Coordinate, maxDistanceKm float64) models.Bounds {
	latRange := maxDistanceKm / kmPerDegreeLat
	lngRange := maxDistanceKm / kmPerDegreeLng
	return models.Bounds{
		MinLat: origin.Lat - latRange,
		MaxLat: origin.Lat + latRange,
		MinLng: origin.Lng - lngRange,
		MaxLng: origin.Lng + lngRange,
	}
}

func matchesFilters(s models.Station, req models.RecommendationRequest) bool {
	if req.MinPower != nil && s.MaxPowerKw != nil && *s.MaxPowerKw < *req.MinPower {
		return false
	}
	if req.MinAvailable != nil && s.AvailableConnectors != nil && *s.AvailableConnectors < *req.MinAvailable {
		return false
	}
	if req.ChargingType != nil && strings.TrimSpace(*req.ChargingType) != "" {
		if s.ChargingType == nil || *s.ChargingType != *req.ChargingType {
			return false
		}
	}
	return true
}

func sortByPriority(stations []models.Station, priority models.Priority) {
	sort.SliceStable(stations, func(i, j int) bool {
		a, b := stations[i], stations[j]
		switch priority {
		case models.PriorityPower:
			if pa, pb := floatOrZero(a.MaxPowerKw), floatOrZero(b.MaxPowerKw); pa != pb {
				return pa > pb
			}
		case models.PriorityAvailable:
			if aa, ab := intOrZero(a.AvailableConnectors), intOrZero(b.AvailableConnectors); aa != ab {
				return aa > ab
			}
		}
		return distanceOrMax(a) < distanceOrMax(b)
	})
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func intOrZero(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func distanceOrMax(s models.Station) float64 {
	if s.Distance == nil {
		return math.MaxFloat64
	}
	return *s.Distance
}
