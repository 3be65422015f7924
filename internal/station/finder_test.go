package station

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/chargeroute/backend-go/internal/cache"
	"github.com/bbernstein/chargeroute/backend-go/internal/config"
	"github.com/bbernstein/chargeroute/backend-go/internal/distance"
	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

type mockStationRepository struct {
	findFunc func(ctx context.Context, bounds models.Bounds) ([]models.Station, error)
	calls    int
}

func (m *mockStationRepository) FindStationsInRange(ctx context.Context, bounds models.Bounds) ([]models.Station, error) {
	m.calls++
	return m.findFunc(ctx, bounds)
}

func (m *mockStationRepository) SaveStations(ctx context.Context, stations []models.Station) error {
	return nil
}

type mockDistanceService struct {
	km    map[string]float64
	calls int
}

func (m *mockDistanceService) Distances(ctx context.Context, origin models.Coordinate, destinations []distance.Destination,
	concurrency int, onProgress distance.ProgressFunc) models.DistanceResult {
	m.calls++
	result := make(models.DistanceResult)
	for _, d := range destinations {
		if km, ok := m.km[d.ID]; ok {
			result.Set(d.ID, km)
		}
	}
	return result
}

func stringPtr(s string) *string  { return &s }
func intPtr(i int) *int          { return &i }
func floatPtr(f float64) *float64 { return &f }

var origin = models.Coordinate{Lat: 31.2304, Lng: 121.4737}

// offsets are ~1.1 km per 0.01 degree of latitude
func testStations() []models.Station {
	return []models.Station{
		{ID: "near", Name: "Near", Lat: 31.2404, Lng: 121.4737, MaxPowerKw: floatPtr(60), AvailableConnectors: intPtr(1), ChargingType: stringPtr("fast")},
		{ID: "mid", Name: "Mid", Lat: 31.2604, Lng: 121.4737, MaxPowerKw: floatPtr(180), AvailableConnectors: intPtr(4), ChargingType: stringPtr("super_fast")},
		{ID: "far", Name: "Far", Lat: 31.2904, Lng: 121.4737, AvailableConnectors: intPtr(8), ChargingType: stringPtr("slow")},
		{ID: "outside", Name: "Outside", Lat: 31.3304, Lng: 121.4737, MaxPowerKw: floatPtr(350)},
	}
}

func newTestFinder(opts ...FinderOption) (*Finder, *mockStationRepository) {
	repo := &mockStationRepository{
		findFunc: func(ctx context.Context, bounds models.Bounds) ([]models.Station, error) {
			return testStations(), nil
		},
	}
	return NewFinder(repo, opts...), repo
}

func ids(stations []models.Station) []string {
	out := make([]string, len(stations))
	for i, s := range stations {
		out[i] = s.ID
	}
	return out
}

func TestRecommendPriorities(t *testing.T) {
	tests := []struct {
		name     string
		priority models.Priority
		expected []string
	}{
		{"default is distance", "", []string{"near", "mid", "far"}},
		{"distance", models.PriorityDistance, []string{"near", "mid", "far"}},
		{"power", models.PriorityPower, []string{"mid", "near", "far"}},
		{"available", models.PriorityAvailable, []string{"far", "mid", "near"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder, _ := newTestFinder()
			got, err := finder.Recommend(context.Background(), models.RecommendationRequest{
				Lat: &origin.Lat, Lng: &origin.Lng, Priority: tt.priority, MaxDistance: 8,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(got))
			for _, s := range got {
				require.NotNil(t, s.Distance)
				assert.LessOrEqual(t, *s.Distance, 8.0)
			}
		})
	}
}

func TestRecommendFilters(t *testing.T) {
	tests := []struct {
		name     string
		req      models.RecommendationRequest
		expected []string
	}{
		{
			name:     "min power keeps stations without power data",
			req:      models.RecommendationRequest{MinPower: floatPtr(100)},
			expected: []string{"mid", "far"},
		},
		{
			name:     "min available",
			req:      models.RecommendationRequest{MinAvailable: intPtr(4)},
			expected: []string{"mid", "far"},
		},
		{
			name:     "charging type",
			req:      models.RecommendationRequest{ChargingType: stringPtr("fast")},
			expected: []string{"near"},
		},
		{
			name:     "blank charging type is ignored",
			req:      models.RecommendationRequest{ChargingType: stringPtr(" ")},
			expected: []string{"near", "mid", "far"},
		},
		{
			name:     "limit",
			req:      models.RecommendationRequest{Limit: 2},
			expected: []string{"near", "mid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder, _ := newTestFinder()
			req := tt.req
			req.Lat, req.Lng, req.MaxDistance = &origin.Lat, &origin.Lng, 8

			got, err := finder.Recommend(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(got))
		})
	}
}

func TestRecommendSearchBounds(t *testing.T) {
	var seen models.Bounds
	repo := &mockStationRepository{
		findFunc: func(ctx context.Context, bounds models.Bounds) ([]models.Station, error) {
			seen = bounds
			return nil, nil
		},
	}

	got, err := NewFinder(repo).Recommend(context.Background(), models.RecommendationRequest{Lat: &origin.Lat, Lng: &origin.Lng})
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.InDelta(t, origin.Lat-10.0/111, seen.MinLat, 1e-9)
	assert.InDelta(t, origin.Lat+10.0/111, seen.MaxLat, 1e-9)
	assert.InDelta(t, origin.Lng-10.0/85, seen.MinLng, 1e-9)
	assert.InDelta(t, origin.Lng+10.0/85, seen.MaxLng, 1e-9)
}

func TestRecommendUsesCandidateCache(t *testing.T) {
	candidates, err := cache.NewCandidateCache(&config.StoreConfig{CandidateLRUSize: 10, CandidateLRUTTLMinutes: 5})
	require.NoError(t, err)
	finder, repo := newTestFinder(WithCandidateCache(candidates))
	req := models.RecommendationRequest{Lat: &origin.Lat, Lng: &origin.Lng, MaxDistance: 8}

	first, err := finder.Recommend(context.Background(), req)
	require.NoError(t, err)
	second, err := finder.Recommend(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, first, second)
}

func TestRecommendRouteDistances(t *testing.T) {
	svc := &mockDistanceService{km: map[string]float64{"near": 9.5, "mid": 3.2}}
	finder, _ := newTestFinder(WithDistanceService(svc, 5))

	got, err := finder.Recommend(context.Background(), models.RecommendationRequest{
		Lat: &origin.Lat, Lng: &origin.Lng, MaxDistance: 8, RouteDistances: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, []string{"mid", "far", "near"}, ids(got))
	assert.Equal(t, 3.2, *got[0].Distance)
	assert.Equal(t, 9.5, *got[2].Distance)
}

func TestRecommendRouteDistancesNotRequested(t *testing.T) {
	svc := &mockDistanceService{}
	finder, _ := newTestFinder(WithDistanceService(svc, 5))

	_, err := finder.Recommend(context.Background(), models.RecommendationRequest{Lat: &origin.Lat, Lng: &origin.Lng})
	require.NoError(t, err)
	assert.Equal(t, 0, svc.calls)
}

func TestRecommendErrors(t *testing.T) {
	finder, _ := newTestFinder()
	_, err := finder.Recommend(context.Background(), models.RecommendationRequest{})
	assert.ErrorContains(t, err, "invalid recommendation request")

	repo := &mockStationRepository{
		findFunc: func(ctx context.Context, bounds models.Bounds) ([]models.Station, error) {
			return nil, errors.New("table not found")
		},
	}
	_, err = NewFinder(repo).Recommend(context.Background(), models.RecommendationRequest{Lat: &origin.Lat, Lng: &origin.Lng})
	assert.ErrorContains(t, err, "getting candidate stations")
}
