package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestStationValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		station   Station
		wantError bool
	}{
		{
			name: "complete station",
			station: Station{
				ID:                  "ST001",
				Name:                "Optics Valley Supercharger",
				Address:             stringPtr("1 Guanshan Ave"),
				Lat:                 30.5052,
				Lng:                 114.4001,
				Operator:            stringPtr("StateGrid"),
				ChargingType:        stringPtr(ChargingTypeFast),
				TotalConnectors:     intPtr(12),
				AvailableConnectors: intPtr(4),
				MaxPowerKw:          floatPtr(120),
			},
		},
		{
			name:    "minimal station",
			station: Station{ID: "ST002", Name: "Minimal", Lat: 30.5, Lng: 114.3},
		},
		{
			name:      "missing id",
			station:   Station{Name: "No ID", Lat: 30.5, Lng: 114.3},
			wantError: true,
		},
		{
			name:      "latitude out of range",
			station:   Station{ID: "ST003", Name: "Bad", Lat: 91, Lng: 114.3},
			wantError: true,
		},
		{
			name: "more available than total",
			station: Station{
				ID: "ST004", Name: "Overbooked", Lat: 30.5, Lng: 114.3,
				TotalConnectors: intPtr(2), AvailableConnectors: intPtr(3),
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.station.Validate()
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStationDistanceOmittedWhenUnset(t *testing.T) {
	data, err := json.Marshal(Station{ID: "ST001", Name: "A", Lat: 1, Lng: 2})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "distance")

	data, err = json.Marshal(Station{ID: "ST001", Name: "A", Lat: 1, Lng: 2, Distance: floatPtr(3.5)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"distance":3.5`)
}

func TestRecommendationRequest(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		req := RecommendationRequest{Lat: floatPtr(30.5), Lng: floatPtr(114.3)}.WithDefaults()

		assert.Equal(t, PriorityDistance, req.Priority)
		assert.Equal(t, DefaultMaxDistanceKm, req.MaxDistance)
		assert.Equal(t, DefaultLimit, req.Limit)
		assert.Equal(t, Coordinate{Lat: 30.5, Lng: 114.3}, req.Origin())
	})

	t.Run("explicit values kept", func(t *testing.T) {
		req := RecommendationRequest{Priority: PriorityPower, MaxDistance: 25, Limit: 3}.WithDefaults()

		assert.Equal(t, PriorityPower, req.Priority)
		assert.Equal(t, 25.0, req.MaxDistance)
		assert.Equal(t, 3, req.Limit)
	})

	validation := []struct {
		name    string
		req     RecommendationRequest
		wantErr bool
	}{
		{name: "valid", req: RecommendationRequest{Lat: floatPtr(30.5), Lng: floatPtr(114.3)}},
		{name: "missing lat", req: RecommendationRequest{Lng: floatPtr(114.3)}, wantErr: true},
		{name: "missing lng", req: RecommendationRequest{Lat: floatPtr(30.5)}, wantErr: true},
		{name: "out of range", req: RecommendationRequest{Lat: floatPtr(30.5), Lng: floatPtr(200)}, wantErr: true},
		{name: "bad priority", req: RecommendationRequest{Lat: floatPtr(30.5), Lng: floatPtr(114.3), Priority: "price"}, wantErr: true},
	}
	for _, tt := range validation {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDistanceResult(t *testing.T) {
	r := DistanceResult{}
	r.Set("a", 1.5)
	r["b"] = nil

	v, ok := r.Value("a")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = r.Value("b")
	assert.False(t, ok)

	_, ok = r.Value("missing")
	assert.False(t, ok)
}

func TestTaskID(t *testing.T) {
	assert.Equal(t, "st-9", TaskID("st-9", 3))
	assert.Equal(t, "3", TaskID("", 3))
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{MinLat: 30, MaxLat: 31, MinLng: 114, MaxLng: 115}

	assert.True(t, b.Contains(Coordinate{Lat: 30.5, Lng: 114.5}))
	assert.True(t, b.Contains(Coordinate{Lat: 30, Lng: 115}))
	assert.False(t, b.Contains(Coordinate{Lat: 29.9, Lng: 114.5}))
}
