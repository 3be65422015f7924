package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

type mockRepository struct {
	saved        []models.Station
	saveErr      error
	schemaCalled bool
}

func (m *mockRepository) FindStationsInRange(ctx context.Context, bounds models.Bounds) ([]models.Station, error) {
	return nil, nil
}

func (m *mockRepository) SaveStations(ctx context.Context, stations []models.Station) error {
	m.saved = stations
	return m.saveErr
}

type mockSchemaRepository struct {
	mockRepository
}

func (m *mockSchemaRepository) EnsureSchema(ctx context.Context) error {
	m.schemaCalled = true
	return nil
}

type mockSnapshot struct {
	stations []models.Station
	getErr   error
	saved    []models.Station
}

func (m *mockSnapshot) GetStations(ctx context.Context) ([]models.Station, error) {
	return m.stations, m.getErr
}

func (m *mockSnapshot) SaveStations(ctx context.Context, stations []models.Station) error {
	m.saved = stations
	return nil
}

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const seedJSON = `[
	{"id": "s1", "name": "Lujiazui", "lat": 31.24, "lng": 121.5, "maxPowerKw": 120},
	{"id": "s2", "name": "Wujiaochang", "lat": 31.3, "lng": 121.51}
]`

func TestSeedFromFile(t *testing.T) {
	repo := &mockSchemaRepository{}
	snapshot := &mockSnapshot{}

	count, err := seed(context.Background(), repo, snapshot, writeSeedFile(t, seedJSON))
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.True(t, repo.schemaCalled)
	assert.Len(t, repo.saved, 2)
	assert.Equal(t, 120.0, *repo.saved[0].MaxPowerKw)
	assert.Equal(t, repo.saved, snapshot.saved)
}

func TestSeedFromSnapshot(t *testing.T) {
	repo := &mockRepository{}
	snapshot := &mockSnapshot{stations: []models.Station{{ID: "s1", Name: "Hub"}}}

	count, err := seed(context.Background(), repo, snapshot, "")
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Len(t, repo.saved, 1)
	assert.Nil(t, snapshot.saved)
}

func TestSeedErrors(t *testing.T) {
	tests := []struct {
		name     string
		repo     *mockRepository
		snapshot *mockSnapshot
		path     string
		wantErr  string
	}{
		{
			name:    "no source",
			repo:    &mockRepository{},
			wantErr: "SEED_PATH or STATION_SNAPSHOT_BUCKET is required",
		},
		{
			name:     "missing snapshot",
			repo:     &mockRepository{},
			snapshot: &mockSnapshot{},
			wantErr:  "missing or expired",
		},
		{
			name:     "snapshot error",
			repo:     &mockRepository{},
			snapshot: &mockSnapshot{getErr: errors.New("AccessDenied")},
			wantErr:  "AccessDenied",
		},
		{
			name:    "missing file",
			repo:    &mockRepository{},
			path:    "/nonexistent/stations.json",
			wantErr: "reading /nonexistent/stations.json",
		},
		{
			name:    "save failure",
			repo:    &mockRepository{saveErr: errors.New("throttled")},
			path:    "seed",
			wantErr: "saving stations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if path == "seed" {
				path = writeSeedFile(t, seedJSON)
			}

			var err error
			if tt.snapshot != nil {
				_, err = seed(context.Background(), tt.repo, tt.snapshot, path)
			} else {
				_, err = seed(context.Background(), tt.repo, nil, path)
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadStationsFileInvalidJSON(t *testing.T) {
	_, err := loadStationsFile(writeSeedFile(t, "{"))
	assert.ErrorContains(t, err, "decoding")
}
