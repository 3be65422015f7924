package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

// PgxPool is the subset of *pgxpool.Pool the repository uses
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const stationColumns = `id, name, address, lat, lng, operator, charging_type, service_hours,
	is_24h, total_connectors, available_connectors, max_power_kw, parking_spots`

const selectStationsInRange = `SELECT ` + stationColumns + `
	FROM charging_stations
	WHERE lat BETWEEN $1 AND $2 AND lng BETWEEN $3 AND $4`

const upsertStation = `INSERT INTO charging_stations (` + stationColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		address = EXCLUDED.address,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		operator = EXCLUDED.operator,
		charging_type = EXCLUDED.charging_type,
		service_hours = EXCLUDED.service_hours,
		is_24h = EXCLUDED.is_24h,
		total_connectors = EXCLUDED.total_connectors,
		available_connectors = EXCLUDED.available_connectors,
		max_power_kw = EXCLUDED.max_power_kw,
		parking_spots = EXCLUDED.parking_spots`

// PostgresStationRepository stores stations in the charging_stations table
type PostgresStationRepository struct {
	pool PgxPool
}

func NewPostgresStationRepository(pool PgxPool) *PostgresStationRepository {
	return &PostgresStationRepository{pool: pool}
}

// NewPostgresPool opens a pool and checks connectivity
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the stations table and its coordinate index
func (r *PostgresStationRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS charging_stations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT,
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL,
			operator TEXT,
			charging_type TEXT,
			service_hours TEXT,
			is_24h BOOLEAN,
			total_connectors INTEGER,
			available_connectors INTEGER,
			max_power_kw DOUBLE PRECISION,
			parking_spots INTEGER
		)`); err != nil {
		return fmt.Errorf("creating charging_stations: %w", err)
	}
	if _, err := r.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_charging_stations_lat_lng ON charging_stations (lat, lng)`); err != nil {
		return fmt.Errorf("creating coordinate index: %w", err)
	}
	return nil
}

func (r *PostgresStationRepository) FindStationsInRange(ctx context.Context, bounds models.Bounds) ([]models.Station, error) {
	rows, err := r.pool.Query(ctx, selectStationsInRange,
		bounds.MinLat, bounds.MaxLat, bounds.MinLng, bounds.MaxLng)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}

	stations, err := pgx.CollectRows(rows, scanStation)
	if err != nil {
		return nil, fmt.Errorf("reading stations: %w", err)
	}

	log.Debug().Int("count", len(stations)).Msg("Loaded stations from postgres")
	return stations, nil
}

func scanStation(row pgx.CollectableRow) (models.Station, error) {
	var s models.Station
	err := row.Scan(
		&s.ID, &s.Name, &s.Address, &s.Lat, &s.Lng, &s.Operator, &s.ChargingType, &s.ServiceHours,
		&s.Is24h, &s.TotalConnectors, &s.AvailableConnectors, &s.MaxPowerKw, &s.ParkingSpots,
	)
	return s, err
}

// SaveStations upserts every station in one round trip
func (r *PostgresStationRepository) SaveStations(ctx context.Context, stations []models.Station) error {
	if len(stations) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range stations {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid station record: %w", err)
		}
		batch.Queue(upsertStation,
			s.ID, s.Name, s.Address, s.Lat, s.Lng, s.Operator, s.ChargingType, s.ServiceHours,
			s.Is24h, s.TotalConnectors, s.AvailableConnectors, s.MaxPowerKw, s.ParkingSpots,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	for _, s := range stations {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("upserting station %s: %w", s.ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing batch: %w", err)
	}

	log.Info().Int("count", len(stations)).Msg("Saved stations to postgres")
	return nil
}
