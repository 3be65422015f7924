package models

import "context"

type StationRecommender interface {
	Recommend(ctx context.Context, req RecommendationRequest) ([]Station, error)
}

// StationRepository is the persistent station catalogue
type StationRepository interface {
	FindStationsInRange(ctx context.Context, bounds Bounds) ([]Station, error)
	SaveStations(ctx context.Context, stations []Station) error
}
