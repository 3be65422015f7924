// Package routing hosts the external routing capability: the provider
// adapters and the process-wide gateway that loads them lazily.
package routing

import (
	"context"

	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

const (
	// StatusSuccess is the only status that carries usable plans
	StatusSuccess = 0
	// StatusQueryFailed marks provider failures that have no native status code
	StatusQueryFailed = -1
)

// Plan is one candidate route returned by a provider
type Plan struct {
	DistanceMeters  float64 `json:"distanceMeters"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// SearchResult is the outcome of a single driving search. Plans are ordered
// by provider preference; callers use the first one.
type SearchResult struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Plans   []Plan `json:"plans"`
}

// Succeeded reports whether the result has a success status and at least one plan
func (r *SearchResult) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess && len(r.Plans) > 0
}

// Router answers driving-distance queries between two points
type Router interface {
	Search(ctx context.Context, origin, destination models.Coordinate) (*SearchResult, error)
}

// Loader makes a Router available. It is called at most once at a time by
// a Gateway and may be called again after a failure.
type Loader interface {
	Load(ctx context.Context) (Router, error)
}

// LoaderFunc adapts a function to the Loader interface
type LoaderFunc func(ctx context.Context) (Router, error)

func (f LoaderFunc) Load(ctx context.Context) (Router, error) {
	return f(ctx)
}

// RouterFunc adapts a function to the Router interface
type RouterFunc func(ctx context.Context, origin, destination models.Coordinate) (*SearchResult, error)

func (f RouterFunc) Search(ctx context.Context, origin, destination models.Coordinate) (*SearchResult, error) {
	return f(ctx, origin, destination)
}
