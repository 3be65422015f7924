package distance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeroute/backend-go/internal/models"
	"github.com/bbernstein/chargeroute/backend-go/internal/routing"
)

// DefaultQueryTimeout bounds a single routing query
const DefaultQueryTimeout = 10 * time.Second

// RouterProvider hands out the shared router when one is available
type RouterProvider interface {
	EnsureLoaded(ctx context.Context) (routing.Router, bool)
}

// Resolver computes the distance for one origin/destination pair. It always
// returns a value: any routing failure degrades to Estimate.
type Resolver struct {
	routers RouterProvider
	timeout time.Duration
}

func NewResolver(routers RouterProvider, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Resolver{
		routers: routers,
		timeout: timeout,
	}
}

// Resolve returns the driving distance in km, or the great-circle distance
// when the router is unavailable, fails, or does not answer in time.
func (r *Resolver) Resolve(ctx context.Context, origin, destination models.Coordinate) float64 {
	router, ok := r.routers.EnsureLoaded(ctx)
	if !ok {
		log.Debug().
			Err(routing.NewGatewayUnavailableError("router not loaded", nil)).
			Msg("Using great-circle distance")
		return Estimate(origin, destination)
	}

	km, err := r.query(ctx, router, origin, destination)
	if err != nil {
		log.Debug().
			Err(err).
			Float64("originLat", origin.Lat).
			Float64("originLng", origin.Lng).
			Float64("destLat", destination.Lat).
			Float64("destLng", destination.Lng).
			Msg("Route query failed, using great-circle distance")
		return Estimate(origin, destination)
	}
	return km
}

type queryOutcome struct {
	km  float64
	err error
}

// query races the router against the timeout. The outcome channel is
// buffered so a response arriving after the deadline is dropped without
// blocking the abandoned goroutine.
func (r *Resolver) query(ctx context.Context, router routing.Router, origin, destination models.Coordinate) (float64, error) {
	outcome := make(chan queryOutcome, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				outcome <- queryOutcome{err: routing.NewQueryFailedError(routing.StatusQueryFailed, fmt.Errorf("route query panicked: %v", rec))}
			}
		}()
		outcome <- searchOutcome(ctx, router, origin, destination)
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case o := <-outcome:
		return o.km, o.err
	case <-timer.C:
		return 0, routing.NewQueryTimedOutError(r.timeout)
	case <-ctx.Done():
		return 0, routing.NewQueryFailedError(routing.StatusQueryFailed, ctx.Err())
	}
}

func searchOutcome(ctx context.Context, router routing.Router, origin, destination models.Coordinate) queryOutcome {
	result, err := router.Search(ctx, origin, destination)
	if err != nil {
		return queryOutcome{err: routing.NewQueryFailedError(routing.StatusQueryFailed, err)}
	}
	if !result.Succeeded() {
		status := routing.StatusQueryFailed
		if result != nil {
			status = result.Status
		}
		return queryOutcome{err: routing.NewQueryFailedError(status, nil)}
	}

	km := result.Plans[0].DistanceMeters / 1000
	if km < 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		return queryOutcome{err: routing.NewQueryFailedError(routing.StatusQueryFailed, fmt.Errorf("invalid plan distance %v", result.Plans[0].DistanceMeters))}
	}
	return queryOutcome{km: km}
}
