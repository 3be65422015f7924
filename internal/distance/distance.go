package distance

import (
	"context"
	"sync"
	"time"

	"github.com/bbernstein/chargeroute/backend-go/internal/config"
	"github.com/bbernstein/chargeroute/backend-go/internal/models"
	"github.com/bbernstein/chargeroute/backend-go/internal/routing"
)

// Destination is a batch entry. An empty ID is replaced by the entry's index.
type Destination struct {
	ID string `json:"id,omitempty"`
	models.Coordinate
}

// Service bundles a resolver and a scheduler over one router provider
type Service struct {
	resolver  *Resolver
	scheduler *Scheduler
}

type serviceOptions struct {
	queryTimeout time.Duration
	windowPause  time.Duration
}

type Option func(*serviceOptions)

func WithQueryTimeout(d time.Duration) Option {
	return func(o *serviceOptions) {
		o.queryTimeout = d
	}
}

func WithWindowPause(d time.Duration) Option {
	return func(o *serviceOptions) {
		o.windowPause = d
	}
}

func NewService(routers RouterProvider, opts ...Option) *Service {
	o := &serviceOptions{
		queryTimeout: DefaultQueryTimeout,
		windowPause:  DefaultWindowPause,
	}
	for _, opt := range opts {
		opt(o)
	}

	resolver := NewResolver(routers, o.queryTimeout)
	return &Service{
		resolver:  resolver,
		scheduler: NewScheduler(resolver, o.windowPause),
	}
}

// Distance resolves a single pair
func (s *Service) Distance(ctx context.Context, origin, destination models.Coordinate) float64 {
	return s.resolver.Resolve(ctx, origin, destination)
}

// Distances resolves a batch; see Scheduler.ResolveBatch
func (s *Service) Distances(
	ctx context.Context,
	origin models.Coordinate,
	destinations []Destination,
	concurrency int,
	onProgress ProgressFunc,
) models.DistanceResult {
	tasks := make([]models.DestinationTask, len(destinations))
	for i, d := range destinations {
		tasks[i] = models.DestinationTask{ID: d.ID, Destination: d.Coordinate}
	}
	return s.scheduler.ResolveBatch(ctx, origin, tasks, concurrency, onProgress)
}

var (
	defaultMu      sync.Mutex
	defaultService *Service
)

// DefaultService returns the process-wide service over routing.DefaultGateway
func DefaultService() *Service {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultService == nil {
		defaultService = NewService(routing.DefaultGateway())
	}
	return defaultService
}

// ConfigureDefault points the process-wide gateway at the provider named in
// cfg and replaces the default service with one using cfg's timings.
func ConfigureDefault(cfg *config.Config) *Service {
	routing.SetDefaultLoader(routing.LoaderFromConfig(cfg), routing.WithLoadWait(cfg.LoadWait))
	svc := NewService(routing.DefaultGateway(),
		WithQueryTimeout(cfg.QueryTimeout),
		WithWindowPause(cfg.WindowPause),
	)

	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultService = svc
	return svc
}

// CalculateRouteDistance resolves one pair with the default service
func CalculateRouteDistance(ctx context.Context, origin, destination models.Coordinate) float64 {
	return DefaultService().Distance(ctx, origin, destination)
}

// CalculateRouteDistances resolves a batch with the default service
func CalculateRouteDistances(
	ctx context.Context,
	origin models.Coordinate,
	destinations []Destination,
	concurrency int,
	onProgress ProgressFunc,
) models.DistanceResult {
	return DefaultService().Distances(ctx, origin, destinations, concurrency, onProgress)
}
