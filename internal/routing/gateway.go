package routing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// GatewayState describes the lifecycle of the routing capability
type GatewayState int

const (
	StateUnloaded GatewayState = iota
	StateLoading
	StateReady
)

func (s GatewayState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("GatewayState(%d)", int(s))
	}
}

// DefaultLoadWait bounds how long a caller waits on a load started by someone else
const DefaultLoadWait = 5 * time.Second

// Gateway loads a Router at most once at a time and shares it with every
// caller. Callers that arrive during a load wait for it to settle, up to
// the load wait ceiling.
type Gateway struct {
	mu       sync.Mutex
	loader   Loader
	loadWait time.Duration
	state    GatewayState
	router   Router
	settled  chan struct{}
}

type GatewayOption func(*Gateway)

func WithLoadWait(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.loadWait = d
		}
	}
}

func NewGateway(loader Loader, opts ...GatewayOption) *Gateway {
	if loader == nil {
		loader = UnavailableLoader{}
	}
	g := &Gateway{
		loader:   loader,
		loadWait: DefaultLoadWait,
		state:    StateUnloaded,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State reports the current lifecycle state
func (g *Gateway) State() GatewayState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// EnsureLoaded returns the shared router, loading it first if needed.
// It never fails: the boolean is false whenever no router is available.
func (g *Gateway) EnsureLoaded(ctx context.Context) (Router, bool) {
	g.mu.Lock()
	switch g.state {
	case StateReady:
		router := g.router
		g.mu.Unlock()
		return router, true
	case StateLoading:
		settled := g.settled
		g.mu.Unlock()
		return g.await(ctx, settled)
	}

	g.state = StateLoading
	settled := make(chan struct{})
	g.settled = settled
	loader := g.loader
	g.mu.Unlock()

	// The load outlives the caller that happened to start it
	router, err := runLoader(context.WithoutCancel(ctx), loader)

	g.mu.Lock()
	defer g.mu.Unlock()
	defer close(settled)

	if err != nil {
		g.state = StateUnloaded
		g.router = nil
		log.Warn().
			Err(NewGatewayUnavailableError("load failed", err)).
			Msg("Routing capability failed to load")
		return nil, false
	}

	g.state = StateReady
	g.router = router
	log.Info().Msg("Routing capability loaded")
	return router, true
}

func (g *Gateway) await(ctx context.Context, settled <-chan struct{}) (Router, bool) {
	timer := time.NewTimer(g.loadWait)
	defer timer.Stop()

	select {
	case <-settled:
	case <-timer.C:
		log.Debug().
			Err(NewGatewayUnavailableError(fmt.Sprintf("load still pending after %s", g.loadWait), nil)).
			Msg("Gave up waiting for routing capability")
		return nil, false
	case <-ctx.Done():
		return nil, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateReady {
		return nil, false
	}
	return g.router, true
}

func (g *Gateway) configure(loader Loader, opts []GatewayOption) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loader = loader
	for _, opt := range opts {
		opt(g)
	}
}

func runLoader(ctx context.Context, loader Loader) (router Router, err error) {
	defer func() {
		if r := recover(); r != nil {
			router = nil
			err = fmt.Errorf("loader panicked: %v", r)
		}
	}()

	router, err = loader.Load(ctx)
	if err == nil && router == nil {
		err = fmt.Errorf("loader returned no router")
	}
	return router, err
}

var (
	defaultMu      sync.Mutex
	defaultLoader  Loader = UnavailableLoader{}
	defaultOpts    []GatewayOption
	defaultGateway *Gateway
)

// DefaultGateway returns the process-wide gateway, creating it on first use
func DefaultGateway() *Gateway {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultGateway == nil {
		defaultGateway = NewGateway(defaultLoader, defaultOpts...)
	}
	return defaultGateway
}

// SetDefaultLoader changes the loader and options of the process-wide
// gateway. A router that is already loaded stays in use.
func SetDefaultLoader(loader Loader, opts ...GatewayOption) {
	if loader == nil {
		loader = UnavailableLoader{}
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLoader = loader
	defaultOpts = opts
	if defaultGateway != nil {
		defaultGateway.configure(loader, opts)
	}
}
