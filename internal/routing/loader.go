package routing

import (
	"context"
	"errors"

	"github.com/bbernstein/chargeroute/backend-go/internal/config"
	"github.com/bbernstein/chargeroute/backend-go/pkg/http/client"
)

// ErrNoProvider is returned by UnavailableLoader
var ErrNoProvider = errors.New("no routing provider configured")

// UnavailableLoader never yields a router, so every distance falls back to
// the great-circle estimate.
type UnavailableLoader struct{}

func (UnavailableLoader) Load(context.Context) (Router, error) {
	return nil, ErrNoProvider
}

// LoaderFromConfig picks the provider loader named by cfg.RoutingProvider
func LoaderFromConfig(cfg *config.Config) Loader {
	switch cfg.RoutingProvider {
	case config.ProviderBaidu:
		return &BaiduLoader{
			Client: client.New(client.Options{
				BaseURL: cfg.BaiduBaseURL,
				Timeout: cfg.HTTPTimeout,
			}),
			AK:  cfg.BaiduAK,
			QPS: cfg.BaiduQPS,
		}
	case config.ProviderGoogle:
		return &GoogleLoader{
			APIKey:  cfg.GoogleAPIKey,
			Timeout: cfg.HTTPTimeout,
		}
	default:
		return UnavailableLoader{}
	}
}
