package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/bbernstein/chargeroute/backend-go/internal/models"
	"github.com/bbernstein/chargeroute/backend-go/pkg/http/client"
)

const (
	baiduDrivingPath = "/direction/v2/driving"

	baiduStatusMissingAK       = 101
	baiduStatusInvalidAK       = 200
	baiduStatusServiceDisabled = 240
	baiduStatusConcurrency     = 401

	defaultBaiduQPS = 2
)

// probe point used to verify the key when loading
var baiduProbePoint = models.Coordinate{Lat: 39.915, Lng: 116.404}

// BaiduRouter queries the Baidu Direction API for driving routes
type BaiduRouter struct {
	client  client.Interface
	ak      string
	limiter *rate.Limiter
}

func NewBaiduRouter(c client.Interface, ak string, qps float64) *BaiduRouter {
	if qps <= 0 {
		qps = defaultBaiduQPS
	}
	return &BaiduRouter{
		client:  c,
		ak:      ak,
		limiter: rate.NewLimiter(rate.Limit(qps), 1),
	}
}

func (r *BaiduRouter) Search(ctx context.Context, origin, destination models.Coordinate) (*SearchResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for baidu rate limiter: %w", err)
	}

	query := url.Values{}
	query.Set("origin", formatLatLng(origin))
	query.Set("destination", formatLatLng(destination))
	query.Set("ak", r.ak)

	resp, err := r.client.Get(ctx, baiduDrivingPath, query)
	if err != nil {
		return nil, fmt.Errorf("requesting baidu direction: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewRouteAPIError(resp.StatusCode, "unexpected HTTP status from baidu direction")
	}

	return parseBaiduDirection(resp.Body)
}

func parseBaiduDirection(body []byte) (*SearchResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, NewRouteAPIError(StatusQueryFailed, "invalid JSON from baidu direction")
	}

	doc := gjson.ParseBytes(body)
	status := int(doc.Get("status").Int())
	message := doc.Get("message").String()

	if status != StatusSuccess {
		switch status {
		case baiduStatusServiceDisabled:
			log.Warn().Int("status", status).Str("message", message).
				Msg("Baidu direction service is disabled for this key")
		case baiduStatusConcurrency:
			log.Warn().Int("status", status).Str("message", message).
				Msg("Baidu direction concurrency limit exceeded")
		default:
			log.Debug().Int("status", status).Str("message", message).
				Msg("Baidu direction returned non-success status")
		}
		return &SearchResult{Status: status, Message: message}, nil
	}

	routes := doc.Get("result.routes").Array()
	plans := make([]Plan, 0, len(routes))
	for _, route := range routes {
		plans = append(plans, Plan{
			DistanceMeters:  route.Get("distance").Float(),
			DurationSeconds: route.Get("duration").Float(),
		})
	}

	return &SearchResult{Status: StatusSuccess, Message: message, Plans: plans}, nil
}

func formatLatLng(c models.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// BaiduLoader builds a BaiduRouter after checking that the key is accepted
type BaiduLoader struct {
	Client client.Interface
	AK     string
	QPS    float64
}

func (l *BaiduLoader) Load(ctx context.Context) (Router, error) {
	if l.AK == "" {
		return nil, errors.New("baidu map AK is not configured")
	}

	router := NewBaiduRouter(l.Client, l.AK, l.QPS)
	result, err := router.Search(ctx, baiduProbePoint, baiduProbePoint)
	if err != nil {
		return nil, fmt.Errorf("probing baidu direction: %w", err)
	}

	switch result.Status {
	case baiduStatusMissingAK, baiduStatusInvalidAK, baiduStatusServiceDisabled:
		return nil, NewRouteAPIError(result.Status, result.Message)
	}

	return router, nil
}
