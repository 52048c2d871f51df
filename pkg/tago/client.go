// Package tago is a client for the Korean national public transit API (TAGO)
// published on apis.data.go.kr. It unwraps and validates the response
// envelope and never caches or retries.
package tago

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ontime-app/ontime/pkg/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://apis.data.go.kr/1613000"

const (
	pathCityList      = "/ArvlInfoInqireService/getCtyCodeList"
	pathStationSearch = "/BusSttnInfoInqireService/getSttnNoList"
	pathThroughRoutes = "/BusSttnInfoInqireService/getSttnThrghRouteList"
	pathArrivals      = "/ArvlInfoInqireService/getSttnAcctoArvlPrearngeInfoList"
)

const maxBodySize = 4 * 1024 * 1024

type Config struct {
	BaseURL    string
	ServiceKey string

	// Timeout bounds every single request
	Timeout time.Duration

	// RequestsPerSecond limits outgoing calls, zero disables limiting
	RequestsPerSecond float64
	Burst             int

	StationPageSize int
	RoutePageSize   int
	ArrivalPageSize int

	HTTPClient *http.Client
	Metrics    *metrics.Metrics
}

type Client struct {
	baseURL    string
	serviceKey string

	stationPageSize int
	routePageSize   int
	arrivalPageSize int

	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
}

func NewClient(config Config) *Client {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// data.go.kr hands out both an encoded and a decoded key, accept either
	serviceKey := config.ServiceKey
	if strings.Contains(serviceKey, "%") {
		if decoded, err := url.QueryUnescape(serviceKey); err == nil {
			serviceKey = decoded
		}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	burst := config.Burst
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}

	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,

		stationPageSize: defaultPageSize(config.StationPageSize, 20),
		routePageSize:   defaultPageSize(config.RoutePageSize, 50),
		arrivalPageSize: defaultPageSize(config.ArrivalPageSize, 20),

		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		metrics:    config.Metrics,
	}
}

func defaultPageSize(size int, fallback int) int {
	if size <= 0 {
		return fallback
	}
	return size
}

// get performs one GET against the API and returns the raw body.
func (c *Client) get(ctx context.Context, op string, path string, params url.Values) (body []byte, err error) {
	startTime := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			if gatewayError, ok := err.(*GatewayError); ok {
				outcome = string(gatewayError.Kind)
			}
		}
		c.metrics.ObserveGatewayRequest(op, outcome, time.Since(startTime))
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &GatewayError{Kind: KindNetwork, Op: op, Err: err}
	}

	params.Set("serviceKey", c.serviceKey)
	params.Set("_type", "json")
	if params.Get("pageNo") == "" {
		params.Set("pageNo", "1")
	}

	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &GatewayError{Kind: KindNetwork, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Kind: KindNetwork, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{
			Kind:    KindUpstream,
			Op:      op,
			Code:    strconv.Itoa(resp.StatusCode),
			Message: resp.Status,
		}
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &GatewayError{Kind: KindNetwork, Op: op, Err: err}
	}
	if len(body) > maxBodySize {
		return nil, &GatewayError{Kind: KindParse, Op: op, Err: fmt.Errorf("response exceeds %d bytes", maxBodySize)}
	}

	log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Str("latency", time.Since(startTime).String()).
		Msg("TAGO request")

	return body, nil
}
