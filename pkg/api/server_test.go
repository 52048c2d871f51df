package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ontime-app/ontime/pkg/app"
	"github.com/ontime-app/ontime/pkg/config"
	"github.com/ontime-app/ontime/pkg/kvstore"
	"github.com/ontime-app/ontime/pkg/metrics"
	"github.com/ontime-app/ontime/pkg/tago"
	"github.com/ontime-app/ontime/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	citiesBody = `{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL SERVICE."},
		"body":{"items":{"item":[{"citycode":25,"cityname":"대전광역시"},{"citycode":12,"cityname":"세종특별시"}]}}}}`
	stationsBody = `{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL SERVICE."},
		"body":{"items":{"item":{"citycode":25,"nodeid":"DJB8001793","nodenm":"시청","nodeno":"41820"}}}}}`
	routesBody = `{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL SERVICE."},
		"body":{"items":{"item":[{"routeid":"DJB30300004","routeno":102,"routetp":"간선버스","startnodenm":"동산","endnodenm":"원내동"},
		{"routeid":"DJB30300052","routeno":"606","routetp":"지선버스","startnodenm":"대정동","endnodenm":"오정동"}]}}}}`
	arrivals102Body = `{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL SERVICE."},
		"body":{"items":{"item":[{"routeid":"DJB30300004","routeno":102,"arrtime":240,"arrprevstationcnt":3,"vehicletp":"저상버스"}]}}}}`
	noDataBody = `{"response":{"header":{"resultCode":"03","resultMsg":"NODATA_ERROR"}}}`
	failureBody = `{"response":{"header":{"resultCode":"99","resultMsg":"SERVICE ERROR"}}}`
)

type testServer struct {
	web         *fiber.App
	application *app.Application
	failCities  bool
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getCtyCodeList"):
			if ts.failCities {
				_, _ = io.WriteString(w, failureBody)
				return
			}
			_, _ = io.WriteString(w, citiesBody)
		case strings.HasSuffix(r.URL.Path, "/getSttnNoList"):
			_, _ = io.WriteString(w, stationsBody)
		case strings.HasSuffix(r.URL.Path, "/getSttnThrghRouteList"):
			_, _ = io.WriteString(w, routesBody)
		case strings.HasSuffix(r.URL.Path, "/getSttnAcctoArvlPrearngeInfoList"):
			if r.URL.Query().Get("routeId") == "DJB30300052" {
				_, _ = io.WriteString(w, noDataBody)
				return
			}
			_, _ = io.WriteString(w, arrivals102Body)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(upstream.Close)

	cfg := config.Default()
	cfg.TAGO.ServiceKey = "key"
	cfg.Refresh.RetryBackoff = time.Millisecond

	m := metrics.New()
	gateway := tago.NewClient(tago.Config{BaseURL: upstream.URL, ServiceKey: "key", Timeout: time.Second, Metrics: m})

	ts.application = app.NewWithComponents(cfg, gateway, kvstore.NewMemoryStore(), m)
	ts.web = NewServer(ts.application)

	return ts
}

func (ts *testServer) do(t *testing.T, method string, target string, body string) (int, []byte) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.web.Test(req, 5000)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func TestVersion(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/core/version", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"version":"v1.0"}`, string(body))
}

func TestListCities(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/core/cities?name=%EC%84%B8%EC%A2%85", "")
	require.Equal(t, http.StatusOK, status)

	var cities []transit.CityCode
	require.NoError(t, json.Unmarshal(body, &cities))
	assert.Equal(t, []transit.CityCode{{Code: "12", Name: "세종특별시"}}, cities)
}

func TestCacheStats(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodGet, "/core/cities", "")
	require.Equal(t, http.StatusOK, status)
	status, _ = ts.do(t, http.MethodGet, "/core/cities?name=%EB%8C%80%EC%A0%84", "")
	require.Equal(t, http.StatusOK, status)

	status, body := ts.do(t, http.MethodGet, "/core/cache", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"hits":1,"misses":1}`, string(body))
}

func TestUpstreamFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.failCities = true

	status, body := ts.do(t, http.MethodGet, "/core/cities", "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, string(body), "error")
}

func TestSearchStations(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodGet, "/core/cities/25/stations", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := ts.do(t, http.MethodGet, "/core/cities/25/stations?name=%EC%8B%9C%EC%B2%AD", "")
	require.Equal(t, http.StatusOK, status)

	var results []struct {
		Station transit.Station `json:"station"`
		Routes  []transit.Route `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(body, &results))
	require.Len(t, results, 1)
	assert.Equal(t, "DJB8001793", results[0].Station.ID)
	require.Len(t, results[0].Routes, 2)
	assert.Equal(t, transit.RouteTypeTrunk, results[0].Routes[0].Type)
}

func TestBrowseAndSaveRoute(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/core/cities/25/stations/DJB8001793/arrivals", "")
	require.Equal(t, http.StatusOK, status)

	var board []struct {
		Route       transit.Route               `json:"route"`
		Predictions []transit.ArrivalPrediction `json:"predictions"`
		NoData      bool                        `json:"noData"`
	}
	require.NoError(t, json.Unmarshal(body, &board))
	require.Len(t, board, 2)
	require.Len(t, board[0].Predictions, 1)
	assert.True(t, board[0].Predictions[0].IsLowFloorVehicle)
	assert.True(t, board[1].NoData)

	status, _ = ts.do(t, http.MethodPost, "/core/cities/25/stations/DJB8001793/routes/DJB30300004/save?stationName=%EC%8B%9C%EC%B2%AD", "")
	assert.Equal(t, http.StatusCreated, status)

	status, body = ts.do(t, http.MethodPost, "/core/cities/25/stations/DJB8001793/routes/DJB30300004/save", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"inserted":false`)

	status, _ = ts.do(t, http.MethodPost, "/core/cities/25/stations/DJB8001793/routes/UNKNOWN/save", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = ts.do(t, http.MethodGet, "/core/saved", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"routeid":"DJB30300004","routeno":"102","stationName":"시청","citycode":"25","nodeid":"DJB8001793","predictTime":240,"remainingStops":3}]`, string(body))
}

func TestSavedRoutesCRUD(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodPost, "/core/saved", `{"routeid":"R1","routeno":"5","stationName":"역","citycode":"25","nodeid":"N1"}`)
	assert.Equal(t, http.StatusCreated, status)

	status, body := ts.do(t, http.MethodPost, "/core/saved", `{"routeid":"R2"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "CityCode")

	status, _ = ts.do(t, http.MethodPost, "/core/saved", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodDelete, "/core/saved/R1", "")
	assert.Equal(t, http.StatusNoContent, status)

	_, body = ts.do(t, http.MethodGet, "/core/saved", "")
	assert.JSONEq(t, `[]`, string(body))

	status, _ = ts.do(t, http.MethodPost, "/core/saved", `{"routeid":"R1","citycode":"25","nodeid":"N1"}`)
	assert.Equal(t, http.StatusCreated, status)
	status, _ = ts.do(t, http.MethodDelete, "/core/saved", "")
	assert.Equal(t, http.StatusNoContent, status)

	_, body = ts.do(t, http.MethodGet, "/core/saved", "")
	assert.JSONEq(t, `[]`, string(body))
}

func TestRefreshSavedRoutes(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodPost, "/core/saved", `{"routeid":"DJB30300004","citycode":"25","nodeid":"DJB8001793","predictTime":900}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := ts.do(t, http.MethodPost, "/core/saved/refresh?wait=true", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"state":"applied"`)

	_, body = ts.do(t, http.MethodGet, "/core/saved", "")
	assert.Contains(t, string(body), `"predictTime":240`)

	status, body = ts.do(t, http.MethodGet, "/core/saved/refresh", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"state":"idle"`)

	status, _ = ts.do(t, http.MethodPost, "/core/saved/refresh", "")
	assert.Equal(t, http.StatusAccepted, status)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodGet, "/core/cities", "")

	status, body := ts.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "ontime_gateway_requests_total")
}
