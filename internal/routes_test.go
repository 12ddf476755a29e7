package internal

import (
	"bibled/internal/controllers"
	"bibled/internal/models"
	"bibled/internal/providers"
	"bibled/internal/services"
	"bibled/internal/structures"
	"bibled/internal/testutil"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickingSearch struct{}

func (panickingSearch) Search(_ context.Context, _, _ string) ([]models.SearchResult, error) {
	panic("boom")
}

func newRouteTestController(search services.SearchServiceInterface) (*controllers.ApiController, *structures.Config) {
	conf := &structures.Config{
		Provider: structures.ProviderConfig{DefaultTranslation: "KJV"},
		Metrics:  structures.MetricsConfig{Enabled: true},
	}
	logger := &testutil.MockLogger{}
	clock := testutil.NewFakeClock(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	fetcher := testutil.NewFakeFetcher(models.Book{ID: "GEN", Name: "Genesis", NumberOfChapters: 50})
	store := testutil.NewMemoryEntityStore()
	journal := services.NewJournalService(store, store, services.NewStreakService(conf, clock, logger), clock, logger)
	if search == nil {
		search = services.NewSearchService(conf, fetcher, logger, &testutil.MockMetrics{})
	}
	return controllers.NewApiController(conf, logger, search, fetcher, journal, testutil.NewMockCache()), conf
}

func newTestHandler(t *testing.T, search services.SearchServiceInterface) (http.Handler, *testutil.MockMetrics) {
	t.Helper()
	ac, conf := newRouteTestController(search)
	metrics := &testutil.MockMetrics{}
	store := providers.NewMemoryKeyValueStore()
	handler := NewHandler(controllers.NewHealthController(store), conf, &testutil.MockLogger{}, InitRoutes(ac), metrics)
	return handler, metrics
}

func TestInitRoutes_RegistersEachUrlOnce(t *testing.T) {
	ac, _ := newRouteTestController(nil)

	routes := InitRoutes(ac).GetRoutes()

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}
	assert.ElementsMatch(t, []string{"/search", "/books", "/chapter", "/journal", "/profile", "/streak", "/cache"}, urls)
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	ac, _ := newRouteTestController(nil)
	mux := http.NewServeMux()
	for _, r := range InitRoutes(ac).GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}

	tests := []struct {
		method string
		url    string
	}{
		{http.MethodGet, "/search"},
		{http.MethodPost, "/books"},
		{http.MethodPut, "/journal"},
		{http.MethodPost, "/profile"},
		{http.MethodGet, "/cache"},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.url, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, "%s %s", tt.method, tt.url)
	}
}

func TestNewHandler_ServesApiAndHealth(t *testing.T) {
	handler, metrics := newTestHandler(t, nil)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/books", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, metrics.Requests["/books 200"])

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
	assert.NotContains(t, metrics.Requests, "/health 200", "infrastructure endpoints are not instrumented")

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNewHandler_MetricsDisabled(t *testing.T) {
	ac, conf := newRouteTestController(nil)
	conf.Metrics.Enabled = false
	handler := NewHandler(controllers.NewHealthController(providers.NewMemoryKeyValueStore()), conf, &testutil.MockLogger{}, InitRoutes(ac), &testutil.MockMetrics{})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNewHandler_CORSPreflight(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/search", nil)
	req.Header.Set("Origin", "https://app.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "https://app.example.org", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestNewHandler_RecoversPanics(t *testing.T) {
	handler, _ := newTestHandler(t, panickingSearch{})

	rr := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"light"}`)))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestWriteTimeout_OutlastsSearchDeadline(t *testing.T) {
	conf := &structures.Config{
		Provider: structures.ProviderConfig{Timeout: 10 * time.Second},
		Search:   structures.SearchConfig{Timeout: 30 * time.Second},
	}
	app := NewApp(http.NotFoundHandler(), nil, conf, &testutil.MockLogger{})

	assert.Greater(t, app.WebServer.WriteTimeout, conf.Search.Timeout+conf.Provider.Timeout)
}
