package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/glossary-api/pkg/errors"
)

func TestMetricsServiceTermWrites(t *testing.T) {
	m := NewMetricsService()

	m.ObserveTermWrite("create", nil)
	m.ObserveTermWrite("create", appErrors.Clone(appErrors.ErrTermExists, ""))
	m.ObserveTermWrite("delete", errors.New("raw"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.termWrites.WithLabelValues("create", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.termWrites.WithLabelValues("create", "TERM_EXISTS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.termWrites.WithLabelValues("delete", "INTERNAL_ERROR")))
}

func TestMetricsServiceHandlerExposesRequests(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/public/terms", http.StatusOK, 15*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/public/terms",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `cache_lookups_total{result="hit"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.ObserveTermWrite("create", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
