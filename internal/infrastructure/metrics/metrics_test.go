package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsAreIndependentPerInstance(t *testing.T) {
	first := New()
	second := New()

	first.Uploads.WithLabelValues("historical", "success").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(first.Uploads.WithLabelValues("historical", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.Uploads.WithLabelValues("historical", "success")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.Forecasts.WithLabelValues("success").Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `freight_forecasts_total{outcome="success"} 1`)
}
