package metrics_test

import (
	"net/http/httptest"
	"testing"

	"github.com/lowlatency/arena/internal/metrics"
	"github.com/stretchr/testify/assert"
)

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.MessagesSent.Inc()
	reg.Connections.WithLabelValues(string(metrics.ConnectionEstablished)).Set(3)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "arena_messages_sent_total 1")
	assert.Contains(t, rec.Body.String(), "arena_connections")
}
