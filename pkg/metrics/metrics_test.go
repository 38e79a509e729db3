package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
	"github.com/map-of-pi/mapofpi/pkg/bootstrap"
	"github.com/map-of-pi/mapofpi/pkg/metrics"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Observer(t *testing.T) {
	t.Parallel()

	m := metrics.New()

	m.SigningInChanged(true)
	m.PhaseChanged(bootstrap.PhaseIdle, bootstrap.PhaseAutoLoginInFlight, bootstrap.EventMount)
	m.AttemptFinished(bootstrap.AttemptAuto, 0, &apiclient.StatusError{StatusCode: http.StatusNotFound})
	m.AttemptFinished(bootstrap.AttemptInteractive, 0, errors.New("network down"))
	m.RetryScheduled(0, 5*time.Second)
	m.AttemptFinished(bootstrap.AttemptInteractive, 1, &apiclient.StatusError{StatusCode: http.StatusForbidden})
	m.PhaseChanged(bootstrap.PhaseAutoLoginInFlight, bootstrap.PhaseUnauthenticated, bootstrap.EventHardFailure)
	m.SigningInChanged(false)

	body := scrape(t, m)

	assert.Contains(t, body, `mapofpi_login_attempts_total{kind="auto",outcome="soft_failure"} 1`)
	assert.Contains(t, body, `mapofpi_login_attempts_total{kind="interactive",outcome="soft_failure"} 1`)
	assert.Contains(t, body, `mapofpi_login_attempts_total{kind="interactive",outcome="hard_failure"} 1`)
	assert.Contains(t, body, `mapofpi_login_retry_delay_seconds_count 1`)
	assert.Contains(t, body, `mapofpi_login_phase{phase="unauthenticated"} 1`)
	assert.Contains(t, body, `mapofpi_login_phase{phase="auto_login_in_flight"} 0`)
	assert.Contains(t, body, `mapofpi_login_phase_transitions_total{event="hard_failure",to="unauthenticated"} 1`)
	assert.Contains(t, body, `mapofpi_login_signing_in 0`)
}

func TestMetrics_ObserveRequest(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.ObserveRequest(http.MethodGet, "/session", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/session", http.StatusOK, 20*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `mapofpi_http_requests_total{method="GET",route="/session",status="200"} 2`)
	assert.Contains(t, body, `mapofpi_http_request_duration_seconds_count{method="GET",route="/session"} 2`)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		a, b := metrics.New(), metrics.New()
		assert.NotSame(t, a.Registry(), b.Registry())
	})
}
