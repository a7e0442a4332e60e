package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestReservationCounter(t *testing.T) {
	m := New()
	m.ObserveReservation(ReserveCreated)
	m.ObserveReservation(ReserveCreated)
	m.ObserveReservation(ReserveConflict)

	require.Equal(t, 2.0, testutil.ToFloat64(m.reservations.WithLabelValues(ReserveCreated)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ReservationCounter(ReserveConflict)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveReservation(ReserveCreated)
	m.ObserveLockWait("room", time.Millisecond)
	require.NotNil(t, m.Handler())
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveTransition("checked-in")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "hotel_booking_booking_transitions_total")
}
