package wire

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotel-booking/internal/data/gormstore"
	"hotel-booking/internal/usecase"
	"hotel-booking/pkg/database"
	"hotel-booking/pkg/metrics"
	"hotel-booking/pkg/middleware"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	staffKey   = "front-desk-secret"
	paymentKey = "psp-webhook-secret"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	return newTestAppWith(t, utils.SecurityConfig{
		StaffKeyHash:   hashKey(t, staffKey),
		PaymentKeyHash: hashKey(t, paymentKey),
	})
}

func hashKey(t *testing.T, key string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestAppWith(t *testing.T, security utils.SecurityConfig) *App {
	t.Helper()
	db, closeDB, err := database.InitGorm(utils.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeDB() })
	require.NoError(t, gormstore.AutoMigrate(db))

	config := &utils.Config{
		App:      utils.AppConfig{Name: "hotel-booking-test"},
		Booking:  utils.BookingConfig{AvailabilityMaxDays: 366, LockTimeout: 5 * time.Second},
		Security: security,
	}
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)
	return Wiring(gormstore.New(db, zap.NewNop()), config, zap.NewNop(), metrics.New(),
		usecase.WithClock(func() time.Time { return now }))
}

type call struct {
	method, path string
	body         any
	headers      map[string]string
}

func do(t *testing.T, app *App, c call) (int, envelope) {
	t.Helper()
	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

var (
	staffHeaders   = map[string]string{middleware.HeaderStaffKey: staffKey, middleware.HeaderActorID: "desk"}
	guestHeaders   = map[string]string{middleware.HeaderGuestAccount: "acct-1", middleware.HeaderActorID: "guest-1"}
	paymentHeaders = map[string]string{middleware.HeaderPaymentKey: paymentKey}
)

func createRoom(t *testing.T, app *App, number string) string {
	t.Helper()
	code, env := do(t, app, call{http.MethodPost, "/api/admin/rooms", map[string]any{
		"room_number": number,
		"name":        "Deluxe " + number,
		"room_type":   "deluxe",
		"price":       180,
		"amenities":   []string{"WiFi"},
		"owner_notes": "squeaky door",
	}, staffHeaders})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var room struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &room))
	return room.ID
}

func TestAdminRoutesNeedStaffKey(t *testing.T) {
	app := newTestApp(t)

	code, _ := do(t, app, call{http.MethodPost, "/api/admin/rooms", map[string]any{"room_number": "1"}, nil})
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, app, call{http.MethodPost, "/api/admin/rooms", map[string]any{"room_number": "1"},
		map[string]string{middleware.HeaderStaffKey: "wrong"}})
	require.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, app, call{http.MethodGet, "/api/admin/rooms/stats", nil, staffHeaders})
	require.Equal(t, http.StatusOK, code)
}

func TestMissingKeyHashesGrantNoRoles(t *testing.T) {
	app := newTestAppWith(t, utils.SecurityConfig{})

	code, _ := do(t, app, call{http.MethodPost, "/api/admin/rooms", map[string]any{
		"room_number": "101", "name": "Deluxe 101", "room_type": "deluxe", "price": 180,
	}, map[string]string{middleware.HeaderStaffKey: "anything"}})
	require.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, app, call{http.MethodGet, "/api/admin/rooms/stats", nil, staffHeaders})
	require.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, app, call{http.MethodPost, "/api/bookings/" + uuid.NewString() + "/payment",
		map[string]any{"outcome": "paid"}, paymentHeaders})
	require.Equal(t, http.StatusForbidden, code)
}

func TestOwnerNotesOnlyForStaff(t *testing.T) {
	app := newTestApp(t)
	createRoom(t, app, "101")

	_, public := do(t, app, call{http.MethodGet, "/api/rooms/101", nil, nil})
	require.NotContains(t, string(public.Data), "squeaky door")

	_, internal := do(t, app, call{http.MethodGet, "/api/rooms/101", nil, staffHeaders})
	require.Contains(t, string(internal.Data), "squeaky door")
}

func TestBookingFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	createRoom(t, app, "101")

	booking := map[string]any{
		"guest_name":  "Jane",
		"room_number": "101",
		"check_in":    "2025-11-11",
		"check_out":   "2025-11-15",
		"hotel_id":    "grand-bay",
	}
	code, env := do(t, app, call{http.MethodPost, "/api/bookings", booking, guestHeaders})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var first struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Payment struct {
			Status string `json:"status"`
		} `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &first))
	require.Equal(t, "confirmed", first.Status)
	require.Equal(t, "pending", first.Payment.Status)

	booking["check_in"], booking["check_out"] = "2025-11-13", "2025-11-16"
	code, env = do(t, app, call{http.MethodPost, "/api/bookings", booking, nil})
	require.Equal(t, http.StatusConflict, code)
	require.JSONEq(t, `{"conflicting_booking_id":"`+first.ID+`"}`, string(env.Errors))

	code, env = do(t, app, call{http.MethodGet, "/api/rooms/101/availability?from=2025-11-10&to=2025-11-14", nil, nil})
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(env.Data), `"occupied_dates":["2025-11-11","2025-11-12","2025-11-13"]`)

	code, _ = do(t, app, call{http.MethodGet, "/api/rooms/101/availability/check?check_in=2025-11-15&check_out=2025-11-18", nil, nil})
	require.Equal(t, http.StatusOK, code)

	code, env = do(t, app, call{http.MethodGet, "/api/user/bookings/summary", nil, guestHeaders})
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(env.Data), `"upcoming":1`)

	code, _ = do(t, app, call{http.MethodGet, "/api/user/bookings", nil, nil})
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, app, call{http.MethodPost, "/api/bookings/" + first.ID + "/payment", map[string]any{"outcome": "paid"}, nil})
	require.Equal(t, http.StatusUnauthorized, code)
	code, _ = do(t, app, call{http.MethodPost, "/api/bookings/" + first.ID + "/payment", map[string]any{"outcome": "paid"},
		map[string]string{middleware.HeaderPaymentKey: "guess"}})
	require.Equal(t, http.StatusForbidden, code)
	code, _ = do(t, app, call{http.MethodPost, "/api/bookings/" + first.ID + "/payment", map[string]any{"outcome": "paid"}, paymentHeaders})
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, app, call{http.MethodPost, "/api/admin/bookings/" + first.ID + "/check-in", nil, staffHeaders})
	require.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = do(t, app, call{http.MethodPost, "/api/bookings/" + first.ID + "/cancel", nil,
		map[string]string{middleware.HeaderGuestAccount: "someone-else"}})
	require.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, app, call{http.MethodPost, "/api/bookings/" + first.ID + "/cancel", nil, guestHeaders})
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, app, call{http.MethodPost, "/api/bookings/" + first.ID + "/cancel", nil, guestHeaders})
	require.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = do(t, app, call{http.MethodPost, "/api/bookings", booking, nil})
	require.Equal(t, http.StatusCreated, code)
}

func TestBadInputIsRejected(t *testing.T) {
	app := newTestApp(t)
	createRoom(t, app, "101")

	code, env := do(t, app, call{http.MethodPost, "/api/bookings", map[string]any{
		"guest_name":  "Jane",
		"room_number": "101",
		"check_in":    "2025-11-15",
		"check_out":   "2025-11-11",
	}, nil})
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, string(env.Errors), "check_out")

	code, _ = do(t, app, call{http.MethodGet, "/api/bookings/not-a-uuid", nil, staffHeaders})
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, app, call{http.MethodGet, "/api/rooms/404", nil, nil})
	require.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, app, call{http.MethodPost, "/api/admin/rooms", map[string]any{
		"room_number": "101", "name": "Dup", "room_type": "single",
	}, staffHeaders})
	require.Equal(t, http.StatusConflict, code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	code, _ := do(t, app, call{http.MethodGet, "/health", nil, nil})
	require.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `route="/health"`)
}
