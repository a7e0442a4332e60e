package usecase

import (
	"context"
	"testing"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/gormstore"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/dto/response"
	"hotel-booking/pkg/database"
	"hotel-booking/pkg/metrics"
	"hotel-booking/pkg/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc     *Service
	repo    *repository.Repository
	metrics *metrics.Metrics
	now     time.Time
}

var (
	staff = utils.Actor{ID: "desk-1", Staff: true}
	alice = utils.Actor{ID: "alice", GuestAccountID: "acct-alice"}
	bob   = utils.Actor{ID: "bob", GuestAccountID: "acct-bob"}
	psp   = utils.Actor{ID: "psp", Payments: true}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, closeDB, err := database.InitGorm(utils.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeDB() })
	require.NoError(t, gormstore.AutoMigrate(db))

	f := &fixture{
		repo:    gormstore.New(db, zap.NewNop()),
		metrics: metrics.New(),
		now:     time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC),
	}
	config := &utils.Config{
		Booking: utils.BookingConfig{AvailabilityMaxDays: 90, LockTimeout: 5 * time.Second},
	}
	f.svc = NewService(f.repo, config, zap.NewNop(), f.metrics, WithClock(func() time.Time { return f.now }))
	return f
}

func as(actor utils.Actor) context.Context {
	return utils.SetActorContext(context.Background(), actor)
}

func day(s string) time.Time {
	d, err := utils.ParseDate("date", s)
	if err != nil {
		panic(err)
	}
	return d
}

func (f *fixture) addRoom(t *testing.T, number string, price float64) *response.RoomResponse {
	t.Helper()
	room, err := f.svc.Room.CreateRoom(as(staff), &request.CreateRoomRequest{
		RoomNumber: number,
		Name:       "Room " + number,
		RoomType:   "double",
		Price:      price,
	})
	require.NoError(t, err)
	return room
}

func (f *fixture) reserve(ctx context.Context, room, in, out string) (*response.BookingResponse, error) {
	return f.svc.Booking.CreateBooking(ctx, &request.CreateBookingRequest{
		GuestName:  "Jane Guest",
		RoomNumber: room,
		CheckIn:    in,
		CheckOut:   out,
	})
}

func (f *fixture) mustReserve(t *testing.T, ctx context.Context, room, in, out string) *response.BookingResponse {
	t.Helper()
	b, err := f.reserve(ctx, room, in, out)
	require.NoError(t, err)
	return b
}

// activeIntervalsDisjoint asserts that no two occupying bookings on the same
// room share a night.
func activeIntervalsDisjoint(t *testing.T, repo *repository.Repository) {
	t.Helper()
	all, err := repo.Booking.FindAll(context.Background(), repository.BookingFilter{}, 0, 0)
	require.NoError(t, err)

	var active []*entity.Booking
	for _, b := range all {
		if b.Status.Occupies() {
			active = append(active, b)
		}
	}
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if a.RoomID != b.RoomID {
				continue
			}
			require.Falsef(t, a.Overlaps(b.CheckIn, b.CheckOut),
				"bookings %s and %s overlap on room %s", a.ID, b.ID, a.RoomID)
		}
	}
}
