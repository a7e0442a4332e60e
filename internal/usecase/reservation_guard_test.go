package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/dto/request"
	"hotel-booking/pkg/apperror"
	"hotel-booking/pkg/keylock"
	"hotel-booking/pkg/metrics"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func TestReserveCreatesConfirmedPendingBooking(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "101", 120)

	b := f.mustReserve(t, as(alice), "101", "2025-11-11", "2025-11-15")
	require.Equal(t, entity.BookingStatusConfirmed, b.Status)
	require.Equal(t, entity.PaymentStatusPending, b.Payment.Status)
	require.Equal(t, "101", b.RoomNumber)
	require.Equal(t, 4, b.Nights)
	require.Equal(t, 1, b.Version)
	require.NotNil(t, b.GuestAccountID)
	require.Equal(t, entity.GuestAccountID("acct-alice"), *b.GuestAccountID)

	require.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ReservationCounter(metrics.ReserveCreated)))
}

func TestReserveOverlapReturnsConflictWithWinner(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "101", 120)
	first := f.mustReserve(t, as(alice), "101", "2025-11-11", "2025-11-15")

	_, err := f.reserve(as(bob), "101", "2025-11-13", "2025-11-16")
	require.ErrorIs(t, err, apperror.ErrConflict)

	var conflict *apperror.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, first.ID, conflict.BookingID.String())

	require.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ReservationCounter(metrics.ReserveConflict)))
}

func TestCancelReleasesNights(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "101", 120)
	first := f.mustReserve(t, as(alice), "101", "2025-11-11", "2025-11-15")

	_, err := f.svc.Booking.CancelBooking(as(alice), first.ID)
	require.NoError(t, err)

	again := f.mustReserve(t, as(bob), "101", "2025-11-11", "2025-11-15")
	require.NotEqual(t, first.ID, again.ID)
}

func TestCheckoutDayIsExclusive(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "101", 120)
	f.mustReserve(t, as(alice), "101", "2025-11-11", "2025-11-15")

	f.mustReserve(t, as(bob), "101", "2025-11-15", "2025-11-18")
	f.mustReserve(t, as(bob), "101", "2025-11-08", "2025-11-11")
	activeIntervalsDisjoint(t, f.repo)
}

func TestReserveRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "101", 120)

	tests := []struct {
		name    string
		room    string
		in, out string
		target  error
	}{
		{"same day", "101", "2025-11-11", "2025-11-11", apperror.ErrValidation},
		{"reversed", "101", "2025-11-15", "2025-11-11", apperror.ErrValidation},
		{"bad date", "101", "2025-13-01", "2025-13-04", apperror.ErrValidation},
		{"unknown room", "999", "2025-11-11", "2025-11-12", apperror.ErrNotFound},
		{"unknown room id", uuid.NewString(), "2025-11-11", "2025-11-12", apperror.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.reserve(as(alice), tc.room, tc.in, tc.out)
			require.ErrorIs(t, err, tc.target)
		})
	}

	_, err := f.svc.Booking.CreateBooking(as(alice), &request.CreateBookingRequest{
		GuestName:  "   ",
		RoomNumber: "101",
		CheckIn:    "2025-11-11",
		CheckOut:   "2025-11-12",
	})
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestReserveRejectsRoomUnderMaintenance(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom(t, "101", 120)
	status := string(entity.RoomStatusMaintenance)
	_, err := f.svc.Room.UpdateRoom(as(staff), room.ID, &request.UpdateRoomRequest{Status: &status})
	require.NoError(t, err)

	_, err = f.reserve(as(alice), "101", "2025-11-11", "2025-11-12")
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "room")
}

func TestConcurrentOverlappingReservationsExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "101", 120)

	const attempts = 8
	var wins, conflicts atomic.Int32
	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			_, err := f.reserve(as(alice), "101", "2025-11-11", "2025-11-15")
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, apperror.ErrConflict):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.EqualValues(t, 1, wins.Load())
	require.EqualValues(t, attempts-1, conflicts.Load())
	activeIntervalsDisjoint(t, f.repo)
}

func TestConcurrentRandomReservationsNeverOverlap(t *testing.T) {
	f := newFixture(t)
	rooms := []string{"101", "102", "103"}
	for _, r := range rooms {
		f.addRoom(t, r, 100)
	}

	rng := rand.New(rand.NewSource(42))
	type attempt struct {
		room    string
		in, out string
	}
	start := day("2025-11-01")
	var plan []attempt
	for i := 0; i < 40; i++ {
		in := start.AddDate(0, 0, rng.Intn(20))
		out := in.AddDate(0, 0, 1+rng.Intn(5))
		plan = append(plan, attempt{rooms[rng.Intn(len(rooms))], utils.FormatDate(in), utils.FormatDate(out)})
	}

	var g errgroup.Group
	for _, a := range plan {
		g.Go(func() error {
			_, err := f.reserve(as(alice), a.room, a.in, a.out)
			if err != nil && !errors.Is(err, apperror.ErrConflict) {
				return fmt.Errorf("%s %s-%s: %w", a.room, a.in, a.out, err)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	activeIntervalsDisjoint(t, f.repo)
}

func TestIsRangeFreeMatchesBookings(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "101", 100)
	f.mustReserve(t, as(alice), "101", "2025-11-05", "2025-11-08")
	cancelled := f.mustReserve(t, as(alice), "101", "2025-11-10", "2025-11-12")
	_, err := f.svc.Booking.CancelBooking(as(alice), cancelled.ID)
	require.NoError(t, err)

	ctx := context.Background()
	for offset := 0; offset < 14; offset++ {
		for length := 1; length <= 4; length++ {
			from := day("2025-11-01").AddDate(0, 0, offset)
			to := from.AddDate(0, 0, length)
			expected := !(from.Before(day("2025-11-08")) && to.After(day("2025-11-05")))

			free, err := f.svc.Availability.IsRangeFree(ctx, "101", from, to)
			require.NoError(t, err)
			require.Equalf(t, expected, free, "range %s..%s", utils.FormatDate(from), utils.FormatDate(to))
		}
	}
}

func TestLockTimeoutLeavesNothingWritten(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom(t, "101", 100)

	locks := keylock.New()
	guard := NewReservationGuard(f.repo, locks, utils.BookingConfig{LockTimeout: 20 * time.Millisecond}, zap.NewNop(), f.metrics, func() time.Time { return f.now })

	roomID := uuid.MustParse(room.ID)
	unlock, err := locks.Lock(context.Background(), roomKey(roomID))
	require.NoError(t, err)
	defer unlock()

	draft := BookingDraft{GuestName: "Late", RoomRef: "101", CheckIn: day("2025-11-11"), CheckOut: day("2025-11-12")}
	_, err = guard.TryReserve(context.Background(), draft)
	require.ErrorIs(t, err, apperror.ErrLockTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = guard.TryReserve(ctx, draft)
	require.Error(t, err)

	free, err := f.svc.Availability.IsRangeFree(context.Background(), "101", draft.CheckIn, draft.CheckOut)
	require.NoError(t, err)
	require.True(t, free)
}

func TestStayLengthFollowsAvailabilityWindow(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "101", 100)
	f.addRoom(t, "102", 100)
	ctx := context.Background()

	// the fixture allows 90 days
	free, err := f.svc.Availability.IsRangeFree(ctx, "101", day("2026-01-01"), day("2026-04-01"))
	require.NoError(t, err)
	require.True(t, free)
	b := f.mustReserve(t, as(alice), "101", "2026-01-01", "2026-04-01")
	require.Equal(t, 90, b.Nights)

	_, err = f.svc.Availability.IsRangeFree(ctx, "102", day("2026-01-01"), day("2026-04-02"))
	require.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.reserve(as(alice), "102", "2026-01-01", "2026-06-01")
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "check_out")

	_, err = f.svc.Booking.UpdateBooking(as(alice), b.ID, &request.UpdateBookingRequest{CheckOut: strPtr("2026-04-02")})
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "check_out")

	got, err := f.svc.Booking.GetBookingByID(as(alice), b.ID)
	require.NoError(t, err)
	require.Equal(t, "2026-04-01", got.CheckOut)
}

func TestConcurrentReserveCancelAndEditNeverOverlap(t *testing.T) {
	f := newFixture(t)
	rooms := []string{"101", "102", "103"}
	for _, r := range rooms {
		f.addRoom(t, r, 100)
	}

	start := day("2025-11-01")
	var seeded []string
	for i, r := range rooms {
		for j := 0; j < 3; j++ {
			in := start.AddDate(0, 0, i+j*7)
			b := f.mustReserve(t, as(alice), r, utils.FormatDate(in), utils.FormatDate(in.AddDate(0, 0, 3)))
			seeded = append(seeded, b.ID)
		}
	}

	rng := rand.New(rand.NewSource(7))
	span := func() (string, string) {
		in := start.AddDate(0, 0, rng.Intn(21))
		return utils.FormatDate(in), utils.FormatDate(in.AddDate(0, 0, 1+rng.Intn(4)))
	}

	var ops []func() error
	for i := 0; i < 60; i++ {
		room := rooms[rng.Intn(len(rooms))]
		target := seeded[rng.Intn(len(seeded))]
		in, out := span()
		switch rng.Intn(3) {
		case 0:
			ops = append(ops, func() error {
				_, err := f.reserve(as(bob), room, in, out)
				return err
			})
		case 1:
			ops = append(ops, func() error {
				_, err := f.svc.Booking.CancelBooking(as(alice), target)
				return err
			})
		default:
			ops = append(ops, func() error {
				_, err := f.svc.Booking.UpdateBooking(as(alice), target, &request.UpdateBookingRequest{
					RoomNumber: strPtr(room),
					CheckIn:    strPtr(in),
					CheckOut:   strPtr(out),
				})
				return err
			})
		}
	}

	var g errgroup.Group
	for i, op := range ops {
		g.Go(func() error {
			err := op()
			switch {
			case err == nil,
				errors.Is(err, apperror.ErrConflict),
				errors.Is(err, apperror.ErrInvalidTransition):
				return nil
			}
			return fmt.Errorf("op %d: %w", i, err)
		})
	}
	require.NoError(t, g.Wait())
	activeIntervalsDisjoint(t, f.repo)

	for _, id := range seeded {
		b, err := f.repo.Booking.FindByID(context.Background(), uuid.MustParse(id))
		require.NoError(t, err)
		require.True(t, b.CheckOut.After(b.CheckIn))
	}
}
