package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"hotel-booking/internal/dto/request"
	"hotel-booking/pkg/apperror"
	"hotel-booking/pkg/keylock"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func TestOccupiedDatesAreClippedAndSorted(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "101", 100)
	f.mustReserve(t, as(alice), "101", "2025-11-11", "2025-11-15")
	f.mustReserve(t, as(bob), "101", "2025-11-03", "2025-11-05")
	gone := f.mustReserve(t, as(bob), "101", "2025-11-06", "2025-11-08")
	_, err := f.svc.Booking.CancelBooking(as(bob), gone.ID)
	require.NoError(t, err)

	days, err := f.svc.Availability.ComputeOccupiedDates(context.Background(), "101", day("2025-11-04"), day("2025-11-13"))
	require.NoError(t, err)
	require.Equal(t, []string{"2025-11-04", "2025-11-11", "2025-11-12"}, utils.FormatDates(days))

	empty, err := f.svc.Availability.ComputeOccupiedDates(context.Background(), "101", day("2025-11-12"), day("2025-11-12"))
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestRoomAvailabilityWindow(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom(t, "101", 100)
	f.mustReserve(t, as(alice), "101", "2025-11-11", "2025-11-13")

	resp, err := f.svc.Availability.GetRoomAvailability(context.Background(), room.ID, &request.AvailabilityRequest{From: "2025-11-01", To: "2025-12-01"})
	require.NoError(t, err)
	require.Equal(t, "101", resp.RoomNumber)
	require.Equal(t, []string{"2025-11-11", "2025-11-12"}, resp.OccupiedDates)

	// the fixture caps windows at 90 days
	_, err = f.svc.Availability.GetRoomAvailability(context.Background(), "101", &request.AvailabilityRequest{From: "2025-01-01", To: "2025-12-01"})
	require.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.Availability.GetRoomAvailability(context.Background(), "101", &request.AvailabilityRequest{From: "2025-11-10", To: "2025-11-01"})
	require.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.Availability.GetRoomAvailability(context.Background(), "404", &request.AvailabilityRequest{From: "2025-11-01", To: "2025-11-10"})
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCheckRangeQuotesPrice(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "101", 150)
	f.mustReserve(t, as(alice), "101", "2025-11-11", "2025-11-13")

	free, err := f.svc.Availability.CheckRange(context.Background(), "101", &request.RangeCheckRequest{CheckIn: "2025-11-13", CheckOut: "2025-11-16"})
	require.NoError(t, err)
	require.True(t, free.Available)
	require.Equal(t, 3, free.Nights)
	require.InDelta(t, 450, free.EstimatedPrice, 0.001)
	require.Empty(t, free.OccupiedDates)

	taken, err := f.svc.Availability.CheckRange(context.Background(), "101", &request.RangeCheckRequest{CheckIn: "2025-11-10", CheckOut: "2025-11-12"})
	require.NoError(t, err)
	require.False(t, taken.Available)
	require.Equal(t, []string{"2025-11-11"}, taken.OccupiedDates)
}

func TestFindAvailableRooms(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "101", 100)
	f.addRoom(t, "102", 200)
	closed := f.addRoom(t, "103", 50)
	status := "maintenance"
	_, err := f.svc.Room.UpdateRoom(as(staff), closed.ID, &request.UpdateRoomRequest{Status: &status})
	require.NoError(t, err)
	f.mustReserve(t, as(alice), "101", "2025-11-11", "2025-11-13")

	req := &request.AvailableRoomsRequest{
		RangeCheckRequest: request.RangeCheckRequest{CheckIn: "2025-11-12", CheckOut: "2025-11-14"},
	}
	resp, err := f.svc.Availability.FindAvailableRooms(context.Background(), req)
	require.NoError(t, err)
	require.EqualValues(t, 1, resp.Pagination.Total)
	require.Equal(t, "102", resp.Data[0].RoomNumber)

	req.CheckIn, req.CheckOut = "2025-11-13", "2025-11-14"
	req.Sort = "price_desc"
	resp, err = f.svc.Availability.FindAvailableRooms(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	require.Equal(t, "102", resp.Data[0].RoomNumber)
	require.Equal(t, "101", resp.Data[1].RoomNumber)
}

func TestRoomDeleteBlockedByActiveBookings(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom(t, "101", 100)
	b := f.mustReserve(t, as(alice), "101", "2025-11-11", "2025-11-13")

	err := f.svc.Room.DeleteRoom(as(staff), room.ID)
	require.ErrorIs(t, err, apperror.ErrValidation)

	require.NoError(t, f.svc.Booking.DeleteBooking(as(staff), b.ID))
	require.NoError(t, f.svc.Room.DeleteRoom(as(staff), room.ID))

	stats, err := f.svc.Room.GetRoomStats(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.Total)
}

func TestDuplicateRoomNumber(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "101", 100)

	_, err := f.svc.Room.CreateRoom(as(staff), &request.CreateRoomRequest{RoomNumber: "101", Name: "Twin", RoomType: "twin"})
	require.ErrorIs(t, err, apperror.ErrDuplicateKey)
}

func TestRoomDeleteRacesReservation(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 20; i++ {
		number := fmt.Sprintf("R%02d", i)
		room := f.addRoom(t, number, 100)

		var g errgroup.Group
		var reserveErr, deleteErr error
		g.Go(func() error {
			_, reserveErr = f.reserve(as(alice), number, "2025-11-11", "2025-11-13")
			return nil
		})
		g.Go(func() error {
			deleteErr = f.svc.Room.DeleteRoom(as(staff), room.ID)
			return nil
		})
		require.NoError(t, g.Wait())

		if deleteErr == nil {
			require.Error(t, reserveErr)
			require.True(t, errors.Is(reserveErr, apperror.ErrNotFound) || errors.Is(reserveErr, apperror.ErrValidation), reserveErr)
			left, err := f.repo.Booking.CountActiveByRoom(context.Background(), uuid.MustParse(room.ID))
			require.NoError(t, err)
			require.Zero(t, left)
			continue
		}
		require.ErrorIs(t, deleteErr, apperror.ErrValidation)
		require.NoError(t, reserveErr)
	}
}

func TestRoomDeleteWaitsForRoomLock(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom(t, "101", 100)

	locks := keylock.New()
	config := &utils.Config{Booking: utils.BookingConfig{AvailabilityMaxDays: 90, LockTimeout: 20 * time.Millisecond}}
	svc := NewService(f.repo, config, zap.NewNop(), f.metrics, WithLocker(locks))

	unlock, err := locks.Lock(context.Background(), roomKey(uuid.MustParse(room.ID)))
	require.NoError(t, err)
	err = svc.Room.DeleteRoom(as(staff), room.ID)
	require.ErrorIs(t, err, apperror.ErrLockTimeout)
	unlock()

	require.NoError(t, svc.Room.DeleteRoom(as(staff), room.ID))
}
