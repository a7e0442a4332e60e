package gormstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/apperror"
	"hotel-booking/pkg/database"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRepo(t *testing.T) *repository.Repository {
	t.Helper()
	db, closeDB, err := database.InitGorm(utils.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeDB() })
	require.NoError(t, AutoMigrate(db))
	return New(db, zap.NewNop())
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedRoom(t *testing.T, repo *repository.Repository, number string, price float64, amenities ...string) *entity.Room {
	t.Helper()
	now := time.Now().UTC()
	room := &entity.Room{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		RoomNumber: number,
		Name:       "Room " + number,
		RoomType:   "double",
		Price:      price,
		Capacity:   2,
		Status:     entity.RoomStatusAvailable,
		Amenities:  amenities,
	}
	require.NoError(t, repo.Room.Create(context.Background(), room))
	return room
}

func seedBooking(t *testing.T, repo *repository.Repository, room *entity.Room, in, out string, status entity.BookingStatus, created time.Time) *entity.Booking {
	t.Helper()
	b := &entity.Booking{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: created, UpdatedAt: created},
		GuestName: "Guest",
		RoomID:    room.ID,
		CheckIn:   date(in),
		CheckOut:  date(out),
		Status:    status,
		Payment:   entity.Payment{Status: entity.PaymentStatusPending},
		Version:   1,
	}
	require.NoError(t, repo.Booking.Create(context.Background(), b))
	return b
}

func TestRoomNumberIsUnique(t *testing.T) {
	repo := newTestRepo(t)
	seedRoom(t, repo, "101", 100)

	now := time.Now().UTC()
	dup := &entity.Room{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		RoomNumber: "101",
		Name:       "Other",
		RoomType:   "single",
		Capacity:   1,
		Status:     entity.RoomStatusAvailable,
	}
	err := repo.Room.Create(context.Background(), dup)
	require.ErrorIs(t, err, apperror.ErrDuplicateKey)
}

func TestRoomFiltersAndSort(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cheap := seedRoom(t, repo, "101", 80, "WiFi", "Sea View")
	seedRoom(t, repo, "102", 150, "Minibar")
	seedRoom(t, repo, "103", 120)

	rooms, err := repo.Room.FindAll(ctx, repository.RoomFilter{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	require.Equal(t, []string{"101", "103", "102"}, []string{rooms[0].RoomNumber, rooms[1].RoomNumber, rooms[2].RoomNumber})

	rooms, err = repo.Room.FindAll(ctx, repository.RoomFilter{Sort: repository.RoomSortPriceDesc}, 2, 0)
	require.NoError(t, err)
	require.Equal(t, "102", rooms[0].RoomNumber)
	require.Len(t, rooms, 2)

	rooms, err = repo.Room.FindAll(ctx, repository.RoomFilter{Search: "sea view"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, cheap.ID, rooms[0].ID)
	require.Equal(t, []string{"WiFi", "Sea View"}, rooms[0].Amenities)

	rooms, err = repo.Room.FindAll(ctx, repository.RoomFilter{Search: "wifi"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	for _, literal := range []string{"%", "_", `"`, ",", "[", `\`} {
		rooms, err = repo.Room.FindAll(ctx, repository.RoomFilter{Search: literal}, 0, 0)
		require.NoError(t, err)
		require.Emptyf(t, rooms, "search %q", literal)
	}

	count, err := repo.Room.CountAll(ctx, repository.RoomFilter{ExcludeIDs: []uuid.UUID{cheap.ID}})
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	stats, err := repo.Room.CountByStatus(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, stats[entity.RoomStatusAvailable])
	require.EqualValues(t, 0, stats[entity.RoomStatusMaintenance])
}

func TestFindActiveByRoomInRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	room := seedRoom(t, repo, "201", 100)
	other := seedRoom(t, repo, "202", 100)
	now := time.Now().UTC()

	first := seedBooking(t, repo, room, "2025-03-10", "2025-03-12", entity.BookingStatusConfirmed, now)
	seedBooking(t, repo, room, "2025-03-12", "2025-03-14", entity.BookingStatusCancelled, now)
	seedBooking(t, repo, room, "2025-03-14", "2025-03-15", entity.BookingStatusCheckedOut, now)
	seedBooking(t, repo, other, "2025-03-10", "2025-03-20", entity.BookingStatusCheckedIn, now)

	found, err := repo.Booking.FindActiveByRoomInRange(ctx, room.ID, date("2025-03-11"), date("2025-03-20"), nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, first.ID, found[0].ID)
	require.Equal(t, date("2025-03-10"), found[0].CheckIn)

	found, err = repo.Booking.FindActiveByRoomInRange(ctx, room.ID, date("2025-03-12"), date("2025-03-20"), nil)
	require.NoError(t, err)
	require.Empty(t, found)

	found, err = repo.Booking.FindActiveByRoomInRange(ctx, room.ID, date("2025-03-01"), date("2025-03-30"), &first.ID)
	require.NoError(t, err)
	require.Empty(t, found)

	booked, err := repo.Booking.FindBookedRoomIDs(ctx, date("2025-03-11"), date("2025-03-12"))
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{room.ID, other.ID}, booked)

	active, err := repo.Booking.CountActiveByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, active)
}

func TestBookingUpdateChecksVersion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	room := seedRoom(t, repo, "301", 100)
	b := seedBooking(t, repo, room, "2025-03-10", "2025-03-12", entity.BookingStatusConfirmed, time.Now().UTC())

	b.GuestName = "Renamed"
	require.NoError(t, repo.Booking.Update(ctx, b, 1))
	require.Equal(t, 2, b.Version)

	stale := *b
	stale.GuestName = "Lost update"
	err := repo.Booking.Update(ctx, &stale, 1)
	require.ErrorIs(t, err, apperror.ErrStaleBooking)

	stored, err := repo.Booking.FindByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", stored.GuestName)
	require.Equal(t, 2, stored.Version)

	missing := *b
	missing.ID = uuid.New()
	require.ErrorIs(t, repo.Booking.Update(ctx, &missing, 2), apperror.ErrNotFound)
}

func TestBookingListNewestFirstWithFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	room := seedRoom(t, repo, "401", 100)
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	older := seedBooking(t, repo, room, "2025-03-01", "2025-03-02", entity.BookingStatusConfirmed, base)
	newer := seedBooking(t, repo, room, "2025-03-05", "2025-03-06", entity.BookingStatusConfirmed, base.Add(time.Hour))

	account := entity.GuestAccountID("acct-9")
	hotel := entity.HotelID("grand")
	older.GuestAccountID = &account
	older.HotelID = &hotel
	require.NoError(t, repo.Booking.Update(ctx, older, 1))

	all, err := repo.Booking.FindAll(ctx, repository.BookingFilter{}, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{newer.ID, older.ID}, []uuid.UUID{all[0].ID, all[1].ID})

	mine, err := repo.Booking.FindAll(ctx, repository.BookingFilter{GuestAccountID: &account, HotelID: &hotel}, 10, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, account, *mine[0].GuestAccountID)

	count, err := repo.Booking.CountAll(ctx, repository.BookingFilter{RoomID: &room.ID})
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestInRoomTxRollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	room := seedRoom(t, repo, "501", 100)
	boom := errors.New("boom")

	err := repo.Tx.InRoomTx(ctx, room.ID, func(ctx context.Context, tx *repository.Repository) error {
		now := time.Now().UTC()
		b := &entity.Booking{
			Base:      entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			GuestName: "Rolled back",
			RoomID:    room.ID,
			CheckIn:   date("2025-04-01"),
			CheckOut:  date("2025-04-02"),
			Status:    entity.BookingStatusConfirmed,
			Payment:   entity.Payment{Status: entity.PaymentStatusPending},
			Version:   1,
		}
		require.NoError(t, tx.Booking.Create(ctx, b))
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := repo.Booking.CountAll(ctx, repository.BookingFilter{})
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestDeleteRoomWithBookingsIsRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	room := seedRoom(t, repo, "601", 100)
	seedBooking(t, repo, room, "2025-03-01", "2025-03-02", entity.BookingStatusCancelled, time.Now().UTC())

	require.ErrorIs(t, repo.Room.Delete(ctx, room.ID), apperror.ErrValidation)

	empty := seedRoom(t, repo, "602", 100)
	require.NoError(t, repo.Room.Delete(ctx, empty.ID))
	_, err := repo.Room.FindByID(ctx, empty.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}
