package usecase

import (
	"time"

	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/keylock"
	"hotel-booking/pkg/metrics"
	"hotel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Room         RoomService
	Availability AvailabilityService
	Booking      BookingService
}

// Clock returns the current instant; tests pin it.
type Clock func() time.Time

type options struct {
	clock Clock
	locks *keylock.Locker
}

type Option func(*options)

func WithClock(clock Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithLocker shares a lock table between services.
func WithLocker(locks *keylock.Locker) Option {
	return func(o *options) { o.locks = locks }
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger, m *metrics.Metrics, opts ...Option) *Service {
	o := options{
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.locks == nil {
		o.locks = keylock.New()
	}

	availability := NewAvailabilityService(repo, config.Booking, log)
	guard := NewReservationGuard(repo, o.locks, config.Booking, log, m, o.clock)

	return &Service{
		Room:         NewRoomService(repo, guard, log, o.clock),
		Availability: availability,
		Booking:      NewBookingService(repo, guard, log, m, o.clock),
	}
}
