// Package gormstore implements the repository interfaces on gorm, backing
// the sqlite deployment and the optional gorm-on-PostgreSQL mode.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/apperror"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	pgUniqueViolationCode = "23505"
	sqliteConstraintCode  = 19
	dialectPostgres       = "postgres"
)

var activeStatuses = []string{
	string(entity.BookingStatusConfirmed),
	string(entity.BookingStatusCheckedIn),
}

// New returns a Repository whose stores share db.
func New(db *gorm.DB, log *zap.Logger) *repository.Repository {
	return newRepository(db, log, false)
}

func newRepository(db *gorm.DB, log *zap.Logger, inTx bool) *repository.Repository {
	return &repository.Repository{
		Room:    &roomStore{db: db, log: log.With(zap.String("repository", "room"))},
		Booking: &bookingStore{db: db, log: log.With(zap.String("repository", "booking"))},
		Tx:      &txRunner{db: db, log: log, inTx: inTx},
	}
}

// AutoMigrate creates or updates the tables for the gorm backend.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Room{}, &Booking{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

type txRunner struct {
	db   *gorm.DB
	log  *zap.Logger
	inTx bool
}

func (r *txRunner) InRoomTx(ctx context.Context, roomID uuid.UUID, fn func(ctx context.Context, tx *repository.Repository) error) error {
	if r.inTx {
		if err := lockRoom(r.db.WithContext(ctx), roomID); err != nil {
			return err
		}
		return fn(ctx, newRepository(r.db, r.log, true))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRoom(tx, roomID); err != nil {
			return err
		}
		return fn(ctx, newRepository(tx, r.log, true))
	})
}

// lockRoom takes the per-room transaction lock. SQLite runs a single
// writer connection, so the transaction itself is already exclusive.
func lockRoom(tx *gorm.DB, roomID uuid.UUID) error {
	if tx.Dialector.Name() != dialectPostgres {
		return nil
	}
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", roomID.String()).Error; err != nil {
		return fmt.Errorf("lock room %s: %w", roomID, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}

func notFound(subject string, key any) error {
	return fmt.Errorf("%s %v: %w", subject, key, apperror.ErrNotFound)
}
