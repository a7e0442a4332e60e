package repository

import (
	"context"
	"fmt"

	"hotel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	Room    RoomRepository
	Booking BookingRepository
	Tx      TxRunner
}

// TxRunner opens a transaction that holds the write lock for one room.
// Every write that can change a room's occupancy runs inside it.
type TxRunner interface {
	InRoomTx(ctx context.Context, roomID uuid.UUID, fn func(ctx context.Context, tx *Repository) error) error
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Room:    NewRoomRepository(db, log),
		Booking: NewBookingRepository(db, log),
		Tx:      &pgTxRunner{db: db, log: log.With(zap.String("repository", "tx"))},
	}
}

func newTxRepository(tx pgx.Tx, log *zap.Logger) *Repository {
	return &Repository{
		Room:    NewRoomRepository(tx, log),
		Booking: NewBookingRepository(tx, log),
		Tx:      &pgNestedTx{tx: tx},
	}
}

const roomLockQuery = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

type pgTxRunner struct {
	db  database.PgxIface
	log *zap.Logger
}

func (r *pgTxRunner) InRoomTx(ctx context.Context, roomID uuid.UUID, fn func(ctx context.Context, tx *Repository) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin room %s transaction: %w", roomID, err)
	}
	defer func() {
		if err != nil {
			// rollback must run even when ctx is what failed
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && rbErr != pgx.ErrTxClosed {
				r.log.Warn("Rollback failed", zap.Error(rbErr), zap.String("room_id", roomID.String()))
			}
		}
	}()

	if _, err = tx.Exec(ctx, roomLockQuery, roomID.String()); err != nil {
		return fmt.Errorf("lock room %s: %w", roomID, err)
	}

	if err = fn(ctx, newTxRepository(tx, r.log)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return translateError(fmt.Errorf("commit room %s transaction: %w", roomID, err), roomID)
	}
	return nil
}

// pgNestedTx is the runner handed to code already inside a transaction.
type pgNestedTx struct {
	tx pgx.Tx
}

func (n *pgNestedTx) InRoomTx(ctx context.Context, roomID uuid.UUID, fn func(ctx context.Context, tx *Repository) error) error {
	if _, err := n.tx.Exec(ctx, roomLockQuery, roomID.String()); err != nil {
		return fmt.Errorf("lock room %s: %w", roomID, err)
	}
	return fn(ctx, &Repository{
		Room:    NewRoomRepository(n.tx, zap.NewNop()),
		Booking: NewBookingRepository(n.tx, zap.NewNop()),
		Tx:      n,
	})
}
