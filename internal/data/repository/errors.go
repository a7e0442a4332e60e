package repository

import (
	"errors"
	"fmt"

	"hotel-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgExclusionViolation  = "23P01"
	pgCheckViolation      = "23514"
)

// translateError maps PostgreSQL constraint failures onto the shared error
// taxonomy while keeping the driver error in the chain.
func translateError(err error, roomID uuid.UUID) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", apperror.ErrDuplicateKey, pgErr.ConstraintName)
	case pgExclusionViolation:
		return &apperror.ConflictError{RoomID: roomID}
	case pgForeignKeyViolation:
		return apperror.NewValidationError("record is still referenced", map[string]string{"constraint": pgErr.ConstraintName})
	case pgCheckViolation:
		return apperror.NewValidationError("value rejected by storage", map[string]string{"constraint": pgErr.ConstraintName})
	}
	return err
}

func nullableString[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func typedString[T ~string](s *string) *T {
	if s == nil {
		return nil
	}
	v := T(*s)
	return &v
}
