package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"hotel-booking/pkg/apperror"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleServiceError maps the apperror taxonomy onto HTTP. Domain errors are
// logged at Warn, anything unexpected at Error.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	var (
		validation *apperror.ValidationError
		conflict   *apperror.ConflictError
	)
	warn := func(reason string) {
		log.Warn(operation+" failed - "+reason,
			zap.Error(err),
			zap.String("operation", operation))
	}

	switch {
	case errors.As(err, &validation):
		warn("validation")
		utils.ResponseBadRequest(w, validation.Message, validation.Fields)

	case errors.Is(err, apperror.ErrValidation):
		warn("validation")
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, apperror.ErrNotFound):
		warn("not found")
		utils.ResponseNotFound(w, err.Error())

	case errors.As(err, &conflict):
		warn("date conflict")
		var details any
		if conflict.BookingID != uuid.Nil {
			details = map[string]string{"conflicting_booking_id": conflict.BookingID.String()}
		}
		utils.ResponseConflict(w, "Room is already booked for some of the requested nights", details)

	case errors.Is(err, apperror.ErrDuplicateKey):
		warn("duplicate")
		utils.ResponseConflict(w, err.Error(), nil)

	case errors.Is(err, apperror.ErrStaleBooking):
		warn("stale write")
		utils.ResponseConflict(w, "Booking was changed by another request, reload and retry", nil)

	case errors.Is(err, apperror.ErrInvalidTransition):
		warn("invalid transition")
		utils.ResponseUnprocessable(w, err.Error())

	case errors.Is(err, apperror.ErrForbidden):
		warn("forbidden")
		utils.ResponseForbidden(w, "You are not allowed to do this")

	case errors.Is(err, apperror.ErrLockTimeout):
		warn("lock timeout")
		utils.ResponseServiceUnavailable(w, "Room is busy, try again")

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		warn("request cancelled")
		utils.ResponseServiceUnavailable(w, "Request was cancelled")

	default:
		log.Error(operation+" failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeJSON reads the body into dst and answers 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

func isStaff(r *http.Request) bool {
	actor, ok := utils.GetActorFromContext(r.Context())
	return ok && actor.Staff
}
