package middleware

import (
	"net/http"
	"strings"

	"hotel-booking/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	HeaderActorID      = "X-Actor-ID"
	HeaderGuestAccount = "X-Guest-Account"
	HeaderStaffKey     = "X-Staff-Key"
	HeaderPaymentKey   = "X-Payment-Key"
)

// Actor puts the caller asserted by the identity collaborator into the
// request context. Staff and payment roles are granted only when the
// presented key matches the configured bcrypt hash; a role with no hash
// configured is never granted.
func Actor(security utils.SecurityConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	staffHash := []byte(security.StaffKeyHash)
	paymentHash := []byte(security.PaymentKeyHash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := utils.Actor{
				ID:             strings.TrimSpace(r.Header.Get(HeaderActorID)),
				GuestAccountID: strings.TrimSpace(r.Header.Get(HeaderGuestAccount)),
			}

			if key := r.Header.Get(HeaderStaffKey); key != "" {
				actor.Staff = keyMatches(staffHash, key)
				if !actor.Staff {
					logger.Warn("Rejected staff key",
						zap.String("actor", actor.ID),
						zap.String("path", r.URL.Path))
				}
			}
			if key := r.Header.Get(HeaderPaymentKey); key != "" {
				actor.Payments = keyMatches(paymentHash, key)
				if !actor.Payments {
					logger.Warn("Rejected payment key",
						zap.String("actor", actor.ID),
						zap.String("path", r.URL.Path))
				}
			}

			ctx := utils.SetActorContext(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func keyMatches(hash []byte, key string) bool {
	if len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(key)) == nil
}

// RequireStaff guards the /api/admin routes.
func RequireStaff(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, _ := utils.GetActorFromContext(r.Context())
			if !actor.Staff {
				if r.Header.Get(HeaderStaffKey) == "" {
					utils.ResponseUnauthorized(w, "Staff key required")
					return
				}
				logger.Warn("Staff check: non-staff access attempt",
					zap.String("actor", actor.ID),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Staff access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePayments admits the payment collaborator and staff.
func RequirePayments(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, _ := utils.GetActorFromContext(r.Context())
			if actor.Payments || actor.Staff {
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get(HeaderPaymentKey) == "" && r.Header.Get(HeaderStaffKey) == "" {
				utils.ResponseUnauthorized(w, "Payment key required")
				return
			}
			logger.Warn("Payment check: rejected caller",
				zap.String("actor", actor.ID),
				zap.String("path", r.URL.Path))
			utils.ResponseForbidden(w, "Payment collaborator access required")
		})
	}
}

// RequireGuest rejects requests that carry no guest account.
func RequireGuest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, _ := utils.GetActorFromContext(r.Context())
		if actor.GuestAccountID == "" {
			utils.ResponseUnauthorized(w, "Guest account required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
