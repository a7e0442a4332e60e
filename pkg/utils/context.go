package utils

import (
	"context"
)

type contextKey string

const ActorKey contextKey = "actor"

// Actor is the caller as asserted by the identity collaborator.
type Actor struct {
	ID             string
	GuestAccountID string
	Staff          bool
	// Payments is set for the payment collaborator.
	Payments bool
}

// Label names the actor for audit fields.
func (a Actor) Label() string {
	switch {
	case a.ID != "":
		return a.ID
	case a.GuestAccountID != "":
		return a.GuestAccountID
	case a.Staff:
		return "staff"
	case a.Payments:
		return "payments"
	}
	return ""
}

func SetActorContext(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

func GetActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(Actor)
	return actor, ok
}
