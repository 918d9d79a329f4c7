package auth

import (
	"context"

	"github.com/2beens/serjblog/internal/users"
)

type ctxKey int

const currentUserKey ctxKey = iota

func WithCurrentUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// CurrentUser returns nil for anonymous visitors.
func CurrentUser(ctx context.Context) *users.User {
	user, _ := ctx.Value(currentUserKey).(*users.User)
	return user
}
