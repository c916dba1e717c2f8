package session

import (
	"context"
)

var sessionCtxKey = &contextKey{"session"}
var profileCtxKey = &contextKey{"profile"}

type contextKey struct {
	name string
}

// WithContext sets the Session in the given context
func WithContext(r context.Context, sess Session) context.Context {
	return context.WithValue(r, sessionCtxKey, sess)
}

// FromContext finds the session from the context.
func FromContext(ctx context.Context) (Session, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(Session)
	return raw, ok
}

// WithProfileContext sets the UserProfile in the given context
func WithProfileContext(r context.Context, profile *UserProfile) context.Context {
	return context.WithValue(r, profileCtxKey, profile)
}

// ProfileFromContext finds the user profile from the context.
func ProfileFromContext(ctx context.Context) (*UserProfile, bool) {
	raw, ok := ctx.Value(profileCtxKey).(*UserProfile)
	return raw, ok
}
