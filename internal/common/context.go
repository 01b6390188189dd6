package common

import (
	"context"

	"backoffice/internal/models"
)

type contextKey string

const (
	userKey        contextKey = "current_user"
	requestMetaKey contextKey = "request_meta"
)

// RequestMeta is the request context captured for audit metadata. It exists
// only inside HTTP requests; background jobs and console commands carry none.
type RequestMeta struct {
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
}

// WithUser attaches the authenticated user to the request context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser extracts the authenticated user from the request context.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

// WithRequestMeta attaches request metadata to the context.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey, meta)
}

// RequestMetaFrom extracts request metadata, reporting whether any was set.
func RequestMetaFrom(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey).(RequestMeta)
	return meta, ok
}
