// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, HTTP client initialization, JWT token generation
// and validation, and other common operations.
package utils

import (
	"context"

	"github.com/MKhiriev/go-login-portal/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

var (
	// IdentityCtxKey holds the authenticated account of the current request.
	IdentityCtxKey = contextKey("identity")

	// ClientInfoCtxKey holds the request origin recorded in audit events.
	ClientInfoCtxKey = contextKey("clientInfo")

	// SessionIDCtxKey holds the anonymous session id used to key CAPTCHA
	// challenges.
	SessionIDCtxKey = contextKey("sessionID")
)

// WithIdentity returns a copy of ctx carrying the authenticated account.
func WithIdentity(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, IdentityCtxKey, user)
}

// IdentityFromContext returns the account stored by WithIdentity.
//
// ok is false for anonymous requests.
//
// Example usage:
//
//	user, ok := utils.IdentityFromContext(r.Context())
//	if !ok {
//	    // redirect to login
//	}
func IdentityFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(IdentityCtxKey).(models.User)
	return user, ok
}

// WithClientInfo returns a copy of ctx carrying the request origin.
func WithClientInfo(ctx context.Context, info models.ClientInfo) context.Context {
	return context.WithValue(ctx, ClientInfoCtxKey, info)
}

// ClientInfoFromContext returns the request origin, or the zero value when
// none was attached.
func ClientInfoFromContext(ctx context.Context) models.ClientInfo {
	info, _ := ctx.Value(ClientInfoCtxKey).(models.ClientInfo)
	return info
}

// WithSessionID returns a copy of ctx carrying the session id.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDCtxKey, sessionID)
}

// SessionIDFromContext returns the session id stored by WithSessionID.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDCtxKey).(string)
	return sessionID, ok && sessionID != ""
}
