package middleware

import "context"

type contextKey string

const (
	ctxUserEmail contextKey = "user_email"
	ctxSessionID contextKey = "session_id"
	ctxDeviceID  contextKey = "device_id"
)

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// UserEmailFromContext returns the authenticated principal.
func UserEmailFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxUserEmail)
}

// SessionIDFromContext returns the token's session id (jti).
func SessionIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxSessionID)
}

func DeviceIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxDeviceID)
}

// WithPrincipal injects the authenticated email and session id.
func WithPrincipal(ctx context.Context, email, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserEmail, email)
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxDeviceID, deviceID)
}
