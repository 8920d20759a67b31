package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Subject string
	Email   string
	// SessionID becomes the jti; it scopes the per-session order cache.
	SessionID string
}

// AccessTokenClaims represents the typed JWT issued by the authentication service.
type AccessTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SessionID returns the token identifier used as the session key.
func (c *AccessTokenClaims) SessionID() string {
	if c == nil {
		return ""
	}
	return c.ID
}
