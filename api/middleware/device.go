package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderform-backend/api/validators"
	"github.com/angelmondragon/orderform-backend/pkg/logger"
)

const deviceCookieMaxAge = 400 * 24 * 60 * 60

// Device identifies the browser through a long-lived cookie, issuing one when absent.
func Device(cookieName string, secure bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := ""
			if c, err := r.Cookie(cookieName); err == nil {
				deviceID = validators.SanitizeString(c.Value, 64)
			}
			if deviceID == "" {
				deviceID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    deviceID,
					Path:     "/",
					MaxAge:   deviceCookieMaxAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithDeviceID(r.Context(), deviceID)
			if logg != nil {
				ctx = logg.WithField(ctx, "device_id", deviceID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
