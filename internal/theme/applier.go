package theme

import (
	"net/http"

	"github.com/angelmondragon/orderform-backend/pkg/enums"
)

// AttributeCookie carries the data-theme value read by the front-end stylesheet.
const AttributeCookie = "data-theme"

// CookieApplier applies a theme by setting the data-theme cookie on the response.
type CookieApplier struct {
	W      http.ResponseWriter
	Secure bool
}

func (a CookieApplier) ApplyTheme(theme enums.Theme) {
	if a.W == nil {
		return
	}
	http.SetCookie(a.W, &http.Cookie{
		Name:     AttributeCookie,
		Value:    theme.String(),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
