package controllers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/angelmondragon/orderform-backend/api/middleware"
	"github.com/angelmondragon/orderform-backend/api/responses"
	"github.com/angelmondragon/orderform-backend/internal/theme"
	"github.com/angelmondragon/orderform-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderform-backend/pkg/errors"
	"github.com/angelmondragon/orderform-backend/pkg/logger"
)

//go:embed templates/index.html.tmpl
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html.tmpl"))

type indexPage struct {
	Title   string
	Theme   enums.Theme
	APIBase string
}

// Index renders the UI root page with the device's persisted theme on <html data-theme>.
// A mirror failure falls back to light instead of failing the page.
func Index(svc ThemeService, secureCookies bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		current := enums.ThemeLight
		if svc != nil {
			loaded, err := svc.Current(ctx, middleware.DeviceIDFromContext(ctx), theme.CookieApplier{W: w, Secure: secureCookies})
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "theme.load_failed")
				}
			} else {
				current = loaded
			}
		}

		var buf bytes.Buffer
		if err := indexTemplate.Execute(&buf, indexPage{Title: "Order Form", Theme: current, APIBase: "/api/v1"}); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render index"))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
