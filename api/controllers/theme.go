package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/orderform-backend/api/middleware"
	"github.com/angelmondragon/orderform-backend/api/responses"
	"github.com/angelmondragon/orderform-backend/api/validators"
	"github.com/angelmondragon/orderform-backend/internal/theme"
	"github.com/angelmondragon/orderform-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderform-backend/pkg/errors"
	"github.com/angelmondragon/orderform-backend/pkg/logger"
)

// ThemeService resolves and stores the light/dark preference of a device.
type ThemeService interface {
	Current(ctx context.Context, deviceID string, applier theme.Applier) (enums.Theme, error)
	Toggle(ctx context.Context, deviceID string, applier theme.Applier) (enums.Theme, error)
	Set(ctx context.Context, deviceID string, t enums.Theme, applier theme.Applier) (enums.Theme, error)
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

type themeResponse struct {
	Theme enums.Theme `json:"theme"`
	Dark  bool        `json:"dark"`
}

func newThemeResponse(t enums.Theme) themeResponse {
	return themeResponse{Theme: t, Dark: t.IsDark()}
}

func themeUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "theme service unavailable")
}

func ThemeGet(svc ThemeService, secureCookies bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, themeUnavailable())
			return
		}

		current, err := svc.Current(r.Context(), middleware.DeviceIDFromContext(r.Context()), theme.CookieApplier{W: w, Secure: secureCookies})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newThemeResponse(current))
	}
}

func ThemeSet(svc ThemeService, secureCookies bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, themeUnavailable())
			return
		}

		var body themeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		requested, err := enums.ParseTheme(body.Theme)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid theme"))
			return
		}

		stored, err := svc.Set(r.Context(), middleware.DeviceIDFromContext(r.Context()), requested, theme.CookieApplier{W: w, Secure: secureCookies})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newThemeResponse(stored))
	}
}

func ThemeToggle(svc ThemeService, secureCookies bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, themeUnavailable())
			return
		}

		next, err := svc.Toggle(r.Context(), middleware.DeviceIDFromContext(r.Context()), theme.CookieApplier{W: w, Secure: secureCookies})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newThemeResponse(next))
	}
}
