package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/orderform-backend/api/middleware"
	"github.com/angelmondragon/orderform-backend/api/responses"
	"github.com/angelmondragon/orderform-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/orderform-backend/pkg/errors"
	"github.com/angelmondragon/orderform-backend/pkg/logger"
)

// SessionStore is the slice of the orders service that manages the per-session cache.
type SessionStore interface {
	SessionOrders(ctx context.Context, sessionID string) ([]orders.Order, error)
	ClearSession(ctx context.Context, sessionID string) error
}

// SessionOrders returns the orders cached for the caller's session without touching the store.
func SessionOrders(svc SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session store unavailable"))
			return
		}

		list, err := svc.SessionOrders(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.NewOrderViews(list))
	}
}

func SessionClear(svc SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session store unavailable"))
			return
		}

		if err := svc.ClearSession(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}

// AuthLogout drops the session cache. The token itself is revoked by the auth service.
func AuthLogout(svc SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session store unavailable"))
			return
		}

		ctx := r.Context()
		if err := svc.ClearSession(ctx, middleware.SessionIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(ctx, "auth.logout")
		}
		responses.WriteSuccess(w, map[string]bool{"logged_out": true})
	}
}
