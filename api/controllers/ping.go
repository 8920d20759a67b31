package controllers

import (
	"net/http"

	"github.com/angelmondragon/orderform-backend/api/middleware"
	"github.com/angelmondragon/orderform-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if email := middleware.UserEmailFromContext(r.Context()); email != "" {
			payload["user_email"] = email
		}
		responses.WriteSuccess(w, payload)
	}
}
