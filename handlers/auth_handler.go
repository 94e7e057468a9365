package handlers

import (
	"net/http"

	"github.com/lejendary/oauth2-server/auth"
	"github.com/lejendary/oauth2-server/utils"
)

// AuthDeps provides the auth handler for route wiring
type AuthDeps interface {
	AuthHandler() *auth.Handler
}

// AuthTokenHandler returns an http.HandlerFunc for the token endpoint
func AuthTokenHandler(deps AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h := deps.AuthHandler(); h != nil {
			h.HandleToken(w, r)
			return
		}
		_ = utils.WriteInternalServerError(w, "Authentication not configured")
	}
}

// AuthLogoutHandler returns an http.HandlerFunc for the logout endpoint
func AuthLogoutHandler(deps AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h := deps.AuthHandler(); h != nil {
			h.HandleLogout(w, r)
			return
		}
		_ = utils.WriteInternalServerError(w, "Authentication not configured")
	}
}
