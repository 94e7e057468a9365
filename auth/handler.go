package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/lejendary/oauth2-server/middleware"
	"github.com/lejendary/oauth2-server/services"
	"github.com/lejendary/oauth2-server/utils"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie carrying the access token for browser clients
const SessionCookieName = middleware.SessionCookieName

// Authenticator checks credentials and issues access tokens.
type Authenticator interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.TokenResponse, error)
}

// Handler serves the token and logout endpoints.
type Handler struct {
	authenticator Authenticator
	secureCookies bool
	logger        *zap.Logger
	now           func() time.Time
}

// NewHandler creates a new auth handler. secureCookies marks the session
// cookie Secure and should be on whenever the server is reached over TLS.
func NewHandler(authenticator Authenticator, secureCookies bool, logger *zap.Logger) *Handler {
	return &Handler{
		authenticator: authenticator,
		secureCookies: secureCookies,
		logger:        logger,
		now:           time.Now,
	}
}

// HandleToken handles POST /auth/token. It accepts {"login","password"},
// returns the token response and sets the session cookie.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	resp, err := h.authenticator.Login(r.Context(), req)
	if err != nil {
		h.writeLoginError(w, r, err)
		return
	}

	maxAge := int(resp.ExpiresAt.Sub(h.now()).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    resp.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	w.Header().Set("Cache-Control", "no-store")

	if err := utils.WriteOK(w, resp); err != nil {
		h.logger.Error("failed to write token response", zap.Error(err))
	}
}

// HandleLogout handles POST /auth/logout by clearing the session cookie.
// Tokens are not revoked; a bearer token stays valid until it expires.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestIDFromContext(r.Context())

	switch {
	case services.IsValidationError(err):
		_ = utils.WriteBadRequest(w, "Validation failed", services.GetErrorDetails(err))
	case services.IsUnauthorizedError(err):
		_ = utils.WriteUnauthorized(w, "Invalid login or password")
	case services.IsForbiddenError(err):
		_ = utils.WriteForbidden(w, "User account is not activated")
	default:
		h.logger.Error("login failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "An internal error occurred")
	}
}
