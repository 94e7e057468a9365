package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lejendary/oauth2-server/internal/security"
	"github.com/lejendary/oauth2-server/utils"
	"go.uber.org/zap"
)

// AuthenticateResponse is returned by GET /api/v1/authenticate
type AuthenticateResponse struct {
	Authenticated bool   `json:"authenticated"`
	Login         string `json:"login"`
}

// AccountResponse describes the current principal
type AccountResponse struct {
	ID          string   `json:"id"`
	Login       string   `json:"login"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name,omitempty"`
	LastName    string   `json:"last_name,omitempty"`
	Activated   bool     `json:"activated"`
	Authorities []string `json:"authorities"`
}

// AuthorityCheckResponse is returned by the authority probe endpoint
type AuthorityCheckResponse struct {
	Authority string `json:"authority"`
	Granted   bool   `json:"granted"`
}

// AccountHandler answers questions about the caller from the request's
// authentication record. It never touches the database.
type AccountHandler struct {
	logger *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(logger *zap.Logger) *AccountHandler {
	return &AccountHandler{logger: logger}
}

// HandleAuthenticate handles GET /api/v1/authenticate. Anonymous callers get
// authenticated=false and login "anonymousUser".
func (h *AccountHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authenticated, err := security.IsAuthenticated(ctx)
	if errors.Is(err, security.ErrNoActiveSession) {
		h.logger.Error("no authentication record on request", zap.String("path", r.URL.Path))
		_ = utils.WriteInternalServerError(w, "Security context not configured")
		return
	}

	_ = utils.WriteOK(w, AuthenticateResponse{
		Authenticated: authenticated,
		Login:         security.CurrentLogin(ctx),
	})
}

// HandleAccount handles GET /api/v1/account
func (h *AccountHandler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	user := security.CurrentUser(r.Context())
	if user.Login == "" {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	authorities := user.GrantedAuthorities()
	if authorities == nil {
		authorities = []string{}
	}

	_ = utils.WriteOK(w, AccountResponse{
		ID:          user.ID.String(),
		Login:       user.Login,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Activated:   user.Activated,
		Authorities: authorities,
	})
}

// HandleAuthorityCheck handles GET /api/v1/account/authorities/{authority}
func (h *AccountHandler) HandleAuthorityCheck(w http.ResponseWriter, r *http.Request) {
	authority := chi.URLParam(r, "authority")
	if !utils.IsValidAuthority(authority) {
		_ = utils.WriteBadRequest(w, "Invalid authority name", map[string]interface{}{
			"authority": authority,
		})
		return
	}

	_ = utils.WriteOK(w, AuthorityCheckResponse{
		Authority: authority,
		Granted:   security.HasAuthority(r.Context(), authority),
	})
}
