package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lejendary/oauth2-server/models"
	"github.com/lejendary/oauth2-server/services"
	"github.com/lejendary/oauth2-server/utils"
	"go.uber.org/zap"
)

// UserManager is the account service used by UserHandler
type UserManager interface {
	CreateUser(ctx context.Context, req services.CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, login string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// UserListResponse is a page of accounts
type UserListResponse struct {
	Users  []*models.User `json:"users"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// UserHandler serves the account administration endpoints
type UserHandler struct {
	users  UserManager
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserManager, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList handles GET /api/v1/users?limit=&offset=
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	users, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	if users == nil {
		users = []*models.User{}
	}

	_ = utils.WriteOK(w, UserListResponse{Users: users, Limit: limit, Offset: offset})
}

// HandleCreate handles POST /api/v1/users
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.CreateUser(r.Context(), req)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/v1/users/"+user.Login)
	_ = utils.WriteCreated(w, user)
}

// HandleGet handles GET /api/v1/users/{login}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), chi.URLParam(r, "login"))
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, user)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &utils.ValidationError{
			Message: "Validation failed",
			Fields:  map[string]string{key: key + " must be a non-negative integer"},
		}
	}
	return v, nil
}
