package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/harborpoint/customerd/internal/service"
	"github.com/harborpoint/customerd/pkg/httpx"
	"github.com/harborpoint/customerd/pkg/slogx"
)

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Role is only honored on registration; empty means User.
	Role string `json:"role,omitempty"`
}

type LoginResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

type RegisterResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Login Endpoint
//	@Description	Exchange a username and password for a signed bearer token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		CredentialsRequest	true	"Username and password"
//	@Success		200			{object}	LoginResponse		"token, expiration"
//	@Failure		400			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		401			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500			{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Request body must be JSON")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	result, err := h.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to log in")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:      result.Token,
		Expiration: result.ExpiresAt,
	})
}

type RegisterHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Register Endpoint
//	@Description	Create a new account with the default User role
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		CredentialsRequest	true	"Desired username and password"
//	@Success		201			{object}	RegisterResponse	"username, role"
//	@Failure		400			{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500			{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/api/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Request body must be JSON")
		return
	}

	user, err := h.AuthService.Register(ctx, req.Username, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyUsername), errors.Is(err, service.ErrEmptyPassword):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		case errors.Is(err, service.ErrUnknownRole):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "role must be User or Admin")
		case errors.Is(err, service.ErrDuplicateUsername):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Username is already taken")
		default:
			log.Error("registration failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to register")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, RegisterResponse{
		Username: user.Username,
		Role:     user.Role,
	})
}
