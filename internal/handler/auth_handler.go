package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/middleware"
	"boardshoot-server/internal/service"
	"boardshoot-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// AuthHandler replies with {error} bodies on failure.
type AuthHandler struct {
	authService *service.AuthService
	validator   *validator.Validate
	logger      zerolog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
		logger:      logger,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	resp, err := h.authService.Signup(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		response.BadRequest(w, "Invalid token")
		return
	}

	profile, err := h.authService.Profile(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			response.BadRequest(w, "Invalid token")
		case errors.Is(err, service.ErrUserNotFound):
			response.BadRequest(w, "User not found")
		default:
			h.logger.Error().Err(err).Msg("profile lookup failed")
			response.InternalError(w, "Internal server error")
		}
		return
	}

	response.Success(w, profile)
}

func (h *AuthHandler) fail(w http.ResponseWriter, err error) {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		response.BadRequest(w, validation.Message)
		return
	}
	h.logger.Error().Err(err).Msg("auth request failed")
	response.InternalError(w, "Internal server error")
}
