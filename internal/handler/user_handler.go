package handler

import (
	"net/http"

	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/service"
	"boardshoot-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService *service.UserService
	resolver    PrincipalResolver
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewUserHandler(userService *service.UserService, resolver PrincipalResolver, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		resolver:    resolver,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (h *UserHandler) scope(w http.ResponseWriter, r *http.Request) (principalID, id int64, ok bool) {
	if principalID, ok = resolveUser(w, r, h.resolver); !ok {
		return
	}
	id, ok = pathID(w, r, "id")
	return
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	principalID, id, ok := h.scope(w, r)
	if !ok {
		return
	}

	profile, err := h.userService.Get(r.Context(), principalID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, profile)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	principalID, id, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req domain.UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Failure(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.userService.Update(r.Context(), principalID, id, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principalID, id, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req domain.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Failure(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), principalID, id, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, profile)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principalID, id, ok := h.scope(w, r)
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), principalID, id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Message(w, "User deleted successfully")
}
