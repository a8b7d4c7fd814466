package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/middleware"
	"boardshoot-server/internal/service"
	"boardshoot-server/pkg/response"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// PrincipalResolver maps the request authentication to a user id.
type PrincipalResolver interface {
	Resolve(ctx context.Context, auth *domain.Authentication) (int64, error)
}

func resolveUser(w http.ResponseWriter, r *http.Request, resolver PrincipalResolver) (int64, bool) {
	userID, err := resolver.Resolve(r.Context(), middleware.GetAuthentication(r))
	if err != nil {
		response.Failure(w, http.StatusUnauthorized, "Authentication required")
		return 0, false
	}
	return userID, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		response.Failure(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Failure(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeError maps service errors onto resource responses. Anything unexpected is
// logged and reported without detail.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var validation *service.ValidationError

	switch {
	case errors.As(err, &validation):
		response.Failure(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, service.ErrFolderNotFound):
		response.Failure(w, http.StatusNotFound, "Folder not found")
	case errors.Is(err, service.ErrNoteNotFound):
		response.Failure(w, http.StatusNotFound, "Note not found")
	case errors.Is(err, service.ErrUserNotFound):
		response.Failure(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrImageNotFound):
		response.Failure(w, http.StatusNotFound, "Image not found in note")
	case errors.Is(err, service.ErrVersionConflict):
		response.Failure(w, http.StatusConflict, conflictMessage(err))
	case errors.Is(err, service.ErrUnauthenticated):
		response.Failure(w, http.StatusUnauthorized, "Authentication required")
	default:
		logger.Error().Err(err).Msg("request failed")
		response.Failure(w, http.StatusInternalServerError, "Internal server error")
	}
}

func conflictMessage(err error) string {
	var conflict *service.ConflictError
	if errors.As(err, &conflict) {
		return conflict.Error()
	}
	return "Resource was modified concurrently, reload and retry"
}
