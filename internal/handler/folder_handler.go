package handler

import (
	"net/http"

	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/service"
	"boardshoot-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type FolderHandler struct {
	service  *service.FolderService
	resolver PrincipalResolver
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewFolderHandler(service *service.FolderService, resolver PrincipalResolver, logger zerolog.Logger) *FolderHandler {
	return &FolderHandler{
		service:  service,
		resolver: resolver,
		validate: validator.New(),
		logger:   logger,
	}
}

// List returns all folders of the caller, or the single folder matching ?name=.
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := resolveUser(w, r, h.resolver)
	if !ok {
		return
	}

	if name := r.URL.Query().Get("name"); name != "" {
		folder, err := h.service.GetByName(r.Context(), userID, name)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		response.Success(w, folder)
		return
	}

	folders, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, folders)
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := resolveUser(w, r, h.resolver)
	if !ok {
		return
	}

	var req domain.CreateFolderRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Failure(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Created(w, folder)
}

func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := resolveUser(w, r, h.resolver)
	if !ok {
		return
	}
	folderID, ok := pathID(w, r, "folderId")
	if !ok {
		return
	}

	folder, err := h.service.Get(r.Context(), userID, folderID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, folder)
}

func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := resolveUser(w, r, h.resolver)
	if !ok {
		return
	}
	folderID, ok := pathID(w, r, "folderId")
	if !ok {
		return
	}

	var req domain.UpdateFolderRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Failure(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.service.Update(r.Context(), userID, folderID, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, folder)
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := resolveUser(w, r, h.resolver)
	if !ok {
		return
	}
	folderID, ok := pathID(w, r, "folderId")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, folderID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Message(w, "Folder deleted successfully")
}
