package handler

import (
	"net/http"

	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/service"
	"boardshoot-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type NoteHandler struct {
	service  *service.NoteService
	resolver PrincipalResolver
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewNoteHandler(service *service.NoteService, resolver PrincipalResolver, logger zerolog.Logger) *NoteHandler {
	return &NoteHandler{
		service:  service,
		resolver: resolver,
		validate: validator.New(),
		logger:   logger,
	}
}

// scope resolves the caller and the folder id shared by every note route.
func (h *NoteHandler) scope(w http.ResponseWriter, r *http.Request) (userID, folderID int64, ok bool) {
	if userID, ok = resolveUser(w, r, h.resolver); !ok {
		return
	}
	folderID, ok = pathID(w, r, "folderId")
	return
}

func (h *NoteHandler) noteScope(w http.ResponseWriter, r *http.Request) (userID, folderID, noteID int64, ok bool) {
	if userID, folderID, ok = h.scope(w, r); !ok {
		return
	}
	noteID, ok = pathID(w, r, "noteId")
	return
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, folderID, ok := h.scope(w, r)
	if !ok {
		return
	}

	notes, err := h.service.List(r.Context(), userID, folderID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, notes)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, folderID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req domain.CreateNoteRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Failure(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.service.Create(r.Context(), userID, folderID, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Created(w, note)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, folderID, noteID, ok := h.noteScope(w, r)
	if !ok {
		return
	}

	note, err := h.service.Get(r.Context(), userID, folderID, noteID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, folderID, noteID, ok := h.noteScope(w, r)
	if !ok {
		return
	}

	var req domain.UpdateNoteRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Failure(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.service.Update(r.Context(), userID, folderID, noteID, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, folderID, noteID, ok := h.noteScope(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, folderID, noteID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Message(w, "Note deleted successfully")
}

func (h *NoteHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	userID, folderID, noteID, ok := h.noteScope(w, r)
	if !ok {
		return
	}

	var req domain.AddImageRequest
	if !decode(w, r, &req) {
		return
	}

	note, err := h.service.AddImage(r.Context(), userID, folderID, noteID, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.MessageWithData(w, "Image added successfully", note)
}

func (h *NoteHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	userID, folderID, noteID, ok := h.noteScope(w, r)
	if !ok {
		return
	}

	var req domain.RemoveImageRequest
	if !decode(w, r, &req) {
		return
	}

	note, err := h.service.RemoveImage(r.Context(), userID, folderID, noteID, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.MessageWithData(w, "Image removed successfully", note)
}

func (h *NoteHandler) ReorderImages(w http.ResponseWriter, r *http.Request) {
	userID, folderID, noteID, ok := h.noteScope(w, r)
	if !ok {
		return
	}

	var req domain.ReorderImagesRequest
	if !decode(w, r, &req) {
		return
	}

	note, err := h.service.ReorderImages(r.Context(), userID, folderID, noteID, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.MessageWithData(w, "Images reordered successfully", note)
}
