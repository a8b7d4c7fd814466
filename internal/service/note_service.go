package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/repository"
	"boardshoot-server/internal/websocket"

	"github.com/rs/zerolog"
)

// NoteService operates on notes reached through a folder the caller owns.
type NoteService struct {
	folders repository.FolderRepository
	notes   repository.NoteRepository
	users   repository.UserRepository
	images  ImageStore
	janitor *imageJanitor
	events  EventPublisher
	logger  zerolog.Logger
}

func NewNoteService(
	folders repository.FolderRepository,
	notes repository.NoteRepository,
	users repository.UserRepository,
	images ImageStore,
	events EventPublisher,
	logger zerolog.Logger,
) *NoteService {
	logger = logger.With().Str("component", "note_service").Logger()
	return &NoteService{
		folders: folders,
		notes:   notes,
		users:   users,
		images:  images,
		janitor: newImageJanitor(folders, notes, images, logger),
		events:  publisherOrNoop(events),
		logger:  logger,
	}
}

func (s *NoteService) List(ctx context.Context, userID, folderID int64) ([]*domain.Note, error) {
	if _, err := s.folders.FindForUser(ctx, userID, folderID); err != nil {
		return nil, err
	}
	return s.notes.ListByFolder(ctx, folderID)
}

func (s *NoteService) Get(ctx context.Context, userID, folderID, noteID int64) (*domain.Note, error) {
	if _, err := s.folders.FindForUser(ctx, userID, folderID); err != nil {
		return nil, err
	}
	return s.notes.FindInFolder(ctx, folderID, noteID)
}

// Create attaches a note to an owned folder. The note's owner is always the folder's owner.
func (s *NoteService) Create(ctx context.Context, userID, folderID int64, req *domain.CreateNoteRequest) (*domain.Note, error) {
	folder, err := s.folders.FindForUser(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, folder.UserID); err != nil {
		return nil, err
	}

	note := &domain.Note{
		Title:    req.Title,
		FolderID: folder.ID,
		UserID:   folder.UserID,
		Texts:    []string{},
		Images:   []domain.ImageRef{},
	}
	if req.Text != nil {
		note.Texts = []string{*req.Text}
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	s.publish(userID, websocket.TypeNoteCreated, note)
	return note, nil
}

// Update replaces the title when a non-empty one is given and replaces all texts with the
// single supplied text when it is non-nil. An empty text is a valid replacement.
func (s *NoteService) Update(ctx context.Context, userID, folderID, noteID int64, req *domain.UpdateNoteRequest) (*domain.Note, error) {
	note, err := s.Get(ctx, userID, folderID, noteID)
	if err != nil {
		return nil, err
	}

	if err := checkVersion("note", req.ExpectedVersion, note.Version); err != nil {
		return nil, err
	}

	if req.Title != "" {
		note.Title = req.Title
	}
	if req.Text != nil {
		note.Texts = []string{*req.Text}
	}

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	s.publish(userID, websocket.TypeNoteUpdated, note)
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, folderID, noteID int64) error {
	note, err := s.Get(ctx, userID, folderID, noteID)
	if err != nil {
		return err
	}

	if err := s.notes.Delete(ctx, folderID, note.ID); err != nil {
		return err
	}

	s.janitor.purge(ctx, note.RemoteImages())
	s.events.Publish(userID, websocket.TypeNoteDeleted, websocket.ChangePayload{FolderID: folderID, NoteID: note.ID})
	return nil
}

// AddImage accepts raw base64 or a data URL, stores it through the image store and appends
// the resulting reference.
func (s *NoteService) AddImage(ctx context.Context, userID, folderID, noteID int64, req *domain.AddImageRequest) (*domain.Note, error) {
	payload := strings.TrimSpace(req.Image)
	if payload == "" {
		return nil, invalid(ErrImageRequired, "Image is required")
	}

	note, err := s.Get(ctx, userID, folderID, noteID)
	if err != nil {
		return nil, err
	}

	data, err := decodeImage(payload)
	if err != nil {
		return nil, invalid(err, "Image must be base64 encoded")
	}
	if len(data) == 0 {
		return nil, invalid(ErrImageRequired, "Image is required")
	}

	ref, err := s.upload(ctx, data, note.ID)
	if err != nil {
		return nil, err
	}

	note.Images = append(note.Images, ref)
	if err := s.notes.Update(ctx, note); err != nil {
		if ref.IsRemote() {
			s.janitor.purge(ctx, []domain.ImageRef{ref})
		}
		return nil, err
	}

	s.publish(userID, websocket.TypeImagesChanged, note)
	return note, nil
}

// RemoveImage drops the first reference equal to imageURL. A remote object is deleted
// after the note is saved; a failed remote delete does not undo the removal.
func (s *NoteService) RemoveImage(ctx context.Context, userID, folderID, noteID int64, req *domain.RemoveImageRequest) (*domain.Note, error) {
	if req.ImageURL == "" {
		return nil, invalid(ErrImageRequired, "Image URL is required")
	}

	note, err := s.Get(ctx, userID, folderID, noteID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, img := range note.Images {
		if img.Value == req.ImageURL {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrImageNotFound
	}

	removed := note.Images[idx]
	note.Images = append(note.Images[:idx:idx], note.Images[idx+1:]...)

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	s.janitor.purge(ctx, []domain.ImageRef{removed})
	s.publish(userID, websocket.TypeImagesChanged, note)
	return note, nil
}

// ReorderImages applies a new order that must be an exact permutation of the current one.
func (s *NoteService) ReorderImages(ctx context.Context, userID, folderID, noteID int64, req *domain.ReorderImagesRequest) (*domain.Note, error) {
	note, err := s.Get(ctx, userID, folderID, noteID)
	if err != nil {
		return nil, err
	}

	if err := checkVersion("note", req.ExpectedVersion, note.Version); err != nil {
		return nil, err
	}

	reordered, err := permute(note.Images, req.ImageURLs)
	if err != nil {
		return nil, err
	}

	note.Images = reordered
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	s.publish(userID, websocket.TypeImagesChanged, note)
	return note, nil
}

func (s *NoteService) upload(ctx context.Context, data []byte, noteID int64) (domain.ImageRef, error) {
	if s.images == nil {
		return domain.EmbeddedImage(data, "image/jpeg"), nil
	}
	return s.images.Upload(ctx, data, noteID)
}

func (s *NoteService) publish(userID int64, msgType websocket.MessageType, note *domain.Note) {
	s.events.Publish(userID, msgType, websocket.ChangePayload{
		FolderID: note.FolderID,
		NoteID:   note.ID,
		Version:  note.Version,
	})
}

// permute returns current rearranged into the order given by values. values must hold
// every reference of current exactly as many times as it occurs there.
func permute(current []domain.ImageRef, values []string) ([]domain.ImageRef, error) {
	if len(values) != len(current) {
		return nil, invalid(ErrInvalidReorder,
			"Image order must contain exactly the note's %d images, got %d", len(current), len(values))
	}

	pool := make(map[string][]domain.ImageRef, len(current))
	for _, ref := range current {
		pool[ref.Value] = append(pool[ref.Value], ref)
	}

	reordered := make([]domain.ImageRef, 0, len(values))
	for _, v := range values {
		refs := pool[v]
		if len(refs) == 0 {
			return nil, invalid(ErrInvalidReorder, "Image order contains an unknown or duplicated image")
		}
		reordered = append(reordered, refs[0])
		pool[v] = refs[1:]
	}

	return reordered, nil
}

// decodeImage strips an optional data URL header and decodes the base64 body.
func decodeImage(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		_, body, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, errors.New("data URL has no payload")
		}
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	return data, nil
}
