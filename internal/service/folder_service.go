package service

import (
	"context"
	"strings"

	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/repository"
	"boardshoot-server/internal/websocket"

	"github.com/rs/zerolog"
)

// FolderService reads and writes folders on behalf of an already resolved user id.
type FolderService struct {
	folders repository.FolderRepository
	janitor *imageJanitor
	events  EventPublisher
}

func NewFolderService(
	folders repository.FolderRepository,
	notes repository.NoteRepository,
	images ImageStore,
	events EventPublisher,
	logger zerolog.Logger,
) *FolderService {
	logger = logger.With().Str("component", "folder_service").Logger()
	return &FolderService{
		folders: folders,
		janitor: newImageJanitor(folders, notes, images, logger),
		events:  publisherOrNoop(events),
	}
}

func (s *FolderService) List(ctx context.Context, userID int64) ([]*domain.Folder, error) {
	return s.folders.ListByUser(ctx, userID)
}

func (s *FolderService) Get(ctx context.Context, userID, folderID int64) (*domain.Folder, error) {
	return s.folders.FindForUser(ctx, userID, folderID)
}

func (s *FolderService) GetByName(ctx context.Context, userID int64, name string) (*domain.Folder, error) {
	return s.folders.FindByName(ctx, userID, name)
}

func (s *FolderService) Create(ctx context.Context, userID int64, req *domain.CreateFolderRequest) (*domain.Folder, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid(nil, "Folder name is required")
	}

	folder := &domain.Folder{Name: name, UserID: userID}
	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.events.Publish(userID, websocket.TypeFolderCreated, websocket.ChangePayload{FolderID: folder.ID, Version: folder.Version})
	return folder, nil
}

// Update renames the folder. Only the name is mutable.
func (s *FolderService) Update(ctx context.Context, userID, folderID int64, req *domain.UpdateFolderRequest) (*domain.Folder, error) {
	folder, err := s.folders.FindForUser(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	if err := checkVersion("folder", req.ExpectedVersion, folder.Version); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid(nil, "Folder name is required")
	}
	folder.Name = name

	if err := s.folders.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.events.Publish(userID, websocket.TypeFolderUpdated, websocket.ChangePayload{FolderID: folder.ID, Version: folder.Version})
	return folder, nil
}

// Delete removes an owned folder with all of its notes. A folder owned by someone else
// is reported exactly like a missing one.
func (s *FolderService) Delete(ctx context.Context, userID, folderID int64) error {
	folder, err := s.folders.FindForUser(ctx, userID, folderID)
	if err != nil {
		return err
	}

	orphans := s.janitor.collectForFolder(ctx, folder.ID)

	if err := s.folders.Delete(ctx, userID, folder.ID); err != nil {
		return err
	}

	s.janitor.purge(ctx, orphans)
	s.events.Publish(userID, websocket.TypeFolderDeleted, websocket.ChangePayload{FolderID: folder.ID})
	return nil
}
