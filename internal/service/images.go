package service

import (
	"context"

	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/repository"

	"github.com/rs/zerolog"
)

// ImageStore is the remote side of note images.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, noteID int64) (domain.ImageRef, error)
	Delete(ctx context.Context, ref domain.ImageRef) error
}

// imageJanitor removes remote objects left behind by deleted notes. Failures are logged only.
type imageJanitor struct {
	folders repository.FolderRepository
	notes   repository.NoteRepository
	images  ImageStore
	logger  zerolog.Logger
}

func newImageJanitor(folders repository.FolderRepository, notes repository.NoteRepository, images ImageStore, logger zerolog.Logger) *imageJanitor {
	return &imageJanitor{folders: folders, notes: notes, images: images, logger: logger}
}

func (j *imageJanitor) collectForFolder(ctx context.Context, folderID int64) []domain.ImageRef {
	if j.images == nil {
		return nil
	}

	notes, err := j.notes.ListByFolder(ctx, folderID)
	if err != nil {
		j.logger.Warn().Err(err).Int64("folder_id", folderID).Msg("cannot list notes for image cleanup")
		return nil
	}

	var refs []domain.ImageRef
	for _, n := range notes {
		refs = append(refs, n.RemoteImages()...)
	}
	return refs
}

func (j *imageJanitor) collectForUser(ctx context.Context, userID int64) []domain.ImageRef {
	if j.images == nil {
		return nil
	}

	folders, err := j.folders.ListByUser(ctx, userID)
	if err != nil {
		j.logger.Warn().Err(err).Int64("user_id", userID).Msg("cannot list folders for image cleanup")
		return nil
	}

	var refs []domain.ImageRef
	for _, f := range folders {
		refs = append(refs, j.collectForFolder(ctx, f.ID)...)
	}
	return refs
}

func (j *imageJanitor) purge(ctx context.Context, refs []domain.ImageRef) {
	if j.images == nil {
		return
	}

	for _, ref := range refs {
		if !ref.IsRemote() {
			continue
		}
		if err := j.images.Delete(ctx, ref); err != nil {
			j.logger.Warn().Err(err).Str("url", ref.Value).Msg("remote image delete failed")
		}
	}
}
