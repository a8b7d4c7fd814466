package service

import (
	"context"
	"testing"

	"boardshoot-server/internal/domain"
)

func TestFolderService_DeleteUnownedLooksMissing(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture()
	owner := f.user(t, "owner")
	other := f.user(t, "other")

	folder, err := f.folderSvc.Create(ctx, owner.ID, &domain.CreateFolderRequest{Name: "Trip"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	errUnowned := f.folderSvc.Delete(ctx, other.ID, folder.ID)
	errMissing := f.folderSvc.Delete(ctx, other.ID, 9999)

	if errUnowned == nil || errMissing == nil {
		t.Fatalf("Delete() errors = %v, %v; want not-found for both", errUnowned, errMissing)
	}
	if errUnowned.Error() != errMissing.Error() || !IsNotFound(errUnowned) {
		t.Errorf("unowned = %v, missing = %v; want identical not-found", errUnowned, errMissing)
	}

	if _, err := f.folderSvc.Get(ctx, owner.ID, folder.ID); err != nil {
		t.Errorf("folder should survive foreign delete: %v", err)
	}
}

func TestFolderService_DeleteCascadesAndCleansImages(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture()
	f.images.remote = true
	u := f.user(t, "cleaner")

	folder, _ := f.folderSvc.Create(ctx, u.ID, &domain.CreateFolderRequest{Name: "Album"})
	note, _ := f.noteSvc.Create(ctx, u.ID, folder.ID, &domain.CreateNoteRequest{Title: "N"})
	if _, err := f.noteSvc.AddImage(ctx, u.ID, folder.ID, note.ID, &domain.AddImageRequest{Image: "dGVzdA=="}); err != nil {
		t.Fatalf("AddImage() error = %v", err)
	}

	if err := f.folderSvc.Delete(ctx, u.ID, folder.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(f.notes.notes) != 0 {
		t.Errorf("notes left after folder delete: %d", len(f.notes.notes))
	}
	if len(f.images.deleted) != 1 {
		t.Errorf("remote deletes = %d, want 1", len(f.images.deleted))
	}
}

func TestFolderService_Update(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture()
	u := f.user(t, "renamer")
	folder, _ := f.folderSvc.Create(ctx, u.ID, &domain.CreateFolderRequest{Name: "Old"})

	tests := []struct {
		name     string
		req      *domain.UpdateFolderRequest
		wantName string
		wantErr  error
	}{
		{name: "rename", req: &domain.UpdateFolderRequest{Name: "New"}, wantName: "New"},
		{name: "matching version", req: &domain.UpdateFolderRequest{Name: "Newer", ExpectedVersion: int64Ptr(2)}, wantName: "Newer"},
		{name: "stale version", req: &domain.UpdateFolderRequest{Name: "Lost", ExpectedVersion: int64Ptr(1)}, wantErr: ErrVersionConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.folderSvc.Update(ctx, u.ID, folder.ID, tt.req)
			if tt.wantErr != nil {
				if err == nil || !IsConflict(err) {
					t.Errorf("Update() error = %v, want conflict", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if got.Name != tt.wantName || got.UserID != u.ID {
				t.Errorf("Update() = %+v", got)
			}
		})
	}
}

func TestFolderService_GetByNameIsScoped(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture()
	a := f.user(t, "a")
	b := f.user(t, "b")
	f.folderSvc.Create(ctx, a.ID, &domain.CreateFolderRequest{Name: "Shared Name"})

	if _, err := f.folderSvc.GetByName(ctx, a.ID, "Shared Name"); err != nil {
		t.Errorf("GetByName(owner) error = %v", err)
	}
	if _, err := f.folderSvc.GetByName(ctx, b.ID, "Shared Name"); !IsNotFound(err) {
		t.Errorf("GetByName(other) error = %v, want not found", err)
	}
}
