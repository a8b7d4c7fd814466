package service

import (
	"context"
	"testing"
	"time"

	"boardshoot-server/internal/domain"
	"boardshoot-server/pkg/hash"
	"boardshoot-server/pkg/jwt"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCodec = jwt.NewCodec("user-service-secret", time.Hour)

func newTestUserService(f *noteFixture) (*UserService, *mockMirror) {
	mirror := newMockMirror()
	return NewUserService(f.users, f.folders, f.notes, f.images, mirror, testCodec, zerolog.Nop()), mirror
}

func TestUserService_ScopedToPrincipal(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture()
	svc, _ := newTestUserService(f)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	profile, err := svc.Get(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	_, err = svc.Get(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = svc.Delete(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_UpdateProfileRefreshesMirror(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture()
	svc, mirror := newTestUserService(f)
	carol := f.user(t, "carol")
	f.user(t, "taken")
	mirror.Cache(ctx, carol.Profile())

	_, err := svc.UpdateProfile(ctx, carol.ID, carol.ID, &domain.UpdateProfileRequest{Username: strPtr("taken")})
	assert.True(t, IsValidation(err))

	profile, err := svc.UpdateProfile(ctx, carol.ID, carol.ID, &domain.UpdateProfileRequest{Username: strPtr("caroline")})
	require.NoError(t, err)
	assert.Equal(t, "caroline", profile.Username)
	assert.Equal(t, "carol@example.com", profile.Email)

	_, stale := mirror.entries["carol"]
	assert.False(t, stale)
	assert.Equal(t, profile.UserProfile, mirror.entries["caroline"])
}

func TestUserService_RenameIssuesToken(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture()
	svc, _ := newTestUserService(f)
	frank := f.user(t, "frank")

	tests := []struct {
		name      string
		req       *domain.UpdateProfileRequest
		wantToken bool
	}{
		{name: "email only keeps the token", req: &domain.UpdateProfileRequest{Email: strPtr("frank@new.example.com")}},
		{name: "same username keeps the token", req: &domain.UpdateProfileRequest{Username: strPtr("frank")}},
		{name: "rename issues a token", req: &domain.UpdateProfileRequest{Username: strPtr("franklin")}, wantToken: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update, err := svc.UpdateProfile(ctx, frank.ID, frank.ID, tt.req)
			require.NoError(t, err)

			if !tt.wantToken {
				assert.Empty(t, update.Token)
				return
			}
			require.NotEmpty(t, update.Token)
			assert.Equal(t, update.Username, testCodec.Subject(update.Token))
		})
	}
}

func TestUserService_UpdateReplacesPassword(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture()
	svc, _ := newTestUserService(f)
	dave := f.user(t, "dave")

	_, err := svc.Update(ctx, dave.ID, dave.ID, &domain.UpdateUserRequest{
		Username: "dave",
		Email:    "dave@new.example.com",
		Password: "NewPassword1",
	})
	require.NoError(t, err)

	stored, _ := f.users.FindByID(ctx, dave.ID)
	assert.Equal(t, "dave@new.example.com", stored.Email)
	assert.NoError(t, hash.Compare(stored.Password, "NewPassword1"))
}

func TestUserService_DeleteForgetsMirrorAndImages(t *testing.T) {
	ctx := context.Background()
	f := newNoteFixture()
	f.images.remote = true
	svc, mirror := newTestUserService(f)
	erin := f.user(t, "erin")
	mirror.Cache(ctx, erin.Profile())

	folder, _ := f.folderSvc.Create(ctx, erin.ID, &domain.CreateFolderRequest{Name: "F"})
	note, _ := f.noteSvc.Create(ctx, erin.ID, folder.ID, &domain.CreateNoteRequest{Title: "N"})
	_, err := f.noteSvc.AddImage(ctx, erin.ID, folder.ID, note.ID, &domain.AddImageRequest{Image: "dGVzdA=="})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, erin.ID, erin.ID))

	_, err = f.users.FindByID(ctx, erin.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, mirror.entries)
	assert.Len(t, f.images.deleted, 1)
}
