package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/repository"
	"boardshoot-server/internal/websocket"
)

type mockUserRepository struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[int64]*domain.User)}
}

func (m *mockUserRepository) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrUsernameTaken
		}
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	return err == nil, nil
}

type mockFolderRepository struct {
	folders map[int64]*domain.Folder
	nextID  int64
	notes   *mockNoteRepository
}

func newMockFolderRepository(notes *mockNoteRepository) *mockFolderRepository {
	return &mockFolderRepository{folders: make(map[int64]*domain.Folder), notes: notes}
}

func (m *mockFolderRepository) Create(_ context.Context, folder *domain.Folder) error {
	m.nextID++
	folder.ID = m.nextID
	folder.Version = 1
	stored := *folder
	m.folders[folder.ID] = &stored
	return nil
}

func (m *mockFolderRepository) ListByUser(_ context.Context, userID int64) ([]*domain.Folder, error) {
	folders := []*domain.Folder{}
	for _, f := range m.folders {
		if f.UserID == userID {
			copied := *f
			folders = append(folders, &copied)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].ID < folders[j].ID })
	return folders, nil
}

func (m *mockFolderRepository) FindForUser(_ context.Context, userID, folderID int64) (*domain.Folder, error) {
	f, ok := m.folders[folderID]
	if !ok || f.UserID != userID {
		return nil, repository.ErrFolderNotFound
	}
	copied := *f
	return &copied, nil
}

func (m *mockFolderRepository) FindByName(_ context.Context, userID int64, name string) (*domain.Folder, error) {
	for _, f := range m.folders {
		if f.UserID == userID && f.Name == name {
			copied := *f
			return &copied, nil
		}
	}
	return nil, repository.ErrFolderNotFound
}

func (m *mockFolderRepository) Update(_ context.Context, folder *domain.Folder) error {
	stored, ok := m.folders[folder.ID]
	if !ok || stored.UserID != folder.UserID || stored.Version != folder.Version {
		return repository.ErrVersionConflict
	}
	folder.Version++
	copied := *folder
	m.folders[folder.ID] = &copied
	return nil
}

func (m *mockFolderRepository) Delete(_ context.Context, userID, folderID int64) error {
	f, ok := m.folders[folderID]
	if !ok || f.UserID != userID {
		return repository.ErrFolderNotFound
	}
	delete(m.folders, folderID)
	if m.notes != nil {
		for id, n := range m.notes.notes {
			if n.FolderID == folderID {
				delete(m.notes.notes, id)
			}
		}
	}
	return nil
}

type mockNoteRepository struct {
	notes     map[int64]*domain.Note
	nextID    int64
	updateErr error
}

func newMockNoteRepository() *mockNoteRepository {
	return &mockNoteRepository{notes: make(map[int64]*domain.Note)}
}

func cloneNote(n *domain.Note) *domain.Note {
	copied := *n
	copied.Texts = append([]string{}, n.Texts...)
	copied.Images = append([]domain.ImageRef{}, n.Images...)
	return &copied
}

func (m *mockNoteRepository) Create(_ context.Context, note *domain.Note) error {
	m.nextID++
	note.ID = m.nextID
	note.Version = 1
	m.notes[note.ID] = cloneNote(note)
	return nil
}

func (m *mockNoteRepository) ListByFolder(_ context.Context, folderID int64) ([]*domain.Note, error) {
	notes := []*domain.Note{}
	for _, n := range m.notes {
		if n.FolderID == folderID {
			notes = append(notes, cloneNote(n))
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes, nil
}

func (m *mockNoteRepository) FindInFolder(_ context.Context, folderID, noteID int64) (*domain.Note, error) {
	n, ok := m.notes[noteID]
	if !ok || n.FolderID != folderID {
		return nil, repository.ErrNoteNotFound
	}
	return cloneNote(n), nil
}

func (m *mockNoteRepository) Update(_ context.Context, note *domain.Note) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.notes[note.ID]
	if !ok || stored.FolderID != note.FolderID || stored.Version != note.Version {
		return repository.ErrVersionConflict
	}
	note.Version++
	m.notes[note.ID] = cloneNote(note)
	return nil
}

func (m *mockNoteRepository) Delete(_ context.Context, folderID, noteID int64) error {
	n, ok := m.notes[noteID]
	if !ok || n.FolderID != folderID {
		return repository.ErrNoteNotFound
	}
	delete(m.notes, noteID)
	return nil
}

type fakeImageStore struct {
	remote    bool
	uploads   int
	deleted   []string
	deleteErr error
}

func (f *fakeImageStore) Upload(_ context.Context, data []byte, noteID int64) (domain.ImageRef, error) {
	f.uploads++
	if f.remote {
		return domain.RemoteImage(fmt.Sprintf("https://cdn.example.com/note_%d_%d.jpg", noteID, f.uploads)), nil
	}
	return domain.EmbeddedImage(data, "image/jpeg"), nil
}

func (f *fakeImageStore) Delete(_ context.Context, ref domain.ImageRef) error {
	if !ref.IsRemote() {
		return errors.New("not remote")
	}
	f.deleted = append(f.deleted, ref.Value)
	return f.deleteErr
}

type publishedEvent struct {
	userID  int64
	msgType websocket.MessageType
	payload websocket.ChangePayload
}

type recordingPublisher struct {
	events []publishedEvent
}

func (r *recordingPublisher) Publish(userID int64, msgType websocket.MessageType, payload interface{}) {
	p, _ := payload.(websocket.ChangePayload)
	r.events = append(r.events, publishedEvent{userID: userID, msgType: msgType, payload: p})
}

type mockMirror struct {
	entries map[string]domain.UserProfile
}

func newMockMirror() *mockMirror {
	return &mockMirror{entries: make(map[string]domain.UserProfile)}
}

func (m *mockMirror) Cache(_ context.Context, p domain.UserProfile) error {
	m.entries[p.Username] = p
	return nil
}

func (m *mockMirror) Get(_ context.Context, username string) (*domain.UserProfile, error) {
	p, ok := m.entries[username]
	if !ok {
		return nil, errors.New("miss")
	}
	return &p, nil
}

func (m *mockMirror) Invalidate(_ context.Context, username string) error {
	delete(m.entries, username)
	return nil
}

func (m *mockMirror) Refresh(ctx context.Context, previous string, p domain.UserProfile) {
	if previous != "" {
		m.Invalidate(ctx, previous)
	}
	m.Cache(ctx, p)
}

func (m *mockMirror) Forget(ctx context.Context, username string) {
	m.Invalidate(ctx, username)
}

func (m *mockMirror) Ping(context.Context) error { return nil }

func (m *mockMirror) Keys(context.Context) ([]string, error) {
	keys := []string{}
	for k := range m.entries {
		keys = append(keys, "user:"+k)
	}
	return keys, nil
}
