package handler

import (
	"context"
	"sort"
	"sync"

	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/repository"
)

// memStore backs all three repositories for router tests.
type memStore struct {
	mu      sync.Mutex
	users   map[int64]*domain.User
	folders map[int64]*domain.Folder
	notes   map[int64]*domain.Note
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[int64]*domain.User),
		folders: make(map[int64]*domain.Folder),
		notes:   make(map[int64]*domain.Note),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, user *domain.User) error {
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
	user.ID = m.id()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m memUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
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

func (m memUsers) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m memUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m memUsers) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m memUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	return err == nil, nil
}

type memFolders struct{ *memStore }

func (m memFolders) Create(_ context.Context, folder *domain.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	folder.ID = m.id()
	folder.Version = 1
	copied := *folder
	m.folders[folder.ID] = &copied
	return nil
}

func (m memFolders) ListByUser(_ context.Context, userID int64) ([]*domain.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Folder{}
	for _, f := range m.folders {
		if f.UserID == userID {
			copied := *f
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memFolders) FindForUser(_ context.Context, userID, folderID int64) (*domain.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.folders[folderID]
	if !ok || f.UserID != userID {
		return nil, repository.ErrFolderNotFound
	}
	copied := *f
	return &copied, nil
}

func (m memFolders) FindByName(_ context.Context, userID int64, name string) (*domain.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.folders {
		if f.UserID == userID && f.Name == name {
			copied := *f
			return &copied, nil
		}
	}
	return nil, repository.ErrFolderNotFound
}

func (m memFolders) Update(_ context.Context, folder *domain.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.folders[folder.ID]
	if !ok || stored.Version != folder.Version {
		return repository.ErrVersionConflict
	}
	folder.Version++
	copied := *folder
	m.folders[folder.ID] = &copied
	return nil
}

func (m memFolders) Delete(_ context.Context, userID, folderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.folders[folderID]
	if !ok || f.UserID != userID {
		return repository.ErrFolderNotFound
	}
	delete(m.folders, folderID)
	for id, n := range m.notes {
		if n.FolderID == folderID {
			delete(m.notes, id)
		}
	}
	return nil
}

type memNotes struct{ *memStore }

func clone(n *domain.Note) *domain.Note {
	copied := *n
	copied.Texts = append([]string{}, n.Texts...)
	copied.Images = append([]domain.ImageRef{}, n.Images...)
	return &copied
}

func (m memNotes) Create(_ context.Context, note *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	note.ID = m.id()
	note.Version = 1
	m.notes[note.ID] = clone(note)
	return nil
}

func (m memNotes) ListByFolder(_ context.Context, folderID int64) ([]*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Note{}
	for _, n := range m.notes {
		if n.FolderID == folderID {
			out = append(out, clone(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memNotes) FindInFolder(_ context.Context, folderID, noteID int64) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[noteID]
	if !ok || n.FolderID != folderID {
		return nil, repository.ErrNoteNotFound
	}
	return clone(n), nil
}

func (m memNotes) Update(_ context.Context, note *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.notes[note.ID]
	if !ok || stored.Version != note.Version {
		return repository.ErrVersionConflict
	}
	note.Version++
	m.notes[note.ID] = clone(note)
	return nil
}

func (m memNotes) Delete(_ context.Context, folderID, noteID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[noteID]
	if !ok || n.FolderID != folderID {
		return repository.ErrNoteNotFound
	}
	delete(m.notes, noteID)
	return nil
}
