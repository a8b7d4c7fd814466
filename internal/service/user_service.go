package service

import (
	"context"
	"errors"
	"fmt"

	"boardshoot-server/internal/cache"
	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/repository"
	"boardshoot-server/pkg/hash"

	"github.com/rs/zerolog"
)

// UserService manages the caller's own account. Any id other than the principal's is not found.
type UserService struct {
	userRepo repository.UserRepository
	janitor  *imageJanitor
	mirror   cache.Mirror
	tokens   TokenIssuer
	logger   zerolog.Logger
}

// TokenIssuer signs a token for a username. Tokens are bound to the username, so a
// rename needs a new one.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

func NewUserService(
	userRepo repository.UserRepository,
	folderRepo repository.FolderRepository,
	noteRepo repository.NoteRepository,
	images ImageStore,
	mirror cache.Mirror,
	tokens TokenIssuer,
	logger zerolog.Logger,
) *UserService {
	if mirror == nil {
		mirror = cache.Disabled{}
	}
	logger = logger.With().Str("component", "user_service").Logger()
	return &UserService{
		userRepo: userRepo,
		janitor:  newImageJanitor(folderRepo, noteRepo, images, logger),
		mirror:   mirror,
		tokens:   tokens,
		logger:   logger,
	}
}

func (s *UserService) Get(ctx context.Context, principalID, id int64) (*domain.UserProfile, error) {
	user, err := s.owned(ctx, principalID, id)
	if err != nil {
		return nil, err
	}

	profile := user.Profile()
	return &profile, nil
}

// Update replaces username and email, and the password when one is supplied.
func (s *UserService) Update(ctx context.Context, principalID, id int64, req *domain.UpdateUserRequest) (*domain.ProfileUpdate, error) {
	user, err := s.owned(ctx, principalID, id)
	if err != nil {
		return nil, err
	}
	previous := user.Username

	if err := s.checkUnique(ctx, user, req.Username, req.Email); err != nil {
		return nil, err
	}

	user.Username = req.Username
	user.Email = req.Email

	if req.Password != "" {
		hashed, err := hash.Hash(req.Password)
		if err != nil {
			if errors.Is(err, hash.ErrPasswordTooShort) {
				return nil, invalid(err, "Password must be at least %d characters", hash.MinPasswordLength)
			}
			return nil, err
		}
		user.Password = hashed
	}

	return s.save(ctx, user, previous)
}

// UpdateProfile changes only the supplied username and/or email.
func (s *UserService) UpdateProfile(ctx context.Context, principalID, id int64, req *domain.UpdateProfileRequest) (*domain.ProfileUpdate, error) {
	user, err := s.owned(ctx, principalID, id)
	if err != nil {
		return nil, err
	}
	previous := user.Username

	username, email := user.Username, user.Email
	if req.Username != nil {
		username = *req.Username
	}
	if req.Email != nil {
		email = *req.Email
	}

	if err := s.checkUnique(ctx, user, username, email); err != nil {
		return nil, err
	}

	user.Username = username
	user.Email = email

	return s.save(ctx, user, previous)
}

// Delete removes the account. Folders and notes go with it; their remote images are
// removed best-effort afterwards.
func (s *UserService) Delete(ctx context.Context, principalID, id int64) error {
	user, err := s.owned(ctx, principalID, id)
	if err != nil {
		return err
	}

	orphans := s.janitor.collectForUser(ctx, user.ID)

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.mirror.Forget(ctx, user.Username)
	s.janitor.purge(ctx, orphans)

	return nil
}

func (s *UserService) owned(ctx context.Context, principalID, id int64) (*domain.User, error) {
	if principalID != id {
		return nil, ErrUserNotFound
	}
	return s.userRepo.FindByID(ctx, id)
}

func (s *UserService) checkUnique(ctx context.Context, user *domain.User, username, email string) error {
	if username != user.Username {
		exists, err := s.userRepo.UsernameExists(ctx, username)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if exists {
			return invalid(repository.ErrUsernameTaken, "Username is already taken")
		}
	}

	if email != user.Email {
		exists, err := s.userRepo.EmailExists(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return invalid(repository.ErrEmailTaken, "Email already in use")
		}
	}

	return nil
}

func (s *UserService) save(ctx context.Context, user *domain.User, previousUsername string) (*domain.ProfileUpdate, error) {
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, uniquenessError(err)
	}

	profile := user.Profile()
	s.mirror.Refresh(ctx, previousUsername, profile)

	update := &domain.ProfileUpdate{UserProfile: profile}
	if user.Username != previousUsername && s.tokens != nil {
		token, err := s.tokens.Issue(user.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to issue token: %w", err)
		}
		update.Token = token
	}

	return update, nil
}
