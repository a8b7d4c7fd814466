package service

import (
	"context"
	"errors"
	"fmt"

	"boardshoot-server/internal/cache"
	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/repository"
	"boardshoot-server/pkg/hash"
	"boardshoot-server/pkg/jwt"
)

type AuthService struct {
	userRepo repository.UserRepository
	codec    *jwt.Codec
	mirror   cache.Mirror
}

func NewAuthService(userRepo repository.UserRepository, codec *jwt.Codec, mirror cache.Mirror) *AuthService {
	if mirror == nil {
		mirror = cache.Disabled{}
	}
	return &AuthService{
		userRepo: userRepo,
		codec:    codec,
		mirror:   mirror,
	}
}

func (s *AuthService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.AuthResponse, error) {
	usernameExists, err := s.userRepo.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}
	if usernameExists {
		return nil, invalid(repository.ErrUsernameTaken, "Username is already taken")
	}

	emailExists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if emailExists {
		return nil, invalid(repository.ErrEmailTaken, "Email already in use")
	}

	hashedPassword, err := hash.Hash(req.Password)
	if err != nil {
		if errors.Is(err, hash.ErrPasswordTooShort) {
			return nil, invalid(err, "Password must be at least %d characters", hash.MinPasswordLength)
		}
		return nil, err
	}

	user := &domain.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, uniquenessError(err)
	}

	s.mirror.Refresh(ctx, "", user.Profile())

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, invalid(err, "User not found")
		}
		return nil, err
	}

	if err := hash.Compare(user.Password, req.Password); err != nil {
		return nil, invalid(ErrInvalidCredentials, "Invalid credentials")
	}

	return s.issue(user)
}

// Profile returns the user bound to a token. Every token failure is ErrInvalidToken.
func (s *AuthService) Profile(ctx context.Context, token string) (*domain.UserProfile, error) {
	if !s.codec.Verify(token) {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByUsername(ctx, s.codec.Subject(token))
	if err != nil {
		return nil, err
	}

	profile := user.Profile()
	return &profile, nil
}

func (s *AuthService) issue(user *domain.User) (*domain.AuthResponse, error) {
	token, err := s.codec.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &domain.AuthResponse{
		Token: token,
		User:  user.Profile(),
	}, nil
}

// uniquenessError turns a constraint violation lost to a concurrent signup into the same
// validation outcome as the pre-check.
func uniquenessError(err error) error {
	switch {
	case errors.Is(err, repository.ErrUsernameTaken):
		return invalid(err, "Username is already taken")
	case errors.Is(err, repository.ErrEmailTaken):
		return invalid(err, "Email already in use")
	default:
		return err
	}
}
