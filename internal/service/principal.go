package service

import (
	"context"
	"errors"

	"boardshoot-server/internal/domain"
	"boardshoot-server/internal/repository"

	"github.com/rs/zerolog"
)

// PrincipalResolver turns the request-scoped authentication value into a user id.
// The anonymous fallback is only used when allowAnonymous is set.
type PrincipalResolver struct {
	users          repository.UserRepository
	allowAnonymous bool
	anonymousID    int64
	logger         zerolog.Logger
}

func NewPrincipalResolver(users repository.UserRepository, allowAnonymous bool, anonymousID int64, logger zerolog.Logger) *PrincipalResolver {
	return &PrincipalResolver{
		users:          users,
		allowAnonymous: allowAnonymous,
		anonymousID:    anonymousID,
		logger:         logger.With().Str("component", "principal").Logger(),
	}
}

// Load builds the authenticated value for a verified token subject. When the
// user can be loaded the details variant is returned so Resolve needs no lookup.
func (r *PrincipalResolver) Load(ctx context.Context, subject string) *domain.Authentication {
	auth := &domain.Authentication{Subject: subject, Authenticated: true}

	user, err := r.users.FindByUsername(ctx, subject)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			r.logger.Warn().Err(err).Str("subject", subject).Msg("failed to load user details")
		}
		return auth
	}

	auth.Details = &domain.UserDetails{ID: user.ID, Username: user.Username}
	return auth
}

func (r *PrincipalResolver) Resolve(ctx context.Context, auth *domain.Authentication) (int64, error) {
	if auth == nil || !auth.Authenticated {
		return r.fallback()
	}

	if auth.Details != nil {
		return auth.Details.ID, nil
	}

	if auth.Subject != "" && auth.Subject != domain.AnonymousSubject {
		user, err := r.users.FindByUsername(ctx, auth.Subject)
		if err == nil {
			return user.ID, nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			r.logger.Warn().Err(err).Str("subject", auth.Subject).Msg("failed to resolve subject")
		}
	}

	return r.fallback()
}

func (r *PrincipalResolver) fallback() (int64, error) {
	if r.allowAnonymous {
		return r.anonymousID, nil
	}
	return 0, ErrUnauthenticated
}
