package auth

import (
	"context"
	"log/slog"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the business logic contract for authentication.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, email, password string) (string, string, error)
	RefreshSession(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
}

func NewAuthService(repo AuthRepo, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) error {
	if err := s.repo.Register(ctx, username, email, password); err != nil {
		s.logger.ErrorContext(ctx, "failed to register user", slog.Any("error", err))
		return err
	}
	return nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, string, error) {
	accessToken, refreshToken, err := s.repo.Login(ctx, email, password)
	if err != nil {
		s.logger.WarnContext(ctx, "login failed", slog.Any("error", err))
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *AuthServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	accessToken, newRefreshToken, err := s.repo.RefreshSession(ctx, refreshToken)
	if err != nil {
		s.logger.WarnContext(ctx, "session refresh failed", slog.Any("error", err))
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if err := s.repo.Logout(ctx, refreshToken); err != nil {
		s.logger.WarnContext(ctx, "logout failed", slog.Any("error", err))
		return err
	}
	return nil
}
