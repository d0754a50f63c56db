package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthRepo is a mock implementation of AuthRepo
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) Register(ctx context.Context, username, email, password string) error {
	args := m.Called(ctx, username, email, password)
	return args.Error(0)
}

func (m *MockAuthRepo) Login(ctx context.Context, email, password string) (string, string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthRepo) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthRepo) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func TestAuthService_Register(t *testing.T) {
	repo := new(MockAuthRepo)
	svc := NewAuthService(repo, testLogger())

	repo.On("Register", mock.Anything, "nuria", "nuria@example.com", "hunter2!").Return(nil)

	err := svc.Register(context.Background(), "nuria", "nuria@example.com", "hunter2!")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAuthService_RegisterConflictPassesThrough(t *testing.T) {
	repo := new(MockAuthRepo)
	svc := NewAuthService(repo, testLogger())

	repo.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(ErrConflict)

	err := svc.Register(context.Background(), "nuria", "nuria@example.com", "hunter2!")

	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	repo := new(MockAuthRepo)
	svc := NewAuthService(repo, testLogger())

	repo.On("Login", mock.Anything, "nuria@example.com", "hunter2!").
		Return("access-token", "refresh-token", nil)

	access, refresh, err := svc.Login(context.Background(), "nuria@example.com", "hunter2!")

	require.NoError(t, err)
	assert.Equal(t, "access-token", access)
	assert.Equal(t, "refresh-token", refresh)
}

func TestAuthService_LoginFailurePassesThrough(t *testing.T) {
	repo := new(MockAuthRepo)
	svc := NewAuthService(repo, testLogger())

	repo.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return("", "", ErrUnauthenticated)

	_, _, err := svc.Login(context.Background(), "nuria@example.com", "wrong")

	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthService_RefreshSession(t *testing.T) {
	repo := new(MockAuthRepo)
	svc := NewAuthService(repo, testLogger())

	repo.On("RefreshSession", mock.Anything, "old-refresh").
		Return("new-access", "new-refresh", nil)

	access, refresh, err := svc.RefreshSession(context.Background(), "old-refresh")

	require.NoError(t, err)
	assert.Equal(t, "new-access", access)
	assert.Equal(t, "new-refresh", refresh)
}

func TestAuthService_Logout(t *testing.T) {
	repo := new(MockAuthRepo)
	svc := NewAuthService(repo, testLogger())

	repo.On("Logout", mock.Anything, "live-token").Return(nil)

	assert.NoError(t, svc.Logout(context.Background(), "live-token"))
	repo.AssertExpectations(t)
}
