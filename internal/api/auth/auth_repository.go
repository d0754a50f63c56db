package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-pet-explorer/config"
	"github.com/FACorreiaa/go-pet-explorer/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// PGXPool is the slice of pgxpool.Pool the repository uses; pgxmock
// implements the same surface for tests.
type PGXPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ PGXPool = (*pgxpool.Pool)(nil)

type AuthRepo interface {
	Register(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, email, password string) (string, string, error)
	RefreshSession(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool PGXPool
	jwtCfg config.JWTConfig
}

func NewPostgresAuthRepo(pgpool PGXPool, jwtCfg config.JWTConfig, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
		jwtCfg: jwtCfg,
	}
}

// generateRefreshToken creates a random refresh token
func generateRefreshToken() string {
	return uuid.NewString()
}

func (r *PostgresAuthRepo) generateAccessToken(userID, username, email string) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID:   userID,
		Username: username,
		Email:    email,
		Scope:    "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(r.jwtCfg.AccessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(r.jwtCfg.SecretKey))
}

// Register creates a new user with a bcrypt-hashed password.
func (r *PostgresAuthRepo) Register(ctx context.Context, username, email, password string) error {
	var existing string
	err := r.pgpool.QueryRow(ctx,
		"SELECT id FROM users WHERE email = $1", email).Scan(&existing)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = r.pgpool.Exec(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3)",
		username, email, string(hashed))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Login authenticates a user and returns an access and a refresh token.
func (r *PostgresAuthRepo) Login(ctx context.Context, email, password string) (string, string, error) {
	var user types.User
	err := r.pgpool.QueryRow(ctx,
		"SELECT id, username, email, password_hash FROM users WHERE email = $1",
		email).Scan(&user.ID, &user.Username, &user.Email, &user.Password)
	if err != nil {
		return "", "", fmt.Errorf("user not found: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", ErrUnauthenticated
	}

	accessToken, err := r.generateAccessToken(user.ID, user.Username, user.Email)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	newRefreshToken := generateRefreshToken()
	expiresAt := time.Now().Add(r.jwtCfg.RefreshTokenTTL)
	_, err = r.pgpool.Exec(ctx,
		"INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)",
		user.ID, newRefreshToken, expiresAt)
	if err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return accessToken, newRefreshToken, nil
}

// RefreshSession rotates a refresh token and issues a new access token.
func (r *PostgresAuthRepo) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	var userID string
	var expiresAt time.Time
	var revokedAt *time.Time
	err := r.pgpool.QueryRow(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token = $1",
		refreshToken).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		return "", "", ErrUnauthenticated
	}

	if time.Now().After(expiresAt) || revokedAt != nil {
		return "", "", ErrUnauthenticated
	}

	var username, email string
	err = r.pgpool.QueryRow(ctx,
		"SELECT username, email FROM users WHERE id = $1",
		userID).Scan(&username, &email)
	if err != nil {
		return "", "", fmt.Errorf("user not found: %w", err)
	}

	newAccessToken, err := r.generateAccessToken(userID, username, email)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	newRefreshToken := generateRefreshToken()
	newExpiresAt := time.Now().Add(r.jwtCfg.RefreshTokenTTL)
	_, err = r.pgpool.Exec(ctx,
		"INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)",
		userID, newRefreshToken, newExpiresAt)
	if err != nil {
		return "", "", fmt.Errorf("failed to store new refresh token: %w", err)
	}

	_, err = r.pgpool.Exec(ctx,
		"UPDATE refresh_tokens SET revoked_at = $1 WHERE token = $2",
		time.Now(), refreshToken)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to revoke old refresh token", slog.Any("error", err))
	}

	return newAccessToken, newRefreshToken, nil
}

// Logout revokes the given refresh token.
func (r *PostgresAuthRepo) Logout(ctx context.Context, refreshToken string) error {
	tag, err := r.pgpool.Exec(ctx,
		"UPDATE refresh_tokens SET revoked_at = $1 WHERE token = $2 AND revoked_at IS NULL",
		time.Now(), refreshToken)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
