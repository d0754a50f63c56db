package guide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/go-pet-explorer/app/observability/metrics"
	"github.com/FACorreiaa/go-pet-explorer/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrGuideNotFound = errors.New("guide not found")

// PGXPool is the slice of pgxpool.Pool the repository uses; pgxmock
// implements the same surface for tests.
type PGXPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ PGXPool = (*pgxpool.Pool)(nil)
var _ Repository = (*PostgresGuideRepository)(nil)

// Repository persists saved guides, always scoped to the owning user.
type Repository interface {
	SaveGuide(ctx context.Context, guide types.Guide) (uuid.UUID, error)
	GetGuide(ctx context.Context, userID, guideID uuid.UUID) (*types.Guide, error)
	GetGuides(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.Guide, int, error)
	DeleteGuide(ctx context.Context, userID, guideID uuid.UUID) error
}

type PostgresGuideRepository struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewPostgresGuideRepository(pgpool PGXPool, logger *slog.Logger) *PostgresGuideRepository {
	return &PostgresGuideRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresGuideRepository) SaveGuide(ctx context.Context, guide types.Guide) (uuid.UUID, error) {
	start := time.Now()
	defer func() {
		metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	query := `
        INSERT INTO guides (
            user_id, city, country, interests, content
        ) VALUES ($1, $2, $3, $4, $5) RETURNING id
    `
	var id uuid.UUID
	if err := r.pgpool.QueryRow(ctx, query,
		guide.UserID, guide.City, guide.Country, guide.Interests, guide.Content,
	).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert guide: %w", err)
	}
	return id, nil
}

func (r *PostgresGuideRepository) GetGuide(ctx context.Context, userID, guideID uuid.UUID) (*types.Guide, error) {
	query := `
        SELECT id, user_id, city, country, interests, content, created_at
        FROM guides
        WHERE id = $1 AND user_id = $2
    `
	var guide types.Guide
	if err := r.pgpool.QueryRow(ctx, query, guideID, userID).Scan(
		&guide.ID, &guide.UserID, &guide.City, &guide.Country, &guide.Interests, &guide.Content, &guide.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGuideNotFound
		}
		return nil, fmt.Errorf("failed to find guide: %w", err)
	}
	return &guide, nil
}

func (r *PostgresGuideRepository) GetGuides(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.Guide, int, error) {
	var total int
	if err := r.pgpool.QueryRow(ctx,
		"SELECT COUNT(*) FROM guides WHERE user_id = $1", userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count guides: %w", err)
	}

	query := `
        SELECT id, user_id, city, country, interests, content, created_at
        FROM guides
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.pgpool.Query(ctx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list guides: %w", err)
	}
	defer rows.Close()

	var guides []types.Guide
	for rows.Next() {
		var guide types.Guide
		if err := rows.Scan(
			&guide.ID, &guide.UserID, &guide.City, &guide.Country, &guide.Interests, &guide.Content, &guide.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan guide: %w", err)
		}
		guides = append(guides, guide)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed reading guides: %w", err)
	}
	return guides, total, nil
}

func (r *PostgresGuideRepository) DeleteGuide(ctx context.Context, userID, guideID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx,
		"DELETE FROM guides WHERE id = $1 AND user_id = $2", guideID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete guide: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGuideNotFound
	}
	return nil
}
