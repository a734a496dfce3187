package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storybook-server/internal/models"
)

const (
	createStoryQuery = `
		INSERT INTO stories (
			id, kid_id, account_id, title, problem_description,
			advantages, disadvantages, status, pages, created_at, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	getStoryByIDQuery = `
		SELECT id, kid_id, account_id, title, problem_description,
		       advantages, disadvantages, status, pages, created_at, last_updated
		FROM stories
		WHERE id = $1
	`

	// Обновляются только поля, которыми владеет оркестратор.
	// ENUM story_status объявлен в порядке решетки, поэтому GREATEST
	// не дает статусу откатиться назад даже при конкурентной записи
	// из другого процесса.
	saveStoryQuery = `
		UPDATE stories SET
			pages = $2,
			status = GREATEST(status, $3),
			last_updated = $4
		WHERE id = $1
	`

	listStoriesByAccountQuery = `
		SELECT id, kid_id, title, status, created_at, last_updated
		FROM stories
		WHERE account_id = $1
		ORDER BY created_at DESC
	`
)

type pgStoryRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Compile-time check to ensure pgStoryRepository implements StoryRepository
var _ StoryRepository = (*pgStoryRepository)(nil)

// NewPgStoryRepository creates a new PostgreSQL-backed StoryRepository.
func NewPgStoryRepository(pool *pgxpool.Pool, logger *zap.Logger) StoryRepository {
	return &pgStoryRepository{
		pool:   pool,
		logger: logger.Named("PgStoryRepo"),
	}
}

// Create создает новую запись истории.
func (r *pgStoryRepository) Create(ctx context.Context, story *models.Story) error {
	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	now := time.Now().UTC()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = now
	}
	story.Touch(now)

	pagesJSON, err := json.Marshal(story.Pages)
	if err != nil {
		return fmt.Errorf("failed to marshal story pages: %w", err)
	}

	r.logger.Debug("Creating new story",
		zap.String("storyID", story.ID.String()),
		zap.String("accountID", story.AccountID.String()),
		zap.Int("pages", len(story.Pages)))

	_, err = r.pool.Exec(ctx, createStoryQuery,
		story.ID,                 // $1
		story.KidID,              // $2
		story.AccountID,          // $3
		story.Title,              // $4
		story.ProblemDescription, // $5
		story.Advantages,         // $6
		story.Disadvantages,      // $7
		story.Status,             // $8
		pagesJSON,                // $9
		story.CreatedAt,          // $10
		story.LastUpdated,        // $11
	)
	if err != nil {
		r.logger.Error("Failed to create story", zap.String("storyID", story.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

// GetByID загружает историю вместе со страницами.
func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	var (
		story     models.Story
		pagesJSON []byte
	)

	row := r.pool.QueryRow(ctx, getStoryByIDQuery, id)
	err := row.Scan(
		&story.ID,
		&story.KidID,
		&story.AccountID,
		&story.Title,
		&story.ProblemDescription,
		&story.Advantages,
		&story.Disadvantages,
		&story.Status,
		&pagesJSON,
		&story.CreatedAt,
		&story.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story by ID", zap.String("storyID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}

	if len(pagesJSON) > 0 {
		if err := json.Unmarshal(pagesJSON, &story.Pages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pages for story %s: %w", id, err)
		}
	}
	return &story, nil
}

// Save перезаписывает pages, status и last_updated истории.
func (r *pgStoryRepository) Save(ctx context.Context, story *models.Story) error {
	pagesJSON, err := json.Marshal(story.Pages)
	if err != nil {
		return fmt.Errorf("failed to marshal story pages: %w", err)
	}
	story.Touch(time.Now().UTC())

	tag, err := r.pool.Exec(ctx, saveStoryQuery,
		story.ID,          // $1
		pagesJSON,         // $2
		story.Status,      // $3
		story.LastUpdated, // $4
	)
	if err != nil {
		r.logger.Error("Failed to save story", zap.String("storyID", story.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to save story %s: %w", story.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrStoryNotFound
	}

	r.logger.Debug("Story saved",
		zap.String("storyID", story.ID.String()),
		zap.String("status", string(story.Status)))
	return nil
}

// ListByAccount возвращает сокращенные записи историй владельца.
func (r *pgStoryRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.StorySummary, error) {
	var summaries []models.StorySummary
	if err := pgxscan.Select(ctx, r.pool, &summaries, listStoriesByAccountQuery, accountID); err != nil {
		r.logger.Error("Failed to list stories", zap.String("accountID", accountID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list stories for account %s: %w", accountID, err)
	}
	return summaries, nil
}
