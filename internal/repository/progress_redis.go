package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storybook-server/internal/models"
)

// Карта прогресса живет в Redis как hash: category -> status.
// TTL обновляется при каждой записи; брошенные истории очищаются сами.
const (
	progressKeyPrefix = "story_progress:"
	progressTTL       = 24 * time.Hour
)

type redisProgressRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// Compile-time check to ensure redisProgressRepository implements ProgressRepository
var _ ProgressRepository = (*redisProgressRepository)(nil)

// NewRedisProgressRepository creates a new Redis-backed ProgressRepository.
func NewRedisProgressRepository(client *redis.Client, logger *zap.Logger) ProgressRepository {
	return &redisProgressRepository{
		client: client,
		logger: logger.Named("RedisProgressRepo"),
	}
}

func progressKey(storyID uuid.UUID) string {
	return progressKeyPrefix + storyID.String()
}

// SetCategoryStatus записывает статус одной категории.
func (r *redisProgressRepository) SetCategoryStatus(ctx context.Context, storyID uuid.UUID, pageType models.PageType, status models.CategoryStatus) error {
	key := progressKey(storyID)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, string(pageType), string(status))
	pipe.Expire(ctx, key, progressTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("Failed to set category status",
			zap.String("storyID", storyID.String()),
			zap.String("pageType", string(pageType)),
			zap.Error(err))
		return fmt.Errorf("failed to set category status: %w", err)
	}
	return nil
}

// GetCategoryStatuses возвращает карту статусов категорий истории.
// Отсутствие ключа означает, что генерация не запускалась: пустая карта.
func (r *redisProgressRepository) GetCategoryStatuses(ctx context.Context, storyID uuid.UUID) (map[models.PageType]models.CategoryStatus, error) {
	raw, err := r.client.HGetAll(ctx, progressKey(storyID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get category statuses: %w", err)
	}

	statuses := make(map[models.PageType]models.CategoryStatus, len(raw))
	for pageType, status := range raw {
		statuses[models.PageType(pageType)] = models.CategoryStatus(status)
	}
	return statuses, nil
}

// ClearStory удаляет карту прогресса истории.
func (r *redisProgressRepository) ClearStory(ctx context.Context, storyID uuid.UUID) error {
	if err := r.client.Del(ctx, progressKey(storyID)).Err(); err != nil {
		return fmt.Errorf("failed to clear story progress: %w", err)
	}
	return nil
}
