// Package repository содержит интерфейсы хранилищ и их реализации
// (PostgreSQL для историй, Redis для карты прогресса категорий).
package repository

import (
	"context"

	"github.com/google/uuid"

	"storybook-server/internal/models"
)

// StoryRepository определяет узкий интерфейс хранилища историй.
// Оркестратор никогда не кэширует историю между вызовами: каждая мутация
// статуса или страниц проходит через GetByID/Save.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)
	// Save перезаписывает изменяемые оркестратором поля: pages, status,
	// last_updated. Остальные поля истории неизменны после создания.
	Save(ctx context.Context, story *models.Story) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.StorySummary, error)
}

// ProgressRepository хранит карту статусов генерации по категориям
// для каждой истории.
type ProgressRepository interface {
	SetCategoryStatus(ctx context.Context, storyID uuid.UUID, pageType models.PageType, status models.CategoryStatus) error
	GetCategoryStatuses(ctx context.Context, storyID uuid.UUID) (map[models.PageType]models.CategoryStatus, error)
	ClearStory(ctx context.Context, storyID uuid.UUID) error
}
