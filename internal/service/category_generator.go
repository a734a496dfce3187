package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storybook-server/internal/ai"
	"storybook-server/internal/generation"
	"storybook-server/internal/models"
)

// Успешный ответ генератора обязан нести хотя бы один URL; пустой список
// обрабатывается как сбой вызова и проходит через классификацию и повторы.
var errImageNoCandidates = errors.New("image generator returned no image urls")

// CategoryResult — результат генерации изображений одной категории.
// Pages содержит только успешные страницы (с выбранным изображением).
// Err — первая классифицированная ошибка категории; остальные ошибки
// страниц логируются, но не агрегируются.
type CategoryResult struct {
	PageType models.PageType
	Pages    []models.StoryPage
	Err      *generation.Error
}

// categoryGenerator генерирует изображения для одной категории страниц.
type categoryGenerator struct {
	imageGen   ai.ImageGenerator
	retryCfg   generation.RetryConfig
	candidates int // Кандидатов на страницу за один вызов генерации
	logger     *zap.Logger
}

func newCategoryGenerator(imageGen ai.ImageGenerator, retryCfg generation.RetryConfig, candidates int, logger *zap.Logger) *categoryGenerator {
	if candidates <= 0 {
		candidates = 1
	}
	return &categoryGenerator{
		imageGen:   imageGen,
		retryCfg:   retryCfg,
		candidates: candidates,
		logger:     logger.Named("CategoryGenerator"),
	}
}

// Generate генерирует изображение для каждой страницы категории, у которой
// еще нет выбранного изображения. Страницы независимы: сбой одной не
// останавливает остальные, но категория в целом считается неуспешной,
// если упала хотя бы одна страница.
//
// Страницы с уже выбранным изображением пропускаются, поэтому повтор
// категории не перегенерирует готовые страницы.
func (g *categoryGenerator) Generate(
	ctx context.Context,
	category models.PageType,
	pages []models.StoryPage,
	kid models.KidDetails,
	accountID, storyID uuid.UUID,
) CategoryResult {
	log := g.logger.With(
		zap.String("storyID", storyID.String()),
		zap.String("pageType", string(category)),
	)

	result := CategoryResult{PageType: category}
	errCtx := generation.Context{
		Operation: "category_image_generation",
		UserID:    accountID,
		KidID:     kid.ID,
		StoryID:   storyID,
		PageType:  category,
	}

	for _, page := range pages {
		if page.PageType != category {
			continue
		}
		if page.SelectedImageURL != "" {
			result.Pages = append(result.Pages, page)
			continue
		}

		prompt := page.ImagePrompt
		if prompt == "" {
			// Обложке изображение может понадобиться раньше, чем текст
			// истории на нее сослался
			prompt = placeholderPrompt(category, page.PageNum)
		}

		urls, err := generation.WithRetry(ctx, g.retryCfg, errCtx, func(ctx context.Context) ([]string, error) {
			urls, err := g.imageGen.GenerateImage(ctx, ai.ImageRequest{
				Prompt:            prompt,
				ReferenceImageURL: kid.ReferenceImageURL,
				Count:             g.candidates,
			})
			if err != nil {
				return nil, err
			}
			if len(urls) == 0 {
				return nil, errImageNoCandidates
			}
			return urls, nil
		})
		if err != nil {
			classified := generation.Classify(err, errCtx)
			if result.Err == nil {
				result.Err = classified
			} else {
				// Не первая ошибка категории: только лог
				log.Warn("Additional page generation failure in category",
					zap.Int("pageNum", page.PageNum),
					zap.String("code", string(classified.Code)),
					zap.Error(classified))
			}
			continue
		}

		page.ImagesURLs = urls
		page.SelectedImageURL = urls[0]
		result.Pages = append(result.Pages, page)
		log.Debug("Page image generated",
			zap.Int("pageNum", page.PageNum),
			zap.Int("candidates", len(urls)))
	}

	if result.Err != nil {
		log.Warn("Category finished with error",
			zap.String("code", string(result.Err.Code)),
			zap.Int("succeededPages", len(result.Pages)))
	} else {
		log.Info("Category finished", zap.Int("pages", len(result.Pages)))
	}
	return result
}

// placeholderPrompt возвращает детерминированный запасной промпт для страниц
// без текста.
func placeholderPrompt(category models.PageType, pageNum int) string {
	return fmt.Sprintf("%s page: page %d", category, pageNum)
}
