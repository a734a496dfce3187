// Package service содержит оркестратор жизненного цикла истории:
// генерацию полного текста, параллельную генерацию изображений по
// категориям и продвижение статуса готовности.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storybook-server/internal/ai"
	"storybook-server/internal/generation"
	"storybook-server/internal/models"
	"storybook-server/internal/repository"
)

// GenerateStoryRequest содержит входные данные операции GenerateFullStory.
type GenerateStoryRequest struct {
	AccountID          uuid.UUID
	Kid                models.KidDetails
	Title              string
	ProblemDescription string
	Advantages         string
	Disadvantages      string
}

// ImagesResult — результат операции генерации изображений.
// Story отражает все успешно слитые страницы; CategoryErrors содержит
// ошибку каждой неуспешной категории, чтобы вызывающая сторона могла
// повторить только сломанную категорию. Ошибка категории никогда не
// проглатывается и не скрывает частичный успех.
type ImagesResult struct {
	Story          *models.Story
	CategoryErrors map[models.PageType]*generation.Error
}

// StoryService определяет операции оркестратора историй.
type StoryService interface {
	GenerateFullStory(ctx context.Context, req GenerateStoryRequest) (*models.Story, error)
	GenerateCategoryImages(ctx context.Context, storyID uuid.UUID, category models.PageType, kid models.KidDetails) (*ImagesResult, error)
	GenerateAllCategoryImages(ctx context.Context, storyID uuid.UUID, kid models.KidDetails) (*ImagesResult, error)
	GenerateAvatarImage(ctx context.Context, kid models.KidDetails) (string, error)
	GetStory(ctx context.Context, storyID uuid.UUID) (*models.Story, error)
	GetProgress(ctx context.Context, storyID uuid.UUID) (map[models.PageType]models.CategoryStatus, error)
	ListStories(ctx context.Context, accountID uuid.UUID) ([]models.StorySummary, error)
}

// Config содержит настройки оркестратора.
type Config struct {
	Retry                   generation.RetryConfig
	MaxConcurrentCategories int // Ограничение параллельных задач категорий
	ImageCandidates         int // Кандидатов изображения на страницу
}

type storyServiceImpl struct {
	storyRepo    repository.StoryRepository
	progressRepo repository.ProgressRepository
	textGen      ai.TextGenerator
	categories   *categoryGenerator
	retryCfg     generation.RetryConfig
	imageGen     ai.ImageGenerator
	maxParallel  int
	locks        *storyLocks
	logger       *zap.Logger
}

var _ StoryService = (*storyServiceImpl)(nil)

// NewStoryService создает оркестратор. Все внешние способности (текстовая
// модель, генератор изображений, хранилища) передаются явно, без глобального
// состояния: тесты подставляют фейки через эти же параметры.
func NewStoryService(
	storyRepo repository.StoryRepository,
	progressRepo repository.ProgressRepository,
	textGen ai.TextGenerator,
	imageGen ai.ImageGenerator,
	cfg Config,
	logger *zap.Logger,
) StoryService {
	retryCfg := cfg.Retry.Normalized()
	maxParallel := cfg.MaxConcurrentCategories
	if maxParallel <= 0 {
		maxParallel = 4
	}
	log := logger.Named("StoryService")

	return &storyServiceImpl{
		storyRepo:    storyRepo,
		progressRepo: progressRepo,
		textGen:      textGen,
		imageGen:     imageGen,
		categories:   newCategoryGenerator(imageGen, retryCfg, cfg.ImageCandidates, log),
		retryCfg:     retryCfg,
		maxParallel:  maxParallel,
		locks:        newStoryLocks(),
		logger:       log,
	}
}

// GenerateFullStory генерирует текст истории, разбирает его в страницы и
// сохраняет новую историю со статусом INCOMPLETE (изображения еще не
// генерировались).
func (s *storyServiceImpl) GenerateFullStory(ctx context.Context, req GenerateStoryRequest) (*models.Story, error) {
	log := s.logger.With(
		zap.String("accountID", req.AccountID.String()),
		zap.String("kidID", req.Kid.ID.String()),
	)

	if strings.TrimSpace(req.Kid.Name) == "" {
		return nil, fmt.Errorf("%w: kid name is empty", models.ErrMissingKidDetails)
	}
	if strings.TrimSpace(req.ProblemDescription) == "" {
		return nil, fmt.Errorf("%w: problem description is empty", models.ErrInvalidInput)
	}

	errCtx := generation.Context{
		Operation: "story_generation",
		UserID:    req.AccountID,
		KidID:     req.Kid.ID,
	}

	log.Info("Generating full story text")
	raw, err := generation.WithRetry(ctx, s.retryCfg, errCtx, func(ctx context.Context) (string, error) {
		return s.textGen.GenerateText(ctx, ai.TextRequest{
			KidName:            req.Kid.Name,
			KidAge:             req.Kid.Age,
			KidGender:          req.Kid.Gender,
			Title:              req.Title,
			ProblemDescription: req.ProblemDescription,
			Advantages:         req.Advantages,
			Disadvantages:      req.Disadvantages,
		})
	})
	if err != nil {
		log.Warn("Story text generation failed", zap.Error(err))
		return nil, err
	}

	// Ошибка разбора терминальна: повтор вызова модели не исправит ответ,
	// который уже получен
	parsedTitle, pages, parseErr := ai.ParseStoryResponse(raw)
	if parseErr != nil {
		log.Warn("Failed to parse story response", zap.Error(parseErr))
		return nil, generation.NewError(generation.CodeInvalidInput, errCtx, parseErr)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = parsedTitle
	}

	now := time.Now().UTC()
	story := &models.Story{
		ID:                 uuid.New(),
		KidID:              req.Kid.ID,
		AccountID:          req.AccountID,
		Title:              title,
		ProblemDescription: req.ProblemDescription,
		Advantages:         req.Advantages,
		Disadvantages:      req.Disadvantages,
		Status:             models.StatusIncomplete,
		Pages:              pages,
		CreatedAt:          now,
		LastUpdated:        now,
	}

	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to persist generated story: %w", err)
	}

	// Инициализируем карту прогресса; сбой трекера не мешает основному флоу
	for _, pt := range story.PageTypes() {
		if perr := s.progressRepo.SetCategoryStatus(ctx, story.ID, pt, models.CategoryStatusPending); perr != nil {
			log.Warn("Failed to init category progress", zap.String("pageType", string(pt)), zap.Error(perr))
		}
	}

	log.Info("Full story generated",
		zap.String("storyID", story.ID.String()),
		zap.Int("pages", len(story.Pages)))
	return story, nil
}

// GenerateCategoryImages генерирует изображения одной категории и вливает
// успешные страницы в историю. При ошибке категории история все равно
// возвращается с тем, что успело сгенерироваться.
func (s *storyServiceImpl) GenerateCategoryImages(ctx context.Context, storyID uuid.UUID, category models.PageType, kid models.KidDetails) (*ImagesResult, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownPageType, category)
	}

	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	pages := story.PagesByType(category)
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrEmptyPageSet, category)
	}

	s.markCategory(ctx, storyID, category, models.CategoryStatusGenerating)
	result := s.categories.Generate(ctx, category, pages, kid, story.AccountID, storyID)

	merged, err := s.mergeAndPersist(ctx, storyID, []CategoryResult{result})
	if err != nil {
		return nil, err
	}
	s.finishCategory(ctx, storyID, result)
	s.clearProgressIfComplete(ctx, merged)

	out := &ImagesResult{Story: merged, CategoryErrors: map[models.PageType]*generation.Error{}}
	if result.Err != nil {
		out.CategoryErrors[category] = result.Err
	}
	return out, nil
}

// GenerateAllCategoryImages запускает по одной задаче на каждую категорию
// страниц истории, дожидается всех и выполняет единый сериализованный шаг
// слияния и записи. Задачи работают на контексте, отвязанном от запроса:
// вызывающая сторона может уйти, результаты все равно будут слиты и
// сохранены.
func (s *storyServiceImpl) GenerateAllCategoryImages(ctx context.Context, storyID uuid.UUID, kid models.KidDetails) (*ImagesResult, error) {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	categories := story.PageTypes()
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: story has no pages", models.ErrEmptyPageSet)
	}

	log := s.logger.With(zap.String("storyID", storyID.String()))
	log.Info("Generating images for all categories", zap.Int("categories", len(categories)))

	taskCtx := context.WithoutCancel(ctx)
	results := make([]CategoryResult, len(categories))

	g := new(errgroup.Group)
	g.SetLimit(s.maxParallel)
	for i, category := range categories {
		s.markCategory(taskCtx, storyID, category, models.CategoryStatusGenerating)
		g.Go(func() error {
			// Каждая задача работает со своим подмножеством страниц;
			// общая история не мутируется до шага слияния
			results[i] = s.categories.Generate(taskCtx, category, story.PagesByType(category), kid, story.AccountID, storyID)
			return nil
		})
	}
	_ = g.Wait() // Задачи не возвращают ошибок: сбой категории лежит в ее результате

	merged, err := s.mergeAndPersist(taskCtx, storyID, results)
	if err != nil {
		return nil, err
	}

	out := &ImagesResult{Story: merged, CategoryErrors: map[models.PageType]*generation.Error{}}
	for _, r := range results {
		s.finishCategory(taskCtx, storyID, r)
		if r.Err != nil {
			out.CategoryErrors[r.PageType] = r.Err
		}
	}
	s.clearProgressIfComplete(taskCtx, merged)

	log.Info("All categories finished",
		zap.Int("failedCategories", len(out.CategoryErrors)),
		zap.String("status", string(merged.Status)))
	return out, nil
}

// GenerateAvatarImage генерирует аватар ребенка по референсному изображению.
// История не участвует.
func (s *storyServiceImpl) GenerateAvatarImage(ctx context.Context, kid models.KidDetails) (string, error) {
	if strings.TrimSpace(kid.Name) == "" {
		return "", fmt.Errorf("%w: kid name is empty", models.ErrMissingKidDetails)
	}

	errCtx := generation.Context{
		Operation: "avatar_generation",
		KidID:     kid.ID,
	}
	prompt := fmt.Sprintf("Storybook avatar portrait of %s, a %d year old %s, friendly children's illustration",
		kid.Name, kid.Age, kid.Gender)

	urls, err := generation.WithRetry(ctx, s.retryCfg, errCtx, func(ctx context.Context) ([]string, error) {
		urls, err := s.imageGen.GenerateImage(ctx, ai.ImageRequest{
			Prompt:            prompt,
			ReferenceImageURL: kid.ReferenceImageURL,
			Count:             1,
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
		return "", err
	}
	return urls[0], nil
}

// GetStory возвращает историю по идентификатору.
func (s *storyServiceImpl) GetStory(ctx context.Context, storyID uuid.UUID) (*models.Story, error) {
	return s.storyRepo.GetByID(ctx, storyID)
}

// GetProgress возвращает карту статусов генерации по категориям.
func (s *storyServiceImpl) GetProgress(ctx context.Context, storyID uuid.UUID) (map[models.PageType]models.CategoryStatus, error) {
	return s.progressRepo.GetCategoryStatuses(ctx, storyID)
}

// ListStories возвращает истории владельца.
func (s *storyServiceImpl) ListStories(ctx context.Context, accountID uuid.UUID) ([]models.StorySummary, error) {
	return s.storyRepo.ListByAccount(ctx, accountID)
}

// mergeAndPersist — единственная точка мутации истории: критическая секция
// одного писателя на историю. Загружает актуальную версию, вливает страницы
// всех результатов по ключу (pageType, pageNum), пересчитывает процент
// готовности и проецирует статус. Статус пишется только вперед: отстающая
// категория не может откатить уже сохраненный прогресс.
func (s *storyServiceImpl) mergeAndPersist(ctx context.Context, storyID uuid.UUID, results []CategoryResult) (*models.Story, error) {
	lock := s.locks.get(storyID)
	lock.Lock()
	defer lock.Unlock()

	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		story.MergePages(r.Pages)
	}

	percent := story.CompletionPercent()
	story.Status = models.ForwardStatus(story.Status, models.ProjectStatus(percent))
	story.Touch(time.Now().UTC())

	if err := s.storyRepo.Save(ctx, story); err != nil {
		return nil, err
	}

	s.logger.Debug("Story merged and persisted",
		zap.String("storyID", storyID.String()),
		zap.Int("percent", percent),
		zap.String("status", string(story.Status)))
	return story, nil
}

// markCategory обновляет статус категории в трекере прогресса (best-effort).
func (s *storyServiceImpl) markCategory(ctx context.Context, storyID uuid.UUID, category models.PageType, status models.CategoryStatus) {
	if err := s.progressRepo.SetCategoryStatus(ctx, storyID, category, status); err != nil {
		s.logger.Warn("Failed to update category progress",
			zap.String("storyID", storyID.String()),
			zap.String("pageType", string(category)),
			zap.Error(err))
	}
}

// clearProgressIfComplete удаляет карту прогресса готовой истории:
// дальше она может только читаться, а TTL все равно бы ее добил.
func (s *storyServiceImpl) clearProgressIfComplete(ctx context.Context, story *models.Story) {
	if story.Status != models.StatusComplete {
		return
	}
	if err := s.progressRepo.ClearStory(ctx, story.ID); err != nil {
		s.logger.Warn("Failed to clear progress for completed story",
			zap.String("storyID", story.ID.String()),
			zap.Error(err))
	}
}

// finishCategory помечает категорию завершенной или сбойной по ее результату.
func (s *storyServiceImpl) finishCategory(ctx context.Context, storyID uuid.UUID, result CategoryResult) {
	status := models.CategoryStatusCompleted
	if result.Err != nil {
		status = models.CategoryStatusFailed
	}
	s.markCategory(ctx, storyID, result.PageType, status)
}
