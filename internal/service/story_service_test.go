package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storybook-server/internal/ai"
	"storybook-server/internal/generation"
	"storybook-server/internal/mocks"
	"storybook-server/internal/models"
	"storybook-server/internal/service"
)

// fastRetry — конфигурация повторов для тестов: без реальных секундных пауз.
func fastRetry() generation.RetryConfig {
	return generation.RetryConfig{
		MaxRetries:    2,
		BaseDelay:     time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

// storyFixture возвращает историю из пяти страниц в четырех категориях.
func storyFixture() *models.Story {
	return &models.Story{
		ID:        uuid.New(),
		KidID:     uuid.New(),
		AccountID: uuid.New(),
		Title:     "Brave Misha",
		Status:    models.StatusIncomplete,
		Pages: []models.StoryPage{
			{PageType: models.PageTypeCover, PageNum: 1, ImagePrompt: "cover art"},
			{PageType: models.PageTypeNormal, PageNum: 1, ImagePrompt: "forest"},
			{PageType: models.PageTypeNormal, PageNum: 2, ImagePrompt: "path"},
			{PageType: models.PageTypeGood, PageNum: 1, ImagePrompt: "helping"},
			{PageType: models.PageTypeBad, PageNum: 1, ImagePrompt: "ignoring"},
		},
	}
}

// memoryStoryRepo — потокобезопасное хранилище историй в памяти для
// конкурентных тестов. Как и настоящая БД, отдает копию записи и
// запоминает статус каждой сохраненной версии.
type memoryStoryRepo struct {
	mu       sync.Mutex
	story    *models.Story
	statuses []models.StoryStatus
}

func newMemoryStoryRepo(story *models.Story) *memoryStoryRepo {
	return &memoryStoryRepo{story: cloneStory(story)}
}

func cloneStory(s *models.Story) *models.Story {
	c := *s
	c.Pages = make([]models.StoryPage, len(s.Pages))
	copy(c.Pages, s.Pages)
	return &c
}

func (r *memoryStoryRepo) Create(_ context.Context, story *models.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.story = cloneStory(story)
	return nil
}

func (r *memoryStoryRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.story == nil || r.story.ID != id {
		return nil, models.ErrStoryNotFound
	}
	return cloneStory(r.story), nil
}

func (r *memoryStoryRepo) Save(_ context.Context, story *models.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.story = cloneStory(story)
	r.statuses = append(r.statuses, story.Status)
	return nil
}

func (r *memoryStoryRepo) ListByAccount(context.Context, uuid.UUID) ([]models.StorySummary, error) {
	return nil, nil
}

func (r *memoryStoryRepo) savedStatuses() []models.StoryStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	statuses := make([]models.StoryStatus, len(r.statuses))
	copy(statuses, r.statuses)
	return statuses
}

func newTestService(
	t *testing.T,
	storyRepo *mocks.MockStoryRepository,
	progressRepo *mocks.MockProgressRepository,
	textGen *mocks.MockTextGenerator,
	imageGen *mocks.MockImageGenerator,
) service.StoryService {
	t.Helper()
	return service.NewStoryService(storyRepo, progressRepo, textGen, imageGen, service.Config{
		Retry:                   fastRetry(),
		MaxConcurrentCategories: 4,
	}, zap.NewNop())
}

// allowProgressUpdates разрешает любые best-effort обновления трекера.
func allowProgressUpdates(progressRepo *mocks.MockProgressRepository) {
	progressRepo.On("SetCategoryStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Maybe()
	progressRepo.On("ClearStory", mock.Anything, mock.Anything).
		Return(nil).Maybe()
}

// TestGenerateFullStory_Success проверяет генерацию и сохранение истории.
func TestGenerateFullStory_Success(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)
	allowProgressUpdates(progressRepo)

	raw := `{"title":"Brave Misha","pages":[
		{"pageType":"COVER","pageNum":1,"imagePrompt":"cover art"},
		{"pageType":"NORMAL","pageNum":1,"storyText":"Once","imagePrompt":"forest"}
	]}`
	textGen.On("GenerateText", mock.Anything, mock.Anything).Return(raw, nil).Once()

	storyRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Story) bool {
		assert.Equal(t, models.StatusIncomplete, s.Status)
		assert.Len(t, s.Pages, 2)
		assert.Equal(t, "Brave Misha", s.Title)
		return true
	})).Return(nil).Once()

	story, err := svc.GenerateFullStory(context.Background(), service.GenerateStoryRequest{
		AccountID:          uuid.New(),
		Kid:                models.KidDetails{ID: uuid.New(), Name: "Misha", Age: 5, Gender: "boy"},
		ProblemDescription: "afraid of the dark",
	})

	require.NoError(t, err)
	require.NotNil(t, story)
	assert.Equal(t, models.StatusIncomplete, story.Status)
	storyRepo.AssertExpectations(t)
	textGen.AssertExpectations(t)
}

// TestGenerateFullStory_ParseFailureNotRetried проверяет, что неразборчивый
// ответ модели терминален: один вызов модели, INVALID_INPUT, без повтора.
func TestGenerateFullStory_ParseFailureNotRetried(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)

	textGen.On("GenerateText", mock.Anything, mock.Anything).
		Return("I cannot respond in JSON today.", nil).Once()

	_, err := svc.GenerateFullStory(context.Background(), service.GenerateStoryRequest{
		AccountID:          uuid.New(),
		Kid:                models.KidDetails{ID: uuid.New(), Name: "Misha"},
		ProblemDescription: "problem",
	})

	require.Error(t, err)
	var classified *generation.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, generation.CodeInvalidInput, classified.Code)
	textGen.AssertNumberOfCalls(t, "GenerateText", 1)
	storyRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestGenerateFullStory_AuthErrorSingleAttempt проверяет, что ошибка
// аутентификации не повторяется и классифицируется как невосстановимая.
func TestGenerateFullStory_AuthErrorSingleAttempt(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)

	textGen.On("GenerateText", mock.Anything, mock.Anything).
		Return("", errors.New("Invalid API key")).Once()

	_, err := svc.GenerateFullStory(context.Background(), service.GenerateStoryRequest{
		AccountID:          uuid.New(),
		Kid:                models.KidDetails{ID: uuid.New(), Name: "Misha"},
		ProblemDescription: "problem",
	})

	require.Error(t, err)
	var classified *generation.Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, generation.CodeAuthenticationError, classified.Code)
	assert.False(t, classified.Retryable)
	assert.False(t, classified.Recoverable)
	textGen.AssertNumberOfCalls(t, "GenerateText", 1)
}

// TestGenerateFullStory_MissingKidName проверяет валидацию входа.
func TestGenerateFullStory_MissingKidName(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)

	_, err := svc.GenerateFullStory(context.Background(), service.GenerateStoryRequest{
		AccountID:          uuid.New(),
		Kid:                models.KidDetails{ID: uuid.New(), Name: "  "},
		ProblemDescription: "problem",
	})
	assert.ErrorIs(t, err, models.ErrMissingKidDetails)
	textGen.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
}

// TestGenerateCategoryImages_CoverOnly проверяет, что генерация одной
// категории из пяти страниц поднимает статус до PROGRESS20.
func TestGenerateCategoryImages_CoverOnly(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)
	allowProgressUpdates(progressRepo)

	fixture := storyFixture()
	storyRepo.On("GetByID", mock.Anything, fixture.ID).Return(fixture, nil)
	imageGen.On("GenerateImage", mock.Anything, mock.MatchedBy(func(req ai.ImageRequest) bool {
		return req.Prompt == "cover art"
	})).Return([]string{"http://img/cover.png"}, nil).Once()

	var saved *models.Story
	storyRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *models.Story) bool {
		saved = s
		return true
	})).Return(nil).Once()

	result, err := svc.GenerateCategoryImages(context.Background(), fixture.ID, models.PageTypeCover, models.KidDetails{})

	require.NoError(t, err)
	require.NotNil(t, saved)
	// 1 из 5 страниц готова: 20% -> PROGRESS20
	assert.Equal(t, models.StatusProgress20, saved.Status)
	assert.Empty(t, result.CategoryErrors)
	assert.Equal(t, "http://img/cover.png", result.Story.PagesByType(models.PageTypeCover)[0].SelectedImageURL)
}

// TestGenerateCategoryImages_UnknownCategory проверяет отказ до обращения
// к хранилищу.
func TestGenerateCategoryImages_UnknownCategory(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)

	_, err := svc.GenerateCategoryImages(context.Background(), uuid.New(), models.PageType("WRONG"), models.KidDetails{})
	assert.ErrorIs(t, err, models.ErrUnknownPageType)
	storyRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// TestGenerateCategoryImages_EmptyCategory проверяет отказ для категории
// без страниц.
func TestGenerateCategoryImages_EmptyCategory(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)

	fixture := storyFixture()
	storyRepo.On("GetByID", mock.Anything, fixture.ID).Return(fixture, nil).Once()

	_, err := svc.GenerateCategoryImages(context.Background(), fixture.ID, models.PageTypeGoodChoice, models.KidDetails{})
	assert.ErrorIs(t, err, models.ErrEmptyPageSet)
}

// TestGenerateCategoryImages_RateLimitKeepsPartial проверяет, что при
// исчерпании повторов на одной странице успешные страницы категории
// все равно вливаются, а ошибка категории возвращается отдельно.
func TestGenerateCategoryImages_RateLimitKeepsPartial(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)
	allowProgressUpdates(progressRepo)

	fixture := storyFixture()
	storyRepo.On("GetByID", mock.Anything, fixture.ID).Return(fixture, nil)

	// Первая страница NORMAL успешна, вторая стабильно упирается в rate limit
	imageGen.On("GenerateImage", mock.Anything, mock.MatchedBy(func(req ai.ImageRequest) bool {
		return req.Prompt == "forest"
	})).Return([]string{"http://img/n1.png"}, nil).Once()
	imageGen.On("GenerateImage", mock.Anything, mock.MatchedBy(func(req ai.ImageRequest) bool {
		return req.Prompt == "path"
	})).Return(nil, errors.New("429: rate limit exceeded")).Times(3)

	var saved *models.Story
	storyRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *models.Story) bool {
		saved = s
		return true
	})).Return(nil).Once()

	result, err := svc.GenerateCategoryImages(context.Background(), fixture.ID, models.PageTypeNormal, models.KidDetails{})

	require.NoError(t, err)
	require.NotNil(t, result)

	// Успешная страница сохранена несмотря на сбой категории
	require.NotNil(t, saved)
	normals := saved.PagesByType(models.PageTypeNormal)
	assert.Equal(t, "http://img/n1.png", normals[0].SelectedImageURL)
	assert.Empty(t, normals[1].SelectedImageURL)
	// 1 из 5 страниц: PROGRESS20
	assert.Equal(t, models.StatusProgress20, saved.Status)

	catErr := result.CategoryErrors[models.PageTypeNormal]
	require.NotNil(t, catErr)
	assert.Equal(t, generation.CodeRateLimitExceeded, catErr.Code)
	assert.True(t, catErr.Retryable)
	imageGen.AssertExpectations(t)
}

// TestGenerateAllCategoryImages_Complete проверяет, что успех всех
// категорий доводит историю до COMPLETE за один шаг слияния.
func TestGenerateAllCategoryImages_Complete(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)
	allowProgressUpdates(progressRepo)

	fixture := storyFixture()
	storyRepo.On("GetByID", mock.Anything, fixture.ID).Return(fixture, nil)
	imageGen.On("GenerateImage", mock.Anything, mock.Anything).
		Return([]string{"http://img/any.png"}, nil)

	var saveCalls atomic.Int32
	var saved *models.Story
	storyRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *models.Story) bool {
		saveCalls.Add(1)
		saved = s
		return true
	})).Return(nil)

	result, err := svc.GenerateAllCategoryImages(context.Background(), fixture.ID, models.KidDetails{})

	require.NoError(t, err)
	assert.Empty(t, result.CategoryErrors)
	// Единый шаг записи для всех категорий
	assert.Equal(t, int32(1), saveCalls.Load())
	require.NotNil(t, saved)
	assert.Equal(t, models.StatusComplete, saved.Status)
	assert.Equal(t, 100, saved.CompletionPercent())
}

// TestGenerateAllCategoryImages_PartialFailure проверяет смешанный исход:
// успешные категории слиты, сбойные перечислены в CategoryErrors,
// статус отражает фактический прогресс.
func TestGenerateAllCategoryImages_PartialFailure(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)
	allowProgressUpdates(progressRepo)

	fixture := storyFixture()
	storyRepo.On("GetByID", mock.Anything, fixture.ID).Return(fixture, nil)

	// Категория BAD стабильно падает, остальные успешны
	imageGen.On("GenerateImage", mock.Anything, mock.MatchedBy(func(req ai.ImageRequest) bool {
		return req.Prompt == "ignoring"
	})).Return(nil, errors.New("503 service unavailable"))
	imageGen.On("GenerateImage", mock.Anything, mock.Anything).
		Return([]string{"http://img/any.png"}, nil)

	var saved *models.Story
	storyRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *models.Story) bool {
		saved = s
		return true
	})).Return(nil).Once()

	result, err := svc.GenerateAllCategoryImages(context.Background(), fixture.ID, models.KidDetails{})

	require.NoError(t, err)
	require.NotNil(t, saved)
	// 4 из 5 страниц готовы: 80% -> PROGRESS80
	assert.Equal(t, models.StatusProgress80, saved.Status)

	require.Len(t, result.CategoryErrors, 1)
	catErr := result.CategoryErrors[models.PageTypeBad]
	require.NotNil(t, catErr)
	assert.Equal(t, generation.CodeServiceUnavailable, catErr.Code)
}

// requireStatusesMonotonic проверяет, что последовательность сохраненных
// статусов нигде не откатывается назад.
func requireStatusesMonotonic(t *testing.T, statuses []models.StoryStatus) {
	t.Helper()
	for i := 1; i < len(statuses); i++ {
		assert.False(t, statuses[i].Before(statuses[i-1]),
			"статус откатился: %s после %s (позиция %d)", statuses[i], statuses[i-1], i)
	}
}

// TestConcurrentCategoryMerges_StatusMonotonic гоняет две категории из
// горутин через общее хранилище: в каком бы порядке ни слились GOOD и BAD
// со стартовых 60%, записанные статусы не убывают и история приходит
// к COMPLETE.
func TestConcurrentCategoryMerges_StatusMonotonic(t *testing.T) {
	fixture := storyFixture()
	// 3 из 5 страниц уже готовы: стартовые 60%
	fixture.Pages[0].SelectedImageURL = "http://img/cover.png"
	fixture.Pages[1].SelectedImageURL = "http://img/n1.png"
	fixture.Pages[2].SelectedImageURL = "http://img/n2.png"
	fixture.Status = models.StatusProgress60

	repo := newMemoryStoryRepo(fixture)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	allowProgressUpdates(progressRepo)
	imageGen.On("GenerateImage", mock.Anything, mock.Anything).
		Return([]string{"http://img/any.png"}, nil)

	svc := service.NewStoryService(repo, progressRepo, textGen, imageGen, service.Config{
		Retry:                   fastRetry(),
		MaxConcurrentCategories: 4,
	}, zap.NewNop())

	var wg sync.WaitGroup
	for _, category := range []models.PageType{models.PageTypeGood, models.PageTypeBad} {
		wg.Add(1)
		go func(pt models.PageType) {
			defer wg.Done()
			_, err := svc.GenerateCategoryImages(context.Background(), fixture.ID, pt, models.KidDetails{})
			assert.NoError(t, err)
		}(category)
	}
	wg.Wait()

	statuses := repo.savedStatuses()
	require.Len(t, statuses, 2)
	requireStatusesMonotonic(t, statuses)

	final, err := repo.GetByID(context.Background(), fixture.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, final.CompletionPercent())
	assert.Equal(t, models.StatusComplete, final.Status)
}

// TestConcurrentCategoryMerges_FailedCategoryDoesNotRegress проверяет тот
// же забег, но со стабильно падающей категорией BAD: итог PROGRESS80
// независимо от порядка слияния, без откатов статуса по пути.
func TestConcurrentCategoryMerges_FailedCategoryDoesNotRegress(t *testing.T) {
	fixture := storyFixture()
	fixture.Pages[0].SelectedImageURL = "http://img/cover.png"
	fixture.Pages[1].SelectedImageURL = "http://img/n1.png"
	fixture.Pages[2].SelectedImageURL = "http://img/n2.png"
	fixture.Status = models.StatusProgress60

	repo := newMemoryStoryRepo(fixture)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	allowProgressUpdates(progressRepo)
	imageGen.On("GenerateImage", mock.Anything, mock.MatchedBy(func(req ai.ImageRequest) bool {
		return req.Prompt == "ignoring"
	})).Return(nil, errors.New("503 service unavailable"))
	imageGen.On("GenerateImage", mock.Anything, mock.Anything).
		Return([]string{"http://img/any.png"}, nil)

	svc := service.NewStoryService(repo, progressRepo, textGen, imageGen, service.Config{
		Retry:                   fastRetry(),
		MaxConcurrentCategories: 4,
	}, zap.NewNop())

	var wg sync.WaitGroup
	for _, category := range []models.PageType{models.PageTypeGood, models.PageTypeBad} {
		wg.Add(1)
		go func(pt models.PageType) {
			defer wg.Done()
			_, err := svc.GenerateCategoryImages(context.Background(), fixture.ID, pt, models.KidDetails{})
			assert.NoError(t, err)
		}(category)
	}
	wg.Wait()

	statuses := repo.savedStatuses()
	require.Len(t, statuses, 2)
	requireStatusesMonotonic(t, statuses)

	final, err := repo.GetByID(context.Background(), fixture.ID)
	require.NoError(t, err)
	// 4 из 5 страниц: сбойная категория не откатывает чужой прогресс
	assert.Equal(t, 80, final.CompletionPercent())
	assert.Equal(t, models.StatusProgress80, final.Status)
}

// TestGenerateAvatarImage проверяет генерацию аватара.
func TestGenerateAvatarImage(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)

	imageGen.On("GenerateImage", mock.Anything, mock.MatchedBy(func(req ai.ImageRequest) bool {
		return req.ReferenceImageURL == "http://img/photo.png"
	})).Return([]string{"http://img/avatar.png"}, nil).Once()

	url, err := svc.GenerateAvatarImage(context.Background(), models.KidDetails{
		ID:                uuid.New(),
		Name:              "Misha",
		Age:               5,
		Gender:            "boy",
		ReferenceImageURL: "http://img/photo.png",
	})

	require.NoError(t, err)
	assert.Equal(t, "http://img/avatar.png", url)
}

// TestGenerateAvatarImage_EmptyCandidateList проверяет, что пустой список
// URL при nil ошибке возвращается как классифицированная ошибка, а не паника.
func TestGenerateAvatarImage_EmptyCandidateList(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)

	imageGen.On("GenerateImage", mock.Anything, mock.Anything).Return([]string{}, nil)

	_, err := svc.GenerateAvatarImage(context.Background(), models.KidDetails{ID: uuid.New(), Name: "Misha"})

	require.Error(t, err)
	var classified *generation.Error
	assert.ErrorAs(t, err, &classified)
}

// TestGetProgress проверяет чтение карты прогресса.
func TestGetProgress(t *testing.T) {
	storyRepo := mocks.NewMockStoryRepository(t)
	progressRepo := mocks.NewMockProgressRepository(t)
	textGen := mocks.NewMockTextGenerator(t)
	imageGen := mocks.NewMockImageGenerator(t)
	svc := newTestService(t, storyRepo, progressRepo, textGen, imageGen)

	storyID := uuid.New()
	progressRepo.On("GetCategoryStatuses", mock.Anything, storyID).Return(map[models.PageType]models.CategoryStatus{
		models.PageTypeCover:  models.CategoryStatusCompleted,
		models.PageTypeNormal: models.CategoryStatusGenerating,
	}, nil).Once()

	progress, err := svc.GetProgress(context.Background(), storyID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryStatusCompleted, progress[models.PageTypeCover])
	assert.Equal(t, models.CategoryStatusGenerating, progress[models.PageTypeNormal])
}
