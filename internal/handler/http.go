// Package handler содержит HTTP слой сервиса: маршруты gin, DTO и
// отображение классифицированных ошибок на HTTP статусы.
package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storybook-server/internal/generation"
	"storybook-server/internal/models"
	"storybook-server/internal/service"
)

// APIError — стандартизированный ответ об ошибке.
// Для классифицированных ошибок генерации клиент получает код таксономии,
// фиксированное пользовательское сообщение и флаг recoverable, по которому
// UI решает, предлагать ли повтор.
type APIError struct {
	Message     string `json:"message"`
	Code        string `json:"code,omitempty"`
	Recoverable *bool  `json:"recoverable,omitempty"`
}

// categoryErrorDTO — ошибка одной категории в ответе генерации изображений.
type categoryErrorDTO struct {
	PageType    models.PageType `json:"pageType"`
	Code        string          `json:"code"`
	Message     string          `json:"message"`
	Retryable   bool            `json:"retryable"`
	Recoverable bool            `json:"recoverable"`
}

// imagesResponse — ответ операций генерации изображений.
type imagesResponse struct {
	Story          *models.Story      `json:"story"`
	CategoryErrors []categoryErrorDTO `json:"categoryErrors,omitempty"`
}

// generateStoryRequest — тело запроса генерации полной истории.
type generateStoryRequest struct {
	AccountID          uuid.UUID         `json:"accountId" binding:"required"`
	Kid                models.KidDetails `json:"kid" binding:"required"`
	Title              string            `json:"title"`
	ProblemDescription string            `json:"problemDescription" binding:"required"`
	Advantages         string            `json:"advantages"`
	Disadvantages      string            `json:"disadvantages"`
}

// generateImagesRequest — тело запросов генерации изображений.
// Данные ребенка передает вызывающая сторона: их хранение — внешняя забота.
type generateImagesRequest struct {
	Kid models.KidDetails `json:"kid"`
}

// avatarRequest — тело запроса генерации аватара.
type avatarRequest struct {
	Kid models.KidDetails `json:"kid" binding:"required"`
}

// StoryHandler обрабатывает HTTP запросы сервиса историй.
type StoryHandler struct {
	service service.StoryService
	logger  *zap.Logger
}

// NewStoryHandler создает новый StoryHandler.
func NewStoryHandler(s service.StoryService, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{
		service: s,
		logger:  logger.Named("StoryHandler"),
	}
}

// Router собирает gin.Engine со всеми маршрутами сервиса.
func (h *StoryHandler) Router(allowOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/stories", h.generateFullStory)
		api.GET("/stories", h.listStories)
		api.GET("/stories/:id", h.getStory)
		api.GET("/stories/:id/progress", h.getProgress)
		api.POST("/stories/:id/images", h.generateAllImages)
		api.POST("/stories/:id/categories/:category/images", h.generateCategoryImages)
		api.POST("/avatar", h.generateAvatar)
	}
	return router
}

func (h *StoryHandler) generateFullStory(c *gin.Context) {
	started := time.Now()
	var req generateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body: " + err.Error()})
		return
	}

	story, err := h.service.GenerateFullStory(c.Request.Context(), service.GenerateStoryRequest{
		AccountID:          req.AccountID,
		Kid:                req.Kid,
		Title:              req.Title,
		ProblemDescription: req.ProblemDescription,
		Advantages:         req.Advantages,
		Disadvantages:      req.Disadvantages,
	})
	metricsRecordOperation("story_generation", err, started)
	if err != nil {
		h.respondError(c, err, "story_generation")
		return
	}
	c.JSON(http.StatusCreated, story)
}

func (h *StoryHandler) generateCategoryImages(c *gin.Context) {
	started := time.Now()
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	category := models.PageType(c.Param("category"))

	req, ok := bindOptionalImagesRequest(c)
	if !ok {
		return
	}

	result, err := h.service.GenerateCategoryImages(c.Request.Context(), storyID, category, req.Kid)
	metricsRecordOperation("category_image_generation", err, started)
	if err != nil {
		h.respondError(c, err, "category_image_generation")
		return
	}
	c.JSON(http.StatusOK, toImagesResponse(result))
}

func (h *StoryHandler) generateAllImages(c *gin.Context) {
	started := time.Now()
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	req, ok := bindOptionalImagesRequest(c)
	if !ok {
		return
	}

	result, err := h.service.GenerateAllCategoryImages(c.Request.Context(), storyID, req.Kid)
	metricsRecordOperation("all_images_generation", err, started)
	if err != nil {
		h.respondError(c, err, "all_images_generation")
		return
	}
	c.JSON(http.StatusOK, toImagesResponse(result))
}

func (h *StoryHandler) generateAvatar(c *gin.Context) {
	started := time.Now()
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body: " + err.Error()})
		return
	}

	url, err := h.service.GenerateAvatarImage(c.Request.Context(), req.Kid)
	metricsRecordOperation("avatar_generation", err, started)
	if err != nil {
		h.respondError(c, err, "avatar_generation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

func (h *StoryHandler) getStory(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	story, err := h.service.GetStory(c.Request.Context(), storyID)
	if err != nil {
		h.respondError(c, err, "get_story")
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) getProgress(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	progress, err := h.service.GetProgress(c.Request.Context(), storyID)
	if err != nil {
		h.respondError(c, err, "get_progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{"storyId": storyID, "categories": progress})
}

func (h *StoryHandler) listStories(c *gin.Context) {
	accountID, err := uuid.Parse(c.Query("accountId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid or missing accountId"})
		return
	}
	stories, err := h.service.ListStories(c.Request.Context(), accountID)
	if err != nil {
		h.respondError(c, err, "list_stories")
		return
	}
	c.JSON(http.StatusOK, stories)
}

// respondError отображает ошибку сервиса на HTTP ответ.
func (h *StoryHandler) respondError(c *gin.Context, err error, operation string) {
	var classified *generation.Error
	if errors.As(err, &classified) {
		metricsRecordFailure(operation, string(classified.Code))
		recoverable := classified.Recoverable
		c.JSON(httpStatusForCode(classified.Code), APIError{
			Message:     classified.UserMessage,
			Code:        string(classified.Code),
			Recoverable: &recoverable,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrStoryNotFound), errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, APIError{Message: "story not found"})
	case errors.Is(err, models.ErrUnknownPageType),
		errors.Is(err, models.ErrEmptyPageSet),
		errors.Is(err, models.ErrMissingKidDetails),
		errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrBadRequest):
		c.JSON(http.StatusBadRequest, APIError{Message: err.Error()})
	default:
		h.logger.Error("Unhandled service error", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: "internal server error"})
	}
}

// httpStatusForCode отображает код таксономии ошибок на HTTP статус.
func httpStatusForCode(code generation.Code) int {
	switch code {
	case generation.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case generation.CodeAuthenticationError:
		return http.StatusUnauthorized
	case generation.CodeQuotaExceeded:
		return http.StatusForbidden
	case generation.CodeContentPolicyViolation:
		return http.StatusUnprocessableEntity
	case generation.CodeInvalidInput:
		return http.StatusBadRequest
	case generation.CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case generation.CodeNetworkError, generation.CodeUnknownError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toImagesResponse(result *service.ImagesResult) imagesResponse {
	resp := imagesResponse{Story: result.Story}
	for pageType, catErr := range result.CategoryErrors {
		metricsRecordCategoryError(string(pageType), string(catErr.Code))
		resp.CategoryErrors = append(resp.CategoryErrors, categoryErrorDTO{
			PageType:    pageType,
			Code:        string(catErr.Code),
			Message:     catErr.UserMessage,
			Retryable:   catErr.Retryable,
			Recoverable: catErr.Recoverable,
		})
	}
	return resp
}

// bindOptionalImagesRequest разбирает опциональное тело запроса генерации
// изображений. Пустое тело допустимо (генерация без референса), но
// присутствующий невалидный JSON — ошибка клиента, а не пустой запрос.
func bindOptionalImagesRequest(c *gin.Context) (generateImagesRequest, bool) {
	var req generateImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return generateImagesRequest{}, true
		}
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body: " + err.Error()})
		return generateImagesRequest{}, false
	}
	return req, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
