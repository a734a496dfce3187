package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ImageClientConfig содержит конфигурацию клиента сервера генерации изображений.
type ImageClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	PromptStyleSuffix string // Суффикс стиля, добавляемый к каждому промпту
}

// imageAPIRequest — тело запроса к серверу генерации изображений.
type imageAPIRequest struct {
	Prompt            string `json:"prompt"`
	ReferenceImageURL string `json:"reference_image_url,omitempty"`
	Count             int    `json:"count"`
}

// imageAPIResponse — тело ответа сервера генерации изображений.
type imageAPIResponse struct {
	ImageURLs []string `json:"image_urls"`
}

// httpImageClient — реализация ImageGenerator поверх внутреннего HTTP сервера
// генерации изображений.
type httpImageClient struct {
	baseURL     string
	client      *http.Client
	styleSuffix string
	logger      *zap.Logger
}

var _ ImageGenerator = (*httpImageClient)(nil)

// NewImageClient создает клиент сервера генерации изображений.
func NewImageClient(cfg ImageClientConfig, logger *zap.Logger) (ImageGenerator, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("image generator base URL (IMAGE_API_BASE_URL) is not configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	return &httpImageClient{
		baseURL:     cfg.BaseURL,
		client:      &http.Client{Timeout: cfg.Timeout},
		styleSuffix: cfg.PromptStyleSuffix,
		logger:      logger.Named("ImageClient"),
	}, nil
}

// GenerateImage выполняет один вызов генерации и возвращает URL кандидатов.
// Тело ответа с ошибкой провайдера пробрасывается в текст ошибки, чтобы
// классификатор мог распознать сигналы (rate limit, content policy и т.д.).
func (c *httpImageClient) GenerateImage(ctx context.Context, req ImageRequest) ([]string, error) {
	log := c.logger.With(zap.String("api_url", c.baseURL))

	count := req.Count
	if count <= 0 {
		count = 1
	}
	fullPrompt := req.Prompt + c.styleSuffix

	reqBody, err := json.Marshal(imageAPIRequest{
		Prompt:            fullPrompt,
		ReferenceImageURL: req.ReferenceImageURL,
		Count:             count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	endpointURL := c.baseURL + "/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	log.Debug("Sending request to image API", zap.Int("prompt_length", len(fullPrompt)), zap.Int("count", count))
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Warn("Image API returned non-OK status",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("response_body", bodyBytes))
		return nil, fmt.Errorf("image API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	if readErr != nil {
		return nil, fmt.Errorf("failed to read response body: %w", readErr)
	}

	var apiResp imageAPIResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode image API response: %w", err)
	}
	if len(apiResp.ImageURLs) == 0 {
		return nil, errors.New("image API returned no image URLs")
	}

	log.Debug("Image API call successful", zap.Int("candidates", len(apiResp.ImageURLs)))
	return apiResp.ImageURLs, nil
}
