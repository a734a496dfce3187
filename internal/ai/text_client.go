package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Системный промпт текстовой модели. Модель обязана вернуть JSON
// с полями title и pages (см. parser.go).
const storySystemPrompt = `You are a children's book author writing short personalized therapeutic stories.
Given a child's name, age, gender and a problem description, write a multi-page illustrated story
that helps the child deal with the problem. The story must contain a cover page, several normal
narrative pages, one good-choice and one bad-choice page, and short good and bad outcome branches.
Respond with JSON only, no prose, in the following format:
{"title": "...", "pages": [{"pageType": "COVER|NORMAL|GOOD_CHOICE|GOOD|BAD_CHOICE|BAD", "pageNum": 1, "storyText": "...", "imagePrompt": "..."}]}
imagePrompt must describe the illustration for the page in English, mentioning the main character.`

// TextClientConfig содержит конфигурацию клиента текстовой модели.
type TextClientConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// textClient — реализация TextGenerator поверх OpenAI-совместимого API.
type textClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

var _ TextGenerator = (*textClient)(nil)

// NewTextClient создает клиент текстовой модели.
func NewTextClient(cfg TextClientConfig, logger *zap.Logger) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("text generator API key is not configured")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &textClient{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		logger:      logger.Named("TextClient"),
	}, nil
}

// GenerateText выполняет один вызов chat completion. Повторы при сбоях —
// забота вызывающей стороны (generation.WithRetry).
func (c *textClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	userPrompt := buildStoryUserPrompt(req)
	c.logger.Debug("Sending story generation request",
		zap.String("model", c.model),
		zap.Int("prompt_length", len(userPrompt)))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: storySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("Story generation response received",
		zap.Int("response_length", len(content)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))
	return content, nil
}

// buildStoryUserPrompt форматирует данные запроса в пользовательский промпт.
func buildStoryUserPrompt(req TextRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Child: %s, %d years old, %s.\n", req.KidName, req.KidAge, req.KidGender)
	if req.Title != "" {
		fmt.Fprintf(&b, "Story title: %s.\n", req.Title)
	}
	fmt.Fprintf(&b, "Problem to address: %s.\n", req.ProblemDescription)
	if req.Advantages != "" {
		fmt.Fprintf(&b, "Advantages of solving the problem: %s.\n", req.Advantages)
	}
	if req.Disadvantages != "" {
		fmt.Fprintf(&b, "Disadvantages of not solving it: %s.\n", req.Disadvantages)
	}
	return b.String()
}
