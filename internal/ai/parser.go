package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"storybook-server/internal/models"
)

// parsedStory — ожидаемая структура JSON ответа текстовой модели.
type parsedStory struct {
	Title string       `json:"title"`
	Pages []parsedPage `json:"pages"`
}

type parsedPage struct {
	PageType    string `json:"pageType"`
	PageNum     int    `json:"pageNum"`
	StoryText   string `json:"storyText"`
	ImagePrompt string `json:"imagePrompt"`
}

// ParseStoryResponse разбирает текстовый ответ модели в заголовок и
// упорядоченный набор страниц. Любая ошибка разбора или валидации —
// терминальная (INVALID_INPUT на стороне вызывающего), повторять вызов
// модели с тем же ответом бессмысленно.
func ParseStoryResponse(responseText string) (string, []models.StoryPage, error) {
	cleaned := StripMarkdownFences(responseText)
	if cleaned == "" {
		return "", nil, fmt.Errorf("invalid story response: %w", models.ErrNoPagesGenerated)
	}

	var parsed parsedStory
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return "", nil, fmt.Errorf("invalid story response JSON: %w", err)
	}
	if len(parsed.Pages) == 0 {
		return "", nil, fmt.Errorf("invalid story response: %w", models.ErrNoPagesGenerated)
	}

	// (pageType, pageNum) внутри категории должны быть уникальны
	seen := make(map[models.PageKey]struct{}, len(parsed.Pages))
	pages := make([]models.StoryPage, 0, len(parsed.Pages))
	for i, p := range parsed.Pages {
		pageType := models.PageType(strings.ToUpper(strings.TrimSpace(p.PageType)))
		if !pageType.Valid() {
			return "", nil, fmt.Errorf("invalid story response: page %d: %w: %q", i, models.ErrUnknownPageType, p.PageType)
		}
		page := models.StoryPage{
			PageType:    pageType,
			PageNum:     p.PageNum,
			StoryText:   p.StoryText,
			ImagePrompt: p.ImagePrompt,
		}
		key := page.Key()
		if _, dup := seen[key]; dup {
			return "", nil, fmt.Errorf("invalid story response: duplicate page %s/%d", pageType, p.PageNum)
		}
		seen[key] = struct{}{}
		pages = append(pages, page)
	}

	return strings.TrimSpace(parsed.Title), pages, nil
}

// StripMarkdownFences снимает обрамление ```json ... ``` вокруг ответа модели
// и обрезает текст до внешних фигурных скобок. Модели регулярно заворачивают
// JSON в markdown, несмотря на инструкции в системном промпте.
func StripMarkdownFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}
