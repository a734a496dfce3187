// Package ai содержит клиенты внешних генеративных провайдеров:
// текстовой модели (OpenAI-совместимый API) и сервера генерации изображений.
package ai

import "context"

// TextRequest содержит входные данные для генерации полного текста истории.
type TextRequest struct {
	KidName            string
	KidAge             int
	KidGender          string
	Title              string
	ProblemDescription string
	Advantages         string
	Disadvantages      string
}

// TextGenerator определяет способность генерировать текст истории.
type TextGenerator interface {
	// GenerateText возвращает сырой текст ответа модели.
	// Разбор текста в страницы — забота вызывающей стороны.
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// ImageRequest содержит входные данные одного вызова генерации изображения.
type ImageRequest struct {
	Prompt            string
	ReferenceImageURL string // Опциональный референс (например, аватар ребенка)
	Count             int    // Количество кандидатов; 0 означает 1
}

// ImageGenerator определяет способность генерировать изображения.
type ImageGenerator interface {
	// GenerateImage возвращает публичные URL кандидатов (1..N).
	GenerateImage(ctx context.Context, req ImageRequest) ([]string, error)
}
