package models

import (
	"time"

	"github.com/google/uuid"
)

// PageType определяет категорию страницы истории.
// Совпадает с типом ENUM 'page_type' в БД.
type PageType string

const (
	PageTypeCover      PageType = "COVER"       // Обложка книги
	PageTypeNormal     PageType = "NORMAL"      // Основное повествование
	PageTypeGood       PageType = "GOOD"        // Позитивная ветка
	PageTypeBad        PageType = "BAD"         // Негативная ветка
	PageTypeGoodChoice PageType = "GOOD_CHOICE" // Страница выбора, ведущая к позитивной ветке
	PageTypeBadChoice  PageType = "BAD_CHOICE"  // Страница выбора, ведущая к негативной ветке
)

// AllPageTypes перечисляет все известные категории в порядке чтения книги.
var AllPageTypes = []PageType{
	PageTypeCover,
	PageTypeNormal,
	PageTypeGoodChoice,
	PageTypeGood,
	PageTypeBadChoice,
	PageTypeBad,
}

// Valid reports whether pt is one of the known page types.
func (pt PageType) Valid() bool {
	switch pt {
	case PageTypeCover, PageTypeNormal, PageTypeGood, PageTypeBad, PageTypeGoodChoice, PageTypeBadChoice:
		return true
	}
	return false
}

// StoryPage представляет одну страницу истории.
// Порядок внутри категории задается PageNum, а не позицией в срезе.
type StoryPage struct {
	PageType         PageType `json:"pageType" db:"page_type"`
	PageNum          int      `json:"pageNum" db:"page_num"`
	StoryText        string   `json:"storyText" db:"story_text"`
	ImagePrompt      string   `json:"imagePrompt" db:"image_prompt"`
	SelectedImageURL string   `json:"selectedImageUrl,omitempty" db:"selected_image_url"` // Пусто, пока изображение не сгенерировано
	ImagesURLs       []string `json:"imagesUrls,omitempty" db:"images_urls"`              // Кандидаты одного вызова генерации
}

// Key возвращает идентичность страницы внутри истории.
// Слияние результатов категорий всегда идет по этому ключу, никогда по индексу.
func (p StoryPage) Key() PageKey {
	return PageKey{PageType: p.PageType, PageNum: p.PageNum}
}

// PageKey однозначно идентифицирует страницу внутри истории.
type PageKey struct {
	PageType PageType
	PageNum  int
}

// KidDetails содержит данные ребенка, для которого персонализируется история.
type KidDetails struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Age               int       `json:"age"`
	Gender            string    `json:"gender"`
	ReferenceImageURL string    `json:"referenceImageUrl,omitempty"` // Аватар/фото для референса генерации
}

// Story представляет персонализированную иллюстрированную историю.
type Story struct {
	ID                 uuid.UUID   `json:"id" db:"id"`
	KidID              uuid.UUID   `json:"kidId" db:"kid_id"`
	AccountID          uuid.UUID   `json:"accountId" db:"account_id"` // Владелец истории
	Title              string      `json:"title" db:"title"`
	ProblemDescription string      `json:"problemDescription" db:"problem_description"`
	Advantages         string      `json:"advantages,omitempty" db:"advantages"`
	Disadvantages      string      `json:"disadvantages,omitempty" db:"disadvantages"`
	Status             StoryStatus `json:"status" db:"status"`
	Pages              []StoryPage `json:"pages" db:"pages"`
	CreatedAt          time.Time   `json:"createdAt" db:"created_at"`
	LastUpdated        time.Time   `json:"lastUpdated" db:"last_updated"`
}

// StorySummary — сокращенное представление истории для списков.
type StorySummary struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	KidID       uuid.UUID   `json:"kidId" db:"kid_id"`
	Title       string      `json:"title" db:"title"`
	Status      StoryStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	LastUpdated time.Time   `json:"lastUpdated" db:"last_updated"`
}

// PagesByType возвращает подмножество страниц указанной категории,
// сохраняя их порядок в Pages.
func (s *Story) PagesByType(pt PageType) []StoryPage {
	var pages []StoryPage
	for _, p := range s.Pages {
		if p.PageType == pt {
			pages = append(pages, p)
		}
	}
	return pages
}

// PageTypes возвращает список категорий, присутствующих в истории,
// в порядке первого появления.
func (s *Story) PageTypes() []PageType {
	seen := make(map[PageType]struct{}, len(AllPageTypes))
	var types []PageType
	for _, p := range s.Pages {
		if _, ok := seen[p.PageType]; ok {
			continue
		}
		seen[p.PageType] = struct{}{}
		types = append(types, p.PageType)
	}
	return types
}

// MergePages вливает страницы result в историю по ключу (PageType, PageNum).
// Страницы других категорий не затрагиваются даже при совпадении PageNum.
// Операция коммутативна и идемпотентна: повторное применение того же
// результата не меняет историю.
func (s *Story) MergePages(result []StoryPage) {
	if len(result) == 0 {
		return
	}
	byKey := make(map[PageKey]StoryPage, len(result))
	for _, p := range result {
		byKey[p.Key()] = p
	}
	for i, existing := range s.Pages {
		if merged, ok := byKey[existing.Key()]; ok {
			s.Pages[i] = merged
		}
	}
}

// CompletionPercent возвращает процент готовности истории:
// доля страниц с выбранным изображением от общего числа страниц.
func (s *Story) CompletionPercent() int {
	if len(s.Pages) == 0 {
		return 0
	}
	done := 0
	for _, p := range s.Pages {
		if p.SelectedImageURL != "" {
			done++
		}
	}
	return done * 100 / len(s.Pages)
}

// Touch обновляет LastUpdated, гарантируя его монотонность.
func (s *Story) Touch(now time.Time) {
	if now.After(s.LastUpdated) {
		s.LastUpdated = now
	}
}
