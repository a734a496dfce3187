package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-server/internal/ai"
	"storybook-server/internal/models"
)

const validStoryJSON = `{
	"title": "Brave Misha",
	"pages": [
		{"pageType": "COVER", "pageNum": 1, "storyText": "", "imagePrompt": "book cover"},
		{"pageType": "NORMAL", "pageNum": 1, "storyText": "Once upon a time", "imagePrompt": "forest"},
		{"pageType": "NORMAL", "pageNum": 2, "storyText": "Misha walked", "imagePrompt": "path"},
		{"pageType": "GOOD", "pageNum": 1, "storyText": "He helped", "imagePrompt": "helping"},
		{"pageType": "BAD", "pageNum": 1, "storyText": "He ignored", "imagePrompt": "ignoring"}
	]
}`

// TestParseStoryResponse_Valid проверяет разбор корректного ответа.
func TestParseStoryResponse_Valid(t *testing.T) {
	title, pages, err := ai.ParseStoryResponse(validStoryJSON)
	require.NoError(t, err)
	assert.Equal(t, "Brave Misha", title)
	require.Len(t, pages, 5)
	assert.Equal(t, models.PageTypeCover, pages[0].PageType)
	assert.Equal(t, "forest", pages[1].ImagePrompt)
	assert.Equal(t, 2, pages[2].PageNum)
}

// TestParseStoryResponse_MarkdownFences проверяет снятие markdown
// обрамления вокруг JSON.
func TestParseStoryResponse_MarkdownFences(t *testing.T) {
	wrapped := "```json\n" + validStoryJSON + "\n```"
	title, pages, err := ai.ParseStoryResponse(wrapped)
	require.NoError(t, err)
	assert.Equal(t, "Brave Misha", title)
	assert.Len(t, pages, 5)

	// Болтовня модели вокруг JSON тоже отбрасывается
	chatty := "Here is your story:\n" + validStoryJSON + "\nHope you like it!"
	_, pages, err = ai.ParseStoryResponse(chatty)
	require.NoError(t, err)
	assert.Len(t, pages, 5)
}

// TestParseStoryResponse_LowercasePageType проверяет нормализацию регистра.
func TestParseStoryResponse_LowercasePageType(t *testing.T) {
	_, pages, err := ai.ParseStoryResponse(`{"title":"T","pages":[{"pageType":"cover","pageNum":1}]}`)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, models.PageTypeCover, pages[0].PageType)
}

// TestParseStoryResponse_Invalid проверяет терминальные ошибки разбора.
func TestParseStoryResponse_Invalid(t *testing.T) {
	t.Run("not json", func(t *testing.T) {
		_, _, err := ai.ParseStoryResponse("I'm sorry, I can't write that story.")
		assert.Error(t, err)
	})

	t.Run("empty response", func(t *testing.T) {
		_, _, err := ai.ParseStoryResponse("   ")
		assert.ErrorIs(t, err, models.ErrNoPagesGenerated)
	})

	t.Run("no pages", func(t *testing.T) {
		_, _, err := ai.ParseStoryResponse(`{"title":"T","pages":[]}`)
		assert.ErrorIs(t, err, models.ErrNoPagesGenerated)
	})

	t.Run("unknown page type", func(t *testing.T) {
		_, _, err := ai.ParseStoryResponse(`{"title":"T","pages":[{"pageType":"EPILOGUE","pageNum":1}]}`)
		assert.ErrorIs(t, err, models.ErrUnknownPageType)
	})

	t.Run("duplicate page key", func(t *testing.T) {
		_, _, err := ai.ParseStoryResponse(`{"title":"T","pages":[
			{"pageType":"NORMAL","pageNum":1},
			{"pageType":"NORMAL","pageNum":1}
		]}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("same pageNum in different categories is fine", func(t *testing.T) {
		_, pages, err := ai.ParseStoryResponse(`{"title":"T","pages":[
			{"pageType":"GOOD","pageNum":1},
			{"pageType":"BAD","pageNum":1}
		]}`)
		require.NoError(t, err)
		assert.Len(t, pages, 2)
	})
}

// TestStripMarkdownFences проверяет вспомогательную очистку текста.
func TestStripMarkdownFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ai.StripMarkdownFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, ai.StripMarkdownFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, ai.StripMarkdownFences(`prefix {"a":1} suffix`))
	assert.Equal(t, `{"a":1}`, ai.StripMarkdownFences(`{"a":1}`))
}
