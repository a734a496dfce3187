// Package generation содержит ядро обработки сбоев генеративных вызовов:
// классификацию ошибок провайдеров и исполнитель повторов с экспоненциальной
// задержкой.
package generation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storybook-server/internal/models"
)

// Code определяет тип ошибки генерации. Закрытое множество.
type Code string

const (
	CodeNetworkError           Code = "NETWORK_ERROR"
	CodeRateLimitExceeded      Code = "RATE_LIMIT_EXCEEDED"
	CodeAuthenticationError    Code = "AUTHENTICATION_ERROR"
	CodeContentPolicyViolation Code = "CONTENT_POLICY_VIOLATION"
	CodeServiceUnavailable     Code = "SERVICE_UNAVAILABLE"
	CodeInvalidInput           Code = "INVALID_INPUT"
	CodeQuotaExceeded          Code = "QUOTA_EXCEEDED"
	CodeUnknownError           Code = "UNKNOWN_ERROR"
)

// Context содержит контекст операции для классифицированной ошибки.
type Context struct {
	Operation string
	UserID    uuid.UUID
	KidID     uuid.UUID
	StoryID   uuid.UUID
	PageType  models.PageType
}

// Error — классифицированная ошибка генеративного вызова.
// Retryable: безопасно повторить автоматически.
// Recoverable: пользователь может добиться успеха своим действием
// (изменить ввод, подождать), независимо от автоматического повтора.
type Error struct {
	Code        Code
	Retryable   bool
	Recoverable bool
	UserMessage string
	Context     Context
	Cause       error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Context.Operation, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Context.Operation)
}

// Unwrap возвращает исходную ошибку.
func (e *Error) Unwrap() error {
	return e.Cause
}

// trait описывает фиксированные свойства кода ошибки.
type trait struct {
	retryable   bool
	recoverable bool
	userMessage string
}

var codeTraits = map[Code]trait{
	CodeNetworkError:           {true, true, "Connection problem. Please check your internet and try again."},
	CodeRateLimitExceeded:      {true, true, "AI service is busy. Please wait a moment and try again."},
	CodeAuthenticationError:    {false, false, "Service configuration problem. Please contact support."},
	CodeContentPolicyViolation: {false, true, "Content doesn't meet safety guidelines. Please try with different details."},
	CodeServiceUnavailable:     {true, true, "AI service is temporarily unavailable. Please try again later."},
	CodeInvalidInput:           {false, true, "Something was wrong with the request. Please adjust the details and try again."},
	CodeQuotaExceeded:          {false, false, "Generation limit reached. Please check your plan or try again tomorrow."},
	CodeUnknownError:           {true, true, "Something went wrong. Please try again."},
}

// classifyRule сопоставляет сигнальные подстроки в сообщении ошибки коду.
// Правила упорядочены: выигрывает первое совпадение.
type classifyRule struct {
	signals []string
	code    Code
}

var classifyRules = []classifyRule{
	{[]string{"timeout", "network", "fetch"}, CodeNetworkError},
	{[]string{"rate limit", "too many requests"}, CodeRateLimitExceeded},
	{[]string{"api key", "unauthorized", "authentication"}, CodeAuthenticationError},
	{[]string{"content policy", "inappropriate", "safety"}, CodeContentPolicyViolation},
	{[]string{"service unavailable", "server error", "503"}, CodeServiceUnavailable},
	{[]string{"invalid", "bad request", "400"}, CodeInvalidInput},
	{[]string{"quota", "limit exceeded"}, CodeQuotaExceeded},
}

// Classify сопоставляет произвольную ошибку коду закрытой таксономии.
// Чистая детерминированная функция: одна и та же ошибка всегда
// классифицируется одинаково; логирование выполняет вызывающая сторона.
// Уже классифицированная ошибка возвращается без изменений.
func Classify(err error, ctx Context) *Error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	code := CodeUnknownError
	if err != nil {
		msg := strings.ToLower(err.Error())
		for _, rule := range classifyRules {
			if containsAny(msg, rule.signals) {
				code = rule.code
				break
			}
		}
	}

	t := codeTraits[code]
	return &Error{
		Code:        code,
		Retryable:   t.retryable,
		Recoverable: t.recoverable,
		UserMessage: t.userMessage,
		Context:     ctx,
		Cause:       err,
	}
}

// NewError создает классифицированную ошибку с заданным кодом, минуя
// сопоставление по сообщению. Используется там, где тип сбоя известен
// заранее (например, ошибка парсинга ответа — это INVALID_INPUT).
func NewError(code Code, ctx Context, cause error) *Error {
	t, ok := codeTraits[code]
	if !ok {
		t = codeTraits[CodeUnknownError]
		code = CodeUnknownError
	}
	return &Error{
		Code:        code,
		Retryable:   t.retryable,
		Recoverable: t.recoverable,
		UserMessage: t.userMessage,
		Context:     ctx,
		Cause:       cause,
	}
}

func containsAny(msg string, signals []string) bool {
	for _, s := range signals {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
