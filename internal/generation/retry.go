package generation

import (
	"context"
	"math"
	"time"
)

// Значения по умолчанию для исполнителя повторов.
const (
	DefaultMaxRetries    = 3
	DefaultBaseDelay     = 1 * time.Second
	DefaultMaxDelay      = 30 * time.Second
	DefaultBackoffFactor = 2.0
)

// RetryConfig содержит настройки исполнителя повторов.
type RetryConfig struct {
	MaxRetries    int           // Количество повторов после первой попытки; всего попыток MaxRetries+1
	BaseDelay     time.Duration // Задержка перед вторым вызовом
	MaxDelay      time.Duration // Потолок задержки
	BackoffFactor float64       // Множитель экспоненциального роста
}

// DefaultRetryConfig возвращает конфигурацию повторов по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    DefaultMaxRetries,
		BaseDelay:     DefaultBaseDelay,
		MaxDelay:      DefaultMaxDelay,
		BackoffFactor: DefaultBackoffFactor,
	}
}

// Normalized подставляет значения по умолчанию вместо незаполненных полей.
// MaxRetries = 0 — валидная настройка (одна попытка, без повторов);
// значением по умолчанию заменяется только отрицательное.
func (c RetryConfig) Normalized() RetryConfig {
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = DefaultBackoffFactor
	}
	return c
}

// Delay возвращает задержку перед повтором после неудачной попытки attempt
// (attempt нумеруется с 1): min(BaseDelay * BackoffFactor^(attempt-1), MaxDelay).
// Джиттер намеренно не добавляется: последовательность задержек
// детерминирована, обертка с джиттером — забота вызывающей стороны.
func (c RetryConfig) Delay(attempt int) time.Duration {
	c = c.Normalized()
	if attempt < 1 {
		attempt = 1
	}
	d := float64(c.BaseDelay) * math.Pow(c.BackoffFactor, float64(attempt-1))
	if d > float64(c.MaxDelay) || d < 0 {
		return c.MaxDelay
	}
	return time.Duration(d)
}

// sleepFn выделен в переменную, чтобы тесты могли фиксировать расписание
// задержек без реального ожидания.
var sleepFn = sleepContext

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WithRetry выполняет op, классифицирует сбои и повторяет вызов с
// экспоненциальной задержкой. Успех возвращается немедленно независимо от
// номера попытки. Неповторяемая ошибка или исчерпанный бюджет повторов
// возвращают классифицированную ошибку последней попытки.
//
// Побочных эффектов сверх эффектов самой op нет. Операция может быть
// неидемпотентной: повтор целиком перезапускает ее, что может привести к
// дублирующим вызовам провайдера — осознанный компромисс.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, errCtx Context, op func(context.Context) (T, error)) (T, error) {
	var zero T
	cfg = cfg.Normalized()

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		classified := Classify(err, errCtx)
		if !classified.Retryable || attempt > cfg.MaxRetries {
			return zero, classified
		}

		if sleepErr := sleepFn(ctx, cfg.Delay(attempt)); sleepErr != nil {
			return zero, Classify(sleepErr, errCtx)
		}
	}
}
