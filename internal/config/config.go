// Package config загружает конфигурацию сервиса из переменных окружения
// и файлов секретов.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию сервиса генерации историй.
type Config struct {
	// Настройки HTTP сервера
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding     string        `envconfig:"LOG_ENCODING" default:"json"`

	// Настройки текстовой модели (OpenAI-совместимый API)
	AIBaseURL     string        `envconfig:"AI_BASE_URL" default:""`
	AIModel       string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AITemperature float32       `envconfig:"AI_TEMPERATURE" default:"0.7"`
	AIMaxTokens   int           `envconfig:"AI_MAX_TOKENS" default:"4000"`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	// Секретное поле БЕЗ envconfig тега
	AIAPIKey string

	// Настройки сервера генерации изображений
	ImageAPIBaseURL   string        `envconfig:"IMAGE_API_BASE_URL" default:"http://localhost:8188"`
	ImageAPITimeout   time.Duration `envconfig:"IMAGE_API_TIMEOUT" default:"90s"`
	PromptStyleSuffix string        `envconfig:"PROMPT_STYLE_SUFFIX" default:", warm children's book illustration, soft colors"`
	ImageCandidates   int           `envconfig:"IMAGE_CANDIDATES" default:"1"`

	// Настройки повторов генеративных вызовов
	RetryMaxRetries    int           `envconfig:"RETRY_MAX_RETRIES" default:"3"`
	RetryBaseDelay     time.Duration `envconfig:"RETRY_BASE_DELAY" default:"1s"`
	RetryMaxDelay      time.Duration `envconfig:"RETRY_MAX_DELAY" default:"30s"`
	RetryBackoffFactor float64       `envconfig:"RETRY_BACKOFF_FACTOR" default:"2"`

	// Ограничение параллельных задач категорий на историю
	MaxConcurrentCategories int `envconfig:"MAX_CONCURRENT_CATEGORIES" default:"4"`

	// Настройки PostgreSQL
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"storybook_db"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Настройки Redis (карта прогресса категорий)
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	// Секретное поле БЕЗ envconfig тега
	RedisPassword string

	// CORS
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetMaskedDSN возвращает DSN с замаскированным паролем для логирования.
func (c *Config) GetMaskedDSN() string {
	dsn := c.GetDSN()
	parts := strings.Split(dsn, "@")
	if len(parts) != 2 {
		return "[invalid dsn format]"
	}
	userInfo := strings.Split(parts[0], ":")
	if len(userInfo) >= 2 {
		userInfo[len(userInfo)-1] = "********"
	}
	return strings.Join(userInfo, ":") + "@" + parts[1]
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	// Обязательные секреты
	var err error
	cfg.AIAPIKey, err = readSecret("ai_api_key")
	if err != nil {
		return nil, err
	}
	cfg.DBPassword, err = readSecret("db_password")
	if err != nil {
		return nil, err
	}

	// Redis может работать без пароля
	if pwd, perr := readSecret("redis_password"); perr == nil {
		cfg.RedisPassword = pwd
	}

	return &cfg, nil
}
