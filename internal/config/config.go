package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит конфигурацию времени выполнения бота.
type Config struct {
	BotToken                   string
	TelegramTimeout            time.Duration
	TelegramPollingEnabled     bool
	TelegramPollingTimeout     time.Duration
	TelegramPollingInterval    time.Duration
	TelegramPollingLimit       int
	TelegramPollingDropPending bool
	TelegramPollingDropWebhook bool
	TelegramWebhookURL         string
	TelegramWebhookDropPending bool
	WebhookSecret              string

	MongoURI              string
	MongoDatabase         string
	SubmissionsCollection string
	AdminsCollection      string

	RedisURL   string
	SessionTTL time.Duration

	SheetID            string
	SheetTab           string
	ServiceAccountPath string

	Port     string
	LogLevel string
}

// Load читает конфигурацию из переменных окружения, .env загружается заранее.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:                       envOr("PORT", "8080"),
		LogLevel:                   envOr("LOG_LEVEL", "info"),
		TelegramTimeout:            durationOr("TELEGRAM_TIMEOUT", 5*time.Second),
		TelegramPollingEnabled:     boolOr("TELEGRAM_POLLING_ENABLED", true),
		TelegramPollingTimeout:     durationOr("TELEGRAM_POLLING_TIMEOUT", 25*time.Second),
		TelegramPollingInterval:    durationOr("TELEGRAM_POLLING_INTERVAL", time.Second),
		TelegramPollingLimit:       intOr("TELEGRAM_POLLING_LIMIT", 50),
		TelegramPollingDropPending: boolOr("TELEGRAM_POLLING_DROP_PENDING", true),
		TelegramPollingDropWebhook: boolOr("TELEGRAM_POLLING_DROP_WEBHOOK", true),
		TelegramWebhookURL:         envOr("TELEGRAM_WEBHOOK_URL", ""),
		TelegramWebhookDropPending: boolOr("TELEGRAM_WEBHOOK_DROP_PENDING", false),
		MongoDatabase:              envOr("MONGO_DB_NAME", "thesis_bot"),
		SubmissionsCollection:      envOr("MONGO_COLLECTION_SUBMISSIONS", "submissions"),
		AdminsCollection:           envOr("MONGO_COLLECTION_ADMINS", "admins"),
		RedisURL:                   envOr("REDIS_URL", ""),
		SessionTTL:                 durationOr("SESSION_TTL", 24*time.Hour),
		SheetTab:                   envOr("GOOGLE_SHEET_TAB", "Лист1"),
		ServiceAccountPath:         envOr("GOOGLE_SERVICE_ACCOUNT_JSON_PATH", "./service_account.json"),
	}

	cfg.BotToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.WebhookSecret = strings.TrimSpace(os.Getenv("TELEGRAM_WEBHOOK_SECRET"))
	cfg.MongoURI = strings.TrimSpace(os.Getenv("MONGO_URI"))
	cfg.SheetID = strings.TrimSpace(os.Getenv("GOOGLE_SHEET_ID"))

	missing := make([]string, 0, 2)
	if cfg.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func durationOr(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

func intOr(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func boolOr(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
