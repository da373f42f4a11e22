package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	BotModeEmbedded = "embedded"
	BotModeOff      = "off"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	AppPort int

	StorageDriver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MigrationsPath   string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration

	TelegramBotToken    string
	TelegramBotUsername string
	BotMode             string
	BotAPISecret        string
	BackendURL          string
	SiteURL             string
	AdminID             int64

	RegistrationCodeTTL time.Duration
	CleanupInterval     time.Duration
	PollInterval        time.Duration
	NotifyChannel       string
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "proxedu"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))
	cfg.AppPort = cast.ToInt(getOrReturnDefault("APP_PORT", 8080))

	cfg.StorageDriver = cast.ToString(getOrReturnDefault("STORAGE_DRIVER", StorageDriverPostgres))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "proxedu"))
	cfg.MigrationsPath = cast.ToString(getOrReturnDefault("MIGRATIONS_PATH", ""))

	cfg.RedisHost = cast.ToString(getOrReturnDefault("REDIS_HOST", "localhost"))
	cfg.RedisPort = cast.ToString(getOrReturnDefault("REDIS_PORT", "6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))
	cfg.RedisDB = cast.ToInt(getOrReturnDefault("REDIS_DB", 0))

	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", "your-secret-key"))
	cfg.JWTIssuer = cast.ToString(getOrReturnDefault("JWT_ISSUER", "proxedu"))
	cfg.TokenTTL = cast.ToDuration(getOrReturnDefault("TOKEN_TTL", 7*24*time.Hour))

	cfg.TelegramBotToken = cast.ToString(getOrReturnDefault("TG_BOT_TOKEN", ""))
	cfg.TelegramBotUsername = cast.ToString(getOrReturnDefault("TG_BOT_USERNAME", "activlarBot"))
	cfg.BotMode = cast.ToString(getOrReturnDefault("BOT_MODE", BotModeEmbedded))
	cfg.BotAPISecret = cast.ToString(getOrReturnDefault("BOT_API_SECRET", ""))
	cfg.BackendURL = cast.ToString(getOrReturnDefault("BACKEND_URL", "http://localhost:8080"))
	cfg.SiteURL = cast.ToString(getOrReturnDefault("SITE_URL", "https://prox.uz"))
	cfg.AdminID = cast.ToInt64(getOrReturnDefault("ADMIN_ID", 0))

	cfg.RegistrationCodeTTL = cast.ToDuration(getOrReturnDefault("REGISTRATION_CODE_TTL", 10*time.Minute))
	cfg.CleanupInterval = cast.ToDuration(getOrReturnDefault("CLEANUP_INTERVAL", time.Minute))
	cfg.PollInterval = cast.ToDuration(getOrReturnDefault("POLL_INTERVAL", 3*time.Second))
	cfg.NotifyChannel = cast.ToString(getOrReturnDefault("NOTIFY_CHANNEL", "admin:notifications"))

	return cfg
}

func (c Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
	)
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// BotURL is the deep link base; the registration code goes into the start parameter.
func (c Config) BotURL() string {
	return "https://t.me/" + c.TelegramBotUsername
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
