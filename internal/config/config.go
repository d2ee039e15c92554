package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAddress        = "0.0.0.0"
	defaultPort           = 8080
	defaultIssuerTimeout  = 10 * time.Second
	defaultMigrationsPath = "migrations"
)

// Config is built once at process start and handed to each component
// constructor. Nothing below the bootstrap layer reads the environment.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Issuer      IssuerConfig
	Provisioner ProvisionerConfig
	Notifier    NotifierConfig
	Review      ReviewConfig
}

type ServerConfig struct {
	Address string
	Port    int
}

type DatabaseConfig struct {
	Host           string
	User           string
	Password       string
	Name           string
	Port           string
	MigrationsPath string
}

type IssuerConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	// BadgeClasses maps an assessment name to the issuer's badge class id.
	BadgeClasses map[string]string
}

type ProvisionerConfig struct {
	BaseURL string
}

type NotifierConfig struct {
	WebhookURL string
}

type ReviewConfig struct {
	// Testing pins reviewer selection to FixedReviewer for reproducible runs.
	Testing       bool
	FixedReviewer string
	// BotUsername is the caller identity used when an assessment does not
	// require human review.
	BotUsername string
}

func Load(logger *slog.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Warn("Failed to load .env file, using environment variables", "error", err)
	}

	return &Config{
		Server: ServerConfig{
			Address: envOrDefault("APP_ADDRESS", defaultAddress),
			Port:    envIntOrDefault(logger, "APP_PORT", defaultPort),
		},
		Database: DatabaseConfig{
			Host:           os.Getenv("DB_HOST"),
			User:           os.Getenv("DB_USER"),
			Password:       os.Getenv("DB_PASSWORD"),
			Name:           os.Getenv("DB_NAME"),
			Port:           os.Getenv("DB_PORT"),
			MigrationsPath: envOrDefault("MIGRATIONS_PATH", defaultMigrationsPath),
		},
		Issuer: IssuerConfig{
			BaseURL:      os.Getenv("BADGR_BASE_URL"),
			Username:     os.Getenv("BADGR_USERNAME"),
			Password:     os.Getenv("BADGR_PASSWORD"),
			Timeout:      envDurationOrDefault(logger, "BADGR_TIMEOUT", defaultIssuerTimeout),
			BadgeClasses: parseBadgeClasses(os.Getenv("BADGR_BADGE_CLASSES")),
		},
		Provisioner: ProvisionerConfig{
			BaseURL: os.Getenv("PROVISIONER_BASE_URL"),
		},
		Notifier: NotifierConfig{
			WebhookURL: os.Getenv("NOTIFIER_WEBHOOK_URL"),
		},
		Review: ReviewConfig{
			Testing:       envBool("REVIEW_TESTING"),
			FixedReviewer: os.Getenv("REVIEW_FIXED_REVIEWER"),
			BotUsername:   envOrDefault("REVIEW_BOT_USERNAME", "assessment-bot"),
		},
	}
}

// parseBadgeClasses reads "Name=classID,Other=classID" pairs.
func parseBadgeClasses(raw string) map[string]string {
	classes := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		name, classID, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		classes[strings.TrimSpace(name)] = strings.TrimSpace(classID)
	}

	return classes
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Name, c.Port,
	)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOrDefault(logger *slog.Logger, key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("Invalid integer env value, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}

	return value
}

func envDurationOrDefault(logger *slog.Logger, key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("Invalid duration env value, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}

	return value
}

func envBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
}
