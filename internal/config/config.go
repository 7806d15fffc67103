package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug               bool
	SourceURL           string `validate:"required,url"`
	BotToken            string
	NotificationChatID  string `validate:"required_if=NotifyChanges true"`
	NotifyChanges       bool
	DbConnectionString  string
	RedisAddr           string `validate:"omitempty,hostname_port"`
	RedisPassword       string
	RedisDB             int           `validate:"gte=0,lte=15"`
	CacheTTL            time.Duration `validate:"gt=0"`
	HideFull            bool
	ProfileFile         string `validate:"omitempty,file"`
	OpenAIApiKey        string
	OpenAILanguageModel string `validate:"required_with=OpenAIApiKey"`
	MetricsFile         string
	FetchRetries        int     `validate:"gte=0,lte=10"`
	FetchRPS            float64 `validate:"gt=0"`
}

// ErrNoBotToken is returned by RequireBot when BOT_TELEGRAM_TOKEN is empty.
var ErrNoBotToken = errors.New("bot token not found in the environment (BOT_TELEGRAM_TOKEN)")

var config *Config

// GetConfig loads the configuration once and exits the process when it is invalid.
func GetConfig() *Config {
	if config != nil {
		return config
	}
	conf, err := Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	config = conf
	return config
}

// Load reads the environment, after importing an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	conf := &Config{
		SourceURL:           os.Getenv("BOT_SOURCE_URL"),
		BotToken:            os.Getenv("BOT_TELEGRAM_TOKEN"),
		NotificationChatID:  os.Getenv("BOT_NOTIFICATION_CHAT_ID"),
		DbConnectionString:  os.Getenv("BOT_DB_STRING"),
		RedisAddr:           os.Getenv("BOT_REDIS_ADDR"),
		RedisPassword:       os.Getenv("BOT_REDIS_PASSWORD"),
		ProfileFile:         os.Getenv("BOT_PROFILE_FILE"),
		OpenAIApiKey:        os.Getenv("BOT_OPENAI_API_KEY"),
		OpenAILanguageModel: os.Getenv("BOT_OPENAI_LANGUAGE_MODEL"),
		MetricsFile:         os.Getenv("BOT_METRICS_FILE"),
	}

	var err error
	if conf.Debug, err = envBool("BOT_DEBUG", false); err != nil {
		return nil, err
	}
	if conf.HideFull, err = envBool("BOT_HIDE_FULL", true); err != nil {
		return nil, err
	}
	if conf.NotifyChanges, err = envBool("BOT_NOTIFY_CHANGES", false); err != nil {
		return nil, err
	}
	if conf.RedisDB, err = envInt("BOT_REDIS_DB", 0); err != nil {
		return nil, err
	}
	if conf.FetchRetries, err = envInt("BOT_FETCH_RETRIES", 2); err != nil {
		return nil, err
	}
	if conf.CacheTTL, err = envDuration("BOT_CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if conf.FetchRPS, err = envFloat("BOT_FETCH_RPS", 1.5); err != nil {
		return nil, err
	}

	if err = validator.New().Struct(conf); err != nil {
		return nil, err
	}

	if conf.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Debug("configuration parameters",
		"BOT_DEBUG", conf.Debug,
		"BOT_SOURCE_URL", conf.SourceURL,
		"BOT_NOTIFICATION_CHAT_ID", conf.NotificationChatID,
		"BOT_NOTIFY_CHANGES", conf.NotifyChanges,
		"BOT_REDIS_ADDR", conf.RedisAddr,
		"BOT_CACHE_TTL", conf.CacheTTL,
		"BOT_HIDE_FULL", conf.HideFull,
		"BOT_PROFILE_FILE", conf.ProfileFile,
		"BOT_OPENAI_LANGUAGE_MODEL", conf.OpenAILanguageModel,
		"BOT_METRICS_FILE", conf.MetricsFile,
		"BOT_FETCH_RETRIES", conf.FetchRetries,
		"BOT_FETCH_RPS", conf.FetchRPS)

	return conf, nil
}

// RequireBot checks the settings the Telegram commands need.
func (c *Config) RequireBot() error {
	if c.BotToken == "" {
		return ErrNoBotToken
	}
	return nil
}

func envBool(name string, def bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch v {
	case "":
		return def, nil
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("%s: invalid boolean %q", name, v)
}

func envInt(name string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func envFloat(name string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

func envDuration(name string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}
