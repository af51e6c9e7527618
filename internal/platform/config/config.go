package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4-turbo-preview"
)

var (
	errInvalidPort    = errors.New("config: invalid PORT number")
	errInvalidBaseURL = errors.New("config: OPENAI_BASE_URL must be an absolute http(s) URL")
	errEmptyModel     = errors.New("config: OPENAI_MODEL must not be empty")
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port     string
	LogLevel string
	OpenAI   OpenAIConfig
}

// OpenAIConfig describes the chat-completion API the proxy forwards to.
// An empty APIKey is allowed at load time; requests fail until it is set.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Load reads an optional .env file from the working directory, then builds
// the configuration from environment variables with sensible defaults.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading .env: %w", err)
	}

	cfg := Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: getEnv("OPENAI_BASE_URL", defaultBaseURL),
			Model:   getEnv("OPENAI_MODEL", defaultModel),
		},
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	u, err := url.Parse(c.OpenAI.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidBaseURL, c.OpenAI.BaseURL)
	}

	if c.OpenAI.Model == "" {
		return errEmptyModel
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
