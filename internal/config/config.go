// Package config loads the widget server configuration from environment
// variables.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates all configuration sections.
type Config struct {
	Server ServerConfig
	Widget WidgetConfig
	AI     AIConfig
}

// Load reads every section from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	widget, err := loadWidgetConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Widget: widget, AI: ai}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// WidgetConfig carries the widget timings, font bounds and canned texts.
type WidgetConfig struct {
	TickInterval  time.Duration
	ReplyDelay    time.Duration
	WelcomeDelay  time.Duration
	PulseDuration time.Duration
	FontMin       int
	FontMax       int
	FontSize      int
	WelcomeText   string
	CannedReply   string
	ExportDir     string
}

func loadWidgetConfig() (WidgetConfig, error) {
	tick, err := parseMillisEnv("WIDGET_TICK_INTERVAL_MS", 50*time.Millisecond)
	if err != nil {
		return WidgetConfig{}, err
	}
	replyDelay, err := parseMillisEnv("WIDGET_REPLY_DELAY_MS", 2000*time.Millisecond)
	if err != nil {
		return WidgetConfig{}, err
	}
	welcomeDelay, err := parseMillisEnv("WIDGET_WELCOME_DELAY_MS", 1000*time.Millisecond)
	if err != nil {
		return WidgetConfig{}, err
	}
	pulse, err := parseMillisEnv("WIDGET_PULSE_DURATION_MS", 1000*time.Millisecond)
	if err != nil {
		return WidgetConfig{}, err
	}

	fontMin, err := parseIntEnv("WIDGET_FONT_MIN", 12)
	if err != nil {
		return WidgetConfig{}, err
	}
	fontMax, err := parseIntEnv("WIDGET_FONT_MAX", 20)
	if err != nil {
		return WidgetConfig{}, err
	}
	fontSize, err := parseIntEnv("WIDGET_FONT_DEFAULT", 14)
	if err != nil {
		return WidgetConfig{}, err
	}
	if fontMin > fontMax {
		return WidgetConfig{}, fmt.Errorf("WIDGET_FONT_MIN %d exceeds WIDGET_FONT_MAX %d", fontMin, fontMax)
	}

	return WidgetConfig{
		TickInterval:  tick,
		ReplyDelay:    replyDelay,
		WelcomeDelay:  welcomeDelay,
		PulseDuration: pulse,
		FontMin:       fontMin,
		FontMax:       fontMax,
		FontSize:      fontSize,
		WelcomeText:   getEnvOrDefault("WIDGET_WELCOME_TEXT", "Hello! How can I assist you today?"),
		CannedReply:   getEnvOrDefault("WIDGET_CANNED_REPLY", "Hello! This is a static response from the bot."),
		ExportDir:     getEnvOrDefault("WIDGET_EXPORT_DIR", "."),
	}, nil
}

// AIConfig describes the optional Ark-backed response provider.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds an Ark chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + Model or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseMillisEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return time.Duration(val) * time.Millisecond, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
