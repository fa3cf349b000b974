package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Env string

	// Server
	ServerAddr    string
	CORSOrigins   []string
	MaxTextLength int

	// Logging
	LogLevel string

	// Analysis
	KeywordTopN           int
	KeywordTokenizer      string // "unicode" or "whitespace"
	KeywordExtraStopwords []string
	LexiconOverlayPath    string
	StripMarkdown         bool

	// Valkey backed rate limiting
	ValkeyAddr      string
	ValkeyPassword  string
	ValkeyTLS       bool
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Kafka
	KafkaBroker          string
	KafkaGroupID         string
	KafkaFeedbackTopic   string
	KafkaResultsTopic    string
	KafkaTransactionalID string
}

const (
	TokenizerUnicode    = "unicode"
	TokenizerWhitespace = "whitespace"
)

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:                   AppEnv(),
		ServerAddr:            getEnv("SERVER_ADDR", ":5000"),
		CORSOrigins:           splitList(getEnv("CORS_ORIGINS", "*")),
		MaxTextLength:         getEnvInt("MAX_TEXT_LENGTH", 10000),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		KeywordTopN:           getEnvInt("KEYWORD_TOP_N", 5),
		KeywordTokenizer:      strings.ToLower(getEnv("KEYWORD_TOKENIZER", TokenizerUnicode)),
		KeywordExtraStopwords: splitList(getEnv("KEYWORD_EXTRA_STOPWORDS", "")),
		LexiconOverlayPath:    getEnv("LEXICON_OVERLAY_PATH", ""),
		StripMarkdown:         getEnvBool("ANALYZER_STRIP_MARKDOWN", false),
		ValkeyAddr:            getEnv("VALKEY_INIT_ADDRESS", ""),
		ValkeyPassword:        getEnv("VALKEY_PASSWORD", ""),
		ValkeyTLS:             getEnvBool("VALKEY_TLS", false),
		RateLimitMax:          getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow:       getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		KafkaBroker:           getEnv("KAFKA_BROKER", "localhost:29092"),
		KafkaGroupID:          getEnv("KAFKA_CONSUMER_GROUP_ID", "fieldpulse-consumer-group"),
		KafkaFeedbackTopic:    getEnv("KAFKA_FEEDBACK_TOPIC", "feedback-submitted"),
		KafkaResultsTopic:     getEnv("KAFKA_RESULTS_TOPIC", "feedback-analyzed"),
		KafkaTransactionalID:  getEnv("KAFKA_TRANSACTIONAL_ID", "fieldpulse-producer-1"),
	}
}

// IsDev reports whether the service runs in a development environment.
func (c *Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}

// RateLimitStoreEnabled reports whether a valkey address was configured.
func (c *Config) RateLimitStoreEnabled() bool {
	return c.ValkeyAddr != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
