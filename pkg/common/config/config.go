package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	ServerPort     string        `yaml:"server_port"`
	ServerHost     string        `yaml:"server_host"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxRequestBody int64         `yaml:"max_request_body"`
	LogLevel       string        `yaml:"log_level"`

	// Model artifact
	ModelPath string `yaml:"model_path"`

	// LLM
	LLMProvider       string        `yaml:"llm_provider"`
	LLMRequestTimeout time.Duration `yaml:"llm_request_timeout"`
	OllamaHost        string        `yaml:"ollama_host"`
	OllamaModel       string        `yaml:"ollama_model"`
	OllamaAPIKey      string        `yaml:"ollama_api_key"`
	OpenAIAPIKey      string        `yaml:"openai_api_key"`
	OpenAIModel       string        `yaml:"openai_model"`
	OpenAIBaseURL     string        `yaml:"openai_base_url"`

	// Rate limiting
	RateLimitRPS   int `yaml:"rate_limit_rps"`
	RateLimitBurst int `yaml:"rate_limit_burst"`

	// Redis (shared rate limiter, optional)
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Kafka (diagnostic events, optional)
	KafkaBrokers         []string `yaml:"kafka_brokers"`
	KafkaDiagnosticTopic string   `yaml:"kafka_diagnostic_topic"`
}

// Default returns the configuration used when neither a file nor the environment say otherwise.
func Default() *Config {
	return &Config{
		ServerPort:     "8000",
		ServerHost:     "0.0.0.0",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   5 * time.Minute,
		MaxRequestBody: 1 << 20,
		LogLevel:       "info",

		ModelPath: filepath.Join("models", "diabetes_model.json"),

		LLMProvider:       "ollama",
		LLMRequestTimeout: 5 * time.Minute,

		RateLimitRPS:   10,
		RateLimitBurst: 20,

		RedisPort: "6379",

		KafkaDiagnosticTopic: "diagnostic-events",
	}
}

// Load layers defaults, an optional YAML file named by CONFIG_FILE and the
// environment, in increasing priority. A .env file in the working directory is
// read into the environment first; variables already set win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.ServerHost = getEnv("SERVER_HOST", cfg.ServerHost)
	cfg.ReadTimeout = getDuration("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getDuration("WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.MaxRequestBody = int64(getIntEnv("MAX_REQUEST_BODY_BYTES", int(cfg.MaxRequestBody)))
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.ModelPath = getEnv("MODEL_PATH", cfg.ModelPath)

	cfg.LLMProvider = getEnv("LLM_PROVIDER", cfg.LLMProvider)
	cfg.LLMRequestTimeout = getDuration("LLM_REQUEST_TIMEOUT", cfg.LLMRequestTimeout)
	cfg.OllamaHost = getEnv("OLLAMA_HOST", cfg.OllamaHost)
	cfg.OllamaModel = getEnv("OLLAMA_MODEL", cfg.OllamaModel)
	cfg.OllamaAPIKey = getEnv("OLLAMA_API_KEY", cfg.OllamaAPIKey)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)

	cfg.RateLimitRPS = getIntEnv("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = getIntEnv("RATE_LIMIT_BURST", cfg.RateLimitBurst)

	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = getEnv("REDIS_PORT", cfg.RedisPort)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getIntEnv("REDIS_DB", cfg.RedisDB)

	cfg.KafkaBrokers = getStringSliceEnv("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaDiagnosticTopic = getEnv("KAFKA_DIAGNOSTIC_TOPIC", cfg.KafkaDiagnosticTopic)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
