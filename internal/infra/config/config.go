package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Encoder    EncoderConfig    `yaml:"encoder"`
	Chat       ChatConfig       `yaml:"chat"`
	Unanswered UnansweredConfig `yaml:"unanswered"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// CorpusConfig selects where the FAQ corpus is loaded from.
type CorpusConfig struct {
	Source   string              `yaml:"source"` // file | postgres | object
	Path     string              `yaml:"path"`
	Encoding string              `yaml:"encoding"` // utf-8 | cp1252
	Postgres PostgresConfig      `yaml:"postgres"`
	Object   ObjectStorageConfig `yaml:"object"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ObjectStorageConfig points at a CSV corpus object in an S3-compatible bucket.
type ObjectStorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	UseSSL    bool   `yaml:"useSsl"`
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
}

// EncoderConfig selects and configures the text encoder implementation.
type EncoderConfig struct {
	Type   string              `yaml:"type"` // tfidf | openai | local
	OpenAI OpenAIEncoderConfig `yaml:"openai"`
	Local  LocalEncoderConfig  `yaml:"local"`
}

// OpenAIEncoderConfig configures the remote embeddings client.
type OpenAIEncoderConfig struct {
	BaseURL   string        `yaml:"baseUrl"`
	APIKeyEnv string        `yaml:"apiKeyEnv"`
	Model     string        `yaml:"model"`
	Timeout   time.Duration `yaml:"timeout"`
}

// LocalEncoderConfig configures the in-process sentence-embedding model.
type LocalEncoderConfig struct {
	ModelName string `yaml:"modelName"`
	ModelDir  string `yaml:"modelDir"`
}

// ChatConfig carries the caller-owned presentation knobs: the confidence
// thresholds and the default top-N size. The matching engine never reads
// these.
type ChatConfig struct {
	DirectThreshold   float64 `yaml:"directThreshold"`
	PossibleThreshold float64 `yaml:"possibleThreshold"`
	TopMatches        int     `yaml:"topMatches"`
}

// UnansweredConfig controls the unanswered-query log and trending counters.
type UnansweredConfig struct {
	Target   string         `yaml:"target"` // file | postgres
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
	Trending TrendingConfig `yaml:"trending"`
}

// TrendingConfig contains connection information for the frequency counters.
type TrendingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		cfg.HTTP.AllowedOrigins = origins
	}
	if v := os.Getenv("CORPUS_SOURCE"); v != "" {
		cfg.Corpus.Source = v
	}
	if v := os.Getenv("CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("CORPUS_ENCODING"); v != "" {
		cfg.Corpus.Encoding = v
	}
	if v := os.Getenv("CORPUS_POSTGRES_DSN"); v != "" {
		cfg.Corpus.Postgres.DSN = v
	}
	if v := os.Getenv("CORPUS_OBJECT_ENDPOINT"); v != "" {
		cfg.Corpus.Object.Endpoint = v
	}
	if v := os.Getenv("CORPUS_OBJECT_ACCESS_KEY"); v != "" {
		cfg.Corpus.Object.AccessKey = v
	}
	if v := os.Getenv("CORPUS_OBJECT_SECRET_KEY"); v != "" {
		cfg.Corpus.Object.SecretKey = v
	}
	if v := os.Getenv("CORPUS_OBJECT_BUCKET"); v != "" {
		cfg.Corpus.Object.Bucket = v
	}
	if v := os.Getenv("CORPUS_OBJECT_KEY"); v != "" {
		cfg.Corpus.Object.Key = v
	}
	if v := os.Getenv("ENCODER_TYPE"); v != "" {
		cfg.Encoder.Type = v
	}
	if v := os.Getenv("ENCODER_OPENAI_BASE_URL"); v != "" {
		cfg.Encoder.OpenAI.BaseURL = v
	}
	if v := os.Getenv("ENCODER_OPENAI_MODEL"); v != "" {
		cfg.Encoder.OpenAI.Model = v
	}
	if v := os.Getenv("ENCODER_LOCAL_MODEL_DIR"); v != "" {
		cfg.Encoder.Local.ModelDir = v
	}
	if v := os.Getenv("CHAT_DIRECT_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Chat.DirectThreshold = parsed
		}
	}
	if v := os.Getenv("CHAT_POSSIBLE_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Chat.PossibleThreshold = parsed
		}
	}
	if v := os.Getenv("CHAT_TOP_MATCHES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.TopMatches = parsed
		}
	}
	if v := os.Getenv("UNANSWERED_TARGET"); v != "" {
		cfg.Unanswered.Target = v
	}
	if v := os.Getenv("UNANSWERED_PATH"); v != "" {
		cfg.Unanswered.Path = v
	}
	if v := os.Getenv("UNANSWERED_POSTGRES_DSN"); v != "" {
		cfg.Unanswered.Postgres.DSN = v
	}
	if v := os.Getenv("UNANSWERED_TRENDING_ENABLED"); v != "" {
		cfg.Unanswered.Trending.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("UNANSWERED_TRENDING_ADDR"); v != "" {
		cfg.Unanswered.Trending.Addr = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		Corpus: CorpusConfig{
			Source:   "file",
			Path:     "faq_cleaned.csv",
			Encoding: "cp1252",
			Postgres: PostgresConfig{MaxConns: 4},
		},
		Encoder: EncoderConfig{
			Type: "tfidf",
			OpenAI: OpenAIEncoderConfig{
				APIKeyEnv: "OPENAI_API_KEY",
				Model:     "text-embedding-3-small",
				Timeout:   30 * time.Second,
			},
			Local: LocalEncoderConfig{
				ModelDir: "./models",
			},
		},
		Chat: ChatConfig{
			DirectThreshold:   0.85,
			PossibleThreshold: 0.65,
			TopMatches:        3,
		},
		Unanswered: UnansweredConfig{
			Target: "file",
			Path:   "logs/unknown_questions.csv",
			Trending: TrendingConfig{
				Enabled: false,
				Prefix:  "unanswered",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	switch c.Corpus.Source {
	case "file":
		if c.Corpus.Path == "" {
			return errors.New("corpus.path cannot be empty for the file source")
		}
	case "postgres":
		if strings.TrimSpace(c.Corpus.Postgres.DSN) == "" {
			return errors.New("corpus.postgres.dsn cannot be empty for the postgres source")
		}
	case "object":
		if c.Corpus.Object.Endpoint == "" || c.Corpus.Object.Bucket == "" || c.Corpus.Object.Key == "" {
			return errors.New("corpus.object requires endpoint, bucket and key")
		}
	default:
		return fmt.Errorf("unknown corpus.source %q", c.Corpus.Source)
	}
	switch c.Encoder.Type {
	case "tfidf", "openai", "local":
	default:
		return fmt.Errorf("unknown encoder.type %q", c.Encoder.Type)
	}
	if c.Chat.DirectThreshold < c.Chat.PossibleThreshold {
		return errors.New("chat.directThreshold must not be below chat.possibleThreshold")
	}
	if c.Chat.TopMatches < 1 {
		return errors.New("chat.topMatches must be at least 1")
	}
	switch c.Unanswered.Target {
	case "file":
		if c.Unanswered.Path == "" {
			return errors.New("unanswered.path cannot be empty for the file target")
		}
	case "postgres":
		if strings.TrimSpace(c.Unanswered.Postgres.DSN) == "" {
			return errors.New("unanswered.postgres.dsn cannot be empty for the postgres target")
		}
	default:
		return fmt.Errorf("unknown unanswered.target %q", c.Unanswered.Target)
	}
	if c.Unanswered.Trending.Enabled && strings.TrimSpace(c.Unanswered.Trending.Addr) == "" {
		return errors.New("unanswered.trending.addr cannot be empty when trending is enabled")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
