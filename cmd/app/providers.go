package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/valkey-io/valkey-go"

	"github.com/Sirvic1321/microfinance-chatbot/internal/domain/matcher"
	"github.com/Sirvic1321/microfinance-chatbot/internal/infra/config"
	"github.com/Sirvic1321/microfinance-chatbot/internal/infra/corpus"
	"github.com/Sirvic1321/microfinance-chatbot/internal/infra/encoder"
	"github.com/Sirvic1321/microfinance-chatbot/internal/infra/trending"
	"github.com/Sirvic1321/microfinance-chatbot/internal/infra/unanswered"
)

// provideCorpusSource fails hard on misconfiguration: without a corpus the
// engine cannot serve a single query, so there is nothing to fall back to.
func provideCorpusSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (matcher.CorpusSource, error) {
	switch cfg.Corpus.Source {
	case "file":
		return corpus.NewFileSource(cfg.Corpus.Path, cfg.Corpus.Encoding, logger), nil
	case "postgres":
		pool, err := newPostgresPool(ctx, cfg.Corpus.Postgres)
		if err != nil {
			return nil, fmt.Errorf("corpus postgres: %w", err)
		}
		return corpus.NewPostgresSource(pool, logger), nil
	case "object":
		client, err := minio.New(cfg.Corpus.Object.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Corpus.Object.AccessKey, cfg.Corpus.Object.SecretKey, ""),
			Secure: cfg.Corpus.Object.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("corpus object storage: %w", err)
		}
		return corpus.NewObjectSource(client, cfg.Corpus.Object.Bucket, cfg.Corpus.Object.Key, cfg.Corpus.Encoding, logger), nil
	default:
		return nil, fmt.Errorf("unknown corpus source %q", cfg.Corpus.Source)
	}
}

func provideEncoder(cfg *config.Config) (matcher.Encoder, error) {
	switch cfg.Encoder.Type {
	case "tfidf":
		return encoder.NewTFIDF(), nil
	case "openai":
		return encoder.NewOpenAI(encoder.OpenAIConfig{
			BaseURL:   cfg.Encoder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Encoder.OpenAI.APIKeyEnv,
			Model:     cfg.Encoder.OpenAI.Model,
			Timeout:   cfg.Encoder.OpenAI.Timeout,
		})
	case "local":
		return encoder.NewLocal(encoder.LocalConfig{
			ModelName: cfg.Encoder.Local.ModelName,
			ModelDir:  cfg.Encoder.Local.ModelDir,
		})
	default:
		return nil, fmt.Errorf("unknown encoder type %q", cfg.Encoder.Type)
	}
}

// provideRecorder falls back to the file log when the postgres sink cannot be
// reached. Losing the richer sink is acceptable; losing the queries is not.
func provideRecorder(ctx context.Context, cfg *config.Config, logger *slog.Logger) matcher.Recorder {
	fileLog := unanswered.NewFileLog(cfg.Unanswered.Path, logger)
	if cfg.Unanswered.Target != "postgres" {
		return fileLog
	}
	pool, err := newPostgresPool(ctx, cfg.Unanswered.Postgres)
	if err != nil {
		logger.Error("unanswered postgres unavailable, using file log", "error", err)
		return fileLog
	}
	logger.Info("unanswered postgres sink enabled")
	return unanswered.NewPostgresLog(pool)
}

func provideTrendStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) matcher.TrendStore {
	if cfg.Unanswered.Trending.Enabled {
		opt, err := buildValkeyOptions(cfg.Unanswered.Trending.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return trending.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return trending.NewMemoryStore()
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("valkey trending store enabled", "addr", cfg.Unanswered.Trending.Addr)
			return trending.NewValkeyStore(client, cfg.Unanswered.Trending.Prefix)
		}
	}
	return trending.NewMemoryStore()
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func newPostgresPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("initialize pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// provideEngine loads the corpus and fits the encoder up front, so a broken
// corpus or embedding backend aborts startup instead of failing per request.
func provideEngine(ctx context.Context, source matcher.CorpusSource, enc matcher.Encoder, recorder matcher.Recorder, trends matcher.TrendStore, logger *slog.Logger) (*matcher.Engine, error) {
	startupCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	return matcher.NewEngine(startupCtx, source, enc, recorder, trends, logger)
}

func provideThresholds(cfg *config.Config) matcher.Thresholds {
	return matcher.Thresholds{
		Direct:   cfg.Chat.DirectThreshold,
		Possible: cfg.Chat.PossibleThreshold,
	}
}

func provideDefaultTopN(cfg *config.Config) int {
	return cfg.Chat.TopMatches
}
