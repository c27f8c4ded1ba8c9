package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, defaultConfig().Validate())
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	cfg := defaultConfig()
	cfg.Chat.DirectThreshold = 0.5
	cfg.Chat.PossibleThreshold = 0.8
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownEncoder(t *testing.T) {
	cfg := defaultConfig()
	cfg.Encoder.Type = "word2vec"
	require.Error(t, cfg.Validate())
}

func TestValidateRequiresDSNForPostgresCorpus(t *testing.T) {
	cfg := defaultConfig()
	cfg.Corpus.Source = "postgres"
	require.Error(t, cfg.Validate())

	cfg.Corpus.Postgres.DSN = "postgres://localhost/faq"
	require.NoError(t, cfg.Validate())
}

func TestValidateRequiresTrendingAddrWhenEnabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.Unanswered.Trending.Enabled = true
	require.Error(t, cfg.Validate())

	cfg.Unanswered.Trending.Addr = "localhost:6379"
	require.NoError(t, cfg.Validate())
}
