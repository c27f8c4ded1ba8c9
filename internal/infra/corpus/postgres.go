package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sirvic1321/microfinance-chatbot/internal/domain/matcher"
)

// PostgresSource loads the FAQ corpus from the faqs table.
type PostgresSource struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresSource constructs the source.
func NewPostgresSource(pool *pgxpool.Pool, logger *slog.Logger) *PostgresSource {
	return &PostgresSource{
		pool:   pool,
		logger: logger.With("component", "corpus.postgres"),
	}
}

// Load implements matcher.CorpusSource. Row order follows the table's id so
// corpus indices stay stable across restarts.
func (s *PostgresSource) Load(ctx context.Context) ([]matcher.CorpusEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT question, answer
		FROM faqs
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query faqs: %w", err)
	}
	defer rows.Close()

	var entries []matcher.CorpusEntry
	for rows.Next() {
		var question, answer string
		if err := rows.Scan(&question, &answer); err != nil {
			return nil, fmt.Errorf("scan faq row: %w", err)
		}
		question = strings.TrimSpace(question)
		answer = strings.TrimSpace(answer)
		if question == "" || answer == "" {
			continue
		}
		entries = append(entries, matcher.CorpusEntry{Question: question, Answer: answer})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faq rows: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("faqs table has no rows with both question and answer")
	}
	s.logger.Info("corpus table loaded", "entries", len(entries))
	return entries, nil
}

var _ matcher.CorpusSource = (*PostgresSource)(nil)
