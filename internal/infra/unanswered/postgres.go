package unanswered

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/Sirvic1321/microfinance-chatbot/internal/domain/matcher"
)

// PostgresLog appends unanswered queries to the unanswered_questions table.
// The query embedding is stored alongside the text when available so
// curators can cluster related gaps before editing the corpus.
type PostgresLog struct {
	pool *pgxpool.Pool
}

// NewPostgresLog constructs the sink.
func NewPostgresLog(pool *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

// Record implements matcher.Recorder.
func (l *PostgresLog) Record(ctx context.Context, rec matcher.UnansweredRecord) error {
	var embedding any
	if len(rec.Embedding) > 0 {
		embedding = pgvector.NewVector(rec.Embedding)
	}
	_, err := l.pool.Exec(ctx, `
		INSERT INTO unanswered_questions (id, asked_at, question, embedding)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), rec.AskedAt.UTC(), rec.Question, embedding)
	if err != nil {
		return fmt.Errorf("insert unanswered record: %w", err)
	}
	return nil
}

var _ matcher.Recorder = (*PostgresLog)(nil)
