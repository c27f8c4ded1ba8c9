package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/Sirvic1321/microfinance-chatbot/pkg/errors"
	"github.com/Sirvic1321/microfinance-chatbot/pkg/util"
)

// Service exposes the FAQ matching capabilities consumed by the transport.
type Service interface {
	BestMatch(ctx context.Context, query string) (MatchResult, error)
	TopMatches(ctx context.Context, query string, n int) ([]MatchResult, error)
	RecordUnanswered(ctx context.Context, query string) error
	TrendingUnanswered(ctx context.Context, limit int) ([]TrendingUnanswered, error)
}

// Engine matches free-text queries against an immutable FAQ corpus. The
// corpus, its vector matrix and the encoder's fitted state are built once in
// NewEngine and are read-only afterwards, so concurrent queries need no
// locking.
type Engine struct {
	entries  []CorpusEntry
	matrix   [][]float32
	rowNorms []float64
	encoder  Encoder
	recorder Recorder
	trends   TrendStore
	logger   *slog.Logger
}

// NewEngine loads the corpus, fits the encoder on the corpus questions and
// precomputes the vector matrix. Any failure here is fatal to construction;
// a partially initialized engine is never returned.
func NewEngine(ctx context.Context, source CorpusSource, encoder Encoder, recorder Recorder, trends TrendStore, logger *slog.Logger) (*Engine, error) {
	entries, err := source.Load(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCorpusLoad, "failed to load FAQ corpus", err)
	}
	if len(entries) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeCorpusLoad, "corpus has no usable rows", nil)
	}

	questions := make([]string, len(entries))
	for i, entry := range entries {
		questions[i] = entry.Question
	}

	if err := encoder.Fit(ctx, questions); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEncoding, "encoder fit failed", err)
	}
	matrix, err := encoder.EncodeAll(ctx, questions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEncoding, "corpus encoding failed", err)
	}
	if len(matrix) != len(entries) {
		return nil, apperrors.Wrap(apperrors.CodeEncoding,
			fmt.Sprintf("corpus matrix has %d rows for %d entries", len(matrix), len(entries)), nil)
	}

	rowNorms := make([]float64, len(matrix))
	for i, row := range matrix {
		rowNorms[i] = vectorNorm(row)
	}

	logger = logger.With("component", "matcher.engine")
	logger.Info("faq engine ready", "entries", len(entries), "encoder", encoder.Name(), "dimension", encoder.Dimension())

	return &Engine{
		entries:  entries,
		matrix:   matrix,
		rowNorms: rowNorms,
		encoder:  encoder,
		recorder: recorder,
		trends:   trends,
		logger:   logger,
	}, nil
}

// Size reports the number of corpus entries.
func (e *Engine) Size() int { return len(e.entries) }

// BestMatch returns the closest corpus entry for the query. A blank query
// short-circuits to a sentinel result without touching the encoder.
func (e *Engine) BestMatch(ctx context.Context, query string) (MatchResult, error) {
	if strings.TrimSpace(query) == "" {
		return sentinelResult(), nil
	}
	ranked, err := e.rank(ctx, query)
	if err != nil {
		return MatchResult{}, err
	}
	return e.toResult(ranked[0]), nil
}

// TopMatches returns up to n results sorted by score descending, ties broken
// by ascending corpus index. When the corpus holds fewer than n entries, all
// of them are returned.
func (e *Engine) TopMatches(ctx context.Context, query string, n int) ([]MatchResult, error) {
	if n < 1 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "n must be at least 1", nil)
	}
	if strings.TrimSpace(query) == "" {
		return []MatchResult{sentinelResult()}, nil
	}
	ranked, err := e.rank(ctx, query)
	if err != nil {
		return nil, err
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	results := make([]MatchResult, n)
	for i := 0; i < n; i++ {
		results[i] = e.toResult(ranked[i])
	}
	return results, nil
}

// RecordUnanswered appends the verbatim query with a UTC timestamp to the
// unanswered log and bumps the trending counter. Failures are reported to
// the caller but must not abort the user-facing response.
func (e *Engine) RecordUnanswered(ctx context.Context, query string) error {
	rec := UnansweredRecord{
		AskedAt:  util.NowUTC(),
		Question: query,
	}
	// The embedding is optional curator metadata; never fail recording over it.
	if vec, err := e.encoder.Encode(ctx, query); err == nil {
		rec.Embedding = vec
	} else {
		e.logger.Debug("unanswered embedding skipped", "error", err)
	}

	if err := e.recorder.Record(ctx, rec); err != nil {
		return apperrors.Wrap(apperrors.CodeLogWrite, "failed to append unanswered record", err)
	}
	if err := e.trends.Increment(ctx, normalizeQuestion(query), query); err != nil {
		e.logger.Warn("unanswered trending increment failed", "error", err)
	}
	return nil
}

// TrendingUnanswered lists the most frequent unanswered questions.
func (e *Engine) TrendingUnanswered(ctx context.Context, limit int) ([]TrendingUnanswered, error) {
	items, err := e.trends.Top(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeLogWrite, "failed to load trending unanswered queries", err)
	}
	return items, nil
}

func (e *Engine) rank(ctx context.Context, query string) ([]rankedMatch, error) {
	vec, err := e.encoder.Encode(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEncoding, "query encoding failed", err)
	}
	ranked := rankBySimilarity(vec, e.matrix, e.rowNorms)
	if len(ranked) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeMatch, "ranking produced no candidates", errors.New("empty corpus matrix"))
	}
	return ranked, nil
}

func (e *Engine) toResult(m rankedMatch) MatchResult {
	entry := e.entries[m.index]
	return MatchResult{
		Question: entry.Question,
		Answer:   entry.Answer,
		Score:    m.score,
	}
}

func sentinelResult() MatchResult {
	return MatchResult{Question: "", Answer: EmptyQueryAnswer, Score: 0.0}
}

var _ Service = (*Engine)(nil)
