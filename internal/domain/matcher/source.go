package matcher

import "context"

// CorpusSource loads the FAQ corpus from a backing store. Implementations
// drop rows with a missing question or answer and preserve the original
// order among surviving rows.
type CorpusSource interface {
	Load(ctx context.Context) ([]CorpusEntry, error)
}
