package matcher

import "context"

// Encoder converts free text into a fixed-dimension numeric vector.
// Exactly one implementation is active per process, selected at construction.
type Encoder interface {
	Name() string
	// Fit prepares corpus-dependent state (vocabulary, term weights). Dense
	// implementations that need no fitting return nil.
	Fit(ctx context.Context, corpus []string) error
	Dimension() int
	Encode(ctx context.Context, text string) ([]float32, error)
	EncodeAll(ctx context.Context, texts []string) ([][]float32, error)
}
