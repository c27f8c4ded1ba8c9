package matcher

import "context"

// Recorder appends unanswered-query records to a durable log. Every call
// appends a new record; duplicates accumulate on purpose, since repeat
// frequency is a signal for corpus curators.
type Recorder interface {
	Record(ctx context.Context, rec UnansweredRecord) error
}

// TrendStore counts recorded unanswered questions so curators can see
// which gaps in the corpus come up most often.
type TrendStore interface {
	Increment(ctx context.Context, canonical, display string) error
	Top(ctx context.Context, limit int) ([]TrendingUnanswered, error)
}
