package matcher

import "time"

// CorpusEntry is one FAQ record. Its identity is its index position in the
// loaded corpus, which is immutable for the process lifetime.
type CorpusEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MatchResult pairs a corpus entry with its similarity score for a query.
// The score is cosine similarity, not a calibrated probability; callers
// apply their own thresholds.
type MatchResult struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// UnansweredRecord captures a low-confidence query for offline review.
// Embedding is optional; sinks that cannot store it ignore the field.
type UnansweredRecord struct {
	AskedAt   time.Time `json:"askedAt"`
	Question  string    `json:"question"`
	Embedding []float32 `json:"-"`
}

// TrendingUnanswered represents a frequently recorded unanswered question.
type TrendingUnanswered struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Thresholds are the caller-owned confidence cutoffs. The engine itself never
// reads them; they only shape how the transport presents a match.
type Thresholds struct {
	Direct   float64
	Possible float64
}

// EmptyQueryAnswer is the fixed placeholder returned for blank queries.
const EmptyQueryAnswer = "Please enter a valid question."
