package unanswered

import (
	"context"
	"sync"

	"github.com/Sirvic1321/microfinance-chatbot/internal/domain/matcher"
)

// MemoryLog keeps unanswered records in process memory for tests/dev.
type MemoryLog struct {
	mu      sync.Mutex
	records []matcher.UnansweredRecord
}

// NewMemoryLog constructs the sink.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Record implements matcher.Recorder.
func (l *MemoryLog) Record(_ context.Context, rec matcher.UnansweredRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return nil
}

// Records returns a copy of everything recorded so far.
func (l *MemoryLog) Records() []matcher.UnansweredRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]matcher.UnansweredRecord, len(l.records))
	copy(out, l.records)
	return out
}

var _ matcher.Recorder = (*MemoryLog)(nil)
