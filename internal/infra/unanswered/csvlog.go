package unanswered

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Sirvic1321/microfinance-chatbot/internal/domain/matcher"
)

// FileLog appends unanswered queries to a CSV file. The file is created
// lazily with its header on the first write and is only ever appended to.
// A mutex serializes concurrent recorders so interleaved writes cannot tear
// a row.
type FileLog struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFileLog constructs the sink. Nothing is created until the first record.
func NewFileLog(path string, logger *slog.Logger) *FileLog {
	return &FileLog{
		path:   path,
		logger: logger.With("component", "unanswered.file"),
	}
}

// Record implements matcher.Recorder.
func (l *FileLog) Record(_ context.Context, rec matcher.UnansweredRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open unanswered log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat unanswered log: %w", err)
	}

	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := writer.Write([]string{"timestamp", "question"}); err != nil {
			return fmt.Errorf("write log header: %w", err)
		}
	}
	row := []string{rec.AskedAt.UTC().Format(time.RFC3339), rec.Question}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("append unanswered record: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush unanswered record: %w", err)
	}
	l.logger.Debug("unanswered query recorded", "question", rec.Question)
	return nil
}

var _ matcher.Recorder = (*FileLog)(nil)
