package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/Sirvic1321/microfinance-chatbot/internal/domain/matcher"
)

// Character encodings accepted for CSV corpus files. The original FAQ export
// is a Windows-1252 file, so that stays supported next to UTF-8.
const (
	EncodingUTF8   = "utf-8"
	EncodingCP1252 = "cp1252"
)

// FileSource loads the FAQ corpus from a local CSV file.
type FileSource struct {
	path     string
	encoding string
	logger   *slog.Logger
}

// NewFileSource constructs a CSV file corpus source.
func NewFileSource(path, encoding string, logger *slog.Logger) *FileSource {
	return &FileSource{
		path:     path,
		encoding: encoding,
		logger:   logger.With("component", "corpus.file"),
	}
}

// Load implements matcher.CorpusSource.
func (s *FileSource) Load(_ context.Context) ([]matcher.CorpusEntry, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer file.Close()

	entries, err := ParseEntries(file, s.encoding)
	if err != nil {
		return nil, err
	}
	s.logger.Info("corpus file loaded", "path", s.path, "entries", len(entries))
	return entries, nil
}

// ParseEntries reads a tabular corpus from r. Column headers are matched
// case-insensitively after trimming; rows missing either field are dropped
// while surviving rows keep their original order.
func ParseEntries(r io.Reader, encoding string) ([]matcher.CorpusEntry, error) {
	decoded, err := decodeReader(r, encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read corpus header: %w", err)
	}
	questionCol, answerCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "question":
			questionCol = i
		case "answer":
			answerCol = i
		}
	}
	if questionCol < 0 || answerCol < 0 {
		return nil, fmt.Errorf("corpus is missing required columns, header was %v", header)
	}

	var entries []matcher.CorpusEntry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus row: %w", err)
		}
		if questionCol >= len(record) || answerCol >= len(record) {
			continue
		}
		question := strings.TrimSpace(record[questionCol])
		answer := strings.TrimSpace(record[answerCol])
		if question == "" || answer == "" {
			continue
		}
		entries = append(entries, matcher.CorpusEntry{Question: question, Answer: answer})
	}
	if len(entries) == 0 {
		return nil, errors.New("corpus has no rows with both question and answer")
	}
	return entries, nil
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingUTF8:
		return r, nil
	case EncodingCP1252, "windows-1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported corpus encoding %q", encoding)
	}
}

var _ matcher.CorpusSource = (*FileSource)(nil)
