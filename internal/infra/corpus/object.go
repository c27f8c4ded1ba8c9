package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"

	"github.com/Sirvic1321/microfinance-chatbot/internal/domain/matcher"
)

// ObjectSource loads the FAQ corpus from a CSV object in an S3-compatible
// bucket, so deployments can ship corpus updates without rebuilding images.
type ObjectSource struct {
	client   *minio.Client
	bucket   string
	key      string
	encoding string
	logger   *slog.Logger
}

// NewObjectSource constructs the source.
func NewObjectSource(client *minio.Client, bucket, key, encoding string, logger *slog.Logger) *ObjectSource {
	return &ObjectSource{
		client:   client,
		bucket:   bucket,
		key:      key,
		encoding: encoding,
		logger:   logger.With("component", "corpus.object"),
	}
}

// Load implements matcher.CorpusSource.
func (s *ObjectSource) Load(ctx context.Context) ([]matcher.CorpusEntry, error) {
	object, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch corpus object %s/%s: %w", s.bucket, s.key, err)
	}
	defer object.Close()

	entries, err := ParseEntries(object, s.encoding)
	if err != nil {
		return nil, fmt.Errorf("parse corpus object %s/%s: %w", s.bucket, s.key, err)
	}
	s.logger.Info("corpus object loaded", "bucket", s.bucket, "key", s.key, "entries", len(entries))
	return entries, nil
}

var _ matcher.CorpusSource = (*ObjectSource)(nil)
