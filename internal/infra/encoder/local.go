package encoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/Sirvic1321/microfinance-chatbot/internal/domain/matcher"
)

// defaultLocalModel is the sentence-transformers model the corpus was tuned
// against. It produces 384-dimensional embeddings.
const defaultLocalModel = "sentence-transformers/all-MiniLM-L6-v2"

// LocalConfig configures the in-process dense encoder.
type LocalConfig struct {
	ModelName string
	ModelDir  string
}

// Local runs a sentence-embedding model in process through hugot, so no
// network call happens on the query path.
type Local struct {
	pipeline  *pipelines.FeatureExtractionPipeline
	session   *hugot.Session
	dimension int
}

// NewLocal downloads the model on first use and builds the feature
// extraction pipeline. Failures here are fatal to engine construction.
func NewLocal(cfg LocalConfig) (*Local, error) {
	if cfg.ModelName == "" {
		cfg.ModelName = defaultLocalModel
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = "./models"
	}
	modelPath, err := prepareModel(cfg.ModelName, cfg.ModelDir)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("create hugot session: %w", err)
	}
	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "faq-encoder",
	})
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("create embedding pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("create embedding pipeline: %w", err)
	}
	return &Local{pipeline: pipeline, session: session}, nil
}

// Name returns the identifier of this encoder implementation.
func (e *Local) Name() string { return "local" }

// Fit is a no-op; the pretrained model carries no corpus-dependent state.
func (e *Local) Fit(context.Context, []string) error { return nil }

// Dimension reports the vector length, known after the corpus is encoded.
func (e *Local) Dimension() int { return e.dimension }

// Encode embeds a single text.
func (e *Local) Encode(_ context.Context, text string) ([]float32, error) {
	vectors, err := e.run([]string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EncodeAll embeds all texts in one pipeline run.
func (e *Local) EncodeAll(_ context.Context, texts []string) ([][]float32, error) {
	return e.run(texts)
}

// Close releases the ONNX session.
func (e *Local) Close() error {
	return e.session.Destroy()
}

func (e *Local) run(texts []string) ([][]float32, error) {
	result, err := e.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("run embedding pipeline: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, errors.New("embedding pipeline returned wrong result count")
	}
	if e.dimension == 0 && len(result.Embeddings) > 0 {
		e.dimension = len(result.Embeddings[0])
	}
	return result.Embeddings, nil
}

func prepareModel(modelName, modelDir string) (string, error) {
	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelDir, 0o755); err != nil {
			return "", fmt.Errorf("create model directory: %w", err)
		}
		options := hugot.NewDownloadOptions()
		options.OnnxFilePath = "onnx/model.onnx"
		downloaded, err := hugot.DownloadModel(modelName, modelDir, options)
		if err != nil {
			return "", fmt.Errorf("download model %s: %w", modelName, err)
		}
		modelPath = downloaded
	}
	return modelPath, nil
}

var _ matcher.Encoder = (*Local)(nil)
