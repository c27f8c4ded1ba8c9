package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/Sirvic1321/microfinance-chatbot/internal/domain/matcher"
)

// maxBatchTokens stays well below the 300k request cap embedding providers
// enforce when the whole corpus is encoded in one startup pass.
const maxBatchTokens = 200_000

// OpenAIConfig configures the remote dense encoder.
type OpenAIConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// OpenAI encodes text with an OpenAI-compatible embeddings API. The model is
// pretrained, so no corpus fitting happens; any query can be encoded
// independently of the corpus it is compared against.
type OpenAI struct {
	baseURL   string
	apiKey    string
	model     string
	client    *http.Client
	tokenizer *tiktoken.Tiktoken
	dimension int
}

// NewOpenAI constructs the encoder. A missing API key or tokenizer is fatal
// here rather than on the first query.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	tokenizer, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	return &OpenAI{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    key,
		model:     cfg.Model,
		client:    &http.Client{Timeout: timeout},
		tokenizer: tokenizer,
	}, nil
}

// Name returns the identifier of this encoder implementation.
func (e *OpenAI) Name() string { return "openai" }

// Fit is a no-op; the pretrained model carries no corpus-dependent state.
func (e *OpenAI) Fit(context.Context, []string) error { return nil }

// Dimension reports the vector length, known after the corpus is encoded.
func (e *OpenAI) Dimension() int { return e.dimension }

// Encode embeds a single text.
func (e *OpenAI) Encode(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EncodeAll embeds texts in batches sized by tokenizer counts so the corpus
// encoding pass never exceeds the provider's request budget.
func (e *OpenAI) EncodeAll(ctx context.Context, texts []string) ([][]float32, error) {
	var (
		out         [][]float32
		batch       []string
		batchTokens int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		vectors, err := e.request(ctx, batch)
		if err != nil {
			return err
		}
		out = append(out, vectors...)
		batch = batch[:0]
		batchTokens = 0
		return nil
	}

	for _, text := range texts {
		tokens := len(e.tokenizer.Encode(text, nil, nil))
		if tokens > maxBatchTokens {
			return nil, fmt.Errorf("text too large for one embedding request: %d tokens", tokens)
		}
		if batchTokens+tokens > maxBatchTokens && len(batch) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		batch = append(batch, text)
		batchTokens += tokens
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: want %d, got %d", len(texts), len(out))
	}
	return out, nil
}

func (e *OpenAI) request(ctx context.Context, input []string) ([][]float32, error) {
	payload, err := json.Marshal(struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}{Input: input, Model: e.model})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}

	var body struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Data) != len(input) {
		return nil, fmt.Errorf("embedding count mismatch: want %d, got %d", len(input), len(body.Data))
	}

	vectors := make([][]float32, len(body.Data))
	for i, item := range body.Data {
		if len(item.Embedding) == 0 {
			return nil, errors.New("empty embedding returned")
		}
		vectors[i] = item.Embedding
	}
	if e.dimension == 0 {
		e.dimension = len(vectors[0])
	}
	return vectors, nil
}

var _ matcher.Encoder = (*OpenAI)(nil)
