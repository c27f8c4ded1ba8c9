package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sirvic1321/microfinance-chatbot/internal/domain/matcher"
	"github.com/Sirvic1321/microfinance-chatbot/internal/infra/config"
	apperrors "github.com/Sirvic1321/microfinance-chatbot/pkg/errors"
)

func TestRouter_AskDirectAnswer(t *testing.T) {
	svc := &stubService{
		bestMatchFn: func(ctx context.Context, query string) (matcher.MatchResult, error) {
			require.Equal(t, "how do I open an account", query)
			return matcher.MatchResult{Question: "How do I open an account?", Answer: "Visit any branch with a valid ID.", Score: 0.92}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/ask", `{"question":"how do I open an account"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got AskResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, kindAnswer, got.Kind)
	require.Equal(t, "Visit any branch with a valid ID.", got.Answer)
	require.Equal(t, "How do I open an account?", got.MatchedQuestion)
	require.InDelta(t, 0.92, got.Score, 1e-9)
	require.False(t, got.Recorded)
}

func TestRouter_AskSuggestion(t *testing.T) {
	svc := &stubService{
		bestMatchFn: func(ctx context.Context, query string) (matcher.MatchResult, error) {
			return matcher.MatchResult{Question: "What is the loan rate?", Answer: "Rates start at 4%.", Score: 0.7}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/ask", `{"question":"loan interest"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got AskResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, kindSuggestion, got.Kind)
	require.Equal(t, suggestionHint, got.Hint)
	require.Equal(t, "Rates start at 4%.", got.Answer)
}

func TestRouter_AskUnansweredRecordsQuery(t *testing.T) {
	var recorded []string
	svc := &stubService{
		bestMatchFn: func(ctx context.Context, query string) (matcher.MatchResult, error) {
			return matcher.MatchResult{Question: "unrelated", Answer: "unrelated", Score: 0.2}, nil
		},
		recordFn: func(ctx context.Context, query string) error {
			recorded = append(recorded, query)
			return nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/ask", `{"question":"do you sell pizza"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got AskResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, kindUnanswered, got.Kind)
	require.Equal(t, unansweredReply, got.Answer)
	require.Empty(t, got.MatchedQuestion)
	require.True(t, got.Recorded)
	require.Equal(t, []string{"do you sell pizza"}, recorded)
}

func TestRouter_AskUnansweredRecordFailureStillReplies(t *testing.T) {
	svc := &stubService{
		bestMatchFn: func(ctx context.Context, query string) (matcher.MatchResult, error) {
			return matcher.MatchResult{Score: 0.1}, nil
		},
		recordFn: func(ctx context.Context, query string) error {
			return apperrors.Wrap(apperrors.CodeLogWrite, "disk full", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/ask", `{"question":"anything"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got AskResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, kindUnanswered, got.Kind)
	require.False(t, got.Recorded)
}

func TestRouter_AskEmptyQuery(t *testing.T) {
	svc := &stubService{
		bestMatchFn: func(ctx context.Context, query string) (matcher.MatchResult, error) {
			return matcher.MatchResult{Answer: matcher.EmptyQueryAnswer, Score: 0.0}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/ask", `{"question":"   "}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got AskResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, kindEmptyQuery, got.Kind)
	require.Equal(t, matcher.EmptyQueryAnswer, got.Answer)
	require.Zero(t, got.Score)
	require.False(t, got.Recorded)
}

func TestRouter_AskInvalidJSON(t *testing.T) {
	svc := &stubService{}

	recorder := performRequest(http.MethodPost, "/api/v1/ask", `{"question":123}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_AskEngineFailure(t *testing.T) {
	svc := &stubService{
		bestMatchFn: func(ctx context.Context, query string) (matcher.MatchResult, error) {
			return matcher.MatchResult{}, apperrors.Wrap(apperrors.CodeEncoding, "embedding backend unreachable", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/ask", `{"question":"hi"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "match_failed", errBody["error"]["code"])
	require.Equal(t, processingFailure, errBody["error"]["message"])
}

func TestRouter_MatchesDefaultN(t *testing.T) {
	svc := &stubService{
		topMatchesFn: func(ctx context.Context, query string, n int) ([]matcher.MatchResult, error) {
			require.Equal(t, 3, n)
			return []matcher.MatchResult{
				{Question: "a", Answer: "1", Score: 0.9},
				{Question: "b", Answer: "2", Score: 0.5},
			}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/matches", `{"question":"loans"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Matches []matcher.MatchResult `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Matches, 2)
	require.Equal(t, "a", body.Matches[0].Question)
}

func TestRouter_MatchesInvalidN(t *testing.T) {
	svc := &stubService{
		topMatchesFn: func(ctx context.Context, query string, n int) ([]matcher.MatchResult, error) {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "n must be at least 1", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/matches", `{"question":"loans","n":-2}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}

func TestRouter_TrendingUnanswered(t *testing.T) {
	svc := &stubService{
		trendingFn: func(ctx context.Context, limit int) ([]matcher.TrendingUnanswered, error) {
			require.Equal(t, 10, limit)
			return []matcher.TrendingUnanswered{{Query: "do you sell pizza", Count: 4}}, nil
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/unanswered/trending", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Unanswered []matcher.TrendingUnanswered `json:"unanswered"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Unanswered, 1)
	require.Equal(t, int64(4), body.Unanswered[0].Count)
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc matcher.Service) *http.Server {
	t.Helper()
	handler := NewHandler(svc, matcher.Thresholds{Direct: 0.85, Possible: 0.65}, 3, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubService struct {
	bestMatchFn  func(ctx context.Context, query string) (matcher.MatchResult, error)
	topMatchesFn func(ctx context.Context, query string, n int) ([]matcher.MatchResult, error)
	recordFn     func(ctx context.Context, query string) error
	trendingFn   func(ctx context.Context, limit int) ([]matcher.TrendingUnanswered, error)
}

func (s *stubService) BestMatch(ctx context.Context, query string) (matcher.MatchResult, error) {
	if s.bestMatchFn != nil {
		return s.bestMatchFn(ctx, query)
	}
	return matcher.MatchResult{}, nil
}

func (s *stubService) TopMatches(ctx context.Context, query string, n int) ([]matcher.MatchResult, error) {
	if s.topMatchesFn != nil {
		return s.topMatchesFn(ctx, query, n)
	}
	return nil, nil
}

func (s *stubService) RecordUnanswered(ctx context.Context, query string) error {
	if s.recordFn != nil {
		return s.recordFn(ctx, query)
	}
	return nil
}

func (s *stubService) TrendingUnanswered(ctx context.Context, limit int) ([]matcher.TrendingUnanswered, error) {
	if s.trendingFn != nil {
		return s.trendingFn(ctx, limit)
	}
	return nil, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
