package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sirvic1321/microfinance-chatbot/internal/domain/matcher"
	apperrors "github.com/Sirvic1321/microfinance-chatbot/pkg/errors"
)

// Response kinds for the ask endpoint. The engine only reports a score; the
// kind is this caller's interpretation of it against the configured
// thresholds.
const (
	kindAnswer     = "answer"
	kindSuggestion = "suggestion"
	kindUnanswered = "unanswered"
	kindEmptyQuery = "empty_query"
)

const (
	suggestionHint    = "If this doesn't help, please try rephrasing for a better match."
	unansweredReply   = "I'm sorry, I couldn't confidently answer that. Could you please rephrase your question?"
	processingFailure = "Sorry, I encountered an error processing your question. Please try again."
)

// AskRequest is the payload for the ask and matches endpoints.
type AskRequest struct {
	Question string `json:"question"`
	N        int    `json:"n"`
}

// AskResponse is returned by the ask endpoint.
type AskResponse struct {
	Question        string  `json:"question"`
	MatchedQuestion string  `json:"matchedQuestion"`
	Answer          string  `json:"answer"`
	Score           float64 `json:"score"`
	Kind            string  `json:"kind"`
	Hint            string  `json:"hint,omitempty"`
	Recorded        bool    `json:"recorded"`
}

// Handler wires the HTTP transport to the matching engine.
type Handler struct {
	engine     matcher.Service
	thresholds matcher.Thresholds
	defaultN   int
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(engine matcher.Service, thresholds matcher.Thresholds, defaultN int, logger *slog.Logger) *Handler {
	if defaultN < 1 {
		defaultN = 3
	}
	return &Handler{
		engine:     engine,
		thresholds: thresholds,
		defaultN:   defaultN,
		logger:     logger.With("component", "http.handler"),
	}
}

// Ask resolves the best FAQ match and shapes the reply by confidence. Low
// confidence queries are recorded for corpus review before responding.
func (h *Handler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	ctx := c.Request.Context()
	result, err := h.engine.BestMatch(ctx, req.Question)
	if err != nil {
		abortWithError(c, matchHTTPError(err))
		return
	}

	resp := AskResponse{
		Question:        req.Question,
		MatchedQuestion: result.Question,
		Score:           result.Score,
	}
	switch {
	case result.Question == "" && result.Answer == matcher.EmptyQueryAnswer:
		resp.Kind = kindEmptyQuery
		resp.Answer = result.Answer
	case result.Score >= h.thresholds.Direct:
		resp.Kind = kindAnswer
		resp.Answer = result.Answer
	case result.Score >= h.thresholds.Possible:
		resp.Kind = kindSuggestion
		resp.Answer = result.Answer
		resp.Hint = suggestionHint
	default:
		resp.Kind = kindUnanswered
		resp.Answer = unansweredReply
		resp.MatchedQuestion = ""
		// best-effort telemetry, never blocks the user-facing reply
		if err := h.engine.RecordUnanswered(ctx, req.Question); err != nil {
			h.logger.Warn("failed to record unanswered query", "error", err)
		} else {
			resp.Recorded = true
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Matches returns the raw top-N matches without threshold shaping.
func (h *Handler) Matches(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	n := req.N
	if n == 0 {
		n = h.defaultN
	}

	results, err := h.engine.TopMatches(c.Request.Context(), req.Question, n)
	if err != nil {
		abortWithError(c, matchHTTPError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": results})
}

// TrendingUnanswered lists the most frequent unanswered questions for
// corpus curators.
func (h *Handler) TrendingUnanswered(c *gin.Context) {
	items, err := h.engine.TrendingUnanswered(c.Request.Context(), 10)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "trending_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"unanswered": items})
}

// matchHTTPError keeps internal encode/rank failures distinct from the
// legitimate low-confidence path: they surface as a generic apology, never
// as a disguised "no match".
func matchHTTPError(err error) *HTTPError {
	if apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	}
	return NewHTTPError(http.StatusInternalServerError, "match_failed", processingFailure, err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
