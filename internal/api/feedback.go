// internal/api/feedback.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"signal-engine/internal/common/logger"
	"signal-engine/internal/common/validation"
	"signal-engine/internal/models"

	applylearning "signal-engine/internal/engine/apply-learning"
)

// maxFeedbackBody bounds a feedback request; anything larger is garbage.
const maxFeedbackBody = 64 << 10

// feedbackSchema validates the payload before it touches the engine.
const feedbackSchema = `{
	"type": "object",
	"required": ["showId", "signalId", "action", "title"],
	"properties": {
		"showId": {"type": "string", "minLength": 1},
		"signalId": {"type": "string", "minLength": 1},
		"action": {"type": "string", "enum": ["like", "reject", "used"]},
		"title": {"type": "string", "minLength": 1},
		"category": {"type": "string"},
		"topicId": {"type": "string"},
		"fingerprint": {"type": "object"}
	}
}`

// FeedbackStore is the persistence surface the endpoint needs.
type FeedbackStore interface {
	ActiveTopics(ctx context.Context, showID string) ([]models.DnaTopic, error)
	AppendFeedback(ctx context.Context, event models.FeedbackEvent) error
	MarkTopicCovered(ctx context.Context, topicID string, at time.Time) error
}

// FeedbackHandler accepts producer feedback over HTTP and feeds it into
// the learning layer. "used" also stamps the topic as covered so the
// next pass sees fresh coverage.
type FeedbackHandler struct {
	store    FeedbackStore
	learning *applylearning.Handler
	logger   logger.Logger
}

func NewFeedbackHandler(store FeedbackStore, learning *applylearning.Handler, log logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		store:    store,
		learning: learning,
		logger:   log.WithFields(map[string]interface{}{"component": "feedback-api"}),
	}
}

type feedbackRequest struct {
	ShowID      string                  `json:"showId"`
	SignalID    string                  `json:"signalId"`
	Action      string                  `json:"action"`
	Title       string                  `json:"title"`
	Category    string                  `json:"category"`
	TopicID     string                  `json:"topicId"`
	Fingerprint models.TopicFingerprint `json:"fingerprint"`
}

type feedbackResponse struct {
	FeedbackID      string   `json:"feedbackId"`
	UpdatedKeys     []string `json:"updatedKeys,omitempty"`
	ExpandedTopicID string   `json:"expandedTopicId,omitempty"`
	NewKeywords     []string `json:"newKeywords,omitempty"`
}

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func (h *FeedbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "POST only"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxFeedbackBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable body"})
		return
	}

	result, err := validation.ValidateJSONBytes(body, feedbackSchema)
	if err != nil || !result.Valid {
		resp := errorResponse{Error: "invalid feedback payload"}
		if result != nil {
			resp.Fields = result.GetErrorMessages()
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	var req feedbackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed json"})
		return
	}

	ctx := r.Context()
	event := models.FeedbackEvent{
		ID:          uuid.New().String(),
		SignalID:    req.SignalID,
		Action:      models.FeedbackAction(req.Action),
		Category:    req.Category,
		Fingerprint: req.Fingerprint,
		CreatedAt:   time.Now().UTC(),
	}

	// The audit row is best effort: losing it degrades replay, not the
	// learning update itself.
	if err := h.store.AppendFeedback(ctx, event); err != nil {
		h.logger.Warn("feedback audit append failed", map[string]interface{}{
			"signalId": event.SignalID,
			"error":    err,
		})
	}

	topics, err := h.store.ActiveTopics(ctx, req.ShowID)
	if err != nil {
		h.logger.Warn("active topics unavailable, skipping taxonomy expansion", map[string]interface{}{
			"showId": req.ShowID,
			"error":  err,
		})
		topics = nil
	}

	out, err := h.learning.RecordFeedback(ctx, &applylearning.FeedbackInput{
		Event:  event,
		Title:  req.Title,
		Topics: topics,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if event.Action == models.ActionUsed && req.TopicID != "" {
		if err := h.store.MarkTopicCovered(ctx, req.TopicID, event.CreatedAt); err != nil {
			h.logger.Warn("topic coverage stamp failed", map[string]interface{}{
				"topicId": req.TopicID,
				"error":   err,
			})
		}
	}

	writeJSON(w, http.StatusOK, feedbackResponse{
		FeedbackID:      event.ID,
		UpdatedKeys:     out.UpdatedKeys,
		ExpandedTopicID: out.ExpandedTopicID,
		NewKeywords:     out.NewKeywords,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
