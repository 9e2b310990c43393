// internal/api/feedback_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-engine/internal/common/logger"
	"signal-engine/internal/models"

	applylearning "signal-engine/internal/engine/apply-learning"
)

type fakeFeedbackStore struct {
	topics    []models.DnaTopic
	appended  []models.FeedbackEvent
	covered   map[string]time.Time
	topicsErr error
}

func newFakeFeedbackStore() *fakeFeedbackStore {
	return &fakeFeedbackStore{covered: make(map[string]time.Time)}
}

func (s *fakeFeedbackStore) ActiveTopics(_ context.Context, _ string) ([]models.DnaTopic, error) {
	if s.topicsErr != nil {
		return nil, s.topicsErr
	}
	return s.topics, nil
}

func (s *fakeFeedbackStore) AppendFeedback(_ context.Context, event models.FeedbackEvent) error {
	s.appended = append(s.appended, event)
	return nil
}

func (s *fakeFeedbackStore) MarkTopicCovered(_ context.Context, topicID string, at time.Time) error {
	s.covered[topicID] = at
	return nil
}

type fakeWeightStore struct {
	weights map[string]models.LearnedWeight
}

func (s *fakeWeightStore) UpsertWeight(_ context.Context, key string, liked bool, multiplier, min, max float64) (models.LearnedWeight, error) {
	if s.weights == nil {
		s.weights = make(map[string]models.LearnedWeight)
	}
	w, ok := s.weights[key]
	if !ok {
		w = models.LearnedWeight{Key: key, Weight: 1.0}
	}
	w.Weight *= multiplier
	s.weights[key] = w
	return w, nil
}

func (s *fakeWeightStore) AppendTopicKeywords(_ context.Context, _ string, _ []string) error {
	return nil
}

func newTestHandler(t *testing.T, store *fakeFeedbackStore) *FeedbackHandler {
	log := logger.NewTestLogger(t)
	learning := applylearning.NewHandler(applylearning.LoadConfig(), &fakeWeightStore{}, log)
	return NewFeedbackHandler(store, learning, log)
}

func postFeedback(t *testing.T, handler *FeedbackHandler, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestFeedbackHandler_LikeUpdatesWeights(t *testing.T) {
	store := newFakeFeedbackStore()
	handler := newTestHandler(t, store)

	rec := postFeedback(t, handler, `{
		"showId": "show-1",
		"signalId": "sig-1",
		"action": "like",
		"title": "Venezuela oil sanctions tighten",
		"category": "energy",
		"fingerprint": {"countries": ["venezuela"], "category": "energy"}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp feedbackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.FeedbackID)
	assert.Contains(t, resp.UpdatedKeys, "category:energy")
	assert.Contains(t, resp.UpdatedKeys, "country:venezuela")

	require.Len(t, store.appended, 1)
	assert.Equal(t, models.ActionLike, store.appended[0].Action)
}

func TestFeedbackHandler_UsedMarksTopicCovered(t *testing.T) {
	store := newFakeFeedbackStore()
	handler := newTestHandler(t, store)

	rec := postFeedback(t, handler, `{
		"showId": "show-1",
		"signalId": "sig-1",
		"action": "used",
		"title": "Venezuela oil sanctions tighten",
		"topicId": "latam_geopolitics",
		"fingerprint": {"countries": ["venezuela"]}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	_, covered := store.covered["latam_geopolitics"]
	assert.True(t, covered)
}

func TestFeedbackHandler_SchemaRejectsBadAction(t *testing.T) {
	handler := newTestHandler(t, newFakeFeedbackStore())

	rec := postFeedback(t, handler, `{
		"showId": "show-1",
		"signalId": "sig-1",
		"action": "love",
		"title": "Venezuela oil sanctions tighten"
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Fields)
}

func TestFeedbackHandler_SchemaRejectsMissingFields(t *testing.T) {
	handler := newTestHandler(t, newFakeFeedbackStore())

	rec := postFeedback(t, handler, `{"action": "like"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedbackHandler_MalformedJSONRejected(t *testing.T) {
	handler := newTestHandler(t, newFakeFeedbackStore())

	rec := postFeedback(t, handler, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedbackHandler_GetNotAllowed(t *testing.T) {
	handler := newTestHandler(t, newFakeFeedbackStore())

	req := httptest.NewRequest(http.MethodGet, "/feedback", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestFeedbackHandler_TopicFetchFailureStillLearns(t *testing.T) {
	store := newFakeFeedbackStore()
	store.topicsErr = assert.AnError
	handler := newTestHandler(t, store)

	rec := postFeedback(t, handler, `{
		"showId": "show-1",
		"signalId": "sig-1",
		"action": "like",
		"title": "Venezuela oil sanctions tighten",
		"fingerprint": {"countries": ["venezuela"]}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp feedbackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.UpdatedKeys, "country:venezuela")
	assert.Empty(t, resp.ExpandedTopicID, "no taxonomy to expand without topics")
}
