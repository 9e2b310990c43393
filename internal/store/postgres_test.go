// internal/store/postgres_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-engine/internal/common/database"
	"signal-engine/internal/common/logger"
	"signal-engine/internal/models"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client := &database.PostgresClient{DB: db}
	return NewPostgresStore(client, logger.NewTestLogger(t)), mock
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestPostgresStore_ActiveTopics(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "name", "keywords", "countries", "people", "excluded_names",
		"is_active", "last_covered_at", "auto_learned", "updated_at",
	}).
		AddRow("latam", "Latin America Geopolitics",
			"{venezuela,maduro}", "{venezuela}", "{}", "{}",
			true, testNow.AddDate(0, 0, -20), false, testNow).
		AddRow("broken", "No Keywords",
			"{}", "{}", "{}", "{}",
			true, nil, false, testNow)

	mock.ExpectQuery("SELECT id, name, keywords").
		WithArgs("show-1").
		WillReturnRows(rows)

	topics, err := store.ActiveTopics(context.Background(), "show-1")
	require.NoError(t, err)

	// The malformed topic without keywords is filtered out.
	require.Len(t, topics, 1)
	assert.Equal(t, "latam", topics[0].ID)
	assert.Equal(t, []string{"venezuela", "maduro"}, topics[0].Keywords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ActiveTopics_QueryFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, keywords").
		WithArgs("show-1").
		WillReturnError(assert.AnError)

	_, err := store.ActiveTopics(context.Background(), "show-1")
	assert.Error(t, err)
}

func TestPostgresStore_CompetitorVideos(t *testing.T) {
	store, mock := newMockStore(t)

	since := testNow.AddDate(0, 0, -90)
	rows := sqlmock.NewRows([]string{
		"id", "competitor_id", "title", "topic", "views", "duration_secs", "published_at",
	}).
		AddRow("vid-1", "comp-1", "Venezuela sanctions shock oil markets", "venezuela", int64(210000), 600, testNow.Add(-10*time.Hour)).
		AddRow("vid-2", "comp-1", "Shorts compilation", nil, int64(5000), 45, testNow.Add(-20*time.Hour))

	mock.ExpectQuery("SELECT v.id, v.competitor_id").
		WithArgs("show-1", since).
		WillReturnRows(rows)

	videos, err := store.CompetitorVideos(context.Background(), "show-1", since)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "venezuela", videos[0].Topic)
	assert.Equal(t, "", videos[1].Topic, "null topic degrades to empty")
	assert.Equal(t, models.FormatShort, videos[1].Format())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ProducerHistory(t *testing.T) {
	store, mock := newMockStore(t)

	since := testNow.AddDate(0, 0, -90)
	rows := sqlmock.NewRows([]string{"id", "title", "coalesce", "published_at"}).
		AddRow("pv-1", "Venezuela oil sanctions explained", "latam", testNow.AddDate(0, 0, -20))

	mock.ExpectQuery("SELECT id, title, COALESCE").
		WithArgs("show-1", since).
		WillReturnRows(rows)

	videos, err := store.ProducerHistory(context.Background(), "show-1", since)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "latam", videos[0].TopicID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LearnedWeights(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"key", "weight", "liked_count", "rejected_count", "updated_at"}).
		AddRow("category:energy", 1.21, 2, 0, testNow).
		AddRow("person:maduro", 0.97, 0, 1, testNow)

	mock.ExpectQuery("SELECT key, weight").
		WithArgs("show-1").
		WillReturnRows(rows)

	weights, err := store.LearnedWeights(context.Background(), "show-1")
	require.NoError(t, err)
	require.Len(t, weights, 2)
	assert.InDelta(t, 1.21, weights["category:energy"].Weight, 1e-9)
	assert.Equal(t, 1, weights["person:maduro"].RejectedCount)
}

func TestPostgresStore_UpsertWeight(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"key", "weight", "liked_count", "rejected_count", "updated_at"}).
		AddRow("country:venezuela", 1.08, 1, 0, testNow)

	mock.ExpectQuery("INSERT INTO learned_weights").
		WithArgs("country:venezuela", 1.08, 0.0, 2.0, 1, 0).
		WillReturnRows(rows)

	w, err := store.UpsertWeight(context.Background(), "country:venezuela", true, 1.08, 0.0, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.08, w.Weight, 1e-9)
	assert.Equal(t, 1, w.LikedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendTopicKeywords(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE dna_topics").
		WithArgs("latam", pq.Array([]string{"pdvsa", "refinery"})).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.AppendTopicKeywords(context.Background(), "latam", []string{"pdvsa", "refinery"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendTopicKeywords_EmptyIsNoop(t *testing.T) {
	store, mock := newMockStore(t)

	err := store.AppendTopicKeywords(context.Background(), "latam", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PendingSignals(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "source", "coalesce", "source_count", "published_at", "ingested_at",
	}).
		AddRow("sig-1", "Venezuela oil sanctions tighten", "", "rss", "", 2, testNow.Add(-3*time.Hour), testNow.Add(-2*time.Hour))

	mock.ExpectQuery("SELECT id, title, description").
		WithArgs("show-1", 200).
		WillReturnRows(rows)

	signals, err := store.PendingSignals(context.Background(), "show-1", 200)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "sig-1", signals[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveResults(t *testing.T) {
	store, mock := newMockStore(t)

	result := models.ScoringResult{
		SignalID:   "sig-1",
		Score:      85,
		IsValid:    true,
		Tier:       models.TierPostToday,
		TierReason: "direct competitor breakout in the last 48h",
		ScoredAt:   testNow,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO scoring_results").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE signals SET scored_at").
		WithArgs("sig-1", testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveResults(context.Background(), "show-1", []models.ScoringResult{result}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveResults_RollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO scoring_results").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.SaveResults(context.Background(), "show-1", []models.ScoringResult{
		{SignalID: "sig-1", ScoredAt: testNow},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ActiveShows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id FROM shows").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("show-1").AddRow("show-2"))

	shows, err := store.ActiveShows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"show-1", "show-2"}, shows)
}

func TestPostgresStore_AppendFeedback(t *testing.T) {
	store, mock := newMockStore(t)

	event := models.FeedbackEvent{
		ID:        "fb-1",
		SignalID:  "sig-1",
		Action:    models.ActionLike,
		Category:  "energy",
		CreatedAt: testNow,
	}

	mock.ExpectExec("INSERT INTO feedback_events").
		WithArgs("fb-1", "sig-1", "like", "energy", testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.AppendFeedback(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}
