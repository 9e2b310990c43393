// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"signal-engine/internal/common/database"
	"signal-engine/internal/common/errors"
	"signal-engine/internal/common/logger"
	"signal-engine/internal/models"
)

const (
	ComponentTag = "store"
)

// PostgresStore persists the engine's durable state: the DNA taxonomy,
// competitor videos, producer history, learned weights and feedback.
type PostgresStore struct {
	client *database.PostgresClient
	logger logger.Logger
}

func NewPostgresStore(client *database.PostgresClient, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": ComponentTag}),
	}
}

// ActiveTopics returns the show's active taxonomy topics. Topics with an
// empty keyword list are malformed and filtered out here.
func (s *PostgresStore) ActiveTopics(ctx context.Context, showID string) ([]models.DnaTopic, error) {
	rows, err := s.client.Query(ctx, `
		SELECT id, name, keywords, countries, people, excluded_names,
		       is_active, last_covered_at, auto_learned, updated_at
		FROM dna_topics
		WHERE show_id = $1 AND is_active = true
		ORDER BY name`, showID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("active topics", err)
	}
	defer rows.Close()

	var topics []models.DnaTopic
	for rows.Next() {
		var t models.DnaTopic
		var lastCovered sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.Name,
			pq.Array(&t.Keywords), pq.Array(&t.Countries),
			pq.Array(&t.People), pq.Array(&t.ExcludedNames),
			&t.IsActive, &lastCovered, &t.AutoLearned, &t.UpdatedAt,
		); err != nil {
			return nil, errors.NewQueryExecutionFailedError("active topics scan", err)
		}
		if lastCovered.Valid {
			t.LastCoveredAt = lastCovered.Time
		}
		if len(t.Keywords) == 0 {
			s.logger.Warn("skipping taxonomy topic without keywords", map[string]interface{}{
				"topicId": t.ID,
			})
			continue
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// Competitors returns the monitored channels for a show.
func (s *PostgresStore) Competitors(ctx context.Context, showID string) ([]models.Competitor, error) {
	rows, err := s.client.Query(ctx, `
		SELECT id, name, tier, skip_patterns
		FROM competitors
		WHERE show_id = $1
		ORDER BY name`, showID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("competitors", err)
	}
	defer rows.Close()

	var competitors []models.Competitor
	for rows.Next() {
		var c models.Competitor
		if err := rows.Scan(&c.ID, &c.Name, &c.Tier, pq.Array(&c.SkipPatterns)); err != nil {
			return nil, errors.NewQueryExecutionFailedError("competitors scan", err)
		}
		competitors = append(competitors, c)
	}
	return competitors, rows.Err()
}

// CompetitorVideos returns competitor uploads published since the cutoff.
func (s *PostgresStore) CompetitorVideos(ctx context.Context, showID string, since time.Time) ([]models.CompetitorVideo, error) {
	rows, err := s.client.Query(ctx, `
		SELECT v.id, v.competitor_id, v.title, v.topic, v.views,
		       v.duration_secs, v.published_at
		FROM competitor_videos v
		JOIN competitors c ON c.id = v.competitor_id
		WHERE c.show_id = $1 AND v.published_at >= $2
		ORDER BY v.published_at DESC`, showID, since)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("competitor videos", err)
	}
	defer rows.Close()

	var videos []models.CompetitorVideo
	for rows.Next() {
		var v models.CompetitorVideo
		var topic sql.NullString
		if err := rows.Scan(&v.ID, &v.CompetitorID, &v.Title, &topic,
			&v.Views, &v.DurationSecs, &v.PublishedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("competitor videos scan", err)
		}
		v.Topic = topic.String
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// ProducerHistory returns the show's own published videos since the cutoff.
func (s *PostgresStore) ProducerHistory(ctx context.Context, showID string, since time.Time) ([]models.ProducerVideo, error) {
	rows, err := s.client.Query(ctx, `
		SELECT id, title, COALESCE(topic_id, ''), published_at
		FROM producer_videos
		WHERE show_id = $1 AND published_at >= $2
		ORDER BY published_at DESC`, showID, since)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("producer history", err)
	}
	defer rows.Close()

	var videos []models.ProducerVideo
	for rows.Next() {
		var v models.ProducerVideo
		if err := rows.Scan(&v.ID, &v.Title, &v.TopicID, &v.PublishedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("producer history scan", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// LearnedWeights returns every weight for a show, keyed for direct lookup
// during scoring.
func (s *PostgresStore) LearnedWeights(ctx context.Context, showID string) (map[string]models.LearnedWeight, error) {
	rows, err := s.client.Query(ctx, `
		SELECT key, weight, liked_count, rejected_count, updated_at
		FROM learned_weights
		WHERE show_id = $1`, showID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("learned weights", err)
	}
	defer rows.Close()

	weights := make(map[string]models.LearnedWeight)
	for rows.Next() {
		var w models.LearnedWeight
		if err := rows.Scan(&w.Key, &w.Weight, &w.LikedCount, &w.RejectedCount, &w.UpdatedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("learned weights scan", err)
		}
		weights[w.Key] = w
	}
	return weights, rows.Err()
}

// UpsertWeight applies one multiply-and-clamp update atomically in a
// single statement, so concurrent feedback for the same key never loses
// an update. Implements the learning layer's WeightStore.
func (s *PostgresStore) UpsertWeight(ctx context.Context, key string, liked bool, multiplier, min, max float64) (models.LearnedWeight, error) {
	likedInc, rejectedInc := 0, 1
	if liked {
		likedInc, rejectedInc = 1, 0
	}

	var w models.LearnedWeight
	err := s.client.QueryRow(ctx, `
		INSERT INTO learned_weights (key, weight, liked_count, rejected_count, updated_at)
		VALUES ($1, LEAST($4, GREATEST($3, 1.0 * $2)), $5, $6, NOW())
		ON CONFLICT (key) DO UPDATE SET
			weight = LEAST($4, GREATEST($3, learned_weights.weight * $2)),
			liked_count = learned_weights.liked_count + $5,
			rejected_count = learned_weights.rejected_count + $6,
			updated_at = NOW()
		RETURNING key, weight, liked_count, rejected_count, updated_at`,
		key, multiplier, min, max, likedInc, rejectedInc,
	).Scan(&w.Key, &w.Weight, &w.LikedCount, &w.RejectedCount, &w.UpdatedAt)
	if err != nil {
		return models.LearnedWeight{}, errors.NewQueryExecutionFailedError("upsert weight", err)
	}
	return w, nil
}

// AppendTopicKeywords grows a taxonomy topic's keyword list and marks it
// auto-learned. Duplicates are filtered by the caller.
func (s *PostgresStore) AppendTopicKeywords(ctx context.Context, topicID string, keywords []string) error {
	if len(keywords) == 0 {
		return nil
	}
	_, err := s.client.Exec(ctx, `
		UPDATE dna_topics
		SET keywords = keywords || $2,
		    auto_learned = true,
		    updated_at = NOW()
		WHERE id = $1`, topicID, pq.Array(keywords))
	if err != nil {
		return errors.NewQueryExecutionFailedError("append topic keywords", err)
	}
	return nil
}

// AppendFeedback records a raw feedback event for auditing and replay.
func (s *PostgresStore) AppendFeedback(ctx context.Context, event models.FeedbackEvent) error {
	_, err := s.client.Exec(ctx, `
		INSERT INTO feedback_events (id, signal_id, action, category, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.SignalID, string(event.Action), event.Category, event.CreatedAt)
	if err != nil {
		return errors.NewQueryExecutionFailedError("append feedback", err)
	}
	return nil
}

// ActiveShows returns the IDs of shows with scoring enabled.
func (s *PostgresStore) ActiveShows(ctx context.Context) ([]string, error) {
	rows, err := s.client.Query(ctx, `
		SELECT id FROM shows WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("active shows", err)
	}
	defer rows.Close()

	var shows []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewQueryExecutionFailedError("active shows", err)
		}
		shows = append(shows, id)
	}
	return shows, rows.Err()
}

// PendingSignals returns the show's unscored signals, oldest first so a
// backlog drains in ingestion order.
func (s *PostgresStore) PendingSignals(ctx context.Context, showID string, limit int) ([]models.Signal, error) {
	rows, err := s.client.Query(ctx, `
		SELECT id, title, description, source, COALESCE(topic_id, ''),
		       source_count, published_at, ingested_at
		FROM signals
		WHERE show_id = $1 AND scored_at IS NULL
		ORDER BY ingested_at ASC
		LIMIT $2`, showID, limit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("pending signals", err)
	}
	defer rows.Close()

	var signals []models.Signal
	for rows.Next() {
		var sig models.Signal
		if err := rows.Scan(&sig.ID, &sig.Title, &sig.Description, &sig.Source,
			&sig.TopicID, &sig.SourceCount, &sig.PublishedAt, &sig.IngestedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("pending signals", err)
		}
		signals = append(signals, sig)
	}
	return signals, rows.Err()
}

// SaveResults persists one batch's scored output and stamps the source
// signals as scored, in a single transaction so a crashed pass rescores
// cleanly instead of leaving half-marked signals behind.
func (s *PostgresStore) SaveResults(ctx context.Context, showID string, results []models.ScoringResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.client.Begin(ctx)
	if err != nil {
		return errors.NewQueryExecutionFailedError("save results", err)
	}
	defer tx.Rollback()

	for _, r := range results {
		contributions, err := json.Marshal(r.Contributions)
		if err != nil {
			return errors.NewQueryExecutionFailedError("save results", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO scoring_results
				(signal_id, show_id, score, is_valid, tier, backlog_category,
				 tier_reason, contributions, same_story, scored_at, error)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (signal_id) DO UPDATE SET
				score = EXCLUDED.score,
				is_valid = EXCLUDED.is_valid,
				tier = EXCLUDED.tier,
				backlog_category = EXCLUDED.backlog_category,
				tier_reason = EXCLUDED.tier_reason,
				contributions = EXCLUDED.contributions,
				same_story = EXCLUDED.same_story,
				scored_at = EXCLUDED.scored_at,
				error = EXCLUDED.error`,
			r.SignalID, showID, r.Score, r.IsValid, string(r.Tier), string(r.BacklogCategory),
			r.TierReason, contributions, r.SameStory, r.ScoredAt, r.Error)
		if err != nil {
			return errors.NewQueryExecutionFailedError("save results", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE signals SET scored_at = $2 WHERE id = $1`, r.SignalID, r.ScoredAt)
		if err != nil {
			return errors.NewQueryExecutionFailedError("save results", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewQueryExecutionFailedError("save results", err)
	}
	return nil
}

// MarkTopicCovered stamps a topic when the producer publishes on it, so
// freshness and saturation see up-to-date coverage.
func (s *PostgresStore) MarkTopicCovered(ctx context.Context, topicID string, at time.Time) error {
	_, err := s.client.Exec(ctx, `
		UPDATE dna_topics SET last_covered_at = $2, updated_at = NOW()
		WHERE id = $1`, topicID, at)
	if err != nil {
		return errors.NewQueryExecutionFailedError("mark topic covered", err)
	}
	return nil
}
