// internal/store/context.go
package store

import (
	"context"
	"time"

	"signal-engine/internal/common/errors"
	"signal-engine/internal/common/logger"
	"signal-engine/internal/models"

	detectbreakouts "signal-engine/internal/engine/detect-breakouts"
)

// ContextBuilder assembles the shared read-only ScoringContext for one
// batch. Every store failure degrades to an empty default: a downstream
// outage lowers recommendation quality, it never crashes the pass.
type ContextBuilder struct {
	store        *PostgresStore
	history      *HistorySearch
	breakouts    *detectbreakouts.Handler
	errorHandler *errors.ErrorHandler
	logger       logger.Logger

	videoWindowDays   int
	historyWindowDays int
	historyLimit      int
}

func NewContextBuilder(
	pg *PostgresStore,
	history *HistorySearch,
	breakouts *detectbreakouts.Handler,
	log logger.Logger,
) *ContextBuilder {
	componentLog := log.WithFields(map[string]interface{}{"component": "context-builder"})
	return &ContextBuilder{
		store:             pg,
		history:           history,
		breakouts:         breakouts,
		errorHandler:      errors.NewErrorHandler(componentLog),
		logger:            componentLog,
		videoWindowDays:   90,
		historyWindowDays: 90,
		historyLimit:      500,
	}
}

// Build fetches everything one batch scores against.
func (b *ContextBuilder) Build(ctx context.Context, showID string) *models.ScoringContext {
	now := time.Now().UTC()
	sctx := &models.ScoringContext{Now: now}

	topics, err := b.store.ActiveTopics(ctx, showID)
	if err != nil {
		b.errorHandler.HandleCollaboratorError("active topics", err)
	}
	sctx.Topics = topics

	weights, err := b.store.LearnedWeights(ctx, showID)
	if err != nil {
		b.errorHandler.HandleCollaboratorError("learned weights", err)
		weights = map[string]models.LearnedWeight{}
	}
	sctx.Weights = weights

	sctx.History = b.fetchHistory(ctx, showID, now)
	sctx.Breakouts = b.detectBreakouts(ctx, showID, now)

	b.logger.Info("scoring context built", map[string]interface{}{
		"showId":    showID,
		"topics":    len(sctx.Topics),
		"history":   len(sctx.History),
		"breakouts": len(sctx.Breakouts),
		"weights":   len(sctx.Weights),
	})
	return sctx
}

// fetchHistory prefers the search index and falls back to postgres.
func (b *ContextBuilder) fetchHistory(ctx context.Context, showID string, now time.Time) []models.ProducerVideo {
	since := now.AddDate(0, 0, -b.historyWindowDays)

	if b.history != nil {
		videos, err := b.history.RecentVideos(ctx, showID, since, b.historyLimit)
		if err == nil {
			return videos
		}
		b.errorHandler.HandleCollaboratorError("history search", err)
	}

	videos, err := b.store.ProducerHistory(ctx, showID, since)
	if err != nil {
		b.errorHandler.HandleCollaboratorError("producer history", err)
		return nil
	}
	return videos
}

func (b *ContextBuilder) detectBreakouts(ctx context.Context, showID string, now time.Time) []models.Breakout {
	competitors, err := b.store.Competitors(ctx, showID)
	if err != nil {
		b.errorHandler.HandleCollaboratorError("competitors", err)
		return nil
	}

	since := now.AddDate(0, 0, -b.videoWindowDays)
	videos, err := b.store.CompetitorVideos(ctx, showID, since)
	if err != nil {
		b.errorHandler.HandleCollaboratorError("competitor videos", err)
		return nil
	}

	out, err := b.breakouts.Execute(ctx, &detectbreakouts.Input{
		Videos:      videos,
		Competitors: competitors,
		Now:         now,
	})
	if err != nil {
		b.errorHandler.HandleCollaboratorError("detect breakouts", err)
		return nil
	}
	return out.Breakouts
}
