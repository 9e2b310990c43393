// internal/engine/classify-urgency/handler_test.go
package classifyurgency

import (
	"context"
	"testing"
	"time"

	"signal-engine/internal/common/logger"
	"signal-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return LoadConfig()
}

func newTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func breakoutAged(tier models.CompetitorTier, ageHours float64) models.Breakout {
	return models.Breakout{
		CompetitorTier: tier,
		Video: models.CompetitorVideo{
			PublishedAt: testNow.Add(-time.Duration(ageHours * float64(time.Hour))),
		},
	}
}

func TestHandler_Execute_DirectBreakoutPostToday(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:     60,
		Breakouts: []models.Breakout{breakoutAged(models.TierDirect, 10)},
		Now:       testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierPostToday, output.Tier)
}

func TestHandler_Execute_ScoreFloorGatesPostToday(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	// Same evidence, score below 50: competitor urgency alone is not enough.
	output, err := handler.Execute(context.Background(), &Input{
		Score:     45,
		Breakouts: []models.Breakout{breakoutAged(models.TierDirect, 10)},
		Now:       testNow,
	})
	require.NoError(t, err)
	assert.NotEqual(t, models.TierPostToday, output.Tier)
}

func TestHandler_Execute_StaleDirectBreakoutIsNotPostToday(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:     60,
		Breakouts: []models.Breakout{breakoutAged(models.TierDirect, 60)},
		Now:       testNow,
	})
	require.NoError(t, err)
	assert.NotEqual(t, models.TierPostToday, output.Tier)
}

func TestHandler_Execute_FreshTrendsetterPostToday(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:     55,
		Breakouts: []models.Breakout{breakoutAged(models.TierTrendsetter, 12)},
		Now:       testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierPostToday, output.Tier)
}

func TestHandler_Execute_TrendsetterComboPostToday(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	// 48h-old trendsetter alone is this_week; with two competitors it
	// clears the combo rule.
	output, err := handler.Execute(context.Background(), &Input{
		Score:           55,
		Breakouts:       []models.Breakout{breakoutAged(models.TierTrendsetter, 48)},
		CompetitorCount: 2,
		Now:             testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierPostToday, output.Tier)

	output, err = handler.Execute(context.Background(), &Input{
		Score:           55,
		Breakouts:       []models.Breakout{breakoutAged(models.TierTrendsetter, 48)},
		CompetitorCount: 1,
		Now:             testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierThisWeek, output.Tier)
}

func TestHandler_Execute_VolumePostToday(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:                55,
		CompetitorCount:      3,
		CompetitorsWithin48h: 3,
		Now:                  testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierPostToday, output.Tier)
}

func TestHandler_Execute_HighScoreWithAnyCompetitorSignal(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:           85,
		CompetitorCount: 1,
		Now:             testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierPostToday, output.Tier)
}

func TestHandler_Execute_SameStoryNeverPostToday(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:                 90,
		SameStory:             true,
		Breakouts:             []models.Breakout{breakoutAged(models.TierDirect, 5)},
		CompetitorCount:       3,
		PositiveContributions: 4,
		Now:                   testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierThisWeek, output.Tier)
}

func TestHandler_Execute_DnaAndRecencyThisWeek(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:          35,
		DnaMatched:     true,
		SignalAgeHours: 100,
		Now:            testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierThisWeek, output.Tier)
}

func TestHandler_Execute_SameStoryWithoutSignalFallsToBacklog(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:     10,
		SameStory: true,
		Title:     "Oil market wrap",
		Now:       testNow,
	})
	require.NoError(t, err)
	assert.NotEqual(t, models.TierPostToday, output.Tier)
	assert.NotEqual(t, models.TierThisWeek, output.Tier)
}

func TestHandler_Execute_BacklogEvergreenExplainer(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score: 10,
		Title: "How the petrodollar actually works",
		Now:   testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierEvergreen, output.Tier)
	assert.Equal(t, models.BacklogEvergreen, output.BacklogCategory)
}

func TestHandler_Execute_DatedExplainerIsNotEvergreen(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score: 10,
		Title: "What is the 2026 OPEC quota deal",
		Now:   testNow,
	})
	require.NoError(t, err)
	assert.NotEqual(t, models.BacklogEvergreen, output.BacklogCategory)
}

func TestHandler_Execute_BacklogMacroTrend(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:               10,
		Title:               "China trade pressure builds on chipmakers",
		Entities:            []string{"china"},
		TopicCoveredDaysAgo: -1,
		Now:                 testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierBacklog, output.Tier)
	assert.Equal(t, models.BacklogMacroTrend, output.BacklogCategory)
}

func TestHandler_Execute_StaleCoverageIsMacroTrend(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:               10,
		Title:               "Copper supply squeeze returns",
		TopicCoveredDaysAgo: 45,
		Now:                 testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BacklogMacroTrend, output.BacklogCategory)
}

func TestHandler_Execute_BacklogSeasonal(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:               10,
		Title:               "Ramadan shopping season lifts gold demand",
		TopicCoveredDaysAgo: -1,
		Now:                 testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierBacklog, output.Tier)
	assert.Equal(t, models.BacklogSeasonal, output.BacklogCategory)
}

func TestHandler_Execute_BacklogDeepDive(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:               10,
		Title:               "Rare earth refining capacity shifts",
		DnaMatchCount:       3,
		TopicCoveredDaysAgo: -1,
		Now:                 testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierBacklog, output.Tier)
	assert.Equal(t, models.BacklogDeepDive, output.BacklogCategory)
}

func TestHandler_Execute_DefaultEvergreen(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Score:               5,
		Title:               "Notes on shipping lanes",
		TopicCoveredDaysAgo: -1,
		Now:                 testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierEvergreen, output.Tier)
	assert.Equal(t, models.BacklogEvergreen, output.BacklogCategory)
}
