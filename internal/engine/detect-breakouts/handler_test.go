// internal/engine/detect-breakouts/handler_test.go
package detectbreakouts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"signal-engine/internal/common/logger"
	"signal-engine/internal/models"

	"github.com/stretchr/testify/assert"
)

func createTestConfig() *Config {
	return LoadConfig()
}

func newTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func baselineVideos(competitorID string, views ...int64) []models.CompetitorVideo {
	videos := make([]models.CompetitorVideo, 0, len(views))
	for i, v := range views {
		videos = append(videos, models.CompetitorVideo{
			ID:           fmt.Sprintf("%s-base-%d", competitorID, i),
			CompetitorID: competitorID,
			Title:        fmt.Sprintf("baseline video %d", i),
			Topic:        "energy",
			Views:        v,
			DurationSecs: 600,
			PublishedAt:  testNow.AddDate(0, 0, -30-i),
		})
	}
	return videos
}

func recentVideo(competitorID, id string, views int64) models.CompetitorVideo {
	return models.CompetitorVideo{
		ID:           id,
		CompetitorID: competitorID,
		Title:        "recent video " + id,
		Topic:        "energy",
		Views:        views,
		DurationSecs: 600,
		PublishedAt:  testNow.Add(-10 * time.Hour),
	}
}

func directCompetitor(id string) models.Competitor {
	return models.Competitor{ID: id, Name: id, Tier: models.TierDirect}
}

func TestHandler_Execute_RatioRoundedToTwoDecimals(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	// 50 views over a median of 30 is 1.666...; the stored ratio carries
	// two decimals.
	videos := baselineVideos("comp-1", 10, 30, 30, 50)
	videos = append(videos, recentVideo("comp-1", "candidate", 50))

	output, err := handler.Execute(context.Background(), &Input{
		Videos:      videos,
		Competitors: []models.Competitor{directCompetitor("comp-1")},
		Now:         testNow,
	})
	assert.NoError(t, err)
	assert.Len(t, output.Breakouts, 1)
	assert.Equal(t, 1.67, output.Breakouts[0].Ratio)
}

func TestHandler_Execute_MedianAndThreshold(t *testing.T) {
	tests := []struct {
		name         string
		recentViews  int64
		wantBreakout bool
		wantRatio    float64
	}{
		{
			name:         "ratio above threshold is flagged",
			recentViews:  38,
			wantBreakout: true,
			wantRatio:    1.52,
		},
		{
			name:         "ratio below threshold is not",
			recentViews:  37,
			wantBreakout: false,
		},
	}

	handler := NewHandler(createTestConfig(), newTestLogger(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videos := baselineVideos("comp-1", 10, 20, 30, 40)
			videos = append(videos, recentVideo("comp-1", "candidate", tt.recentViews))

			output, err := handler.Execute(context.Background(), &Input{
				Videos:      videos,
				Competitors: []models.Competitor{directCompetitor("comp-1")},
				Now:         testNow,
			})
			assert.NoError(t, err)

			if !tt.wantBreakout {
				assert.Empty(t, output.Breakouts)
				return
			}
			assert.Len(t, output.Breakouts, 1)
			b := output.Breakouts[0]
			assert.Equal(t, 25.0, b.MedianViews, "even bucket must average the two middle values")
			assert.InDelta(t, tt.wantRatio, b.Ratio, 0.001)
			assert.Equal(t, models.TierDirect, b.CompetitorTier)
		})
	}
}

func TestHandler_Execute_ThinBucketSkippedExceptTrendsetter(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	videos := baselineVideos("comp-1", 10, 20)
	videos = append(videos, recentVideo("comp-1", "candidate", 100))

	// Two baseline videos plus one candidate is below the minimum bucket
	// size for a direct competitor.
	output, err := handler.Execute(context.Background(), &Input{
		Videos:      videos,
		Competitors: []models.Competitor{directCompetitor("comp-1")},
		Now:         testNow,
	})
	assert.NoError(t, err)
	assert.Empty(t, output.Breakouts)

	// The same bucket from a trendsetter is eligible.
	output, err = handler.Execute(context.Background(), &Input{
		Videos: videos,
		Competitors: []models.Competitor{
			{ID: "comp-1", Name: "comp-1", Tier: models.TierTrendsetter},
		},
		Now: testNow,
	})
	assert.NoError(t, err)
	assert.Len(t, output.Breakouts, 1)
}

func TestHandler_Execute_FormatBucketsAreIndependent(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	// Long-form baseline is high; a short with modest views must be
	// compared against the short baseline, not the long one.
	videos := baselineVideos("comp-1", 100000, 120000, 110000, 130000, 115000)
	for i, v := range []int64{100, 200, 300, 150, 250} {
		videos = append(videos, models.CompetitorVideo{
			ID:           fmt.Sprintf("short-%d", i),
			CompetitorID: "comp-1",
			Title:        "short clip",
			Topic:        "energy",
			Views:        v,
			DurationSecs: 45,
			PublishedAt:  testNow.AddDate(0, 0, -20-i),
		})
	}
	short := models.CompetitorVideo{
		ID:           "short-candidate",
		CompetitorID: "comp-1",
		Title:        "short candidate",
		Topic:        "energy",
		Views:        600,
		DurationSecs: 45,
		PublishedAt:  testNow.Add(-5 * time.Hour),
	}
	videos = append(videos, short)

	output, err := handler.Execute(context.Background(), &Input{
		Videos:      videos,
		Competitors: []models.Competitor{directCompetitor("comp-1")},
		Now:         testNow,
	})
	assert.NoError(t, err)
	assert.Len(t, output.Breakouts, 1)
	assert.Equal(t, "short-candidate", output.Breakouts[0].Video.ID)
	assert.Equal(t, 200.0, output.Breakouts[0].MedianViews)
	assert.InDelta(t, 3.0, output.Breakouts[0].Ratio, 0.001)
}

func TestHandler_Execute_ExcludedTopicsAndSkipPatterns(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	videos := baselineVideos("comp-1", 10, 20, 30, 40)

	offtopic := recentVideo("comp-1", "offtopic", 200)
	offtopic.Topic = "other_misc"
	videos = append(videos, offtopic)

	skipped := recentVideo("comp-1", "skipped", 200)
	skipped.Title = "Weekly livestream replay"
	videos = append(videos, skipped)

	comp := directCompetitor("comp-1")
	comp.SkipPatterns = []string{"livestream"}

	output, err := handler.Execute(context.Background(), &Input{
		Videos:      videos,
		Competitors: []models.Competitor{comp},
		Now:         testNow,
	})
	assert.NoError(t, err)
	assert.Empty(t, output.Breakouts)
}

func TestHandler_Execute_UnknownCompetitorIgnored(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	videos := baselineVideos("ghost", 10, 20, 30, 40)
	videos = append(videos, recentVideo("ghost", "candidate", 100))

	output, err := handler.Execute(context.Background(), &Input{
		Videos:      videos,
		Competitors: []models.Competitor{directCompetitor("comp-1")},
		Now:         testNow,
	})
	assert.NoError(t, err)
	assert.Empty(t, output.Breakouts)
}

func TestHandler_Execute_SortedByRatioDescending(t *testing.T) {
	handler := NewHandler(createTestConfig(), newTestLogger(t))

	videos := baselineVideos("comp-1", 10, 20, 30, 40)
	videos = append(videos,
		recentVideo("comp-1", "mild", 40),
		recentVideo("comp-1", "strong", 100),
	)

	output, err := handler.Execute(context.Background(), &Input{
		Videos:      videos,
		Competitors: []models.Competitor{directCompetitor("comp-1")},
		Now:         testNow,
	})
	assert.NoError(t, err)
	assert.Len(t, output.Breakouts, 2)
	assert.Equal(t, "strong", output.Breakouts[0].Video.ID)
	assert.Equal(t, "mild", output.Breakouts[1].Video.ID)
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name  string
		views []int64
		want  float64
	}{
		{"even count averages middle two", []int64{10, 20, 30, 40}, 25},
		{"odd count takes middle", []int64{10, 20, 30}, 20},
		{"single value", []int64{42}, 42},
		{"empty", nil, 0},
		{"unsorted input", []int64{40, 10, 30, 20}, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, median(tt.views))
		})
	}
}
