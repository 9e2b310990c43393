// internal/engine/detect-breakouts/handler.go
package detectbreakouts

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"signal-engine/internal/common/logger"
	"signal-engine/internal/common/metrics"
	"signal-engine/internal/models"
)

const (
	ComponentTag = "detect-breakouts"
)

// Handler flags competitor videos whose views cleared the channel's
// typical performance for their format. Medians are computed per
// (competitor, format) bucket over the trailing window, excluding the
// recent candidates themselves so a breakout cannot raise its own
// baseline.
type Handler struct {
	config *Config
	logger logger.Logger
}

type bucketKey struct {
	competitorID string
	format       models.VideoFormat
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": ComponentTag}),
	}
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	windowStart := now.AddDate(0, 0, -h.config.WindowDays)
	recentStart := now.AddDate(0, 0, -h.config.RecentDays)

	competitors := make(map[string]models.Competitor, len(input.Competitors))
	for _, c := range input.Competitors {
		competitors[c.ID] = c
	}

	baselines := make(map[bucketKey][]int64)
	bucketSizes := make(map[bucketKey]int)
	var candidates []models.CompetitorVideo

	for _, video := range input.Videos {
		if video.PublishedAt.Before(windowStart) || video.PublishedAt.After(now) {
			continue
		}
		comp, known := competitors[video.CompetitorID]
		if !known || h.isSkipped(video, comp) {
			continue
		}

		key := bucketKey{video.CompetitorID, h.format(video)}
		bucketSizes[key]++
		if video.PublishedAt.Before(recentStart) {
			baselines[key] = append(baselines[key], video.Views)
		} else {
			candidates = append(candidates, video)
		}
	}

	output := &Output{}
	tierCounts := make(map[models.CompetitorTier]int)

	for _, video := range candidates {
		comp := competitors[video.CompetitorID]
		key := bucketKey{video.CompetitorID, h.format(video)}

		// Thin buckets produce meaningless medians. Trendsetters are
		// exempt: catching their early moves is the whole point and they
		// publish rarely.
		if bucketSizes[key] < h.config.MinBucketSize && comp.Tier != models.TierTrendsetter {
			continue
		}

		med := median(baselines[key])
		if med <= 0 {
			continue
		}
		ratio := float64(video.Views) / med
		if ratio < h.config.RatioThreshold {
			continue
		}
		// The stored ratio is rounded to two decimals for ranking and
		// evidence display.
		ratio = math.Round(ratio*100) / 100

		output.Breakouts = append(output.Breakouts, models.Breakout{
			Video:          video,
			CompetitorID:   video.CompetitorID,
			CompetitorTier: comp.Tier,
			Topic:          video.Topic,
			Ratio:          ratio,
			MedianViews:    med,
			DetectedAt:     now,
		})
		tierCounts[comp.Tier]++
	}

	sort.SliceStable(output.Breakouts, func(i, j int) bool {
		return output.Breakouts[i].Ratio > output.Breakouts[j].Ratio
	})

	for tier, count := range tierCounts {
		metrics.BreakoutsDetected.WithLabelValues(string(tier)).Set(float64(count))
	}

	h.logger.Debug("breakout detection complete", map[string]interface{}{
		"candidates": len(candidates),
		"breakouts":  len(output.Breakouts),
	})

	return output, nil
}

func (h *Handler) format(video models.CompetitorVideo) models.VideoFormat {
	if video.DurationSecs <= h.config.ShortMaxSecs {
		return models.FormatShort
	}
	return models.FormatLong
}

// isSkipped drops placeholder-topic videos and titles matching a
// competitor's skip patterns.
func (h *Handler) isSkipped(video models.CompetitorVideo, comp models.Competitor) bool {
	if excludedTopics[strings.ToLower(strings.TrimSpace(video.Topic))] {
		return true
	}
	lowerTitle := strings.ToLower(video.Title)
	for _, pattern := range comp.SkipPatterns {
		if pattern != "" && strings.Contains(lowerTitle, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// median averages the two middle values for even-count sets.
func median(views []int64) float64 {
	if len(views) == 0 {
		return 0
	}
	sorted := make([]int64, len(views))
	copy(sorted, views)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
