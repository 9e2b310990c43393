// internal/engine/classify-urgency/handler.go
package classifyurgency

import (
	"context"
	"regexp"
	"strings"

	"signal-engine/internal/common/logger"
	"signal-engine/internal/models"
)

const (
	ComponentTag = "classify-urgency"
)

// tierRule is one guard/result pair. Rules are evaluated top to bottom
// and the first satisfied guard wins; later rules assume earlier ones
// failed. The order encodes product priority: competitor urgency beats
// topical fit beats the catch-all.
type tierRule struct {
	tier   models.UrgencyTier
	reason string
	guard  func(c *Config, in *Input) bool
}

var tierRules = []tierRule{
	// post_today: score floor plus hard competitor evidence. A same-story
	// repeat is never post_today no matter how strong the evidence.
	{
		tier:   models.TierPostToday,
		reason: "direct competitor breakout in the last 48h",
		guard: func(c *Config, in *Input) bool {
			return in.postTodayEligible(c) &&
				in.hasBreakout(models.TierDirect, c.DirectBreakoutMaxAgeHours)
		},
	},
	{
		tier:   models.TierPostToday,
		reason: "trendsetter breakout in the last 24h",
		guard: func(c *Config, in *Input) bool {
			return in.postTodayEligible(c) &&
				in.hasBreakout(models.TierTrendsetter, c.TrendsetterFreshMaxAgeHours)
		},
	},
	{
		tier:   models.TierPostToday,
		reason: "three or more competitors covering within 48h",
		guard: func(c *Config, in *Input) bool {
			return in.postTodayEligible(c) &&
				in.CompetitorsWithin48h >= c.VolumePostTodayMinCompetitors
		},
	},
	{
		tier:   models.TierPostToday,
		reason: "trendsetter breakout under 72h with multiple competitors",
		guard: func(c *Config, in *Input) bool {
			return in.postTodayEligible(c) &&
				in.hasBreakout(models.TierTrendsetter, c.TrendsetterMaxAgeHours) &&
				in.CompetitorCount >= c.TrendsetterComboMinCompetitors
		},
	},
	{
		tier:   models.TierPostToday,
		reason: "very high score with competitor confirmation",
		guard: func(c *Config, in *Input) bool {
			return in.postTodayEligible(c) && in.Score >= c.HighScore &&
				(len(in.Breakouts) > 0 || in.CompetitorCount > 0)
		},
	},

	// this_week: topical fit or softer competitor evidence.
	{
		tier:   models.TierThisWeek,
		reason: "taxonomy match on a recent signal without a direct breakout",
		guard: func(c *Config, in *Input) bool {
			return in.DnaMatched && in.SignalAgeHours < c.RecencyMaxAgeHours &&
				!in.hasBreakout(models.TierDirect, c.DirectBreakoutMaxAgeHours)
		},
	},
	{
		tier:   models.TierThisWeek,
		reason: "trendsetter breakout between 6h and 72h old",
		guard: func(c *Config, in *Input) bool {
			return in.hasBreakoutBetween(models.TierTrendsetter,
				c.TrendsetterMinAgeHours, c.TrendsetterMaxAgeHours)
		},
	},
	{
		tier:   models.TierThisWeek,
		reason: "high score with a taxonomy match",
		guard: func(c *Config, in *Input) bool {
			return in.Score >= c.ThisWeekMinScore && in.DnaMatched
		},
	},
	{
		tier:   models.TierThisWeek,
		reason: "multiple competitors covering without a recent breakout",
		guard: func(c *Config, in *Input) bool {
			return in.CompetitorCount >= 2 &&
				!in.hasAnyBreakout(c.DirectBreakoutMaxAgeHours)
		},
	},
	// Same-story repeats with any positive signal are demoted here rather
	// than discarded: the producer may still want a follow-up angle.
	{
		tier:   models.TierThisWeek,
		reason: "recent repeat of a covered story, demoted",
		guard: func(c *Config, in *Input) bool {
			return in.SameStory && in.PositiveContributions > 0
		},
	},
}

// Handler assigns an urgency tier by walking the ordered rule list, then
// sub-categorizes anything that falls through to the backlog.
type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": ComponentTag}),
	}
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	for _, rule := range tierRules {
		if rule.guard(h.config, input) {
			return &Output{Tier: rule.tier, Reason: rule.reason}, nil
		}
	}
	return h.classifyBacklog(input), nil
}

// classifyBacklog sub-categorizes by content shape, in priority order.
// A timeless explainer surfaces as the evergreen tier; everything else
// lands in the backlog with its category.
func (h *Handler) classifyBacklog(input *Input) *Output {
	lower := strings.ToLower(input.Title)

	if hasEvergreenPhrasing(lower) && !hasDateReference(lower) {
		return &Output{
			Tier:            models.TierEvergreen,
			BacklogCategory: models.BacklogEvergreen,
			Reason:          "timeless explainer phrasing",
		}
	}
	if h.isMacroTrend(input, lower) {
		return &Output{
			Tier:            models.TierBacklog,
			BacklogCategory: models.BacklogMacroTrend,
			Reason:          "major actor in a structural trend",
		}
	}
	if hasSeasonalReference(lower) {
		return &Output{
			Tier:            models.TierBacklog,
			BacklogCategory: models.BacklogSeasonal,
			Reason:          "seasonal or dated reference",
		}
	}
	if input.DnaMatchCount >= h.config.DeepDiveMinMatches {
		return &Output{
			Tier:            models.TierBacklog,
			BacklogCategory: models.BacklogDeepDive,
			Reason:          "spans multiple taxonomy topics",
		}
	}
	return &Output{
		Tier:            models.TierEvergreen,
		BacklogCategory: models.BacklogEvergreen,
		Reason:          "no urgency evidence",
	}
}

func (h *Handler) isMacroTrend(input *Input, lowerTitle string) bool {
	hasActor := false
	for _, e := range input.Entities {
		if macroActors[strings.ToLower(e)] {
			hasActor = true
			break
		}
	}
	if hasActor {
		for _, term := range macroTerms {
			if strings.Contains(lowerTitle, term) {
				return true
			}
		}
	}
	return input.TopicCoveredDaysAgo >= h.config.MacroCoverageDays
}

func (in *Input) postTodayEligible(c *Config) bool {
	return !in.SameStory && in.Score >= c.PostTodayMinScore
}

func (in *Input) hasBreakout(tier models.CompetitorTier, maxAgeHours float64) bool {
	for _, b := range in.Breakouts {
		if b.CompetitorTier == tier && b.AgeHours(in.Now) < maxAgeHours {
			return true
		}
	}
	return false
}

func (in *Input) hasBreakoutBetween(tier models.CompetitorTier, minAgeHours, maxAgeHours float64) bool {
	for _, b := range in.Breakouts {
		age := b.AgeHours(in.Now)
		if b.CompetitorTier == tier && age >= minAgeHours && age < maxAgeHours {
			return true
		}
	}
	return false
}

func (in *Input) hasAnyBreakout(maxAgeHours float64) bool {
	for _, b := range in.Breakouts {
		if b.AgeHours(in.Now) < maxAgeHours {
			return true
		}
	}
	return false
}

var yearPattern = regexp.MustCompile(`\b20\d{2}\b`)

func hasEvergreenPhrasing(lowerTitle string) bool {
	for _, phrase := range evergreenPhrases {
		if strings.Contains(lowerTitle, phrase) {
			return true
		}
	}
	return false
}

func hasDateReference(lowerTitle string) bool {
	if yearPattern.MatchString(lowerTitle) {
		return true
	}
	return strings.Contains(lowerTitle, "today") ||
		strings.Contains(lowerTitle, "this week") ||
		strings.Contains(lowerTitle, "this month")
}

func hasSeasonalReference(lowerTitle string) bool {
	if yearPattern.MatchString(lowerTitle) {
		return true
	}
	for _, term := range seasonalTerms {
		if strings.Contains(lowerTitle, term) {
			return true
		}
	}
	return false
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
