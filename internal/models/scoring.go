// internal/models/scoring.go
package models

import "time"

// UrgencyTier is the recommended action for a scored signal.
type UrgencyTier string

const (
	TierPostToday UrgencyTier = "post_today"
	TierThisWeek  UrgencyTier = "this_week"
	TierBacklog   UrgencyTier = "backlog"
	TierEvergreen UrgencyTier = "evergreen"
)

// BacklogCategory sub-classifies backlog recommendations.
type BacklogCategory string

const (
	BacklogEvergreen  BacklogCategory = "evergreen"
	BacklogMacroTrend BacklogCategory = "macro_trend"
	BacklogSeasonal   BacklogCategory = "seasonal"
	BacklogDeepDive   BacklogCategory = "deep_dive"
)

// SignalContribution is one scored component with its evidence payload.
// Evidence is what the producer sees when asking why a topic surfaced,
// so it always carries the concrete matched facts, not just the points.
type SignalContribution struct {
	Type     string                 `json:"type"`
	Text     string                 `json:"text"`
	Points   int                    `json:"points"`
	Evidence map[string]interface{} `json:"evidence,omitempty"`
}

// ScoringResult is the full outcome for one signal. Score is always the
// sum of contributions clamped to [0,100].
type ScoringResult struct {
	SignalID        string               `json:"signalId"`
	Score           int                  `json:"score"`
	IsValid         bool                 `json:"isValid"`
	Contributions   []SignalContribution `json:"signals"`
	Tier            UrgencyTier          `json:"urgencyTier"`
	BacklogCategory BacklogCategory      `json:"backlogCategory,omitempty"`
	TierReason      string               `json:"tierReason"`
	StrategicLabel  string               `json:"strategicLabel,omitempty"`
	Fingerprint     TopicFingerprint     `json:"fingerprint"`
	DnaMatch        *DnaMatch            `json:"dnaMatch,omitempty"`
	Breakouts       []Breakout           `json:"breakouts,omitempty"`
	SameStory       bool                 `json:"sameStory,omitempty"`
	ScoredAt        time.Time            `json:"scoredAt"`
	Error           string               `json:"error,omitempty"`
}

// ProducerVideo is one entry of the show's own publishing history, used
// for saturation and freshness checks.
type ProducerVideo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	TopicID     string    `json:"topicId,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ScoringContext is the shared read-only state a batch scores against.
// Built once per batch; individual signal scoring never mutates it.
type ScoringContext struct {
	Topics    []DnaTopic
	Breakouts []Breakout
	History   []ProducerVideo
	Weights   map[string]LearnedWeight
	Now       time.Time
}
