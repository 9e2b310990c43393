// internal/engine/classify-urgency/models.go
package classifyurgency

import (
	"time"

	"signal-engine/internal/models"
)

// Input carries the facts the tier rules evaluate. Everything is
// precomputed by the scoring stage; classification itself is pure.
type Input struct {
	Score                 int               `json:"score"`
	SameStory             bool              `json:"sameStory"`
	DnaMatched            bool              `json:"dnaMatched"`
	DnaMatchCount         int               `json:"dnaMatchCount"`
	SignalAgeHours        float64           `json:"signalAgeHours"`
	Breakouts             []models.Breakout `json:"breakouts,omitempty"`
	CompetitorCount       int               `json:"competitorCount"`
	CompetitorsWithin48h  int               `json:"competitorsWithin48h"`
	PositiveContributions int               `json:"positiveContributions"`
	Title                 string            `json:"title"`
	Entities              []string          `json:"entities,omitempty"`
	TopicCoveredDaysAgo   int               `json:"topicCoveredDaysAgo"`
	Now                   time.Time         `json:"now"`
}

type Output struct {
	Tier            models.UrgencyTier     `json:"tier"`
	BacklogCategory models.BacklogCategory `json:"backlogCategory,omitempty"`
	Reason          string                 `json:"reason"`
}

// macroActors are the geopolitical heavyweights whose presence, combined
// with a conflict or trade term, marks a signal as a macro trend.
var macroActors = map[string]bool{
	"usa": true, "china": true, "russia": true, "iran": true,
	"israel": true, "saudi arabia": true, "turkey": true, "india": true,
	"nato": true, "opec": true, "fed": true,
}

var macroTerms = []string{
	"war", "conflict", "invasion", "strike", "trade", "tariff",
	"sanctions", "embargo", "blockade", "escalation",
}

var evergreenPhrases = []string{
	"how to", "how the", "how do", "what is", "what are", "why ",
	"explained", "explainer", "history of", "guide to", "the rise of",
	"the fall of",
}

var seasonalTerms = []string{
	"christmas", "ramadan", "eid", "thanksgiving", "new year",
	"black friday", "election day", "q1", "q2", "q3", "q4",
	"quarter", "summer", "winter", "holiday season",
}
