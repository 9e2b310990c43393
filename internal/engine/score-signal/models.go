// internal/engine/score-signal/models.go
package scoresignal

import "signal-engine/internal/models"

type Input struct {
	Signal        models.Signal          `json:"signal"`
	Context       *models.ScoringContext `json:"context"`
	UseClassifier bool                   `json:"useClassifier"`
}

type Output struct {
	Result models.ScoringResult `json:"result"`
}

type BatchInput struct {
	Signals       []models.Signal        `json:"signals"`
	Context       *models.ScoringContext `json:"context"`
	UseClassifier bool                   `json:"useClassifier"`
}

type BatchOutput struct {
	Results []models.ScoringResult `json:"results"`
}

// Contribution types as they appear in evidence payloads.
const (
	ContributionBreakout   = "competitor_breakout"
	ContributionVolume     = "competitor_volume"
	ContributionDnaMatch   = "dna_match"
	ContributionRecency    = "recency"
	ContributionFreshness  = "fresh_topic"
	ContributionSaturation = "saturation_penalty"
	ContributionLearned    = "learned_preference"
)
