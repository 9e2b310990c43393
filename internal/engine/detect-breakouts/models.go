// internal/engine/detect-breakouts/models.go
package detectbreakouts

import (
	"time"

	"signal-engine/internal/models"
)

type Input struct {
	Videos      []models.CompetitorVideo `json:"videos"`
	Competitors []models.Competitor      `json:"competitors"`
	Now         time.Time                `json:"now"`
}

type Output struct {
	Breakouts []models.Breakout `json:"breakouts"`
}

// excludedTopics are placeholder classifications that must skew neither
// the median baseline nor breakout emission.
var excludedTopics = map[string]bool{
	"":              true,
	"other":         true,
	"other_stories": true,
	"other_misc":    true,
	"uncategorized": true,
}
