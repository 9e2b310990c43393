// internal/engine/apply-learning/models.go
package applylearning

import "signal-engine/internal/models"

type FeedbackInput struct {
	Event  models.FeedbackEvent `json:"event"`
	Title  string               `json:"title"`
	Topics []models.DnaTopic    `json:"topics"`
}

type FeedbackOutput struct {
	UpdatedKeys     []string `json:"updatedKeys"`
	ExpandedTopicID string   `json:"expandedTopicId,omitempty"`
	NewKeywords     []string `json:"newKeywords,omitempty"`
}

type AdjustInput struct {
	BaseScore   int                             `json:"baseScore"`
	Fingerprint models.TopicFingerprint         `json:"fingerprint"`
	Weights     map[string]models.LearnedWeight `json:"weights"`
}

type AdjustOutput struct {
	AdjustedScore int `json:"adjustedScore"`
	Adjustment    int `json:"adjustment"`
}

// learningStopwords filters words too generic to become taxonomy
// keywords during auto-expansion.
var learningStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"that": true, "this": true, "over": true, "into": true, "amid": true,
	"after": true, "says": true, "will": true, "have": true, "been": true,
	"more": true, "than": true, "what": true, "when": true, "their": true,
	"could": true, "would": true, "should": true, "against": true,
	"between": true, "about": true, "news": true, "video": true,
	"breaking": true, "update": true, "latest": true, "today": true,
}
