// internal/engine/match-dna/models.go
package matchdna

import "signal-engine/internal/models"

type Input struct {
	Text        string                  `json:"text"`
	Fingerprint models.TopicFingerprint `json:"fingerprint"`
	Topics      []models.DnaTopic       `json:"topics"`
}

type Output struct {
	MatchedTopicIDs   []string `json:"matchedTopicIds"`
	MatchedTopicNames []string `json:"matchedTopicNames"`
	MatchedKeywords   []string `json:"matchedKeywords"`
}

// Matched reports whether any taxonomy topic matched.
func (o *Output) Matched() bool {
	return len(o.MatchedTopicIDs) > 0
}
