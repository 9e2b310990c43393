// internal/engine/extract-fingerprint/models.go
package extractfingerprint

import "signal-engine/internal/models"

type Input struct {
	Text          string `json:"text"`
	UseClassifier bool   `json:"useClassifier"`
}

type Output struct {
	Fingerprint models.TopicFingerprint `json:"fingerprint"`
	FromCache   bool                    `json:"fromCache"`
}
