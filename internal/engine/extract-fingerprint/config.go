// internal/engine/extract-fingerprint/config.go
package extractfingerprint

import "time"

type Config struct {
	UseClassifier     bool
	ClassifierTimeout time.Duration
	CacheTTL          time.Duration

	// MinTextLength is the shortest text worth extracting. Anything under
	// it is fragments, not a story.
	MinTextLength int
}

func LoadConfig() *Config {
	return &Config{
		UseClassifier:     true,
		ClassifierTimeout: 2 * time.Second,
		CacheTTL:          24 * time.Hour,
		MinTextLength:     30,
	}
}
