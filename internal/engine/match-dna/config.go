// internal/engine/match-dna/config.go
package matchdna

type Config struct {
	// MinKeywordLength guards the token-in-keyword direction: tokens
	// shorter than this match too many keywords by accident.
	MinKeywordLength int
}

func LoadConfig() *Config {
	return &Config{
		MinKeywordLength: 4,
	}
}
