// internal/engine/match-story/config.go
package matchstory

type Config struct {
	// SameStoryThreshold is a tuned heuristic, not ground truth. Keep it
	// overridable per show.
	SameStoryThreshold float64
	MinSharedEntities  int

	EntityWeight float64
	ActionWeight float64
	NumberWeight float64
}

func LoadConfig() *Config {
	return &Config{
		SameStoryThreshold: 0.7,
		MinSharedEntities:  2,
		EntityWeight:       0.6,
		ActionWeight:       0.25,
		NumberWeight:       0.15,
	}
}
