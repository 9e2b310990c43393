// internal/engine/apply-learning/config.go
package applylearning

type Config struct {
	LikeCategoryMultiplier float64
	LikeEntityMultiplier   float64
	LikePersonMultiplier   float64
	RejectMultiplier       float64
	RejectPersonMultiplier float64

	MinWeight float64
	MaxWeight float64

	CategoryScale int
	EntityScale   int
	PersonScale   int

	MaxNewKeywords int
	MinKeywordLen  int
}

func LoadConfig() *Config {
	return &Config{
		LikeCategoryMultiplier: 1.10,
		LikeEntityMultiplier:   1.08,
		LikePersonMultiplier:   1.05,
		RejectMultiplier:       0.95,
		RejectPersonMultiplier: 0.97,
		MinWeight:              0.0,
		MaxWeight:              2.0,
		CategoryScale:          20,
		EntityScale:            15,
		PersonScale:            10,
		MaxNewKeywords:         3,
		MinKeywordLen:          4,
	}
}
