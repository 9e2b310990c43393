// internal/engine/detect-breakouts/config.go
package detectbreakouts

type Config struct {
	WindowDays     int
	RecentDays     int
	RatioThreshold float64
	MinBucketSize  int
	ShortMaxSecs   int
}

func LoadConfig() *Config {
	return &Config{
		WindowDays:     90,
		RecentDays:     7,
		RatioThreshold: 1.5,
		MinBucketSize:  5,
		ShortMaxSecs:   90,
	}
}
