// internal/engine/classify-urgency/config.go
package classifyurgency

type Config struct {
	PostTodayMinScore int
	HighScore         int
	ThisWeekMinScore  int

	DirectBreakoutMaxAgeHours      float64
	TrendsetterFreshMaxAgeHours    float64
	TrendsetterMinAgeHours         float64
	TrendsetterMaxAgeHours         float64
	VolumePostTodayMinCompetitors  int
	TrendsetterComboMinCompetitors int

	RecencyMaxAgeHours float64
	MacroCoverageDays  int
	DeepDiveMinMatches int
}

func LoadConfig() *Config {
	return &Config{
		PostTodayMinScore:              50,
		HighScore:                      80,
		ThisWeekMinScore:               50,
		DirectBreakoutMaxAgeHours:      48,
		TrendsetterFreshMaxAgeHours:    24,
		TrendsetterMinAgeHours:         6,
		TrendsetterMaxAgeHours:         72,
		VolumePostTodayMinCompetitors:  3,
		TrendsetterComboMinCompetitors: 2,
		RecencyMaxAgeHours:             168,
		MacroCoverageDays:              30,
		DeepDiveMinMatches:             2,
	}
}
