// internal/engine/score-signal/config.go
package scoresignal

// TrendsetterStep is one rung of the trendsetter decay ladder: breakouts
// younger than MaxAgeHours score Points. Steps are evaluated in order.
type TrendsetterStep struct {
	MaxAgeHours float64
	Points      int
}

type Config struct {
	BreakoutDirectPoints int
	BreakoutCrossPoints  int
	TrendsetterLadder    []TrendsetterStep

	VolumeDirectPoints      int
	VolumeMixedPoints       int
	VolumeTrendsetterPoints int
	VolumeIndirectPoints    int

	DnaMatchPoints     int
	RecencyFreshPoints int
	RecencyWeekPoints  int
	FreshnessPoints    int
	SaturationPenalty  int

	RecencyFreshHours float64
	RecencyWeekHours  float64
	FreshnessDays     int
	SaturationDays    int

	MinValidScore int
	Workers       int
}

func LoadConfig() *Config {
	return &Config{
		BreakoutDirectPoints: 30,
		BreakoutCrossPoints:  15,
		TrendsetterLadder: []TrendsetterStep{
			{MaxAgeHours: 6, Points: 25},
			{MaxAgeHours: 24, Points: 20},
			{MaxAgeHours: 72, Points: 15},
			{MaxAgeHours: 168, Points: 10},
		},
		VolumeDirectPoints:      20,
		VolumeMixedPoints:       15,
		VolumeTrendsetterPoints: 12,
		VolumeIndirectPoints:    10,
		DnaMatchPoints:          20,
		RecencyFreshPoints:      15,
		RecencyWeekPoints:       5,
		FreshnessPoints:         15,
		SaturationPenalty:       -30,
		RecencyFreshHours:       48,
		RecencyWeekHours:        168,
		FreshnessDays:           30,
		SaturationDays:          14,
		MinValidScore:           30,
		Workers:                 4,
	}
}
