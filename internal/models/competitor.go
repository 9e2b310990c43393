// internal/models/competitor.go
package models

import "time"

// CompetitorTier classifies how closely a competitor channel overlaps the
// show's niche.
type CompetitorTier string

const (
	TierDirect      CompetitorTier = "direct"
	TierTrendsetter CompetitorTier = "trendsetter"
	TierIndirect    CompetitorTier = "indirect"
)

// VideoFormat buckets videos by length so medians compare like with like.
type VideoFormat string

const (
	FormatShort VideoFormat = "short"
	FormatLong  VideoFormat = "long"
)

// Competitor is a monitored channel.
type Competitor struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Tier         CompetitorTier `json:"tier"`
	SkipPatterns []string       `json:"skipPatterns"`
}

// CompetitorVideo is one published video from a monitored channel.
type CompetitorVideo struct {
	ID           string    `json:"id"`
	CompetitorID string    `json:"competitorId"`
	Title        string    `json:"title"`
	Topic        string    `json:"topic"`
	Views        int64     `json:"views"`
	DurationSecs int       `json:"durationSecs"`
	PublishedAt  time.Time `json:"publishedAt"`
}

// Format buckets the video as short or long form at the 90 second boundary.
func (v CompetitorVideo) Format() VideoFormat {
	if v.DurationSecs <= 90 {
		return FormatShort
	}
	return FormatLong
}

// Breakout is a competitor video whose views cleared the channel's median
// for its topic and format by the configured ratio.
type Breakout struct {
	Video          CompetitorVideo `json:"video"`
	CompetitorID   string          `json:"competitorId"`
	CompetitorTier CompetitorTier  `json:"competitorTier"`
	Topic          string          `json:"topic"`
	Ratio          float64         `json:"ratio"`
	MedianViews    float64         `json:"medianViews"`
	DetectedAt     time.Time       `json:"detectedAt"`
}

// AgeHours returns hours since the breakout video was published.
func (b Breakout) AgeHours(now time.Time) float64 {
	return now.Sub(b.Video.PublishedAt).Hours()
}
