// internal/models/feedback.go
package models

import "time"

// FeedbackAction is the producer's verdict on a recommendation.
type FeedbackAction string

const (
	ActionLike   FeedbackAction = "like"
	ActionReject FeedbackAction = "reject"
	ActionUsed   FeedbackAction = "used"
)

// FeedbackEvent is one piece of producer feedback on a scored signal.
type FeedbackEvent struct {
	ID          string           `json:"id"`
	SignalID    string           `json:"signalId"`
	Action      FeedbackAction   `json:"action"`
	Category    string           `json:"category"`
	Fingerprint TopicFingerprint `json:"fingerprint"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// LearnedWeight is a multiplicative preference weight accumulated from
// feedback. Key is "<kind>:<value>", e.g. "category:us_china_trade" or
// "person:maduro". Weights stay within [0.0, 2.0], nominal 1.0.
type LearnedWeight struct {
	Key           string    `json:"key"`
	Weight        float64   `json:"weight"`
	LikedCount    int       `json:"likedCount"`
	RejectedCount int       `json:"rejectedCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// WeightKind identifies what a learned weight applies to.
const (
	WeightKindCategory = "category"
	WeightKindCountry  = "country"
	WeightKindTopic    = "topic"
	WeightKindPerson   = "person"
)
