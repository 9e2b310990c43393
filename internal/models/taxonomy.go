// internal/models/taxonomy.go
package models

import "time"

// DnaTopic is one entry of the show's content taxonomy ("DNA"): a topic the
// channel covers, with the vocabulary that identifies it.
type DnaTopic struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Keywords      []string  `json:"keywords"`
	Countries     []string  `json:"countries"`
	People        []string  `json:"people"`
	ExcludedNames []string  `json:"excludedNames"`
	IsActive      bool      `json:"isActive"`
	LastCoveredAt time.Time `json:"lastCoveredAt"`
	AutoLearned   bool      `json:"autoLearned"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DaysSinceCovered returns whole days since the topic was last covered,
// or -1 when it has never been covered.
func (t DnaTopic) DaysSinceCovered(now time.Time) int {
	if t.LastCoveredAt.IsZero() {
		return -1
	}
	return int(now.Sub(t.LastCoveredAt).Hours() / 24)
}

// DnaMatch records which taxonomy topic a signal matched and how strongly.
type DnaMatch struct {
	TopicID      string   `json:"topicId"`
	TopicName    string   `json:"topicName"`
	Score        int      `json:"score"`
	MatchedWords []string `json:"matchedWords"`
}
