// internal/models/signal.go
package models

import "time"

// Signal is a candidate story item entering the scoring pipeline. It may
// come from a news feed, a transcript snippet or a manual suggestion.
type Signal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	TopicID     string    `json:"topicId,omitempty"`
	SourceCount int       `json:"sourceCount,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	IngestedAt  time.Time `json:"ingestedAt"`
}

// Text returns the searchable text of the signal (title plus description).
func (s Signal) Text() string {
	if s.Description == "" {
		return s.Title
	}
	return s.Title + " " + s.Description
}

// AgeHours returns hours since publication relative to now.
func (s Signal) AgeHours(now time.Time) float64 {
	if s.PublishedAt.IsZero() {
		return 0
	}
	return now.Sub(s.PublishedAt).Hours()
}
