// internal/models/fingerprint.go
package models

// ExtractionMethod tags how a fingerprint was produced.
const (
	ExtractionRegex      = "regex"
	ExtractionClassifier = "classifier"
)

// TopicFingerprint is the structured representation of a signal's content:
// extracted entities plus a coarse category. It is the unit the matching
// and story-dedup stages operate on. Entity sets hold canonicalized,
// deduplicated strings; empty sets are valid.
type TopicFingerprint struct {
	People    []string `json:"people"`
	Countries []string `json:"countries"`
	Orgs      []string `json:"orgs"`
	Topics    []string `json:"topics"`
	Category  string   `json:"category"`
	Language  string   `json:"language"`

	// ExtractionMethod is "classifier" only when the classifier's answer
	// was merged in before the deadline.
	ExtractionMethod string `json:"extractionMethod"`
}

// EntityCount returns the total number of extracted entities.
func (f TopicFingerprint) EntityCount() int {
	return len(f.People) + len(f.Countries) + len(f.Orgs) + len(f.Topics)
}

// MeaningfulCount counts non-person entities. Person names alone are weak
// evidence for routing, so the classifier is consulted when this is low.
func (f TopicFingerprint) MeaningfulCount() int {
	return len(f.Countries) + len(f.Orgs) + len(f.Topics)
}

// AllEntities returns every extracted entity in one slice.
func (f TopicFingerprint) AllEntities() []string {
	out := make([]string, 0, f.EntityCount())
	out = append(out, f.People...)
	out = append(out, f.Countries...)
	out = append(out, f.Orgs...)
	out = append(out, f.Topics...)
	return out
}

// StorySignature captures what a story is about for same-story detection:
// entities, the action theme and salient numbers.
type StorySignature struct {
	Entities    []string `json:"entities"`
	ActionTheme string   `json:"actionTheme"`
	Numbers     []string `json:"numbers"`
}
