// internal/engine/match-story/models.go
package matchstory

import (
	"time"

	"signal-engine/internal/models"
)

type Input struct {
	Title    string                 `json:"title"`
	Entities []string               `json:"entities,omitempty"`
	History  []models.ProducerVideo `json:"history"`
	Now      time.Time              `json:"now"`
}

type Output struct {
	SameStory    bool    `json:"sameStory"`
	MatchedTitle string  `json:"matchedTitle,omitempty"`
	Similarity   float64 `json:"similarity"`
	DaysAgo      int     `json:"daysAgo,omitempty"`
}

// actionThemes buckets verbs and nouns into what a story is doing. Two
// stories about the same entities with different themes (talks vs
// sanctions) are different stories.
var actionThemes = map[string][]string{
	"crisis":    {"crisis", "emergency", "collapse", "meltdown"},
	"surge":     {"surge", "soar", "jump", "rally", "spike", "record high"},
	"drop":      {"drop", "fall", "plunge", "crash", "sink", "tumble"},
	"deal":      {"deal", "agreement", "pact", "accord", "talks"},
	"funding":   {"funding", "investment", "raises", "valuation"},
	"conflict":  {"war", "strike", "attack", "clash", "invasion", "offensive"},
	"sanctions": {"sanctions", "sanction", "embargo", "blacklist"},
	"policy":    {"policy", "regulation", "bill", "tariff", "ban"},
	"tech":      {"chip", "software", "model", "robot"},
	"energy":    {"oil", "gas", "pipeline", "opec", "barrel"},
	"earnings":  {"earnings", "profit", "revenue", "quarterly"},
	"layoff":    {"layoff", "layoffs", "job cuts", "fires"},
	"launch":    {"launch", "unveil", "release", "debut"},
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"that": true, "this": true, "over": true, "into": true, "amid": true,
	"after": true, "before": true, "about": true, "says": true, "will": true,
	"have": true, "been": true, "more": true, "than": true, "what": true,
	"when": true, "where": true, "while": true, "their": true, "could": true,
	"would": true, "should": true, "against": true, "between": true,
	"explainer": true, "explained": true, "update": true, "breaking": true,
	"news": true, "video": true, "watch": true, "live": true,
}
