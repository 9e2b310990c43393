// internal/engine/match-story/handler.go
package matchstory

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"signal-engine/internal/common/logger"
	"signal-engine/internal/models"
)

const (
	ComponentTag = "match-story"
)

var (
	moneyPattern   = regexp.MustCompile(`\$\s?\d+(?:\.\d+)?\s?(?:billion|million|trillion|bn|mn|m|b)?`)
	percentPattern = regexp.MustCompile(`\d+(?:\.\d+)?\s?%`)
	bigNumPattern  = regexp.MustCompile(`\b\d{2,}(?:,\d{3})*\b`)
)

// Handler distinguishes "same story" from "same topic". Saturation must
// punish a near-duplicate of something already covered, never legitimate
// follow-up coverage of an evolving story.
type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": ComponentTag}),
	}
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	sig := h.buildSignature(input.Title, input.Entities)

	best := &Output{}
	for _, video := range input.History {
		other := h.buildSignature(video.Title, nil)
		similarity := h.compare(sig, other)
		if similarity > best.Similarity {
			best.Similarity = similarity
			best.MatchedTitle = video.Title
			best.DaysAgo = int(now.Sub(video.PublishedAt).Hours() / 24)
		}
	}

	best.SameStory = best.Similarity >= h.config.SameStoryThreshold
	return best, nil
}

// buildSignature reduces a title to what the story is about: its salient
// entities, its action theme and its salient numbers.
func (h *Handler) buildSignature(title string, entities []string) models.StorySignature {
	lower := strings.ToLower(title)

	seen := make(map[string]bool)
	var sigEntities []string
	add := func(e string) {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !seen[e] {
			seen[e] = true
			sigEntities = append(sigEntities, e)
		}
	}
	for _, e := range entities {
		add(e)
	}
	for _, token := range tokenize(lower) {
		if len(token) >= 4 && !stopwords[token] && !isNumeric(token) {
			add(token)
		}
	}
	sort.Strings(sigEntities)

	return models.StorySignature{
		Entities:    sigEntities,
		ActionTheme: detectTheme(lower),
		Numbers:     extractNumbers(lower),
	}
}

// compare scores two signatures. Entity overlap carries most of the
// weight; a shared action theme and shared salient numbers confirm it.
// Fewer than MinSharedEntities shared entities is never the same story.
func (h *Handler) compare(a, b models.StorySignature) float64 {
	shared := 0
	bSet := make(map[string]bool, len(b.Entities))
	for _, e := range b.Entities {
		bSet[e] = true
	}
	for _, e := range a.Entities {
		if bSet[e] {
			shared++
		}
	}
	if shared < h.config.MinSharedEntities {
		return 0
	}

	smaller := len(a.Entities)
	if len(b.Entities) < smaller {
		smaller = len(b.Entities)
	}
	entityScore := float64(shared) / float64(smaller)

	actionScore := 0.0
	if a.ActionTheme != "" && a.ActionTheme == b.ActionTheme {
		actionScore = 1.0
	}

	numberScore := 0.0
	if len(a.Numbers) == 0 && len(b.Numbers) == 0 {
		numberScore = 1.0
	} else {
		aNums := make(map[string]bool, len(a.Numbers))
		for _, n := range a.Numbers {
			aNums[n] = true
		}
		for _, n := range b.Numbers {
			if aNums[n] {
				numberScore = 1.0
				break
			}
		}
	}

	return h.config.EntityWeight*entityScore +
		h.config.ActionWeight*actionScore +
		h.config.NumberWeight*numberScore
}

func detectTheme(lowerTitle string) string {
	for _, theme := range themeOrder {
		for _, kw := range actionThemes[theme] {
			if strings.Contains(lowerTitle, kw) {
				return theme
			}
		}
	}
	return "general"
}

// themeOrder pins iteration order so theme detection is deterministic
// when a title mentions several themes.
var themeOrder = []string{
	"sanctions", "conflict", "crisis", "layoff", "earnings", "funding",
	"deal", "launch", "policy", "surge", "drop", "energy", "tech",
}

func extractNumbers(lowerTitle string) []string {
	var numbers []string
	seen := make(map[string]bool)
	for _, pattern := range []*regexp.Regexp{moneyPattern, percentPattern, bigNumPattern} {
		for _, match := range pattern.FindAllString(lowerTitle, -1) {
			normalized := strings.Join(strings.Fields(match), "")
			if !seen[normalized] {
				seen[normalized] = true
				numbers = append(numbers, normalized)
			}
		}
	}
	sort.Strings(numbers)
	return numbers
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isNumeric(token string) bool {
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
