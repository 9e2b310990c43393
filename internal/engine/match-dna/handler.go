// internal/engine/match-dna/handler.go
package matchdna

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"signal-engine/internal/common/logger"
)

const (
	ComponentTag = "match-dna"
)

// Handler compares a signal against the show's taxonomy. Matching is
// intentionally cheap string containment; the Learning layer improves
// keyword quality over time, not this code.
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
	lower := strings.ToLower(input.Text)
	tokens := tokenize(lower)

	// Extracted entities participate in matching alongside raw tokens so
	// canonical labels hit keywords their surface form never would.
	signalTerms := append(tokens, input.Fingerprint.AllEntities()...)

	output := &Output{}
	matchedKeywords := make(map[string]bool)

	for _, topic := range input.Topics {
		if !topic.IsActive {
			continue
		}
		// Topics with no keywords can never match; skip them defensively
		// rather than treating them as malformed.
		if len(topic.Keywords) == 0 {
			continue
		}

		var hits []string
		for _, kw := range topic.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if h.keywordMatches(kw, lower, signalTerms) {
				hits = append(hits, kw)
			}
		}

		if len(hits) == 0 && !h.nameOverlaps(topic.Name, lower) {
			continue
		}

		output.MatchedTopicIDs = append(output.MatchedTopicIDs, topic.ID)
		output.MatchedTopicNames = append(output.MatchedTopicNames, topic.Name)
		for _, kw := range hits {
			matchedKeywords[kw] = true
		}
	}

	for kw := range matchedKeywords {
		output.MatchedKeywords = append(output.MatchedKeywords, kw)
	}
	sort.Strings(output.MatchedKeywords)

	return output, nil
}

// keywordMatches tests containment in both directions: the keyword inside
// the text, or a text token inside a longer keyword. Keywords shorter than
// MinKeywordLength only match whole tokens or entities; "ai" inside
// "ukraine" is not a hit.
func (h *Handler) keywordMatches(keyword, lowerText string, signalTerms []string) bool {
	if len([]rune(keyword)) < h.config.MinKeywordLength {
		for _, term := range signalTerms {
			if term == keyword {
				return true
			}
		}
		return false
	}
	if strings.Contains(lowerText, keyword) {
		return true
	}
	for _, term := range signalTerms {
		if len(term) >= h.config.MinKeywordLength && strings.Contains(keyword, term) {
			return true
		}
	}
	return false
}

// nameOverlaps tests whether the topic's display name shares a meaningful
// word with the signal text.
func (h *Handler) nameOverlaps(name, lowerText string) bool {
	for _, word := range tokenize(strings.ToLower(name)) {
		if len(word) >= h.config.MinKeywordLength && strings.Contains(lowerText, word) {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
