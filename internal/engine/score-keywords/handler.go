// internal/engine/score-keywords/handler.go
package scorekeywords

import (
	"context"
	"strings"

	"signal-engine/internal/common/logger"
	"signal-engine/pkg/keywordbank"
)

const (
	ComponentTag = "score-keywords"
)

// Handler decides whether a set of matched keywords is valid topical
// evidence. The three-part gate suppresses false positives from shared
// generic words: two texts both mentioning "president" never count as
// topical overlap.
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
	bank := h.config.Bank

	// Per concept, keep only the maximum weight observed so translations
	// and synonyms of one idea cannot stack. Normalization folds case and
	// Arabic surface variants so diacritized spellings still hit the bank.
	concepts := make(map[string]int)
	for _, kw := range input.Keywords {
		kw = keywordbank.Normalize(kw)
		if kw == "" || h.isExcludedName(kw, input.ExcludedNames) {
			continue
		}
		weight := bank.Weight(kw)
		if weight == 0 {
			continue
		}
		concept := bank.Canonical(kw)
		if weight > concepts[concept] {
			concepts[concept] = weight
		}
	}

	total := 0
	maxWeight := 0
	highCount := 0
	for _, w := range concepts {
		total += w
		if w > maxWeight {
			maxWeight = w
		}
		if w >= bank.Thresholds.HighConcept {
			highCount++
		}
	}

	// A very-high concept (named leader, country, major org) is sufficient
	// evidence on its own. Anything weaker must clear the score floor with
	// at least two distinct concepts, one of them high-value.
	valid := maxWeight >= bank.Thresholds.VeryHigh ||
		(total >= bank.Thresholds.Floor && highCount >= 1 && len(concepts) >= 2)

	return &Output{
		Score:        total,
		Concepts:     concepts,
		IsValidMatch: valid,
	}, nil
}

// isExcludedName strips the producer's own channel and competitor display
// names. Short names only match exactly; longer names also strip keywords
// extending past them, where accidental collision is unlikely. Bank
// common words always keep scoring, even against a colliding name.
func (h *Handler) isExcludedName(keyword string, excluded []string) bool {
	if h.config.Bank.IsCommonWord(keyword) {
		return false
	}
	for _, name := range excluded {
		name = keywordbank.Normalize(name)
		if name == "" {
			continue
		}
		if keyword == name {
			return true
		}
		if len(name) >= 5 && len(keyword) > len(name)+3 && strings.Contains(keyword, name) {
			return true
		}
	}
	return false
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
