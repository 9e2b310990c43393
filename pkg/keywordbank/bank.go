// pkg/keywordbank/bank.go
package keywordbank

import "strings"

// Bank holds the keyword weight bank: canonical terms with relevance
// weights, concept groups that translate surface forms to one canonical
// concept, and the thresholds of the relevance gate.
type Bank struct {
	Version    string              `json:"version"`
	Weights    map[string]int      `json:"weights"`
	Concepts   map[string][]string `json:"concepts"`
	Thresholds Thresholds          `json:"thresholds"`

	// CommonWords are everyday words that must keep scoring even when a
	// channel display name collides with them.
	CommonWords []string `json:"commonWords"`

	// aliases maps every surface form (normalized) to its canonical concept
	aliases map[string]string
	// weights indexes Weights under normalized keys
	weights map[string]int
	common  map[string]bool
}

// Thresholds define the relevance gate. A signal passes when its total
// weighted score reaches Floor, at least one concept reaches HighConcept,
// and either two distinct concepts matched or one reached VeryHigh.
type Thresholds struct {
	Floor         int `json:"floor"`
	HighConcept   int `json:"highConcept"`
	VeryHigh      int `json:"veryHigh"`
	DefaultWeight int `json:"defaultWeight"`
}

// Hit is one keyword occurrence found in a text.
type Hit struct {
	Term    string `json:"term"`
	Concept string `json:"concept"`
	Weight  int    `json:"weight"`
}

// Canonical translates a surface form to its canonical concept. Unknown
// terms map to their normalized form.
func (b *Bank) Canonical(term string) string {
	t := Normalize(term)
	if c, ok := b.aliases[t]; ok {
		return c
	}
	return t
}

// Weight returns the bank weight for a term (after canonicalization).
// Terms absent from the bank get DefaultWeight so taxonomy keywords the
// bank has never seen still count.
func (b *Bank) Weight(term string) int {
	if w, ok := b.weights[b.Canonical(term)]; ok {
		return w
	}
	return b.Thresholds.DefaultWeight
}

// Known reports whether the term (or its canonical concept) is in the bank.
func (b *Bank) Known(term string) bool {
	_, ok := b.weights[b.Canonical(term)]
	return ok
}

// IsCommonWord reports whether the term is on the common-words whitelist.
func (b *Bank) IsCommonWord(term string) bool {
	return b.common[Normalize(term)]
}

// Terms returns all scannable surface forms, multi-word phrases first so
// "suez canal" wins over "canal".
func (b *Bank) Terms() []string {
	out := make([]string, 0, len(b.Weights)+len(b.aliases))
	seen := make(map[string]bool)
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for alias := range b.aliases {
		if strings.Contains(alias, " ") {
			add(alias)
		}
	}
	for term := range b.Weights {
		if strings.Contains(term, " ") {
			add(term)
		}
	}
	for alias := range b.aliases {
		add(alias)
	}
	for term := range b.Weights {
		add(term)
	}
	return out
}

// buildIndexes indexes every concept group member to its canonical
// concept and re-keys weights and common words under normalized terms.
func (b *Bank) buildIndexes() {
	b.aliases = make(map[string]string)
	for concept, forms := range b.Concepts {
		for _, form := range forms {
			b.aliases[Normalize(form)] = concept
		}
	}
	b.weights = make(map[string]int, len(b.Weights))
	for term, w := range b.Weights {
		b.weights[Normalize(term)] = w
	}
	b.common = make(map[string]bool, len(b.CommonWords))
	for _, w := range b.CommonWords {
		b.common[Normalize(w)] = true
	}
}
