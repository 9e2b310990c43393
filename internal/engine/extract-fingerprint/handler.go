// internal/engine/extract-fingerprint/handler.go
package extractfingerprint

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"signal-engine/internal/cache"
	"signal-engine/internal/classifier"
	"signal-engine/internal/common/logger"
	"signal-engine/internal/common/metrics"
	"signal-engine/internal/models"
)

const (
	ComponentTag = "extract-fingerprint"

	cacheKind = "fingerprint"
)

// Classifier is the narrow view of the external classification service
// this handler needs. The engine works without one, at reduced precision.
type Classifier interface {
	Enabled() bool
	Classify(ctx context.Context, text string) (*classifier.Classification, error)
}

// Handler turns raw text into a TopicFingerprint. The regex path always
// produces a result; the classifier result merges in only if it arrives
// before the deadline. A late answer is discarded, never applied.
type Handler struct {
	config     *Config
	cache      cache.Store
	classifier Classifier
	logger     logger.Logger
}

func NewHandler(config *Config, cacheStore cache.Store, cls Classifier, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		cache:      cacheStore,
		classifier: cls,
		logger:     log.WithFields(map[string]interface{}{"component": ComponentTag}),
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	text := strings.TrimSpace(input.Text)
	if len(text) < h.config.MinTextLength || isGreetingOnly(text) {
		return &Output{Fingerprint: emptyFingerprint(text)}, nil
	}

	cacheKey := cache.Key(cacheKind, text)
	if h.cache != nil {
		if data, ok := h.cache.Get(ctx, cacheKey); ok {
			var fp models.TopicFingerprint
			if err := json.Unmarshal(data, &fp); err == nil {
				metrics.FingerprintCacheHits.WithLabelValues(cacheKind).Inc()
				return &Output{Fingerprint: fp, FromCache: true}, nil
			}
		}
		metrics.FingerprintCacheMisses.WithLabelValues(cacheKind).Inc()
	}

	fp := h.extractRegex(text)

	// The classifier is worth its latency only when the regex path found
	// too little to route on. Person names alone don't count.
	if input.UseClassifier && h.config.UseClassifier &&
		h.classifier != nil && h.classifier.Enabled() && fp.MeaningfulCount() < 2 {
		h.mergeClassifier(ctx, text, &fp)
	}

	if h.cache != nil {
		if data, err := json.Marshal(fp); err == nil {
			h.cache.Put(ctx, cacheKey, data, h.config.CacheTTL)
		}
	}

	return &Output{Fingerprint: fp}, nil
}

// extractRegex scans the surface-form tables against the lower-cased text
// and collects canonical labels.
func (h *Handler) extractRegex(text string) models.TopicFingerprint {
	lower := " " + strings.ToLower(text) + " "

	fp := models.TopicFingerprint{
		People:           scanTable(lower, personPatterns),
		Countries:        scanTable(lower, countryPatterns),
		Orgs:             scanTable(lower, orgPatterns),
		Topics:           scanTable(lower, topicPatterns),
		Language:         detectLanguage(text),
		ExtractionMethod: models.ExtractionRegex,
	}
	fp.Category = deriveCategory(fp)
	return fp
}

// mergeClassifier races one classifier call against the configured
// deadline. On timeout or error the regex result stands unchanged; an
// immediate failure must not hold the signal until the deadline.
func (h *Handler) mergeClassifier(ctx context.Context, text string, fp *models.TopicFingerprint) {
	cctx, cancel := context.WithTimeout(ctx, h.config.ClassifierTimeout)
	defer cancel()

	resCh := make(chan *classifier.Classification, 1)
	go func() {
		result, err := h.classifier.Classify(cctx, text)
		if err != nil {
			h.logger.Warn("classifier call failed, keeping regex result", map[string]interface{}{
				"error": err,
			})
			resCh <- nil
			return
		}
		resCh <- result
	}()

	select {
	case result := <-resCh:
		if result == nil {
			metrics.ClassifierCalls.WithLabelValues("failed").Inc()
			return
		}
		fp.People = mergeSets(fp.People, result.People)
		fp.Countries = mergeSets(fp.Countries, result.Countries)
		fp.Orgs = mergeSets(fp.Orgs, result.Orgs)
		fp.Topics = mergeSets(fp.Topics, result.Topics)
		if result.Category != "" {
			fp.Category = result.Category
		} else {
			fp.Category = deriveCategory(*fp)
		}
		fp.ExtractionMethod = models.ExtractionClassifier
		metrics.ClassifierCalls.WithLabelValues("merged").Inc()
	case <-cctx.Done():
		metrics.ClassifierCalls.WithLabelValues("timeout").Inc()
	}
}

func scanTable(lowerText string, table map[string][]string) []string {
	var found []string
	for canonical, forms := range table {
		for _, form := range forms {
			if strings.Contains(lowerText, form) {
				found = append(found, canonical)
				break
			}
		}
	}
	sort.Strings(found)
	return found
}

func deriveCategory(fp models.TopicFingerprint) string {
	countries := toSet(fp.Countries)
	topics := toSet(fp.Topics)
	orgs := toSet(fp.Orgs)

	for _, rule := range categoryRules {
		if !containsAll(countries, rule.countries) {
			continue
		}
		if len(rule.topics) > 0 || len(rule.orgs) > 0 {
			if !containsAny(topics, rule.topics) && !containsAny(orgs, rule.orgs) {
				continue
			}
		}
		return rule.category
	}
	return "general"
}

// detectLanguage flags Arabic when enough of the text is Arabic script.
func detectLanguage(text string) string {
	var arabic, letters int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.Is(unicode.Arabic, r) {
				arabic++
			}
		}
	}
	if letters > 0 && float64(arabic)/float64(letters) > 0.25 {
		return "ar"
	}
	return "en"
}

func isGreetingOnly(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		w = strings.Trim(w, ".,!?")
		if w != "" && !greetingWords[w] {
			return false
		}
	}
	return true
}

func emptyFingerprint(_ string) models.TopicFingerprint {
	return models.TopicFingerprint{
		Category:         "general",
		Language:         "en",
		ExtractionMethod: models.ExtractionRegex,
	}
}

func mergeSets(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}

func containsAll(set map[string]bool, required []string) bool {
	for _, r := range required {
		if !set[r] {
			return false
		}
	}
	return true
}

func containsAny(set map[string]bool, candidates []string) bool {
	for _, c := range candidates {
		if set[c] {
			return true
		}
	}
	return false
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
