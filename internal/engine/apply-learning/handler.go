// internal/engine/apply-learning/handler.go
package applylearning

import (
	"context"
	"math"
	"strings"
	"unicode"

	"signal-engine/internal/common/errors"
	"signal-engine/internal/common/logger"
	"signal-engine/internal/common/metrics"
	"signal-engine/internal/models"
)

const (
	ComponentTag = "apply-learning"
)

// WeightStore persists learned weights and taxonomy expansions. Upserts
// must be atomic per key; weights for different keys are independent.
type WeightStore interface {
	UpsertWeight(ctx context.Context, key string, liked bool, multiplier, min, max float64) (models.LearnedWeight, error)
	AppendTopicKeywords(ctx context.Context, topicID string, keywords []string) error
}

// Handler turns producer feedback into weight updates and taxonomy
// growth, and replays accumulated weights as score adjustments.
type Handler struct {
	config *Config
	store  WeightStore
	logger logger.Logger
}

func NewHandler(config *Config, store WeightStore, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": ComponentTag}),
	}
}

// recordFeedback upserts one weight per category and per entity of the
// signal's fingerprint. A like also attempts taxonomy auto-expansion.
func (h *Handler) recordFeedback(ctx context.Context, input *FeedbackInput) (*FeedbackOutput, error) {
	event := input.Event
	if event.Action != models.ActionLike && event.Action != models.ActionReject && event.Action != models.ActionUsed {
		return nil, errors.NewInvalidFeedbackError("action must be like, reject or used")
	}
	liked := event.Action != models.ActionReject

	output := &FeedbackOutput{}
	fp := event.Fingerprint

	upsert := func(key string, multiplier float64) {
		if _, err := h.store.UpsertWeight(ctx, key, liked, multiplier, h.config.MinWeight, h.config.MaxWeight); err != nil {
			h.logger.Warn("weight upsert failed", map[string]interface{}{
				"key":   key,
				"error": err,
			})
			return
		}
		output.UpdatedKeys = append(output.UpdatedKeys, key)
	}

	category := event.Category
	if category == "" {
		category = fp.Category
	}
	if category != "" {
		upsert(models.WeightKindCategory+":"+category,
			h.pick(liked, h.config.LikeCategoryMultiplier, h.config.RejectMultiplier))
	}
	for _, c := range fp.Countries {
		upsert(models.WeightKindCountry+":"+c,
			h.pick(liked, h.config.LikeEntityMultiplier, h.config.RejectMultiplier))
	}
	for _, tp := range fp.Topics {
		upsert(models.WeightKindTopic+":"+tp,
			h.pick(liked, h.config.LikeEntityMultiplier, h.config.RejectMultiplier))
	}
	for _, p := range fp.People {
		upsert(models.WeightKindPerson+":"+p,
			h.pick(liked, h.config.LikePersonMultiplier, h.config.RejectPersonMultiplier))
	}

	if event.Action == models.ActionLike {
		topicID, keywords := h.autoExpand(input)
		if topicID != "" && len(keywords) > 0 {
			if err := h.store.AppendTopicKeywords(ctx, topicID, keywords); err != nil {
				h.logger.Warn("taxonomy expansion failed", map[string]interface{}{
					"topicId": topicID,
					"error":   err,
				})
			} else {
				output.ExpandedTopicID = topicID
				output.NewKeywords = keywords
			}
		}
	}

	metrics.FeedbackEvents.WithLabelValues(string(event.Action)).Inc()
	return output, nil
}

func (h *Handler) pick(liked bool, likeMul, rejectMul float64) float64 {
	if liked {
		return likeMul
	}
	return rejectMul
}

// autoExpand finds the DNA topic anchored by one of the signal's country
// entities and extracts up to MaxNewKeywords new words from the title.
// This is how the taxonomy grows without manual curation.
func (h *Handler) autoExpand(input *FeedbackInput) (string, []string) {
	fp := input.Event.Fingerprint
	if len(fp.Countries) == 0 {
		return "", nil
	}

	var topic *models.DnaTopic
	for i := range input.Topics {
		t := &input.Topics[i]
		if !t.IsActive {
			continue
		}
		if topicMentionsCountry(t, fp.Countries) {
			topic = t
			break
		}
	}
	if topic == nil {
		return "", nil
	}

	known := make(map[string]bool, len(topic.Keywords))
	for _, kw := range topic.Keywords {
		known[strings.ToLower(kw)] = true
	}

	var newKeywords []string
	for _, word := range tokenize(strings.ToLower(input.Title)) {
		if len(newKeywords) >= h.config.MaxNewKeywords {
			break
		}
		if len(word) < h.config.MinKeywordLen || learningStopwords[word] || isNumeric(word) || known[word] {
			continue
		}
		known[word] = true
		newKeywords = append(newKeywords, word)
	}

	return topic.ID, newKeywords
}

func topicMentionsCountry(topic *models.DnaTopic, countries []string) bool {
	for _, country := range countries {
		country = strings.ToLower(country)
		for _, c := range topic.Countries {
			if strings.ToLower(c) == country {
				return true
			}
		}
		for _, kw := range topic.Keywords {
			kw = strings.ToLower(kw)
			if strings.Contains(kw, country) || strings.Contains(country, kw) {
				return true
			}
		}
		if strings.Contains(strings.ToLower(topic.Name), country) {
			return true
		}
	}
	return false
}

// adjust converts accumulated weights into a point adjustment and folds
// it into the base score before clamping.
func (h *Handler) adjust(_ context.Context, input *AdjustInput) (*AdjustOutput, error) {
	fp := input.Fingerprint
	adjustment := 0

	if fp.Category != "" {
		adjustment += h.pointsFor(input.Weights, models.WeightKindCategory+":"+fp.Category, h.config.CategoryScale)
	}
	for _, c := range fp.Countries {
		adjustment += h.pointsFor(input.Weights, models.WeightKindCountry+":"+c, h.config.EntityScale)
	}
	for _, tp := range fp.Topics {
		adjustment += h.pointsFor(input.Weights, models.WeightKindTopic+":"+tp, h.config.EntityScale)
	}
	for _, p := range fp.People {
		adjustment += h.pointsFor(input.Weights, models.WeightKindPerson+":"+p, h.config.PersonScale)
	}

	adjusted := input.BaseScore + adjustment
	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted > 100 {
		adjusted = 100
	}

	return &AdjustOutput{AdjustedScore: adjusted, Adjustment: adjustment}, nil
}

func (h *Handler) pointsFor(weights map[string]models.LearnedWeight, key string, scale int) int {
	w, ok := weights[key]
	if !ok {
		return 0
	}
	return int(math.Round((w.Weight - 1.0) * float64(scale)))
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

func (h *Handler) RecordFeedback(ctx context.Context, input *FeedbackInput) (*FeedbackOutput, error) {
	return h.recordFeedback(ctx, input)
}

func (h *Handler) Adjust(ctx context.Context, input *AdjustInput) (*AdjustOutput, error) {
	return h.adjust(ctx, input)
}
