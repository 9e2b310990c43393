// internal/engine/score-signal/handler.go
package scoresignal

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"signal-engine/internal/common/errors"
	"signal-engine/internal/common/logger"
	"signal-engine/internal/common/metrics"
	"signal-engine/internal/models"

	applylearning "signal-engine/internal/engine/apply-learning"
	classifyurgency "signal-engine/internal/engine/classify-urgency"
	extractfingerprint "signal-engine/internal/engine/extract-fingerprint"
	matchdna "signal-engine/internal/engine/match-dna"
	matchstory "signal-engine/internal/engine/match-story"
	scorekeywords "signal-engine/internal/engine/score-keywords"
)

const (
	ComponentTag = "score-signal"
)

// Handler runs the full per-signal scoring pipeline: fingerprint,
// taxonomy match, breakout relevance, contribution assembly, learned
// adjustment, validity gate and urgency tier. Signals in a batch are
// independent; the context is shared and read-only.
type Handler struct {
	config       *Config
	fingerprint  *extractfingerprint.Handler
	dna          *matchdna.Handler
	keywords     *scorekeywords.Handler
	story        *matchstory.Handler
	learning     *applylearning.Handler
	urgency      *classifyurgency.Handler
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(
	config *Config,
	fingerprint *extractfingerprint.Handler,
	dna *matchdna.Handler,
	keywords *scorekeywords.Handler,
	story *matchstory.Handler,
	learning *applylearning.Handler,
	urgency *classifyurgency.Handler,
	log logger.Logger,
) *Handler {
	componentLog := log.WithFields(map[string]interface{}{"component": ComponentTag})
	return &Handler{
		config:       config,
		fingerprint:  fingerprint,
		dna:          dna,
		keywords:     keywords,
		story:        story,
		learning:     learning,
		urgency:      urgency,
		errorHandler: errors.NewErrorHandler(componentLog),
		logger:       componentLog,
	}
}

// ExecuteBatch scores every signal against the shared context. A failing
// signal is returned as score 0 / invalid; it never halts the batch.
// Workers bounds concurrency; the pipeline is safe run serially too.
func (h *Handler) ExecuteBatch(ctx context.Context, input *BatchInput) (*BatchOutput, error) {
	results := make([]models.ScoringResult, len(input.Signals))

	workers := h.config.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, signal := range input.Signals {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, signal models.Signal) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = h.scoreOne(ctx, signal, input.Context, input.UseClassifier)
		}(i, signal)
	}
	wg.Wait()

	return &BatchOutput{Results: results}, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result := h.scoreOne(ctx, input.Signal, input.Context, input.UseClassifier)
	return &Output{Result: result}, nil
}

func (h *Handler) scoreOne(ctx context.Context, signal models.Signal, sctx *models.ScoringContext, useClassifier bool) models.ScoringResult {
	started := time.Now()
	result, err := h.score(ctx, signal, sctx, useClassifier)
	metrics.ScoringDuration.WithLabelValues("signal").Observe(time.Since(started).Seconds())

	if err != nil {
		stdErr := h.errorHandler.HandleSignalError(signal.ID, err)
		metrics.SignalScoringFailed.WithLabelValues(string(stdErr.Code)).Inc()
		return models.ScoringResult{
			SignalID: signal.ID,
			Score:    0,
			IsValid:  false,
			Error:    stdErr.Message,
			ScoredAt: sctx.Now,
		}
	}

	metrics.SignalsScored.WithLabelValues(string(result.Tier), strconv.FormatBool(result.IsValid)).Inc()
	return *result
}

func (h *Handler) score(ctx context.Context, signal models.Signal, sctx *models.ScoringContext, useClassifier bool) (*models.ScoringResult, error) {
	now := sctx.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	fpOut, err := h.fingerprint.Execute(ctx, &extractfingerprint.Input{
		Text:          signal.Text(),
		UseClassifier: useClassifier,
	})
	if err != nil {
		return nil, err
	}
	fp := fpOut.Fingerprint

	dnaOut, err := h.dna.Execute(ctx, &matchdna.Input{
		Text:        signal.Text(),
		Fingerprint: fp,
		Topics:      sctx.Topics,
	})
	if err != nil {
		return nil, err
	}

	breakouts := h.relevantBreakouts(ctx, signal, fp, sctx.Breakouts)

	storyOut, err := h.story.Execute(ctx, &matchstory.Input{
		Title:    signal.Title,
		Entities: fp.AllEntities(),
		History:  sctx.History,
		Now:      now,
	})
	if err != nil {
		return nil, err
	}

	var contributions []models.SignalContribution
	contributions = appendContribution(contributions, h.breakoutContribution(breakouts, now))
	contributions = appendContribution(contributions, h.volumeContribution(breakouts))
	contributions = appendContribution(contributions, h.dnaContribution(dnaOut))
	contributions = appendContribution(contributions, h.recencyContribution(signal, now))

	matchedTopic := firstMatchedTopic(dnaOut, sctx.Topics)
	contributions = appendContribution(contributions, h.freshnessContribution(matchedTopic, now))

	sameStoryRecent := storyOut.SameStory && storyOut.DaysAgo < h.config.SaturationDays
	if sameStoryRecent {
		contributions = append(contributions, models.SignalContribution{
			Type:   ContributionSaturation,
			Text:   fmt.Sprintf("near-duplicate of %q covered %d days ago", storyOut.MatchedTitle, storyOut.DaysAgo),
			Points: h.config.SaturationPenalty,
			Evidence: map[string]interface{}{
				"matchedTitle": storyOut.MatchedTitle,
				"daysAgo":      storyOut.DaysAgo,
				"similarity":   storyOut.Similarity,
			},
		})
	}

	rawScore := 0
	positive := 0
	for _, c := range contributions {
		rawScore += c.Points
		if c.Points > 0 {
			positive++
		}
	}

	adjOut, err := h.learning.Adjust(ctx, &applylearning.AdjustInput{
		BaseScore:   rawScore,
		Fingerprint: fp,
		Weights:     sctx.Weights,
	})
	if err != nil {
		return nil, err
	}
	if adjOut.Adjustment != 0 {
		contributions = append(contributions, models.SignalContribution{
			Type:   ContributionLearned,
			Text:   fmt.Sprintf("producer preference adjustment %+d", adjOut.Adjustment),
			Points: adjOut.Adjustment,
		})
		// The learned contribution counts toward validity like any other.
		if adjOut.Adjustment > 0 {
			positive++
		}
	}
	score := adjOut.AdjustedScore

	isValid := positive >= 1 || score >= h.config.MinValidScore

	tierOut, err := h.urgency.Execute(ctx, &classifyurgency.Input{
		Score:                 score,
		SameStory:             sameStoryRecent,
		DnaMatched:            dnaOut.Matched(),
		DnaMatchCount:         len(dnaOut.MatchedTopicIDs),
		SignalAgeHours:        signal.AgeHours(now),
		Breakouts:             breakouts,
		CompetitorCount:       distinctCompetitors(breakouts, now, 0),
		CompetitorsWithin48h:  distinctCompetitors(breakouts, now, 48),
		PositiveContributions: positive,
		Title:                 signal.Title,
		Entities:              fp.AllEntities(),
		TopicCoveredDaysAgo:   coveredDaysAgo(matchedTopic, now),
		Now:                   now,
	})
	if err != nil {
		return nil, err
	}

	result := &models.ScoringResult{
		SignalID:        signal.ID,
		Score:           score,
		IsValid:         isValid,
		Contributions:   contributions,
		Tier:            tierOut.Tier,
		BacklogCategory: tierOut.BacklogCategory,
		TierReason:      tierOut.Reason,
		Fingerprint:     fp,
		Breakouts:       breakouts,
		SameStory:       sameStoryRecent,
		ScoredAt:        now,
	}
	if dnaOut.Matched() {
		result.DnaMatch = &models.DnaMatch{
			TopicID:      dnaOut.MatchedTopicIDs[0],
			TopicName:    dnaOut.MatchedTopicNames[0],
			Score:        h.config.DnaMatchPoints,
			MatchedWords: dnaOut.MatchedKeywords,
		}
	}
	return result, nil
}

// relevantBreakouts filters the batch's breakouts to those about the
// signal's story: exact topic-ID equality, or a valid keyword match over
// the entity overlap when no canonical topic ID links the two.
func (h *Handler) relevantBreakouts(ctx context.Context, signal models.Signal, fp models.TopicFingerprint, all []models.Breakout) []models.Breakout {
	var relevant []models.Breakout
	for _, b := range all {
		if signal.TopicID != "" && b.Topic == signal.TopicID {
			relevant = append(relevant, b)
			continue
		}
		if h.entityOverlapValid(ctx, fp, b) {
			relevant = append(relevant, b)
		}
	}
	sort.Slice(relevant, func(i, j int) bool {
		return relevant[i].Ratio > relevant[j].Ratio
	})
	return relevant
}

func (h *Handler) entityOverlapValid(ctx context.Context, fp models.TopicFingerprint, b models.Breakout) bool {
	vfpOut, err := h.fingerprint.Execute(ctx, &extractfingerprint.Input{Text: b.Video.Title})
	if err != nil {
		h.errorHandler.HandleCollaboratorError("breakout fingerprint", err)
		return false
	}

	signalEntities := make(map[string]bool)
	for _, e := range fp.AllEntities() {
		signalEntities[e] = true
	}
	var overlap []string
	for _, e := range vfpOut.Fingerprint.AllEntities() {
		if signalEntities[e] {
			overlap = append(overlap, e)
		}
	}
	if len(overlap) == 0 {
		return false
	}

	kwOut, err := h.keywords.Execute(ctx, &scorekeywords.Input{Keywords: overlap})
	if err != nil {
		h.errorHandler.HandleCollaboratorError("breakout keyword match", err)
		return false
	}
	return kwOut.IsValidMatch
}

// breakoutContribution scores the best matching breakout: flat points for
// direct and cross-niche competitors, a recency ladder for trendsetters
// since an early-moving trend is more actionable than a settled one.
func (h *Handler) breakoutContribution(breakouts []models.Breakout, now time.Time) *models.SignalContribution {
	if len(breakouts) == 0 {
		return nil
	}
	best := breakouts[0]

	points := 0
	switch best.CompetitorTier {
	case models.TierDirect:
		points = h.config.BreakoutDirectPoints
	case models.TierTrendsetter:
		points = h.trendsetterPoints(best.AgeHours(now))
	default:
		points = h.config.BreakoutCrossPoints
	}
	if points == 0 {
		return nil
	}

	return &models.SignalContribution{
		Type:   ContributionBreakout,
		Text:   fmt.Sprintf("%s competitor breakout at %.1fx median", best.CompetitorTier, best.Ratio),
		Points: points,
		Evidence: map[string]interface{}{
			"videoTitle":  best.Video.Title,
			"views":       best.Video.Views,
			"ratio":       best.Ratio,
			"medianViews": best.MedianViews,
			"hoursAgo":    best.AgeHours(now),
			"tier":        string(best.CompetitorTier),
		},
	}
}

func (h *Handler) trendsetterPoints(ageHours float64) int {
	for _, step := range h.config.TrendsetterLadder {
		if ageHours <= step.MaxAgeHours {
			return step.Points
		}
	}
	return 0
}

// volumeContribution counts distinct competitors, not videos. A single
// competitor is recorded as evidence but scores zero: one channel
// covering a story is not confirmation.
func (h *Handler) volumeContribution(breakouts []models.Breakout) *models.SignalContribution {
	byTier := make(map[models.CompetitorTier]map[string]bool)
	total := make(map[string]bool)
	for _, b := range breakouts {
		if byTier[b.CompetitorTier] == nil {
			byTier[b.CompetitorTier] = make(map[string]bool)
		}
		byTier[b.CompetitorTier][b.CompetitorID] = true
		total[b.CompetitorID] = true
	}
	if len(total) == 0 {
		return nil
	}

	direct := len(byTier[models.TierDirect])
	trendsetter := len(byTier[models.TierTrendsetter])
	indirect := len(byTier[models.TierIndirect])
	tiersPresent := len(byTier)

	points := 0
	text := ""
	switch {
	case direct >= 2:
		points = h.config.VolumeDirectPoints
		text = fmt.Sprintf("%d direct competitors covering", direct)
	case len(total) >= 2 && tiersPresent >= 2:
		points = h.config.VolumeMixedPoints
		text = fmt.Sprintf("%d competitors across tiers covering", len(total))
	case trendsetter >= 2:
		points = h.config.VolumeTrendsetterPoints
		text = fmt.Sprintf("%d trendsetter channels covering", trendsetter)
	case indirect >= 2:
		points = h.config.VolumeIndirectPoints
		text = fmt.Sprintf("%d adjacent channels covering", indirect)
	default:
		text = "single competitor covering, insufficient confirmation"
	}

	return &models.SignalContribution{
		Type:   ContributionVolume,
		Text:   text,
		Points: points,
		Evidence: map[string]interface{}{
			"directCompetitors":      direct,
			"trendsetterCompetitors": trendsetter,
			"indirectCompetitors":    indirect,
			"totalCompetitors":       len(total),
		},
	}
}

func (h *Handler) dnaContribution(dnaOut *matchdna.Output) *models.SignalContribution {
	if !dnaOut.Matched() {
		return nil
	}
	return &models.SignalContribution{
		Type:   ContributionDnaMatch,
		Text:   fmt.Sprintf("matches channel topic %q", dnaOut.MatchedTopicNames[0]),
		Points: h.config.DnaMatchPoints,
		Evidence: map[string]interface{}{
			"topicIds":        dnaOut.MatchedTopicIDs,
			"topicNames":      dnaOut.MatchedTopicNames,
			"matchedKeywords": dnaOut.MatchedKeywords,
		},
	}
}

func (h *Handler) recencyContribution(signal models.Signal, now time.Time) *models.SignalContribution {
	age := signal.AgeHours(now)
	points := 0
	switch {
	case age < h.config.RecencyFreshHours:
		points = h.config.RecencyFreshPoints
	case age < h.config.RecencyWeekHours:
		points = h.config.RecencyWeekPoints
	default:
		return nil
	}
	return &models.SignalContribution{
		Type:   ContributionRecency,
		Text:   fmt.Sprintf("published %.0fh ago", age),
		Points: points,
		Evidence: map[string]interface{}{
			"hoursAgo":    age,
			"publishedAt": signal.PublishedAt,
		},
	}
}

// freshnessContribution rewards a matched topic the producer has not
// touched in over FreshnessDays, or has never covered at all.
func (h *Handler) freshnessContribution(topic *models.DnaTopic, now time.Time) *models.SignalContribution {
	if topic == nil {
		return nil
	}
	days := topic.DaysSinceCovered(now)
	if days != -1 && days <= h.config.FreshnessDays {
		return nil
	}
	text := fmt.Sprintf("topic %q not covered in %d days", topic.Name, days)
	if days == -1 {
		text = fmt.Sprintf("topic %q never covered", topic.Name)
	}
	return &models.SignalContribution{
		Type:   ContributionFreshness,
		Text:   text,
		Points: h.config.FreshnessPoints,
		Evidence: map[string]interface{}{
			"topicId":          topic.ID,
			"daysSinceCovered": days,
		},
	}
}

func appendContribution(contributions []models.SignalContribution, c *models.SignalContribution) []models.SignalContribution {
	if c == nil {
		return contributions
	}
	return append(contributions, *c)
}

func firstMatchedTopic(dnaOut *matchdna.Output, topics []models.DnaTopic) *models.DnaTopic {
	if !dnaOut.Matched() {
		return nil
	}
	for i := range topics {
		if topics[i].ID == dnaOut.MatchedTopicIDs[0] {
			return &topics[i]
		}
	}
	return nil
}

func coveredDaysAgo(topic *models.DnaTopic, now time.Time) int {
	if topic == nil {
		return -1
	}
	return topic.DaysSinceCovered(now)
}

// distinctCompetitors counts unique competitor IDs among breakouts no
// older than maxAgeHours; zero means no age limit.
func distinctCompetitors(breakouts []models.Breakout, now time.Time, maxAgeHours float64) int {
	seen := make(map[string]bool)
	for _, b := range breakouts {
		if maxAgeHours > 0 && b.AgeHours(now) >= maxAgeHours {
			continue
		}
		seen[b.CompetitorID] = true
	}
	return len(seen)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
