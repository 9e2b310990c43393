// cmd/scoring-engine/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"signal-engine/internal/api"
	"signal-engine/internal/cache"
	"signal-engine/internal/classifier"
	"signal-engine/internal/common/aws"
	"signal-engine/internal/common/config"
	"signal-engine/internal/common/database"
	"signal-engine/internal/common/logger"
	"signal-engine/internal/common/observability"
	"signal-engine/internal/notify"
	"signal-engine/internal/store"

	applylearning "signal-engine/internal/engine/apply-learning"
	classifyurgency "signal-engine/internal/engine/classify-urgency"
	detectbreakouts "signal-engine/internal/engine/detect-breakouts"
	extractfingerprint "signal-engine/internal/engine/extract-fingerprint"
	matchdna "signal-engine/internal/engine/match-dna"
	matchstory "signal-engine/internal/engine/match-story"
	scorekeywords "signal-engine/internal/engine/score-keywords"
	scoresignal "signal-engine/internal/engine/score-signal"
)

// pendingSignalsLimit bounds one show's share of a scoring pass so a
// single flooded feed cannot starve the rest of the batch.
const pendingSignalsLimit = 200

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")

	zapLog.Info("Starting scoring engine...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger at the configured level/format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("scoring-engine")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry; degrade to in-process cache ---
	var cacheStore cache.Store = cache.NewMemoryStore()
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Warn("redis unavailable, fingerprint cache runs in-process", zap.Error(err))
	} else {
		defer redis.Close()
		cacheStore = cache.NewRedisStore(redis.Client, log)
		zapLog.Info("Redis connected successfully")
	}

	// --- Init Elasticsearch (optional history index) ---
	var history *store.HistorySearch
	if cfg.Database.Elasticsearch.Enabled() {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Warn("elasticsearch unavailable, history served from postgres", zap.Error(err))
		} else {
			history = store.NewHistorySearch(esClient, cfg.Database.Elasticsearch.HistoryIndex, log)
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Keyword bank ---
	keywordCfg, err := scorekeywords.LoadConfig(cfg.Engine.Keywords.BankPath)
	if err != nil {
		zapLog.Fatal("keyword bank load failed", zap.Error(err))
	}

	// --- Build the scoring pipeline ---
	pgStore := store.NewPostgresStore(pg, log)

	cls := classifier.NewClient(cfg.Classifier, log)

	fingerprintCfg := extractfingerprint.LoadConfig()
	fingerprintCfg.UseClassifier = cfg.Classifier.BaseURL != ""
	fingerprintCfg.ClassifierTimeout = config.GetDuration(cfg.Classifier.Timeout)
	fingerprintCfg.CacheTTL = config.GetDuration(cfg.Engine.Cache.FingerprintTTL)
	fingerprint := extractfingerprint.NewHandler(fingerprintCfg, cacheStore, cls, log)

	keywords := scorekeywords.NewHandler(keywordCfg, log)
	dna := matchdna.NewHandler(matchdna.LoadConfig(), log)

	storyCfg := matchstory.LoadConfig()
	storyCfg.SameStoryThreshold = cfg.Engine.Story.SameStoryThreshold
	storyCfg.MinSharedEntities = cfg.Engine.Story.MinSharedEntities
	story := matchstory.NewHandler(storyCfg, log)

	learningCfg := applylearning.LoadConfig()
	learningCfg.CategoryScale = cfg.Engine.Learning.CategoryScale
	learningCfg.EntityScale = cfg.Engine.Learning.EntityScale
	learningCfg.PersonScale = cfg.Engine.Learning.PersonScale
	learningCfg.MinWeight = cfg.Engine.Learning.MinWeight
	learningCfg.MaxWeight = cfg.Engine.Learning.MaxWeight
	learningCfg.MaxNewKeywords = cfg.Engine.Learning.MaxNewKeywords
	learning := applylearning.NewHandler(learningCfg, pgStore, log)

	urgencyCfg := classifyurgency.LoadConfig()
	urgencyCfg.PostTodayMinScore = cfg.Engine.Scoring.PostTodayScore
	urgencyCfg.HighScore = cfg.Engine.Scoring.PostTodayHighScore
	urgencyCfg.ThisWeekMinScore = cfg.Engine.Scoring.ThisWeekScore
	urgency := classifyurgency.NewHandler(urgencyCfg, log)

	scoringCfg := scoringConfigFromApp(cfg.Engine)
	scorer := scoresignal.NewHandler(scoringCfg, fingerprint, dna, keywords, story, learning, urgency, log)

	breakoutCfg := &detectbreakouts.Config{
		WindowDays:     cfg.Engine.Breakout.WindowDays,
		RecentDays:     cfg.Engine.Breakout.RecentDays,
		RatioThreshold: cfg.Engine.Breakout.RatioThreshold,
		MinBucketSize:  cfg.Engine.Breakout.MinBucketSize,
		ShortMaxSecs:   cfg.Engine.Breakout.ShortMaxSecs,
	}
	breakouts := detectbreakouts.NewHandler(breakoutCfg, log)

	builder := store.NewContextBuilder(pgStore, history, breakouts, log)

	notifier := buildNotifier(ctx, cfg.Notify, log, zapLog)

	zapLog.Info("Scoring pipeline initialized",
		zap.Bool("classifier", fingerprintCfg.UseClassifier),
		zap.Bool("historySearch", history != nil),
		zap.Bool("notify", cfg.Notify.Enabled),
	)

	// --- API, Health & Metrics Server ---
	go func() {
		http.Handle("/feedback", api.NewFeedbackHandler(pgStore, learning, log))
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := pg.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("addr", cfg.App.MetricsAddr))
		if err := http.ListenAndServe(cfg.App.MetricsAddr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Batch scoring loop ---
	interval := config.GetDuration(cfg.Engine.BatchInterval)
	zapLog.Info("Scoring loop started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runBatch(ctx, pgStore, builder, scorer, notifier, fingerprintCfg.UseClassifier, obs, zapLog)
	for {
		select {
		case <-ctx.Done():
			zapLog.Info("Shutdown signal received, stopping scoring engine...")
			zapLog.Info("Scoring engine stopped gracefully")
			return
		case <-ticker.C:
			runBatch(ctx, pgStore, builder, scorer, notifier, fingerprintCfg.UseClassifier, obs, zapLog)
		}
	}
}

// runBatch executes one scoring pass over every active show. Per-show
// failures are logged and skipped so one broken show cannot stall the
// others.
func runBatch(
	ctx context.Context,
	pgStore *store.PostgresStore,
	builder *store.ContextBuilder,
	scorer *scoresignal.Handler,
	notifier *notify.Notifier,
	useClassifier bool,
	obs *observability.Observability,
	zapLog *zap.Logger,
) {
	started := time.Now()
	batchID := uuid.New().String()

	shows, err := pgStore.ActiveShows(ctx)
	if err != nil {
		zapLog.Error("active shows fetch failed", zap.String("batchId", batchID), zap.Error(err))
		obs.RecordBatchProcessed(ctx, "failed", 0)
		obs.RecordBatchDuration(ctx, time.Since(started), "failed")
		return
	}

	total := 0
	for _, showID := range shows {
		signals, err := pgStore.PendingSignals(ctx, showID, pendingSignalsLimit)
		if err != nil {
			zapLog.Error("pending signals fetch failed",
				zap.String("batchId", batchID), zap.String("showId", showID), zap.Error(err))
			continue
		}
		if len(signals) == 0 {
			continue
		}

		sctx := builder.Build(ctx, showID)
		out, err := scorer.ExecuteBatch(ctx, &scoresignal.BatchInput{
			Signals:       signals,
			Context:       sctx,
			UseClassifier: useClassifier,
		})
		if err != nil {
			zapLog.Error("batch scoring failed",
				zap.String("batchId", batchID), zap.String("showId", showID), zap.Error(err))
			continue
		}

		if err := pgStore.SaveResults(ctx, showID, out.Results); err != nil {
			zapLog.Error("result persistence failed",
				zap.String("batchId", batchID), zap.String("showId", showID), zap.Error(err))
		}

		if err := notifier.SendDigest(ctx, showID, out.Results); err != nil {
			zapLog.Warn("urgent digest failed",
				zap.String("batchId", batchID), zap.String("showId", showID), zap.Error(err))
		}

		total += len(signals)
	}

	obs.RecordBatchProcessed(ctx, "ok", total)
	obs.RecordBatchDuration(ctx, time.Since(started), "ok")
	zapLog.Info("scoring pass complete",
		zap.String("batchId", batchID),
		zap.Int("shows", len(shows)),
		zap.Int("signals", total),
		zap.Duration("took", time.Since(started)),
	)
}

// scoringConfigFromApp maps the application config onto the scorer's
// own config, including the trendsetter decay ladder.
func scoringConfigFromApp(engine config.EngineConfig) *scoresignal.Config {
	s := engine.Scoring

	ladder := make([]scoresignal.TrendsetterStep, 0, len(s.TrendsetterTiers))
	for _, tier := range s.TrendsetterTiers {
		ladder = append(ladder, scoresignal.TrendsetterStep{
			MaxAgeHours: float64(tier.MaxAgeHours),
			Points:      tier.Points,
		})
	}

	return &scoresignal.Config{
		BreakoutDirectPoints:    s.BreakoutDirect,
		BreakoutCrossPoints:     s.BreakoutCrossNiche,
		TrendsetterLadder:       ladder,
		VolumeDirectPoints:      s.VolumeDirect,
		VolumeMixedPoints:       s.VolumeMixed,
		VolumeTrendsetterPoints: s.VolumeTrendsetter,
		VolumeIndirectPoints:    s.VolumeIndirect,
		DnaMatchPoints:          s.DnaMatch,
		RecencyFreshPoints:      s.RecencyFresh,
		RecencyWeekPoints:       s.RecencyWeek,
		FreshnessPoints:         s.Freshness,
		SaturationPenalty:       s.SaturationPenalty,
		RecencyFreshHours:       float64(s.RecencyFreshHours),
		RecencyWeekHours:        float64(s.RecencyWeekHours),
		FreshnessDays:           s.FreshnessDays,
		SaturationDays:          s.SaturationDays,
		MinValidScore:           s.MinValidScore,
		Workers:                 engine.Workers,
	}
}

// buildNotifier wires the optional SNS/SES digest channels. A channel
// whose client fails to initialize is disabled, not fatal.
func buildNotifier(ctx context.Context, cfg config.NotifyConfig, log logger.Logger, zapLog *zap.Logger) *notify.Notifier {
	var sesClient notify.SESService
	var snsClient notify.SNSService

	if cfg.Enabled && cfg.SNS.Enabled {
		client, err := aws.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			zapLog.Warn("sns client init failed, channel disabled", zap.Error(err))
		} else {
			snsClient = client
		}
	}
	if cfg.Enabled && cfg.Email.Enabled {
		client, err := aws.NewSESClient(ctx, cfg.AWS.Region)
		if err != nil {
			zapLog.Warn("ses client init failed, channel disabled", zap.Error(err))
		} else {
			sesClient = client
		}
	}

	return notify.NewNotifier(cfg, sesClient, snsClient, log)
}
