// internal/engine/extract-fingerprint/handler_test.go
package extractfingerprint

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"signal-engine/internal/cache"
	"signal-engine/internal/classifier"
	"signal-engine/internal/common/logger"
	"signal-engine/internal/models"

	"github.com/stretchr/testify/assert"
)

func createTestConfig() *Config {
	return &Config{
		UseClassifier:     true,
		ClassifierTimeout: 100 * time.Millisecond,
		CacheTTL:          time.Hour,
		MinTextLength:     30,
	}
}

func newTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

// fakeClassifier lets tests control latency and answers.
type fakeClassifier struct {
	enabled bool
	delay   time.Duration
	result  *classifier.Classification
	err     error
	calls   atomic.Int32
}

func (f *fakeClassifier) Enabled() bool { return f.enabled }

func (f *fakeClassifier) Classify(ctx context.Context, _ string) (*classifier.Classification, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

func TestHandler_Execute_RegexExtraction(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantCountries []string
		wantTopics    []string
		wantCategory  string
	}{
		{
			name:          "venezuela oil story",
			text:          "Venezuela oil sanctions tighten as Maduro responds",
			wantCountries: []string{"venezuela"},
			wantTopics:    []string{"oil", "sanctions"},
			wantCategory:  "energy",
		},
		{
			name:          "us china trade",
			text:          "United States raises tariffs on Chinese goods in new trade war round",
			wantCountries: []string{"china", "usa"},
			wantTopics:    []string{"tariffs", "war"},
			wantCategory:  "us_china_trade",
		},
		{
			name:          "iran nuclear",
			text:          "Iran resumes uranium enrichment at underground facility",
			wantCountries: []string{"iran"},
			wantTopics:    []string{"nuclear"},
			wantCategory:  "iran_nuclear",
		},
		{
			name:          "russia ukraine",
			text:          "Russia launches new offensive as Ukraine defends eastern front",
			wantCountries: []string{"russia", "ukraine"},
			wantTopics:    []string{"war"},
			wantCategory:  "russia_ukraine_war",
		},
	}

	handler := NewHandler(createTestConfig(), cache.NewMemoryStore(), nil, newTestLogger(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{Text: tt.text})
			assert.NoError(t, err)
			assert.Equal(t, tt.wantCountries, output.Fingerprint.Countries)
			assert.Equal(t, tt.wantTopics, output.Fingerprint.Topics)
			assert.Equal(t, tt.wantCategory, output.Fingerprint.Category)
			assert.Equal(t, models.ExtractionRegex, output.Fingerprint.ExtractionMethod)
		})
	}
}

func TestHandler_Execute_ShortTextSkipped(t *testing.T) {
	handler := NewHandler(createTestConfig(), cache.NewMemoryStore(), nil, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Text: "oil up"})
	assert.NoError(t, err)
	assert.Equal(t, 0, output.Fingerprint.EntityCount())
}

func TestHandler_Execute_GreetingOnlySkipped(t *testing.T) {
	handler := NewHandler(createTestConfig(), cache.NewMemoryStore(), nil, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Text: "hello good morning thanks ok okay hi hey please",
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, output.Fingerprint.EntityCount())
}

func TestHandler_Execute_ArabicDetection(t *testing.T) {
	handler := NewHandler(createTestConfig(), cache.NewMemoryStore(), nil, newTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Text: "العقوبات على فنزويلا تشتد وسط أزمة النفط",
	})
	assert.NoError(t, err)
	assert.Equal(t, "ar", output.Fingerprint.Language)
	assert.Contains(t, output.Fingerprint.Countries, "venezuela")
	assert.Contains(t, output.Fingerprint.Topics, "oil")
}

func TestHandler_Execute_CacheHit(t *testing.T) {
	store := cache.NewMemoryStore()
	handler := NewHandler(createTestConfig(), store, nil, newTestLogger(t))
	text := "Venezuela oil sanctions tighten as Maduro responds"

	first, err := handler.Execute(context.Background(), &Input{Text: text})
	assert.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := handler.Execute(context.Background(), &Input{Text: text})
	assert.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestHandler_Execute_ClassifierMerge(t *testing.T) {
	cls := &fakeClassifier{
		enabled: true,
		result: &classifier.Classification{
			Countries: []string{"guyana"},
			Topics:    []string{"border dispute"},
			Category:  "latam_geopolitics",
		},
	}
	handler := NewHandler(createTestConfig(), cache.NewMemoryStore(), cls, newTestLogger(t))

	// Regex finds almost nothing here, so the classifier is consulted.
	output, err := handler.Execute(context.Background(), &Input{
		Text:          "Border tensions escalate near the Essequibo region again",
		UseClassifier: true,
	})
	assert.NoError(t, err)
	assert.Contains(t, output.Fingerprint.Countries, "guyana")
	assert.Equal(t, "latam_geopolitics", output.Fingerprint.Category)
	assert.Equal(t, models.ExtractionClassifier, output.Fingerprint.ExtractionMethod)
}

func TestHandler_Execute_ClassifierTimeoutFallsBack(t *testing.T) {
	cls := &fakeClassifier{
		enabled: true,
		delay:   500 * time.Millisecond,
		result:  &classifier.Classification{Countries: []string{"guyana"}},
	}
	handler := NewHandler(createTestConfig(), cache.NewMemoryStore(), cls, newTestLogger(t))

	start := time.Now()
	output, err := handler.Execute(context.Background(), &Input{
		Text:          "Border tensions escalate near the Essequibo region again",
		UseClassifier: true,
	})
	assert.NoError(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond, "must not wait for the late classifier")
	assert.NotContains(t, output.Fingerprint.Countries, "guyana")
	assert.Equal(t, models.ExtractionRegex, output.Fingerprint.ExtractionMethod)
}

func TestHandler_Execute_ClassifierErrorReturnsImmediately(t *testing.T) {
	cls := &fakeClassifier{enabled: true, err: assert.AnError}
	cfg := createTestConfig()
	cfg.ClassifierTimeout = 2 * time.Second
	handler := NewHandler(cfg, cache.NewMemoryStore(), cls, newTestLogger(t))

	// A hard-down classifier fails instantly; the handler must take the
	// regex result right away instead of sitting out the full deadline.
	start := time.Now()
	output, err := handler.Execute(context.Background(), &Input{
		Text:          "Border tensions escalate near the Essequibo region again",
		UseClassifier: true,
	})
	assert.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "must not wait out the deadline on an immediate failure")
	assert.Equal(t, models.ExtractionRegex, output.Fingerprint.ExtractionMethod)
	assert.Equal(t, int32(1), cls.calls.Load())
}

func TestHandler_Execute_ClassifierSkippedWhenRegexSufficient(t *testing.T) {
	cls := &fakeClassifier{enabled: true, result: &classifier.Classification{}}
	handler := NewHandler(createTestConfig(), cache.NewMemoryStore(), cls, newTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		Text:          "United States raises tariffs on Chinese goods in new trade war round",
		UseClassifier: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, int32(0), cls.calls.Load(), "classifier must not be called when regex evidence suffices")
}
