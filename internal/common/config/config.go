// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ElasticsearchConfig configures the optional producer-history search index.
// The engine degrades to postgres-only history lookups when no address is set.
type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	HistoryIndex string   `mapstructure:"history_index"`
}

// Enabled reports whether a history search backend is configured.
func (e ElasticsearchConfig) Enabled() bool {
	return len(e.Addresses) > 0
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ClassifierConfig configures the optional external entity classifier.
// When BaseURL is empty the engine runs on the regex extractor alone.
type ClassifierConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// EngineConfig holds every scoring weight and threshold the engine uses.
// All values are injectable so tests and per-show deployments can override
// them; defaults match the production tuning.
type EngineConfig struct {
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Breakout BreakoutConfig `mapstructure:"breakout"`
	Keywords KeywordsConfig `mapstructure:"keywords"`
	Story    StoryConfig    `mapstructure:"story"`
	Learning LearningConfig `mapstructure:"learning"`
	Cache    CacheConfig    `mapstructure:"cache"`

	Workers       int `mapstructure:"workers"`        // bounded pool for batch scoring, 0 = serial
	BatchInterval int `mapstructure:"batch_interval"` // milliseconds between scoring passes
}

// ScoringConfig holds the point values for each signal contribution.
type ScoringConfig struct {
	BreakoutDirect     int               `mapstructure:"breakout_direct"`
	BreakoutCrossNiche int               `mapstructure:"breakout_cross_niche"`
	TrendsetterTiers   []TrendsetterTier `mapstructure:"trendsetter_tiers"`
	VolumeDirect       int               `mapstructure:"volume_direct"`
	VolumeMixed        int               `mapstructure:"volume_mixed"`
	VolumeTrendsetter  int               `mapstructure:"volume_trendsetter"`
	VolumeIndirect     int               `mapstructure:"volume_indirect"`
	DnaMatch           int               `mapstructure:"dna_match"`
	RecencyFresh       int               `mapstructure:"recency_fresh"`
	RecencyWeek        int               `mapstructure:"recency_week"`
	RecencyFreshHours  int               `mapstructure:"recency_fresh_hours"`
	RecencyWeekHours   int               `mapstructure:"recency_week_hours"`
	Freshness          int               `mapstructure:"freshness"`
	FreshnessDays      int               `mapstructure:"freshness_days"`
	SaturationPenalty  int               `mapstructure:"saturation_penalty"`
	SaturationDays     int               `mapstructure:"saturation_days"`
	MinValidScore      int               `mapstructure:"min_valid_score"`
	PostTodayScore     int               `mapstructure:"post_today_score"`
	PostTodayHighScore int               `mapstructure:"post_today_high_score"`
	ThisWeekScore      int               `mapstructure:"this_week_score"`
	VolumeWindowDays   int               `mapstructure:"volume_window_days"`
}

// TrendsetterTier maps a maximum breakout age to the points it earns.
type TrendsetterTier struct {
	MaxAgeHours int `mapstructure:"max_age_hours"`
	Points      int `mapstructure:"points"`
}

type BreakoutConfig struct {
	WindowDays     int     `mapstructure:"window_days"`
	RecentDays     int     `mapstructure:"recent_days"`
	RatioThreshold float64 `mapstructure:"ratio_threshold"`
	MinBucketSize  int     `mapstructure:"min_bucket_size"`
	ShortMaxSecs   int     `mapstructure:"short_max_secs"`
}

type KeywordsConfig struct {
	BankPath string `mapstructure:"bank_path"` // optional override of the built-in weight bank
}

type StoryConfig struct {
	SameStoryThreshold float64 `mapstructure:"same_story_threshold"`
	MinSharedEntities  int     `mapstructure:"min_shared_entities"`
}

type LearningConfig struct {
	CategoryScale  int     `mapstructure:"category_scale"`
	EntityScale    int     `mapstructure:"entity_scale"`
	PersonScale    int     `mapstructure:"person_scale"`
	MaxWeight      float64 `mapstructure:"max_weight"`
	MinWeight      float64 `mapstructure:"min_weight"`
	MaxNewKeywords int     `mapstructure:"max_new_keywords"`
}

type CacheConfig struct {
	FingerprintTTL int `mapstructure:"fingerprint_ttl"` // milliseconds
	MatchTTL       int `mapstructure:"match_ttl"`       // milliseconds
}

// NotifyConfig holds settings for urgent-recommendation digests.
type NotifyConfig struct {
	Enabled bool `mapstructure:"enabled"`
	AWS     struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
