// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like CLASSIFIER_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from multiple locations so the binary and tests
// can run from any directory inside the repo.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Classifier.APIKey == "" {
		if val := os.Getenv("CLASSIFIER_API_KEY"); val != "" {
			cfg.Classifier.APIKey = val
		}
	}
	if cfg.Classifier.BaseURL == "" {
		if val := os.Getenv("CLASSIFIER_BASE_URL"); val != "" {
			cfg.Classifier.BaseURL = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields.
// Scoring defaults encode the production tuning; every one of them can be
// overridden per show through config.
func applyDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.App.MetricsAddr == "" {
		cfg.App.MetricsAddr = ":9090"
	}

	// Classifier defaults
	if cfg.Classifier.Timeout == 0 {
		cfg.Classifier.Timeout = 2000
	}

	applyScoringDefaults(&cfg.Engine.Scoring)

	// Breakout defaults
	if cfg.Engine.Breakout.WindowDays == 0 {
		cfg.Engine.Breakout.WindowDays = 90
	}
	if cfg.Engine.Breakout.RecentDays == 0 {
		cfg.Engine.Breakout.RecentDays = 7
	}
	if cfg.Engine.Breakout.RatioThreshold == 0 {
		cfg.Engine.Breakout.RatioThreshold = 1.5
	}
	if cfg.Engine.Breakout.MinBucketSize == 0 {
		cfg.Engine.Breakout.MinBucketSize = 5
	}
	if cfg.Engine.Breakout.ShortMaxSecs == 0 {
		cfg.Engine.Breakout.ShortMaxSecs = 90
	}

	// Story defaults
	if cfg.Engine.Story.SameStoryThreshold == 0 {
		cfg.Engine.Story.SameStoryThreshold = 0.7
	}
	if cfg.Engine.Story.MinSharedEntities == 0 {
		cfg.Engine.Story.MinSharedEntities = 2
	}

	// Learning defaults
	if cfg.Engine.Learning.CategoryScale == 0 {
		cfg.Engine.Learning.CategoryScale = 20
	}
	if cfg.Engine.Learning.EntityScale == 0 {
		cfg.Engine.Learning.EntityScale = 15
	}
	if cfg.Engine.Learning.PersonScale == 0 {
		cfg.Engine.Learning.PersonScale = 10
	}
	if cfg.Engine.Learning.MaxWeight == 0 {
		cfg.Engine.Learning.MaxWeight = 2.0
	}
	if cfg.Engine.Learning.MaxNewKeywords == 0 {
		cfg.Engine.Learning.MaxNewKeywords = 3
	}

	// Cache defaults
	if cfg.Engine.Cache.FingerprintTTL == 0 {
		cfg.Engine.Cache.FingerprintTTL = 24 * 60 * 60 * 1000
	}
	if cfg.Engine.Cache.MatchTTL == 0 {
		cfg.Engine.Cache.MatchTTL = 60 * 60 * 1000
	}

	if cfg.Engine.BatchInterval == 0 {
		cfg.Engine.BatchInterval = 5 * 60 * 1000
	}
}

func applyScoringDefaults(s *ScoringConfig) {
	if s.BreakoutDirect == 0 {
		s.BreakoutDirect = 30
	}
	if s.BreakoutCrossNiche == 0 {
		s.BreakoutCrossNiche = 15
	}
	if len(s.TrendsetterTiers) == 0 {
		s.TrendsetterTiers = []TrendsetterTier{
			{MaxAgeHours: 6, Points: 25},
			{MaxAgeHours: 24, Points: 20},
			{MaxAgeHours: 72, Points: 15},
			{MaxAgeHours: 168, Points: 10},
		}
	}
	if s.VolumeDirect == 0 {
		s.VolumeDirect = 20
	}
	if s.VolumeMixed == 0 {
		s.VolumeMixed = 15
	}
	if s.VolumeTrendsetter == 0 {
		s.VolumeTrendsetter = 12
	}
	if s.VolumeIndirect == 0 {
		s.VolumeIndirect = 10
	}
	if s.DnaMatch == 0 {
		s.DnaMatch = 20
	}
	if s.RecencyFresh == 0 {
		s.RecencyFresh = 15
	}
	if s.RecencyWeek == 0 {
		s.RecencyWeek = 5
	}
	if s.RecencyFreshHours == 0 {
		s.RecencyFreshHours = 48
	}
	if s.RecencyWeekHours == 0 {
		s.RecencyWeekHours = 168
	}
	if s.Freshness == 0 {
		s.Freshness = 15
	}
	if s.FreshnessDays == 0 {
		s.FreshnessDays = 30
	}
	if s.SaturationPenalty == 0 {
		s.SaturationPenalty = -30
	}
	if s.SaturationDays == 0 {
		s.SaturationDays = 14
	}
	if s.MinValidScore == 0 {
		s.MinValidScore = 30
	}
	if s.PostTodayScore == 0 {
		s.PostTodayScore = 50
	}
	if s.PostTodayHighScore == 0 {
		s.PostTodayHighScore = 80
	}
	if s.ThisWeekScore == 0 {
		s.ThisWeekScore = 50
	}
	if s.VolumeWindowDays == 0 {
		s.VolumeWindowDays = 7
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.Engine.Breakout.RatioThreshold < 1.0 {
		return fmt.Errorf("engine.breakout.ratio_threshold must be >= 1.0")
	}

	if cfg.Notify.SNS.Enabled && cfg.Notify.SNS.TopicARN == "" {
		return fmt.Errorf("notify.sns.topic_arn is required when SNS is enabled")
	}
	if cfg.Notify.Email.Enabled && cfg.Notify.Email.FromEmail == "" {
		return fmt.Errorf("notify.email.from_email is required when email is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
