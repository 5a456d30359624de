package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Hunter    HunterConfig    `yaml:"hunter" mapstructure:"hunter"`
	Clearbit  ClearbitConfig  `yaml:"clearbit" mapstructure:"clearbit"`
	BuiltWith BuiltWithConfig `yaml:"builtwith" mapstructure:"builtwith"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// HunterConfig holds Hunter.io email verification settings.
type HunterConfig struct {
	Key     string  `yaml:"key" mapstructure:"key"`
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// ClearbitConfig holds Clearbit company enrichment settings.
type ClearbitConfig struct {
	Key     string  `yaml:"key" mapstructure:"key"`
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// BuiltWithConfig holds BuiltWith technology detection settings.
type BuiltWithConfig struct {
	Key     string  `yaml:"key" mapstructure:"key"`
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	RPS     float64 `yaml:"rps" mapstructure:"rps"`
}

// AnthropicConfig holds Anthropic API settings for outreach drafting.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// FactorWeights holds the six scoring factor weights. They must sum to 100;
// Load falls back to the defaults otherwise.
type FactorWeights struct {
	CompanySize    int `yaml:"company_size" mapstructure:"company_size"`
	Revenue        int `yaml:"revenue" mapstructure:"revenue"`
	DataQuality    int `yaml:"data_quality" mapstructure:"data_quality"`
	IndustryFit    int `yaml:"industry_fit" mapstructure:"industry_fit"`
	TechStack      int `yaml:"tech_stack" mapstructure:"tech_stack"`
	RecentActivity int `yaml:"recent_activity" mapstructure:"recent_activity"`
}

// Sum returns the total of all six weights.
func (w FactorWeights) Sum() int {
	return w.CompanySize + w.Revenue + w.DataQuality + w.IndustryFit + w.TechStack + w.RecentActivity
}

// DefaultFactorWeights returns the standard 25/20/20/15/10/10 split.
func DefaultFactorWeights() FactorWeights {
	return FactorWeights{
		CompanySize:    25,
		Revenue:        20,
		DataQuality:    20,
		IndustryFit:    15,
		TechStack:      10,
		RecentActivity: 10,
	}
}

// PipelineConfig configures enrichment behavior. The penalty and weight
// constants are business rules, kept configurable rather than hard-coded.
type PipelineConfig struct {
	SourceTimeoutSecs int           `yaml:"source_timeout_secs" mapstructure:"source_timeout_secs"`
	DraftTimeoutSecs  int           `yaml:"draft_timeout_secs" mapstructure:"draft_timeout_secs"`
	SourcePenalty     int           `yaml:"source_penalty" mapstructure:"source_penalty"`
	FieldPenalty      int           `yaml:"field_penalty" mapstructure:"field_penalty"`
	Weights           FactorWeights `yaml:"weights" mapstructure:"weights"`
	IndustryFitPath   string        `yaml:"industry_fit_path" mapstructure:"industry_fit_path"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentLeads int `yaml:"max_concurrent_leads" mapstructure:"max_concurrent_leads"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_leads", 8)
	v.SetDefault("hunter.key", "")
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("hunter.rps", 5)
	v.SetDefault("clearbit.key", "")
	v.SetDefault("clearbit.base_url", "https://company.clearbit.com/v2")
	v.SetDefault("clearbit.rps", 5)
	v.SetDefault("builtwith.key", "")
	v.SetDefault("builtwith.base_url", "https://api.builtwith.com/v20")
	v.SetDefault("builtwith.rps", 5)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("pipeline.source_timeout_secs", 5)
	v.SetDefault("pipeline.draft_timeout_secs", 10)
	v.SetDefault("pipeline.source_penalty", 20)
	v.SetDefault("pipeline.field_penalty", 5)
	v.SetDefault("pipeline.industry_fit_path", "")
	defaults := DefaultFactorWeights()
	v.SetDefault("pipeline.weights.company_size", defaults.CompanySize)
	v.SetDefault("pipeline.weights.revenue", defaults.Revenue)
	v.SetDefault("pipeline.weights.data_quality", defaults.DataQuality)
	v.SetDefault("pipeline.weights.industry_fit", defaults.IndustryFit)
	v.SetDefault("pipeline.weights.tech_stack", defaults.TechStack)
	v.SetDefault("pipeline.weights.recent_activity", defaults.RecentActivity)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.Pipeline.Weights.Sum() != 100 {
		zap.L().Warn("config: factor weights do not sum to 100, using defaults",
			zap.Int("sum", cfg.Pipeline.Weights.Sum()),
		)
		cfg.Pipeline.Weights = DefaultFactorWeights()
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
