package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable. Each variable is also
// read without the prefix (LLM_MODEL as well as GOINSIGHT_LLM_MODEL).
const EnvPrefix = "GOINSIGHT"

// envConfig mirrors the settings that can come from the environment.
// Pointers stay nil for unset variables so only set ones override.
type envConfig struct {
	Report     *string  `envconfig:"REPORT"`
	Dataset    *string  `envconfig:"DATASET"`
	Categories []string `envconfig:"CATEGORIES"`

	OutputDir *string  `envconfig:"OUTPUT_DIR"`
	Formats   []string `envconfig:"FORMATS"`
	Locale    *string  `envconfig:"LOCALE"`
	Normalize *bool    `envconfig:"NORMALIZE"`

	LLMBaseURL        *string  `envconfig:"LLM_BASE_URL"`
	LLMModel          *string  `envconfig:"LLM_MODEL"`
	LLMAPIKey         *string  `envconfig:"LLM_API_KEY"`
	Temperature       *float64 `envconfig:"TEMPERATURE"`
	MaxTokens         *int     `envconfig:"MAX_TOKENS"`
	MaxRows           *int     `envconfig:"MAX_ROWS"`
	RequestsPerMinute *float64 `envconfig:"REQUESTS_PER_MINUTE"`
	Stream            *bool    `envconfig:"STREAM"`
	Concurrency       *int     `envconfig:"CONCURRENCY"`

	CacheDir         *string        `envconfig:"CACHE_DIR"`
	CacheMaxAge      *time.Duration `envconfig:"CACHE_MAX_AGE"`
	CacheClear       *bool          `envconfig:"CACHE_CLEAR"`
	CacheStrictPerms *bool          `envconfig:"CACHE_STRICT_PERMS"`
	LLMCacheOnly     *bool          `envconfig:"LLM_CACHE_ONLY"`

	ServerAddr *string  `envconfig:"ADDR"`
	RateLimit  *float64 `envconfig:"RATE_LIMIT"`

	Verbose *bool `envconfig:"VERBOSE"`
}

// ApplyEnvOverrides overrides cfg with every setting present in the
// environment. A malformed value is an error rather than silently ignored.
func ApplyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	var ec envConfig
	if err := envconfig.Process(EnvPrefix, &ec); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	str := func(dst *string, v *string) {
		if v != nil && *v != "" {
			*dst = *v
		}
	}
	num := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	flt := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	flag := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}

	str(&cfg.ReportPath, ec.Report)
	str(&cfg.DatasetPath, ec.Dataset)
	if len(ec.Categories) > 0 {
		cfg.Categories = ec.Categories
	}
	str(&cfg.OutputDir, ec.OutputDir)
	if len(ec.Formats) > 0 {
		cfg.Formats = ec.Formats
	}
	str(&cfg.Locale, ec.Locale)
	flag(&cfg.Normalize, ec.Normalize)

	str(&cfg.LLMBaseURL, ec.LLMBaseURL)
	str(&cfg.LLMModel, ec.LLMModel)
	str(&cfg.LLMAPIKey, ec.LLMAPIKey)
	flt(&cfg.Temperature, ec.Temperature)
	num(&cfg.MaxTokens, ec.MaxTokens)
	num(&cfg.MaxRows, ec.MaxRows)
	flt(&cfg.RequestsPerMinute, ec.RequestsPerMinute)
	flag(&cfg.Stream, ec.Stream)
	num(&cfg.Concurrency, ec.Concurrency)

	str(&cfg.CacheDir, ec.CacheDir)
	if ec.CacheMaxAge != nil {
		cfg.CacheMaxAge = *ec.CacheMaxAge
	}
	flag(&cfg.CacheClear, ec.CacheClear)
	flag(&cfg.CacheStrictPerms, ec.CacheStrictPerms)
	flag(&cfg.LLMCacheOnly, ec.LLMCacheOnly)

	str(&cfg.ServerAddr, ec.ServerAddr)
	flt(&cfg.RateLimit, ec.RateLimit)
	flag(&cfg.Verbose, ec.Verbose)
	return nil
}
