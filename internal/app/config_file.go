package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/goinsight/internal/extract"
)

// FileConfig is the single-file configuration schema.
type FileConfig struct {
	Report     string   `yaml:"report" json:"report"`
	Dataset    string   `yaml:"dataset" json:"dataset"`
	Sheet      string   `yaml:"sheet" json:"sheet"`
	Categories []string `yaml:"categories" json:"categories"`

	Output struct {
		Dir       string   `yaml:"dir" json:"dir"`
		Formats   []string `yaml:"formats" json:"formats"`
		Locale    string   `yaml:"locale" json:"locale"`
		Normalize *bool    `yaml:"normalize" json:"normalize"`
	} `yaml:"output" json:"output"`

	LLM struct {
		BaseURL           string   `yaml:"base" json:"base"`
		Model             string   `yaml:"model" json:"model"`
		APIKey            string   `yaml:"key" json:"key"`
		Temperature       *float64 `yaml:"temperature" json:"temperature"`
		MaxTokens         int      `yaml:"maxTokens" json:"maxTokens"`
		MaxRows           int      `yaml:"maxRows" json:"maxRows"`
		ReservedOutput    int      `yaml:"reservedOutput" json:"reservedOutput"`
		RequestsPerMinute float64  `yaml:"requestsPerMinute" json:"requestsPerMinute"`
		Stream            bool     `yaml:"stream" json:"stream"`
		Concurrency       int      `yaml:"concurrency" json:"concurrency"`
	} `yaml:"llm" json:"llm"`

	Cache struct {
		Dir         string   `yaml:"dir" json:"dir"`
		MaxAge      Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool     `yaml:"clear" json:"clear"`
		StrictPerms bool     `yaml:"strictPerms" json:"strictPerms"`
		MaxBytes    int64    `yaml:"maxBytes" json:"maxBytes"`
		MaxEntries  int      `yaml:"maxEntries" json:"maxEntries"`
		Only        bool     `yaml:"only" json:"only"`
	} `yaml:"cache" json:"cache"`

	Server struct {
		Addr      string  `yaml:"addr" json:"addr"`
		RateLimit float64 `yaml:"rateLimit" json:"rateLimit"`
		Burst     int     `yaml:"burst" json:"burst"`
	} `yaml:"server" json:"server"`

	Verbose bool `yaml:"verbose" json:"verbose"`
	LogJSON bool `yaml:"logJSON" json:"logJSON"`
}

// Duration accepts "90s"-style strings in both YAML and JSON.
type Duration time.Duration

func (d *Duration) set(s string) error {
	if strings.TrimSpace(s) == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error { return d.set(n.Value) }

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"24h\": %w", err)
	}
	return d.set(s)
}

// LoadConfigFile reads YAML or JSON into FileConfig, choosing the decoder
// by extension and trying YAML then JSON otherwise.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg. It runs right
// after DefaultConfig, so file values replace defaults and are in turn
// replaced by environment and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setFloat := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	setBool := func(dst *bool, v bool) {
		if v {
			*dst = true
		}
	}

	setString(&cfg.ReportPath, fc.Report)
	setString(&cfg.DatasetPath, fc.Dataset)
	setString(&cfg.Sheet, fc.Sheet)
	if len(fc.Categories) > 0 {
		cfg.Categories = append([]string{}, fc.Categories...)
	}

	setString(&cfg.OutputDir, fc.Output.Dir)
	if len(fc.Output.Formats) > 0 {
		cfg.Formats = append([]string{}, fc.Output.Formats...)
	}
	setString(&cfg.Locale, fc.Output.Locale)
	if fc.Output.Normalize != nil {
		cfg.Normalize = *fc.Output.Normalize
	}

	setString(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setString(&cfg.LLMModel, fc.LLM.Model)
	setString(&cfg.LLMAPIKey, fc.LLM.APIKey)
	if fc.LLM.Temperature != nil {
		cfg.Temperature = *fc.LLM.Temperature
	}
	setInt(&cfg.MaxTokens, fc.LLM.MaxTokens)
	setInt(&cfg.MaxRows, fc.LLM.MaxRows)
	setInt(&cfg.ReservedOutput, fc.LLM.ReservedOutput)
	setFloat(&cfg.RequestsPerMinute, fc.LLM.RequestsPerMinute)
	setBool(&cfg.Stream, fc.LLM.Stream)
	setInt(&cfg.Concurrency, fc.LLM.Concurrency)

	setString(&cfg.CacheDir, fc.Cache.Dir)
	if fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAge)
	}
	setBool(&cfg.CacheClear, fc.Cache.Clear)
	setBool(&cfg.CacheStrictPerms, fc.Cache.StrictPerms)
	if fc.Cache.MaxBytes > 0 {
		cfg.CacheMaxBytes = fc.Cache.MaxBytes
	}
	setInt(&cfg.CacheMaxEntries, fc.Cache.MaxEntries)
	setBool(&cfg.LLMCacheOnly, fc.Cache.Only)

	setString(&cfg.ServerAddr, fc.Server.Addr)
	setFloat(&cfg.RateLimit, fc.Server.RateLimit)
	setInt(&cfg.RateBurst, fc.Server.Burst)

	setBool(&cfg.Verbose, fc.Verbose)
	setBool(&cfg.LogJSON, fc.LogJSON)
}

// ValidateConfig performs minimal validation of the settings every command
// relies on. Input and model requirements are checked by the commands that
// need them.
func ValidateConfig(cfg Config) error {
	for _, c := range cfg.Categories {
		if _, err := extract.ParseCategory(c); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	for _, f := range cfg.Formats {
		switch strings.ToLower(f) {
		case FormatJSON, FormatMarkdown, "markdown", FormatPDF:
		default:
			return fmt.Errorf("config: unknown output format %q", f)
		}
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return errors.New("config: temperature must be between 0 and 2")
	}
	if cfg.MaxTokens < 0 || cfg.MaxRows < 0 || cfg.ReservedOutput < 0 || cfg.Concurrency < 0 ||
		cfg.CacheMaxBytes < 0 || cfg.CacheMaxEntries < 0 || cfg.RequestsPerMinute < 0 || cfg.RateLimit < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}

// categories resolves the configured category names, defaulting to all.
func (cfg Config) categories() []extract.Category {
	if len(cfg.Categories) == 0 {
		return extract.Categories
	}
	out := make([]extract.Category, 0, len(cfg.Categories))
	seen := map[extract.Category]bool{}
	for _, name := range cfg.Categories {
		c, err := extract.ParseCategory(name)
		if err != nil || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
