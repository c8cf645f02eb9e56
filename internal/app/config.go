package app

import "time"

// Output formats written per category.
const (
	FormatJSON     = "json"
	FormatMarkdown = "md"
	FormatPDF      = "pdf"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Inputs. ReportPath is a finished report ("-" reads stdin);
	// DatasetPath is a table to generate reports from.
	ReportPath  string
	DatasetPath string
	Sheet       string
	Categories  []string

	// Outputs
	OutputDir string
	Formats   []string
	Locale    string
	Normalize bool

	// LLM
	LLMBaseURL        string
	LLMModel          string
	LLMAPIKey         string
	Temperature       float64
	MaxTokens         int
	MaxRows           int
	ReservedOutput    int
	RequestsPerMinute float64
	Stream            bool
	Concurrency       int

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	CacheMaxBytes    int64
	CacheMaxEntries  int
	LLMCacheOnly     bool

	// Server
	ServerAddr string
	RateLimit  float64
	RateBurst  int

	Verbose bool
	LogJSON bool
}

// DefaultConfig returns the built-in defaults, the lowest precedence layer.
func DefaultConfig() Config {
	return Config{
		OutputDir:      "insights",
		Formats:        []string{FormatJSON, FormatMarkdown},
		Locale:         "en-US",
		Normalize:      true,
		Temperature:    0.1,
		MaxTokens:      2048,
		ReservedOutput: 2048,
		Concurrency:    1,
		CacheDir:       ".goinsight-cache",
		ServerAddr:     ":8080",
		RateLimit:      5,
		RateBurst:      10,
	}
}
