package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/goinsight/internal/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("goinsight failed")
		if errors.Is(err, app.ErrNoInput) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// globalFlags are shared by every command and land in app.Config.
type globalFlags struct {
	configPath string
	envFiles   []string
	verbose    bool
	logJSON    bool

	llmBase    string
	llmModel   string
	llmKey     string
	cacheDir   string
	cacheOnly  bool
	normalize  bool
	locale     string
	maxRows    int
	stream     bool
	categories []string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "goinsight",
		Short: "Turn LLM data-analysis reports into structured facts",
		Long: `goinsight reads the plain-text analysis reports a language model writes about
a tabular dataset, splits them into sections and extracts typed facts for six
report categories: overview, statistical, patterns, quality, trends and
correlation.

Reports can be read from files or stdin, or generated from a CSV, JSON or
XLSX dataset through an OpenAI-compatible server.`,
		Version:       app.BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), g.verbose, g.logJSON)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to a YAML or JSON config file")
	pf.StringSliceVar(&g.envFiles, "env-file", []string{".env"}, "Dotenv files to load; existing environment wins")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Verbose logging")
	pf.BoolVar(&g.logJSON, "log-json", false, "Log as JSON lines instead of console output")
	pf.StringVar(&g.llmBase, "llm.base", "", "OpenAI-compatible base URL")
	pf.StringVar(&g.llmModel, "llm.model", "", "Model name")
	pf.StringVar(&g.llmKey, "llm.key", "", "API key for the OpenAI-compatible server")
	pf.StringVar(&g.cacheDir, "cache.dir", "", "Cache directory path")
	pf.BoolVar(&g.cacheOnly, "llm.cacheOnly", false, "Serve generated reports from the cache only")
	pf.BoolVar(&g.normalize, "normalize", true, "Strip inline HTML and normalize Unicode before parsing")
	pf.StringVar(&g.locale, "locale", "", "Locale for number formatting, e.g. en-US or de-DE")
	pf.IntVar(&g.maxRows, "max.rows", 0, "Maximum dataset rows sent to the model (0 fits the context)")
	pf.BoolVar(&g.stream, "stream", false, "Stream model output")
	pf.StringSliceVar(&g.categories, "categories", nil, "Categories to analyze (default all)")

	root.AddCommand(parseCmd(g))
	root.AddCommand(extractCmd(g))
	root.AddCommand(generateCmd(g))
	root.AddCommand(runCmd(g))
	root.AddCommand(serveCmd(g))
	root.AddCommand(categoriesCmd())
	root.AddCommand(cacheCmd(g))
	root.AddCommand(versionCmd())
	return root
}

func setupLogging(w io.Writer, verbose, asJSON bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if asJSON {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// loadConfig layers defaults, the config file, the environment and the flags
// the user actually set, in that order.
func loadConfig(cmd *cobra.Command, g *globalFlags) (app.Config, error) {
	cfg := app.DefaultConfig()
	if err := app.LoadEnvFiles(g.envFiles...); err != nil {
		return cfg, err
	}
	if g.configPath != "" {
		fc, err := app.LoadConfigFile(g.configPath)
		if err != nil {
			return cfg, err
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if err := app.ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("llm.base", func() { cfg.LLMBaseURL = g.llmBase })
	set("llm.model", func() { cfg.LLMModel = g.llmModel })
	set("llm.key", func() { cfg.LLMAPIKey = g.llmKey })
	set("cache.dir", func() { cfg.CacheDir = g.cacheDir })
	set("llm.cacheOnly", func() { cfg.LLMCacheOnly = g.cacheOnly })
	set("normalize", func() { cfg.Normalize = g.normalize })
	set("locale", func() { cfg.Locale = g.locale })
	set("max.rows", func() { cfg.MaxRows = g.maxRows })
	set("stream", func() { cfg.Stream = g.stream })
	set("categories", func() { cfg.Categories = g.categories })
	if g.verbose {
		cfg.Verbose = true
	}
	cfg.LogJSON = cfg.LogJSON || g.logJSON
	return cfg, nil
}

// readReport reads the report named by args, or stdin for none or "-".
func readReport(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	return string(b), nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
