package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/goinsight/internal/analysis"
	"github.com/hyperifyio/goinsight/internal/app"
	"github.com/hyperifyio/goinsight/internal/cache"
	"github.com/hyperifyio/goinsight/internal/dataset"
	"github.com/hyperifyio/goinsight/internal/extract"
	"github.com/hyperifyio/goinsight/internal/generate"
	"github.com/hyperifyio/goinsight/internal/llm"
	"github.com/hyperifyio/goinsight/internal/prompt"
	"github.com/hyperifyio/goinsight/internal/render"
	"github.com/hyperifyio/goinsight/internal/report"
	"github.com/hyperifyio/goinsight/internal/server"
)

func parseCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [report-file]",
		Short: "Split a report into sections and print them as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			text, err := readReport(cmd, args)
			if err != nil {
				return err
			}
			if cfg.Normalize {
				text = report.Normalize(text)
			}
			return render.JSON(cmd.OutOrStdout(), report.Parse(text))
		},
	}
}

func extractCmd(g *globalFlags) *cobra.Command {
	var (
		format  string
		columns string
		numeric string
	)
	cmd := &cobra.Command{
		Use:   "extract <category|all> [report-file]",
		Short: "Extract the facts of one category from a report",
		Long: `Extract the typed facts of a report category.

Example:
  goinsight extract quality report.txt
  goinsight extract statistical --columns Region,Revenue --numeric Revenue < report.txt
  goinsight extract all --format json report.txt`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			text, err := readReport(cmd, args[1:])
			if err != nil {
				return err
			}
			opts := analysis.Options{
				Normalize: cfg.Normalize,
				Context:   extract.Context{Columns: splitList(columns), Numeric: splitList(numeric)},
			}
			out := cmd.OutOrStdout()
			if strings.EqualFold(args[0], "all") {
				all, err := analysis.RunAll(text, opts)
				if err != nil {
					return err
				}
				return render.JSON(out, all)
			}
			c, err := extract.ParseCategory(args[0])
			if err != nil {
				return err
			}
			a, err := analysis.Run(c, text, opts)
			if err != nil {
				return err
			}
			for _, w := range a.Warnings {
				log.Warn().Str("category", string(c)).Msg(w)
			}
			return writeAnalysis(out, a, format, render.Options{Locale: cfg.Locale, Context: opts.Context})
		},
	}
	cmd.Flags().StringVar(&format, "format", app.FormatJSON, "Output format: json, md or pdf")
	cmd.Flags().StringVar(&columns, "columns", "", "Comma-separated dataset columns the report describes")
	cmd.Flags().StringVar(&numeric, "numeric", "", "Comma-separated numeric columns")
	return cmd
}

func writeAnalysis(w io.Writer, a analysis.Analysis, format string, opts render.Options) error {
	switch strings.ToLower(format) {
	case app.FormatJSON:
		return render.JSON(w, a)
	case app.FormatMarkdown, "markdown":
		_, err := io.WriteString(w, render.Markdown(a.Category, a.Result, opts))
		return err
	case app.FormatPDF:
		return render.PDF(w, render.Markdown(a.Category, a.Result, opts))
	}
	return fmt.Errorf("unknown format %q", format)
}

func generateCmd(g *globalFlags) *cobra.Command {
	var (
		datasetPath string
		sheet       string
		format      string
	)
	cmd := &cobra.Command{
		Use:   "generate <category>",
		Short: "Generate a report for a dataset with the model",
		Long: `Generate one category report for a dataset through an OpenAI-compatible
server and print the raw report, or its analysis with --format json or md.

Example:
  goinsight generate trends --dataset sales.csv --llm.model gpt-4o-mini
  goinsight generate overview --dataset sales.xlsx --sheet Q1 --stream`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if datasetPath == "" {
				return errors.New("--dataset flag is required")
			}
			c, err := extract.ParseCategory(args[0])
			if err != nil {
				return err
			}
			d, err := dataset.Load(datasetPath, dataset.Options{Sheet: sheet})
			if err != nil {
				return err
			}
			if err := app.PrepareCache(cfg); err != nil {
				log.Warn().Err(err).Msg("cache maintenance failed; continuing")
			}
			var client llm.Client
			if !cfg.LLMCacheOnly {
				if strings.TrimSpace(cfg.LLMModel) == "" {
					return errors.New("--llm.model (or LLM_MODEL) is required to generate reports")
				}
				client = app.NewClient(cfg)
			}
			gen := app.NewGenerator(cfg, client)
			if cfg.Stream {
				errOut := cmd.ErrOrStderr()
				gen.OnDelta = func(chunk string) { fmt.Fprint(errOut, chunk) }
			}
			res, err := analysis.FromDataset(cmd.Context(), gen, c, d,
				prompt.Options{ReservedOutput: cfg.ReservedOutput, MaxRows: cfg.MaxRows},
				analysis.Options{Normalize: cfg.Normalize})
			if err != nil {
				return err
			}
			log.Info().
				Str("category", string(c)).
				Bool("cached", res.Report.Cached).
				Int("rows", res.Prompt.RowsIncluded).
				Dur("took", res.Report.Duration).
				Msg("report generated")
			out := cmd.OutOrStdout()
			if format == "text" {
				_, err := fmt.Fprintln(out, res.Report.Text)
				return err
			}
			if format == app.FormatJSON {
				return render.JSON(out, res)
			}
			return writeAnalysis(out, res.Analysis, format, render.Options{Locale: cfg.Locale, Context: d.Context()})
		},
	}
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "CSV, TSV, JSON or XLSX dataset")
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX sheet name (default first sheet)")
	cmd.Flags().StringVar(&format, "format", "text", "Output: text (raw report), json, md or pdf")
	return cmd
}

func runCmd(g *globalFlags) *cobra.Command {
	var (
		reportPath  string
		datasetPath string
		sheet       string
		outDir      string
		formats     []string
		concurrency int
		cacheClear  bool
		cacheMaxAge time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze every category and write JSON, Markdown and PDF outputs",
		Long: `Analyze a report, or generate and analyze one report per category from a
dataset, then write the renderings and a manifest.json to the output dir.

Example:
  goinsight run --report report.txt --out insights
  goinsight run --dataset sales.csv --categories overview,trends --format json,md,pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("report") {
				cfg.ReportPath = reportPath
			}
			if flags.Changed("dataset") {
				cfg.DatasetPath = datasetPath
			}
			if flags.Changed("sheet") {
				cfg.Sheet = sheet
			}
			if flags.Changed("out") {
				cfg.OutputDir = outDir
			}
			if flags.Changed("format") {
				cfg.Formats = formats
			}
			if flags.Changed("concurrency") {
				cfg.Concurrency = concurrency
			}
			if flags.Changed("cache.clear") {
				cfg.CacheClear = cacheClear
			}
			if flags.Changed("cache.maxAge") {
				cfg.CacheMaxAge = cacheMaxAge
			}

			a, err := app.New(cmd.Context(), cfg, app.WithStdin(cmd.InOrStdin()))
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			res, err := a.Run(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range res.Outputs {
				fmt.Fprintln(out, p)
			}
			fmt.Fprintln(out, res.Manifest)
			return nil
		},
	}
	cmd.Flags().StringVar(&reportPath, "report", "", `Finished report to analyze ("-" reads stdin)`)
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Dataset to generate reports from")
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX sheet name")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default insights)")
	cmd.Flags().StringSliceVar(&formats, "format", nil, "Output formats: json, md, pdf (default json,md)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Categories processed in parallel")
	cmd.Flags().BoolVar(&cacheClear, "cache.clear", false, "Clear the cache before the run")
	cmd.Flags().DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Purge cache entries older than this (e.g. 24h)")
	return cmd
}

func serveCmd(g *globalFlags) *cobra.Command {
	var (
		addr  string
		rps   float64
		burst int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse, extract and generate API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.ServerAddr = addr
			}
			if flags.Changed("rate") {
				cfg.RateLimit = rps
			}
			if flags.Changed("burst") {
				cfg.RateBurst = burst
			}
			if err := app.ValidateConfig(cfg); err != nil {
				return err
			}

			var gen *generate.Generator
			if strings.TrimSpace(cfg.LLMModel) != "" || cfg.LLMCacheOnly {
				if err := app.PrepareCache(cfg); err != nil {
					log.Warn().Err(err).Msg("cache maintenance failed; continuing")
				}
				var client llm.Client
				if !cfg.LLMCacheOnly {
					client = app.NewClient(cfg)
				}
				gen = app.NewGenerator(cfg, client)
			} else {
				log.Info().Msg("no model configured; generation endpoint disabled")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			srv := server.New(server.Config{
				Addr:      cfg.ServerAddr,
				RateLimit: cfg.RateLimit,
				Burst:     cfg.RateBurst,
				Normalize: cfg.Normalize,
				MaxRows:   cfg.MaxRows,
				Version:   app.BuildVersion,
			}, log.Logger, gen)
			log.Info().Str("addr", cfg.ServerAddr).Bool("generate", gen != nil).Msg("listening")
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8080)")
	cmd.Flags().Float64Var(&rps, "rate", 0, "Requests per second per client (0 disables)")
	cmd.Flags().IntVar(&burst, "burst", 0, "Rate limiter burst")
	return cmd
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the report categories and their sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tTITLE\tSECTIONS")
			for _, p := range prompt.Profiles() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Category, p.Name, strings.Join(p.Outline, ", "))
			}
			return tw.Flush()
		},
	}
}

func cacheCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the generated report cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", cfg.CacheDir)
			return nil
		},
	})

	var (
		maxAge     time.Duration
		maxBytes   int64
		maxEntries int
	)
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Remove stale entries and enforce size limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if maxAge <= 0 && maxBytes <= 0 && maxEntries <= 0 {
				return errors.New("set at least one of --max-age, --max-bytes, --max-entries")
			}
			aged, err := cache.PurgeByAge(cfg.CacheDir, maxAge)
			if err != nil {
				return err
			}
			evicted, err := cache.EnforceLimits(cfg.CacheDir, maxBytes, maxEntries)
			if err != nil {
				return err
			}
			n, size, err := cache.Usage(cfg.CacheDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d stale and %d over-limit entries; %d entries (%d bytes) remain\n", aged, evicted, n, size)
			return nil
		},
	}
	purge.Flags().DurationVar(&maxAge, "max-age", 0, "Remove entries not used within this duration")
	purge.Flags().Int64Var(&maxBytes, "max-bytes", 0, "Evict least recently used entries above this total size")
	purge.Flags().IntVar(&maxEntries, "max-entries", 0, "Evict least recently used entries above this count")
	cmd.AddCommand(purge)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "goinsight %s\n", app.BuildVersion)
			fmt.Fprintf(out, "commit: %s\n", app.BuildCommit)
			fmt.Fprintf(out, "built:  %s\n", app.BuildDate)
		},
	}
}
