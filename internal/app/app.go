package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/goinsight/internal/analysis"
	"github.com/hyperifyio/goinsight/internal/cache"
	"github.com/hyperifyio/goinsight/internal/dataset"
	"github.com/hyperifyio/goinsight/internal/extract"
	"github.com/hyperifyio/goinsight/internal/generate"
	"github.com/hyperifyio/goinsight/internal/llm"
	"github.com/hyperifyio/goinsight/internal/prompt"
	"github.com/hyperifyio/goinsight/internal/render"
)

// ErrNoInput is returned by Run when neither a report nor a dataset is set.
var ErrNoInput = errors.New("no input: set a report file or a dataset")

// App runs one batch: read or generate reports, analyze each category and
// write the renderings plus a manifest.
type App struct {
	cfg    Config
	client llm.Client
	gen    *generate.Generator
	stdin  io.Reader
}

// Option customizes an App.
type Option func(*App)

// WithClient replaces the OpenAI-compatible client built from the config.
func WithClient(c llm.Client) Option { return func(a *App) { a.client = c } }

// WithStdin sets the reader used for the "-" report path.
func WithStdin(r io.Reader) Option { return func(a *App) { a.stdin = r } }

// New prepares the cache and, for dataset runs, the model client.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, stdin: os.Stdin}
	for _, o := range opts {
		o(a)
	}
	if err := PrepareCache(cfg); err != nil {
		log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache maintenance failed; continuing")
	}
	if cfg.DatasetPath != "" && a.client == nil && !cfg.LLMCacheOnly {
		if strings.TrimSpace(cfg.LLMModel) == "" {
			return nil, errors.New("config: llm.model is required to generate reports (or set LLM_MODEL)")
		}
		p := NewClient(cfg)
		a.client = p
		preflight(ctx, p, cfg.LLMModel)
	}
	a.gen = NewGenerator(cfg, a.client)
	return a, nil
}

// NewClient builds the OpenAI-compatible client for cfg.
func NewClient(cfg Config) *llm.OpenAIProvider {
	return llm.NewOpenAIProviderWithClient(cfg.LLMBaseURL, cfg.LLMAPIKey, newLLMHTTPClient())
}

// preflight checks the model is served. It only warns: some servers do not
// implement model listing.
func preflight(ctx context.Context, l llm.ModelLister, model string) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ok, err := llm.HasModel(ctx, l, model)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
	case !ok:
		log.Warn().Str("model", model).Msg("model not listed by the LLM server")
	default:
		log.Debug().Str("model", model).Msg("model available")
	}
}

// NewGenerator builds the report generator for cfg around client.
func NewGenerator(cfg Config, client llm.Client) *generate.Generator {
	g := &generate.Generator{
		Client:      client,
		Model:       cfg.LLMModel,
		Temperature: float32(cfg.Temperature),
		MaxTokens:   cfg.MaxTokens,
		Stream:      cfg.Stream,
		CacheOnly:   cfg.LLMCacheOnly,
	}
	if cfg.CacheDir != "" {
		g.Cache = &cache.LLMCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}
	if cfg.RequestsPerMinute > 0 {
		g.Limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60), 1)
	}
	return g
}

// PrepareCache applies the clear, age and size controls to the cache dir.
func PrepareCache(cfg Config) error {
	if cfg.CacheDir == "" {
		return nil
	}
	if cfg.CacheClear {
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			return err
		}
		log.Info().Str("dir", cfg.CacheDir).Msg("cache cleared")
	}
	if cfg.CacheMaxAge > 0 {
		n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info().Int("removed", n).Dur("max_age", cfg.CacheMaxAge).Msg("purged stale cache entries")
		}
	}
	if cfg.CacheMaxBytes > 0 || cfg.CacheMaxEntries > 0 {
		n, err := cache.EnforceLimits(cfg.CacheDir, cfg.CacheMaxBytes, cfg.CacheMaxEntries)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info().Int("removed", n).Msg("evicted cache entries over limit")
		}
	}
	return nil
}

// Result summarizes a run.
type Result struct {
	RunID    string
	Analyses []analysis.Analysis
	Outputs  []string
	Manifest string
}

// source is what every category is analyzed from.
type source struct {
	text    string
	data    *dataset.Dataset
	inputs  []string
	context extract.Context
}

func (a *App) load() (source, error) {
	switch {
	case a.cfg.ReportPath == "-":
		b, err := io.ReadAll(a.stdin)
		if err != nil {
			return source{}, fmt.Errorf("read stdin: %w", err)
		}
		return source{text: string(b)}, nil
	case a.cfg.ReportPath != "":
		b, err := os.ReadFile(a.cfg.ReportPath)
		if err != nil {
			return source{}, fmt.Errorf("read report: %w", err)
		}
		return source{text: string(b), inputs: []string{a.cfg.ReportPath}}, nil
	case a.cfg.DatasetPath != "":
		d, err := dataset.Load(a.cfg.DatasetPath, dataset.Options{Sheet: a.cfg.Sheet})
		if err != nil {
			return source{}, fmt.Errorf("load dataset: %w", err)
		}
		return source{data: d, inputs: []string{a.cfg.DatasetPath}, context: d.Context()}, nil
	}
	return source{}, ErrNoInput
}

// Run analyzes every configured category and writes the outputs.
func (a *App) Run(ctx context.Context) (Result, error) {
	src, err := a.load()
	if err != nil {
		return Result{}, err
	}
	runID := uuid.NewString()
	cats := a.cfg.categories()
	log.Info().Str("run_id", runID).Int("categories", len(cats)).Bool("generate", src.data != nil).Msg("run started")

	analyses := make([]analysis.Analysis, len(cats))
	raws := make([]string, len(cats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.cfg.Concurrency))
	for i, c := range cats {
		i, c := i, c
		g.Go(func() error {
			opts := analysis.Options{Normalize: a.cfg.Normalize, Context: src.context}
			if src.data == nil {
				res, err := analysis.Run(c, src.text, opts)
				analyses[i] = res
				return err
			}
			popts := prompt.Options{Model: a.cfg.LLMModel, ReservedOutput: a.cfg.ReservedOutput, MaxRows: a.cfg.MaxRows}
			res, err := analysis.FromDataset(gctx, a.gen, c, src.data, popts, opts)
			if err != nil {
				return err
			}
			analyses[i], raws[i] = res.Analysis, res.Report.Text
			log.Info().Str("category", string(c)).Bool("cached", res.Report.Cached).Dur("took", res.Report.Duration).Msg("report generated")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}
	var outputs, warnings []string
	for i, an := range analyses {
		paths, err := a.writeOutputs(an, raws[i], src.context)
		if err != nil {
			return Result{}, err
		}
		outputs = append(outputs, paths...)
		for _, w := range an.Warnings {
			warnings = append(warnings, string(an.Category)+": "+w)
			log.Warn().Str("category", string(an.Category)).Msg(w)
		}
		log.Info().
			Str("category", string(an.Category)).
			Int("sections", len(an.Document.Sections)).
			Bool("empty", an.Empty).
			Msg("analyzed")
	}

	m := Manifest{
		RunID:       runID,
		Version:     BuildVersion,
		Commit:      BuildCommit,
		LLMCache:    a.gen.Cache != nil,
		Categories:  make([]string, len(cats)),
		Warnings:    warnings,
		GeneratedAt: time.Now().UTC(),
	}
	if m.Warnings == nil {
		m.Warnings = []string{}
	}
	if src.data != nil {
		m.Model, m.LLMBaseURL = a.cfg.LLMModel, a.cfg.LLMBaseURL
	}
	for i, c := range cats {
		m.Categories[i] = string(c)
	}
	if m.Inputs, err = digestFiles(src.inputs); err != nil {
		return Result{}, err
	}
	if src.data == nil && len(src.inputs) == 0 {
		m.Inputs = append(m.Inputs, Digest{Path: "-", SHA256: computeSHA256Hex(src.text), Bytes: int64(len(src.text))})
	}
	if m.Outputs, err = digestFiles(outputs); err != nil {
		return Result{}, err
	}
	manifest, err := writeManifest(a.cfg.OutputDir, m)
	if err != nil {
		return Result{}, err
	}
	log.Info().Str("run_id", runID).Int("outputs", len(outputs)).Str("dir", a.cfg.OutputDir).Msg("run finished")
	return Result{RunID: runID, Analyses: analyses, Outputs: outputs, Manifest: manifest}, nil
}

// writeOutputs writes the configured renderings of one analysis, plus the
// raw report when it was generated in this run.
func (a *App) writeOutputs(an analysis.Analysis, raw string, ctx extract.Context) ([]string, error) {
	base := filepath.Join(a.cfg.OutputDir, string(an.Category))
	var paths []string
	write := func(path string, fill func(io.Writer) error) error {
		var buf bytes.Buffer
		if err := fill(&buf); err != nil {
			return fmt.Errorf("render %s: %w", path, err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		paths = append(paths, path)
		return nil
	}
	md := render.Markdown(an.Category, an.Result, render.Options{Locale: a.cfg.Locale, Context: ctx})
	for _, f := range a.cfg.Formats {
		var err error
		switch strings.ToLower(f) {
		case FormatJSON:
			err = write(base+".json", func(w io.Writer) error { return render.JSON(w, an) })
		case FormatMarkdown, "markdown":
			err = write(base+".md", func(w io.Writer) error {
				_, err := io.WriteString(w, md)
				return err
			})
		case FormatPDF:
			err = write(base+".pdf", func(w io.Writer) error { return render.PDF(w, md) })
		}
		if err != nil {
			return nil, err
		}
	}
	if raw != "" {
		if err := write(base+".report.txt", func(w io.Writer) error {
			_, err := io.WriteString(w, raw+"\n")
			return err
		}); err != nil {
			return nil, err
		}
	}
	return paths, nil
}
