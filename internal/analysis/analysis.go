// Package analysis ties parsing, extraction and the structure check together
// for one report, and runs a dataset through generation first when needed.
package analysis

import (
	"context"
	"fmt"

	"github.com/hyperifyio/goinsight/internal/dataset"
	"github.com/hyperifyio/goinsight/internal/extract"
	"github.com/hyperifyio/goinsight/internal/generate"
	"github.com/hyperifyio/goinsight/internal/prompt"
	"github.com/hyperifyio/goinsight/internal/report"
	"github.com/hyperifyio/goinsight/internal/validate"
)

// Analysis bundles everything produced for one category.
type Analysis struct {
	Category extract.Category `json:"category"`
	Document report.Document  `json:"document"`
	Result   extract.Result   `json:"result"`
	Empty    bool             `json:"empty"`
	// Warnings lists structure problems found in the report.
	Warnings []string `json:"warnings"`
}

// Options controls how report text is read.
type Options struct {
	// Normalize strips inline HTML and normalizes Unicode before parsing.
	Normalize bool
	Context   extract.Context
}

// Run parses raw report text and extracts the category's facts. Every
// Analysis has a non-nil Result and Warnings.
func Run(c extract.Category, raw string, opts Options) (Analysis, error) {
	profile, err := prompt.GetProfile(c)
	if err != nil {
		return Analysis{}, err
	}
	if opts.Normalize {
		raw = report.Normalize(raw)
	}
	doc := report.Parse(raw)
	res := extract.Run(c, raw, doc, opts.Context)
	if ov, ok := res.(extract.OverviewResult); ok {
		doc = extract.AttachTables(doc, ov)
	}
	warnings := []string{}
	if !validate.HasSectionMarkers(raw) {
		warnings = append(warnings, "report has no SECTION: headers")
	}
	warnings = append(warnings, validate.CheckStructure(doc, profile.Outline).Warnings()...)
	return Analysis{
		Category: c,
		Document: doc,
		Result:   res,
		Empty:    res.Empty(),
		Warnings: warnings,
	}, nil
}

// RunAll analyzes raw text as every category.
func RunAll(raw string, opts Options) (map[extract.Category]Analysis, error) {
	out := make(map[extract.Category]Analysis, len(extract.Categories))
	for _, c := range extract.Categories {
		a, err := Run(c, raw, opts)
		if err != nil {
			return nil, err
		}
		out[c] = a
	}
	return out, nil
}

// Generated is an analysis of a freshly generated report.
type Generated struct {
	Analysis
	Report generate.Report `json:"report"`
	Prompt prompt.Prompt   `json:"-"`
}

// FromDataset builds the category prompt for d, generates the report and
// analyzes it with d's column context.
func FromDataset(ctx context.Context, g *generate.Generator, c extract.Category, d *dataset.Dataset, popts prompt.Options, opts Options) (Generated, error) {
	profile, err := prompt.GetProfile(c)
	if err != nil {
		return Generated{}, err
	}
	if popts.Model == "" {
		popts.Model = g.Model
	}
	p := prompt.Build(profile, d, popts)
	rep, err := g.Generate(ctx, p)
	if err != nil {
		return Generated{}, fmt.Errorf("generate %s: %w", c, err)
	}
	opts.Context = d.Context()
	a, err := Run(c, rep.Text, opts)
	if err != nil {
		return Generated{}, err
	}
	if p.Truncated() {
		a.Warnings = append(a.Warnings, fmt.Sprintf("prompt included %d of %d rows", p.RowsIncluded, p.RowsTotal))
	}
	return Generated{Analysis: a, Report: rep, Prompt: p}, nil
}
