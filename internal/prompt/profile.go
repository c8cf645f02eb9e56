// Package prompt holds the per-category report profiles and renders the
// prompts that ask a model for a structured analysis report.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperifyio/goinsight/internal/extract"
)

// ErrUnknownCategory is returned for a category without a profile.
var ErrUnknownCategory = errors.New("unknown category")

// Profile defines the structure a report of one category must follow.
type Profile struct {
	Category    extract.Category
	Name        string
	Description string
	// Outline lists the mandatory SECTION: headers in order.
	Outline      []string
	SystemPrompt string
	// Format is the section skeleton shown to the model. {{stats}} is
	// replaced with one line per statistic over the numeric columns.
	Format string
	// Rules are appended to the shared output rules.
	Rules []string
}

// GetProfile returns the profile of a category.
func GetProfile(c extract.Category) (Profile, error) {
	switch c {
	case extract.CategoryOverview:
		return overviewProfile(), nil
	case extract.CategoryStatistical:
		return statisticalProfile(), nil
	case extract.CategoryPatterns:
		return patternsProfile(), nil
	case extract.CategoryQuality:
		return qualityProfile(), nil
	case extract.CategoryTrends:
		return trendsProfile(), nil
	case extract.CategoryCorrelation:
		return correlationProfile(), nil
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
}

// Lookup parses a user-supplied category name and returns its profile.
func Lookup(name string) (Profile, error) {
	c, err := extract.ParseCategory(name)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return GetProfile(c)
}

// Profiles returns every profile in category order.
func Profiles() []Profile {
	out := make([]Profile, 0, len(extract.Categories))
	for _, c := range extract.Categories {
		p, _ := GetProfile(c)
		out = append(out, p)
	}
	return out
}

// sharedRules apply to every category.
var sharedRules = []string{
	`Start every section with "SECTION: <Section Name>" on its own line`,
	"Use colons for key-value pairs",
	"Use dashes (-) for all bullet points",
	"Do not use markdown symbols such as ** or emoji; plain text only",
	"Compute every number from the dataset provided; never invent values",
	"Include all sections, separated by blank lines",
}

const analystRole = "You are a data analyst. You read the dataset provided and write a plain-text analysis report that follows the requested section structure exactly."

func overviewProfile() Profile {
	return Profile{
		Category:     extract.CategoryOverview,
		Name:         "Overview",
		Description:  "Dataset overview with headline figures, regional breakdown and quality notes",
		Outline:      []string{"Document Overview", "Key Insights", "Regional Insights", "Data Quality", "Patterns and Trends", "AI Summary"},
		SystemPrompt: analystRole + " Give a comprehensive overview with concrete figures.",
		Format: `SECTION: Document Overview
File Type: [file type]
Purpose: [one or two sentences on what the data represents and its business context]
Rows: [exact row count]
Columns: [exact column count]
Column Names: [all column names, comma-separated]
Contains Headers: [Yes/No]
Contains Missing Values: [None, or which columns]

SECTION: Key Insights
Transaction Summary:
- Total Transactions: [row count]
- Total Revenue: $[sum of the revenue column, X,XXX.XX]
- Average Revenue per Transaction: $[total revenue / transactions, X,XXX.XX]
- Most Frequent Region: [region] ([count] transactions)
- Date Range: [earliest] to [latest] (when a date column exists)
Product Analysis:
- Top Revenue Product: [product] - $[revenue]
- Lowest Revenue Product: [product] - $[revenue]

SECTION: Regional Insights
[Region]: Transactions: [count], Total Revenue: $[sum], Avg Revenue per Transaction: $[average]
[one line for every region in the data]

SECTION: Data Quality
- [observations on missing values, formats and consistency]

SECTION: Patterns and Trends
- [a concrete pattern observed in the data]
- [another pattern]

SECTION: AI Summary
[two or three sentences describing the dataset and its key findings]`,
		Rules: []string{
			"For Regional Insights include every region found in the data",
			"When the dataset has no revenue or region column, say so instead of inventing one",
		},
	}
}

func statisticalProfile() Profile {
	return Profile{
		Category:     extract.CategoryStatistical,
		Name:         "Statistical Analysis",
		Description:  "Summary statistics, per-column detail, distributions and comparisons",
		Outline:      []string{"Statistical Summary", "Column Statistics", "Distribution Analysis", "Comparative Statistics"},
		SystemPrompt: analystRole + " Focus on statistical measures, distributions and numerical summaries.",
		Format: `SECTION: Statistical Summary
{{stats}}

SECTION: Column Statistics
[Column Name]:
- Count: [value]
- Mean: [value]
- Median: [value]
- Standard Deviation: [value]
- Min: [value]
- Max: [value]
- 25th Percentile: [value]
- 75th Percentile: [value]
[repeat for every numeric column]

SECTION: Distribution Analysis
- [Column Name]: [distribution shape and outliers by the 1.5 * IQR rule]

SECTION: Comparative Statistics
- [comparison across columns, similar distributions, anomalies]`,
	}
}

func patternsProfile() Profile {
	return Profile{
		Category:     extract.CategoryPatterns,
		Name:         "Pattern Detection",
		Description:  "Recurring, value, relationship, business and anomaly patterns",
		Outline:      []string{"Pattern Identification", "Value Patterns", "Relationship Patterns", "Business Patterns", "Anomaly Patterns"},
		SystemPrompt: analystRole + " Focus on discovering meaningful patterns and relationships.",
		Format: `SECTION: Pattern Identification
- Recurring sequences or cycles: [description]
- Temporal patterns (when date columns exist): [description]
- Clustering patterns: [description]

SECTION: Value Patterns
- [Column Name]: [most common value] ([count] occurrences)
- Rare or unusual values: [description]

SECTION: Relationship Patterns
- Correlations between columns: [description]
- Conditional patterns (if X then Y): [description]

SECTION: Business Patterns
- Sales, customer, product and geographic patterns: [description]

SECTION: Anomaly Patterns
- Unusual data points and outliers: [description]
- Missing data patterns: [description]`,
	}
}

func qualityProfile() Profile {
	return Profile{
		Category:     extract.CategoryQuality,
		Name:         "Data Quality",
		Description:  "Completeness, consistency, accuracy and validity assessment with scores",
		Outline:      []string{"Data Completeness", "Data Consistency", "Data Accuracy", "Data Validity", "Quality Metrics", "Recommendations"},
		SystemPrompt: analystRole + " Assess completeness, consistency, accuracy and validity.",
		Format: `SECTION: Data Completeness
- [Column Name]: [count] missing values ([percentage]%)
- Completeness score: Overall [score]% complete

SECTION: Data Consistency
- Dates: [status]
- Numbers: [status]
- Duplicate records: [count] duplicate rows found

SECTION: Data Accuracy
- Invalid or out-of-range values: [description]

SECTION: Data Validity
- Business rule or constraint violations: [description]

SECTION: Quality Metrics
Metric | Score | Description
Overall Quality | [0-100] | [description]
Column-Level Average | [0-100] | [description]
Row-Level Average | [0-100] | [description]

SECTION: Recommendations
- [cleaning step or priority issue]`,
		Rules: []string{"Use pipe separators only for the Quality Metrics table"},
	}
}

func trendsProfile() Profile {
	return Profile{
		Category:     extract.CategoryTrends,
		Name:         "Trend Analysis",
		Description:  "Temporal, value, comparative and business trends",
		Outline:      []string{"Temporal Trends", "Value Trends", "Comparative Trends", "Trend Analysis", "Business Trends", "Trends Summary"},
		SystemPrompt: analystRole + " Focus on changes over time and directional patterns.",
		Format: `SECTION: Temporal Trends
- Growth or decline over time: [description]
- Seasonal or cyclical variation: [description]

SECTION: Value Trends
- [Column Name]: [increasing/decreasing/stable] ([rate]% change)

SECTION: Comparative Trends
- [Category]: [trend description]

SECTION: Trend Analysis
- Short-term: [description]
- Long-term: [description]
- Inflection points: [description]

SECTION: Business Trends
- Sales, customer, product and regional trends: [description]

SECTION: Trends Summary
- [overall trend]
- [seasonality]`,
	}
}

func correlationProfile() Profile {
	return Profile{
		Category:     extract.CategoryCorrelation,
		Name:         "Correlation Analysis",
		Description:  "Pairwise correlations and the relationships they imply",
		Outline:      []string{"Correlation Matrix", "Relationships", "Relationship Patterns", "Business Relationships", "Insights"},
		SystemPrompt: analystRole + " Focus on relationships, dependencies and associations between columns.",
		Format: `SECTION: Correlation Matrix
Column 1 | Column 2 | Correlation | Strength | Direction | Significance
[Col1] | [Col2] | [coefficient] | [weak/moderate/strong] | [positive/negative] | [significant/not significant]
[one row per numeric column pair]

SECTION: Relationships
- Direct correlations: [description]
- Dependent and independent variables: [description]

SECTION: Relationship Patterns
- Linear vs non-linear relationships: [description]

SECTION: Business Relationships
- Drivers and functional dependencies: [description]

SECTION: Insights
- [key or unexpected relationship]
- [actionable insight]`,
		Rules: []string{"Use pipe separators only for the Correlation Matrix table"},
	}
}

// statLines renders the Statistical Summary skeleton over the columns.
func statLines(columns []string) string {
	var b strings.Builder
	for i, stat := range extract.StatNames {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(stat)
		b.WriteString(":")
		for j, col := range columns {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(" ")
			b.WriteString(col)
			b.WriteString(": [value]")
		}
	}
	return b.String()
}
