package extract

import (
	"testing"

	"github.com/hyperifyio/goinsight/internal/report"
)

const overviewReport = `SECTION: Document Overview
File Type: CSV
Rows: 50
SECTION: Key Insights
- Total Transactions: 50
- Total Revenue: $12,500.00
- Most Frequent Region: North (18 transactions)
- Top Revenue Product: Laptop - $4,200.00
- Lowest Revenue Product: Mouse - $150.00
SECTION: Regional Insights
North: Transactions: 18, Total Revenue: $5,000.00, Avg Revenue per Transaction: $277.78
South: Transactions: 12, Total Revenue: $3,000.00, Avg Revenue per Transaction: $250.00
SECTION: Data Quality
- No missing values
`

func TestOverview_FullReport(t *testing.T) {
	doc := report.Parse(overviewReport)
	res := Overview(overviewReport, doc)
	if res.TotalTransactions != "50" {
		t.Fatalf("transactions: got %q", res.TotalTransactions)
	}
	if res.TotalRevenue != "12,500.00" {
		t.Fatalf("revenue: got %q", res.TotalRevenue)
	}
	if res.AvgRevenue != "277.78" {
		t.Fatalf("avg revenue: got %q", res.AvgRevenue)
	}
	if res.TopRegion != "North" {
		t.Fatalf("top region: got %q", res.TopRegion)
	}
	if len(res.Regions) != 2 {
		t.Fatalf("regions: got %+v", res.Regions)
	}
	north := RegionStat{Region: "North", Transactions: "18", Revenue: "5,000.00", AvgRevenue: "277.78"}
	if res.Regions[0] != north {
		t.Fatalf("got %+v want %+v", res.Regions[0], north)
	}
	if len(res.Products) != 2 || res.Products[0] != (ProductStat{Rank: "top", Product: "Laptop", Revenue: "4,200.00"}) {
		t.Fatalf("products: got %+v", res.Products)
	}
	if res.Products[1].Rank != "lowest" || res.Products[1].Product != "Mouse" {
		t.Fatalf("lowest product: got %+v", res.Products[1])
	}
	if len(res.KeyFacts) != 2 || res.KeyFacts[0] != (Fact{Key: "File Type", Value: "CSV"}) {
		t.Fatalf("key facts: got %+v", res.KeyFacts)
	}
	if len(res.Insights) != 5 {
		t.Fatalf("insights: got %q", res.Insights)
	}
	if len(res.QualityNotes) != 1 || res.QualityNotes[0] != "No missing values" {
		t.Fatalf("quality notes: got %q", res.QualityNotes)
	}
	if res.Empty() {
		t.Fatalf("result should not be empty")
	}

	withTables := AttachTables(doc, res)
	regional, ok := withTables.Find("regional")
	if !ok || len(regional.Tables) != 1 || len(regional.Tables[0].Rows) != 2 {
		t.Fatalf("regional table not attached: %+v", regional)
	}
	if orig, _ := doc.Find("regional"); len(orig.Tables) != 0 {
		t.Fatalf("AttachTables modified its input")
	}
}

func TestOverview_AvgRevenueRawPatternOrder(t *testing.T) {
	raw := "Earlier note, average revenue: $40.\nAverage Revenue per Transaction: $50"
	res := Overview(raw, report.Parse(raw))
	if res.AvgRevenue != "50" {
		t.Fatalf("got %q want 50", res.AvgRevenue)
	}
}

func TestOverview_StructuredFirstMatchWins(t *testing.T) {
	raw := "SECTION: Key Insights\nAvg Revenue: $40\n- Average Revenue per Transaction: $50\n"
	res := Overview(raw, report.Parse(raw))
	if res.AvgRevenue != "$40" {
		t.Fatalf("got %q want $40", res.AvgRevenue)
	}
}

func TestOverview_MissingKPIsAreNotAvailable(t *testing.T) {
	raw := "SECTION: Data Quality\n- Two blank cells in Region\n"
	res := Overview(raw, report.Parse(raw))
	for name, v := range map[string]string{
		"transactions": res.TotalTransactions,
		"revenue":      res.TotalRevenue,
		"avg":          res.AvgRevenue,
		"region":       res.TopRegion,
	} {
		if v != NotAvailable {
			t.Fatalf("%s: got %q want %q", name, v, NotAvailable)
		}
	}
	if res.Regions == nil || res.Products == nil || res.Insights == nil {
		t.Fatalf("lists must be non-nil: %+v", res)
	}
}

func TestOverview_EmptyInput(t *testing.T) {
	if res := Overview("", report.Parse("")); !res.Empty() {
		t.Fatalf("expected empty result, got %+v", res)
	}
}
