package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperifyio/goinsight/internal/analysis"
	"github.com/hyperifyio/goinsight/internal/dataset"
	"github.com/hyperifyio/goinsight/internal/extract"
	"github.com/hyperifyio/goinsight/internal/generate"
	"github.com/hyperifyio/goinsight/internal/llm"
	"github.com/hyperifyio/goinsight/internal/prompt"
)

func newStub(t *testing.T) *llm.OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(newHandler("stub-model"))
	t.Cleanup(srv.Close)
	return llm.NewOpenAIProvider(srv.URL+"/v1", "test")
}

func sales(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.Read(strings.NewReader("Region,Revenue\nNorth,10\nSouth,12\n"), dataset.FormatCSV, dataset.Options{})
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	return d
}

func TestStub_ListsModel(t *testing.T) {
	ok, err := llm.HasModel(context.Background(), newStub(t), "stub-model")
	if err != nil || !ok {
		t.Fatalf("HasModel = %v, %v", ok, err)
	}
}

func TestStub_CompleteReportPassesStructureCheck(t *testing.T) {
	for _, stream := range []bool{false, true} {
		g := &generate.Generator{Client: newStub(t), Model: "stub-model", Stream: stream}
		res, err := analysis.FromDataset(context.Background(), g, extract.CategoryTrends, sales(t), prompt.Options{}, analysis.Options{})
		if err != nil {
			t.Fatalf("stream=%v: %v", stream, err)
		}
		if len(res.Warnings) != 0 || len(res.Document.Sections) != 6 {
			t.Fatalf("stream=%v: warnings=%v sections=%d", stream, res.Warnings, len(res.Document.Sections))
		}
		tr := res.Result.(extract.TrendsResult)
		if len(tr.Temporal) != 1 || !strings.Contains(tr.Temporal[0], "Observation 1 drawn from 2 rows") {
			t.Fatalf("stream=%v: temporal=%v", stream, tr.Temporal)
		}
	}
}

func TestCannedReport_UnknownPrompt(t *testing.T) {
	if _, ok := cannedReport([]chatMessage{{Content: "hello"}, {Content: "x"}}); ok {
		t.Fatal("expected unknown system prompt to be rejected")
	}
}
