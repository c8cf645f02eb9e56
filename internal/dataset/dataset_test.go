package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const salesCSV = "Date;Region;Product;Quantity;Unit_Price;Revenue\n" +
	"2024-01-02;North;Laptop;2;\"1,200.00\";2400\n" +
	"2024-01-03;South;Mouse;5;20;100\n" +
	"2024-01-04;North;Keyboard;;45;0\n"

func TestReadCSV_SniffsDelimiterAndPadsRows(t *testing.T) {
	d, err := Read(strings.NewReader(salesCSV), FormatCSV, Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if d.Delimiter != ';' {
		t.Fatalf("delimiter: got %q", d.Delimiter)
	}
	want := []string{"Date", "Region", "Product", "Quantity", "Unit_Price", "Revenue"}
	if !reflect.DeepEqual(d.Columns, want) {
		t.Fatalf("columns: got %q", d.Columns)
	}
	if len(d.Rows) != 3 || d.Rows[0][4] != "1,200.00" || d.Rows[2][3] != "" {
		t.Fatalf("rows: got %q", d.Rows)
	}
	if !d.HasHeader {
		t.Fatalf("expected header")
	}
}

func TestReadCSV_TabsKeepEmptyFields(t *testing.T) {
	d, err := ReadCSV(strings.NewReader("a\tb\tc\n1\t\t3\n"), Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if d.Delimiter != '\t' || !reflect.DeepEqual(d.Rows[0], []string{"1", "", "3"}) {
		t.Fatalf("got delimiter %q rows %q", d.Delimiter, d.Rows)
	}
}

func TestReadCSV_NumericFirstRowIsData(t *testing.T) {
	d, err := ReadCSV(strings.NewReader("1,2\n3,4\n"), Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if d.HasHeader || len(d.Rows) != 2 || d.Columns[0] != "Column1" {
		t.Fatalf("got header=%v columns=%q rows=%q", d.HasHeader, d.Columns, d.Rows)
	}
}

func TestReadCSV_DuplicateAndBlankHeaders(t *testing.T) {
	d, err := ReadCSV(strings.NewReader("\ufeffname,name,\nx,y,z\n"), Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []string{"name", "name_2", "Column3"}
	if !reflect.DeepEqual(d.Columns, want) {
		t.Fatalf("got %q want %q", d.Columns, want)
	}
}

func TestSniffDelimiter(t *testing.T) {
	cases := map[string]rune{
		"a,b,c":     ',',
		"a;b;c":     ';',
		"a|b|c":     '|',
		"a\tb":      '\t',
		`"x;y",b,c`: ',',
		"single":    ',',
	}
	for in, want := range cases {
		if got := SniffDelimiter(in); got != want {
			t.Fatalf("SniffDelimiter(%q) = %q want %q", in, got, want)
		}
	}
}

func TestReadJSON_KeyOrderAndWrapper(t *testing.T) {
	in := `{"data": [{"Region": "North", "Revenue": 2400, "Active": true}, {"Revenue": 100.5, "Region": "South", "Note": null}]}`
	d, err := Read(strings.NewReader(in), FormatJSON, Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []string{"Region", "Revenue", "Active", "Note"}
	if !reflect.DeepEqual(d.Columns, want) {
		t.Fatalf("columns: got %q", d.Columns)
	}
	if !reflect.DeepEqual(d.Rows[1], []string{"South", "100.5", "", ""}) {
		t.Fatalf("row: got %q", d.Rows[1])
	}
	if d.Rows[0][2] != "true" {
		t.Fatalf("bool cell: got %q", d.Rows[0][2])
	}
}

func TestReadJSON_Rejects(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader(`{"x": 1}`)); err == nil {
		t.Fatalf("expected error for object without rows")
	}
	if _, err := Read(strings.NewReader(`[]`), FormatJSON, Options{}); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("got %v want ErrEmptyDataset", err)
	}
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	f := excelize.NewFile()
	if _, err := f.NewSheet("Sales"); err != nil {
		t.Fatal(err)
	}
	rows := [][]any{{"Region", "Revenue"}, {"North", 2400}, {"South", 100}}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sales", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = f.Close()

	d, err := Load(path, Options{Sheet: "sales"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Name != "sales.xlsx" || len(d.Rows) != 2 || d.Rows[0][1] != "2400" {
		t.Fatalf("got %+v", d)
	}
	if _, err := Load(path, Options{Sheet: "missing"}); err == nil {
		t.Fatalf("expected error for unknown sheet")
	}
}

func TestLoad_UnsupportedAndEmpty(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "x.parquet"), Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("got %v want ErrUnsupportedFormat", err)
	}
	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, []byte("a,b\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(empty, Options{}); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("got %v want ErrEmptyDataset", err)
	}
}

func TestProfileAndContext(t *testing.T) {
	d, err := Read(strings.NewReader(salesCSV), FormatCSV, Options{})
	if err != nil {
		t.Fatal(err)
	}
	prof := d.Profile()
	types := map[string]ColumnType{}
	for _, p := range prof {
		types[p.Name] = p.Type
	}
	want := map[string]ColumnType{
		"Date": TypeDate, "Region": TypeText, "Product": TypeText,
		"Quantity": TypeNumber, "Unit_Price": TypeNumber, "Revenue": TypeNumber,
	}
	if !reflect.DeepEqual(types, want) {
		t.Fatalf("types: got %v", types)
	}
	qty := prof[3]
	if qty.Missing != 1 || qty.Min != 2 || qty.Max != 5 || qty.Mean != 3.5 {
		t.Fatalf("quantity profile: got %+v", qty)
	}
	if prof[1].Unique != 2 {
		t.Fatalf("region unique: got %d", prof[1].Unique)
	}
	ctx := d.Context()
	if !reflect.DeepEqual(ctx.Numeric, []string{"Quantity", "Unit_Price", "Revenue"}) {
		t.Fatalf("numeric: got %q", ctx.Numeric)
	}
	if got := d.Head(1); len(got.Rows) != 1 || len(d.Rows) != 3 {
		t.Fatalf("head should copy: %d/%d", len(got.Rows), len(d.Rows))
	}
}

func TestParseNumber(t *testing.T) {
	ok := map[string]float64{"$1,200.50": 1200.5, "-3": -3, "45%": 45, "1e3": 1000}
	for in, want := range ok {
		if got, parsed := ParseNumber(in); !parsed || got != want {
			t.Fatalf("ParseNumber(%q) = %v, %v", in, got, parsed)
		}
	}
	for _, in := range []string{"", "N/A", "inf", "North", "-", "0x10"} {
		if _, parsed := ParseNumber(in); parsed {
			t.Fatalf("ParseNumber(%q) should fail", in)
		}
	}
}
