package sales

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"optilink/internal/customers"
)

func sp(v string) *string { return &v }

func testIndex() *customers.Index {
	records := customers.Process([]customers.RawRow{
		{Name: "BRIGHT OPTICAL #1341", AccountNo: sp("1341")},
		{Name: "CITY EYE CARE", AccountNo: sp("1513")},
	})
	return customers.BuildIndex(records)
}

func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatal(err)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestLinkFileLeftJoin(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "sales.csv")
	output := filepath.Join(tmp, "sales_linked.csv")

	writeCSV(t, input, [][]string{
		{"Date", "Name", "Amount"},
		{"2026-01-05", "BRIGHT OPTICAL #1341", "120.50"},
		{"2026-01-06", "BRIGHT OPTICAL #1341A", "80.00"},
		{"2026-01-07", "UNKNOWN SHOP", "10.00"},
		{"2026-01-08", "CITY EYE CARE", "55.25"},
	})

	stats, err := LinkFile(input, output, testIndex())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 4 || stats.Mapped != 3 || stats.Unmapped != 1 {
		t.Fatalf("stats=%+v", stats)
	}
	if stats.UnmappedUnique != 1 {
		t.Fatalf("unmapped unique=%d", stats.UnmappedUnique)
	}

	rows := readCSV(t, output)
	if len(rows) != 5 {
		t.Fatalf("row count changed: %d", len(rows))
	}

	header := rows[0]
	if header[len(header)-2] != "customer_name_clean" || header[len(header)-1] != "business_id" {
		t.Fatalf("header=%v", header)
	}

	// Suffix accounts resolve through the same cleaned name.
	if rows[1][4] != "BUS_0001" || rows[2][4] != "BUS_0001" {
		t.Fatalf("bright rows: %v / %v", rows[1], rows[2])
	}
	if rows[1][3] != "BRIGHT OPTICAL" {
		t.Fatalf("clean name=%q", rows[1][3])
	}
	if rows[3][4] != "" {
		t.Fatalf("unknown shop must stay unmapped: %v", rows[3])
	}
	if rows[4][4] != "BUS_0002" {
		t.Fatalf("city row: %v", rows[4])
	}
}

func TestLinkFileRequiresNameColumn(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "sales.csv")
	writeCSV(t, input, [][]string{{"Date", "Amount"}, {"2026-01-05", "120.50"}})

	_, err := LinkFile(input, filepath.Join(tmp, "out.csv"), testIndex())
	if err == nil || !strings.Contains(err.Error(), "Name") {
		t.Fatalf("err=%v", err)
	}
}

func TestLinkFileMissingInput(t *testing.T) {
	tmp := t.TempDir()
	_, err := LinkFile(filepath.Join(tmp, "absent.csv"), filepath.Join(tmp, "out.csv"), testIndex())
	if err == nil {
		t.Fatal("expected error for missing input")
	}
}
