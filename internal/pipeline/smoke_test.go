package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"optilink/internal"
	"optilink/internal/config"
	"optilink/internal/customers"
	"optilink/internal/storage"
)

func TestSmokeEmailToExports(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	records := customers.Process([]customers.RawRow{
		{Name: "BRIGHT VISION OPTICAL #1341", AccountNo: sp("1341"), MainEmail: sp("orders@brightvision.example")},
		{Name: "CITY FRAMES", AccountNo: sp("1513F")},
	})
	if err := db.ReplaceCustomers(records); err != nil {
		t.Fatal(err)
	}

	rawBlob, err := os.ReadFile(filepath.Join("testdata", "quote_request.eml"))
	if err != nil {
		t.Fatal(err)
	}
	rawPath := filepath.Join(tmp, "fixture.eml")
	if err := os.WriteFile(rawPath, rawBlob, 0o644); err != nil {
		t.Fatal(err)
	}

	email, err := db.UpsertEmail(internal.EmailRow{
		Provider:   "imap",
		MessageID:  "<fixture-1@brightvision.example>",
		ReceivedAt: "2026-08-10T09:15:00Z",
		Hash:       "hash",
		Status:     "fetched",
		RawRef:     &rawPath,
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	proc := NewProcessingService(db, cfg)

	extracted, skipped, err := proc.ExtractPending(100)
	if err != nil {
		t.Fatal(err)
	}
	if extracted != 1 || skipped != 0 {
		t.Fatalf("extracted=%d skipped=%d", extracted, skipped)
	}

	res, err := proc.MatchExtracted(100)
	if err != nil {
		t.Fatal(err)
	}
	if res.Matched != 1 {
		t.Fatalf("matched=%d", res.Matched)
	}
	if res.Report.Verdict != "Excellent" {
		t.Fatalf("verdict=%s", res.Report.Verdict)
	}

	processed, err := db.GetEmailByID(email.ID)
	if err != nil {
		t.Fatal(err)
	}
	if processed.Status != "processed" {
		t.Fatalf("status=%s", processed.Status)
	}
	if processed.NormalizedBusiness != "bright vis opt" {
		t.Fatalf("normalized=%q", processed.NormalizedBusiness)
	}

	matches, err := db.ListMatches()
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches=%d", len(matches))
	}
	if matches[0].CustomerClean != "BRIGHT VISION OPTICAL" {
		t.Fatalf("matched customer %q", matches[0].CustomerClean)
	}
	if matches[0].SimilarityScore < 90 {
		t.Fatalf("score=%v", matches[0].SimilarityScore)
	}

	csvOut := filepath.Join(tmp, "matches.csv")
	if err := ExportMatchesToCSV(matches, csvOut); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(csvOut); err != nil {
		t.Fatal(err)
	}

	xlsxOut := filepath.Join(tmp, "matches.xlsx")
	if err := ExportMatchesToXLSX(matches, xlsxOut); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(xlsxOut); err != nil {
		t.Fatal(err)
	}
}
