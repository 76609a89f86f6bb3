package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"optilink/internal"
)

var matchHeaders = []string{
	"email_index", "customer_index", "email_business", "customer_name",
	"customer_clean", "similarity_score", "email_domain", "customer_email",
}

func matchRow(m internal.MatchResult) []string {
	return []string{
		strconv.Itoa(m.EmailID),
		strconv.Itoa(m.CustomerID),
		m.EmailBusiness,
		m.CustomerName,
		m.CustomerClean,
		strconv.FormatFloat(m.SimilarityScore, 'f', 2, 64),
		m.EmailDomain,
		m.CustomerEmail,
	}
}

func ExportMatchesToCSV(matches []internal.MatchResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(matchHeaders); err != nil {
		return err
	}
	for _, m := range matches {
		if err := w.Write(matchRow(m)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ExportMatchesToXLSX(matches []internal.MatchResult, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range matchHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, m := range matches {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, m.EmailID)
		set(2, m.CustomerID)
		set(3, m.EmailBusiness)
		set(4, m.CustomerName)
		set(5, m.CustomerClean)
		set(6, m.SimilarityScore)
		set(7, m.EmailDomain)
		set(8, m.CustomerEmail)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// ExportCustomersToCSV writes the processed customer dataset with the derived
// account and business-ID columns appended.
func ExportCustomersToCSV(records []internal.CustomerRecord, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"Customer", "Account No.", "Main Email", "Main Phone", "customer_name_clean",
		"base_account", "suffix", "account_type", "business_id", "is_main_account", "has_multiple_accounts",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			rec.Name,
			derefString(rec.AccountNo),
			derefString(rec.MainEmail),
			derefString(rec.MainPhone),
			rec.CleanName,
			derefString(rec.BaseAccount),
			derefString(rec.Suffix),
			derefString(rec.AccountType),
			derefString(rec.BusinessID),
			strconv.FormatBool(rec.IsMainAccount),
			strconv.FormatBool(rec.HasMultipleAccounts),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ExportAliasesToCSV(aliases []internal.AliasMapping, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"business_id", "optical_name"}); err != nil {
		return err
	}
	for _, a := range aliases {
		if err := w.Write([]string{a.BusinessID, a.OpticalName}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write alias mapping: %w", err)
	}
	return nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
