package customers

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawRow is one row of the customer dataset before account processing.
type RawRow struct {
	Name      string
	AccountNo *string
	MainEmail *string
	MainPhone *string
}

const (
	colCustomer  = "Customer"
	colAccountNo = "Account No."
	colMainEmail = "Main Email"
	colMainPhone = "Main Phone"
)

// LoadCSV reads the customer dataset from a CSV file. The Customer and
// Account No. columns are required; Main Email and Main Phone are optional.
func LoadCSV(path string) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read customer file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse customer csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("customer file %s is empty", path)
	}

	return rowsFromTable(records)
}

// LoadXLSX reads the customer dataset from the first sheet of an XLSX file.
func LoadXLSX(path string) ([]RawRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read customer file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("customer file %s is empty", path)
	}

	return rowsFromTable(rows)
}

func rowsFromTable(records [][]string) ([]RawRow, error) {
	header := records[0]
	index := map[string]int{}
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	for _, required := range []string{colCustomer, colAccountNo} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("customer dataset is missing required column %q (found: %s)", required, strings.Join(header, ", "))
		}
	}

	out := make([]RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := RawRow{Name: cell(rec, index[colCustomer])}
		if row.Name == "" {
			continue
		}
		row.AccountNo = cellPtr(rec, index, colAccountNo)
		row.MainEmail = cellPtr(rec, index, colMainEmail)
		row.MainPhone = cellPtr(rec, index, colMainPhone)
		out = append(out, row)
	}
	return out, nil
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func cellPtr(rec []string, index map[string]int, col string) *string {
	idx, ok := index[col]
	if !ok {
		return nil
	}
	v := cell(rec, idx)
	if v == "" {
		return nil
	}
	return &v
}
