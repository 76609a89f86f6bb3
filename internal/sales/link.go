// Package sales joins customer business IDs onto exported sales data by
// cleaned customer name.
package sales

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"optilink/internal/customers"
	"optilink/internal/util"
)

type LinkStats struct {
	Total           int
	Mapped          int
	Unmapped        int
	UnmappedUnique  int
	AppendedColumns []string
}

func (s LinkStats) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Mapped) / float64(s.Total) * 100
}

func (s LinkStats) Print() {
	fmt.Printf("sales records: %d mapped=%d unmapped=%d rate=%.2f%%\n",
		s.Total, s.Mapped, s.Unmapped, s.Rate())
	if s.Unmapped > 0 {
		fmt.Printf("unmapped unique customers: %d\n", s.UnmappedUnique)
	}
}

// LinkFile reads a sales CSV, left-joins business_id by cleaned Name and
// writes the result. Every input row survives; rows without a known customer
// get an empty business_id.
func LinkFile(inputPath, outputPath string, idx *customers.Index) (LinkStats, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return LinkStats{}, fmt.Errorf("cannot open sales file: %w", err)
	}
	defer in.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return LinkStats{}, fmt.Errorf("cannot read sales file: %w", err)
	}
	if len(records) == 0 {
		return LinkStats{}, fmt.Errorf("sales file %s is empty", inputPath)
	}

	header := records[0]
	nameCol := -1
	for i, h := range header {
		if h == "Name" {
			nameCol = i
			break
		}
	}
	if nameCol < 0 {
		return LinkStats{}, fmt.Errorf("sales file %s has no Name column", inputPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return LinkStats{}, err
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return LinkStats{}, err
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write(append(append([]string(nil), header...), "customer_name_clean", "business_id")); err != nil {
		return LinkStats{}, err
	}

	stats := LinkStats{AppendedColumns: []string{"customer_name_clean", "business_id"}}
	unmappedNames := map[string]struct{}{}
	for _, row := range records[1:] {
		name := ""
		if nameCol < len(row) {
			name = row[nameCol]
		}
		clean := util.CleanCustomerName(name)

		businessID := ""
		if id := idx.BusinessIDForName(name); id != nil {
			businessID = *id
			stats.Mapped++
		} else {
			stats.Unmapped++
			unmappedNames[clean] = struct{}{}
		}
		stats.Total++

		if err := writer.Write(append(append([]string(nil), row...), clean, businessID)); err != nil {
			return LinkStats{}, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return LinkStats{}, err
	}

	stats.UnmappedUnique = len(unmappedNames)
	return stats, nil
}
