package customers

import (
	"fmt"
	"sort"

	"optilink/internal"
	"optilink/internal/util"
)

// AssignBusinessIDs enumerates the distinct base account numbers in ascending
// lexicographic order and allocates sequential BUS_NNNN identifiers. Rerunning
// over the same set reproduces the same mapping.
func AssignBusinessIDs(baseAccounts []string) map[string]string {
	uniq := map[string]struct{}{}
	for _, base := range baseAccounts {
		if base != "" {
			uniq[base] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(uniq))
	for base := range uniq {
		sorted = append(sorted, base)
	}
	sort.Strings(sorted)

	out := make(map[string]string, len(sorted))
	for i, base := range sorted {
		out[base] = fmt.Sprintf("BUS_%04d", i+1)
	}
	return out
}

// Process turns raw customer rows into full records: accounts parsed, names
// cleaned and normalized, business IDs assigned and per-business flags set.
// Row order is preserved; IDs are positional (1-based).
func Process(rows []RawRow) []internal.CustomerRecord {
	records := make([]internal.CustomerRecord, 0, len(rows))
	bases := make([]string, 0, len(rows))

	for i, row := range rows {
		info := util.ParseAccountNumber(row.AccountNo)
		clean := util.CleanCustomerName(row.Name)

		rec := internal.CustomerRecord{
			ID:             i + 1,
			Name:           row.Name,
			AccountNo:      row.AccountNo,
			MainEmail:      row.MainEmail,
			MainPhone:      row.MainPhone,
			CleanName:      clean,
			NormalizedName: util.NormalizeBusinessName(clean),
			BaseAccount:    info.BaseAccount,
			Suffix:         info.Suffix,
			AccountType:    info.AccountType,
		}
		if row.MainEmail != nil {
			rec.EmailDomain = util.ExtractEmailDomain(*row.MainEmail)
		}
		if info.Suffix != nil {
			rec.IsMainAccount = *info.Suffix == ""
		}
		if info.BaseAccount != nil {
			bases = append(bases, *info.BaseAccount)
		}
		records = append(records, rec)
	}

	idMap := AssignBusinessIDs(bases)
	countByBusiness := map[string]int{}
	for i := range records {
		if records[i].BaseAccount == nil {
			continue
		}
		if id, ok := idMap[*records[i].BaseAccount]; ok {
			records[i].BusinessID = util.StringPtr(id)
			countByBusiness[id]++
		}
	}
	for i := range records {
		if records[i].BusinessID != nil {
			records[i].HasMultipleAccounts = countByBusiness[*records[i].BusinessID] > 1
		}
	}

	return records
}
