package customers

import (
	"optilink/internal"
	"optilink/internal/util"
)

// Index provides exact-key lookups over processed customer records. It backs
// the sales-dataset join and domain lookups; the fuzzy matcher deliberately
// does not use it (see pipeline.Matcher).
type Index struct {
	ByID         map[int]internal.CustomerRecord
	ByCleanName  map[string][]internal.CustomerRecord
	ByBusinessID map[string][]internal.CustomerRecord
	ByDomain     map[string][]internal.CustomerRecord
}

func BuildIndex(records []internal.CustomerRecord) *Index {
	idx := &Index{
		ByID:         map[int]internal.CustomerRecord{},
		ByCleanName:  map[string][]internal.CustomerRecord{},
		ByBusinessID: map[string][]internal.CustomerRecord{},
		ByDomain:     map[string][]internal.CustomerRecord{},
	}

	for _, rec := range records {
		idx.ByID[rec.ID] = rec
		if rec.CleanName != "" {
			idx.ByCleanName[rec.CleanName] = append(idx.ByCleanName[rec.CleanName], rec)
		}
		if rec.BusinessID != nil {
			idx.ByBusinessID[*rec.BusinessID] = append(idx.ByBusinessID[*rec.BusinessID], rec)
		}
		if rec.EmailDomain != "" {
			idx.ByDomain[rec.EmailDomain] = append(idx.ByDomain[rec.EmailDomain], rec)
		}
	}

	return idx
}

// BusinessIDForName resolves a raw dataset name (possibly carrying an embedded
// account tag) to a business ID through the clean-name key. Returns nil when
// the name is unknown.
func (idx *Index) BusinessIDForName(name string) *string {
	clean := util.CleanCustomerName(name)
	for _, rec := range idx.ByCleanName[clean] {
		if rec.BusinessID != nil {
			return rec.BusinessID
		}
	}
	return nil
}
