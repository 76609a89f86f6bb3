package pipeline

import (
	"optilink/internal"
	"optilink/internal/config"
)

// Matcher finds, for each email, the single best customer above the threshold.
// It scans every customer for every email on purpose: token blocking cannot
// preserve exact best-of-all semantics, and the datasets are small enough that
// the O(E×C) scan stays cheap.
type Matcher struct {
	cfg       config.Config
	scorer    *Scorer
	customers []internal.CustomerRecord
}

func NewMatcher(cfg config.Config, customers []internal.CustomerRecord) *Matcher {
	return &Matcher{cfg: cfg, scorer: NewScorer(cfg), customers: customers}
}

// BestMatch returns the highest-scoring customer at or above the threshold, or
// nil when the email has no usable business name or nothing qualifies. Ties
// resolve to the earliest customer row (strict-greater comparison in row
// order).
func (m *Matcher) BestMatch(email internal.EmailRow) *internal.MatchResult {
	if email.NormalizedBusiness == "" {
		return nil
	}

	var best *internal.MatchResult
	for _, customer := range m.customers {
		if customer.NormalizedName == "" {
			continue
		}

		combined, fuzzy, sequence, domain := m.scorer.Combined(
			email.NormalizedBusiness, customer.NormalizedName,
			email.EmailDomain, customer.EmailDomain,
		)
		if combined < m.cfg.MatchThreshold {
			continue
		}
		if best != nil && combined <= best.SimilarityScore {
			continue
		}

		customerEmail := ""
		if customer.MainEmail != nil {
			customerEmail = *customer.MainEmail
		}
		emailBusiness := ""
		if email.ExtractedBusiness != nil {
			emailBusiness = *email.ExtractedBusiness
		}

		best = &internal.MatchResult{
			EmailID:         email.ID,
			CustomerID:      customer.ID,
			EmailBusiness:   emailBusiness,
			CustomerName:    customer.Name,
			CustomerClean:   customer.CleanName,
			SimilarityScore: combined,
			FuzzyScore:      fuzzy,
			SequenceScore:   sequence,
			DomainScore:     domain,
			EmailDomain:     email.EmailDomain,
			CustomerEmail:   customerEmail,
		}
	}

	return best
}

// MatchAll runs BestMatch over every email, keeping email order. Emails with
// no qualifying candidate simply produce no row.
func (m *Matcher) MatchAll(emails []internal.EmailRow) []internal.MatchResult {
	out := make([]internal.MatchResult, 0, len(emails))
	for _, email := range emails {
		if match := m.BestMatch(email); match != nil {
			out = append(out, *match)
		}
	}
	return out
}
