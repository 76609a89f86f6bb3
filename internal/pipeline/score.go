package pipeline

import (
	"github.com/agnivade/levenshtein"

	"optilink/internal/config"
	"optilink/internal/util"
)

// Scorer blends character-level, sequence-level and domain-exact signals into
// one similarity on the 0-100 scale. The default 0.4/0.4/0.2 weights are part
// of the matching contract; changing them changes which historical matches
// reproduce.
type Scorer struct {
	FuzzyWeight    float64
	SequenceWeight float64
	DomainWeight   float64
}

func NewScorer(cfg config.Config) *Scorer {
	return &Scorer{
		FuzzyWeight:    cfg.FuzzyWeight,
		SequenceWeight: cfg.SequenceWeight,
		DomainWeight:   cfg.DomainWeight,
	}
}

// FuzzyScore is the normalized Levenshtein ratio of two strings, 0-100.
// Symmetric; 0 when either side is empty.
func FuzzyScore(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	dist := levenshtein.ComputeDistance(a, b)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	return 100 * (1 - float64(dist)/float64(maxLen))
}

// SequenceScore is the matching-blocks ratio of two strings, 0-100.
// Symmetric; 0 when either side is empty.
func SequenceScore(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return 100 * util.SequenceRatio(a, b)
}

// DomainScore is 100 on an exact sender-domain/customer-domain match, else 0.
// Directional by construction: the two sides play different roles.
func DomainScore(emailDomain, customerDomain string) float64 {
	if emailDomain == "" || customerDomain == "" {
		return 0
	}
	if emailDomain == customerDomain {
		return 100
	}
	return 0
}

// Combined computes the weighted blend over two normalized names plus the
// domain pair. Blank names earn no similarity credit at all.
func (s *Scorer) Combined(emailName, customerName, emailDomain, customerDomain string) (combined, fuzzy, sequence, domain float64) {
	if emailName == "" || customerName == "" {
		return 0, 0, 0, 0
	}

	fuzzy = FuzzyScore(emailName, customerName)
	sequence = SequenceScore(emailName, customerName)
	domain = DomainScore(emailDomain, customerDomain)
	combined = s.FuzzyWeight*fuzzy + s.SequenceWeight*sequence + s.DomainWeight*domain
	return combined, fuzzy, sequence, domain
}
