package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"optilink/internal"
	"optilink/internal/config"
	"optilink/internal/storage"
	"optilink/internal/util"
)

type ProcessingService struct {
	db  *storage.DB
	cfg config.Config
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg}
}

// ExtractPending parses raw fetched messages and derives the matching fields
// (domain, extracted business, normalized business) for each. Emails without a
// recognizable business name move to 'skipped' and never reach the matcher.
func (s *ProcessingService) ExtractPending(limit int) (extracted, skipped int, err error) {
	pending, err := s.db.ListEmailsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}

	for _, email := range pending {
		if email.RawRef != nil {
			raw, err := os.ReadFile(*email.RawRef)
			if err != nil {
				return extracted, skipped, fmt.Errorf("cannot read raw message for email %d: %w", email.ID, err)
			}
			content, err := ExtractEmailContent(raw)
			if err != nil {
				return extracted, skipped, err
			}
			email.FromAddress = content.FromAddress
			if content.Sender != "" {
				email.Sender = content.Sender
			}
			if content.Subject != "" {
				email.Subject = content.Subject
			}
			email.Summary = content.Summary
		}

		domain, business := ExtractBusinessInfo(email)
		normalized := ""
		status := "skipped"
		if business != nil {
			normalized = util.NormalizeBusinessName(*business)
		}
		if normalized != "" {
			status = "extracted"
		}

		if err := s.db.UpdateEmailExtraction(
			email.ID, email.FromAddress, email.Sender, email.Subject, email.Summary,
			domain, business, normalized, status,
		); err != nil {
			return extracted, skipped, err
		}

		if status == "extracted" {
			extracted++
		} else {
			skipped++
		}
	}

	return extracted, skipped, nil
}

type MatchRunResult struct {
	Emails  int
	Matched int
	Report  QualityReport
}

// MatchExtracted runs the matcher over every extracted email against the
// stored customer dataset, replaces the match table and records a run entry.
// Matched emails move to 'processed'; the rest stay visible as 'extracted' for
// manual review.
func (s *ProcessingService) MatchExtracted(batch int) (MatchRunResult, error) {
	start := time.Now()

	customers, err := s.db.ListCustomers()
	if err != nil {
		return MatchRunResult{}, err
	}
	if len(customers) == 0 {
		return MatchRunResult{}, fmt.Errorf("no customers loaded; run customers:import first")
	}

	emails, err := s.db.ListEmailsByStatus("extracted", batch)
	if err != nil {
		return MatchRunResult{}, err
	}

	businessByCustomer := make(map[int]string, len(customers))
	for _, c := range customers {
		if c.BusinessID != nil {
			businessByCustomer[c.ID] = *c.BusinessID
		}
	}

	matcher := NewMatcher(s.cfg, customers)
	matched := 0
	var results []internal.MatchResult
	for _, email := range emails {
		match := matcher.BestMatch(email)
		if match == nil {
			continue
		}
		if err := s.db.InsertMatch(*match); err != nil {
			return MatchRunResult{}, err
		}
		if businessID, ok := businessByCustomer[match.CustomerID]; ok {
			if err := s.db.UpdateEmailBusinessID(email.ID, businessID); err != nil {
				return MatchRunResult{}, err
			}
		}
		if err := s.db.UpdateEmailStatus(email.ID, "processed"); err != nil {
			return MatchRunResult{}, err
		}
		results = append(results, *match)
		matched++
	}

	report := AnalyzeQuality(results)
	_ = s.db.InsertRun(traceID(), "match",
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"emails": len(emails), "matched": matched, "high": report.HighCount, "medium": report.MediumCount, "low": report.LowCount},
	)

	return MatchRunResult{Emails: len(emails), Matched: matched, Report: report}, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
