package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"optilink/internal/config"
	"optilink/internal/connectors"
	gmailconnector "optilink/internal/connectors/gmail"
	imapconnector "optilink/internal/connectors/imap"
	"optilink/internal/pipeline"
	"optilink/internal/storage"
)

type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

// runCycle pulls new mail, extracts business names, matches the batch against
// the customer dataset and optionally exports the refreshed match table.
func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(s.db, s.cfg)
	extracted, skipped, err := processor.ExtractPending(s.cfg.MailListenerProcessBatch)
	if err != nil {
		return err
	}

	matched := 0
	if extracted > 0 {
		res, err := processor.MatchExtracted(s.cfg.MailListenerProcessBatch)
		if err != nil {
			return err
		}
		matched = res.Matched

		if s.cfg.MailListenerAutoExport && matched > 0 {
			if err := s.exportMatches(); err != nil {
				return err
			}
		}
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d known=%d extracted=%d skipped=%d matched=%d\n",
		provider, fetchResult.Fetched, fetchResult.Stored, fetchResult.Known, extracted, skipped, matched)
	_ = ctx
	return nil
}

// exportMatches rewrites the full match table snapshot after each cycle that
// produced new matches. Exported emails move out of the processed state.
func (s *Service) exportMatches() error {
	matches, err := s.db.ListMatches()
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return nil
	}

	stamp := time.Now().UTC().Format("20060102T150405")
	outputPath := filepath.Join(s.cfg.OutputDir, "listener", fmt.Sprintf("matches_%s.xlsx", stamp))
	if err := pipeline.ExportMatchesToXLSX(matches, outputPath); err != nil {
		return err
	}

	processed, err := s.db.ListEmailsByStatus("processed", 0)
	if err != nil {
		return err
	}
	for _, email := range processed {
		_ = s.db.UpdateEmailStatus(email.ID, "exported")
	}
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
