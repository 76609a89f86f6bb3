package zoho

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"optilink/internal"
	"optilink/internal/config"
	"optilink/internal/pipeline"
	"optilink/internal/storage"
	"optilink/internal/util"
)

type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

// SyncFromAPI pulls the account inbox through the REST API and stores every
// message. Zoho messages arrive with subject and summary already flattened, so
// they go straight to extraction instead of the raw-mail parse step.
func (s *SyncService) SyncFromAPI(ctx context.Context, max int) (extracted, skipped int, err error) {
	messages, err := s.client.ListMessages(ctx, max)
	if err != nil {
		return 0, 0, err
	}

	extracted, skipped, err = s.storeMessages(messages)
	if err != nil {
		return extracted, skipped, err
	}

	_ = s.db.SetMetadata("zoho.last_sync", time.Now().UTC().Format(time.RFC3339))
	return extracted, skipped, nil
}

// ImportFromFile ingests a zoho_emails.json export, a plain JSON array of
// message objects.
func (s *SyncService) ImportFromFile(path string) (extracted, skipped int, err error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot read zoho export: %w", err)
	}

	var messages []Message
	if err := json.Unmarshal(blob, &messages); err != nil {
		return 0, 0, fmt.Errorf("cannot parse zoho export %s: %w", path, err)
	}

	return s.storeMessages(messages)
}

func (s *SyncService) storeMessages(messages []Message) (extracted, skipped int, err error) {
	for _, msg := range messages {
		if msg.MessageID == "" {
			skipped++
			continue
		}

		row := internal.EmailRow{
			Provider:    "zoho",
			MessageID:   msg.MessageID,
			FromAddress: msg.FromAddress,
			Sender:      msg.Sender,
			Subject:     msg.Subject,
			Summary:     msg.Summary,
			ReceivedAt:  msg.ReceivedTime,
			Hash:        messageHash(msg),
		}

		// API messages carry no raw body to re-parse later, so extraction
		// happens inline.
		domain, business := pipeline.ExtractBusinessInfo(row)
		row.EmailDomain = domain
		row.ExtractedBusiness = business
		row.Status = "skipped"
		if business != nil {
			row.NormalizedBusiness = util.NormalizeBusinessName(*business)
			if row.NormalizedBusiness != "" {
				row.Status = "extracted"
			}
		}

		if _, err := s.db.UpsertEmail(row); err != nil {
			return extracted, skipped, err
		}
		if row.Status == "extracted" {
			extracted++
		} else {
			skipped++
		}
	}
	return extracted, skipped, nil
}

func messageHash(msg Message) string {
	sum := sha256.Sum256([]byte(msg.MessageID + "\x00" + msg.FromAddress + "\x00" + msg.Subject))
	return hex.EncodeToString(sum[:])
}
