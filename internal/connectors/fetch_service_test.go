package connectors

import (
	"path/filepath"
	"testing"

	"optilink/internal"
	"optilink/internal/storage"
)

type stubConnector struct {
	messages []internal.FetchedMailMessage
}

func (c stubConnector) FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error) {
	return c.messages, nil
}

func TestFetchAndStoreSkipsAdvancedRows(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	conn := stubConnector{messages: []internal.FetchedMailMessage{
		{
			Provider:   "imap",
			MessageID:  "<m1@example.com>",
			Subject:    "order from CITY EYE CARE",
			From:       "orders@cityeye.example",
			ReceivedAt: "2026-08-10T09:00:00Z",
			Raw:        []byte("From: orders@cityeye.example\r\nSubject: order\r\n\r\nbody\r\n"),
		},
		{
			Provider:   "imap",
			MessageID:  "<m2@example.com>",
			Subject:    "newsletter",
			From:       "news@letter.example",
			ReceivedAt: "2026-08-10T10:00:00Z",
			Raw:        []byte("From: news@letter.example\r\nSubject: newsletter\r\n\r\nbody\r\n"),
		},
	}}

	svc := NewFetchService(db, filepath.Join(tmp, "raw"), conn)
	first, err := svc.FetchAndStore("INBOX", 10)
	if err != nil {
		t.Fatal(err)
	}
	if first.Fetched != 2 || first.Stored != 2 || first.Known != 0 {
		t.Fatalf("first pass: %+v", first)
	}

	row, err := db.GetEmailByProviderMessageID("imap", "<m1@example.com>")
	if err != nil {
		t.Fatal(err)
	}
	extracted := "CITY EYE"
	err = db.UpdateEmailExtraction(row.ID, "orders@cityeye.example", "City Eye Orders",
		row.Subject, "please quote", "cityeye.example", &extracted, "city eye", "extracted")
	if err != nil {
		t.Fatal(err)
	}

	// Providers list the same unseen messages on the next pass. The advanced
	// row is left alone, the still-fetched one is refreshed.
	second, err := svc.FetchAndStore("INBOX", 10)
	if err != nil {
		t.Fatal(err)
	}
	if second.Fetched != 2 || second.Stored != 1 || second.Known != 1 {
		t.Fatalf("second pass: %+v", second)
	}

	kept, err := db.GetEmailByProviderMessageID("imap", "<m1@example.com>")
	if err != nil {
		t.Fatal(err)
	}
	if kept.Status != "extracted" || kept.NormalizedBusiness != "city eye" {
		t.Fatalf("advanced row touched by refetch: status=%s normalized=%q", kept.Status, kept.NormalizedBusiness)
	}
}
