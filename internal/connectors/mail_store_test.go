package connectors

import (
	"os"
	"path/filepath"
	"testing"

	"optilink/internal"
	"optilink/internal/storage"
)

func TestStoreContentAddressed(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	store := NewMailStoreService(db, filepath.Join(tmp, "raw"))
	msg := internal.FetchedMailMessage{
		Provider:   "imap",
		MessageID:  "<m1@example.com>",
		Subject:    "order",
		From:       "orders@shop.example",
		ReceivedAt: "2026-08-10T09:00:00Z",
		Raw:        []byte("From: orders@shop.example\r\nSubject: order\r\n\r\nbody\r\n"),
	}

	row, err := store.Store(msg)
	if err != nil {
		t.Fatal(err)
	}
	if row.Status != "fetched" {
		t.Fatalf("status=%s", row.Status)
	}
	if row.RawRef == nil {
		t.Fatal("raw ref missing")
	}
	blob, err := os.ReadFile(*row.RawRef)
	if err != nil {
		t.Fatal(err)
	}
	if string(blob) != string(msg.Raw) {
		t.Fatal("raw content mismatch")
	}

	// Same message again lands on the same row and file.
	again, err := store.Store(msg)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != row.ID || *again.RawRef != *row.RawRef {
		t.Fatalf("duplicate store created new identity: %+v vs %+v", again, row)
	}

	// Fetch loops see the same unseen messages every cycle. Once a row moved
	// past fetched, a re-store must not wipe its extraction columns or it
	// stays extracted with an empty name forever.
	extracted := "SHOP OPTICAL"
	err = db.UpdateEmailExtraction(row.ID, msg.From, "Shop Orders", msg.Subject,
		"please quote", "shop.example", &extracted, "shop opt", "extracted")
	if err != nil {
		t.Fatal(err)
	}
	refetched, err := store.Store(msg)
	if err != nil {
		t.Fatal(err)
	}
	if refetched.Status != "extracted" {
		t.Fatalf("status=%s after refetch", refetched.Status)
	}
	if refetched.NormalizedBusiness != "shop opt" {
		t.Fatalf("normalized=%q after refetch", refetched.NormalizedBusiness)
	}
	if refetched.ExtractedBusiness == nil || *refetched.ExtractedBusiness != extracted {
		t.Fatalf("extracted business lost on refetch: %+v", refetched.ExtractedBusiness)
	}
	if refetched.EmailDomain != "shop.example" {
		t.Fatalf("domain=%q after refetch", refetched.EmailDomain)
	}
}
