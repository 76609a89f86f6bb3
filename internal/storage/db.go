package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"optilink/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS customers (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  accountNo TEXT,
  mainEmail TEXT,
  mainPhone TEXT,
  cleanName TEXT NOT NULL,
  normalizedName TEXT NOT NULL,
  baseAccount TEXT,
  suffix TEXT,
  accountType TEXT,
  businessId TEXT,
  isMainAccount INTEGER NOT NULL DEFAULT 0,
  hasMultipleAccounts INTEGER NOT NULL DEFAULT 0,
  emailDomain TEXT,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_customers_businessId ON customers(businessId);
CREATE INDEX IF NOT EXISTS idx_customers_cleanName ON customers(cleanName);

CREATE TABLE IF NOT EXISTS emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  fromAddress TEXT,
  sender TEXT,
  subject TEXT,
  summary TEXT,
  receivedAt TEXT,
  emailDomain TEXT,
  extractedBusiness TEXT,
  normalizedBusiness TEXT NOT NULL DEFAULT '',
  businessId TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS matches (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  emailId INTEGER NOT NULL UNIQUE,
  customerId INTEGER NOT NULL,
  emailBusiness TEXT NOT NULL,
  customerName TEXT NOT NULL,
  customerClean TEXT NOT NULL,
  similarityScore REAL NOT NULL,
  fuzzyScore REAL NOT NULL,
  sequenceScore REAL NOT NULL,
  domainScore REAL NOT NULL,
  emailDomain TEXT,
  customerEmail TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(emailId) REFERENCES emails(id),
  FOREIGN KEY(customerId) REFERENCES customers(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  kind TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceCustomers swaps the whole customer table for a freshly processed
// dataset. Record IDs are written as-is so reruns over identical input keep
// identical row identities.
func (d *DB) ReplaceCustomers(records []internal.CustomerRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM matches`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM customers`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO customers (
  id, name, accountNo, mainEmail, mainPhone, cleanName, normalizedName,
  baseAccount, suffix, accountType, businessId, isMainAccount, hasMultipleAccounts, emailDomain
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(
			rec.ID, rec.Name, rec.AccountNo, rec.MainEmail, rec.MainPhone, rec.CleanName, rec.NormalizedName,
			rec.BaseAccount, rec.Suffix, rec.AccountType, rec.BusinessID,
			boolToInt(rec.IsMainAccount), boolToInt(rec.HasMultipleAccounts), rec.EmailDomain,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListCustomers() ([]internal.CustomerRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, name, accountNo, mainEmail, mainPhone, cleanName, normalizedName,
       baseAccount, suffix, accountType, businessId, isMainAccount, hasMultipleAccounts, emailDomain
FROM customers ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CustomerRecord
	for rows.Next() {
		var rec internal.CustomerRecord
		var isMain, hasMulti int
		var emailDomain sql.NullString
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.AccountNo, &rec.MainEmail, &rec.MainPhone, &rec.CleanName, &rec.NormalizedName,
			&rec.BaseAccount, &rec.Suffix, &rec.AccountType, &rec.BusinessID, &isMain, &hasMulti, &emailDomain,
		); err != nil {
			return nil, err
		}
		rec.IsMainAccount = isMain != 0
		rec.HasMultipleAccounts = hasMulti != 0
		rec.EmailDomain = emailDomain.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) ListBusinessIDs() ([]string, error) {
	rows, err := d.conn.Query(`SELECT DISTINCT businessId FROM customers WHERE businessId IS NOT NULL ORDER BY businessId ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListUsedEmailBusinessIDs returns the distinct business IDs already linked to
// any email.
func (d *DB) ListUsedEmailBusinessIDs() ([]string, error) {
	rows, err := d.conn.Query(`SELECT DISTINCT businessId FROM emails WHERE businessId IS NOT NULL ORDER BY businessId ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListEmailIDsMissingBusinessID returns extracted-or-later emails that never
// got a business ID, in stable row order.
func (d *DB) ListEmailIDsMissingBusinessID() ([]int, error) {
	rows, err := d.conn.Query(`SELECT id FROM emails WHERE businessId IS NULL AND status != 'fetched' ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// UpsertEmail inserts the message or refreshes its envelope columns on
// refetch. The conflict clause deliberately leaves status, businessId and the
// extraction columns alone: a listener cycle sees the same unseen messages
// again, and refreshing those would undo extraction on rows that already
// moved past fetched.
func (d *DB) UpsertEmail(row internal.EmailRow) (internal.EmailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO emails (provider, messageId, fromAddress, sender, subject, summary, receivedAt,
                    emailDomain, extractedBusiness, normalizedBusiness, businessId, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  fromAddress=excluded.fromAddress,
  sender=excluded.sender,
  subject=excluded.subject,
  summary=excluded.summary,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, row.Provider, row.MessageID, row.FromAddress, row.Sender, row.Subject, row.Summary, row.ReceivedAt,
		row.EmailDomain, row.ExtractedBusiness, row.NormalizedBusiness, row.BusinessID, row.Hash, row.Status, row.RawRef)
	if err != nil {
		return internal.EmailRow{}, err
	}

	stored, err := d.GetEmailByProviderMessageID(row.Provider, row.MessageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if stored == nil {
		return internal.EmailRow{}, errors.New("failed to upsert email")
	}
	return *stored, nil
}

func (d *DB) GetEmailByProviderMessageID(provider, messageID string) (*internal.EmailRow, error) {
	row := d.conn.QueryRow(emailSelect+` WHERE provider = ? AND messageId = ?`, provider, messageID)
	return scanEmail(row)
}

func (d *DB) GetEmailByID(id int) (*internal.EmailRow, error) {
	row := d.conn.QueryRow(emailSelect+` WHERE id = ?`, id)
	return scanEmail(row)
}

const emailSelect = `
SELECT id, provider, messageId, fromAddress, sender, subject, summary, receivedAt,
       emailDomain, extractedBusiness, normalizedBusiness, businessId, hash, status, rawRef
FROM emails`

func scanEmail(row *sql.Row) (*internal.EmailRow, error) {
	var e internal.EmailRow
	var fromAddress, sender, subject, summary, receivedAt, emailDomain sql.NullString
	err := row.Scan(
		&e.ID, &e.Provider, &e.MessageID, &fromAddress, &sender, &subject, &summary, &receivedAt,
		&emailDomain, &e.ExtractedBusiness, &e.NormalizedBusiness, &e.BusinessID, &e.Hash, &e.Status, &e.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.FromAddress = fromAddress.String
	e.Sender = sender.String
	e.Subject = subject.String
	e.Summary = summary.String
	e.ReceivedAt = receivedAt.String
	e.EmailDomain = emailDomain.String
	return &e, nil
}

func (d *DB) ListEmailsByStatus(status string, limit int) ([]internal.EmailRow, error) {
	if limit <= 0 {
		// SQLite treats a negative limit as unbounded.
		limit = -1
	}
	rows, err := d.conn.Query(emailSelect+` WHERE status = ? ORDER BY id ASC LIMIT ?`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EmailRow
	for rows.Next() {
		var e internal.EmailRow
		var fromAddress, sender, subject, summary, receivedAt, emailDomain sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Provider, &e.MessageID, &fromAddress, &sender, &subject, &summary, &receivedAt,
			&emailDomain, &e.ExtractedBusiness, &e.NormalizedBusiness, &e.BusinessID, &e.Hash, &e.Status, &e.RawRef,
		); err != nil {
			return nil, err
		}
		e.FromAddress = fromAddress.String
		e.Sender = sender.String
		e.Subject = subject.String
		e.Summary = summary.String
		e.ReceivedAt = receivedAt.String
		e.EmailDomain = emailDomain.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *DB) UpdateEmailStatus(emailID int, status string) error {
	_, err := d.conn.Exec(`UPDATE emails SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, emailID)
	return err
}

func (d *DB) UpdateEmailExtraction(emailID int, fromAddress, sender, subject, summary, emailDomain string, extracted *string, normalized, status string) error {
	_, err := d.conn.Exec(`
UPDATE emails SET fromAddress = ?, sender = ?, subject = ?, summary = ?, emailDomain = ?,
                  extractedBusiness = ?, normalizedBusiness = ?, status = ?, updatedAt = CURRENT_TIMESTAMP
WHERE id = ?`, fromAddress, sender, subject, summary, emailDomain, extracted, normalized, status, emailID)
	return err
}

func (d *DB) UpdateEmailBusinessID(emailID int, businessID string) error {
	_, err := d.conn.Exec(`UPDATE emails SET businessId = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, businessID, emailID)
	return err
}

func (d *DB) InsertMatch(m internal.MatchResult) error {
	_, err := d.conn.Exec(`
INSERT INTO matches (emailId, customerId, emailBusiness, customerName, customerClean,
                     similarityScore, fuzzyScore, sequenceScore, domainScore, emailDomain, customerEmail)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(emailId) DO UPDATE SET
  customerId=excluded.customerId,
  emailBusiness=excluded.emailBusiness,
  customerName=excluded.customerName,
  customerClean=excluded.customerClean,
  similarityScore=excluded.similarityScore,
  fuzzyScore=excluded.fuzzyScore,
  sequenceScore=excluded.sequenceScore,
  domainScore=excluded.domainScore,
  emailDomain=excluded.emailDomain,
  customerEmail=excluded.customerEmail
`, m.EmailID, m.CustomerID, m.EmailBusiness, m.CustomerName, m.CustomerClean,
		m.SimilarityScore, m.FuzzyScore, m.SequenceScore, m.DomainScore, m.EmailDomain, m.CustomerEmail)
	return err
}

func (d *DB) ListMatches() ([]internal.MatchResult, error) {
	rows, err := d.conn.Query(`
SELECT emailId, customerId, emailBusiness, customerName, customerClean,
       similarityScore, fuzzyScore, sequenceScore, domainScore, emailDomain, customerEmail
FROM matches ORDER BY similarityScore DESC, emailId ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.MatchResult
	for rows.Next() {
		var m internal.MatchResult
		var emailDomain, customerEmail sql.NullString
		if err := rows.Scan(
			&m.EmailID, &m.CustomerID, &m.EmailBusiness, &m.CustomerName, &m.CustomerClean,
			&m.SimilarityScore, &m.FuzzyScore, &m.SequenceScore, &m.DomainScore, &emailDomain, &customerEmail,
		); err != nil {
			return nil, err
		}
		m.EmailDomain = emailDomain.String
		m.CustomerEmail = customerEmail.String
		out = append(out, m)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID, kind string, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, kind, timingsJson, countsJson) VALUES (?, ?, ?, ?)`,
		traceID, kind, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
