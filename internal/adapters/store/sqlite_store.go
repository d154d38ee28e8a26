package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/pr-contact-miner/internal/core"
	"go.uber.org/zap"
)

// ErrMissingEmail is returned when a contact has no primary email
var ErrMissingEmail = errors.New("contact has no primary email")

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	primary_email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	company_source TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	country_code TEXT NOT NULL DEFAULT '',
	country_source TEXT NOT NULL DEFAULT '',
	email_domain TEXT NOT NULL DEFAULT '',
	website TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contacts_email_domain ON contacts(email_domain);

CREATE TABLE IF NOT EXISTS contact_emails (
	contact_id INTEGER NOT NULL REFERENCES contacts(id),
	email TEXT NOT NULL,
	UNIQUE (contact_id, email)
);

CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS contact_categories (
	contact_id INTEGER NOT NULL REFERENCES contacts(id),
	category_id INTEGER NOT NULL REFERENCES categories(id),
	confidence REAL NOT NULL DEFAULT 1.0,
	PRIMARY KEY (contact_id, category_id)
);

CREATE TABLE IF NOT EXISTS brands (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS contact_brands (
	contact_id INTEGER NOT NULL REFERENCES contacts(id),
	brand_id INTEGER NOT NULL REFERENCES brands(id),
	mention_count INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (contact_id, brand_id)
);

CREATE TABLE IF NOT EXISTS emails_processed (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id TEXT NOT NULL UNIQUE,
	subject TEXT NOT NULL DEFAULT '',
	from_email TEXT NOT NULL DEFAULT '',
	received_at INTEGER,
	contact_id INTEGER REFERENCES contacts(id),
	processed_at INTEGER NOT NULL
);
`

// Fields of an existing contact are only replaced while they are empty.
// SQLite evaluates every SET expression against the pre-update row.
const upsertContact = `
INSERT INTO contacts (
	primary_email, name, company, company_source, title, phone,
	country, country_code, country_source, email_domain, website,
	created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(primary_email) DO UPDATE SET
	name = CASE WHEN contacts.name = '' THEN excluded.name ELSE contacts.name END,
	company = CASE WHEN contacts.company = '' THEN excluded.company ELSE contacts.company END,
	company_source = CASE WHEN contacts.company = '' THEN excluded.company_source ELSE contacts.company_source END,
	title = CASE WHEN contacts.title = '' THEN excluded.title ELSE contacts.title END,
	phone = CASE WHEN contacts.phone = '' THEN excluded.phone ELSE contacts.phone END,
	country = CASE WHEN contacts.country = '' THEN excluded.country ELSE contacts.country END,
	country_code = CASE WHEN contacts.country = '' THEN excluded.country_code ELSE contacts.country_code END,
	country_source = CASE WHEN contacts.country = '' THEN excluded.country_source ELSE contacts.country_source END,
	email_domain = CASE WHEN contacts.email_domain = '' THEN excluded.email_domain ELSE contacts.email_domain END,
	website = CASE WHEN contacts.website = '' THEN excluded.website ELSE contacts.website END,
	updated_at = excluded.updated_at
RETURNING id
`

// SQLiteStore is a SQLite implementation of the ContactStore interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (and if needed creates) the contact database at dbPath
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// UpsertContact creates the contact or fills its empty fields, returning its id
func (s *SQLiteStore) UpsertContact(ctx context.Context, contact *core.ExtractedContact) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(contact.Email))
	if email == "" {
		return 0, ErrMissingEmail
	}

	now := time.Now().Unix()
	var id int64
	err := s.db.QueryRowContext(ctx, upsertContact,
		email, contact.Name, contact.Company, contact.CompanySource, contact.Title, contact.Phone,
		contact.Country, contact.CountryCode, contact.CountrySource, contact.Domain, contact.Website,
		now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert contact: %w", err)
	}

	return id, nil
}

// AddEmail links a secondary address to a contact. The primary address and
// duplicates are ignored.
func (s *SQLiteStore) AddEmail(ctx context.Context, contactID int64, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO contact_emails (contact_id, email)
		SELECT id, ? FROM contacts WHERE id = ? AND primary_email <> LOWER(?)
	`, email, contactID, email)
	if err != nil {
		return fmt.Errorf("failed to add contact email: %w", err)
	}
	return nil
}

// AddCategory links a category to a contact, keeping the highest confidence seen
func (s *SQLiteStore) AddCategory(ctx context.Context, contactID int64, category core.CategoryScore) error {
	name := strings.TrimSpace(category.Name)
	if name == "" {
		return nil
	}

	categoryID, err := s.nameID(ctx, "categories", name)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contact_categories (contact_id, category_id, confidence)
		VALUES (?, ?, ?)
		ON CONFLICT(contact_id, category_id) DO UPDATE SET
			confidence = MAX(contact_categories.confidence, excluded.confidence)
	`, contactID, categoryID, category.Confidence)
	if err != nil {
		return fmt.Errorf("failed to add contact category: %w", err)
	}
	return nil
}

// AddBrand links a brand to a contact, counting repeated mentions
func (s *SQLiteStore) AddBrand(ctx context.Context, contactID int64, brand string) error {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return nil
	}

	brandID, err := s.nameID(ctx, "brands", brand)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contact_brands (contact_id, brand_id, mention_count)
		VALUES (?, ?, 1)
		ON CONFLICT(contact_id, brand_id) DO UPDATE SET
			mention_count = contact_brands.mention_count + 1
	`, contactID, brandID)
	if err != nil {
		return fmt.Errorf("failed to add contact brand: %w", err)
	}
	return nil
}

// nameID returns the id of name in a categories or brands table, creating the row
func (s *SQLiteStore) nameID(ctx context.Context, table, name string) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO `+table+` (name) VALUES (?)`, name); err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to look up %s id: %w", table, err)
	}
	return id, nil
}

// MarkProcessed records that an email was handled. A zero contactID is
// stored as NULL.
func (s *SQLiteStore) MarkProcessed(ctx context.Context, email *core.Email, contactID int64) error {
	var contact sql.NullInt64
	if contactID > 0 {
		contact = sql.NullInt64{Int64: contactID, Valid: true}
	}
	var received sql.NullInt64
	if !email.ReceivedAt.IsZero() {
		received = sql.NullInt64{Int64: email.ReceivedAt.Unix(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO emails_processed (message_id, subject, from_email, received_at, contact_id, processed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, email.ID, email.Subject, email.From, received, contact, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to mark email processed: %w", err)
	}
	return nil
}

// IsProcessed reports whether an email id was already recorded
func (s *SQLiteStore) IsProcessed(ctx context.Context, emailID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM emails_processed WHERE message_id = ?)
	`, emailID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check processed email: %w", err)
	}
	return exists, nil
}

// ListContacts returns every contact ordered by name, with secondary
// emails, categories and brands attached
func (s *SQLiteStore) ListContacts(ctx context.Context) ([]*core.StoredContact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, primary_email, name, company, company_source, title, phone,
			country, country_code, country_source, email_domain, website,
			created_at, updated_at
		FROM contacts
		ORDER BY name, primary_email
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*core.StoredContact
	byID := make(map[int64]*core.StoredContact)
	for rows.Next() {
		c := &core.StoredContact{}
		var created, updated int64
		if err := rows.Scan(&c.ID, &c.Email, &c.Name, &c.Company, &c.CompanySource, &c.Title, &c.Phone,
			&c.Country, &c.CountryCode, &c.CountrySource, &c.Domain, &c.Website, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		c.CreatedAt = time.Unix(created, 0)
		c.UpdatedAt = time.Unix(updated, 0)
		contacts = append(contacts, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	err = s.eachRow(ctx, `SELECT contact_id, email FROM contact_emails ORDER BY rowid`, func(id int64, value string, _ float64) {
		if c := byID[id]; c != nil {
			c.AdditionalEmails = append(c.AdditionalEmails, value)
		}
	})
	if err != nil {
		return nil, err
	}

	err = s.eachRow(ctx, `
		SELECT cc.contact_id, c.name, cc.confidence
		FROM contact_categories cc JOIN categories c ON c.id = cc.category_id
		ORDER BY cc.confidence DESC, c.name
	`, func(id int64, value string, confidence float64) {
		if c := byID[id]; c != nil {
			c.Categories = append(c.Categories, core.CategoryScore{Name: value, Confidence: confidence})
		}
	})
	if err != nil {
		return nil, err
	}

	err = s.eachRow(ctx, `
		SELECT cb.contact_id, b.name, cb.mention_count
		FROM contact_brands cb JOIN brands b ON b.id = cb.brand_id
		ORDER BY cb.mention_count DESC, b.name
	`, func(id int64, value string, _ float64) {
		if c := byID[id]; c != nil {
			c.Brands = append(c.Brands, value)
		}
	})
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

// eachRow scans (contact_id, text, number) rows. Queries with two columns
// pass zero for the number.
func (s *SQLiteStore) eachRow(ctx context.Context, query string, fn func(id int64, value string, number float64)) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query contact details: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read columns: %w", err)
	}

	for rows.Next() {
		var id int64
		var value string
		var number float64
		dest := []any{&id, &value}
		if len(cols) > 2 {
			dest = append(dest, &number)
		}
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("failed to scan contact details: %w", err)
		}
		fn(id, value, number)
	}
	return rows.Err()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close SQLite database: %w", err)
	}
	return nil
}
