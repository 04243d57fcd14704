package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	apperrors "github.com/powerofaum/payments/internal/errors"
	"github.com/powerofaum/payments/internal/models"
)

// PostgresStore implements Store using PostgreSQL. Uniqueness per session
// id comes from the UNIQUE constraint on session_id; inserts use
// ON CONFLICT DO NOTHING and treat zero affected rows as a duplicate.
type PostgresStore struct {
	db Database
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

// InsertSubscription inserts a subscription record
func (s *PostgresStore) InsertSubscription(ctx context.Context, rec models.SubscriptionRecord) error {
	query := `
		INSERT INTO subscription_records (
			id, purchaser_id, amount_cents, currency, vendor_account_id,
			session_id, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO NOTHING
	`

	affected, err := s.db.Exec(ctx, query,
		rec.ID, rec.PurchaserID, rec.AmountCents, rec.Currency,
		rec.VendorAccountID, rec.SessionID, rec.Status, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert subscription %s: %w", rec.SessionID, err)
	}
	if affected == 0 {
		return apperrors.ErrDuplicateSession
	}

	return nil
}

// GetSubscriptionBySession retrieves a subscription record by session id
func (s *PostgresStore) GetSubscriptionBySession(ctx context.Context, sessionID string) (*models.SubscriptionRecord, error) {
	query := `
		SELECT id, purchaser_id, amount_cents, currency, vendor_account_id,
			   session_id, status, created_at
		FROM subscription_records
		WHERE session_id = $1
	`

	var rec models.SubscriptionRecord
	err := s.db.QueryRow(ctx, query, sessionID).Scan(
		&rec.ID, &rec.PurchaserID, &rec.AmountCents, &rec.Currency,
		&rec.VendorAccountID, &rec.SessionID, &rec.Status, &rec.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}

	return &rec, nil
}

// ListSubscriptionsByVendor returns subscription records for the vendor, oldest first
func (s *PostgresStore) ListSubscriptionsByVendor(ctx context.Context, vendorAccountID string) ([]models.SubscriptionRecord, error) {
	query := `
		SELECT id, purchaser_id, amount_cents, currency, vendor_account_id,
			   session_id, status, created_at
		FROM subscription_records
		WHERE vendor_account_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.Query(ctx, query, vendorAccountID)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var records []models.SubscriptionRecord
	for rows.Next() {
		var rec models.SubscriptionRecord
		err := rows.Scan(
			&rec.ID, &rec.PurchaserID, &rec.AmountCents, &rec.Currency,
			&rec.VendorAccountID, &rec.SessionID, &rec.Status, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// InsertAddon inserts an add-on record
func (s *PostgresStore) InsertAddon(ctx context.Context, rec models.AddonRecord) error {
	query := `
		INSERT INTO addon_records (
			id, purchaser_id, amount_cents, currency, vendor_account_id,
			session_id, status, created_at, pdf_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id) DO NOTHING
	`

	affected, err := s.db.Exec(ctx, query,
		rec.ID, rec.PurchaserID, rec.AmountCents, rec.Currency,
		rec.VendorAccountID, rec.SessionID, rec.Status, rec.CreatedAt, rec.PDFURL,
	)
	if err != nil {
		return fmt.Errorf("insert addon %s: %w", rec.SessionID, err)
	}
	if affected == 0 {
		return apperrors.ErrDuplicateSession
	}

	return nil
}

// GetAddonBySession retrieves an add-on record by session id
func (s *PostgresStore) GetAddonBySession(ctx context.Context, sessionID string) (*models.AddonRecord, error) {
	query := `
		SELECT id, purchaser_id, amount_cents, currency, vendor_account_id,
			   session_id, status, created_at, pdf_url
		FROM addon_records
		WHERE session_id = $1
	`

	var rec models.AddonRecord
	err := s.db.QueryRow(ctx, query, sessionID).Scan(
		&rec.ID, &rec.PurchaserID, &rec.AmountCents, &rec.Currency,
		&rec.VendorAccountID, &rec.SessionID, &rec.Status, &rec.CreatedAt, &rec.PDFURL,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan addon: %w", err)
	}

	return &rec, nil
}

// UpdateAddonStatus transitions an add-on record; unknown session ids are a no-op
func (s *PostgresStore) UpdateAddonStatus(ctx context.Context, sessionID, status, pdfURL string) error {
	query := `
		UPDATE addon_records
		SET status = $2,
			pdf_url = CASE WHEN $3 = '' THEN pdf_url ELSE $3 END
		WHERE session_id = $1
	`

	if _, err := s.db.Exec(ctx, query, sessionID, status, pdfURL); err != nil {
		return fmt.Errorf("update addon %s: %w", sessionID, err)
	}

	return nil
}

// ListAddonsByVendor returns add-on records for the vendor, oldest first
func (s *PostgresStore) ListAddonsByVendor(ctx context.Context, vendorAccountID string) ([]models.AddonRecord, error) {
	query := `
		SELECT id, purchaser_id, amount_cents, currency, vendor_account_id,
			   session_id, status, created_at, pdf_url
		FROM addon_records
		WHERE vendor_account_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.Query(ctx, query, vendorAccountID)
	if err != nil {
		return nil, fmt.Errorf("query addons: %w", err)
	}
	defer rows.Close()

	var records []models.AddonRecord
	for rows.Next() {
		var rec models.AddonRecord
		err := rows.Scan(
			&rec.ID, &rec.PurchaserID, &rec.AmountCents, &rec.Currency,
			&rec.VendorAccountID, &rec.SessionID, &rec.Status, &rec.CreatedAt, &rec.PDFURL,
		)
		if err != nil {
			return nil, fmt.Errorf("scan addon: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Health checks the database connection
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
