package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/powerofaum/payments/internal/models"
)

// Store is the ledger of subscription and add-on purchase records. Both
// collections are keyed by processor session id: inserting a second record
// for the same session fails with errors.ErrDuplicateSession, which is what
// makes webhook redelivery safe.
type Store interface {
	InsertSubscription(ctx context.Context, rec models.SubscriptionRecord) error
	GetSubscriptionBySession(ctx context.Context, sessionID string) (*models.SubscriptionRecord, error)
	ListSubscriptionsByVendor(ctx context.Context, vendorAccountID string) ([]models.SubscriptionRecord, error)

	InsertAddon(ctx context.Context, rec models.AddonRecord) error
	GetAddonBySession(ctx context.Context, sessionID string) (*models.AddonRecord, error)
	// UpdateAddonStatus transitions the add-on for sessionID and attaches
	// pdfURL when non-empty. Unknown session ids are a no-op, not an
	// error; callers that care branch on GetAddonBySession first.
	UpdateAddonStatus(ctx context.Context, sessionID, status, pdfURL string) error
	ListAddonsByVendor(ctx context.Context, vendorAccountID string) ([]models.AddonRecord, error)

	Health(ctx context.Context) error
}

// Database interface for dependency injection
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Health(ctx context.Context) error
	IsConfigured() bool
}

// New creates a new store instance
func New(db Database) Store {
	if db.IsConfigured() {
		return NewPostgresStore(db)
	}
	// Fallback to in-memory store if no database
	return NewInMemoryStore()
}
