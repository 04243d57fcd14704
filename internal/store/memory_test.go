package store

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/powerofaum/payments/internal/errors"
	"github.com/powerofaum/payments/internal/models"
)

func TestInMemoryStore_InsertSubscription(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	rec := models.SubscriptionRecord{
		ID:              "sub-1",
		PurchaserID:     "user_001",
		AmountCents:     5000,
		Currency:        "usd",
		VendorAccountID: "acct_vendor_A",
		SessionID:       "cs_test_001",
		Status:          models.SubscriptionActive,
		CreatedAt:       time.Now().UTC(),
	}

	if err := store.InsertSubscription(ctx, rec); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Second insert for the same session must be rejected
	rec.ID = "sub-2"
	if err := store.InsertSubscription(ctx, rec); err != apperrors.ErrDuplicateSession {
		t.Errorf("Expected ErrDuplicateSession, got %v", err)
	}

	got, err := store.GetSubscriptionBySession(ctx, "cs_test_001")
	if err != nil {
		t.Fatalf("GetSubscriptionBySession: %v", err)
	}
	if got == nil || got.ID != "sub-1" {
		t.Errorf("Expected original record to survive duplicate insert, got %+v", got)
	}
}

func TestInMemoryStore_GetSubscriptionBySessionMissing(t *testing.T) {
	store := NewInMemoryStore()

	got, err := store.GetSubscriptionBySession(context.Background(), "cs_missing")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing session, got %+v", got)
	}
}

func TestInMemoryStore_AddonLifecycle(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	rec := models.AddonRecord{
		ID:              "addon-1",
		PurchaserID:     "user_002",
		AmountCents:     199,
		Currency:        "usd",
		VendorAccountID: "acct_vendor_A",
		SessionID:       "cs_test_addon_001",
		Status:          models.AddonPending,
		CreatedAt:       time.Now().UTC(),
	}

	if err := store.InsertAddon(ctx, rec); err != nil {
		t.Fatalf("InsertAddon: %v", err)
	}

	got, err := store.GetAddonBySession(ctx, "cs_test_addon_001")
	if err != nil {
		t.Fatalf("GetAddonBySession: %v", err)
	}
	if got == nil || got.Status != models.AddonPending {
		t.Fatalf("Expected pending add-on, got %+v", got)
	}

	pdfURL := "https://pay.example.com/blessing-pdf/addon-1.pdf"
	if err := store.UpdateAddonStatus(ctx, "cs_test_addon_001", models.AddonCompleted, pdfURL); err != nil {
		t.Fatalf("UpdateAddonStatus: %v", err)
	}

	got, _ = store.GetAddonBySession(ctx, "cs_test_addon_001")
	if got.Status != models.AddonCompleted {
		t.Errorf("Expected status completed, got %s", got.Status)
	}
	if got.PDFURL != pdfURL {
		t.Errorf("Expected pdf url %s, got %s", pdfURL, got.PDFURL)
	}

	// Replaying the same transition must not change anything
	if err := store.UpdateAddonStatus(ctx, "cs_test_addon_001", models.AddonCompleted, pdfURL); err != nil {
		t.Fatalf("UpdateAddonStatus replay: %v", err)
	}
	got, _ = store.GetAddonBySession(ctx, "cs_test_addon_001")
	if got.PDFURL != pdfURL {
		t.Errorf("Expected pdf url unchanged after replay, got %s", got.PDFURL)
	}
}

func TestInMemoryStore_UpdateAddonStatusUnknownSession(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	// Unknown session is a no-op, not an error
	if err := store.UpdateAddonStatus(ctx, "cs_unknown", models.AddonCompleted, "https://x/y.pdf"); err != nil {
		t.Errorf("Expected no error for unknown session, got %v", err)
	}
	if len(store.addons) != 0 {
		t.Errorf("Expected no record created, got %d", len(store.addons))
	}
}

func TestInMemoryStore_UpdateAddonStatusKeepsPDFURL(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	rec := models.AddonRecord{
		ID:        "addon-2",
		SessionID: "cs_test_addon_002",
		Status:    models.AddonCompleted,
		PDFURL:    "https://pay.example.com/blessing-pdf/addon-2.pdf",
		CreatedAt: time.Now().UTC(),
	}
	if err := store.InsertAddon(ctx, rec); err != nil {
		t.Fatalf("InsertAddon: %v", err)
	}

	// Empty pdfURL must not clear an already attached URL
	if err := store.UpdateAddonStatus(ctx, "cs_test_addon_002", models.AddonFailed, ""); err != nil {
		t.Fatalf("UpdateAddonStatus: %v", err)
	}
	got, _ := store.GetAddonBySession(ctx, "cs_test_addon_002")
	if got.PDFURL != rec.PDFURL {
		t.Errorf("Expected pdf url preserved, got %s", got.PDFURL)
	}
	if got.Status != models.AddonFailed {
		t.Errorf("Expected status failed, got %s", got.Status)
	}
}

func TestInMemoryStore_ListByVendor(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	subs := []models.SubscriptionRecord{
		{ID: "sub-1", VendorAccountID: "acct_vendor_A", SessionID: "cs_1", AmountCents: 5000, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "sub-2", VendorAccountID: "acct_vendor_B", SessionID: "cs_2", AmountCents: 7000, CreatedAt: base},
		{ID: "sub-3", VendorAccountID: "acct_vendor_A", SessionID: "cs_3", AmountCents: 3000, CreatedAt: base.Add(time.Hour)},
	}
	for _, rec := range subs {
		if err := store.InsertSubscription(ctx, rec); err != nil {
			t.Fatalf("InsertSubscription: %v", err)
		}
	}

	result, err := store.ListSubscriptionsByVendor(ctx, "acct_vendor_A")
	if err != nil {
		t.Fatalf("ListSubscriptionsByVendor: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 records for vendor A, got %d", len(result))
	}
	// Ordered oldest first
	if result[0].ID != "sub-3" || result[1].ID != "sub-1" {
		t.Errorf("Expected creation order sub-3, sub-1; got %s, %s", result[0].ID, result[1].ID)
	}

	empty, err := store.ListSubscriptionsByVendor(ctx, "acct_vendor_unknown")
	if err != nil {
		t.Fatalf("ListSubscriptionsByVendor: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no records for unknown vendor, got %d", len(empty))
	}
}

func TestInMemoryStore_Health(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.Health(context.Background()); err != nil {
		t.Errorf("Expected nil health, got %v", err)
	}
}
