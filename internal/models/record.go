package models

import "time"

// Subscription statuses.
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionFailed    = "failed"
)

// Add-on purchase statuses.
const (
	AddonPending   = "pending"
	AddonCompleted = "completed"
	AddonFailed    = "failed"
)

// SubscriptionRecord is a ledger entry for a completed recurring
// subscription checkout. Records are created by the webhook reconciler
// once the processor confirms payment and are never updated afterwards.
type SubscriptionRecord struct {
	ID              string    `json:"id" db:"id"`
	PurchaserID     string    `json:"purchaserId" db:"purchaser_id"`
	AmountCents     int64     `json:"amountCents" db:"amount_cents"`
	Currency        string    `json:"currency" db:"currency"`
	VendorAccountID string    `json:"vendorAccountId" db:"vendor_account_id"`
	SessionID       string    `json:"sessionId" db:"session_id"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// AddonRecord is a ledger entry for a one-time add-on purchase. It is
// created in state pending when the checkout session is opened, before
// the payment completes, so the eventual webhook has a correlation
// target. The reconciler moves it to completed (attaching PDFURL) or
// failed, keyed by SessionID.
type AddonRecord struct {
	ID              string    `json:"id" db:"id"`
	PurchaserID     string    `json:"purchaserId" db:"purchaser_id"`
	AmountCents     int64     `json:"amountCents" db:"amount_cents"`
	Currency        string    `json:"currency" db:"currency"`
	VendorAccountID string    `json:"vendorAccountId" db:"vendor_account_id"`
	SessionID       string    `json:"sessionId" db:"session_id"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	PDFURL          string    `json:"pdfUrl,omitempty" db:"pdf_url"`
}
