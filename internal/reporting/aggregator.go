package reporting

import (
	"context"
	"fmt"

	"github.com/powerofaum/payments/internal/store"
)

// CommissionRateBps is the platform's fixed share of every completed
// transaction, in basis points. Commission is floored in integer cents so
// it can never exceed collected revenue.
const CommissionRateBps = 2000 // 20%

// VendorSales summarizes subscription revenue for one vendor
type VendorSales struct {
	TotalSubscriptions   int   `json:"totalSubscriptions"`
	TotalRevenueCents    int64 `json:"totalRevenueCents"`
	TotalCommissionCents int64 `json:"totalCommissionCents"`
}

// VendorAddonSales summarizes add-on purchase revenue for one vendor
type VendorAddonSales struct {
	TotalAddonSales           int   `json:"totalAddOnSales"`
	TotalAddonRevenueCents    int64 `json:"totalAddOnRevenueCents"`
	TotalAddonCommissionCents int64 `json:"totalAddOnCommissionCents"`
}

// Aggregator computes per-vendor totals from the ledger on demand.
// Unknown vendors yield zero totals, not an error.
type Aggregator struct {
	store store.Store
}

// New creates an aggregator reading from the given ledger store
func New(s store.Store) *Aggregator {
	return &Aggregator{store: s}
}

// Commission returns the platform's share of revenueCents, floored
func Commission(revenueCents int64) int64 {
	return revenueCents * CommissionRateBps / 10000
}

// VendorSales computes subscription totals for the vendor
func (a *Aggregator) VendorSales(ctx context.Context, vendorAccountID string) (VendorSales, error) {
	records, err := a.store.ListSubscriptionsByVendor(ctx, vendorAccountID)
	if err != nil {
		return VendorSales{}, fmt.Errorf("list subscriptions for %s: %w", vendorAccountID, err)
	}

	var revenue int64
	for _, rec := range records {
		revenue += rec.AmountCents
	}

	return VendorSales{
		TotalSubscriptions:   len(records),
		TotalRevenueCents:    revenue,
		TotalCommissionCents: Commission(revenue),
	}, nil
}

// VendorAddonSales computes add-on purchase totals for the vendor
func (a *Aggregator) VendorAddonSales(ctx context.Context, vendorAccountID string) (VendorAddonSales, error) {
	records, err := a.store.ListAddonsByVendor(ctx, vendorAccountID)
	if err != nil {
		return VendorAddonSales{}, fmt.Errorf("list addons for %s: %w", vendorAccountID, err)
	}

	var revenue int64
	for _, rec := range records {
		revenue += rec.AmountCents
	}

	return VendorAddonSales{
		TotalAddonSales:           len(records),
		TotalAddonRevenueCents:    revenue,
		TotalAddonCommissionCents: Commission(revenue),
	}, nil
}
