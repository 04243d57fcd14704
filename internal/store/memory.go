package store

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/powerofaum/payments/internal/errors"
	"github.com/powerofaum/payments/internal/models"
)

// InMemoryStore implements Store using in-memory storage. The maps are
// keyed by session id so uniqueness falls out of the structure, and all
// writes serialize on the mutex so concurrent webhook deliveries cannot
// lose updates.
type InMemoryStore struct {
	mu            sync.RWMutex
	subscriptions map[string]models.SubscriptionRecord
	addons        map[string]models.AddonRecord
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		subscriptions: make(map[string]models.SubscriptionRecord),
		addons:        make(map[string]models.AddonRecord),
	}
}

// InsertSubscription stores a subscription record keyed by session id
func (s *InMemoryStore) InsertSubscription(ctx context.Context, rec models.SubscriptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[rec.SessionID]; exists {
		return apperrors.ErrDuplicateSession
	}
	s.subscriptions[rec.SessionID] = rec
	return nil
}

// GetSubscriptionBySession retrieves a subscription record by session id
func (s *InMemoryStore) GetSubscriptionBySession(ctx context.Context, sessionID string) (*models.SubscriptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, exists := s.subscriptions[sessionID]; exists {
		return &rec, nil
	}
	return nil, nil
}

// ListSubscriptionsByVendor returns subscription records for the vendor, oldest first
func (s *InMemoryStore) ListSubscriptionsByVendor(ctx context.Context, vendorAccountID string) ([]models.SubscriptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.SubscriptionRecord
	for _, rec := range s.subscriptions {
		if rec.VendorAccountID == vendorAccountID {
			result = append(result, rec)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// InsertAddon stores an add-on record keyed by session id
func (s *InMemoryStore) InsertAddon(ctx context.Context, rec models.AddonRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.addons[rec.SessionID]; exists {
		return apperrors.ErrDuplicateSession
	}
	s.addons[rec.SessionID] = rec
	return nil
}

// GetAddonBySession retrieves an add-on record by session id
func (s *InMemoryStore) GetAddonBySession(ctx context.Context, sessionID string) (*models.AddonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, exists := s.addons[sessionID]; exists {
		return &rec, nil
	}
	return nil, nil
}

// UpdateAddonStatus transitions an add-on record; unknown session ids are a no-op
func (s *InMemoryStore) UpdateAddonStatus(ctx context.Context, sessionID, status, pdfURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.addons[sessionID]
	if !exists {
		return nil
	}

	rec.Status = status
	if pdfURL != "" {
		rec.PDFURL = pdfURL
	}
	s.addons[sessionID] = rec
	return nil
}

// ListAddonsByVendor returns add-on records for the vendor, oldest first
func (s *InMemoryStore) ListAddonsByVendor(ctx context.Context, vendorAccountID string) ([]models.AddonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.AddonRecord
	for _, rec := range s.addons {
		if rec.VendorAccountID == vendorAccountID {
			result = append(result, rec)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// Health always returns nil for in-memory store
func (s *InMemoryStore) Health(ctx context.Context) error {
	return nil
}
