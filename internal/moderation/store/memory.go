package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"restyle/internal/moderation/models"
	id "restyle/pkg/domain"
	"restyle/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested entity does not exist
// - Return sentinel.ErrConflict on duplicate creation
// - Return nil for successful operations

// InMemoryListingStore stores listings in memory for tests/dev.
type InMemoryListingStore struct {
	mu       sync.RWMutex
	listings map[id.ListingID]*models.Listing
}

// NewMemory constructs an empty in-memory listing store.
func NewMemory() *InMemoryListingStore {
	return &InMemoryListingStore{listings: make(map[id.ListingID]*models.Listing)}
}

func (s *InMemoryListingStore) Create(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.listings[listing.ID]; exists {
		return fmt.Errorf("listing %s already exists: %w", listing.ID, sentinel.ErrConflict)
	}
	s.listings[listing.ID] = listing.Clone()
	return nil
}

func (s *InMemoryListingStore) FindByID(_ context.Context, listingID id.ListingID) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if listing, ok := s.listings[listingID]; ok {
		return listing.Clone(), nil
	}
	return nil, fmt.Errorf("listing %s: %w", listingID, sentinel.ErrNotFound)
}

// ListPending returns the review queue: pending listings in PostedAt order.
// The ordering is what gives the moderation cursor a stable meaning.
func (s *InMemoryListingStore) ListPending(_ context.Context) ([]*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []*models.Listing
	for _, listing := range s.listings {
		if listing.Status == models.ListingPending {
			pending = append(pending, listing.Clone())
		}
	}
	sortListings(pending)
	return pending, nil
}

func (s *InMemoryListingStore) List(_ context.Context, status *models.ListingStatus) ([]*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var listings []*models.Listing
	for _, listing := range s.listings {
		if status != nil && listing.Status != *status {
			continue
		}
		listings = append(listings, listing.Clone())
	}
	sortListings(listings)
	return listings, nil
}

func (s *InMemoryListingStore) CountByStatus(_ context.Context) (map[models.ListingStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.ListingStatus]int)
	for _, listing := range s.listings {
		counts[listing.Status]++
	}
	return counts, nil
}

// Execute runs validate-then-mutate atomically against one listing. If
// validate returns an error the listing is left untouched.
func (s *InMemoryListingStore) Execute(
	_ context.Context,
	listingID id.ListingID,
	validate func(*models.Listing) error,
	mutate func(*models.Listing),
) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[listingID]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", listingID, sentinel.ErrNotFound)
	}

	working := listing.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.listings[listingID] = working
	return working.Clone(), nil
}

func sortListings(listings []*models.Listing) {
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].PostedAt.Equal(listings[j].PostedAt) {
			return listings[i].ID.String() < listings[j].ID.String()
		}
		return listings[i].PostedAt.Before(listings[j].PostedAt)
	})
}
