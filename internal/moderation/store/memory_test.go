package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"restyle/internal/moderation/models"
	id "restyle/pkg/domain"
	dErrors "restyle/pkg/domain-errors"
	"restyle/pkg/platform/sentinel"
)

type ListingStoreSuite struct {
	suite.Suite
	store *InMemoryListingStore
	ctx   context.Context
}

func (s *ListingStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestListingStoreSuite(t *testing.T) {
	suite.Run(t, new(ListingStoreSuite))
}

func (s *ListingStoreSuite) newListing(name string, posted time.Time) *models.Listing {
	listing, err := models.NewListing(
		id.ListingID(uuid.New()), id.SellerID(uuid.New()), name, posted)
	s.Require().NoError(err)
	return listing
}

func (s *ListingStoreSuite) TestCreateAndFind() {
	s.Run("creates and finds listing", func() {
		listing := s.newListing("Denim Jacket", time.Now())
		s.Require().NoError(s.store.Create(s.ctx, listing))

		found, err := s.store.FindByID(s.ctx, listing.ID)
		s.Require().NoError(err)
		s.Equal(listing.OutfitName, found.OutfitName)
	})

	s.Run("rejects duplicate ID", func() {
		listing := s.newListing("Dup", time.Now())
		s.Require().NoError(s.store.Create(s.ctx, listing))
		s.Require().ErrorIs(s.store.Create(s.ctx, listing), sentinel.ErrConflict)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.ListingID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ListingStoreSuite) TestPendingQueueOrdering() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newest := s.newListing("newest", base.Add(2*time.Hour))
	oldest := s.newListing("oldest", base)
	middle := s.newListing("middle", base.Add(time.Hour))
	for _, l := range []*models.Listing{newest, oldest, middle} {
		s.Require().NoError(s.store.Create(s.ctx, l))
	}

	pending, err := s.store.ListPending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 3)
	s.Equal("oldest", pending[0].OutfitName)
	s.Equal("middle", pending[1].OutfitName)
	s.Equal("newest", pending[2].OutfitName)

	// Deciding one removes it from the queue without disturbing the order.
	_, err = s.store.Execute(s.ctx, oldest.ID,
		func(l *models.Listing) error { return l.CanDecide() },
		func(l *models.Listing) { l.ApplyApproval(base.Add(3 * time.Hour)) },
	)
	s.Require().NoError(err)

	pending, err = s.store.ListPending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal("middle", pending[0].OutfitName)
}

func (s *ListingStoreSuite) TestCountByStatus() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	approved := s.newListing("approved", base)
	rejected := s.newListing("rejected", base)
	pending := s.newListing("pending", base)
	for _, l := range []*models.Listing{approved, rejected, pending} {
		s.Require().NoError(s.store.Create(s.ctx, l))
	}
	_, err := s.store.Execute(s.ctx, approved.ID,
		func(l *models.Listing) error { return nil },
		func(l *models.Listing) { l.ApplyApproval(base) },
	)
	s.Require().NoError(err)
	_, err = s.store.Execute(s.ctx, rejected.ID,
		func(l *models.Listing) error { return nil },
		func(l *models.Listing) { l.ApplyRejection(base, "torn seam") },
	)
	s.Require().NoError(err)

	counts, err := s.store.CountByStatus(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, counts[models.ListingPending])
	s.Equal(1, counts[models.ListingApproved])
	s.Equal(1, counts[models.ListingRejected])
}

func (s *ListingStoreSuite) TestExecute() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.Run("failed validation leaves listing untouched", func() {
		listing := s.newListing("untouched", base)
		s.Require().NoError(s.store.Create(s.ctx, listing))

		_, err := s.store.Execute(s.ctx, listing.ID,
			func(l *models.Listing) error {
				return dErrors.New(dErrors.CodeInvariantViolation, "nope")
			},
			func(l *models.Listing) { l.ApplyApproval(base) },
		)
		s.Require().Error(err)

		found, err := s.store.FindByID(s.ctx, listing.ID)
		s.Require().NoError(err)
		s.Equal(models.ListingPending, found.Status)
	})

	s.Run("unknown listing", func() {
		_, err := s.store.Execute(s.ctx, id.ListingID(uuid.New()),
			func(l *models.Listing) error { return nil },
			func(l *models.Listing) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func TestMemoryCursorStore(t *testing.T) {
	ctx := context.Background()
	cursor := NewMemoryCursor()

	pos, err := cursor.Get(ctx)
	if err != nil || pos != 0 {
		t.Fatalf("fresh cursor: got %d, %v", pos, err)
	}
	if err := cursor.Set(ctx, 4); err != nil {
		t.Fatalf("set cursor: %v", err)
	}
	pos, err = cursor.Get(ctx)
	if err != nil || pos != 4 {
		t.Fatalf("after set: got %d, %v", pos, err)
	}
}
