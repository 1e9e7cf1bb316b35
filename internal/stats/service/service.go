// Package service derives the admin dashboard counters. Everything here is a
// pure projection over the verification and moderation stores; nothing is
// persisted, so the numbers can never drift from the underlying state.
package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	moderation "restyle/internal/moderation/models"
	verification "restyle/internal/verification/models"
	dErrors "restyle/pkg/domain-errors"
)

// SellerSource supplies the account-side inputs of the projection.
type SellerSource interface {
	CountByStatus(ctx context.Context) (map[verification.AccountStatus]int, error)
	List(ctx context.Context, status *verification.AccountStatus) ([]*verification.SellerAccount, error)
}

// ListingSource supplies the listing-side inputs of the projection.
type ListingSource interface {
	CountByStatus(ctx context.Context) (map[moderation.ListingStatus]int, error)
}

// Marketplace aggregates storefront metrics across verified sellers only;
// pending and suspended sellers do not contribute to the public numbers.
type Marketplace struct {
	TotalProducts int     `json:"total_products"`
	TotalSales    int     `json:"total_sales"`
	RevenueCents  int64   `json:"revenue_cents"`
	AverageRating float64 `json:"average_rating"`
}

// Snapshot is one consistent read of the dashboard counters.
type Snapshot struct {
	PendingSellers   int `json:"pending_sellers"`
	VerifiedSellers  int `json:"verified_sellers"`
	SuspendedSellers int `json:"suspended_sellers"`
	TotalSellers     int `json:"total_sellers"`

	PendingListings  int `json:"pending_listings"`
	ApprovedListings int `json:"approved_listings"`
	RejectedListings int `json:"rejected_listings"`
	TotalListings    int `json:"total_listings"`

	Marketplace Marketplace `json:"marketplace"`
}

// Service computes dashboard snapshots.
type Service struct {
	sellers  SellerSource
	listings ListingSource
}

// New constructs a stats Service.
func New(sellers SellerSource, listings ListingSource) *Service {
	return &Service{sellers: sellers, listings: listings}
}

// Snapshot fans out to both stores concurrently and assembles the counters.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	var (
		sellerCounts  map[verification.AccountStatus]int
		listingCounts map[moderation.ListingStatus]int
		verified      []*verification.SellerAccount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sellerCounts, err = s.sellers.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		listingCounts, err = s.listings.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		status := verification.StatusVerified
		var err error
		verified, err = s.sellers.List(gctx, &status)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to assemble stats snapshot")
	}

	snapshot := &Snapshot{
		PendingSellers:   sellerCounts[verification.StatusPending],
		VerifiedSellers:  sellerCounts[verification.StatusVerified],
		SuspendedSellers: sellerCounts[verification.StatusSuspended],
		PendingListings:  listingCounts[moderation.ListingPending],
		ApprovedListings: listingCounts[moderation.ListingApproved],
		RejectedListings: listingCounts[moderation.ListingRejected],
	}
	snapshot.TotalSellers = snapshot.PendingSellers + snapshot.VerifiedSellers + snapshot.SuspendedSellers
	snapshot.TotalListings = snapshot.PendingListings + snapshot.ApprovedListings + snapshot.RejectedListings

	var ratingSum float64
	for _, account := range verified {
		snapshot.Marketplace.TotalProducts += account.TotalProducts
		snapshot.Marketplace.TotalSales += account.TotalSales
		snapshot.Marketplace.RevenueCents += account.Revenue
		ratingSum += account.Rating
	}
	if len(verified) > 0 {
		snapshot.Marketplace.AverageRating = ratingSum / float64(len(verified))
	}
	return snapshot, nil
}
