package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "restyle/pkg/domain"
	dErrors "restyle/pkg/domain-errors"
)

func newPendingListing(t *testing.T) *Listing {
	t.Helper()
	listing, err := NewListing(
		id.ListingID(uuid.New()),
		id.SellerID(uuid.New()),
		"Vintage Denim Jacket",
		time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return listing
}

func TestNewListing(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		listing := newPendingListing(t)
		assert.Equal(t, ListingPending, listing.Status)
		assert.Nil(t, listing.DecidedAt)
		assert.Empty(t, listing.RejectionReason)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		now := time.Now()
		_, err := NewListing(id.ListingID{}, id.SellerID(uuid.New()), "Jacket", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = NewListing(id.ListingID(uuid.New()), id.SellerID{}, "Jacket", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = NewListing(id.ListingID(uuid.New()), id.SellerID(uuid.New()), "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestListingDecisions(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("approval is terminal", func(t *testing.T) {
		listing := newPendingListing(t)
		require.NoError(t, listing.CanDecide())
		listing.ApplyApproval(now)

		assert.Equal(t, ListingApproved, listing.Status)
		require.NotNil(t, listing.DecidedAt)
		assert.Equal(t, now, *listing.DecidedAt)

		err := listing.CanDecide()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejection records the reason and is terminal", func(t *testing.T) {
		listing := newPendingListing(t)
		listing.ApplyRejection(now, "counterfeit brand tag")

		assert.Equal(t, ListingRejected, listing.Status)
		assert.Equal(t, "counterfeit brand tag", listing.RejectionReason)
		require.NotNil(t, listing.DecidedAt)

		err := listing.CanDecide()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestListingClone(t *testing.T) {
	listing := newPendingListing(t)
	listing.Images = []string{"a.jpg", "b.jpg"}

	dup := listing.Clone()
	dup.Images[0] = "tampered.jpg"
	dup.ApplyRejection(time.Now(), "changed on the copy")

	assert.Equal(t, "a.jpg", listing.Images[0])
	assert.Equal(t, ListingPending, listing.Status)
	assert.Nil(t, listing.DecidedAt)
}
