package models

import (
	"time"

	id "restyle/pkg/domain"
	dErrors "restyle/pkg/domain-errors"
)

// ListingStatus is the closed set of listing review states.
type ListingStatus string

const (
	ListingPending  ListingStatus = "pending"
	ListingApproved ListingStatus = "approved"
	ListingRejected ListingStatus = "rejected"
)

func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingPending, ListingApproved, ListingRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further review decisions.
// Listing review is one-shot: once decided, a listing never re-enters the queue.
func (s ListingStatus) IsTerminal() bool {
	return s == ListingApproved || s == ListingRejected
}

// Listing is a secondhand item awaiting moderation before it goes live.
//
// Invariants:
//   - Status == rejected implies RejectionReason is non-empty
//   - Status != pending implies DecidedAt is set
//   - approved and rejected are terminal
type Listing struct {
	ID       id.ListingID `json:"id"`
	SellerID id.SellerID  `json:"seller_id"`

	OutfitName  string    `json:"outfit_name"`
	Brand       string    `json:"brand"`
	Size        string    `json:"size"`
	Color       string    `json:"color"`
	PriceCents  int64     `json:"price_cents"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	PostedAt    time.Time `json:"posted_at"`

	Status          ListingStatus `json:"status"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	DecidedAt       *time.Time    `json:"decided_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewListing constructs a pending listing, validating invariants.
func NewListing(listingID id.ListingID, sellerID id.SellerID, outfitName string, now time.Time) (*Listing, error) {
	if listingID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "listing id cannot be nil")
	}
	if sellerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "seller id cannot be nil")
	}
	if outfitName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "outfit name cannot be empty")
	}
	return &Listing{
		ID:         listingID,
		SellerID:   sellerID,
		OutfitName: outfitName,
		PostedAt:   now,
		Status:     ListingPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CanDecide checks that the listing is still open for review. Use with
// ApplyApproval or ApplyRejection in Execute callbacks.
func (l *Listing) CanDecide() error {
	if l.Status.IsTerminal() {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "listing already %s", l.Status)
	}
	return nil
}

// ApplyApproval marks the listing approved. Call CanDecide first.
func (l *Listing) ApplyApproval(now time.Time) {
	decidedAt := now
	l.Status = ListingApproved
	l.DecidedAt = &decidedAt
	l.UpdatedAt = now
}

// ApplyRejection marks the listing rejected with the admin's reason. The
// reason must be validated as non-empty by the caller.
func (l *Listing) ApplyRejection(now time.Time, reason string) {
	decidedAt := now
	l.Status = ListingRejected
	l.RejectionReason = reason
	l.DecidedAt = &decidedAt
	l.UpdatedAt = now
}

// Clone returns a deep copy so store snapshots cannot alias the live entity.
func (l *Listing) Clone() *Listing {
	dup := *l
	if l.DecidedAt != nil {
		d := *l.DecidedAt
		dup.DecidedAt = &d
	}
	dup.Images = append([]string(nil), l.Images...)
	return &dup
}
