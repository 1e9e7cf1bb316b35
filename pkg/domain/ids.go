// Package domain holds the typed identifiers shared across the review core.
//
// IDs are distinct named UUID types so the compiler rejects cross-entity
// mixups (passing a ListingID where a SellerID is expected). Parsing enforces
// the invariant that IDs are valid, non-empty, non-nil UUIDs at trust
// boundaries; internal code constructs IDs by conversion from uuid.UUID.
package domain

import (
	"github.com/google/uuid"

	dErrors "restyle/pkg/domain-errors"
)

// SellerID identifies a seller account.
type SellerID uuid.UUID

// ListingID identifies a listing submission.
type ListingID uuid.UUID

func (id SellerID) String() string  { return uuid.UUID(id).String() }
func (id ListingID) String() string { return uuid.UUID(id).String() }

func (id SellerID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ListingID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseSellerID parses an untrusted string into a SellerID.
func ParseSellerID(s string) (SellerID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return SellerID{}, err
	}
	return SellerID(u), nil
}

// ParseListingID parses an untrusted string into a ListingID.
func ParseListingID(s string) (ListingID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ListingID{}, err
	}
	return ListingID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
