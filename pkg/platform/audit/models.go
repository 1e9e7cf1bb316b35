package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// Admin decisions that gate marketplace visibility belong here; disputes
	// over a rejected listing or suspended account are settled from this trail.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to abuse monitoring.
	// Examples: account suspensions, reinstatements.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled or aggregated with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject is the entity the action was taken on: a seller or listing id.
	Subject string
	Action  string
	// Decision carries the review outcome where applicable ("approved",
	// "rejected", "suspended", "reinstated").
	Decision string
	// Reason carries the admin-supplied notes or rejection reason.
	Reason string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
	// ActorID tracks the admin who performed the action.
	ActorID string
}

type AuditEvent string

const (
	// Seller verification events
	EventSellerRegistered           AuditEvent = "seller_registered"
	EventSellerVerified             AuditEvent = "seller_verified"
	EventSellerVerificationRejected AuditEvent = "seller_verification_rejected"
	EventSellerSuspended            AuditEvent = "seller_suspended"
	EventSellerReinstated           AuditEvent = "seller_reinstated"

	// Listing moderation events
	EventListingSubmitted AuditEvent = "listing_submitted"
	EventListingApproved  AuditEvent = "listing_approved"
	EventListingRejected  AuditEvent = "listing_rejected"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventSellerVerified:             CategoryCompliance,
	EventSellerVerificationRejected: CategoryCompliance,
	EventListingApproved:            CategoryCompliance,
	EventListingRejected:            CategoryCompliance,

	EventSellerSuspended:  CategorySecurity,
	EventSellerReinstated: CategorySecurity,

	EventSellerRegistered: CategoryOperations,
	EventListingSubmitted: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. The trail is append-only: no store exposes
// update or delete operations.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
