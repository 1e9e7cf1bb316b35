// Package service implements the single-cursor moderation queue. One review
// position walks the pending listings in posted order; approve and reject act
// only on the item under the cursor, skip moves past it without deciding.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"restyle/internal/moderation/models"
	"restyle/internal/platform/metrics"
	"restyle/pkg/attrs"
	id "restyle/pkg/domain"
	dErrors "restyle/pkg/domain-errors"
	"restyle/pkg/platform/audit"
	"restyle/pkg/platform/sentinel"
	platformstrings "restyle/pkg/platform/strings"
	"restyle/pkg/requestcontext"
)

// ListingStore is the persistence boundary for listings.
type ListingStore interface {
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	ListPending(ctx context.Context) ([]*models.Listing, error)
	List(ctx context.Context, status *models.ListingStatus) ([]*models.Listing, error)
	CountByStatus(ctx context.Context) (map[models.ListingStatus]int, error)
	Execute(ctx context.Context, listingID id.ListingID,
		validate func(*models.Listing) error,
		mutate func(*models.Listing)) (*models.Listing, error)
}

// CursorStore persists the queue position between requests.
type CursorStore interface {
	Get(ctx context.Context) (int, error)
	Set(ctx context.Context, position int) error
}

// AuditPublisher is the emit side of the audit pipeline.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// QueueView is a snapshot of the review queue: the item under the cursor plus
// its 1-based position. Current is nil when nothing is pending.
type QueueView struct {
	Current  *models.Listing `json:"current"`
	Position int             `json:"position"`
	Total    int             `json:"total"`
}

// Service owns the moderation queue semantics.
type Service struct {
	// mu serializes cursor read-modify-write across requests. The listing
	// stores are safe on their own; the cursor arithmetic is not.
	mu       sync.Mutex
	listings ListingStore
	cursor   CursorStore

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a moderation Service.
func New(listings ListingStore, cursor CursorStore, opts ...Option) *Service {
	s := &Service{listings: listings, cursor: cursor}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitListingRequest carries the fields a seller provides for a new listing.
type SubmitListingRequest struct {
	SellerID    id.SellerID
	OutfitName  string
	Brand       string
	Size        string
	Color       string
	PriceCents  int64
	Condition   string
	Description string
	Images      []string
}

// Submit enqueues a new pending listing at the tail of the review queue.
func (s *Service) Submit(ctx context.Context, req SubmitListingRequest) (*models.Listing, error) {
	listing, err := models.NewListing(
		id.ListingID(uuid.New()),
		req.SellerID,
		strings.TrimSpace(req.OutfitName),
		requestcontext.Now(ctx),
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	listing.Brand = strings.TrimSpace(req.Brand)
	listing.Size = strings.TrimSpace(req.Size)
	listing.Color = strings.TrimSpace(req.Color)
	listing.PriceCents = req.PriceCents
	listing.Description = strings.TrimSpace(req.Description)
	listing.Images = platformstrings.DedupeAndTrim(req.Images)
	if trimmed := strings.TrimSpace(req.Condition); trimmed != "" {
		condition, err := id.ParseItemCondition(trimmed)
		if err != nil {
			return nil, dErrors.Newf(dErrors.CodeValidation, "unknown item condition %q", trimmed)
		}
		listing.Condition = condition.String()
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "listing already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create listing")
	}

	s.logAudit(ctx, string(audit.EventListingSubmitted),
		"listing_id", listing.ID.String(),
		"seller_id", listing.SellerID.String(),
	)
	if s.metrics != nil {
		s.metrics.ListingsSubmitted.Inc()
	}
	return listing, nil
}

// Current returns the item under the cursor. An out-of-range persisted cursor
// is clamped into the queue, never reported as an error.
func (s *Service) Current(ctx context.Context) (*QueueView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(ctx)
}

// Skip moves the cursor to the next pending listing without deciding the
// current one. The cursor never advances past the last item: skipping at the
// tail leaves the admin on the tail.
func (s *Service) Skip(ctx context.Context) (*QueueView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, position, err := s.queueState(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return &QueueView{}, nil
	}

	next := clampCursor(position+1, len(pending))
	if err := s.cursor.Set(ctx, next); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist review cursor")
	}
	if s.metrics != nil {
		s.metrics.ListingsSkipped.Inc()
	}
	return &QueueView{Current: pending[next], Position: next + 1, Total: len(pending)}, nil
}

// Approve approves the listing under the cursor. The caller names the listing
// it reviewed; a mismatch with the live cursor means another admin moved the
// queue first, and the decision is refused rather than misapplied.
func (s *Service) Approve(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	now := requestcontext.Now(ctx)
	listing, err := s.decide(ctx, listingID, func(l *models.Listing) {
		l.ApplyApproval(now)
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, string(audit.EventListingApproved),
		"listing_id", listing.ID.String(),
		"seller_id", listing.SellerID.String(),
		"decision", string(models.ListingApproved),
	)
	if s.metrics != nil {
		s.metrics.ListingsApproved.Inc()
	}
	return listing, nil
}

// Reject rejects the listing under the cursor. The reason is required: a
// seller must always learn why their item was refused.
func (s *Service) Reject(ctx context.Context, listingID id.ListingID, reason string) (*models.Listing, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}

	now := requestcontext.Now(ctx)
	listing, err := s.decide(ctx, listingID, func(l *models.Listing) {
		l.ApplyRejection(now, reason)
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, string(audit.EventListingRejected),
		"listing_id", listing.ID.String(),
		"seller_id", listing.SellerID.String(),
		"decision", string(models.ListingRejected),
		"reason", reason,
	)
	if s.metrics != nil {
		s.metrics.ListingsRejected.Inc()
	}
	return listing, nil
}

// Queue returns every pending listing along with the cursor position, for the
// admin overview screen.
func (s *Service) Queue(ctx context.Context) ([]*models.Listing, *QueueView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, position, err := s.queueState(ctx)
	if err != nil {
		return nil, nil, err
	}
	view := &QueueView{Total: len(pending)}
	if len(pending) > 0 {
		view.Current = pending[position]
		view.Position = position + 1
	}
	return pending, view, nil
}

// Get fetches one listing regardless of status.
func (s *Service) Get(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	if listingID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "listing id is required")
	}
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "listing not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing store failure")
	}
	return listing, nil
}

// List returns listings, optionally filtered by status ("" means all).
func (s *Service) List(ctx context.Context, statusFilter string) ([]*models.Listing, error) {
	var status *models.ListingStatus
	if statusFilter != "" {
		parsed := models.ListingStatus(statusFilter)
		if !parsed.IsValid() {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", statusFilter)
		}
		status = &parsed
	}
	listings, err := s.listings.List(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list listings")
	}
	return listings, nil
}

// CountByStatus exposes the status counts for the stats projection.
func (s *Service) CountByStatus(ctx context.Context) (map[models.ListingStatus]int, error) {
	counts, err := s.listings.CountByStatus(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count listings")
	}
	return counts, nil
}

// decide applies one review decision to the listing under the cursor. The
// service mutex is held across the cursor read, the store Execute, and the
// cursor rewrite, so two admins cannot decide the same position twice.
func (s *Service) decide(ctx context.Context, listingID id.ListingID, apply func(*models.Listing)) (*models.Listing, error) {
	if listingID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "listing id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pending, position, err := s.queueState(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, dErrors.New(dErrors.CodeNotCurrentItem, "review queue is empty")
	}
	current := pending[position]
	if current.ID != listingID {
		return nil, dErrors.Newf(dErrors.CodeNotCurrentItem,
			"listing %s is not under review; current item is %s", listingID, current.ID)
	}

	decided, err := s.listings.Execute(ctx, listingID,
		func(l *models.Listing) error {
			if err := l.CanDecide(); err != nil {
				return dErrors.New(dErrors.CodeInvalidTransition, err.Error())
			}
			return nil
		},
		apply,
	)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "listing not found")
		case dErrors.HasCode(err, dErrors.CodeInvalidTransition):
			return nil, err
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing store failure")
		}
	}

	// The decided item left the pending set; the same index now points at its
	// successor. Only clamp when the tail was decided.
	if err := s.cursor.Set(ctx, clampCursor(position, len(pending)-1)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist review cursor")
	}
	return decided, nil
}

// snapshot builds a QueueView under the held mutex.
func (s *Service) snapshot(ctx context.Context) (*QueueView, error) {
	pending, position, err := s.queueState(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return &QueueView{}, nil
	}
	return &QueueView{Current: pending[position], Position: position + 1, Total: len(pending)}, nil
}

// queueState loads the pending queue and the persisted cursor, clamped into
// range. Callers must hold s.mu.
func (s *Service) queueState(ctx context.Context) ([]*models.Listing, int, error) {
	pending, err := s.listings.ListPending(ctx)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load review queue")
	}
	position, err := s.cursor.Get(ctx)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load review cursor")
	}
	return pending, clampCursor(position, len(pending)), nil
}

// clampCursor pins position into [0, length-1]. Zero length clamps to zero.
func clampCursor(position, length int) int {
	if position < 0 {
		return 0
	}
	if length == 0 {
		return 0
	}
	if position >= length {
		return length - 1
	}
	return position
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, args...)
	}
	if s.auditPublisher == nil {
		return
	}
	subject := attrs.ExtractString(attributes, "listing_id")
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Subject:   subject,
		Action:    event,
		Decision:  attrs.ExtractString(attributes, "decision"),
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   requestcontext.ActorID(ctx),
	})
}
