// Package service enforces the seller account state machine and maintains its
// audit trail. All transitions run through the store's Execute callback so a
// lost race fails its precondition instead of overwriting the winner.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"restyle/internal/platform/metrics"
	"restyle/internal/verification/models"
	"restyle/pkg/attrs"
	id "restyle/pkg/domain"
	dErrors "restyle/pkg/domain-errors"
	"restyle/pkg/email"
	"restyle/pkg/platform/audit"
	"restyle/pkg/platform/sentinel"
	"restyle/pkg/requestcontext"
)

// AccountStore is the persistence boundary for seller accounts.
type AccountStore interface {
	Create(ctx context.Context, account *models.SellerAccount) error
	FindByID(ctx context.Context, sellerID id.SellerID) (*models.SellerAccount, error)
	List(ctx context.Context, status *models.AccountStatus) ([]*models.SellerAccount, error)
	CountByStatus(ctx context.Context) (map[models.AccountStatus]int, error)
	Execute(ctx context.Context, sellerID id.SellerID,
		validate func(*models.SellerAccount) error,
		mutate func(*models.SellerAccount)) (*models.SellerAccount, error)
}

// AuditPublisher is the emit side of the audit pipeline.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the seller verification lifecycle.
type Service struct {
	accounts       AccountStore
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

// New constructs a Service.
func New(accounts AccountStore, opts ...Option) *Service {
	s := &Service{accounts: accounts}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterAccountRequest carries the fields the account-creation collaborator
// provides for a new pending seller.
type RegisterAccountRequest struct {
	Name      string
	Email     string
	BrandName string
}

// Register creates a new seller account in pending status. A missing display
// name is derived from the email's local part rather than rejected.
func (s *Service) Register(ctx context.Context, req RegisterAccountRequest) (*models.SellerAccount, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" && strings.TrimSpace(req.Email) != "" {
		first, last := email.DeriveNameFromEmail(strings.TrimSpace(req.Email))
		name = first + " " + last
	}

	account, err := models.NewSellerAccount(
		id.SellerID(uuid.New()),
		name,
		strings.TrimSpace(req.Email),
		strings.TrimSpace(req.BrandName),
		requestcontext.Now(ctx),
	)
	if err != nil {
		// Convert invariant violations to validation errors for API response
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "seller already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create seller")
	}

	s.logAudit(ctx, string(audit.EventSellerRegistered),
		"seller_id", account.ID.String(),
	)
	if s.metrics != nil {
		s.metrics.SellersRegistered.Inc()
	}
	return account, nil
}

// Approve verifies a pending seller account. The approved history event and
// the status change commit together or not at all.
func (s *Service) Approve(ctx context.Context, sellerID id.SellerID, notes string) (*models.SellerAccount, error) {
	if err := requireSellerID(sellerID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	account, err := s.accounts.Execute(ctx, sellerID,
		func(a *models.SellerAccount) error {
			return invalidTransition(a.CanApprove())
		},
		func(a *models.SellerAccount) {
			a.ApplyApproval(now, strings.TrimSpace(notes))
		},
	)
	if err != nil {
		return nil, wrapAccountErr(err)
	}

	s.logAudit(ctx, string(audit.EventSellerVerified),
		"seller_id", account.ID.String(),
		"decision", string(models.DecisionApproved),
		"reason", account.LastEvent().Notes,
	)
	if s.metrics != nil {
		s.metrics.SellersVerified.Inc()
	}
	return account, nil
}

// Reject records a rejected verification attempt. The account stays pending:
// the marketplace lets a rejected seller fix their documents and resubmit.
func (s *Service) Reject(ctx context.Context, sellerID id.SellerID, notes string) (*models.SellerAccount, error) {
	if err := requireSellerID(sellerID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	account, err := s.accounts.Execute(ctx, sellerID,
		func(a *models.SellerAccount) error {
			return invalidTransition(a.CanReject())
		},
		func(a *models.SellerAccount) {
			a.ApplyRejection(now, strings.TrimSpace(notes))
		},
	)
	if err != nil {
		return nil, wrapAccountErr(err)
	}

	s.logAudit(ctx, string(audit.EventSellerVerificationRejected),
		"seller_id", account.ID.String(),
		"decision", string(models.DecisionRejected),
		"reason", account.LastEvent().Notes,
	)
	if s.metrics != nil {
		s.metrics.VerificationsRejected.Inc()
	}
	return account, nil
}

// Suspend moves a verified account to suspended. The reason is required;
// there is no generic fallback string.
func (s *Service) Suspend(ctx context.Context, sellerID id.SellerID, reason string) (*models.SellerAccount, error) {
	if err := requireSellerID(sellerID); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "suspension reason is required")
	}

	now := requestcontext.Now(ctx)
	account, err := s.accounts.Execute(ctx, sellerID,
		func(a *models.SellerAccount) error {
			return invalidTransition(a.CanSuspend())
		},
		func(a *models.SellerAccount) {
			a.ApplySuspension(now, reason)
		},
	)
	if err != nil {
		return nil, wrapAccountErr(err)
	}

	s.logAudit(ctx, string(audit.EventSellerSuspended),
		"seller_id", account.ID.String(),
		"reason", reason,
	)
	if s.metrics != nil {
		s.metrics.SellersSuspended.Inc()
	}
	return account, nil
}

// Reinstate moves a suspended account back to verified, closing the state
// machine. Not reachable from the legacy admin screens; exposed for support
// tooling.
func (s *Service) Reinstate(ctx context.Context, sellerID id.SellerID) (*models.SellerAccount, error) {
	if err := requireSellerID(sellerID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	account, err := s.accounts.Execute(ctx, sellerID,
		func(a *models.SellerAccount) error {
			return invalidTransition(a.CanReinstate())
		},
		func(a *models.SellerAccount) {
			a.ApplyReinstatement(now)
		},
	)
	if err != nil {
		return nil, wrapAccountErr(err)
	}

	s.logAudit(ctx, string(audit.EventSellerReinstated),
		"seller_id", account.ID.String(),
	)
	if s.metrics != nil {
		s.metrics.SellersReinstated.Inc()
	}
	return account, nil
}

// Get fetches one account with its full verification history.
func (s *Service) Get(ctx context.Context, sellerID id.SellerID) (*models.SellerAccount, error) {
	if err := requireSellerID(sellerID); err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByID(ctx, sellerID)
	if err != nil {
		return nil, wrapAccountErr(err)
	}
	return account, nil
}

// List returns accounts, optionally filtered by status ("" means all).
func (s *Service) List(ctx context.Context, statusFilter string) ([]*models.SellerAccount, error) {
	var status *models.AccountStatus
	if statusFilter != "" {
		parsed := models.AccountStatus(statusFilter)
		if !parsed.IsValid() {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", statusFilter)
		}
		status = &parsed
	}
	accounts, err := s.accounts.List(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sellers")
	}
	return accounts, nil
}

// CountByStatus exposes the status counts for the stats projection.
func (s *Service) CountByStatus(ctx context.Context) (map[models.AccountStatus]int, error) {
	counts, err := s.accounts.CountByStatus(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count sellers")
	}
	return counts, nil
}

func requireSellerID(sellerID id.SellerID) error {
	if sellerID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "seller id is required")
	}
	return nil
}

// invalidTransition converts a model invariant violation into the
// InvalidTransition failure the caller contract promises.
func invalidTransition(err error) error {
	if err == nil {
		return nil
	}
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeInvalidTransition, err.Error())
	}
	return err
}

func wrapAccountErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "seller not found")
	case dErrors.HasCode(err, dErrors.CodeInvalidTransition),
		dErrors.HasCode(err, dErrors.CodeValidation),
		dErrors.HasCode(err, dErrors.CodeBadRequest):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "account store failure")
	}
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
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Subject:   attrs.ExtractString(attributes, "seller_id"),
		Action:    event,
		Decision:  attrs.ExtractString(attributes, "decision"),
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   requestcontext.ActorID(ctx),
	})
}
