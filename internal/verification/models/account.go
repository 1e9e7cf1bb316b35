package models

import (
	"time"

	id "restyle/pkg/domain"
	dErrors "restyle/pkg/domain-errors"
)

// AccountStatus is the closed set of seller account states.
type AccountStatus string

const (
	StatusPending   AccountStatus = "pending"
	StatusVerified  AccountStatus = "verified"
	StatusSuspended AccountStatus = "suspended"
)

func (s AccountStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusSuspended:
		return true
	}
	return false
}

// CanTransitionTo encodes the account state machine:
//
//	pending --approve--> verified --suspend--> suspended
//	suspended --reinstate--> verified
//
// Rejection is not a transition; it only appends history (a rejected account
// stays pending and may resubmit).
func (s AccountStatus) CanTransitionTo(target AccountStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusVerified
	case StatusVerified:
		return target == StatusSuspended
	case StatusSuspended:
		return target == StatusVerified
	}
	return false
}

// VerificationDecision is the outcome recorded in one history event.
type VerificationDecision string

const (
	DecisionApproved   VerificationDecision = "approved"
	DecisionRejected   VerificationDecision = "rejected"
	DecisionReinstated VerificationDecision = "reinstated"
)

// VerificationEvent is one immutable entry in an account's verification
// history. SequenceNumber is scoped to the account and strictly increasing.
type VerificationEvent struct {
	SequenceNumber int                  `json:"sequence_number"`
	Date           time.Time            `json:"date"`
	Decision       VerificationDecision `json:"decision"`
	Notes          string               `json:"notes"`
}

// Default notes applied when an admin submits a decision without any.
const (
	DefaultApproveNotes = "Approved by admin"
	DefaultRejectNotes  = "Rejected due to incomplete documents"
)

// SellerAccount is the aggregate root for a marketplace vendor.
//
// Invariants:
//   - VerificationHistory is append-only with strictly increasing sequence numbers
//   - Status == verified implies VerificationDate is set
//   - Status == suspended implies SuspensionReason is non-empty
//   - Status == pending implies no approval has ever been accepted
//
// Every state transition appends exactly one history event; both happen in the
// same store critical section so the trail can never drift from the status.
type SellerAccount struct {
	ID        id.SellerID `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	BrandName string      `json:"brand_name"`
	JoinedAt  time.Time   `json:"joined_at"`

	// Display-only storefront metrics, summed by the stats projection.
	// They carry no correctness guarantees.
	TotalProducts int     `json:"total_products"`
	TotalSales    int     `json:"total_sales"`
	Rating        float64 `json:"rating"`
	Revenue       int64   `json:"revenue"`

	Status              AccountStatus       `json:"status"`
	VerificationDate    *time.Time          `json:"verification_date,omitempty"`
	SuspensionReason    string              `json:"suspension_reason,omitempty"`
	VerificationHistory []VerificationEvent `json:"verification_history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSellerAccount constructs a pending account, validating invariants.
func NewSellerAccount(sellerID id.SellerID, name, email, brandName string, now time.Time) (*SellerAccount, error) {
	if sellerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "seller id cannot be nil")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "seller name cannot be empty")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "seller email cannot be empty")
	}
	return &SellerAccount{
		ID:        sellerID,
		Name:      name,
		Email:     email,
		BrandName: brandName,
		JoinedAt:  now,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (a *SellerAccount) IsVerified() bool { return a.Status == StatusVerified }

// LastEvent returns the most recent history event, or nil for a fresh account.
func (a *SellerAccount) LastEvent() *VerificationEvent {
	if len(a.VerificationHistory) == 0 {
		return nil
	}
	return &a.VerificationHistory[len(a.VerificationHistory)-1]
}

// CanApprove checks the approve precondition (status must be pending).
// Use with ApplyApproval in Execute callbacks so the check and the mutation
// happen under the same lock.
func (a *SellerAccount) CanApprove() error {
	if a.Status != StatusPending {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot approve account in status %q", a.Status)
	}
	return nil
}

// ApplyApproval transitions the account to verified and appends the approved
// event. Call CanApprove first to validate the transition.
func (a *SellerAccount) ApplyApproval(now time.Time, notes string) {
	if notes == "" {
		notes = DefaultApproveNotes
	}
	verifiedAt := now
	a.Status = StatusVerified
	a.VerificationDate = &verifiedAt
	a.UpdatedAt = now
	a.appendEvent(DecisionApproved, now, notes)
}

// CanReject checks the reject precondition (status must be pending).
func (a *SellerAccount) CanReject() error {
	if a.Status != StatusPending {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot reject account in status %q", a.Status)
	}
	return nil
}

// ApplyRejection appends a rejected event. The status stays pending: a
// rejected seller remains eligible to resubmit documents.
func (a *SellerAccount) ApplyRejection(now time.Time, notes string) {
	if notes == "" {
		notes = DefaultRejectNotes
	}
	a.UpdatedAt = now
	a.appendEvent(DecisionRejected, now, notes)
}

// CanSuspend checks the suspend precondition (status must be verified).
func (a *SellerAccount) CanSuspend() error {
	if !a.Status.CanTransitionTo(StatusSuspended) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot suspend account in status %q", a.Status)
	}
	return nil
}

// ApplySuspension transitions the account to suspended. The reason must be
// validated as non-empty by the caller before the Execute round trip.
func (a *SellerAccount) ApplySuspension(now time.Time, reason string) {
	a.Status = StatusSuspended
	a.SuspensionReason = reason
	a.UpdatedAt = now
}

// CanReinstate checks the reinstate precondition (status must be suspended).
func (a *SellerAccount) CanReinstate() error {
	if a.Status != StatusSuspended {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot reinstate account in status %q", a.Status)
	}
	return nil
}

// ApplyReinstatement moves a suspended account back to verified, clearing the
// suspension reason and appending a reinstated event. The original
// VerificationDate is kept: the account was verified once already.
func (a *SellerAccount) ApplyReinstatement(now time.Time) {
	a.Status = StatusVerified
	a.SuspensionReason = ""
	a.UpdatedAt = now
	a.appendEvent(DecisionReinstated, now, "Reinstated by admin")
}

func (a *SellerAccount) appendEvent(decision VerificationDecision, now time.Time, notes string) {
	a.VerificationHistory = append(a.VerificationHistory, VerificationEvent{
		SequenceNumber: len(a.VerificationHistory) + 1,
		Date:           now,
		Decision:       decision,
		Notes:          notes,
	})
}

// Clone returns a deep copy so store snapshots cannot alias the live entity.
func (a *SellerAccount) Clone() *SellerAccount {
	dup := *a
	if a.VerificationDate != nil {
		d := *a.VerificationDate
		dup.VerificationDate = &d
	}
	dup.VerificationHistory = append([]VerificationEvent(nil), a.VerificationHistory...)
	return &dup
}
