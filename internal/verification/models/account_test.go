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

func newPendingAccount(t *testing.T) *SellerAccount {
	t.Helper()
	account, err := NewSellerAccount(
		id.SellerID(uuid.New()),
		"Maya Chen",
		"maya@vintagethreads.example",
		"Vintage Threads",
		time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return account
}

func TestNewSellerAccount(t *testing.T) {
	t.Run("starts pending with empty history", func(t *testing.T) {
		account := newPendingAccount(t)
		assert.Equal(t, StatusPending, account.Status)
		assert.Nil(t, account.VerificationDate)
		assert.Empty(t, account.VerificationHistory)
		assert.Nil(t, account.LastEvent())
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		now := time.Now()
		_, err := NewSellerAccount(id.SellerID{}, "Maya", "m@example.com", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = NewSellerAccount(id.SellerID(uuid.New()), "", "m@example.com", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = NewSellerAccount(id.SellerID(uuid.New()), "Maya", "", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusVerified))
	assert.False(t, StatusPending.CanTransitionTo(StatusSuspended))
	assert.True(t, StatusVerified.CanTransitionTo(StatusSuspended))
	assert.False(t, StatusVerified.CanTransitionTo(StatusPending))
	assert.True(t, StatusSuspended.CanTransitionTo(StatusVerified))
	assert.False(t, StatusSuspended.CanTransitionTo(StatusPending))
}

func TestApproval(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("approves pending account", func(t *testing.T) {
		account := newPendingAccount(t)
		require.NoError(t, account.CanApprove())
		account.ApplyApproval(now, "Documents look good")

		assert.Equal(t, StatusVerified, account.Status)
		require.NotNil(t, account.VerificationDate)
		assert.Equal(t, now, *account.VerificationDate)
		require.Len(t, account.VerificationHistory, 1)
		assert.Equal(t, 1, account.LastEvent().SequenceNumber)
		assert.Equal(t, DecisionApproved, account.LastEvent().Decision)
		assert.Equal(t, "Documents look good", account.LastEvent().Notes)
	})

	t.Run("defaults empty notes", func(t *testing.T) {
		account := newPendingAccount(t)
		account.ApplyApproval(now, "")
		assert.Equal(t, DefaultApproveNotes, account.LastEvent().Notes)
	})

	t.Run("cannot approve twice", func(t *testing.T) {
		account := newPendingAccount(t)
		account.ApplyApproval(now, "")
		err := account.CanApprove()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("cannot approve suspended account", func(t *testing.T) {
		account := newPendingAccount(t)
		account.ApplyApproval(now, "")
		account.ApplySuspension(now.Add(time.Hour), "counterfeit items")
		err := account.CanApprove()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestRejection(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("rejected account stays pending and can retry", func(t *testing.T) {
		account := newPendingAccount(t)
		require.NoError(t, account.CanReject())
		account.ApplyRejection(now, "")

		assert.Equal(t, StatusPending, account.Status)
		assert.Nil(t, account.VerificationDate)
		require.Len(t, account.VerificationHistory, 1)
		assert.Equal(t, DecisionRejected, account.LastEvent().Decision)
		assert.Equal(t, DefaultRejectNotes, account.LastEvent().Notes)

		// A later approval appends, never rewrites.
		require.NoError(t, account.CanApprove())
		account.ApplyApproval(now.Add(24*time.Hour), "resubmitted documents accepted")
		require.Len(t, account.VerificationHistory, 2)
		assert.Equal(t, 2, account.LastEvent().SequenceNumber)
		assert.Equal(t, DecisionRejected, account.VerificationHistory[0].Decision)
	})

	t.Run("cannot reject verified account", func(t *testing.T) {
		account := newPendingAccount(t)
		account.ApplyApproval(now, "")
		err := account.CanReject()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestSuspensionAndReinstatement(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("suspends verified account", func(t *testing.T) {
		account := newPendingAccount(t)
		account.ApplyApproval(now, "")
		require.NoError(t, account.CanSuspend())
		account.ApplySuspension(now.Add(time.Hour), "policy violation")

		assert.Equal(t, StatusSuspended, account.Status)
		assert.Equal(t, "policy violation", account.SuspensionReason)
		// Suspension is a status change, not a verification decision.
		assert.Len(t, account.VerificationHistory, 1)
	})

	t.Run("cannot suspend pending account", func(t *testing.T) {
		account := newPendingAccount(t)
		err := account.CanSuspend()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("reinstatement restores verified and keeps original date", func(t *testing.T) {
		account := newPendingAccount(t)
		account.ApplyApproval(now, "")
		verifiedAt := *account.VerificationDate
		account.ApplySuspension(now.Add(time.Hour), "policy violation")

		require.NoError(t, account.CanReinstate())
		account.ApplyReinstatement(now.Add(2 * time.Hour))

		assert.Equal(t, StatusVerified, account.Status)
		assert.Empty(t, account.SuspensionReason)
		require.NotNil(t, account.VerificationDate)
		assert.Equal(t, verifiedAt, *account.VerificationDate)
		require.Len(t, account.VerificationHistory, 2)
		assert.Equal(t, DecisionReinstated, account.LastEvent().Decision)
	})

	t.Run("cannot reinstate verified account", func(t *testing.T) {
		account := newPendingAccount(t)
		account.ApplyApproval(now, "")
		err := account.CanReinstate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestClone(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	account := newPendingAccount(t)
	account.ApplyApproval(now, "")

	dup := account.Clone()
	dup.ApplySuspension(now.Add(time.Hour), "changed on the copy")
	dup.VerificationHistory[0].Notes = "tampered"

	assert.Equal(t, StatusVerified, account.Status)
	assert.Empty(t, account.SuspensionReason)
	assert.Equal(t, DefaultApproveNotes, account.VerificationHistory[0].Notes)
}
