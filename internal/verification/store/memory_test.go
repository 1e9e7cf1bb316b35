package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"restyle/internal/verification/models"
	id "restyle/pkg/domain"
	dErrors "restyle/pkg/domain-errors"
	"restyle/pkg/platform/sentinel"
)

type AccountStoreSuite struct {
	suite.Suite
	store *InMemoryAccountStore
	ctx   context.Context
}

func (s *AccountStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestAccountStoreSuite(t *testing.T) {
	suite.Run(t, new(AccountStoreSuite))
}

func (s *AccountStoreSuite) newAccount(name string, joined time.Time) *models.SellerAccount {
	account, err := models.NewSellerAccount(
		id.SellerID(uuid.New()), name, name+"@example.com", name+" Studio", joined)
	s.Require().NoError(err)
	return account
}

func (s *AccountStoreSuite) TestCreateAndFind() {
	s.Run("creates and finds account", func() {
		account := s.newAccount("maya", time.Now())
		s.Require().NoError(s.store.Create(s.ctx, account))

		found, err := s.store.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		s.Equal(account.Name, found.Name)
		s.Equal(models.StatusPending, found.Status)
	})

	s.Run("rejects duplicate ID", func() {
		account := s.newAccount("dup", time.Now())
		s.Require().NoError(s.store.Create(s.ctx, account))
		s.Require().ErrorIs(s.store.Create(s.ctx, account), sentinel.ErrConflict)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.SellerID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("stored account does not alias the caller's copy", func() {
		account := s.newAccount("alias", time.Now())
		s.Require().NoError(s.store.Create(s.ctx, account))
		account.Name = "mutated after create"

		found, err := s.store.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		s.Equal("alias", found.Name)
	})
}

func (s *AccountStoreSuite) TestListOrderingAndFilter() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := s.newAccount("first", base)
	second := s.newAccount("second", base.Add(time.Hour))
	third := s.newAccount("third", base.Add(2*time.Hour))
	for _, a := range []*models.SellerAccount{third, first, second} {
		s.Require().NoError(s.store.Create(s.ctx, a))
	}

	all, err := s.store.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("first", all[0].Name)
	s.Equal("second", all[1].Name)
	s.Equal("third", all[2].Name)

	_, err = s.store.Execute(s.ctx, second.ID,
		func(a *models.SellerAccount) error { return a.CanApprove() },
		func(a *models.SellerAccount) { a.ApplyApproval(base.Add(3*time.Hour), "") },
	)
	s.Require().NoError(err)

	verified := models.StatusVerified
	filtered, err := s.store.List(s.ctx, &verified)
	s.Require().NoError(err)
	s.Require().Len(filtered, 1)
	s.Equal("second", filtered[0].Name)
}

func (s *AccountStoreSuite) TestCountByStatus() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Create(s.ctx, s.newAccount("pending", base)))
	}
	approved := s.newAccount("approved", base)
	s.Require().NoError(s.store.Create(s.ctx, approved))
	_, err := s.store.Execute(s.ctx, approved.ID,
		func(a *models.SellerAccount) error { return a.CanApprove() },
		func(a *models.SellerAccount) { a.ApplyApproval(base, "") },
	)
	s.Require().NoError(err)

	counts, err := s.store.CountByStatus(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, counts[models.StatusPending])
	s.Equal(1, counts[models.StatusVerified])
	s.Equal(0, counts[models.StatusSuspended])
}

func (s *AccountStoreSuite) TestExecute() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.Run("failed validation leaves account untouched", func() {
		account := s.newAccount("untouched", base)
		s.Require().NoError(s.store.Create(s.ctx, account))

		_, err := s.store.Execute(s.ctx, account.ID,
			func(a *models.SellerAccount) error {
				return dErrors.New(dErrors.CodeInvariantViolation, "nope")
			},
			func(a *models.SellerAccount) { a.ApplyApproval(base, "") },
		)
		s.Require().Error(err)

		found, err := s.store.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, found.Status)
		s.Empty(found.VerificationHistory)
	})

	s.Run("unknown account", func() {
		_, err := s.store.Execute(s.ctx, id.SellerID(uuid.New()),
			func(a *models.SellerAccount) error { return nil },
			func(a *models.SellerAccount) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("concurrent approvals produce exactly one winner", func() {
		account := s.newAccount("contested", base)
		s.Require().NoError(s.store.Create(s.ctx, account))

		const attempts = 16
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = s.store.Execute(s.ctx, account.ID,
					func(a *models.SellerAccount) error { return a.CanApprove() },
					func(a *models.SellerAccount) { a.ApplyApproval(base, "") },
				)
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
			}
		}
		s.Equal(1, winners)

		found, err := s.store.FindByID(s.ctx, account.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusVerified, found.Status)
		s.Len(found.VerificationHistory, 1)
	})
}
