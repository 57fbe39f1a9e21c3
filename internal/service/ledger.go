package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roomhub-commerce-api/internal/model"
	"roomhub-commerce-api/internal/repository"
	"roomhub-commerce-api/pkg/apierror"

	"github.com/sirupsen/logrus"
)

// LedgerService is the only writer of coin balances. Every mutation of the
// cached coins counter pairs with exactly one ledger entry in the same
// transaction, keeping coins == sum(in) - sum(out) at all times.
type LedgerService struct {
	repos *repository.Repositories
	log   *logrus.Logger

	dailyLoginReward   int64
	registrationReward int64

	// now is swappable for tests.
	now func() time.Time
}

// NewLedgerService creates the ledger service.
func NewLedgerService(repos *repository.Repositories, dailyLoginReward, registrationReward int64, log *logrus.Logger) *LedgerService {
	return &LedgerService{
		repos:              repos,
		log:                log,
		dailyLoginReward:   dailyLoginReward,
		registrationReward: registrationReward,
		now:                time.Now,
	}
}

// Credit adds coins in its own transaction.
func (s *LedgerService) Credit(ctx context.Context, userID, amount int64, sourceType, action, notes string) error {
	return s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		return s.CreditTx(ctx, tx, userID, amount, sourceType, action, notes)
	})
}

// CreditTx adds coins inside the caller's transaction.
func (s *LedgerService) CreditTx(ctx context.Context, tx *sql.Tx, userID, amount int64, sourceType, action, notes string) error {
	if amount <= 0 {
		return apierror.BadRequest("amount must be positive")
	}

	if err := s.repos.Users.AddCoins(ctx, tx, userID, amount); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.NotFound("user not found")
		}
		return err
	}
	return s.repos.Ledger.Append(ctx, tx, &model.CoinTransaction{
		UserID:     userID,
		Direction:  model.DirectionIn,
		Amount:     amount,
		SourceType: sourceType,
		Action:     action,
		Notes:      notes,
	})
}

// Debit removes coins in its own transaction.
func (s *LedgerService) Debit(ctx context.Context, userID, amount int64, sourceType, action, notes string) error {
	return s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		return s.DebitTx(ctx, tx, userID, amount, sourceType, action, notes)
	})
}

// DebitTx removes coins inside the caller's transaction, failing with
// InsufficientCoins before anything is written when the balance is short.
// The decrement is conditional on coins >= amount, so two racing debits
// cannot drive the balance negative.
func (s *LedgerService) DebitTx(ctx context.Context, tx *sql.Tx, userID, amount int64, sourceType, action, notes string) error {
	if amount <= 0 {
		return apierror.BadRequest("amount must be positive")
	}

	ok, err := s.repos.Users.SpendCoins(ctx, tx, userID, amount)
	if err != nil {
		return err
	}
	if !ok {
		user, err := s.repos.Users.Get(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("user not found")
			}
			return err
		}
		return apierror.InsufficientCoins(amount, user.Coins)
	}

	return s.repos.Ledger.Append(ctx, tx, &model.CoinTransaction{
		UserID:     userID,
		Direction:  model.DirectionOut,
		Amount:     amount,
		SourceType: sourceType,
		Action:     action,
		Notes:      notes,
	})
}

// Balance returns the cached counter and the ledger-derived sum. The two
// must always agree; exposing both makes drift observable.
func (s *LedgerService) Balance(ctx context.Context, userID int64) (cached, derived int64, err error) {
	db := s.repos.Store.DB()
	user, err := s.repos.Users.Get(ctx, db, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, 0, apierror.NotFound("user not found")
		}
		return 0, 0, err
	}

	derived, err = s.repos.Ledger.Balance(ctx, db, userID)
	if err != nil {
		return 0, 0, err
	}
	return user.Coins, derived, nil
}

// History returns a page of the user's ledger plus the total entry count.
func (s *LedgerService) History(ctx context.Context, userID int64, page, limit int) ([]model.CoinTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	db := s.repos.Store.DB()
	entries, err := s.repos.Ledger.ListByUser(ctx, db, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.Ledger.CountByUser(ctx, db, userID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// HasClaimedToday reports whether a credit with the given action was already
// recorded on today's UTC date.
func (s *LedgerService) HasClaimedToday(ctx context.Context, q repository.Querier, userID int64, action string) (bool, error) {
	from := s.now().UTC().Truncate(24 * time.Hour)
	return s.repos.Ledger.HasClaimedBetween(ctx, q, userID, action, from, from.Add(24*time.Hour))
}

// ClaimDailyLogin grants the daily login reward once per calendar day. The
// existence check and the credit share one transaction, and the unique
// claim-day index backstops a photo-finish double claim.
func (s *LedgerService) ClaimDailyLogin(ctx context.Context, userID int64) (int64, error) {
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		claimed, err := s.HasClaimedToday(ctx, tx, userID, model.ActionDailyLogin)
		if err != nil {
			return err
		}
		if claimed {
			return apierror.AlreadyClaimed(model.ActionDailyLogin)
		}
		return s.CreditTx(ctx, tx, userID, s.dailyLoginReward, model.SourceReward, model.ActionDailyLogin, "Daily login reward")
	})
	if err != nil {
		return 0, err
	}
	return s.dailyLoginReward, nil
}

// ClaimRegistrationReward grants the one-time registration reward. Unlike
// the daily rewards this check is all-time, not per-day.
func (s *LedgerService) ClaimRegistrationReward(ctx context.Context, userID int64) (int64, error) {
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		claimed, err := s.repos.Ledger.HasClaimedEver(ctx, tx, userID, model.ActionRegistration)
		if err != nil {
			return err
		}
		if claimed {
			return apierror.AlreadyClaimed(model.ActionRegistration)
		}
		return s.CreditTx(ctx, tx, userID, s.registrationReward, model.SourceReward, model.ActionRegistration, "Welcome reward")
	})
	if err != nil {
		return 0, err
	}
	return s.registrationReward, nil
}
