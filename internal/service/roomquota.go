package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roomhub-commerce-api/internal/config"
	"roomhub-commerce-api/internal/model"
	"roomhub-commerce-api/internal/repository"
	"roomhub-commerce-api/pkg/apierror"

	"github.com/sirupsen/logrus"
)

// RoomQuotaService gates room creation behind the monthly free quota and the
// coin overage price. It composes the ledger: a paid creation debits coins
// and bumps the usage counter in one transaction, so a failed debit leaves
// the counter untouched.
type RoomQuotaService struct {
	repos   *repository.Repositories
	ledger  *LedgerService
	economy config.EconomyConfig
	log     *logrus.Logger

	now func() time.Time
}

// NewRoomQuotaService creates the quota service.
func NewRoomQuotaService(repos *repository.Repositories, ledger *LedgerService, economy config.EconomyConfig, log *logrus.Logger) *RoomQuotaService {
	return &RoomQuotaService{
		repos:   repos,
		ledger:  ledger,
		economy: economy,
		log:     log,
		now:     time.Now,
	}
}

// QuotaInfo is the answer to "may this user create a room right now".
type QuotaInfo struct {
	Allowed           bool   `json:"allowed"`
	IsFree            bool   `json:"is_free"`
	Cost              int64  `json:"cost"`
	Used              int    `json:"used"`
	Limit             int    `json:"limit"`
	Level             string `json:"level"`
	InsufficientCoins bool   `json:"insufficient_coins"`
}

// CanCreate evaluates the user's quota for the current month.
func (s *RoomQuotaService) CanCreate(ctx context.Context, userID int64) (*QuotaInfo, error) {
	var info *QuotaInfo
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		var err error
		info, err = s.evaluate(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// evaluate computes the quota inside the given transaction.
func (s *RoomQuotaService) evaluate(ctx context.Context, q repository.Querier, userID int64) (*QuotaInfo, error) {
	user, err := s.repos.Users.Get(ctx, q, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("user not found")
		}
		return nil, err
	}

	level := s.effectiveLevel(ctx, q, user)
	limit := s.economy.RoomLimit(level)

	now := s.now().UTC()
	usage, err := s.repos.Usage.Get(ctx, q, userID, now.Year(), int(now.Month()))
	if err != nil {
		return nil, err
	}

	info := &QuotaInfo{
		Used:  usage.MonthlyRoomsCreated,
		Limit: limit,
		Level: level,
	}

	if usage.MonthlyRoomsCreated < limit {
		info.Allowed = true
		info.IsFree = true
		return info, nil
	}

	info.Cost = s.economy.RoomOverageCost
	if user.Coins >= info.Cost {
		info.Allowed = true
	} else {
		info.InsufficientCoins = true
	}
	return info, nil
}

// effectiveLevel prefers an active subscription row over the cached level
// field on the user.
func (s *RoomQuotaService) effectiveLevel(ctx context.Context, q repository.Querier, user *model.User) string {
	level, ok, err := s.repos.Subscriptions.ActiveLevel(ctx, q, user.ID, s.now().UTC())
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to read subscription, using cached level")
		return user.SubscriptionLevel
	}
	if ok {
		return level
	}
	if user.SubscriptionLevel == "" {
		return model.LevelBronze
	}
	return user.SubscriptionLevel
}

// CreationResult is what a successful room creation returns.
type CreationResult struct {
	Room  *model.Room `json:"room"`
	Quota *QuotaInfo  `json:"quota"`
	Paid  bool        `json:"paid"`
	Cost  int64       `json:"cost"`
}

// ProcessCreation re-validates the quota, persists the room, bumps the
// month's usage counter and, for an over-quota creation, debits the overage
// cost through the ledger — all in one transaction.
func (s *RoomQuotaService) ProcessCreation(ctx context.Context, userID int64, room *model.Room) (*CreationResult, error) {
	var result CreationResult
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		info, err := s.evaluate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !info.Allowed {
			user, err := s.repos.Users.Get(ctx, tx, userID)
			if err != nil {
				return err
			}
			return apierror.InsufficientCoins(info.Cost, user.Coins)
		}

		room.OwnerID = userID
		if err := s.repos.Rooms.Create(ctx, tx, room); err != nil {
			return err
		}

		now := s.now().UTC()
		if err := s.repos.Usage.Increment(ctx, tx, userID, now.Year(), int(now.Month())); err != nil {
			return err
		}

		if !info.IsFree {
			err := s.ledger.DebitTx(ctx, tx, userID, info.Cost, model.SourceSpend, model.ActionRoomCreation, "Room creation over monthly quota")
			if err != nil {
				return err
			}
			result.Paid = true
			result.Cost = info.Cost
		}

		info.Used++
		result.Room = room
		result.Quota = info
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
