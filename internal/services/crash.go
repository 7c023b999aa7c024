package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sixywin-backend/internal/logger"
	"sixywin-backend/internal/models"
	"sixywin-backend/internal/svcerr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CrashConfig struct {
	TickInterval      time.Duration
	CountdownSeconds  int
	CountdownInterval time.Duration
	MaxMultiplier     float64
	Backoff           time.Duration
	KeepRounds        int64
}

func DefaultCrashConfig() CrashConfig {
	return CrashConfig{
		TickInterval:      110 * time.Millisecond,
		CountdownSeconds:  10,
		CountdownInterval: time.Second,
		MaxMultiplier:     5.0,
		Backoff:           5 * time.Second,
		KeepRounds:        KeepCrashRounds,
	}
}

// CrashEngine runs the aviator round loop and is the only writer of round
// state. Bet placement and cash-out arrive concurrently from the handlers;
// the bet outcome compare-and-set in the store keeps them from racing the
// crash sweep into a double settlement.
type CrashEngine struct {
	store *Store
	bc    Broadcaster
	cfg   CrashConfig

	mu         sync.Mutex
	round      *models.CrashRound
	multiplier float64
}

func NewCrashEngine(store *Store, bc Broadcaster, cfg CrashConfig) *CrashEngine {
	return &CrashEngine{store: store, bc: bc, cfg: cfg}
}

// Run drives the round loop until ctx is cancelled. A failed round is logged
// and followed by a fixed backoff; the loop itself never exits on error.
func (e *CrashEngine) Run(ctx context.Context) {
	for {
		if err := e.runRound(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Log.Error("crash round failed, backing off",
				zap.Error(err), zap.Duration("backoff", e.cfg.Backoff))
			select {
			case <-time.After(e.cfg.Backoff):
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (e *CrashEngine) runRound(ctx context.Context) error {
	round := &models.CrashRound{
		ID:              uuid.NewString(),
		CrashMultiplier: 1.0,
		Status:          models.RoundOpen,
		StartedAt:       time.Now(),
	}
	if err := e.store.SaveCrashRound(ctx, round); err != nil {
		return fmt.Errorf("failed to open round: %v", err)
	}

	e.setCurrent(round, 1.0)
	e.bc.Broadcast(models.NewCrashRoundMessage("New aviator round started", round, 1.0))

	crashPoint := SampleCrashPoint(e.cfg.MaxMultiplier)
	multiplier := 1.0

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		multiplier = NextMultiplier(multiplier)
		if multiplier >= crashPoint {
			break
		}
		e.setMultiplier(multiplier)
		e.bc.Broadcast(models.NewCrashRoundMessage("Multiplier update", round, multiplier))
	}

	// Crashed. Clamp, persist the final state, then sweep.
	now := time.Now()
	round.Status = models.RoundResolved
	round.CrashMultiplier = crashPoint
	round.EndedAt = now
	round.NextRoundAt = now.Add(time.Duration(e.cfg.CountdownSeconds) * e.cfg.CountdownInterval)
	if err := e.store.SaveCrashRound(ctx, round); err != nil {
		return fmt.Errorf("failed to resolve round: %v", err)
	}

	e.setCurrent(round, crashPoint)
	e.bc.Broadcast(models.NewCrashRoundMessage("Multiplier update", round, crashPoint))

	e.sweepPending(ctx, round)

	if err := e.store.TrimCrashRounds(ctx, e.cfg.KeepRounds); err != nil {
		logger.Log.Warn("failed to trim old rounds", zap.Error(err))
	}

	for i := e.cfg.CountdownSeconds; i > 0; i-- {
		e.bc.Broadcast(models.NewCountdownMessage(i))
		select {
		case <-time.After(e.cfg.CountdownInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// sweepPending marks every still-pending aviator bet, whatever round it was
// placed against, as a loss on this round. This is the guaranteed settlement
// path for bets nobody cashed out; a bet the cash-out path settled first is
// skipped via ErrAlreadySettled.
func (e *CrashEngine) sweepPending(ctx context.Context, round *models.CrashRound) {
	bets, err := e.store.PendingCrashBets(ctx)
	if err != nil {
		logger.Log.Error("failed to load pending bets for sweep", zap.Error(err))
		return
	}

	for _, bet := range bets {
		_, err := e.store.SettleCrashBet(ctx, bet.ID,
			models.OutcomeLoss, 0, round.CrashMultiplier, round.ID)
		if err != nil && !errors.Is(err, svcerr.ErrAlreadySettled) {
			logger.Log.Error("failed to sweep bet",
				zap.String("bet_id", bet.ID), zap.Error(err))
		}
	}
}

func (e *CrashEngine) setCurrent(round *models.CrashRound, multiplier float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.round = round
	e.multiplier = multiplier
}

func (e *CrashEngine) setMultiplier(m float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.multiplier = m
}

// CurrentRound returns a snapshot of the round in play and its live
// multiplier. Nil round means the loop has not opened one yet.
func (e *CrashEngine) CurrentRound() (*models.CrashRound, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round == nil {
		return nil, 0
	}
	snapshot := *e.round
	return &snapshot, e.multiplier
}

type CrashBetResult struct {
	Bet    *models.CrashBet `json:"bet"`
	Wallet *models.Wallet   `json:"wallet"`
}

// PlaceBet debits the stake and creates a pending bet against the round in
// play (or the next one, when placed during cooldown). A user holds at most
// one pending bet; a second placement is rejected and the stake refunded.
func (e *CrashEngine) PlaceBet(ctx context.Context, userID int64, req *models.CrashBetRequest) (*CrashBetResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := e.store.PendingCrashBet(ctx, userID); err == nil {
		return nil, fmt.Errorf("%w: a pending bet already exists", svcerr.ErrInvalidBet)
	}

	wallet, err := e.store.DebitWallet(ctx, userID, req.Amount)
	if err != nil {
		return nil, err
	}

	var roundID string
	if round, _ := e.CurrentRound(); round != nil && round.Status == models.RoundOpen {
		roundID = round.ID
	}

	bet := &models.CrashBet{
		ID:        uuid.NewString(),
		UserID:    userID,
		RoundID:   roundID,
		Amount:    req.Amount,
		Outcome:   models.OutcomePending,
		CreatedAt: time.Now(),
	}
	if err := e.store.CreateCrashBet(ctx, bet); err != nil {
		if _, rerr := e.store.RefundWallet(ctx, userID, req.Amount); rerr != nil {
			logger.Log.Error("failed to refund stake",
				zap.Int64("user_id", userID), zap.Error(rerr))
		}
		return nil, err
	}

	e.bc.SendToUser(userID, models.NewWalletUpdateMessage(wallet))
	return &CrashBetResult{Bet: bet, Wallet: wallet}, nil
}

// CashOut settles the user's pending bet as a win at the requested multiplier.
// The referenced round must exist and the pending-to-win transition is a
// compare-and-set: if the crash sweep settled the bet first, the request fails
// with no wallet effect.
func (e *CrashEngine) CashOut(ctx context.Context, userID int64, req *models.CashOutRequest) (*CrashBetResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Multiplier > e.cfg.MaxMultiplier {
		return nil, fmt.Errorf("%w: multiplier %.2f above maximum %.2f",
			svcerr.ErrInvalidBet, req.Multiplier, e.cfg.MaxMultiplier)
	}

	if _, err := e.store.GetCrashRound(ctx, req.RoundID); err != nil {
		return nil, err
	}

	bet, err := e.store.PendingCrashBet(ctx, userID)
	if err != nil {
		return nil, err
	}

	amountWon := CrashWinnings(bet.Amount, req.Multiplier)
	settled, err := e.store.SettleCrashBet(ctx, bet.ID,
		models.OutcomeWin, amountWon, req.Multiplier, req.RoundID)
	if err != nil {
		if errors.Is(err, svcerr.ErrAlreadySettled) {
			return nil, svcerr.ErrNoPendingBet
		}
		return nil, err
	}

	wallet, err := e.store.CreditWallet(ctx, userID, amountWon)
	if err != nil {
		return nil, fmt.Errorf("failed to credit winnings: %v", err)
	}

	e.bc.SendToUser(userID, models.NewWalletUpdateMessage(wallet))
	return &CrashBetResult{Bet: settled, Wallet: wallet}, nil
}

// History returns the retained recent rounds, newest first.
func (e *CrashEngine) History(ctx context.Context) ([]*models.CrashRound, error) {
	return e.store.RecentCrashRounds(ctx, e.cfg.KeepRounds)
}

// UserHistory returns the user's recent aviator bets, newest first.
func (e *CrashEngine) UserHistory(ctx context.Context, userID int64) ([]*models.CrashBet, error) {
	return e.store.UserCrashBets(ctx, userID, models.UserHistoryPageSize)
}
