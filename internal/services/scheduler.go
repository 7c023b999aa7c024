package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sixywin-backend/internal/logger"
	"sixywin-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SchedulerConfig struct {
	LotteryInterval     time.Duration
	TroubleInterval     time.Duration
	MaintenanceInterval time.Duration
	TroubleHistorySize  int64
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		LotteryInterval:     time.Hour,
		TroubleInterval:     30 * time.Second,
		MaintenanceInterval: 24 * time.Hour,
		TroubleHistorySize:  10,
	}
}

// DrawScheduler owns the timer-driven games: the hourly lottery and the
// 30-second Double Trouble draw, plus daily maintenance. Each firing settles
// every pending bet for that game in one batch, one wallet credit per user.
type DrawScheduler struct {
	store *Store
	bc    Broadcaster
	cfg   SchedulerConfig

	ctx    context.Context
	cancel context.CancelFunc

	// Serializes lottery settlement so the read path's create-if-missing and
	// the timer cannot both settle the same window's tickets.
	drawMu sync.Mutex

	// Overridable in tests; default to the real samplers.
	lotteryNumbers func() []int
	troubleNumber  func() int
}

func NewDrawScheduler(store *Store, bc Broadcaster, cfg SchedulerConfig) *DrawScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &DrawScheduler{
		store:          store,
		bc:             bc,
		cfg:            cfg,
		ctx:            ctx,
		cancel:         cancel,
		lotteryNumbers: DrawLotteryNumbers,
		troubleNumber:  DrawTroubleNumber,
	}
}

// Start launches the draw loops. The lottery loop aligns itself to the top of
// the hour before settling into its fixed cadence.
func (s *DrawScheduler) Start() {
	if _, err := s.EnsureLotteryDraw(s.ctx); err != nil {
		logger.Log.Error("failed to ensure initial lottery draw", zap.Error(err))
	}

	go s.runLotteryLoop()
	go s.runTroubleLoop()
	go s.runMaintenanceLoop()
}

func (s *DrawScheduler) Stop() {
	s.cancel()
}

func (s *DrawScheduler) runLotteryLoop() {
	for {
		next := time.Now().Truncate(s.cfg.LotteryInterval).Add(s.cfg.LotteryInterval)
		select {
		case <-time.After(time.Until(next)):
		case <-s.ctx.Done():
			return
		}
		// Ensure rather than run unconditionally: if a read arriving at the
		// boundary already created this window's draw, the timer must not
		// settle the same tickets again.
		if _, err := s.EnsureLotteryDraw(s.ctx); err != nil {
			logger.Log.Error("lottery draw failed", zap.Error(err))
		}
	}
}

func (s *DrawScheduler) runTroubleLoop() {
	ticker := time.NewTicker(s.cfg.TroubleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunTroubleDraw(s.ctx); err != nil {
				logger.Log.Error("double trouble draw failed", zap.Error(err))
			}
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *DrawScheduler) runMaintenanceLoop() {
	for {
		// Fire on the fixed daily boundary, not at an offset from process
		// start, so the wagered counters reset at the same wall-clock time
		// across restarts.
		next := time.Now().Truncate(s.cfg.MaintenanceInterval).Add(s.cfg.MaintenanceInterval)
		select {
		case <-time.After(time.Until(next)):
		case <-s.ctx.Done():
			return
		}
		s.runMaintenance(s.ctx)
	}
}

func (s *DrawScheduler) runMaintenance(ctx context.Context) {
	if err := s.store.ResetDailyWagered(ctx); err != nil {
		logger.Log.Error("failed to reset daily wagered", zap.Error(err))
	}
	if err := s.store.TrimDrawIndexes(ctx); err != nil {
		logger.Log.Error("failed to trim draw history", zap.Error(err))
	}
}

// RunLotteryDraw samples the winning numbers, settles every pending ticket,
// persists them in one batch, applies one aggregated credit per user and fans
// the result out. Holds drawMu so no two settlements ever load the same
// pending tickets.
func (s *DrawScheduler) RunLotteryDraw(ctx context.Context, drawDate time.Time) (*models.LotteryDraw, error) {
	s.drawMu.Lock()
	defer s.drawMu.Unlock()
	return s.runLotteryDraw(ctx, drawDate)
}

func (s *DrawScheduler) runLotteryDraw(ctx context.Context, drawDate time.Time) (*models.LotteryDraw, error) {
	tickets, err := s.store.PendingLotteryTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending tickets: %v", err)
	}

	draw := &models.LotteryDraw{
		ID:             uuid.NewString(),
		WinningNumbers: s.lotteryNumbers(),
		DrawDate:       drawDate,
		NextDrawDate:   drawDate.Truncate(s.cfg.LotteryInterval).Add(s.cfg.LotteryInterval),
	}

	credits := make(map[int64]int64)
	affected := make(map[int64]bool)
	for _, ticket := range tickets {
		outcome, matched, amountWon := ResolveLotteryTicket(ticket.Numbers, draw.WinningNumbers, ticket.Amount)
		ticket.DrawID = draw.ID
		ticket.Outcome = outcome
		ticket.MatchedNumbers = matched
		ticket.AmountWon = amountWon

		affected[ticket.UserID] = true
		if amountWon > 0 {
			credits[ticket.UserID] += amountWon
			draw.TotalWinners++
			draw.TotalPrize += amountWon
		}
	}

	if err := s.store.SaveLotteryDraw(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to save draw: %v", err)
	}
	if err := s.store.SaveSettledLotteryTickets(ctx, tickets); err != nil {
		return nil, fmt.Errorf("failed to save settled tickets: %v", err)
	}

	s.settleWallets(ctx, affected, credits)
	s.bc.Broadcast(models.NewLotteryDrawMessage(draw))

	logger.Log.Info("lottery draw settled",
		zap.String("draw_id", draw.ID),
		zap.Int("tickets", len(tickets)),
		zap.Int("winners", draw.TotalWinners))
	return draw, nil
}

// EnsureLotteryDraw creates the draw for the current hour window if the read
// path arrives before the timer has fired, exactly once.
func (s *DrawScheduler) EnsureLotteryDraw(ctx context.Context) (*models.LotteryDraw, error) {
	s.drawMu.Lock()
	defer s.drawMu.Unlock()

	windowStart := time.Now().Truncate(s.cfg.LotteryInterval)

	latest, err := s.store.LatestLotteryDraw(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil && !latest.DrawDate.Before(windowStart) {
		return latest, nil
	}
	return s.runLotteryDraw(ctx, windowStart)
}

// RunTroubleDraw samples the winning number, settles every pending bet and
// broadcasts the refreshed status. Each affected user additionally gets a
// targeted wallet update.
func (s *DrawScheduler) RunTroubleDraw(ctx context.Context) (*models.TroubleDraw, error) {
	now := time.Now()
	draw := &models.TroubleDraw{
		ID:            uuid.NewString(),
		WinningNumber: s.troubleNumber(),
		CreatedAt:     now,
		NextDrawTime:  now.Add(s.cfg.TroubleInterval),
	}

	bets, err := s.store.PendingTroubleBets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending bets: %v", err)
	}

	credits := make(map[int64]int64)
	affected := make(map[int64]bool)
	for _, bet := range bets {
		outcome, amountWon := ResolveTroubleBet(bet.Mode, bet.Number, draw.WinningNumber, bet.Amount)
		bet.DrawID = draw.ID
		bet.Outcome = outcome
		bet.AmountWon = amountWon

		affected[bet.UserID] = true
		if amountWon > 0 {
			credits[bet.UserID] += amountWon
		}
	}

	if err := s.store.SaveTroubleDraw(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to save draw: %v", err)
	}
	if err := s.store.SaveSettledTroubleBets(ctx, bets); err != nil {
		return nil, fmt.Errorf("failed to save settled bets: %v", err)
	}

	s.settleWallets(ctx, affected, credits)

	history, err := s.store.RecentTroubleDraws(ctx, s.cfg.TroubleHistorySize+1)
	if err != nil {
		return nil, err
	}
	current, past := splitTroubleHistory(history)
	s.bc.Broadcast(models.NewTroubleStatusMessage(current, past))

	return draw, nil
}

// TroubleStatus returns the latest draw plus recent history for the read path.
func (s *DrawScheduler) TroubleStatus(ctx context.Context) (*models.TroubleDraw, []*models.TroubleDraw, error) {
	history, err := s.store.RecentTroubleDraws(ctx, s.cfg.TroubleHistorySize+1)
	if err != nil {
		return nil, nil, err
	}
	current, past := splitTroubleHistory(history)
	return current, past, nil
}

func splitTroubleHistory(draws []*models.TroubleDraw) (*models.TroubleDraw, []*models.TroubleDraw) {
	if len(draws) == 0 {
		return nil, nil
	}
	return draws[0], draws[1:]
}

// settleWallets applies one aggregated credit per winning user and notifies
// every user whose bet settled this draw, losers included.
func (s *DrawScheduler) settleWallets(ctx context.Context, affected map[int64]bool, credits map[int64]int64) {
	for userID := range affected {
		var wallet *models.Wallet
		var err error
		if amount := credits[userID]; amount > 0 {
			wallet, err = s.store.CreditWallet(ctx, userID, amount)
		} else {
			wallet, err = s.store.GetWallet(ctx, userID)
		}
		if err != nil {
			logger.Log.Error("failed to settle wallet",
				zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		s.bc.SendToUser(userID, models.NewWalletUpdateMessage(wallet))
	}
}

// PlaceLotteryTicket debits the stake and stores a pending ticket for the next
// hourly draw.
func (s *DrawScheduler) PlaceLotteryTicket(ctx context.Context, userID int64, req *models.LotteryTicketRequest) (*models.LotteryTicket, *models.Wallet, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	wallet, err := s.store.DebitWallet(ctx, userID, req.Amount)
	if err != nil {
		return nil, nil, err
	}

	ticket := &models.LotteryTicket{
		ID:        uuid.NewString(),
		UserID:    userID,
		Numbers:   req.Numbers,
		Amount:    req.Amount,
		Outcome:   models.OutcomePending,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateLotteryTicket(ctx, ticket); err != nil {
		if _, rerr := s.store.RefundWallet(ctx, userID, req.Amount); rerr != nil {
			logger.Log.Error("failed to refund stake",
				zap.Int64("user_id", userID), zap.Error(rerr))
		}
		return nil, nil, err
	}

	s.bc.SendToUser(userID, models.NewWalletUpdateMessage(wallet))
	return ticket, wallet, nil
}

// PlaceTroubleBet debits the stake and stores a pending bet for the next
// 30-second draw.
func (s *DrawScheduler) PlaceTroubleBet(ctx context.Context, userID int64, req *models.TroubleBetRequest) (*models.TroubleBet, *models.Wallet, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	wallet, err := s.store.DebitWallet(ctx, userID, req.Amount)
	if err != nil {
		return nil, nil, err
	}

	bet := &models.TroubleBet{
		ID:        uuid.NewString(),
		UserID:    userID,
		Mode:      req.Mode,
		Number:    req.ThresholdNumber(),
		Amount:    req.Amount,
		Outcome:   models.OutcomePending,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateTroubleBet(ctx, bet); err != nil {
		if _, rerr := s.store.RefundWallet(ctx, userID, req.Amount); rerr != nil {
			logger.Log.Error("failed to refund stake",
				zap.Int64("user_id", userID), zap.Error(rerr))
		}
		return nil, nil, err
	}

	s.bc.SendToUser(userID, models.NewWalletUpdateMessage(wallet))
	return bet, wallet, nil
}
