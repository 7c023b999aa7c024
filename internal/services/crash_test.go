package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sixywin-backend/internal/models"
	"sixywin-backend/internal/svcerr"
)

// recordingBroadcaster captures fan-out traffic so tests can assert on it
// without a websocket in the loop.
type recordingBroadcaster struct {
	mu        sync.Mutex
	broadcast []models.Message
	direct    map[int64][]models.Message
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{direct: make(map[int64][]models.Message)}
}

func (b *recordingBroadcaster) Broadcast(msg models.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broadcast = append(b.broadcast, msg)
}

func (b *recordingBroadcaster) SendToUser(userID int64, msg models.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.direct[userID] = append(b.direct[userID], msg)
}

func (b *recordingBroadcaster) directTypes(userID int64) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, 0, len(b.direct[userID]))
	for _, msg := range b.direct[userID] {
		types = append(types, msg.Type)
	}
	return types
}

func (b *recordingBroadcaster) broadcastTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, 0, len(b.broadcast))
	for _, msg := range b.broadcast {
		types = append(types, msg.Type)
	}
	return types
}

func testCrashConfig() CrashConfig {
	return CrashConfig{
		TickInterval:      time.Millisecond,
		CountdownSeconds:  2,
		CountdownInterval: time.Millisecond,
		MaxMultiplier:     5.0,
		Backoff:           time.Millisecond,
		KeepRounds:        5,
	}
}

func TestPlaceBetDebitsAndRegistersPending(t *testing.T) {
	store := newTestStore(t)
	bc := newRecordingBroadcaster()
	engine := NewCrashEngine(store, bc, testCrashConfig())
	ctx := context.Background()

	result, err := engine.PlaceBet(ctx, 1, &models.CrashBetRequest{Amount: 100})
	require.NoError(t, err)

	assert.Equal(t, int64(900), result.Wallet.Spendable)
	assert.Equal(t, models.OutcomePending, result.Bet.Outcome)

	pending, err := store.PendingCrashBet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, result.Bet.ID, pending.ID)
}

func TestPlaceBetRejectsSecondPending(t *testing.T) {
	store := newTestStore(t)
	engine := NewCrashEngine(store, newRecordingBroadcaster(), testCrashConfig())
	ctx := context.Background()

	_, err := engine.PlaceBet(ctx, 1, &models.CrashBetRequest{Amount: 100})
	require.NoError(t, err)

	_, err = engine.PlaceBet(ctx, 1, &models.CrashBetRequest{Amount: 50})
	require.ErrorIs(t, err, svcerr.ErrInvalidBet)

	// The rejected stake was never taken.
	wallet, err := store.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(900), wallet.Spendable)
}

func TestPlaceBetInsufficientFunds(t *testing.T) {
	store := newTestStore(t)
	engine := NewCrashEngine(store, newRecordingBroadcaster(), testCrashConfig())

	_, err := engine.PlaceBet(context.Background(), 1, &models.CrashBetRequest{Amount: models.StartingSpendable + 1})
	require.ErrorIs(t, err, svcerr.ErrInsufficientFunds)
}

func TestCashOutPaysCeilingOfStakeTimesMultiplier(t *testing.T) {
	store := newTestStore(t)
	bc := newRecordingBroadcaster()
	engine := NewCrashEngine(store, bc, testCrashConfig())
	ctx := context.Background()

	round := &models.CrashRound{ID: "round-1", Status: models.RoundOpen, StartedAt: time.Now()}
	require.NoError(t, store.SaveCrashRound(ctx, round))

	_, err := engine.PlaceBet(ctx, 1, &models.CrashBetRequest{Amount: 100})
	require.NoError(t, err)

	result, err := engine.CashOut(ctx, 1, &models.CashOutRequest{RoundID: "round-1", Multiplier: 2.5})
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeWin, result.Bet.Outcome)
	assert.Equal(t, int64(250), result.Bet.AmountWon)
	assert.Equal(t, 2.5, result.Bet.CashOutMultiplier)
	assert.Equal(t, int64(900), result.Wallet.Spendable)
	assert.Equal(t, int64(250), result.Wallet.Winnings)

	// The bet is gone from pending, so a second cash-out fails.
	_, err = engine.CashOut(ctx, 1, &models.CashOutRequest{RoundID: "round-1", Multiplier: 2.5})
	require.ErrorIs(t, err, svcerr.ErrNoPendingBet)
}

func TestCashOutValidation(t *testing.T) {
	store := newTestStore(t)
	engine := NewCrashEngine(store, newRecordingBroadcaster(), testCrashConfig())
	ctx := context.Background()

	_, err := engine.CashOut(ctx, 1, &models.CashOutRequest{RoundID: "", Multiplier: 2.0})
	require.ErrorIs(t, err, svcerr.ErrInvalidBet)

	_, err = engine.CashOut(ctx, 1, &models.CashOutRequest{RoundID: "r", Multiplier: 0.5})
	require.ErrorIs(t, err, svcerr.ErrInvalidBet)

	_, err = engine.CashOut(ctx, 1, &models.CashOutRequest{RoundID: "r", Multiplier: 6.0})
	require.ErrorIs(t, err, svcerr.ErrInvalidBet)

	_, err = engine.CashOut(ctx, 1, &models.CashOutRequest{RoundID: "missing", Multiplier: 2.0})
	require.ErrorIs(t, err, svcerr.ErrRoundNotFound)
}

func TestCrashSweepSettlesPendingBetsAsLosses(t *testing.T) {
	store := newTestStore(t)
	bc := newRecordingBroadcaster()
	engine := NewCrashEngine(store, bc, testCrashConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := engine.PlaceBet(ctx, 1, &models.CrashBetRequest{Amount: 100})
	require.NoError(t, err)

	go engine.Run(ctx)

	// The round loop eventually crashes and sweeps the bet to a loss.
	require.Eventually(t, func() bool {
		bet, err := store.GetCrashBet(ctx, result.Bet.ID)
		return err == nil && bet.Outcome == models.OutcomeLoss
	}, 5*time.Second, 5*time.Millisecond)
	cancel()

	bet, err := store.GetCrashBet(context.Background(), result.Bet.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bet.AmountWon)
	assert.NotEmpty(t, bet.RoundID)

	// Losing pays nothing back.
	wallet, err := store.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(900), wallet.Spendable)
	assert.Equal(t, int64(0), wallet.Winnings)

	// A cash-out after the sweep finds nothing to settle.
	_, err = engine.CashOut(context.Background(), 1, &models.CashOutRequest{RoundID: bet.RoundID, Multiplier: 1.5})
	require.ErrorIs(t, err, svcerr.ErrNoPendingBet)
}

func TestRoundLoopBroadcastsRampAndCountdown(t *testing.T) {
	store := newTestStore(t)
	bc := newRecordingBroadcaster()
	engine := NewCrashEngine(store, bc, testCrashConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	require.Eventually(t, func() bool {
		var sawRound, sawCountdown bool
		for _, typ := range bc.broadcastTypes() {
			switch typ {
			case models.MsgAviatorDraw:
				sawRound = true
			case models.MsgAviatorCount:
				sawCountdown = true
			}
		}
		return sawRound && sawCountdown
	}, 5*time.Second, 5*time.Millisecond)
	cancel()

	rounds, err := engine.History(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, rounds)
	assert.LessOrEqual(t, len(rounds), 5)
}

func TestCurrentRoundSnapshot(t *testing.T) {
	store := newTestStore(t)
	engine := NewCrashEngine(store, newRecordingBroadcaster(), testCrashConfig())

	round, multiplier := engine.CurrentRound()
	assert.Nil(t, round)
	assert.Zero(t, multiplier)

	engine.setCurrent(&models.CrashRound{ID: "r1", Status: models.RoundOpen}, 1.37)

	round, multiplier = engine.CurrentRound()
	require.NotNil(t, round)
	assert.Equal(t, "r1", round.ID)
	assert.Equal(t, 1.37, multiplier)

	// Mutating the snapshot does not touch engine state.
	round.ID = "mutated"
	again, _ := engine.CurrentRound()
	assert.Equal(t, "r1", again.ID)
}

func TestUserHistoryReturnsRecentBets(t *testing.T) {
	store := newTestStore(t)
	engine := NewCrashEngine(store, newRecordingBroadcaster(), testCrashConfig())
	ctx := context.Background()

	result, err := engine.PlaceBet(ctx, 1, &models.CrashBetRequest{Amount: 100})
	require.NoError(t, err)

	bets, err := engine.UserHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, bets, 1)
	assert.Equal(t, result.Bet.ID, bets[0].ID)
}
