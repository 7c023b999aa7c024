package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sixywin-backend/internal/svcerr"
)

func TestNewWalletStartsWithSpendable(t *testing.T) {
	w := NewWallet(42)

	assert.Equal(t, int64(42), w.UserID)
	assert.Equal(t, int64(StartingSpendable), w.Spendable)
	assert.Equal(t, int64(0), w.Winnings)
	assert.Equal(t, int64(0), w.DailyWagered)
}

func TestDebitDrainsSpendableFirst(t *testing.T) {
	w := &Wallet{UserID: 1, Spendable: 100, Winnings: 50}

	require.NoError(t, w.Debit(80))

	assert.Equal(t, int64(20), w.Spendable)
	assert.Equal(t, int64(50), w.Winnings)
	assert.Equal(t, int64(80), w.DailyWagered)
}

func TestDebitSpillsIntoWinnings(t *testing.T) {
	w := &Wallet{UserID: 1, Spendable: 100, Winnings: 50}

	require.NoError(t, w.Debit(120))

	assert.Equal(t, int64(0), w.Spendable)
	assert.Equal(t, int64(30), w.Winnings)
	assert.Equal(t, int64(120), w.DailyWagered)
}

func TestDebitInsufficientLeavesWalletUnchanged(t *testing.T) {
	w := &Wallet{UserID: 1, Spendable: 100, Winnings: 50, DailyWagered: 10}

	err := w.Debit(151)

	require.ErrorIs(t, err, svcerr.ErrInsufficientFunds)
	assert.Equal(t, int64(100), w.Spendable)
	assert.Equal(t, int64(50), w.Winnings)
	assert.Equal(t, int64(10), w.DailyWagered)
}

func TestDebitExactTotal(t *testing.T) {
	w := &Wallet{UserID: 1, Spendable: 100, Winnings: 50}

	require.NoError(t, w.Debit(150))

	assert.Equal(t, int64(0), w.Spendable)
	assert.Equal(t, int64(0), w.Winnings)
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	w := NewWallet(1)

	require.ErrorIs(t, w.Debit(0), svcerr.ErrInvalidBet)
	require.ErrorIs(t, w.Debit(-5), svcerr.ErrInvalidBet)
	assert.Equal(t, int64(StartingSpendable), w.Spendable)
}

func TestDebitAccumulatesDailyWagered(t *testing.T) {
	w := NewWallet(1)

	require.NoError(t, w.Debit(100))
	require.NoError(t, w.Debit(250))

	assert.Equal(t, int64(350), w.DailyWagered)
}

func TestCreditGoesToWinnings(t *testing.T) {
	w := &Wallet{UserID: 1, Spendable: 900, TotalWon: 10}

	w.Credit(200)

	assert.Equal(t, int64(900), w.Spendable)
	assert.Equal(t, int64(200), w.Winnings)
	assert.Equal(t, int64(210), w.TotalWon)
	assert.Equal(t, int64(1100), w.Total())
}
