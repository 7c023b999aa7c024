package models

import (
	"fmt"

	"sixywin-backend/internal/svcerr"
)

// Wallet is the per-user dual balance every game settles against. Spendable
// coins are debited before winnings; both must stay non-negative. Field names
// line up with the Lua scripts in services that mutate the stored JSON.
type Wallet struct {
	UserID       int64 `json:"user_id"`
	Spendable    int64 `json:"spendable"`
	Winnings     int64 `json:"winnings"`
	TotalWon     int64 `json:"total_won"`
	DailyWagered int64 `json:"daily_wagered"`
}

func NewWallet(userID int64) *Wallet {
	return &Wallet{
		UserID:    userID,
		Spendable: StartingSpendable,
	}
}

// Debit takes amount from the wallet, draining Spendable before Winnings, and
// bumps DailyWagered. On insufficient total funds the wallet is left unchanged.
func (w *Wallet) Debit(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: non-positive amount %d", svcerr.ErrInvalidBet, amount)
	}
	if w.Spendable+w.Winnings < amount {
		return svcerr.ErrInsufficientFunds
	}

	if w.Spendable >= amount {
		w.Spendable -= amount
	} else {
		w.Winnings -= amount - w.Spendable
		w.Spendable = 0
	}
	w.DailyWagered += amount

	if w.Spendable < 0 || w.Winnings < 0 {
		panic(fmt.Sprintf("wallet %d negative after debit: spendable=%d winnings=%d",
			w.UserID, w.Spendable, w.Winnings))
	}
	return nil
}

// Credit adds won coins to Winnings and the lifetime TotalWon counter.
func (w *Wallet) Credit(amount int64) {
	if amount < 0 {
		return
	}
	w.Winnings += amount
	w.TotalWon += amount
}

func (w *Wallet) Total() int64 {
	return w.Spendable + w.Winnings
}
