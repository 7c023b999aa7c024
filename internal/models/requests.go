package models

import (
	"fmt"

	"sixywin-backend/internal/svcerr"
)

type CrashBetRequest struct {
	Amount int64 `json:"amount"`
}

func (r *CrashBetRequest) Validate() error {
	if r.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", svcerr.ErrInvalidBet)
	}
	return nil
}

type CashOutRequest struct {
	RoundID    string  `json:"round_id"`
	Multiplier float64 `json:"multiplier"`
}

func (r *CashOutRequest) Validate() error {
	if r.RoundID == "" {
		return fmt.Errorf("%w: round_id is required", svcerr.ErrInvalidBet)
	}
	if r.Multiplier < 1.0 {
		return fmt.Errorf("%w: multiplier must be at least 1.0", svcerr.ErrInvalidBet)
	}
	return nil
}

type LotteryTicketRequest struct {
	Numbers []int `json:"numbers"`
	Amount  int64 `json:"amount"`
}

func (r *LotteryTicketRequest) Validate() error {
	if r.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", svcerr.ErrInvalidBet)
	}
	if len(r.Numbers) != LotteryNumbersCount {
		return fmt.Errorf("%w: expected %d numbers, got %d",
			svcerr.ErrInvalidBet, LotteryNumbersCount, len(r.Numbers))
	}
	seen := make(map[int]bool, len(r.Numbers))
	for _, n := range r.Numbers {
		if n < LotteryMinimumNumber || n > LotteryMaximumNumber {
			return fmt.Errorf("%w: number %d out of range [%d, %d]",
				svcerr.ErrInvalidBet, n, LotteryMinimumNumber, LotteryMaximumNumber)
		}
		if seen[n] {
			return fmt.Errorf("%w: duplicate number %d", svcerr.ErrInvalidBet, n)
		}
		seen[n] = true
	}
	return nil
}

type TroubleBetRequest struct {
	Mode   TroubleMode `json:"mode"`
	Number int         `json:"number"`
	Amount int64       `json:"amount"`
}

func (r *TroubleBetRequest) Validate() error {
	if r.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", svcerr.ErrInvalidBet)
	}
	switch r.Mode {
	case TroubleExact, TroubleUnder, TroubleOver:
	case TroubleNumber:
		if r.Number < 1 || r.Number > MaxTroubleNumber {
			return fmt.Errorf("%w: number %d out of range [1, %d]",
				svcerr.ErrInvalidBet, r.Number, MaxTroubleNumber)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", svcerr.ErrInvalidBet, r.Mode)
	}
	return nil
}

// ThresholdNumber is the number a trouble bet is stored with: the user's pick
// for Number mode, the range midpoint for everything else.
func (r *TroubleBetRequest) ThresholdNumber() int {
	if r.Mode == TroubleNumber {
		return r.Number
	}
	return MaxTroubleNumber / 2
}
