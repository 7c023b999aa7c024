package models

import "time"

type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeWin     Outcome = "win"
	OutcomeLoss    Outcome = "loss"
	OutcomeMegaPot Outcome = "megaPot"
)

// Terminal reports whether the outcome is one a bet never leaves again.
func (o Outcome) Terminal() bool {
	return o == OutcomeWin || o == OutcomeLoss || o == OutcomeMegaPot
}

type TroubleMode string

const (
	TroubleExact  TroubleMode = "Exact"
	TroubleUnder  TroubleMode = "Under"
	TroubleOver   TroubleMode = "Over"
	TroubleNumber TroubleMode = "Number"
)

// CrashBet is an aviator wager. RoundID may be empty until the bet is settled:
// a bet placed during cooldown rides the next round, and the crash sweep stamps
// whatever round it resolved against. All fields stay cjson-safe scalars
// because the settle transition runs as a Lua script over the stored JSON.
type CrashBet struct {
	ID                string    `json:"id"`
	UserID            int64     `json:"user_id"`
	RoundID           string    `json:"round_id,omitempty"`
	Amount            int64     `json:"amount"`
	CashOutMultiplier float64   `json:"cash_out_multiplier"`
	Outcome           Outcome   `json:"outcome"`
	AmountWon         int64     `json:"amount_won"`
	CreatedAt         time.Time `json:"created_at"`
}

// LotteryTicket is an hourly-lottery wager. MatchedNumbers is the literal
// intersection with the draw, kept for display regardless of payout.
type LotteryTicket struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"user_id"`
	DrawID         string    `json:"draw_id,omitempty"`
	Numbers        []int     `json:"numbers"`
	MatchedNumbers []int     `json:"matched_numbers,omitempty"`
	Amount         int64     `json:"amount"`
	Outcome        Outcome   `json:"outcome"`
	AmountWon      int64     `json:"amount_won"`
	CreatedAt      time.Time `json:"created_at"`
}

// TroubleBet is a Double Trouble wager. Number holds the threshold for
// Exact/Under/Over (the range midpoint) or the user's pick for Number mode.
type TroubleBet struct {
	ID        string      `json:"id"`
	UserID    int64       `json:"user_id"`
	DrawID    string      `json:"draw_id,omitempty"`
	Mode      TroubleMode `json:"mode"`
	Number    int         `json:"number"`
	Amount    int64       `json:"amount"`
	Outcome   Outcome     `json:"outcome"`
	AmountWon int64       `json:"amount_won"`
	CreatedAt time.Time   `json:"created_at"`
}
