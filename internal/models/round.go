package models

import "time"

type RoundStatus string

const (
	RoundOpen     RoundStatus = "open"
	RoundResolved RoundStatus = "resolved"
)

// CrashRound is one cycle of the aviator game. The live multiplier during the
// ramp is engine memory, not persisted; only the final crash multiplier lands
// here when the round resolves.
type CrashRound struct {
	ID              string      `json:"id"`
	CrashMultiplier float64     `json:"crash_multiplier"`
	Status          RoundStatus `json:"status"`
	StartedAt       time.Time   `json:"started_at"`
	EndedAt         time.Time   `json:"ended_at,omitempty"`
	NextRoundAt     time.Time   `json:"next_round_at,omitempty"`
}

// LotteryDraw is one hourly draw. TotalWinners and TotalPrize are computed at
// draw time so the read path never has to re-scan settled tickets.
type LotteryDraw struct {
	ID             string    `json:"id"`
	WinningNumbers []int     `json:"winning_numbers"`
	DrawDate       time.Time `json:"draw_date"`
	NextDrawDate   time.Time `json:"next_draw_date"`
	TotalWinners   int       `json:"total_winners"`
	TotalPrize     int64     `json:"total_prize"`
}

// TroubleDraw is one 30-second Double Trouble draw.
type TroubleDraw struct {
	ID            string    `json:"id"`
	WinningNumber int       `json:"winning_number"`
	CreatedAt     time.Time `json:"created_at"`
	NextDrawTime  time.Time `json:"next_draw_time"`
}
