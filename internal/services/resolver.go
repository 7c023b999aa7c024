package services

import (
	"math"
	"math/rand"
	"sort"

	"sixywin-backend/internal/models"
)

// Pure outcome resolution: drawn result + bet payload + wager in, outcome and
// winnings out. No storage, no clocks.

// DrawLotteryNumbers samples the configured count of unique numbers from the
// lottery range, sorted ascending.
func DrawLotteryNumbers() []int {
	return randomUniqueNumbers(models.LotteryNumbersCount,
		models.LotteryMinimumNumber, models.LotteryMaximumNumber)
}

func randomUniqueNumbers(count, min, max int) []int {
	seen := make(map[int]bool, count)
	numbers := make([]int, 0, count)
	for len(numbers) < count {
		n := rand.Intn(max-min+1) + min
		if seen[n] {
			continue
		}
		seen[n] = true
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// MatchedNumbers returns the literal intersection of a ticket with the draw,
// preserving the ticket's order. Used for display, independent of scoring.
func MatchedNumbers(ticket, drawn []int) []int {
	drawnSet := make(map[int]bool, len(drawn))
	for _, n := range drawn {
		drawnSet[n] = true
	}
	matched := make([]int, 0, len(ticket))
	for _, n := range ticket {
		if drawnSet[n] {
			matched = append(matched, n)
		}
	}
	return matched
}

// ResolveLotteryTicket scores a ticket against the drawn numbers. A full match
// pays the mega pot regardless of wager; anything else pays wager times the
// configured multiplier for the match count, 0 when no multiplier is set.
func ResolveLotteryTicket(numbers, drawn []int, wager int64) (models.Outcome, []int, int64) {
	matched := MatchedNumbers(numbers, drawn)

	if len(matched) == models.LotteryNumbersCount {
		return models.OutcomeMegaPot, matched, models.MegaPotAmount
	}

	multiplier := models.LotteryMultipliers[len(matched)]
	if multiplier == 0 {
		return models.OutcomeLoss, matched, 0
	}
	return models.OutcomeWin, matched, wager * multiplier
}

// DrawTroubleNumber samples the Double Trouble result in [1, max].
func DrawTroubleNumber() int {
	return rand.Intn(models.MaxTroubleNumber) + 1
}

// ResolveTroubleBet scores one bet against the drawn number. Exactly one mode
// applies; a non-matching condition is a loss paying nothing.
func ResolveTroubleBet(mode models.TroubleMode, number, drawn int, wager int64) (models.Outcome, int64) {
	var win bool
	var payout int64

	switch mode {
	case models.TroubleExact:
		win = drawn == number
		payout = models.TroublePayoutExact
	case models.TroubleUnder:
		win = drawn < number
		payout = models.TroublePayoutUnder
	case models.TroubleOver:
		win = drawn > number
		payout = models.TroublePayoutOver
	case models.TroubleNumber:
		win = drawn == number
		payout = models.TroublePayoutNumber
	default:
		return models.OutcomeLoss, 0
	}

	if !win {
		return models.OutcomeLoss, 0
	}
	return models.OutcomeWin, wager * payout
}

// SampleCrashPoint draws the multiplier a crash round will terminate at:
// 65% in [1.0, 2.0), 25% in [2.0, 0.5*max), 8% in [0.5*max, 0.8*max),
// 2% in [0.8*max, max]. Rounded to two decimals, never below 1.0.
func SampleCrashPoint(max float64) float64 {
	r := rand.Float64()
	var m float64

	switch {
	case r < 0.65:
		m = 1 + rand.Float64()
	case r < 0.90:
		m = 2 + rand.Float64()*(max*0.5-2)
	case r < 0.98:
		m = max*0.5 + rand.Float64()*(max*0.3)
	default:
		m = max*0.8 + rand.Float64()*(max*0.2)
	}

	return math.Max(1.0, round2(m))
}

// NextMultiplier advances the ramp one tick: a fixed increment plus a term
// proportional to the current value, so growth accelerates.
func NextMultiplier(m float64) float64 {
	return round2(m + 0.01 + m*0.005)
}

// CrashWinnings is what a cash-out at the given multiplier pays.
func CrashWinnings(wager int64, multiplier float64) int64 {
	return int64(math.Ceil(float64(wager) * multiplier))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
