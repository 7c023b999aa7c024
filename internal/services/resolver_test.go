package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sixywin-backend/internal/models"
)

func TestDrawLotteryNumbers(t *testing.T) {
	for i := 0; i < 100; i++ {
		numbers := DrawLotteryNumbers()

		require.Len(t, numbers, models.LotteryNumbersCount)
		seen := make(map[int]bool)
		for j, n := range numbers {
			assert.GreaterOrEqual(t, n, models.LotteryMinimumNumber)
			assert.LessOrEqual(t, n, models.LotteryMaximumNumber)
			assert.False(t, seen[n], "duplicate number %d", n)
			seen[n] = true
			if j > 0 {
				assert.Greater(t, n, numbers[j-1], "numbers must be sorted")
			}
		}
	}
}

func TestMatchedNumbers(t *testing.T) {
	matched := MatchedNumbers([]int{5, 12, 23, 34, 45, 49}, []int{1, 12, 23, 30, 45, 48})
	assert.Equal(t, []int{12, 23, 45}, matched)

	assert.Empty(t, MatchedNumbers([]int{1, 2, 3}, []int{4, 5, 6}))
}

func TestResolveLotteryTicket(t *testing.T) {
	drawn := []int{3, 11, 19, 27, 35, 43}

	tests := []struct {
		name        string
		numbers     []int
		wager       int64
		wantOutcome models.Outcome
		wantWon     int64
	}{
		{"full match pays mega pot", []int{3, 11, 19, 27, 35, 43}, 100, models.OutcomeMegaPot, models.MegaPotAmount},
		{"mega pot ignores wager", []int{3, 11, 19, 27, 35, 43}, 1, models.OutcomeMegaPot, models.MegaPotAmount},
		{"five matches", []int{3, 11, 19, 27, 35, 44}, 10, models.OutcomeWin, 10000},
		{"four matches", []int{3, 11, 19, 27, 36, 44}, 10, models.OutcomeWin, 500},
		{"three matches", []int{3, 11, 19, 28, 36, 44}, 10, models.OutcomeWin, 50},
		{"two matches", []int{3, 11, 20, 28, 36, 44}, 10, models.OutcomeWin, 20},
		{"one match loses", []int{3, 12, 20, 28, 36, 44}, 10, models.OutcomeLoss, 0},
		{"no matches loses", []int{4, 12, 20, 28, 36, 44}, 10, models.OutcomeLoss, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, matched, won := ResolveLotteryTicket(tt.numbers, drawn, tt.wager)

			assert.Equal(t, tt.wantOutcome, outcome)
			assert.Equal(t, tt.wantWon, won)
			assert.Equal(t, MatchedNumbers(tt.numbers, drawn), matched)
		})
	}
}

func TestResolveTroubleBet(t *testing.T) {
	tests := []struct {
		name        string
		mode        models.TroubleMode
		number      int
		drawn       int
		wager       int64
		wantOutcome models.Outcome
		wantWon     int64
	}{
		{"exact hit", models.TroubleExact, 15, 15, 10, models.OutcomeWin, 500},
		{"exact miss", models.TroubleExact, 15, 14, 10, models.OutcomeLoss, 0},
		{"under wins below threshold", models.TroubleUnder, 15, 14, 10, models.OutcomeWin, 20},
		{"under loses at threshold", models.TroubleUnder, 15, 15, 10, models.OutcomeLoss, 0},
		{"over wins above threshold", models.TroubleOver, 15, 16, 10, models.OutcomeWin, 20},
		{"over loses at threshold", models.TroubleOver, 15, 15, 10, models.OutcomeLoss, 0},
		{"number pick hit", models.TroubleNumber, 15, 15, 10, models.OutcomeWin, 100},
		{"number pick miss", models.TroubleNumber, 7, 15, 10, models.OutcomeLoss, 0},
		{"unknown mode loses", models.TroubleMode("Sideways"), 15, 15, 10, models.OutcomeLoss, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, won := ResolveTroubleBet(tt.mode, tt.number, tt.drawn, tt.wager)

			assert.Equal(t, tt.wantOutcome, outcome)
			assert.Equal(t, tt.wantWon, won)
		})
	}
}

func TestDrawTroubleNumberInRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		n := DrawTroubleNumber()
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, models.MaxTroubleNumber)
	}
}

func TestSampleCrashPointBounds(t *testing.T) {
	const max = 5.0
	for i := 0; i < 10000; i++ {
		p := SampleCrashPoint(max)
		require.GreaterOrEqual(t, p, 1.0)
		require.LessOrEqual(t, p, max)
	}
}

func TestSampleCrashPointDistribution(t *testing.T) {
	const max = 5.0
	const samples = 20000

	var low int
	for i := 0; i < samples; i++ {
		if SampleCrashPoint(max) < 2.0 {
			low++
		}
	}

	// 65% of samples land below 2.0; allow generous slack.
	ratio := float64(low) / samples
	assert.InDelta(t, 0.65, ratio, 0.05)
}

func TestNextMultiplier(t *testing.T) {
	assert.InDelta(t, 1.015, NextMultiplier(1.0), 0.005)
	assert.InDelta(t, 2.02, NextMultiplier(2.0), 0.001)

	// The ramp always moves forward.
	m := 1.0
	for i := 0; i < 500; i++ {
		next := NextMultiplier(m)
		require.Greater(t, next, m)
		m = next
	}
}

func TestCrashWinnings(t *testing.T) {
	assert.Equal(t, int64(200), CrashWinnings(100, 2.0))
	assert.Equal(t, int64(150), CrashWinnings(100, 1.5))
	assert.Equal(t, int64(4), CrashWinnings(3, 1.1)) // 3.3 rounds up
}
