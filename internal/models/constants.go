package models

const (
	StartingSpendable = 1000

	LotteryMinimumNumber = 1
	LotteryMaximumNumber = 49
	LotteryNumbersCount  = 6
	MegaPotAmount        = 1000000

	MaxTroubleNumber = 30

	UserHistoryPageSize = 5
)

// Payout multiplier per lottery match count. Counts without an entry pay 0.
var LotteryMultipliers = map[int]int64{
	6: 100000,
	5: 1000,
	4: 50,
	3: 5,
	2: 2,
}

// Double Trouble payout multipliers per bet mode.
const (
	TroublePayoutExact  int64 = 50
	TroublePayoutOver   int64 = 2
	TroublePayoutUnder  int64 = 2
	TroublePayoutNumber int64 = 10
)
