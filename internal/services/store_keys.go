package services

import "time"

const (
	KeyWallet             = "wallet:%d"
	KeyCrashRound         = "round:aviator:%s"
	KeyCrashRoundIndex    = "rounds:aviator"
	KeyCrashRoundBets     = "round:aviator:%s:bets"
	KeyCrashBet           = "bet:aviator:%s"
	KeyCrashPendingSet    = "bets:aviator:pending"
	KeyUserCrashPending   = "user:%d:aviator:pending"
	KeyUserCrashBets      = "user:%d:aviator:bets"
	KeyLotteryDraw        = "draw:lottery:%s"
	KeyLotteryDrawIndex   = "draws:lottery"
	KeyLotteryTicket      = "ticket:lottery:%s"
	KeyLotteryPendingSet  = "tickets:lottery:pending"
	KeyUserLotteryTickets = "user:%d:lottery:tickets"
	KeyTroubleDraw        = "draw:trouble:%s"
	KeyTroubleDrawIndex   = "draws:trouble"
	KeyTroubleBet         = "bet:trouble:%s"
	KeyTroublePendingSet  = "bets:trouble:pending"
	KeyUserTroubleBets    = "user:%d:trouble:bets"

	// Settled bets expire on their own; rounds and draws are trimmed to a
	// fixed retention window instead.
	TTLSettledBet = 24 * time.Hour

	KeepCrashRounds  = 5
	KeepLotteryDraws = 24
	KeepTroubleDraws = 120
)
