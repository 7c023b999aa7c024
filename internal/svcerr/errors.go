package svcerr

import "errors"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidBet        = errors.New("invalid bet")
	ErrNoPendingBet      = errors.New("no pending bet")
	ErrAlreadySettled    = errors.New("bet already settled")
	ErrRoundNotFound     = errors.New("round not found")
)
