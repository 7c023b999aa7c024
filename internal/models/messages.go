package models

import "time"

// Wire message types. Outbound payloads are built only through the
// constructors below so every event on the socket is one of a closed set.
const (
	MsgAviatorDraw   = "aviatorDrawResult_response"
	MsgAviatorCount  = "aviatorCountdown_response"
	MsgLatestDraw    = "latestDraw_response"
	MsgTroubleStatus = "doubleTroubleStatus_response"
	MsgWalletUpdate  = "updatedUser_response"
	MsgPong          = "pong_response"
	MsgError         = "error"
)

type Message struct {
	Type      string  `json:"type"`
	RequestID string  `json:"request_id,omitempty"`
	Payload   Payload `json:"payload"`
}

type Payload struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
}

type CrashRoundData struct {
	Round      *CrashRound `json:"round"`
	Multiplier float64     `json:"multiplier"`
}

type CountdownData struct {
	Countdown int `json:"countdown"`
}

type LotteryDrawData struct {
	Draw         *LotteryDraw `json:"draw"`
	NextDrawTime time.Time    `json:"next_draw_time"`
}

type TroubleStatusData struct {
	Current *TroubleDraw   `json:"current"`
	History []*TroubleDraw `json:"history"`
}

type WalletUpdateData struct {
	Wallet *Wallet `json:"wallet"`
}

type PongData struct {
	Timestamp int64 `json:"timestamp"`
}

func NewCrashRoundMessage(text string, round *CrashRound, multiplier float64) Message {
	return Message{
		Type:      MsgAviatorDraw,
		RequestID: "aviatorDraw",
		Payload:   Payload{Message: text, Success: true, Data: CrashRoundData{Round: round, Multiplier: multiplier}},
	}
}

func NewCountdownMessage(seconds int) Message {
	return Message{
		Type:    MsgAviatorCount,
		Payload: Payload{Message: "Countdown", Success: true, Data: CountdownData{Countdown: seconds}},
	}
}

func NewLotteryDrawMessage(draw *LotteryDraw) Message {
	return Message{
		Type:      MsgLatestDraw,
		RequestID: "draw",
		Payload: Payload{
			Message: "New draw results available",
			Success: true,
			Data:    LotteryDrawData{Draw: draw, NextDrawTime: draw.NextDrawDate},
		},
	}
}

func NewTroubleStatusMessage(current *TroubleDraw, history []*TroubleDraw) Message {
	return Message{
		Type:      MsgTroubleStatus,
		RequestID: "doubleTrouble",
		Payload: Payload{
			Message: "New double trouble data available",
			Success: true,
			Data:    TroubleStatusData{Current: current, History: history},
		},
	}
}

func NewWalletUpdateMessage(wallet *Wallet) Message {
	return Message{
		Type: MsgWalletUpdate,
		Payload: Payload{
			Message: "Your bet results have been updated",
			Success: true,
			Data:    WalletUpdateData{Wallet: wallet},
		},
	}
}

func NewErrorMessage(requestID, text string) Message {
	return Message{
		Type:      MsgError,
		RequestID: requestID,
		Payload:   Payload{Message: text, Success: false},
	}
}

// ClientRequest is an inbound websocket frame. Fetch-style requests carry no
// payload beyond their type; anything else is rejected at the boundary.
type ClientRequest struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
}

const (
	ReqPing          = "ping"
	ReqAviatorRound  = "aviatorRound"
	ReqLatestDraw    = "latestDraw"
	ReqTroubleStatus = "doubleTroubleStatus"
)
