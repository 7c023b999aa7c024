package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sixywin-backend/internal/models"
	"sixywin-backend/internal/services"
	"sixywin-backend/internal/svcerr"
)

type GameHandler struct {
	engine    *services.CrashEngine
	scheduler *services.DrawScheduler
	store     *services.Store
}

func NewGameHandler(engine *services.CrashEngine, scheduler *services.DrawScheduler, store *services.Store) *GameHandler {
	return &GameHandler{
		engine:    engine,
		scheduler: scheduler,
		store:     store,
	}
}

func (h *GameHandler) PlaceCrashBet(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.CrashBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.engine.PlaceBet(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bet":     result.Bet,
		"wallet":  result.Wallet,
	})
}

func (h *GameHandler) CashOut(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.CashOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.engine.CashOut(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bet":     result.Bet,
		"wallet":  result.Wallet,
	})
}

func (h *GameHandler) CurrentCrashRound(c *gin.Context) {
	round, multiplier := h.engine.CurrentRound()
	if round == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No round in progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"round":      round,
		"multiplier": multiplier,
	})
}

func (h *GameHandler) CrashRoundHistory(c *gin.Context) {
	rounds, err := h.engine.History(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rounds":  rounds,
	})
}

func (h *GameHandler) UserCrashBets(c *gin.Context) {
	userID := c.GetInt64("user_id")

	bets, err := h.engine.UserHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bets":    bets,
	})
}

func (h *GameHandler) PlaceLotteryTicket(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.LotteryTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	ticket, wallet, err := h.scheduler.PlaceLotteryTicket(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ticket":  ticket,
		"wallet":  wallet,
	})
}

func (h *GameHandler) LatestLotteryDraw(c *gin.Context) {
	draw, err := h.scheduler.EnsureLotteryDraw(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"draw":           draw,
		"next_draw_time": draw.NextDrawDate,
	})
}

func (h *GameHandler) UserLotteryTickets(c *gin.Context) {
	userID := c.GetInt64("user_id")

	tickets, err := h.store.UserLotteryTickets(c.Request.Context(), userID, models.UserHistoryPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tickets": tickets,
	})
}

func (h *GameHandler) PlaceTroubleBet(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.TroubleBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	bet, wallet, err := h.scheduler.PlaceTroubleBet(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bet":     bet,
		"wallet":  wallet,
	})
}

func (h *GameHandler) TroubleStatus(c *gin.Context) {
	current, history, err := h.scheduler.TroubleStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"current": current,
		"history": history,
	})
}

func (h *GameHandler) UserTroubleBets(c *gin.Context) {
	userID := c.GetInt64("user_id")

	bets, err := h.store.UserTroubleBets(c.Request.Context(), userID, models.UserHistoryPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bets":    bets,
	})
}

// respondError maps service errors to HTTP statuses. Anything unrecognized is
// a 500 with a generic body so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, svcerr.ErrRoundNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, svcerr.ErrInvalidBet),
		errors.Is(err, svcerr.ErrInsufficientFunds),
		errors.Is(err, svcerr.ErrNoPendingBet),
		errors.Is(err, svcerr.ErrAlreadySettled):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
