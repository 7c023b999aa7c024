package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sixywin-backend/internal/config"
	"sixywin-backend/internal/models"
	"sixywin-backend/internal/svcerr"

	"github.com/redis/go-redis/v9"
)

// Store persists wallets, rounds and bets in Redis. Wallet mutations and the
// pending-to-terminal bet transition run as Lua scripts so concurrent
// operations on the same key serialize inside Redis.
type Store struct {
	client *redis.Client
}

func NewStore(cfg *config.Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &Store{client: client}, nil
}

// NewStoreWithClient wraps an existing client; used by tests with miniredis.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ---- wallets ----

var debitWalletScript = redis.NewScript(`
	local key = KEYS[1]
	local amount = tonumber(ARGV[1])

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("wallet not found")
	end

	local w = cjson.decode(data)
	if w.spendable + w.winnings < amount then
		return redis.error_reply("insufficient funds")
	end

	if w.spendable >= amount then
		w.spendable = w.spendable - amount
	else
		w.winnings = w.winnings - (amount - w.spendable)
		w.spendable = 0
	end
	w.daily_wagered = w.daily_wagered + amount

	local updated = cjson.encode(w)
	redis.call("SET", key, updated)
	return updated
`)

var creditWalletScript = redis.NewScript(`
	local key = KEYS[1]
	local amount = tonumber(ARGV[1])

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("wallet not found")
	end

	local w = cjson.decode(data)
	w.winnings = w.winnings + amount
	w.total_won = w.total_won + amount

	local updated = cjson.encode(w)
	redis.call("SET", key, updated)
	return updated
`)

var refundWalletScript = redis.NewScript(`
	local key = KEYS[1]
	local amount = tonumber(ARGV[1])

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("wallet not found")
	end

	local w = cjson.decode(data)
	w.spendable = w.spendable + amount
	w.daily_wagered = w.daily_wagered - amount
	if w.daily_wagered < 0 then
		w.daily_wagered = 0
	end

	local updated = cjson.encode(w)
	redis.call("SET", key, updated)
	return updated
`)

// GetWallet loads a user's wallet, provisioning a fresh one with the starting
// balance on first access.
func (s *Store) GetWallet(ctx context.Context, userID int64) (*models.Wallet, error) {
	key := fmt.Sprintf(KeyWallet, userID)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		wallet := models.NewWallet(userID)
		if err := s.saveWallet(ctx, wallet); err != nil {
			return nil, fmt.Errorf("failed to create wallet: %v", err)
		}
		return wallet, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %v", err)
	}

	var wallet models.Wallet
	if err := json.Unmarshal([]byte(data), &wallet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet: %v", err)
	}
	return &wallet, nil
}

func (s *Store) saveWallet(ctx context.Context, wallet *models.Wallet) error {
	key := fmt.Sprintf(KeyWallet, wallet.UserID)

	data, err := json.Marshal(wallet)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet: %v", err)
	}
	return s.client.Set(ctx, key, data, 0).Err()
}

// DebitWallet atomically takes amount from the wallet, spendable first. The
// wallet is untouched when total funds fall short.
func (s *Store) DebitWallet(ctx context.Context, userID int64, amount int64) (*models.Wallet, error) {
	if _, err := s.GetWallet(ctx, userID); err != nil {
		return nil, err
	}
	return s.runWalletScript(ctx, debitWalletScript, userID, amount)
}

// CreditWallet atomically adds won coins to winnings and totalWon.
func (s *Store) CreditWallet(ctx context.Context, userID int64, amount int64) (*models.Wallet, error) {
	if _, err := s.GetWallet(ctx, userID); err != nil {
		return nil, err
	}
	return s.runWalletScript(ctx, creditWalletScript, userID, amount)
}

// RefundWallet returns a debited stake to spendable after a failed placement.
func (s *Store) RefundWallet(ctx context.Context, userID int64, amount int64) (*models.Wallet, error) {
	return s.runWalletScript(ctx, refundWalletScript, userID, amount)
}

func (s *Store) runWalletScript(ctx context.Context, script *redis.Script, userID int64, amount int64) (*models.Wallet, error) {
	key := fmt.Sprintf(KeyWallet, userID)

	res, err := script.Run(ctx, s.client, []string{key}, amount).Text()
	if err != nil {
		if strings.Contains(err.Error(), "insufficient funds") {
			return nil, svcerr.ErrInsufficientFunds
		}
		return nil, fmt.Errorf("wallet script failed: %v", err)
	}

	var wallet models.Wallet
	if err := json.Unmarshal([]byte(res), &wallet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet: %v", err)
	}
	return &wallet, nil
}

var resetDailyWageredScript = redis.NewScript(`
	local data = redis.call("GET", KEYS[1])
	if not data then
		return 0
	end

	local w = cjson.decode(data)
	w.daily_wagered = 0

	redis.call("SET", KEYS[1], cjson.encode(w))
	return 1
`)

// ResetDailyWagered zeroes every wallet's daily accumulator. Each reset runs
// as a script so a debit or credit landing mid-sweep is never overwritten by
// a stale read.
func (s *Store) ResetDailyWagered(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, "wallet:*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := resetDailyWageredScript.Run(ctx, s.client, []string{key}).Err(); err != nil {
			return fmt.Errorf("failed to reset %s: %v", key, err)
		}
	}
	return iter.Err()
}

// ---- crash rounds ----

func (s *Store) SaveCrashRound(ctx context.Context, round *models.CrashRound) error {
	data, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %v", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(KeyCrashRound, round.ID), data, 0)
	pipe.ZAdd(ctx, KeyCrashRoundIndex, redis.Z{
		Score:  float64(round.StartedAt.UnixNano()),
		Member: round.ID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) GetCrashRound(ctx context.Context, roundID string) (*models.CrashRound, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyCrashRound, roundID)).Result()
	if err == redis.Nil {
		return nil, svcerr.ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %v", err)
	}

	var round models.CrashRound
	if err := json.Unmarshal([]byte(data), &round); err != nil {
		return nil, fmt.Errorf("failed to unmarshal round: %v", err)
	}
	return &round, nil
}

func (s *Store) RecentCrashRounds(ctx context.Context, limit int64) ([]*models.CrashRound, error) {
	ids, err := s.client.ZRevRange(ctx, KeyCrashRoundIndex, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %v", err)
	}

	rounds := make([]*models.CrashRound, 0, len(ids))
	for _, id := range ids {
		round, err := s.GetCrashRound(ctx, id)
		if err != nil {
			continue
		}
		rounds = append(rounds, round)
	}
	return rounds, nil
}

// TrimCrashRounds drops everything but the newest keep rounds, deleting their
// bets along with them.
func (s *Store) TrimCrashRounds(ctx context.Context, keep int64) error {
	ids, err := s.client.ZRange(ctx, KeyCrashRoundIndex, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list rounds: %v", err)
	}
	if int64(len(ids)) <= keep {
		return nil
	}

	for _, id := range ids[:int64(len(ids))-keep] {
		betsKey := fmt.Sprintf(KeyCrashRoundBets, id)
		betIDs, _ := s.client.SMembers(ctx, betsKey).Result()

		pipe := s.client.TxPipeline()
		for _, betID := range betIDs {
			pipe.Del(ctx, fmt.Sprintf(KeyCrashBet, betID))
			pipe.SRem(ctx, KeyCrashPendingSet, betID)
		}
		pipe.Del(ctx, betsKey)
		pipe.Del(ctx, fmt.Sprintf(KeyCrashRound, id))
		pipe.ZRem(ctx, KeyCrashRoundIndex, id)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to trim round %s: %v", id, err)
		}
	}
	return nil
}

// ---- crash bets ----

var settleBetScript = redis.NewScript(`
	local key = KEYS[1]
	local outcome = ARGV[1]
	local amountWon = tonumber(ARGV[2])
	local multiplier = tonumber(ARGV[3])
	local roundId = ARGV[4]

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("bet not found")
	end

	local b = cjson.decode(data)
	if b.outcome ~= "pending" then
		return redis.error_reply("bet already settled")
	end

	b.outcome = outcome
	b.amount_won = amountWon
	b.cash_out_multiplier = multiplier
	if roundId ~= "" then
		b.round_id = roundId
	end

	local updated = cjson.encode(b)
	redis.call("SET", key, updated)
	return updated
`)

// CreateCrashBet stores a pending aviator bet. The per-user pending pointer is
// claimed with SETNX so a user can never hold two pending bets.
func (s *Store) CreateCrashBet(ctx context.Context, bet *models.CrashBet) error {
	pendingKey := fmt.Sprintf(KeyUserCrashPending, bet.UserID)

	ok, err := s.client.SetNX(ctx, pendingKey, bet.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to claim pending slot: %v", err)
	}
	if !ok {
		return fmt.Errorf("%w: a pending bet already exists", svcerr.ErrInvalidBet)
	}

	data, err := json.Marshal(bet)
	if err != nil {
		s.client.Del(ctx, pendingKey)
		return fmt.Errorf("failed to marshal bet: %v", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(KeyCrashBet, bet.ID), data, 0)
	pipe.SAdd(ctx, KeyCrashPendingSet, bet.ID)
	pipe.ZAdd(ctx, fmt.Sprintf(KeyUserCrashBets, bet.UserID), redis.Z{
		Score:  float64(bet.CreatedAt.UnixNano()),
		Member: bet.ID,
	})
	if bet.RoundID != "" {
		pipe.SAdd(ctx, fmt.Sprintf(KeyCrashRoundBets, bet.RoundID), bet.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.client.Del(ctx, pendingKey)
		return fmt.Errorf("failed to save bet: %v", err)
	}
	return nil
}

func (s *Store) GetCrashBet(ctx context.Context, betID string) (*models.CrashBet, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyCrashBet, betID)).Result()
	if err == redis.Nil {
		return nil, svcerr.ErrNoPendingBet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %v", err)
	}

	var bet models.CrashBet
	if err := json.Unmarshal([]byte(data), &bet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bet: %v", err)
	}
	return &bet, nil
}

// PendingCrashBet returns the user's one pending bet, if any.
func (s *Store) PendingCrashBet(ctx context.Context, userID int64) (*models.CrashBet, error) {
	betID, err := s.client.Get(ctx, fmt.Sprintf(KeyUserCrashPending, userID)).Result()
	if err == redis.Nil {
		return nil, svcerr.ErrNoPendingBet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending pointer: %v", err)
	}
	return s.GetCrashBet(ctx, betID)
}

// PendingCrashBets returns every pending aviator bet across all users.
func (s *Store) PendingCrashBets(ctx context.Context) ([]*models.CrashBet, error) {
	ids, err := s.client.SMembers(ctx, KeyCrashPendingSet).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bets: %v", err)
	}

	bets := make([]*models.CrashBet, 0, len(ids))
	for _, id := range ids {
		bet, err := s.GetCrashBet(ctx, id)
		if err != nil {
			continue
		}
		bets = append(bets, bet)
	}
	return bets, nil
}

// SettleCrashBet transitions a bet from pending to a terminal outcome. The
// check-and-set runs as one script, so whichever of the cash-out and the crash
// sweep gets there first wins and the loser sees ErrAlreadySettled.
func (s *Store) SettleCrashBet(ctx context.Context, betID string, outcome models.Outcome, amountWon int64, multiplier float64, roundID string) (*models.CrashBet, error) {
	key := fmt.Sprintf(KeyCrashBet, betID)

	res, err := settleBetScript.Run(ctx, s.client, []string{key},
		string(outcome), amountWon, multiplier, roundID).Text()
	if err != nil {
		if strings.Contains(err.Error(), "already settled") {
			return nil, svcerr.ErrAlreadySettled
		}
		if strings.Contains(err.Error(), "bet not found") {
			return nil, svcerr.ErrNoPendingBet
		}
		return nil, fmt.Errorf("settle script failed: %v", err)
	}

	var bet models.CrashBet
	if err := json.Unmarshal([]byte(res), &bet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bet: %v", err)
	}

	pipe := s.client.TxPipeline()
	pipe.SRem(ctx, KeyCrashPendingSet, bet.ID)
	pipe.Del(ctx, fmt.Sprintf(KeyUserCrashPending, bet.UserID))
	pipe.Expire(ctx, key, TTLSettledBet)
	if bet.RoundID != "" {
		pipe.SAdd(ctx, fmt.Sprintf(KeyCrashRoundBets, bet.RoundID), bet.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to index settled bet: %v", err)
	}
	return &bet, nil
}

func (s *Store) UserCrashBets(ctx context.Context, userID int64, limit int64) ([]*models.CrashBet, error) {
	ids, err := s.client.ZRevRange(ctx, fmt.Sprintf(KeyUserCrashBets, userID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user bets: %v", err)
	}

	bets := make([]*models.CrashBet, 0, len(ids))
	for _, id := range ids {
		bet, err := s.GetCrashBet(ctx, id)
		if err != nil {
			continue
		}
		bets = append(bets, bet)
	}
	return bets, nil
}

// ---- lottery ----

func (s *Store) SaveLotteryDraw(ctx context.Context, draw *models.LotteryDraw) error {
	data, err := json.Marshal(draw)
	if err != nil {
		return fmt.Errorf("failed to marshal draw: %v", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(KeyLotteryDraw, draw.ID), data, 0)
	pipe.ZAdd(ctx, KeyLotteryDrawIndex, redis.Z{
		Score:  float64(draw.DrawDate.UnixNano()),
		Member: draw.ID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) GetLotteryDraw(ctx context.Context, drawID string) (*models.LotteryDraw, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyLotteryDraw, drawID)).Result()
	if err == redis.Nil {
		return nil, svcerr.ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %v", err)
	}

	var draw models.LotteryDraw
	if err := json.Unmarshal([]byte(data), &draw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draw: %v", err)
	}
	return &draw, nil
}

// LatestLotteryDraw returns the most recent draw, or nil when none exists yet.
func (s *Store) LatestLotteryDraw(ctx context.Context) (*models.LotteryDraw, error) {
	ids, err := s.client.ZRevRange(ctx, KeyLotteryDrawIndex, 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list draws: %v", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.GetLotteryDraw(ctx, ids[0])
}

func (s *Store) CreateLotteryTicket(ctx context.Context, ticket *models.LotteryTicket) error {
	data, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket: %v", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(KeyLotteryTicket, ticket.ID), data, 0)
	pipe.SAdd(ctx, KeyLotteryPendingSet, ticket.ID)
	pipe.ZAdd(ctx, fmt.Sprintf(KeyUserLotteryTickets, ticket.UserID), redis.Z{
		Score:  float64(ticket.CreatedAt.UnixNano()),
		Member: ticket.ID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) GetLotteryTicket(ctx context.Context, ticketID string) (*models.LotteryTicket, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyLotteryTicket, ticketID)).Result()
	if err == redis.Nil {
		return nil, svcerr.ErrNoPendingBet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %v", err)
	}

	var ticket models.LotteryTicket
	if err := json.Unmarshal([]byte(data), &ticket); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket: %v", err)
	}
	return &ticket, nil
}

func (s *Store) PendingLotteryTickets(ctx context.Context) ([]*models.LotteryTicket, error) {
	ids, err := s.client.SMembers(ctx, KeyLotteryPendingSet).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tickets: %v", err)
	}

	tickets := make([]*models.LotteryTicket, 0, len(ids))
	for _, id := range ids {
		ticket, err := s.GetLotteryTicket(ctx, id)
		if err != nil {
			continue
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// SaveSettledLotteryTickets writes a draw's worth of resolved tickets in one
// batch and clears them from the pending index.
func (s *Store) SaveSettledLotteryTickets(ctx context.Context, tickets []*models.LotteryTicket) error {
	if len(tickets) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, ticket := range tickets {
		data, err := json.Marshal(ticket)
		if err != nil {
			return fmt.Errorf("failed to marshal ticket: %v", err)
		}
		pipe.Set(ctx, fmt.Sprintf(KeyLotteryTicket, ticket.ID), data, TTLSettledBet)
		pipe.SRem(ctx, KeyLotteryPendingSet, ticket.ID)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) UserLotteryTickets(ctx context.Context, userID int64, limit int64) ([]*models.LotteryTicket, error) {
	ids, err := s.client.ZRevRange(ctx, fmt.Sprintf(KeyUserLotteryTickets, userID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user tickets: %v", err)
	}

	tickets := make([]*models.LotteryTicket, 0, len(ids))
	for _, id := range ids {
		ticket, err := s.GetLotteryTicket(ctx, id)
		if err != nil {
			continue
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// ---- double trouble ----

func (s *Store) SaveTroubleDraw(ctx context.Context, draw *models.TroubleDraw) error {
	data, err := json.Marshal(draw)
	if err != nil {
		return fmt.Errorf("failed to marshal draw: %v", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(KeyTroubleDraw, draw.ID), data, 0)
	pipe.ZAdd(ctx, KeyTroubleDrawIndex, redis.Z{
		Score:  float64(draw.CreatedAt.UnixNano()),
		Member: draw.ID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) GetTroubleDraw(ctx context.Context, drawID string) (*models.TroubleDraw, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyTroubleDraw, drawID)).Result()
	if err == redis.Nil {
		return nil, svcerr.ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %v", err)
	}

	var draw models.TroubleDraw
	if err := json.Unmarshal([]byte(data), &draw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draw: %v", err)
	}
	return &draw, nil
}

// RecentTroubleDraws returns the newest draws, most recent first.
func (s *Store) RecentTroubleDraws(ctx context.Context, limit int64) ([]*models.TroubleDraw, error) {
	ids, err := s.client.ZRevRange(ctx, KeyTroubleDrawIndex, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list draws: %v", err)
	}

	draws := make([]*models.TroubleDraw, 0, len(ids))
	for _, id := range ids {
		draw, err := s.GetTroubleDraw(ctx, id)
		if err != nil {
			continue
		}
		draws = append(draws, draw)
	}
	return draws, nil
}

func (s *Store) CreateTroubleBet(ctx context.Context, bet *models.TroubleBet) error {
	data, err := json.Marshal(bet)
	if err != nil {
		return fmt.Errorf("failed to marshal bet: %v", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(KeyTroubleBet, bet.ID), data, 0)
	pipe.SAdd(ctx, KeyTroublePendingSet, bet.ID)
	pipe.ZAdd(ctx, fmt.Sprintf(KeyUserTroubleBets, bet.UserID), redis.Z{
		Score:  float64(bet.CreatedAt.UnixNano()),
		Member: bet.ID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) GetTroubleBet(ctx context.Context, betID string) (*models.TroubleBet, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyTroubleBet, betID)).Result()
	if err == redis.Nil {
		return nil, svcerr.ErrNoPendingBet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %v", err)
	}

	var bet models.TroubleBet
	if err := json.Unmarshal([]byte(data), &bet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bet: %v", err)
	}
	return &bet, nil
}

func (s *Store) PendingTroubleBets(ctx context.Context) ([]*models.TroubleBet, error) {
	ids, err := s.client.SMembers(ctx, KeyTroublePendingSet).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bets: %v", err)
	}

	bets := make([]*models.TroubleBet, 0, len(ids))
	for _, id := range ids {
		bet, err := s.GetTroubleBet(ctx, id)
		if err != nil {
			continue
		}
		bets = append(bets, bet)
	}
	return bets, nil
}

func (s *Store) SaveSettledTroubleBets(ctx context.Context, bets []*models.TroubleBet) error {
	if len(bets) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, bet := range bets {
		data, err := json.Marshal(bet)
		if err != nil {
			return fmt.Errorf("failed to marshal bet: %v", err)
		}
		pipe.Set(ctx, fmt.Sprintf(KeyTroubleBet, bet.ID), data, TTLSettledBet)
		pipe.SRem(ctx, KeyTroublePendingSet, bet.ID)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) UserTroubleBets(ctx context.Context, userID int64, limit int64) ([]*models.TroubleBet, error) {
	ids, err := s.client.ZRevRange(ctx, fmt.Sprintf(KeyUserTroubleBets, userID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user bets: %v", err)
	}

	bets := make([]*models.TroubleBet, 0, len(ids))
	for _, id := range ids {
		bet, err := s.GetTroubleBet(ctx, id)
		if err != nil {
			continue
		}
		bets = append(bets, bet)
	}
	return bets, nil
}

// TrimDrawIndexes caps the lottery and trouble draw history. Draw records have
// no bets hanging off them once settled, so dropping the key is enough.
func (s *Store) TrimDrawIndexes(ctx context.Context) error {
	if err := s.trimDraws(ctx, KeyLotteryDrawIndex, KeyLotteryDraw, KeepLotteryDraws); err != nil {
		return err
	}
	return s.trimDraws(ctx, KeyTroubleDrawIndex, KeyTroubleDraw, KeepTroubleDraws)
}

func (s *Store) trimDraws(ctx context.Context, indexKey, keyFmt string, keep int64) error {
	ids, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list draws: %v", err)
	}
	if int64(len(ids)) <= keep {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids[:int64(len(ids))-keep] {
		pipe.Del(ctx, fmt.Sprintf(keyFmt, id))
		pipe.ZRem(ctx, indexKey, id)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// CheckRateLimit counts actions per user inside a fixed window. The window
// starts on the first action and the key expires with it.
func (s *Store) CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%d:%s", userID, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}
