package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sixywin-backend/internal/logger"
	"sixywin-backend/internal/models"
	"sixywin-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	store     *services.Store
	engine    *services.CrashEngine
	scheduler *services.DrawScheduler
	hub       *WebSocketHub
}

// WebSocketHub serializes all connection-map access through its run loop,
// so writes from the game goroutines never race with register/unregister.
type WebSocketHub struct {
	clients    map[int64]*websocket.Conn
	register   chan *Client
	unregister chan *Client
	outbound   chan envelope
}

type Client struct {
	UserID int64
	Conn   *websocket.Conn
}

// envelope routes a message through the hub. UserID zero means everyone.
type envelope struct {
	UserID  int64
	Message models.Message
}

func NewWebSocketHub() *WebSocketHub {
	hub := &WebSocketHub{
		clients:    make(map[int64]*websocket.Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan envelope, 256),
	}

	go hub.run()

	return hub
}

func NewWebSocketHandler(store *services.Store, engine *services.CrashEngine, scheduler *services.DrawScheduler, hub *WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{
		store:     store,
		engine:    engine,
		scheduler: scheduler,
		hub:       hub,
	}
}

// Broadcast queues a message for every connected client.
func (hub *WebSocketHub) Broadcast(msg models.Message) {
	hub.outbound <- envelope{Message: msg}
}

// SendToUser queues a message for one client. Dropped silently when the user
// has no open connection.
func (hub *WebSocketHub) SendToUser(userID int64, msg models.Message) {
	hub.outbound <- envelope{UserID: userID, Message: msg}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.add(client)

		case client := <-hub.unregister:
			hub.remove(client)

		case env := <-hub.outbound:
			hub.deliver(env)
		}
	}
}

func (hub *WebSocketHub) add(client *Client) {
	hub.clients[client.UserID] = client.Conn
	logger.Log.Info("client registered", zap.Int64("user_id", client.UserID))
}

// remove drops the registration only while it still belongs to this
// connection. After a quick reconnect the slot holds the newer connection,
// and the stale connection's deferred unregister must not evict it.
func (hub *WebSocketHub) remove(client *Client) {
	if conn, ok := hub.clients[client.UserID]; ok && conn == client.Conn {
		delete(hub.clients, client.UserID)
		logger.Log.Info("client unregistered", zap.Int64("user_id", client.UserID))
	}
}

func (hub *WebSocketHub) deliver(env envelope) {
	if env.UserID != 0 {
		if conn, ok := hub.clients[env.UserID]; ok {
			if err := conn.WriteJSON(env.Message); err != nil {
				logger.Log.Warn("failed to write to client",
					zap.Int64("user_id", env.UserID), zap.Error(err))
			}
		}
		return
	}

	for userID, conn := range hub.clients {
		if err := conn.WriteJSON(env.Message); err != nil {
			logger.Log.Warn("failed to write to client",
				zap.Int64("user_id", userID), zap.Error(err))
		}
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetInt64("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("failed to upgrade to websocket", zap.Error(err))
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	h.sendWallet(c, client)

	for {
		var req models.ClientRequest
		err := conn.ReadJSON(&req)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("websocket read failed", zap.Error(err))
			}
			break
		}

		h.handleRequest(c, client, &req)
	}
}

func (h *WebSocketHandler) handleRequest(c *gin.Context, client *Client, req *models.ClientRequest) {
	switch req.Type {
	case models.ReqPing:
		h.hub.SendToUser(client.UserID, models.Message{
			Type:      models.MsgPong,
			RequestID: req.RequestID,
			Payload: models.Payload{
				Message: "pong",
				Success: true,
				Data:    models.PongData{Timestamp: time.Now().Unix()},
			},
		})

	case models.ReqAviatorRound:
		round, multiplier := h.engine.CurrentRound()
		if round == nil {
			h.hub.SendToUser(client.UserID, models.NewErrorMessage(req.RequestID, "no round in progress"))
			return
		}
		h.hub.SendToUser(client.UserID, models.NewCrashRoundMessage("Current round", round, multiplier))

	case models.ReqLatestDraw:
		draw, err := h.scheduler.EnsureLotteryDraw(c.Request.Context())
		if err != nil {
			h.hub.SendToUser(client.UserID, models.NewErrorMessage(req.RequestID, "failed to load draw"))
			return
		}
		h.hub.SendToUser(client.UserID, models.NewLotteryDrawMessage(draw))

	case models.ReqTroubleStatus:
		current, history, err := h.scheduler.TroubleStatus(c.Request.Context())
		if err != nil {
			h.hub.SendToUser(client.UserID, models.NewErrorMessage(req.RequestID, "failed to load status"))
			return
		}
		h.hub.SendToUser(client.UserID, models.NewTroubleStatusMessage(current, history))

	default:
		h.hub.SendToUser(client.UserID, models.NewErrorMessage(req.RequestID, "unknown request type"))
	}
}

func (h *WebSocketHandler) sendWallet(c *gin.Context, client *Client) {
	wallet, err := h.store.GetWallet(c.Request.Context(), client.UserID)
	if err != nil {
		logger.Log.Error("failed to load wallet for websocket",
			zap.Int64("user_id", client.UserID), zap.Error(err))
		return
	}

	h.hub.SendToUser(client.UserID, models.NewWalletUpdateMessage(wallet))
}
