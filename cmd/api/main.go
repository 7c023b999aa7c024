package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"sixywin-backend/internal/config"
	"sixywin-backend/internal/handlers"
	"sixywin-backend/internal/logger"
	"sixywin-backend/internal/middleware"
	"sixywin-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Env)
	defer logger.Log.Sync()

	store, err := services.NewStore(cfg)
	if err != nil {
		logger.Log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer store.Close()

	jwtService := services.NewJWTService(cfg)

	hub := handlers.NewWebSocketHub()

	engine := services.NewCrashEngine(store, hub, services.DefaultCrashConfig())
	scheduler := services.NewDrawScheduler(store, hub, services.DefaultSchedulerConfig())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go engine.Run(ctx)
	scheduler.Start()
	defer scheduler.Stop()

	wsHandler := handlers.NewWebSocketHandler(store, engine, scheduler, hub)
	userHandler := handlers.NewUserHandler(store, jwtService)
	gameHandler := handlers.NewGameHandler(engine, scheduler, store)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/token", userHandler.IssueToken)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(store))
	{
		protected.GET("/balance", userHandler.GetBalance)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		games := protected.Group("/games")
		{
			aviator := games.Group("/aviator")
			{
				aviator.POST("/bet", gameHandler.PlaceCrashBet)
				aviator.POST("/cashout", gameHandler.CashOut)
				aviator.GET("/round", gameHandler.CurrentCrashRound)
				aviator.GET("/rounds", gameHandler.CrashRoundHistory)
				aviator.GET("/history", gameHandler.UserCrashBets)
			}

			lottery := games.Group("/lottery")
			{
				lottery.POST("/ticket", gameHandler.PlaceLotteryTicket)
				lottery.GET("/draw", gameHandler.LatestLotteryDraw)
				lottery.GET("/tickets", gameHandler.UserLotteryTickets)
			}

			trouble := games.Group("/trouble")
			{
				trouble.POST("/bet", gameHandler.PlaceTroubleBet)
				trouble.GET("/status", gameHandler.TroubleStatus)
				trouble.GET("/history", gameHandler.UserTroubleBets)
			}
		}
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.Log.Info("server starting", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Log.Fatal("server exited", zap.Error(err))
	}
}
