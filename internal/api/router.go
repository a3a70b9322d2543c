package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pointplay/rewards-gateway/internal/api/handler"
	"github.com/pointplay/rewards-gateway/internal/api/middleware"
	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
	"github.com/pointplay/rewards-gateway/internal/core/service"
	"github.com/pointplay/rewards-gateway/internal/infrastructure/config"
	mongorepo "github.com/pointplay/rewards-gateway/internal/infrastructure/db/mongo"
	redisstore "github.com/pointplay/rewards-gateway/internal/infrastructure/db/redis"
)

// NewRouter builds the Echo instance with all routes registered. The
// returned ChatService must be stopped on shutdown to cancel its pollers.
func NewRouter(backend ports.Backend, db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, *service.ChatService) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("rewards"))

	// --- Dependencies ---
	sessionStore := redisstore.NewSessionStore(rdb, cfg.SessionTTL)
	locker := redisstore.NewInflightLocker(rdb)
	chatRepo := mongorepo.NewChatRepository(db)

	sessions := service.NewSessionService(backend, sessionStore, cfg.JWTSecret, cfg.SessionTTL, log)
	guard := service.NewGuard()
	actions := service.NewActionService(backend, sessions, locker, log)
	carts := service.NewCartService(backend, log)
	chat := service.NewChatService(backend, chatRepo, cfg.Chat.PollInterval, log)

	sessionHandler := handler.NewSessionHandler(sessions, guard)
	rewardsHandler := handler.NewRewardsHandler(backend, actions)
	shopHandler := handler.NewShopHandler(backend, carts, actions)
	chatHandler := handler.NewChatHandler(chat)
	adminHandler := handler.NewAdminHandler(backend)

	resolve := middleware.Session(sessions)
	authed := middleware.RequireSession()

	// --- Session lifecycle ---
	s := e.Group("/session", resolve)
	s.POST("/bootstrap", sessionHandler.Bootstrap)
	s.POST("/login", sessionHandler.Login)
	s.POST("/register", sessionHandler.Register)
	s.POST("/logout", sessionHandler.Logout)
	s.POST("/refresh", sessionHandler.Refresh, authed)
	s.POST("/guard", sessionHandler.GuardDecide)
	s.POST("/verify-email", sessionHandler.VerifyEmail)
	// Deliberately not behind RequireSession's auto-created gate target check:
	// this is the one route an auto-created account is allowed to use.
	s.POST("/password", sessionHandler.ChangePassword, authed)

	// --- Gameplay ---
	p := e.Group("/predictions", resolve, authed)
	p.GET("", rewardsHandler.ListPredictions)
	p.GET("/:id", rewardsHandler.GetPrediction)
	p.POST("/:id/submit", rewardsHandler.SubmitPrediction)

	v := e.Group("/voting", resolve)
	v.GET("/campaigns", rewardsHandler.ListCampaigns)
	v.GET("/campaigns/:id", rewardsHandler.GetCampaign, authed)
	v.POST("/campaigns/:id/entries/:entryId/vote", rewardsHandler.Vote, authed)
	v.DELETE("/campaigns/:id/entries/:entryId/vote", rewardsHandler.RemoveVote, authed)
	v.GET("/my-votes", rewardsHandler.MyVotes, authed)

	ci := e.Group("/check-in", resolve, authed)
	ci.GET("/status", rewardsHandler.CheckInStatus)
	ci.GET("/question", rewardsHandler.CheckInQuestion)
	ci.POST("/submit", rewardsHandler.SubmitCheckIn)

	sv := e.Group("/surveys", resolve, authed)
	sv.GET("", rewardsHandler.ListSurveys)
	sv.GET("/:id", rewardsHandler.GetSurvey)
	sv.POST("/:id/submit", rewardsHandler.SubmitSurvey)

	fb := e.Group("/feedback", resolve, authed)
	fb.POST("", rewardsHandler.SubmitFeedback)
	fb.GET("/my", rewardsHandler.MyFeedback)

	e.GET("/transactions", rewardsHandler.Transactions, resolve, authed)

	// --- Shop ---
	shop := e.Group("/shop")
	shop.GET("/products", shopHandler.ListProducts)
	shop.GET("/products/:id", shopHandler.GetProduct)
	shop.POST("/coupons/validate", shopHandler.ValidateCoupon)

	// Cart works with or without a session; identity rules live in the
	// cart service.
	cart := e.Group("/cart", resolve)
	cart.GET("", shopHandler.GetCart)
	cart.POST("/add", shopHandler.AddToCart)
	cart.PUT("/items/:itemId", shopHandler.UpdateCartItem)
	cart.DELETE("/items/:itemId", shopHandler.RemoveCartItem)
	cart.DELETE("/clear", shopHandler.ClearCart)

	orders := e.Group("/orders", resolve, authed)
	orders.POST("", shopHandler.CreateOrder)
	orders.GET("", shopHandler.ListOrders)
	orders.GET("/:id", shopHandler.GetOrder)

	// --- Chat ---
	chatGroup := e.Group("/chat/conversations/:id", resolve, authed)
	chatGroup.POST("/open", chatHandler.Open)
	chatGroup.POST("/close", chatHandler.Close)
	chatGroup.GET("/messages", chatHandler.Messages)
	chatGroup.POST("/messages", chatHandler.Send)

	// --- Staff / admin ---
	staff := e.Group("/staff", resolve, authed, middleware.RequireRoles(domain.RoleStaff, domain.RoleAdmin))
	staff.GET("/dashboard-stats", adminHandler.StaffDashboard)

	admin := e.Group("/admin", resolve, authed, middleware.RequireRoles(domain.RoleAdmin))
	admin.GET("/dashboard-stats", adminHandler.AdminDashboard)
	admin.POST("/grant-points", adminHandler.GrantPoints)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e, chat
}
