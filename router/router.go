package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"socialnet/config"
	"socialnet/handlers"
	"socialnet/middleware"
	"socialnet/services"
	"socialnet/utils"
	"socialnet/websocket"
)

type Deps struct {
	Users       *services.UserService
	Friends     *services.FriendService
	Tokens      *utils.TokenManager
	Hub         *websocket.Hub
	AuthLimiter *middleware.IPRateLimiter
}

func New(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.MonitorMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	userHandler := handlers.NewUserHandler(deps.Users)
	friendHandler := handlers.NewFriendHandler(deps.Friends)

	r.GET("/", handlers.Welcome)
	r.GET("/health", handlers.Health)
	r.GET("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass), gin.WrapH(promhttp.Handler()))

	public := r.Group("/")
	if deps.AuthLimiter != nil {
		public.Use(deps.AuthLimiter.Middleware())
	}
	{
		public.POST("/signup/", authHandler.Signup)
		public.POST("/login/", authHandler.Login)
		public.POST("/login/refresh/", authHandler.Refresh)
	}

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		authed.GET("/me/", authHandler.Me)
		authed.GET("/search/", userHandler.SearchUsers)
		authed.POST("/friend-request/send/", friendHandler.SendFriendRequest)
		authed.POST("/friend-request/respond/:id/:action/", friendHandler.RespondFriendRequest)
		authed.GET("/friends/", friendHandler.GetFriends)
		authed.GET("/friend-requests/pending/", friendHandler.GetPendingRequests)
	}

	if deps.Hub != nil {
		r.GET("/ws", websocket.Handler(deps.Hub, deps.Tokens))
	}

	return r
}
