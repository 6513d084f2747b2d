package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prooftalent/assessment-backend/internal/config"
	"github.com/prooftalent/assessment-backend/internal/handler"
	"github.com/prooftalent/assessment-backend/internal/middleware"
	"github.com/prooftalent/assessment-backend/internal/response"
	"github.com/prooftalent/assessment-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session     *handler.SessionHandler
	Quiz        *handler.QuizHandler
	Certificate *handler.CertificateHandler
	Ledger      *handler.LedgerHandler
	Monitor     *handler.MonitorHandler
	System      *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	tokenService *service.TokenService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Every response carries request metadata for tracing.
	router.Use(response.RequestIDMiddleware())

	router.GET("/health", handlers.System.Health)

	// Public catalog: categories and the evaluation public key.
	public := router.Group("/api/v1")
	{
		public.GET("/quizzes", handlers.Quiz.ListCategories)
		public.GET("/fhe/public-key", handlers.Quiz.PublicKey)
	}

	// Creation is rate limited per IP; each created session hands back a
	// token scoped to that session.
	createLimiter := middleware.NewRateLimiter(10, time.Minute)
	sessions := router.Group("/api/v1/sessions")
	{
		sessions.POST("", createLimiter.Middleware(), handlers.Session.CreateSession)

		authed := sessions.Group("/:id")
		authed.Use(middleware.RequireSessionToken(tokenService))
		{
			authed.GET("/questions", handlers.Session.GetQuestions)
			authed.POST("/answers", handlers.Session.RecordAnswer)
			authed.POST("/submit", handlers.Session.Submit)
			authed.GET("/result", handlers.Session.GetResult)
			authed.GET("/certificate", handlers.Certificate.Get)
			authed.POST("/certificate", handlers.Certificate.Issue)
		}
	}

	// Read-only ledger proxy. Rate limited: every call fans out to the
	// chain gateway.
	ledgerLimiter := middleware.NewRateLimiter(30, time.Minute)
	ledgerAPI := router.Group("/api/v1/ledger")
	ledgerAPI.Use(ledgerLimiter.Middleware())
	{
		ledgerAPI.GET("/mint-fee", handlers.Ledger.MintFee)
		ledgerAPI.GET("/badges/:owner", handlers.Ledger.Badges)
		ledgerAPI.GET("/tokens/:token_id", handlers.Ledger.TokenMetadata)
	}

	// Operator monitor stream.
	router.GET("/ws/v1/monitor", handlers.Monitor.Stream)

	return router
}
