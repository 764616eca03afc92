package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggledger/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.LedgerHandler, tokens handlers.TokenParser, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(corsMiddleware(allowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/login", handler.Login)

	secured := api.Group("")
	secured.Use(handlers.SessionMiddleware(tokens, logger))
	{
		secured.GET("/capabilities", handler.Capabilities)
		secured.GET("/dashboard", handler.Dashboard)

		secured.GET("/transactions", handler.ListTransactions)
		secured.POST("/transactions", handler.CreateTransaction)
		secured.DELETE("/transactions/:id", handler.DeleteTransaction)

		secured.GET("/rates/resolve", handler.ResolveRate)
		secured.GET("/settings/rates", handler.GetRates)
		secured.PUT("/settings/rates", handler.PutRates)
		secured.PUT("/settings/admin-password", handler.PutAdminPassword)
		secured.PUT("/settings/subadmin-password", handler.PutSubAdminPassword)

		secured.POST("/reports/daily", handler.RunDailyReport)
	}

	logger.Info("router initialized")

	return r
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
