package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Metrics is the request counter and exporter mounted at /metrics.
type Metrics interface {
	ObserveRequest(method, route string, status int)
	Handler() http.Handler
}

// Options holds router settings that do not come from handlers.
type Options struct {
	AllowedOrigins []string
	Metrics        Metrics
}

// New wires the Gin engine with required routes and middlewares.
func New(h handlers.Handlers, opts Options, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	if opts.Metrics != nil {
		r.Use(metricsMiddleware(opts.Metrics))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{"Content-Disposition", requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", h.Auth.Login)

	api := v1.Group("", h.Auth.RequireUser())
	api.GET("/items", h.Warehouse.Items)
	api.POST("/items", h.Stock.Register)
	api.GET("/brands", h.Warehouse.Brands)

	api.POST("/stock/changes", h.Stock.ApplyChange)
	api.GET("/stock/:itemId/:brandId", h.Stock.Get)
	api.DELETE("/stock/:itemId/:brandId", h.Stock.Delete)

	api.GET("/warehouse", h.Warehouse.List)
	api.GET("/warehouse/stream", h.Warehouse.Stream)

	api.GET("/logs", h.Logs.List)
	api.GET("/logs/:id/invoice", h.Logs.Invoice)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("requestID")))
	}
}

func metricsMiddleware(m Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
