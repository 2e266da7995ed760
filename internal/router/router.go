package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/config"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/handlers"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/middleware"
)

const (
	allowMethods  = "GET, POST, OPTIONS"
	allowHeaders  = "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control, Accept, X-Request-ID"
	exposeHeaders = "Content-Length, Content-Type, X-Request-ID"
)

// Dependencies everything the router mounts. Treasury and AdminTokens may be
// nil, in which case the admin API is not registered.
type Dependencies struct {
	Server      config.ServerConfig
	CORS        config.CORSConfig
	Admin       config.AdminConfig
	Disburse    *handlers.DisburseHandler
	Treasury    *handlers.TreasuryHandler
	AdminTokens middleware.AdminTokenValidator
	Logger      *logrus.Logger
}

// corsMiddleware CORS middleware
// Priority: CORS_ALLOWED_ORIGINS (merged by LoadConfig) > YAML > default (*)
func corsMiddleware(cfg config.CORSConfig, logger *logrus.Logger) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowAll := len(allowedOrigins) == 1 && allowedOrigins[0] == "*"
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if allowAll {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			allowed := false
			for _, allowedOrigin := range allowedOrigins {
				if strings.TrimSpace(allowedOrigin) == origin {
					allowed = true
					break
				}
			}
			if allowed {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			} else {
				logger.WithFields(logrus.Fields{
					"request_origin":  origin,
					"allowed_origins": allowedOrigins,
					"path":            c.Request.URL.Path,
					"method":          c.Request.Method,
				}).Warn("CORS: Request blocked - Origin not in whitelist")
			}
		}

		c.Header("Access-Control-Allow-Methods", allowMethods)
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		// credentials cannot be combined with a wildcard origin
		if cfg.AllowCredentials && !allowAll {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Max-Age", maxAge)

		// preflight always answers 200 so browsers and the claim page proceed
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Header("Access-Control-Expose-Headers", exposeHeaders)
		c.Next()
	}
}

// requestLogger logrus access log
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"request_id": c.GetString(handlers.RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("Request completed with server error")
			return
		}
		entry.Info("Request completed")
	}
}

// SetupRouter builds the HTTP engine
func SetupRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	if err := r.SetTrustedProxies(deps.Server.TrustedProxies); err != nil {
		logger.WithError(err).Warn("Invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(requestLogger(logger))
	r.Use(corsMiddleware(deps.CORS, logger))

	// ============ Liveness ============
	r.GET("/ping", handlers.PingHandler)
	r.GET("/.netlify/functions/ping", handlers.PingHandler)

	// ============ Health Check ============
	r.GET("/health", handlers.HealthCheckHandler)
	r.GET("/api/health", handlers.HealthCheckHandler)

	// ============ Prometheus Metrics ============
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ============ Disbursement ============
	r.POST("/api/disburse", deps.Disburse.Disburse)
	// path kept for the existing claim page
	r.POST("/.netlify/functions/transfer1155", deps.Disburse.Disburse)

	// ============ Admin API ============
	if deps.Treasury != nil && deps.AdminTokens != nil {
		localhostOnly := middleware.NewLocalhostOnly(logger, deps.Admin.AllowedIPs)
		adminAuth := middleware.NewAdminAuthMiddleware(deps.AdminTokens, logger)

		admin := r.Group("/api/admin", localhostOnly.Restrict(), adminAuth.RequireAdminAuth())
		admin.GET("/treasury", deps.Treasury.GetTreasury)

		logger.WithField("allowed_ips", len(deps.Admin.AllowedIPs)).Info("Admin API enabled")
	} else {
		logger.Info("Admin API disabled (no admin JWT secret configured)")
	}

	r.NoMethod(handlers.MethodNotAllowedHandler)
	r.NoRoute(handlers.NotFoundHandler)

	return r
}
