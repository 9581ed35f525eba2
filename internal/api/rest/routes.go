package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/colabah/style-dna-service/config"
	"github.com/colabah/style-dna-service/internal/api/rest/handlers"
	"github.com/colabah/style-dna-service/internal/api/rest/middleware"
	"github.com/colabah/style-dna-service/internal/service"
	"github.com/colabah/style-dna-service/pkg/logger"
)

// SetupRouter configures the Gin router with routes and middleware
func SetupRouter(log *logger.Logger, registry *prometheus.Registry, cfg *config.Config, svc *service.StyleProfileService) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("Panic recovered: %v", recovered)
		body := gin.H{
			"success": false,
			"error":   "Something went wrong. Please try again.",
		}
		// Debug detail stays out of release builds
		if gin.Mode() != gin.ReleaseMode {
			body["debug"] = fmt.Sprintf("%v", recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	}))

	r.GET("/health", handlers.HealthCheck)

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	styleHandler := handlers.NewStyleHandler(svc, log)
	proxyHandler := handlers.NewProxyHandler(svc, log)

	// Embedded-admin save form
	r.POST("/app-index", middleware.RequireShopContext(cfg, log), styleHandler.SaveStyleDNA)
	r.GET("/app-index", handlers.MethodNotAllowed)

	// Storefront app proxy; Shopify forwards everything under one prefix
	proxy := r.Group("/apps/proxy/colabah", middleware.ProxyAuthMiddleware(cfg, log))
	{
		proxy.POST("/*action", proxyHandler.HandleAction)
		proxy.GET("/*action", handlers.MethodNotAllowed)
	}

	return r
}
