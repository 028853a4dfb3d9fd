// Package api wires the HTTP routes.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/codesmog/codesmog-go/internal/api/handlers"
	"github.com/codesmog/codesmog-go/internal/config"
	"github.com/codesmog/codesmog-go/internal/middleware"
	"github.com/codesmog/codesmog-go/internal/registry"
	"github.com/codesmog/codesmog-go/internal/services"
)

// SetupRoutes registers middleware and all route handlers on the router.
func SetupRoutes(router *gin.Engine, cfg *config.Config, logger *logrus.Logger, reg *registry.Registry, svc *services.DataService, version string) {
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	health := handlers.NewHealthHandler(version)
	data := handlers.NewDataHandler(svc)
	catalog := handlers.NewCatalogHandler(reg)
	exports := handlers.NewExportHandler(svc)

	router.GET("/health", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/activity/:city", data.GetActivity)
		apiGroup.GET("/environmental/:city", data.GetEnvironmental)
		apiGroup.GET("/market/:coin", data.GetMarket)
		apiGroup.GET("/correlation/:city", data.GetCorrelation)
		apiGroup.GET("/export/correlation/:city", exports.ExportCorrelation)
		apiGroup.GET("/export/activity/:city", exports.ExportActivity)
		apiGroup.GET("/export/environmental/:city", exports.ExportEnvironmental)
		apiGroup.GET("/cities", catalog.GetCities)
		apiGroup.GET("/coins", catalog.GetCoins)
	}
}
