package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codesmog/codesmog-go/internal/registry"
)

// CatalogHandler serves the static city and coin catalogs.
type CatalogHandler struct {
	registry *registry.Registry
}

// NewCatalogHandler creates the catalog handler.
func NewCatalogHandler(reg *registry.Registry) *CatalogHandler {
	return &CatalogHandler{registry: reg}
}

// GetCities handles GET /api/cities.
func (h *CatalogHandler) GetCities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.registry.Cities()})
}

// GetCoins handles GET /api/coins.
func (h *CatalogHandler) GetCoins(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.registry.Coins()})
}
