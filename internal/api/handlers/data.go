package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codesmog/codesmog-go/internal/registry"
	"github.com/codesmog/codesmog-go/internal/services"
)

const defaultDays = 30

// DataHandler exposes the data service over HTTP. It only parses requests
// and maps errors; all decisions live in the service.
type DataHandler struct {
	svc *services.DataService
}

// NewDataHandler creates the series/correlation handler.
func NewDataHandler(svc *services.DataService) *DataHandler {
	return &DataHandler{svc: svc}
}

// GetActivity handles GET /api/activity/:city.
func (h *DataHandler) GetActivity(c *gin.Context) {
	days, err := parseDays(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.svc.GetActivity(c.Request.Context(), c.Param("city"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetEnvironmental handles GET /api/environmental/:city.
func (h *DataHandler) GetEnvironmental(c *gin.Context) {
	days, err := parseDays(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.svc.GetEnvironmental(c.Request.Context(), c.Param("city"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetMarket handles GET /api/market/:coin.
func (h *DataHandler) GetMarket(c *gin.Context) {
	days, err := parseDays(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.svc.GetMarket(c.Request.Context(), c.Param("coin"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCorrelation handles GET /api/correlation/:city.
func (h *DataHandler) GetCorrelation(c *gin.Context) {
	days, err := parseDays(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.svc.GetCorrelation(c.Request.Context(), c.Param("city"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseDays(c *gin.Context) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return defaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, services.ErrInvalidDays
	}
	return days, nil
}

// respondError maps service errors to HTTP statuses. Unknown entities are
// the only hard failure; bad day counts are client errors; anything else is
// unexpected because the service degrades to synthetic data instead of
// failing.
func respondError(c *gin.Context, err error) {
	var notFound *registry.NotFoundError
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.Is(err, services.ErrInvalidDays):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
