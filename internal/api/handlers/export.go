package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codesmog/codesmog-go/internal/export"
	"github.com/codesmog/codesmog-go/internal/services"
)

// ExportHandler serves correlation results as downloadable CSV or JSON.
type ExportHandler struct {
	svc *services.DataService
}

// NewExportHandler creates the export handler.
func NewExportHandler(svc *services.DataService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// parseExportRequest extracts the day count and format shared by all export
// routes.
func parseExportRequest(c *gin.Context) (days int, format string, ok bool) {
	days, err := parseDays(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, "", false
	}
	format = c.DefaultQuery("format", "json")
	if format != "csv" && format != "json" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or json"})
		return 0, "", false
	}
	return days, format, true
}

func attachmentName(c *gin.Context, kind, slug string, days int, format string) {
	filename := fmt.Sprintf("%s-%s-%dd.%s", kind, slug, days, format)
	c.Header("Content-Disposition", "attachment; filename="+filename)
}

// ExportCorrelation handles GET /api/export/correlation/:city?format=csv|json.
func (h *ExportHandler) ExportCorrelation(c *gin.Context) {
	days, format, ok := parseExportRequest(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetCorrelation(c.Request.Context(), c.Param("city"), days)
	if err != nil {
		respondError(c, err)
		return
	}

	attachmentName(c, "correlation", c.Param("city"), days, format)

	if format == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		if err := export.WriteCorrelationCSV(c.Writer, resp.Data.Correlation); err != nil {
			_ = c.Error(err)
		}
		return
	}

	data, err := export.CorrelationJSON(resp.Data.Correlation)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode correlation"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// ExportActivity handles GET /api/export/activity/:city?format=csv|json.
func (h *ExportHandler) ExportActivity(c *gin.Context) {
	days, format, ok := parseExportRequest(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetActivity(c.Request.Context(), c.Param("city"), days)
	if err != nil {
		respondError(c, err)
		return
	}

	attachmentName(c, "activity", c.Param("city"), days, format)

	if format == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		if err := export.WriteActivityCSV(c.Writer, resp.Data); err != nil {
			_ = c.Error(err)
		}
		return
	}
	c.JSON(http.StatusOK, resp.Data)
}

// ExportEnvironmental handles GET /api/export/environmental/:city?format=csv|json.
func (h *ExportHandler) ExportEnvironmental(c *gin.Context) {
	days, format, ok := parseExportRequest(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetEnvironmental(c.Request.Context(), c.Param("city"), days)
	if err != nil {
		respondError(c, err)
		return
	}

	attachmentName(c, "environmental", c.Param("city"), days, format)

	if format == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		if err := export.WriteEnvironmentalCSV(c.Writer, resp.Data); err != nil {
			_ = c.Error(err)
		}
		return
	}
	c.JSON(http.StatusOK, resp.Data)
}
