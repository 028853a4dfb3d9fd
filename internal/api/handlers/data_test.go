package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesmog/codesmog-go/internal/cache"
	"github.com/codesmog/codesmog-go/internal/mockdata"
	"github.com/codesmog/codesmog-go/internal/models"
	"github.com/codesmog/codesmog-go/internal/registry"
	"github.com/codesmog/codesmog-go/internal/services"
)

// testRouter wires the handlers against a mock-only service so no live
// provider is ever contacted.
func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	reg := registry.New()
	svc := services.NewDataService(
		reg,
		nil, nil, nil,
		mockdata.New(),
		cache.NewMemoryStore(),
		services.TTLs{
			Activity:      15 * time.Minute,
			Environmental: 15 * time.Minute,
			Correlation:   15 * time.Minute,
			Market:        5 * time.Minute,
		},
		true,
		logger,
		nil,
	)

	router := gin.New()
	data := NewDataHandler(svc)
	catalog := NewCatalogHandler(reg)
	exports := NewExportHandler(svc)
	health := NewHealthHandler("test")

	router.GET("/health", health.Health)
	router.GET("/api/activity/:city", data.GetActivity)
	router.GET("/api/environmental/:city", data.GetEnvironmental)
	router.GET("/api/market/:coin", data.GetMarket)
	router.GET("/api/correlation/:city", data.GetCorrelation)
	router.GET("/api/export/correlation/:city", exports.ExportCorrelation)
	router.GET("/api/export/activity/:city", exports.ExportActivity)
	router.GET("/api/export/environmental/:city", exports.ExportEnvironmental)
	router.GET("/api/cities", catalog.GetCities)
	router.GET("/api/coins", catalog.GetCoins)
	return router
}

func doRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetActivity_DefaultsToThirtyDays(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/activity/berlin")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ActivityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.SourceMock, resp.Source)
	assert.Len(t, resp.Data, 30)
}

func TestGetActivity_ExplicitDays(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/activity/berlin?days=7")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ActivityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 7)
}

func TestGetActivity_BadDays(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{
		"/api/activity/berlin?days=15",
		"/api/activity/berlin?days=abc",
		"/api/activity/berlin?days=-7",
	} {
		w := doRequest(router, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), "days must be one of", path)
	}
}

func TestGetActivity_UnknownCity(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/activity/atlantis")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `city \"atlantis\" is not in the catalog`)
}

func TestGetEnvironmental_OK(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/environmental/tokyo?days=14")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.EnvironmentalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 14)
	assert.Equal(t, "tokyo", resp.Data[0].City)
}

func TestGetMarket_OKAndUnknownCoin(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/market/bitcoin?days=7")
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.MarketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 7)

	w = doRequest(router, "/api/market/dunecoin")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCorrelation_OK(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/correlation/berlin?days=30")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.CorrelationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.SourceMock, resp.Source)
	assert.Equal(t, "berlin", resp.Data.Correlation.City)
	assert.Equal(t, 30, resp.Data.Correlation.DataPoints)
	assert.NotEmpty(t, resp.Data.Significance.ConfidenceLevel)
}

func TestExportCorrelation_CSV(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/export/correlation/berlin?days=7&format=csv")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=correlation-berlin-7d.csv", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "city,period,data_points,confidence,metric,coefficient")
}

func TestExportCorrelation_JSONDefault(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/export/correlation/berlin?days=7")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=correlation-berlin-7d.json", w.Header().Get("Content-Disposition"))

	var result models.CorrelationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "berlin", result.City)
	assert.Equal(t, 7, result.Period)
}

func TestExportActivity_CSV(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/export/activity/berlin?days=7&format=csv")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=activity-berlin-7d.csv", w.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 8, "header plus one row per day")
	assert.Equal(t, "date,city,commits,stars,repositories,contributors", lines[0])
	assert.Contains(t, lines[1], ",berlin,")
}

func TestExportActivity_JSON(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/export/activity/berlin?days=7")

	require.Equal(t, http.StatusOK, w.Code)
	var samples []models.ActivitySample
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &samples))
	assert.Len(t, samples, 7)
	assert.Equal(t, "berlin", samples[0].City)
}

func TestExportEnvironmental_CSV(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/export/environmental/tokyo?days=7&format=csv")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=environmental-tokyo-7d.csv", w.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "date,city,aqi,pm25,station_name,lat,lng", lines[0])
	assert.Contains(t, lines[1], ",tokyo,")
}

func TestExportSeries_UnknownCityAndBadFormat(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/export/activity/atlantis?format=csv")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, "/api/export/environmental/tokyo?format=xml")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportCorrelation_BadFormat(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/export/correlation/berlin?format=xml")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "format must be csv or json")
}

func TestGetCities(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/cities")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []registry.City `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 14)
}

func TestGetCoins(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/api/coins")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []registry.Coin `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 5)
}

func TestHealth(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, "/health")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"version":"test"`)
}
