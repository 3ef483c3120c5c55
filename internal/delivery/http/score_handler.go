package http

import (
	"net/http"
	"strconv"
	"time"

	"golang-stock-sentiment/internal/config"
	"golang-stock-sentiment/internal/dto"
	"golang-stock-sentiment/internal/service"
	"golang-stock-sentiment/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScoreHandler handles HTTP requests for composite scores and full
// analysis runs.
type ScoreHandler struct {
	cfg              *config.Config
	compositeService service.CompositeService
	analysisService  service.AnalysisService
	logger           *logger.Logger
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(cfg *config.Config, compositeService service.CompositeService, analysisService service.AnalysisService, logger *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		cfg:              cfg,
		compositeService: compositeService,
		analysisService:  analysisService,
		logger:           logger,
	}
}

// RegisterRoutes registers the score routes to the Echo group.
func (h *ScoreHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/composite-score", h.GetCompositeScore)
	g.GET("/historical-scores", h.GetHistoricalScores)
	g.POST("/run-analysis", h.RunAnalysis)
}

// GetCompositeScore computes and persists today's composite scores.
func (h *ScoreHandler) GetCompositeScore(c echo.Context) error {
	scores, err := h.compositeService.Compute(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to compute composite scores", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	if len(scores) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "No composite scores available for today"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"date":   time.Now().UTC().Format("2006-01-02"),
		"scores": scores,
	})
}

// GetHistoricalScores returns the trailing window of stored scores.
func (h *ScoreHandler) GetHistoricalScores(c echo.Context) error {
	days := h.cfg.Analysis.HistoricalDays
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "days must be an integer"})
		}
		days = parsed
	}
	stock := c.QueryParam("stock")

	scores, err := h.compositeService.Historical(c.Request().Context(), days, stock)
	if err != nil {
		h.logger.Error("Failed to get historical scores", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	// An empty window is a valid answer, unlike /composite-score.
	return c.JSON(http.StatusOK, echo.Map{
		"lookback_days": days,
		"scores":        scores,
	})
}

// RunAnalysis runs the full pipeline for the requested stocks.
func (h *ScoreHandler) RunAnalysis(c echo.Context) error {
	var req dto.NewsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	result, err := h.analysisService.RunAnalysis(c.Request().Context(), req.Stocks)
	if err != nil {
		h.logger.Error("Failed to run analysis", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":            "success",
		"requests_used":     result.RequestsUsed,
		"new_items":         result.Ingest.NewItems,
		"ingest_errors":     result.Ingest.Errors,
		"composite_scores":  result.CompositeScores,
		"historical_scores": result.HistoricalScores,
	})
}
