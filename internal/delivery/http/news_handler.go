package http

import (
	"net/http"

	"golang-stock-sentiment/internal/dto"
	"golang-stock-sentiment/internal/service"
	"golang-stock-sentiment/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NewsHandler handles HTTP requests for news ingestion and daily summaries.
type NewsHandler struct {
	newsService service.NewsService
	logger      *logger.Logger
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(newsService service.NewsService, logger *logger.Logger) *NewsHandler {
	return &NewsHandler{newsService: newsService, logger: logger}
}

// RegisterRoutes registers the news routes to the Echo group.
func (h *NewsHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/news", h.FetchNews)
	g.GET("/summary", h.GetSummary)
}

// FetchNews triggers feed ingestion for the requested stocks.
func (h *NewsHandler) FetchNews(c echo.Context) error {
	var req dto.NewsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	result, err := h.newsService.Ingest(c.Request().Context(), req.Stocks)
	if err != nil {
		h.logger.Error("Failed to ingest news", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	// Per-stock failures are reported in the body; only a fully failed
	// batch turns into a server error.
	if len(req.Stocks) > 0 && len(result.Errors) == len(req.Stocks) {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":  "ingestion failed for all stocks",
			"errors": result.Errors,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":    "success",
		"message":   "News updated",
		"new_items": result.NewItems,
		"errors":    result.Errors,
	})
}

// GetSummary returns all daily summaries.
func (h *NewsHandler) GetSummary(c echo.Context) error {
	records, err := h.newsService.GetSummaries(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get summaries", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, records)
}
