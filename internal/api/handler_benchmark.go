package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jfcardenasg/corredash/internal/service"
)

// BenchmarkHandler provides HTTP handlers for the market-benchmark
// endpoints. Every handler answers 200 with a JSON null (or empty body)
// when the requested scope simply has no data; only store failures become
// error statuses.
type BenchmarkHandler struct {
	svc service.BenchmarkService
}

// NewBenchmarkHandler constructs a new BenchmarkHandler instance.
func NewBenchmarkHandler(svc service.BenchmarkService) *BenchmarkHandler {
	return &BenchmarkHandler{svc: svc}
}

// GetSummary handles GET /api/v1/benchmark/summary requests.
//
// GetSummary godoc
// @Summary      Market summary
// @Description  Total traders, total traded volume and the most active month of one year
// @Tags         benchmark
// @Produce      json
// @Security     BearerAuth
// @Param        year  query     int  true  "Calendar year" example(2025)
// @Success      200   {object}  models.MarketSummary  "Summary or null when the year is empty"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/v1/benchmark/summary [get]
func (h *BenchmarkHandler) GetSummary(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	summary, err := h.svc.Summary(c.Request.Context(), year)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetRanking handles GET /api/v1/benchmark/ranking requests.
//
// GetRanking godoc
// @Summary      Market ranking
// @Description  Traders ordered by volume with market share and 1-indexed position
// @Tags         benchmark
// @Produce      json
// @Security     BearerAuth
// @Param        year   query     int     true   "Calendar year"
// @Param        month  query     string  false  "Month 1-12 or all"
// @Param        limit  query     int     false  "Max rows (default all)"
// @Success      200    {array}   models.MarketRankingRow
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/v1/benchmark/ranking [get]
func (h *BenchmarkHandler) GetRanking(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	mes, err := monthParam(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	limit, err := intParam(c, "limit", 0)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	rows, err := h.svc.Ranking(c.Request.Context(), year, mes, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetTrends handles GET /api/v1/benchmark/trends requests.
//
// GetTrends godoc
// @Summary      Market trends
// @Description  Monthly volume series for the whole market and per trader
// @Tags         benchmark
// @Produce      json
// @Security     BearerAuth
// @Param        year  query     int  true  "Calendar year"
// @Success      200   {object}  models.TrendData  "Trend data or null when the year is empty"
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/benchmark/trends [get]
func (h *BenchmarkHandler) GetTrends(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	trends, err := h.svc.Trends(c.Request.Context(), year)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

// GetCorreagro handles GET /api/v1/benchmark/correagro requests. A JSON
// null body means the reference brokerage had no transactions that year,
// which the front end renders as a "no data" card, not an error.
//
// GetCorreagro godoc
// @Summary      Reference brokerage position
// @Description  Rank, market share and volume gaps of the reference brokerage
// @Tags         benchmark
// @Produce      json
// @Security     BearerAuth
// @Param        year  query     int  true  "Calendar year"
// @Success      200   {object}  models.CorreagroStats  "Stats or null when no data"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/v1/benchmark/correagro [get]
func (h *BenchmarkHandler) GetCorreagro(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	stats, err := h.svc.Correagro(c.Request.Context(), year)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetCompare handles GET /api/v1/benchmark/compare requests.
//
// GetCompare godoc
// @Summary      Compare traders
// @Description  Shares, volume histories, growth and the gap between the top two traders of a set over a trailing window
// @Tags         benchmark
// @Produce      json
// @Security     BearerAuth
// @Param        ids     query     string  true   "Comma-separated corredor names"
// @Param        period  query     int     false  "Trailing months (default 12)"
// @Success      200     {object}  models.ComparisonData  "Comparison or null when no data"
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/v1/benchmark/compare [get]
func (h *BenchmarkHandler) GetCompare(c *gin.Context) {
	names := csvParam(c, "ids")
	period, err := intParam(c, "period", 12)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	data, err := h.svc.Compare(c.Request.Context(), names, period)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// GetSectors handles GET /api/v1/benchmark/sectors requests: the stored
// sector breakdown is passed through unmodified.
//
// GetSectors godoc
// @Summary      Sector breakdown
// @Tags         benchmark
// @Produce      json
// @Security     BearerAuth
// @Param        year  query  int  true  "Calendar year"
// @Success      200   {object}  object  "Stored payload or null"
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/benchmark/sectors [get]
func (h *BenchmarkHandler) GetSectors(c *gin.Context) {
	h.snapshot(c, "sectors")
}

// GetProducts handles GET /api/v1/benchmark/products requests: the stored
// product breakdown is passed through unmodified.
//
// GetProducts godoc
// @Summary      Product breakdown
// @Tags         benchmark
// @Produce      json
// @Security     BearerAuth
// @Param        year  query  int  true  "Calendar year"
// @Success      200   {object}  object  "Stored payload or null"
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/benchmark/products [get]
func (h *BenchmarkHandler) GetProducts(c *gin.Context) {
	h.snapshot(c, "products")
}

func (h *BenchmarkHandler) snapshot(c *gin.Context, kind string) {
	year, err := yearParam(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	raw, err := h.svc.Snapshot(c.Request.Context(), kind, year)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if raw == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
