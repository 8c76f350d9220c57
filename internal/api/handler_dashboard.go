package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jfcardenasg/corredash/internal/apperrors"
	"github.com/jfcardenasg/corredash/internal/domain/dto"
	"github.com/jfcardenasg/corredash/internal/middleware"
	"github.com/jfcardenasg/corredash/internal/service"
	"github.com/jfcardenasg/corredash/internal/storage"
)

// DashboardHandler provides HTTP handlers for the aggregation endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Call the aggregation engine
//   - Translate results and the error taxonomy into JSON responses
type DashboardHandler struct {
	svc service.DashboardService
}

// NewDashboardHandler constructs a new DashboardHandler instance.
func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Shared by all handlers in this package.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidParameter):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithCode("invalid_parameter", "invalid request parameters", err))
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponseWithCode("unauthorized", "invalid credentials", nil))
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithCode("upstream_unavailable", "data store unreachable", err))
	default:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("internal error", err))
	}
}

// GetSummary handles GET /api/v1/dashboard/summary requests.
//
// Query Parameters:
//   - year (int, required): Calendar year to aggregate.
//   - month (string, optional): 1-12 or "all" (default all).
//   - trader (string, optional): Restrict to one corredor.
//   - withGroups (bool, optional): Zero-fill all 12 months in the trend
//     series (default false).
//
// GetSummary godoc
// @Summary      Dashboard summary
// @Description  Returns KPIs, top-N rankings and the monthly trend series for the filtered transaction set
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        year        query     int     true   "Calendar year" example(2025)
// @Param        month       query     string  false  "Month 1-12 or all" example(all)
// @Param        trader      query     string  false  "Corredor filter"
// @Param        withGroups  query     bool    false  "Zero-fill empty months"
// @Success      200         {object}  models.DashboardSummary  "Success"
// @Failure      400         {object}  dto.ErrorResponse        "Bad Request"
// @Failure      401         {object}  dto.ErrorResponse        "Unauthorized"
// @Failure      503         {object}  dto.ErrorResponse        "Store Unreachable"
// @Router       /api/v1/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	// ─── Validate query params ────────────────────────────────
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
	withGroups, err := boolParam(c, "withGroups", false)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	f := storage.Filter{Year: year, Month: mes, Trader: c.Query("trader")}

	// ─── Query engine (with request context) ──────────────────
	summary, err := h.svc.GetSummary(c.Request.Context(), f, withGroups)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// layoutOwner resolves whose layout a request targets: the authenticated
// subject, or the userId query parameter when the route is mounted without
// the auth middleware (tests, internal tooling).
func layoutOwner(c *gin.Context) string {
	if id := c.GetString(middleware.UserIDKey); id != "" {
		return id
	}
	return c.Query("userId")
}

// GetLayout handles GET /api/v1/dashboard/layout requests. Returns the raw
// stored blob, or a JSON null when the user never saved one.
//
// GetLayout godoc
// @Summary      Load dashboard layout
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        userId  query     string  true  "User id"
// @Success      200     {object}  object  "Stored layout blob or null"
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/v1/dashboard/layout [get]
func (h *DashboardHandler) GetLayout(c *gin.Context) {
	userID := layoutOwner(c)
	raw, err := h.svc.GetLayout(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if raw == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	// Serve the saved bytes verbatim so the round trip is byte-identical.
	c.Data(http.StatusOK, "application/json", raw)
}

// SaveLayout handles POST /api/v1/dashboard/layout requests. The body is
// stored verbatim (after a well-formedness check) and echoed back by later
// GetLayout calls.
//
// SaveLayout godoc
// @Summary      Save dashboard layout
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  query     string  true  "User id"
// @Param        layout  body      object  true  "Layout blob (widget toggles keyed by string id)"
// @Success      204     "Saved"
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/v1/dashboard/layout [post]
func (h *DashboardHandler) SaveLayout(c *gin.Context) {
	userID := layoutOwner(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeServiceError(c, apperrors.InvalidParameterf("layout", "unreadable body: %v", err))
		return
	}

	if err := h.svc.SaveLayout(c.Request.Context(), userID, body); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetBudget handles GET /api/v1/dashboard/budget requests: actual-vs-target
// rows for the filtered period.
//
// GetBudget godoc
// @Summary      Budget comparison
// @Description  Joins presupuesto targets against aggregated actuals and reports variances
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        year    query     int     true   "Calendar year"
// @Param        month   query     string  false  "Month 1-12 or all"
// @Param        trader  query     string  false  "Corredor filter"
// @Success      200     {array}   models.BudgetVariance
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/v1/dashboard/budget [get]
func (h *DashboardHandler) GetBudget(c *gin.Context) {
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

	rows, err := h.svc.BudgetComparison(c.Request.Context(), storage.Filter{Year: year, Month: mes, Trader: c.Query("trader")})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
