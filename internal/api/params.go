package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jfcardenasg/corredash/internal/apperrors"
)

// Query parameter parsing shared by the dashboard and benchmark handlers.
// Validation errors are returned as apperrors.ErrInvalidParameter wraps so
// the error middleware maps them to 400 with field detail.

// yearParam parses the required "year" query parameter.
func yearParam(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("year"))
	if raw == "" {
		return 0, apperrors.InvalidParameterf("year", "is required")
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		return 0, apperrors.InvalidParameterf("year", "must be a positive integer, got %q", raw)
	}
	return year, nil
}

// monthParam parses the optional "month" query parameter. Absent or "all"
// means all months (0).
func monthParam(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("month"))
	if raw == "" || strings.EqualFold(raw, "all") {
		return 0, nil
	}
	mes, err := strconv.Atoi(raw)
	if err != nil || mes < 1 || mes > 12 {
		return 0, apperrors.InvalidParameterf("month", "must be 1-12 or all, got %q", raw)
	}
	return mes, nil
}

// boolParam parses an optional boolean query parameter with a default.
func boolParam(c *gin.Context, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.InvalidParameterf(name, "must be a boolean, got %q", raw)
	}
	return v, nil
}

// intParam parses an optional integer query parameter with a default.
func intParam(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidParameterf(name, "must be an integer, got %q", raw)
	}
	return v, nil
}

// csvParam parses a comma-separated list parameter, dropping empty items.
func csvParam(c *gin.Context, name string) []string {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
