package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jfcardenasg/corredash/internal/domain/models"
	"github.com/jfcardenasg/corredash/internal/middleware"
)

const routerTestSecret = "router-test-secret"

func bearerToken(t *testing.T) string {
	t.Helper()
	claims := middleware.SessionClaims{
		Role: models.RoleBusinessIntelligence,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(routerTestSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	deps := RouterDeps{
		Dashboard: NewDashboardHandler(&mockDashboardService{summary: &models.DashboardSummary{
			MonthlySummary: []models.MonthlyBucket{{Month: 3}},
		}}),
		Benchmark: NewBenchmarkHandler(&mockBenchmarkService{summary: &models.MarketSummary{TotalTraders: 2}}),
		Auth:      NewAuthHandler(&mockAuthService{}),
		JWTSecret: routerTestSecret,
	}
	return NewRouter(deps)
}

func TestNewRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r := testRouter()

	protected := []string{
		"/api/v1/dashboard/summary?year=2024",
		"/api/v1/dashboard/budget?year=2024",
		"/api/v1/benchmark/summary?year=2024",
		"/api/v1/benchmark/ranking?year=2024",
	}
	for _, path := range protected {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token: want 401 got %d", path, w.Code)
		}
	}
}

func TestNewRouter_WiringAndMiddlewares(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?year=2024", nil)
	req.Header.Set("Authorization", bearerToken(t))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.Bytes())
	}

	// Ensure RequestID middleware injected header
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}

	var out models.DashboardSummary
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if len(out.MonthlySummary) != 1 || out.MonthlySummary[0].Month != 3 {
		t.Fatalf("unexpected body: %+v", out)
	}
}

func TestNewRouter_LoginIsPublic(t *testing.T) {
	r := testRouter()

	// No Authorization header; the route must still be reachable (the mock
	// rejects nil credentials with a 200/err mapping handled by the handler).
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code == http.StatusUnauthorized && w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("login route must not sit behind the auth middleware")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty body should be a 400, got %d", w.Code)
	}
}
