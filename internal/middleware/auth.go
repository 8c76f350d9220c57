package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jfcardenasg/corredash/internal/domain/dto"
	"github.com/jfcardenasg/corredash/internal/logger"
)

// Context keys populated by Auth for downstream handlers.
const (
	UserIDKey     = "user_id"
	UserRoleKey   = "user_role"
	TraderNameKey = "trader_name"
)

// SessionClaims are the claims carried by a corredash bearer token.
// Role and TraderName let handlers scope queries without a user lookup.
type SessionClaims struct {
	Role       string `json:"role"`
	TraderName string `json:"trader_name,omitempty"`
	jwt.RegisteredClaims
}

// Auth returns a Gin middleware that validates the "Authorization: Bearer"
// header against the configured HMAC secret.
//
// Behavior:
//   - Missing or malformed header → 401 with code "unauthorized".
//   - Expired token → 401 with code "session_expired"; the client uses this
//     to run its countdown-then-logout flow, distinct from other failures.
//   - Any other invalid token → 401 with code "unauthorized".
//   - Valid token → stores subject, role and trader name in the Gin context
//     and continues.
//
// Usage:
//
//	v1 := router.Group("/api/v1", middleware.Auth(cfg.Auth.JWTSecret))
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithCode("unauthorized", "Authorization header required", nil))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithCode("unauthorized", "Authorization header format must be Bearer {token}", nil))
			return
		}

		claims := &SessionClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})

		if err != nil {
			code := "unauthorized"
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				// Expired sessions get a dedicated code so the front end can
				// show its countdown instead of a generic error state.
				code = "session_expired"
				msg = "session expired"
			}
			logger.L().Warn().Err(err).Str("path", c.Request.URL.Path).Msg("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithCode(code, msg, nil))
			return
		}

		if !token.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithCode("unauthorized", "invalid token claims", nil))
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(UserRoleKey, claims.Role)
		c.Set(TraderNameKey, claims.TraderName)

		c.Next()
	}
}
