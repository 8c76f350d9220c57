package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jfcardenasg/corredash/internal/apperrors"
	"github.com/jfcardenasg/corredash/internal/domain/dto"
	"github.com/jfcardenasg/corredash/internal/service"
)

// AuthHandler exposes the public login endpoint.
type AuthHandler struct {
	svc service.AuthService
}

// NewAuthHandler constructs a new AuthHandler instance.
func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login handles POST /auth/login requests.
//
// Login godoc
// @Summary      Log in
// @Description  Authenticates a user and issues a bearer token for the dashboard session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      dto.LoginRequest  true  "Credentials"
// @Success      200          {object}  dto.LoginResponse
// @Failure      400          {object}  dto.ErrorResponse  "Malformed body"
// @Failure      401          {object}  dto.ErrorResponse  "Invalid credentials"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperrors.InvalidParameterf("body", "invalid login payload: %v", err))
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
