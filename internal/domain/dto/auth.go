package dto

import "time"

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"amartinez"`
	Password string `json:"password" binding:"required" example:"secret"`
}

// LoginResponse carries the issued bearer token plus the account attributes
// the front end needs to scope its views.
//
// swagger:model LoginResponse
type LoginResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	Role       string    `json:"role" example:"business_intelligence"`
	TraderName string    `json:"trader_name,omitempty"`
}
