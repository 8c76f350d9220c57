package service

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jfcardenasg/corredash/config"
	"github.com/jfcardenasg/corredash/internal/apperrors"
	"github.com/jfcardenasg/corredash/internal/domain/dto"
	"github.com/jfcardenasg/corredash/internal/middleware"
	"github.com/jfcardenasg/corredash/internal/storage"
)

// AuthService issues bearer tokens for dashboard sessions. Session
// verification lives in the middleware; this side only authenticates
// credentials and signs tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*dto.LoginResponse, error)
}

type authService struct {
	ref storage.ReferenceRepository
	cfg config.AuthConfig
	now func() time.Time
}

func NewAuthService(ref storage.ReferenceRepository, cfg config.AuthConfig) AuthService {
	return &authService{ref: ref, cfg: cfg, now: time.Now}
}

// Login verifies the credentials against the users table and returns a
// signed token. Unknown users, wrong passwords and deactivated accounts all
// map to the same ErrUnauthorized so the response does not leak which part
// failed.
func (s *authService) Login(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	if username == "" || password == "" {
		return nil, apperrors.InvalidParameterf("username", "username and password are required")
	}

	user, err := s.ref.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	if user == nil || !user.Activo {
		return nil, apperrors.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrUnauthorized
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(s.cfg.TokenTTLMinutes) * time.Minute)
	claims := middleware.SessionClaims{
		Role:       user.Role,
		TraderName: user.TraderName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:      signed,
		ExpiresAt:  expiresAt,
		Role:       user.Role,
		TraderName: user.TraderName,
	}, nil
}
