package service

import (
	"errors"
	"strings"
	"time"

	"github.com/catalog-next/internal/config"
	"github.com/catalog-next/internal/constants"
	"github.com/catalog-next/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims identify the caller on protected routes.
type AccessClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Type     string `json:"type,omitempty"` // empty; set only on other token kinds
	jwt.RegisteredClaims
}

// RefreshClaims are exchanged for a new token pair. The jti is matched
// against the stored refresh token so each one works once.
type RefreshClaims struct {
	UserID uint   `json:"user_id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// ResetClaims authorize a single password reset for the embedded email.
type ResetClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is returned by register, login and refresh.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int64     `json:"expires_in"` // access token lifetime in seconds
	RefreshTokenID   string    `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// TokenService signs and verifies the three token kinds. Access and reset
// tokens share the access secret; refresh tokens use their own.
type TokenService struct {
	cfg config.JWTConfig
	now func() time.Time
}

// NewTokenService creates a token service. Zero TTLs fall back to defaults.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	if cfg.AccessExpireMinutes <= 0 {
		cfg.AccessExpireMinutes = 15
	}
	if cfg.RefreshExpireDays <= 0 {
		cfg.RefreshExpireDays = 7
	}
	if cfg.ResetExpireMinutes <= 0 {
		cfg.ResetExpireMinutes = 60
	}
	return &TokenService{cfg: cfg, now: time.Now}
}

// SetClock overrides the time source.
func (s *TokenService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *TokenService) accessTTL() time.Duration {
	return time.Duration(s.cfg.AccessExpireMinutes) * time.Minute
}

func (s *TokenService) refreshTTL() time.Duration {
	return time.Duration(s.cfg.RefreshExpireDays) * 24 * time.Hour
}

func (s *TokenService) resetTTL() time.Duration {
	return time.Duration(s.cfg.ResetExpireMinutes) * time.Minute
}

func (s *TokenService) registered(ttl time.Duration, id string) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ID:        id,
		Issuer:    s.cfg.Issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

// IssueTokenPair signs a fresh access and refresh token for user.
func (s *TokenService) IssueTokenPair(user *models.User) (*TokenPair, error) {
	if user == nil {
		return nil, ErrUserNotFound
	}
	access := AccessClaims{
		UserID:           user.ID,
		Username:         user.Username,
		Email:            user.Email,
		Role:             user.Role,
		RegisteredClaims: s.registered(s.accessTTL(), ""),
	}
	accessToken, err := sign(access, s.cfg.AccessSecret)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.NewString()
	refresh := RefreshClaims{
		UserID:           user.ID,
		Type:             constants.TokenTypeRefresh,
		RegisteredClaims: s.registered(s.refreshTTL(), tokenID),
	}
	refreshToken, err := sign(refresh, s.cfg.RefreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        int64(s.accessTTL().Seconds()),
		RefreshTokenID:   tokenID,
		RefreshExpiresAt: refresh.ExpiresAt.Time,
	}, nil
}

// IssueResetToken signs a password reset token bound to the user's email.
func (s *TokenService) IssueResetToken(user *models.User) (string, error) {
	if user == nil {
		return "", ErrUserNotFound
	}
	claims := ResetClaims{
		UserID:           user.ID,
		Email:            user.Email,
		Type:             constants.TokenTypePasswordReset,
		RegisteredClaims: s.registered(s.resetTTL(), ""),
	}
	return sign(claims, s.cfg.AccessSecret)
}

// VerifyAccess validates an access token.
func (s *TokenService) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, s.cfg.AccessSecret, claims); err != nil {
		return nil, err
	}
	if claims.UserID == 0 || claims.Type != "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token and its type claim.
func (s *TokenService) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenString, s.cfg.RefreshSecret, claims); err != nil {
		return nil, err
	}
	if claims.Type != constants.TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	if claims.UserID == 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyReset validates a password reset token and its type claim.
func (s *TokenService) VerifyReset(tokenString string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := s.parse(tokenString, s.cfg.AccessSecret, claims); err != nil {
		return nil, err
	}
	if claims.Type != constants.TokenTypePasswordReset {
		return nil, ErrWrongTokenType
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) parse(tokenString, secret string, claims jwt.Claims) error {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ErrMissingToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func sign(claims jwt.Claims, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
