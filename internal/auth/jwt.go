package auth

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"jobportal/internal/config"
	"jobportal/internal/models"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email,omitempty"`
	Role   models.UserRole `json:"role"`

	jwtlib.RegisteredClaims
}

type TokenService interface {
	Generate(userID uint, email string, role models.UserRole) (string, error)
	Validate(tokenString string) (Claims, error)
}

type hmacTokenService struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewTokenService(cfg config.JWTConfig) TokenService {
	return &hmacTokenService{
		secret:    []byte(cfg.Secret),
		expiresIn: cfg.ExpiresIn,
		now:       time.Now,
	}
}

func (s *hmacTokenService) Generate(userID uint, email string, role models.UserRole) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT secret is not configured")
	}

	now := s.now().UTC()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.expiresIn)),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *hmacTokenService) Validate(tokenString string) (Claims, error) {
	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.now),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(tokenString, &claims, func(*jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if token == nil || !token.Valid {
		return Claims{}, ErrTokenInvalid
	}
	if claims.UserID == 0 {
		return Claims{}, ErrTokenInvalid
	}

	return claims, nil
}
