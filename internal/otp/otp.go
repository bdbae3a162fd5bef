package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"

	"jobportal/internal/cache"
	"jobportal/internal/config"
)

var (
	ErrRateLimited = errors.New("too many OTP requests, try again later")
	ErrCodeInvalid = errors.New("invalid or expired OTP code")
)

// Service issues and verifies one-time login codes. Codes live in the
// cache under a TTL and are consumed on first successful verification.
type Service interface {
	Generate(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) error
}

type service struct {
	store cache.Store
	cfg   config.OTPConfig
}

func NewService(store cache.Store, cfg config.OTPConfig) Service {
	return &service{store: store, cfg: cfg}
}

func codeKey(email string) string {
	return "otp:code:" + email
}

func rateKey(email string) string {
	return "otp:rate:" + email
}

// Generate issues a fresh 6-digit code for the address, replacing any
// previous one. Requests beyond the per-address limit inside the rate
// window are rejected.
func (s *service) Generate(ctx context.Context, email string) (string, error) {
	attempts, err := s.store.Incr(ctx, rateKey(email), s.cfg.RateWindow)
	if err != nil {
		return "", fmt.Errorf("failed to track OTP requests: %w", err)
	}
	if attempts > int64(s.cfg.RateLimit) {
		return "", ErrRateLimited
	}

	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP code: %w", err)
	}

	if err := s.store.Set(ctx, codeKey(email), code, s.cfg.TTL); err != nil {
		return "", fmt.Errorf("failed to store OTP code: %w", err)
	}
	return code, nil
}

// Verify checks the submitted code and consumes it on success, so a
// code can only be used once.
func (s *service) Verify(ctx context.Context, email, code string) error {
	stored, found, err := s.store.Get(ctx, codeKey(email))
	if err != nil {
		return fmt.Errorf("failed to load OTP code: %w", err)
	}
	if !found {
		return ErrCodeInvalid
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrCodeInvalid
	}

	if err := s.store.Del(ctx, codeKey(email)); err != nil {
		return fmt.Errorf("failed to consume OTP code: %w", err)
	}
	return nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
