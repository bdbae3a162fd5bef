package handlers

import (
	"errors"
	"log"
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"

	"jobportal/internal/auth"
	"jobportal/internal/mailer"
	"jobportal/internal/models"
	"jobportal/internal/otp"
	"jobportal/internal/repositories"
)

type AuthHandler struct {
	otp    otp.Service
	mailer mailer.Mailer
	users  repositories.UserRepository
	tokens auth.TokenService
}

func NewAuthHandler(
	otpService otp.Service,
	mailService mailer.Mailer,
	users repositories.UserRepository,
	tokens auth.TokenService,
) *AuthHandler {
	return &AuthHandler{
		otp:    otpService,
		mailer: mailService,
		users:  users,
		tokens: tokens,
	}
}

// HandleRequestOTP emails a one-time login code. The response is the
// same whether or not delivery succeeded, so the endpoint cannot be
// used to probe for registered addresses.
func (h *AuthHandler) HandleRequestOTP(c *fiber.Ctx) error {
	var req models.RequestOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	email, ok := normalizeEmail(req.Email)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "A valid email address is required",
		})
	}

	code, err := h.otp.Generate(c.Context(), email)
	if err != nil {
		if errors.Is(err, otp.ErrRateLimited) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests. Please try again later.",
			})
		}
		log.Printf("❌ Failed to generate OTP for %s: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Something went wrong. Please try again later.",
		})
	}

	if err := h.mailer.SendOTP(email, code); err != nil {
		log.Printf("❌ Failed to deliver OTP to %s: %v", email, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "If the address is valid, a login code has been sent",
	})
}

// HandleVerifyOTP exchanges a valid code for a bearer token, creating
// the account on first login.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req models.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	email, ok := normalizeEmail(req.Email)
	if !ok || strings.TrimSpace(req.Code) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Email and code are required",
		})
	}

	if err := h.otp.Verify(c.Context(), email, strings.TrimSpace(req.Code)); err != nil {
		if errors.Is(err, otp.ErrCodeInvalid) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid or expired code",
			})
		}
		log.Printf("❌ Failed to verify OTP for %s: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Something went wrong. Please try again later.",
		})
	}

	user, err := h.users.FindOrCreateByEmail(c.Context(), email)
	if err != nil {
		log.Printf("❌ Failed to resolve user %s: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Something went wrong. Please try again later.",
		})
	}

	token, err := h.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		log.Printf("❌ Failed to issue token for %s: %v", email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Something went wrong. Please try again later.",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", false
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", false
	}
	return email, true
}
