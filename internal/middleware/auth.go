package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"jobportal/internal/auth"
	"jobportal/internal/models"
)

const (
	CtxUserIDKey = "user_id"
	CtxEmailKey  = "email"
	CtxRoleKey   = "role"
)

// RequireAuth validates the bearer token and stores the caller's
// identity in the request locals.
func RequireAuth(tokens auth.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get("Authorization"))
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Missing or malformed authorization header",
			})
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				message = "Token expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": message,
			})
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxEmailKey, claims.Email)
		c.Locals(CtxRoleKey, claims.Role)
		return c.Next()
	}
}

// RequireRole gates a route to callers holding one of the given roles.
// It must run after RequireAuth.
func RequireRole(roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxRoleKey).(models.UserRole)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Missing or malformed authorization header",
			})
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "You do not have permission to perform this action",
		})
	}
}

// UserID reads the authenticated caller's id from the request locals.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uint)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
