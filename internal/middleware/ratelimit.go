package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"jobportal/internal/cache"
)

// RateLimit caps requests per client IP on the routes it wraps. The
// counter lives in the shared cache so all instances see the same
// window. A cache outage fails open.
func RateLimit(store cache.Store, prefix string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := prefix + ":" + c.IP()
		count, err := store.Incr(c.Context(), key, window)
		if err != nil {
			log.Printf("⚠️  Rate limiter unavailable, allowing request: %v", err)
			return c.Next()
		}
		if count > int64(limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests. Please try again later.",
			})
		}
		return c.Next()
	}
}
