package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// RequestIDHeader is the standard header name used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"
)

// RequestID makes sure every request carries an id. The id is echoed in
// the response header, stored in locals and attached to a request scoped
// logger derived from base, reachable with zerolog.Ctx(c.UserContext()).
func RequestID(base ...zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		if len(base) > 0 {
			l := base[0].With().Str("request_id", id).Logger()
			c.SetUserContext(l.WithContext(c.UserContext()))
		}
		return c.Next()
	}
}
