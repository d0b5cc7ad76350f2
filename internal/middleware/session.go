package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionHeader carries the shopper's cart session id.
const SessionHeader = "X-Session-ID"

const localSessionID = "session_id"

// Session reads the cart session id from the request, issuing a new one when absent
// or malformed. The id is echoed in the response header so the client can keep it.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(SessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Locals(localSessionID, id)
		c.Set(SessionHeader, id)
		return c.Next()
	}
}

// SessionID returns the id set by Session.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(localSessionID).(string)
	return id
}
