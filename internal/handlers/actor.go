package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ActorMiddleware stores the X-Actor header, or the default actor, in the
// request locals.
func ActorMiddleware(defaultActor string) fiber.Handler {
	if defaultActor == "" {
		defaultActor = "system"
	}
	return func(c *fiber.Ctx) error {
		actor := strings.TrimSpace(c.Get(actorHeader))
		if actor == "" {
			actor = defaultActor
		}
		c.Locals(actorHeader, actor)
		return c.Next()
	}
}

func actorOf(c *fiber.Ctx) string {
	if actor, ok := c.Locals(actorHeader).(string); ok && actor != "" {
		return actor
	}
	return "system"
}
