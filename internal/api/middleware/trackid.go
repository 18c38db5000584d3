package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	TrackIDHeader = "X-Track-ID"
	trackIDKey    = "x_track_id"
)

// TrackID reuses the caller's X-Track-ID or assigns a new one and echoes it back.
func TrackID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(TrackIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Locals(trackIDKey, id)
		c.Set(TrackIDHeader, id)

		return c.Next()
	}
}

func GetTrackID(c *fiber.Ctx) string {
	id, _ := c.Locals(trackIDKey).(string)
	return id
}
