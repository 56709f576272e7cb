package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/admin/feature-flags. It returns both the
// raw flag configuration and the flags as evaluated for the calling admin.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
