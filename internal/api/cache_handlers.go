package api

import (
	"github.com/agentmart/agentmart/internal/query"
	"github.com/gofiber/fiber/v2"
)

func isNotFound(err error) bool {
	return query.IsNotFound(err)
}

// handleInvalidateAgent clears all cache entries derived from one
// record. The mutation surface calls this after every write to the
// record, before acknowledging its caller.
func (s *Server) handleInvalidateAgent(c *fiber.Ctx) error {
	id := c.Params("id")
	category := c.Query("category")

	s.invalidator.InvalidateAgent(c.UserContext(), id, category)

	return RespondMessage(c, "agent cache invalidated")
}

// handleInvalidateCategory clears every listing-derived entry covering
// a category.
func (s *Server) handleInvalidateCategory(c *fiber.Ctx) error {
	category := c.Params("category")

	s.invalidator.InvalidateCategory(c.UserContext(), category)

	return RespondMessage(c, "category cache invalidated")
}

// handleInvalidateAll clears every catalog-derived namespace.
func (s *Server) handleInvalidateAll(c *fiber.Ctx) error {
	s.invalidator.InvalidateAll(c.UserContext())

	return RespondMessage(c, "cache invalidated")
}

// handleCacheStats reports cache operation counters.
func (s *Server) handleCacheStats(c *fiber.Ctx) error {
	if s.stats == nil {
		return RespondSuccess(c, fiber.Map{})
	}
	return RespondSuccess(c, s.stats())
}
