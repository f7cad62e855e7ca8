package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// handleListAgents serves the primary catalog listing endpoint.
// Handlers use the user context: withRequestContext tags it and the
// slogutil handler picks the tags up on every record logged below.
func (s *Server) handleListAgents(c *fiber.Ctx) error {
	params := ParseListParams(c)

	result, err := s.service.ListAgents(c.UserContext(), params)
	if err != nil {
		slog.ErrorContext(c.UserContext(), "agent listing failed", "category", params.Category, "err", err)
		return RespondStoreUnavailable(c, "catalog temporarily unavailable")
	}

	return RespondSuccess(c, result)
}

// handleGetAgent serves a cache-first detail fetch. skip_cache=true
// forces a store read and a cache refresh.
func (s *Server) handleGetAgent(c *fiber.Ctx) error {
	id := c.Params("id")
	skipCache := c.QueryBool("skip_cache", false)

	rec, err := s.service.GetAgentDetail(c.UserContext(), id, skipCache)
	if err != nil {
		if isNotFound(err) {
			return RespondNotFound(c, "agent not found")
		}
		slog.ErrorContext(c.UserContext(), "agent detail fetch failed", "id", id, "err", err)
		return RespondStoreUnavailable(c, "catalog temporarily unavailable")
	}

	return RespondSuccess(c, rec)
}

// handleLive is the liveness endpoint.
func (s *Server) handleLive(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}
