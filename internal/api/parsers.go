package api

import (
	"strconv"
	"strings"

	"github.com/agentmart/agentmart/internal/query"
	"github.com/gofiber/fiber/v2"
)

// ParseListParams extracts listing query parameters from the request.
// Malformed numeric inputs are dropped rather than rejected; the engine
// coerces the rest to defaults.
func ParseListParams(c *fiber.Ctx) query.Params {
	params := query.Params{
		Category: c.Query("category"),
		Sort:     query.ParseSortStrategy(c.Query("sort")),
		Search:   c.Query("q"),
		Page:     c.QueryInt("page", 0),
		Limit:    c.QueryInt("limit", 0),
	}

	params.PriceMin = parseFloatParam(c, "price_min")
	params.PriceMax = parseFloatParam(c, "price_max")
	params.RatingMin = parseFloatParam(c, "rating_min")
	params.Tags = parseListParam(c, "tags")
	params.Features = parseListParam(c, "features")

	return params
}

func parseFloatParam(c *fiber.Ctx, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseListParam(c *fiber.Ctx, name string) []string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
