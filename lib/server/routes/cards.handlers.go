package routes

import (
	"arena/lib"
	"arena/lib/battle"
	"arena/lib/server/middleware"
	"arena/lib/sync"

	"github.com/gofiber/fiber/v2"
)

// ListCardsHandler returns the owned-card projection. Without a connected
// wallet the catalog is disabled, which is an empty response, not an error.
func ListCardsHandler(c *fiber.Ctx, catalog *sync.CardCatalog) error {
	if _, err := middleware.GetWalletAddress(c); err != nil {
		return c.JSON(fiber.Map{
			"status": sync.STATUS_DISABLED,
			"cards":  []lib.Card{},
		})
	}

	cards, status, snapshot_err := catalog.Snapshot()
	resp := fiber.Map{
		"status": status,
		"cards":  cards,
	}
	if snapshot_err != nil {
		resp["error"] = snapshot_err.Error()
	}
	return c.JSON(resp)
}

// MintCardHandler mints one card and returns the newest card from a fresh
// catalog read, so the caller can show what was just minted.
func MintCardHandler(c *fiber.Ctx, actions *battle.Actions, catalog *sync.CardCatalog) error {
	result, err := actions.MintCard(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}

	resp := fiber.Map{
		"digest": result.Digest,
	}
	if cards, refresh_err := catalog.Refresh(c.Context()); refresh_err == nil && len(cards) > 0 {
		resp["minted_card"] = cards[len(cards)-1]
	}
	return c.JSON(resp)
}
