package routes

import (
	"errors"
	"fmt"

	"arena/lib/battle"
	"arena/lib/server/middleware"
	"arena/lib/sync"

	"github.com/gofiber/fiber/v2"
)

type CreateBattleData struct {
	Name string `json:"name"`
}

// ListBattlesHandler returns the lobby snapshot maintained by the registry
// poller. It never blocks on the ledger.
func ListBattlesHandler(c *fiber.Ctx, registry *sync.BattleRegistry) error {
	list := registry.Snapshot()

	resp := fiber.Map{
		"status":  list.Status,
		"battles": list.Battles,
	}
	if list.Err != nil {
		resp["error"] = list.Err.Error()
	}
	return c.JSON(resp)
}

func CreateBattleHandler(data CreateBattleData, c *fiber.Ctx, actions *battle.Actions) error {
	if data.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "battle name is required",
		})
	}

	result, err := actions.CreateBattle(c.Context(), data.Name)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"digest": result.Digest,
	})
}

// JoinBattleHandler joins the battle named in the path. A wallet that already
// sits in the battle is not an error, the caller just navigates to the arena.
func JoinBattleHandler(c *fiber.Ctx, actions *battle.Actions) error {
	battle_id := c.Params("battleId")
	address, err := middleware.GetWalletAddress(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "wallet session required",
		})
	}

	result, err := actions.JoinBattle(c.Context(), address, battle_id)
	if errors.Is(err, battle.ErrAlreadyInBattle) {
		return c.JSON(fiber.Map{
			"battle_id": battle_id,
			"joined":    false,
			"location":  fmt.Sprintf("/battle-arena/%s", battle_id),
		})
	}
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"battle_id": battle_id,
		"joined":    true,
		"digest":    result.Digest,
		"location":  fmt.Sprintf("/battle-arena/%s", battle_id),
	})
}
