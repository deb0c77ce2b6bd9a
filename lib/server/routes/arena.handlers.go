package routes

import (
	"arena/lib/battle"
	"arena/lib/server/middleware"
	"arena/lib/sync"

	"github.com/gofiber/fiber/v2"
)

type TurnActionData struct {
	Action string `json:"action"`
}

// ArenaViewHandler projects the detail snapshot for the requesting wallet.
// Without a session the view is still served, just with no local side.
func ArenaViewHandler(c *fiber.Ctx, detail *sync.BattleDetailSync) error {
	address, _ := middleware.GetWalletAddress(c)

	snapshot, status, snapshot_err := detail.Snapshot()
	view := battle.BuildArenaView(snapshot, status, address)

	resp := fiber.Map{
		"view": view,
	}
	if snapshot_err != nil {
		resp["error"] = snapshot_err.Error()
	}
	return c.JSON(resp)
}

func TurnActionHandler(data TurnActionData, c *fiber.Ctx, actions *battle.Actions) error {
	kind, err := battle.ParseActionKind(data.Action)
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := actions.SubmitAction(c.Context(), kind, c.Params("battleId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"action": kind.String(),
		"digest": result.Digest,
	})
}
