package server

import (
	"arena/lib/server/middleware"
	"arena/lib/server/routes"

	"github.com/gofiber/fiber/v2"
)

func (server *ArenaServer) RegisterArenaRoutes() {
	arena_group := server.App.Group("/battle-arena")

	arena_group.Get("/:battleId",
		middleware.WithWallet(&server.Sessions),
		func(c *fiber.Ctx) error {
			detail, err := server.DetailFor(c.Params("battleId"))
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to start battle detail sync",
				})
			}
			return routes.ArenaViewHandler(c, detail)
		},
	)

	arena_group.Post("/:battleId/action",
		middleware.ForConnectedWallet(&server.Sessions),
		func(c *fiber.Ctx) error {
			var data routes.TurnActionData
			if err := c.BodyParser(&data); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid request body",
				})
			}
			return routes.TurnActionHandler(data, c, server.Actions)
		},
	)
}
