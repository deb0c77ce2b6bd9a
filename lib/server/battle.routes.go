package server

import (
	"arena/lib/server/middleware"
	"arena/lib/server/routes"

	"github.com/gofiber/fiber/v2"
)

func (server *ArenaServer) RegisterBattleRoutes() {
	battle_group := server.App.Group("/battle")

	battle_group.Get("/", func(c *fiber.Ctx) error {
		return routes.ListBattlesHandler(c, server.Registry)
	})

	battle_group.Post("/",
		middleware.ForConnectedWallet(&server.Sessions),
		func(c *fiber.Ctx) error {
			var data routes.CreateBattleData
			if err := c.BodyParser(&data); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid request body",
				})
			}
			return routes.CreateBattleHandler(data, c, server.Actions)
		},
	)

	battle_group.Post("/:battleId/join",
		middleware.ForConnectedWallet(&server.Sessions),
		func(c *fiber.Ctx) error {
			return routes.JoinBattleHandler(c, server.Actions)
		},
	)
}
