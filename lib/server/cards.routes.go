package server

import (
	"arena/lib/server/middleware"
	"arena/lib/server/routes"

	"github.com/gofiber/fiber/v2"
)

func (server *ArenaServer) RegisterCardRoutes() {
	cards_group := server.App.Group("/cards")

	cards_group.Get("/",
		middleware.WithWallet(&server.Sessions),
		func(c *fiber.Ctx) error {
			return routes.ListCardsHandler(c, server.Cards)
		},
	)

	cards_group.Post("/mint",
		middleware.ForConnectedWallet(&server.Sessions),
		func(c *fiber.Ctx) error {
			return routes.MintCardHandler(c, server.Actions, server.Cards)
		},
	)
}
