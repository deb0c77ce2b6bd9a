package server

import (
	"arena/lib/server/routes"

	"github.com/gofiber/fiber/v2"
)

func (server *ArenaServer) RegisterSessionRoutes() {
	session_group := server.App.Group("/session")

	session_group.Post("/connect", func(c *fiber.Ctx) error {
		return routes.ConnectWalletHandler(c, server.Sessions, server.Signer)
	})
}
