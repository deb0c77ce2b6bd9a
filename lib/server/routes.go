package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func (server *ArenaServer) RegisterRoutes() {
	server.App.Get("/", server.rootHandler)
	server.App.Get("/health", server.healthHandler)

	server.RegisterSessionRoutes()
	server.RegisterCardRoutes()
	server.RegisterBattleRoutes()
	server.RegisterArenaRoutes()
}

func (server *ArenaServer) rootHandler(c *fiber.Ctx) error {
	resp := map[string]string{
		"service": "arena-gateway",
		"wallet":  server.Signer.Address(),
	}
	return c.JSON(resp)
}

func (server *ArenaServer) healthHandler(c *fiber.Ctx) error {
	resp := map[string]string{
		"cache": strconv.FormatBool(server.Cache.Health()),
		"vault": strconv.FormatBool(server.VaultManager.Health()),
	}
	return c.JSON(resp)
}
