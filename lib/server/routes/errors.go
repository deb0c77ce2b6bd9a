package routes

import (
	"errors"

	"arena/lib/battle"
	"arena/lib/ledger"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps the action error taxonomy onto HTTP statuses. Nothing
// here is fatal: every failure is a visible state with a retry path through
// user action or the next poll.
func statusForError(err error) int {
	var rejected *ledger.TransactionRejectedError
	switch {
	case errors.Is(err, battle.ErrNoCardsOwned):
		return fiber.StatusBadRequest
	case errors.Is(err, battle.ErrUnknownAction):
		return fiber.StatusBadRequest
	case errors.Is(err, battle.ErrBattleNotFound):
		return fiber.StatusNotFound
	case ledger.IsNotFound(err):
		return fiber.StatusNotFound
	case errors.As(err, &rejected):
		return fiber.StatusUnprocessableEntity
	case ledger.IsMalformed(err):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusBadGateway
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
