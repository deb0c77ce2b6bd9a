package routes

import (
	"arena/lib/authentication"
	"arena/lib/wallet"

	"github.com/gofiber/fiber/v2"
)

// ConnectWalletHandler issues a session token for the gateway wallet. The
// gateway signs with its own keypair, so the connected identity is always
// the gateway wallet address.
func ConnectWalletHandler(c *fiber.Ctx, sessions *authentication.SessionService, signer *wallet.Signer) error {
	token, expires_at, err := sessions.IssueToken(signer.Address())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to issue session token",
		})
	}

	return c.JSON(fiber.Map{
		"address":    signer.Address(),
		"token":      token,
		"expires_at": expires_at,
	})
}
