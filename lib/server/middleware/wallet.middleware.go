package middleware

import (
	"errors"
	"strings"

	"arena/lib/authentication"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrNoAuthHeader      = errors.New("no authorization header")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
	ErrNoWallet          = errors.New("no wallet connected")
)

type WalletContext struct {
	Address   string
	SessionID string
	IP        string
}

const WALLET_CONTEXT_KEY = "wallet_context"

// extractBearerToken gets the token from the Authorization header
func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := c.Get("Authorization")
	if auth == "" {
		return "", ErrNoAuthHeader
	}

	parts := strings.Split(auth, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrInvalidAuthHeader
	}

	return parts[1], nil
}

// WithWallet resolves the connected wallet from the session token when one
// is present and continues either way. An absent wallet is a disabled state
// for read endpoints, not an error.
func WithWallet(sessions **authentication.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := extractBearerToken(c)
		if err != nil {
			return c.Next()
		}

		claims, err := (*sessions).ValidateToken(token)
		if err != nil {
			return c.Next()
		}

		c.Locals(WALLET_CONTEXT_KEY, WalletContext{
			Address:   claims.Address,
			SessionID: claims.SessionID,
			IP:        c.IP(),
		})
		return c.Next()
	}
}

// ForConnectedWallet rejects requests without a valid wallet session. Action
// endpoints (mint, create, join, turn) require the connected wallet.
func ForConnectedWallet(sessions **authentication.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := extractBearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		claims, err := (*sessions).ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals(WALLET_CONTEXT_KEY, WalletContext{
			Address:   claims.Address,
			SessionID: claims.SessionID,
			IP:        c.IP(),
		})
		return c.Next()
	}
}

// GetWalletAddress returns the connected wallet address, or ErrNoWallet when
// the request carries no valid session.
func GetWalletAddress(c *fiber.Ctx) (string, error) {
	wallet, ok := c.Locals(WALLET_CONTEXT_KEY).(WalletContext)
	if !ok || wallet.Address == "" {
		return "", ErrNoWallet
	}
	return wallet.Address, nil
}
