package authentication

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("session token has expired")
	ErrInvalidToken = errors.New("session token is invalid")
)

const DEFAULT_SESSION_DURATION = 24 * time.Hour

// WalletClaims bind a session token to one wallet address. The gateway does
// not hold user accounts: the connected wallet is the identity.
type WalletClaims struct {
	jwt.RegisteredClaims
	Address   string `json:"address"`
	SessionID string `json:"session_id"`
}

type SessionService struct {
	signingKey []byte
	duration   time.Duration
}

func NewSessionService(signingKey string, duration time.Duration) *SessionService {
	if duration <= 0 {
		duration = DEFAULT_SESSION_DURATION
	}
	return &SessionService{
		signingKey: []byte(signingKey),
		duration:   duration,
	}
}

// IssueToken creates a signed session token carrying the wallet address.
func (service *SessionService) IssueToken(address string) (string, time.Time, error) {
	expires_at := time.Now().Add(service.duration)

	claims := WalletClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires_at),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Address:   address,
		SessionID: uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(service.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expires_at, nil
}

func (service *SessionService) ValidateToken(tokenString string) (*WalletClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &WalletClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return service.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*WalletClaims)
	if !ok || !token.Valid || claims.Address == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
