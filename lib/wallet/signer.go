package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"arena/lib/ledger"
	"arena/lib/vault"

	"golang.org/x/crypto/blake2b"
)

// GATEWAY_KEY_NAME is the Vault path component the gateway wallet seed is
// stored under.
const GATEWAY_KEY_NAME = "gateway"

const DEFAULT_GAS_BUDGET = 10_000_000

// ed25519 scheme flag, prepended to both serialized signatures and the
// public key bytes an address is derived from.
const ed25519Flag byte = 0x00

var (
	ErrNoSeed      = errors.New("no wallet seed available")
	ErrInvalidSeed = errors.New("wallet seed must be a 32 byte ed25519 seed")
)

// Signer is the signing collaborator: it builds transaction bytes through the
// ledger client, signs them with the gateway wallet keypair and executes the
// signed transaction.
type Signer struct {
	client    ledger.Client
	priv      ed25519.PrivateKey
	pub       ed25519.PublicKey
	address   string
	gasBudget uint64
}

func NewSigner(client ledger.Client, seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidSeed
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	return &Signer{
		client:    client,
		priv:      priv,
		pub:       pub,
		address:   AddressFromPublicKey(pub),
		gasBudget: DEFAULT_GAS_BUDGET,
	}, nil
}

// LoadSeed resolves the gateway wallet seed: Vault first, WALLET_SEED env
// (base64) as fallback for development runs.
func LoadSeed(manager *vault.VaultManager) ([]byte, error) {
	encoded, err := manager.GetWalletSeed(GATEWAY_KEY_NAME)
	if err != nil {
		encoded = os.Getenv("WALLET_SEED")
		if encoded == "" {
			return nil, fmt.Errorf("%w: %s", ErrNoSeed, err)
		}
	}
	seed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wallet seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidSeed
	}
	return seed, nil
}

// AddressFromPublicKey derives the on-ledger address: blake2b-256 over the
// scheme flag plus the public key bytes.
func AddressFromPublicKey(pub ed25519.PublicKey) string {
	digest := blake2b.Sum256(append([]byte{ed25519Flag}, pub...))
	return "0x" + hex.EncodeToString(digest[:])
}

func (signer *Signer) Address() string {
	return signer.address
}

// SignAndExecute builds, signs and submits one move call. The caller never
// assumes the effects are visible before its next explicit refetch.
func (signer *Signer) SignAndExecute(ctx context.Context, call ledger.MoveCall) (*ledger.TxResult, error) {
	call.Sender = signer.address
	if call.GasBudget == 0 {
		call.GasBudget = signer.gasBudget
	}

	tx_base64, err := signer.client.BuildMoveCall(ctx, call)
	if err != nil {
		return nil, err
	}
	tx_bytes, err := base64.StdEncoding.DecodeString(tx_base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction bytes: %w", err)
	}

	signature := signer.sign(tx_bytes)
	return signer.client.ExecuteTransaction(ctx, tx_base64, []string{signature})
}

// sign produces the serialized signature over the intent message: the
// 3-byte transaction intent, then the transaction bytes, hashed with
// blake2b-256. Serialized form is flag || signature || public key, base64.
func (signer *Signer) sign(txBytes []byte) string {
	intent_message := append([]byte{0, 0, 0}, txBytes...)
	digest := blake2b.Sum256(intent_message)
	signature := ed25519.Sign(signer.priv, digest[:])

	serialized := make([]byte, 0, 1+len(signature)+len(signer.pub))
	serialized = append(serialized, ed25519Flag)
	serialized = append(serialized, signature...)
	serialized = append(serialized, signer.pub...)
	return base64.StdEncoding.EncodeToString(serialized)
}
