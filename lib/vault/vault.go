package vault

import (
	"context"
	"fmt"
	"os"

	v "github.com/hashicorp/vault/api"
)

type Vault = v.Client

// VaultManager holds the secrets this gateway needs: the wallet signing seed
// and API-level keys (session token signing key).
type VaultManager struct {
	Wallet *Vault
	Api    *Vault
}

func NewVaultManager() (VaultManager, error) {
	config := v.Config{
		Address: os.Getenv("VAULT_ADDR"),
	}

	wallet, err := v.NewClient(&config)
	if err != nil {
		return VaultManager{}, fmt.Errorf("failed to create Vault client: %w", err)
	}

	api, err := v.NewClient(&config)
	if err != nil {
		return VaultManager{}, fmt.Errorf("failed to create Vault client: %w", err)
	}

	vault_manager := VaultManager{
		Wallet: wallet,
		Api:    api,
	}
	return vault_manager, nil
}

func (manager *VaultManager) Health() bool {
	wallet_health, err := manager.Wallet.Sys().Health()
	if err != nil {
		return false
	}
	api_health, err := manager.Api.Sys().Health()
	if err != nil {
		return false
	}

	return wallet_health.Initialized && !wallet_health.Sealed &&
		api_health.Initialized && !api_health.Sealed
}

// StoreWalletSeed writes the base64 ed25519 seed of a wallet keypair.
func (manager *VaultManager) StoreWalletSeed(name string, seed string) error {
	secret := map[string]interface{}{
		"seed": seed,
	}
	kvv2 := manager.Wallet.KVv2("wallet")

	_, err := kvv2.Put(context.Background(), fmt.Sprintf("keys/%s", name), secret)
	if err != nil {
		return fmt.Errorf("failed to store wallet seed in Vault: %w", err)
	}
	return nil
}

func (manager *VaultManager) GetWalletSeed(name string) (string, error) {
	kvv2 := manager.Wallet.KVv2("wallet")
	path := fmt.Sprintf("keys/%s", name)

	secret, err := kvv2.Get(context.Background(), path)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve wallet seed from Vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("no secret found at path: %s", path)
	}

	seed, ok := secret.Data["seed"].(string)
	if !ok {
		return "", fmt.Errorf("seed not found or invalid in secret data at path: %s", path)
	}
	return seed, nil
}

func (manager *VaultManager) GetApiKey(name string) (string, error) {
	path := fmt.Sprintf("api/data/%s", name)
	secret, err := manager.Api.Logical().Read(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret from Vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("no secret found at path: %s", path)
	}
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid secret data format at path: %s", path)
	}

	key, ok := data["value"].(string)
	if !ok {
		return "", fmt.Errorf("key not found or invalid in secret data at path: %s", path)
	}
	return key, nil
}
