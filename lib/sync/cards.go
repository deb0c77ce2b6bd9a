package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"arena/lib"
	"arena/lib/ledger"
)

// CardCatalog polls the set of cards owned by one wallet address. An absent
// address is a disabled state, not an error: no poll runs until a wallet is
// connected.
type CardCatalog struct {
	reader    ledger.Reader
	packageID string
	poller    *poller

	mu      sync.RWMutex
	address string
	cards   []lib.Card
	status  Status
	err     error
}

func NewCardCatalog(reader ledger.Reader, packageID string) *CardCatalog {
	return &CardCatalog{
		reader:    reader,
		packageID: packageID,
		poller:    newPoller(POLL_INTERVAL),
		status:    STATUS_DISABLED,
	}
}

func (catalog *CardCatalog) cardType() string {
	return fmt.Sprintf("%s::game::Card", catalog.packageID)
}

// FetchOwned lists the cards currently owned by address, in ledger order.
func (catalog *CardCatalog) FetchOwned(ctx context.Context, address string) ([]lib.Card, error) {
	if address == "" {
		return nil, nil
	}
	objects, err := catalog.reader.GetOwnedObjects(ctx, address, catalog.cardType(), ledger.DefaultObjectOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to list owned cards: %w", err)
	}

	cards := make([]lib.Card, 0, len(objects))
	for _, object := range objects {
		card, err := ledger.DecodeCard(object)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Start begins polling for address. With an empty address the catalog stays
// disabled and no timer runs.
func (catalog *CardCatalog) Start(ctx context.Context, address string) error {
	if address == "" {
		catalog.mu.Lock()
		catalog.status = STATUS_DISABLED
		catalog.mu.Unlock()
		return nil
	}

	catalog.mu.Lock()
	catalog.address = address
	catalog.status = STATUS_PENDING
	catalog.mu.Unlock()

	return catalog.poller.Start(ctx, catalog.tick)
}

func (catalog *CardCatalog) Stop() {
	catalog.poller.Stop()
}

func (catalog *CardCatalog) tick(ctx context.Context, generation uint64) {
	catalog.mu.RLock()
	address := catalog.address
	catalog.mu.RUnlock()

	fetch_ctx, cancel := context.WithTimeout(ctx, POLL_INTERVAL)
	defer cancel()

	cards, err := catalog.FetchOwned(fetch_ctx, address)
	if !catalog.poller.current(generation) {
		return
	}

	catalog.mu.Lock()
	defer catalog.mu.Unlock()
	if err != nil {
		// Transient: keep the last snapshot, the next tick retries.
		catalog.status = STATUS_ERROR
		catalog.err = err
		slog.Warn("card catalog poll failed", "address", address, "error", err)
		return
	}
	catalog.cards = cards
	catalog.status = STATUS_SUCCESS
	catalog.err = nil
}

// Refresh performs one immediate fetch outside the polling schedule, used
// after a mint transaction is accepted.
func (catalog *CardCatalog) Refresh(ctx context.Context) ([]lib.Card, error) {
	catalog.mu.RLock()
	address := catalog.address
	catalog.mu.RUnlock()

	// No wallet connected: the catalog stays disabled.
	if address == "" {
		return nil, nil
	}

	fetch_ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cards, err := catalog.FetchOwned(fetch_ctx, address)
	if err != nil {
		return nil, err
	}

	catalog.mu.Lock()
	catalog.cards = cards
	catalog.status = STATUS_SUCCESS
	catalog.err = nil
	catalog.mu.Unlock()
	return cards, nil
}

// Snapshot returns the current owned-card projection with its status.
func (catalog *CardCatalog) Snapshot() ([]lib.Card, Status, error) {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	cards := make([]lib.Card, len(catalog.cards))
	copy(cards, catalog.cards)
	return cards, catalog.status, catalog.err
}
