package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"arena/lib"
	"arena/lib/ledger"
)

// RegistryReader is the fetch layer the battle registry depends on: ledger
// reads plus explicit eviction of cached per-object entries.
type RegistryReader interface {
	ledger.Reader
	Invalidate(ctx context.Context, ids []string)
}

// BattleList is the combined result of the two-phase lobby fetch. Battles
// holds the successfully fetched battles in registry order; failed individual
// fetches are dropped, not retried inline. Status reduces the fan-out as:
// error if any sub-fetch failed, success only when all succeeded.
type BattleList struct {
	Battles []lib.BattleSummary `json:"battles"`
	Status  Status              `json:"status"`
	Err     error               `json:"-"`
}

// BattleRegistry polls the singleton registry object listing active battle
// ids and fans out to fetch each battle's summary.
type BattleRegistry struct {
	reader     RegistryReader
	registryID string
	poller     *poller

	mu       sync.RWMutex
	knownIDs []string
	list     BattleList
}

func NewBattleRegistry(reader RegistryReader, registryID string) *BattleRegistry {
	return &BattleRegistry{
		reader:     reader,
		registryID: registryID,
		poller:     newPoller(POLL_INTERVAL),
		list:       BattleList{Status: STATUS_PENDING},
	}
}

// ListBattles performs one two-phase fetch: the registry object first, then
// every listed battle object in parallel, each tagged with its requested id.
func (registry *BattleRegistry) ListBattles(ctx context.Context) BattleList {
	registry_object, err := registry.reader.GetObject(ctx, registry.registryID, ledger.DefaultObjectOptions())
	if err != nil {
		return BattleList{Status: STATUS_ERROR, Err: fmt.Errorf("failed to fetch battle registry: %w", err)}
	}
	battle_ids, err := ledger.DecodeRegistry(registry_object)
	if err != nil {
		return BattleList{Status: STATUS_ERROR, Err: err}
	}

	registry.mu.Lock()
	registry.knownIDs = battle_ids
	registry.mu.Unlock()

	summaries := make([]*lib.BattleSummary, len(battle_ids))
	failures := make([]error, len(battle_ids))
	var wg sync.WaitGroup
	for i, battle_id := range battle_ids {
		wg.Add(1)
		go func(i int, battle_id string) {
			defer wg.Done()
			object, err := registry.reader.GetObject(ctx, battle_id, ledger.DefaultObjectOptions())
			if err != nil {
				failures[i] = err
				return
			}
			summary, err := ledger.DecodeBattleSummary(object)
			if err != nil {
				failures[i] = err
				return
			}
			// Tag with the requested id: a battle object may echo a
			// different id field than the one it was fetched under.
			summary.BattleId = battle_id
			summaries[i] = &summary
		}(i, battle_id)
	}
	wg.Wait()

	list := BattleList{Status: STATUS_SUCCESS}
	for i := range battle_ids {
		if summaries[i] != nil {
			list.Battles = append(list.Battles, *summaries[i])
			continue
		}
		list.Status = STATUS_ERROR
		if list.Err == nil {
			list.Err = failures[i]
		}
	}
	return list
}

func (registry *BattleRegistry) Start(ctx context.Context) error {
	return registry.poller.Start(ctx, registry.tick)
}

func (registry *BattleRegistry) Stop() {
	registry.poller.Stop()
}

func (registry *BattleRegistry) tick(ctx context.Context, generation uint64) {
	fetch_ctx, cancel := context.WithTimeout(ctx, POLL_INTERVAL)
	defer cancel()

	registry.mu.Lock()
	registry.list.Status = STATUS_PENDING
	registry.mu.Unlock()

	list := registry.ListBattles(fetch_ctx)
	if !registry.poller.current(generation) {
		return
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if list.Status == STATUS_ERROR && list.Err != nil {
		slog.Warn("battle registry poll failed", "error", list.Err)
	}
	if list.Status == STATUS_ERROR && len(list.Battles) == 0 && len(registry.list.Battles) > 0 {
		// A wholly failed fan-out keeps the previous lobby rather than
		// blanking it; the status still reports the failure.
		registry.list.Status = STATUS_ERROR
		registry.list.Err = list.Err
		return
	}
	registry.list = list
}

// Snapshot returns the current lobby projection.
func (registry *BattleRegistry) Snapshot() BattleList {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	list := registry.list
	list.Battles = make([]lib.BattleSummary, len(registry.list.Battles))
	copy(list.Battles, registry.list.Battles)
	return list
}

// Invalidate refetches the registry and force-evicts every previously known
// battle id from the shared read cache, so the next reads hit the network
// even if the fetch layer would otherwise serve stale per-object data.
func (registry *BattleRegistry) Invalidate(ctx context.Context) error {
	registry.mu.RLock()
	previous := make([]string, len(registry.knownIDs))
	copy(previous, registry.knownIDs)
	registry.mu.RUnlock()

	registry.reader.Invalidate(ctx, append(previous, registry.registryID))

	registry_object, err := registry.reader.GetObject(ctx, registry.registryID, ledger.DefaultObjectOptions())
	if err != nil {
		return fmt.Errorf("failed to refetch battle registry: %w", err)
	}
	battle_ids, err := ledger.DecodeRegistry(registry_object)
	if err != nil {
		return err
	}

	registry.mu.Lock()
	registry.knownIDs = battle_ids
	registry.mu.Unlock()

	registry.reader.Invalidate(ctx, battle_ids)
	return nil
}
