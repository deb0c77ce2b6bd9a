package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBattles(t *testing.T) {
	reader := newFakeReader()
	reader.setObject("0xreg", registryObject("0xreg", []string{"0xb1", "0xb2"}))
	reader.setObject("0xb1", battleObject("0xb1", "first", []string{"0xp1"}, "0xs1", "0xc1", ""))
	reader.setObject("0xb2", battleObject("0xb2", "second", []string{"0xp2", "0xp3"}, "0xs2", "0xc2", ""))

	registry := NewBattleRegistry(reader, "0xreg")
	list := registry.ListBattles(context.Background())

	assert.Equal(t, STATUS_SUCCESS, list.Status)
	require.Len(t, list.Battles, 2)
	assert.Equal(t, "0xb1", list.Battles[0].BattleId, "lobby order follows registry order")
	assert.Equal(t, "0xb2", list.Battles[1].BattleId)
	assert.Equal(t, []string{"0xp2", "0xp3"}, list.Battles[1].Players)
}

func TestListBattlesPartialFailure(t *testing.T) {
	reader := newFakeReader()
	reader.setObject("0xreg", registryObject("0xreg", []string{"0xb1", "0xb2"}))
	reader.setObject("0xb1", battleObject("0xb1", "first", []string{"0xp1"}, "0xs1", "0xc1", ""))
	reader.setError("0xb2", errors.New("fullnode timeout"))

	registry := NewBattleRegistry(reader, "0xreg")
	list := registry.ListBattles(context.Background())

	// One failed sub-fetch taints the whole list but the successes are
	// still served.
	assert.Equal(t, STATUS_ERROR, list.Status)
	assert.Error(t, list.Err)
	require.Len(t, list.Battles, 1)
	assert.Equal(t, "0xb1", list.Battles[0].BattleId)
}

func TestListBattlesRegistryFetchFails(t *testing.T) {
	reader := newFakeReader()
	reader.setError("0xreg", errors.New("connection refused"))

	registry := NewBattleRegistry(reader, "0xreg")
	list := registry.ListBattles(context.Background())

	assert.Equal(t, STATUS_ERROR, list.Status)
	assert.Error(t, list.Err)
	assert.Empty(t, list.Battles)
}

func TestRegistryTickKeepsLobbyOnTotalFailure(t *testing.T) {
	reader := newFakeReader()
	reader.setObject("0xreg", registryObject("0xreg", []string{"0xb1"}))
	reader.setObject("0xb1", battleObject("0xb1", "first", []string{"0xp1"}, "0xs1", "0xc1", ""))

	registry := NewBattleRegistry(reader, "0xreg")
	armTick(registry.poller)

	registry.tick(context.Background(), 0)
	list := registry.Snapshot()
	require.Len(t, list.Battles, 1)

	reader.setError("0xreg", errors.New("connection refused"))
	registry.tick(context.Background(), 0)

	list = registry.Snapshot()
	assert.Len(t, list.Battles, 1, "a wholly failed poll keeps the previous lobby")
	assert.Equal(t, STATUS_ERROR, list.Status)
	assert.Error(t, list.Err)
}

func TestRegistryInvalidateEvictsKnownBattles(t *testing.T) {
	reader := newFakeReader()
	reader.setObject("0xreg", registryObject("0xreg", []string{"0xb1", "0xb2"}))
	reader.setObject("0xb1", battleObject("0xb1", "first", []string{"0xp1"}, "0xs1", "0xc1", ""))
	reader.setObject("0xb2", battleObject("0xb2", "second", []string{"0xp2"}, "0xs2", "0xc2", ""))

	registry := NewBattleRegistry(reader, "0xreg")
	registry.ListBattles(context.Background())

	// The registry now lists a third battle the cache has never seen.
	reader.setObject("0xreg", registryObject("0xreg", []string{"0xb1", "0xb2", "0xb3"}))
	require.NoError(t, registry.Invalidate(context.Background()))

	reader.mu.Lock()
	invalidated := append([]string(nil), reader.invalidated...)
	reader.mu.Unlock()

	assert.Contains(t, invalidated, "0xreg")
	assert.Contains(t, invalidated, "0xb1")
	assert.Contains(t, invalidated, "0xb2")
	assert.Contains(t, invalidated, "0xb3", "freshly listed ids are evicted too")
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	reader := newFakeReader()
	reader.setObject("0xreg", registryObject("0xreg", []string{"0xb1"}))
	reader.setObject("0xb1", battleObject("0xb1", "first", []string{"0xp1"}, "0xs1", "0xc1", ""))

	registry := NewBattleRegistry(reader, "0xreg")
	armTick(registry.poller)
	registry.tick(context.Background(), 0)

	snapshot := registry.Snapshot()
	require.Len(t, snapshot.Battles, 1)
	snapshot.Battles[0].Name = "mutated"

	assert.Equal(t, "first", registry.Snapshot().Battles[0].Name)
}
