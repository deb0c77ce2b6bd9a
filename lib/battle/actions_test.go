package battle

import (
	"context"
	"encoding/json"
	"fmt"
	gosync "sync"
	"testing"
	"time"

	"arena/lib/ledger"
	"arena/lib/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	mu    gosync.Mutex
	calls []ledger.MoveCall
	err   error
}

func (f *fakeSubmitter) SignAndExecute(ctx context.Context, call ledger.MoveCall) (*ledger.TxResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call)
	if f.err != nil {
		return nil, f.err
	}
	return &ledger.TxResult{Digest: fmt.Sprintf("dg%d", len(f.calls)), Status: "success"}, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func (f *fakeSubmitter) lastCall(t *testing.T) ledger.MoveCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

// fakeLedger backs both the card catalog and the battle registry in the
// action tests.
type fakeLedger struct {
	mu          gosync.Mutex
	objects     map[string]*ledger.ObjectData
	owned       map[string][]*ledger.ObjectData
	invalidated int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		objects: make(map[string]*ledger.ObjectData),
		owned:   make(map[string][]*ledger.ObjectData),
	}
}

func (f *fakeLedger) GetObject(ctx context.Context, id string, opts ledger.ObjectOptions) (*ledger.ObjectData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	object, ok := f.objects[id]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", id, ledger.ErrNotFound)
	}
	return object, nil
}

func (f *fakeLedger) MultiGetObjects(ctx context.Context, ids []string, opts ledger.ObjectOptions) ([]*ledger.ObjectData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objects := make([]*ledger.ObjectData, len(ids))
	for i, id := range ids {
		objects[i] = f.objects[id]
	}
	return objects, nil
}

func (f *fakeLedger) GetDynamicFields(ctx context.Context, parentID string) ([]ledger.DynamicFieldRef, error) {
	return nil, nil
}

func (f *fakeLedger) GetOwnedObjects(ctx context.Context, owner string, structType string, opts ledger.ObjectOptions) ([]*ledger.ObjectData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.owned[owner], nil
}

func (f *fakeLedger) Invalidate(ctx context.Context, ids []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.invalidated++
}

func (f *fakeLedger) invalidations() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.invalidated
}

func moveObject(id string, fields string) *ledger.ObjectData {
	return &ledger.ObjectData{
		ObjectID: id,
		Content: &ledger.ObjectContent{
			DataType: "moveObject",
			Fields:   json.RawMessage(fields),
		},
	}
}

func (f *fakeLedger) addCard(owner string, id string, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	card := moveObject(id, fmt.Sprintf(`{"name":%q,"attack":"5","defense":"5","url":""}`, name))
	card.Owner = json.RawMessage(`{"AddressOwner":"` + owner + `"}`)
	f.owned[owner] = append(f.owned[owner], card)
}

func (f *fakeLedger) addBattle(id string, name string, players []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	encoded_players, _ := json.Marshal(players)
	f.objects[id] = moveObject(id, fmt.Sprintf(`{"name":%q,"players":%s,"status":0}`, name, encoded_players))
}

func (f *fakeLedger) setRegistry(id string, battleIDs []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	encoded, _ := json.Marshal(battleIDs)
	f.objects[id] = moveObject(id, fmt.Sprintf(`{"battles":%s}`, encoded))
}

type actionsFixture struct {
	ledger    *fakeLedger
	submitter *fakeSubmitter
	catalog   *sync.CardCatalog
	registry  *sync.BattleRegistry
	actions   *Actions
}

func newActionsFixture(t *testing.T) *actionsFixture {
	t.Helper()

	fake := newFakeLedger()
	fake.setRegistry("0xreg", nil)
	submitter := &fakeSubmitter{}
	catalog := sync.NewCardCatalog(fake, "0xpkg")
	registry := sync.NewBattleRegistry(fake, "0xreg")

	return &actionsFixture{
		ledger:    fake,
		submitter: submitter,
		catalog:   catalog,
		registry:  registry,
		actions:   NewActions(submitter, catalog, registry, "0xpkg", "0xbrec", "0xcrec", "0xtmpl"),
	}
}

// connectWallet starts the catalog poller for the given address and waits
// for the first owned-card fetch to land.
func (fixture *actionsFixture) connectWallet(t *testing.T, address string) {
	t.Helper()

	require.NoError(t, fixture.catalog.Start(context.Background(), address))
	t.Cleanup(fixture.catalog.Stop)
	require.Eventually(t, func() bool {
		_, status, _ := fixture.catalog.Snapshot()
		return status == sync.STATUS_SUCCESS
	}, time.Second, time.Millisecond)
}

func TestParseActionKind(t *testing.T) {
	attack, err := ParseActionKind("attack")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), attack.ChoiceCode())

	defense, err := ParseActionKind("defense")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), defense.ChoiceCode())

	_, err = ParseActionKind("heal")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestSubmitAction(t *testing.T) {
	fixture := newActionsFixture(t)

	result, err := fixture.actions.SubmitAction(context.Background(), ACTION_ATTACK, "0xb1")
	require.NoError(t, err)
	assert.True(t, result.Succeeded())

	call := fixture.submitter.lastCall(t)
	assert.Equal(t, "0xpkg::game::move_choice", call.Target())
	assert.Equal(t, []any{"1", "0xb1"}, call.Arguments)

	_, err = fixture.actions.SubmitAction(context.Background(), ACTION_DEFENSE, "0xb1")
	require.NoError(t, err)
	assert.Equal(t, []any{"2", "0xb1"}, fixture.submitter.lastCall(t).Arguments)
}

func TestMintCard(t *testing.T) {
	fixture := newActionsFixture(t)

	_, err := fixture.actions.MintCard(context.Background())
	require.NoError(t, err)

	call := fixture.submitter.lastCall(t)
	assert.Equal(t, "0xpkg::game::create_card", call.Target())
	assert.Equal(t, []any{"0xcrec", "0xtmpl", CLOCK_OBJECT_ID}, call.Arguments)
}

func TestCreateBattleRequiresOwnedCard(t *testing.T) {
	fixture := newActionsFixture(t)

	_, err := fixture.actions.CreateBattle(context.Background(), "my battle")
	require.ErrorIs(t, err, ErrNoCardsOwned)
	assert.Zero(t, fixture.submitter.callCount(), "no transaction is built without a card")
}

func TestCreateBattleUsesFirstOwnedCard(t *testing.T) {
	fixture := newActionsFixture(t)
	fixture.ledger.addCard("0xme", "0xc1", "Dragon")
	fixture.ledger.addCard("0xme", "0xc2", "Golem")
	fixture.connectWallet(t, "0xme")

	_, err := fixture.actions.CreateBattle(context.Background(), "my battle")
	require.NoError(t, err)

	call := fixture.submitter.lastCall(t)
	assert.Equal(t, "0xpkg::game::create_battle", call.Target())
	assert.Equal(t, []any{"0xbrec", "my battle", "0xc1"}, call.Arguments,
		"the first owned card always enters, there is no selection")
	assert.Positive(t, fixture.ledger.invalidations(), "lobby cache is refreshed after create")
}

func TestJoinBattle(t *testing.T) {
	fixture := newActionsFixture(t)
	fixture.ledger.addCard("0xme", "0xc1", "Dragon")
	fixture.ledger.addBattle("0xb1", "open battle", []string{"0xother"})
	fixture.ledger.setRegistry("0xreg", []string{"0xb1"})
	fixture.connectWallet(t, "0xme")

	_, err := fixture.actions.JoinBattle(context.Background(), "0xme", "0xb1")
	require.NoError(t, err)

	call := fixture.submitter.lastCall(t)
	assert.Equal(t, "0xpkg::game::join_battle", call.Target())
	assert.Equal(t, []any{"0xc1", "0xb1"}, call.Arguments)
}

func TestJoinBattleAlreadyMember(t *testing.T) {
	fixture := newActionsFixture(t)
	// The local wallet sits at index 1: membership is decided by address
	// match, not by the creator position.
	fixture.ledger.addBattle("0xb1", "running battle", []string{"0xother", "0xme"})
	fixture.ledger.setRegistry("0xreg", []string{"0xb1"})

	_, err := fixture.actions.JoinBattle(context.Background(), "0xme", "0xb1")
	require.ErrorIs(t, err, ErrAlreadyInBattle)
	assert.Zero(t, fixture.submitter.callCount(), "no join transaction for an existing member")
}

func TestJoinBattleNotFound(t *testing.T) {
	fixture := newActionsFixture(t)

	_, err := fixture.actions.JoinBattle(context.Background(), "0xme", "0xmissing")
	require.ErrorIs(t, err, ErrBattleNotFound)
	assert.Zero(t, fixture.submitter.callCount())
}

func TestSubmitActionRejectionSurfaces(t *testing.T) {
	fixture := newActionsFixture(t)
	fixture.submitter.err = &ledger.TransactionRejectedError{Digest: "dg1", Reason: "MoveAbort(1)"}

	_, err := fixture.actions.SubmitAction(context.Background(), ACTION_ATTACK, "0xb1")
	require.Error(t, err)

	var rejected *ledger.TransactionRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, 1, fixture.submitter.callCount(), "rejection is never retried automatically")
}
