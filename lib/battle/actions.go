package battle

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"arena/lib"
	"arena/lib/ledger"
	"arena/lib/sync"
)

// ActionKind is a turn choice. The numeric choice codes are part of the
// on-chain entry point contract.
type ActionKind int

const (
	ACTION_ATTACK ActionKind = iota + 1
	ACTION_DEFENSE
)

func ParseActionKind(value string) (ActionKind, error) {
	switch value {
	case "attack":
		return ACTION_ATTACK, nil
	case "defense":
		return ACTION_DEFENSE, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, value)
}

func (kind ActionKind) ChoiceCode() uint64 {
	return uint64(kind)
}

func (kind ActionKind) String() string {
	switch kind {
	case ACTION_ATTACK:
		return "attack"
	case ACTION_DEFENSE:
		return "defense"
	}
	return "unknown"
}

// CLOCK_OBJECT_ID is the ledger's shared clock object, required by the mint
// entry point.
const CLOCK_OBJECT_ID = "0x6"

const gameModule = "game"

// Actions builds and submits the game transactions: mint, create battle,
// join battle and turn choice. Acceptance never mutates local state; the
// next scheduled poll is the sole source of truth for the result.
type Actions struct {
	submitter ledger.Submitter
	catalog   *sync.CardCatalog
	registry  *sync.BattleRegistry

	packageID      string
	battleRecordID string
	cardRecordID   string
	nftTemplatesID string
}

func NewActions(submitter ledger.Submitter, catalog *sync.CardCatalog, registry *sync.BattleRegistry,
	packageID, battleRecordID, cardRecordID, nftTemplatesID string) *Actions {
	return &Actions{
		submitter:      submitter,
		catalog:        catalog,
		registry:       registry,
		packageID:      packageID,
		battleRecordID: battleRecordID,
		cardRecordID:   cardRecordID,
		nftTemplatesID: nftTemplatesID,
	}
}

// SubmitAction submits one turn choice against a battle. Rejection surfaces
// to the caller without automatic retry: a resubmission could double-apply
// the turn on-chain.
func (actions *Actions) SubmitAction(ctx context.Context, kind ActionKind, battleID string) (*ledger.TxResult, error) {
	call := ledger.MoveCall{
		Package:  actions.packageID,
		Module:   gameModule,
		Function: "move_choice",
		Arguments: []any{
			strconv.FormatUint(kind.ChoiceCode(), 10),
			battleID,
		},
	}

	result, err := actions.submitter.SignAndExecute(ctx, call)
	if err != nil {
		return result, err
	}
	slog.Info("turn action accepted", "battle_id", battleID, "action", kind.String(), "digest", result.Digest)
	return result, nil
}

// MintCard mints one collectible card for the connected wallet.
func (actions *Actions) MintCard(ctx context.Context) (*ledger.TxResult, error) {
	call := ledger.MoveCall{
		Package:  actions.packageID,
		Module:   gameModule,
		Function: "create_card",
		Arguments: []any{
			actions.cardRecordID,
			actions.nftTemplatesID,
			CLOCK_OBJECT_ID,
		},
	}

	result, err := actions.submitter.SignAndExecute(ctx, call)
	if err != nil {
		return result, err
	}
	slog.Info("card mint accepted", "digest", result.Digest)
	return result, nil
}

// firstOwnedCard enforces the entry-card rule: the first card in the owned
// sequence is always the one played, there is no card selection. Returns
// ErrNoCardsOwned before any transaction is built.
func (actions *Actions) firstOwnedCard(ctx context.Context) (lib.Card, error) {
	cards, status, _ := actions.catalog.Snapshot()
	if len(cards) == 0 || status != sync.STATUS_SUCCESS {
		refreshed, err := actions.catalog.Refresh(ctx)
		if err != nil {
			return lib.Card{}, fmt.Errorf("failed to check owned cards: %w", err)
		}
		cards = refreshed
	}
	if len(cards) == 0 {
		return lib.Card{}, ErrNoCardsOwned
	}
	return cards[0], nil
}

// CreateBattle opens a battle room. Requires at least one owned card; the
// first owned card enters the battle implicitly.
func (actions *Actions) CreateBattle(ctx context.Context, name string) (*ledger.TxResult, error) {
	card, err := actions.firstOwnedCard(ctx)
	if err != nil {
		return nil, err
	}

	call := ledger.MoveCall{
		Package:  actions.packageID,
		Module:   gameModule,
		Function: "create_battle",
		Arguments: []any{
			actions.battleRecordID,
			name,
			card.Id,
		},
	}

	result, err := actions.submitter.SignAndExecute(ctx, call)
	if err != nil {
		return result, err
	}
	slog.Info("battle created", "name", name, "digest", result.Digest)

	// The new battle only shows up once the registry re-reads the ledger.
	if refresh_err := actions.registry.Invalidate(ctx); refresh_err != nil {
		slog.Warn("registry refresh after create failed", "error", refresh_err)
	}
	return result, nil
}

// JoinBattle joins an open battle with the first owned card. When the
// local account is already a participant the join transaction is skipped and
// ErrAlreadyInBattle tells the caller to navigate straight to the arena.
func (actions *Actions) JoinBattle(ctx context.Context, localAddress string, battleID string) (*ledger.TxResult, error) {
	summary, err := actions.findBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}

	// Membership is resolved by address match, never by player index.
	for _, player := range summary.Players {
		if player == localAddress {
			return nil, ErrAlreadyInBattle
		}
	}

	card, err := actions.firstOwnedCard(ctx)
	if err != nil {
		return nil, err
	}

	call := ledger.MoveCall{
		Package:  actions.packageID,
		Module:   gameModule,
		Function: "join_battle",
		Arguments: []any{
			card.Id,
			battleID,
		},
	}

	result, err := actions.submitter.SignAndExecute(ctx, call)
	if err != nil {
		return result, err
	}
	slog.Info("battle joined", "battle_id", battleID, "digest", result.Digest)

	if refresh_err := actions.registry.Invalidate(ctx); refresh_err != nil {
		slog.Warn("registry refresh after join failed", "error", refresh_err)
	}
	return result, nil
}

func (actions *Actions) findBattle(ctx context.Context, battleID string) (lib.BattleSummary, error) {
	list := actions.registry.Snapshot()
	for _, summary := range list.Battles {
		if summary.BattleId == battleID {
			return summary, nil
		}
	}

	// Not in the snapshot yet: force one fresh listing before giving up.
	list = actions.registry.ListBattles(ctx)
	for _, summary := range list.Battles {
		if summary.BattleId == battleID {
			return summary, nil
		}
	}
	return lib.BattleSummary{}, ErrBattleNotFound
}
