package lib

type BattleStatus int

const (
	BATTLE_WAITING BattleStatus = iota
	BATTLE_IN_PROGRESS
	BATTLE_FINISHED
)

const MAX_HEALTH = 10

// Card is a read projection of an on-chain card object. Cards are immutable
// once minted and owned by exactly one wallet address.
type Card struct {
	Id           string `json:"id"`
	OwnerAddress string `json:"owner_address"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Attack       int    `json:"attack"`
	Defense      int    `json:"defense"`
	ImageUrl     string `json:"image_url"`
}

// BattleSummary is the lobby-level projection of one battle object.
type BattleSummary struct {
	BattleId string       `json:"battle_id"`
	Name     string       `json:"name"`
	Players  []string     `json:"players"`
	Status   BattleStatus `json:"status"`
}

type PlayerStatus struct {
	Address string `json:"address"`
	Health  int    `json:"health"`
}

type CardInBattle struct {
	OwnerAddress string `json:"owner_address"`
	Attack       int    `json:"attack"`
	Defense      int    `json:"defense"`
	Name         string `json:"name"`
	ImageUrl     string `json:"image_url"`
}

// BattleDetail is rebuilt from the ledger on every poll, never persisted.
// Entries in PlayerStatuses and CardsInBattle are keyed by owner address;
// array position carries no player identity.
type BattleDetail struct {
	BattleId       string         `json:"battle_id"`
	PlayerStatuses []PlayerStatus `json:"player_statuses"`
	CardsInBattle  []CardInBattle `json:"cards_in_battle"`
	Winner         *string        `json:"winner"`
}

func (detail *BattleDetail) Finished() bool {
	return detail.Winner != nil
}
