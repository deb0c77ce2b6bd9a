package battle

import (
	"fmt"

	"arena/lib"
	"arena/lib/sync"
)

// Severity buckets a health percentage for display. Ordering matters: a
// higher health never maps to a lower bucket.
type Severity int

const (
	SEVERITY_LOW Severity = iota
	SEVERITY_MEDIUM
	SEVERITY_HIGH
)

func (severity Severity) String() string {
	switch severity {
	case SEVERITY_LOW:
		return "low"
	case SEVERITY_MEDIUM:
		return "medium"
	case SEVERITY_HIGH:
		return "high"
	}
	return "unknown"
}

func (severity Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + severity.String() + `"`), nil
}

// HealthPercent maps a health integer in [0, MAX_HEALTH] to a percentage.
func HealthPercent(health int) int {
	if health < 0 {
		health = 0
	}
	if health > lib.MAX_HEALTH {
		health = lib.MAX_HEALTH
	}
	return 100 * health / lib.MAX_HEALTH
}

func HealthSeverity(percent int) Severity {
	if percent >= 75 {
		return SEVERITY_HIGH
	}
	if percent >= 35 {
		return SEVERITY_MEDIUM
	}
	return SEVERITY_LOW
}

// FormatAddress shortens a wallet address for display.
func FormatAddress(address string) string {
	if address == "" {
		return "unknown"
	}
	if len(address) <= 10 {
		return address
	}
	return fmt.Sprintf("%s...%s", address[:6], address[len(address)-4:])
}

const WAITING_FOR_OPPONENT = "waiting for opponent"

// PlayerView is one side of the arena, ready for display.
type PlayerView struct {
	Address       string   `json:"address"`
	DisplayName   string   `json:"display_name"`
	Health        int      `json:"health"`
	HealthPercent int      `json:"health_percent"`
	Severity      Severity `json:"severity"`
	Waiting       bool     `json:"waiting"`
}

// ArenaView is everything the battle arena needs to render one battle for
// one local account.
type ArenaView struct {
	BattleId       string            `json:"battle_id"`
	Me             PlayerView        `json:"me"`
	Opponent       PlayerView        `json:"opponent"`
	MyCard         *lib.CardInBattle `json:"my_card"`
	OpponentCard   *lib.CardInBattle `json:"opponent_card"`
	Winner         *string           `json:"winner"`
	ShowResult     bool              `json:"show_result"`
	Won            bool              `json:"won"`
	ActionsEnabled bool              `json:"actions_enabled"`
	Status         sync.Status       `json:"status"`
}

func playerView(status lib.PlayerStatus) PlayerView {
	percent := HealthPercent(status.Health)
	return PlayerView{
		Address:       status.Address,
		DisplayName:   FormatAddress(status.Address),
		Health:        status.Health,
		HealthPercent: percent,
		Severity:      HealthSeverity(percent),
	}
}

func waitingView() PlayerView {
	return PlayerView{
		DisplayName: WAITING_FOR_OPPONENT,
		Severity:    SEVERITY_LOW,
		Waiting:     true,
	}
}

// resolveStatuses splits the two-entry status collection into mine and
// theirs. The local player's row is the one whose stored address equals the
// connected wallet address, never a fixed array position.
func resolveStatuses(statuses []lib.PlayerStatus, localAddress string) (PlayerView, PlayerView) {
	me := PlayerView{Address: localAddress, DisplayName: FormatAddress(localAddress), Severity: SEVERITY_LOW}
	opponent := waitingView()

	for _, status := range statuses {
		if status.Address == localAddress {
			me = playerView(status)
		} else if len(statuses) > 1 {
			opponent = playerView(status)
		}
	}
	return me, opponent
}

func resolveCards(cards []lib.CardInBattle, localAddress string) (*lib.CardInBattle, *lib.CardInBattle) {
	var mine, theirs *lib.CardInBattle
	for i := range cards {
		card := cards[i]
		if card.OwnerAddress == localAddress {
			mine = &card
		} else if len(cards) > 1 {
			theirs = &card
		}
	}
	return mine, theirs
}

// BuildArenaView composes the battle detail projection into display-ready
// values for the given local account.
func BuildArenaView(detail lib.BattleDetail, status sync.Status, localAddress string) ArenaView {
	me, opponent := resolveStatuses(detail.PlayerStatuses, localAddress)
	my_card, opponent_card := resolveCards(detail.CardsInBattle, localAddress)

	view := ArenaView{
		BattleId:     detail.BattleId,
		Me:           me,
		Opponent:     opponent,
		MyCard:       my_card,
		OpponentCard: opponent_card,
		Winner:       detail.Winner,
		ShowResult:   detail.Finished(),
		Status:       status,
	}
	view.Won = detail.Winner != nil && *detail.Winner == localAddress
	view.ActionsEnabled = !view.ShowResult && !opponent.Waiting
	return view
}
