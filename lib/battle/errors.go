package battle

import "errors"

var (
	// ErrNoCardsOwned blocks create/join before any transaction is built;
	// the user needs a card first.
	ErrNoCardsOwned = errors.New("no cards owned, obtain a card before battling")

	// ErrAlreadyInBattle is a short-circuit, not a failure: the caller should
	// route straight to the battle detail view instead of submitting a join.
	ErrAlreadyInBattle = errors.New("already a participant in this battle")

	ErrBattleNotFound = errors.New("battle not found in registry")

	ErrUnknownAction = errors.New("unknown turn action")
)
