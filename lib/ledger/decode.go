package ledger

import (
	"encoding/json"
	"strconv"

	"arena/lib"
)

// Decoders flatten the nested `content.fields...` ledger payloads into the
// typed read projections. Any shape mismatch is reported as a
// MalformedPayloadError instead of panicking on a missing path.

// BattleFields is the first level of a battle object: the references to the
// two ledger-side tables plus the terminal winner. The wire name of the
// winner field is `winer`; that spelling is part of the deployed contract.
type BattleFields struct {
	Name                string
	Players             []string
	Status              lib.BattleStatus
	PlayerStatusTableID string
	CardsTableID        string
	Winner              *string
}

func DecodeCard(object *ObjectData) (lib.Card, error) {
	fields, err := contentFields(object)
	if err != nil {
		return lib.Card{}, err
	}

	card := lib.Card{
		Id:           object.ObjectID,
		OwnerAddress: object.AddressOwner(),
	}
	var ok bool
	if card.Name, ok = stringField(fields, "name"); !ok {
		return lib.Card{}, malformed(object, "card is missing name")
	}
	if card.Attack, ok = intField(fields, "attack"); !ok {
		return lib.Card{}, malformed(object, "card is missing attack")
	}
	if card.Defense, ok = intField(fields, "defense"); !ok {
		return lib.Card{}, malformed(object, "card is missing defense")
	}
	// Optional on older mints.
	card.Description, _ = stringField(fields, "description")
	card.ImageUrl, _ = stringField(fields, "url")
	return card, nil
}

// DecodeRegistry returns the ordered battle id list held by the singleton
// battle registry object.
func DecodeRegistry(object *ObjectData) ([]string, error) {
	fields, err := contentFields(object)
	if err != nil {
		return nil, err
	}
	battles, ok := stringSlice(fields, "battles")
	if !ok {
		return nil, malformed(object, "registry is missing battles list")
	}
	return battles, nil
}

func DecodeBattleSummary(object *ObjectData) (lib.BattleSummary, error) {
	fields, err := contentFields(object)
	if err != nil {
		return lib.BattleSummary{}, err
	}

	summary := lib.BattleSummary{BattleId: object.ObjectID}
	var ok bool
	if summary.Name, ok = stringField(fields, "name"); !ok {
		return lib.BattleSummary{}, malformed(object, "battle is missing name")
	}
	if summary.Players, ok = stringSlice(fields, "players"); !ok {
		return lib.BattleSummary{}, malformed(object, "battle is missing players")
	}
	status, ok := intField(fields, "status")
	if !ok {
		return lib.BattleSummary{}, malformed(object, "battle is missing status")
	}
	summary.Status = lib.BattleStatus(status)
	return summary, nil
}

func DecodeBattleFields(object *ObjectData) (*BattleFields, error) {
	fields, err := contentFields(object)
	if err != nil {
		return nil, err
	}

	battle := &BattleFields{}
	var ok bool
	battle.Name, _ = stringField(fields, "name")
	battle.Players, _ = stringSlice(fields, "players")
	if status, found := intField(fields, "status"); found {
		battle.Status = lib.BattleStatus(status)
	}

	if battle.PlayerStatusTableID, ok = tableID(fields, "player_status"); !ok {
		return nil, malformed(object, "battle is missing player_status table")
	}
	if battle.CardsTableID, ok = tableID(fields, "cards"); !ok {
		return nil, malformed(object, "battle is missing cards table")
	}

	// `winer` absent or null both mean the battle is still running.
	if winner, found := stringField(fields, "winer"); found {
		battle.Winner = &winner
	}
	return battle, nil
}

// DecodePlayerStatus decodes one entry of the player-status table: the entry
// key is the player address, the value holds the health.
func DecodePlayerStatus(object *ObjectData) (lib.PlayerStatus, error) {
	fields, err := contentFields(object)
	if err != nil {
		return lib.PlayerStatus{}, err
	}

	status := lib.PlayerStatus{}
	var ok bool
	if status.Address, ok = stringField(fields, "name"); !ok {
		return lib.PlayerStatus{}, malformed(object, "status entry is missing account")
	}
	value, ok := nestedFields(fields, "value")
	if !ok {
		return lib.PlayerStatus{}, malformed(object, "status entry is missing value")
	}
	if status.Health, ok = intField(value, "health"); !ok {
		return lib.PlayerStatus{}, malformed(object, "status entry is missing health")
	}
	return status, nil
}

// DecodeCardInBattle decodes one entry of the cards table: the entry key is
// the owner address, the value is the card put into the battle.
func DecodeCardInBattle(object *ObjectData) (lib.CardInBattle, error) {
	fields, err := contentFields(object)
	if err != nil {
		return lib.CardInBattle{}, err
	}

	card := lib.CardInBattle{}
	var ok bool
	if card.OwnerAddress, ok = stringField(fields, "name"); !ok {
		return lib.CardInBattle{}, malformed(object, "card entry is missing owner")
	}
	value, ok := nestedFields(fields, "value")
	if !ok {
		return lib.CardInBattle{}, malformed(object, "card entry is missing value")
	}
	if card.Attack, ok = intField(value, "attack"); !ok {
		return lib.CardInBattle{}, malformed(object, "card entry is missing attack")
	}
	if card.Defense, ok = intField(value, "defense"); !ok {
		return lib.CardInBattle{}, malformed(object, "card entry is missing defense")
	}
	card.Name, _ = stringField(value, "name")
	card.ImageUrl, _ = stringField(value, "url")
	return card, nil
}

func contentFields(object *ObjectData) (map[string]any, error) {
	if object == nil {
		return nil, &MalformedPayloadError{Reason: "nil object"}
	}
	if object.Content == nil || len(object.Content.Fields) == 0 {
		return nil, malformed(object, "object has no content fields")
	}
	var fields map[string]any
	if err := json.Unmarshal(object.Content.Fields, &fields); err != nil {
		return nil, malformed(object, "content fields are not a json object")
	}
	return fields, nil
}

func malformed(object *ObjectData, reason string) error {
	id := ""
	if object != nil {
		id = object.ObjectID
	}
	return &MalformedPayloadError{ObjectID: id, Reason: reason}
}

// nestedFields follows one `.fields.` indirection: m[key].fields.
func nestedFields(m map[string]any, key string) (map[string]any, bool) {
	wrapper, ok := m[key].(map[string]any)
	if !ok {
		return nil, false
	}
	fields, ok := wrapper["fields"].(map[string]any)
	return fields, ok
}

// tableID resolves m[key].fields.id.id, the object id of a table.
func tableID(m map[string]any, key string) (string, bool) {
	fields, ok := nestedFields(m, key)
	if !ok {
		return "", false
	}
	id, ok := fields["id"].(map[string]any)
	if !ok {
		return "", false
	}
	value, ok := id["id"].(string)
	return value, ok && value != ""
}

func stringField(m map[string]any, key string) (string, bool) {
	value, ok := m[key].(string)
	return value, ok
}

// intField tolerates both wire encodings of move integers: json numbers and
// decimal strings (u64 values are strings on the wire).
func intField(m map[string]any, key string) (int, bool) {
	switch value := m[key].(type) {
	case float64:
		return int(value), true
	case string:
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case json.Number:
		parsed, err := value.Int64()
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	default:
		return 0, false
	}
}

func stringSlice(m map[string]any, key string) ([]string, bool) {
	raw, ok := m[key].([]any)
	if !ok {
		return nil, false
	}
	values := make([]string, 0, len(raw))
	for _, entry := range raw {
		value, ok := entry.(string)
		if !ok {
			return nil, false
		}
		values = append(values, value)
	}
	return values, true
}
