package sync

import (
	"context"
	"log/slog"
	"sync"

	"arena/lib"
	"arena/lib/ledger"
)

// BattleDetailSync reconstructs the full view of one battle by walking two
// levels of indirection: battle object -> table ids -> per-player entry
// objects. The player-status chain and the cards chain are independent and
// run concurrently within a tick; each chain is strictly sequential.
//
// Once the battle object reports a winner the sync is terminal: polling is
// frozen and repeated ticks issue no further fetches.
type BattleDetailSync struct {
	reader   ledger.Reader
	battleID string
	poller   *poller

	playerPhase PhaseMachine
	cardPhase   PhaseMachine

	mu            sync.RWMutex
	statusTableID string
	cardsTableID  string
	detail        lib.BattleDetail
	status        Status
	err           error
	finished      bool
}

func NewBattleDetailSync(reader ledger.Reader, battleID string) *BattleDetailSync {
	return &BattleDetailSync{
		reader:      reader,
		battleID:    battleID,
		poller:      newPoller(POLL_INTERVAL),
		playerPhase: NewPhaseMachine(),
		cardPhase:   NewPhaseMachine(),
		detail:      lib.BattleDetail{BattleId: battleID},
		status:      STATUS_PENDING,
	}
}

func (s *BattleDetailSync) BattleID() string {
	return s.battleID
}

func (s *BattleDetailSync) Start(ctx context.Context) error {
	return s.poller.Start(ctx, s.tick)
}

func (s *BattleDetailSync) Stop() {
	s.poller.Stop()
}

func (s *BattleDetailSync) Finished() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.finished
}

// Snapshot returns the current battle detail projection with its status.
func (s *BattleDetailSync) Snapshot() (lib.BattleDetail, Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	detail := s.detail
	detail.PlayerStatuses = make([]lib.PlayerStatus, len(s.detail.PlayerStatuses))
	copy(detail.PlayerStatuses, s.detail.PlayerStatuses)
	detail.CardsInBattle = make([]lib.CardInBattle, len(s.detail.CardsInBattle))
	copy(detail.CardsInBattle, s.detail.CardsInBattle)
	return detail, s.status, s.err
}

func (s *BattleDetailSync) tick(ctx context.Context, generation uint64) {
	if s.Finished() {
		return
	}

	fetch_ctx, cancel := context.WithTimeout(ctx, POLL_INTERVAL)
	defer cancel()

	battle_object, err := s.reader.GetObject(fetch_ctx, s.battleID, ledger.DefaultObjectOptions())
	if err != nil {
		if !s.poller.current(generation) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if ledger.IsNotFound(err) {
			// Not yet visible on the ledger; the next poll resolves it.
			s.status = STATUS_PENDING
			s.err = nil
			return
		}
		s.status = STATUS_ERROR
		s.err = err
		slog.Warn("battle detail poll failed", "battle_id", s.battleID, "error", err)
		return
	}

	fields, err := ledger.DecodeBattleFields(battle_object)
	if err != nil {
		if !s.poller.current(generation) {
			return
		}
		s.mu.Lock()
		s.status = STATUS_ERROR
		s.err = err
		s.mu.Unlock()
		return
	}

	if !s.poller.current(generation) {
		return
	}
	s.mu.Lock()
	s.statusTableID = fields.PlayerStatusTableID
	s.cardsTableID = fields.CardsTableID
	s.mu.Unlock()
	s.playerPhase.To(PHASE_FIELDS_LOADED)
	s.cardPhase.To(PHASE_FIELDS_LOADED)

	// Both chains in flight at once; each is sequential internally.
	var wg sync.WaitGroup
	var player_err, card_err error
	wg.Add(2)
	go func() {
		defer wg.Done()
		player_err = s.runPlayerChain(fetch_ctx, generation)
	}()
	go func() {
		defer wg.Done()
		card_err = s.runCardChain(fetch_ctx, generation)
	}()
	wg.Wait()

	if !s.poller.current(generation) {
		return
	}
	s.mu.Lock()
	if player_err != nil || card_err != nil {
		s.status = STATUS_ERROR
		if player_err != nil {
			s.err = player_err
		} else {
			s.err = card_err
		}
	} else {
		s.status = STATUS_SUCCESS
		s.err = nil
	}

	terminal := fields.Winner != nil
	if terminal {
		s.detail.Winner = fields.Winner
		s.finished = true
	}
	s.mu.Unlock()

	if terminal {
		slog.Info("battle finished, freezing poll", "battle_id", s.battleID, "winner", *fields.Winner)
		s.poller.Stop()
	}
}

func (s *BattleDetailSync) runPlayerChain(ctx context.Context, generation uint64) error {
	s.mu.RLock()
	table_id := s.statusTableID
	s.mu.RUnlock()

	refs, err := s.reader.GetDynamicFields(ctx, table_id)
	if err != nil {
		return err
	}
	s.playerPhase.To(PHASE_REFS_LOADED)
	if len(refs) == 0 {
		return nil
	}

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ObjectID)
	}
	objects, err := s.reader.MultiGetObjects(ctx, ids, ledger.DefaultObjectOptions())
	if err != nil {
		return err
	}

	statuses := make([]lib.PlayerStatus, 0, len(objects))
	for _, object := range objects {
		if object == nil {
			continue
		}
		status, err := ledger.DecodePlayerStatus(object)
		if err != nil {
			return err
		}
		statuses = append(statuses, status)
	}
	// Anti-flicker: a transiently empty table must not blank out loaded
	// state while the ledger is mid-transition.
	if len(statuses) == 0 {
		return nil
	}

	if !s.poller.current(generation) {
		return nil
	}
	s.mu.Lock()
	s.detail.PlayerStatuses = statuses
	s.mu.Unlock()
	s.playerPhase.To(PHASE_OBJECTS_LOADED)
	return nil
}

func (s *BattleDetailSync) runCardChain(ctx context.Context, generation uint64) error {
	s.mu.RLock()
	table_id := s.cardsTableID
	s.mu.RUnlock()

	refs, err := s.reader.GetDynamicFields(ctx, table_id)
	if err != nil {
		return err
	}
	s.cardPhase.To(PHASE_REFS_LOADED)
	if len(refs) == 0 {
		return nil
	}

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ObjectID)
	}
	objects, err := s.reader.MultiGetObjects(ctx, ids, ledger.DefaultObjectOptions())
	if err != nil {
		return err
	}

	cards := make([]lib.CardInBattle, 0, len(objects))
	for _, object := range objects {
		if object == nil {
			continue
		}
		card, err := ledger.DecodeCardInBattle(object)
		if err != nil {
			return err
		}
		cards = append(cards, card)
	}
	if len(cards) == 0 {
		return nil
	}

	if !s.poller.current(generation) {
		return nil
	}
	s.mu.Lock()
	s.detail.CardsInBattle = cards
	s.mu.Unlock()
	s.cardPhase.To(PHASE_OBJECTS_LOADED)
	return nil
}
