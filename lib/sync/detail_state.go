package sync

import (
	"fmt"
	"log/slog"
	"sync"
)

// Phase tracks how far one table chain of a battle detail has progressed:
// battle fields captured, dynamic-field refs enumerated, entry objects
// decoded. The player-status chain and the cards chain each own a machine
// and advance independently.
type Phase int

const (
	PHASE_UNINITIALIZED Phase = iota
	PHASE_FIELDS_LOADED
	PHASE_REFS_LOADED
	PHASE_OBJECTS_LOADED
)

type PhaseTransition struct {
	From Phase
	To   Phase
}

var phaseTransitions = map[PhaseTransition]struct{}{
	{PHASE_UNINITIALIZED, PHASE_FIELDS_LOADED}: {},
	{PHASE_FIELDS_LOADED, PHASE_REFS_LOADED}:   {},
	{PHASE_REFS_LOADED, PHASE_OBJECTS_LOADED}:  {},
	// A new polling cycle restarts a completed or partially loaded chain.
	{PHASE_REFS_LOADED, PHASE_FIELDS_LOADED}:    {},
	{PHASE_OBJECTS_LOADED, PHASE_FIELDS_LOADED}: {},
}

func phaseName(phase Phase) string {
	switch phase {
	case PHASE_UNINITIALIZED:
		return "UNINITIALIZED"
	case PHASE_FIELDS_LOADED:
		return "FIELDS_LOADED"
	case PHASE_REFS_LOADED:
		return "REFS_LOADED"
	case PHASE_OBJECTS_LOADED:
		return "OBJECTS_LOADED"
	}
	return "UNKNOWN"
}

type PhaseMachine struct {
	phase Phase

	mutex sync.RWMutex
}

func NewPhaseMachine() PhaseMachine {
	return PhaseMachine{
		phase: PHASE_UNINITIALIZED,
	}
}

func (machine *PhaseMachine) Get() Phase {
	machine.mutex.RLock()
	defer machine.mutex.RUnlock()

	return machine.phase
}

// To advances the machine. Re-entering the current phase is a no-op: chains
// re-run every polling tick once loaded. Regressions are rejected.
func (machine *PhaseMachine) To(phase Phase) error {
	current := machine.Get()
	if phase == current {
		return nil
	}

	if _, ok := phaseTransitions[PhaseTransition{current, phase}]; ok {
		machine.mutex.Lock()
		machine.phase = phase
		machine.mutex.Unlock()
		return nil
	}

	slog.Warn("invalid detail phase transition", "from", phaseName(current), "to", phaseName(phase))
	return fmt.Errorf("invalid detail phase transition %s -> %s", phaseName(current), phaseName(phase))
}
