package pipeline

import "fmt"

// State is a step of the one-shot run state machine
type State string

const (
	StateIdle              State = "idle"
	StateResolvingRate     State = "resolving_frame_rate"
	StateExtractingSamples State = "extracting_samples"
	StateNoEventsFound     State = "no_events_found"
	StateEventsGrouped     State = "events_grouped"
	StateSegmentsBuilt     State = "segments_built"
	StateRendering         State = "rendering"
	StateRenderSucceeded   State = "render_succeeded"
	StateRenderFailed      State = "render_failed"
	StateCancelled         State = "cancelled"
	StateFailed            State = "failed"
)

var transitions = map[State][]State{
	StateIdle:              {StateResolvingRate, StateFailed},
	StateResolvingRate:     {StateExtractingSamples, StateFailed, StateCancelled},
	StateExtractingSamples: {StateNoEventsFound, StateEventsGrouped, StateFailed, StateCancelled},
	StateEventsGrouped:     {StateSegmentsBuilt},
	StateSegmentsBuilt:     {StateRendering},
	StateRendering:         {StateRenderSucceeded, StateRenderFailed, StateCancelled},
}

// Terminal reports whether no transition leaves s
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// machine tracks the states a run has passed through
type machine struct {
	current State
	history []State
}

func newMachine() *machine {
	return &machine{current: StateIdle, history: []State{StateIdle}}
}

// to moves to next; states are never re-entered
func (m *machine) to(next State) error {
	for _, allowed := range transitions[m.current] {
		if allowed == next {
			m.current = next
			m.history = append(m.history, next)
			return nil
		}
	}
	return fmt.Errorf("illegal transition %s -> %s", m.current, next)
}
