package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// Stage names in execution order.
const (
	StageFetchMedia = "fetch-media"
	StageTranscribe = "transcribe"
	StageTranslate  = "translate"
	StageSynthesize = "synthesize"
	StageMux        = "mux"
)

// StageOrder is the fixed order the Runner enforces.
var StageOrder = []string{StageFetchMedia, StageTranscribe, StageTranslate, StageSynthesize, StageMux}

// Stage transforms one state value into the next.
type Stage interface {
	StageName() string
	Apply(ctx context.Context, state State) State
}

// Step implements Stage with the check-delegate-write protocol. Do receives a
// copy of the state and returns it with output fields written; a non-nil error
// discards that copy and records the error text on the original state. Writes
// to fields outside Produces are rejected the same way.
type Step struct {
	Name     string
	Requires []Field
	Produces []Field
	Do       func(ctx context.Context, state State) (State, error)
}

// StageName returns the step name.
func (s Step) StageName() string {
	return s.Name
}

// OutputFields returns the fields the step may write.
func (s Step) OutputFields() []Field {
	return s.Produces
}

// Apply runs the step against state.
func (s Step) Apply(ctx context.Context, state State) State {
	if state.Failed() {
		return state
	}
	if missing := state.Missing(s.Requires...); len(missing) > 0 {
		return state.WithError(fmt.Sprintf("%s: %s not found in state", s.Name, strings.Join(missing, ", ")))
	}
	if s.Do == nil {
		return state.WithError(fmt.Sprintf("%s: no collaborator configured", s.Name))
	}
	next, err := s.Do(ctx, state)
	if err != nil {
		return state.WithError(err.Error())
	}
	if next.Failed() {
		return state.WithError(next.Error)
	}
	if extra := writtenOutside(state, next, s.Produces); len(extra) > 0 {
		return state.WithError(outsideOutputsMessage(s.Name, extra))
	}
	return next
}

func outsideOutputsMessage(stage string, fields []string) string {
	return fmt.Sprintf("%s: wrote %s outside its outputs", stage, strings.Join(fields, ", "))
}
