package app

import (
	"context"
	"errors"

	"survey-service/internal/domain"
	"github.com/looplab/fsm"
)

const (
	eventLoad        = "load"
	eventLoaded      = "loaded"
	eventLoadedEmpty = "loaded_empty"
	eventLoadFailed  = "load_failed"
)

// newLifecycle builds the phase machine. Every phase may restart loading;
// only a loading session can settle into ready, empty or load_error.
func newLifecycle() *fsm.FSM {
	loading := string(domain.PhaseLoading)
	return fsm.NewFSM(
		loading,
		fsm.Events{
			{Name: eventLoad, Src: []string{
				loading,
				string(domain.PhaseLoadError),
				string(domain.PhaseEmpty),
				string(domain.PhaseReady),
			}, Dst: loading},
			{Name: eventLoaded, Src: []string{loading}, Dst: string(domain.PhaseReady)},
			{Name: eventLoadedEmpty, Src: []string{loading}, Dst: string(domain.PhaseEmpty)},
			{Name: eventLoadFailed, Src: []string{loading}, Dst: string(domain.PhaseLoadError)},
		},
		fsm.Callbacks{},
	)
}

// fire applies event to the lifecycle. Reloading while already loading is
// reported by fsm as NoTransitionError and is not a failure.
func (s *SurveySession) fire(event string) {
	err := s.lifecycle.Event(context.Background(), event)
	if err == nil {
		return
	}
	var noop fsm.NoTransitionError
	if errors.As(err, &noop) {
		return
	}
	s.logger.WithError(err).Errorf("invalid lifecycle event %q", event)
}

func (s *SurveySession) phaseLocked() domain.Phase {
	return domain.Phase(s.lifecycle.Current())
}
