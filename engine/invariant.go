package engine

import "github.com/rs/zerolog/log"

// InvariantError is raised (via panic, inside the worker-pool task) when
// matching leaves a book in a state the core considers impossible under
// correct code — currently only a crossed book after a completed
// submission (spec §8 invariant 1). It is never returned as a normal Go
// error; it is recovered by the task runner and turned into a quarantine.
type InvariantError struct {
	Symbol string
	Detail string
}

func (e *InvariantError) Error() string {
	return "invariant violation on " + e.Symbol + ": " + e.Detail
}

// quarantine marks state's book so every subsequent submission for this
// symbol is rejected instead of running matching against possibly-corrupt
// state, and logs the cause at Error level (spec §7).
func quarantine(state *bookState, symbol string, cause any) {
	state.book.Quarantined = true
	log.Error().
		Str("symbol", symbol).
		Interface("cause", cause).
		Msg("book quarantined after invariant violation")
}
