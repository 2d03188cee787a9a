package engine

import "fmt"

// Phase is the engine's position in its load state machine.
type Phase uint8

const (
	// Idle: no background task. Either nothing observes the engine, the
	// engine was invalidated, or the source has been fully loaded.
	Idle Phase = iota
	// Loading: an increment is in flight.
	Loading
	// Paused: the task is parked between increments, waiting for a wake.
	Paused
	// Error: the last increment failed; the task is parked until a wake
	// clears the error and retries.
	Error
	// Closed is terminal.
	Closed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Paused:
		return "paused"
	case Error:
		return "error"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// transitions lists the legal successors of each phase.
//
//	Idle    -> Loading      first observer while dirty, refresh, reload
//	Loading -> Paused       increment committed, more remain
//	Loading -> Error        loader failed
//	Loading -> Idle         source exhausted, or invalidated mid-load
//	Loading -> Loading      refresh or reload mid-load restarts the task
//	Paused  -> Loading      next, look-ahead, refresh, reload
//	Paused  -> Idle         invalidate
//	Error   -> Loading      any wake, including regaining an observer
//	Error   -> Idle         invalidate
//	*       -> Closed       close
var transitions = map[Phase][]Phase{
	Idle:    {Loading, Closed},
	Loading: {Paused, Error, Idle, Loading, Closed},
	Paused:  {Loading, Idle, Closed},
	Error:   {Loading, Idle, Closed},
	Closed:  nil,
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
