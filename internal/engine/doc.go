// Package engine implements the lazylist loading engine.
//
// An Engine pulls increments from one Loader into one Store and republishes
// the store's structural changes, plus its own loading, available and error
// state, to its observers. Loading is pull-based: the engine only runs while
// something observes it, and it pauses after every increment until a reader
// comes within the look-ahead distance of the end, or Next is called.
//
// ARCHITECTURE:
//
// Two execution contexts:
//   - the background task, one per engine at a time, which calls Load and
//     nothing else;
//   - the dispatcher, a single goroutine draining a FIFO task queue. Every
//     state change, store mutation, loader hook and observer callback runs
//     on it, so observers never see overlapping or reordered notifications.
//
// The background task hands each result to the dispatcher and parks on a
// single-slot wake channel. Wakes coalesce. Cancellation is cooperative and
// never surfaces as an error.
//
// Thread-safety model:
//   - query methods (Size, Get, IsLoading, Available, Err, Phase): any goroutine
//   - commands (Next, Refresh, Reload, Invalidate, Close): any goroutine,
//     including observer callbacks; they are queued and never block on I/O
//   - observers: always called on the dispatcher, never while the engine
//     holds its state lock, so they may call back into the engine
//
// State machine:
//
//	Idle -> Loading -> Paused -> Loading -> ... -> Idle (exhausted)
//	             \-> Error -> Loading (any wake, or regaining an observer)
//
// Every task carries a generation from the engine's Clock. Results from a
// cancelled generation are dropped on the dispatcher, so a refresh never
// mixes old and new increments.
//
// After Close every command is a no-op, queries report an empty engine and no
// notification of any kind is delivered.
package engine
