// Package observer provides the listener registry and the structural change
// protocol shared by stores and engines.
//
// # Registry
//
// Registry holds listeners of one kind. Registration is idempotent and
// unregistering an absent listener is a no-op. Notification iterates a
// snapshot of the listener set taken when the notification starts, so a
// listener may register or unregister (itself or others) from inside a
// callback without disturbing the dispatch in progress.
//
// # Change protocol
//
// ChangeObserver receives pure index notifications: a bulk Changed, or
// inserted/removed/changed/moved ranges. Events carry no payload; consumers
// re-read the collection they observe.
//
// Changes combines a Registry of ChangeObservers with batching. While a batch
// is open, events are buffered. When the outermost batch ends, the buffer is
// coalesced into an index-consistent sequence and delivered.
package observer
