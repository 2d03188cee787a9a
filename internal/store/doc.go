// Package store provides the ordered collections an engine loads into.
//
// A Store holds every element loaded for one engine and reports structural
// changes through the observer.ChangeObserver protocol. Two variants exist:
//
//   - Array: append-only. Order is arrival order.
//   - Sorted: ordered by a caller-supplied comparator. Incoming elements are
//     matched against existing ones by an identity predicate and replaced in
//     place (or relocated) instead of being duplicated.
//
// # Threading
//
// Stores are not safe for concurrent mutation. The engine mutates its store
// only from its serialized notification context and guards reads with its
// own lock.
//
// # Batches
//
// Batch runs an operation with change delivery deferred. When the outermost
// batch returns, the buffered events are coalesced (see observer.Coalesce)
// and delivered, so observers only see net, index-consistent effects. A
// clear followed by re-population inside one batch is never observed as an
// empty collection.
//
// # Nil elements
//
// Nil values (nil pointers, maps, slices, funcs, chans or interfaces) are
// never stored; Add skips them.
package store
