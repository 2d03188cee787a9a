// Package source provides concrete Loaders and the plumbing around them.
//
//   - Slice pages through an in-memory slice.
//   - SQLite stores records in a WAL-mode database; its Pager walks them with
//     keyset pagination in (seq, id) order.
//   - Throttle rate-limits any Loader with a token bucket.
//   - Watch calls back when a database file changes on disk.
//
// Every Loader here rewinds to the first page on both engine hooks, so an
// engine refresh, reload or invalidate starts from the beginning.
package source
