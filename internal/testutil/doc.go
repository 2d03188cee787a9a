// Package testutil provides test doubles for engines, stores and loaders.
//
// Everything here is safe for concurrent use, because engines call loaders
// from their background task and observers from their dispatcher.
package testutil
