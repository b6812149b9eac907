// Package chainview is the read-only boundary between the composition engine
// and chain state. The engine never performs network I/O; it consumes cells
// and headers already resolved through a CellReader supplied by the caller.
package chainview

import (
	"errors"

	"cellweaver/internal/chain"
	"cellweaver/internal/skeleton"
)

var (
	// ErrNotFound is returned when the requested cell or header does not
	// exist in the reader's view of the chain.
	ErrNotFound = errors.New("not found on chain")

	// ErrCellConsumed is returned when a cell exists but was already spent.
	ErrCellConsumed = errors.New("cell already consumed")
)

// CellReader resolves chain state by identifier. Implementations may sit on
// an RPC client, an indexer, or an in-memory fixture; the engine treats them
// all the same and never retries.
type CellReader interface {
	// Cell resolves a live cell by outpoint.
	Cell(op chain.OutPoint) (*skeleton.CellInfo, error)

	// Header resolves a block header by hash.
	Header(h chain.Hash) (*chain.Header, error)
}

// CellCollector extends a reader with lock-based search, the way deployment
// tooling gathers capacity from a payer.
type CellCollector interface {
	CellReader

	// CellsByLock returns live cells whose lock hash matches, in a stable
	// order, at most limit entries.
	CellsByLock(lockHash chain.Hash, limit int) ([]skeleton.CellInfo, error)
}
