package chainview

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"cellweaver/internal/chain"
	"cellweaver/internal/skeleton"
)

// MemoryChain is an in-memory chain fixture implementing CellCollector. It
// backs tests and dry runs; each composition run still only sees it through
// the reader interface.
type MemoryChain struct {
	mu       sync.Mutex
	cells    map[chain.OutPoint]skeleton.CellInfo
	consumed map[chain.OutPoint]struct{}
	headers  map[chain.Hash]chain.Header
}

// NewMemoryChain returns an empty fixture.
func NewMemoryChain() *MemoryChain {
	return &MemoryChain{
		cells:    make(map[chain.OutPoint]skeleton.CellInfo),
		consumed: make(map[chain.OutPoint]struct{}),
		headers:  make(map[chain.Hash]chain.Header),
	}
}

// AddCell registers a live cell.
func (m *MemoryChain) AddCell(info skeleton.CellInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells[info.OutPoint] = info
}

// AddHeader registers a block header.
func (m *MemoryChain) AddHeader(h chain.Header) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headers[h.Hash] = h
}

// Cell implements CellReader.
func (m *MemoryChain) Cell(op chain.OutPoint) (*skeleton.CellInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, gone := m.consumed[op]; gone {
		return nil, errors.Wrapf(ErrCellConsumed, "cell %s", op)
	}
	info, ok := m.cells[op]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "cell %s", op)
	}
	cp := info
	cp.Data = append(skeleton.HexBytes(nil), info.Data...)
	return &cp, nil
}

// Header implements CellReader.
func (m *MemoryChain) Header(h chain.Hash) (*chain.Header, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hdr, ok := m.headers[h]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "header %s", h)
	}
	cp := hdr
	return &cp, nil
}

// CellsByLock implements CellCollector. Results are ordered by outpoint so
// repeated collections are deterministic.
func (m *MemoryChain) CellsByLock(lockHash chain.Hash, limit int) ([]skeleton.CellInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []skeleton.CellInfo
	for op, info := range m.cells {
		if _, gone := m.consumed[op]; gone {
			continue
		}
		if info.Output.LockHash() == lockHash {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].OutPoint, out[j].OutPoint
		if a.TxHash != b.TxHash {
			return a.TxHash.String() < b.TxHash.String()
		}
		return a.Index < b.Index
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Snapshot returns every live cell ordered by outpoint, for persisting the
// fixture between tool invocations.
func (m *MemoryChain) Snapshot() []skeleton.CellInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []skeleton.CellInfo
	for op, info := range m.cells {
		if _, gone := m.consumed[op]; gone {
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].OutPoint, out[j].OutPoint
		if a.TxHash != b.TxHash {
			return a.TxHash.String() < b.TxHash.String()
		}
		return a.Index < b.Index
	})
	return out
}

// Commit applies a finished skeleton to the fixture: consumes its inputs and
// registers its outputs under the transaction hash. It lets a test chain
// several compositions together the way real submission would.
func (m *MemoryChain) Commit(sk *skeleton.TransactionSkeleton) (chain.Hash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	txHash := sk.TxHash()
	for _, in := range sk.Inputs() {
		op := in.Cell.OutPoint
		if _, gone := m.consumed[op]; gone {
			return chain.Hash{}, errors.Wrapf(ErrCellConsumed, "input %s", op)
		}
		if _, ok := m.cells[op]; !ok {
			return chain.Hash{}, errors.Wrapf(ErrNotFound, "input %s", op)
		}
	}
	for _, in := range sk.Inputs() {
		m.consumed[in.Cell.OutPoint] = struct{}{}
	}
	for i, out := range sk.Outputs() {
		op := chain.OutPoint{TxHash: txHash, Index: uint32(i)}
		m.cells[op] = skeleton.CellInfo{OutPoint: op, Output: out.Output, Data: out.Data}
	}
	return txHash, nil
}
