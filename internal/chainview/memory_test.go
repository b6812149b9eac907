package chainview

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cellweaver/internal/chain"
	"cellweaver/internal/skeleton"
)

func lockFor(seed byte) chain.Script {
	arg := make([]byte, 20)
	arg[0] = seed
	return chain.SighashAllLock(arg)
}

func liveCell(seed byte, index uint32, capacity uint64) skeleton.CellInfo {
	return skeleton.CellInfo{
		OutPoint: chain.OutPoint{TxHash: chain.Blake2b256([]byte{seed}), Index: index},
		Output:   chain.CellOutput{Capacity: capacity, Lock: lockFor(seed)},
		Data:     skeleton.HexBytes{seed},
	}
}

func TestMemoryChain_CellLookup(t *testing.T) {
	m := NewMemoryChain()
	cell := liveCell(1, 0, chain.Bytes(100))
	m.AddCell(cell)

	got, err := m.Cell(cell.OutPoint)
	require.NoError(t, err)
	require.Equal(t, cell, *got)

	// The returned data is a copy; mutating it must not leak into the fixture.
	got.Data[0] = 0xff
	again, err := m.Cell(cell.OutPoint)
	require.NoError(t, err)
	require.Equal(t, skeleton.HexBytes{1}, again.Data)

	_, err = m.Cell(chain.OutPoint{TxHash: chain.Blake2b256([]byte("missing"))})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryChain_HeaderLookup(t *testing.T) {
	m := NewMemoryChain()
	hdr := chain.Header{Hash: chain.Blake2b256([]byte("blk")), Number: 42, Timestamp: 1700000000000}
	m.AddHeader(hdr)

	got, err := m.Header(hdr.Hash)
	require.NoError(t, err)
	require.Equal(t, hdr, *got)

	_, err = m.Header(chain.Blake2b256([]byte("other")))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryChain_CellsByLock(t *testing.T) {
	m := NewMemoryChain()
	a := liveCell(1, 0, chain.Bytes(100))
	b := liveCell(1, 1, chain.Bytes(200))
	b.OutPoint.TxHash = a.OutPoint.TxHash
	other := liveCell(2, 0, chain.Bytes(300))
	m.AddCell(b)
	m.AddCell(a)
	m.AddCell(other)

	got, err := m.CellsByLock(a.Output.LockHash(), 0)
	require.NoError(t, err)
	require.Equal(t, []skeleton.CellInfo{a, b}, got)

	got, err = m.CellsByLock(a.Output.LockHash(), 1)
	require.NoError(t, err)
	require.Equal(t, []skeleton.CellInfo{a}, got)

	got, err = m.CellsByLock(chain.Blake2b256([]byte("nobody")), 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemoryChain_Commit(t *testing.T) {
	m := NewMemoryChain()
	in := liveCell(1, 0, chain.Bytes(200))
	m.AddCell(in)

	sk := skeleton.New()
	require.NoError(t, sk.AppendInput(skeleton.Input{Cell: in}))
	sk.AppendOutput(skeleton.Output{
		Output: chain.CellOutput{Capacity: chain.Bytes(200), Lock: lockFor(9)},
		Data:   skeleton.HexBytes("state"),
	})

	txHash, err := m.Commit(sk)
	require.NoError(t, err)
	require.Equal(t, sk.TxHash(), txHash)

	// The input is gone, and the output is live under the transaction hash.
	_, err = m.Cell(in.OutPoint)
	require.ErrorIs(t, err, ErrCellConsumed)

	out, err := m.Cell(chain.OutPoint{TxHash: txHash, Index: 0})
	require.NoError(t, err)
	require.Equal(t, lockFor(9), out.Output.Lock)
	require.Equal(t, skeleton.HexBytes("state"), out.Data)

	// A second spend of the same input is rejected atomically.
	_, err = m.Commit(sk)
	require.ErrorIs(t, err, ErrCellConsumed)
}

func TestMemoryChain_CommitUnknownInput(t *testing.T) {
	m := NewMemoryChain()
	stranger := liveCell(7, 0, chain.Bytes(100))

	sk := skeleton.New()
	require.NoError(t, sk.AppendInput(skeleton.Input{Cell: stranger}))

	_, err := m.Commit(sk)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, m.Snapshot())
}

func TestMemoryChain_Snapshot(t *testing.T) {
	m := NewMemoryChain()
	a := liveCell(1, 0, chain.Bytes(100))
	b := liveCell(2, 0, chain.Bytes(100))
	m.AddCell(a)
	m.AddCell(b)

	snap := m.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, snap, m.Snapshot())
}
