package chain

import (
	"encoding/binary"
	"strconv"
)

// DepType distinguishes a plain code dep from a dep group.
type DepType uint8

const (
	DepCode DepType = iota
	DepGroup
)

func (t DepType) String() string {
	if t == DepGroup {
		return "dep_group"
	}
	return "code"
}

// OutPoint identifies a live cell by the transaction that created it and the
// output position within that transaction. It is the dedup key for cell deps
// and the double-spend key for inputs.
type OutPoint struct {
	TxHash Hash   `json:"tx_hash"`
	Index  uint32 `json:"index"`
}

func (o OutPoint) String() string {
	return o.TxHash.String() + ":" + strconv.FormatUint(uint64(o.Index), 10)
}

func (o OutPoint) Serialize() []byte {
	out := make([]byte, 0, HashSize+4)
	out = append(out, o.TxHash[:]...)
	out = binary.LittleEndian.AppendUint32(out, o.Index)
	return out
}

// CellDep pins a dependency cell the transaction's scripts read at run time.
type CellDep struct {
	OutPoint OutPoint `json:"out_point"`
	DepType  DepType  `json:"dep_type"`
}

// CellInput spends a live cell. Since carries the lock-script maturity rule
// and is opaque to this module.
type CellInput struct {
	Since          uint64   `json:"since"`
	PreviousOutput OutPoint `json:"previous_output"`
}

func (i CellInput) Serialize() []byte {
	out := make([]byte, 0, 8+HashSize+4)
	out = binary.LittleEndian.AppendUint64(out, i.Since)
	out = append(out, i.PreviousOutput.Serialize()...)
	return out
}

// CellOutput is a cell definition: capacity in shannons, a mandatory lock
// and an optional type script. Output data travels beside it, not inside.
type CellOutput struct {
	Capacity uint64  `json:"capacity"`
	Lock     Script  `json:"lock"`
	Type     *Script `json:"type,omitempty"`
}

func (o CellOutput) Serialize() []byte {
	out := binary.LittleEndian.AppendUint64(nil, o.Capacity)
	out = append(out, o.Lock.Serialize()...)
	if o.Type != nil {
		out = append(out, 1)
		out = append(out, o.Type.Serialize()...)
	} else {
		out = append(out, 0)
	}
	return out
}

// LockHash is the identity of the output's spending condition; inputs sharing
// it form one witness group.
func (o CellOutput) LockHash() Hash {
	return o.Lock.Hash()
}

// TypeHash returns the type script hash, or false when the output has none.
func (o CellOutput) TypeHash() (Hash, bool) {
	if o.Type == nil {
		return Hash{}, false
	}
	return o.Type.Hash(), true
}

// Header is the slice of a block header the engines care about: its identity
// plus enough metadata for maturity decisions made by callers.
type Header struct {
	Hash      Hash   `json:"hash"`
	Number    uint64 `json:"number"`
	Timestamp uint64 `json:"timestamp"`
}
