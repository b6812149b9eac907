package skeleton

import (
	"encoding/binary"
	"encoding/json"

	"cellweaver/internal/chain"
)

// CellInfo is a live cell as resolved from the chain: where it sits, its
// definition, and its data. Inputs and cell deps carry their resolved cell so
// later operations can reason about capacity and scripts without re-querying.
type CellInfo struct {
	OutPoint chain.OutPoint   `json:"out_point"`
	Output   chain.CellOutput `json:"output"`
	Data     HexBytes         `json:"data"`
}

// Input pairs the spend itself with the cell being spent.
type Input struct {
	Since uint64   `json:"since"`
	Cell  CellInfo `json:"cell"`
}

// CellInput is the wire form of the spend.
func (in Input) CellInput() chain.CellInput {
	return chain.CellInput{Since: in.Since, PreviousOutput: in.Cell.OutPoint}
}

// Output is a cell definition plus the data the new cell will hold.
type Output struct {
	Output chain.CellOutput `json:"output"`
	Data   HexBytes         `json:"data"`
}

// TransactionSkeleton is the single mutable artifact of a composition run.
//
// Merge semantics per area:
//   - cell deps and header deps are sets deduplicated by identifier; a repeat
//     append is a no-op, never an error
//   - inputs preserve append order and reject a repeated outpoint
//   - outputs and witnesses preserve append order with no deduplication
type TransactionSkeleton struct {
	cellDeps   []chain.CellDep
	headerDeps []chain.Hash
	inputs     []Input
	outputs    []Output
	witnesses  [][]byte

	seenDeps       map[chain.CellDep]struct{}
	seenHeaderDeps map[chain.Hash]struct{}
	seenInputs     map[chain.OutPoint]struct{}
}

// New returns an empty skeleton owned by exactly one composition run.
func New() *TransactionSkeleton {
	return &TransactionSkeleton{
		seenDeps:       make(map[chain.CellDep]struct{}),
		seenHeaderDeps: make(map[chain.Hash]struct{}),
		seenInputs:     make(map[chain.OutPoint]struct{}),
	}
}

// Append dispatches an item into the targeted field. The item's concrete type
// must match the field: chain.CellDep, chain.Hash, Input, Output or []byte.
func (s *TransactionSkeleton) Append(field Field, item any) error {
	switch field {
	case FieldCellDeps:
		dep, ok := item.(chain.CellDep)
		if !ok {
			return mergeErrf(field, ErrBadItem, "want chain.CellDep, got %T", item)
		}
		s.AppendCellDep(dep)
	case FieldHeaderDeps:
		h, ok := item.(chain.Hash)
		if !ok {
			return mergeErrf(field, ErrBadItem, "want chain.Hash, got %T", item)
		}
		s.AppendHeaderDep(h)
	case FieldInputs:
		in, ok := item.(Input)
		if !ok {
			return mergeErrf(field, ErrBadItem, "want skeleton.Input, got %T", item)
		}
		return s.AppendInput(in)
	case FieldOutputs:
		out, ok := item.(Output)
		if !ok {
			return mergeErrf(field, ErrBadItem, "want skeleton.Output, got %T", item)
		}
		s.AppendOutput(out)
	case FieldWitnesses:
		w, ok := item.([]byte)
		if !ok {
			return mergeErrf(field, ErrBadItem, "want []byte, got %T", item)
		}
		s.AppendWitness(w)
	default:
		return mergeErrf(field, ErrBadItem, "unknown field")
	}
	return nil
}

// AppendCellDep inserts a dependency, deduplicating by outpoint and dep type.
// It reports whether the dep was actually inserted.
func (s *TransactionSkeleton) AppendCellDep(dep chain.CellDep) bool {
	if _, ok := s.seenDeps[dep]; ok {
		return false
	}
	s.seenDeps[dep] = struct{}{}
	s.cellDeps = append(s.cellDeps, dep)
	return true
}

// AppendHeaderDep inserts a header dependency, deduplicating by hash.
func (s *TransactionSkeleton) AppendHeaderDep(h chain.Hash) bool {
	if _, ok := s.seenHeaderDeps[h]; ok {
		return false
	}
	s.seenHeaderDeps[h] = struct{}{}
	s.headerDeps = append(s.headerDeps, h)
	return true
}

// AppendInput appends a spend. A repeated outpoint is ErrConflictingInput.
func (s *TransactionSkeleton) AppendInput(in Input) error {
	if _, ok := s.seenInputs[in.Cell.OutPoint]; ok {
		return mergeErrf(FieldInputs, ErrConflictingInput, "outpoint %s appended twice", in.Cell.OutPoint)
	}
	s.seenInputs[in.Cell.OutPoint] = struct{}{}
	s.inputs = append(s.inputs, in)
	return nil
}

// AppendOutput appends a cell definition and returns its output index.
func (s *TransactionSkeleton) AppendOutput(out Output) int {
	s.outputs = append(s.outputs, out)
	return len(s.outputs) - 1
}

// AppendWitness appends a raw witness payload and returns its index.
func (s *TransactionSkeleton) AppendWitness(w []byte) int {
	s.witnesses = append(s.witnesses, w)
	return len(s.witnesses) - 1
}

// ContainsInput reports whether the outpoint is already spent by this skeleton.
func (s *TransactionSkeleton) ContainsInput(op chain.OutPoint) bool {
	_, ok := s.seenInputs[op]
	return ok
}

// CellDeps returns the deduplicated dependency set in first-append order.
func (s *TransactionSkeleton) CellDeps() []chain.CellDep { return s.cellDeps }

// HeaderDeps returns the deduplicated header set in first-append order.
func (s *TransactionSkeleton) HeaderDeps() []chain.Hash { return s.headerDeps }

// Inputs returns the spends in append order.
func (s *TransactionSkeleton) Inputs() []Input { return s.inputs }

// Outputs returns the produced cells in append order.
func (s *TransactionSkeleton) Outputs() []Output { return s.outputs }

// Witnesses returns the witness payloads in append order.
func (s *TransactionSkeleton) Witnesses() [][]byte { return s.witnesses }

// Input returns the i-th input.
func (s *TransactionSkeleton) Input(i int) Input { return s.inputs[i] }

// Output returns the i-th output.
func (s *TransactionSkeleton) Output(i int) Output { return s.outputs[i] }

// SetWitness replaces the witness at index i, growing the area with empty
// slots as needed so signing can target any input position.
func (s *TransactionSkeleton) SetWitness(i int, w []byte) {
	for len(s.witnesses) <= i {
		s.witnesses = append(s.witnesses, nil)
	}
	s.witnesses[i] = w
}

// PadWitnesses appends empty witnesses until every input position has a slot.
func (s *TransactionSkeleton) PadWitnesses() {
	for len(s.witnesses) < len(s.inputs) {
		s.witnesses = append(s.witnesses, nil)
	}
}

// TotalInputCapacity sums the capacity of the cells being spent.
func (s *TransactionSkeleton) TotalInputCapacity() uint64 {
	var total uint64
	for _, in := range s.inputs {
		total += in.Cell.Output.Capacity
	}
	return total
}

// TotalOutputCapacity sums the declared capacity of the produced cells.
func (s *TransactionSkeleton) TotalOutputCapacity() uint64 {
	var total uint64
	for _, out := range s.outputs {
		total += out.Output.Capacity
	}
	return total
}

// NeededCapacity is how much more input capacity is required to cover the
// outputs, zero when the transaction already balances.
func (s *TransactionSkeleton) NeededCapacity() uint64 {
	in, out := s.TotalInputCapacity(), s.TotalOutputCapacity()
	if out > in {
		return out - in
	}
	return 0
}

// ExceededCapacity is the surplus of inputs over outputs, available for a
// change output and the fee.
func (s *TransactionSkeleton) ExceededCapacity() uint64 {
	in, out := s.TotalInputCapacity(), s.TotalOutputCapacity()
	if in > out {
		return in - out
	}
	return 0
}

// LockGroup collects the input positions sharing one lock, in input order.
// One signature per group is the signer's unit of work.
type LockGroup struct {
	LockHash chain.Hash
	Indexes  []int
}

// LockGroups partitions the inputs by lock hash. Groups appear in the order
// of their first input so the result is deterministic for a given skeleton.
func (s *TransactionSkeleton) LockGroups() []LockGroup {
	var groups []LockGroup
	byHash := make(map[chain.Hash]int)
	for i, in := range s.inputs {
		h := in.Cell.Output.LockHash()
		gi, ok := byHash[h]
		if !ok {
			gi = len(groups)
			byHash[h] = gi
			groups = append(groups, LockGroup{LockHash: h})
		}
		groups[gi].Indexes = append(groups[gi].Indexes, i)
	}
	return groups
}

// TxHash is the blake2b-256 digest of the skeleton's canonical serialization,
// excluding witnesses. It is stable under witness mutation, which is what
// lets signing happen after composition.
func (s *TransactionSkeleton) TxHash() chain.Hash {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.cellDeps)))
	for _, dep := range s.cellDeps {
		buf = append(buf, dep.OutPoint.Serialize()...)
		buf = append(buf, byte(dep.DepType))
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.headerDeps)))
	for _, h := range s.headerDeps {
		buf = append(buf, h[:]...)
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.inputs)))
	for _, in := range s.inputs {
		buf = append(buf, in.CellInput().Serialize()...)
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.outputs)))
	for _, out := range s.outputs {
		buf = append(buf, out.Output.Serialize()...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(out.Data)))
		buf = append(buf, out.Data...)
	}
	return chain.Blake2b256(buf)
}

// transactionJSON is the serialized face of a finished skeleton, consumed by
// submission tooling outside this module.
type transactionJSON struct {
	Hash       chain.Hash      `json:"hash"`
	CellDeps   []chain.CellDep `json:"cell_deps"`
	HeaderDeps []chain.Hash    `json:"header_deps"`
	Inputs     []Input         `json:"inputs"`
	Outputs    []Output        `json:"outputs"`
	Witnesses  []HexBytes      `json:"witnesses"`
}

// MarshalJSON serializes the five areas plus the transaction hash.
func (s *TransactionSkeleton) MarshalJSON() ([]byte, error) {
	wit := make([]HexBytes, len(s.witnesses))
	for i, w := range s.witnesses {
		wit[i] = HexBytes(w)
	}
	return json.Marshal(transactionJSON{
		Hash:       s.TxHash(),
		CellDeps:   s.cellDeps,
		HeaderDeps: s.headerDeps,
		Inputs:     s.inputs,
		Outputs:    s.outputs,
		Witnesses:  wit,
	})
}
