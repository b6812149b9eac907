package compose

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"cellweaver/internal/chain"
	"cellweaver/internal/skeleton"
)

// The deposit contract's cells carry a fixed 8-byte data slot: all zeros for a
// deposit, the deposit block number for a withdraw in progress.
const daoDataSize = 8

func isDAOCell(info *skeleton.CellInfo) bool {
	return info.Output.Type != nil &&
		info.Output.Type.Equal(chain.DAOTypeScript()) &&
		len(info.Data) == daoDataSize
}

// AddDAODeposit appends a deposit cell locking Capacity shannons under Owner.
type AddDAODeposit struct {
	Owner    chain.Script
	Capacity uint64
}

func (op AddDAODeposit) TargetField() skeleton.Field { return skeleton.FieldOutputs }

func (op AddDAODeposit) Apply(r *Run) error {
	ts := chain.DAOTypeScript()
	out := chain.CellOutput{Capacity: op.Capacity, Lock: op.Owner, Type: &ts}
	data := make([]byte, daoDataSize)
	if min := chain.OccupiedCapacity(out, data); op.Capacity < min {
		return errors.Errorf("deposit %d below occupied capacity %d", op.Capacity, min)
	}
	r.Skeleton.AppendOutput(skeleton.Output{Output: out, Data: data})
	return nil
}

// AddDAOWithdraw starts a withdrawal: it spends a deposit cell and mirrors it
// into a withdraw cell of the same capacity whose data records the deposit
// block number. TransferTo, when set, moves ownership of the withdraw cell;
// the deposit's own lock is kept otherwise.
type AddDAOWithdraw struct {
	Deposit       chain.OutPoint
	DepositHeader chain.Hash
	TransferTo    *chain.Script
}

func (op AddDAOWithdraw) TargetField() skeleton.Field { return skeleton.FieldInputs }

func (op AddDAOWithdraw) Apply(r *Run) error {
	if r.Reader == nil {
		return errors.New("no chain reader configured for deposit resolution")
	}
	info, err := r.Reader.Cell(op.Deposit)
	if err != nil {
		return err
	}
	if !isDAOCell(info) || !allZero(info.Data) {
		return errors.Errorf("cell %s is not a deposit cell", op.Deposit)
	}
	hdr, err := r.Reader.Header(op.DepositHeader)
	if err != nil {
		return err
	}
	if err := r.Skeleton.AppendInput(skeleton.Input{Cell: *info}); err != nil {
		return err
	}
	r.Skeleton.AppendHeaderDep(op.DepositHeader)

	lock := info.Output.Lock
	if op.TransferTo != nil {
		lock = *op.TransferTo
	}
	r.Skeleton.AppendOutput(skeleton.Output{
		Output: chain.CellOutput{
			Capacity: info.Output.Capacity,
			Lock:     lock,
			Type:     info.Output.Type,
		},
		Data: binary.LittleEndian.AppendUint64(nil, hdr.Number),
	})
	return nil
}

// AddDAOClaim finishes a withdrawal: it spends the withdraw cell under the
// maturity rule in Since and points the witness at the deposit header so the
// contract can settle the claim. The released capacity stays unallocated for a
// change output to collect; interest compensation is credited by the consensus
// layer at validation time and never appears in the composed transaction.
type AddDAOClaim struct {
	Withdraw       chain.OutPoint
	DepositHeader  chain.Hash
	WithdrawHeader chain.Hash
	Since          uint64
}

func (op AddDAOClaim) TargetField() skeleton.Field { return skeleton.FieldInputs }

func (op AddDAOClaim) Apply(r *Run) error {
	if r.Reader == nil {
		return errors.New("no chain reader configured for withdraw resolution")
	}
	info, err := r.Reader.Cell(op.Withdraw)
	if err != nil {
		return err
	}
	if !isDAOCell(info) || allZero(info.Data) {
		return errors.Errorf("cell %s is not a withdraw cell", op.Withdraw)
	}
	if _, err := r.Reader.Header(op.DepositHeader); err != nil {
		return err
	}
	if _, err := r.Reader.Header(op.WithdrawHeader); err != nil {
		return err
	}
	if err := r.Skeleton.AppendInput(skeleton.Input{Since: op.Since, Cell: *info}); err != nil {
		return err
	}
	inputIdx := len(r.Skeleton.Inputs()) - 1
	r.Skeleton.AppendHeaderDep(op.DepositHeader)
	r.Skeleton.AppendHeaderDep(op.WithdrawHeader)

	// The witness carries the deposit header's position in the header deps.
	depIdx := headerDepIndex(r.Skeleton, op.DepositHeader)
	args := skeleton.WitnessArgs{
		InputType: binary.LittleEndian.AppendUint64(nil, uint64(depIdx)),
	}
	r.Skeleton.SetWitness(inputIdx, args.Serialize())
	return nil
}

func headerDepIndex(sk *skeleton.TransactionSkeleton, h chain.Hash) int {
	for i, dep := range sk.HeaderDeps() {
		if dep == h {
			return i
		}
	}
	return -1
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// DepositToDAO locks capacity shannons in a deposit cell owned by owner,
// funded by the payer cells, with change minus fee back to the payer.
func DepositToDAO(dep chain.CellDep, payer []chain.OutPoint, payerLock, owner chain.Script, capacity, fee uint64) *Instruction {
	instr := NewInstruction("deposit_to_dao", AddCellDep{Dep: dep})
	for _, op := range payer {
		instr.Push(AddInputByOutPoint{OutPoint: op})
	}
	instr.Push(AddDAODeposit{Owner: owner, Capacity: capacity})
	instr.Push(AddChangeOutput{Lock: payerLock, Fee: fee})
	return instr
}

// WithdrawFromDAO starts the withdrawal of one deposit. The withdraw cell
// keeps the deposit's full capacity, so the fee comes out of extra payer
// cells.
func WithdrawFromDAO(dep chain.CellDep, deposit chain.OutPoint, depositHeader chain.Hash, payer []chain.OutPoint, payerLock chain.Script, fee uint64) *Instruction {
	instr := NewInstruction("withdraw_from_dao",
		AddCellDep{Dep: dep},
		AddDAOWithdraw{Deposit: deposit, DepositHeader: depositHeader},
	)
	for _, op := range payer {
		instr.Push(AddInputByOutPoint{OutPoint: op})
	}
	instr.Push(AddChangeOutput{Lock: payerLock, Fee: fee})
	return instr
}

// ClaimFromDAO finishes the withdrawal and releases the capacity, minus fee,
// to the receiver.
func ClaimFromDAO(dep chain.CellDep, withdraw chain.OutPoint, depositHeader, withdrawHeader chain.Hash, since uint64, receiver chain.Script, fee uint64) *Instruction {
	return NewInstruction("claim_from_dao",
		AddCellDep{Dep: dep},
		AddDAOClaim{
			Withdraw:       withdraw,
			DepositHeader:  depositHeader,
			WithdrawHeader: withdrawHeader,
			Since:          since,
		},
		AddChangeOutput{Lock: receiver, Fee: fee},
	)
}
