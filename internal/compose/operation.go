package compose

import (
	"github.com/pkg/errors"

	"cellweaver/internal/chain"
	"cellweaver/internal/chainview"
	"cellweaver/internal/skeleton"
)

// Run is the per-composition state an operation applies itself to: the
// skeleton under construction, the role registry, and the read-only chain
// view for payloads that still need resolving.
type Run struct {
	Skeleton *skeleton.TransactionSkeleton
	Roles    *RoleRegistry
	Reader   chainview.CellReader
}

// Operation is one atomic append into a transaction field. Operations are
// immutable once built and consumed exactly once during composition.
type Operation interface {
	// TargetField names the area the operation appends into, used to tag
	// composition errors.
	TargetField() skeleton.Field

	// Apply performs the append against the run.
	Apply(r *Run) error
}

// AddCellDep appends a dependency cell; a repeat of an already-present dep is
// a no-op.
type AddCellDep struct {
	Dep chain.CellDep
}

func (op AddCellDep) TargetField() skeleton.Field { return skeleton.FieldCellDeps }

func (op AddCellDep) Apply(r *Run) error {
	r.Skeleton.AppendCellDep(op.Dep)
	return nil
}

// AddHeaderDep appends a header dependency, deduplicated by hash. When the
// run has a reader the header's existence is checked first.
type AddHeaderDep struct {
	Hash chain.Hash
}

func (op AddHeaderDep) TargetField() skeleton.Field { return skeleton.FieldHeaderDeps }

func (op AddHeaderDep) Apply(r *Run) error {
	if r.Reader != nil {
		if _, err := r.Reader.Header(op.Hash); err != nil {
			return err
		}
	}
	r.Skeleton.AppendHeaderDep(op.Hash)
	return nil
}

// AddInputByOutPoint resolves a live cell through the run's reader and spends
// it. Role, when set, registers the resolved cell for later operations.
type AddInputByOutPoint struct {
	OutPoint chain.OutPoint
	Since    uint64
	Role     string
}

func (op AddInputByOutPoint) TargetField() skeleton.Field { return skeleton.FieldInputs }

func (op AddInputByOutPoint) Apply(r *Run) error {
	if r.Reader == nil {
		return errors.New("no chain reader configured for input resolution")
	}
	info, err := r.Reader.Cell(op.OutPoint)
	if err != nil {
		return err
	}
	if err := r.Skeleton.AppendInput(skeleton.Input{Since: op.Since, Cell: *info}); err != nil {
		return err
	}
	if op.Role != "" {
		r.Roles.Register(op.Role, *info)
	}
	return nil
}

// AddInputCell spends a cell the caller already resolved.
type AddInputCell struct {
	Cell  skeleton.CellInfo
	Since uint64
	Role  string
}

func (op AddInputCell) TargetField() skeleton.Field { return skeleton.FieldInputs }

func (op AddInputCell) Apply(r *Run) error {
	if err := r.Skeleton.AppendInput(skeleton.Input{Since: op.Since, Cell: op.Cell}); err != nil {
		return err
	}
	if op.Role != "" {
		r.Roles.Register(op.Role, op.Cell)
	}
	return nil
}

// AddInputFromRole spends the cell a prior operation registered under Role.
type AddInputFromRole struct {
	Role  string
	Since uint64
}

func (op AddInputFromRole) TargetField() skeleton.Field { return skeleton.FieldInputs }

func (op AddInputFromRole) Apply(r *Run) error {
	ref, err := r.Roles.Resolve(op.Role)
	if err != nil {
		return err
	}
	return r.Skeleton.AppendInput(skeleton.Input{Since: op.Since, Cell: ref})
}

// AddOutput appends a produced cell. Zero Capacity means "exactly the
// occupied capacity". UseTypeID attaches the intrinsic TYPE_ID script derived
// from the skeleton's first input and this output's position. Role, when set,
// registers the produced cell (with a zero outpoint, unknown until
// submission) for later operations in the same run.
type AddOutput struct {
	Capacity  uint64
	Lock      chain.Script
	Type      *chain.Script
	Data      []byte
	UseTypeID bool
	Role      string
}

func (op AddOutput) TargetField() skeleton.Field { return skeleton.FieldOutputs }

func (op AddOutput) Apply(r *Run) error {
	out := chain.CellOutput{Capacity: op.Capacity, Lock: op.Lock, Type: op.Type}
	if op.UseTypeID {
		inputs := r.Skeleton.Inputs()
		if len(inputs) == 0 {
			return errors.New("type-id output requires at least one input appended first")
		}
		arg := chain.TypeID(inputs[0].CellInput(), uint64(len(r.Skeleton.Outputs())))
		script := chain.TypeIDScript(arg)
		out.Type = &script
	}
	if out.Capacity == 0 {
		out.Capacity = chain.OccupiedCapacity(out, op.Data)
	}
	idx := r.Skeleton.AppendOutput(skeleton.Output{Output: out, Data: op.Data})
	if op.Role != "" {
		r.Roles.Register(op.Role, skeleton.CellInfo{
			OutPoint: chain.OutPoint{Index: uint32(idx)},
			Output:   out,
			Data:     op.Data,
		})
	}
	return nil
}

// AddWitness appends a raw witness payload.
type AddWitness struct {
	Witness []byte
}

func (op AddWitness) TargetField() skeleton.Field { return skeleton.FieldWitnesses }

func (op AddWitness) Apply(r *Run) error {
	r.Skeleton.AppendWitness(op.Witness)
	return nil
}

// AddWitnessArgs appends a structured witness.
type AddWitnessArgs struct {
	Args skeleton.WitnessArgs
}

func (op AddWitnessArgs) TargetField() skeleton.Field { return skeleton.FieldWitnesses }

func (op AddWitnessArgs) Apply(r *Run) error {
	r.Skeleton.AppendWitness(op.Args.Serialize())
	return nil
}

// AddChangeOutput returns the capacity surplus to Lock, minus a flat fee.
// It fails when the surplus does not cover the change cell's own storage.
type AddChangeOutput struct {
	Lock chain.Script
	Fee  uint64
}

func (op AddChangeOutput) TargetField() skeleton.Field { return skeleton.FieldOutputs }

func (op AddChangeOutput) Apply(r *Run) error {
	surplus := r.Skeleton.ExceededCapacity()
	if surplus <= op.Fee {
		return errors.Errorf("surplus %d does not cover fee %d", surplus, op.Fee)
	}
	change := surplus - op.Fee
	out := chain.CellOutput{Capacity: change, Lock: op.Lock}
	if min := chain.OccupiedCapacity(out, nil); change < min {
		return errors.Errorf("change %d below occupied capacity %d", change, min)
	}
	r.Skeleton.AppendOutput(skeleton.Output{Output: out})
	return nil
}
