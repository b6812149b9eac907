package compose

import (
	"fmt"

	"cellweaver/internal/chainview"
	"cellweaver/internal/skeleton"
)

// Instruction is an ordered group of operations expressing one business
// intent. Instructions authored by different modules must not assume any
// execution order beyond the one the integrator supplies.
type Instruction struct {
	Name string
	ops  []Operation
}

// NewInstruction builds an instruction from operations in application order.
func NewInstruction(name string, ops ...Operation) *Instruction {
	return &Instruction{Name: name, ops: ops}
}

// Push appends an operation.
func (i *Instruction) Push(op Operation) *Instruction {
	i.ops = append(i.ops, op)
	return i
}

// Merge appends all of other's operations after i's own.
func (i *Instruction) Merge(other *Instruction) *Instruction {
	i.ops = append(i.ops, other.ops...)
	return i
}

// Ops returns the operations in application order.
func (i *Instruction) Ops() []Operation { return i.ops }

// CompositionError identifies the offending instruction, operation index and
// field of the first failure. Composition never recovers a partial
// transaction; the skeleton is all-or-nothing.
type CompositionError struct {
	Instruction string
	OpIndex     int
	Field       skeleton.Field
	Err         error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("instruction %q op %d (%s): %s", e.Instruction, e.OpIndex, e.Field, e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }

// Composer merges instruction sequences into one transaction skeleton.
type Composer struct {
	reader chainview.CellReader
}

// NewComposer builds a composer over a read-only chain view. A nil reader is
// valid for instruction sets whose payloads are fully pre-resolved.
func NewComposer(reader chainview.CellReader) *Composer {
	return &Composer{reader: reader}
}

// Compose runs the instructions strictly in the given order, each
// instruction's operations in their own order, against a fresh skeleton and
// role registry. Later instructions may depend on roles earlier ones
// registered, never the reverse. The first error stops the run.
func (c *Composer) Compose(instructions ...*Instruction) (*skeleton.TransactionSkeleton, error) {
	run := &Run{
		Skeleton: skeleton.New(),
		Roles:    NewRoleRegistry(),
		Reader:   c.reader,
	}
	for _, instr := range instructions {
		for idx, op := range instr.ops {
			if err := op.Apply(run); err != nil {
				return nil, &CompositionError{
					Instruction: instr.Name,
					OpIndex:     idx,
					Field:       op.TargetField(),
					Err:         err,
				}
			}
		}
	}
	return run.Skeleton, nil
}
