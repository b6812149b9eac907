package compose

import "cellweaver/internal/chain"

// Predefined instructions covering the common contract lifecycles. They are
// plain combinations of the basic operations; contract modules are expected
// to author their own the same way.

// Transfer spends the given outpoints and produces one output of capacity
// shannons for the receiver, returning change minus fee to the payer.
func Transfer(dep chain.CellDep, from []chain.OutPoint, payer, to chain.Script, capacity, fee uint64) *Instruction {
	instr := NewInstruction("transfer", AddCellDep{Dep: dep})
	for _, op := range from {
		instr.Push(AddInputByOutPoint{OutPoint: op})
	}
	instr.Push(AddOutput{Capacity: capacity, Lock: to})
	instr.Push(AddChangeOutput{Lock: payer, Fee: fee})
	return instr
}

// DeployContract places a compiled contract binary into a new code cell owned
// by owner, funded by the payer cells. The produced cell is registered under
// the "contract" role so follow-up instructions can reference it.
func DeployContract(payer []chain.OutPoint, payerLock, owner chain.Script, binary []byte, useTypeID bool, fee uint64) *Instruction {
	instr := NewInstruction("deploy_contract")
	for _, op := range payer {
		instr.Push(AddInputByOutPoint{OutPoint: op})
	}
	instr.Push(AddOutput{
		Lock:      owner,
		Data:      binary,
		UseTypeID: useTypeID,
		Role:      RoleContract,
	})
	instr.Push(AddChangeOutput{Lock: payerLock, Fee: fee})
	return instr
}

// MigrateContract consumes the old code cell and redeploys the binary,
// funding any capacity growth from extra payer cells. The caller decides
// what happens to the type-id by supplying newType (nil removes it, the old
// script keeps it).
func MigrateContract(old chain.OutPoint, extra []chain.OutPoint, owner chain.Script, binary []byte, newType *chain.Script, fee uint64) *Instruction {
	instr := NewInstruction("migrate_contract",
		AddInputByOutPoint{OutPoint: old, Role: RoleContract},
	)
	for _, op := range extra {
		instr.Push(AddInputByOutPoint{OutPoint: op})
	}
	instr.Push(AddOutput{Lock: owner, Type: newType, Data: binary, Role: RoleContract})
	instr.Push(AddChangeOutput{Lock: owner, Fee: fee})
	return instr
}

// ConsumeContract spends the code cell and releases its capacity to the
// receiver.
func ConsumeContract(contract chain.OutPoint, receiver chain.Script, fee uint64) *Instruction {
	return NewInstruction("consume_contract",
		AddInputByOutPoint{OutPoint: contract, Role: RoleContract},
		AddChangeOutput{Lock: receiver, Fee: fee},
	)
}

// RoleContract is the role tag the contract-lifecycle instructions use for
// the code cell they spend or produce.
const RoleContract = "contract"
