package cli

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"cellweaver/internal/chain"
	"cellweaver/internal/compose"
	"cellweaver/internal/deploy"
	"cellweaver/internal/signer"
	"cellweaver/internal/skeleton"
)

// changeCellSize is the on-chain size of a plain change cell: capacity field
// plus a standard sighash lock.
const changeCellSize = 8 + chain.HashSize + 1 + 20

type deployCommand struct {
	global *globalOptions
	rt     *Runtime

	ContractName string `long:"contract-name" required:"true" description:"Contract binary to deploy"`
	Tag          string `long:"tag" required:"true" description:"Version tag distinguishing deployments, e.g. v0.1.8"`
	PayerKey     string `long:"payer-key" env:"CELLWEAVER_PAYER_KEY" required:"true" description:"Hex private key paying capacity and fee"`
	OwnerLockArg string `long:"owner-lock-arg" description:"Hex lock argument owning the contract cell; defaults to the payer"`
	TypeID       bool   `long:"type-id" description:"Deploy the contract under a type-id"`
}

func (c *deployCommand) Execute(_ []string) error {
	net, err := c.global.network()
	if err != nil {
		return err
	}
	store, err := c.global.store()
	if err != nil {
		return err
	}
	payer, err := parseKey(c.PayerKey)
	if err != nil {
		return err
	}
	binary, err := os.ReadFile(filepath.Join(c.global.ContractPath, c.ContractName))
	if err != nil {
		return errors.Wrap(err, "reading contract binary")
	}

	ownerLock := payer.Lock()
	if c.OwnerLockArg != "" {
		arg, err := parseLockArg(c.OwnerLockArg)
		if err != nil {
			return err
		}
		ownerLock = chain.SighashAllLock(arg)
	}

	contractCell := chain.CellOutput{Lock: ownerLock}
	if c.TypeID {
		// Phantom type script, only sized here; the real argument is
		// derived during composition.
		s := chain.TypeIDScript(chain.Hash{})
		contractCell.Type = &s
	}
	needed := chain.OccupiedCapacity(contractCell, binary) + chain.Bytes(changeCellSize) + c.global.Fee

	payerCells, err := collectCapacity(c.rt, payer.Lock(), needed)
	if err != nil {
		return err
	}

	instr := compose.DeployContract(payerCells, payer.Lock(), ownerLock, binary, c.TypeID, c.global.Fee)
	sk, txHash, err := finalize(c.rt, payer, instr)
	if err != nil {
		return err
	}

	rec := deploy.Record{
		Name:      c.ContractName,
		Tag:       c.Tag,
		OutPoint:  chain.OutPoint{TxHash: txHash, Index: contractOutputIndex(sk, binary)},
		Lock:      ownerLock,
		Capacity:  sk.Output(int(contractOutputIndex(sk, binary))).Output.Capacity,
		DataHash:  chain.Blake2b256(binary),
		CreatedAt: time.Now().UTC(),
	}
	if c.TypeID {
		idx := int(contractOutputIndex(sk, binary))
		// Scripts reference the contract by its type script hash, not by the
		// type-id argument.
		if ts := sk.Output(idx).Output.Type; ts != nil {
			h := ts.Hash()
			rec.TypeID = &h
		}
	}
	if err := store.Save(rec); err != nil {
		return err
	}

	c.rt.Log.WithFields(logrus.Fields{
		"network":  net.String(),
		"contract": rec.Name,
		"tag":      rec.Tag,
		"tx_hash":  txHash.String(),
		"type_id":  c.TypeID,
	}).Info("contract deployed")
	return nil
}

type migrateCommand struct {
	global *globalOptions
	rt     *Runtime

	ContractName string `long:"contract-name" required:"true" description:"Contract to migrate"`
	FromTag      string `long:"from-tag" required:"true" description:"Previously deployed version"`
	ToTag        string `long:"to-tag" required:"true" description:"New version tag"`
	PayerKey     string `long:"payer-key" env:"CELLWEAVER_PAYER_KEY" required:"true" description:"Hex private key signing the migration"`
	TypeIDMode   string `long:"type-id-mode" default:"keep" description:"What happens to the type-id: keep, remove or new"`
}

func (c *migrateCommand) Execute(_ []string) error {
	store, err := c.global.store()
	if err != nil {
		return err
	}
	mode, err := deploy.ParseTypeIDMode(c.TypeIDMode)
	if err != nil {
		return err
	}
	rec, err := store.Load(c.ContractName, c.FromTag)
	if err != nil {
		return err
	}
	payer, err := parseKey(c.PayerKey)
	if err != nil {
		return err
	}
	binary, err := os.ReadFile(filepath.Join(c.global.ContractPath, c.ContractName))
	if err != nil {
		return errors.Wrap(err, "reading contract binary")
	}

	// Capacity growth beyond the old cell comes from extra payer cells.
	newCell := chain.CellOutput{Lock: rec.Lock}
	newOccupied := chain.OccupiedCapacity(newCell, binary) + chain.Bytes(chain.HashSize+1+32)
	var extra []chain.OutPoint
	if need := newOccupied + chain.Bytes(changeCellSize) + c.global.Fee; need > rec.Capacity {
		extra, err = collectCapacity(c.rt, payer.Lock(), need-rec.Capacity)
		if err != nil {
			return err
		}
	}

	var instr *compose.Instruction
	switch mode {
	case deploy.TypeIDNew:
		instr = compose.NewInstruction("migrate_contract",
			compose.AddInputByOutPoint{OutPoint: rec.OutPoint, Role: compose.RoleContract})
		for _, op := range extra {
			instr.Push(compose.AddInputByOutPoint{OutPoint: op})
		}
		instr.Push(compose.AddOutput{Lock: rec.Lock, Data: binary, UseTypeID: true, Role: compose.RoleContract})
		instr.Push(compose.AddChangeOutput{Lock: payer.Lock(), Fee: c.global.Fee})
	default:
		var newType *chain.Script
		if mode == deploy.TypeIDKeep {
			// Keeping the type-id means carrying the old cell's actual type
			// script over; the record only holds its hash.
			oldCell, err := c.rt.Chain.Cell(rec.OutPoint)
			if err != nil {
				return errors.Wrap(err, "resolving deployed contract cell")
			}
			newType = oldCell.Output.Type
		}
		instr = compose.MigrateContract(rec.OutPoint, extra, rec.Lock, binary, newType, c.global.Fee)
	}

	sk, txHash, err := finalize(c.rt, payer, instr)
	if err != nil {
		return err
	}

	newRec := deploy.Record{
		Name:      c.ContractName,
		Tag:       c.ToTag,
		OutPoint:  chain.OutPoint{TxHash: txHash, Index: contractOutputIndex(sk, binary)},
		Lock:      rec.Lock,
		Capacity:  sk.Output(int(contractOutputIndex(sk, binary))).Output.Capacity,
		DataHash:  chain.Blake2b256(binary),
		CreatedAt: time.Now().UTC(),
	}
	if mode == deploy.TypeIDKeep {
		newRec.TypeID = rec.TypeID
	}
	if mode == deploy.TypeIDNew {
		idx := int(contractOutputIndex(sk, binary))
		if ts := sk.Output(idx).Output.Type; ts != nil {
			h := ts.Hash()
			newRec.TypeID = &h
		}
	}
	if err := store.Save(newRec); err != nil {
		return err
	}

	c.rt.Log.WithFields(logrus.Fields{
		"contract": c.ContractName,
		"from":     c.FromTag,
		"to":       c.ToTag,
		"mode":     string(mode),
		"tx_hash":  txHash.String(),
	}).Info("contract migrated")
	return nil
}

type consumeCommand struct {
	global *globalOptions
	rt     *Runtime

	ContractName    string `long:"contract-name" required:"true" description:"Contract to consume"`
	Tag             string `long:"tag" required:"true" description:"Version tag of the consumed contract"`
	PayerKey        string `long:"payer-key" env:"CELLWEAVER_PAYER_KEY" required:"true" description:"Hex private key signing the consumption"`
	ReceiverLockArg string `long:"receiver-lock-arg" description:"Hex lock argument receiving the released capacity; defaults to the payer"`
}

func (c *consumeCommand) Execute(_ []string) error {
	store, err := c.global.store()
	if err != nil {
		return err
	}
	rec, err := store.Load(c.ContractName, c.Tag)
	if err != nil {
		return err
	}
	payer, err := parseKey(c.PayerKey)
	if err != nil {
		return err
	}
	receiver := payer.Lock()
	if c.ReceiverLockArg != "" {
		arg, err := parseLockArg(c.ReceiverLockArg)
		if err != nil {
			return err
		}
		receiver = chain.SighashAllLock(arg)
	}

	instr := compose.ConsumeContract(rec.OutPoint, receiver, c.global.Fee)
	_, txHash, err := finalize(c.rt, payer, instr)
	if err != nil {
		return err
	}
	if err := store.Remove(c.ContractName, c.Tag); err != nil {
		return err
	}

	c.rt.Log.WithFields(logrus.Fields{
		"contract": c.ContractName,
		"tag":      c.Tag,
		"tx_hash":  txHash.String(),
	}).Info("contract consumed")
	return nil
}

// finalize composes, signs and submits one instruction, the shared tail of
// every command.
func finalize(rt *Runtime, payer signer.Signer, instr *compose.Instruction) (*skeleton.TransactionSkeleton, chain.Hash, error) {
	composer := compose.NewComposer(rt.Chain)
	sk, err := composer.Compose(instr)
	if err != nil {
		return nil, chain.Hash{}, err
	}
	sk.PadWitnesses()
	signed, err := signer.SignSighashAll(sk, payer)
	if err != nil {
		return nil, chain.Hash{}, err
	}
	if signed == 0 {
		return nil, chain.Hash{}, errors.New("payer key unlocks none of the inputs")
	}
	txHash, err := rt.Submit(sk)
	if err != nil {
		return nil, chain.Hash{}, errors.Wrap(err, "submitting transaction")
	}
	return sk, txHash, nil
}

// collectCapacity gathers payer cells until their combined capacity covers
// needed shannons.
func collectCapacity(rt *Runtime, lock chain.Script, needed uint64) ([]chain.OutPoint, error) {
	cells, err := rt.Chain.CellsByLock(lock.Hash(), 0)
	if err != nil {
		return nil, errors.Wrap(err, "collecting payer cells")
	}
	var (
		out   []chain.OutPoint
		total uint64
	)
	for _, c := range cells {
		// Cells carrying data or a type script are someone's state, not
		// spare capacity.
		if len(c.Data) > 0 || c.Output.Type != nil {
			continue
		}
		out = append(out, c.OutPoint)
		total += c.Output.Capacity
		if total >= needed {
			return out, nil
		}
	}
	return nil, errors.Errorf("insufficient capacity: need %d, found %d", needed, total)
}

// contractOutputIndex locates the output carrying the contract binary.
func contractOutputIndex(sk *skeleton.TransactionSkeleton, binary []byte) uint32 {
	want := chain.Blake2b256(binary)
	for i, out := range sk.Outputs() {
		if chain.Blake2b256(out.Data) == want {
			return uint32(i)
		}
	}
	return 0
}

func parseLockArg(hexArg string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(hexArg, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "decoding lock argument")
	}
	if len(raw) != 20 {
		return nil, errors.Errorf("lock argument must be 20 bytes, got %d", len(raw))
	}
	return raw, nil
}
