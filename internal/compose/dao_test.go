package compose

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"cellweaver/internal/chain"
	"cellweaver/internal/chainview"
	"cellweaver/internal/skeleton"
)

func daoDep() chain.CellDep {
	return chain.CellDep{
		OutPoint: chain.OutPoint{TxHash: chain.Blake2b256([]byte("dao-dep")), Index: 2},
		DepType:  chain.DepCode,
	}
}

func daoCell(seed byte, capacity uint64, data []byte) skeleton.CellInfo {
	ts := chain.DAOTypeScript()
	return skeleton.CellInfo{
		OutPoint: chain.OutPoint{TxHash: chain.Blake2b256([]byte{'d', 'a', 'o', seed})},
		Output:   chain.CellOutput{Capacity: capacity, Lock: testLock(seed), Type: &ts},
		Data:     data,
	}
}

func TestDepositToDAO(t *testing.T) {
	payer := fundedCell(1, chain.Bytes(500))
	c := NewComposer(fundedChain(payer))
	fee := uint64(1_000)

	sk, err := c.Compose(DepositToDAO(daoDep(), []chain.OutPoint{payer.OutPoint}, testLock(1), testLock(2), chain.Bytes(200), fee))
	require.NoError(t, err)

	require.Equal(t, []chain.CellDep{daoDep()}, sk.CellDeps())
	deposit := sk.Output(0)
	require.NotNil(t, deposit.Output.Type)
	require.True(t, chain.DAOTypeScript().Equal(*deposit.Output.Type))
	require.Equal(t, make([]byte, 8), []byte(deposit.Data))
	require.Equal(t, chain.Bytes(200), deposit.Output.Capacity)
	require.Equal(t, chain.Bytes(300)-fee, sk.Output(1).Output.Capacity)
}

func TestAddDAODeposit_BelowOccupied(t *testing.T) {
	_, err := NewComposer(nil).Compose(NewInstruction("deposit",
		AddDAODeposit{Owner: testLock(1), Capacity: chain.Bytes(50)},
	))
	require.Error(t, err)
}

func TestWithdrawFromDAO(t *testing.T) {
	deposit := daoCell(1, chain.Bytes(200), make([]byte, 8))
	payer := fundedCell(2, chain.Bytes(100))
	hdr := chain.Header{Hash: chain.Blake2b256([]byte("deposit-blk")), Number: 123}

	m := fundedChain(deposit, payer)
	m.AddHeader(hdr)
	c := NewComposer(m)
	fee := uint64(1_000)

	sk, err := c.Compose(WithdrawFromDAO(daoDep(), deposit.OutPoint, hdr.Hash, []chain.OutPoint{payer.OutPoint}, testLock(2), fee))
	require.NoError(t, err)

	require.Equal(t, deposit.OutPoint, sk.Input(0).Cell.OutPoint)
	require.Equal(t, []chain.Hash{hdr.Hash}, sk.HeaderDeps())

	withdraw := sk.Output(0)
	require.Equal(t, chain.Bytes(200), withdraw.Output.Capacity)
	require.Equal(t, deposit.Output.Lock, withdraw.Output.Lock)
	require.True(t, chain.DAOTypeScript().Equal(*withdraw.Output.Type))
	require.Equal(t, binary.LittleEndian.AppendUint64(nil, 123), []byte(withdraw.Data))

	require.Equal(t, chain.Bytes(100)-fee, sk.Output(1).Output.Capacity)
}

func TestAddDAOWithdraw_RejectsNonDeposit(t *testing.T) {
	plain := fundedCell(1, chain.Bytes(200))
	inProgress := daoCell(2, chain.Bytes(200), binary.LittleEndian.AppendUint64(nil, 99))
	hdr := chain.Header{Hash: chain.Blake2b256([]byte("blk")), Number: 7}

	m := fundedChain(plain, inProgress)
	m.AddHeader(hdr)
	c := NewComposer(m)

	_, err := c.Compose(NewInstruction("withdraw",
		AddDAOWithdraw{Deposit: plain.OutPoint, DepositHeader: hdr.Hash}))
	require.Error(t, err)

	// A cell already in withdrawal cannot be withdrawn again.
	_, err = c.Compose(NewInstruction("withdraw",
		AddDAOWithdraw{Deposit: inProgress.OutPoint, DepositHeader: hdr.Hash}))
	require.Error(t, err)

	// The deposit header must resolve.
	deposit := daoCell(3, chain.Bytes(200), make([]byte, 8))
	m.AddCell(deposit)
	_, err = c.Compose(NewInstruction("withdraw",
		AddDAOWithdraw{Deposit: deposit.OutPoint, DepositHeader: chain.Blake2b256([]byte("ghost"))}))
	require.ErrorIs(t, err, chainview.ErrNotFound)
}

func TestClaimFromDAO(t *testing.T) {
	withdraw := daoCell(1, chain.Bytes(200), binary.LittleEndian.AppendUint64(nil, 123))
	depositHdr := chain.Header{Hash: chain.Blake2b256([]byte("deposit-blk")), Number: 123}
	withdrawHdr := chain.Header{Hash: chain.Blake2b256([]byte("withdraw-blk")), Number: 456}

	m := fundedChain(withdraw)
	m.AddHeader(depositHdr)
	m.AddHeader(withdrawHdr)
	c := NewComposer(m)
	since := uint64(0x2000_0000_0000_01a4)
	fee := uint64(1_000)

	sk, err := c.Compose(ClaimFromDAO(daoDep(), withdraw.OutPoint, depositHdr.Hash, withdrawHdr.Hash, since, testLock(9), fee))
	require.NoError(t, err)

	require.Equal(t, since, sk.Input(0).Since)
	require.Equal(t, []chain.Hash{depositHdr.Hash, withdrawHdr.Hash}, sk.HeaderDeps())

	args, err := skeleton.ParseWitnessArgs(sk.Witnesses()[0])
	require.NoError(t, err)
	require.Equal(t, binary.LittleEndian.AppendUint64(nil, 0), args.InputType)

	require.Equal(t, testLock(9), sk.Output(0).Output.Lock)
	require.Equal(t, chain.Bytes(200)-fee, sk.Output(0).Output.Capacity)
}

func TestAddDAOClaim_RejectsDeposit(t *testing.T) {
	deposit := daoCell(1, chain.Bytes(200), make([]byte, 8))
	hdr := chain.Header{Hash: chain.Blake2b256([]byte("blk")), Number: 7}

	m := fundedChain(deposit)
	m.AddHeader(hdr)
	c := NewComposer(m)

	// A deposit cell has not started withdrawal yet.
	_, err := c.Compose(NewInstruction("claim",
		AddDAOClaim{Withdraw: deposit.OutPoint, DepositHeader: hdr.Hash, WithdrawHeader: hdr.Hash}))
	require.Error(t, err)
}

func TestDAOLifecycle(t *testing.T) {
	payerA := fundedCell(1, chain.Bytes(500))
	payerB := fundedCell(1, chain.Bytes(500))
	payerB.OutPoint.Index = 1
	m := fundedChain(payerA, payerB)
	c := NewComposer(m)
	fee := uint64(1_000)

	// Deposit.
	sk, err := c.Compose(DepositToDAO(daoDep(), []chain.OutPoint{payerA.OutPoint}, testLock(1), testLock(1), chain.Bytes(200), fee))
	require.NoError(t, err)
	depositTx, err := m.Commit(sk)
	require.NoError(t, err)
	depositOP := chain.OutPoint{TxHash: depositTx, Index: 0}

	depositHdr := chain.Header{Hash: chain.Blake2b256([]byte("deposit-blk")), Number: 1000}
	m.AddHeader(depositHdr)

	// Withdraw.
	sk, err = c.Compose(WithdrawFromDAO(daoDep(), depositOP, depositHdr.Hash, []chain.OutPoint{payerB.OutPoint}, testLock(1), fee))
	require.NoError(t, err)
	withdrawTx, err := m.Commit(sk)
	require.NoError(t, err)
	withdrawOP := chain.OutPoint{TxHash: withdrawTx, Index: 0}

	withdrawHdr := chain.Header{Hash: chain.Blake2b256([]byte("withdraw-blk")), Number: 1180}
	m.AddHeader(withdrawHdr)

	// Claim to a fresh receiver.
	sk, err = c.Compose(ClaimFromDAO(daoDep(), withdrawOP, depositHdr.Hash, withdrawHdr.Hash, 0, testLock(9), fee))
	require.NoError(t, err)
	claimTx, err := m.Commit(sk)
	require.NoError(t, err)

	released, err := m.Cell(chain.OutPoint{TxHash: claimTx, Index: 0})
	require.NoError(t, err)
	require.Equal(t, testLock(9), released.Output.Lock)
	require.Equal(t, chain.Bytes(200)-fee, released.Output.Capacity)
	require.Nil(t, released.Output.Type)
}
