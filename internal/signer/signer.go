// Package signer attaches witnesses to a finished transaction skeleton. The
// composition engine treats signing as an opaque collaborator; nothing here
// feeds back into composition or verification.
package signer

import (
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"

	"cellweaver/internal/chain"
	"cellweaver/internal/skeleton"
)

// sigLen is the recoverable signature layout the sighash-all lock expects:
// R (32) || S (32) || recovery id (1).
const sigLen = 65

// Signer produces a signature over a 32-byte message digest for the one key
// it holds. LockArg identifies which inputs the key can unlock.
type Signer interface {
	Sign(digest [32]byte) ([]byte, error)
	LockArg() []byte
}

// Secp256k1Signer signs with a single secp256k1 private key.
type Secp256k1Signer struct {
	priv *secp256k1.PrivateKey
}

// NewSecp256k1Signer wraps a 32-byte private key.
func NewSecp256k1Signer(key []byte) (*Secp256k1Signer, error) {
	if len(key) != 32 {
		return nil, errors.Errorf("private key must be 32 bytes, got %d", len(key))
	}
	return &Secp256k1Signer{priv: secp256k1.PrivKeyFromBytes(key)}, nil
}

// Sign produces the 65-byte recoverable signature over digest.
func (s *Secp256k1Signer) Sign(digest [32]byte) ([]byte, error) {
	compact := secpecdsa.SignCompact(s.priv, digest[:], true)
	if len(compact) != sigLen {
		return nil, errors.Errorf("unexpected compact signature length %d", len(compact))
	}
	// SignCompact puts the recovery header first; the chain wants it last.
	recID := compact[0] - 27 - 4
	out := make([]byte, sigLen)
	copy(out, compact[1:])
	out[sigLen-1] = recID
	return out, nil
}

// LockArg is the blake160 of the compressed public key, the argument the
// standard sighash-all lock script carries.
func (s *Secp256k1Signer) LockArg() []byte {
	return chain.Blake2b160(s.priv.PubKey().SerializeCompressed())
}

// Lock is the standard lock script spendable by this signer.
func (s *Secp256k1Signer) Lock() chain.Script {
	return chain.SighashAllLock(s.LockArg())
}

// SighashAll computes the message digest for one lock group: the transaction
// hash, then the group's first witness with its lock slot zeroed, then the
// group's remaining witnesses and any trailing extras, each length-prefixed.
func SighashAll(sk *skeleton.TransactionSkeleton, group skeleton.LockGroup) ([32]byte, error) {
	var digest [32]byte
	if len(group.Indexes) == 0 {
		return digest, errors.New("empty lock group")
	}
	sk.PadWitnesses()
	witnesses := sk.Witnesses()

	first := group.Indexes[0]
	args, err := skeleton.ParseWitnessArgs(witnesses[first])
	if err != nil {
		return digest, errors.Wrapf(err, "witness %d", first)
	}
	args.Lock = make([]byte, sigLen)
	placeholder := args.Serialize()

	txHash := sk.TxHash()
	chunks := [][]byte{txHash[:], lenPrefix(placeholder), placeholder}
	for _, i := range group.Indexes[1:] {
		chunks = append(chunks, lenPrefix(witnesses[i]), witnesses[i])
	}
	for i := len(sk.Inputs()); i < len(witnesses); i++ {
		chunks = append(chunks, lenPrefix(witnesses[i]), witnesses[i])
	}
	h := chain.Blake2b256(chunks...)
	copy(digest[:], h[:])
	return digest, nil
}

// AttachSignature writes the signature into the lock slot of the group's
// first witness.
func AttachSignature(sk *skeleton.TransactionSkeleton, group skeleton.LockGroup, sig []byte) error {
	if len(group.Indexes) == 0 {
		return errors.New("empty lock group")
	}
	first := group.Indexes[0]
	sk.PadWitnesses()
	args, err := skeleton.ParseWitnessArgs(sk.Witnesses()[first])
	if err != nil {
		return errors.Wrapf(err, "witness %d", first)
	}
	args.Lock = sig
	sk.SetWitness(first, args.Serialize())
	return nil
}

// SignSighashAll signs every lock group the signer's lock argument matches
// and reports how many groups were signed. Groups the key cannot unlock are
// left untouched for other signers.
func SignSighashAll(sk *skeleton.TransactionSkeleton, s Signer) (int, error) {
	lockArg := s.LockArg()
	signed := 0
	for _, group := range sk.LockGroups() {
		lock := sk.Input(group.Indexes[0]).Cell.Output.Lock
		if !bytesEqual(lock.Args, lockArg) {
			continue
		}
		digest, err := SighashAll(sk, group)
		if err != nil {
			return signed, err
		}
		sig, err := s.Sign(digest)
		if err != nil {
			return signed, errors.Wrap(err, "signing digest")
		}
		if err := AttachSignature(sk, group, sig); err != nil {
			return signed, err
		}
		signed++
	}
	return signed, nil
}

func lenPrefix(b []byte) []byte {
	return binary.LittleEndian.AppendUint64(nil, uint64(len(b)))
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
