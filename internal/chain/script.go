package chain

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// HashType selects how a script's code hash is matched against dep cells.
type HashType uint8

const (
	HashTypeData HashType = iota
	HashTypeType
	HashTypeData1
)

func (t HashType) String() string {
	switch t {
	case HashTypeData:
		return "data"
	case HashTypeType:
		return "type"
	case HashTypeData1:
		return "data1"
	default:
		return "unknown"
	}
}

// ParseHashType is the inverse of HashType.String.
func ParseHashType(s string) (HashType, error) {
	switch s {
	case "data":
		return HashTypeData, nil
	case "type":
		return HashTypeType, nil
	case "data1":
		return HashTypeData1, nil
	default:
		return 0, errors.Errorf("unknown hash type %q", s)
	}
}

func (t HashType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *HashType) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("hash type must be a JSON string")
	}
	parsed, err := ParseHashType(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Script locates executable code plus its arguments. It doubles as a lock
// (spending condition) and a type (state-transition rule) depending on which
// slot of a cell it occupies.
type Script struct {
	CodeHash Hash     `json:"code_hash"`
	HashType HashType `json:"hash_type"`
	Args     []byte   `json:"args"`
}

// NewCodeScript builds a script matched by data hash.
func NewCodeScript(codeHash Hash, args []byte) Script {
	return Script{CodeHash: codeHash, HashType: HashTypeData1, Args: args}
}

// NewTypeScript builds a script matched by type hash.
func NewTypeScript(typeHash Hash, args []byte) Script {
	return Script{CodeHash: typeHash, HashType: HashTypeType, Args: args}
}

// Serialize produces the canonical byte form hashed and embedded in
// transactions: code hash, hash type byte, length-prefixed args.
func (s Script) Serialize() []byte {
	out := make([]byte, 0, HashSize+1+4+len(s.Args))
	out = append(out, s.CodeHash[:]...)
	out = append(out, byte(s.HashType))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(s.Args)))
	out = append(out, s.Args...)
	return out
}

// Hash is the script's identity on chain.
func (s Script) Hash() Hash {
	return Blake2b256(s.Serialize())
}

// OccupiedSize is the script's contribution to a cell's occupied capacity.
func (s Script) OccupiedSize() uint64 {
	return uint64(HashSize + 1 + len(s.Args))
}

// Equal reports field-wise equality, treating nil and empty args alike.
func (s Script) Equal(other Script) bool {
	if s.CodeHash != other.CodeHash || s.HashType != other.HashType {
		return false
	}
	if len(s.Args) != len(other.Args) {
		return false
	}
	for i := range s.Args {
		if s.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}
