package chain

import "encoding/binary"

// Code hashes of system scripts every integrator ends up referencing.
var (
	// SighashAllCodeHash is the secp256k1/blake160 sighash-all lock, matched
	// by type hash.
	SighashAllCodeHash = MustParseHash(
		"0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8")

	// TypeIDCodeHash is the ledger-intrinsic TYPE_ID script ("TYPE_ID" in
	// ASCII, right-aligned).
	TypeIDCodeHash = MustParseHash(
		"0x00000000000000000000000000000000000000000000000000545950455f4944")

	// DAOTypeHash is the system deposit contract, matched by type hash.
	DAOTypeHash = MustParseHash(
		"0x82d76d1b75fe2fd9a27dfbaa65a039221a380d76c926f378d3f81cf3e7e13f2e")
)

// DAOTypeScript is the type script every deposit and withdraw cell carries.
// Its args are empty.
func DAOTypeScript() Script {
	return Script{CodeHash: DAOTypeHash, HashType: HashTypeType}
}

// SighashAllLock builds the standard lock script for a 20-byte lock argument.
func SighashAllLock(lockArg []byte) Script {
	return Script{CodeHash: SighashAllCodeHash, HashType: HashTypeType, Args: lockArg}
}

// TypeID computes the type-id argument for an output: the hash of the
// transaction's first input together with the output's position. A cell whose
// type script carries this argument is globally unique for its lifetime.
func TypeID(firstInput CellInput, outputIndex uint64) Hash {
	idx := binary.LittleEndian.AppendUint64(nil, outputIndex)
	return Blake2b256(firstInput.Serialize(), idx)
}

// TypeIDScript wraps the argument into the intrinsic TYPE_ID type script.
func TypeIDScript(arg Hash) Script {
	return Script{CodeHash: TypeIDCodeHash, HashType: HashTypeType, Args: arg[:]}
}
