package chain

// ShannonsPerByte is the capacity one byte of on-chain state occupies.
const ShannonsPerByte = 100_000_000

// Bytes converts a byte count of on-chain state into shannons.
func Bytes(n uint64) uint64 {
	return n * ShannonsPerByte
}

// cellOverhead is the serialized size of the capacity field itself.
const cellOverhead = 8

// OccupiedCapacity is the minimum capacity a cell must carry to pay for its
// own storage: the capacity field, both scripts and the output data.
func OccupiedCapacity(output CellOutput, data []byte) uint64 {
	size := uint64(cellOverhead) + output.Lock.OccupiedSize() + uint64(len(data))
	if output.Type != nil {
		size += output.Type.OccupiedSize()
	}
	return Bytes(size)
}
