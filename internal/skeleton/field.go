package skeleton

// Field names one of the five transaction areas an operation can target.
type Field int

const (
	FieldCellDeps Field = iota
	FieldHeaderDeps
	FieldInputs
	FieldOutputs
	FieldWitnesses
)

func (f Field) String() string {
	switch f {
	case FieldCellDeps:
		return "cell_deps"
	case FieldHeaderDeps:
		return "header_deps"
	case FieldInputs:
		return "inputs"
	case FieldOutputs:
		return "outputs"
	case FieldWitnesses:
		return "witnesses"
	default:
		return "unknown"
	}
}
