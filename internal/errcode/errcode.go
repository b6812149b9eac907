// Package errcode defines the numeric failure codes a verification run can
// surface to the ledger's validation runtime: a reserved built-in range and a
// per-contract custom range starting at a fixed offset.
package errcode

import "errors"

// Code is the wire value a third party observes as a failure reason. Zero is
// never a failure code; the runtime reads zero as success.
type Code uint16

// Built-in codes. Values below 10 are reserved for ledger syscall faults,
// values in [10, CustomErrorStart) for the engine's own failures.
const (
	IndexOutOfBound    Code = 1
	ItemMissing        Code = 2
	LengthNotEnough    Code = 3
	Encoding           Code = 4
	UnknownSystemError Code = 5

	NotFoundRootNode  Code = 10
	UnknownNode       Code = 11
	StepLimitExceeded Code = 12
)

// CustomErrorStart is the first value available to contract-defined codes.
// Contracts must not reuse values below it for custom meanings.
const CustomErrorStart Code = 20

// MaxCode is the last representable code.
const MaxCode Code = 65535

// Builtin reports whether c falls in the engine-reserved range.
func (c Code) Builtin() bool {
	return c < CustomErrorStart
}

// BuiltinName returns the fixed name of a built-in code, or "" if c is not a
// named built-in.
func BuiltinName(c Code) string {
	switch c {
	case IndexOutOfBound:
		return "IndexOutOfBound"
	case ItemMissing:
		return "ItemMissing"
	case LengthNotEnough:
		return "LengthNotEnough"
	case Encoding:
		return "Encoding"
	case UnknownSystemError:
		return "UnknownSystemError"
	case NotFoundRootNode:
		return "NotFoundRootNode"
	case UnknownNode:
		return "UnknownNode"
	case StepLimitExceeded:
		return "StepLimitExceeded"
	default:
		return ""
	}
}

var (
	// ErrReservedCode rejects a custom registration below CustomErrorStart.
	ErrReservedCode = errors.New("code value is in the reserved built-in range")

	// ErrDuplicateCode rejects reuse of a name or value already registered.
	ErrDuplicateCode = errors.New("code name or value already registered")

	// ErrCodeSpaceExhausted is returned when no custom value is left to
	// allocate.
	ErrCodeSpaceExhausted = errors.New("custom code space exhausted")
)

// Table enumerates one contract's custom codes. It is plain data supplied at
// tree construction, not process-global state, so trees for different
// contracts stay independently testable in one process.
type Table struct {
	byName map[string]Code
	byCode map[Code]string
	next   Code
}

// NewTable returns an empty table allocating from CustomErrorStart upward.
func NewTable() *Table {
	return &Table{
		byName: make(map[string]Code),
		byCode: make(map[Code]string),
		next:   CustomErrorStart,
	}
}

// Register binds a name to an explicit custom value.
func (t *Table) Register(name string, code Code) error {
	if name == "" {
		return errors.New("empty code name")
	}
	if code.Builtin() {
		return ErrReservedCode
	}
	if _, ok := t.byName[name]; ok {
		return ErrDuplicateCode
	}
	if _, ok := t.byCode[code]; ok {
		return ErrDuplicateCode
	}
	t.byName[name] = code
	t.byCode[code] = name
	if code >= t.next {
		if code == MaxCode {
			// Marks the allocator exhausted; Define will fail from here on.
			t.next = 0
		} else {
			t.next = code + 1
		}
	}
	return nil
}

// Define allocates the next free custom value for name.
func (t *Table) Define(name string) (Code, error) {
	for t.next >= CustomErrorStart {
		if _, taken := t.byCode[t.next]; !taken {
			code := t.next
			if err := t.Register(name, code); err != nil {
				return 0, err
			}
			return code, nil
		}
		if t.next == MaxCode {
			t.next = 0
			break
		}
		t.next++
	}
	return 0, ErrCodeSpaceExhausted
}

// Code looks a name up.
func (t *Table) Code(name string) (Code, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// Name resolves a value to its registered or built-in name, or "" when the
// value is unnamed.
func (t *Table) Name(code Code) string {
	if n := BuiltinName(code); n != "" {
		return n
	}
	if t == nil {
		return ""
	}
	return t.byCode[code]
}

// Len is the number of custom codes registered.
func (t *Table) Len() int { return len(t.byName) }
