// Package verify implements the named-node decision graph an on-chain
// program walks to reach an accept/reject verdict over a submitted
// transaction's structure.
package verify

import (
	"fmt"

	"cellweaver/internal/errcode"
)

type verdictKind uint8

const (
	kindAccept verdictKind = iota
	kindContinue
	kindReject
)

// Verdict is the three-way outcome of one node: terminate with success,
// proceed to a named node, or terminate with a failure code. The tagged
// representation keeps "no more work" and "continue to an empty-named node"
// distinct.
type Verdict struct {
	kind verdictKind
	next string
	code errcode.Code
}

// Accept terminates the walk successfully.
func Accept() Verdict {
	return Verdict{kind: kindAccept}
}

// Continue hands the walk to the named node.
func Continue(next string) Verdict {
	return Verdict{kind: kindContinue, next: next}
}

// Reject terminates the walk with the given failure code, passed through to
// the runtime unchanged.
func Reject(code errcode.Code) Verdict {
	return Verdict{kind: kindReject, code: code}
}

// IsAccept reports whether the verdict terminates the walk successfully.
func (v Verdict) IsAccept() bool { return v.kind == kindAccept }

// Next returns the named successor and whether the verdict is a Continue.
func (v Verdict) Next() (string, bool) {
	return v.next, v.kind == kindContinue
}

// Code returns the failure code and whether the verdict is a Reject.
func (v Verdict) Code() (errcode.Code, bool) {
	return v.code, v.kind == kindReject
}

func (v Verdict) String() string {
	switch v.kind {
	case kindAccept:
		return "accept"
	case kindContinue:
		return fmt.Sprintf("continue(%s)", v.next)
	default:
		return fmt.Sprintf("reject(%d)", v.code)
	}
}
