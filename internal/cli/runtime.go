// Package cli glues the deployment commands together: it composes the
// contract-lifecycle instructions, signs the result and hands the finished
// transaction to a submitter. Chain submission itself stays outside this
// module.
package cli

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"cellweaver/internal/chain"
	"cellweaver/internal/chainview"
	"cellweaver/internal/skeleton"
)

// Submitter hands a fully signed skeleton to whatever submission mechanism
// the caller wires in. Tests use a fake; the default binary commits to a
// local chain-state file.
type Submitter func(sk *skeleton.TransactionSkeleton) (chain.Hash, error)

// Runtime carries the collaborators every command needs.
type Runtime struct {
	Chain  chainview.CellCollector
	Submit Submitter
	Log    *logrus.Logger
}

func (rt *Runtime) validate() error {
	if rt == nil {
		return errors.New("nil runtime")
	}
	if rt.Chain == nil {
		return errors.New("runtime needs a chain view")
	}
	if rt.Submit == nil {
		return errors.New("runtime needs a submitter")
	}
	if rt.Log == nil {
		rt.Log = logrus.New()
	}
	return nil
}
