// Package deploy persists contract deployment records: which code cell a
// contract version lives in, under which type-id, and who controls it. The
// records are CLI artifacts; the engines never read them.
package deploy

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"cellweaver/internal/chain"
)

// Record describes one deployed contract version. TypeID, when present, is
// the hash of the code cell's type script; scripts referencing the contract by
// type use it as their code hash.
type Record struct {
	Name      string         `json:"name"`
	Tag       string         `json:"tag"`
	OutPoint  chain.OutPoint `json:"out_point"`
	TypeID    *chain.Hash    `json:"type_id,omitempty"`
	Lock      chain.Script   `json:"lock"`
	Capacity  uint64         `json:"capacity"`
	DataHash  chain.Hash     `json:"data_hash"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate checks the fields submission and later migrations rely on.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("record name is required")
	}
	if strings.TrimSpace(r.Tag) == "" {
		return errors.New("record tag is required")
	}
	if r.OutPoint.TxHash.IsZero() {
		return errors.New("record outpoint is required")
	}
	return nil
}

// CellDep is the dependency a transaction declares to run this contract.
func (r Record) CellDep() chain.CellDep {
	return chain.CellDep{OutPoint: r.OutPoint, DepType: chain.DepCode}
}

// Script builds the contract's script reference for args: by type script hash
// when the record has one, by data hash otherwise.
func (r Record) Script(args []byte) chain.Script {
	if r.TypeID != nil {
		return chain.NewTypeScript(*r.TypeID, args)
	}
	return chain.NewCodeScript(r.DataHash, args)
}

// TypeIDMode selects what migration does with the old cell's type-id.
type TypeIDMode string

const (
	TypeIDKeep   TypeIDMode = "keep"
	TypeIDRemove TypeIDMode = "remove"
	TypeIDNew    TypeIDMode = "new"
)

// ParseTypeIDMode validates a user-supplied mode string.
func ParseTypeIDMode(s string) (TypeIDMode, error) {
	switch TypeIDMode(s) {
	case TypeIDKeep, TypeIDRemove, TypeIDNew:
		return TypeIDMode(s), nil
	default:
		return "", errors.Errorf("invalid type-id mode %q, want keep, remove or new", s)
	}
}
