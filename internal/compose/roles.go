// Package compose runs ordered instruction sequences against one transaction
// skeleton, producing the artifact the verification side validates. Coupling
// between instructions happens only through named roles, never through
// instruction identities, so fragments stay independently authored.
package compose

import (
	"errors"
	"fmt"

	"cellweaver/internal/skeleton"
)

// ErrUnresolvedRole is returned when an operation references a role tag no
// earlier operation registered.
var ErrUnresolvedRole = errors.New("role not registered")

// RoleRegistry passes resolved cells from one operation to later ones within
// a single composition run. It is created per run and never persisted.
type RoleRegistry struct {
	entries map[string]skeleton.CellInfo
}

// NewRoleRegistry returns an empty registry scoped to one run.
func NewRoleRegistry() *RoleRegistry {
	return &RoleRegistry{entries: make(map[string]skeleton.CellInfo)}
}

// Register stores the cell a role tag now refers to. Re-registering a tag
// overwrites it; later operations always see the most recent producer.
func (r *RoleRegistry) Register(tag string, ref skeleton.CellInfo) {
	r.entries[tag] = ref
}

// Resolve looks a role tag up.
func (r *RoleRegistry) Resolve(tag string) (skeleton.CellInfo, error) {
	ref, ok := r.entries[tag]
	if !ok {
		return skeleton.CellInfo{}, fmt.Errorf("%w: %q", ErrUnresolvedRole, tag)
	}
	return ref, nil
}

// Has reports whether the tag has a producer so far.
func (r *RoleRegistry) Has(tag string) bool {
	_, ok := r.entries[tag]
	return ok
}
