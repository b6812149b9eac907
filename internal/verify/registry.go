package verify

import (
	"errors"
	"fmt"
)

// RootName is the reserved name the walk starts from. It is a fixed sentinel
// distinct from any contract-chosen name so the runtime always has an
// unambiguous entry point; contracts register it through Registry.RegisterRoot
// and nowhere else.
const RootName = "ROOT"

var (
	// ErrDuplicateNode rejects registering a name twice. This is a
	// registration-time fault, not a run-time verdict.
	ErrDuplicateNode = errors.New("node name already registered")

	// ErrReservedName rejects registering the root sentinel via Register.
	ErrReservedName = errors.New("node name is reserved")

	// ErrMissingRoot fails tree construction when no root was registered.
	ErrMissingRoot = errors.New("root node not registered")
)

// Node is one verification unit. It is stateless beyond its name in the
// registry; any configuration is captured at registration time, and all
// per-run scratch state lives in the caller's context C.
type Node[C any] interface {
	Verify(ctx C) Verdict
}

// NodeFunc adapts a plain function into a Node.
type NodeFunc[C any] func(ctx C) Verdict

// Verify calls the function.
func (f NodeFunc[C]) Verify(ctx C) Verdict { return f(ctx) }

// Registry maps stable names to verification nodes. Registration is explicit;
// there is no reflective discovery.
type Registry[C any] struct {
	nodes map[string]Node[C]
}

// NewRegistry returns an empty registry.
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{nodes: make(map[string]Node[C])}
}

// Register binds a contract-chosen name to a node.
func (r *Registry[C]) Register(name string, node Node[C]) error {
	if name == "" {
		return errors.New("empty node name")
	}
	if node == nil {
		return fmt.Errorf("nil node for %q", name)
	}
	if name == RootName {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	return r.add(name, node)
}

// RegisterRoot binds the walk's entry node.
func (r *Registry[C]) RegisterRoot(node Node[C]) error {
	if node == nil {
		return errors.New("nil root node")
	}
	return r.add(RootName, node)
}

func (r *Registry[C]) add(name string, node Node[C]) error {
	if _, ok := r.nodes[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, name)
	}
	r.nodes[name] = node
	return nil
}

// Lookup resolves a name.
func (r *Registry[C]) Lookup(name string) (Node[C], bool) {
	n, ok := r.nodes[name]
	return n, ok
}

// Len is the number of registered nodes, root included.
func (r *Registry[C]) Len() int { return len(r.nodes) }
