package verify

import "cellweaver/internal/errcode"

// DefaultMaxSteps bounds a walk when the caller does not choose a limit. The
// target execution environment is metered, so an engine-level bound on node
// invocations guards against graphs that loop by mistake.
const DefaultMaxSteps = 1024

// Tree walks a registry from the root until a node accepts, rejects, or the
// walk faults. The walk is synchronous and single-threaded; the context C is
// owned exclusively by one run.
type Tree[C any] struct {
	registry *Registry[C]
	codes    *errcode.Table
	maxSteps int
}

// Option configures a Tree.
type Option[C any] func(*Tree[C])

// WithMaxSteps overrides the walk's node-invocation bound.
func WithMaxSteps[C any](n int) Option[C] {
	return func(t *Tree[C]) { t.maxSteps = n }
}

// WithCodeTable attaches the contract's custom code enumeration, used only to
// name codes in outcomes; values pass through unchanged either way.
func WithCodeTable[C any](table *errcode.Table) Option[C] {
	return func(t *Tree[C]) { t.codes = table }
}

// NewTree validates the registry and builds a walkable tree. A registry
// without a root is rejected here, at construction, never at walk time.
func NewTree[C any](registry *Registry[C], opts ...Option[C]) (*Tree[C], error) {
	if registry == nil {
		return nil, ErrMissingRoot
	}
	if _, ok := registry.Lookup(RootName); !ok {
		return nil, ErrMissingRoot
	}
	t := &Tree[C]{registry: registry, maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(t)
	}
	if t.maxSteps <= 0 {
		t.maxSteps = DefaultMaxSteps
	}
	return t, nil
}

// Outcome is a terminal walk result: either accepted, or rejected with the
// code a node produced (or a built-in code for engine faults). Steps counts
// node invocations; Trace lists the visited node names in invocation order.
type Outcome struct {
	Accepted bool
	Code     errcode.Code
	CodeName string
	Steps    int
	Trace    []string
}

// ExitCode is the value the ledger's runtime interprets: zero for pass,
// the failure code otherwise.
func (o Outcome) ExitCode() int {
	if o.Accepted {
		return 0
	}
	return int(o.Code)
}

// Run walks the tree. Given a fixed context and node set the walk is fully
// deterministic: same transaction in, same verdict out.
func (t *Tree[C]) Run(ctx C) Outcome {
	out := Outcome{}
	current := RootName
	for {
		if out.Steps >= t.maxSteps {
			return t.rejected(out, errcode.StepLimitExceeded)
		}
		node, ok := t.registry.Lookup(current)
		if !ok {
			return t.rejected(out, errcode.UnknownNode)
		}
		out.Trace = append(out.Trace, current)
		out.Steps++

		v := node.Verify(ctx)
		if v.IsAccept() {
			out.Accepted = true
			return out
		}
		if code, rejected := v.Code(); rejected {
			return t.rejected(out, code)
		}
		current, _ = v.Next()
	}
}

func (t *Tree[C]) rejected(out Outcome, code errcode.Code) Outcome {
	out.Accepted = false
	out.Code = code
	out.CodeName = t.codes.Name(code)
	return out
}
