package verify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cellweaver/internal/errcode"
)

// txContext is the kind of mutable state a contract walk carries: fields the
// nodes read and scratch state they leave for each other.
type txContext struct {
	inputCount  int
	outputCount int
	visited     []string
}

func newLinearRegistry(t *testing.T) *Registry[*txContext] {
	t.Helper()
	reg := NewRegistry[*txContext]()
	require.NoError(t, reg.RegisterRoot(NodeFunc[*txContext](func(ctx *txContext) Verdict {
		ctx.visited = append(ctx.visited, "ROOT")
		return Continue("a")
	})))
	require.NoError(t, reg.Register("a", NodeFunc[*txContext](func(ctx *txContext) Verdict {
		ctx.visited = append(ctx.visited, "a")
		return Continue("b")
	})))
	require.NoError(t, reg.Register("b", NodeFunc[*txContext](func(ctx *txContext) Verdict {
		ctx.visited = append(ctx.visited, "b")
		return Accept()
	})))
	return reg
}

func TestTree_LinearWalkAccepts(t *testing.T) {
	tree, err := NewTree(newLinearRegistry(t))
	require.NoError(t, err)

	ctx := &txContext{}
	out := tree.Run(ctx)

	require.True(t, out.Accepted)
	require.Equal(t, 0, out.ExitCode())
	require.Equal(t, 3, out.Steps)
	require.Equal(t, []string{"ROOT", "a", "b"}, out.Trace)
	require.Equal(t, []string{"ROOT", "a", "b"}, ctx.visited)
}

func TestTree_RejectStopsWalk(t *testing.T) {
	reg := NewRegistry[*txContext]()
	require.NoError(t, reg.RegisterRoot(NodeFunc[*txContext](func(ctx *txContext) Verdict {
		return Continue("a")
	})))
	require.NoError(t, reg.Register("a", NodeFunc[*txContext](func(ctx *txContext) Verdict {
		return Reject(5001)
	})))
	bInvoked := false
	require.NoError(t, reg.Register("b", NodeFunc[*txContext](func(ctx *txContext) Verdict {
		bInvoked = true
		return Accept()
	})))

	tree, err := NewTree(reg)
	require.NoError(t, err)
	out := tree.Run(&txContext{})

	require.False(t, out.Accepted)
	require.Equal(t, errcode.Code(5001), out.Code)
	require.Equal(t, 5001, out.ExitCode())
	require.Equal(t, 2, out.Steps)
	require.False(t, bInvoked, "nodes after a reject must never run")
}

func TestTree_UnknownNodeFailsFast(t *testing.T) {
	reg := NewRegistry[*txContext]()
	require.NoError(t, reg.RegisterRoot(NodeFunc[*txContext](func(ctx *txContext) Verdict {
		return Continue("ghost")
	})))

	tree, err := NewTree(reg)
	require.NoError(t, err)
	out := tree.Run(&txContext{})

	require.False(t, out.Accepted)
	require.Equal(t, errcode.UnknownNode, out.Code)
	require.Equal(t, "UnknownNode", out.CodeName)
	require.Equal(t, 1, out.Steps, "no further steps after the unresolved name")
	require.Equal(t, []string{"ROOT"}, out.Trace)
}

func TestNewTree_MissingRootFailsAtConstruction(t *testing.T) {
	reg := NewRegistry[*txContext]()
	require.NoError(t, reg.Register("a", NodeFunc[*txContext](func(ctx *txContext) Verdict {
		return Accept()
	})))

	_, err := NewTree(reg)
	require.ErrorIs(t, err, ErrMissingRoot)

	_, err = NewTree[*txContext](nil)
	require.ErrorIs(t, err, ErrMissingRoot)
}

func TestRegistry_DuplicateAndReservedNames(t *testing.T) {
	reg := NewRegistry[*txContext]()
	node := NodeFunc[*txContext](func(ctx *txContext) Verdict { return Accept() })

	require.NoError(t, reg.Register("check", node))
	require.ErrorIs(t, reg.Register("check", node), ErrDuplicateNode)

	// The root sentinel is not a contract-chosen name.
	require.ErrorIs(t, reg.Register(RootName, node), ErrReservedName)
	require.NoError(t, reg.RegisterRoot(node))
	require.ErrorIs(t, reg.RegisterRoot(node), ErrDuplicateNode)

	require.Error(t, reg.Register("", node))
	require.Error(t, reg.Register("nil", nil))
	require.Equal(t, 2, reg.Len())
}

func TestTree_StepLimitBreaksCycle(t *testing.T) {
	reg := NewRegistry[*txContext]()
	require.NoError(t, reg.RegisterRoot(NodeFunc[*txContext](func(ctx *txContext) Verdict {
		return Continue("loop")
	})))
	require.NoError(t, reg.Register("loop", NodeFunc[*txContext](func(ctx *txContext) Verdict {
		return Continue("loop")
	})))

	tree, err := NewTree(reg, WithMaxSteps[*txContext](16))
	require.NoError(t, err)
	out := tree.Run(&txContext{})

	require.False(t, out.Accepted)
	require.Equal(t, errcode.StepLimitExceeded, out.Code)
	require.Equal(t, 16, out.Steps)
}

func TestTree_RevisitByContinueIsAFreshStep(t *testing.T) {
	// A node named again by another node's Continue is not a cycle fault by
	// itself; the walk just steps into it again.
	reg := NewRegistry[*txContext]()
	require.NoError(t, reg.RegisterRoot(NodeFunc[*txContext](func(ctx *txContext) Verdict {
		return Continue("count")
	})))
	require.NoError(t, reg.Register("count", NodeFunc[*txContext](func(ctx *txContext) Verdict {
		ctx.inputCount++
		if ctx.inputCount < 3 {
			return Continue("count")
		}
		return Accept()
	})))

	tree, err := NewTree(reg)
	require.NoError(t, err)
	out := tree.Run(&txContext{})

	require.True(t, out.Accepted)
	require.Equal(t, 4, out.Steps)
	require.Equal(t, []string{"ROOT", "count", "count", "count"}, out.Trace)
}

func TestTree_Deterministic(t *testing.T) {
	tree, err := NewTree(newLinearRegistry(t))
	require.NoError(t, err)

	first := tree.Run(&txContext{inputCount: 2, outputCount: 2})
	for i := 0; i < 10; i++ {
		again := tree.Run(&txContext{inputCount: 2, outputCount: 2})
		require.Equal(t, first, again)
	}
}

func TestTree_CodeTableNamesCustomRejects(t *testing.T) {
	table := errcode.NewTable()
	code, err := table.Define("OwnerMismatch")
	require.NoError(t, err)

	reg := NewRegistry[*txContext]()
	require.NoError(t, reg.RegisterRoot(NodeFunc[*txContext](func(ctx *txContext) Verdict {
		return Reject(code)
	})))

	tree, err := NewTree(reg, WithCodeTable[*txContext](table))
	require.NoError(t, err)
	out := tree.Run(&txContext{})

	require.Equal(t, "OwnerMismatch", out.CodeName)
	require.Equal(t, int(code), out.ExitCode())
}

func TestVerdict_String(t *testing.T) {
	require.Equal(t, "accept", Accept().String())
	require.Equal(t, "continue(next)", Continue("next").String())
	require.Equal(t, "reject(42)", Reject(42).String())

	next, ok := Continue("x").Next()
	require.True(t, ok)
	require.Equal(t, "x", next)
	_, ok = Accept().Next()
	require.False(t, ok)

	code, ok := Reject(7).Code()
	require.True(t, ok)
	require.Equal(t, errcode.Code(7), code)
	_, ok = Continue("x").Code()
	require.False(t, ok)
}
