package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark/canvas-dsl/pkg/ir"
)

func TestDefaultForceOptions(t *testing.T) {
	opts := DefaultForceOptions()
	require.Equal(t, 200, opts.Iterations)
	require.Equal(t, 5000.0, opts.RepulsionStrength)
	require.Equal(t, 0.05, opts.AttractionStrength)
	require.Equal(t, 0.85, opts.Damping)
}

func TestForce_CyclicGraph(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})

	require.NoError(t, NewForce().Apply(g, DefaultContext()))
	requireFinitePositions(t, g)
}

func TestForce_Deterministic(t *testing.T) {
	build := func() *ir.Graph {
		return buildGraph(t, []string{"a", "b", "c", "d"},
			[][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}, {"a", "c"}})
	}

	g1 := build()
	g2 := build()
	require.NoError(t, NewForce().Apply(g1, DefaultContext()))
	require.NoError(t, NewForce().Apply(g2, DefaultContext()))

	for _, h := range g1.NodeIDs() {
		n1 := g1.Node(h)
		_, n2, ok := g2.NodeByID(n1.ID)
		require.True(t, ok)
		assert.Equal(t, n1.X, n2.X, "node %s x should be identical across runs", n1.ID)
		assert.Equal(t, n1.Y, n2.Y, "node %s y should be identical across runs", n1.ID)
	}
}

func TestForce_NodesSpreadApart(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c", "d", "e"},
		[][2]string{{"a", "b"}, {"b", "c"}})

	require.NoError(t, NewForce().Apply(g, DefaultContext()))

	// Repulsion should keep distinct nodes from collapsing onto one point.
	nodes := g.NodeIDs()
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			ni, nj := g.Node(nodes[i]), g.Node(nodes[j])
			dx, dy := ni.X-nj.X, ni.Y-nj.Y
			assert.Greater(t, dx*dx+dy*dy, 1.0,
				"nodes %s and %s should not coincide", ni.ID, nj.ID)
		}
	}
}

func TestForce_EmptyGraph(t *testing.T) {
	g := ir.NewGraph()
	require.NoError(t, NewForce().Apply(g, DefaultContext()))
}

func TestForce_SingleNode(t *testing.T) {
	g := buildGraph(t, []string{"only"}, nil)
	require.NoError(t, NewForce().Apply(g, DefaultContext()))
	requireFinitePositions(t, g)
}

func TestForce_ContainerBounds(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	_, err := g.AddContainer(ir.Container{ID: "ring"}, []string{"a", "b"})
	require.NoError(t, err)

	require.NoError(t, NewForce().Apply(g, DefaultContext()))
	requireBoundsContainMembers(t, g)
}

func TestForce_NestedContainerBounds(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"}, nil)
	outer, err := g.AddContainer(ir.Container{ID: "outer"}, []string{"a"})
	require.NoError(t, err)
	inner, err := g.AddContainer(ir.Container{ID: "inner"}, []string{"b", "c"})
	require.NoError(t, err)
	g.Containers[inner].Parent = outer
	g.Containers[outer].NestedContainers = []int{inner}

	require.NoError(t, NewForce().Apply(g, DefaultContext()))
	requireBoundsContainMembers(t, g)

	// The outer bounds must also swallow the inner bounds.
	ob := g.Containers[outer].Bounds
	ib := g.Containers[inner].Bounds
	require.NotNil(t, ob)
	require.NotNil(t, ib)
	assert.LessOrEqual(t, ob.X, ib.X)
	assert.LessOrEqual(t, ob.Y, ib.Y)
	assert.GreaterOrEqual(t, ob.X+ob.Width, ib.X+ib.Width)
	assert.GreaterOrEqual(t, ob.Y+ob.Height, ib.Y+ib.Height)
}

func TestForce_BoundsIdempotent(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	_, err := g.AddContainer(ir.Container{ID: "box"}, []string{"a", "b"})
	require.NoError(t, err)

	engine := NewForce()
	require.NoError(t, engine.Apply(g, DefaultContext()))
	first := *g.Containers[0].Bounds

	require.NoError(t, engine.Apply(g, DefaultContext()))
	second := *g.Containers[0].Bounds

	assert.Equal(t, first, second, "re-applying on a laid graph should reproduce bounds")
}

func TestForce_IterationOverride(t *testing.T) {
	ctx := DefaultContext()
	ctx.Custom["iterations"] = 1

	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	require.NoError(t, NewForce().Apply(g, ctx))
	requireFinitePositions(t, g)
}
