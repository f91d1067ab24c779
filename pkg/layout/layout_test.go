package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mark/canvas-dsl/pkg/ir"
)

// buildGraph assembles a graph from node ids and edge pairs.
func buildGraph(t *testing.T, nodes []string, edges [][2]string) *ir.Graph {
	t.Helper()
	g := ir.NewGraph()
	for _, id := range nodes {
		_, err := g.AddNode(ir.Node{ID: id})
		require.NoError(t, err)
	}
	for _, e := range edges {
		_, err := g.AddEdge(e[0], e[1], ir.Edge{})
		require.NoError(t, err)
	}
	return g
}

// chainGraph builds n0 -> n1 -> ... -> n{count-1}.
func chainGraph(t *testing.T, count int) *ir.Graph {
	t.Helper()
	nodes := make([]string, count)
	for i := range nodes {
		nodes[i] = fmt.Sprintf("n%d", i)
	}
	var edges [][2]string
	for i := 0; i < count-1; i++ {
		edges = append(edges, [2]string{nodes[i], nodes[i+1]})
	}
	return buildGraph(t, nodes, edges)
}

// requireFinitePositions asserts every node has finite geometry with
// positive extents.
func requireFinitePositions(t *testing.T, g *ir.Graph) {
	t.Helper()
	for _, h := range g.NodeIDs() {
		n := g.Node(h)
		for _, v := range []float64{n.X, n.Y, n.Width, n.Height} {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0),
				"node %s has non-finite geometry", n.ID)
		}
		require.Greater(t, n.Width, 0.0, "node %s width", n.ID)
		require.Greater(t, n.Height, 0.0, "node %s height", n.ID)
	}
}

// requireBoundsContainMembers asserts every non-empty container and group
// bounds rectangle contains its member extents.
func requireBoundsContainMembers(t *testing.T, g *ir.Graph) {
	t.Helper()
	for i := range g.Containers {
		c := &g.Containers[i]
		if len(c.Children) == 0 {
			continue
		}
		require.NotNil(t, c.Bounds, "container %d has no bounds", i)
		for _, child := range c.Children {
			require.True(t, c.Bounds.Contains(g.Node(child)),
				"container %d bounds %+v do not contain node %s", i, *c.Bounds, g.Node(child).ID)
		}
	}
	for i := range g.Groups {
		grp := &g.Groups[i]
		if len(grp.Children) == 0 {
			continue
		}
		require.NotNil(t, grp.Bounds, "group %s has no bounds", grp.ID)
		for _, child := range grp.Children {
			require.True(t, grp.Bounds.Contains(g.Node(child)),
				"group %s bounds %+v do not contain node %s", grp.ID, *grp.Bounds, g.Node(child).ID)
		}
	}
}

func TestDefaultContext(t *testing.T) {
	ctx := DefaultContext()
	require.Equal(t, 100.0, ctx.NodeSpacing)
	require.Equal(t, 50.0, ctx.EdgeSpacing)
	require.True(t, ctx.OptimizeReadability)
	require.NotNil(t, ctx.Custom)
}
