package layout

import (
	"math"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/mark/canvas-dsl/pkg/ir"
)

// extent accumulates an axis-aligned bounding region.
type extent struct {
	minX, minY float64
	maxX, maxY float64
}

func newExtent() extent {
	return extent{
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
	}
}

func (e *extent) addNode(n *ir.Node) {
	e.minX = math.Min(e.minX, n.Left())
	e.maxX = math.Max(e.maxX, n.Right())
	e.minY = math.Min(e.minY, n.Top())
	e.maxY = math.Max(e.maxY, n.Bottom())
}

func (e *extent) addBounds(b *ir.Bounds) {
	e.minX = math.Min(e.minX, b.X)
	e.maxX = math.Max(e.maxX, b.X+b.Width)
	e.minY = math.Min(e.minY, b.Y)
	e.maxY = math.Max(e.maxY, b.Y+b.Height)
}

func (e *extent) empty() bool {
	return math.IsInf(e.minX, 1)
}

func (e *extent) toBounds(padding float64) *ir.Bounds {
	return &ir.Bounds{
		X:      e.minX - padding,
		Y:      e.minY - padding,
		Width:  (e.maxX - e.minX) + 2*padding,
		Height: (e.maxY - e.minY) + 2*padding,
	}
}

// computeGroupBounds sets the bounds of every non-empty group to the union
// of its member extents, inflated by the per-kind padding.
func computeGroupBounds(g *ir.Graph, padFor func(ir.GroupKind) float64) {
	for i := range g.Groups {
		grp := &g.Groups[i]
		if len(grp.Children) == 0 {
			continue
		}
		ext := newExtent()
		for _, child := range grp.Children {
			ext.addNode(g.Node(child))
		}
		grp.Bounds = ext.toBounds(padFor(grp.Kind))
	}
}

// computeContainerBounds sets the bounds of every non-empty container,
// children before parents so nested bounds are unioned into the enclosing
// container. A processed set guards against malformed nesting produced
// upstream; each container is visited at most once.
func computeContainerBounds(g *ir.Graph, padding float64) {
	processed := mapset.NewSet[int]()

	var visit func(idx int)
	visit = func(idx int) {
		if processed.Contains(idx) {
			return
		}
		processed.Add(idx)

		c := &g.Containers[idx]
		for _, nested := range c.NestedContainers {
			visit(nested)
		}

		ext := newExtent()
		for _, child := range c.Children {
			ext.addNode(g.Node(child))
		}
		for _, nested := range c.NestedContainers {
			if b := g.Containers[nested].Bounds; b != nil {
				ext.addBounds(b)
			}
		}
		for _, nested := range c.NestedGroups {
			if b := g.Groups[nested].Bounds; b != nil {
				ext.addBounds(b)
			}
		}

		if !ext.empty() {
			c.Bounds = ext.toBounds(padding)
		}
	}

	for i := range g.Containers {
		if g.Containers[i].Parent < 0 {
			visit(i)
		}
	}
	// Containers orphaned by a broken parent index still get bounds.
	for i := range g.Containers {
		visit(i)
	}
}
