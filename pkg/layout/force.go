package layout

import (
	"math"

	"github.com/mark/canvas-dsl/pkg/ir"
)

// ForceOptions configures the force-directed engine.
type ForceOptions struct {
	Iterations         int
	RepulsionStrength  float64
	AttractionStrength float64
	Damping            float64
}

// DefaultForceOptions returns the default force options.
func DefaultForceOptions() ForceOptions {
	return ForceOptions{
		Iterations:         200,
		RepulsionStrength:  5000,
		AttractionStrength: 0.05,
		Damping:            0.85,
	}
}

// Force is a deterministic force-directed layout for cyclic or
// undirected-looking graphs. Nodes are seeded on a circle and iterated
// with pairwise repulsion and edge attraction; no randomness is involved,
// so identical inputs produce identical coordinates.
type Force struct {
	opts ForceOptions
}

// NewForce creates the force engine with default options.
func NewForce() *Force {
	return &Force{opts: DefaultForceOptions()}
}

// NewForceWithOptions creates the force engine with custom options.
func NewForceWithOptions(opts ForceOptions) *Force {
	return &Force{opts: opts}
}

// Name returns the registry name of the engine.
func (f *Force) Name() string { return "force" }

// Supports reports whether the engine accepts the graph; force accepts
// any graph, cyclic included.
func (f *Force) Supports(_ *ir.Graph) bool { return true }

// Apply seeds positions on a circle, runs the damped force simulation, and
// computes container/group bounds.
func (f *Force) Apply(g *ir.Graph, ctx *Context) error {
	if g.NodeCount() == 0 {
		return nil
	}

	opts := f.opts
	if v, ok := customFloat(ctx, "iterations"); ok && v > 0 {
		opts.Iterations = int(v)
	}

	f.seedPositions(g)
	for i := 0; i < opts.Iterations; i++ {
		f.step(g, opts)
	}

	computeGroupBounds(g, dagreGroupPadding)
	computeContainerBounds(g, 20)
	return nil
}

// seedPositions places the N nodes on a circle of radius sqrt(N)*100 at
// uniform angles.
func (f *Force) seedPositions(g *ir.Graph) {
	count := g.NodeCount()
	radius := math.Sqrt(float64(count)) * 100

	for i, h := range g.NodeIDs() {
		angle := 2 * math.Pi * float64(i) / float64(count)
		n := g.Node(h)
		n.X = radius * math.Cos(angle)
		n.Y = radius * math.Sin(angle)
	}
}

// step accumulates one iteration of forces into a side vector and then
// integrates with damping, so reads never observe half-written positions.
func (f *Force) step(g *ir.Graph, opts ForceOptions) {
	velocities := make([][2]float64, g.NodeCount())

	// Repulsion between every unordered pair. A soft minimum distance
	// derived from the node widths bounds the effective denominator.
	nodes := g.NodeIDs()
	for i := 0; i < len(nodes); i++ {
		ni := g.Node(nodes[i])
		for j := i + 1; j < len(nodes); j++ {
			nj := g.Node(nodes[j])

			dx := ni.X - nj.X
			dy := ni.Y - nj.Y
			distance := math.Max(math.Hypot(dx, dy), 1)

			minDistance := (ni.Width+nj.Width)/2 + 50
			effective := math.Max(distance, minDistance*0.1)

			force := opts.RepulsionStrength / (effective * effective)
			fx := force * dx / effective
			fy := force * dy / effective

			velocities[i][0] += fx
			velocities[i][1] += fy
			velocities[j][0] -= fx
			velocities[j][1] -= fy
		}
	}

	// Attraction along edges.
	for _, eh := range g.EdgeIDs() {
		e := g.Edge(eh)
		src := g.Node(e.From)
		dst := g.Node(e.To)

		dx := dst.X - src.X
		dy := dst.Y - src.Y
		distance := math.Max(math.Hypot(dx, dy), 1)

		force := opts.AttractionStrength * distance
		fx := force * dx / distance
		fy := force * dy / distance

		velocities[e.From][0] += fx
		velocities[e.From][1] += fy
		velocities[e.To][0] -= fx
		velocities[e.To][1] -= fy
	}

	for i, h := range g.NodeIDs() {
		n := g.Node(h)
		n.X += velocities[i][0] * opts.Damping
		n.Y += velocities[i][1] * opts.Damping
	}
}
