// Package layout assigns geometry to diagram graphs: node coordinates,
// and bounding boxes for containers and groups. Three engines coexist
// behind one interface (a layered Dagre-like engine, a deterministic
// force-directed engine, and an ELK-style engine with four sub-algorithms),
// together with adaptive/composite selection and a fingerprint-keyed
// result cache managed by Manager.
package layout

import (
	"github.com/mark/canvas-dsl/pkg/ir"
)

// Engine is the contract every layout implements. Apply mutates only node
// geometry and container/group bounds; the graph's structure is read-only.
type Engine interface {
	// Apply computes positions for all nodes and bounds for all
	// containers and groups. An empty graph is Ok with no work done.
	Apply(g *ir.Graph, ctx *Context) error

	// Name returns the engine's registry name.
	Name() string

	// Supports reports whether the engine can lay out the given graph.
	Supports(g *ir.Graph) bool
}

// Context carries generic configuration consulted by engines. Engine
// specific tuning is supplied at engine construction; Context covers the
// knobs shared across engines.
type Context struct {
	// MaxWidth and MaxHeight are advisory soft canvas bounds; engines may
	// ignore them. Zero means unbounded.
	MaxWidth  float64
	MaxHeight float64

	// NodeSpacing is the base separation between nodes in the same layer.
	NodeSpacing float64

	// EdgeSpacing is the minimum separation between edges (advisory).
	EdgeSpacing float64

	// OptimizeReadability enables crossing-minimization passes where
	// applicable.
	OptimizeReadability bool

	// Custom is an opaque bag for engine-specific tuning, keyed by string.
	Custom map[string]any
}

// DefaultContext returns the default layout context.
func DefaultContext() *Context {
	return &Context{
		NodeSpacing:         100,
		EdgeSpacing:         50,
		OptimizeReadability: true,
		Custom:              make(map[string]any),
	}
}
