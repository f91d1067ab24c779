package layout

import (
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/mark/canvas-dsl/pkg/ir"
)

// Adaptive inspects the graph once and delegates to the first registered
// strategy whose condition matches. Selection errors are not consumed:
// the chosen strategy's failure propagates to the caller.
type Adaptive struct {
	strategies []Engine
}

// NewAdaptive creates an empty adaptive selector.
func NewAdaptive() *Adaptive {
	return &Adaptive{}
}

// Add registers a strategy and returns the selector for chaining.
func (a *Adaptive) Add(s Engine) *Adaptive {
	a.strategies = append(a.strategies, s)
	return a
}

// Name returns the registry name of the selector.
func (a *Adaptive) Name() string { return "adaptive" }

// Supports reports whether any registered strategy matches the graph.
func (a *Adaptive) Supports(g *ir.Graph) bool {
	return a.selectStrategy(g) != nil
}

// Apply selects a strategy by graph shape and runs it.
func (a *Adaptive) Apply(g *ir.Graph, ctx *Context) error {
	s := a.selectStrategy(g)
	if s == nil {
		return calculationErrorf("no suitable layout strategy found")
	}
	log.WithFields(log.Fields{
		"strategy": s.Name(),
		"nodes":    g.NodeCount(),
		"edges":    g.EdgeCount(),
	}).Debug("adaptive layout selection")
	return s.Apply(g, ctx)
}

// selectStrategy applies the shape heuristics: hierarchical or sparse
// graphs go to dagre, dense flat graphs of moderate size to force, and
// large hierarchical graphs to elk.
func (a *Adaptive) selectStrategy(g *ir.Graph) Engine {
	nodes := g.NodeCount()
	edges := g.EdgeCount()
	hierarchical := len(g.Containers) > 0 || len(g.Groups) > 0
	dense := edges > nodes*2
	large := nodes > 100

	for _, s := range a.strategies {
		switch s.Name() {
		case "dagre":
			if hierarchical || !dense {
				return s
			}
		case "force":
			if !hierarchical && dense && !large {
				return s
			}
		case "elk":
			if hierarchical && large {
				return s
			}
		default:
			return s
		}
	}
	return nil
}

// Composite tries an ordered list of strategies and falls back to a
// designated default. A strategy's error is consumed, not propagated:
// it is logged and the next strategy runs.
type Composite struct {
	strategies []Engine
	fallback   Engine
}

// NewComposite creates a composite with the given fallback.
func NewComposite(fallback Engine) *Composite {
	return &Composite{fallback: fallback}
}

// Add registers a strategy and returns the composite for chaining.
func (c *Composite) Add(s Engine) *Composite {
	c.strategies = append(c.strategies, s)
	return c
}

// Name returns the registry name of the selector.
func (c *Composite) Name() string { return "composite" }

// Supports always reports true; the fallback is the last resort.
func (c *Composite) Supports(_ *ir.Graph) bool { return true }

// Apply runs the first supporting strategy that succeeds. When all fail,
// the fallback runs; its error carries the swallowed failures.
func (c *Composite) Apply(g *ir.Graph, ctx *Context) error {
	var swallowed error
	for _, s := range c.strategies {
		if !s.Supports(g) {
			continue
		}
		err := s.Apply(g, ctx)
		if err == nil {
			return nil
		}
		log.WithFields(log.Fields{
			"strategy": s.Name(),
		}).WithError(err).Debug("composite strategy failed, trying next")
		swallowed = multierr.Append(swallowed, err)
	}

	if err := c.fallback.Apply(g, ctx); err != nil {
		return multierr.Append(err, swallowed)
	}
	return nil
}
