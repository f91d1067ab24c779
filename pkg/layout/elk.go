package layout

import (
	"math"
	"math/rand"

	mapset "github.com/deckarep/golang-set/v2"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/mark/canvas-dsl/pkg/ir"
)

// ElkAlgorithm selects the ELK sub-algorithm.
type ElkAlgorithm string

// ELK sub-algorithms.
const (
	ElkLayered ElkAlgorithm = "layered"
	ElkTree    ElkAlgorithm = "tree"
	ElkForce   ElkAlgorithm = "force"
	ElkStress  ElkAlgorithm = "stress"
)

// ElkDirection is the primary flow direction of the ELK layered layout.
type ElkDirection string

// ELK directions.
const (
	ElkRight ElkDirection = "right"
	ElkDown  ElkDirection = "down"
	ElkLeft  ElkDirection = "left"
	ElkUp    ElkDirection = "up"
)

// ElkOptions configures the ELK engine.
type ElkOptions struct {
	Algorithm       ElkAlgorithm
	SpacingNodeNode float64
	SpacingEdgeNode float64
	SpacingEdgeEdge float64
	Direction       ElkDirection

	// Seed drives the force sub-algorithm's initial scatter so runs are
	// reproducible.
	Seed int64
}

// DefaultElkOptions returns the default ELK options.
func DefaultElkOptions() ElkOptions {
	return ElkOptions{
		Algorithm:       ElkLayered,
		SpacingNodeNode: 20,
		SpacingEdgeNode: 12,
		SpacingEdgeEdge: 10,
		Direction:       ElkRight,
		Seed:            42,
	}
}

// Elk is a façade over four sub-algorithms (layered, tree, force, stress)
// sharing layer/ordering code. Every sub-algorithm finishes with a
// normalization pass keeping all node extents at least 50 from the origin.
type Elk struct {
	opts ElkOptions
}

// NewElk creates the ELK engine with default options.
func NewElk() *Elk {
	return &Elk{opts: DefaultElkOptions()}
}

// NewElkWithOptions creates the ELK engine with custom options.
func NewElkWithOptions(opts ElkOptions) *Elk {
	return &Elk{opts: opts}
}

// Name returns the registry name of the engine.
func (e *Elk) Name() string { return "elk" }

// Supports reports whether the engine accepts the graph; all graphs are
// accepted, cyclic included.
func (e *Elk) Supports(_ *ir.Graph) bool { return true }

// Apply dispatches to the configured sub-algorithm, normalizes positions,
// and computes container/group bounds.
func (e *Elk) Apply(g *ir.Graph, ctx *Context) error {
	if g.NodeCount() == 0 {
		return nil
	}

	opts := e.opts
	if v, ok := customFloat(ctx, "spacing_node_node"); ok {
		opts.SpacingNodeNode = v
	}

	var err error
	switch opts.Algorithm {
	case ElkStress:
		err = e.stressLayout(g, opts)
	case ElkForce:
		err = e.forceLayout(g, opts)
	case ElkTree:
		err = e.treeLayout(g, opts, ctx)
	default:
		err = e.layeredLayout(g, opts, ctx)
	}
	if err != nil {
		return err
	}

	normalizePositions(g)
	computeGroupBounds(g, elkGroupPadding)
	computeContainerBounds(g, 30)
	return nil
}

func elkGroupPadding(kind ir.GroupKind) float64 {
	switch kind {
	case ir.GroupFlow:
		return 35
	case ir.GroupSemantic:
		return 40
	default:
		return 30
	}
}

// layeredLayout ranks by longest path from sources, runs 8 alternating
// barycenter sweeps, and places layers at a fixed 150 spacing with each
// column centered around zero.
func (e *Elk) layeredLayout(g *ir.Graph, opts ElkOptions, ctx *Context) error {
	ranks := sourceRanks(g)
	layers := buildLayers(g, ranks)
	if ctx == nil || ctx.OptimizeReadability {
		minimizeCrossings(g, layers, 4)
	}
	e.positionLayers(g, layers, opts)
	return nil
}

// sourceRanks assigns rank 0 to sources and rank(v) = max rank over
// predecessors + 1 elsewhere. Cycles do not fail: back edges are ignored
// and nodes unreachable from any source default to rank 0.
func sourceRanks(g *ir.Graph) map[ir.NodeID]int {
	ranks := make(map[ir.NodeID]int, g.NodeCount())
	onStack := make(map[ir.NodeID]bool)

	var visit func(n ir.NodeID, rank int)
	visit = func(n ir.NodeID, rank int) {
		if onStack[n] {
			return
		}
		if r, ok := ranks[n]; ok && r >= rank {
			return
		}
		ranks[n] = rank
		onStack[n] = true
		for _, succ := range g.Successors(n) {
			visit(succ, rank+1)
		}
		onStack[n] = false
	}

	for _, h := range g.NodeIDs() {
		if len(g.Incoming(h)) == 0 {
			visit(h, 0)
		}
	}
	for _, h := range g.NodeIDs() {
		if _, ok := ranks[h]; !ok {
			ranks[h] = 0
		}
	}
	return ranks
}

// positionLayers places layer k at k*150 along the flow axis and centers
// each layer's column around zero on the cross axis.
func (e *Elk) positionLayers(g *ir.Graph, layers [][]ir.NodeID, opts ElkOptions) {
	const layerSpacing = 150.0

	vertical := opts.Direction == ElkDown || opts.Direction == ElkUp

	for li, layer := range layers {
		flowPos := float64(li) * layerSpacing

		total := 0.0
		for _, h := range layer {
			n := g.Node(h)
			if vertical {
				total += n.Width
			} else {
				total += n.Height
			}
		}
		total += float64(len(layer)-1) * opts.SpacingNodeNode

		cross := -total / 2
		for _, h := range layer {
			n := g.Node(h)
			switch opts.Direction {
			case ElkDown:
				n.X = cross + n.Width/2
				n.Y = flowPos
				cross += n.Width + opts.SpacingNodeNode
			case ElkUp:
				n.X = cross + n.Width/2
				n.Y = -flowPos
				cross += n.Width + opts.SpacingNodeNode
			case ElkLeft:
				n.X = -flowPos
				n.Y = cross + n.Height/2
				cross += n.Height + opts.SpacingNodeNode
			default:
				n.X = flowPos
				n.Y = cross + n.Height/2
				cross += n.Height + opts.SpacingNodeNode
			}
		}
	}
}

// treeLayout places every root's subtree top-down, packing trees left to
// right. Graphs with no root fall back to the layered algorithm.
func (e *Elk) treeLayout(g *ir.Graph, opts ElkOptions, ctx *Context) error {
	var roots []ir.NodeID
	for _, h := range g.NodeIDs() {
		if len(g.Incoming(h)) == 0 {
			roots = append(roots, h)
		}
	}
	if len(roots) == 0 {
		return e.layeredLayout(g, opts, ctx)
	}

	visited := mapset.NewSet[ir.NodeID]()
	currentX := 0.0
	for _, root := range roots {
		width := e.placeSubtree(g, root, currentX, 50, 0, opts, visited)
		currentX += width + 100
	}
	return nil
}

// placeSubtree lays out the subtree rooted at n with its top-left corner
// at (x, y) and returns the subtree width. The level gap grows slightly
// with depth. Nodes reachable twice (diamonds, back edges) are placed on
// first visit only.
func (e *Elk) placeSubtree(g *ir.Graph, h ir.NodeID, x, y float64, depth int, opts ElkOptions, visited mapset.Set[ir.NodeID]) float64 {
	n := g.Node(h)
	visited.Add(h)

	n.X = x + n.Width/2
	n.Y = y + n.Height/2

	var children []ir.NodeID
	for _, succ := range g.Successors(h) {
		if !visited.Contains(succ) {
			children = append(children, succ)
			visited.Add(succ)
		}
	}
	if len(children) == 0 {
		return n.Width
	}

	levelSpacing := 100 + math.Min(10*float64(depth), 50)
	childX := x
	childY := y + n.Height + levelSpacing
	totalWidth := 0.0

	for _, child := range children {
		childWidth := e.placeSubtree(g, child, childX, childY, depth+1, opts, visited)
		childX += childWidth + opts.SpacingNodeNode
		totalWidth += childWidth + opts.SpacingNodeNode
	}
	totalWidth -= opts.SpacingNodeNode
	totalWidth = math.Max(totalWidth, n.Width)

	if totalWidth > n.Width {
		n.X = x + totalWidth/2
	}
	return totalWidth
}

// forceLayout runs a temperature-limited force simulation: 300 iterations
// with a linearly decaying step cap.
func (e *Elk) forceLayout(g *ir.Graph, opts ElkOptions) error {
	const (
		iterations  = 300
		initialTemp = 200.0
	)

	rng := rand.New(rand.NewSource(opts.Seed))
	for _, h := range g.NodeIDs() {
		n := g.Node(h)
		n.X = (rng.Float64() - 0.5) * 200
		n.Y = (rng.Float64() - 0.5) * 200
	}

	for i := 0; i < iterations; i++ {
		temperature := initialTemp * (1 - float64(i)/float64(iterations))
		e.forceStep(g, temperature)
	}
	return nil
}

// forceStep accumulates repulsive and attractive forces and moves each
// node at most temperature along its force direction.
func (e *Elk) forceStep(g *ir.Graph, temperature float64) {
	forces := make([][2]float64, g.NodeCount())

	nodes := g.NodeIDs()
	for i := 0; i < len(nodes); i++ {
		ni := g.Node(nodes[i])
		for j := i + 1; j < len(nodes); j++ {
			nj := g.Node(nodes[j])

			dx := ni.X - nj.X
			dy := ni.Y - nj.Y
			distance := math.Max(math.Hypot(dx, dy), 1)

			force := 5000 / (distance * distance)
			fx := force * dx / distance
			fy := force * dy / distance

			forces[i][0] += fx
			forces[i][1] += fy
			forces[j][0] -= fx
			forces[j][1] -= fy
		}
	}

	for _, eh := range g.EdgeIDs() {
		edge := g.Edge(eh)
		src := g.Node(edge.From)
		dst := g.Node(edge.To)

		dx := dst.X - src.X
		dy := dst.Y - src.Y
		distance := math.Max(math.Hypot(dx, dy), 1)

		force := distance * 0.01
		fx := force * dx / distance
		fy := force * dy / distance

		forces[edge.From][0] += fx
		forces[edge.From][1] += fy
		forces[edge.To][0] -= fx
		forces[edge.To][1] -= fy
	}

	for i, h := range g.NodeIDs() {
		fx, fy := forces[i][0], forces[i][1]
		displacement := math.Hypot(fx, fy)
		if displacement == 0 {
			continue
		}
		limited := math.Min(displacement, temperature)
		n := g.Node(h)
		n.X += fx / displacement * limited
		n.Y += fy / displacement * limited
	}
}

// stressLayout minimizes the difference between geometric and graph
// distances: circular initialization, all-pairs shortest paths, and 200
// cooling iterations.
func (e *Elk) stressLayout(g *ir.Graph, _ ElkOptions) error {
	const (
		iterations    = 200
		coolingFactor = 0.95
	)

	count := g.NodeCount()
	radius := math.Max(100, 30*float64(count))
	for i, h := range g.NodeIDs() {
		angle := 2 * math.Pi * float64(i) / float64(count)
		n := g.Node(h)
		n.X = radius * math.Cos(angle)
		n.Y = radius * math.Sin(angle)
	}

	ideal := shortestPathDistances(g)

	for i := 0; i < iterations; i++ {
		temperature := math.Pow(coolingFactor, float64(i))
		e.stressStep(g, ideal, temperature)
	}
	return nil
}

// shortestPathDistances computes the all-pairs ideal distance matrix via
// Floyd-Warshall on a weighted mirror graph with edge length 100.
// Unreachable pairs, and paths longer than the no-path distance, clamp
// to 1000.
func shortestPathDistances(g *ir.Graph) [][]float64 {
	const (
		edgeLength  = 100.0
		unreachable = 1000.0
	)

	mirror := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for _, h := range g.NodeIDs() {
		mirror.AddNode(simple.Node(int64(h)))
	}
	for _, eh := range g.EdgeIDs() {
		e := g.Edge(eh)
		if e.From == e.To {
			continue
		}
		mirror.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(int64(e.From)),
			T: simple.Node(int64(e.To)),
			W: edgeLength,
		})
	}

	paths, _ := path.FloydWarshall(mirror)

	count := g.NodeCount()
	dist := make([][]float64, count)
	for i := 0; i < count; i++ {
		dist[i] = make([]float64, count)
		for j := 0; j < count; j++ {
			if i == j {
				continue
			}
			w := paths.Weight(int64(i), int64(j))
			if math.IsInf(w, 1) || w > unreachable {
				w = unreachable
			}
			dist[i][j] = w
		}
	}
	return dist
}

// stressStep displaces each node by the stress gradient scaled by the
// current temperature. Displacements accumulate in a side vector and are
// applied together.
func (e *Elk) stressStep(g *ir.Graph, ideal [][]float64, temperature float64) {
	nodes := g.NodeIDs()
	displacements := make([][2]float64, len(nodes))

	for i, hi := range nodes {
		ni := g.Node(hi)
		var dx, dy float64

		for j, hj := range nodes {
			if i == j {
				continue
			}
			nj := g.Node(hj)

			current := math.Hypot(ni.X-nj.X, ni.Y-nj.Y)
			if current <= 0 {
				continue
			}
			force := (current - ideal[i][j]) / current
			dx += force * (ni.X - nj.X)
			dy += force * (ni.Y - nj.Y)
		}

		displacements[i] = [2]float64{dx * temperature, dy * temperature}
	}

	for i, h := range nodes {
		n := g.Node(h)
		n.X += displacements[i][0]
		n.Y += displacements[i][1]
	}
}

// normalizePositions translates the whole layout so every node extent
// starts at least 50 from the origin on both axes.
func normalizePositions(g *ir.Graph) {
	minX, minY := math.Inf(1), math.Inf(1)
	for _, h := range g.NodeIDs() {
		n := g.Node(h)
		minX = math.Min(minX, n.Left())
		minY = math.Min(minY, n.Top())
	}

	if minX >= 50 && minY >= 50 {
		return
	}
	shiftX := 50 - math.Min(minX, 50)
	shiftY := 50 - math.Min(minY, 50)
	for _, h := range g.NodeIDs() {
		n := g.Node(h)
		n.X += shiftX
		n.Y += shiftY
	}
}
