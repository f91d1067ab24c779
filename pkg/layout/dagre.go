package layout

import (
	"errors"
	"math"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/mark/canvas-dsl/pkg/ir"
)

// Direction is the primary flow direction of the layered layout.
type Direction string

// Layered layout directions.
const (
	DirectionTopBottom Direction = "top-bottom"
	DirectionBottomTop Direction = "bottom-top"
	DirectionLeftRight Direction = "left-right"
	DirectionRightLeft Direction = "right-left"
)

// Ranker selects the rank assignment algorithm. The contract is
// "lower rank = earlier in flow direction".
type Ranker string

// Ranking algorithms. TightTree and NetworkSimplex currently alias to
// longest-path.
const (
	RankLongestPath    Ranker = "longest-path"
	RankTightTree      Ranker = "tight-tree"
	RankNetworkSimplex Ranker = "network-simplex"
)

// DagreOptions configures the layered engine.
type DagreOptions struct {
	NodeSep   float64 // separation between nodes in the same layer
	RankSep   float64 // separation between layers
	EdgeSep   float64 // separation between edges (advisory)
	Direction Direction
	Ranker    Ranker
}

// DefaultDagreOptions returns the default layered options.
func DefaultDagreOptions() DagreOptions {
	return DagreOptions{
		NodeSep:   80,
		RankSep:   150,
		EdgeSep:   20,
		Direction: DirectionLeftRight,
		Ranker:    RankLongestPath,
	}
}

// Dagre is the layered hierarchical layout engine, the default for directed
// acyclic graphs. Graphs containing a directed cycle are rejected.
type Dagre struct {
	opts DagreOptions
}

// NewDagre creates the layered engine with default options.
func NewDagre() *Dagre {
	return &Dagre{opts: DefaultDagreOptions()}
}

// NewDagreWithOptions creates the layered engine with custom options.
func NewDagreWithOptions(opts DagreOptions) *Dagre {
	return &Dagre{opts: opts}
}

// Name returns the registry name of the engine.
func (d *Dagre) Name() string { return "dagre" }

// Supports reports whether the engine accepts the graph. Dagre claims all
// graphs; cyclic ones fail at Apply.
func (d *Dagre) Supports(_ *ir.Graph) bool { return true }

// Apply runs the layered layout: rank assignment, layer ordering by
// barycenter, coordinate assignment, and container/group bounds.
func (d *Dagre) Apply(g *ir.Graph, ctx *Context) error {
	if g.NodeCount() == 0 {
		return nil
	}

	opts := d.opts.resolve(ctx)

	if len(g.Groups) > 0 {
		if err := d.layoutWithGroups(g, opts); err != nil {
			return err
		}
	} else {
		if err := d.layoutStandard(g, opts, ctx); err != nil {
			return err
		}
	}

	computeGroupBounds(g, dagreGroupPadding)
	computeContainerBounds(g, 20)
	d.separateSiblingContainers(g, opts)
	return nil
}

// separateSiblingContainers resolves overlaps between root containers by
// shifting the later container's members along the cross axis. Bounds move
// with their members, so containment is preserved.
func (d *Dagre) separateSiblingContainers(g *ir.Graph, opts DagreOptions) {
	roots := make([]int, 0, len(g.Containers))
	for i := range g.Containers {
		if g.Containers[i].Parent < 0 && g.Containers[i].Bounds != nil {
			roots = append(roots, i)
		}
	}

	for ji := 1; ji < len(roots); ji++ {
		j := roots[ji]
		bj := g.Containers[j].Bounds
		for ii := 0; ii < ji; ii++ {
			i := roots[ii]
			bi := g.Containers[i].Bounds
			if !rectsOverlap(bi, bj) {
				continue
			}
			var delta float64
			if horizontal(opts.Direction) {
				delta = bi.Y + bi.Height + opts.EdgeSep - bj.Y
			} else {
				delta = bi.X + bi.Width + opts.EdgeSep - bj.X
			}
			if delta <= 0 {
				continue
			}
			d.shiftContainer(g, j, delta, opts.Direction)
		}
	}
}

func rectsOverlap(a, b *ir.Bounds) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

// shiftContainer translates a container's members, nested containers and
// groups, and all their bounds along the cross axis.
func (d *Dagre) shiftContainer(g *ir.Graph, idx int, delta float64, dir Direction) {
	seen := mapset.NewSet[int]()
	movedNodes := mapset.NewSet[ir.NodeID]()

	moveNode := func(h ir.NodeID) {
		if movedNodes.Contains(h) {
			return
		}
		movedNodes.Add(h)
		n := g.Node(h)
		if horizontal(dir) {
			n.Y += delta
		} else {
			n.X += delta
		}
	}
	moveBounds := func(b *ir.Bounds) {
		if b == nil {
			return
		}
		if horizontal(dir) {
			b.Y += delta
		} else {
			b.X += delta
		}
	}

	var shift func(i int)
	shift = func(i int) {
		if seen.Contains(i) {
			return
		}
		seen.Add(i)

		c := &g.Containers[i]
		for _, child := range c.Children {
			moveNode(child)
		}
		moveBounds(c.Bounds)
		for _, nested := range c.NestedGroups {
			grp := &g.Groups[nested]
			for _, child := range grp.Children {
				moveNode(child)
			}
			moveBounds(grp.Bounds)
		}
		for _, nested := range c.NestedContainers {
			shift(nested)
		}
	}
	shift(idx)
}

// resolve applies Context custom-parameter overrides to a copy of the
// options.
func (o DagreOptions) resolve(ctx *Context) DagreOptions {
	if ctx == nil {
		return o
	}
	if v, ok := customFloat(ctx, "node_sep"); ok {
		o.NodeSep = v
	}
	if v, ok := customFloat(ctx, "rank_sep"); ok {
		o.RankSep = v
	}
	return o
}

// customFloat reads a numeric custom parameter from the context.
func customFloat(ctx *Context, key string) (float64, bool) {
	if ctx == nil || ctx.Custom == nil {
		return 0, false
	}
	switch v := ctx.Custom[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func dagreGroupPadding(kind ir.GroupKind) float64 {
	switch kind {
	case ir.GroupFlow:
		return 30
	case ir.GroupSemantic:
		return 35
	default:
		return 25
	}
}

func (d *Dagre) layoutStandard(g *ir.Graph, opts DagreOptions, ctx *Context) error {
	ranks, err := d.assignRanks(g, opts)
	if err != nil {
		return err
	}
	layers := buildLayers(g, ranks)
	if ctx == nil || ctx.OptimizeReadability {
		minimizeCrossings(g, layers, 2)
	}
	d.positionNodes(g, layers, opts)
	return nil
}

// assignRanks checks acyclicity and computes ranks with the configured
// ranker.
func (d *Dagre) assignRanks(g *ir.Graph, opts DagreOptions) (map[ir.NodeID]int, error) {
	if err := checkAcyclic(g); err != nil {
		return nil, err
	}

	switch opts.Ranker {
	case RankTightTree, RankNetworkSimplex:
		// Alias to longest-path until dedicated rankers land.
		return longestPathRanks(g), nil
	default:
		return longestPathRanks(g), nil
	}
}

// checkAcyclic mirrors the graph into a gonum directed graph and runs a
// topological sort. An unorderable result names a node in the cycle.
func checkAcyclic(g *ir.Graph) error {
	mirror := simple.NewDirectedGraph()
	for _, h := range g.NodeIDs() {
		mirror.AddNode(simple.Node(int64(h)))
	}
	for _, eh := range g.EdgeIDs() {
		e := g.Edge(eh)
		if e.From == e.To {
			return cycleError(g.Node(e.From).ID)
		}
		mirror.SetEdge(simple.Edge{F: simple.Node(int64(e.From)), T: simple.Node(int64(e.To))})
	}

	if _, err := topo.Sort(mirror); err != nil {
		var unorderable topo.Unorderable
		if errors.As(err, &unorderable) && len(unorderable) > 0 && len(unorderable[0]) > 0 {
			h := ir.NodeID(unorderable[0][0].ID())
			return cycleError(g.Node(h).ID)
		}
		return ErrInvalidGraph
	}
	return nil
}

func cycleError(nodeID string) error {
	return calculationErrorf(
		"the 'dagre' layout requires a directed acyclic graph (DAG) but found a cycle involving node '%s'. "+
			"Consider using 'layout: force' in your configuration instead, which supports cycles.",
		nodeID)
}

// longestPathRanks computes ranks by longest path from sinks: a node's rank
// is the minimum over its successors of rank(successor) - 1, sinks at 0.
// Lower rank means earlier in the flow direction.
func longestPathRanks(g *ir.Graph) map[ir.NodeID]int {
	ranks := make(map[ir.NodeID]int, g.NodeCount())
	visited := make(map[ir.NodeID]bool, g.NodeCount())

	var visit func(n ir.NodeID) int
	visit = func(n ir.NodeID) int {
		if visited[n] {
			return ranks[n]
		}
		visited[n] = true

		rank := 0
		first := true
		for _, succ := range g.Successors(n) {
			r := visit(succ) - 1
			if first || r < rank {
				rank = r
				first = false
			}
		}
		ranks[n] = rank
		return rank
	}

	// Start from sources so chains inherit consistent ranks; any node not
	// reachable from a source is visited afterwards.
	for _, h := range g.NodeIDs() {
		if len(g.Incoming(h)) == 0 {
			visit(h)
		}
	}
	for _, h := range g.NodeIDs() {
		visit(h)
	}
	return ranks
}

// buildLayers groups nodes by rank, ordered by ascending rank. Nodes keep
// insertion order within a layer so results are deterministic.
func buildLayers(g *ir.Graph, ranks map[ir.NodeID]int) [][]ir.NodeID {
	byRank := make(map[int][]ir.NodeID)
	for _, h := range g.NodeIDs() {
		r := ranks[h]
		byRank[r] = append(byRank[r], h)
	}

	sorted := make([]int, 0, len(byRank))
	for r := range byRank {
		sorted = append(sorted, r)
	}
	sort.Ints(sorted)

	layers := make([][]ir.NodeID, 0, len(sorted))
	for _, r := range sorted {
		layers = append(layers, byRank[r])
	}
	return layers
}

// minimizeCrossings reorders each layer by the barycenter of its neighbors
// in the fixed adjacent layer: forward then backward, repeated passes
// times. Forward sweeps consult incoming edges, backward sweeps outgoing.
func minimizeCrossings(g *ir.Graph, layers [][]ir.NodeID, passes int) {
	for p := 0; p < passes; p++ {
		for i := 1; i < len(layers); i++ {
			sortLayerByBarycenter(g, layers[i], layers[i-1], true)
		}
		for i := len(layers) - 2; i >= 0; i-- {
			sortLayerByBarycenter(g, layers[i], layers[i+1], false)
		}
	}
}

// sortLayerByBarycenter reorders layer in place by the mean index of each
// node's neighbors in the reference layer. Nodes with no neighbors in the
// reference keep their position; ties break by prior index.
func sortLayerByBarycenter(g *ir.Graph, layer, reference []ir.NodeID, forward bool) {
	refPos := make(map[ir.NodeID]int, len(reference))
	for i, n := range reference {
		refPos[n] = i
	}

	barycenters := make([]float64, len(layer))
	for i, n := range layer {
		var neighbors []ir.NodeID
		if forward {
			neighbors = g.Predecessors(n)
		} else {
			neighbors = g.Successors(n)
		}

		sum, count := 0.0, 0
		for _, other := range neighbors {
			if pos, ok := refPos[other]; ok {
				sum += float64(pos)
				count++
			}
		}
		if count > 0 {
			barycenters[i] = sum / float64(count)
		} else {
			barycenters[i] = float64(i)
		}
	}

	order := make([]int, len(layer))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return barycenters[order[a]] < barycenters[order[b]]
	})

	reordered := make([]ir.NodeID, len(layer))
	for i, idx := range order {
		reordered[i] = layer[idx]
	}
	copy(layer, reordered)
}

// positionNodes assigns rank-axis positions per layer and cross-axis
// positions within each layer.
func (d *Dagre) positionNodes(g *ir.Graph, layers [][]ir.NodeID, opts DagreOptions) {
	assignLayerPositions(g, layers, opts)
	assignPositionsWithinLayers(g, layers, opts)
}

func horizontal(dir Direction) bool {
	return dir == DirectionLeftRight || dir == DirectionRightLeft
}

// assignLayerPositions places each layer's centerline along the rank axis:
// a running sum of the previous layers' maximum extents plus RankSep, sign
// flipped for RightLeft/BottomTop.
func assignLayerPositions(g *ir.Graph, layers [][]ir.NodeID, opts DagreOptions) {
	positions := make([]float64, 0, len(layers))
	current := 0.0

	for _, layer := range layers {
		if len(layer) == 0 {
			continue
		}
		maxExtent := 0.0
		for _, h := range layer {
			n := g.Node(h)
			extent := n.Height
			if horizontal(opts.Direction) {
				extent = n.Width
			}
			maxExtent = math.Max(maxExtent, extent)
		}
		positions = append(positions, current+maxExtent/2)
		current += maxExtent + opts.RankSep
	}

	for i, layer := range layers {
		if i >= len(positions) {
			continue
		}
		pos := positions[i]
		for _, h := range layer {
			n := g.Node(h)
			switch opts.Direction {
			case DirectionLeftRight:
				n.X = pos
			case DirectionRightLeft:
				n.X = -pos
			case DirectionTopBottom:
				n.Y = pos
			case DirectionBottomTop:
				n.Y = -pos
			}
		}
	}
}

// assignPositionsWithinLayers spreads each layer along the cross axis.
// Nodes are grouped by path id so causal chains stay aligned: NodeSep
// separates nodes in the same path, twice that separates paths, and the
// whole layer is centered on the rank axis.
func assignPositionsWithinLayers(g *ir.Graph, layers [][]ir.NodeID, opts DagreOptions) {
	paths := assignPathIDs(g, layers)

	for _, layer := range layers {
		if len(layer) == 0 {
			continue
		}

		type member struct {
			node ir.NodeID
			size float64
		}
		byPath := make(map[int][]member)
		for _, h := range layer {
			n := g.Node(h)
			size := n.Width
			if horizontal(opts.Direction) {
				size = n.Height
			}
			id := paths[h]
			byPath[id] = append(byPath[id], member{node: h, size: size})
		}

		pathIDs := make([]int, 0, len(byPath))
		for id := range byPath {
			pathIDs = append(pathIDs, id)
		}
		sort.Ints(pathIDs)

		pathSep := opts.NodeSep * 2
		total := 0.0
		for _, id := range pathIDs {
			members := byPath[id]
			for _, m := range members {
				total += m.size
			}
			total += float64(len(members)-1) * opts.NodeSep
		}
		total += float64(len(pathIDs)-1) * pathSep

		current := -total / 2
		for pi, id := range pathIDs {
			if pi > 0 {
				current += pathSep
			}
			for i, m := range byPath[id] {
				if i > 0 {
					current += opts.NodeSep
				}
				n := g.Node(m.node)
				if horizontal(opts.Direction) {
					n.Y = current + m.size/2
				} else {
					n.X = current + m.size/2
				}
				current += m.size
			}
		}
	}
}

// assignPathIDs labels chains of single-predecessor nodes: walking layers
// in order, a node with no ranked predecessor starts a new path, one
// predecessor inherits its path, and a convergence takes the smallest
// predecessor path id.
func assignPathIDs(g *ir.Graph, layers [][]ir.NodeID) map[ir.NodeID]int {
	paths := make(map[ir.NodeID]int)
	next := 0

	for _, layer := range layers {
		for _, h := range layer {
			incoming := mapset.NewSet[int]()
			for _, pred := range g.Predecessors(h) {
				if id, ok := paths[pred]; ok {
					incoming.Add(id)
				}
			}

			switch incoming.Cardinality() {
			case 0:
				paths[h] = next
				next++
			case 1:
				id, _ := incoming.Pop()
				paths[h] = id
			default:
				min := math.MaxInt
				incoming.Each(func(id int) bool {
					if id < min {
						min = id
					}
					return false
				})
				paths[h] = min
			}
		}
	}
	return paths
}

// layoutWithGroups lays out each group independently on a local frame,
// stacks ungrouped nodes to the left, and then translates groups so their
// extents do not overlap.
func (d *Dagre) layoutWithGroups(g *ir.Graph, opts DagreOptions) error {
	if err := checkAcyclic(g); err != nil {
		return err
	}

	grouped := mapset.NewSet[ir.NodeID]()
	for gi := range g.Groups {
		for _, h := range g.Groups[gi].Children {
			grouped.Add(h)
		}
	}

	for gi := range g.Groups {
		grp := &g.Groups[gi]
		if len(grp.Children) == 0 {
			continue
		}
		positions := d.layoutGroupSubgraph(g, grp.Children, grp.Kind, opts)
		for h, pos := range positions {
			n := g.Node(h)
			n.X = pos[0]
			n.Y = pos[1]
		}
	}

	y := 0.0
	for _, h := range g.NodeIDs() {
		if grouped.Contains(h) {
			continue
		}
		n := g.Node(h)
		n.X = -200
		n.Y = y
		y += n.Height + opts.NodeSep
	}

	d.adjustGroupPositions(g, opts)
	return nil
}

// layoutGroupSubgraph positions a group's members on a local (0,0) frame.
// Flow groups get a linear row; groups without internal edges get a square
// grid; anything else wraps a flow row at width 400.
func (d *Dagre) layoutGroupSubgraph(g *ir.Graph, children []ir.NodeID, kind ir.GroupKind, opts DagreOptions) map[ir.NodeID][2]float64 {
	positions := make(map[ir.NodeID][2]float64, len(children))

	if kind == ir.GroupFlow {
		x := 0.0
		for _, h := range children {
			n := g.Node(h)
			positions[h] = [2]float64{x, 0}
			x += n.Width + opts.NodeSep*1.5
		}
		return positions
	}

	members := mapset.NewSet[ir.NodeID](children...)
	internal := false
	for _, h := range children {
		for _, succ := range g.Successors(h) {
			if members.Contains(succ) {
				internal = true
				break
			}
		}
		if internal {
			break
		}
	}

	if !internal {
		cols := int(math.Ceil(math.Sqrt(float64(len(children)))))
		for i, h := range children {
			n := g.Node(h)
			col := i % cols
			row := i / cols
			positions[h] = [2]float64{
				float64(col) * (n.Width + opts.NodeSep),
				float64(row) * (n.Height + opts.RankSep),
			}
		}
		return positions
	}

	x, y := 0.0, 0.0
	for _, h := range children {
		n := g.Node(h)
		positions[h] = [2]float64{x, y}
		x += n.Width + opts.NodeSep
		if x > 400 {
			x = 0
			y += n.Height + opts.RankSep
		}
	}
	return positions
}

// adjustGroupPositions translates groups along x so they do not overlap:
// group i starts at the running sum of earlier group widths plus padding.
func (d *Dagre) adjustGroupPositions(g *ir.Graph, opts DagreOptions) {
	const groupPadding = 100.0

	xOffset := 0.0
	for gi := range g.Groups {
		grp := &g.Groups[gi]
		if len(grp.Children) == 0 {
			continue
		}

		ext := newExtent()
		for _, h := range grp.Children {
			ext.addNode(g.Node(h))
		}

		dx := xOffset - ext.minX
		for _, h := range grp.Children {
			g.Node(h).X += dx
		}
		xOffset += (ext.maxX - ext.minX) + groupPadding
	}
}
