package layout

import (
	"hash/fnv"
	"sort"

	"github.com/mark/canvas-dsl/pkg/ir"
)

// CacheKey identifies a layout result: a stable hash over the graph's
// structure plus the engine name. Attributes and prior coordinates are
// deliberately excluded so semantically identical graphs share an entry.
type CacheKey struct {
	GraphHash uint64
	Engine    string
}

// Fingerprint hashes the sorted node ids and the sorted edge endpoint id
// pairs. Insertion order does not affect the result.
func Fingerprint(g *ir.Graph, engine string) CacheKey {
	h := fnv.New64a()

	nodeIDs := make([]string, 0, g.NodeCount())
	for _, nh := range g.NodeIDs() {
		nodeIDs = append(nodeIDs, g.Node(nh).ID)
	}
	sort.Strings(nodeIDs)
	for _, id := range nodeIDs {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}

	pairs := make([][2]string, 0, g.EdgeCount())
	for _, eh := range g.EdgeIDs() {
		e := g.Edge(eh)
		pairs = append(pairs, [2]string{g.Node(e.From).ID, g.Node(e.To).ID})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	for _, p := range pairs {
		h.Write([]byte(p[0]))
		h.Write([]byte{0})
		h.Write([]byte(p[1]))
		h.Write([]byte{0})
	}

	return CacheKey{GraphHash: h.Sum64(), Engine: engine}
}

// Point is a cached node center position.
type Point struct {
	X float64
	Y float64
}

// CachedLayout holds the positions stored for a fingerprint.
type CachedLayout struct {
	Positions map[string]Point
}

// snapshotPositions collects id -> center position from a laid-out graph.
func snapshotPositions(g *ir.Graph) map[string]Point {
	positions := make(map[string]Point, g.NodeCount())
	for _, h := range g.NodeIDs() {
		n := g.Node(h)
		positions[n.ID] = Point{X: n.X, Y: n.Y}
	}
	return positions
}
