// Package ir provides the in-memory graph model that layout engines operate
// on: nodes and directed edges stored in contiguous slices addressed by
// integer handles, plus a container forest and a flat group list layered on
// top. The model is built once from the parsed document; layout mutates only
// geometry (node coordinates and container/group bounds).
package ir

import (
	"errors"
	"fmt"
)

// NodeID is a handle into the graph's node slice.
type NodeID int

// EdgeID is a handle into the graph's edge slice.
type EdgeID int

// Construction errors.
var (
	ErrDuplicateNode = errors.New("ir: duplicate node id")
	ErrUnknownNode   = errors.New("ir: unknown node id")
	ErrEmptyNodeID   = errors.New("ir: node id cannot be empty")
)

// Graph is a directed graph with container and group overlays.
//
// Handles returned by AddNode/AddEdge stay valid for the lifetime of the
// graph; nodes and edges are never removed.
type Graph struct {
	Config     GlobalConfig
	Containers []Container
	Groups     []Group

	nodes []Node
	edges []Edge
	byID  map[string]NodeID

	outgoing [][]EdgeID
	incoming [][]EdgeID
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{byID: make(map[string]NodeID)}
}

// AddNode inserts a node and returns its handle. The label defaults to the
// id, and unset dimensions are estimated from the label.
func (g *Graph) AddNode(n Node) (NodeID, error) {
	if n.ID == "" {
		return 0, ErrEmptyNodeID
	}
	if _, ok := g.byID[n.ID]; ok {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	if n.Label == "" {
		n.Label = n.ID
	}
	n.EstimateSize()

	h := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = h
	g.outgoing = append(g.outgoing, nil)
	g.incoming = append(g.incoming, nil)
	return h, nil
}

// AddEdge inserts a directed edge between two existing nodes named by id.
func (g *Graph) AddEdge(fromID, toID string, e Edge) (EdgeID, error) {
	from, ok := g.byID[fromID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNode, fromID)
	}
	to, ok := g.byID[toID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNode, toID)
	}

	e.From = from
	e.To = to
	if e.Arrow == "" {
		e.Arrow = ArrowSingle
	}

	h := EdgeID(len(g.edges))
	g.edges = append(g.edges, e)
	g.outgoing[from] = append(g.outgoing[from], h)
	g.incoming[to] = append(g.incoming[to], h)
	return h, nil
}

// AddContainer appends a container and returns its index. Child ids must
// name existing nodes. Containers are added as roots (Parent -1); nesting is
// wired afterwards by the document loader once all containers exist.
func (g *Graph) AddContainer(c Container, childIDs []string) (int, error) {
	for _, id := range childIDs {
		h, ok := g.byID[id]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
		c.Children = append(c.Children, h)
	}
	c.Parent = -1
	g.Containers = append(g.Containers, c)
	return len(g.Containers) - 1, nil
}

// AddGroup appends a group and returns its index. Groups are added
// unparented (ParentContainer and ParentGroup -1); the document loader does
// not wire group nesting.
func (g *Graph) AddGroup(grp Group, childIDs []string) (int, error) {
	for _, id := range childIDs {
		h, ok := g.byID[id]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
		grp.Children = append(grp.Children, h)
	}
	grp.ParentContainer = -1
	grp.ParentGroup = -1
	g.Groups = append(g.Groups, grp)
	return len(g.Groups) - 1, nil
}

// NodeByID returns the handle and node for an id.
func (g *Graph) NodeByID(id string) (NodeID, *Node, bool) {
	h, ok := g.byID[id]
	if !ok {
		return 0, nil, false
	}
	return h, &g.nodes[h], true
}

// Node returns the node for a handle. The pointer remains valid as long as
// no nodes are added.
func (g *Graph) Node(h NodeID) *Node {
	return &g.nodes[h]
}

// Edge returns the edge for a handle.
func (g *Graph) Edge(h EdgeID) *Edge {
	return &g.edges[h]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// NodeIDs returns all node handles in insertion order.
func (g *Graph) NodeIDs() []NodeID {
	ids := make([]NodeID, len(g.nodes))
	for i := range ids {
		ids[i] = NodeID(i)
	}
	return ids
}

// EdgeIDs returns all edge handles in insertion order.
func (g *Graph) EdgeIDs() []EdgeID {
	ids := make([]EdgeID, len(g.edges))
	for i := range ids {
		ids[i] = EdgeID(i)
	}
	return ids
}

// Outgoing returns the handles of edges leaving n.
func (g *Graph) Outgoing(n NodeID) []EdgeID { return g.outgoing[n] }

// Incoming returns the handles of edges entering n.
func (g *Graph) Incoming(n NodeID) []EdgeID { return g.incoming[n] }

// Successors returns the target handles of edges leaving n.
func (g *Graph) Successors(n NodeID) []NodeID {
	var out []NodeID
	for _, e := range g.outgoing[n] {
		out = append(out, g.edges[e].To)
	}
	return out
}

// Predecessors returns the source handles of edges entering n.
func (g *Graph) Predecessors(n NodeID) []NodeID {
	var in []NodeID
	for _, e := range g.incoming[n] {
		in = append(in, g.edges[e].From)
	}
	return in
}
