package ir

import (
	"errors"
	"testing"
)

func TestGraph_AddNode(t *testing.T) {
	g := NewGraph()

	h, err := g.AddNode(Node{ID: "a", Label: "Node A"})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("expected 1 node, got %d", g.NodeCount())
	}
	if g.Node(h).Label != "Node A" {
		t.Errorf("expected label 'Node A', got %q", g.Node(h).Label)
	}
}

func TestGraph_AddNode_Defaults(t *testing.T) {
	g := NewGraph()
	h, err := g.AddNode(Node{ID: "database"})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}

	n := g.Node(h)
	if n.Label != "database" {
		t.Errorf("label should default to id, got %q", n.Label)
	}
	// len("database")*8 + 40 = 104
	if n.Width != 104 {
		t.Errorf("expected estimated width 104, got %f", n.Width)
	}
	if n.Height != 60 {
		t.Errorf("expected estimated height 60, got %f", n.Height)
	}
}

func TestGraph_AddNode_MinimumWidth(t *testing.T) {
	g := NewGraph()
	h, _ := g.AddNode(Node{ID: "a"})
	if g.Node(h).Width != 80 {
		t.Errorf("short labels should clamp to width 80, got %f", g.Node(h).Width)
	}
}

func TestGraph_AddNode_Errors(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want error
	}{
		{"duplicate id", []string{"a", "a"}, ErrDuplicateNode},
		{"empty id", []string{""}, ErrEmptyNodeID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			var err error
			for _, id := range tt.ids {
				_, err = g.AddNode(Node{ID: id})
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGraph_AddEdge(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddNode(Node{ID: "a"})
	b, _ := g.AddNode(Node{ID: "b"})

	eh, err := g.AddEdge("a", "b", Edge{Label: "flows"})
	if err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}

	e := g.Edge(eh)
	if e.From != a || e.To != b {
		t.Errorf("edge endpoints wrong: %d -> %d", e.From, e.To)
	}
	if e.Arrow != ArrowSingle {
		t.Errorf("arrow should default to single, got %q", e.Arrow)
	}
	if len(g.Outgoing(a)) != 1 || len(g.Incoming(b)) != 1 {
		t.Error("adjacency lists not updated")
	}
}

func TestGraph_AddEdge_UnknownNode(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a"})

	tests := []struct {
		name     string
		from, to string
	}{
		{"unknown target", "a", "missing"},
		{"unknown source", "missing", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.AddEdge(tt.from, tt.to, Edge{}); !errors.Is(err, ErrUnknownNode) {
				t.Errorf("expected ErrUnknownNode, got %v", err)
			}
		})
	}
}

func TestGraph_NodeByID(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})

	tests := []struct {
		name   string
		id     string
		expect bool
	}{
		{"existing node", "a", true},
		{"another existing node", "b", true},
		{"non-existent node", "c", false},
		{"empty id", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, n, ok := g.NodeByID(tt.id)
			if ok != tt.expect {
				t.Errorf("NodeByID(%q) found=%v, expected %v", tt.id, ok, tt.expect)
			}
			if ok && n.ID != tt.id {
				t.Errorf("NodeByID(%q) returned node %q", tt.id, n.ID)
			}
		})
	}
}

func TestGraph_SuccessorsPredecessors(t *testing.T) {
	g := NewGraph()
	a, _ := g.AddNode(Node{ID: "a"})
	b, _ := g.AddNode(Node{ID: "b"})
	c, _ := g.AddNode(Node{ID: "c"})
	g.AddEdge("a", "b", Edge{})
	g.AddEdge("a", "c", Edge{})
	g.AddEdge("b", "c", Edge{})

	if got := g.Successors(a); len(got) != 2 {
		t.Errorf("expected 2 successors of a, got %d", len(got))
	}
	if got := g.Predecessors(c); len(got) != 2 {
		t.Errorf("expected 2 predecessors of c, got %d", len(got))
	}
	if got := g.Predecessors(b); len(got) != 1 || got[0] != a {
		t.Errorf("expected predecessor of b to be a, got %v", got)
	}
}

func TestGraph_AddContainer(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})

	idx, err := g.AddContainer(Container{ID: "box"}, []string{"a", "b"})
	if err != nil {
		t.Fatalf("AddContainer failed: %v", err)
	}
	c := g.Containers[idx]
	if len(c.Children) != 2 {
		t.Errorf("expected 2 children, got %d", len(c.Children))
	}
	if c.Parent != -1 {
		t.Errorf("new containers should be roots, got parent %d", c.Parent)
	}

	if _, err := g.AddContainer(Container{ID: "bad"}, []string{"missing"}); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
}

func TestGraph_Validate_CleanGraph(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddEdge("a", "b", Edge{})
	g.AddContainer(Container{ID: "box"}, []string{"a"})
	g.AddGroup(Group{ID: "grp", Kind: GroupFlow}, []string{"b"})

	if errs := g.Validate(); len(errs) != 0 {
		t.Errorf("expected no validation errors, got %v", errs)
	}
}

func TestGraph_Validate_ContainerParentCycle(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a"})
	g.AddContainer(Container{ID: "outer"}, []string{"a"})
	g.AddContainer(Container{ID: "inner"}, nil)
	g.Containers[0].Parent = 1
	g.Containers[1].Parent = 0

	errs := g.Validate()
	if len(errs) == 0 {
		t.Error("expected validation errors for container parent cycle")
	}
}

func TestGraph_Validate_StyleRanges(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a", Style: Style{Roughness: 5}})

	errs := g.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected 1 validation error, got %d", len(errs))
	}
}
