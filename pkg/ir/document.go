package ir

import (
	"encoding/json"
	"fmt"
)

// Document is the wire form of a parsed diagram as produced by the parser
// collaborator: flat node/edge/container/group definitions with ids in
// place of handles.
type Document struct {
	Config     GlobalConfig          `json:"config,omitempty"`
	Nodes      []NodeDefinition      `json:"nodes"`
	Edges      []EdgeDefinition      `json:"edges,omitempty"`
	Containers []ContainerDefinition `json:"containers,omitempty"`
	Groups     []GroupDefinition     `json:"groups,omitempty"`
}

// NodeDefinition declares a node by id.
type NodeDefinition struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Style  Style   `json:"style,omitempty"`
}

// EdgeDefinition declares a directed edge between node ids. When an
// endpoint names a container rather than a node, a virtual container node
// is synthesized to stand in for it.
type EdgeDefinition struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Label string    `json:"label,omitempty"`
	Arrow ArrowKind `json:"arrow,omitempty"`
	Style Style     `json:"style,omitempty"`
}

// ContainerDefinition declares a container and its member node ids.
type ContainerDefinition struct {
	ID       string   `json:"id,omitempty"`
	Label    string   `json:"label,omitempty"`
	Children []string `json:"children"`
	Parent   string   `json:"parent,omitempty"` // id of the enclosing container
	Style    Style    `json:"style,omitempty"`
}

// GroupDefinition declares a group and its member node ids.
type GroupDefinition struct {
	ID       string    `json:"id"`
	Label    string    `json:"label,omitempty"`
	Kind     GroupKind `json:"kind,omitempty"`
	Tag      string    `json:"tag,omitempty"`
	Children []string  `json:"children"`
	Style    Style     `json:"style,omitempty"`
}

// ParseDocument unmarshals a JSON document and builds the graph.
func ParseDocument(data []byte) (*Graph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ir: decode document: %w", err)
	}
	return doc.Build()
}

// Build constructs the graph from the document: nodes first, then virtual
// container nodes for edges naming a container, then edges, then containers
// and their nesting, and finally groups.
func (doc *Document) Build() (*Graph, error) {
	g := NewGraph()
	g.Config = doc.Config

	for _, def := range doc.Nodes {
		n := Node{
			ID:     def.ID,
			Label:  def.Label,
			Width:  def.Width,
			Height: def.Height,
			Style:  def.Style,
		}
		if _, err := g.AddNode(n); err != nil {
			return nil, err
		}
	}

	containerIDs := make(map[string]bool, len(doc.Containers))
	for _, def := range doc.Containers {
		if def.ID != "" {
			containerIDs[def.ID] = true
		}
	}

	// Edges may name a container as an endpoint; synthesize a stand-in node.
	for _, def := range doc.Edges {
		for _, endpoint := range []string{def.From, def.To} {
			if _, _, ok := g.NodeByID(endpoint); ok {
				continue
			}
			if !containerIDs[endpoint] {
				continue
			}
			v := Node{ID: endpoint, VirtualContainer: true}
			if _, err := g.AddNode(v); err != nil {
				return nil, err
			}
		}
		e := Edge{Label: def.Label, Arrow: def.Arrow, Style: def.Style}
		if _, err := g.AddEdge(def.From, def.To, e); err != nil {
			return nil, err
		}
	}

	containerIdx := make(map[string]int, len(doc.Containers))
	for _, def := range doc.Containers {
		c := Container{ID: def.ID, Label: def.Label, Style: def.Style}
		idx, err := g.AddContainer(c, def.Children)
		if err != nil {
			return nil, err
		}
		if def.ID != "" {
			containerIdx[def.ID] = idx
		}
	}

	// Wire container nesting now that all containers exist.
	for i, def := range doc.Containers {
		if def.Parent == "" {
			continue
		}
		parent, ok := containerIdx[def.Parent]
		if !ok {
			return nil, fmt.Errorf("ir: container %q references unknown parent %q", def.ID, def.Parent)
		}
		g.Containers[i].Parent = parent
		g.Containers[parent].NestedContainers = append(g.Containers[parent].NestedContainers, i)
	}

	for _, def := range doc.Groups {
		kind := def.Kind
		if kind == "" {
			kind = GroupBasic
		}
		grp := Group{ID: def.ID, Label: def.Label, Kind: kind, Tag: def.Tag, Style: def.Style}
		if _, err := g.AddGroup(grp, def.Children); err != nil {
			return nil, err
		}
	}

	return g, nil
}
