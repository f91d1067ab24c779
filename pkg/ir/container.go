package ir

// Bounds is a top-left-anchored axis-aligned rectangle attached to a
// container or group by layout. Node coordinates are center-anchored;
// bounds are not.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the rectangle fully contains the extent of n.
func (b Bounds) Contains(n *Node) bool {
	return n.Left() >= b.X && n.Right() <= b.X+b.Width &&
		n.Top() >= b.Y && n.Bottom() <= b.Y+b.Height
}

// Container represents a nesting region of the diagram. Containers form a
// forest: every non-root container has exactly one parent.
type Container struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`

	// Members and nesting (graph handles / container indices)
	Children         []NodeID `json:"-"`
	Parent           int      `json:"-"` // index into Graph.Containers, -1 for roots
	NestedContainers []int    `json:"-"`
	NestedGroups     []int    `json:"-"`

	Style Style `json:"style,omitempty"`

	// Bounds is populated by layout.
	Bounds *Bounds `json:"bounds,omitempty"`
}

// Group represents a flat visual grouping of nodes.
type Group struct {
	ID    string    `json:"id"`
	Label string    `json:"label,omitempty"`
	Kind  GroupKind `json:"kind,omitempty"`
	Tag   string    `json:"tag,omitempty"` // semantic tag, set when Kind is semantic

	Children        []NodeID `json:"-"`
	ParentContainer int      `json:"-"` // index into Graph.Containers, -1 if none
	ParentGroup     int      `json:"-"` // index into Graph.Groups, -1 if none

	Style Style `json:"style,omitempty"`

	// Bounds is populated by layout.
	Bounds *Bounds `json:"bounds,omitempty"`
}
