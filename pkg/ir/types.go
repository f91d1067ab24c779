package ir

// ArrowKind represents the kind of connection drawn for an edge.
type ArrowKind string

// Arrow kinds supported by the IR.
const (
	ArrowSingle ArrowKind = "single" // ->
	ArrowLine   ArrowKind = "line"   // --
	ArrowDouble ArrowKind = "double" // <->
	ArrowWavy   ArrowKind = "wavy"   // ~>
)

// GroupKind represents the semantics of a node group.
type GroupKind string

// Group kinds.
const (
	GroupBasic    GroupKind = "basic"
	GroupFlow     GroupKind = "flow"
	GroupSemantic GroupKind = "semantic"
)

// StrokeStyle represents the line style of a stroke.
type StrokeStyle string

// Stroke styles.
const (
	StrokeSolid  StrokeStyle = "solid"
	StrokeDashed StrokeStyle = "dashed"
	StrokeDotted StrokeStyle = "dotted"
)

// FillStyle represents how a shape interior is filled.
type FillStyle string

// Fill styles.
const (
	FillNone       FillStyle = "none"
	FillSolid      FillStyle = "solid"
	FillHachure    FillStyle = "hachure"
	FillCrossHatch FillStyle = "cross-hatch"
)

// ArrowheadKind represents the marker drawn at an edge endpoint.
type ArrowheadKind string

// Arrowhead kinds.
const (
	ArrowheadNone     ArrowheadKind = "none"
	ArrowheadArrow    ArrowheadKind = "arrow"
	ArrowheadTriangle ArrowheadKind = "triangle"
	ArrowheadDot      ArrowheadKind = "dot"
)

// GlobalConfig holds document-level configuration carried on the graph.
type GlobalConfig struct {
	Layout    string `json:"layout,omitempty" yaml:"layout,omitempty"`       // Layout engine name (dagre, force, elk)
	Direction string `json:"direction,omitempty" yaml:"direction,omitempty"` // Layout direction hint (TB, LR, etc.)
	Theme     string `json:"theme,omitempty" yaml:"theme,omitempty"`         // Theme name
	Font      string `json:"font,omitempty" yaml:"font,omitempty"`           // Default font family
}
