package ir

// Style represents visual styling properties for nodes and edges.
type Style struct {
	// Stroke properties
	StrokeColor string      `json:"stroke_color,omitempty"` // Border/line color (hex or named)
	StrokeWidth float64     `json:"stroke_width,omitempty"` // Border/line width
	StrokeStyle StrokeStyle `json:"stroke_style,omitempty"` // solid, dashed, dotted

	// Fill properties
	FillColor string    `json:"fill_color,omitempty"` // Background color
	FillStyle FillStyle `json:"fill_style,omitempty"` // none, solid, hachure, cross-hatch

	// Hand-drawn rendering
	Roughness int `json:"roughness,omitempty"` // 0 (architect), 1 (artist), 2 (cartoonist)

	// Typography
	Font     string  `json:"font,omitempty"`      // Font family
	FontSize float64 `json:"font_size,omitempty"` // Font size

	// Arrow properties (edges only)
	StartArrowhead ArrowheadKind `json:"start_arrowhead,omitempty"`
	EndArrowhead   ArrowheadKind `json:"end_arrowhead,omitempty"`
}

// Merge combines this style with another, with the other style taking precedence.
// The document loader does not call it; container styles are not cascaded
// onto children automatically.
func (s Style) Merge(other Style) Style {
	result := s

	if other.StrokeColor != "" {
		result.StrokeColor = other.StrokeColor
	}
	if other.StrokeWidth != 0 {
		result.StrokeWidth = other.StrokeWidth
	}
	if other.StrokeStyle != "" {
		result.StrokeStyle = other.StrokeStyle
	}
	if other.FillColor != "" {
		result.FillColor = other.FillColor
	}
	if other.FillStyle != "" {
		result.FillStyle = other.FillStyle
	}
	if other.Roughness != 0 {
		result.Roughness = other.Roughness
	}
	if other.Font != "" {
		result.Font = other.Font
	}
	if other.FontSize != 0 {
		result.FontSize = other.FontSize
	}
	if other.StartArrowhead != "" {
		result.StartArrowhead = other.StartArrowhead
	}
	if other.EndArrowhead != "" {
		result.EndArrowhead = other.EndArrowhead
	}

	return result
}
