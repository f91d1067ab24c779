package ir

import (
	"fmt"
)

// ValidationError represents a structural validation error with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the graph's structural invariants: live edge endpoints,
// consistent id lookups, live container/group members, and an acyclic
// container parent relation. Violations indicate a construction bug in the
// caller, not a recoverable condition.
func (g *Graph) Validate() []error {
	var errs []error

	for id, h := range g.byID {
		if int(h) < 0 || int(h) >= len(g.nodes) {
			errs = append(errs, ValidationError{
				Field:   "graph.byID",
				Message: fmt.Sprintf("id %q maps to dead handle %d", id, h),
			})
			continue
		}
		if g.nodes[h].ID != id {
			errs = append(errs, ValidationError{
				Field:   "graph.byID",
				Message: fmt.Sprintf("id %q maps to node %q", id, g.nodes[h].ID),
			})
		}
	}

	for i, e := range g.edges {
		if int(e.From) < 0 || int(e.From) >= len(g.nodes) {
			errs = append(errs, ValidationError{
				Field:   "edge.From",
				Message: fmt.Sprintf("edge %d has dead source handle %d", i, e.From),
			})
		}
		if int(e.To) < 0 || int(e.To) >= len(g.nodes) {
			errs = append(errs, ValidationError{
				Field:   "edge.To",
				Message: fmt.Sprintf("edge %d has dead target handle %d", i, e.To),
			})
		}
	}

	for i, c := range g.Containers {
		for _, child := range c.Children {
			if int(child) < 0 || int(child) >= len(g.nodes) {
				errs = append(errs, ValidationError{
					Field:   "container.Children",
					Message: fmt.Sprintf("container %d has dead child handle %d", i, child),
				})
			}
		}
		if c.Parent >= len(g.Containers) {
			errs = append(errs, ValidationError{
				Field:   "container.Parent",
				Message: fmt.Sprintf("container %d has dead parent index %d", i, c.Parent),
			})
		}
	}

	// The parent relation must be a forest: walking up from any container
	// must terminate without revisiting.
	for i := range g.Containers {
		seen := map[int]bool{}
		for cur := i; cur >= 0 && cur < len(g.Containers); cur = g.Containers[cur].Parent {
			if seen[cur] {
				errs = append(errs, ValidationError{
					Field:   "container.Parent",
					Message: fmt.Sprintf("container parent cycle involving container %d", i),
				})
				break
			}
			seen[cur] = true
		}
	}

	for i, grp := range g.Groups {
		if grp.ID == "" {
			errs = append(errs, ValidationError{
				Field:   "group.ID",
				Message: fmt.Sprintf("group %d has empty id", i),
			})
		}
		for _, child := range grp.Children {
			if int(child) < 0 || int(child) >= len(g.nodes) {
				errs = append(errs, ValidationError{
					Field:   "group.Children",
					Message: fmt.Sprintf("group %q has dead child handle %d", grp.ID, child),
				})
			}
		}
	}

	for i := range g.nodes {
		errs = append(errs, validateStyle(g.nodes[i].Style, fmt.Sprintf("node %s", g.nodes[i].ID))...)
	}
	for i := range g.edges {
		errs = append(errs, validateStyle(g.edges[i].Style, fmt.Sprintf("edge %d", i))...)
	}

	return errs
}

// validateStyle checks style values are within valid ranges.
func validateStyle(style Style, context string) []error {
	var errs []error

	if style.Roughness < 0 || style.Roughness > 2 {
		errs = append(errs, ValidationError{
			Field:   context + ".style.Roughness",
			Message: fmt.Sprintf("roughness must be 0, 1 or 2, got %d", style.Roughness),
		})
	}

	if style.FontSize < 0 {
		errs = append(errs, ValidationError{
			Field:   context + ".style.FontSize",
			Message: "font size cannot be negative",
		})
	}

	if style.StrokeWidth < 0 {
		errs = append(errs, ValidationError{
			Field:   context + ".style.StrokeWidth",
			Message: "stroke width cannot be negative",
		})
	}

	return errs
}
