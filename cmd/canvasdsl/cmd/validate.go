package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mark/canvas-dsl/pkg/ir"
)

var validateCmd = &cobra.Command{
	Use:   "validate <graph.json>",
	Short: "Validate a graph document",
	Long: `Validate a graph document for structural issues.

This command builds the graph from the input document and checks its
invariants: live edge endpoints, consistent id lookups, live container
and group members, and an acyclic container nesting. It does not produce
any output files.

Examples:
  # Validate a single document
  canvasdsl validate graph.json

  # Validate and show details on success
  canvasdsl validate graph.json -v`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var verbose bool

func init() {
	validateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed output on success")
}

func runValidate(cmd *cobra.Command, args []string) error {
	inputFile := args[0]

	content, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	g, err := ir.ParseDocument(content)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	validationErrors := g.Validate()
	if len(validationErrors) > 0 {
		fmt.Fprintf(os.Stderr, "Validation errors in %s:\n", inputFile)
		for _, err := range validationErrors {
			fmt.Fprintf(os.Stderr, "  - %s\n", err)
		}
		return fmt.Errorf("found %d validation error(s)", len(validationErrors))
	}

	if verbose {
		fmt.Printf("%s is valid:\n", inputFile)
		fmt.Printf("  Nodes:      %d\n", g.NodeCount())
		fmt.Printf("  Edges:      %d\n", g.EdgeCount())
		fmt.Printf("  Containers: %d\n", len(g.Containers))
		fmt.Printf("  Groups:     %d\n", len(g.Groups))
	} else {
		fmt.Printf("%s is valid\n", inputFile)
	}
	return nil
}
