// Package cmd provides the CLI commands for canvasdsl.
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	BuildDate = "2026-07-18"
	GitCommit = "HEAD"
)

var debugLogging bool

var rootCmd = &cobra.Command{
	Use:   "canvasdsl",
	Short: "Canvas DSL layout core - compute diagram geometry",
	Long: `canvasdsl computes coordinates and bounding boxes for diagram graphs.

It reads the parsed graph document (nodes, edges, containers, groups) as
JSON, runs one of the layout engines (dagre, force, elk), and emits the
resulting positions and bounds as JSON for the generator.

Examples:
  # Lay out a graph with the engine named in its config (default dagre)
  canvasdsl layout graph.json

  # Force a specific engine and write to a file
  canvasdsl layout graph.json --engine elk -o positions.json

  # Validate a graph document
  canvasdsl validate graph.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugLogging {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
