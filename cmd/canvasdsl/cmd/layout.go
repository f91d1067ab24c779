package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mark/canvas-dsl/pkg/ir"
	"github.com/mark/canvas-dsl/pkg/layout"
)

var (
	outputFile string
	engineName string
	configFile string
	watchMode  bool
	noCache    bool
)

var layoutCmd = &cobra.Command{
	Use:   "layout <graph.json>",
	Short: "Compute positions and bounds for a graph document",
	Long: `Compute node positions and container/group bounds for a graph document.

The input is the JSON document produced by the parser: nodes, edges,
containers and groups identified by string ids. The result is written as
JSON: center-anchored node positions and top-left-anchored bounds.

Engine selection: --engine wins over the document's config.layout;
absent both, dagre is used.

Examples:
  # Default engine (dagre)
  canvasdsl layout graph.json

  # Force-directed layout, written to a file
  canvasdsl layout graph.json --engine force -o positions.json

  # Spacing overrides from a YAML config
  canvasdsl layout graph.json --config layout.yaml

  # Watch mode: recompute on file changes
  canvasdsl layout graph.json -w -o positions.json`,
	Args: cobra.ExactArgs(1),
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (default: stdout)")
	layoutCmd.Flags().StringVarP(&engineName, "engine", "e", "", "Layout engine: dagre, force, elk (default: document config)")
	layoutCmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML file with spacing and engine parameters")
	layoutCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Watch input file for changes and recompute")
	layoutCmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the layout result cache")
}

// layoutConfig is the YAML form of the generic layout context.
type layoutConfig struct {
	Layout              string         `yaml:"layout,omitempty"`
	NodeSpacing         float64        `yaml:"node_spacing,omitempty"`
	EdgeSpacing         float64        `yaml:"edge_spacing,omitempty"`
	OptimizeReadability *bool          `yaml:"optimize_readability,omitempty"`
	Params              map[string]any `yaml:"params,omitempty"`
}

// layoutResult is the JSON document handed to the generator collaborator.
type layoutResult struct {
	Engine     string         `json:"engine"`
	Nodes      []nodeResult   `json:"nodes"`
	Containers []boundsResult `json:"containers,omitempty"`
	Groups     []boundsResult `json:"groups,omitempty"`
}

type nodeResult struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type boundsResult struct {
	ID     string     `json:"id,omitempty"`
	Label  string     `json:"label,omitempty"`
	Bounds *ir.Bounds `json:"bounds,omitempty"`
}

func runLayout(cmd *cobra.Command, args []string) error {
	inputFile := args[0]

	if !watchMode {
		return doLayout(inputFile)
	}
	return runWatchMode(inputFile)
}

// doLayout performs a single layout run: load, lay out, emit.
func doLayout(inputFile string) error {
	content, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	g, err := ir.ParseDocument(content)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}

	ctx := layout.DefaultContext()
	if configFile != "" {
		if err := applyConfigFile(configFile, g, ctx); err != nil {
			return err
		}
	}
	if engineName != "" {
		g.Config.Layout = engineName
	}

	manager := layout.NewManager()
	if noCache {
		manager.EnableCache(false)
	}
	if err := manager.LayoutWithContext(g, ctx); err != nil {
		return fmt.Errorf("layout failed: %w", err)
	}

	output, err := marshalResult(g)
	if err != nil {
		return err
	}

	if outputFile == "" {
		fmt.Println(string(output))
		return nil
	}
	if err := os.WriteFile(outputFile, output, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// applyConfigFile merges a YAML config onto the graph config and context.
func applyConfigFile(path string, g *ir.Graph, ctx *layout.Context) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg layoutConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Layout != "" {
		g.Config.Layout = cfg.Layout
	}
	if cfg.NodeSpacing > 0 {
		ctx.NodeSpacing = cfg.NodeSpacing
	}
	if cfg.EdgeSpacing > 0 {
		ctx.EdgeSpacing = cfg.EdgeSpacing
	}
	if cfg.OptimizeReadability != nil {
		ctx.OptimizeReadability = *cfg.OptimizeReadability
	}
	for k, v := range cfg.Params {
		ctx.Custom[k] = v
	}
	return nil
}

func marshalResult(g *ir.Graph) ([]byte, error) {
	engine := g.Config.Layout
	if engine == "" {
		engine = "dagre"
	}

	result := layoutResult{Engine: engine}
	for _, h := range g.NodeIDs() {
		n := g.Node(h)
		result.Nodes = append(result.Nodes, nodeResult{
			ID: n.ID, X: n.X, Y: n.Y, Width: n.Width, Height: n.Height,
		})
	}
	for i := range g.Containers {
		c := &g.Containers[i]
		result.Containers = append(result.Containers, boundsResult{
			ID: c.ID, Label: c.Label, Bounds: c.Bounds,
		})
	}
	for i := range g.Groups {
		grp := &g.Groups[i]
		result.Groups = append(result.Groups, boundsResult{
			ID: grp.ID, Label: grp.Label, Bounds: grp.Bounds,
		})
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return output, nil
}

// runWatchMode watches the input file and recomputes layout on changes.
func runWatchMode(inputFile string) error {
	absPath, err := filepath.Abs(inputFile)
	if err != nil {
		return fmt.Errorf("failed to resolve input path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory containing the file (more reliable for editor saves)
	dir := filepath.Dir(absPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("Watching %s for changes (Ctrl+C to stop)...\n", inputFile)
	if err := doLayout(inputFile); err != nil {
		fmt.Printf("[%s] Error: %v\n", formatTime(), err)
	} else {
		fmt.Printf("[%s] Layout computed for %s\n", formatTime(), inputFile)
	}

	// Debounce to avoid recomputing for rapid editor save sequences.
	var debounceTimer *time.Timer
	const debounceDelay = 100 * time.Millisecond

	baseName := filepath.Base(absPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != baseName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				if err := doLayout(inputFile); err != nil {
					fmt.Printf("[%s] Error: %v\n", formatTime(), err)
				} else {
					fmt.Printf("[%s] Layout computed for %s\n", formatTime(), inputFile)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("[%s] Watch error: %v\n", formatTime(), err)

		case <-sigChan:
			fmt.Printf("\nStopping watch mode.\n")
			return nil
		}
	}
}

// formatTime returns a formatted timestamp for watch mode output
func formatTime() string {
	return time.Now().Format("15:04:05")
}
