package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// Helper to create a fresh root command for testing
func newTestRootCmd() *cobra.Command {
	// Reset global flags
	outputFile = ""
	engineName = ""
	configFile = ""
	watchMode = false
	noCache = false
	verbose = false

	testRoot := &cobra.Command{
		Use:           "canvasdsl",
		Short:         "Canvas DSL layout core - compute diagram geometry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	testRoot.AddCommand(layoutCmd)
	testRoot.AddCommand(validateCmd)
	testRoot.AddCommand(versionCmd)

	return testRoot
}

// writeTempGraph writes a graph document to a temp file and returns its path.
func writeTempGraph(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp graph: %v", err)
	}
	return path
}

const simpleGraph = `{
	"config": {"layout": "dagre"},
	"nodes": [{"id": "a"}, {"id": "b"}],
	"edges": [{"from": "a", "to": "b"}]
}`

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestLayoutCommand_RequiresInput(t *testing.T) {
	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"layout"})
	if err := cmd.Execute(); err == nil {
		t.Error("layout command should require an input file")
	}
}

func TestLayoutCommand_FileNotFound(t *testing.T) {
	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"layout", "nonexistent-graph.json"})
	err := cmd.Execute()

	if err == nil {
		t.Error("layout command should fail for non-existent file")
	}
	if err != nil && !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("Expected 'failed to read' error, got: %v", err)
	}
}

func TestLayoutCommand_WritesOutput(t *testing.T) {
	input := writeTempGraph(t, simpleGraph)
	output := filepath.Join(t.TempDir(), "positions.json")

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"layout", input, "-o", output})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("layout command failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}

	var result struct {
		Engine string `json:"engine"`
		Nodes  []struct {
			ID string  `json:"id"`
			X  float64 `json:"x"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if result.Engine != "dagre" {
		t.Errorf("expected engine dagre, got %s", result.Engine)
	}
	if len(result.Nodes) != 2 {
		t.Errorf("expected 2 node results, got %d", len(result.Nodes))
	}
}

func TestLayoutCommand_EngineOverride(t *testing.T) {
	input := writeTempGraph(t, simpleGraph)
	output := filepath.Join(t.TempDir(), "positions.json")

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"layout", input, "--engine", "force", "-o", output})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("layout command failed: %v", err)
	}

	data, _ := os.ReadFile(output)
	if !strings.Contains(string(data), `"engine": "force"`) {
		t.Error("engine flag should override the document config")
	}
}

func TestLayoutCommand_UnknownEngine(t *testing.T) {
	input := writeTempGraph(t, simpleGraph)

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"layout", input, "--engine", "bogus"})
	err := cmd.Execute()

	if err == nil {
		t.Error("unknown engine should fail")
	}
	if err != nil && !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error should name the engine, got: %v", err)
	}
}

func TestLayoutCommand_ConfigFile(t *testing.T) {
	input := writeTempGraph(t, `{"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"from": "a", "to": "b"}]}`)
	output := filepath.Join(t.TempDir(), "positions.json")
	config := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(config, []byte("layout: elk\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"layout", input, "--config", config, "-o", output})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("layout command failed: %v", err)
	}

	data, _ := os.ReadFile(output)
	if !strings.Contains(string(data), `"engine": "elk"`) {
		t.Error("config file should select the engine")
	}
}

func TestValidateCommand_ValidGraph(t *testing.T) {
	input := writeTempGraph(t, simpleGraph)

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"validate", input})
	if err := cmd.Execute(); err != nil {
		t.Errorf("validate should accept a clean graph: %v", err)
	}
}

func TestValidateCommand_BadDocument(t *testing.T) {
	input := writeTempGraph(t, `{"nodes": [{"id": "a"}], "edges": [{"from": "a", "to": "ghost"}]}`)

	cmd := newTestRootCmd()
	cmd.SetArgs([]string{"validate", input})
	if err := cmd.Execute(); err == nil {
		t.Error("validate should reject an edge to an unknown node")
	}
}
