package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mindmap/diagram"
	"mindmap/persist"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func sampleDoc() diagram.Document {
	return diagram.Document{
		Nodes: []diagram.Node{
			{ID: 1, Label: "Project"},
			{ID: 2, Label: "Design"},
			{ID: 3, Label: "Build"},
			{ID: 4, Label: "Tests"},
			{ID: 5, Label: "Loose idea"},
		},
		Edges: []diagram.Edge{
			{ID: 1, Source: 1, Target: 2},
			{ID: 2, Source: 1, Target: 3},
			{ID: 3, Source: 3, Target: 4},
		},
	}
}

func TestWriteOutline(t *testing.T) {
	var buf bytes.Buffer
	writeOutline(&buf, sampleDoc(), false)

	want := strings.Join([]string{
		"Project",
		"  - Design",
		"  - Build",
		"    - Tests",
		"Loose idea",
		"",
		"5 nodes, 3 edges",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("Unexpected outline:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteOutlineCycle(t *testing.T) {
	doc := diagram.Document{
		Nodes: []diagram.Node{{ID: 1, Label: "a"}, {ID: 2, Label: "b"}},
		Edges: []diagram.Edge{{ID: 1, Source: 1, Target: 2}, {ID: 2, Source: 2, Target: 1}},
	}
	var buf bytes.Buffer
	writeOutline(&buf, doc, true)

	if got := buf.String(); !strings.HasPrefix(got, "a #1\n  - b #2\n") {
		t.Errorf("Expected the cycle printed once from node 1, got:\n%s", got)
	}
}

func TestOutlineCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")
	data, err := persist.Encode(sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"outline", path, "--config", filepath.Join(dir, "none.toml")})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("outline failed: %v", err)
	}
	if !strings.Contains(out.String(), "    - Tests") {
		t.Errorf("Expected the tree in the output, got:\n%s", out.String())
	}
}

func TestOutlineMissingFile(t *testing.T) {
	dir := t.TempDir()
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"outline", filepath.Join(dir, "missing.json"), "--config", filepath.Join(dir, "none.toml")})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected an error for a missing document")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindmap.toml")

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "init", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `file = "mindmap.json"`) {
		t.Errorf("Expected defaults in the file, got:\n%s", data)
	}

	cmd = rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "init", path})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected config init to refuse overwriting")
	}
}

func TestConfigShowAppliesFlags(t *testing.T) {
	dir := t.TempDir()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "show", "--config", filepath.Join(dir, "none.toml"), "--history-limit", "42"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out.String(), "history_limit = 42") {
		t.Errorf("Expected the flag value, got:\n%s", out.String())
	}
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")
	data, err := persist.Encode(sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "map.dot")

	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", path, "-F", "dot", "-o", out, "--config", filepath.Join(dir, "none.toml")})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	written, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(written), "N3 -> N4;") {
		t.Errorf("Expected the Build -> Tests edge, got:\n%s", written)
	}

	cmd = rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", path, "-F", "svg", "--config", filepath.Join(dir, "none.toml")})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plan.mmd")
	if err := os.WriteFile(src, []byte("graph TD\n  A[Plan] --> B[Do]\n  A --> C[Check]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "plan.json")
	noConfig := filepath.Join(dir, "none.toml")

	cmd := rootCmd()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"import", src, target, "--config", noConfig})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	doc, loaded := persist.LoadDocument(persist.NewFileStore(target))
	if !loaded {
		t.Fatal("Expected the imported document to load")
	}
	if len(doc.Nodes) != 3 || len(doc.Edges) != 2 {
		t.Errorf("Expected 3 nodes and 2 edges, got %d and %d", len(doc.Nodes), len(doc.Edges))
	}

	cmd = rootCmd()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"import", src, target, "--config", noConfig})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected import to refuse replacing the document")
	}

	cmd = rootCmd()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"import", src, target, "--force", "--format", "plantuml", "--config", noConfig})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected an unknown format to fail")
	}
}

func TestMarkdownBlocks(t *testing.T) {
	dir := t.TempDir()
	noConfig := filepath.Join(dir, "none.toml")
	notes := filepath.Join(dir, "notes.md")
	content := "# Notes\n\n```mermaid\ngraph TD\n  A[Old] --> B[Map]\n```\n\n```dot\ndigraph { x -> y }\n```\n"
	if err := os.WriteFile(notes, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "notes.json")

	cmd := rootCmd()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"import", notes, target, "--config", noConfig})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "2. dot (line 8): digraph { x -> y }") {
		t.Errorf("Expected the blocks to be listed, got %v", err)
	}

	cmd = rootCmd()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"import", notes, target, "--block", "2", "--config", noConfig})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	doc, _ := persist.LoadDocument(persist.NewFileStore(target))
	if len(doc.Nodes) != 2 || doc.Nodes[0].Label != "x" {
		t.Errorf("Expected the dot block imported, got %+v", doc.Nodes)
	}

	cmd = rootCmd()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", target, "--into", notes, "--block", "1", "--config", noConfig})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	updated, err := os.ReadFile(notes)
	if err != nil {
		t.Fatal(err)
	}
	want := "# Notes\n\n```mermaid\nflowchart LR\n    N1[\"x\"]\n    N2[\"y\"]\n\n    N1 --> N2\n"
	if !strings.HasPrefix(string(updated), want) {
		t.Errorf("Expected the mermaid block replaced, got:\n%s", updated)
	}
	if !strings.HasSuffix(string(updated), "```\n\n```dot\ndigraph { x -> y }\n```\n") {
		t.Errorf("Expected the dot block untouched, got:\n%s", updated)
	}
}
